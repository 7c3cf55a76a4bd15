package password

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHasher_Hash(t *testing.T) {
	h := NewHasher(bcrypt.MinCost)

	tests := []struct {
		name     string
		password string
	}{
		{name: "regular password", password: "Secret123"},
		{name: "password with special chars", password: "p@ssw0rd!@#$%^&*()"},
		{name: "short password", password: "short"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hash, err := h.Hash(tt.password)
			require.NoError(t, err)
			assert.NotEqual(t, tt.password, hash)
			assert.NoError(t, h.Compare(hash, tt.password))
		})
	}
}

func TestHasher_Compare(t *testing.T) {
	h := NewHasher(bcrypt.MinCost)

	correctHash, err := h.Hash("correct_password")
	require.NoError(t, err)

	tests := []struct {
		name        string
		password    string
		shouldMatch bool
	}{
		{name: "matching password", password: "correct_password", shouldMatch: true},
		{name: "wrong password", password: "wrong_password", shouldMatch: false},
		{name: "empty password", password: "", shouldMatch: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := h.Compare(correctHash, tt.password)
			if tt.shouldMatch {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestHasher_Cost(t *testing.T) {
	hash, err := NewHasher(bcrypt.MinCost + 1).Hash("Secret123")
	require.NoError(t, err)

	cost, err := bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	assert.Equal(t, bcrypt.MinCost+1, cost)

	assert.Equal(t, bcrypt.DefaultCost, NewHasher(0).cost)
	assert.Equal(t, bcrypt.DefaultCost, NewHasher(bcrypt.MaxCost+1).cost)
}

func TestHasher_SaltedHashes(t *testing.T) {
	h := NewHasher(bcrypt.MinCost)

	hash1, err := h.Hash("password")
	require.NoError(t, err)
	hash2, err := h.Hash("password")
	require.NoError(t, err)

	assert.NotEqual(t, hash1, hash2)
}
