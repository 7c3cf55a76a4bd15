package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_FromFile(t *testing.T) {
	configContent := `
env: test
http_server:
  addresshttp: ":8080"
  timeouthttp: 30s
  idle_timeout: 90s
database:
  host: "db"
  port: 5433
  user: "hospital"
  password: "secret"
  name: "hospital_test"
tokens:
  access_secret: "a-secret"
  access_ttl: 10m
  refresh_secret: "r-secret"
  refresh_ttl: 24h
  recovery_secret: "rc-secret"
  recovery_ttl: 2m
mail:
  delivery: "queue"
redis_connection:
  addressredis: "redis:6379"
  db: 1
`
	t.Setenv("CONFIG_PATH", writeConfig(t, configContent))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "test", cfg.Env)
	assert.Equal(t, ":8080", cfg.ListenAddress())
	assert.Equal(t, 30*time.Second, cfg.TimeoutHTTP)
	assert.Equal(t, 90*time.Second, cfg.IdleTimeout)
	assert.Equal(t, "postgres://hospital:secret@db:5433/hospital_test?sslmode=disable", cfg.StorageConnectionString())
	assert.Equal(t, 10*time.Minute, cfg.AccessTTL)
	assert.Equal(t, 24*time.Hour, cfg.RefreshTTL)
	assert.Equal(t, 2*time.Minute, cfg.RecoveryTTL)
	assert.Equal(t, "queue", cfg.Delivery)
	assert.Equal(t, "redis:6379", cfg.AddressRedis)
	assert.Equal(t, 1, cfg.RedisConnection.DB)
}

func TestLoad_DefaultValues(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "local", cfg.Env)
	assert.Equal(t, ":5000", cfg.ListenAddress())
	assert.Equal(t, 15*time.Minute, cfg.AccessTTL)
	assert.Equal(t, 7*24*time.Hour, cfg.RefreshTTL)
	assert.Equal(t, 5*time.Minute, cfg.RecoveryTTL)
	assert.Equal(t, 10, cfg.BcryptCost)
	assert.Equal(t, "direct", cfg.Delivery)
	assert.False(t, cfg.StartTLS)
	assert.False(t, cfg.InsecureCookie)
	assert.False(t, cfg.ConcealUnknownEmail)
}

func TestLoad_EnvOverridesDefaults(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")
	t.Setenv("PORT", "7000")
	t.Setenv("EXPIRES_ACCESS_TOKEN", "1m")
	t.Setenv("AUTH_CONCEAL_UNKNOWN_EMAIL", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":7000", cfg.ListenAddress())
	assert.Equal(t, time.Minute, cfg.AccessTTL)
	assert.True(t, cfg.ConcealUnknownEmail)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{
			name: "missing config file",
			env:  map[string]string{"CONFIG_PATH": filepath.Join(os.TempDir(), "no-such-config.yaml")},
		},
		{
			name: "shared secret",
			env: map[string]string{
				"ACCESS_TOKEN_SECRET":  "same",
				"REFRESH_TOKEN_SECRET": "same",
			},
		},
		{
			name: "non positive ttl",
			env:  map[string]string{"EXPIRES_RECOVERY_TOKEN": "0s"},
		},
		{
			name: "unknown delivery",
			env:  map[string]string{"EMAIL_DELIVERY": "pigeon"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("CONFIG_PATH", "")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			cfg, err := Load()
			assert.Error(t, err)
			assert.Nil(t, cfg)
		})
	}
}

func TestConfig_StringMasksSecrets(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")
	t.Setenv("ACCESS_TOKEN_SECRET", "very-private-access")
	t.Setenv("DB_PASSWORD", "very-private-db")

	cfg, err := Load()
	require.NoError(t, err)

	s := cfg.String()
	assert.NotContains(t, s, "very-private-access")
	assert.NotContains(t, s, "very-private-db")
	assert.Contains(t, s, "AccessTTL: 15m0s")
}
