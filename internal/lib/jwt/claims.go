package jwt

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// IdentityClaims данные пользователя в access и refresh токенах.
type IdentityClaims struct {
	ID                   int64  `json:"id"`    // Идентификатор пользователя
	Email                string `json:"email"` // Электронная почта
	Role                 string `json:"role"`  // Роль пользователя
	jwt.RegisteredClaims        // Встроенные стандартные claims JWT (ExpiresAt, IssuedAt и пр.)
}

// RecoveryClaims данные токена восстановления пароля: только email и jti.
type RecoveryClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// GenerateToken создает JWT токен с данными пользователя, подписывая его секретным ключом.
func (j *MakerImpl) GenerateToken(id int64, email, role string) (string, error) {
	now := j.now()
	claims := IdentityClaims{
		ID:    id,
		Email: email,
		Role:  role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(j.tokenTTL)),
		},
	}
	return j.sign(claims)
}

// ParseToken парсит JWT токен, проверяет его подпись и валидность,
// возвращает IdentityClaims, если токен корректен.
func (j *MakerImpl) ParseToken(tokenStr string) (*IdentityClaims, error) {
	const op = "jwt.ParseToken"
	claims := &IdentityClaims{}
	if err := j.parse(tokenStr, claims); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return claims, nil
}

// GenerateRecoveryToken создаёт токен восстановления пароля с уникальным jti.
func (j *MakerImpl) GenerateRecoveryToken(email string) (string, error) {
	now := j.now()
	claims := RecoveryClaims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(j.tokenTTL)),
		},
	}
	return j.sign(claims)
}

// ParseRecoveryToken проверяет токен восстановления пароля.
func (j *MakerImpl) ParseRecoveryToken(tokenStr string) (*RecoveryClaims, error) {
	const op = "jwt.ParseRecoveryToken"
	claims := &RecoveryClaims{}
	if err := j.parse(tokenStr, claims); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if claims.Email == "" || claims.ID == "" {
		return nil, fmt.Errorf("%s: %w: missing email or jti", op, ErrInvalidToken)
	}
	return claims, nil
}

func (j *MakerImpl) sign(claims jwt.Claims) (string, error) {
	const op = "jwt.sign"
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(j.secretKey))
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return signed, nil
}

func (j *MakerImpl) parse(tokenStr string, claims jwt.Claims) error {
	keyFunc := func(_ *jwt.Token) (any, error) {
		return []byte(j.secretKey), nil
	}
	token, err := jwt.ParseWithClaims(tokenStr, claims, keyFunc,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(j.now),
	)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if !token.Valid {
		return ErrInvalidToken
	}
	return nil
}
