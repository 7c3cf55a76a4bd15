// Package tokens выпускает и проверяет три независимых класса токенов:
// access, refresh и recovery. У каждого класса свой секрет и время жизни.
// Сервис не обращается к хранилищу.
package tokens

import (
	"errors"
	"fmt"
	"time"

	"github.com/magabrotheeeer/clinic-api/internal/config"
	"github.com/magabrotheeeer/clinic-api/internal/lib/jwt"
	"github.com/magabrotheeeer/clinic-api/internal/models"
)

var (
	// ErrInvalidToken access или refresh токен не прошёл проверку.
	ErrInvalidToken = errors.New("invalid token")
	// ErrInvalidOrExpiredToken recovery токен не прошёл проверку.
	ErrInvalidOrExpiredToken = errors.New("invalid or expired recovery token")
)

// Pair access и refresh токены, выпущенные для одной личности.
type Pair struct {
	AccessToken  string
	RefreshToken string
}

// RecoveryClaims проверенные данные recovery токена.
type RecoveryClaims struct {
	Email     string
	JTI       string
	ExpiresAt time.Time
}

// Service реализует выпуск и проверку токенов.
type Service struct {
	access   *jwt.MakerImpl
	refresh  *jwt.MakerImpl
	recovery *jwt.MakerImpl
}

// New создаёт Service из настроек токенов. Классы токенов обязаны иметь разные секреты.
func New(cfg config.Tokens) (*Service, error) {
	const op = "tokens.New"

	secrets := []string{cfg.AccessSecret, cfg.RefreshSecret, cfg.RecoverySecret}
	for i, s := range secrets {
		if s == "" {
			return nil, fmt.Errorf("%s: empty token secret", op)
		}
		for _, other := range secrets[i+1:] {
			if s == other {
				return nil, fmt.Errorf("%s: token classes must not share a secret", op)
			}
		}
	}

	return &Service{
		access:   jwt.NewJWTMaker(cfg.AccessSecret, cfg.AccessTTL),
		refresh:  jwt.NewJWTMaker(cfg.RefreshSecret, cfg.RefreshTTL),
		recovery: jwt.NewJWTMaker(cfg.RecoverySecret, cfg.RecoveryTTL),
	}, nil
}

// RefreshTTL время жизни refresh токена, оно же срок жизни cookie.
func (s *Service) RefreshTTL() time.Duration {
	return s.refresh.TTL()
}

// IssueAccessAndRefresh выпускает пару токенов для личности.
func (s *Service) IssueAccessAndRefresh(identity models.Identity) (Pair, error) {
	const op = "tokens.IssueAccessAndRefresh"

	access, err := s.access.GenerateToken(identity.ID, identity.Email, identity.Role)
	if err != nil {
		return Pair{}, fmt.Errorf("%s: %w", op, err)
	}
	refresh, err := s.refresh.GenerateToken(identity.ID, identity.Email, identity.Role)
	if err != nil {
		return Pair{}, fmt.Errorf("%s: %w", op, err)
	}
	return Pair{AccessToken: access, RefreshToken: refresh}, nil
}

// VerifyAccessToken проверяет access токен.
func (s *Service) VerifyAccessToken(token string) (models.Identity, error) {
	return verifyIdentity(s.access, token)
}

// VerifyRefreshToken проверяет refresh токен.
func (s *Service) VerifyRefreshToken(token string) (models.Identity, error) {
	return verifyIdentity(s.refresh, token)
}

// IssueRecoveryToken выпускает токен восстановления пароля для email.
func (s *Service) IssueRecoveryToken(email string) (string, error) {
	const op = "tokens.IssueRecoveryToken"

	token, err := s.recovery.GenerateRecoveryToken(email)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return token, nil
}

// VerifyRecoveryToken проверяет токен восстановления пароля.
func (s *Service) VerifyRecoveryToken(token string) (RecoveryClaims, error) {
	claims, err := s.recovery.ParseRecoveryToken(token)
	if err != nil {
		return RecoveryClaims{}, ErrInvalidOrExpiredToken
	}
	return RecoveryClaims{
		Email:     claims.Email,
		JTI:       claims.ID,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

func verifyIdentity(maker *jwt.MakerImpl, token string) (models.Identity, error) {
	claims, err := maker.ParseToken(token)
	if err != nil {
		return models.Identity{}, ErrInvalidToken
	}
	return models.Identity{
		ID:    claims.ID,
		Email: claims.Email,
		Role:  claims.Role,
	}, nil
}
