// Package auth содержит бизнес-логику регистрации, входа, обновления сессии
// и восстановления пароля.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/magabrotheeeer/clinic-api/internal/lib/apperr"
	"github.com/magabrotheeeer/clinic-api/internal/models"
	"github.com/magabrotheeeer/clinic-api/internal/services/tokens"
	"github.com/magabrotheeeer/clinic-api/internal/storage/repository"
)

const (
	minPasswordLength = 6
	// bcrypt не принимает пароли длиннее 72 байт.
	maxPasswordBytes = 72
)

// UserRepository описывает контракт для работы с пользователями в базе данных.
type UserRepository interface {
	// CreateUser сохраняет нового пользователя и возвращает его ID.
	CreateUser(ctx context.Context, user models.User) (int64, error)

	// GetUserByEmail возвращает пользователя по email или repository.ErrNotFound.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	UpdateUserPassword(ctx context.Context, id int64, passwordHash string) error
}

type Hasher interface {
	Hash(password string) (string, error)
	Compare(originalHash, externalPassword string) error
}

type TokenService interface {
	IssueAccessAndRefresh(identity models.Identity) (tokens.Pair, error)
	VerifyRefreshToken(token string) (models.Identity, error)
	IssueRecoveryToken(email string) (string, error)
	VerifyRecoveryToken(token string) (tokens.RecoveryClaims, error)
}

type MailSender interface {
	SendRecovery(ctx context.Context, msg models.RecoveryMail) error
}

// ConsumedTokens хранилище использованных токенов восстановления.
type ConsumedTokens interface {
	Claim(ctx context.Context, jti string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, jti string) error
}

// Options политики сервиса.
type Options struct {
	// ResetURL адрес страницы сброса пароля, токен добавляется параметром token.
	ResetURL string
	// ConcealUnknownEmail не сообщать, что email не зарегистрирован.
	ConcealUnknownEmail bool
}

// Session результат регистрации, входа и обновления.
type Session struct {
	AccessToken  string
	RefreshToken string
	User         models.Identity
}

// Service отвечает за регистрацию, авторизацию и восстановление пароля.
type Service struct {
	log      *slog.Logger
	users    UserRepository
	hasher   Hasher
	tokens   TokenService
	mail     MailSender
	consumed ConsumedTokens
	opts     Options
	now      func() time.Time

	dummyOnce sync.Once
	dummyHash string
}

// New создает новый экземпляр Service.
func New(log *slog.Logger, users UserRepository, hasher Hasher, tokens TokenService, mail MailSender, consumed ConsumedTokens, opts Options) *Service {
	return &Service{
		log:      log,
		users:    users,
		hasher:   hasher,
		tokens:   tokens,
		mail:     mail,
		consumed: consumed,
		opts:     opts,
		now:      time.Now,
	}
}

// Register создает нового пользователя с ролью "user" и выпускает сессию.
func (s *Service) Register(ctx context.Context, name, email, rawPassword string) (Session, error) {
	const op = "auth.Register"

	_, err := s.users.GetUserByEmail(ctx, email)
	switch {
	case err == nil:
		return Session{}, apperr.Duplicate("User with this email already exists")
	case !errors.Is(err, repository.ErrNotFound):
		return Session{}, apperr.Internal(op, err)
	}

	if err := checkPassword(rawPassword); err != nil {
		return Session{}, err
	}

	hashed, err := s.hasher.Hash(rawPassword)
	if err != nil {
		return Session{}, apperr.Internal(op, err)
	}

	user := models.User{
		Name:         name,
		Email:        email,
		PasswordHash: hashed,
		Role:         models.RoleUser,
	}
	id, err := s.users.CreateUser(ctx, user)
	if errors.Is(err, repository.ErrAlreadyExists) {
		return Session{}, apperr.Duplicate("User with this email already exists")
	}
	if err != nil {
		return Session{}, apperr.Internal(op, err)
	}
	user.ID = id

	return s.issue(op, user.Identity())
}

// Login проверяет пароль пользователя и выпускает сессию. Неизвестный email
// и неверный пароль неразличимы для клиента.
func (s *Service) Login(ctx context.Context, email, rawPassword string) (Session, error) {
	const op = "auth.Login"

	user, err := s.users.GetUserByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		// сравнение с заглушкой выравнивает время ответа
		_ = s.hasher.Compare(s.dummy(), rawPassword)
		return Session{}, apperr.Unauthorized("Invalid email or password")
	}
	if err != nil {
		return Session{}, apperr.Internal(op, err)
	}
	if err := s.hasher.Compare(user.PasswordHash, rawPassword); err != nil {
		return Session{}, apperr.Unauthorized("Invalid email or password")
	}

	return s.issue(op, user.Identity())
}

// Refresh выпускает новую пару по refresh токену.
func (s *Service) Refresh(_ context.Context, refreshToken string) (Session, error) {
	const op = "auth.Refresh"

	if refreshToken == "" {
		return Session{}, apperr.Unauthorized("Refresh token not found")
	}
	identity, err := s.tokens.VerifyRefreshToken(refreshToken)
	if err != nil {
		return Session{}, apperr.Unauthorized("Invalid refresh token")
	}
	return s.issue(op, identity)
}

// ForgotPassword отправляет письмо со ссылкой для сброса пароля.
func (s *Service) ForgotPassword(ctx context.Context, email string) error {
	const op = "auth.ForgotPassword"

	user, err := s.users.GetUserByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		if s.opts.ConcealUnknownEmail {
			s.log.Info("password recovery requested for unknown email")
			return nil
		}
		return apperr.NotFound("User with this email not found")
	}
	if err != nil {
		return apperr.Internal(op, err)
	}

	token, err := s.tokens.IssueRecoveryToken(user.Email)
	if err != nil {
		return apperr.Internal(op, err)
	}
	link, err := resetLink(s.opts.ResetURL, token)
	if err != nil {
		return apperr.Internal(op, err)
	}

	if err := s.mail.SendRecovery(ctx, models.RecoveryMail{Email: user.Email, Link: link}); err != nil {
		return apperr.Internal(op, err)
	}
	return nil
}

// ResetPassword устанавливает новый пароль по токену восстановления.
// Каждый токен принимается один раз.
func (s *Service) ResetPassword(ctx context.Context, token, newPassword string) (models.Identity, error) {
	const op = "auth.ResetPassword"

	claims, err := s.tokens.VerifyRecoveryToken(token)
	if err != nil {
		return models.Identity{}, apperr.Unauthorized("Invalid or expired recovery token")
	}

	user, err := s.users.GetUserByEmail(ctx, claims.Email)
	if errors.Is(err, repository.ErrNotFound) {
		return models.Identity{}, apperr.NotFound("User with this email not found")
	}
	if err != nil {
		return models.Identity{}, apperr.Internal(op, err)
	}

	if err := checkPassword(newPassword); err != nil {
		return models.Identity{}, err
	}

	claimed, err := s.consumed.Claim(ctx, claims.JTI, claims.ExpiresAt.Sub(s.now()))
	if err != nil {
		return models.Identity{}, apperr.Internal(op, err)
	}
	if !claimed {
		return models.Identity{}, apperr.Unauthorized("Recovery token has already been used")
	}

	if err := s.persistPassword(ctx, user.ID, newPassword); err != nil {
		if relErr := s.consumed.Release(ctx, claims.JTI); relErr != nil {
			apperr.Log(s.log, "failed to release recovery token", apperr.Internal(op, relErr))
		}
		return models.Identity{}, apperr.Internal(op, err)
	}

	return user.Identity(), nil
}

func (s *Service) persistPassword(ctx context.Context, userID int64, rawPassword string) error {
	hashed, err := s.hasher.Hash(rawPassword)
	if err != nil {
		return err
	}
	return s.users.UpdateUserPassword(ctx, userID, hashed)
}

// dummy хэш той же стоимости, что и у настоящих паролей.
func (s *Service) dummy() string {
	s.dummyOnce.Do(func() {
		hash, err := s.hasher.Hash("timing-equalizer")
		if err != nil {
			apperr.Log(s.log, "failed to build dummy password hash", apperr.Internal("auth.dummy", err))
			return
		}
		s.dummyHash = hash
	})
	return s.dummyHash
}

// checkPassword длина считается в символах, верхняя граница в байтах.
func checkPassword(raw string) error {
	if utf8.RuneCountInString(raw) < minPasswordLength {
		return apperr.Validation("Password must be at least %d characters long", minPasswordLength)
	}
	if len(raw) > maxPasswordBytes {
		return apperr.Validation("Password must be at most %d bytes long", maxPasswordBytes)
	}
	return nil
}

func (s *Service) issue(op string, identity models.Identity) (Session, error) {
	pair, err := s.tokens.IssueAccessAndRefresh(identity)
	if err != nil {
		return Session{}, apperr.Internal(op, err)
	}
	return Session{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		User:         identity,
	}, nil
}

func resetLink(base, token string) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("parse reset url: %w", err)
	}
	q := u.Query()
	q.Set("token", token)
	u.RawQuery = q.Encode()
	return u.String(), nil
}
