package repository

import (
	"context"
	"fmt"

	"github.com/magabrotheeeer/clinic-api/internal/models"
)

// CreateUser сохраняет нового пользователя и возвращает его ID.
// При занятом email возвращает ErrAlreadyExists.
func (s *Storage) CreateUser(ctx context.Context, user models.User) (int64, error) {
	const op = "storage.CreateUser"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var newID int64
	query := `INSERT INTO users (name, email, password_hash, role)
			  VALUES ($1, $2, $3, $4)
			  RETURNING id`
	if err := s.DB.QueryRowContext(ctx, query,
		user.Name, user.Email, user.PasswordHash, user.Role).Scan(&newID); err != nil {
		return 0, fmt.Errorf("%s: %w", op, mapError(err))
	}
	return newID, nil
}

// GetUserByEmail возвращает пользователя по email или ErrNotFound.
func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	const op = "storage.GetUserByEmail"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, name, email, password_hash, role
			  FROM users
			  WHERE email = $1`
	u := &models.User{}
	if err := s.DB.QueryRowContext(ctx, query, email).Scan(
		&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role); err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapError(err))
	}
	return u, nil
}

// UpdateUserPassword заменяет хэш пароля пользователя.
func (s *Storage) UpdateUserPassword(ctx context.Context, id int64, passwordHash string) error {
	const op = "storage.UpdateUserPassword"

	query := `UPDATE users SET password_hash = $1 WHERE id = $2`
	if err := execAffecting(ctx, s.DB, query, passwordHash, id); err != nil {
		return fmt.Errorf("%s: %w", op, mapError(err))
	}
	return nil
}

// UpdateUserRole меняет роль пользователя с указанным email.
func (s *Storage) UpdateUserRole(ctx context.Context, email, role string) error {
	const op = "storage.UpdateUserRole"

	query := `UPDATE users SET role = $1 WHERE email = $2`
	if err := execAffecting(ctx, s.DB, query, role, email); err != nil {
		return fmt.Errorf("%s: %w", op, mapError(err))
	}
	return nil
}
