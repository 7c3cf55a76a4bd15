package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/magabrotheeeer/clinic-api/internal/models"
)

// CreateFavor создаёт услугу и связывает её с врачами в одной транзакции.
func (s *Storage) CreateFavor(ctx context.Context, name string, doctorIDs []int64) (int64, error) {
	const op = "storage.CreateFavor"

	var id int64
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		if err := tx.QueryRowContext(ctx,
			`INSERT INTO favors (name) VALUES ($1) RETURNING id`, name).Scan(&id); err != nil {
			return err
		}
		return linkAll(ctx, tx, insertFavorDoctors, id, doctorIDs)
	})
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, mapError(err))
	}
	return id, nil
}

// GetFavor возвращает услугу с врачами.
func (s *Storage) GetFavor(ctx context.Context, id int64) (*models.Favor, error) {
	const op = "storage.GetFavor"

	f := &models.Favor{}
	if err := s.DB.QueryRowContext(ctx,
		`SELECT id, name FROM favors WHERE id = $1`, id).Scan(&f.ID, &f.Name); err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapError(err))
	}

	doctors, err := s.doctorsByFavor(ctx, []int64{f.ID})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	f.Doctors = doctors[f.ID]
	return f, nil
}

// ListFavors возвращает услуги по фильтру, отсортированные по названию.
func (s *Storage) ListFavors(ctx context.Context, filter models.FavorFilter) ([]models.Favor, error) {
	const op = "storage.ListFavors"

	var where whereBuilder
	if filter.Name != "" {
		where.add(`name ILIKE $%d`, contains(filter.Name))
	}
	query := `SELECT id, name FROM favors` + where.String() +
		` ORDER BY name ` + orderDirection(filter.Sort) + `, id`

	rows, err := s.DB.QueryContext(ctx, query, where.args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	favors := make([]models.Favor, 0)
	var ids []int64
	for rows.Next() {
		var f models.Favor
		if err := rows.Scan(&f.ID, &f.Name); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		favors = append(favors, f)
		ids = append(ids, f.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	doctors, err := s.doctorsByFavor(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	for i := range favors {
		favors[i].Doctors = doctors[favors[i].ID]
	}
	return favors, nil
}

// UpdateFavor меняет название услуги.
func (s *Storage) UpdateFavor(ctx context.Context, id int64, name string) error {
	const op = "storage.UpdateFavor"

	if err := execAffecting(ctx, s.DB, `UPDATE favors SET name = $1 WHERE id = $2`, name, id); err != nil {
		return fmt.Errorf("%s: %w", op, mapError(err))
	}
	return nil
}

// DeleteFavor удаляет услугу вместе со связями.
func (s *Storage) DeleteFavor(ctx context.Context, id int64) error {
	const op = "storage.DeleteFavor"

	if err := execAffecting(ctx, s.DB, `DELETE FROM favors WHERE id = $1`, id); err != nil {
		return fmt.Errorf("%s: %w", op, mapError(err))
	}
	return nil
}
