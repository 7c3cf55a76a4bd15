package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/magabrotheeeer/clinic-api/internal/models"
)

// CreateClinic создаёт клинику и связывает её с врачами в одной транзакции.
func (s *Storage) CreateClinic(ctx context.Context, name string, doctorIDs []int64) (int64, error) {
	const op = "storage.CreateClinic"

	var id int64
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		if err := tx.QueryRowContext(ctx,
			`INSERT INTO clinics (name) VALUES ($1) RETURNING id`, name).Scan(&id); err != nil {
			return err
		}
		return linkAll(ctx, tx, insertClinicDoctors, id, doctorIDs)
	})
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, mapError(err))
	}
	return id, nil
}

// FindClinicByName возвращает клинику с точным названием или ErrNotFound.
func (s *Storage) FindClinicByName(ctx context.Context, name string) (*models.Clinic, error) {
	const op = "storage.FindClinicByName"

	c := &models.Clinic{}
	if err := s.DB.QueryRowContext(ctx,
		`SELECT id, name FROM clinics WHERE name = $1`, name).Scan(&c.ID, &c.Name); err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapError(err))
	}
	return c, nil
}

// GetClinic возвращает клинику с врачами и их услугами.
func (s *Storage) GetClinic(ctx context.Context, id int64) (*models.ClinicWithFavors, error) {
	const op = "storage.GetClinic"

	var c models.Clinic
	if err := s.DB.QueryRowContext(ctx,
		`SELECT id, name FROM clinics WHERE id = $1`, id).Scan(&c.ID, &c.Name); err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapError(err))
	}

	doctors, err := s.doctorsByClinic(ctx, []int64{c.ID})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	view := models.NewClinicWithFavors(c, doctors[c.ID])
	return &view, nil
}

// ListClinics возвращает клиники, подходящие под фильтр, отсортированные по названию.
func (s *Storage) ListClinics(ctx context.Context, filter models.ClinicFilter) ([]models.ClinicWithFavors, error) {
	const op = "storage.ListClinics"

	var where whereBuilder
	if filter.Name != "" {
		where.add(`c.name ILIKE $%d`, contains(filter.Name))
	}
	if filter.FavorName != "" {
		where.add(`EXISTS (
			SELECT 1 FROM clinic_doctors cd
			JOIN doctor_favors df ON df.doctor_id = cd.doctor_id
			JOIN favors f ON f.id = df.favor_id
			WHERE cd.clinic_id = c.id AND f.name ILIKE $%d)`, contains(filter.FavorName))
	}
	if filter.DoctorName != "" {
		where.add(`EXISTS (
			SELECT 1 FROM clinic_doctors cd
			JOIN doctors d ON d.id = cd.doctor_id
			WHERE cd.clinic_id = c.id AND (d.first_name ILIKE $%d OR d.last_name ILIKE $%d))`,
			contains(filter.DoctorName))
	}

	query := `SELECT c.id, c.name FROM clinics c` + where.String() +
		` ORDER BY c.name ` + orderDirection(filter.Sort)

	rows, err := s.DB.QueryContext(ctx, query, where.args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var clinics []models.Clinic
	var ids []int64
	for rows.Next() {
		var c models.Clinic
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		clinics = append(clinics, c)
		ids = append(ids, c.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	doctors, err := s.doctorsByClinic(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	result := make([]models.ClinicWithFavors, 0, len(clinics))
	for _, c := range clinics {
		result = append(result, models.NewClinicWithFavors(c, doctors[c.ID]))
	}
	return result, nil
}

// UpdateClinic меняет название и, если doctorIDs не nil, заменяет набор врачей целиком.
func (s *Storage) UpdateClinic(ctx context.Context, id int64, name *string, doctorIDs []int64) error {
	const op = "storage.UpdateClinic"

	err := s.inTx(ctx, func(tx *sql.Tx) error {
		if name != nil {
			if err := execAffecting(ctx, tx, `UPDATE clinics SET name = $1 WHERE id = $2`, *name, id); err != nil {
				return err
			}
		}
		if doctorIDs == nil {
			return nil
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM clinic_doctors WHERE clinic_id = $1`, id); err != nil {
			return err
		}
		return linkAll(ctx, tx, insertClinicDoctors, id, doctorIDs)
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, mapError(err))
	}
	return nil
}

// DeleteClinic удаляет клинику. Связи с врачами удаляются каскадно.
func (s *Storage) DeleteClinic(ctx context.Context, id int64) error {
	const op = "storage.DeleteClinic"

	if err := execAffecting(ctx, s.DB, `DELETE FROM clinics WHERE id = $1`, id); err != nil {
		return fmt.Errorf("%s: %w", op, mapError(err))
	}
	return nil
}

// AddClinicDoctors связывает клинику с врачами. Уже связанные врачи пропускаются.
func (s *Storage) AddClinicDoctors(ctx context.Context, id int64, doctorIDs []int64) error {
	const op = "storage.AddClinicDoctors"

	err := s.inTx(ctx, func(tx *sql.Tx) error {
		return linkAll(ctx, tx, insertClinicDoctors, id, doctorIDs)
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, mapError(err))
	}
	return nil
}

// RemoveClinicDoctor удаляет связь клиники с врачом или возвращает ErrNotFound.
func (s *Storage) RemoveClinicDoctor(ctx context.Context, id, doctorID int64) error {
	const op = "storage.RemoveClinicDoctor"

	query := `DELETE FROM clinic_doctors WHERE clinic_id = $1 AND doctor_id = $2`
	if err := execAffecting(ctx, s.DB, query, id, doctorID); err != nil {
		return fmt.Errorf("%s: %w", op, mapError(err))
	}
	return nil
}
