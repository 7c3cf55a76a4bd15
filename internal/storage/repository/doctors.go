package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/magabrotheeeer/clinic-api/internal/models"
)

const doctorColumns = `id, first_name, last_name, phone_number, email`

func scanDoctor(row interface{ Scan(dest ...any) error }, d *models.Doctor) error {
	return row.Scan(&d.ID, &d.FirstName, &d.LastName, &d.PhoneNumber, &d.Email)
}

// CreateDoctor сохраняет врача и возвращает его ID.
// При занятом email или телефоне возвращает ErrAlreadyExists.
func (s *Storage) CreateDoctor(ctx context.Context, d models.Doctor) (int64, error) {
	const op = "storage.CreateDoctor"

	var id int64
	query := `INSERT INTO doctors (first_name, last_name, phone_number, email)
			  VALUES ($1, $2, $3, $4)
			  RETURNING id`
	if err := s.DB.QueryRowContext(ctx, query,
		d.FirstName, d.LastName, d.PhoneNumber, d.Email).Scan(&id); err != nil {
		return 0, fmt.Errorf("%s: %w", op, mapError(err))
	}
	return id, nil
}

// FindDoctorByEmail возвращает врача с email или ErrNotFound.
func (s *Storage) FindDoctorByEmail(ctx context.Context, email string) (*models.Doctor, error) {
	const op = "storage.FindDoctorByEmail"

	d := &models.Doctor{}
	row := s.DB.QueryRowContext(ctx, `SELECT `+doctorColumns+` FROM doctors WHERE email = $1`, email)
	if err := scanDoctor(row, d); err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapError(err))
	}
	return d, nil
}

// FindDoctorByPhone возвращает врача с номером телефона или ErrNotFound.
func (s *Storage) FindDoctorByPhone(ctx context.Context, phoneNumber string) (*models.Doctor, error) {
	const op = "storage.FindDoctorByPhone"

	d := &models.Doctor{}
	row := s.DB.QueryRowContext(ctx, `SELECT `+doctorColumns+` FROM doctors WHERE phone_number = $1`, phoneNumber)
	if err := scanDoctor(row, d); err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapError(err))
	}
	return d, nil
}

// GetDoctor возвращает врача с клиниками и услугами.
func (s *Storage) GetDoctor(ctx context.Context, id int64) (*models.Doctor, error) {
	const op = "storage.GetDoctor"

	d := models.Doctor{}
	row := s.DB.QueryRowContext(ctx, `SELECT `+doctorColumns+` FROM doctors WHERE id = $1`, id)
	if err := scanDoctor(row, &d); err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapError(err))
	}

	doctors := []models.Doctor{d}
	if err := s.attachDoctorRelations(ctx, doctors); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &doctors[0], nil
}

// ListDoctors возвращает врачей по фильтру вместе с клиниками и услугами.
func (s *Storage) ListDoctors(ctx context.Context, filter models.DoctorFilter) ([]models.Doctor, error) {
	const op = "storage.ListDoctors"

	var where whereBuilder
	if filter.FirstName != "" {
		where.add(`first_name ILIKE $%d`, contains(filter.FirstName))
	}
	if filter.LastName != "" {
		where.add(`last_name ILIKE $%d`, contains(filter.LastName))
	}
	if filter.PhoneNumber != "" {
		where.add(`phone_number ILIKE $%d`, contains(filter.PhoneNumber))
	}
	if filter.Email != "" {
		where.add(`email ILIKE $%d`, contains(filter.Email))
	}

	sortColumn := "first_name"
	if filter.SortBy == models.SortByLastName {
		sortColumn = "last_name"
	}
	query := `SELECT ` + doctorColumns + ` FROM doctors` + where.String() +
		` ORDER BY ` + sortColumn + ` ` + orderDirection(filter.SortOrder) + `, id`

	rows, err := s.DB.QueryContext(ctx, query, where.args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	doctors := make([]models.Doctor, 0)
	for rows.Next() {
		var d models.Doctor
		if err := scanDoctor(rows, &d); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		doctors = append(doctors, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := s.attachDoctorRelations(ctx, doctors); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return doctors, nil
}

func (s *Storage) attachDoctorRelations(ctx context.Context, doctors []models.Doctor) error {
	ids := make([]int64, 0, len(doctors))
	for _, d := range doctors {
		ids = append(ids, d.ID)
	}
	clinics, err := s.clinicsByDoctor(ctx, ids)
	if err != nil {
		return err
	}
	favors, err := s.favorsByDoctor(ctx, ids)
	if err != nil {
		return err
	}
	for i := range doctors {
		doctors[i].Clinics = clinics[doctors[i].ID]
		doctors[i].Favors = favors[doctors[i].ID]
	}
	return nil
}

// UpdateDoctor перезаписывает поля врача.
func (s *Storage) UpdateDoctor(ctx context.Context, d models.Doctor) error {
	const op = "storage.UpdateDoctor"

	query := `UPDATE doctors
			  SET first_name = $1, last_name = $2, phone_number = $3, email = $4
			  WHERE id = $5`
	if err := execAffecting(ctx, s.DB, query,
		d.FirstName, d.LastName, d.PhoneNumber, d.Email, d.ID); err != nil {
		return fmt.Errorf("%s: %w", op, mapError(err))
	}
	return nil
}

// DeleteDoctor удаляет врача вместе со связями.
func (s *Storage) DeleteDoctor(ctx context.Context, id int64) error {
	const op = "storage.DeleteDoctor"

	if err := execAffecting(ctx, s.DB, `DELETE FROM doctors WHERE id = $1`, id); err != nil {
		return fmt.Errorf("%s: %w", op, mapError(err))
	}
	return nil
}

// AddDoctorFavors назначает врачу услуги. Уже назначенные пропускаются.
func (s *Storage) AddDoctorFavors(ctx context.Context, id int64, favorIDs []int64) error {
	const op = "storage.AddDoctorFavors"

	err := s.inTx(ctx, func(tx *sql.Tx) error {
		return linkAll(ctx, tx, insertDoctorFavors, id, favorIDs)
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, mapError(err))
	}
	return nil
}

// RemoveDoctorFavor снимает с врача услугу или возвращает ErrNotFound.
func (s *Storage) RemoveDoctorFavor(ctx context.Context, id, favorID int64) error {
	const op = "storage.RemoveDoctorFavor"

	query := `DELETE FROM doctor_favors WHERE doctor_id = $1 AND favor_id = $2`
	if err := execAffecting(ctx, s.DB, query, id, favorID); err != nil {
		return fmt.Errorf("%s: %w", op, mapError(err))
	}
	return nil
}

// ReplaceDoctorFavors заменяет набор услуг врача целиком в одной транзакции.
func (s *Storage) ReplaceDoctorFavors(ctx context.Context, id int64, favorIDs []int64) error {
	const op = "storage.ReplaceDoctorFavors"

	err := s.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM doctor_favors WHERE doctor_id = $1`, id); err != nil {
			return err
		}
		return linkAll(ctx, tx, insertDoctorFavors, id, favorIDs)
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, mapError(err))
	}
	return nil
}
