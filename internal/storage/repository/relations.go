package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/magabrotheeeer/clinic-api/internal/models"
)

// existingIDs возвращает те ID из ids, которые есть в таблице table.
func (s *Storage) existingIDs(ctx context.Context, table string, ids []int64) ([]int64, error) {
	if len(ids) == 0 {
		return []int64{}, nil
	}
	// table берётся только из констант пакета.
	query := fmt.Sprintf(`SELECT id FROM %s WHERE id = ANY($1) ORDER BY id`, table)
	rows, err := s.DB.QueryContext(ctx, query, ids)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = rows.Close()
	}()

	found := make([]int64, 0, len(ids))
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		found = append(found, id)
	}
	return found, rows.Err()
}

// ExistingDoctorIDs возвращает ID врачей из ids, которые существуют.
func (s *Storage) ExistingDoctorIDs(ctx context.Context, ids []int64) ([]int64, error) {
	const op = "storage.ExistingDoctorIDs"
	found, err := s.existingIDs(ctx, "doctors", ids)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return found, nil
}

// ExistingFavorIDs возвращает ID услуг из ids, которые существуют.
func (s *Storage) ExistingFavorIDs(ctx context.Context, ids []int64) ([]int64, error) {
	const op = "storage.ExistingFavorIDs"
	found, err := s.existingIDs(ctx, "favors", ids)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return found, nil
}

// favorsByDoctor загружает услуги врачей, сгруппированные по doctor_id.
func (s *Storage) favorsByDoctor(ctx context.Context, doctorIDs []int64) (map[int64][]models.Favor, error) {
	result := make(map[int64][]models.Favor, len(doctorIDs))
	if len(doctorIDs) == 0 {
		return result, nil
	}
	query := `SELECT df.doctor_id, f.id, f.name
			  FROM doctor_favors df
			  JOIN favors f ON f.id = df.favor_id
			  WHERE df.doctor_id = ANY($1)
			  ORDER BY df.doctor_id, f.id`
	rows, err := s.DB.QueryContext(ctx, query, doctorIDs)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = rows.Close()
	}()

	for rows.Next() {
		var doctorID int64
		var f models.Favor
		if err := rows.Scan(&doctorID, &f.ID, &f.Name); err != nil {
			return nil, err
		}
		result[doctorID] = append(result[doctorID], f)
	}
	return result, rows.Err()
}

// clinicsByDoctor загружает клиники врачей, сгруппированные по doctor_id.
func (s *Storage) clinicsByDoctor(ctx context.Context, doctorIDs []int64) (map[int64][]models.Clinic, error) {
	result := make(map[int64][]models.Clinic, len(doctorIDs))
	if len(doctorIDs) == 0 {
		return result, nil
	}
	query := `SELECT cd.doctor_id, c.id, c.name
			  FROM clinic_doctors cd
			  JOIN clinics c ON c.id = cd.clinic_id
			  WHERE cd.doctor_id = ANY($1)
			  ORDER BY cd.doctor_id, c.id`
	rows, err := s.DB.QueryContext(ctx, query, doctorIDs)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = rows.Close()
	}()

	for rows.Next() {
		var doctorID int64
		var c models.Clinic
		if err := rows.Scan(&doctorID, &c.ID, &c.Name); err != nil {
			return nil, err
		}
		result[doctorID] = append(result[doctorID], c)
	}
	return result, rows.Err()
}

// doctorsByClinic загружает врачей клиник вместе с их услугами.
func (s *Storage) doctorsByClinic(ctx context.Context, clinicIDs []int64) (map[int64][]models.Doctor, error) {
	query := `SELECT cd.clinic_id, d.id, d.first_name, d.last_name, d.phone_number, d.email
			  FROM clinic_doctors cd
			  JOIN doctors d ON d.id = cd.doctor_id
			  WHERE cd.clinic_id = ANY($1)
			  ORDER BY cd.clinic_id, d.id`
	return s.doctorsByOwner(ctx, query, clinicIDs, true)
}

// doctorsByFavor загружает врачей, оказывающих услуги.
func (s *Storage) doctorsByFavor(ctx context.Context, favorIDs []int64) (map[int64][]models.Doctor, error) {
	query := `SELECT df.favor_id, d.id, d.first_name, d.last_name, d.phone_number, d.email
			  FROM doctor_favors df
			  JOIN doctors d ON d.id = df.doctor_id
			  WHERE df.favor_id = ANY($1)
			  ORDER BY df.favor_id, d.id`
	return s.doctorsByOwner(ctx, query, favorIDs, false)
}

func (s *Storage) doctorsByOwner(ctx context.Context, query string, ownerIDs []int64, withFavors bool) (map[int64][]models.Doctor, error) {
	result := make(map[int64][]models.Doctor, len(ownerIDs))
	if len(ownerIDs) == 0 {
		return result, nil
	}
	rows, err := s.DB.QueryContext(ctx, query, ownerIDs)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = rows.Close()
	}()

	var doctorIDs []int64
	for rows.Next() {
		var ownerID int64
		var d models.Doctor
		if err := rows.Scan(&ownerID, &d.ID, &d.FirstName, &d.LastName, &d.PhoneNumber, &d.Email); err != nil {
			return nil, err
		}
		result[ownerID] = append(result[ownerID], d)
		doctorIDs = append(doctorIDs, d.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if !withFavors {
		return result, nil
	}

	favors, err := s.favorsByDoctor(ctx, doctorIDs)
	if err != nil {
		return nil, err
	}
	for ownerID, doctors := range result {
		for i := range doctors {
			doctors[i].Favors = favors[doctors[i].ID]
		}
		result[ownerID] = doctors
	}
	return result, nil
}

// linkAll добавляет пары (ownerID, id) в таблицу связей, существующие пары пропускаются.
func linkAll(ctx context.Context, tx *sql.Tx, query string, ownerID int64, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := tx.ExecContext(ctx, query, ownerID, ids)
	return err
}

const insertClinicDoctors = `INSERT INTO clinic_doctors (clinic_id, doctor_id)
	SELECT $1, unnest($2::int8[])
	ON CONFLICT DO NOTHING`

const insertDoctorFavors = `INSERT INTO doctor_favors (doctor_id, favor_id)
	SELECT $1, unnest($2::int8[])
	ON CONFLICT DO NOTHING`

const insertFavorDoctors = `INSERT INTO doctor_favors (favor_id, doctor_id)
	SELECT $1, unnest($2::int8[])
	ON CONFLICT DO NOTHING`
