// Package clinic содержит бизнес-логику справочника клиник.
package clinic

import (
	"context"
	"errors"
	"log/slog"

	"github.com/magabrotheeeer/clinic-api/internal/lib/apperr"
	"github.com/magabrotheeeer/clinic-api/internal/lib/idset"
	"github.com/magabrotheeeer/clinic-api/internal/models"
	"github.com/magabrotheeeer/clinic-api/internal/storage/repository"
)

// Repository определяет методы для работы с клиниками в хранилище.
type Repository interface {
	CreateClinic(ctx context.Context, name string, doctorIDs []int64) (int64, error)
	FindClinicByName(ctx context.Context, name string) (*models.Clinic, error)
	GetClinic(ctx context.Context, id int64) (*models.ClinicWithFavors, error)
	ListClinics(ctx context.Context, filter models.ClinicFilter) ([]models.ClinicWithFavors, error)
	// UpdateClinic меняет название (если name не nil) и заменяет врачей (если doctorIDs не nil).
	UpdateClinic(ctx context.Context, id int64, name *string, doctorIDs []int64) error
	DeleteClinic(ctx context.Context, id int64) error
	AddClinicDoctors(ctx context.Context, id int64, doctorIDs []int64) error
	RemoveClinicDoctor(ctx context.Context, id, doctorID int64) error
	ExistingDoctorIDs(ctx context.Context, ids []int64) ([]int64, error)
}

// Update частичное обновление клиники.
type Update struct {
	Name      *string
	DoctorIDs []int64
}

// Service реализует бизнес-логику работы с клиниками.
type Service struct {
	repo Repository
	log  *slog.Logger
}

// New создает новый экземпляр Service.
func New(repo Repository, log *slog.Logger) *Service {
	return &Service{repo: repo, log: log}
}

// Create создает клинику с указанными врачами.
func (s *Service) Create(ctx context.Context, name string, doctorIDs []int64) (*models.ClinicWithFavors, error) {
	const op = "clinic.Create"

	if err := s.ensureNameFree(ctx, op, name); err != nil {
		return nil, err
	}
	doctorIDs = idset.Unique(doctorIDs)
	if err := s.ensureDoctorsExist(ctx, op, doctorIDs); err != nil {
		return nil, err
	}

	id, err := s.repo.CreateClinic(ctx, name, doctorIDs)
	if err != nil {
		return nil, s.mapWriteError(op, err)
	}
	s.log.Info("clinic created", slog.Int64("id", id))
	return s.Get(ctx, id)
}

// List возвращает клиники по фильтру. Пустой результат не считается ошибкой.
func (s *Service) List(ctx context.Context, filter models.ClinicFilter) ([]models.ClinicWithFavors, error) {
	const op = "clinic.List"

	clinics, err := s.repo.ListClinics(ctx, filter)
	if err != nil {
		return nil, apperr.Internal(op, err)
	}
	if clinics == nil {
		clinics = []models.ClinicWithFavors{}
	}
	return clinics, nil
}

// Get возвращает клинику с врачами и всеми их услугами.
func (s *Service) Get(ctx context.Context, id int64) (*models.ClinicWithFavors, error) {
	const op = "clinic.Get"

	clinic, err := s.repo.GetClinic(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, notFound(id)
	}
	if err != nil {
		return nil, apperr.Internal(op, err)
	}
	return clinic, nil
}

// Update меняет название и/или состав врачей.
func (s *Service) Update(ctx context.Context, id int64, upd Update) (*models.ClinicWithFavors, error) {
	const op = "clinic.Update"

	current, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if upd.Name != nil && *upd.Name != current.Name {
		if err := s.ensureNameFree(ctx, op, *upd.Name); err != nil {
			return nil, err
		}
	}
	if upd.DoctorIDs != nil {
		if len(upd.DoctorIDs) == 0 && len(current.Doctors) > 0 {
			return nil, apperr.Validation("cannot remove the last doctor from a clinic")
		}
		upd.DoctorIDs = idset.Unique(upd.DoctorIDs)
		if err := s.ensureDoctorsExist(ctx, op, upd.DoctorIDs); err != nil {
			return nil, err
		}
	}

	if err := s.repo.UpdateClinic(ctx, id, upd.Name, upd.DoctorIDs); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, notFound(id)
		}
		return nil, s.mapWriteError(op, err)
	}
	return s.Get(ctx, id)
}

// Delete удаляет клинику вместе со связями с врачами.
func (s *Service) Delete(ctx context.Context, id int64) error {
	const op = "clinic.Delete"

	err := s.repo.DeleteClinic(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return notFound(id)
	}
	if err != nil {
		return apperr.Internal(op, err)
	}
	s.log.Info("clinic deleted", slog.Int64("id", id))
	return nil
}

// AddDoctors добавляет врачей к клинике. Уже связанные врачи остаются в одном экземпляре.
func (s *Service) AddDoctors(ctx context.Context, id int64, doctorIDs []int64) (*models.ClinicWithFavors, error) {
	const op = "clinic.AddDoctors"

	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	doctorIDs = idset.Unique(doctorIDs)
	if err := s.ensureDoctorsExist(ctx, op, doctorIDs); err != nil {
		return nil, err
	}

	if err := s.repo.AddClinicDoctors(ctx, id, doctorIDs); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, notFound(id)
		}
		return nil, apperr.Internal(op, err)
	}
	return s.Get(ctx, id)
}

// RemoveDoctor убирает врача из клиники. У клиники нельзя забрать последнего врача.
func (s *Service) RemoveDoctor(ctx context.Context, id, doctorID int64) error {
	const op = "clinic.RemoveDoctor"

	clinic, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	associated := false
	for _, d := range clinic.Doctors {
		if d.ID == doctorID {
			associated = true
			break
		}
	}
	if !associated {
		return apperr.NotFound("Doctor with ID %d is not associated with this clinic", doctorID)
	}
	if len(clinic.Doctors) == 1 {
		return apperr.Validation("cannot remove the last doctor from a clinic")
	}

	err = s.repo.RemoveClinicDoctor(ctx, id, doctorID)
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.NotFound("Doctor with ID %d is not associated with this clinic", doctorID)
	}
	if err != nil {
		return apperr.Internal(op, err)
	}
	return nil
}

func (s *Service) ensureNameFree(ctx context.Context, op, name string) error {
	_, err := s.repo.FindClinicByName(ctx, name)
	switch {
	case err == nil:
		return apperr.Duplicate("Clinic with this name already exists")
	case errors.Is(err, repository.ErrNotFound):
		return nil
	default:
		return apperr.Internal(op, err)
	}
}

func (s *Service) ensureDoctorsExist(ctx context.Context, op string, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	existing, err := s.repo.ExistingDoctorIDs(ctx, ids)
	if err != nil {
		return apperr.Internal(op, err)
	}
	if missing := idset.Missing(ids, existing); len(missing) > 0 {
		return apperr.NotFound("Doctors with IDs %s not found", idset.Format(missing))
	}
	return nil
}

// mapWriteError гонка с параллельной записью: проверки прошли, но ограничение БД сработало.
func (s *Service) mapWriteError(op string, err error) error {
	switch {
	case errors.Is(err, repository.ErrAlreadyExists):
		return apperr.Duplicate("Clinic with this name already exists")
	case errors.Is(err, repository.ErrNotFound):
		return apperr.NotFound("Some doctors not found")
	default:
		return apperr.Internal(op, err)
	}
}

func notFound(id int64) error {
	return apperr.NotFound("Clinic with ID %d not found", id)
}
