// Package doctor содержит бизнес-логику справочника врачей и их услуг.
package doctor

import (
	"context"
	"errors"
	"log/slog"

	"github.com/magabrotheeeer/clinic-api/internal/lib/apperr"
	"github.com/magabrotheeeer/clinic-api/internal/lib/idset"
	"github.com/magabrotheeeer/clinic-api/internal/models"
	"github.com/magabrotheeeer/clinic-api/internal/storage/repository"
)

// Repository определяет методы для работы с врачами в хранилище.
type Repository interface {
	CreateDoctor(ctx context.Context, d models.Doctor) (int64, error)
	FindDoctorByEmail(ctx context.Context, email string) (*models.Doctor, error)
	FindDoctorByPhone(ctx context.Context, phoneNumber string) (*models.Doctor, error)
	GetDoctor(ctx context.Context, id int64) (*models.Doctor, error)
	ListDoctors(ctx context.Context, filter models.DoctorFilter) ([]models.Doctor, error)
	UpdateDoctor(ctx context.Context, d models.Doctor) error
	DeleteDoctor(ctx context.Context, id int64) error
	AddDoctorFavors(ctx context.Context, id int64, favorIDs []int64) error
	RemoveDoctorFavor(ctx context.Context, id, favorID int64) error
	ReplaceDoctorFavors(ctx context.Context, id int64, favorIDs []int64) error
	ExistingFavorIDs(ctx context.Context, ids []int64) ([]int64, error)
}

// Service реализует бизнес-логику работы с врачами.
type Service struct {
	repo Repository
	log  *slog.Logger
}

// New создает новый экземпляр Service.
func New(repo Repository, log *slog.Logger) *Service {
	return &Service{repo: repo, log: log}
}

// Create создает врача. Email и номер телефона должны быть свободны.
func (s *Service) Create(ctx context.Context, d models.Doctor) (*models.Doctor, error) {
	const op = "doctor.Create"

	if err := s.ensureEmailFree(ctx, op, d.Email); err != nil {
		return nil, err
	}
	if err := s.ensurePhoneFree(ctx, op, d.PhoneNumber); err != nil {
		return nil, err
	}

	id, err := s.repo.CreateDoctor(ctx, d)
	if errors.Is(err, repository.ErrAlreadyExists) {
		return nil, apperr.Duplicate("Doctor with this email or phone number already exists")
	}
	if err != nil {
		return nil, apperr.Internal(op, err)
	}
	s.log.Info("doctor created", slog.Int64("id", id))
	return s.Get(ctx, id)
}

// List возвращает врачей по фильтру вместе с клиниками и услугами.
func (s *Service) List(ctx context.Context, filter models.DoctorFilter) ([]models.Doctor, error) {
	const op = "doctor.List"

	doctors, err := s.repo.ListDoctors(ctx, filter)
	if err != nil {
		return nil, apperr.Internal(op, err)
	}
	if doctors == nil {
		doctors = []models.Doctor{}
	}
	return doctors, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*models.Doctor, error) {
	const op = "doctor.Get"

	d, err := s.repo.GetDoctor(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, notFound(id)
	}
	if err != nil {
		return nil, apperr.Internal(op, err)
	}
	return d, nil
}

// Update частично обновляет врача. Уникальность проверяется только для изменённых полей.
func (s *Service) Update(ctx context.Context, id int64, upd models.DoctorUpdate) (*models.Doctor, error) {
	const op = "doctor.Update"

	current, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if upd.Email != nil && *upd.Email != current.Email {
		if err := s.ensureEmailFree(ctx, op, *upd.Email); err != nil {
			return nil, err
		}
		current.Email = *upd.Email
	}
	if upd.PhoneNumber != nil && *upd.PhoneNumber != current.PhoneNumber {
		if err := s.ensurePhoneFree(ctx, op, *upd.PhoneNumber); err != nil {
			return nil, err
		}
		current.PhoneNumber = *upd.PhoneNumber
	}
	if upd.FirstName != nil {
		current.FirstName = *upd.FirstName
	}
	if upd.LastName != nil {
		current.LastName = *upd.LastName
	}

	err = s.repo.UpdateDoctor(ctx, *current)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return nil, notFound(id)
	case errors.Is(err, repository.ErrAlreadyExists):
		return nil, apperr.Duplicate("Doctor with this email or phone number already exists")
	case err != nil:
		return nil, apperr.Internal(op, err)
	}
	return s.Get(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	const op = "doctor.Delete"

	err := s.repo.DeleteDoctor(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return notFound(id)
	}
	if err != nil {
		return apperr.Internal(op, err)
	}
	s.log.Info("doctor deleted", slog.Int64("id", id))
	return nil
}

// AddFavors назначает врачу услуги. Если все услуги уже назначены, это ошибка.
func (s *Service) AddFavors(ctx context.Context, id int64, favorIDs []int64) (*models.Doctor, error) {
	const op = "doctor.AddFavors"

	current, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	favorIDs = idset.Unique(favorIDs)
	if err := s.ensureFavorsExist(ctx, op, favorIDs); err != nil {
		return nil, err
	}

	assigned := make([]int64, 0, len(current.Favors))
	for _, f := range current.Favors {
		assigned = append(assigned, f.ID)
	}
	fresh := idset.Missing(favorIDs, assigned)
	if len(fresh) == 0 {
		return nil, apperr.Duplicate("All specified favors are already assigned to this doctor")
	}

	if err := s.repo.AddDoctorFavors(ctx, id, fresh); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, notFound(id)
		}
		return nil, apperr.Internal(op, err)
	}
	return s.Get(ctx, id)
}

// RemoveFavor снимает с врача услугу.
func (s *Service) RemoveFavor(ctx context.Context, id, favorID int64) error {
	const op = "doctor.RemoveFavor"

	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	err := s.repo.RemoveDoctorFavor(ctx, id, favorID)
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.NotFound("Favor with ID %d is not assigned to this doctor", favorID)
	}
	if err != nil {
		return apperr.Internal(op, err)
	}
	return nil
}

// ReplaceFavors заменяет весь набор услуг врача.
func (s *Service) ReplaceFavors(ctx context.Context, id int64, favorIDs []int64) (*models.Doctor, error) {
	const op = "doctor.ReplaceFavors"

	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	favorIDs = idset.Unique(favorIDs)
	if favorIDs == nil {
		favorIDs = []int64{}
	}
	if err := s.ensureFavorsExist(ctx, op, favorIDs); err != nil {
		return nil, err
	}

	if err := s.repo.ReplaceDoctorFavors(ctx, id, favorIDs); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.NotFound("Some favors not found")
		}
		return nil, apperr.Internal(op, err)
	}
	return s.Get(ctx, id)
}

func (s *Service) ensureEmailFree(ctx context.Context, op, email string) error {
	_, err := s.repo.FindDoctorByEmail(ctx, email)
	switch {
	case err == nil:
		return apperr.Duplicate("Doctor with this email already exists")
	case errors.Is(err, repository.ErrNotFound):
		return nil
	default:
		return apperr.Internal(op, err)
	}
}

func (s *Service) ensurePhoneFree(ctx context.Context, op, phone string) error {
	_, err := s.repo.FindDoctorByPhone(ctx, phone)
	switch {
	case err == nil:
		return apperr.Duplicate("Doctor with this phone number already exists")
	case errors.Is(err, repository.ErrNotFound):
		return nil
	default:
		return apperr.Internal(op, err)
	}
}

func (s *Service) ensureFavorsExist(ctx context.Context, op string, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	existing, err := s.repo.ExistingFavorIDs(ctx, ids)
	if err != nil {
		return apperr.Internal(op, err)
	}
	if missing := idset.Missing(ids, existing); len(missing) > 0 {
		return apperr.NotFound("Favors with IDs %s not found", idset.Format(missing))
	}
	return nil
}

func notFound(id int64) error {
	return apperr.NotFound("Doctor with ID %d not found", id)
}
