// Package favor содержит бизнес-логику справочника медицинских услуг.
package favor

import (
	"context"
	"errors"
	"log/slog"

	"github.com/magabrotheeeer/clinic-api/internal/lib/apperr"
	"github.com/magabrotheeeer/clinic-api/internal/lib/idset"
	"github.com/magabrotheeeer/clinic-api/internal/models"
	"github.com/magabrotheeeer/clinic-api/internal/storage/repository"
)

type Repository interface {
	CreateFavor(ctx context.Context, name string, doctorIDs []int64) (int64, error)
	GetFavor(ctx context.Context, id int64) (*models.Favor, error)
	ListFavors(ctx context.Context, filter models.FavorFilter) ([]models.Favor, error)
	UpdateFavor(ctx context.Context, id int64, name string) error
	DeleteFavor(ctx context.Context, id int64) error
	ExistingDoctorIDs(ctx context.Context, ids []int64) ([]int64, error)
}

type Service struct {
	repo Repository
	log  *slog.Logger
}

func New(repo Repository, log *slog.Logger) *Service {
	return &Service{repo: repo, log: log}
}

// Create создает услугу и назначает её указанным врачам.
func (s *Service) Create(ctx context.Context, name string, doctorIDs []int64) (*models.Favor, error) {
	const op = "favor.Create"

	doctorIDs = idset.Unique(doctorIDs)
	if len(doctorIDs) > 0 {
		existing, err := s.repo.ExistingDoctorIDs(ctx, doctorIDs)
		if err != nil {
			return nil, apperr.Internal(op, err)
		}
		if missing := idset.Missing(doctorIDs, existing); len(missing) > 0 {
			return nil, apperr.NotFound("Doctors with IDs %s not found", idset.Format(missing))
		}
	}

	id, err := s.repo.CreateFavor(ctx, name, doctorIDs)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.NotFound("Some doctors not found")
	}
	if err != nil {
		return nil, apperr.Internal(op, err)
	}
	s.log.Info("favor created", slog.Int64("id", id))
	return s.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, filter models.FavorFilter) ([]models.Favor, error) {
	const op = "favor.List"

	favors, err := s.repo.ListFavors(ctx, filter)
	if err != nil {
		return nil, apperr.Internal(op, err)
	}
	if favors == nil {
		favors = []models.Favor{}
	}
	return favors, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*models.Favor, error) {
	const op = "favor.Get"

	f, err := s.repo.GetFavor(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, notFound(id)
	}
	if err != nil {
		return nil, apperr.Internal(op, err)
	}
	return f, nil
}

func (s *Service) Update(ctx context.Context, id int64, name string) (*models.Favor, error) {
	const op = "favor.Update"

	err := s.repo.UpdateFavor(ctx, id, name)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, notFound(id)
	}
	if err != nil {
		return nil, apperr.Internal(op, err)
	}
	return s.Get(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	const op = "favor.Delete"

	err := s.repo.DeleteFavor(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return notFound(id)
	}
	if err != nil {
		return apperr.Internal(op, err)
	}
	s.log.Info("favor deleted", slog.Int64("id", id))
	return nil
}

func notFound(id int64) error {
	return apperr.NotFound("Favor with ID %d not found", id)
}
