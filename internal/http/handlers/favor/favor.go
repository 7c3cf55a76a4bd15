// Package favor реализует HTTP-обработчики справочника медицинских услуг.
package favor

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/clinic-api/internal/http/response"
	"github.com/magabrotheeeer/clinic-api/internal/models"
)

// Service описывает бизнес-логику услуг.
type Service interface {
	Create(ctx context.Context, name string, doctorIDs []int64) (*models.Favor, error)
	List(ctx context.Context, filter models.FavorFilter) ([]models.Favor, error)
	Get(ctx context.Context, id int64) (*models.Favor, error)
	Update(ctx context.Context, id int64, name string) (*models.Favor, error)
	Delete(ctx context.Context, id int64) error
}

// CreateRequest входные данные для создания услуги.
type CreateRequest struct {
	Name      string  `json:"name" validate:"required,max=255" example:"Therapy"`
	DoctorIDs []int64 `json:"doctorIds" validate:"dive,gt=0"`
}

// UpdateRequest новое название услуги.
type UpdateRequest struct {
	Name string `json:"name" validate:"required,max=255" example:"Physiotherapy"`
}

// Handler обрабатывает HTTP-запросы к услугам.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// New создает Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: response.NewValidator(),
	}
}

func (h *Handler) logger(r *http.Request, op string) *slog.Logger {
	return h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)
}

// Create godoc
// @Summary Создание услуги
// @Tags Favors
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateRequest true "Услуга"
// @Success 201 {object} models.Favor
// @Failure 400 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 404 {object} response.ErrorResponse "Врачи не найдены"
// @Router /favors [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.favor.create")

	var req CreateRequest
	if err := response.Decode(r, h.validate, &req); err != nil {
		response.WriteError(w, r, log, err)
		return
	}

	f, err := h.service.Create(r.Context(), req.Name, req.DoctorIDs)
	if err != nil {
		response.WriteError(w, r, log, err)
		return
	}

	log.Info("favor created", slog.Int64("id", f.ID))
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, f)
}

// List godoc
// @Summary Список услуг
// @Tags Favors
// @Produce json
// @Security BearerAuth
// @Param name query string false "Часть названия"
// @Param sort query string false "asc или desc"
// @Success 200 {array} models.Favor
// @Router /favors [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.favor.list")

	sort, err := response.SortParam(r, "sort")
	if err != nil {
		response.WriteError(w, r, log, err)
		return
	}

	favors, err := h.service.List(r.Context(), models.FavorFilter{Name: r.URL.Query().Get("name"), Sort: sort})
	if err != nil {
		response.WriteError(w, r, log, err)
		return
	}
	render.JSON(w, r, favors)
}

// Get godoc
// @Summary Услуга по ID
// @Tags Favors
// @Produce json
// @Security BearerAuth
// @Param id path int true "ID услуги"
// @Success 200 {object} models.Favor
// @Failure 404 {object} response.ErrorResponse "Услуга не найдена"
// @Router /favors/{id} [get]
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.favor.get")

	id, err := response.IDParam(r, "id")
	if err != nil {
		response.WriteError(w, r, log, err)
		return
	}
	f, err := h.service.Get(r.Context(), id)
	if err != nil {
		response.WriteError(w, r, log, err)
		return
	}
	render.JSON(w, r, f)
}

// Update godoc
// @Summary Переименование услуги
// @Tags Favors
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "ID услуги"
// @Param request body UpdateRequest true "Новое название"
// @Success 200 {object} models.Favor
// @Failure 404 {object} response.ErrorResponse "Услуга не найдена"
// @Router /favors/{id} [put]
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.favor.update")

	id, err := response.IDParam(r, "id")
	if err != nil {
		response.WriteError(w, r, log, err)
		return
	}
	var req UpdateRequest
	if err := response.Decode(r, h.validate, &req); err != nil {
		response.WriteError(w, r, log, err)
		return
	}

	f, err := h.service.Update(r.Context(), id, req.Name)
	if err != nil {
		response.WriteError(w, r, log, err)
		return
	}
	render.JSON(w, r, f)
}

// Delete godoc
// @Summary Удаление услуги
// @Tags Favors
// @Security BearerAuth
// @Param id path int true "ID услуги"
// @Success 204
// @Failure 404 {object} response.ErrorResponse "Услуга не найдена"
// @Router /favors/{id} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.favor.delete")

	id, err := response.IDParam(r, "id")
	if err != nil {
		response.WriteError(w, r, log, err)
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		response.WriteError(w, r, log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
