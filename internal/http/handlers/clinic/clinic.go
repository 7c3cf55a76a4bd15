// Package clinic реализует HTTP-обработчики справочника клиник.
//
// Запросы декодируются и валидируются здесь, проверки целостности
// (уникальность названия, существование врачей) выполняет Service.
package clinic

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/clinic-api/internal/http/response"
	"github.com/magabrotheeeer/clinic-api/internal/models"
	clinicservice "github.com/magabrotheeeer/clinic-api/internal/services/clinic"
)

// Service описывает бизнес-логику клиник.
type Service interface {
	Create(ctx context.Context, name string, doctorIDs []int64) (*models.ClinicWithFavors, error)
	List(ctx context.Context, filter models.ClinicFilter) ([]models.ClinicWithFavors, error)
	Get(ctx context.Context, id int64) (*models.ClinicWithFavors, error)
	Update(ctx context.Context, id int64, upd clinicservice.Update) (*models.ClinicWithFavors, error)
	Delete(ctx context.Context, id int64) error
	AddDoctors(ctx context.Context, id int64, doctorIDs []int64) (*models.ClinicWithFavors, error)
	RemoveDoctor(ctx context.Context, id, doctorID int64) error
}

// CreateRequest входные данные для создания клиники.
type CreateRequest struct {
	Name      string  `json:"name" validate:"required,max=255" example:"Medix"`
	DoctorIDs []int64 `json:"doctorIds" validate:"dive,gt=0"`
}

// UpdateRequest частичное обновление. Отсутствующий doctorIds не меняет врачей,
// пустой массив убирает всех.
type UpdateRequest struct {
	Name      *string `json:"name" validate:"omitempty,min=1,max=255" example:"Medix Plus"`
	DoctorIDs []int64 `json:"doctorIds" validate:"omitempty,dive,gt=0"`
}

// DoctorsRequest список врачей для добавления в клинику.
type DoctorsRequest struct {
	DoctorIDs []int64 `json:"doctorIds" validate:"required,min=1,dive,gt=0"`
}

// Handler обрабатывает HTTP-запросы к клиникам.
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
// @Summary Создание клиники
// @Tags Clinics
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateRequest true "Клиника"
// @Success 201 {object} models.ClinicWithFavors
// @Failure 400 {object} response.ErrorResponse "Ошибка валидации или название занято"
// @Failure 403 {object} response.ErrorResponse "Недостаточно прав"
// @Failure 404 {object} response.ErrorResponse "Врачи не найдены"
// @Router /clinics [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.clinic.create")

	var req CreateRequest
	if err := response.Decode(r, h.validate, &req); err != nil {
		response.WriteError(w, r, log, err)
		return
	}

	c, err := h.service.Create(r.Context(), req.Name, req.DoctorIDs)
	if err != nil {
		response.WriteError(w, r, log, err)
		return
	}

	log.Info("clinic created", slog.Int64("id", c.ID))
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, c)
}

// List godoc
// @Summary Список клиник
// @Tags Clinics
// @Produce json
// @Security BearerAuth
// @Param name query string false "Часть названия"
// @Param favorName query string false "Часть названия услуги"
// @Param doctorName query string false "Часть имени врача"
// @Param sort query string false "asc или desc"
// @Success 200 {array} models.ClinicWithFavors
// @Failure 400 {object} response.ErrorResponse "Некорректная сортировка"
// @Router /clinics [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.clinic.list")

	sort, err := response.SortParam(r, "sort")
	if err != nil {
		response.WriteError(w, r, log, err)
		return
	}
	q := r.URL.Query()
	filter := models.ClinicFilter{
		Name:       q.Get("name"),
		FavorName:  q.Get("favorName"),
		DoctorName: q.Get("doctorName"),
		Sort:       sort,
	}

	clinics, err := h.service.List(r.Context(), filter)
	if err != nil {
		response.WriteError(w, r, log, err)
		return
	}
	render.JSON(w, r, clinics)
}

// Get godoc
// @Summary Клиника по ID
// @Tags Clinics
// @Produce json
// @Security BearerAuth
// @Param id path int true "ID клиники"
// @Success 200 {object} models.ClinicWithFavors
// @Failure 404 {object} response.ErrorResponse "Клиника не найдена"
// @Router /clinics/{id} [get]
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.clinic.get")

	id, err := response.IDParam(r, "id")
	if err != nil {
		response.WriteError(w, r, log, err)
		return
	}

	c, err := h.service.Get(r.Context(), id)
	if err != nil {
		response.WriteError(w, r, log, err)
		return
	}
	render.JSON(w, r, c)
}

// Update godoc
// @Summary Обновление клиники
// @Tags Clinics
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "ID клиники"
// @Param request body UpdateRequest true "Поля для изменения"
// @Success 200 {object} models.ClinicWithFavors
// @Failure 400 {object} response.ErrorResponse "Ошибка валидации или название занято"
// @Failure 404 {object} response.ErrorResponse "Клиника или врачи не найдены"
// @Router /clinics/{id} [put]
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.clinic.update")

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

	c, err := h.service.Update(r.Context(), id, clinicservice.Update{Name: req.Name, DoctorIDs: req.DoctorIDs})
	if err != nil {
		response.WriteError(w, r, log, err)
		return
	}

	log.Info("clinic updated", slog.Int64("id", id))
	render.JSON(w, r, c)
}

// Delete godoc
// @Summary Удаление клиники
// @Tags Clinics
// @Security BearerAuth
// @Param id path int true "ID клиники"
// @Success 204
// @Failure 404 {object} response.ErrorResponse "Клиника не найдена"
// @Router /clinics/{id} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.clinic.delete")

	id, err := response.IDParam(r, "id")
	if err != nil {
		response.WriteError(w, r, log, err)
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		response.WriteError(w, r, log, err)
		return
	}

	log.Info("clinic deleted", slog.Int64("id", id))
	w.WriteHeader(http.StatusNoContent)
}

// AddDoctors godoc
// @Summary Добавление врачей в клинику
// @Tags Clinics
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "ID клиники"
// @Param request body DoctorsRequest true "ID врачей"
// @Success 200 {object} models.ClinicWithFavors
// @Failure 404 {object} response.ErrorResponse "Клиника или врачи не найдены"
// @Router /clinics/{id}/doctors [post]
func (h *Handler) AddDoctors(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.clinic.adddoctors")

	id, err := response.IDParam(r, "id")
	if err != nil {
		response.WriteError(w, r, log, err)
		return
	}
	var req DoctorsRequest
	if err := response.Decode(r, h.validate, &req); err != nil {
		response.WriteError(w, r, log, err)
		return
	}

	c, err := h.service.AddDoctors(r.Context(), id, req.DoctorIDs)
	if err != nil {
		response.WriteError(w, r, log, err)
		return
	}
	render.JSON(w, r, c)
}

// RemoveDoctor godoc
// @Summary Удаление врача из клиники
// @Tags Clinics
// @Security BearerAuth
// @Param id path int true "ID клиники"
// @Param doctorId path int true "ID врача"
// @Success 204
// @Failure 400 {object} response.ErrorResponse "Нельзя удалить последнего врача"
// @Failure 404 {object} response.ErrorResponse "Врач не связан с клиникой"
// @Router /clinics/{id}/doctors/{doctorId} [delete]
func (h *Handler) RemoveDoctor(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.clinic.removedoctor")

	id, err := response.IDParam(r, "id")
	if err != nil {
		response.WriteError(w, r, log, err)
		return
	}
	doctorID, err := response.IDParam(r, "doctorId")
	if err != nil {
		response.WriteError(w, r, log, err)
		return
	}
	if err := h.service.RemoveDoctor(r.Context(), id, doctorID); err != nil {
		response.WriteError(w, r, log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
