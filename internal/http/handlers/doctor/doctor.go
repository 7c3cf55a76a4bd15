// Package doctor реализует HTTP-обработчики справочника врачей и их услуг.
package doctor

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/clinic-api/internal/http/response"
	"github.com/magabrotheeeer/clinic-api/internal/lib/apperr"
	"github.com/magabrotheeeer/clinic-api/internal/models"
)

// Service описывает бизнес-логику врачей.
type Service interface {
	Create(ctx context.Context, d models.Doctor) (*models.Doctor, error)
	List(ctx context.Context, filter models.DoctorFilter) ([]models.Doctor, error)
	Get(ctx context.Context, id int64) (*models.Doctor, error)
	Update(ctx context.Context, id int64, upd models.DoctorUpdate) (*models.Doctor, error)
	Delete(ctx context.Context, id int64) error
	AddFavors(ctx context.Context, id int64, favorIDs []int64) (*models.Doctor, error)
	RemoveFavor(ctx context.Context, id, favorID int64) error
	ReplaceFavors(ctx context.Context, id int64, favorIDs []int64) (*models.Doctor, error)
}

// CreateRequest входные данные для создания врача.
type CreateRequest struct {
	FirstName   string `json:"firstName" validate:"required,max=100" example:"John"`
	LastName    string `json:"lastName" validate:"required,max=100" example:"Doe"`
	PhoneNumber string `json:"phoneNumber" validate:"required,min=7,max=20" example:"+380501234567"`
	Email       string `json:"email" validate:"required,email" example:"john.doe@example.com"`
}

// UpdateRequest частичное обновление врача.
type UpdateRequest struct {
	FirstName   *string `json:"firstName" validate:"omitempty,min=1,max=100"`
	LastName    *string `json:"lastName" validate:"omitempty,min=1,max=100"`
	PhoneNumber *string `json:"phoneNumber" validate:"omitempty,min=7,max=20"`
	Email       *string `json:"email" validate:"omitempty,email"`
}

// AddFavorsRequest услуги для назначения врачу.
type AddFavorsRequest struct {
	FavorIDs []int64 `json:"favorIds" validate:"required,min=1,dive,gt=0"`
}

// ReplaceFavorsRequest полный набор услуг врача, пустой массив снимает все.
type ReplaceFavorsRequest struct {
	FavorIDs []int64 `json:"favorIds" validate:"dive,gt=0"`
}

// Handler обрабатывает HTTP-запросы к врачам.
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
// @Summary Создание врача
// @Tags Doctors
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateRequest true "Врач"
// @Success 201 {object} models.Doctor
// @Failure 400 {object} response.ErrorResponse "Ошибка валидации, email или телефон заняты"
// @Failure 403 {object} response.ErrorResponse "Недостаточно прав"
// @Router /doctors [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.doctor.create")

	var req CreateRequest
	if err := response.Decode(r, h.validate, &req); err != nil {
		response.WriteError(w, r, log, err)
		return
	}

	d, err := h.service.Create(r.Context(), models.Doctor{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		PhoneNumber: req.PhoneNumber,
		Email:       req.Email,
	})
	if err != nil {
		response.WriteError(w, r, log, err)
		return
	}

	log.Info("doctor created", slog.Int64("id", d.ID))
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, d)
}

// List godoc
// @Summary Список врачей
// @Tags Doctors
// @Produce json
// @Security BearerAuth
// @Param firstName query string false "Часть имени"
// @Param lastName query string false "Часть фамилии"
// @Param phoneNumber query string false "Часть телефона"
// @Param email query string false "Часть email"
// @Param sortBy query string false "firstName или lastName"
// @Param sortOrder query string false "asc или desc"
// @Success 200 {array} models.Doctor
// @Failure 400 {object} response.ErrorResponse "Некорректная сортировка"
// @Router /doctors [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.doctor.list")

	q := r.URL.Query()
	sortBy := q.Get("sortBy")
	switch sortBy {
	case "":
		sortBy = models.SortByFirstName
	case models.SortByFirstName, models.SortByLastName:
	default:
		response.WriteError(w, r, log, apperr.Validation("query parameter sortBy must be firstName or lastName"))
		return
	}
	sortOrder, err := response.SortParam(r, "sortOrder")
	if err != nil {
		response.WriteError(w, r, log, err)
		return
	}
	if sortOrder == "" {
		sortOrder = models.SortAsc
	}

	doctors, err := h.service.List(r.Context(), models.DoctorFilter{
		FirstName:   q.Get("firstName"),
		LastName:    q.Get("lastName"),
		PhoneNumber: q.Get("phoneNumber"),
		Email:       q.Get("email"),
		SortBy:      sortBy,
		SortOrder:   sortOrder,
	})
	if err != nil {
		response.WriteError(w, r, log, err)
		return
	}
	render.JSON(w, r, doctors)
}

// Get godoc
// @Summary Врач по ID
// @Tags Doctors
// @Produce json
// @Security BearerAuth
// @Param id path int true "ID врача"
// @Success 200 {object} models.Doctor
// @Failure 404 {object} response.ErrorResponse "Врач не найден"
// @Router /doctors/{id} [get]
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.doctor.get")

	id, err := response.IDParam(r, "id")
	if err != nil {
		response.WriteError(w, r, log, err)
		return
	}
	d, err := h.service.Get(r.Context(), id)
	if err != nil {
		response.WriteError(w, r, log, err)
		return
	}
	render.JSON(w, r, d)
}

// Update godoc
// @Summary Обновление врача
// @Tags Doctors
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "ID врача"
// @Param request body UpdateRequest true "Поля для изменения"
// @Success 200 {object} models.Doctor
// @Failure 400 {object} response.ErrorResponse "Ошибка валидации, email или телефон заняты"
// @Failure 404 {object} response.ErrorResponse "Врач не найден"
// @Router /doctors/{id} [put]
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.doctor.update")

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

	d, err := h.service.Update(r.Context(), id, models.DoctorUpdate{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		PhoneNumber: req.PhoneNumber,
		Email:       req.Email,
	})
	if err != nil {
		response.WriteError(w, r, log, err)
		return
	}

	log.Info("doctor updated", slog.Int64("id", id))
	render.JSON(w, r, d)
}

// Delete godoc
// @Summary Удаление врача
// @Tags Doctors
// @Security BearerAuth
// @Param id path int true "ID врача"
// @Success 204
// @Failure 404 {object} response.ErrorResponse "Врач не найден"
// @Router /doctors/{id} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.doctor.delete")

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

// AddFavors godoc
// @Summary Назначение услуг врачу
// @Tags Doctors
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "ID врача"
// @Param request body AddFavorsRequest true "ID услуг"
// @Success 200 {object} models.Doctor
// @Failure 400 {object} response.ErrorResponse "Все услуги уже назначены"
// @Failure 404 {object} response.ErrorResponse "Врач или услуги не найдены"
// @Router /doctors/{id}/favors [post]
func (h *Handler) AddFavors(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.doctor.addfavors")

	id, err := response.IDParam(r, "id")
	if err != nil {
		response.WriteError(w, r, log, err)
		return
	}
	var req AddFavorsRequest
	if err := response.Decode(r, h.validate, &req); err != nil {
		response.WriteError(w, r, log, err)
		return
	}

	d, err := h.service.AddFavors(r.Context(), id, req.FavorIDs)
	if err != nil {
		response.WriteError(w, r, log, err)
		return
	}
	render.JSON(w, r, d)
}

// ReplaceFavors godoc
// @Summary Замена набора услуг врача
// @Tags Doctors
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "ID врача"
// @Param request body ReplaceFavorsRequest true "ID услуг"
// @Success 200 {object} models.Doctor
// @Failure 404 {object} response.ErrorResponse "Врач или услуги не найдены"
// @Router /doctors/{id}/favors [put]
func (h *Handler) ReplaceFavors(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.doctor.replacefavors")

	id, err := response.IDParam(r, "id")
	if err != nil {
		response.WriteError(w, r, log, err)
		return
	}
	var req ReplaceFavorsRequest
	if err := response.Decode(r, h.validate, &req); err != nil {
		response.WriteError(w, r, log, err)
		return
	}

	d, err := h.service.ReplaceFavors(r.Context(), id, req.FavorIDs)
	if err != nil {
		response.WriteError(w, r, log, err)
		return
	}
	render.JSON(w, r, d)
}

// RemoveFavor godoc
// @Summary Снятие услуги с врача
// @Tags Doctors
// @Security BearerAuth
// @Param id path int true "ID врача"
// @Param favorId path int true "ID услуги"
// @Success 204
// @Failure 404 {object} response.ErrorResponse "Услуга не назначена врачу"
// @Router /doctors/{id}/favors/{favorId} [delete]
func (h *Handler) RemoveFavor(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.doctor.removefavor")

	id, err := response.IDParam(r, "id")
	if err != nil {
		response.WriteError(w, r, log, err)
		return
	}
	favorID, err := response.IDParam(r, "favorId")
	if err != nil {
		response.WriteError(w, r, log, err)
		return
	}
	if err := h.service.RemoveFavor(r.Context(), id, favorID); err != nil {
		response.WriteError(w, r, log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
