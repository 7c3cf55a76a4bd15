package doctor

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/clinic-api/internal/http/response"
	"github.com/magabrotheeeer/clinic-api/internal/lib/apperr"
	"github.com/magabrotheeeer/clinic-api/internal/models"
)

type ServiceMock struct {
	mock.Mock
}

func (m *ServiceMock) Create(ctx context.Context, d models.Doctor) (*models.Doctor, error) {
	args := m.Called(ctx, d)
	res, _ := args.Get(0).(*models.Doctor)
	return res, args.Error(1)
}

func (m *ServiceMock) List(ctx context.Context, filter models.DoctorFilter) ([]models.Doctor, error) {
	args := m.Called(ctx, filter)
	res, _ := args.Get(0).([]models.Doctor)
	return res, args.Error(1)
}

func (m *ServiceMock) Get(ctx context.Context, id int64) (*models.Doctor, error) {
	args := m.Called(ctx, id)
	res, _ := args.Get(0).(*models.Doctor)
	return res, args.Error(1)
}

func (m *ServiceMock) Update(ctx context.Context, id int64, upd models.DoctorUpdate) (*models.Doctor, error) {
	args := m.Called(ctx, id, upd)
	res, _ := args.Get(0).(*models.Doctor)
	return res, args.Error(1)
}

func (m *ServiceMock) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *ServiceMock) AddFavors(ctx context.Context, id int64, favorIDs []int64) (*models.Doctor, error) {
	args := m.Called(ctx, id, favorIDs)
	res, _ := args.Get(0).(*models.Doctor)
	return res, args.Error(1)
}

func (m *ServiceMock) RemoveFavor(ctx context.Context, id, favorID int64) error {
	return m.Called(ctx, id, favorID).Error(0)
}

func (m *ServiceMock) ReplaceFavors(ctx context.Context, id int64, favorIDs []int64) (*models.Doctor, error) {
	args := m.Called(ctx, id, favorIDs)
	res, _ := args.Get(0).(*models.Doctor)
	return res, args.Error(1)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func newRequest(method, target, body string, params map[string]string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	rctx := chi.NewRouteContext()
	for k, v := range params {
		rctx.URLParams.Add(k, v)
	}
	ctx := context.WithValue(req.Context(), chi.RouteCtxKey, rctx)
	ctx = context.WithValue(ctx, middleware.RequestIDKey, "reqid123")
	return req.WithContext(ctx)
}

var house = &models.Doctor{
	ID:          1,
	FirstName:   "Gregory",
	LastName:    "House",
	PhoneNumber: "+15550001",
	Email:       "house@x.com",
}

func TestHandler_Create(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		setupMock  func(m *ServiceMock)
		wantStatus int
		wantBody   string
	}{
		{
			name: "врач создан",
			body: `{"firstName":"Gregory","lastName":"House","phoneNumber":"+15550001","email":"house@x.com"}`,
			setupMock: func(m *ServiceMock) {
				m.On("Create", mock.Anything, models.Doctor{
					FirstName: "Gregory", LastName: "House", PhoneNumber: "+15550001", Email: "house@x.com",
				}).Return(house, nil).Once()
			},
			wantStatus: http.StatusCreated,
			wantBody:   `"firstName":"Gregory"`,
		},
		{
			name:       "нет фамилии",
			body:       `{"firstName":"Gregory","phoneNumber":"+15550001","email":"house@x.com"}`,
			setupMock:  func(_ *ServiceMock) {},
			wantStatus: http.StatusBadRequest,
			wantBody:   "field lastName is a required field",
		},
		{
			name: "email занят",
			body: `{"firstName":"Gregory","lastName":"House","phoneNumber":"+15550001","email":"house@x.com"}`,
			setupMock: func(m *ServiceMock) {
				m.On("Create", mock.Anything, mock.Anything).
					Return(nil, apperr.Duplicate("Doctor with this email already exists")).Once()
			},
			wantStatus: http.StatusBadRequest,
			wantBody:   "Doctor with this email already exists",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(ServiceMock)
			tt.setupMock(svc)

			rr := httptest.NewRecorder()
			New(newNoopLogger(), svc).Create(rr, newRequest(http.MethodPost, "/api/v1/doctors", tt.body, nil))

			assert.Equal(t, tt.wantStatus, rr.Code)
			assert.Contains(t, rr.Body.String(), tt.wantBody)
			svc.AssertExpectations(t)
		})
	}
}

func TestHandler_List(t *testing.T) {
	tests := []struct {
		name       string
		query      string
		want       *models.DoctorFilter
		wantStatus int
	}{
		{
			name:       "сортировка по умолчанию",
			query:      "",
			want:       &models.DoctorFilter{SortBy: models.SortByFirstName, SortOrder: models.SortAsc},
			wantStatus: http.StatusOK,
		},
		{
			name:  "все фильтры",
			query: "?firstName=greg&lastName=hou&phoneNumber=555&email=x.com&sortBy=lastName&sortOrder=desc",
			want: &models.DoctorFilter{
				FirstName: "greg", LastName: "hou", PhoneNumber: "555", Email: "x.com",
				SortBy: models.SortByLastName, SortOrder: models.SortDesc,
			},
			wantStatus: http.StatusOK,
		},
		{
			name:       "неизвестное поле сортировки",
			query:      "?sortBy=email",
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "неизвестное направление",
			query:      "?sortOrder=sideways",
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(ServiceMock)
			if tt.want != nil {
				svc.On("List", mock.Anything, *tt.want).Return([]models.Doctor{*house}, nil).Once()
			}

			rr := httptest.NewRecorder()
			New(newNoopLogger(), svc).List(rr, newRequest(http.MethodGet, "/api/v1/doctors"+tt.query, "", nil))

			assert.Equal(t, tt.wantStatus, rr.Code)
			svc.AssertExpectations(t)
		})
	}
}

func TestHandler_Update(t *testing.T) {
	email := "new@x.com"
	svc := new(ServiceMock)
	svc.On("Update", mock.Anything, int64(1), models.DoctorUpdate{Email: &email}).Return(house, nil).Once()

	rr := httptest.NewRecorder()
	New(newNoopLogger(), svc).Update(rr, newRequest(http.MethodPut, "/api/v1/doctors/1", `{"email":"new@x.com"}`, map[string]string{"id": "1"}))

	assert.Equal(t, http.StatusOK, rr.Code)
	svc.AssertExpectations(t)
}

func TestHandler_GetAndDelete(t *testing.T) {
	svc := new(ServiceMock)
	svc.On("Get", mock.Anything, int64(5)).Return(nil, apperr.NotFound("Doctor with ID 5 not found")).Once()
	svc.On("Delete", mock.Anything, int64(1)).Return(nil).Once()
	h := New(newNoopLogger(), svc)

	rr := httptest.NewRecorder()
	h.Get(rr, newRequest(http.MethodGet, "/api/v1/doctors/5", "", map[string]string{"id": "5"}))
	assert.Equal(t, http.StatusNotFound, rr.Code)
	var body response.ErrorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "Doctor with ID 5 not found", body.Message)
	assert.Equal(t, "/api/v1/doctors/5", body.Path)

	rr = httptest.NewRecorder()
	h.Delete(rr, newRequest(http.MethodDelete, "/api/v1/doctors/1", "", map[string]string{"id": "1"}))
	assert.Equal(t, http.StatusNoContent, rr.Code)

	rr = httptest.NewRecorder()
	h.Delete(rr, newRequest(http.MethodDelete, "/api/v1/doctors/0", "", map[string]string{"id": "0"}))
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	svc.AssertExpectations(t)
}

func TestHandler_Favors(t *testing.T) {
	t.Run("услуги уже назначены", func(t *testing.T) {
		svc := new(ServiceMock)
		svc.On("AddFavors", mock.Anything, int64(1), []int64{3}).
			Return(nil, apperr.Duplicate("All specified favors are already assigned to this doctor")).Once()

		rr := httptest.NewRecorder()
		New(newNoopLogger(), svc).AddFavors(rr, newRequest(http.MethodPost, "/api/v1/doctors/1/favors", `{"favorIds":[3]}`, map[string]string{"id": "1"}))

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Contains(t, rr.Body.String(), "DuplicateResource")
	})

	t.Run("замена на пустой набор", func(t *testing.T) {
		svc := new(ServiceMock)
		svc.On("ReplaceFavors", mock.Anything, int64(1), []int64{}).Return(house, nil).Once()

		rr := httptest.NewRecorder()
		New(newNoopLogger(), svc).ReplaceFavors(rr, newRequest(http.MethodPut, "/api/v1/doctors/1/favors", `{"favorIds":[]}`, map[string]string{"id": "1"}))

		assert.Equal(t, http.StatusOK, rr.Code)
		svc.AssertExpectations(t)
	})

	t.Run("услуга не назначена", func(t *testing.T) {
		svc := new(ServiceMock)
		svc.On("RemoveFavor", mock.Anything, int64(1), int64(9)).
			Return(apperr.NotFound("Favor with ID 9 is not assigned to this doctor")).Once()

		rr := httptest.NewRecorder()
		New(newNoopLogger(), svc).RemoveFavor(rr, newRequest(http.MethodDelete, "/api/v1/doctors/1/favors/9", "",
			map[string]string{"id": "1", "favorId": "9"}))

		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("услуга снята", func(t *testing.T) {
		svc := new(ServiceMock)
		svc.On("RemoveFavor", mock.Anything, int64(1), int64(3)).Return(nil).Once()

		rr := httptest.NewRecorder()
		New(newNoopLogger(), svc).RemoveFavor(rr, newRequest(http.MethodDelete, "/api/v1/doctors/1/favors/3", "",
			map[string]string{"id": "1", "favorId": "3"}))

		assert.Equal(t, http.StatusNoContent, rr.Code)
		svc.AssertExpectations(t)
	})
}
