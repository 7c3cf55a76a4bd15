package clinic

import (
	"context"
	"encoding/json"
	"errors"
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
	clinicservice "github.com/magabrotheeeer/clinic-api/internal/services/clinic"
)

type ServiceMock struct {
	mock.Mock
}

func (m *ServiceMock) Create(ctx context.Context, name string, doctorIDs []int64) (*models.ClinicWithFavors, error) {
	args := m.Called(ctx, name, doctorIDs)
	c, _ := args.Get(0).(*models.ClinicWithFavors)
	return c, args.Error(1)
}

func (m *ServiceMock) List(ctx context.Context, filter models.ClinicFilter) ([]models.ClinicWithFavors, error) {
	args := m.Called(ctx, filter)
	c, _ := args.Get(0).([]models.ClinicWithFavors)
	return c, args.Error(1)
}

func (m *ServiceMock) Get(ctx context.Context, id int64) (*models.ClinicWithFavors, error) {
	args := m.Called(ctx, id)
	c, _ := args.Get(0).(*models.ClinicWithFavors)
	return c, args.Error(1)
}

func (m *ServiceMock) Update(ctx context.Context, id int64, upd clinicservice.Update) (*models.ClinicWithFavors, error) {
	args := m.Called(ctx, id, upd)
	c, _ := args.Get(0).(*models.ClinicWithFavors)
	return c, args.Error(1)
}

func (m *ServiceMock) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *ServiceMock) AddDoctors(ctx context.Context, id int64, doctorIDs []int64) (*models.ClinicWithFavors, error) {
	args := m.Called(ctx, id, doctorIDs)
	c, _ := args.Get(0).(*models.ClinicWithFavors)
	return c, args.Error(1)
}

func (m *ServiceMock) RemoveDoctor(ctx context.Context, id, doctorID int64) error {
	return m.Called(ctx, id, doctorID).Error(0)
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

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) response.ErrorResponse {
	t.Helper()
	var body response.ErrorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	return body
}

var medix = &models.ClinicWithFavors{
	ID:      1,
	Name:    "Medix",
	Doctors: []models.Doctor{{ID: 2, FirstName: "Gregory", LastName: "House", Favors: []models.Favor{{ID: 3, Name: "Therapy"}}}},
	Favors:  []models.Favor{{ID: 3, Name: "Therapy"}},
}

func TestHandler_Create(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		setupMock  func(m *ServiceMock)
		wantStatus int
		wantError  string
	}{
		{
			name: "клиника создана",
			body: `{"name":"Medix","doctorIds":[2]}`,
			setupMock: func(m *ServiceMock) {
				m.On("Create", mock.Anything, "Medix", []int64{2}).Return(medix, nil).Once()
			},
			wantStatus: http.StatusCreated,
		},
		{
			name:       "нет названия",
			body:       `{"doctorIds":[2]}`,
			setupMock:  func(_ *ServiceMock) {},
			wantStatus: http.StatusBadRequest,
			wantError:  "ValidationError",
		},
		{
			name:       "отрицательный id врача",
			body:       `{"name":"Medix","doctorIds":[-1]}`,
			setupMock:  func(_ *ServiceMock) {},
			wantStatus: http.StatusBadRequest,
			wantError:  "ValidationError",
		},
		{
			name: "название занято",
			body: `{"name":"Medix","doctorIds":[2]}`,
			setupMock: func(m *ServiceMock) {
				m.On("Create", mock.Anything, "Medix", []int64{2}).
					Return(nil, apperr.Duplicate("Clinic with this name already exists")).Once()
			},
			wantStatus: http.StatusBadRequest,
			wantError:  "DuplicateResource",
		},
		{
			name: "врачи не найдены",
			body: `{"name":"Medix","doctorIds":[2,9]}`,
			setupMock: func(m *ServiceMock) {
				m.On("Create", mock.Anything, "Medix", []int64{2, 9}).
					Return(nil, apperr.NotFound("Doctors with IDs [9] not found")).Once()
			},
			wantStatus: http.StatusNotFound,
			wantError:  "NotFound",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(ServiceMock)
			tt.setupMock(svc)

			rr := httptest.NewRecorder()
			New(newNoopLogger(), svc).Create(rr, newRequest(http.MethodPost, "/api/v1/clinics", tt.body, nil))

			assert.Equal(t, tt.wantStatus, rr.Code)
			if tt.wantError != "" {
				assert.Equal(t, tt.wantError, decodeError(t, rr).Error)
			} else {
				var got models.ClinicWithFavors
				require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
				assert.Equal(t, *medix, got)
			}
			svc.AssertExpectations(t)
		})
	}
}

func TestHandler_List(t *testing.T) {
	t.Run("фильтры передаются в сервис", func(t *testing.T) {
		svc := new(ServiceMock)
		want := models.ClinicFilter{Name: "med", FavorName: "ther", DoctorName: "house", Sort: "desc"}
		svc.On("List", mock.Anything, want).Return([]models.ClinicWithFavors{*medix}, nil).Once()

		rr := httptest.NewRecorder()
		New(newNoopLogger(), svc).List(rr, newRequest(http.MethodGet,
			"/api/v1/clinics?name=med&favorName=ther&doctorName=house&sort=DESC", "", nil))

		assert.Equal(t, http.StatusOK, rr.Code)
		var got []models.ClinicWithFavors
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
		assert.Len(t, got, 1)
		svc.AssertExpectations(t)
	})

	t.Run("пустой список", func(t *testing.T) {
		svc := new(ServiceMock)
		svc.On("List", mock.Anything, models.ClinicFilter{}).Return([]models.ClinicWithFavors{}, nil).Once()

		rr := httptest.NewRecorder()
		New(newNoopLogger(), svc).List(rr, newRequest(http.MethodGet, "/api/v1/clinics", "", nil))

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, `[]`, rr.Body.String())
	})

	t.Run("неизвестная сортировка", func(t *testing.T) {
		svc := new(ServiceMock)

		rr := httptest.NewRecorder()
		New(newNoopLogger(), svc).List(rr, newRequest(http.MethodGet, "/api/v1/clinics?sort=up", "", nil))

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		svc.AssertNotCalled(t, "List", mock.Anything, mock.Anything)
	})
}

func TestHandler_Get(t *testing.T) {
	tests := []struct {
		name       string
		id         string
		setupMock  func(m *ServiceMock)
		wantStatus int
		wantBody   string
	}{
		{
			name: "клиника найдена",
			id:   "1",
			setupMock: func(m *ServiceMock) {
				m.On("Get", mock.Anything, int64(1)).Return(medix, nil).Once()
			},
			wantStatus: http.StatusOK,
			wantBody:   `"name":"Medix"`,
		},
		{
			name:       "нечисловой id",
			id:         "abc",
			setupMock:  func(_ *ServiceMock) {},
			wantStatus: http.StatusBadRequest,
			wantBody:   "numeric string is expected",
		},
		{
			name: "клиника не найдена",
			id:   "42",
			setupMock: func(m *ServiceMock) {
				m.On("Get", mock.Anything, int64(42)).Return(nil, apperr.NotFound("Clinic with ID 42 not found")).Once()
			},
			wantStatus: http.StatusNotFound,
			wantBody:   "Clinic with ID 42 not found",
		},
		{
			name: "ошибка хранилища",
			id:   "7",
			setupMock: func(m *ServiceMock) {
				m.On("Get", mock.Anything, int64(7)).Return(nil, apperr.Internal("clinic.Get", errors.New("db down"))).Once()
			},
			wantStatus: http.StatusInternalServerError,
			wantBody:   apperr.InternalMessage,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(ServiceMock)
			tt.setupMock(svc)

			rr := httptest.NewRecorder()
			New(newNoopLogger(), svc).Get(rr, newRequest(http.MethodGet, "/api/v1/clinics/"+tt.id, "", map[string]string{"id": tt.id}))

			assert.Equal(t, tt.wantStatus, rr.Code)
			assert.Contains(t, rr.Body.String(), tt.wantBody)
			svc.AssertExpectations(t)
		})
	}
}

func TestHandler_Update(t *testing.T) {
	name := "Medix Plus"

	tests := []struct {
		name string
		body string
		want clinicservice.Update
	}{
		{name: "только название", body: `{"name":"Medix Plus"}`, want: clinicservice.Update{Name: &name}},
		{name: "только врачи", body: `{"doctorIds":[2,3]}`, want: clinicservice.Update{DoctorIDs: []int64{2, 3}}},
		{name: "пустой список врачей", body: `{"doctorIds":[]}`, want: clinicservice.Update{DoctorIDs: []int64{}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(ServiceMock)
			svc.On("Update", mock.Anything, int64(1), tt.want).Return(medix, nil).Once()

			rr := httptest.NewRecorder()
			New(newNoopLogger(), svc).Update(rr, newRequest(http.MethodPut, "/api/v1/clinics/1", tt.body, map[string]string{"id": "1"}))

			assert.Equal(t, http.StatusOK, rr.Code)
			svc.AssertExpectations(t)
		})
	}
}

func TestHandler_Delete(t *testing.T) {
	svc := new(ServiceMock)
	svc.On("Delete", mock.Anything, int64(1)).Return(nil).Once()
	svc.On("Delete", mock.Anything, int64(2)).Return(apperr.NotFound("Clinic with ID 2 not found")).Once()

	h := New(newNoopLogger(), svc)

	rr := httptest.NewRecorder()
	h.Delete(rr, newRequest(http.MethodDelete, "/api/v1/clinics/1", "", map[string]string{"id": "1"}))
	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Empty(t, rr.Body.String())

	rr = httptest.NewRecorder()
	h.Delete(rr, newRequest(http.MethodDelete, "/api/v1/clinics/2", "", map[string]string{"id": "2"}))
	assert.Equal(t, http.StatusNotFound, rr.Code)

	svc.AssertExpectations(t)
}

func TestHandler_Doctors(t *testing.T) {
	t.Run("врачи добавлены", func(t *testing.T) {
		svc := new(ServiceMock)
		svc.On("AddDoctors", mock.Anything, int64(1), []int64{2, 3}).Return(medix, nil).Once()

		rr := httptest.NewRecorder()
		New(newNoopLogger(), svc).AddDoctors(rr, newRequest(http.MethodPost, "/api/v1/clinics/1/doctors",
			`{"doctorIds":[2,3]}`, map[string]string{"id": "1"}))

		assert.Equal(t, http.StatusOK, rr.Code)
		svc.AssertExpectations(t)
	})

	t.Run("пустой список врачей", func(t *testing.T) {
		svc := new(ServiceMock)

		rr := httptest.NewRecorder()
		New(newNoopLogger(), svc).AddDoctors(rr, newRequest(http.MethodPost, "/api/v1/clinics/1/doctors",
			`{"doctorIds":[]}`, map[string]string{"id": "1"}))

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		svc.AssertNotCalled(t, "AddDoctors", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("последний врач", func(t *testing.T) {
		svc := new(ServiceMock)
		svc.On("RemoveDoctor", mock.Anything, int64(1), int64(2)).
			Return(apperr.Validation("cannot remove the last doctor from a clinic")).Once()

		rr := httptest.NewRecorder()
		New(newNoopLogger(), svc).RemoveDoctor(rr, newRequest(http.MethodDelete, "/api/v1/clinics/1/doctors/2", "",
			map[string]string{"id": "1", "doctorId": "2"}))

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		body := decodeError(t, rr)
		assert.Equal(t, "ValidationError", body.Error)
		assert.Equal(t, "cannot remove the last doctor from a clinic", body.Message)
	})

	t.Run("врач удален", func(t *testing.T) {
		svc := new(ServiceMock)
		svc.On("RemoveDoctor", mock.Anything, int64(1), int64(3)).Return(nil).Once()

		rr := httptest.NewRecorder()
		New(newNoopLogger(), svc).RemoveDoctor(rr, newRequest(http.MethodDelete, "/api/v1/clinics/1/doctors/3", "",
			map[string]string{"id": "1", "doctorId": "3"}))

		assert.Equal(t, http.StatusNoContent, rr.Code)
		svc.AssertExpectations(t)
	})
}
