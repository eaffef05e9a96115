package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"route66-trip-service/internal/adapters/repositories"
	"route66-trip-service/internal/api/dto"
	"route66-trip-service/internal/domain"
	"route66-trip-service/internal/services"
)

type fakePlanner struct {
	planErr     error
	validateErr error
	gotPlan     services.PlanTripRequest
	gotIDs      []string
}

func (f *fakePlanner) Plan(_ context.Context, req services.PlanTripRequest) (*services.PlanResult, error) {
	f.gotPlan = req
	if f.planErr != nil {
		return nil, f.planErr
	}
	tulsa := domain.Stop{ID: "tulsa-ok", Name: "Tulsa", State: "OK", Category: domain.CategoryDestinationCity}
	amarillo := domain.Stop{ID: "amarillo-tx", Name: "Amarillo", State: "TX", Category: domain.CategoryDestinationCity}
	return &services.PlanResult{
		Plan: &domain.TripPlan{
			ID:        uuid.MustParse("6f1c2d9e-8c1b-4f61-9a44-0f3f2f4b5d10"),
			StartCity: tulsa,
			EndCity:   amarillo,
			Segments: []domain.DailySegment{{
				Day: 1, Start: tulsa, End: amarillo,
				DistanceMiles: 333.27, DriveTimeHours: 7.69,
				Source: domain.DistanceSourceGeometry, Attractions: []domain.Stop{},
			}},
			TotalDistanceMiles:  333.27,
			TotalDriveTimeHours: 7.69,
			RequestedDays:       1,
			RealizedDays:        1,
			CreatedAt:           time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC),
		},
		Validation: domain.ValidationReport{IsRecommended: true, Summary: "ok", Balance: domain.BalanceExcellent, SegmentDriveHours: []float64{7.69}},
	}, nil
}

func (f *fakePlanner) ValidateStops(_ context.Context, ids []string) (domain.ValidationReport, error) {
	f.gotIDs = ids
	if f.validateErr != nil {
		return domain.ValidationReport{}, f.validateErr
	}
	return domain.ValidationReport{IsRecommended: true, Summary: "fine", LongestDayIndex: 0}, nil
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

func TestHealth(t *testing.T) {
	h := Health(nil)

	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", decode[map[string]string](t, rec)["status"])

	rec = httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodPost, "/health", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, http.MethodGet, rec.Header().Get("Allow"))
}

func TestStopHandler_List(t *testing.T) {
	repo := repositories.NewMemoryStopRepository([]domain.Stop{
		{ID: "tulsa-ok", Name: "Tulsa", Category: domain.CategoryDestinationCity},
		{ID: "blue-whale-ok", Name: "Blue Whale of Catoosa", Category: domain.CategoryAttraction},
	})
	h := &StopHandler{Repo: repo}

	rec := httptest.NewRecorder()
	h.List(rec, httptest.NewRequest(http.MethodGet, "/stops", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[dto.ListStopsResponse](t, rec).Stops, 2)

	rec = httptest.NewRecorder()
	h.List(rec, httptest.NewRequest(http.MethodGet, "/stops?category=attraction", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	stops := decode[dto.ListStopsResponse](t, rec).Stops
	require.Len(t, stops, 1)
	assert.Equal(t, "blue-whale-ok", stops[0].ID)

	rec = httptest.NewRecorder()
	h.List(rec, httptest.NewRequest(http.MethodGet, "/stops?category=spaceport", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

type failingRepo struct{ *repositories.MemoryStopRepository }

func (failingRepo) ListStops(context.Context) ([]domain.Stop, error) {
	return nil, errors.New("db down")
}

func TestStopHandler_ListRepositoryError(t *testing.T) {
	h := &StopHandler{Repo: failingRepo{}}

	rec := httptest.NewRecorder()
	h.List(rec, httptest.NewRequest(http.MethodGet, "/stops", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "db down")
}

func TestTripHandler_Plan(t *testing.T) {
	planner := &fakePlanner{}
	h := &TripHandler{Planner: planner}

	body := `{"start_stop_id":"tulsa-ok","end_stop_id":"amarillo-tx","requested_days":3}`
	rec := httptest.NewRecorder()
	h.Plan(rec, httptest.NewRequest(http.MethodPost, "/trips", strings.NewReader(body)))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, services.PlanTripRequest{StartStopID: "tulsa-ok", EndStopID: "amarillo-tx", RequestedDays: 3}, planner.gotPlan)

	res := decode[dto.TripResponse](t, rec)
	assert.Equal(t, "6f1c2d9e-8c1b-4f61-9a44-0f3f2f4b5d10", res.ID)
	require.Len(t, res.Segments, 1)
	assert.Equal(t, 333.3, res.Segments[0].DistanceMiles)
	assert.Equal(t, 7.7, res.Segments[0].DriveTimeHours)
	assert.Equal(t, "geometry", res.Segments[0].Source)
	assert.NotNil(t, res.Segments[0].Attractions)
	assert.True(t, res.Validation.IsRecommended)
	assert.Equal(t, "excellent", res.Validation.Balance)
}

func TestTripHandler_PlanErrors(t *testing.T) {
	tests := []struct {
		name   string
		method string
		body   string
		err    error
		want   int
	}{
		{"wrong method", http.MethodGet, "", nil, http.StatusMethodNotAllowed},
		{"malformed json", http.MethodPost, `{"start_stop_id":`, nil, http.StatusBadRequest},
		{"unknown field", http.MethodPost, `{"start":"tulsa-ok"}`, nil, http.StatusBadRequest},
		{"two objects", http.MethodPost, `{} {}`, nil, http.StatusBadRequest},
		{"unknown stop", http.MethodPost, `{"start_stop_id":"x","end_stop_id":"y"}`, fmt.Errorf("plan trip: start: %w", services.ErrStopNotFound), http.StatusNotFound},
		{"invalid request", http.MethodPost, `{"start_stop_id":"x","end_stop_id":"x"}`, fmt.Errorf("plan trip: %w", services.ErrInvalidRequest), http.StatusBadRequest},
		{"repository failure", http.MethodPost, `{"start_stop_id":"x","end_stop_id":"y"}`, errors.New("connection refused"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := &TripHandler{Planner: &fakePlanner{planErr: tt.err}}
			rec := httptest.NewRecorder()
			h.Plan(rec, httptest.NewRequest(tt.method, "/trips", strings.NewReader(tt.body)))
			assert.Equal(t, tt.want, rec.Code)
			assert.Contains(t, decode[map[string]string](t, rec), "error")
		})
	}
}

func TestTripHandler_Validate(t *testing.T) {
	planner := &fakePlanner{}
	h := &TripHandler{Planner: planner}

	rec := httptest.NewRecorder()
	h.Validate(rec, httptest.NewRequest(http.MethodPost, "/trips/validate",
		strings.NewReader(`{"stop_ids":["chicago-il","st-louis-mo","tulsa-ok"]}`)))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"chicago-il", "st-louis-mo", "tulsa-ok"}, planner.gotIDs)
	assert.Equal(t, "fine", decode[dto.ValidationResponse](t, rec).Summary)

	h = &TripHandler{Planner: &fakePlanner{validateErr: fmt.Errorf("validate: %w", services.ErrInvalidRequest)}}
	rec = httptest.NewRecorder()
	h.Validate(rec, httptest.NewRequest(http.MethodPost, "/trips/validate", strings.NewReader(`{"stop_ids":["a"]}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
