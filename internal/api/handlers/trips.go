package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"route66-trip-service/internal/api/dto"
	"route66-trip-service/internal/domain"
	"route66-trip-service/internal/services"
)

// TripPlanner is the part of services.TripPlanner the HTTP layer needs.
type TripPlanner interface {
	Plan(ctx context.Context, req services.PlanTripRequest) (*services.PlanResult, error)
	ValidateStops(ctx context.Context, ids []string) (domain.ValidationReport, error)
}

type TripHandler struct {
	Planner TripPlanner
	Logger  *slog.Logger
}

// Plan serves POST /trips.
func (h *TripHandler) Plan(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, h.Logger, http.MethodPost) {
		return
	}

	var req dto.TripRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, h.Logger, http.StatusBadRequest, err.Error())
		return
	}

	res, err := h.Planner.Plan(r.Context(), services.PlanTripRequest{
		StartStopID:   req.StartStopID,
		EndStopID:     req.EndStopID,
		RequestedDays: req.RequestedDays,
	})
	if err != nil {
		h.writeServiceError(w, r, "plan trip failed", err)
		return
	}

	writeJSON(w, r, h.Logger, http.StatusOK, dto.FromTripPlan(res.Plan, res.Validation))
}

// Validate serves POST /trips/validate for an arbitrary ordered stop list.
func (h *TripHandler) Validate(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, h.Logger, http.MethodPost) {
		return
	}

	var req dto.ValidateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, h.Logger, http.StatusBadRequest, err.Error())
		return
	}

	report, err := h.Planner.ValidateStops(r.Context(), req.StopIDs)
	if err != nil {
		h.writeServiceError(w, r, "validate stops failed", err)
		return
	}

	writeJSON(w, r, h.Logger, http.StatusOK, dto.FromValidation(report))
}

func (h *TripHandler) writeServiceError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	switch {
	case errors.Is(err, services.ErrStopNotFound):
		writeError(w, r, h.Logger, http.StatusNotFound, err.Error())
	case errors.Is(err, services.ErrInvalidRequest):
		writeError(w, r, h.Logger, http.StatusBadRequest, err.Error())
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		writeError(w, r, h.Logger, http.StatusServiceUnavailable, "request cancelled")
	default:
		loggerOrDefault(h.Logger).ErrorContext(r.Context(), msg, slog.Any("err", err))
		writeError(w, r, h.Logger, http.StatusInternalServerError, "internal server error")
	}
}
