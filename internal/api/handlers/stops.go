package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"route66-trip-service/internal/api/dto"
	"route66-trip-service/internal/domain"
	"route66-trip-service/internal/ports"
)

// StopHandler exposes read-only stop pool retrieval.
type StopHandler struct {
	Repo   ports.StopRepository
	Logger *slog.Logger
}

// List serves GET /stops with an optional ?category= filter.
func (h *StopHandler) List(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, h.Logger, http.MethodGet) {
		return
	}

	var (
		stops []domain.Stop
		err   error
	)
	if raw := strings.TrimSpace(r.URL.Query().Get("category")); raw != "" {
		category, perr := domain.ParseCategory(raw)
		if perr != nil {
			writeError(w, r, h.Logger, http.StatusBadRequest, perr.Error())
			return
		}
		stops, err = h.Repo.ListStopsByCategory(r.Context(), category)
	} else {
		stops, err = h.Repo.ListStops(r.Context())
	}
	if err != nil {
		loggerOrDefault(h.Logger).ErrorContext(r.Context(), "list stops failed", slog.Any("err", err))
		writeError(w, r, h.Logger, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, r, h.Logger, http.StatusOK, dto.ListStopsResponse{Stops: dto.FromStops(stops)})
}
