package api

import (
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"

	"route66-trip-service/internal/api/handlers"
	"route66-trip-service/internal/ports"
)

type RouterDeps struct {
	Repo        ports.StopRepository
	Planner     handlers.TripPlanner
	Logger      *slog.Logger
	CORSOrigins []string
}

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
// This is the API composition root (handlers stay unaware of concrete adapters).
func NewRouter(deps RouterDeps) http.Handler {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	mux := http.NewServeMux()

	stopHandler := &handlers.StopHandler{Repo: deps.Repo, Logger: logger}
	tripHandler := &handlers.TripHandler{Planner: deps.Planner, Logger: logger}

	mux.HandleFunc("/health", handlers.Health(logger))
	mux.HandleFunc("/stops", stopHandler.List)
	mux.HandleFunc("/trips", tripHandler.Plan)
	mux.HandleFunc("/trips/validate", tripHandler.Validate)
	mux.Handle("/metrics", promhttp.Handler())

	origins := deps.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	c := cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", requestIDHeader},
		ExposedHeaders: []string{requestIDHeader},
		MaxAge:         600,
	})

	return requestIDMiddleware(loggingMiddleware(logger, c.Handler(mux)))
}
