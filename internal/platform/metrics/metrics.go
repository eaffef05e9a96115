package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	PlansTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "route66",
		Name:      "trip_plans_total",
		Help:      "Trip plans produced, by outcome (full, reduced, direct, error).",
	}, []string{"outcome"})

	PlanDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "route66",
		Name:      "trip_plan_duration_seconds",
		Help:      "Time spent planning a trip.",
		Buckets:   prometheus.DefBuckets,
	})

	LiveDistanceCalls = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "route66",
		Name:      "live_distance_calls_total",
		Help:      "Live distance lookups, by result (live, cached, fallback, skipped).",
	}, []string{"result"})

	GapsDetected = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "route66",
		Name:      "driving_gaps_total",
		Help:      "Driving gaps reported by validation, by severity.",
	}, []string{"severity"})

	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "route66",
		Name:      "http_requests_total",
		Help:      "HTTP requests served, by route and status code.",
	}, []string{"route", "code"})
)
