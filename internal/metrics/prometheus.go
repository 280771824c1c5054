package metrics

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	CollectionRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ghi_collection_runs_total",
			Help: "Total collection cycles by source and outcome",
		},
		[]string{"source", "status"},
	)

	CollectionDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ghi_collection_duration_seconds",
			Help:    "Collection cycle duration in seconds",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30},
		},
		[]string{"source"},
	)

	SignalsInserted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ghi_signals_inserted_total",
			Help: "Total new signals persisted by source",
		},
		[]string{"source"},
	)

	TriageDecisions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ghi_triage_decisions_total",
			Help: "Total triage decisions by outcome",
		},
		[]string{"decision"},
	)

	AssessmentTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ghi_assessment_transitions_total",
			Help: "Total assessment state transitions",
		},
		[]string{"transition"},
	)

	EscalationResolutions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ghi_escalation_resolutions_total",
			Help: "Total director escalation resolutions by outcome",
		},
		[]string{"decision"},
	)

	SocialPromotions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ghi_social_promotions_total",
			Help: "Total social signal verification outcomes",
		},
		[]string{"outcome"},
	)

	RelevanceScore = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "ghi_social_relevance_score",
			Help:    "Relevance scores assigned to collected social posts",
			Buckets: []float64{10, 20, 30, 40, 50, 60, 70, 80, 90, 100},
		},
	)

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ghi_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		},
		[]string{"method", "route", "status"},
	)
)

func Init() {
	prometheus.MustRegister(CollectionRuns)
	prometheus.MustRegister(CollectionDuration)
	prometheus.MustRegister(SignalsInserted)
	prometheus.MustRegister(TriageDecisions)
	prometheus.MustRegister(AssessmentTransitions)
	prometheus.MustRegister(EscalationResolutions)
	prometheus.MustRegister(SocialPromotions)
	prometheus.MustRegister(RelevanceScore)
	prometheus.MustRegister(HTTPRequestDuration)
}

func MetricsHandler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.Handler())
}
