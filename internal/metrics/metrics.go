package metrics

import (
	"encoding/json"
	"net/http"

	"github.com/ErlanBelekov/taskboard/internal/health"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTP metrics

	HTTPRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "taskboard",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency.",
		Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "taskboard",
		Name:      "http_requests_total",
		Help:      "Total HTTP requests.",
	}, []string{"method", "path", "status"})

	HTTPInFlight = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "taskboard",
		Name:      "http_requests_in_flight",
		Help:      "Requests currently being served.",
	})

	RateLimitedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "taskboard",
		Name:      "rate_limited_total",
		Help:      "Requests rejected by a rate limiter.",
	}, []string{"limiter"})

	// Auth metrics

	AuthAttemptsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "taskboard",
		Name:      "auth_attempts_total",
		Help:      "Register and login attempts, by outcome.",
	}, []string{"action", "outcome"})

	SessionRejectionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "taskboard",
		Name:      "session_rejections_total",
		Help:      "Requests rejected by the session validator, by reason.",
	}, []string{"reason"})

	// Task metrics

	TaskMutationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "taskboard",
		Name:      "task_mutations_total",
		Help:      "Successful task writes, by operation.",
	}, []string{"op"})
)

func Register() {
	prometheus.MustRegister(
		HTTPRequestDuration,
		HTTPRequestsTotal,
		HTTPInFlight,
		RateLimitedTotal,
		AuthAttemptsTotal,
		SessionRejectionsTotal,
		TaskMutationsTotal,
	)
}

// NewServer serves /metrics plus liveness and readiness probes on a port
// separate from the public API.
func NewServer(addr string, checker *health.Checker) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeHealth(w, checker.Liveness(r.Context()))
	})
	mux.HandleFunc("/readyz", func(w http.ResponseWriter, r *http.Request) {
		writeHealth(w, checker.Readiness(r.Context()))
	})
	return &http.Server{Addr: addr, Handler: mux}
}

func writeHealth(w http.ResponseWriter, result health.HealthResult) {
	w.Header().Set("Content-Type", "application/json")
	if result.Status != health.StatusUp {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	_ = json.NewEncoder(w).Encode(result)
}
