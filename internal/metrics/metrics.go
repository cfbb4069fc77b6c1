package metrics

import (
	"encoding/json"
	"net/http"

	"github.com/nursultanov/user-dashboard/internal/health"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTP metrics

	HTTPRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "userdash",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency.",
		Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "userdash",
		Name:      "http_requests_total",
		Help:      "Total HTTP requests.",
	}, []string{"method", "path", "status"})

	// Store metrics

	StoreOperationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "userdash",
		Name:      "store_operations_total",
		Help:      "Total document-store operations, by operation and outcome.",
	}, []string{"operation", "outcome"})

	// Auth metrics

	SignInsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "userdash",
		Name:      "sign_ins_total",
		Help:      "Total sign-in attempts, by outcome.",
	}, []string{"outcome"})

	RevocationsSweptTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "userdash",
		Name:      "revocations_swept_total",
		Help:      "Expired revoked sessions removed by the cleanup job.",
	})
)

func Register() {
	prometheus.MustRegister(
		HTTPRequestDuration,
		HTTPRequestsTotal,
		StoreOperationsTotal,
		SignInsTotal,
		RevocationsSweptTotal,
	)
}

// NewServer serves Prometheus metrics plus liveness/readiness probes on a
// listener separate from the API.
func NewServer(addr string, checker *health.Checker) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeResult(w, checker.Liveness(r.Context()))
	})
	mux.HandleFunc("/readyz", func(w http.ResponseWriter, r *http.Request) {
		writeResult(w, checker.Readiness(r.Context()))
	})
	return &http.Server{Addr: addr, Handler: mux}
}

func writeResult(w http.ResponseWriter, result health.HealthResult) {
	w.Header().Set("Content-Type", "application/json")
	if result.Status != "up" {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	_ = json.NewEncoder(w).Encode(result)
}
