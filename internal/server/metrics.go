package server

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus collectors of one server.
type Metrics struct {
	registry       *prometheus.Registry
	duration       *prometheus.SummaryVec
	requests       *prometheus.CounterVec
	analyses       *prometheus.CounterVec
	sourceFailures *prometheus.CounterVec
}

// NewMetrics registers the service collectors on reg. A nil reg gets a fresh registry.
func NewMetrics(reg *prometheus.Registry) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		duration: factory.NewSummaryVec(
			prometheus.SummaryOpts{
				Name: "http_request_duration_seconds",
				Help: "HTTP request duration in seconds",
				Objectives: map[float64]float64{
					0.5:  0.05,
					0.9:  0.01,
					0.95: 0.005,
					0.99: 0.001,
				},
			},
			[]string{"method", "path", "status_code"},
		),
		requests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status_code"},
		),
		analyses: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "skill_analyses_total",
				Help: "Resume analyses by endpoint and outcome",
			},
			[]string{"endpoint", "outcome"},
		),
		sourceFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "recommend_source_failures_total",
				Help: "Failed recommendation source lookups",
			},
			[]string{"source"},
		),
	}
}

// Registry returns the registry the collectors live on.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// SourceFailure counts a failed lookup. Its signature matches recommend.FailureFunc.
func (m *Metrics) SourceFailure(source, _ string, _ error) {
	m.sourceFailures.WithLabelValues(source).Inc()
}

// recordAnalysis counts one pipeline run; outcome is "ok" or the error code.
func (m *Metrics) recordAnalysis(endpoint string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = errorCode(err)
	}
	m.analyses.WithLabelValues(endpoint, outcome).Inc()
}

// middleware must wrap the mux directly so the matched route pattern is
// visible on the request after it is served.
func (m *Metrics) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := newStatusRecorder(w)

		next.ServeHTTP(rec, r)

		path := "unmatched"
		if r.Pattern != "" {
			path = r.Pattern
			if _, p, ok := strings.Cut(r.Pattern, " "); ok {
				path = p
			}
		}
		statusCode := strconv.Itoa(rec.status)

		m.duration.WithLabelValues(r.Method, path, statusCode).Observe(time.Since(start).Seconds())
		m.requests.WithLabelValues(r.Method, path, statusCode).Inc()
	})
}

// statusRecorder captures the status code written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func newStatusRecorder(w http.ResponseWriter) *statusRecorder {
	return &statusRecorder{ResponseWriter: w, status: http.StatusOK}
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}
