package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	OUTCOME_SUCCESS     = "success"
	OUTCOME_INVALID     = "invalid"
	OUTCOME_STORE_ERROR = "store_error"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "folio_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status_code"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "folio_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	contactSubmissionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "folio_contact_submissions_total",
			Help: "Total number of contact form submissions by outcome",
		},
		[]string{"outcome"},
	)
)

// RecordContactSubmission counts one contact form submission.
func RecordContactSubmission(outcome string) {
	contactSubmissionsTotal.WithLabelValues(outcome).Inc()
}

// ContactSubmissions returns the counter for outcome, mostly for tests.
func ContactSubmissions(outcome string) prometheus.Counter {
	return contactSubmissionsTotal.WithLabelValues(outcome)
}

// Handler exposes the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (sr *statusRecorder) WriteHeader(code int) {
	sr.statusCode = code
	sr.ResponseWriter.WriteHeader(code)
}

// Middleware records count and latency per matched mux route.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(recorder, r)

		route := routeTemplate(r)
		httpRequestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(recorder.statusCode)).Inc()
		httpRequestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

func routeTemplate(r *http.Request) string {
	if route := mux.CurrentRoute(r); route != nil {
		if tmpl, err := route.GetPathTemplate(); err == nil {
			return tmpl
		}
	}
	return "unmatched"
}
