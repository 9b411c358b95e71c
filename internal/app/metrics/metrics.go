package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "library"

var (
	// Registry holds the application-specific Prometheus collectors.
	Registry = prometheus.NewRegistry()

	httpInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "path", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~5s
		},
		[]string{"method", "path"},
	)

	issueAttempts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "issuance",
			Name:      "issue_attempts_total",
			Help:      "Book issue attempts by outcome.",
		},
		[]string{"outcome"},
	)

	issueDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "issuance",
			Name:      "issue_duration_seconds",
			Help:      "Time spent in the issue transaction, lock wait included.",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		},
	)

	pendingReturns = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "issuance",
			Name:      "pending_returns",
			Help:      "Issued books whose target return date has been reached.",
		},
	)

	dbPingFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "db",
			Name:      "ping_failures_total",
			Help:      "Failed database health pings.",
		},
	)
)

// Issue outcomes.
const (
	OutcomeIssued   = "issued"
	OutcomeConflict = "conflict"
	OutcomeInvalid  = "invalid"
	OutcomeError    = "error"
)

func init() {
	Registry.MustRegister(
		httpInFlight,
		httpRequests,
		httpDuration,
		issueAttempts,
		issueDuration,
		pendingReturns,
		dbPingFailures,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
}

// Handler returns an HTTP handler exposing the registered Prometheus metrics.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// InstrumentHandler records in-flight, count and latency per canonical route.
// Scrapes of /metrics are not counted.
func InstrumentHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := canonicalPath(r.URL.Path)
		if path == "/metrics" {
			next.ServeHTTP(w, r)
			return
		}

		httpInFlight.Inc()
		rec := &statusRecorder{ResponseWriter: w}
		start := time.Now()
		defer func() {
			httpInFlight.Dec()
			method := strings.ToUpper(r.Method)
			httpRequests.WithLabelValues(method, path, strconv.Itoa(rec.code())).Inc()
			httpDuration.WithLabelValues(method, path).Observe(time.Since(start).Seconds())
		}()

		next.ServeHTTP(rec, r)
	})
}

// RecordIssueAttempt counts one issue attempt and how long it took.
func RecordIssueAttempt(outcome string, took time.Duration) {
	if outcome == "" {
		outcome = OutcomeError
	}
	issueAttempts.WithLabelValues(outcome).Inc()
	if took > 0 {
		issueDuration.Observe(took.Seconds())
	}
}

// SetPendingReturns publishes the latest overdue report size.
func SetPendingReturns(n int) {
	pendingReturns.Set(float64(n))
}

// RecordDBPingFailure counts a failed watchdog ping.
func RecordDBPingFailure() {
	dbPingFailures.Inc()
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	if r.status == 0 {
		r.status = code
	}
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	return r.ResponseWriter.Write(b)
}

func (r *statusRecorder) code() int {
	if r.status == 0 {
		return http.StatusOK
	}
	return r.status
}

// canonicalPath collapses entity ids so label cardinality stays bounded.
func canonicalPath(raw string) string {
	trimmed := strings.Trim(raw, "/")
	if trimmed == "" {
		return "/"
	}
	parts := strings.Split(trimmed, "/")
	switch parts[0] {
	case "book", "member":
		if len(parts) == 1 {
			return "/" + parts[0]
		}
		return "/" + parts[0] + "/:id"
	case "issuance":
		if len(parts) > 1 && parts[1] == "pending" {
			return "/issuance/pending"
		}
		return "/issuance"
	case "healthz":
		return "/healthz"
	case "metrics":
		return "/metrics"
	default:
		return "/other"
	}
}
