package metrics

import (
	"bufio"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type HTTPServerMetrics struct {
	registry *prometheus.Registry

	requestTotal    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	requestInFlight prometheus.Gauge

	retrievalTotal    *prometheus.CounterVec
	retrievalDegraded *prometheus.CounterVec
	retrievalEvidence *prometheus.HistogramVec
	retrievalDuration *prometheus.HistogramVec
	ingestTotal       *prometheus.CounterVec
}

func NewHTTPServerMetrics(service string) *HTTPServerMetrics {
	registry := prometheus.NewRegistry()

	requestTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "vaultflex",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests processed.",
		},
		[]string{"service", "method", "path", "status"},
	)
	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "vaultflex",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "method", "path"},
	)
	requestInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "vaultflex",
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "Number of in-flight HTTP requests.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	retrievalTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "vaultflex",
			Subsystem: "retrieval",
			Name:      "requests_total",
			Help:      "Total completed retrieval requests.",
		},
		[]string{"service", "endpoint"},
	)
	retrievalDegraded := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "vaultflex",
			Subsystem: "retrieval",
			Name:      "degraded_total",
			Help:      "Total retrieval requests served from a single source.",
		},
		[]string{"service", "endpoint", "failed_source"},
	)
	retrievalEvidence := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "vaultflex",
			Subsystem: "retrieval",
			Name:      "evidence_items",
			Help:      "Distribution of fused evidence items per retrieval request.",
			Buckets:   []float64{0, 1, 2, 3, 5, 8, 12, 16},
		},
		[]string{"service", "endpoint"},
	)
	retrievalDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "vaultflex",
			Subsystem: "retrieval",
			Name:      "duration_seconds",
			Help:      "Retrieval execution duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "endpoint"},
	)
	ingestTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "vaultflex",
			Subsystem: "ingest",
			Name:      "uploads_total",
			Help:      "Total document uploads by outcome.",
		},
		[]string{"service", "outcome"},
	)

	registry.MustRegister(
		requestTotal,
		requestDuration,
		requestInFlight,
		retrievalTotal,
		retrievalDegraded,
		retrievalEvidence,
		retrievalDuration,
		ingestTotal,
	)

	return &HTTPServerMetrics{
		registry:          registry,
		requestTotal:      requestTotal,
		requestDuration:   requestDuration,
		requestInFlight:   requestInFlight,
		retrievalTotal:    retrievalTotal,
		retrievalDegraded: retrievalDegraded,
		retrievalEvidence: retrievalEvidence,
		retrievalDuration: retrievalDuration,
		ingestTotal:       ingestTotal,
	}
}

func (m *HTTPServerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *HTTPServerMetrics) Middleware(service string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		path := normalizePath(r.URL.Path)
		recorder := &statusRecorder{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		m.requestInFlight.Inc()
		defer m.requestInFlight.Dec()

		next.ServeHTTP(recorder, r)

		m.requestTotal.WithLabelValues(
			service,
			r.Method,
			path,
			strconv.Itoa(recorder.statusCode),
		).Inc()
		m.requestDuration.WithLabelValues(service, r.Method, path).Observe(time.Since(start).Seconds())
	})
}

// normalizePath collapses per-resource path segments so metric cardinality
// stays bounded by the route table, not by scope and document names.
func normalizePath(path string) string {
	switch {
	case strings.HasPrefix(path, "/v1/documents/"):
		return "/v1/documents/{document_id}"
	case strings.HasPrefix(path, "/v1/scopes/"):
		rest := strings.TrimPrefix(path, "/v1/scopes/")
		if idx := strings.IndexByte(rest, '/'); idx >= 0 {
			return "/v1/scopes/{scope}" + rest[idx:]
		}
		return "/v1/scopes/{scope}"
	default:
		return path
	}
}

func (m *HTTPServerMetrics) RecordRetrieval(service, endpoint string, evidenceCount int, degraded bool, failedSources []string, duration time.Duration) {
	m.retrievalTotal.WithLabelValues(service, endpoint).Inc()
	m.retrievalEvidence.WithLabelValues(service, endpoint).Observe(float64(evidenceCount))
	m.retrievalDuration.WithLabelValues(service, endpoint).Observe(duration.Seconds())

	if !degraded {
		return
	}
	if len(failedSources) == 0 {
		m.retrievalDegraded.WithLabelValues(service, endpoint, "unknown").Inc()
		return
	}
	for _, source := range failedSources {
		m.retrievalDegraded.WithLabelValues(service, endpoint, source).Inc()
	}
}

func (m *HTTPServerMetrics) RecordUpload(service, outcome string) {
	if outcome == "" {
		outcome = "unknown"
	}
	m.ingestTotal.WithLabelValues(service, outcome).Inc()
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (w *statusRecorder) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *statusRecorder) Flush() {
	flusher, ok := w.ResponseWriter.(http.Flusher)
	if ok {
		flusher.Flush()
	}
}

func (w *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hijacker, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not implement http.Hijacker")
	}
	return hijacker.Hijack()
}

func (w *statusRecorder) Push(target string, opts *http.PushOptions) error {
	pusher, ok := w.ResponseWriter.(http.Pusher)
	if !ok {
		return http.ErrNotSupported
	}
	return pusher.Push(target, opts)
}
