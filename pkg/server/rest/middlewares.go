package rest

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
)

// prometheus metrics
type metrics struct {
	SnapQueryCount     *prometheus.CounterVec
	TileDecodeCount    *prometheus.CounterVec
	RegionLoadCount    *prometheus.CounterVec
	VehicleStepCount   *prometheus.CounterVec
	httpDuration       *prometheus.HistogramVec
	durationSummary    prometheus.Summary
	responseStatusCode *prometheus.CounterVec
	totalRequests      *prometheus.CounterVec
}

func NewMetrics(reg prometheus.Registerer) *metrics {
	m := &metrics{
		SnapQueryCount: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "racemap",
			Name:      "snap_query_count",
			Help:      "The total number of snap queries",
		}, []string{"snapped"}),
		TileDecodeCount: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "racemap",
			Name:      "tile_decode_count",
			Help:      "The total number of uploaded tiles by decode result",
		}, []string{"result"}),
		RegionLoadCount: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "racemap",
			Name:      "region_load_count",
			Help:      "The total number of region loads by result",
		}, []string{"result"}),
		VehicleStepCount: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "racemap",
			Name:      "vehicle_step_count",
			Help:      "The total number of vehicle steps by outcome",
		}, []string{"outcome"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "racemap",
			Name:      "request_duration_seconds",
			Help:      "The duration of request",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2.5}, // 0.001 = 1ms
		}, []string{"method", "path"}),
		durationSummary: prometheus.NewSummary(prometheus.SummaryOpts{
			Namespace:  "racemap",
			Name:       "request_duration_summary_seconds",
			Help:       "The duration of request",
			Objectives: map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.99: 0.001},
		}),
		responseStatusCode: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "racemap",
				Name:      "response_status_code",
				Help:      "The status code of http response",
			}, []string{"status", "method", "path"},
		),
		totalRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "racemap",
				Name:      "total_requests",
				Help:      "The total number of requests",
			}, []string{"path", "method", "status"},
		),
	}
	reg.MustRegister(m.SnapQueryCount, m.TileDecodeCount, m.RegionLoadCount, m.VehicleStepCount,
		m.httpDuration, m.durationSummary, m.responseStatusCode, m.totalRequests)
	return m
}

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func NewResponseWriter(w http.ResponseWriter) *responseWriter {
	return &responseWriter{w, http.StatusOK}
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func PromeHttpMiddleware(m *metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rw := NewResponseWriter(w)
			now := time.Now()

			next.ServeHTTP(rw, r)

			// label by route pattern when chi matched one
			path := r.URL.Path
			if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
				path = rctx.RoutePattern()
			}
			statusCode := strconv.Itoa(rw.statusCode)

			m.httpDuration.With(prometheus.Labels{"method": r.Method, "path": path}).Observe(time.Since(now).Seconds())
			m.responseStatusCode.With(prometheus.Labels{"status": statusCode, "method": r.Method, "path": path}).Inc()
			m.totalRequests.With(prometheus.Labels{"path": path, "method": r.Method, "status": statusCode}).Inc()
			m.durationSummary.Observe(time.Since(now).Seconds())
		})
	}
}
