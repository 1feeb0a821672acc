// metrics.go — Prometheus HTTP метрики сервиса записей.
// Регистрирует метрики: rs_http_requests_total, rs_http_request_duration_seconds.
// Бизнес-метрики (rs_recordings_total, rs_operations_total и др.) обновляются
// из сервисного слоя.
package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP метрики
var (
	// httpRequestsTotal — общее количество HTTP-запросов.
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rs_http_requests_total",
			Help: "Общее количество HTTP-запросов к сервису записей",
		},
		[]string{"method", "path", "status"},
	)

	// httpRequestDuration — гистограмма длительности HTTP-запросов.
	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "rs_http_request_duration_seconds",
			Help:    "Длительность HTTP-запросов к сервису записей в секундах",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)
)

// Бизнес-метрики (экспортируются для обновления из сервисного слоя)
var (
	// RecordingsTotal — текущее количество записей в хранилище метаданных.
	RecordingsTotal = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "rs_recordings_total",
			Help: "Текущее количество записей",
		},
	)

	// OperationsTotal — общее количество операций с записями.
	OperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rs_operations_total",
			Help: "Общее количество операций с записями",
		},
		[]string{"operation", "result"},
	)

	// UploadBytesTotal — объём принятых данных.
	UploadBytesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "rs_upload_bytes_total",
			Help: "Общий объём загруженных данных в байтах",
		},
	)

	// StreamBytesTotal — объём отданных клиентам данных.
	StreamBytesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "rs_stream_bytes_total",
			Help: "Общий объём отданных данных в байтах",
		},
	)
)

// unmatchedRoute — метка пути для запросов, не совпавших ни с одним маршрутом.
const unmatchedRoute = "unmatched"

// MetricsMiddleware возвращает HTTP middleware для сбора Prometheus метрик.
// Путь в метках берётся из шаблона маршрута chi (/api/recordings/{id}),
// что ограничивает кардинальность.
func MetricsMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			wrapped := newMetricsResponseWriter(w)
			next.ServeHTTP(wrapped, r)

			duration := time.Since(start).Seconds()
			status := strconv.Itoa(wrapped.statusCode)
			path := routePattern(r)

			httpRequestsTotal.WithLabelValues(r.Method, path, status).Inc()
			httpRequestDuration.WithLabelValues(r.Method, path).Observe(duration)
		})
	}
}

// routePattern возвращает шаблон маршрута chi после обработки запроса.
func routePattern(r *http.Request) string {
	rctx := chi.RouteContext(r.Context())
	if rctx == nil {
		return unmatchedRoute
	}
	if pattern := rctx.RoutePattern(); pattern != "" {
		return pattern
	}
	return unmatchedRoute
}

// metricsResponseWriter — обёртка для перехвата статус-кода.
type metricsResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func newMetricsResponseWriter(w http.ResponseWriter) *metricsResponseWriter {
	return &metricsResponseWriter{ResponseWriter: w, statusCode: http.StatusOK}
}

func (rw *metricsResponseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Unwrap позволяет http.ResponseController получить доступ к оригинальному ResponseWriter.
func (rw *metricsResponseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}
