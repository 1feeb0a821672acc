// logging.go — access-лог HTTP-запросов через slog.
package middleware

import (
	"log/slog"
	"net/http"
	"time"
)

// accessRecorder запоминает статус и количество отданных байт.
type accessRecorder struct {
	http.ResponseWriter
	status int
	bytes  int64
}

func (ar *accessRecorder) WriteHeader(code int) {
	ar.status = code
	ar.ResponseWriter.WriteHeader(code)
}

func (ar *accessRecorder) Write(b []byte) (int, error) {
	n, err := ar.ResponseWriter.Write(b)
	ar.bytes += int64(n)
	return n, err
}

// Unwrap нужен http.ResponseController (Flush, SetWriteDeadline).
func (ar *accessRecorder) Unwrap() http.ResponseWriter {
	return ar.ResponseWriter
}

// levelForStatus: 5xx — ERROR, 4xx — WARN, остальное — INFO.
func levelForStatus(status int) slog.Level {
	switch {
	case status >= http.StatusInternalServerError:
		return slog.LevelError
	case status >= http.StatusBadRequest:
		return slog.LevelWarn
	default:
		return slog.LevelInfo
	}
}

// RequestLogger пишет одну запись на запрос: method, path, status, duration,
// bytes, remote_addr и range, если клиент запросил диапазон.
func RequestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			started := time.Now()
			ar := &accessRecorder{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(ar, r)

			attrs := make([]slog.Attr, 0, 7)
			attrs = append(attrs,
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", ar.status),
				slog.Duration("duration", time.Since(started)),
				slog.Int64("bytes", ar.bytes),
				slog.String("remote_addr", r.RemoteAddr),
			)
			if rangeHeader := r.Header.Get("Range"); rangeHeader != "" {
				attrs = append(attrs, slog.String("range", rangeHeader))
			}

			logger.LogAttrs(r.Context(), levelForStatus(ar.status), "HTTP запрос", attrs...)
		})
	}
}
