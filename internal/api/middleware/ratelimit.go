package middleware

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/httprate"
)

// RateLimitConfig — параметры ограничения частоты запросов.
type RateLimitConfig struct {
	// RequestLimit — максимум запросов в окне
	RequestLimit int
	// WindowSize — размер окна
	WindowSize time.Duration
	// KeyFunc извлекает ключ ограничения из запроса. nil — по IP клиента
	KeyFunc func(r *http.Request) (string, error)
	// Match отбирает запросы, к которым применяется ограничение. nil — ко всем
	Match func(r *http.Request) bool
}

// RateLimit создаёт middleware ограничения частоты запросов на базе httprate
// (sliding window counter). RequestLimit <= 0 отключает ограничение.
func RateLimit(cfg RateLimitConfig) func(http.Handler) http.Handler {
	if cfg.RequestLimit <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}

	keyFunc := cfg.KeyFunc
	if keyFunc == nil {
		keyFunc = httprate.KeyByIP
	}

	limiter := httprate.Limit(
		cfg.RequestLimit,
		cfg.WindowSize,
		httprate.WithKeyFuncs(keyFunc),
		httprate.WithLimitHandler(func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("Retry-After", strconv.Itoa(int(cfg.WindowSize.Seconds())))
			w.WriteHeader(http.StatusTooManyRequests)
			_ = json.NewEncoder(w).Encode(map[string]string{
				"error": "Too many requests, please try again later",
			})
		}),
	)

	return func(next http.Handler) http.Handler {
		limited := limiter(next)
		if cfg.Match == nil {
			return limited
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if cfg.Match(r) {
				limited.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// UploadRateLimit ограничивает количество загрузок (POST /api/recordings)
// с одного IP в минуту. Остальные запросы не ограничиваются.
func UploadRateLimit(perMinute int) func(http.Handler) http.Handler {
	return RateLimit(RateLimitConfig{
		RequestLimit: perMinute,
		WindowSize:   time.Minute,
		Match: func(r *http.Request) bool {
			return r.Method == http.MethodPost && r.URL.Path == "/api/recordings"
		},
	})
}
