// Пакет config — загрузка и валидация конфигурации сервиса записей
// из переменных окружения.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// Версия приложения, задаётся при сборке через -ldflags.
var Version = "dev"

// DefaultMaxUploadSize — лимит размера загружаемого видео (100 MiB).
const DefaultMaxUploadSize int64 = 100 * 1024 * 1024

// DefaultCORSOrigin — единственный origin веб-клиента, которому разрешён доступ.
const DefaultCORSOrigin = "https://screen-recorder-iota-bay.vercel.app"

// Config содержит все параметры конфигурации сервиса.
type Config struct {
	// Порт HTTP-сервера
	Port int
	// Директория blob-файлов записей
	DataDir string
	// Путь к файлу SQLite с метаданными
	DBPath string
	// Максимальный размер загружаемого файла в байтах
	MaxUploadSize int64
	// Разрешённый CORS origin (credentials включены)
	CORSOrigin string
	// Путь к TLS сертификату (опционально)
	TLSCert string
	// Путь к TLS приватному ключу (опционально)
	TLSKey string
	// Уровень логирования (debug, info, warn, error)
	LogLevel slog.Level
	// Формат логов (json, text)
	LogFormat string

	// Таймауты HTTP-сервера. WriteTimeout = 0 отключает ограничение,
	// иначе длинные видео обрывались бы посреди отдачи.
	ReadHeaderTimeout time.Duration
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	// Таймаут graceful shutdown HTTP-сервера
	ShutdownTimeout time.Duration

	// Максимальное количество записей в LRU-кэше метаданных
	CacheSize int
	// Время жизни записи в кэше метаданных
	CacheTTL time.Duration

	// Лимит загрузок в минуту с одного IP (0 — без ограничения)
	UploadRateLimit int

	// Интервал фоновой сверки (0 — фоновая сверка отключена)
	ReconcileInterval time.Duration
	// Минимальный возраст blob-файла без строки в БД, после которого он считается сиротой
	OrphanGrace time.Duration
	// Удалять ли осиротевшие blob-файлы при сверке
	ReconcileRemoveOrphans bool
}

// Load загружает конфигурацию из переменных окружения, валидирует
// значения и возвращает Config или ошибку.
func Load() (*Config, error) {
	cfg := &Config{}

	// PORT — порт HTTP-сервера (по умолчанию 5000)
	port, err := getEnvInt("PORT", 5000)
	if err != nil {
		return nil, fmt.Errorf("PORT: %w", err)
	}
	if port < 1 || port > 65535 {
		return nil, fmt.Errorf("PORT: значение %d вне допустимого диапазона 1-65535", port)
	}
	cfg.Port = port

	cfg.DataDir = getEnvDefault("RS_DATA_DIR", "uploads")
	cfg.DBPath = getEnvDefault("RS_DB_PATH", "database.db")

	// RS_MAX_UPLOAD_SIZE — лимит размера загрузки (по умолчанию 100 MiB)
	cfg.MaxUploadSize, err = getEnvInt64("RS_MAX_UPLOAD_SIZE", DefaultMaxUploadSize)
	if err != nil {
		return nil, fmt.Errorf("RS_MAX_UPLOAD_SIZE: %w", err)
	}
	if cfg.MaxUploadSize <= 0 {
		return nil, fmt.Errorf("RS_MAX_UPLOAD_SIZE: значение должно быть положительным")
	}

	cfg.CORSOrigin = getEnvDefault("RS_CORS_ORIGIN", DefaultCORSOrigin)

	// RS_TLS_CERT / RS_TLS_KEY — задаются вместе или не задаются вовсе
	cfg.TLSCert = getEnvDefault("RS_TLS_CERT", "")
	cfg.TLSKey = getEnvDefault("RS_TLS_KEY", "")
	if (cfg.TLSCert == "") != (cfg.TLSKey == "") {
		return nil, fmt.Errorf("RS_TLS_CERT и RS_TLS_KEY должны быть заданы вместе")
	}

	cfg.LogLevel, err = parseLogLevel(getEnvDefault("RS_LOG_LEVEL", "info"))
	if err != nil {
		return nil, fmt.Errorf("RS_LOG_LEVEL: %w", err)
	}

	cfg.LogFormat = getEnvDefault("RS_LOG_FORMAT", "json")
	if cfg.LogFormat != "json" && cfg.LogFormat != "text" {
		return nil, fmt.Errorf("RS_LOG_FORMAT: недопустимое значение %q, допустимые: json, text", cfg.LogFormat)
	}

	cfg.ReadHeaderTimeout, err = getEnvDuration("RS_HTTP_READ_HEADER_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, fmt.Errorf("RS_HTTP_READ_HEADER_TIMEOUT: %w", err)
	}
	cfg.ReadTimeout, err = getEnvDuration("RS_HTTP_READ_TIMEOUT", 10*time.Minute)
	if err != nil {
		return nil, fmt.Errorf("RS_HTTP_READ_TIMEOUT: %w", err)
	}
	cfg.WriteTimeout, err = getEnvDuration("RS_HTTP_WRITE_TIMEOUT", 0)
	if err != nil {
		return nil, fmt.Errorf("RS_HTTP_WRITE_TIMEOUT: %w", err)
	}
	cfg.IdleTimeout, err = getEnvDuration("RS_HTTP_IDLE_TIMEOUT", 120*time.Second)
	if err != nil {
		return nil, fmt.Errorf("RS_HTTP_IDLE_TIMEOUT: %w", err)
	}
	cfg.ShutdownTimeout, err = getEnvDuration("RS_SHUTDOWN_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, fmt.Errorf("RS_SHUTDOWN_TIMEOUT: %w", err)
	}

	cfg.CacheSize, err = getEnvInt("RS_CACHE_SIZE", 1024)
	if err != nil {
		return nil, fmt.Errorf("RS_CACHE_SIZE: %w", err)
	}
	if cfg.CacheSize <= 0 {
		return nil, fmt.Errorf("RS_CACHE_SIZE: значение должно быть положительным")
	}
	cfg.CacheTTL, err = getEnvDuration("RS_CACHE_TTL", 5*time.Minute)
	if err != nil {
		return nil, fmt.Errorf("RS_CACHE_TTL: %w", err)
	}

	cfg.UploadRateLimit, err = getEnvInt("RS_UPLOAD_RATE_LIMIT", 30)
	if err != nil {
		return nil, fmt.Errorf("RS_UPLOAD_RATE_LIMIT: %w", err)
	}
	if cfg.UploadRateLimit < 0 {
		return nil, fmt.Errorf("RS_UPLOAD_RATE_LIMIT: значение не может быть отрицательным")
	}

	cfg.ReconcileInterval, err = getEnvDuration("RS_RECONCILE_INTERVAL", 6*time.Hour)
	if err != nil {
		return nil, fmt.Errorf("RS_RECONCILE_INTERVAL: %w", err)
	}
	cfg.OrphanGrace, err = getEnvDuration("RS_ORPHAN_GRACE", time.Hour)
	if err != nil {
		return nil, fmt.Errorf("RS_ORPHAN_GRACE: %w", err)
	}
	cfg.ReconcileRemoveOrphans, err = getEnvBool("RS_RECONCILE_REMOVE_ORPHANS", false)
	if err != nil {
		return nil, fmt.Errorf("RS_RECONCILE_REMOVE_ORPHANS: %w", err)
	}

	return cfg, nil
}

// SetupLogger настраивает глобальный slog-логгер на основе конфигурации.
func SetupLogger(cfg *Config) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}

	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

// --- Вспомогательные функции ---

// getEnvDefault возвращает значение переменной окружения или значение по умолчанию.
func getEnvDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

// getEnvInt возвращает целочисленное значение переменной окружения или значение по умолчанию.
func getEnvInt(key string, defaultVal int) (int, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("некорректное целое число: %q", val)
	}
	return n, nil
}

// getEnvInt64 возвращает int64 значение переменной окружения или значение по умолчанию.
func getEnvInt64(key string, defaultVal int64) (int64, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	n, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("некорректное целое число: %q", val)
	}
	return n, nil
}

// getEnvBool возвращает bool значение переменной окружения или значение по умолчанию.
func getEnvBool(key string, defaultVal bool) (bool, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return false, fmt.Errorf("некорректное логическое значение: %q", val)
	}
	return b, nil
}

// getEnvDuration возвращает time.Duration из переменной окружения или значение по умолчанию.
func getEnvDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return 0, fmt.Errorf("некорректная длительность: %q (используйте формат Go: 30s, 1h, 6h)", val)
	}
	if d < 0 {
		return 0, fmt.Errorf("длительность не может быть отрицательной: %q", val)
	}
	return d, nil
}

// parseLogLevel преобразует строку уровня логирования в slog.Level.
func parseLogLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("недопустимый уровень %q, допустимые: debug, info, warn, error", level)
	}
}
