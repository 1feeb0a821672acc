// system.go — обработчик GET /api/info (информация о сервисе).
package handlers

import (
	"context"
	"log/slog"
	"net/http"

	apierrors "github.com/bigkaa/recstore/internal/api/errors"
	"github.com/bigkaa/recstore/internal/api/generated"
	"github.com/bigkaa/recstore/internal/config"
)

// StatsProvider — источник статистики записей.
type StatsProvider interface {
	Stats(ctx context.Context) (count, totalBytes int64, err error)
}

// DiskUsageFunc возвращает total, used, available в байтах для директории загрузок.
type DiskUsageFunc func() (total, used, available int64, err error)

// SystemHandler — обработчик системных endpoints.
type SystemHandler struct {
	cfg         *config.Config
	stats       StatsProvider
	diskUsageFn DiskUsageFunc
	logger      *slog.Logger
}

// NewSystemHandler создаёт обработчик системных endpoints.
// diskUsageFn может быть nil: тогда capacity в ответ не попадает.
func NewSystemHandler(cfg *config.Config, stats StatsProvider, diskUsageFn DiskUsageFunc, logger *slog.Logger) *SystemHandler {
	return &SystemHandler{
		cfg:         cfg,
		stats:       stats,
		diskUsageFn: diskUsageFn,
		logger:      logger.With(slog.String("component", "system_handler")),
	}
}

// GetInfo обрабатывает GET /api/info.
func (h *SystemHandler) GetInfo(w http.ResponseWriter, r *http.Request) {
	count, totalBytes, err := h.stats.Stats(r.Context())
	if err != nil {
		h.logger.Error("Ошибка получения статистики", slog.String("error", err.Error()))
		apierrors.InternalError(w, "Failed to fetch service info")
		return
	}

	resp := generated.ServiceInfo{
		Service:       serviceName,
		Version:       config.Version,
		MaxUploadSize: h.cfg.MaxUploadSize,
		Recordings: generated.RecordingStats{
			Count:      count,
			TotalBytes: totalBytes,
		},
	}

	if h.diskUsageFn != nil {
		total, used, available, diskErr := h.diskUsageFn()
		if diskErr != nil {
			h.logger.Warn("Не удалось получить ёмкость диска", slog.String("error", diskErr.Error()))
		} else {
			resp.Capacity = &generated.CapacityInfo{
				TotalBytes:     total,
				UsedBytes:      used,
				AvailableBytes: available,
			}
		}
	}

	writeJSON(w, http.StatusOK, resp)
}
