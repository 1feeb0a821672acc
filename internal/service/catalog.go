// catalog.go — чтение списка записей и административное удаление.
package service

import (
	"context"
	"log/slog"

	"github.com/bigkaa/recstore/internal/api/middleware"
	"github.com/bigkaa/recstore/internal/domain/model"
	"github.com/bigkaa/recstore/internal/repository"
)

// CatalogService — список, удаление и статистика записей.
type CatalogService struct {
	repo   repository.RecordingRepository
	cache  *RecordingCache
	logger *slog.Logger
}

// NewCatalogService создаёт сервис каталога записей.
func NewCatalogService(repo repository.RecordingRepository, cache *RecordingCache, logger *slog.Logger) *CatalogService {
	return &CatalogService{
		repo:   repo,
		cache:  cache,
		logger: logger.With(slog.String("component", "catalog_service")),
	}
}

// List возвращает все записи, новые первыми.
func (s *CatalogService) List(ctx context.Context) ([]*model.Recording, *ServiceError) {
	list, err := s.repo.ListAll(ctx)
	if err != nil {
		s.logger.Error("Ошибка получения списка записей", slog.String("error", err.Error()))
		return nil, storageRead(MsgFetchFailed, err)
	}
	return list, nil
}

// Delete удаляет строку метаданных. Blob-файл остаётся на диске.
// Возвращает количество удалённых строк (0 или 1).
func (s *CatalogService) Delete(ctx context.Context, id int64) (int64, *ServiceError) {
	n, err := s.repo.Delete(ctx, id)
	if err != nil {
		s.logger.Error("Ошибка удаления записи",
			slog.Int64("id", id),
			slog.String("error", err.Error()),
		)
		middleware.OperationsTotal.WithLabelValues("delete", "error").Inc()
		return 0, storageWrite(MsgDeleteFailed, err)
	}

	if s.cache != nil {
		s.cache.Invalidate(id)
	}

	if n > 0 {
		middleware.RecordingsTotal.Sub(float64(n))
		s.logger.Info("Запись удалена", slog.Int64("id", id))
	}
	middleware.OperationsTotal.WithLabelValues("delete", "success").Inc()
	return n, nil
}

// Stats возвращает количество записей и их суммарный размер.
func (s *CatalogService) Stats(ctx context.Context) (count, totalBytes int64, err error) {
	return s.repo.Stats(ctx)
}

// SyncMetrics выставляет rs_recordings_total по данным хранилища.
// Вызывается при старте процесса.
func (s *CatalogService) SyncMetrics(ctx context.Context) error {
	count, _, err := s.repo.Stats(ctx)
	if err != nil {
		return err
	}
	middleware.RecordingsTotal.Set(float64(count))
	return nil
}
