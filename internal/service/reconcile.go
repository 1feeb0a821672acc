// reconcile.go — сервис фоновой сверки (Reconciliation) директории загрузок
// с таблицей recordings.
//
// Обнаруживает проблемы:
//   - orphaned_blob: файл в директории загрузок без строки метаданных
//   - missing_blob: строка метаданных без файла на диске
//   - size_mismatch: размер файла на диске не совпадает с filesize
//
// Осиротевшие файлы моложе OrphanGrace пропускаются: это может быть загрузка,
// для которой ещё не выполнен Insert. При RemoveOrphans такие файлы удаляются.
//
// Запускается как горутина с периодическим тикером (RS_RECONCILE_INTERVAL).
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/bigkaa/recstore/internal/api/generated"
	"github.com/bigkaa/recstore/internal/repository"
	"github.com/bigkaa/recstore/internal/storage/filestore"
)

// Prometheus метрики Reconciliation
var (
	// reconcileRunsTotal — количество запусков reconciliation.
	reconcileRunsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rs_reconcile_runs_total",
		Help: "Общее количество запусков reconciliation",
	})

	// reconcileIssuesTotal — количество обнаруженных проблем по типу.
	reconcileIssuesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rs_reconcile_issues_total",
		Help: "Общее количество проблем, обнаруженных reconciliation",
	}, []string{"type"})

	// reconcileDurationSeconds — длительность выполнения reconciliation.
	reconcileDurationSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "rs_reconcile_duration_seconds",
		Help:    "Длительность выполнения reconciliation в секундах",
		Buckets: []float64{0.1, 0.5, 1, 5, 10, 30, 60, 120, 300},
	})
)

// ReconcileOptions — параметры сверки.
type ReconcileOptions struct {
	// Interval — период фонового запуска; 0 отключает фоновый запуск
	Interval time.Duration
	// OrphanGrace — минимальный возраст файла, чтобы считать его осиротевшим
	OrphanGrace time.Duration
	// RemoveOrphans — удалять осиротевшие файлы
	RemoveOrphans bool
}

// ReconcileService — сервис фоновой сверки хранилища.
type ReconcileService struct {
	repo   repository.RecordingRepository
	store  *filestore.FileStore
	opts   ReconcileOptions
	logger *slog.Logger
	now    func() time.Time

	mu        sync.Mutex // защита от параллельного запуска
	inProcess bool       // reconciliation в процессе выполнения
	cancel    context.CancelFunc
	done      chan struct{}
}

// NewReconcileService создаёт сервис reconciliation.
func NewReconcileService(
	repo repository.RecordingRepository,
	store *filestore.FileStore,
	opts ReconcileOptions,
	logger *slog.Logger,
) *ReconcileService {
	return &ReconcileService{
		repo:   repo,
		store:  store,
		opts:   opts,
		logger: logger.With(slog.String("component", "reconcile")),
		now:    time.Now,
	}
}

// Start запускает фоновую горутину reconciliation с периодическим тикером.
func (rs *ReconcileService) Start(ctx context.Context) {
	if rs.opts.Interval <= 0 {
		rs.logger.Info("Фоновая reconciliation отключена")
		return
	}

	rsCtx, cancel := context.WithCancel(ctx)
	rs.cancel = cancel
	rs.done = make(chan struct{})

	go rs.run(rsCtx)

	rs.logger.Info("Reconciliation запущена",
		slog.String("interval", rs.opts.Interval.String()),
		slog.Bool("remove_orphans", rs.opts.RemoveOrphans),
	)
}

// Stop останавливает фоновый процесс и ждёт завершения текущего цикла.
func (rs *ReconcileService) Stop() {
	if rs.cancel == nil {
		return
	}
	rs.cancel()
	<-rs.done
	rs.logger.Info("Reconciliation остановлена")
}

// IsInProgress возвращает true, если reconciliation выполняется.
func (rs *ReconcileService) IsInProgress() bool {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	return rs.inProcess
}

// run — основной цикл фоновой горутины.
func (rs *ReconcileService) run(ctx context.Context) {
	defer close(rs.done)

	ticker := time.NewTicker(rs.opts.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, _, err := rs.RunOnce(ctx); err != nil && !errors.Is(err, context.Canceled) {
				rs.logger.Error("Ошибка reconciliation", slog.String("error", err.Error()))
			}
		}
	}
}

// RunOnce выполняет один цикл reconciliation.
// Потокобезопасен: если reconciliation уже выполняется, возвращает nil, true, nil.
func (rs *ReconcileService) RunOnce(ctx context.Context) (*generated.ReconcileResponse, bool, error) {
	rs.mu.Lock()
	if rs.inProcess {
		rs.mu.Unlock()
		rs.logger.Warn("Reconciliation уже выполняется, пропуск")
		return nil, true, nil
	}
	rs.inProcess = true
	rs.mu.Unlock()

	defer func() {
		rs.mu.Lock()
		rs.inProcess = false
		rs.mu.Unlock()
	}()

	startedAt := rs.now().UTC()
	rs.logger.Info("Reconciliation начата")

	recordings, err := rs.repo.ListAll(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("ошибка чтения метаданных: %w", err)
	}
	blobs, err := rs.store.List()
	if err != nil {
		return nil, false, fmt.Errorf("ошибка чтения директории загрузок: %w", err)
	}

	issues := make([]generated.ReconcileIssue, 0)
	summary := generated.ReconcileSummary{}

	// 1. Строки без файла и несовпадение размера
	known := make(map[string]bool, len(recordings))
	for _, rec := range recordings {
		if err := ctx.Err(); err != nil {
			return nil, false, err
		}
		known[normalizePath(rec.Filepath)] = true

		id := rec.ID
		size, statErr := rs.store.Stat(rec.Filepath)
		switch {
		case errors.Is(statErr, filestore.ErrNotFound):
			issues = append(issues, generated.ReconcileIssue{
				Type:        generated.MissingBlob,
				RecordingId: &id,
				Path:        rec.Filepath,
				Description: "Строка метаданных без файла на диске",
			})
			summary.MissingBlobs++
		case statErr != nil:
			rs.logger.Warn("Ошибка получения размера файла",
				slog.String("path", rec.Filepath),
				slog.String("error", statErr.Error()),
			)
		case size != rec.Filesize:
			issues = append(issues, generated.ReconcileIssue{
				Type:        generated.SizeMismatch,
				RecordingId: &id,
				Path:        rec.Filepath,
				Description: fmt.Sprintf("Размер файла на диске %d байт, в метаданных %d байт", size, rec.Filesize),
			})
			summary.SizeMismatches++
		default:
			summary.Ok++
		}
	}

	// 2. Файлы без строки метаданных
	graceBoundary := rs.now().Add(-rs.opts.OrphanGrace)
	for _, blob := range blobs {
		if known[normalizePath(blob.Path)] {
			continue
		}
		if blob.ModTime.After(graceBoundary) {
			continue
		}

		issue := generated.ReconcileIssue{
			Type:        generated.OrphanedBlob,
			Path:        blob.Path,
			Description: "Файл в директории загрузок без строки метаданных",
		}

		if rs.opts.RemoveOrphans {
			removed := true
			if delErr := rs.store.Delete(blob.Path); delErr != nil {
				removed = false
				rs.logger.Warn("Не удалось удалить осиротевший файл",
					slog.String("path", blob.Path),
					slog.String("error", delErr.Error()),
				)
			} else {
				summary.RemovedOrphans++
				rs.logger.Info("Осиротевший файл удалён", slog.String("path", blob.Path))
			}
			issue.Removed = &removed
		}

		issues = append(issues, issue)
		summary.OrphanedBlobs++
	}

	completedAt := rs.now().UTC()
	duration := completedAt.Sub(startedAt)

	// Обновляем Prometheus метрики
	reconcileRunsTotal.Inc()
	reconcileDurationSeconds.Observe(duration.Seconds())
	for _, issue := range issues {
		reconcileIssuesTotal.WithLabelValues(string(issue.Type)).Inc()
	}

	rs.logger.Info("Reconciliation завершена",
		slog.Int("recordings_checked", len(recordings)),
		slog.Int("blobs_scanned", len(blobs)),
		slog.Int("issues", len(issues)),
		slog.Int("ok", summary.Ok),
		slog.Duration("duration", duration),
	)

	return &generated.ReconcileResponse{
		StartedAt:         startedAt,
		CompletedAt:       completedAt,
		RecordingsChecked: len(recordings),
		BlobsScanned:      len(blobs),
		Issues:            issues,
		Summary:           summary,
	}, false, nil
}

// normalizePath приводит путь к абсолютному виду для сравнения.
func normalizePath(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return filepath.Clean(path)
}
