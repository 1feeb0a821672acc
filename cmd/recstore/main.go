// Точка входа recstore — сервиса приёма и отдачи видеозаписей.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/bigkaa/recstore/internal/api/generated"
	"github.com/bigkaa/recstore/internal/api/handlers"
	"github.com/bigkaa/recstore/internal/config"
	"github.com/bigkaa/recstore/internal/database"
	"github.com/bigkaa/recstore/internal/repository"
	"github.com/bigkaa/recstore/internal/server"
	"github.com/bigkaa/recstore/internal/service"
	"github.com/bigkaa/recstore/internal/storage/filestore"
)

func main() {
	// Загрузка конфигурации из переменных окружения
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Ошибка конфигурации: %v\n", err)
		os.Exit(1)
	}

	// Настройка логгера
	logger := config.SetupLogger(cfg)
	logger.Info("recstore запускается",
		slog.String("version", config.Version),
		slog.Int("port", cfg.Port),
		slog.String("data_dir", cfg.DataDir),
		slog.String("db_path", cfg.DBPath),
		slog.Int64("max_upload_size", cfg.MaxUploadSize),
	)

	ctx := context.Background()

	// --- Инициализация компонентов ---

	// 1. SQLite и миграции
	db, err := database.Open(ctx, cfg.DBPath, logger)
	if err != nil {
		logger.Error("Ошибка подключения к SQLite", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer db.Close()

	if err := database.Migrate(cfg.DBPath, logger); err != nil {
		logger.Error("Ошибка применения миграций", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 2. Файловое хранилище
	store, err := filestore.New(cfg.DataDir)
	if err != nil {
		logger.Error("Ошибка инициализации FileStore", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 3. Репозиторий и кэш метаданных
	repo := repository.NewRecordingRepository(db)
	cache := service.NewRecordingCache(repo, cfg.CacheSize, cfg.CacheTTL)

	// 4. Сервисы
	ingestSvc := service.NewIngestService(repo, store, cfg.MaxUploadSize, logger)
	catalogSvc := service.NewCatalogService(repo, cache, logger)
	streamSvc := service.NewStreamService(cache, store, logger)

	// Обновляем Prometheus метрики записей
	if err := catalogSvc.SyncMetrics(ctx); err != nil {
		logger.Warn("Не удалось обновить метрики записей", slog.String("error", err.Error()))
	}

	// 5. Фоновые процессы: reconciliation
	reconcileSvc := service.NewReconcileService(repo, store, service.ReconcileOptions{
		Interval:      cfg.ReconcileInterval,
		OrphanGrace:   cfg.OrphanGrace,
		RemoveOrphans: cfg.ReconcileRemoveOrphans,
	}, logger)
	reconcileSvc.Start(ctx)

	// 6. Документ OpenAPI
	doc, err := generated.LoadValidated(ctx)
	if err != nil {
		logger.Error("Ошибка загрузки OpenAPI", slog.String("error", err.Error()))
		os.Exit(1)
	}
	openapiHandler, err := handlers.NewOpenAPIHandler(doc)
	if err != nil {
		logger.Error("Ошибка инициализации OpenAPI handler", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 7. Handlers
	recordingsHandler := handlers.NewRecordingsHandler(ingestSvc, catalogSvc, streamSvc, cfg.MaxUploadSize, logger)
	systemHandler := handlers.NewSystemHandler(cfg, catalogSvc, diskUsageFn(cfg.DataDir), logger)
	maintenanceHandler := handlers.NewMaintenanceHandler(reconcileSvc, logger)
	healthHandler := handlers.NewHealthHandler(cfg.DataDir, database.NewReadinessChecker(db))
	metricsHandler := server.NewMetricsHandler()

	// Единый API handler
	apiHandler := handlers.NewAPIHandler(
		recordingsHandler,
		systemHandler,
		maintenanceHandler,
		healthHandler,
		openapiHandler,
		metricsHandler,
	)

	// 8. Создание и запуск HTTP-сервера
	srv := server.New(cfg, logger, apiHandler)

	runErr := srv.Run()

	// --- Graceful shutdown фоновых процессов ---
	logger.Info("Остановка фоновых процессов...")
	reconcileSvc.Stop()

	if runErr != nil {
		logger.Error("Ошибка сервера", slog.String("error", runErr.Error()))
		_ = db.Close()
		os.Exit(1)
	}

	logger.Info("recstore остановлен")
}
