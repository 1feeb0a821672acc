// ingest.go — сервис приёма записей: проверка типа, запись blob-файла,
// регистрация метаданных.
package service

import (
	"bufio"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/bigkaa/recstore/internal/api/middleware"
	"github.com/bigkaa/recstore/internal/domain/model"
	"github.com/bigkaa/recstore/internal/repository"
	"github.com/bigkaa/recstore/internal/storage/filestore"
)

// sniffLen — количество байт для определения типа по содержимому.
const sniffLen = 512

// UploadParams — параметры загрузки записи.
type UploadParams struct {
	// Reader — поток данных файла
	Reader io.Reader
	// OriginalFilename — имя файла клиента (используется только расширение)
	OriginalFilename string
	// ContentType — MIME-тип из заголовка multipart part (может быть пустым)
	ContentType string
}

// IngestService — сервис приёма записей.
type IngestService struct {
	repo    repository.RecordingRepository
	store   *filestore.FileStore
	maxSize int64
	logger  *slog.Logger
}

// NewIngestService создаёт сервис приёма записей.
// maxSize — максимальный размер файла в байтах.
func NewIngestService(
	repo repository.RecordingRepository,
	store *filestore.FileStore,
	maxSize int64,
	logger *slog.Logger,
) *IngestService {
	return &IngestService{
		repo:    repo,
		store:   store,
		maxSize: maxSize,
		logger:  logger.With(slog.String("component", "ingest_service")),
	}
}

// Upload сохраняет запись.
//
// Поток:
//  1. Проверка MIME-типа (video/*), при отсутствии заголовка — по содержимому
//  2. Запись blob-файла с ограничением размера
//  3. Insert строки метаданных
//
// Если Insert не удался, blob-файл удаляется (компенсация).
func (s *IngestService) Upload(ctx context.Context, params UploadParams) (*model.Recording, *ServiceError) {
	uploadID := uuid.New().String()
	logger := s.logger.With(slog.String("upload_id", uploadID))

	// 1. Определяем тип файла до записи первого байта
	reader := params.Reader
	contentType := normalizeContentType(params.ContentType)
	if contentType == "" {
		br := bufio.NewReaderSize(params.Reader, sniffLen)
		head, err := br.Peek(sniffLen)
		if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, bufio.ErrBufferFull) {
			return nil, s.fail(logger, "Ошибка чтения загружаемого файла", s.classifyReadErr(err))
		}
		contentType = normalizeContentType(http.DetectContentType(head))
		reader = br
	}

	if !strings.HasPrefix(contentType, "video/") {
		middleware.OperationsTotal.WithLabelValues("upload", "rejected").Inc()
		logger.Warn("Отклонён файл недопустимого типа",
			slog.String("content_type", contentType),
			slog.String("filename", params.OriginalFilename),
		)
		return nil, unsupportedMediaType()
	}

	// 2. Записываем blob-файл
	written, err := s.store.Write(reader, params.OriginalFilename, s.maxSize)
	if err != nil {
		return nil, s.fail(logger, "Ошибка сохранения файла", s.classifyReadErr(err))
	}

	// 3. Регистрируем метаданные
	rec, err := s.repo.Insert(ctx, written.Filename, written.Path, written.Size)
	if err != nil {
		logger.Error("Ошибка записи метаданных, удаляем blob-файл",
			slog.String("path", written.Path),
			slog.String("error", err.Error()),
		)
		if delErr := s.store.Delete(written.Path); delErr != nil {
			// Файл останется до ближайшей reconciliation
			logger.Error("Не удалось удалить blob-файл, остался осиротевший файл",
				slog.String("path", written.Path),
				slog.String("error", delErr.Error()),
			)
		}
		middleware.OperationsTotal.WithLabelValues("upload", "error").Inc()
		return nil, storageWrite(MsgUploadFailed, err)
	}

	middleware.OperationsTotal.WithLabelValues("upload", "success").Inc()
	middleware.RecordingsTotal.Inc()
	middleware.UploadBytesTotal.Add(float64(written.Size))

	logger.Info("Запись загружена",
		slog.Int64("id", rec.ID),
		slog.String("filename", rec.Filename),
		slog.Int64("size", rec.Filesize),
		slog.String("content_type", contentType),
	)

	return rec, nil
}

// classifyReadErr сопоставляет ошибку чтения потока с ошибкой сервиса.
func (s *IngestService) classifyReadErr(err error) *ServiceError {
	var maxBytesErr *http.MaxBytesError
	switch {
	case errors.Is(err, filestore.ErrTooLarge), errors.As(err, &maxBytesErr):
		return payloadTooLarge()
	default:
		return storageWrite(MsgUploadFailed, err)
	}
}

// fail логирует ошибку загрузки и обновляет метрики.
func (s *IngestService) fail(logger *slog.Logger, msg string, svcErr *ServiceError) *ServiceError {
	if errors.Is(svcErr, ErrPayloadTooLarge) {
		middleware.OperationsTotal.WithLabelValues("upload", "rejected").Inc()
		logger.Warn("Файл превышает допустимый размер", slog.Int64("limit", s.maxSize))
		return svcErr
	}
	middleware.OperationsTotal.WithLabelValues("upload", "error").Inc()
	logger.Error(msg, slog.String("error", svcErr.Err.Error()))
	return svcErr
}

// normalizeContentType убирает параметры (charset и т.д.) и приводит тип к нижнему регистру.
func normalizeContentType(contentType string) string {
	if idx := strings.Index(contentType, ";"); idx != -1 {
		contentType = contentType[:idx]
	}
	return strings.ToLower(strings.TrimSpace(contentType))
}
