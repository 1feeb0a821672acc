// stream.go — отдача записи клиенту с поддержкой Range (206 Partial Content).
package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"sync"

	"github.com/bigkaa/recstore/internal/api/middleware"
	"github.com/bigkaa/recstore/internal/repository"
	"github.com/bigkaa/recstore/internal/storage/filestore"
)

const (
	// streamContentType — Content-Type всех отдаваемых записей.
	streamContentType = "video/webm"
	// streamBufferSize — размер буфера копирования.
	streamBufferSize = 32 * 1024
)

// streamBuffers — пул буферов копирования.
var streamBuffers = sync.Pool{
	New: func() any {
		buf := make([]byte, streamBufferSize)
		return &buf
	},
}

// StreamService — сервис отдачи записей.
type StreamService struct {
	cache  *RecordingCache
	store  *filestore.FileStore
	logger *slog.Logger
}

// NewStreamService создаёт сервис отдачи записей.
func NewStreamService(cache *RecordingCache, store *filestore.FileStore, logger *slog.Logger) *StreamService {
	return &StreamService{
		cache:  cache,
		store:  store,
		logger: logger.With(slog.String("component", "stream_service")),
	}
}

// Serve отдаёт запись id клиенту.
// Без заголовка Range — 200 и весь файл; с корректным Range — 206 и срез.
// Некорректный или выходящий за границы Range — 416 с Content-Range: bytes */size.
//
// Возвращает ServiceError, если ответ ещё не начат. После отправки заголовков
// ошибки копирования только логируются.
func (s *StreamService) Serve(w http.ResponseWriter, r *http.Request, id int64) *ServiceError {
	ctx := r.Context()
	logger := s.logger.With(slog.Int64("id", id))

	// 1. Метаданные
	rec, err := s.cache.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(MsgRecordingNotFound)
		}
		logger.Error("Ошибка чтения метаданных", slog.String("error", err.Error()))
		return storageRead(MsgStreamFailed, err)
	}

	// 2. Размер blob-файла
	size, err := s.store.Stat(rec.Filepath)
	if err != nil {
		if errors.Is(err, filestore.ErrNotFound) {
			logger.Warn("Blob-файл отсутствует на диске", slog.String("path", rec.Filepath))
			return notFound(MsgFileNotFound)
		}
		logger.Error("Ошибка получения размера файла", slog.String("error", err.Error()))
		return storageRead(MsgStreamFailed, err)
	}

	// 3. Диапазон
	h := w.Header()
	h.Set("Accept-Ranges", "bytes")
	rangeHeader := r.Header.Get("Range")
	partial := rangeHeader != ""
	byteRange := ByteRange{Start: 0, End: size - 1}
	if partial {
		byteRange, err = ParseRange(rangeHeader, size)
		if err != nil {
			h.Set("Content-Range", UnsatisfiedContentRange(size))
			middleware.OperationsTotal.WithLabelValues("stream", "invalid_range").Inc()
			return invalidRange(err)
		}
	}

	// 4. Заголовки и тело
	h.Set("Content-Type", streamContentType)

	if size == 0 {
		h.Set("Content-Length", "0")
		w.WriteHeader(http.StatusOK)
		middleware.OperationsTotal.WithLabelValues("stream", "success").Inc()
		return nil
	}

	body, err := s.store.OpenRange(rec.Filepath, byteRange.Start, byteRange.End)
	if err != nil {
		switch {
		case errors.Is(err, filestore.ErrNotFound):
			return notFound(MsgFileNotFound)
		case errors.Is(err, filestore.ErrInvalidRange):
			// Файл изменился между Stat и Open
			h.Set("Content-Range", UnsatisfiedContentRange(size))
			return invalidRange(err)
		default:
			logger.Error("Ошибка открытия файла", slog.String("error", err.Error()))
			return storageRead(MsgStreamFailed, err)
		}
	}
	defer body.Close()

	h.Set("Content-Length", strconv.FormatInt(byteRange.Length(), 10))
	status := http.StatusOK
	if partial {
		h.Set("Content-Range", byteRange.ContentRange(size))
		status = http.StatusPartialContent
	}
	w.WriteHeader(status)

	bufp := streamBuffers.Get().(*[]byte)
	defer streamBuffers.Put(bufp)

	n, err := io.CopyBuffer(w, &contextReader{ctx: ctx, r: body}, *bufp)
	middleware.StreamBytesTotal.Add(float64(n))

	switch {
	case err == nil:
		middleware.OperationsTotal.WithLabelValues("stream", "success").Inc()
		logger.Debug("Запись отдана",
			slog.Int("status", status),
			slog.Int64("start", byteRange.Start),
			slog.Int64("end", byteRange.End),
			slog.Int64("bytes", n),
		)
	case ctx.Err() != nil:
		middleware.OperationsTotal.WithLabelValues("stream", "aborted").Inc()
		logger.Debug("Клиент прервал загрузку", slog.Int64("bytes", n))
	default:
		middleware.OperationsTotal.WithLabelValues("stream", "error").Inc()
		logger.Warn("Ошибка отдачи записи",
			slog.Int64("bytes", n),
			slog.String("error", err.Error()),
		)
	}

	return nil
}

// contextReader прекращает чтение после отмены контекста.
type contextReader struct {
	ctx context.Context
	r   io.Reader
}

func (cr *contextReader) Read(p []byte) (int, error) {
	if err := cr.ctx.Err(); err != nil {
		return 0, err
	}
	return cr.r.Read(p)
}
