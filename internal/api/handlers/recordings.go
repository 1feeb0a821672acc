// recordings.go — HTTP handlers операций с записями.
// Upload, List, Stream, Delete.
package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"

	apierrors "github.com/bigkaa/recstore/internal/api/errors"
	"github.com/bigkaa/recstore/internal/api/generated"
	"github.com/bigkaa/recstore/internal/domain/model"
	"github.com/bigkaa/recstore/internal/service"
)

const (
	// videoField — имя поля multipart формы с файлом.
	videoField = "video"
	// multipartOverhead — запас на заголовки частей и прочие поля формы.
	multipartOverhead = 1 << 20
)

// errNoVideoPart — в форме нет файла в поле video.
var errNoVideoPart = errors.New("поле video отсутствует")

// RecordingsHandler — обработчик endpoints записей.
type RecordingsHandler struct {
	ingest        *service.IngestService
	catalog       *service.CatalogService
	stream        *service.StreamService
	maxUploadSize int64
	logger        *slog.Logger
}

// NewRecordingsHandler создаёт обработчик endpoints записей.
func NewRecordingsHandler(
	ingest *service.IngestService,
	catalog *service.CatalogService,
	stream *service.StreamService,
	maxUploadSize int64,
	logger *slog.Logger,
) *RecordingsHandler {
	return &RecordingsHandler{
		ingest:        ingest,
		catalog:       catalog,
		stream:        stream,
		maxUploadSize: maxUploadSize,
		logger:        logger.With(slog.String("component", "recordings_handler")),
	}
}

// UploadRecording обрабатывает POST /api/recordings.
// Multipart form: video (обязательно). Файл читается потоком, без буферизации формы.
func (h *RecordingsHandler) UploadRecording(w http.ResponseWriter, r *http.Request) {
	if h.maxUploadSize > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize+multipartOverhead)
	}

	mr, err := r.MultipartReader()
	if err != nil {
		apierrors.ValidationError(w, service.MsgNoVideoFile)
		return
	}

	part, err := nextVideoPart(mr)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			apierrors.ValidationError(w, service.MsgFileTooLarge)
			return
		}
		if !errors.Is(err, errNoVideoPart) {
			h.logger.Debug("Ошибка разбора multipart", slog.String("error", err.Error()))
		}
		apierrors.ValidationError(w, service.MsgNoVideoFile)
		return
	}
	defer part.Close()

	rec, svcErr := h.ingest.Upload(r.Context(), service.UploadParams{
		Reader:           part,
		OriginalFilename: part.FileName(),
		ContentType:      part.Header.Get("Content-Type"),
	})
	if svcErr != nil {
		writeServiceError(w, svcErr)
		return
	}

	writeJSON(w, http.StatusCreated, generated.UploadResponse{
		Message:   service.MsgUploaded,
		Recording: domainToAPIRecording(rec),
	})
}

// nextVideoPart пропускает части формы до файла в поле video.
func nextVideoPart(mr *multipart.Reader) (*multipart.Part, error) {
	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			return nil, errNoVideoPart
		}
		if err != nil {
			return nil, err
		}
		if part.FormName() == videoField && part.FileName() != "" {
			return part, nil
		}
		_ = part.Close()
	}
}

// ListRecordings обрабатывает GET /api/recordings.
// Все записи, новые первыми; пустая таблица даёт [].
func (h *RecordingsHandler) ListRecordings(w http.ResponseWriter, r *http.Request) {
	list, svcErr := h.catalog.List(r.Context())
	if svcErr != nil {
		writeServiceError(w, svcErr)
		return
	}

	resp := make(generated.RecordingList, 0, len(list))
	for _, rec := range list {
		resp = append(resp, domainToAPIRecording(rec))
	}
	writeJSON(w, http.StatusOK, resp)
}

// StreamRecording обрабатывает GET /api/recordings/{id}.
// Поддерживает Range requests (206). Заголовок Range читается сервисом из запроса.
func (h *RecordingsHandler) StreamRecording(w http.ResponseWriter, r *http.Request, id generated.RecordingId, _ generated.StreamRecordingParams) {
	if svcErr := h.stream.Serve(w, r, id); svcErr != nil {
		writeServiceError(w, svcErr)
	}
}

// DeleteRecording обрабатывает DELETE /api/recordings/{id}.
// Повторное удаление возвращает deletedRows = 0.
func (h *RecordingsHandler) DeleteRecording(w http.ResponseWriter, r *http.Request, id generated.RecordingId) {
	n, svcErr := h.catalog.Delete(r.Context(), id)
	if svcErr != nil {
		writeServiceError(w, svcErr)
		return
	}
	writeJSON(w, http.StatusOK, generated.DeleteResponse{DeletedRows: n})
}

// domainToAPIRecording преобразует доменную модель в API-формат.
func domainToAPIRecording(rec *model.Recording) generated.Recording {
	return generated.Recording{
		Id:        rec.ID,
		Filename:  rec.Filename,
		Filepath:  rec.Filepath,
		Filesize:  rec.Filesize,
		CreatedAt: rec.CreatedAt,
	}
}

// writeJSON записывает JSON-ответ с указанным статусом.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeServiceError отображает класс ошибки сервиса в ответ с ошибкой.
func writeServiceError(w http.ResponseWriter, svcErr *service.ServiceError) {
	switch {
	case errors.Is(svcErr, service.ErrNotFound):
		apierrors.NotFound(w, svcErr.Message)
	case errors.Is(svcErr, service.ErrUnsupportedMediaType):
		apierrors.UnsupportedMediaType(w, svcErr.Message)
	case errors.Is(svcErr, service.ErrInvalidRange):
		apierrors.InvalidRange(w, svcErr.Message)
	case errors.Is(svcErr, service.ErrValidation), errors.Is(svcErr, service.ErrPayloadTooLarge):
		apierrors.ValidationError(w, svcErr.Message)
	case errors.Is(svcErr, service.ErrStorageWrite), errors.Is(svcErr, service.ErrStorageRead):
		apierrors.InternalError(w, svcErr.Message)
	default:
		apierrors.WriteError(w, svcErr.StatusCode, svcErr.Message)
	}
}
