// Пакет service — бизнес-логика сервиса записей.
// errors.go — таксономия ошибок и их отображение в HTTP-коды.
package service

import (
	"errors"
	"fmt"
	"net/http"
)

// Классы ошибок сервисного слоя. ServiceError.Err оборачивает один из них.
var (
	ErrValidation           = errors.New("некорректный запрос")
	ErrUnsupportedMediaType = errors.New("недопустимый тип файла")
	ErrPayloadTooLarge      = errors.New("размер файла превышает лимит")
	ErrNotFound             = errors.New("не найдено")
	ErrInvalidRange         = errors.New("некорректный диапазон")
	ErrStorageWrite         = errors.New("ошибка записи в хранилище")
	ErrStorageRead          = errors.New("ошибка чтения из хранилища")
)

// Сообщения клиенту. Формат ответа: {"error": "<сообщение>"}.
const (
	MsgNoVideoFile         = "No video file provided"
	MsgFileTooLarge        = "File size too large"
	MsgOnlyVideo           = "Only video files are allowed!"
	MsgUploadFailed        = "Failed to upload recording"
	MsgFetchFailed         = "Failed to fetch recordings"
	MsgRecordingNotFound   = "Recording not found"
	MsgFileNotFound        = "File not found on server"
	MsgStreamFailed        = "Failed to stream recording"
	MsgInvalidRange        = "Requested range not satisfiable"
	MsgInvalidID           = "Invalid recording id"
	MsgDeleteFailed        = "Failed to delete recording"
	MsgUploaded            = "Recording uploaded successfully"
	MsgReconcileInProgress = "Reconciliation already in progress"
)

// ServiceError — ошибка операции с HTTP-кодом и сообщением для клиента.
// Подробности (Err) логируются на сервере и клиенту не передаются.
type ServiceError struct {
	StatusCode int
	Message    string
	Err        error
}

func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

// newServiceError создаёт ServiceError, оборачивая класс ошибки и причину.
func newServiceError(status int, message string, class error, cause error) *ServiceError {
	err := class
	if cause != nil {
		err = fmt.Errorf("%w: %w", class, cause)
	}
	return &ServiceError{StatusCode: status, Message: message, Err: err}
}

// --- Конструкторы для типичных ошибок ---

func validationError(message string) *ServiceError {
	return newServiceError(http.StatusBadRequest, message, ErrValidation, nil)
}

func unsupportedMediaType() *ServiceError {
	return newServiceError(http.StatusUnsupportedMediaType, MsgOnlyVideo, ErrUnsupportedMediaType, nil)
}

func payloadTooLarge() *ServiceError {
	return newServiceError(http.StatusBadRequest, MsgFileTooLarge, ErrPayloadTooLarge, nil)
}

func notFound(message string) *ServiceError {
	return newServiceError(http.StatusNotFound, message, ErrNotFound, nil)
}

func invalidRange(cause error) *ServiceError {
	return newServiceError(http.StatusRequestedRangeNotSatisfiable, MsgInvalidRange, ErrInvalidRange, cause)
}

func storageWrite(message string, cause error) *ServiceError {
	return newServiceError(http.StatusInternalServerError, message, ErrStorageWrite, cause)
}

func storageRead(message string, cause error) *ServiceError {
	return newServiceError(http.StatusInternalServerError, message, ErrStorageRead, cause)
}
