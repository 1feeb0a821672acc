// handler.go — APIHandler реализует generated.ServerInterface,
// делегируя вызовы в отдельные handler'ы по доменам.
package handlers

import (
	"net/http"

	"github.com/bigkaa/recstore/internal/api/generated"
	"github.com/bigkaa/recstore/internal/server"
)

// APIHandler — единая реализация ServerInterface, собирающая
// все доменные handlers в один объект.
type APIHandler struct {
	recordings  *RecordingsHandler
	system      *SystemHandler
	maintenance *MaintenanceHandler
	health      *HealthHandler
	openapi     *OpenAPIHandler
	metrics     *server.MetricsHandler
}

// NewAPIHandler создаёт единый handler для всех endpoints.
func NewAPIHandler(
	recordings *RecordingsHandler,
	system *SystemHandler,
	maintenance *MaintenanceHandler,
	health *HealthHandler,
	openapi *OpenAPIHandler,
	metrics *server.MetricsHandler,
) *APIHandler {
	return &APIHandler{
		recordings:  recordings,
		system:      system,
		maintenance: maintenance,
		health:      health,
		openapi:     openapi,
		metrics:     metrics,
	}
}

// --- Recordings ---

func (h *APIHandler) ListRecordings(w http.ResponseWriter, r *http.Request) {
	h.recordings.ListRecordings(w, r)
}

func (h *APIHandler) UploadRecording(w http.ResponseWriter, r *http.Request) {
	h.recordings.UploadRecording(w, r)
}

func (h *APIHandler) StreamRecording(w http.ResponseWriter, r *http.Request, id generated.RecordingId, params generated.StreamRecordingParams) {
	h.recordings.StreamRecording(w, r, id, params)
}

func (h *APIHandler) DeleteRecording(w http.ResponseWriter, r *http.Request, id generated.RecordingId) {
	h.recordings.DeleteRecording(w, r, id)
}

// --- System ---

func (h *APIHandler) GetInfo(w http.ResponseWriter, r *http.Request) {
	h.system.GetInfo(w, r)
}

func (h *APIHandler) GetOpenAPISpec(w http.ResponseWriter, r *http.Request) {
	h.openapi.GetOpenAPISpec(w, r)
}

// --- Maintenance ---

func (h *APIHandler) Reconcile(w http.ResponseWriter, r *http.Request) {
	h.maintenance.Reconcile(w, r)
}

// --- Health ---

func (h *APIHandler) HealthLive(w http.ResponseWriter, r *http.Request) {
	h.health.HealthLive(w, r)
}

func (h *APIHandler) HealthReady(w http.ResponseWriter, r *http.Request) {
	h.health.HealthReady(w, r)
}

// --- Metrics ---

func (h *APIHandler) GetMetrics(w http.ResponseWriter, r *http.Request) {
	h.metrics.GetMetrics(w, r)
}

// Проверка соответствия интерфейсу на этапе компиляции.
var _ generated.ServerInterface = (*APIHandler)(nil)
