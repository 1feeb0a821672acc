package server

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bigkaa/recstore/internal/api/generated"
	"github.com/bigkaa/recstore/internal/config"
)

const testOrigin = "https://app.example.com"

// stubHandler — минимальная реализация ServerInterface для тестов роутера.
type stubHandler struct {
	streamedID int64
	rangeValue string
	metrics    *MetricsHandler
}

func (s *stubHandler) GetInfo(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) }
func (s *stubHandler) Reconcile(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}
func (s *stubHandler) GetOpenAPISpec(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}
func (s *stubHandler) ListRecordings(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte("[]"))
}
func (s *stubHandler) UploadRecording(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusCreated)
}
func (s *stubHandler) DeleteRecording(w http.ResponseWriter, _ *http.Request, _ generated.RecordingId) {
	w.WriteHeader(http.StatusOK)
}
func (s *stubHandler) StreamRecording(w http.ResponseWriter, _ *http.Request, id generated.RecordingId, params generated.StreamRecordingParams) {
	s.streamedID = id
	if params.Range != nil {
		s.rangeValue = *params.Range
	}
	w.WriteHeader(http.StatusOK)
}
func (s *stubHandler) HealthLive(w http.ResponseWriter, _ *http.Request)  { w.WriteHeader(http.StatusOK) }
func (s *stubHandler) HealthReady(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) }
func (s *stubHandler) GetMetrics(w http.ResponseWriter, r *http.Request)  { s.metrics.GetMetrics(w, r) }

var _ generated.ServerInterface = (*stubHandler)(nil)

func newTestServer(t *testing.T) (*Server, *stubHandler) {
	t.Helper()
	cfg := &config.Config{
		Port:            5000,
		CORSOrigin:      testOrigin,
		UploadRateLimit: 0,
		ShutdownTimeout: time.Second,
	}
	stub := &stubHandler{metrics: NewMetricsHandler()}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(cfg, logger, stub), stub
}

func TestRouter_StreamBindsIDAndRange(t *testing.T) {
	srv, stub := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/recordings/42", nil)
	req.Header.Set("Range", "bytes=0-1,5-6")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(42), stub.streamedID)
	assert.Equal(t, "bytes=0-1,5-6", stub.rangeValue)
}

func TestRouter_InvalidID(t *testing.T) {
	srv, _ := newTestServer(t)

	for _, method := range []string{http.MethodGet, http.MethodDelete} {
		req := httptest.NewRequest(method, "/api/recordings/abc", nil)
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code, method)
		assert.JSONEq(t, `{"error":"Invalid recording id"}`, rec.Body.String(), method)
	}
}

func TestRouter_UnknownRoute(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/unknown", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCORS_Preflight(t *testing.T) {
	srv, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/recordings/1", nil)
	req.Header.Set("Origin", testOrigin)
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	req.Header.Set("Access-Control-Request-Headers", "Range")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, testOrigin, rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
	assert.Equal(t, "Range", rec.Header().Get("Access-Control-Allow-Headers"))
}

func TestCORS_SimpleRequest(t *testing.T) {
	srv, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/recordings", nil)
	req.Header.Set("Origin", testOrigin)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, testOrigin, rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
	assert.Contains(t, rec.Header().Get("Access-Control-Expose-Headers"), "Content-Range")
}

func TestCORS_ForeignOrigin(t *testing.T) {
	srv, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/recordings", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Credentials"))
}

func TestMetricsEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)

	// Запрос, который попадёт в метрики
	srv.Handler().ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/recordings", nil))

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, "rs_http_requests_total"), "ожидалась метрика rs_http_requests_total")
}

func TestNew_Timeouts(t *testing.T) {
	cfg := &config.Config{
		Port:              8080,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       time.Minute,
		IdleTimeout:       2 * time.Minute,
		TLSCert:           "cert.pem",
		TLSKey:            "key.pem",
	}
	srv := New(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)), &stubHandler{metrics: NewMetricsHandler()})

	assert.Equal(t, ":8080", srv.httpServer.Addr)
	assert.Equal(t, 5*time.Second, srv.httpServer.ReadHeaderTimeout)
	assert.Equal(t, time.Minute, srv.httpServer.ReadTimeout)
	assert.Zero(t, srv.httpServer.WriteTimeout)
	assert.Equal(t, 2*time.Minute, srv.httpServer.IdleTimeout)
	require.NotNil(t, srv.httpServer.TLSConfig)
}
