package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bigkaa/recstore/internal/api/generated"
	"github.com/bigkaa/recstore/internal/config"
	"github.com/bigkaa/recstore/internal/database"
	"github.com/bigkaa/recstore/internal/repository"
	"github.com/bigkaa/recstore/internal/server"
	"github.com/bigkaa/recstore/internal/service"
	"github.com/bigkaa/recstore/internal/storage/filestore"
)

// testEnv — собранный сервис поверх временных SQLite и директории загрузок.
type testEnv struct {
	handler http.Handler
	dataDir string
	repo    repository.RecordingRepository
	doc     *openapi3.T
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func setupEnv(t *testing.T, maxUploadSize int64) *testEnv {
	t.Helper()
	ctx := context.Background()
	logger := testLogger()

	dir := t.TempDir()
	cfg := &config.Config{
		Port:            5000,
		DataDir:         filepath.Join(dir, "uploads"),
		DBPath:          filepath.Join(dir, "database.db"),
		MaxUploadSize:   maxUploadSize,
		CORSOrigin:      config.DefaultCORSOrigin,
		CacheSize:       16,
		CacheTTL:        time.Minute,
		ShutdownTimeout: time.Second,
	}

	db, err := database.Open(ctx, cfg.DBPath, logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, database.Migrate(cfg.DBPath, logger))

	store, err := filestore.New(cfg.DataDir)
	require.NoError(t, err)

	repo := repository.NewRecordingRepository(db)
	cache := service.NewRecordingCache(repo, cfg.CacheSize, cfg.CacheTTL)
	catalog := service.NewCatalogService(repo, cache, logger)
	ingest := service.NewIngestService(repo, store, cfg.MaxUploadSize, logger)
	stream := service.NewStreamService(cache, store, logger)
	reconciler := service.NewReconcileService(repo, store, service.ReconcileOptions{OrphanGrace: time.Hour}, logger)

	doc, err := generated.LoadValidated(ctx)
	require.NoError(t, err)
	openapiHandler, err := NewOpenAPIHandler(doc)
	require.NoError(t, err)

	diskUsage := func() (int64, int64, int64, error) { return 1000, 400, 600, nil }

	api := NewAPIHandler(
		NewRecordingsHandler(ingest, catalog, stream, cfg.MaxUploadSize, logger),
		NewSystemHandler(cfg, catalog, diskUsage, logger),
		NewMaintenanceHandler(reconciler, logger),
		NewHealthHandler(cfg.DataDir, database.NewReadinessChecker(db)),
		openapiHandler,
		server.NewMetricsHandler(),
	)

	return &testEnv{
		handler: server.New(cfg, logger, api).Handler(),
		dataDir: cfg.DataDir,
		repo:    repo,
		doc:     doc,
	}
}

func (e *testEnv) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

// assertSchema проверяет тело ответа по схеме из документа OpenAPI.
func (e *testEnv) assertSchema(t *testing.T, schemaName string, body []byte) {
	t.Helper()
	ref, ok := e.doc.Components.Schemas[schemaName]
	require.True(t, ok, "схема %s отсутствует", schemaName)

	var value any
	require.NoError(t, json.Unmarshal(body, &value))
	assert.NoError(t, ref.Value.VisitJSON(value), "ответ не соответствует схеме %s", schemaName)
}

// uploadRequest собирает multipart-запрос с одной частью.
func uploadRequest(t *testing.T, field, filename, contentType string, content []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, field, filename))
	if contentType != "" {
		h.Set("Content-Type", contentType)
	}
	part, err := mw.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/recordings", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func (e *testEnv) upload(t *testing.T, content []byte) generated.Recording {
	t.Helper()
	rec := e.do(uploadRequest(t, "video", "screen.webm", "video/webm", content))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp generated.UploadResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.Recording
}

func blobCount(t *testing.T, dir string) int {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	return len(entries)
}

func TestUploadRecording(t *testing.T) {
	env := setupEnv(t, 1<<20)
	content := bytes.Repeat([]byte("w"), 1234)

	rec := env.do(uploadRequest(t, "video", "screen.webm", "video/webm", content))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	env.assertSchema(t, "UploadResponse", rec.Body.Bytes())

	var resp generated.UploadResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Recording uploaded successfully", resp.Message)
	assert.Equal(t, int64(len(content)), resp.Recording.Filesize)
	assert.Regexp(t, `^recording_\d+\.webm$`, resp.Recording.Filename)

	data, err := os.ReadFile(resp.Recording.Filepath)
	require.NoError(t, err)
	assert.Equal(t, content, data)
}

func TestUploadRecording_NonVideo(t *testing.T) {
	env := setupEnv(t, 1<<20)

	rec := env.do(uploadRequest(t, "video", "notes.txt", "text/plain", []byte("hello")))
	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
	assert.JSONEq(t, `{"error":"Only video files are allowed!"}`, rec.Body.String())

	list, err := env.repo.ListAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.Zero(t, blobCount(t, env.dataDir))
}

func TestUploadRecording_NoVideoField(t *testing.T) {
	env := setupEnv(t, 1<<20)

	tests := map[string]*http.Request{
		"другое поле":  uploadRequest(t, "file", "a.webm", "video/webm", []byte("x")),
		"не multipart": httptest.NewRequest(http.MethodPost, "/api/recordings", bytes.NewReader([]byte("raw"))),
	}
	for name, req := range tests {
		t.Run(name, func(t *testing.T) {
			rec := env.do(req)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.JSONEq(t, `{"error":"No video file provided"}`, rec.Body.String())
		})
	}
}

func TestUploadRecording_TooLarge(t *testing.T) {
	env := setupEnv(t, 1000)

	rec := env.do(uploadRequest(t, "video", "big.webm", "video/webm", make([]byte, 1001)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"File size too large"}`, rec.Body.String())

	list, err := env.repo.ListAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.Zero(t, blobCount(t, env.dataDir))
}

func TestListRecordings(t *testing.T) {
	env := setupEnv(t, 1<<20)

	rec := env.do(httptest.NewRequest(http.MethodGet, "/api/recordings", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())

	first := env.upload(t, []byte("one"))
	second := env.upload(t, []byte("two"))
	third := env.upload(t, []byte("three"))

	rec = env.do(httptest.NewRequest(http.MethodGet, "/api/recordings", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	env.assertSchema(t, "RecordingList", rec.Body.Bytes())

	var list generated.RecordingList
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 3)
	assert.Equal(t, []int64{third.Id, second.Id, first.Id}, []int64{list[0].Id, list[1].Id, list[2].Id})
}

func TestStreamRecording(t *testing.T) {
	env := setupEnv(t, 1<<20)
	content := make([]byte, 1000)
	for i := range content {
		content[i] = byte(i)
	}
	recording := env.upload(t, content)
	url := fmt.Sprintf("/api/recordings/%d", recording.Id)

	t.Run("весь файл", func(t *testing.T) {
		rec := env.do(httptest.NewRequest(http.MethodGet, url, nil))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "1000", rec.Header().Get("Content-Length"))
		assert.Equal(t, "video/webm", rec.Header().Get("Content-Type"))
		assert.Equal(t, content, rec.Body.Bytes())
	})

	t.Run("диапазон", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, url, nil)
		req.Header.Set("Range", "bytes=100-199")
		rec := env.do(req)
		require.Equal(t, http.StatusPartialContent, rec.Code)
		assert.Equal(t, "bytes 100-199/1000", rec.Header().Get("Content-Range"))
		assert.Equal(t, "100", rec.Header().Get("Content-Length"))
		assert.Equal(t, content[100:200], rec.Body.Bytes())
	})

	t.Run("за границами", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, url, nil)
		req.Header.Set("Range", "bytes=1000-1100")
		rec := env.do(req)
		assert.Equal(t, http.StatusRequestedRangeNotSatisfiable, rec.Code)
		assert.Equal(t, "bytes */1000", rec.Header().Get("Content-Range"))
		assert.Equal(t, "bytes", rec.Header().Get("Accept-Ranges"))
		assert.JSONEq(t, `{"error":"Requested range not satisfiable"}`, rec.Body.String())
	})
}

func TestStreamRecording_NotFound(t *testing.T) {
	env := setupEnv(t, 1<<20)

	rec := env.do(httptest.NewRequest(http.MethodGet, "/api/recordings/999", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"Recording not found"}`, rec.Body.String())
}

func TestStreamRecording_BlobMissing(t *testing.T) {
	env := setupEnv(t, 1<<20)
	recording := env.upload(t, []byte("data"))
	require.NoError(t, os.Remove(recording.Filepath))

	rec := env.do(httptest.NewRequest(http.MethodGet, fmt.Sprintf("/api/recordings/%d", recording.Id), nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"File not found on server"}`, rec.Body.String())
}

func TestDeleteRecording(t *testing.T) {
	env := setupEnv(t, 1<<20)
	recording := env.upload(t, []byte("data"))
	url := fmt.Sprintf("/api/recordings/%d", recording.Id)

	// Прогреваем кэш метаданных
	require.Equal(t, http.StatusOK, env.do(httptest.NewRequest(http.MethodGet, url, nil)).Code)

	rec := env.do(httptest.NewRequest(http.MethodDelete, url, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	env.assertSchema(t, "DeleteResponse", rec.Body.Bytes())
	assert.JSONEq(t, `{"deletedRows":1}`, rec.Body.String())

	rec = env.do(httptest.NewRequest(http.MethodDelete, url, nil))
	assert.JSONEq(t, `{"deletedRows":0}`, rec.Body.String())

	rec = env.do(httptest.NewRequest(http.MethodGet, "/api/recordings", nil))
	assert.JSONEq(t, `[]`, rec.Body.String())

	rec = env.do(httptest.NewRequest(http.MethodGet, url, nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// Blob-файл остаётся на диске
	_, err := os.Stat(recording.Filepath)
	assert.NoError(t, err)
}

func TestGetInfo(t *testing.T) {
	env := setupEnv(t, 4096)
	env.upload(t, []byte("12345"))

	rec := env.do(httptest.NewRequest(http.MethodGet, "/api/info", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	env.assertSchema(t, "ServiceInfo", rec.Body.Bytes())

	var info generated.ServiceInfo
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &info))
	assert.Equal(t, "recstore", info.Service)
	assert.Equal(t, int64(4096), info.MaxUploadSize)
	assert.Equal(t, generated.RecordingStats{Count: 1, TotalBytes: 5}, info.Recordings)
	require.NotNil(t, info.Capacity)
	assert.Equal(t, int64(600), info.Capacity.AvailableBytes)
}

func TestGetOpenAPISpec(t *testing.T) {
	env := setupEnv(t, 1<<20)

	rec := env.do(httptest.NewRequest(http.MethodGet, "/api/openapi.json", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	doc, err := openapi3.NewLoader().LoadFromData(rec.Body.Bytes())
	require.NoError(t, err)
	assert.NotNil(t, doc.Paths.Find("/api/recordings/{id}"))
}

func TestHealth(t *testing.T) {
	env := setupEnv(t, 1<<20)

	rec := env.do(httptest.NewRequest(http.MethodGet, "/health/live", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	checks, ok := body["checks"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, checks, "database")
	assert.Contains(t, checks, "filesystem")

	// Файл проверки не остаётся в директории загрузок
	assert.Zero(t, blobCount(t, env.dataDir))
}

// failingChecker — SQLite недоступен.
type failingChecker struct{}

func (failingChecker) CheckReady() (string, string) { return statusFail, "SQLite недоступен" }

func TestHealthReady_DatabaseDown(t *testing.T) {
	h := NewHealthHandler(t.TempDir(), failingChecker{})

	rec := httptest.NewRecorder()
	h.HealthReady(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestReconcile(t *testing.T) {
	env := setupEnv(t, 1<<20)
	recording := env.upload(t, []byte("data"))
	require.NoError(t, os.Remove(recording.Filepath))

	rec := env.do(httptest.NewRequest(http.MethodPost, "/api/maintenance/reconcile", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	env.assertSchema(t, "ReconcileResponse", rec.Body.Bytes())

	var resp generated.ReconcileResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Summary.MissingBlobs)
	require.Len(t, resp.Issues, 1)
	assert.Equal(t, generated.MissingBlob, resp.Issues[0].Type)
}

// busyRunner — reconciliation уже выполняется.
type busyRunner struct{}

func (busyRunner) RunOnce(context.Context) (*generated.ReconcileResponse, bool, error) {
	return nil, true, nil
}
func (busyRunner) IsInProgress() bool { return true }

func TestReconcile_InProgress(t *testing.T) {
	h := NewMaintenanceHandler(busyRunner{}, testLogger())

	rec := httptest.NewRecorder()
	h.Reconcile(rec, httptest.NewRequest(http.MethodPost, "/api/maintenance/reconcile", nil))
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.JSONEq(t, `{"error":"Reconciliation already in progress"}`, rec.Body.String())
}
