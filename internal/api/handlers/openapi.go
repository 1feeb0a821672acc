// openapi.go — обработчик GET /api/openapi.json.
package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/getkin/kin-openapi/openapi3"
)

// OpenAPIHandler отдаёт провалидированный документ OpenAPI в JSON.
type OpenAPIHandler struct {
	body []byte
}

// NewOpenAPIHandler сериализует документ один раз при старте.
func NewOpenAPIHandler(doc *openapi3.T) (*OpenAPIHandler, error) {
	body, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("ошибка сериализации OpenAPI: %w", err)
	}
	return &OpenAPIHandler{body: body}, nil
}

// GetOpenAPISpec обрабатывает GET /api/openapi.json.
func (h *OpenAPIHandler) GetOpenAPISpec(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(h.body)
}
