package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/lonepengu/backend/internal/service"
)

type AIHandler struct {
	proxyService *service.AIProxyService
}

func NewAIHandler(proxyService *service.AIProxyService) *AIHandler {
	return &AIHandler{proxyService: proxyService}
}

type ProxyRequest struct {
	Endpoint string                 `json:"endpoint"`
	Body     map[string]interface{} `json:"body"`
}

// Proxy forwards the request to the upstream AI API. Upstream failures are
// absorbed by the service's demo fallback, so the only error responses here
// are for malformed input.
func (h *AIHandler) Proxy(w http.ResponseWriter, r *http.Request) {
	var req ProxyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", "")
		return
	}

	if req.Endpoint == "" {
		writeError(w, http.StatusBadRequest, "Endpoint is required", "")
		return
	}
	if req.Body == nil {
		req.Body = map[string]interface{}{}
	}

	resp, err := h.proxyService.Proxy(r.Context(), req.Endpoint, req.Body)
	if err != nil {
		writeStorageError(w, "ai.Proxy", err, false)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Write(resp)
}
