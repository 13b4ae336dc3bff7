package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"corpusqa/internal/rag"
)

// AskHandler handles question answering requests.
type AskHandler struct {
	engine rag.Engine
}

// NewAskHandler creates a new AskHandler.
func NewAskHandler(engine rag.Engine) *AskHandler {
	return &AskHandler{engine: engine}
}

// AskRequest is the HTTP payload for a question.
type AskRequest struct {
	Question string `json:"question"`
	K        int    `json:"k,omitempty"`
}

// ServeHTTP answers a question against the tenant named in the URL.
func (h *AskHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req AskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		writeErrorMessage(w, http.StatusBadRequest, "Question is required")
		return
	}
	if req.K < 0 {
		req.K = 0
	}

	result, err := h.engine.Ask(ctx, rag.AskRequest{
		Tenant:   chi.URLParam(r, "tenant"),
		Question: req.Question,
		K:        req.K,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}
