package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"corpusqa/internal/storage"
)

// ConversationHandler serves a tenant's question/answer history.
type ConversationHandler struct {
	tenants       TenantManager
	conversations storage.ConversationStore
}

// NewConversationHandler creates a new ConversationHandler.
func NewConversationHandler(tenants TenantManager, conversations storage.ConversationStore) *ConversationHandler {
	return &ConversationHandler{tenants: tenants, conversations: conversations}
}

// ConversationEntry is one logged exchange.
type ConversationEntry struct {
	ID         string          `json:"id"`
	Question   string          `json:"question"`
	Answer     string          `json:"answer"`
	Confidence float64         `json:"confidence"`
	Citations  json.RawMessage `json:"citations"`
	CreatedAt  time.Time       `json:"created_at"`
}

// List returns a tenant's exchanges, newest first. The optional limit
// query parameter caps the page size.
func (h *ConversationHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	handle, err := h.tenants.Resolve(ctx, chi.URLParam(r, "tenant"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit < 0 {
			writeErrorMessage(w, http.StatusBadRequest, "Invalid limit")
			return
		}
	}

	records, err := h.conversations.ListByTenant(ctx, handle.ID(), limit)
	if err != nil {
		writeError(w, r, err)
		return
	}

	entries := make([]ConversationEntry, 0, len(records))
	for _, record := range records {
		citations := json.RawMessage(record.Citations)
		if !json.Valid(citations) {
			citations = json.RawMessage("[]")
		}
		entries = append(entries, ConversationEntry{
			ID:         record.ID,
			Question:   record.Question,
			Answer:     record.Answer,
			Confidence: record.Confidence,
			Citations:  citations,
			CreatedAt:  record.CreatedAt,
		})
	}

	writeJSON(w, http.StatusOK, map[string]any{"conversations": entries})
}

// Clear removes a tenant's logged exchanges.
func (h *ConversationHandler) Clear(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	handle, err := h.tenants.Resolve(ctx, chi.URLParam(r, "tenant"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := h.conversations.ClearByTenant(ctx, handle.ID()); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
