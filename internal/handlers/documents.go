package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"corpusqa/internal/chunker"
	"corpusqa/internal/contextutil"
	"corpusqa/internal/ingest"
	"corpusqa/internal/tenant"
)

// Ingestor is the slice of the ingestion pipeline the HTTP layer uses.
type Ingestor interface {
	Ingest(ctx context.Context, h *tenant.Handle, segments []ingest.Segment) (ingest.Result, error)
	SuccessRate() float64
}

// DocumentHandler handles document upload and segment ingestion.
type DocumentHandler struct {
	tenants  TenantManager
	pipeline Ingestor
	chunker  *chunker.Chunker
}

// NewDocumentHandler creates a new DocumentHandler.
func NewDocumentHandler(tenants TenantManager, pipeline Ingestor) *DocumentHandler {
	return &DocumentHandler{
		tenants:  tenants,
		pipeline: pipeline,
		chunker:  chunker.New(),
	}
}

// UploadRequest is a markdown or plain-text document to ingest.
type UploadRequest struct {
	Filename string `json:"filename"`
	Content  string `json:"content"`
}

// IngestResponse reports what an upload or segment batch stored.
type IngestResponse struct {
	Source   string   `json:"source,omitempty"`
	Segments int      `json:"segments"`
	Stored   int      `json:"stored"`
	Failed   int      `json:"failed"`
	IDs      []string `json:"ids,omitempty"`
}

// Upload chunks a document and ingests the resulting segments.
func (h *DocumentHandler) Upload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	var req UploadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if strings.TrimSpace(req.Filename) == "" {
		writeErrorMessage(w, http.StatusBadRequest, "Filename is required")
		return
	}

	handle, err := h.tenants.Resolve(ctx, chi.URLParam(r, "tenant"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	segments := h.chunker.Chunk([]byte(req.Content), req.Filename)
	if len(segments) == 0 {
		writeErrorMessage(w, http.StatusBadRequest, "Document contains no ingestible text")
		return
	}

	result, err := h.pipeline.Ingest(ctx, handle, segments)
	if err != nil {
		writeError(w, r, err)
		return
	}

	logger.InfoContext(ctx, "document uploaded",
		"tenant", handle.Name(), "source", req.Filename,
		"segments", len(segments), "stored", result.Stored, "failed", result.Failed)

	writeJSON(w, http.StatusOK, IngestResponse{
		Source:   req.Filename,
		Segments: len(segments),
		Stored:   result.Stored,
		Failed:   result.Failed,
		IDs:      result.IDs,
	})
}

// SegmentPayload is one pre-chunked segment supplied by the caller.
type SegmentPayload struct {
	Source string `json:"source"`
	Page   int    `json:"page"`
	Seq    int    `json:"seq"`
	Text   string `json:"text"`
}

// IngestSegmentsRequest is a batch of pre-chunked segments.
type IngestSegmentsRequest struct {
	Segments []SegmentPayload `json:"segments"`
}

// IngestSegments stores externally-chunked segments directly.
func (h *DocumentHandler) IngestSegments(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req IngestSegmentsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if len(req.Segments) == 0 {
		writeErrorMessage(w, http.StatusBadRequest, "At least one segment is required")
		return
	}

	handle, err := h.tenants.Resolve(ctx, chi.URLParam(r, "tenant"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	segments := make([]ingest.Segment, len(req.Segments))
	for i, s := range req.Segments {
		segments[i] = ingest.Segment{Source: s.Source, Page: s.Page, Seq: s.Seq, Text: s.Text}
	}

	result, err := h.pipeline.Ingest(ctx, handle, segments)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, IngestResponse{
		Segments: len(segments),
		Stored:   result.Stored,
		Failed:   result.Failed,
		IDs:      result.IDs,
	})
}
