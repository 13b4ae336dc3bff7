package handlers

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"corpusqa/internal/contextutil"
	"corpusqa/internal/vectorstore"
)

// HealthHandler reports the reachability of the service's dependencies.
type HealthHandler struct {
	db                 *sql.DB
	vectors            vectorstore.VectorStore
	pipeline           Ingestor
	healthCheckTimeout time.Duration
}

// NewHealthHandler creates a new HealthHandler. pipeline may be nil.
func NewHealthHandler(db *sql.DB, vectors vectorstore.VectorStore, pipeline Ingestor) *HealthHandler {
	return &HealthHandler{
		db:                 db,
		vectors:            vectors,
		pipeline:           pipeline,
		healthCheckTimeout: 5 * time.Second,
	}
}

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status            string            `json:"status"`
	Timestamp         string            `json:"timestamp"`
	Checks            map[string]string `json:"checks"`
	IngestSuccessRate float64           `json:"ingest_success_rate"`
	Issues            []string          `json:"issues,omitempty"`
}

// ServeHTTP checks the database and the vector store and reports 503
// when either is unreachable.
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	checkCtx, cancel := context.WithTimeout(ctx, h.healthCheckTimeout)
	defer cancel()

	checks := make(map[string]string)
	var issues []string

	if err := h.db.PingContext(checkCtx); err != nil {
		logger.WarnContext(ctx, "database health check failed", "error", err)
		checks["database"] = "error"
		issues = append(issues, "database_unavailable")
	} else {
		checks["database"] = "ok"
	}

	// Existence of the probe collection is irrelevant; only an
	// unreachable store is a failure.
	if _, err := h.vectors.CollectionExists(checkCtx, "healthcheck"); err != nil {
		logger.WarnContext(ctx, "vector store health check failed", "error", err)
		checks["vector_store"] = "error"
		issues = append(issues, "vector_store_unavailable")
	} else {
		checks["vector_store"] = "ok"
	}

	status := "healthy"
	httpStatus := http.StatusOK
	if len(issues) > 0 {
		status = "unhealthy"
		httpStatus = http.StatusServiceUnavailable
	}

	response := HealthResponse{
		Status:    status,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Checks:    checks,
		Issues:    issues,
	}
	if h.pipeline != nil {
		response.IngestSuccessRate = h.pipeline.SuccessRate()
	}

	writeJSON(w, httpStatus, response)
}
