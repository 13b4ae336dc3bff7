package handlers

import (
	"net/http"
	"testing"
)

func TestHealth(t *testing.T) {
	env := newTestEnv(t)
	handler := NewHealthHandler(env.db, env.vectors, &fakeIngestor{})

	rec := doJSON(t, handler, http.MethodGet, "/api/health", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}

	resp := decodeBody[HealthResponse](t, rec)
	if resp.Status != "healthy" {
		t.Errorf("status = %q, want healthy", resp.Status)
	}
	if resp.Checks["database"] != "ok" || resp.Checks["vector_store"] != "ok" {
		t.Errorf("checks = %v, want all ok", resp.Checks)
	}
	if resp.IngestSuccessRate != 1 {
		t.Errorf("ingest_success_rate = %v, want 1", resp.IngestSuccessRate)
	}
}

func TestHealth_NilPipeline(t *testing.T) {
	env := newTestEnv(t)
	handler := NewHealthHandler(env.db, env.vectors, nil)

	rec := doJSON(t, handler, http.MethodGet, "/api/health", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
}

func TestHealth_DatabaseDown(t *testing.T) {
	env := newTestEnv(t)
	handler := NewHealthHandler(env.db, env.vectors, nil)

	if err := env.db.Close(); err != nil {
		t.Fatalf("closing db: %v", err)
	}

	rec := doJSON(t, handler, http.MethodGet, "/api/health", nil)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}

	resp := decodeBody[HealthResponse](t, rec)
	if resp.Status != "unhealthy" {
		t.Errorf("status = %q, want unhealthy", resp.Status)
	}
	if resp.Checks["database"] != "error" {
		t.Errorf("database check = %q, want error", resp.Checks["database"])
	}
}
