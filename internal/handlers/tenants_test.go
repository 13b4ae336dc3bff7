package handlers

import (
	"context"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"

	"corpusqa/internal/tenant"
)

func mountTenantRoutes(env *testEnv) http.Handler {
	h := NewTenantHandler(env.manager)
	r := chi.NewRouter()
	r.Get("/api/tenants", h.List)
	r.Post("/api/tenants", h.Create)
	r.Delete("/api/tenants/{tenant}", h.Delete)
	r.Get("/api/tenants/{tenant}/stats", h.Stats)
	return r
}

func TestTenantCreate(t *testing.T) {
	env := newTestEnv(t)
	router := mountTenantRoutes(env)

	rec := doJSON(t, router, http.MethodPost, "/api/tenants", CreateTenantRequest{Name: "acme"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", rec.Code, rec.Body.String())
	}
	resp := decodeBody[TenantResponse](t, rec)
	if resp.Name != "acme" {
		t.Errorf("name = %q, want acme", resp.Name)
	}
}

func TestTenantCreate_InvalidName(t *testing.T) {
	env := newTestEnv(t)
	router := mountTenantRoutes(env)

	rec := doJSON(t, router, http.MethodPost, "/api/tenants", CreateTenantRequest{Name: "bad/name"})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestTenantList(t *testing.T) {
	env := newTestEnv(t)
	env.createTenant(t, "alpha")
	env.createTenant(t, "beta")
	router := mountTenantRoutes(env)

	rec := doJSON(t, router, http.MethodGet, "/api/tenants", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	resp := decodeBody[struct {
		Tenants []tenant.Info `json:"tenants"`
	}](t, rec)
	if len(resp.Tenants) != 2 {
		t.Errorf("len(tenants) = %d, want 2", len(resp.Tenants))
	}
}

func TestTenantDelete(t *testing.T) {
	env := newTestEnv(t)
	env.createTenant(t, "acme")
	router := mountTenantRoutes(env)

	rec := doJSON(t, router, http.MethodDelete, "/api/tenants/acme", nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204: %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, router, http.MethodDelete, "/api/tenants/acme", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("second delete status = %d, want 404", rec.Code)
	}
}

func TestTenantStats(t *testing.T) {
	env := newTestEnv(t)
	h := env.createTenant(t, "acme")
	router := mountTenantRoutes(env)

	if _, err := env.manager.Add(context.Background(), h, []tenant.Record{
		{Source: "a.pdf", Seq: 0, Text: "one", Vector: []float32{1, 0, 0, 0}},
		{Source: "b.pdf", Seq: 0, Text: "two", Vector: []float32{0, 1, 0, 0}},
	}); err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	rec := doJSON(t, router, http.MethodGet, "/api/tenants/acme/stats", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	stats := decodeBody[tenant.Stats](t, rec)
	if stats.Segments != 2 || stats.Sources != 2 {
		t.Errorf("stats = %+v, want 2 segments / 2 sources", stats)
	}
}

func TestTenantStats_Unknown(t *testing.T) {
	env := newTestEnv(t)
	router := mountTenantRoutes(env)

	rec := doJSON(t, router, http.MethodGet, "/api/tenants/missing/stats", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}
