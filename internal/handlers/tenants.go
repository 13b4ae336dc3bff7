package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"corpusqa/internal/contextutil"
	"corpusqa/internal/tenant"
)

// TenantManager is the slice of the tenant manager the HTTP layer uses.
type TenantManager interface {
	CreateOrSwitch(ctx context.Context, name string) (*tenant.Handle, error)
	Resolve(ctx context.Context, name string) (*tenant.Handle, error)
	List(ctx context.Context) ([]tenant.Info, error)
	Delete(ctx context.Context, name string) error
	Stats(ctx context.Context, h *tenant.Handle) (tenant.Stats, error)
}

// TenantHandler handles tenant lifecycle requests.
type TenantHandler struct {
	tenants TenantManager
}

// NewTenantHandler creates a new TenantHandler.
func NewTenantHandler(tenants TenantManager) *TenantHandler {
	return &TenantHandler{tenants: tenants}
}

// CreateTenantRequest is the payload for creating a tenant.
type CreateTenantRequest struct {
	Name string `json:"name"`
}

// TenantResponse describes a tenant.
type TenantResponse struct {
	Name string `json:"name"`
}

// Create provisions a tenant namespace, or switches to it if it exists.
func (h *TenantHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req CreateTenantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	handle, err := h.tenants.CreateOrSwitch(ctx, req.Name)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, TenantResponse{Name: handle.Name()})
}

// List returns all known tenants.
func (h *TenantHandler) List(w http.ResponseWriter, r *http.Request) {
	infos, err := h.tenants.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"tenants": infos})
}

// Delete removes a tenant and everything it stored. The delete is
// synchronous; a storage failure surfaces as an error, never as a
// silent success.
func (h *TenantHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	name := chi.URLParam(r, "tenant")

	if err := h.tenants.Delete(ctx, name); err != nil {
		writeError(w, r, err)
		return
	}

	contextutil.LoggerFromContext(ctx).InfoContext(ctx, "tenant deleted via API", "tenant", name)
	w.WriteHeader(http.StatusNoContent)
}

// Stats reports segment and source counts for a tenant.
func (h *TenantHandler) Stats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	handle, err := h.tenants.Resolve(ctx, chi.URLParam(r, "tenant"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	stats, err := h.tenants.Stats(ctx, handle)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
