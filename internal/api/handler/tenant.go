package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	mw "github.com/edvin/nodepool/internal/api/middleware"
	"github.com/edvin/nodepool/internal/api/request"
	"github.com/edvin/nodepool/internal/api/response"
	"github.com/edvin/nodepool/internal/core"
)

type Tenant struct {
	svc *core.TenantService
}

func NewTenant(svc *core.TenantService) *Tenant {
	return &Tenant{svc: svc}
}

// List returns the tenants visible to the caller. Non-admin callers only see
// their own record.
func (h *Tenant) List(w http.ResponseWriter, r *http.Request) {
	p := request.ParsePagination(r)
	caller := mw.GetIdentity(r.Context())

	tenants, hasMore, err := h.svc.List(r.Context(), caller, p)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	var nextCursor string
	if hasMore && len(tenants) > 0 {
		nextCursor = tenants[len(tenants)-1].ID
	}
	response.WritePaginated(w, http.StatusOK, newTenantViews(tenants), nextCursor, hasMore)
}

// Create creates a tenant (admin only). The response carries the generated
// API key in plaintext; it is not retrievable afterwards.
func (h *Tenant) Create(w http.ResponseWriter, r *http.Request) {
	var req request.CreateTenant
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	caller := mw.GetIdentity(r.Context())
	result, err := h.svc.Create(r.Context(), caller, req)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response.WriteJSON(w, http.StatusCreated, newTenantView(result.Tenant, result.APIKey))
}

func (h *Tenant) Get(w http.ResponseWriter, r *http.Request) {
	id, err := request.RequireID(chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	caller := mw.GetIdentity(r.Context())
	tenant, err := h.svc.GetByID(r.Context(), caller, id)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, newTenantView(tenant, ""))
}

// Update applies a partial tenant update. The response includes the API key
// in plaintext only when this request reset or set it.
func (h *Tenant) Update(w http.ResponseWriter, r *http.Request) {
	id, err := request.RequireID(chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req request.UpdateTenant
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	caller := mw.GetIdentity(r.Context())
	result, err := h.svc.Update(r.Context(), caller, id, req)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, newTenantView(result.Tenant, result.APIKey))
}
