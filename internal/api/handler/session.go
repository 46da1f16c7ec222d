package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	mw "github.com/edvin/nodepool/internal/api/middleware"
	"github.com/edvin/nodepool/internal/api/request"
	"github.com/edvin/nodepool/internal/api/response"
	"github.com/edvin/nodepool/internal/core"
)

type Session struct {
	svc *core.SessionService
}

func NewSession(svc *core.SessionService) *Session {
	return &Session{svc: svc}
}

// Create leases a session of pooled nodes for the calling tenant, enforcing
// its node quota and lifetime limits.
func (h *Session) Create(w http.ResponseWriter, r *http.Request) {
	var req request.CreateSession
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	caller := mw.GetIdentity(r.Context())
	session, err := h.svc.Create(r.Context(), caller, req)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response.WriteJSON(w, http.StatusCreated, session)
}

// List returns the sessions visible to the caller.
func (h *Session) List(w http.ResponseWriter, r *http.Request) {
	p := request.ParsePagination(r)
	caller := mw.GetIdentity(r.Context())

	sessions, hasMore, err := h.svc.List(r.Context(), caller, p)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	var nextCursor string
	if hasMore && len(sessions) > 0 {
		nextCursor = sessions[len(sessions)-1].ID
	}
	response.WritePaginated(w, http.StatusOK, sessions, nextCursor, hasMore)
}

func (h *Session) Get(w http.ResponseWriter, r *http.Request) {
	id, err := request.RequireID(chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	caller := mw.GetIdentity(r.Context())
	session, err := h.svc.GetByID(r.Context(), caller, id)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, session)
}
