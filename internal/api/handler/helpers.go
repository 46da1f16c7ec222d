package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/edvin/nodepool/internal/api/response"
	"github.com/edvin/nodepool/internal/core"
	"github.com/edvin/nodepool/internal/model"
)

// writeServiceError maps a core error onto its HTTP status. Anything outside
// the taxonomy is an internal failure and stays opaque to the client.
func writeServiceError(w http.ResponseWriter, err error) {
	var ve *core.ValidationError
	switch {
	case errors.Is(err, core.ErrNotFound):
		response.WriteError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, core.ErrForbidden):
		response.WriteError(w, http.StatusForbidden, err.Error())
	case errors.As(err, &ve):
		response.WriteFieldError(w, http.StatusUnprocessableEntity, ve.Field, ve.Error())
	case errors.Is(err, core.ErrConflict):
		response.WriteError(w, http.StatusConflict, err.Error())
	default:
		response.WriteError(w, http.StatusInternalServerError, "internal error")
	}
}

// sshKeyMask replaces the stored SSH key in read responses; only presence is
// disclosed, never the value.
const sshKeyMask = "********"

// tenantView is the externally visible shape of a tenant. APIKey is only
// populated by the operation that minted the key.
type tenantView struct {
	ID                 string    `json:"id"`
	Name               string    `json:"name"`
	IsAdmin            bool      `json:"is_admin"`
	Active             bool      `json:"active"`
	SSHKey             string    `json:"ssh_key,omitempty"`
	APIKey             string    `json:"api_key,omitempty"`
	NodeQuota          *int64    `json:"node_quota"`
	SessionLifetime    *int64    `json:"session_lifetime"`
	SessionLifetimeMax *int64    `json:"session_lifetime_max"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

func newTenantView(t *model.Tenant, apiKey string) tenantView {
	v := tenantView{
		ID:                 t.ID,
		Name:               t.Name,
		IsAdmin:            t.IsAdmin,
		Active:             t.Active,
		APIKey:             apiKey,
		NodeQuota:          t.NodeQuota,
		SessionLifetime:    t.SessionLifetime,
		SessionLifetimeMax: t.SessionLifetimeMax,
		CreatedAt:          t.CreatedAt,
		UpdatedAt:          t.UpdatedAt,
	}
	if t.SSHKey != "" {
		v.SSHKey = sshKeyMask
	}
	return v
}

func newTenantViews(tenants []model.Tenant) []tenantView {
	views := make([]tenantView, 0, len(tenants))
	for i := range tenants {
		views = append(views, newTenantView(&tenants[i], ""))
	}
	return views
}
