package request

import (
	"encoding/json"
	"fmt"
)

// APIKeyResetMarker is the sentinel payload value requesting a freshly
// generated key instead of adopting a supplied one.
const APIKeyResetMarker = "reset"

// APIKeyOp enumerates what an update wants done with the tenant's API key.
type APIKeyOp int

const (
	APIKeyUnchanged APIKeyOp = iota
	APIKeyReset
	APIKeySet
)

// APIKeyUpdate is the polymorphic api_key update field: absent (no change),
// the literal "reset" marker, or an explicit key value to adopt.
type APIKeyUpdate struct {
	Op    APIKeyOp
	Value string
}

func (k *APIKeyUpdate) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf(`api_key must be %q or a key string`, APIKeyResetMarker)
	}
	if s == APIKeyResetMarker {
		k.Op = APIKeyReset
		return nil
	}
	k.Op = APIKeySet
	k.Value = s
	return nil
}

type CreateTenant struct {
	Name               string           `json:"name" validate:"required,max=64"`
	SSHKey             string           `json:"ssh_key" validate:"required"`
	IsAdmin            bool             `json:"is_admin"`
	NodeQuota          OptionalInt      `json:"node_quota"`
	SessionLifetime    OptionalLifetime `json:"session_lifetime"`
	SessionLifetimeMax OptionalLifetime `json:"session_lifetime_max"`
}

type UpdateTenant struct {
	Active             *bool            `json:"active"`
	SSHKey             *string          `json:"ssh_key"`
	APIKey             APIKeyUpdate     `json:"api_key"`
	NodeQuota          OptionalInt      `json:"node_quota"`
	SessionLifetime    OptionalLifetime `json:"session_lifetime"`
	SessionLifetimeMax OptionalLifetime `json:"session_lifetime_max"`
}

// TouchesFrozenFields reports whether the update changes anything besides the
// active flag. An inactive tenant rejects such updates wholesale.
func (r *UpdateTenant) TouchesFrozenFields() bool {
	return r.SSHKey != nil ||
		r.APIKey.Op != APIKeyUnchanged ||
		r.NodeQuota.State != FieldUnchanged ||
		r.SessionLifetime.State != FieldUnchanged ||
		r.SessionLifetimeMax.State != FieldUnchanged
}
