package model

import "time"

// Tenant is a billing/authorization principal that leases sessions of pooled
// nodes. It is never hard-deleted: retirement flips Active to false.
type Tenant struct {
	ID      string `json:"id" db:"id"`
	Name    string `json:"name" db:"name"`
	IsAdmin bool   `json:"is_admin" db:"is_admin"`
	Active  bool   `json:"active" db:"active"`
	// SSHKey is an opaque credential blob. It is stored verbatim but never
	// serialized; read responses only disclose its presence.
	SSHKey string `json:"-" db:"ssh_key"`
	// APIKeyHash is the sha256 hex digest of the tenant's API key. The raw
	// key is surfaced exactly once, by the operation that minted it.
	APIKeyHash         string    `json:"-" db:"api_key_hash"`
	NodeQuota          *int64    `json:"node_quota" db:"node_quota"`
	SessionLifetime    *int64    `json:"session_lifetime" db:"session_lifetime"`
	SessionLifetimeMax *int64    `json:"session_lifetime_max" db:"session_lifetime_max"`
	CreatedAt          time.Time `json:"created_at" db:"created_at"`
	UpdatedAt          time.Time `json:"updated_at" db:"updated_at"`
}
