package model

import "time"

// Session is a time-bounded lease of pooled nodes belonging to one tenant.
// ExpiresAt only ever moves backwards once a retirement cascade has touched it.
type Session struct {
	ID        string    `json:"id" db:"id"`
	TenantID  string    `json:"tenant_id" db:"tenant_id"`
	Nodes     int64     `json:"nodes" db:"nodes"`
	ExpiresAt time.Time `json:"expires_at" db:"expires_at"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Live reports whether the session still holds its nodes at the given instant.
func (s *Session) Live(now time.Time) bool {
	return s.ExpiresAt.After(now)
}
