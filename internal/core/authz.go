package core

import (
	"fmt"

	"github.com/edvin/nodepool/internal/model"
)

// Identity is the resolved caller: its tenant ID and admin flag. The auth
// middleware produces it from transport credentials; the core trusts it.
type Identity struct {
	TenantID string
	IsAdmin  bool
}

// Operation names what the caller wants to do to a tenant record.
type Operation int

const (
	OpRead Operation = iota
	OpUpdate
	OpCreate
)

// Authorize decides whether the caller may perform op on the target tenant.
// Admins may do anything. Non-admins may only read and update their own
// record. The target is assumed to exist; missing targets are ErrNotFound at
// the lookup site, never masked as forbidden.
func Authorize(caller Identity, target *model.Tenant, op Operation) error {
	if caller.IsAdmin {
		return nil
	}
	if op == OpCreate {
		return fmt.Errorf("%w: only admins may create tenants", ErrForbidden)
	}
	if target != nil && target.ID == caller.TenantID {
		return nil
	}
	return fmt.Errorf("%w: not your tenant", ErrForbidden)
}

// VisibleTenantID returns the tenant ID collection reads must be scoped to,
// or "" when the caller may see every tenant.
func VisibleTenantID(caller Identity) string {
	if caller.IsAdmin {
		return ""
	}
	return caller.TenantID
}
