package core

import (
	"github.com/edvin/nodepool/internal/api/request"
	"github.com/edvin/nodepool/internal/model"
)

// QuotaDefaults carries the process-wide fallbacks consulted when a tenant's
// quota field is unset. The value is threaded in explicitly from config; there
// is no global.
type QuotaDefaults struct {
	NodeQuota       int64
	SessionLifetime int64
}

// EffectiveNodeQuota resolves the node quota enforced for a tenant.
func (d QuotaDefaults) EffectiveNodeQuota(t *model.Tenant) int64 {
	if t.NodeQuota != nil {
		return *t.NodeQuota
	}
	return d.NodeQuota
}

// EffectiveLifetime resolves the session lifetime granted to a tenant, in
// seconds. A requested override takes precedence over the tenant value, the
// tenant value over the default, and the result is clamped to the tenant's
// session_lifetime_max when one is set.
func (d QuotaDefaults) EffectiveLifetime(t *model.Tenant, requested int64) int64 {
	lifetime := d.SessionLifetime
	if t.SessionLifetime != nil {
		lifetime = *t.SessionLifetime
	}
	if requested > 0 {
		lifetime = requested
	}
	if t.SessionLifetimeMax != nil && lifetime > *t.SessionLifetimeMax {
		lifetime = *t.SessionLifetimeMax
	}
	return lifetime
}

// normalizeNodeQuota merges a three-state node_quota field onto the current
// value. Negative quotas are rejected; clearing yields nil (use the default).
func normalizeNodeQuota(f request.OptionalInt, current *int64) (*int64, error) {
	switch f.State {
	case request.FieldUnchanged:
		return current, nil
	case request.FieldCleared:
		return nil, nil
	default:
		if f.Value < 0 {
			return nil, validationErrorf("node_quota", "must not be negative, got %d", f.Value)
		}
		v := f.Value
		return &v, nil
	}
}

// normalizeLifetime merges a three-state lifetime field onto the current
// value. Set values arrive either as seconds or as a duration token; both are
// canonicalized to positive seconds.
func normalizeLifetime(field string, f request.OptionalLifetime, current *int64) (*int64, error) {
	switch f.State {
	case request.FieldUnchanged:
		return current, nil
	case request.FieldCleared:
		return nil, nil
	}

	seconds := f.Seconds
	if f.IsToken {
		parsed, err := ParseLifetime(f.Token)
		if err != nil {
			return nil, validationErrorf(field, "%v", err)
		}
		seconds = parsed
	}
	if seconds <= 0 {
		return nil, validationErrorf(field, "must be positive, got %d", seconds)
	}
	return &seconds, nil
}
