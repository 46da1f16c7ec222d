package request

type CreateSession struct {
	Nodes int64 `json:"nodes" validate:"required,min=1"`
	// Lifetime optionally overrides the tenant's session lifetime; it is
	// clamped to the tenant's session_lifetime_max when one is set.
	Lifetime OptionalLifetime `json:"lifetime"`
}
