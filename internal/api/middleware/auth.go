package middleware

import (
	"context"
	"net/http"

	"github.com/edvin/nodepool/internal/api/response"
	"github.com/edvin/nodepool/internal/core"
)

type contextKey string

const identityKey contextKey = "caller_identity"

// Auth returns a middleware that resolves HTTP Basic credentials (tenant name
// and API key) into a caller identity. Retired tenants cannot authenticate.
// All failures look identical to the client.
func Auth(tenants *core.TenantService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			name, key, ok := r.BasicAuth()
			if !ok {
				w.Header().Set("WWW-Authenticate", `Basic realm="nodepool"`)
				response.WriteError(w, http.StatusUnauthorized, "missing credentials")
				return
			}

			tenant, err := tenants.GetByName(r.Context(), name)
			if err != nil || !tenant.Active || !core.ValidateAPIKey(tenant.APIKeyHash, key) {
				response.WriteError(w, http.StatusUnauthorized, "invalid credentials")
				return
			}

			ctx := WithIdentity(r.Context(), core.Identity{
				TenantID: tenant.ID,
				IsAdmin:  tenant.IsAdmin,
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// WithIdentity attaches a caller identity to the context.
func WithIdentity(ctx context.Context, identity core.Identity) context.Context {
	return context.WithValue(ctx, identityKey, identity)
}

// GetIdentity extracts the caller identity from the request context.
func GetIdentity(ctx context.Context) core.Identity {
	identity, _ := ctx.Value(identityKey).(core.Identity)
	return identity
}
