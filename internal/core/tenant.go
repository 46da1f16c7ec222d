package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/edvin/nodepool/internal/api/request"
	"github.com/edvin/nodepool/internal/model"
	"github.com/edvin/nodepool/internal/platform"
)

// TenantService orchestrates tenant lifecycle operations. Every update runs
// as one transaction with the tenant row locked, so concurrent updates to the
// same tenant serialize while updates to different tenants proceed in
// parallel.
type TenantService struct {
	db TxDB
}

// NewTenantService creates a new TenantService.
func NewTenantService(db TxDB) *TenantService {
	return &TenantService{db: db}
}

const tenantColumns = `id, name, is_admin, active, ssh_key, api_key_hash,
	node_quota, session_lifetime, session_lifetime_max, created_at, updated_at`

func scanTenant(row pgx.Row) (*model.Tenant, error) {
	var t model.Tenant
	err := row.Scan(&t.ID, &t.Name, &t.IsAdmin, &t.Active, &t.SSHKey, &t.APIKeyHash,
		&t.NodeQuota, &t.SessionLifetime, &t.SessionLifetimeMax, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// lockTenant loads a tenant row under FOR UPDATE within the given
// transaction, serializing all writers touching that tenant.
func lockTenant(ctx context.Context, db DB, id string) (*model.Tenant, error) {
	t, err := scanTenant(db.QueryRow(ctx,
		`SELECT `+tenantColumns+` FROM tenants WHERE id = $1 FOR UPDATE`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("tenant %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("lock tenant %s: %w", id, err)
	}
	return t, nil
}

// TenantResult pairs a tenant with the raw API key minted by the operation
// that produced it. APIKey is empty for operations that did not touch the
// key; the raw value is never recoverable afterwards.
type TenantResult struct {
	Tenant *model.Tenant
	APIKey string
}

// Create inserts a new tenant. Only admins may create tenants, and creation
// is the only place is_admin can be set. The tenant starts active with a
// freshly generated API key whose raw value is returned exactly once.
func (s *TenantService) Create(ctx context.Context, caller Identity, req request.CreateTenant) (*TenantResult, error) {
	if err := Authorize(caller, nil, OpCreate); err != nil {
		return nil, err
	}

	nodeQuota, err := normalizeNodeQuota(req.NodeQuota, nil)
	if err != nil {
		return nil, err
	}
	lifetime, err := normalizeLifetime("session_lifetime", req.SessionLifetime, nil)
	if err != nil {
		return nil, err
	}
	lifetimeMax, err := normalizeLifetime("session_lifetime_max", req.SessionLifetimeMax, nil)
	if err != nil {
		return nil, err
	}

	rawKey, keyHash := GenerateAPIKey()
	now := time.Now().UTC()
	tenant := &model.Tenant{
		ID:                 platform.NewID(),
		Name:               req.Name,
		IsAdmin:            req.IsAdmin,
		Active:             true,
		SSHKey:             req.SSHKey,
		APIKeyHash:         keyHash,
		NodeQuota:          nodeQuota,
		SessionLifetime:    lifetime,
		SessionLifetimeMax: lifetimeMax,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	_, err = s.db.Exec(ctx,
		`INSERT INTO tenants (id, name, is_admin, active, ssh_key, api_key_hash,
		   node_quota, session_lifetime, session_lifetime_max, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		tenant.ID, tenant.Name, tenant.IsAdmin, tenant.Active, tenant.SSHKey, tenant.APIKeyHash,
		tenant.NodeQuota, tenant.SessionLifetime, tenant.SessionLifetimeMax,
		tenant.CreatedAt, tenant.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert tenant: %w", mapPgError(err))
	}

	return &TenantResult{Tenant: tenant, APIKey: rawKey}, nil
}

// GetByID retrieves a tenant, applying the caller's visibility rules. A
// missing tenant is NotFound regardless of caller; an existing tenant the
// caller may not read is Forbidden.
func (s *TenantService) GetByID(ctx context.Context, caller Identity, id string) (*model.Tenant, error) {
	t, err := scanTenant(s.db.QueryRow(ctx,
		`SELECT `+tenantColumns+` FROM tenants WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("tenant %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get tenant %s: %w", id, err)
	}
	if err := Authorize(caller, t, OpRead); err != nil {
		return nil, err
	}
	return t, nil
}

// GetByName retrieves a tenant by its unique name. Used by the auth
// middleware to resolve credentials; no caller scoping applies.
func (s *TenantService) GetByName(ctx context.Context, name string) (*model.Tenant, error) {
	t, err := scanTenant(s.db.QueryRow(ctx,
		`SELECT `+tenantColumns+` FROM tenants WHERE name = $1`, name))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("tenant %q: %w", name, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get tenant %q: %w", name, err)
	}
	return t, nil
}

// List retrieves tenants visible to the caller with cursor-based pagination.
// Non-admin callers only ever see their own record; the filter is applied in
// the query, before any row reaches the caller.
func (s *TenantService) List(ctx context.Context, caller Identity, p request.Pagination) ([]model.Tenant, bool, error) {
	query := `SELECT ` + tenantColumns + ` FROM tenants WHERE 1=1`
	args := []any{}
	argIdx := 1

	if tenantID := VisibleTenantID(caller); tenantID != "" {
		query += fmt.Sprintf(` AND id = $%d`, argIdx)
		args = append(args, tenantID)
		argIdx++
	}
	if p.Cursor != "" {
		query += fmt.Sprintf(` AND id > $%d`, argIdx)
		args = append(args, p.Cursor)
		argIdx++
	}

	query += ` ORDER BY id`
	query += fmt.Sprintf(` LIMIT $%d`, argIdx)
	args = append(args, p.Limit+1)

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, false, fmt.Errorf("list tenants: %w", err)
	}
	defer rows.Close()

	var tenants []model.Tenant
	for rows.Next() {
		var t model.Tenant
		if err := rows.Scan(&t.ID, &t.Name, &t.IsAdmin, &t.Active, &t.SSHKey, &t.APIKeyHash,
			&t.NodeQuota, &t.SessionLifetime, &t.SessionLifetimeMax, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, false, fmt.Errorf("scan tenant: %w", err)
		}
		tenants = append(tenants, t)
	}
	if err := rows.Err(); err != nil {
		return nil, false, fmt.Errorf("iterate tenants: %w", err)
	}

	hasMore := len(tenants) > p.Limit
	if hasMore {
		tenants = tenants[:p.Limit]
	}
	return tenants, hasMore, nil
}

// retires reports whether an active-flag change is the retire transition.
// Only active -> inactive triggers the session cascade; unretire never does.
func retires(wasActive, nowActive bool) bool {
	return wasActive && !nowActive
}

// Update applies a partial tenant update as one atomic operation: lock and
// authorize, enforce the inactive freeze, normalize quota fields, apply the
// API key operation, flip the active flag with its session cascade, then
// persist. Any failure rolls the whole update back.
func (s *TenantService) Update(ctx context.Context, caller Identity, id string, req request.UpdateTenant) (*TenantResult, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tenant update: %w", err)
	}
	defer tx.Rollback(ctx)

	t, err := lockTenant(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if err := Authorize(caller, t, OpUpdate); err != nil {
		return nil, err
	}

	// An inactive tenant is frozen: nothing but the active flag may change.
	if !t.Active && req.TouchesFrozenFields() {
		return nil, validationErrorf("tenant", "tenant %s is retired; only active may be changed", t.Name)
	}

	if t.NodeQuota, err = normalizeNodeQuota(req.NodeQuota, t.NodeQuota); err != nil {
		return nil, err
	}
	if t.SessionLifetime, err = normalizeLifetime("session_lifetime", req.SessionLifetime, t.SessionLifetime); err != nil {
		return nil, err
	}
	if t.SessionLifetimeMax, err = normalizeLifetime("session_lifetime_max", req.SessionLifetimeMax, t.SessionLifetimeMax); err != nil {
		return nil, err
	}

	if req.SSHKey != nil {
		t.SSHKey = *req.SSHKey
	}

	var rawKey string
	switch req.APIKey.Op {
	case request.APIKeyReset:
		rawKey, t.APIKeyHash = GenerateAPIKey()
	case request.APIKeySet:
		hash, err := AdoptAPIKey(req.APIKey.Value)
		if err != nil {
			return nil, err
		}
		rawKey, t.APIKeyHash = req.APIKey.Value, hash
	}

	now := time.Now().UTC()
	if req.Active != nil {
		wasActive := t.Active
		t.Active = *req.Active
		if retires(wasActive, t.Active) {
			if _, err := expireAllForTenant(ctx, tx, t.ID, now); err != nil {
				return nil, err
			}
		}
	}

	t.UpdatedAt = now
	_, err = tx.Exec(ctx,
		`UPDATE tenants SET active = $1, ssh_key = $2, api_key_hash = $3,
		   node_quota = $4, session_lifetime = $5, session_lifetime_max = $6, updated_at = $7
		 WHERE id = $8`,
		t.Active, t.SSHKey, t.APIKeyHash,
		t.NodeQuota, t.SessionLifetime, t.SessionLifetimeMax, t.UpdatedAt, t.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("update tenant %s: %w", t.ID, mapPgError(err))
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tenant update: %w", err)
	}
	return &TenantResult{Tenant: t, APIKey: rawKey}, nil
}
