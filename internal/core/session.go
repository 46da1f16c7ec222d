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

// SessionService manages node-lease sessions against the core database.
type SessionService struct {
	db       TxDB
	defaults QuotaDefaults
}

// NewSessionService creates a new SessionService.
func NewSessionService(db TxDB, defaults QuotaDefaults) *SessionService {
	return &SessionService{db: db, defaults: defaults}
}

// Create leases a new session for the calling tenant. The tenant row is
// locked for the duration so the quota check cannot race a concurrent create
// or a retirement cascade.
func (s *SessionService) Create(ctx context.Context, caller Identity, req request.CreateSession) (*model.Session, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin session create: %w", err)
	}
	defer tx.Rollback(ctx)

	tenant, err := lockTenant(ctx, tx, caller.TenantID)
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	if !tenant.Active {
		return nil, validationErrorf("tenant", "tenant %s is retired", tenant.Name)
	}

	var requested int64
	if req.Lifetime.State == request.FieldSet {
		merged, err := normalizeLifetime("lifetime", req.Lifetime, nil)
		if err != nil {
			return nil, err
		}
		requested = *merged
	}

	now := time.Now().UTC()
	var usedNodes int64
	err = tx.QueryRow(ctx,
		`SELECT COALESCE(SUM(nodes), 0) FROM sessions WHERE tenant_id = $1 AND expires_at > $2`,
		tenant.ID, now,
	).Scan(&usedNodes)
	if err != nil {
		return nil, fmt.Errorf("count leased nodes for tenant %s: %w", tenant.ID, err)
	}

	quota := s.defaults.EffectiveNodeQuota(tenant)
	if usedNodes+req.Nodes > quota {
		return nil, validationErrorf("nodes",
			"node quota exceeded: %d leased + %d requested > %d", usedNodes, req.Nodes, quota)
	}

	lifetime := s.defaults.EffectiveLifetime(tenant, requested)
	session := &model.Session{
		ID:        platform.NewID(),
		TenantID:  tenant.ID,
		Nodes:     req.Nodes,
		ExpiresAt: now.Add(time.Duration(lifetime) * time.Second),
		CreatedAt: now,
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO sessions (id, tenant_id, nodes, expires_at, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		session.ID, session.TenantID, session.Nodes, session.ExpiresAt, session.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert session: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit session create: %w", err)
	}
	return session, nil
}

// GetByID retrieves a session, applying the caller's visibility rules.
func (s *SessionService) GetByID(ctx context.Context, caller Identity, id string) (*model.Session, error) {
	var sess model.Session
	err := s.db.QueryRow(ctx,
		`SELECT id, tenant_id, nodes, expires_at, created_at FROM sessions WHERE id = $1`, id,
	).Scan(&sess.ID, &sess.TenantID, &sess.Nodes, &sess.ExpiresAt, &sess.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("session %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get session %s: %w", id, err)
	}
	if !caller.IsAdmin && sess.TenantID != caller.TenantID {
		return nil, fmt.Errorf("session %s: %w", id, ErrForbidden)
	}
	return &sess, nil
}

// List retrieves sessions visible to the caller with cursor-based pagination.
// Non-admin callers only ever see their own tenant's sessions.
func (s *SessionService) List(ctx context.Context, caller Identity, p request.Pagination) ([]model.Session, bool, error) {
	query := `SELECT id, tenant_id, nodes, expires_at, created_at FROM sessions WHERE 1=1`
	args := []any{}
	argIdx := 1

	if tenantID := VisibleTenantID(caller); tenantID != "" {
		query += fmt.Sprintf(` AND tenant_id = $%d`, argIdx)
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
		return nil, false, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []model.Session
	for rows.Next() {
		var sess model.Session
		if err := rows.Scan(&sess.ID, &sess.TenantID, &sess.Nodes, &sess.ExpiresAt, &sess.CreatedAt); err != nil {
			return nil, false, fmt.Errorf("scan session: %w", err)
		}
		sessions = append(sessions, sess)
	}
	if err := rows.Err(); err != nil {
		return nil, false, fmt.Errorf("iterate sessions: %w", err)
	}

	hasMore := len(sessions) > p.Limit
	if hasMore {
		sessions = sessions[:p.Limit]
	}
	return sessions, hasMore, nil
}

// expireAllForTenant forces every still-live session of a tenant to expire at
// the given instant. Sessions already expired are left untouched, and the
// WHERE clause guarantees no expiry ever moves later. Runs against the
// caller's transaction so the retirement and the cascade commit together.
func expireAllForTenant(ctx context.Context, db DB, tenantID string, now time.Time) (int64, error) {
	tag, err := db.Exec(ctx,
		`UPDATE sessions SET expires_at = $2 WHERE tenant_id = $1 AND expires_at > $2`,
		tenantID, now,
	)
	if err != nil {
		return 0, fmt.Errorf("expire sessions for tenant %s: %w", tenantID, err)
	}
	return tag.RowsAffected(), nil
}
