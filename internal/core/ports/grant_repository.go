package ports

import (
	"context"
	"time"

	"github.com/kodihomes/rental-platform/internal/core/domain"
)

// GrantRepository persists administrative role grants and their audit trail.
type GrantRepository interface {
	// ActiveGrants returns unrevoked, unexpired grants matching the
	// identity's email or id.
	ActiveGrants(ctx context.Context, id domain.Identity, now time.Time) ([]domain.RoleGrant, error)
	List(ctx context.Context, now time.Time) ([]domain.RoleGrant, error)
	Create(ctx context.Context, grant *domain.RoleGrant) error
	Revoke(ctx context.Context, grantID string, at time.Time) error
	// EnsureBootstrap upserts configuration-seeded grants.
	EnsureBootstrap(ctx context.Context, grants []domain.RoleGrant) error
	InsertAudit(ctx context.Context, entry *domain.GrantAuditEntry) error
}

// CapabilityStore enforces single use of capability tokens.
type CapabilityStore interface {
	// Consume atomically marks jti as used. It returns
	// domain.ErrCapabilityConsumed if jti was already used.
	Consume(ctx context.Context, jti string, ttl time.Duration) error
}
