package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/kodihomes/rental-platform/internal/core/domain"
)

// lookupUserQuery reads both record variants in one round trip. Staff rows
// rank first so an identity present in both tables resolves as staff.
const lookupUserQuery = `
SELECT kind, id, role, full_name FROM (
	SELECT 'staff' AS kind, 0 AS rank, u.id::text AS id, COALESCE(u.role, '') AS role, COALESCE(u.full_name, '') AS full_name
	FROM users u WHERE u.id::text = $1
	UNION ALL
	SELECT 'tenant' AS kind, 1 AS rank, t.id::text AS id, '' AS role, COALESCE(t.full_name, '') AS full_name
	FROM tenant_users t WHERE t.auth_user_id::text = $1
) records
ORDER BY rank
LIMIT 1`

const tenantProfileQuery = `
SELECT id::text, COALESCE(full_name, ''), COALESCE(phone_number, ''), COALESCE(email, '')
FROM tenant_users
WHERE auth_user_id::text = $1
LIMIT 1`

// UserDirectory reads the users and tenant_users tables.
type UserDirectory struct {
	db      *sql.DB
	timeout time.Duration
}

func NewUserDirectory(db *sql.DB, timeout time.Duration) *UserDirectory {
	return &UserDirectory{db: db, timeout: timeout}
}

func (r *UserDirectory) LookupUser(ctx context.Context, identityID string) (*domain.UserRecord, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	var rec domain.UserRecord
	var kind string
	err := r.db.QueryRowContext(ctx, lookupUserQuery, identityID).Scan(&kind, &rec.ID, &rec.StoredRole, &rec.FullName)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	rec.Kind = domain.UserKind(kind)
	return &rec, nil
}

func (r *UserDirectory) TenantProfile(ctx context.Context, identityID string) (*domain.TenantProfile, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	var p domain.TenantProfile
	err := r.db.QueryRowContext(ctx, tenantProfileQuery, identityID).Scan(&p.TenantUserID, &p.FullName, &p.Phone, &p.Email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrProfileNotFound
		}
		return nil, fmt.Errorf("load tenant profile: %w", err)
	}
	return &p, nil
}
