package ports

import (
	"context"

	"github.com/kodihomes/rental-platform/internal/core/domain"
)

// UserDirectory reads identity records from the relational backend.
type UserDirectory interface {
	// LookupUser returns the single record for identityID, staff taking
	// precedence over tenant. It returns domain.ErrUserNotFound when neither
	// variant exists.
	LookupUser(ctx context.Context, identityID string) (*domain.UserRecord, error)
	// TenantProfile returns the contact details of the tenant user linked to
	// identityID, or domain.ErrProfileNotFound.
	TenantProfile(ctx context.Context, identityID string) (*domain.TenantProfile, error)
}
