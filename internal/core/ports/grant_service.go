package ports

import (
	"context"
	"time"

	"github.com/kodihomes/rental-platform/internal/core/domain"
)

// CreateGrantInput describes a new administrative role grant.
type CreateGrantInput struct {
	SubjectKind domain.GrantSubjectKind
	Subject     string
	Role        domain.Role
	Mode        domain.GrantMode
	Reason      string
	ExpiresAt   *time.Time
}

// IssuedCapability is a signed one-shot admin-mode token.
type IssuedCapability struct {
	Token     string    `json:"token"`
	Subject   string    `json:"subject"`
	ExpiresAt time.Time `json:"expires_at"`
}

// GrantService manages break-glass role assignments.
type GrantService interface {
	CreateGrant(ctx context.Context, actor domain.Identity, in CreateGrantInput) (*domain.RoleGrant, error)
	ListGrants(ctx context.Context) ([]domain.RoleGrant, error)
	RevokeGrant(ctx context.Context, actor domain.Identity, grantID string) error
	IssueCapability(ctx context.Context, actor domain.Identity, subjectID string) (*IssuedCapability, error)
}
