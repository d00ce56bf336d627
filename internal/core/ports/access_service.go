package ports

import (
	"context"

	"github.com/kodihomes/rental-platform/internal/core/domain"
)

// ResolveRequest carries everything role resolution may use. Capability is
// an optional one-shot admin-mode token presented by the caller.
type ResolveRequest struct {
	Identity   *domain.Identity
	Capability string
}

// RoleResolver determines the single active role for a request.
type RoleResolver interface {
	Resolve(ctx context.Context, req ResolveRequest) (domain.Role, error)
}

// AuthState is what the guard knows about authentication when it runs.
type AuthState struct {
	Loading    bool
	Identity   *domain.Identity
	Capability string
}

// Requirement configures one guarded screen.
type Requirement struct {
	Screen        domain.Screen
	AllowedRoles  []domain.Role
	RequestedPath string
}

// GuardState is the guard's position in checking → {allowed, redirecting}.
type GuardState string

const (
	GuardChecking    GuardState = "checking"
	GuardAllowed     GuardState = "allowed"
	GuardRedirecting GuardState = "redirecting"
)

// Decision is the outcome of evaluating a Requirement.
type Decision struct {
	State      GuardState  `json:"state"`
	Screen     string      `json:"screen"`
	Role       domain.Role `json:"role,omitempty"`
	RedirectTo string      `json:"redirect_to,omitempty"`
	Message    string      `json:"message,omitempty"`
}

// Allowed reports whether the wrapped screen may render.
func (d Decision) Allowed() bool { return d.State == GuardAllowed }

// AccessGuard evaluates route requirements.
type AccessGuard interface {
	Evaluate(ctx context.Context, auth AuthState, req Requirement) Decision
}
