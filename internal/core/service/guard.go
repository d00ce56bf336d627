package service

import (
	"context"
	"net/url"

	"github.com/rs/zerolog"

	"github.com/kodihomes/rental-platform/internal/api/metrics"
	"github.com/kodihomes/rental-platform/internal/core/domain"
	"github.com/kodihomes/rental-platform/internal/core/ports"
)

// AccessMatrix answers screen permission questions from the static table in
// domain. A screen without an entry is denied.
type AccessMatrix struct {
	log zerolog.Logger
}

func NewAccessMatrix(log zerolog.Logger) *AccessMatrix {
	return &AccessMatrix{log: log}
}

// IsAllowed reports whether role may view screen.
func (m *AccessMatrix) IsAllowed(role domain.Role, screen domain.Screen) bool {
	roles, ok := domain.ScreenRoles(screen)
	if !ok {
		m.log.Warn().Str("screen", string(screen)).Msg("screen has no access matrix entry, denying")
		return false
	}
	return containsRole(roles, role)
}

const unableToVerify = "unable to verify access"

// Guard decides whether a protected screen may render for a request.
type Guard struct {
	resolver ports.RoleResolver
	matrix   *AccessMatrix
	log      zerolog.Logger
}

func NewGuard(resolver ports.RoleResolver, matrix *AccessMatrix, log zerolog.Logger) *Guard {
	return &Guard{resolver: resolver, matrix: matrix, log: log}
}

// Evaluate walks checking → {allowed, redirecting}. The screen is allowed
// only when the caller's allow-list and the access matrix both agree.
func (g *Guard) Evaluate(ctx context.Context, auth ports.AuthState, req ports.Requirement) ports.Decision {
	d := ports.Decision{State: ports.GuardChecking, Screen: string(req.Screen)}
	if auth.Loading {
		return d
	}

	if auth.Identity == nil || auth.Identity.ID == "" {
		d.State = ports.GuardRedirecting
		d.Role = domain.RoleGuest
		d.RedirectTo = signInRedirect(req.RequestedPath)
		g.record(d, "unauthenticated")
		return d
	}

	role, err := g.resolver.Resolve(ctx, ports.ResolveRequest{
		Identity:   auth.Identity,
		Capability: auth.Capability,
	})
	if err != nil {
		g.log.Error().Err(err).Str("screen", string(req.Screen)).Str("identity_id", auth.Identity.ID).Msg("access check failed")
		d.State = ports.GuardRedirecting
		d.RedirectTo = signInRedirect(req.RequestedPath)
		d.Message = unableToVerify
		g.record(d, "error")
		return d
	}
	d.Role = role

	if !g.matrix.IsAllowed(role, req.Screen) || !containsRole(req.AllowedRoles, role) {
		g.log.Info().
			Str("screen", string(req.Screen)).
			Str("identity_id", auth.Identity.ID).
			Str("role", string(role)).
			Msg("access denied, redirecting to role home")
		d.State = ports.GuardRedirecting
		d.RedirectTo = domain.HomeFor(role)
		g.record(d, "denied")
		return d
	}

	d.State = ports.GuardAllowed
	g.record(d, "allowed")
	return d
}

// record labels screens without a matrix entry "unknown" so callers cannot
// grow the label set.
func (g *Guard) record(d ports.Decision, outcome string) {
	screen := d.Screen
	if _, ok := domain.ScreenRoles(domain.Screen(screen)); !ok {
		screen = "unknown"
	}
	metrics.AccessDecisionsTotal.WithLabelValues(screen, outcome).Inc()
}

func signInRedirect(requested string) string {
	if requested == "" {
		return domain.SignInPath
	}
	return domain.SignInPath + "?redirect=" + url.QueryEscape(requested)
}

func containsRole(roles []domain.Role, role domain.Role) bool {
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}
