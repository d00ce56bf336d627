package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/kodihomes/rental-platform/internal/api/metrics"
	"github.com/kodihomes/rental-platform/internal/core/domain"
	"github.com/kodihomes/rental-platform/internal/core/ports"
)

// Resolution sources, used as metric labels.
const (
	sourceAnonymous     = "anonymous"
	sourceOverrideGrant = "override_grant"
	sourceCapability    = "capability"
	sourceStaffRecord   = "staff_record"
	sourceTenantRecord  = "tenant_record"
	sourceFallbackGrant = "fallback_grant"
	sourceDefault       = "default"
	sourcePanic         = "panic"
)

// RoleResolver determines the active role of an identity. Resolution is
// never cached; each call queries the backend again.
type RoleResolver struct {
	users  ports.UserDirectory
	grants ports.GrantRepository
	caps   ports.CapabilityStore
	issuer *CapabilityIssuer
	log    zerolog.Logger
	now    func() time.Time
}

func NewRoleResolver(
	users ports.UserDirectory,
	grants ports.GrantRepository,
	caps ports.CapabilityStore,
	issuer *CapabilityIssuer,
	log zerolog.Logger,
) *RoleResolver {
	return &RoleResolver{
		users:  users,
		grants: grants,
		caps:   caps,
		issuer: issuer,
		log:    log,
		now:    time.Now,
	}
}

// Resolve applies, in order: override grants, a one-shot admin capability,
// the backend user record, fallback grants, and finally guest. Backend
// failures count as "not found". The only error returned is
// domain.ErrResolutionFailed, when ctx ended before resolution completed.
func (r *RoleResolver) Resolve(ctx context.Context, req ports.ResolveRequest) (role domain.Role, err error) {
	defer func() {
		if p := recover(); p != nil {
			r.log.Error().Interface("panic", p).Msg("role resolution panicked, defaulting to guest")
			metrics.RoleResolutionsTotal.WithLabelValues(string(domain.RoleGuest), sourcePanic).Inc()
			role, err = domain.RoleGuest, nil
		}
	}()

	role, source := r.resolve(ctx, req)
	if ctxErr := ctx.Err(); ctxErr != nil {
		return domain.RoleGuest, fmt.Errorf("%w: %v", domain.ErrResolutionFailed, ctxErr)
	}
	metrics.RoleResolutionsTotal.WithLabelValues(string(role), source).Inc()
	return role, nil
}

func (r *RoleResolver) resolve(ctx context.Context, req ports.ResolveRequest) (domain.Role, string) {
	id := req.Identity
	if id == nil || id.ID == "" {
		return domain.RoleGuest, sourceAnonymous
	}
	now := r.now().UTC()

	grants := r.activeGrants(ctx, *id, now)
	if g, ok := pickGrant(grants, *id, domain.GrantModeOverride, now); ok {
		r.audit(ctx, g, *id, now)
		return g.Role, sourceOverrideGrant
	}

	if req.Capability != "" && r.consumeCapability(ctx, req.Capability, id.ID) {
		return domain.RoleAdmin, sourceCapability
	}

	rec, err := r.users.LookupUser(ctx, id.ID)
	switch {
	case err == nil:
		role, known := rec.Role()
		if !known {
			r.log.Warn().Str("identity_id", id.ID).Str("stored_role", rec.StoredRole).Msg("unrecognized stored role")
		}
		if rec.Kind == domain.UserKindTenant {
			return role, sourceTenantRecord
		}
		return role, sourceStaffRecord
	case errors.Is(err, domain.ErrUserNotFound):
	default:
		r.log.Warn().Err(err).Str("identity_id", id.ID).Msg("user lookup failed, treating as not found")
	}

	if g, ok := pickGrant(grants, *id, domain.GrantModeFallback, now); ok {
		r.audit(ctx, g, *id, now)
		return g.Role, sourceFallbackGrant
	}

	return domain.RoleGuest, sourceDefault
}

func (r *RoleResolver) activeGrants(ctx context.Context, id domain.Identity, now time.Time) []domain.RoleGrant {
	if r.grants == nil {
		return nil
	}
	grants, err := r.grants.ActiveGrants(ctx, id, now)
	if err != nil {
		r.log.Warn().Err(err).Str("identity_id", id.ID).Msg("grant lookup failed, ignoring grants")
		return nil
	}
	return grants
}

// consumeCapability verifies the token and burns it. Any failure leaves
// the caller without the capability.
func (r *RoleResolver) consumeCapability(ctx context.Context, token, identityID string) bool {
	if r.issuer == nil || r.caps == nil {
		return false
	}
	jti, ttl, err := r.issuer.Verify(token, identityID)
	if err != nil {
		r.log.Warn().Str("identity_id", identityID).Msg("rejected admin capability")
		metrics.CapabilityConsumptionsTotal.WithLabelValues("invalid").Inc()
		return false
	}
	if err := r.caps.Consume(ctx, jti, ttl); err != nil {
		result := "error"
		if errors.Is(err, domain.ErrCapabilityConsumed) {
			result = "replayed"
		}
		r.log.Warn().Err(err).Str("identity_id", identityID).Str("jti", jti).Msg("admin capability not consumed")
		metrics.CapabilityConsumptionsTotal.WithLabelValues(result).Inc()
		return false
	}
	r.log.Info().Str("identity_id", identityID).Str("jti", jti).Msg("admin capability consumed")
	metrics.CapabilityConsumptionsTotal.WithLabelValues("consumed").Inc()
	return true
}

func (r *RoleResolver) audit(ctx context.Context, g domain.RoleGrant, id domain.Identity, now time.Time) {
	r.log.Info().
		Str("grant_id", g.ID).
		Str("identity_id", id.ID).
		Str("role", string(g.Role)).
		Str("mode", string(g.Mode)).
		Msg("role grant applied")
	if r.grants == nil {
		return
	}
	entry := &domain.GrantAuditEntry{
		GrantID:    g.ID,
		Action:     "applied",
		Actor:      "resolver",
		IdentityID: id.ID,
		Role:       g.Role,
		At:         now,
	}
	if err := r.grants.InsertAudit(ctx, entry); err != nil {
		r.log.Warn().Err(err).Str("grant_id", g.ID).Msg("failed to insert grant audit entry")
	}
}

// pickGrant returns the first usable grant of mode. Stored grants are
// re-checked so a stale store cannot widen access.
func pickGrant(grants []domain.RoleGrant, id domain.Identity, mode domain.GrantMode, now time.Time) (domain.RoleGrant, bool) {
	for _, g := range grants {
		if g.Mode != mode || !g.Active(now) || !g.Matches(id) {
			continue
		}
		if _, ok := domain.ParseRole(string(g.Role)); !ok {
			continue
		}
		return g, true
	}
	return domain.RoleGrant{}, false
}
