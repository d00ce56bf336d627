package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/kodihomes/rental-platform/internal/core/domain"
	"github.com/kodihomes/rental-platform/internal/core/ports"
)

const (
	grantSourceAdmin     = "admin"
	grantSourceBootstrap = "bootstrap"
)

// GrantService manages explicit role grants and admin-mode capabilities.
type GrantService struct {
	repo   ports.GrantRepository
	issuer *CapabilityIssuer
	logger zerolog.Logger
	now    func() time.Time
}

func NewGrantService(repo ports.GrantRepository, issuer *CapabilityIssuer, logger zerolog.Logger) *GrantService {
	return &GrantService{repo: repo, issuer: issuer, logger: logger, now: time.Now}
}

func (s *GrantService) CreateGrant(ctx context.Context, actor domain.Identity, in ports.CreateGrantInput) (*domain.RoleGrant, error) {
	now := s.now().UTC()
	subject := strings.TrimSpace(in.Subject)
	if in.SubjectKind == domain.GrantSubjectEmail {
		subject = strings.ToLower(subject)
	}
	role, ok := domain.ParseRole(string(in.Role))
	switch {
	case subject == "",
		in.SubjectKind != domain.GrantSubjectEmail && in.SubjectKind != domain.GrantSubjectUserID,
		!ok || role == domain.RoleGuest,
		in.Mode != domain.GrantModeOverride && in.Mode != domain.GrantModeFallback:
		return nil, domain.ErrInvalidGrant
	}
	if in.ExpiresAt != nil && !in.ExpiresAt.After(now) {
		return nil, &domain.ValidationError{Field: "expires_at", Message: "expiry must be in the future"}
	}

	g := &domain.RoleGrant{
		ID:          uuid.NewString(),
		SubjectKind: in.SubjectKind,
		Subject:     subject,
		Role:        role,
		Mode:        in.Mode,
		Reason:      strings.TrimSpace(in.Reason),
		GrantedBy:   actor.ID,
		Source:      grantSourceAdmin,
		CreatedAt:   now,
		ExpiresAt:   in.ExpiresAt,
	}
	if err := s.repo.Create(ctx, g); err != nil {
		s.logger.Error().Err(err).Msg("failed to create role grant")
		return nil, err
	}
	s.audit(ctx, g.ID, "created", actor.ID, g.Role, now)
	s.logger.Info().
		Str("grant_id", g.ID).
		Str("subject_kind", string(g.SubjectKind)).
		Str("role", string(g.Role)).
		Str("mode", string(g.Mode)).
		Str("actor", actor.ID).
		Msg("role grant created")
	return g, nil
}

func (s *GrantService) ListGrants(ctx context.Context) ([]domain.RoleGrant, error) {
	return s.repo.List(ctx, s.now().UTC())
}

func (s *GrantService) RevokeGrant(ctx context.Context, actor domain.Identity, grantID string) error {
	if strings.TrimSpace(grantID) == "" {
		return domain.ErrGrantNotFound
	}
	now := s.now().UTC()
	if err := s.repo.Revoke(ctx, grantID, now); err != nil {
		return err
	}
	s.audit(ctx, grantID, "revoked", actor.ID, "", now)
	s.logger.Info().Str("grant_id", grantID).Str("actor", actor.ID).Msg("role grant revoked")
	return nil
}

// IssueCapability signs a one-shot admin-mode token for subjectID.
func (s *GrantService) IssueCapability(ctx context.Context, actor domain.Identity, subjectID string) (*ports.IssuedCapability, error) {
	subjectID = strings.TrimSpace(subjectID)
	if subjectID == "" {
		return nil, &domain.ValidationError{Field: "subject_id", Message: "subject_id is required"}
	}
	token, exp, err := s.issuer.Issue(subjectID)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to issue admin capability")
		return nil, err
	}
	s.logger.Info().Str("subject_id", subjectID).Str("actor", actor.ID).Time("expires_at", exp).Msg("admin capability issued")
	return &ports.IssuedCapability{Token: token, Subject: subjectID, ExpiresAt: exp}, nil
}

// Bootstrap seeds grants from configuration: admin override grants by
// email and tenant fallback grants by identity id. Ids are derived from
// the subject so reseeding is idempotent.
func (s *GrantService) Bootstrap(ctx context.Context, adminEmails, tenantIDs []string) error {
	now := s.now().UTC()
	var seeds []domain.RoleGrant
	for _, e := range adminEmails {
		e = strings.ToLower(strings.TrimSpace(e))
		if e == "" {
			continue
		}
		seeds = append(seeds, domain.RoleGrant{
			ID:          "bootstrap:email:" + e,
			SubjectKind: domain.GrantSubjectEmail,
			Subject:     e,
			Role:        domain.RoleAdmin,
			Mode:        domain.GrantModeOverride,
			GrantedBy:   grantSourceBootstrap,
			Source:      grantSourceBootstrap,
			CreatedAt:   now,
		})
	}
	for _, id := range tenantIDs {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		seeds = append(seeds, domain.RoleGrant{
			ID:          "bootstrap:user_id:" + id,
			SubjectKind: domain.GrantSubjectUserID,
			Subject:     id,
			Role:        domain.RoleTenant,
			Mode:        domain.GrantModeFallback,
			GrantedBy:   grantSourceBootstrap,
			Source:      grantSourceBootstrap,
			CreatedAt:   now,
		})
	}
	if len(seeds) == 0 {
		return nil
	}
	if err := s.repo.EnsureBootstrap(ctx, seeds); err != nil {
		return err
	}
	s.logger.Info().Int("grants", len(seeds)).Msg("bootstrap role grants ensured")
	return nil
}

func (s *GrantService) audit(ctx context.Context, grantID, action, actor string, role domain.Role, at time.Time) {
	entry := &domain.GrantAuditEntry{GrantID: grantID, Action: action, Actor: actor, Role: role, At: at}
	if err := s.repo.InsertAudit(ctx, entry); err != nil {
		s.logger.Warn().Err(err).Str("grant_id", grantID).Str("action", action).Msg("failed to insert grant audit entry")
	}
}
