package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/kodihomes/rental-platform/internal/core/domain"
	"github.com/kodihomes/rental-platform/internal/core/ports"
)

var admin = domain.Identity{ID: "auth-admin", Email: "ops@kodihomes.test"}

func newGrantSvc(repo *stubGrants) *GrantService {
	return NewGrantService(repo, NewCapabilityIssuer("capability-secret", time.Minute), zerolog.Nop())
}

func TestCreateGrant(t *testing.T) {
	repo := &stubGrants{}
	svc := newGrantSvc(repo)

	g, err := svc.CreateGrant(context.Background(), admin, ports.CreateGrantInput{
		SubjectKind: domain.GrantSubjectEmail,
		Subject:     "  Owner@KodiHomes.test ",
		Role:        "Landlord",
		Mode:        domain.GrantModeOverride,
		Reason:      "onboarding",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if g.ID == "" || g.Subject != "owner@kodihomes.test" || g.Role != domain.RoleLandlord || g.Source != "admin" || g.GrantedBy != admin.ID {
		t.Errorf("unexpected grant: %+v", g)
	}
	if len(repo.created) != 1 {
		t.Fatalf("want one stored grant, got %d", len(repo.created))
	}
	if len(repo.audit) != 1 || repo.audit[0].Action != "created" || repo.audit[0].GrantID != g.ID {
		t.Errorf("unexpected audit trail: %+v", repo.audit)
	}
}

func TestCreateGrant_Invalid(t *testing.T) {
	svc := newGrantSvc(&stubGrants{})
	valid := ports.CreateGrantInput{SubjectKind: domain.GrantSubjectUserID, Subject: "auth-1", Role: domain.RoleTenant, Mode: domain.GrantModeFallback}

	cases := map[string]func(*ports.CreateGrantInput){
		"empty subject": func(in *ports.CreateGrantInput) { in.Subject = "" },
		"bad kind":      func(in *ports.CreateGrantInput) { in.SubjectKind = "phone" },
		"guest role":    func(in *ports.CreateGrantInput) { in.Role = domain.RoleGuest },
		"unknown role":  func(in *ports.CreateGrantInput) { in.Role = "root" },
		"bad mode":      func(in *ports.CreateGrantInput) { in.Mode = "always" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			in := valid
			mutate(&in)
			if _, err := svc.CreateGrant(context.Background(), admin, in); !errors.Is(err, domain.ErrInvalidGrant) {
				t.Errorf("want ErrInvalidGrant, got %v", err)
			}
		})
	}

	past := time.Now().Add(-time.Minute)
	in := valid
	in.ExpiresAt = &past
	_, err := svc.CreateGrant(context.Background(), admin, in)
	var ve *domain.ValidationError
	if !errors.As(err, &ve) || ve.Field != "expires_at" {
		t.Errorf("want expires_at validation error, got %v", err)
	}
}

func TestRevokeGrant(t *testing.T) {
	repo := &stubGrants{}
	svc := newGrantSvc(repo)

	if err := svc.RevokeGrant(context.Background(), admin, "g-1"); err != nil {
		t.Fatal(err)
	}
	if len(repo.revoked) != 1 || len(repo.audit) != 1 || repo.audit[0].Action != "revoked" {
		t.Errorf("unexpected state: revoked=%v audit=%+v", repo.revoked, repo.audit)
	}
	if err := svc.RevokeGrant(context.Background(), admin, " "); !errors.Is(err, domain.ErrGrantNotFound) {
		t.Errorf("want ErrGrantNotFound, got %v", err)
	}

	repo.revokeErr = domain.ErrGrantNotFound
	if err := svc.RevokeGrant(context.Background(), admin, "missing"); !errors.Is(err, domain.ErrGrantNotFound) {
		t.Errorf("want ErrGrantNotFound, got %v", err)
	}
}

func TestIssueCapability(t *testing.T) {
	svc := newGrantSvc(&stubGrants{})
	issued, err := svc.IssueCapability(context.Background(), admin, "auth-support")
	if err != nil {
		t.Fatal(err)
	}
	if _, _, err := svc.issuer.Verify(issued.Token, "auth-support"); err != nil {
		t.Errorf("issued token should verify: %v", err)
	}

	_, err = svc.IssueCapability(context.Background(), admin, "")
	var ve *domain.ValidationError
	if !errors.As(err, &ve) || ve.Field != "subject_id" {
		t.Errorf("want subject_id validation error, got %v", err)
	}
}

func TestBootstrap(t *testing.T) {
	repo := &stubGrants{}
	svc := newGrantSvc(repo)

	err := svc.Bootstrap(context.Background(), []string{"Root@KodiHomes.test", ""}, []string{"auth-legacy"})
	if err != nil {
		t.Fatal(err)
	}
	if len(repo.bootstrap) != 2 {
		t.Fatalf("want 2 seeded grants, got %d", len(repo.bootstrap))
	}
	a, tn := repo.bootstrap[0], repo.bootstrap[1]
	if a.ID != "bootstrap:email:root@kodihomes.test" || a.Role != domain.RoleAdmin || a.Mode != domain.GrantModeOverride {
		t.Errorf("unexpected admin seed: %+v", a)
	}
	if tn.ID != "bootstrap:user_id:auth-legacy" || tn.Role != domain.RoleTenant || tn.Mode != domain.GrantModeFallback {
		t.Errorf("unexpected tenant seed: %+v", tn)
	}

	empty := &stubGrants{}
	if err := newGrantSvc(empty).Bootstrap(context.Background(), nil, nil); err != nil || len(empty.bootstrap) != 0 {
		t.Errorf("nothing to seed: err=%v seeds=%d", err, len(empty.bootstrap))
	}
}
