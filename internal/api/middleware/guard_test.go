package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/kodihomes/rental-platform/internal/core/domain"
	"github.com/kodihomes/rental-platform/internal/core/ports"
)

type stubGuard struct {
	decision ports.Decision
	gotAuth  ports.AuthState
	gotReq   ports.Requirement
}

func (g *stubGuard) Evaluate(_ context.Context, auth ports.AuthState, req ports.Requirement) ports.Decision {
	g.gotAuth, g.gotReq = auth, req
	return g.decision
}

func TestGuard_Allows(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/v1/bookings/drafts/d-1", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set(ctxIdentity, &domain.Identity{ID: "auth-1"})

	g := &stubGuard{decision: ports.Decision{State: ports.GuardAllowed, Role: domain.RoleTenant}}
	called := false
	handler := Guard(g, domain.ScreenBookingRequest)(func(c echo.Context) error {
		called = true
		if RoleFrom(c) != domain.RoleTenant {
			t.Fatalf("role not set")
		}
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !called {
		t.Fatalf("next handler not called")
	}
	if g.gotReq.RequestedPath != "/v1/bookings/drafts/d-1" {
		t.Errorf("requested path: got %q", g.gotReq.RequestedPath)
	}
	if len(g.gotReq.AllowedRoles) != 1 || g.gotReq.AllowedRoles[0] != domain.RoleTenant {
		t.Errorf("allow-list should default to the matrix entry, got %v", g.gotReq.AllowedRoles)
	}
	if g.gotAuth.Identity == nil || g.gotAuth.Identity.ID != "auth-1" {
		t.Errorf("identity not forwarded: %+v", g.gotAuth)
	}
}

func TestGuard_Redirects(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/v1/admin/grants", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	g := &stubGuard{decision: ports.Decision{
		State:      ports.GuardRedirecting,
		Screen:     string(domain.ScreenAdminGrants),
		Role:       domain.RoleTenant,
		RedirectTo: "/tenant",
	}}
	handler := Guard(g, domain.ScreenAdminGrants, domain.RoleAdmin)(func(c echo.Context) error {
		t.Fatalf("should not reach next handler")
		return nil
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", rec.Code)
	}
	if loc := rec.Header().Get(echo.HeaderLocation); loc != "/tenant" {
		t.Errorf("Location: want /tenant, got %q", loc)
	}
	var body ports.Decision
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if body.State != ports.GuardRedirecting || body.RedirectTo != "/tenant" {
		t.Errorf("unexpected body: %+v", body)
	}
}
