package domain

import "testing"

func TestScreenRoles_ReturnsCopy(t *testing.T) {
	roles, ok := ScreenRoles(ScreenTenantDashboard)
	if !ok || len(roles) != 1 || roles[0] != RoleTenant {
		t.Fatalf("unexpected entry: %v %v", roles, ok)
	}
	roles[0] = RoleAdmin

	again, _ := ScreenRoles(ScreenTenantDashboard)
	if again[0] != RoleTenant {
		t.Fatal("mutating a returned slice must not change the matrix")
	}
}

func TestScreenRoles_Unknown(t *testing.T) {
	if _, ok := ScreenRoles("billing_reports"); ok {
		t.Fatal("unknown screen should have no entry")
	}
}

func TestAccessMatrix_GuestNeverAllowed(t *testing.T) {
	for _, s := range Screens() {
		roles, _ := ScreenRoles(s)
		for _, r := range roles {
			if r == RoleGuest {
				t.Errorf("guest listed on %s", s)
			}
		}
	}
}

func TestAccessMatrix_AdminOnLandlordScreens(t *testing.T) {
	for _, s := range []Screen{
		ScreenLandlordDashboard, ScreenLandlordProperties, ScreenLandlordRooms,
		ScreenLandlordTenancies, ScreenLandlordPayments,
	} {
		roles, _ := ScreenRoles(s)
		var admin, manager bool
		for _, r := range roles {
			admin = admin || r == RoleAdmin
			manager = manager || r == RoleManager
		}
		if !admin || !manager {
			t.Errorf("%s: want admin and manager allowed, got %v", s, roles)
		}
	}
}

func TestHomeFor(t *testing.T) {
	cases := map[Role]string{
		RoleTenant:   "/tenant",
		RoleLandlord: "/landlord",
		RoleManager:  "/landlord",
		RoleAdmin:    "/admin",
		RoleGuest:    "/",
		Role("x"):    "/",
	}
	for role, want := range cases {
		if got := HomeFor(role); got != want {
			t.Errorf("HomeFor(%s): want %s, got %s", role, want, got)
		}
	}
}

func TestParseRole(t *testing.T) {
	if r, ok := ParseRole(" Landlord "); !ok || r != RoleLandlord {
		t.Errorf("want landlord, got %s %v", r, ok)
	}
	if r, ok := ParseRole("superuser"); ok || r != RoleGuest {
		t.Errorf("unknown role should collapse to guest, got %s %v", r, ok)
	}
}
