package domain

import "slices"

// Screen identifies a protected view independently of its URL.
type Screen string

const (
	ScreenTenantDashboard    Screen = "tenant_dashboard"
	ScreenTenantBookings     Screen = "tenant_bookings"
	ScreenTenantPayments     Screen = "tenant_payments"
	ScreenBookingRequest     Screen = "booking_request"
	ScreenLandlordDashboard  Screen = "landlord_dashboard"
	ScreenLandlordProperties Screen = "landlord_properties"
	ScreenLandlordRooms      Screen = "landlord_rooms"
	ScreenLandlordTenancies  Screen = "landlord_tenancies"
	ScreenLandlordPayments   Screen = "landlord_payments"
	ScreenAdminDashboard     Screen = "admin_dashboard"
	ScreenAdminUsers         Screen = "admin_users"
	ScreenAdminProperties    Screen = "admin_properties"
	ScreenAdminGrants        Screen = "admin_grants"
	ScreenProfile            Screen = "profile"
)

var (
	tenantOnly = []Role{RoleTenant}
	staff      = []Role{RoleLandlord, RoleManager, RoleAdmin}
	adminOnly  = []Role{RoleAdmin}
	signedIn   = []Role{RoleTenant, RoleLandlord, RoleManager, RoleAdmin}
)

// accessMatrix maps every protected screen to the roles allowed to view it.
// Screens missing from this table are denied.
var accessMatrix = map[Screen][]Role{
	ScreenTenantDashboard:    tenantOnly,
	ScreenTenantBookings:     tenantOnly,
	ScreenTenantPayments:     tenantOnly,
	ScreenBookingRequest:     tenantOnly,
	ScreenLandlordDashboard:  staff,
	ScreenLandlordProperties: staff,
	ScreenLandlordRooms:      staff,
	ScreenLandlordTenancies:  staff,
	ScreenLandlordPayments:   staff,
	ScreenAdminDashboard:     adminOnly,
	ScreenAdminUsers:         adminOnly,
	ScreenAdminProperties:    adminOnly,
	ScreenAdminGrants:        adminOnly,
	ScreenProfile:            signedIn,
}

// ScreenRoles returns the roles mapped to screen and whether an entry exists.
func ScreenRoles(screen Screen) ([]Role, bool) {
	roles, ok := accessMatrix[screen]
	if !ok {
		return nil, false
	}
	out := make([]Role, len(roles))
	copy(out, roles)
	return out, true
}

// Screens returns every screen with a matrix entry, sorted by name.
func Screens() []Screen {
	out := make([]Screen, 0, len(accessMatrix))
	for s := range accessMatrix {
		out = append(out, s)
	}
	slices.Sort(out)
	return out
}

// roleHomes is where a role lands when it is turned away from a screen.
var roleHomes = map[Role]string{
	RoleTenant:   "/tenant",
	RoleLandlord: "/landlord",
	RoleManager:  "/landlord",
	RoleAdmin:    "/admin",
	RoleGuest:    PublicHome,
}

const (
	PublicHome = "/"
	SignInPath = "/sign-in"
)

// HomeFor returns the dashboard route for role, or the public home.
func HomeFor(role Role) string {
	if home, ok := roleHomes[role]; ok {
		return home
	}
	return PublicHome
}
