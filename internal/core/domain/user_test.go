package domain

import "testing"

func TestUserRecord_Role(t *testing.T) {
	cases := []struct {
		name  string
		rec   UserRecord
		want  Role
		known bool
	}{
		{"staff landlord", UserRecord{Kind: UserKindStaff, StoredRole: "landlord"}, RoleLandlord, true},
		{"staff admin mixed case", UserRecord{Kind: UserKindStaff, StoredRole: "ADMIN"}, RoleAdmin, true},
		{"staff unknown", UserRecord{Kind: UserKindStaff, StoredRole: "owner"}, RoleGuest, false},
		{"tenant ignores stored role", UserRecord{Kind: UserKindTenant, StoredRole: "admin"}, RoleTenant, true},
		{"no kind", UserRecord{}, RoleGuest, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, known := tc.rec.Role()
			if got != tc.want || known != tc.known {
				t.Errorf("want %s/%v, got %s/%v", tc.want, tc.known, got, known)
			}
		})
	}
}

func TestRequiresPhone(t *testing.T) {
	for _, m := range []PaymentMethod{PaymentMTNMoMo, PaymentAirtelMoney} {
		if !m.RequiresPhone() {
			t.Errorf("%s should require a phone", m)
		}
	}
	for _, m := range []PaymentMethod{PaymentCard, PaymentBankTransfer, PaymentCash} {
		if m.RequiresPhone() {
			t.Errorf("%s should not require a phone", m)
		}
	}
}
