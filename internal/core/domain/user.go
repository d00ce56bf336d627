package domain

import (
	"strings"
	"time"
)

// Role is the single permission tier active for an identity.
type Role string

const (
	RoleGuest    Role = "guest"
	RoleTenant   Role = "tenant"
	RoleLandlord Role = "landlord"
	RoleManager  Role = "manager"
	RoleAdmin    Role = "admin"
)

// AllRoles lists every role in ascending privilege order.
var AllRoles = []Role{RoleGuest, RoleTenant, RoleLandlord, RoleManager, RoleAdmin}

// ParseRole normalizes a stored role string. Unknown values report false.
func ParseRole(s string) (Role, bool) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range AllRoles {
		if r == known {
			return r, true
		}
	}
	return RoleGuest, false
}

// Identity is the authenticated-user reference issued by the auth backend.
type Identity struct {
	ID    string `json:"id"`
	Email string `json:"email,omitempty"`
}

// UserKind tags the variant held by a UserRecord.
type UserKind string

const (
	UserKindStaff  UserKind = "staff"
	UserKindTenant UserKind = "tenant"
)

// UserRecord is the backend's view of an identity: either a staff user
// (users table, carries a stored role) or a tenant user (tenant_users table).
type UserRecord struct {
	Kind       UserKind
	ID         string
	StoredRole string // staff only
	FullName   string
}

// Role returns the role implied by the record variant. Staff roles that are
// not part of the closed set collapse to guest.
func (u UserRecord) Role() (Role, bool) {
	switch u.Kind {
	case UserKindStaff:
		return ParseRole(u.StoredRole)
	case UserKindTenant:
		return RoleTenant, true
	default:
		return RoleGuest, false
	}
}

// TenantProfile holds the contact details prepopulated into a booking draft.
type TenantProfile struct {
	TenantUserID string `json:"tenant_user_id"`
	FullName     string `json:"full_name"`
	Phone        string `json:"phone"`
	Email        string `json:"email"`
}

// GrantSubjectKind selects which identity attribute a grant matches on.
type GrantSubjectKind string

const (
	GrantSubjectEmail  GrantSubjectKind = "email"
	GrantSubjectUserID GrantSubjectKind = "user_id"
)

// GrantMode decides where in role resolution a grant applies. Override
// grants win over the backend record; fallback grants only apply when the
// backend has no record.
type GrantMode string

const (
	GrantModeOverride GrantMode = "override"
	GrantModeFallback GrantMode = "fallback"
)

// RoleGrant is an explicit administrative role assignment.
type RoleGrant struct {
	ID          string           `json:"id" bson:"_id"`
	SubjectKind GrantSubjectKind `json:"subject_kind" bson:"subject_kind"`
	Subject     string           `json:"subject" bson:"subject"`
	Role        Role             `json:"role" bson:"role"`
	Mode        GrantMode        `json:"mode" bson:"mode"`
	Reason      string           `json:"reason,omitempty" bson:"reason,omitempty"`
	GrantedBy   string           `json:"granted_by" bson:"granted_by"`
	Source      string           `json:"source" bson:"source"`
	CreatedAt   time.Time        `json:"created_at" bson:"created_at"`
	ExpiresAt   *time.Time       `json:"expires_at,omitempty" bson:"expires_at,omitempty"`
	RevokedAt   *time.Time       `json:"revoked_at,omitempty" bson:"revoked_at,omitempty"`
}

// Active reports whether the grant is usable at now.
func (g RoleGrant) Active(now time.Time) bool {
	if g.RevokedAt != nil {
		return false
	}
	return g.ExpiresAt == nil || now.Before(*g.ExpiresAt)
}

// Matches reports whether the grant targets the identity.
func (g RoleGrant) Matches(id Identity) bool {
	switch g.SubjectKind {
	case GrantSubjectEmail:
		return id.Email != "" && strings.EqualFold(g.Subject, id.Email)
	case GrantSubjectUserID:
		return id.ID != "" && g.Subject == id.ID
	default:
		return false
	}
}

// GrantAuditEntry records a grant lifecycle action.
type GrantAuditEntry struct {
	GrantID    string    `bson:"grant_id"`
	Action     string    `bson:"action"` // created, revoked, applied
	Actor      string    `bson:"actor"`
	IdentityID string    `bson:"identity_id,omitempty"`
	Role       Role      `bson:"role"`
	At         time.Time `bson:"at"`
}
