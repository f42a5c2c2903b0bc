package domain

import (
	"strings"
	"time"
)

// Role is the access level of a user account.
type Role string

const (
	RoleAdmin      Role = "ADMIN"
	RoleReviewer   Role = "REVIEWER"
	RoleContractor Role = "CONTRACTOR"
	RoleApplicant  Role = "APPLICANT"
)

// Capability is a coarse action a role may be allowed to perform.
type Capability string

const (
	CapReviewApplications  Capability = "review:applications"
	CapViewAllApplications Capability = "view:all-applications"
	CapSubmitApplications  Capability = "submit:applications"
	CapManageUsers         Capability = "manage:users"
	CapManageDocuments     Capability = "manage:documents"
	CapViewReports         Capability = "view:reports"
)

var roleCapabilities = map[Role][]Capability{
	RoleAdmin: {
		CapReviewApplications, CapViewAllApplications, CapSubmitApplications,
		CapManageUsers, CapManageDocuments, CapViewReports,
	},
	RoleReviewer: {
		CapReviewApplications, CapViewAllApplications, CapManageDocuments, CapViewReports,
	},
	RoleContractor: {CapSubmitApplications},
	RoleApplicant:  {CapSubmitApplications},
}

// rolePermissions is the action list returned to clients on login.
var rolePermissions = map[Role][]string{
	RoleAdmin: {
		"read:permits", "create:permits", "update:permits", "delete:permits",
		"approve:permits", "reject:permits",
		"read:users", "create:users", "update:users", "delete:users",
		"read:reports", "manage:system",
	},
	RoleReviewer: {
		"read:permits", "approve:permits", "reject:permits", "read:reports",
	},
	RoleContractor: {
		"read:permits", "create:permits", "update:permits", "submit:permits",
	},
	RoleApplicant: {
		"read:permits", "create:permits", "update:permits", "submit:permits",
	},
}

// ParseRole converts a case-insensitive role name. "STAFF" is accepted as an
// alias for REVIEWER.
func ParseRole(s string) (Role, error) {
	switch r := Role(strings.ToUpper(strings.TrimSpace(s))); r {
	case RoleAdmin, RoleReviewer, RoleContractor, RoleApplicant:
		return r, nil
	case "STAFF":
		return RoleReviewer, nil
	default:
		return "", ErrUnknownRole
	}
}

// Can reports whether the role holds the given capability.
func (r Role) Can(c Capability) bool {
	for _, have := range roleCapabilities[r] {
		if have == c {
			return true
		}
	}
	return false
}

// IsStaff reports whether the role reviews applications.
func (r Role) IsStaff() bool { return r.Can(CapReviewApplications) }

// Permissions returns a copy of the role's client-facing permission list.
func (r Role) Permissions() []string {
	perms := rolePermissions[r]
	out := make([]string, len(perms))
	copy(out, perms)
	return out
}

// User models an account. Email is stored lower-cased.
type User struct {
	ID            string     `json:"id"`
	Email         string     `json:"email"`
	PasswordHash  string     `json:"-"`
	FirstName     string     `json:"firstName"`
	LastName      string     `json:"lastName"`
	Phone         string     `json:"phone,omitempty"`
	CompanyName   string     `json:"companyName,omitempty"`
	LicenseNumber string     `json:"licenseNumber,omitempty"`
	Role          Role       `json:"role"`
	Active        bool       `json:"active"`
	LastLoginAt   *time.Time `json:"lastLoginAt,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

// Name is the user's display name.
func (u *User) Name() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// NormalizeEmail canonicalises an address for storage and lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// SplitName splits a single display name into first and last parts.
func SplitName(name string) (first, last string) {
	name = strings.TrimSpace(name)
	if i := strings.LastIndex(name, " "); i > 0 {
		return strings.TrimSpace(name[:i]), strings.TrimSpace(name[i+1:])
	}
	return name, ""
}

// Principal is the authenticated caller of an operation, as asserted by a
// validated token. Services re-resolve it against the credential store.
type Principal struct {
	UserID string
	Email  string
	Role   Role
}

// IsOwnerOf reports whether the principal is the applicant of app.
func (p Principal) IsOwnerOf(app *Application) bool {
	return app != nil && p.UserID != "" && app.ApplicantID == p.UserID
}
