// internal/domain/models/roles.go
package models

// System-wide user roles.
//
// Role semantics:
//   - admin: full access, including the admin panel
//   - manager: may create teams, meetings, and rate completed tasks for
//     teams they manage
//   - member: regular team member
const (
	RoleAdmin   = "admin"
	RoleManager = "manager"
	RoleMember  = "member"
)

// AllRoles lists valid system roles.
var AllRoles = []string{RoleAdmin, RoleManager, RoleMember}

// IsValidRole checks if a value is a valid system role.
func IsValidRole(value string) bool {
	for _, r := range AllRoles {
		if r == value {
			return true
		}
	}
	return false
}

// Supported authentication methods.
const (
	AuthMethodPassword = "password"
	AuthMethodGoogle   = "google"
	AuthMethodTrust    = "trust"
)

// AllAuthMethods lists supported authentication methods.
var AllAuthMethods = []string{AuthMethodPassword, AuthMethodGoogle, AuthMethodTrust}

// IsValidAuthMethod checks if a value is a supported auth method.
func IsValidAuthMethod(value string) bool {
	for _, m := range AllAuthMethods {
		if m == value {
			return true
		}
	}
	return false
}

// DefaultSiteName is used where no configured site name is available.
const DefaultSiteName = "TeamHub"
