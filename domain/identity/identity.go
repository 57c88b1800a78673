// Package identity provides user, role and permission value types and
// the pure access-control decisions made over them.
package identity

import (
	"strings"
	"time"
)

// Role is a user's access tier.
type Role string

const (
	RoleSuperAdmin Role = "SuperAdmin"
	RoleAdmin      Role = "Admin"
	RoleUser       Role = "User"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleSuperAdmin, RoleAdmin, RoleUser:
		return true
	}
	return false
}

// IsAdmin reports whether the role carries administrative access.
func (r Role) IsAdmin() bool {
	return r == RoleAdmin || r == RoleSuperAdmin
}

// Well-known permission grants. Permissions are free-form strings so
// deployments can add their own; these are the ones the API checks.
const (
	PermManageBooks      = "manage_books"
	PermManageCategories = "manage_categories"
	PermManageOrders     = "manage_orders"
	PermManageUsers      = "manage_users"
	PermViewReports      = "view_reports"
)

// User represents an account (immutable value type).
type User struct {
	ID           string
	Email        string
	FullName     string
	Phone        string
	PasswordHash string
	Role         Role
	Permissions  []string
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// HasPermission reports whether the user carries the named grant.
// SuperAdmin implicitly carries every grant.
func (u User) HasPermission(perm string) bool {
	if u.Role == RoleSuperAdmin {
		return true
	}
	for _, p := range u.Permissions {
		if p == perm {
			return true
		}
	}
	return false
}

// Sanitized returns a copy of the user safe to hand to clients:
// credential material is cleared.
func (u User) Sanitized() User {
	u.PasswordHash = ""
	return u
}

// Identity is the authenticated principal attached to a request after
// token verification. It is a snapshot of the user at token issue time.
type Identity struct {
	UserID      string
	Email       string
	FullName    string
	Role        Role
	Permissions []string
}

// Allowed decides whether the identity may pass a gate requiring any
// of roles and all of perms. Empty roles means any authenticated user;
// empty perms means no grant check.
func (id Identity) Allowed(roles []Role, perms []string) bool {
	if len(roles) > 0 && !id.hasAnyRole(roles) {
		return false
	}
	for _, p := range perms {
		if !id.hasPermission(p) {
			return false
		}
	}
	return true
}

func (id Identity) hasAnyRole(roles []Role) bool {
	for _, r := range roles {
		if id.Role == r {
			return true
		}
	}
	return false
}

func (id Identity) hasPermission(perm string) bool {
	if id.Role == RoleSuperAdmin {
		return true
	}
	for _, p := range id.Permissions {
		if p == perm {
			return true
		}
	}
	return false
}

// NormalizeEmail lowercases and trims an email for storage and lookup
// so logins are case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
