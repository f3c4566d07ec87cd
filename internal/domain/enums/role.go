package enums

import "strings"

type Role string

const (
	RoleSuperAdmin Role = "super_admin"
	RoleAdmin      Role = "admin"
	RoleMerchant   Role = "merchant"
)

// ParseRole normalizes raw role input. Unknown values come back as-is with
// ok=false; callers decide whether that is an error or a fail-closed default.
func ParseRole(raw string) (Role, bool) {
	switch Role(strings.ToLower(strings.TrimSpace(raw))) {
	case RoleSuperAdmin:
		return RoleSuperAdmin, true
	case RoleAdmin:
		return RoleAdmin, true
	case RoleMerchant:
		return RoleMerchant, true
	}
	return Role(raw), false
}

// Valid reports whether r is one of the three known roles, exactly as
// spelled. Raw input goes through ParseRole first; a value that skipped
// normalization must not pass.
func (r Role) Valid() bool {
	switch r {
	case RoleSuperAdmin, RoleAdmin, RoleMerchant:
		return true
	}
	return false
}
