package domain

import (
	"fmt"
	"time"
)

// Role is a tenant member's privilege level. Lower rank = more privilege,
// so threshold checks are a single inequality.
type Role int

const (
	RoleOwner Role = iota + 1
	RoleAdmin
	RoleMember
	RoleGuest
)

// AtLeast reports whether r carries at least the privilege of threshold.
func (r Role) AtLeast(threshold Role) bool {
	return r >= RoleOwner && r <= threshold
}

func (r Role) String() string {
	switch r {
	case RoleOwner:
		return "owner"
	case RoleAdmin:
		return "admin"
	case RoleMember:
		return "member"
	case RoleGuest:
		return "guest"
	default:
		return fmt.Sprintf("role(%d)", int(r))
	}
}

// ParseRole maps the stored text form back to a Role.
func ParseRole(s string) (Role, error) {
	switch s {
	case "owner":
		return RoleOwner, nil
	case "admin":
		return RoleAdmin, nil
	case "member":
		return RoleMember, nil
	case "guest":
		return RoleGuest, nil
	default:
		return 0, fmt.Errorf("unknown role %q", s)
	}
}

// Membership is a user's role-bearing relationship to a tenant.
// Each tenant must retain at least one RoleOwner membership at all times.
type Membership struct {
	ID        string
	TenantID  string
	UserID    string
	Role      Role
	CreatedAt time.Time
	UpdatedAt time.Time
}
