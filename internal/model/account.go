package model

import "time"

// Role is the coarse capability class of an account.
type Role string

const (
	RoleStandard     Role = "standard"
	RoleCharityOwner Role = "charity_owner"
)

// ValidRole reports whether s is one of the known role values.
func ValidRole(s string) bool {
	switch Role(s) {
	case RoleStandard, RoleCharityOwner:
		return true
	}
	return false
}

type Account struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}
