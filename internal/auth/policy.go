package auth

import (
	"crypto/subtle"
	"errors"

	"charityhub/internal/model"
)

// Operation identifies a gated action for the policy table.
type Operation int

const (
	OpListCharities Operation = iota
	OpRegister
	OpLogin
	OpLogout
	OpSessionInfo
	OpListFavorites
	OpAddFavorite
	OpRemoveFavorite
	OpCreateCharity
)

var (
	ErrNotLoggedIn            = errors.New("not logged in")
	ErrWrongRole              = errors.New("wrong role")
	ErrAlreadyAuthenticated   = errors.New("already authenticated")
	ErrInvalidElevationSecret = errors.New("invalid elevation secret")
)

type rule struct {
	requiresAuth bool
	requiredRole model.Role
	// denyIfAuthenticated blocks callers who already hold a session
	// (register/login are first-steps, not things to repeat mid-session).
	denyIfAuthenticated bool
}

var rules = map[Operation]rule{
	OpListCharities:  {},
	OpRegister:       {denyIfAuthenticated: true},
	OpLogin:          {denyIfAuthenticated: true},
	OpLogout:         {},
	OpSessionInfo:    {},
	OpListFavorites:  {requiresAuth: true},
	OpAddFavorite:    {requiresAuth: true},
	OpRemoveFavorite: {requiresAuth: true},
	OpCreateCharity:  {requiresAuth: true, requiredRole: model.RoleCharityOwner},
}

// Authorize decides whether ident (nil for an anonymous caller) may perform
// op. It is a pure function over the rules table.
func Authorize(ident *Identity, op Operation) error {
	r := rules[op]

	if r.denyIfAuthenticated && ident != nil {
		return ErrAlreadyAuthenticated
	}
	if r.requiresAuth && ident == nil {
		return ErrNotLoggedIn
	}
	if r.requiredRole != "" && ident.Role != r.requiredRole {
		return ErrWrongRole
	}
	return nil
}

// CheckElevation gates registration of charity_owner accounts behind a shared
// secret. An empty configured secret disables elevation outright. The compare
// is constant-time.
func CheckElevation(configured, supplied string) error {
	if configured == "" {
		return ErrInvalidElevationSecret
	}
	if subtle.ConstantTimeCompare([]byte(configured), []byte(supplied)) != 1 {
		return ErrInvalidElevationSecret
	}
	return nil
}
