package auth

import (
	"testing"

	"charityhub/internal/model"
)

func TestAuthorizeAnonymous(t *testing.T) {
	tests := []struct {
		name string
		op   Operation
		want error
	}{
		{"list charities is public", OpListCharities, nil},
		{"register is open to anonymous", OpRegister, nil},
		{"login is open to anonymous", OpLogin, nil},
		{"logout never denies", OpLogout, nil},
		{"session info never denies", OpSessionInfo, nil},
		{"list favorites needs auth", OpListFavorites, ErrNotLoggedIn},
		{"add favorite needs auth", OpAddFavorite, ErrNotLoggedIn},
		{"remove favorite needs auth", OpRemoveFavorite, ErrNotLoggedIn},
		{"create charity needs auth", OpCreateCharity, ErrNotLoggedIn},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Authorize(nil, tt.op); got != tt.want {
				t.Errorf("Authorize(nil, op) = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAuthorizeStandardRole(t *testing.T) {
	ident := &Identity{Username: "alice", Role: model.RoleStandard}

	if got := Authorize(ident, OpAddFavorite); got != nil {
		t.Errorf("standard user adding favorite: %v", got)
	}
	if got := Authorize(ident, OpCreateCharity); got != ErrWrongRole {
		t.Errorf("standard user creating charity = %v, want ErrWrongRole", got)
	}
}

func TestAuthorizeCharityOwnerRole(t *testing.T) {
	ident := &Identity{Username: "bob", Role: model.RoleCharityOwner}

	if got := Authorize(ident, OpCreateCharity); got != nil {
		t.Errorf("charity owner creating charity: %v", got)
	}
	if got := Authorize(ident, OpListFavorites); got != nil {
		t.Errorf("charity owner listing favorites: %v", got)
	}
}

func TestAuthorizeAlreadyAuthenticated(t *testing.T) {
	ident := &Identity{Username: "alice", Role: model.RoleStandard}

	if got := Authorize(ident, OpRegister); got != ErrAlreadyAuthenticated {
		t.Errorf("register while logged in = %v, want ErrAlreadyAuthenticated", got)
	}
	if got := Authorize(ident, OpLogin); got != ErrAlreadyAuthenticated {
		t.Errorf("login while logged in = %v, want ErrAlreadyAuthenticated", got)
	}
}

func TestCheckElevation(t *testing.T) {
	if err := CheckElevation("open-sesame", "open-sesame"); err != nil {
		t.Errorf("matching secret: %v", err)
	}
	if err := CheckElevation("open-sesame", "wrong"); err != ErrInvalidElevationSecret {
		t.Errorf("wrong secret = %v, want ErrInvalidElevationSecret", err)
	}
	if err := CheckElevation("", ""); err != ErrInvalidElevationSecret {
		t.Errorf("unconfigured secret must deny, got %v", err)
	}
}
