package auth

import (
	"context"

	"charityhub/internal/model"
)

type contextKey struct{}

// Identity is the (username, role) snapshot a session resolved to.
type Identity struct {
	Username string
	Role     model.Role
}

func WithIdentity(ctx context.Context, ident Identity) context.Context {
	return context.WithValue(ctx, contextKey{}, ident)
}

func FromContext(ctx context.Context) (Identity, bool) {
	ident, ok := ctx.Value(contextKey{}).(Identity)
	return ident, ok
}

func Username(ctx context.Context) string {
	ident, ok := FromContext(ctx)
	if !ok {
		return ""
	}
	return ident.Username
}
