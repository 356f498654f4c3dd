// ABOUTME: Principal propagation through request contexts
// ABOUTME: Provides WithPrincipal/PrincipalFromContext instead of ambient current-user state

package auth

import (
	"context"

	"github.com/splitledger/splitledger/internal/store"
)

// principalContextKey is the key type for storing the principal in context.Context.
type principalContextKey struct{}

// WithPrincipal returns a new context with the authenticated principal attached.
func WithPrincipal(ctx context.Context, user *store.User) context.Context {
	return context.WithValue(ctx, principalContextKey{}, user)
}

// PrincipalFromContext retrieves the principal from the context, returning nil if not present.
func PrincipalFromContext(ctx context.Context) *store.User {
	val := ctx.Value(principalContextKey{})
	if val == nil {
		return nil
	}
	user, ok := val.(*store.User)
	if !ok {
		return nil
	}
	return user
}

// MustPrincipalFromContext retrieves the principal from the context, panicking if not present.
// Only call from handlers behind RequireAuth.
func MustPrincipalFromContext(ctx context.Context) *store.User {
	user := PrincipalFromContext(ctx)
	if user == nil {
		panic("auth: principal not found in context")
	}
	return user
}
