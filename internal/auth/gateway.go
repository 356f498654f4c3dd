// ABOUTME: Authentication gateway composing token and password verification
// ABOUTME: Collapses every failure path into a single uniform Unauthenticated error

package auth

import (
	"context"
	"errors"
	"log/slog"

	"github.com/splitledger/splitledger/internal/store"
)

// ErrUnauthenticated is returned for every authentication failure. The
// gateway deliberately does not distinguish an expired token from a wrong
// password, so a caller learns nothing about which path was attempted.
var ErrUnauthenticated = errors.New("unauthenticated")

// Gateway turns a presented credential pair into an authenticated principal.
//
// The identifier slot may hold either a signed token or a username. A valid
// token authenticates by itself; otherwise the identifier is looked up as a
// username and the secret is verified against the stored password hash.
type Gateway struct {
	users  store.UserStore
	codec  TokenCodec
	hasher PasswordHasher
	logger *slog.Logger
}

// NewGateway creates an authentication gateway.
func NewGateway(users store.UserStore, codec TokenCodec, hasher PasswordHasher) *Gateway {
	return &Gateway{
		users:  users,
		codec:  codec,
		hasher: hasher,
		logger: slog.Default().With("component", "auth"),
	}
}

// Authenticate resolves the credential pair to a principal.
//
// Token attempt first: if the identifier verifies as a token, the secret is
// ignored and the bound principal is looked up. Otherwise the identifier is
// treated as a username and the secret as a password. Every failure returns
// ErrUnauthenticated.
func (g *Gateway) Authenticate(ctx context.Context, identifier, secret string) (*store.User, error) {
	if id, err := g.codec.Verify(identifier); err == nil {
		user, err := g.users.GetUser(ctx, id)
		if err == nil {
			return user, nil
		}
		if !errors.Is(err, store.ErrNotFound) {
			return nil, err
		}
		// Token bound to a deleted principal falls through to password auth,
		// which cannot succeed for a token-shaped identifier; rejected below.
	}

	user, err := g.users.GetUserByUsername(ctx, identifier)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// Burn a hash comparison so response timing does not reveal
			// whether the username exists.
			compareDummy(secret)
			return nil, ErrUnauthenticated
		}
		return nil, err
	}

	if !g.hasher.Verify(secret, user.PasswordHash) {
		g.logger.Debug("password mismatch", "username", identifier)
		return nil, ErrUnauthenticated
	}

	return user, nil
}
