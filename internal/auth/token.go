// ABOUTME: JWT token issuance and verification for authenticating API requests
// ABOUTME: Uses HS256 signing with a process-wide secret and a bounded TTL

package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultTokenTTL is the token lifetime used when none is configured.
const DefaultTokenTTL = 600 * time.Second

// Token errors
var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token expired")
	ErrMissingClaim = errors.New("missing required claim")
)

// TokenCodec defines the interface for issuing and verifying signed tokens.
type TokenCodec interface {
	Issue(principalID int64, ttl time.Duration) (string, error)
	Verify(tokenString string) (principalID int64, err error)
}

// JWTCodec implements TokenCodec using HS256 signed JWTs. Tokens are
// stateless: validity is solely a function of the signature and the
// elapsed time since issuance.
type JWTCodec struct {
	secret []byte
}

// Ensure JWTCodec implements TokenCodec.
var _ TokenCodec = (*JWTCodec)(nil)

// NewJWTCodec creates a new codec with the given signing secret.
func NewJWTCodec(secret []byte) *JWTCodec {
	return &JWTCodec{secret: secret}
}

// Issue creates a new signed token binding the principal id and the issuance
// time. A zero ttl falls back to DefaultTokenTTL.
func (c *JWTCodec) Issue(principalID int64, ttl time.Duration) (string, error) {
	if ttl == 0 {
		ttl = DefaultTokenTTL
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"sub": strconv.FormatInt(principalID, 10),
		"iat": now.Unix(),
		"exp": now.Add(ttl).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(c.secret)
}

// Verify validates the token signature and expiry and extracts the principal
// id from the "sub" claim. Any structural or signature mismatch yields
// ErrInvalidToken; a valid signature past its expiry yields ErrExpiredToken.
func (c *JWTCodec) Verify(tokenString string) (int64, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		// Validate the signing method is HS256
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return c.secret, nil
	})

	if err != nil {
		// Check if it's specifically an expiration error
		if errors.Is(err, jwt.ErrTokenExpired) {
			return 0, ErrExpiredToken
		}
		return 0, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	if !token.Valid {
		return 0, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, ErrInvalidToken
	}

	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return 0, fmt.Errorf("%w: sub", ErrMissingClaim)
	}

	id, err := strconv.ParseInt(sub, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: sub is not a principal id", ErrInvalidToken)
	}

	return id, nil
}
