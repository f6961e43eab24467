// Package sessionx issues and verifies the signed session tokens that carry
// a request's identity chain: which user is signed in, which tenant they are
// acting in, and which workspace is currently selected.
//
// A "session rewrite" (switching tenant or workspace, or correcting a stale
// workspace reference) is simply issuing a fresh token with new claims; the
// transport layer delivers it as a cookie.
package sessionx

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const DefaultTTL = 30 * 24 * time.Hour

var (
	ErrInvalidToken = errors.New("sessionx: invalid token")
	ErrExpiredToken = errors.New("sessionx: expired token")
)

// Claims is the payload of a session token. TenantID and WorkspaceID are
// hints, not authority: the resolver re-validates them against current
// memberships on every request.
type Claims struct {
	UserID      string `json:"uid"`
	TenantID    string `json:"tid,omitempty"`
	WorkspaceID string `json:"wid,omitempty"`

	jwt.RegisteredClaims
}

// Signer mints and verifies HS256 session tokens with a single shared
// secret. Sessions need no key rotation or public verification, so the
// asymmetric machinery a token *issuer* would carry is deliberately absent.
type Signer struct {
	secret []byte
	issuer string
	ttl    time.Duration
}

func NewSigner(secret []byte, issuer string, ttl time.Duration) (*Signer, error) {
	if len(secret) < 32 {
		return nil, fmt.Errorf("sessionx: secret must be at least 32 bytes, got %d", len(secret))
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Signer{secret: secret, issuer: issuer, ttl: ttl}, nil
}

// Issue signs a session token for the given identity chain.
func (s *Signer) Issue(userID, tenantID, workspaceID string) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID:      userID,
		TenantID:    tenantID,
		WorkspaceID: workspaceID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Verify parses and validates a session token, returning its claims.
func (s *Signer) Verify(raw string) (Claims, error) {
	var claims Claims
	token, err := jwt.ParseWithClaims(raw, &claims,
		func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
			}
			return s.secret, nil
		},
		jwt.WithIssuer(s.issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Claims{}, ErrExpiredToken
		}
		return Claims{}, ErrInvalidToken
	}
	if !token.Valid || claims.UserID == "" {
		return Claims{}, ErrInvalidToken
	}

	return claims, nil
}
