package utils // package utils provides helper functions for token creation and hashing

import (
	"errors" // sentinel definitions and errors.Is checks
	"time"   // time utilities for generating expirations

	"github.com/golang-jwt/jwt/v5" // JWT library for creating signed tokens
)

// SessionClaims is the payload of a session token.  It carries a safe
// projection of an account record: everything a handler needs to personalize
// a page or make an authorization decision, and never the password hash.
// The embedded RegisteredClaims provide the issued-at and expiry timestamps.
type SessionClaims struct {
	AccountID   uint64 `json:"account_id"`        // unique account identifier
	Firstname   string `json:"account_firstname"` // first name for greetings
	Lastname    string `json:"account_lastname"`  // last name for greetings
	Email       string `json:"account_email"`     // unique login email
	AccountType string `json:"account_type"`      // Client | Employee | Admin
	jwt.RegisteredClaims
}

// ErrSessionExpired is returned by ParseSessionToken for a structurally valid
// token whose expiry has passed.  Callers may treat this differently from
// tampering (silent re-login prompt vs. forced logout).
var ErrSessionExpired = errors.New("session expired")

// ErrSessionInvalid covers every other verification failure: bad signature,
// malformed structure, unexpected signing method, or the wrong secret.
var ErrSessionInvalid = errors.New("invalid session token")

// NewSessionToken builds and signs an HS256 session token for the given
// claims.  The expiry is derived from ttl relative to the current UTC time;
// any expiry already present in the claims is overwritten so that the token
// lifetime and the cookie lifetime stay in lockstep.
func NewSessionToken(secret string, claims SessionClaims, ttl time.Duration) (string, error) {
	now := time.Now().UTC()
	claims.IssuedAt = jwt.NewNumericDate(now)
	claims.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(secret))
}

// ParseSessionToken verifies a session token and returns its claims.  The
// signing method is pinned to HMAC so tokens signed with any other algorithm
// are rejected as invalid.  Expired tokens are reported via ErrSessionExpired
// and every other failure via ErrSessionInvalid; the underlying library error
// is deliberately not exposed to callers.
func ParseSessionToken(secret, raw string) (*SessionClaims, error) {
	claims := &SessionClaims{}
	tok, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrSessionInvalid
		}
		return []byte(secret), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrSessionExpired
		}
		return nil, ErrSessionInvalid
	}
	if !tok.Valid {
		return nil, ErrSessionInvalid
	}
	return claims, nil
}
