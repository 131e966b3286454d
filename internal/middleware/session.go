package middleware // declare the middleware package; contains reusable HTTP middleware functions

import (
	"errors"   // errors.Is for distinguishing expiry from tampering
	"net/http" // cookie primitives
	"time"     // cookie lifetimes

	"github.com/labstack/echo/v4" // Echo framework used for defining middleware and handlers

	"github.com/cse-motors/dealership/internal/utils"
)

// SessionCookieName is the cookie that carries the signed session token.
const SessionCookieName = "jwt"

// accountKey is the context key under which LoadSession stores the decoded
// session claims.  Handlers and downstream middleware read it via
// CurrentSession.
const accountKey = "account"

// LoadSession returns an Echo middleware that decodes the session cookie and
// injects the claims into the request context.  Anonymous browsing is
// allowed: a missing cookie is not an error, the request simply proceeds
// without a session.  A cookie that fails verification - expired, tampered
// with, or signed with the wrong secret - is cleared and a notice is set, and
// the request continues as anonymous; protected routes are then bounced to
// the login page by the gates below.
func LoadSession(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cookie, err := c.Cookie(SessionCookieName)
			if err != nil || cookie.Value == "" {
				return next(c) // no cookie -> anonymous
			}
			claims, err := utils.ParseSessionToken(secret, cookie.Value)
			if err != nil {
				// Same downstream handling for both failure kinds; the
				// distinction only changes the wording of the notice.
				ClearSessionCookie(c)
				if errors.Is(err, utils.ErrSessionExpired) {
					utils.SetNotice(c, "Your session has expired. Please log in again.")
				} else {
					utils.SetNotice(c, "Please log in.")
				}
				return next(c)
			}
			c.Set(accountKey, claims)
			return next(c)
		}
	}
}

// CurrentSession returns the decoded session claims for the request, or nil
// when the request is anonymous.
func CurrentSession(c echo.Context) *utils.SessionClaims {
	if v, ok := c.Get(accountKey).(*utils.SessionClaims); ok {
		return v
	}
	return nil
}

// WriteSessionCookie stores a signed session token in the jwt cookie.  The
// cookie lifetime always equals the token TTL so the two expire in lockstep,
// and the Secure flag is only dropped in local development.
func WriteSessionCookie(c echo.Context, token string, ttl time.Duration, dev bool) {
	c.SetCookie(&http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(ttl / time.Second),
		HttpOnly: true,
		Secure:   !dev,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearSessionCookie expires the jwt cookie immediately.
func ClearSessionCookie(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
}
