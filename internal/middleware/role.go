package middleware // middleware provides shared request processing for handlers

import (
	"net/http" // http package defines standard HTTP status codes

	"github.com/labstack/echo/v4" // echo provides middleware chaining and context

	"github.com/cse-motors/dealership/internal/utils"
)

// loginPath is where unauthorized requests are redirected.
const loginPath = "/account/login"

// RequireLogin returns a middleware that only lets authenticated requests
// through.  Anonymous requests are redirected to the login page with a
// notice; no data is mutated and nothing about the route is revealed.
func RequireLogin() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if CurrentSession(c) == nil {
				utils.SetNotice(c, "Please log in.")
				return c.Redirect(http.StatusSeeOther, loginPath)
			}
			return next(c)
		}
	}
}

// RequireRole returns a middleware that enforces that the authenticated
// account holds one of the specified account types.  The check does not
// assume RequireLogin ran earlier: a route requiring a role must never be
// reachable anonymously even when the middleware chain is misconfigured, so
// the session presence is re-checked here.  Both the missing-session and the
// wrong-role case produce the same redirect and notice; the response never
// reveals whether the account merely lacks the role.
func RequireRole(types ...string) echo.MiddlewareFunc {
	allowed := make(map[string]bool, len(types))
	for _, t := range types {
		allowed[t] = true
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims := CurrentSession(c)
			if claims == nil || !allowed[claims.AccountType] {
				utils.SetNotice(c, "Please log in.")
				return c.Redirect(http.StatusSeeOther, loginPath)
			}
			return next(c)
		}
	}
}

// RequireStaff admits Employee and Admin accounts only.  Catalog management
// routes use this gate; there is no per-record owner for catalog data.
func RequireStaff() echo.MiddlewareFunc {
	return RequireRole("Employee", "Admin")
}
