package utils

import (
	"net/http"
	"net/url"

	"github.com/labstack/echo/v4"
)

// noticeCookieName carries one-line user-facing notices across redirects.
// The client consumes and clears it on the next page load.
const noticeCookieName = "notice"

// SetNotice stores a short user-facing message in the notice cookie.  The
// value is URL-escaped because cookie values cannot contain spaces.
func SetNotice(c echo.Context, msg string) {
	c.SetCookie(&http.Cookie{
		Name:     noticeCookieName,
		Value:    url.QueryEscape(msg),
		Path:     "/",
		MaxAge:   60,
		HttpOnly: false, // the front end reads and clears it
	})
}

// Notice returns the pending notice for the request, if any, and the empty
// string otherwise.
func Notice(c echo.Context) string {
	cookie, err := c.Cookie(noticeCookieName)
	if err != nil || cookie.Value == "" {
		return ""
	}
	msg, err := url.QueryUnescape(cookie.Value)
	if err != nil {
		return ""
	}
	return msg
}
