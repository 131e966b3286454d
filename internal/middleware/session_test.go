package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cse-motors/dealership/internal/utils"
)

const testSecret = "middleware-test-secret"

func sessionToken(t *testing.T, ttl time.Duration) string {
	t.Helper()
	token, err := utils.NewSessionToken(testSecret, utils.SessionClaims{
		AccountID:   7,
		Firstname:   "Pepper",
		AccountType: "Employee",
	}, ttl)
	require.NoError(t, err)
	return token
}

// invoke runs the given middleware chain against a request and returns the
// recorder plus the claims the terminal handler observed.
func invoke(t *testing.T, req *http.Request, mws ...echo.MiddlewareFunc) (*httptest.ResponseRecorder, *utils.SessionClaims) {
	t.Helper()
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var seen *utils.SessionClaims
	h := func(c echo.Context) error {
		seen = CurrentSession(c)
		return c.String(http.StatusOK, "ok")
	}
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	require.NoError(t, h(c))
	return rec, seen
}

func TestLoadSessionAnonymousPassesThrough(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec, seen := invoke(t, req, LoadSession(testSecret))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, seen, "no cookie means no session")
}

func TestLoadSessionValidCookie(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: sessionToken(t, time.Hour)})
	rec, seen := invoke(t, req, LoadSession(testSecret))

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, seen)
	assert.Equal(t, uint64(7), seen.AccountID)
	assert.Equal(t, "Employee", seen.AccountType)
}

func TestLoadSessionExpiredCookieClearedAndAnonymous(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: sessionToken(t, -time.Minute)})
	rec, seen := invoke(t, req, LoadSession(testSecret))

	assert.Equal(t, http.StatusOK, rec.Code, "the request itself still proceeds")
	assert.Nil(t, seen, "an expired token yields an anonymous request")

	res := rec.Result()
	var cleared bool
	for _, ck := range res.Cookies() {
		if ck.Name == SessionCookieName && ck.MaxAge < 0 {
			cleared = true
		}
	}
	assert.True(t, cleared, "the stale jwt cookie must be expired on the client")
}

func TestLoadSessionTamperedCookieIsAnonymous(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "garbage.token.value"})
	rec, seen := invoke(t, req, LoadSession(testSecret))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, seen)
}

func TestWriteSessionCookieFlags(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	WriteSessionCookie(c, "tok", time.Hour, false)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	ck := cookies[0]
	assert.Equal(t, SessionCookieName, ck.Name)
	assert.Equal(t, 3600, ck.MaxAge, "cookie lifetime tracks the token ttl")
	assert.True(t, ck.HttpOnly)
	assert.True(t, ck.Secure, "Secure is set outside development")
}

func TestWriteSessionCookieDevDropsSecure(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	WriteSessionCookie(c, "tok", time.Hour, true)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.False(t, cookies[0].Secure)
	assert.True(t, cookies[0].HttpOnly, "HttpOnly stays on even in development")
}
