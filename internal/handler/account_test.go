package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/cse-motors/dealership/internal/config"
	"github.com/cse-motors/dealership/internal/middleware"
	"github.com/cse-motors/dealership/internal/repository"
	"github.com/cse-motors/dealership/internal/utils"
)

// fakeAccountStore keeps accounts in memory keyed by email and id.
type fakeAccountStore struct {
	nextID   uint64
	byEmail  map[string]repository.Account
	lastHash string
}

func newFakeAccountStore() *fakeAccountStore {
	return &fakeAccountStore{nextID: 1, byEmail: map[string]repository.Account{}}
}

func (f *fakeAccountStore) Register(_ context.Context, firstname, lastname, email, passwordHash string) (uint64, error) {
	if _, ok := f.byEmail[email]; ok {
		return 0, repository.ErrEmailExists
	}
	a := repository.Account{ID: f.nextID, Firstname: firstname, Lastname: lastname, Email: email, PasswordHash: passwordHash, Type: "Client"}
	f.nextID++
	f.byEmail[email] = a
	f.lastHash = passwordHash
	return a.ID, nil
}

func (f *fakeAccountStore) GetByEmail(_ context.Context, email string) (repository.Account, error) {
	a, ok := f.byEmail[email]
	if !ok {
		return repository.Account{}, repository.ErrAccountNotFound
	}
	return a, nil
}

func (f *fakeAccountStore) GetByID(_ context.Context, id uint64) (repository.Account, error) {
	for _, a := range f.byEmail {
		if a.ID == id {
			return a, nil
		}
	}
	return repository.Account{}, repository.ErrAccountNotFound
}

func (f *fakeAccountStore) UpdateInfo(_ context.Context, id uint64, firstname, lastname, email string) error {
	for k, a := range f.byEmail {
		if a.ID == id {
			delete(f.byEmail, k)
			a.Firstname, a.Lastname, a.Email = firstname, lastname, email
			f.byEmail[email] = a
			return nil
		}
	}
	return repository.ErrAccountNotFound
}

func (f *fakeAccountStore) UpdatePassword(_ context.Context, id uint64, passwordHash string) error {
	for k, a := range f.byEmail {
		if a.ID == id {
			a.PasswordHash = passwordHash
			f.byEmail[k] = a
			return nil
		}
	}
	return repository.ErrAccountNotFound
}

func testConfig() config.Config {
	return config.Config{
		Env:           "dev",
		JWTSecret:     "handler-test-secret",
		SessionTTLSec: 3600,
		BcryptCost:    bcrypt.MinCost,
	}
}

func seedAccount(t *testing.T, store *fakeAccountStore, email, password string) repository.Account {
	t.Helper()
	hash, err := utils.HashPassword(password, bcrypt.MinCost)
	require.NoError(t, err)
	id, err := store.Register(context.Background(), "Basil", "Fawlty", email, hash)
	require.NoError(t, err)
	a, err := store.GetByID(context.Background(), id)
	require.NoError(t, err)
	return a
}

func postForm(path string, form url.Values) (*http.Request, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	return req, httptest.NewRecorder()
}

func sessionCookies(rec *httptest.ResponseRecorder) []*http.Cookie {
	var out []*http.Cookie
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == middleware.SessionCookieName {
			out = append(out, ck)
		}
	}
	return out
}

func TestLoginSuccessSetsSessionCookie(t *testing.T) {
	store := newFakeAccountStore()
	seedAccount(t, store, "basil@fawltytowers.com", "a-long-enough-password")
	h := NewAccountHandler(testConfig(), store, nil)

	req, rec := postForm("/account/login", url.Values{
		"account_email":    {"basil@fawltytowers.com"},
		"account_password": {"a-long-enough-password"},
	})
	c := echo.New().NewContext(req, rec)

	require.NoError(t, h.Login(c))
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/account/", rec.Header().Get(echo.HeaderLocation))

	cks := sessionCookies(rec)
	require.Len(t, cks, 1)
	assert.Equal(t, 3600, cks[0].MaxAge)
	assert.True(t, cks[0].HttpOnly)

	claims, err := utils.ParseSessionToken(testConfig().JWTSecret, cks[0].Value)
	require.NoError(t, err)
	assert.Equal(t, "basil@fawltytowers.com", claims.Email)
	assert.Equal(t, "Client", claims.AccountType)
}

func TestLoginWrongPasswordNoCookie(t *testing.T) {
	store := newFakeAccountStore()
	seedAccount(t, store, "basil@fawltytowers.com", "a-long-enough-password")
	h := NewAccountHandler(testConfig(), store, nil)

	req, rec := postForm("/account/login", url.Values{
		"account_email":    {"basil@fawltytowers.com"},
		"account_password": {"the-wrong-password!"},
	})
	c := echo.New().NewContext(req, rec)

	require.NoError(t, h.Login(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Empty(t, sessionCookies(rec), "no session cookie on failure")
}

func TestLoginUnknownEmailMatchesWrongPassword(t *testing.T) {
	store := newFakeAccountStore()
	seedAccount(t, store, "basil@fawltytowers.com", "a-long-enough-password")
	h := NewAccountHandler(testConfig(), store, nil)

	run := func(email, password string) *httptest.ResponseRecorder {
		req, rec := postForm("/account/login", url.Values{
			"account_email":    {email},
			"account_password": {password},
		})
		c := echo.New().NewContext(req, rec)
		require.NoError(t, h.Login(c))
		return rec
	}

	unknown := run("nobody@fawltytowers.com", "whatever-password")
	wrongPw := run("basil@fawltytowers.com", "the-wrong-password!")

	// Same status and same body: the response must not reveal whether the
	// email exists.
	assert.Equal(t, unknown.Code, wrongPw.Code)
	assert.Equal(t, unknown.Body.String(), wrongPw.Body.String())
}

func TestRegisterHashesPassword(t *testing.T) {
	store := newFakeAccountStore()
	h := NewAccountHandler(testConfig(), store, nil)

	req, rec := postForm("/account/register", url.Values{
		"account_firstname": {"Sybil"},
		"account_lastname":  {"Fawlty"},
		"account_email":     {"sybil@fawltytowers.com"},
		"account_password":  {"a-long-enough-password"},
	})
	c := echo.New().NewContext(req, rec)

	require.NoError(t, h.Register(c))
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/account/login", rec.Header().Get(echo.HeaderLocation))

	assert.NotEqual(t, "a-long-enough-password", store.lastHash)
	ok, err := utils.VerifyPassword(store.lastHash, "a-long-enough-password")
	require.NoError(t, err)
	assert.True(t, ok, "the stored value must be a verifiable digest")
}

func TestRegisterRejectsShortPassword(t *testing.T) {
	store := newFakeAccountStore()
	h := NewAccountHandler(testConfig(), store, nil)

	req, rec := postForm("/account/register", url.Values{
		"account_firstname": {"Sybil"},
		"account_lastname":  {"Fawlty"},
		"account_email":     {"sybil@fawltytowers.com"},
		"account_password":  {"short"},
	})
	c := echo.New().NewContext(req, rec)

	require.NoError(t, h.Register(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, store.byEmail, "nothing is stored on a validation failure")
	assert.NotContains(t, rec.Body.String(), "short", "the password never echoes back")
}

func TestRegisterDuplicateEmailRedirectsToLogin(t *testing.T) {
	store := newFakeAccountStore()
	seedAccount(t, store, "basil@fawltytowers.com", "a-long-enough-password")
	h := NewAccountHandler(testConfig(), store, nil)

	req, rec := postForm("/account/register", url.Values{
		"account_firstname": {"Basil"},
		"account_lastname":  {"Fawlty"},
		"account_email":     {"basil@fawltytowers.com"},
		"account_password":  {"another-long-password"},
	})
	c := echo.New().NewContext(req, rec)

	require.NoError(t, h.Register(c))
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/account/login", rec.Header().Get(echo.HeaderLocation))
}

func TestUpdateRejectsForeignAccountID(t *testing.T) {
	store := newFakeAccountStore()
	a := seedAccount(t, store, "basil@fawltytowers.com", "a-long-enough-password")
	h := NewAccountHandler(testConfig(), store, nil)

	req, rec := postForm("/account/update", url.Values{
		"account_id":        {"9999"}, // not the session's account
		"account_firstname": {"Mallory"},
		"account_lastname":  {"Intruder"},
		"account_email":     {"mallory@example.com"},
	})
	c := echo.New().NewContext(req, rec)
	c.Set("account", &utils.SessionClaims{AccountID: a.ID, AccountType: "Client"})

	require.NoError(t, h.Update(c))
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/account/", rec.Header().Get(echo.HeaderLocation))

	unchanged, err := store.GetByID(context.Background(), a.ID)
	require.NoError(t, err)
	assert.Equal(t, "Basil", unchanged.Firstname, "the record must not change")
}

func TestUpdatePasswordSelfOnly(t *testing.T) {
	store := newFakeAccountStore()
	a := seedAccount(t, store, "basil@fawltytowers.com", "a-long-enough-password")
	h := NewAccountHandler(testConfig(), store, nil)

	req, rec := postForm("/account/update-password", url.Values{
		"account_id":       {"9999"},
		"account_password": {"a-brand-new-password"},
	})
	c := echo.New().NewContext(req, rec)
	c.Set("account", &utils.SessionClaims{AccountID: a.ID, AccountType: "Client"})

	require.NoError(t, h.UpdatePassword(c))
	assert.Equal(t, http.StatusSeeOther, rec.Code)

	cur, err := store.GetByID(context.Background(), a.ID)
	require.NoError(t, err)
	ok, err := utils.VerifyPassword(cur.PasswordHash, "a-long-enough-password")
	require.NoError(t, err)
	assert.True(t, ok, "the old password must still verify")
}

func TestManagementUnauthenticated(t *testing.T) {
	store := newFakeAccountStore()
	h := NewAccountHandler(testConfig(), store, nil)

	req := httptest.NewRequest(http.MethodGet, "/account/", nil)
	rec := httptest.NewRecorder()
	c := echo.New().NewContext(req, rec)

	require.NoError(t, h.Management(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
