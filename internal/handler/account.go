package handler

import (
	"context"  // provides context with cancellation for DB calls
	"errors"   // sentinel comparisons
	"net/http" // HTTP status codes and primitives
	"net/mail" // address parsing for email validation
	"strings"  // string manipulation utilities
	"time"     // timeouts for DB calls

	"github.com/golang-jwt/jwt/v5" // registered claim types for session tokens
	"github.com/labstack/echo/v4"  // Echo framework for HTTP routing
	"go.uber.org/zap"              // structured logging for store faults

	"github.com/cse-motors/dealership/internal/config"
	"github.com/cse-motors/dealership/internal/middleware"
	"github.com/cse-motors/dealership/internal/repository"
	"github.com/cse-motors/dealership/internal/utils"
)

// AccountHandler bundles dependencies for registration, login and
// account-management endpoints.
type AccountHandler struct {
	Cfg      config.Config
	Accounts AccountStore
	Log      *zap.Logger
}

func NewAccountHandler(cfg config.Config, accounts AccountStore, log *zap.Logger) *AccountHandler {
	if accounts == nil {
		panic("nil store passed to NewAccountHandler")
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &AccountHandler{Cfg: cfg, Accounts: accounts, Log: log}
}

// ----- DTOs -----

type registerReq struct {
	Firstname string `json:"account_firstname" form:"account_firstname"`
	Lastname  string `json:"account_lastname" form:"account_lastname"`
	Email     string `json:"account_email" form:"account_email"`
	Password  string `json:"account_password" form:"account_password"`
}

type loginReq struct {
	Email    string `json:"account_email" form:"account_email"`
	Password string `json:"account_password" form:"account_password"`
}

type updateAccountReq struct {
	AccountID uint64 `json:"account_id" form:"account_id"` // advisory; cross-checked against session
	Firstname string `json:"account_firstname" form:"account_firstname"`
	Lastname  string `json:"account_lastname" form:"account_lastname"`
	Email     string `json:"account_email" form:"account_email"`
}

type updatePasswordReq struct {
	AccountID uint64 `json:"account_id" form:"account_id"` // advisory; cross-checked against session
	Password  string `json:"account_password" form:"account_password"`
}

// LoginView delivers the data behind the login page.
func (h *AccountHandler) LoginView(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"title": "Login", "notice": utils.Notice(c)})
}

// RegisterView delivers the data behind the registration page.
func (h *AccountHandler) RegisterView(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"title": "Register", "notice": utils.Notice(c)})
}

// Register creates an account from the registration form, hashes the
// password, and redirects to the login page.  Field errors re-surface the
// submitted values minus the password.
func (h *AccountHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Firstname = strings.TrimSpace(req.Firstname)
	req.Lastname = strings.TrimSpace(req.Lastname)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	if errs := validateRegistration(req); len(errs) > 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"errors":            errs,
			"account_firstname": req.Firstname,
			"account_lastname":  req.Lastname,
			"account_email":     req.Email,
		})
	}

	hash, err := utils.HashPassword(req.Password, h.Cfg.BcryptCost)
	if err != nil {
		h.Log.Error("password hashing failed", zap.Error(err))
		utils.SetNotice(c, "Sorry, there was an error processing the registration.")
		return c.Redirect(http.StatusSeeOther, "/account/register")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if _, err := h.Accounts.Register(ctx, req.Firstname, req.Lastname, req.Email, hash); err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			utils.SetNotice(c, "That email address is already registered. Please log in.")
			return c.Redirect(http.StatusSeeOther, "/account/login")
		}
		h.Log.Error("account insert failed", zap.Error(err))
		utils.SetNotice(c, "Sorry, the registration failed.")
		return c.Redirect(http.StatusSeeOther, "/account/register")
	}

	utils.SetNotice(c, "Congratulations, you're registered "+req.Firstname+". Please log in.")
	return c.Redirect(http.StatusSeeOther, "/account/login")
}

// Login verifies credentials and establishes a session.  The failure message
// is identical whether the email is unknown or the password wrong, and no
// cookie is written on failure.
func (h *AccountHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email and password are required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	const badCredentials = "Please check your credentials and try again."

	a, err := h.Accounts.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			utils.SetNotice(c, badCredentials)
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": badCredentials})
		}
		h.Log.Error("account lookup failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "sorry, that failed"})
	}

	ok, err := utils.VerifyPassword(a.PasswordHash, req.Password)
	if err != nil {
		h.Log.Error("stored digest unreadable", zap.Uint64("account_id", a.ID), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "sorry, that failed"})
	}
	if !ok {
		utils.SetNotice(c, badCredentials)
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": badCredentials})
	}

	ttl := time.Duration(h.Cfg.SessionTTLSec) * time.Second
	token, err := utils.NewSessionToken(h.Cfg.JWTSecret, utils.SessionClaims{
		AccountID:   a.ID,
		Firstname:   a.Firstname,
		Lastname:    a.Lastname,
		Email:       a.Email,
		AccountType: a.Type,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject: a.Email,
		},
	}, ttl)
	if err != nil {
		h.Log.Error("session token issue failed", zap.Uint64("account_id", a.ID), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "sorry, that failed"})
	}

	middleware.WriteSessionCookie(c, token, ttl, h.Cfg.IsDev())
	return c.Redirect(http.StatusSeeOther, "/account/")
}

// Logout clears the session cookie.  The token itself is stateless so there
// is nothing server-side to destroy.
func (h *AccountHandler) Logout(c echo.Context) error {
	middleware.ClearSessionCookie(c)
	utils.SetNotice(c, "You have been logged out.")
	return c.Redirect(http.StatusSeeOther, "/")
}

// Management delivers the account-management page data for the logged-in
// account.  The record is re-read from the store so profile edits show up
// without a fresh login.
func (h *AccountHandler) Management(c echo.Context) error {
	claims := currentSession(c)
	if claims == nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	a, err := h.Accounts.GetByID(ctx, claims.AccountID)
	if err != nil {
		h.Log.Error("account lookup failed", zap.Uint64("account_id", claims.AccountID), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "sorry, that failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"title":   "Account Management",
		"account": viewOf(a),
		"notice":  utils.Notice(c),
	})
}

// UpdateView delivers the account-update page data.  The path id must match
// the session's account id: accounts are self-only resources.
func (h *AccountHandler) UpdateView(c echo.Context) error {
	claims := currentSession(c)
	if claims == nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := parseID(c.Param("account_id"))
	if err != nil || id != claims.AccountID {
		utils.SetNotice(c, "You can only update your own account.")
		return c.Redirect(http.StatusSeeOther, "/account/")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	a, err := h.Accounts.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			utils.SetNotice(c, "Account not found.")
			return c.Redirect(http.StatusSeeOther, "/account/")
		}
		h.Log.Error("account lookup failed", zap.Uint64("account_id", id), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "sorry, that failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"title": "Update Account", "account": viewOf(a)})
}

// Update changes the name and email of the logged-in account.  The form's
// account_id is advisory only; the session claim decides whose record is
// written.
func (h *AccountHandler) Update(c echo.Context) error {
	claims := currentSession(c)
	if claims == nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req updateAccountReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.AccountID != claims.AccountID {
		utils.SetNotice(c, "You can only update your own account.")
		return c.Redirect(http.StatusSeeOther, "/account/")
	}

	req.Firstname = strings.TrimSpace(req.Firstname)
	req.Lastname = strings.TrimSpace(req.Lastname)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Firstname == "" || req.Lastname == "" || !validEmail(req.Email) {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"errors":            []string{"first name, last name and a valid email are required"},
			"account_firstname": req.Firstname,
			"account_lastname":  req.Lastname,
			"account_email":     req.Email,
		})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Accounts.UpdateInfo(ctx, claims.AccountID, req.Firstname, req.Lastname, req.Email); err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			utils.SetNotice(c, "That email address is already in use.")
			return c.Redirect(http.StatusSeeOther, "/account/")
		}
		h.Log.Error("account update failed", zap.Uint64("account_id", claims.AccountID), zap.Error(err))
		utils.SetNotice(c, "Sorry, the account update failed.")
		return c.Redirect(http.StatusSeeOther, "/account/")
	}

	utils.SetNotice(c, "Account information updated successfully.")
	return c.Redirect(http.StatusSeeOther, "/account/")
}

// UpdatePassword replaces the password of the logged-in account after the
// same self-only cross-check as Update.
func (h *AccountHandler) UpdatePassword(c echo.Context) error {
	claims := currentSession(c)
	if claims == nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req updatePasswordReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.AccountID != claims.AccountID {
		utils.SetNotice(c, "You can only update your own account.")
		return c.Redirect(http.StatusSeeOther, "/account/")
	}
	if len(req.Password) < 12 {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"errors": []string{"password must be at least 12 characters"},
		})
	}

	hash, err := utils.HashPassword(req.Password, h.Cfg.BcryptCost)
	if err != nil {
		h.Log.Error("password hashing failed", zap.Uint64("account_id", claims.AccountID), zap.Error(err))
		utils.SetNotice(c, "Sorry, there was an error processing the password update.")
		return c.Redirect(http.StatusSeeOther, "/account/")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Accounts.UpdatePassword(ctx, claims.AccountID, hash); err != nil {
		h.Log.Error("password update failed", zap.Uint64("account_id", claims.AccountID), zap.Error(err))
		utils.SetNotice(c, "Sorry, the password update failed.")
		return c.Redirect(http.StatusSeeOther, "/account/")
	}

	utils.SetNotice(c, "Password updated successfully.")
	return c.Redirect(http.StatusSeeOther, "/account/")
}

// validateRegistration applies the registration field rules and returns one
// message per failed field.
func validateRegistration(req registerReq) []string {
	var errs []string
	if req.Firstname == "" {
		errs = append(errs, "please provide a first name")
	}
	if req.Lastname == "" {
		errs = append(errs, "please provide a last name")
	}
	if !validEmail(req.Email) {
		errs = append(errs, "a valid email is required")
	}
	if len(req.Password) < 12 {
		errs = append(errs, "password must be at least 12 characters")
	}
	return errs
}

func validEmail(s string) bool {
	if s == "" {
		return false
	}
	_, err := mail.ParseAddress(s)
	return err == nil
}
