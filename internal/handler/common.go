package handler // handler defines http handlers

import (
	"context" // context is part of the store interface signatures
	"strconv" // strconv converts string identifiers to numeric types

	"github.com/labstack/echo/v4" // echo defines request context types

	"github.com/cse-motors/dealership/internal/middleware"
	"github.com/cse-motors/dealership/internal/repository"
	"github.com/cse-motors/dealership/internal/utils"
)

// The store interfaces below are the persistence surface the handlers need.
// They are satisfied by the concrete repositories and by test doubles, so
// every handler receives its dependencies explicitly instead of reaching
// for shared state.

// AccountStore persists account records.
type AccountStore interface {
	Register(ctx context.Context, firstname, lastname, email, passwordHash string) (uint64, error)
	GetByEmail(ctx context.Context, email string) (repository.Account, error)
	GetByID(ctx context.Context, id uint64) (repository.Account, error)
	UpdateInfo(ctx context.Context, id uint64, firstname, lastname, email string) error
	UpdatePassword(ctx context.Context, id uint64, passwordHash string) error
}

// ClassificationStore persists vehicle classifications.
type ClassificationStore interface {
	Add(ctx context.Context, c *repository.Classification) error
	GetAll(ctx context.Context) ([]repository.Classification, error)
	GetName(ctx context.Context, id uint64) (string, error)
}

// InventoryStore persists catalog vehicles.
type InventoryStore interface {
	ListByClassification(ctx context.Context, classificationID uint64) ([]repository.Vehicle, error)
	GetByID(ctx context.Context, id uint64) (*repository.Vehicle, error)
	Add(ctx context.Context, v *repository.Vehicle) error
	Update(ctx context.Context, v *repository.Vehicle) error
	Delete(ctx context.Context, id uint64) (bool, error)
}

// currentSession returns the verified session claims for the request, or nil
// for anonymous requests.  Authorization decisions read only from these
// claims; account ids in request bodies are advisory and cross-checked.
func currentSession(c echo.Context) *utils.SessionClaims {
	return middleware.CurrentSession(c)
}

// parseID parses a numeric path or form value into a uint64 id.
func parseID(s string) (uint64, error) {
	return strconv.ParseUint(s, 10, 64)
}

// accountView is the safe projection of an account used in responses.  The
// password hash is deliberately absent from the type.
type accountView struct {
	ID        uint64 `json:"account_id"`
	Firstname string `json:"account_firstname"`
	Lastname  string `json:"account_lastname"`
	Email     string `json:"account_email"`
	Type      string `json:"account_type"`
}

func viewOf(a repository.Account) accountView {
	return accountView{ID: a.ID, Firstname: a.Firstname, Lastname: a.Lastname, Email: a.Email, Type: a.Type}
}
