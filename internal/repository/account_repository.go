package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
)

// Account mirrors the 'account' table.  PasswordHash holds the bcrypt digest
// and must never be serialized into responses or session tokens.
type Account struct {
	ID           uint64
	Firstname    string
	Lastname     string
	Email        string
	PasswordHash string
	Type         string // Client | Employee | Admin
}

type AccountRepo struct{ DB *sql.DB }

func NewAccountRepo(db *sql.DB) *AccountRepo { return &AccountRepo{DB: db} }

// Register inserts a new account and returns its ID.  The password must
// already be hashed by the caller; this layer never sees plaintext.
func (r *AccountRepo) Register(ctx context.Context, firstname, lastname, email, passwordHash string) (uint64, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO account (account_firstname, account_lastname, account_email, account_password) VALUES (?,?,?,?)",
		firstname, lastname, email, passwordHash)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return 0, ErrEmailExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByEmail fetches an account by normalized email.
func (r *AccountRepo) GetByEmail(ctx context.Context, email string) (Account, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	var a Account
	err := r.DB.QueryRowContext(ctx,
		"SELECT account_id, account_firstname, account_lastname, account_email, account_password, account_type FROM account WHERE account_email=? LIMIT 1",
		email).Scan(&a.ID, &a.Firstname, &a.Lastname, &a.Email, &a.PasswordHash, &a.Type)
	if errors.Is(err, sql.ErrNoRows) {
		return Account{}, ErrAccountNotFound
	}
	return a, err
}

// GetByID fetches an account by id.
func (r *AccountRepo) GetByID(ctx context.Context, id uint64) (Account, error) {
	var a Account
	err := r.DB.QueryRowContext(ctx,
		"SELECT account_id, account_firstname, account_lastname, account_email, account_password, account_type FROM account WHERE account_id=? LIMIT 1",
		id).Scan(&a.ID, &a.Firstname, &a.Lastname, &a.Email, &a.PasswordHash, &a.Type)
	if errors.Is(err, sql.ErrNoRows) {
		return Account{}, ErrAccountNotFound
	}
	return a, err
}

// UpdateInfo changes the name and email of an account.  A unique-key
// violation on the new email is reported as ErrEmailExists.
func (r *AccountRepo) UpdateInfo(ctx context.Context, id uint64, firstname, lastname, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	_, err := r.DB.ExecContext(ctx,
		"UPDATE account SET account_firstname=?, account_lastname=?, account_email=? WHERE account_id=?",
		firstname, lastname, email, id)
	if err != nil && strings.Contains(strings.ToLower(err.Error()), "1062") {
		return ErrEmailExists
	}
	return err
}

// UpdatePassword replaces the stored password hash of an account.
func (r *AccountRepo) UpdatePassword(ctx context.Context, id uint64, passwordHash string) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE account SET account_password=? WHERE account_id=?",
		passwordHash, id)
	return err
}
