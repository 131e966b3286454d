// Package repository contains data access logic separated from HTTP handlers.
// This file defines the Classification model and its repository.  A
// classification groups inventory items (e.g. SUV, Sedan) and feeds the site
// navigation, so the list is ordered by name the way it is displayed.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
)

// Classification represents a row in the classification table.
type Classification struct {
	ID   uint64 `json:"classification_id"`
	Name string `json:"classification_name"`
}

// ClassificationRepo encapsulates all database queries related to
// classifications.  It depends on a sql.DB connection configured elsewhere.
type ClassificationRepo struct {
	db *sql.DB
}

// NewClassificationRepo constructs a ClassificationRepo with the provided DB
// handle, allowing dependency injection of the database in tests and at
// startup.
func NewClassificationRepo(db *sql.DB) *ClassificationRepo {
	return &ClassificationRepo{db: db}
}

// Add inserts a new classification and populates its ID.  A duplicate name
// is reported as ErrClassificationExists.
func (r *ClassificationRepo) Add(ctx context.Context, c *Classification) error {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO classification (classification_name) VALUES (?)", c.Name)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return ErrClassificationExists
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	c.ID = uint64(id)
	return nil
}

// GetAll returns every classification ordered by name.
func (r *ClassificationRepo) GetAll(ctx context.Context) ([]Classification, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT classification_id, classification_name FROM classification ORDER BY classification_name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Classification{}
	for rows.Next() {
		var c Classification
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// GetName returns the display name of a classification by id.
func (r *ClassificationRepo) GetName(ctx context.Context, id uint64) (string, error) {
	var name string
	err := r.db.QueryRowContext(ctx,
		"SELECT classification_name FROM classification WHERE classification_id=?", id).Scan(&name)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrClassificationNotFound
	}
	return name, err
}
