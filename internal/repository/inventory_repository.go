// This file defines the Vehicle model and repository methods for the
// inventory catalog.  Catalog rows are staff-managed: mutations are gated by
// role at the middleware layer, so the repository enforces no per-record
// ownership.
package repository

import (
	"context"
	"database/sql"
	"errors"
)

// Vehicle represents an inventory row.  Every vehicle belongs to exactly one
// classification via ClassificationID.
type Vehicle struct {
	ID               uint64  `json:"inv_id"`
	Make             string  `json:"inv_make"`
	Model            string  `json:"inv_model"`
	Year             string  `json:"inv_year"`
	Description      string  `json:"inv_description"`
	Image            string  `json:"inv_image"`
	Thumbnail        string  `json:"inv_thumbnail"`
	Price            float64 `json:"inv_price"`
	Miles            uint64  `json:"inv_miles"`
	Color            string  `json:"inv_color"`
	ClassificationID uint64  `json:"classification_id"`
}

// InventoryRepo encapsulates all database queries related to vehicles.
type InventoryRepo struct {
	db *sql.DB
}

func NewInventoryRepo(db *sql.DB) *InventoryRepo { return &InventoryRepo{db: db} }

const vehicleColumns = "inv_id, inv_make, inv_model, inv_year, inv_description, inv_image, inv_thumbnail, inv_price, inv_miles, inv_color, classification_id"

func scanVehicle(row interface{ Scan(...any) error }, v *Vehicle) error {
	return row.Scan(&v.ID, &v.Make, &v.Model, &v.Year, &v.Description, &v.Image,
		&v.Thumbnail, &v.Price, &v.Miles, &v.Color, &v.ClassificationID)
}

// ListByClassification returns all vehicles in a classification ordered by
// make and model.  An empty classification yields an empty slice, not an
// error, matching the JSON empty-result convention.
func (r *InventoryRepo) ListByClassification(ctx context.Context, classificationID uint64) ([]Vehicle, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+vehicleColumns+" FROM inventory WHERE classification_id=? ORDER BY inv_make, inv_model",
		classificationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Vehicle{}
	for rows.Next() {
		var v Vehicle
		if err := scanVehicle(rows, &v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// GetByID fetches a vehicle by id.  It returns ErrVehicleNotFound when no
// row matches.
func (r *InventoryRepo) GetByID(ctx context.Context, id uint64) (*Vehicle, error) {
	var v Vehicle
	err := scanVehicle(r.db.QueryRowContext(ctx,
		"SELECT "+vehicleColumns+" FROM inventory WHERE inv_id=?", id), &v)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrVehicleNotFound
		}
		return nil, err
	}
	return &v, nil
}

// Add inserts a new vehicle.  On success the ID field is populated with the
// auto-generated value.
func (r *InventoryRepo) Add(ctx context.Context, v *Vehicle) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO inventory (inv_make, inv_model, inv_year, inv_description, inv_image,
		 inv_thumbnail, inv_price, inv_miles, inv_color, classification_id)
		 VALUES (?,?,?,?,?,?,?,?,?,?)`,
		v.Make, v.Model, v.Year, v.Description, v.Image,
		v.Thumbnail, v.Price, v.Miles, v.Color, v.ClassificationID)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	v.ID = uint64(id)
	return nil
}

// Update rewrites every descriptive field of a vehicle.  It returns
// ErrVehicleNotFound when the id matches no row.
func (r *InventoryRepo) Update(ctx context.Context, v *Vehicle) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE inventory SET inv_make=?, inv_model=?, inv_year=?, inv_description=?,
		 inv_image=?, inv_thumbnail=?, inv_price=?, inv_miles=?, inv_color=?, classification_id=?
		 WHERE inv_id=?`,
		v.Make, v.Model, v.Year, v.Description, v.Image,
		v.Thumbnail, v.Price, v.Miles, v.Color, v.ClassificationID, v.ID)
	if err != nil {
		return err
	}
	// zero rows can mean "identical values"; re-check existence before
	// reporting not found
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		if _, err := r.GetByID(ctx, v.ID); err != nil {
			return err
		}
	}
	return nil
}

// Delete removes a vehicle and reports whether a row was actually deleted so
// the caller can distinguish "deleted" from "nothing matched".
func (r *InventoryRepo) Delete(ctx context.Context, id uint64) (bool, error) {
	res, err := r.db.ExecContext(ctx, "DELETE FROM inventory WHERE inv_id=?", id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}
