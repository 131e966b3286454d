// This file defines the Review model and repository.  Reviews are the only
// account-owned resource in the catalog: update and delete statements carry
// the owner id in their WHERE clause so ownership is re-checked at the store
// level, and the (account_id, inv_id) unique index makes duplicate creation
// impossible even under concurrent requests.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"
)

// Review represents a row in the reviews table.  ReviewerFirstname and
// ReviewerLastname are populated by joins for display and are not columns of
// the reviews table itself.
type Review struct {
	ID                uint64    `json:"review_id"`
	InvID             uint64    `json:"inv_id"`
	AccountID         uint64    `json:"account_id"`
	Text              string    `json:"review_text"`
	Rating            int       `json:"review_rating"`
	Date              time.Time `json:"review_date"`
	ReviewerFirstname string    `json:"account_firstname,omitempty"`
	ReviewerLastname  string    `json:"account_lastname,omitempty"`
}

// RatingData aggregates the reviews of one vehicle.  A vehicle without
// reviews yields {0.0, 0}; the zero-review case never divides by zero.
type RatingData struct {
	AverageRating float64 `json:"averageRating"`
	ReviewCount   int     `json:"reviewCount"`
}

// ReviewRepo encapsulates all database queries related to reviews.
type ReviewRepo struct {
	db *sql.DB
}

func NewReviewRepo(db *sql.DB) *ReviewRepo { return &ReviewRepo{db: db} }

// Add inserts a new review and populates its ID and date.  A violation of
// the (account_id, inv_id) unique index is reported as ErrDuplicateReview;
// this is the authoritative duplicate signal even when the caller's
// pre-check raced with a concurrent insert.
func (r *ReviewRepo) Add(ctx context.Context, rv *Review) error {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO reviews (inv_id, account_id, review_text, review_rating) VALUES (?,?,?,?)",
		rv.InvID, rv.AccountID, rv.Text, rv.Rating)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return ErrDuplicateReview
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	rv.ID = uint64(id)

	const q = "SELECT review_date FROM reviews WHERE review_id=?"
	return r.db.QueryRowContext(ctx, q, rv.ID).Scan(&rv.Date)
}

// ListByInv returns all reviews of a vehicle with reviewer names joined in,
// newest first.  No reviews yields an empty slice.
func (r *ReviewRepo) ListByInv(ctx context.Context, invID uint64) ([]Review, error) {
	const q = `SELECT r.review_id, r.inv_id, r.account_id, r.review_text, r.review_rating, r.review_date,
	           a.account_firstname, a.account_lastname
	           FROM reviews AS r
	           INNER JOIN account AS a ON r.account_id = a.account_id
	           WHERE r.inv_id = ?
	           ORDER BY r.review_date DESC`
	rows, err := r.db.QueryContext(ctx, q, invID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Review{}
	for rows.Next() {
		var rv Review
		if err := rows.Scan(&rv.ID, &rv.InvID, &rv.AccountID, &rv.Text, &rv.Rating, &rv.Date,
			&rv.ReviewerFirstname, &rv.ReviewerLastname); err != nil {
			return nil, err
		}
		out = append(out, rv)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// GetByAccountAndInv fetches the review a specific account left on a
// specific vehicle, if any.  It returns ErrReviewNotFound when none exists.
func (r *ReviewRepo) GetByAccountAndInv(ctx context.Context, accountID, invID uint64) (*Review, error) {
	const q = `SELECT review_id, inv_id, account_id, review_text, review_rating, review_date
	           FROM reviews WHERE account_id = ? AND inv_id = ? LIMIT 1`
	var rv Review
	err := r.db.QueryRowContext(ctx, q, accountID, invID).Scan(
		&rv.ID, &rv.InvID, &rv.AccountID, &rv.Text, &rv.Rating, &rv.Date)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrReviewNotFound
		}
		return nil, err
	}
	return &rv, nil
}

// GetByID fetches a review by id with reviewer names joined in.
func (r *ReviewRepo) GetByID(ctx context.Context, reviewID uint64) (*Review, error) {
	const q = `SELECT r.review_id, r.inv_id, r.account_id, r.review_text, r.review_rating, r.review_date,
	           a.account_firstname, a.account_lastname
	           FROM reviews AS r
	           INNER JOIN account AS a ON r.account_id = a.account_id
	           WHERE r.review_id = ?`
	var rv Review
	err := r.db.QueryRowContext(ctx, q, reviewID).Scan(
		&rv.ID, &rv.InvID, &rv.AccountID, &rv.Text, &rv.Rating, &rv.Date,
		&rv.ReviewerFirstname, &rv.ReviewerLastname)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrReviewNotFound
		}
		return nil, err
	}
	return &rv, nil
}

// Update rewrites the text and rating of a review and stamps a fresh date.
// The WHERE clause carries the owner id, so a review owned by someone else
// is simply not matched.  It reports whether a row was updated.
func (r *ReviewRepo) Update(ctx context.Context, reviewID, accountID uint64, text string, rating int) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE reviews SET review_text=?, review_rating=?, review_date=CURRENT_TIMESTAMP
		 WHERE review_id=? AND account_id=?`,
		text, rating, reviewID, accountID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// Delete removes a review owned by the given account and reports whether a
// row was actually deleted.
func (r *ReviewRepo) Delete(ctx context.Context, reviewID, accountID uint64) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		"DELETE FROM reviews WHERE review_id=? AND account_id=?", reviewID, accountID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// Rating returns the aggregate rating of a vehicle.  COALESCE keeps the
// zero-review case at 0 instead of NULL.
func (r *ReviewRepo) Rating(ctx context.Context, invID uint64) (RatingData, error) {
	const q = "SELECT COALESCE(AVG(review_rating), 0), COUNT(*) FROM reviews WHERE inv_id = ?"
	var rd RatingData
	if err := r.db.QueryRowContext(ctx, q, invID).Scan(&rd.AverageRating, &rd.ReviewCount); err != nil {
		return RatingData{}, err
	}
	return rd, nil
}
