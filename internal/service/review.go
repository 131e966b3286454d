// Package service implements the ownership-checked mutation layer for
// reviews.  Authorization inputs come exclusively from the verified session
// claims: the actor id is a trusted parameter supplied by the handler after
// authentication, never a client-submitted form field.
package service

import (
	"context"
	"errors"
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/cse-motors/dealership/internal/repository"
)

// ReviewStore is the persistence surface the service needs.  It is satisfied
// by *repository.ReviewRepo and by test doubles.
type ReviewStore interface {
	Add(ctx context.Context, rv *repository.Review) error
	ListByInv(ctx context.Context, invID uint64) ([]repository.Review, error)
	GetByAccountAndInv(ctx context.Context, accountID, invID uint64) (*repository.Review, error)
	GetByID(ctx context.Context, reviewID uint64) (*repository.Review, error)
	Update(ctx context.Context, reviewID, accountID uint64, text string, rating int) (bool, error)
	Delete(ctx context.Context, reviewID, accountID uint64) (bool, error)
	Rating(ctx context.Context, invID uint64) (repository.RatingData, error)
}

// VehicleFinder resolves inv ids for referential checks.  Satisfied by
// *repository.InventoryRepo.
type VehicleFinder interface {
	GetByID(ctx context.Context, id uint64) (*repository.Vehicle, error)
}

// ReviewService enforces the business rules around review mutations: one
// review per account per vehicle, and only the owning account may update or
// delete.  Role escalation does not bypass the ownership check.
type ReviewService struct {
	Reviews   ReviewStore
	Inventory VehicleFinder
	Log       *zap.Logger
}

func NewReviewService(reviews ReviewStore, inventory VehicleFinder, log *zap.Logger) *ReviewService {
	if reviews == nil || inventory == nil {
		panic("nil store passed to NewReviewService")
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &ReviewService{Reviews: reviews, Inventory: inventory, Log: log}
}

// Create adds a review by actorID on the vehicle invID.  The duplicate
// pre-check gives a friendly early answer, but the database unique index is
// authoritative: a concurrent insert that slips past the pre-check still
// comes back as ErrDuplicateReview from the store.
func (s *ReviewService) Create(ctx context.Context, actorID, invID uint64, text string, rating int) (*repository.Review, error) {
	if _, err := s.Reviews.GetByAccountAndInv(ctx, actorID, invID); err == nil {
		return nil, repository.ErrDuplicateReview
	} else if !errors.Is(err, repository.ErrReviewNotFound) {
		s.Log.Error("review pre-check failed", zap.Uint64("account_id", actorID), zap.Error(err))
		return nil, fmt.Errorf("review pre-check: %w", err)
	}

	if _, err := s.Inventory.GetByID(ctx, invID); err != nil {
		if errors.Is(err, repository.ErrVehicleNotFound) {
			return nil, repository.ErrVehicleNotFound
		}
		s.Log.Error("vehicle lookup failed", zap.Uint64("inv_id", invID), zap.Error(err))
		return nil, fmt.Errorf("vehicle lookup: %w", err)
	}

	rv := &repository.Review{InvID: invID, AccountID: actorID, Text: text, Rating: rating}
	if err := s.Reviews.Add(ctx, rv); err != nil {
		if errors.Is(err, repository.ErrDuplicateReview) {
			return nil, repository.ErrDuplicateReview
		}
		s.Log.Error("review insert failed", zap.Uint64("account_id", actorID),
			zap.Uint64("inv_id", invID), zap.Error(err))
		return nil, fmt.Errorf("review insert: %w", err)
	}
	return rv, nil
}

// Update rewrites the text and rating of a review owned by actorID.  The
// ownership check runs before any mutation, and the conditional UPDATE in
// the store re-checks it.  Returns the updated review for redirect targets.
func (s *ReviewService) Update(ctx context.Context, actorID, reviewID uint64, text string, rating int) (*repository.Review, error) {
	rv, err := s.Reviews.GetByID(ctx, reviewID)
	if err != nil {
		if errors.Is(err, repository.ErrReviewNotFound) {
			return nil, repository.ErrReviewNotFound
		}
		s.Log.Error("review lookup failed", zap.Uint64("review_id", reviewID), zap.Error(err))
		return nil, fmt.Errorf("review lookup: %w", err)
	}
	if rv.AccountID != actorID {
		return nil, repository.ErrForbidden
	}
	ok, err := s.Reviews.Update(ctx, reviewID, actorID, text, rating)
	if err != nil {
		s.Log.Error("review update failed", zap.Uint64("review_id", reviewID), zap.Error(err))
		return nil, fmt.Errorf("review update: %w", err)
	}
	if !ok {
		return nil, repository.ErrReviewNotFound
	}
	rv.Text = text
	rv.Rating = rating
	return rv, nil
}

// Delete removes a review owned by actorID.  It returns the vehicle id of
// the deleted review (for the redirect target) and whether a row was
// actually removed.
func (s *ReviewService) Delete(ctx context.Context, actorID, reviewID uint64) (uint64, bool, error) {
	rv, err := s.Reviews.GetByID(ctx, reviewID)
	if err != nil {
		if errors.Is(err, repository.ErrReviewNotFound) {
			return 0, false, repository.ErrReviewNotFound
		}
		s.Log.Error("review lookup failed", zap.Uint64("review_id", reviewID), zap.Error(err))
		return 0, false, fmt.Errorf("review lookup: %w", err)
	}
	if rv.AccountID != actorID {
		return 0, false, repository.ErrForbidden
	}
	deleted, err := s.Reviews.Delete(ctx, reviewID, actorID)
	if err != nil {
		s.Log.Error("review delete failed", zap.Uint64("review_id", reviewID), zap.Error(err))
		return 0, false, fmt.Errorf("review delete: %w", err)
	}
	return rv.InvID, deleted, nil
}

// VehicleReviews returns all reviews of a vehicle plus the aggregate rating.
// Zero reviews is not an error: the list is empty and the rating is {0.0, 0}.
func (s *ReviewService) VehicleReviews(ctx context.Context, invID uint64) ([]repository.Review, repository.RatingData, error) {
	reviews, err := s.Reviews.ListByInv(ctx, invID)
	if err != nil {
		s.Log.Error("review list failed", zap.Uint64("inv_id", invID), zap.Error(err))
		return nil, repository.RatingData{}, fmt.Errorf("review list: %w", err)
	}
	rating, err := s.Rating(ctx, invID)
	if err != nil {
		return nil, repository.RatingData{}, err
	}
	return reviews, rating, nil
}

// OwnReview returns the review actorID left on invID, or ErrReviewNotFound.
// The add-review page uses it to switch between add and edit mode.
func (s *ReviewService) OwnReview(ctx context.Context, actorID, invID uint64) (*repository.Review, error) {
	return s.Reviews.GetByAccountAndInv(ctx, actorID, invID)
}

// Rating returns the aggregate rating of a vehicle rounded to one decimal.
func (s *ReviewService) Rating(ctx context.Context, invID uint64) (repository.RatingData, error) {
	rd, err := s.Reviews.Rating(ctx, invID)
	if err != nil {
		s.Log.Error("rating query failed", zap.Uint64("inv_id", invID), zap.Error(err))
		return repository.RatingData{}, fmt.Errorf("rating query: %w", err)
	}
	rd.AverageRating = math.Round(rd.AverageRating*10) / 10
	return rd, nil
}
