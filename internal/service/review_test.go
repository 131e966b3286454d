package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cse-motors/dealership/internal/repository"
)

// fakeReviewStore is an in-memory ReviewStore keyed the same way the real
// table is: one review per (account_id, inv_id).
type fakeReviewStore struct {
	nextID  uint64
	reviews map[uint64]*repository.Review
	rating  repository.RatingData
}

func newFakeReviewStore() *fakeReviewStore {
	return &fakeReviewStore{nextID: 1, reviews: map[uint64]*repository.Review{}}
}

func (f *fakeReviewStore) Add(_ context.Context, rv *repository.Review) error {
	for _, existing := range f.reviews {
		if existing.AccountID == rv.AccountID && existing.InvID == rv.InvID {
			return repository.ErrDuplicateReview
		}
	}
	rv.ID = f.nextID
	f.nextID++
	cp := *rv
	f.reviews[rv.ID] = &cp
	return nil
}

func (f *fakeReviewStore) ListByInv(_ context.Context, invID uint64) ([]repository.Review, error) {
	out := []repository.Review{}
	for _, rv := range f.reviews {
		if rv.InvID == invID {
			out = append(out, *rv)
		}
	}
	return out, nil
}

func (f *fakeReviewStore) GetByAccountAndInv(_ context.Context, accountID, invID uint64) (*repository.Review, error) {
	for _, rv := range f.reviews {
		if rv.AccountID == accountID && rv.InvID == invID {
			cp := *rv
			return &cp, nil
		}
	}
	return nil, repository.ErrReviewNotFound
}

func (f *fakeReviewStore) GetByID(_ context.Context, reviewID uint64) (*repository.Review, error) {
	rv, ok := f.reviews[reviewID]
	if !ok {
		return nil, repository.ErrReviewNotFound
	}
	cp := *rv
	return &cp, nil
}

func (f *fakeReviewStore) Update(_ context.Context, reviewID, accountID uint64, text string, rating int) (bool, error) {
	rv, ok := f.reviews[reviewID]
	if !ok || rv.AccountID != accountID {
		return false, nil
	}
	rv.Text = text
	rv.Rating = rating
	return true, nil
}

func (f *fakeReviewStore) Delete(_ context.Context, reviewID, accountID uint64) (bool, error) {
	rv, ok := f.reviews[reviewID]
	if !ok || rv.AccountID != accountID {
		return false, nil
	}
	delete(f.reviews, reviewID)
	return true, nil
}

func (f *fakeReviewStore) Rating(_ context.Context, _ uint64) (repository.RatingData, error) {
	return f.rating, nil
}

// fakeVehicleFinder knows a fixed set of vehicle ids.
type fakeVehicleFinder struct{ known map[uint64]bool }

func (f *fakeVehicleFinder) GetByID(_ context.Context, id uint64) (*repository.Vehicle, error) {
	if !f.known[id] {
		return nil, repository.ErrVehicleNotFound
	}
	return &repository.Vehicle{ID: id, Make: "DMC", Model: "DeLorean"}, nil
}

func newTestService() (*ReviewService, *fakeReviewStore) {
	store := newFakeReviewStore()
	svc := NewReviewService(store, &fakeVehicleFinder{known: map[uint64]bool{1: true, 2: true}}, nil)
	return svc, store
}

func TestCreateReview(t *testing.T) {
	svc, store := newTestService()

	rv, err := svc.Create(context.Background(), 100, 1, "A fantastic vehicle, would buy again.", 5)
	require.NoError(t, err)
	assert.NotZero(t, rv.ID)
	assert.Equal(t, uint64(100), rv.AccountID)
	assert.Len(t, store.reviews, 1)
}

func TestCreateSecondReviewOnSameVehicleFails(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.Create(context.Background(), 100, 1, "First impressions were great.", 5)
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), 100, 1, "Changed my mind about it.", 2)
	assert.ErrorIs(t, err, repository.ErrDuplicateReview)
}

func TestCreateAllowsSameAccountOnDifferentVehicles(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.Create(context.Background(), 100, 1, "Really enjoyed driving this.", 4)
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), 100, 2, "This one was even better.", 5)
	assert.NoError(t, err)
}

func TestCreateOnUnknownVehicle(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.Create(context.Background(), 100, 999, "Reviewing thin air here.", 3)
	assert.ErrorIs(t, err, repository.ErrVehicleNotFound)
}

func TestUpdateByNonOwnerIsForbidden(t *testing.T) {
	svc, _ := newTestService()

	rv, err := svc.Create(context.Background(), 100, 1, "Original text by the owner.", 4)
	require.NoError(t, err)

	_, err = svc.Update(context.Background(), 200, rv.ID, "Rewritten by someone else.", 1)
	assert.ErrorIs(t, err, repository.ErrForbidden)

	unchanged, err := svc.Reviews.GetByID(context.Background(), rv.ID)
	require.NoError(t, err)
	assert.Equal(t, "Original text by the owner.", unchanged.Text)
}

func TestUpdateByOwner(t *testing.T) {
	svc, _ := newTestService()

	rv, err := svc.Create(context.Background(), 100, 1, "Original text by the owner.", 4)
	require.NoError(t, err)

	updated, err := svc.Update(context.Background(), 100, rv.ID, "Revised after a longer drive.", 5)
	require.NoError(t, err)
	assert.Equal(t, "Revised after a longer drive.", updated.Text)
	assert.Equal(t, 5, updated.Rating)
	assert.Equal(t, rv.InvID, updated.InvID)
}

func TestDeleteByNonOwnerIsForbidden(t *testing.T) {
	svc, store := newTestService()

	rv, err := svc.Create(context.Background(), 100, 1, "A review worth keeping around.", 4)
	require.NoError(t, err)

	_, _, err = svc.Delete(context.Background(), 200, rv.ID)
	assert.ErrorIs(t, err, repository.ErrForbidden)
	assert.Len(t, store.reviews, 1, "the review must survive a forbidden delete")
}

func TestDeleteByOwnerReturnsVehicleID(t *testing.T) {
	svc, store := newTestService()

	rv, err := svc.Create(context.Background(), 100, 2, "Short-lived but heartfelt.", 3)
	require.NoError(t, err)

	invID, deleted, err := svc.Delete(context.Background(), 100, rv.ID)
	require.NoError(t, err)
	assert.True(t, deleted)
	assert.Equal(t, uint64(2), invID)
	assert.Empty(t, store.reviews)
}

func TestUpdateMissingReview(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.Update(context.Background(), 100, 12345, "Updating nothing at all here.", 3)
	assert.ErrorIs(t, err, repository.ErrReviewNotFound)
}

func TestRatingRoundsToOneDecimal(t *testing.T) {
	svc, store := newTestService()
	store.rating = repository.RatingData{AverageRating: 4.3333333, ReviewCount: 3}

	rd, err := svc.Rating(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 4.3, rd.AverageRating)
	assert.Equal(t, 3, rd.ReviewCount)
}

func TestVehicleReviewsEmpty(t *testing.T) {
	svc, _ := newTestService()

	reviews, rd, err := svc.VehicleReviews(context.Background(), 1)
	require.NoError(t, err)
	assert.Empty(t, reviews)
	assert.Equal(t, repository.RatingData{AverageRating: 0, ReviewCount: 0}, rd)
}
