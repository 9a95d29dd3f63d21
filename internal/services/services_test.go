package services

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AI2HU/bizreview/internal/cache"
	"github.com/AI2HU/bizreview/internal/db"
	"github.com/AI2HU/bizreview/internal/db/sqlite"
	"github.com/AI2HU/bizreview/internal/db/sqlstore"
	"github.com/AI2HU/bizreview/internal/models"
)

// countingStore records how often businesses are read from the database
type countingStore struct {
	db.Store
	gets int
}

func (s *countingStore) GetBusiness(ctx context.Context, id int64) (*models.Business, error) {
	s.gets++
	return s.Store.GetBusiness(ctx, id)
}

func setupStore(t *testing.T) *countingStore {
	t.Helper()

	dialect, err := sqlite.New(&models.Config{
		Provider: "sqlite",
		Path:     filepath.Join(t.TempDir(), "services.db"),
	})
	require.NoError(t, err)

	store := sqlstore.New(dialect)
	require.NoError(t, store.Connect(context.Background()))
	t.Cleanup(func() {
		store.Disconnect(context.Background())
	})

	return &countingStore{Store: store}
}

func validBusiness(ownerID int64) *models.Business {
	return &models.Business{
		OwnerID:       ownerID,
		Name:          "Beaver Bagels",
		StreetAddress: "123 Main St",
		City:          "Corvallis",
		State:         "OR",
		ZipCode:       "97331",
	}
}

func TestValidateBusiness(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(b *models.Business)
		valid  bool
	}{
		{"valid", func(b *models.Business) {}, true},
		{"long name", func(b *models.Business) { b.Name = strings.Repeat("n", 51) }, false},
		{"name at limit", func(b *models.Business) { b.Name = strings.Repeat("n", 50) }, true},
		{"long street", func(b *models.Business) { b.StreetAddress = strings.Repeat("s", 101) }, false},
		{"long city", func(b *models.Business) { b.City = strings.Repeat("c", 51) }, false},
		{"long state", func(b *models.Business) { b.State = "ORE" }, false},
		{"long zip", func(b *models.Business) { b.ZipCode = "973310" }, false},
		{"decimal zip", func(b *models.Business) { b.ZipCode = "97.3" }, false},
		{"negative zip", func(b *models.Business) { b.ZipCode = "-973" }, false},
		{"empty zip", func(b *models.Business) { b.ZipCode = "" }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := validBusiness(1)
			tt.mutate(b)
			err := ValidateBusiness(b)
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrInvalidBusiness)
			}
		})
	}
}

func TestZipCodeNumber(t *testing.T) {
	assert.Equal(t, 97331, ZipCodeNumber(&models.Business{ZipCode: "97331"}))
	assert.Equal(t, 0, ZipCodeNumber(&models.Business{ZipCode: "abc"}))
}

func TestGetBusinessUsesCache(t *testing.T) {
	store := setupStore(t)
	svc := NewBusinessService(store, cache.NewMemory(0, time.Minute), time.Minute)
	ctx := context.Background()

	business := validBusiness(3)
	require.NoError(t, svc.CreateBusiness(ctx, business))

	first, err := svc.GetBusiness(ctx, business.ID)
	require.NoError(t, err)
	second, err := svc.GetBusiness(ctx, business.ID)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, store.gets)
}

func TestUpdateBusinessInvalidatesCache(t *testing.T) {
	store := setupStore(t)
	svc := NewBusinessService(store, cache.NewMemory(0, time.Minute), time.Minute)
	ctx := context.Background()

	business := validBusiness(3)
	require.NoError(t, svc.CreateBusiness(ctx, business))
	_, err := svc.GetBusiness(ctx, business.ID)
	require.NoError(t, err)

	business.Name = "Beaver Bakery"
	require.NoError(t, svc.UpdateBusiness(ctx, business))

	got, err := svc.GetBusiness(ctx, business.ID)
	require.NoError(t, err)
	assert.Equal(t, "Beaver Bakery", got.Name)
	// first lookup, existence check on update, lookup after invalidation
	assert.Equal(t, 3, store.gets)
}

func TestDeleteBusinessInvalidatesCache(t *testing.T) {
	store := setupStore(t)
	svc := NewBusinessService(store, cache.NewMemory(0, time.Minute), time.Minute)
	ctx := context.Background()

	business := validBusiness(3)
	require.NoError(t, svc.CreateBusiness(ctx, business))
	_, err := svc.GetBusiness(ctx, business.ID)
	require.NoError(t, err)

	require.NoError(t, svc.DeleteBusiness(ctx, business.ID))

	_, err = svc.GetBusiness(ctx, business.ID)
	assert.ErrorIs(t, err, db.ErrBusinessNotFound)
	assert.ErrorIs(t, svc.DeleteBusiness(ctx, business.ID), db.ErrBusinessNotFound)
}

func TestUpdateMissingBusiness(t *testing.T) {
	svc := NewBusinessService(setupStore(t), nil, time.Minute)

	business := validBusiness(1)
	business.ID = 404
	assert.ErrorIs(t, svc.UpdateBusiness(context.Background(), business), db.ErrBusinessNotFound)
}

func TestCreateInvalidBusiness(t *testing.T) {
	svc := NewBusinessService(setupStore(t), nil, time.Minute)

	business := validBusiness(1)
	business.State = "Oregon"
	assert.ErrorIs(t, svc.CreateBusiness(context.Background(), business), ErrInvalidBusiness)
	assert.Zero(t, business.ID)
}

func TestListBusinessesPagination(t *testing.T) {
	svc := NewBusinessService(setupStore(t), nil, time.Minute)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, svc.CreateBusiness(ctx, validBusiness(int64(i))))
	}

	page, err := svc.ListBusinesses(ctx, DefaultPageLimit, DefaultPageOffset)
	require.NoError(t, err)
	assert.Len(t, page.Businesses, 3)
	assert.True(t, page.HasMore)
	assert.Equal(t, 3, page.NextOffset())

	page, err = svc.ListBusinesses(ctx, 3, 3)
	require.NoError(t, err)
	assert.Len(t, page.Businesses, 2)
	assert.False(t, page.HasMore)

	page, err = svc.ListBusinesses(ctx, 2, 3)
	require.NoError(t, err)
	assert.Len(t, page.Businesses, 2)
	assert.False(t, page.HasMore)

	page, err = svc.ListBusinesses(ctx, -4, -1)
	require.NoError(t, err)
	assert.Empty(t, page.Businesses)
	assert.Equal(t, 0, page.Limit)
	assert.Equal(t, 0, page.Offset)
}

func TestListBusinessesByOwner(t *testing.T) {
	svc := NewBusinessService(setupStore(t), nil, time.Minute)
	ctx := context.Background()

	require.NoError(t, svc.CreateBusiness(ctx, validBusiness(1)))
	require.NoError(t, svc.CreateBusiness(ctx, validBusiness(2)))
	require.NoError(t, svc.CreateBusiness(ctx, validBusiness(1)))

	businesses, err := svc.ListBusinessesByOwner(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, businesses, 2)

	businesses, err = svc.ListBusinessesByOwner(ctx, 99)
	require.NoError(t, err)
	assert.Empty(t, businesses)
}

func TestReviewLifecycle(t *testing.T) {
	store := setupStore(t)
	businesses := NewBusinessService(store, nil, time.Minute)
	reviews := NewReviewService(store)
	ctx := context.Background()

	business := validBusiness(1)
	require.NoError(t, businesses.CreateBusiness(ctx, business))

	review := &models.Review{UserID: 9, BusinessID: business.ID, Stars: 4, ReviewText: "Great bagels"}
	require.NoError(t, reviews.CreateReview(ctx, review))
	assert.NotZero(t, review.ID)

	dup := &models.Review{UserID: 9, BusinessID: business.ID, Stars: 1}
	assert.ErrorIs(t, reviews.CreateReview(ctx, dup), db.ErrDuplicateReview)

	orphan := &models.Review{UserID: 9, BusinessID: business.ID + 100, Stars: 1}
	assert.ErrorIs(t, reviews.CreateReview(ctx, orphan), db.ErrBusinessNotFound)

	updated, err := reviews.UpdateReview(ctx, review.ID, 5, nil)
	require.NoError(t, err)
	assert.Equal(t, 5, updated.Stars)
	assert.Equal(t, "Great bagels", updated.ReviewText)

	text := "Even better"
	updated, err = reviews.UpdateReview(ctx, review.ID, 2, &text)
	require.NoError(t, err)
	assert.Equal(t, "Even better", updated.ReviewText)

	_, err = reviews.UpdateReview(ctx, review.ID+100, 2, nil)
	assert.ErrorIs(t, err, db.ErrReviewNotFound)

	list, err := reviews.ListReviewsByUser(ctx, 9)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, reviews.DeleteReview(ctx, review.ID))
	_, err = reviews.GetReview(ctx, review.ID)
	assert.ErrorIs(t, err, db.ErrReviewNotFound)
}

func TestReviewValidation(t *testing.T) {
	store := setupStore(t)
	businesses := NewBusinessService(store, nil, time.Minute)
	reviews := NewReviewService(store)
	ctx := context.Background()

	business := validBusiness(1)
	require.NoError(t, businesses.CreateBusiness(ctx, business))

	for _, stars := range []int{-1, 6} {
		err := reviews.CreateReview(ctx, &models.Review{UserID: 1, BusinessID: business.ID, Stars: stars})
		assert.ErrorIs(t, err, ErrInvalidReview)
	}

	long := &models.Review{UserID: 1, BusinessID: business.ID, Stars: 3, ReviewText: strings.Repeat("x", 1001)}
	assert.ErrorIs(t, reviews.CreateReview(ctx, long), ErrInvalidReview)

	review := &models.Review{UserID: 1, BusinessID: business.ID, Stars: 3}
	require.NoError(t, reviews.CreateReview(ctx, review))

	_, err := reviews.UpdateReview(ctx, review.ID, 9, nil)
	assert.ErrorIs(t, err, ErrInvalidReview)
}

func TestMissingRecordReportedBeforeInvalidData(t *testing.T) {
	store := setupStore(t)
	businesses := NewBusinessService(store, nil, time.Minute)
	reviews := NewReviewService(store)
	ctx := context.Background()

	err := reviews.CreateReview(ctx, &models.Review{UserID: 1, BusinessID: 999, Stars: 9})
	assert.ErrorIs(t, err, db.ErrBusinessNotFound)

	_, err = reviews.UpdateReview(ctx, 999, 9, nil)
	assert.ErrorIs(t, err, db.ErrReviewNotFound)

	business := validBusiness(1)
	business.ID = 999
	business.Name = strings.Repeat("n", 51)
	assert.ErrorIs(t, businesses.UpdateBusiness(ctx, business), db.ErrBusinessNotFound)
}
