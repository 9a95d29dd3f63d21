package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"github.com/golang-migrate/migrate/v4/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AI2HU/bizreview/internal/db"
	"github.com/AI2HU/bizreview/internal/db/sqlite"
	"github.com/AI2HU/bizreview/internal/models"
)

func setupTestStore(t *testing.T) *SQLStore {
	t.Helper()

	dialect, err := sqlite.New(&models.Config{
		Provider: "sqlite",
		Path:     filepath.Join(t.TempDir(), "test.db"),
	})
	require.NoError(t, err)

	store := New(dialect)
	require.NoError(t, store.Connect(context.Background()))
	t.Cleanup(func() {
		store.Disconnect(context.Background())
	})

	return store
}

func newBusiness(ownerID int64, name string) *models.Business {
	return &models.Business{
		OwnerID:       ownerID,
		Name:          name,
		StreetAddress: "123 Main St",
		City:          "Corvallis",
		State:         "OR",
		ZipCode:       "97331",
	}
}

func TestBusinessCRUD(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	business := newBusiness(7, "Beaver Bagels")
	require.NoError(t, store.CreateBusiness(ctx, business))
	assert.NotZero(t, business.ID)

	got, err := store.GetBusiness(ctx, business.ID)
	require.NoError(t, err)
	assert.Equal(t, business, got)

	business.Name = "Beaver Bakery"
	business.ZipCode = "97330"
	require.NoError(t, store.UpdateBusiness(ctx, business))

	got, err = store.GetBusiness(ctx, business.ID)
	require.NoError(t, err)
	assert.Equal(t, "Beaver Bakery", got.Name)
	assert.Equal(t, "97330", got.ZipCode)

	require.NoError(t, store.DeleteBusiness(ctx, business.ID))

	_, err = store.GetBusiness(ctx, business.ID)
	assert.ErrorIs(t, err, db.ErrBusinessNotFound)

	assert.ErrorIs(t, store.DeleteBusiness(ctx, business.ID), db.ErrBusinessNotFound)
}

func TestUpdateMissingBusiness(t *testing.T) {
	store := setupTestStore(t)

	business := newBusiness(1, "Ghost")
	business.ID = 42
	assert.ErrorIs(t, store.UpdateBusiness(context.Background(), business), db.ErrBusinessNotFound)
}

func TestListBusinesses(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, store.CreateBusiness(ctx, newBusiness(int64(i%2), "Shop")))
	}

	page, err := store.ListBusinesses(ctx, 3, 0)
	require.NoError(t, err)
	require.Len(t, page, 3)
	assert.Less(t, page[0].ID, page[1].ID)
	assert.Less(t, page[1].ID, page[2].ID)

	page, err = store.ListBusinesses(ctx, 3, 3)
	require.NoError(t, err)
	assert.Len(t, page, 2)

	page, err = store.ListBusinesses(ctx, 3, 10)
	require.NoError(t, err)
	assert.Empty(t, page)

	owned, err := store.ListBusinessesByOwner(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, owned, 2)
	for _, b := range owned {
		assert.Equal(t, int64(1), b.OwnerID)
	}

	none, err := store.ListBusinessesByOwner(ctx, 99)
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestReviewCRUD(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	business := newBusiness(1, "Cafe")
	require.NoError(t, store.CreateBusiness(ctx, business))

	review := &models.Review{UserID: 5, BusinessID: business.ID, Stars: 4, ReviewText: "Good coffee"}
	require.NoError(t, store.CreateReview(ctx, review))
	assert.NotZero(t, review.ID)

	got, err := store.GetReview(ctx, review.ID)
	require.NoError(t, err)
	assert.Equal(t, review, got)

	// stars only keeps the text
	require.NoError(t, store.UpdateReview(ctx, review.ID, 2, nil))
	got, err = store.GetReview(ctx, review.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.Stars)
	assert.Equal(t, "Good coffee", got.ReviewText)

	text := "Cold coffee"
	require.NoError(t, store.UpdateReview(ctx, review.ID, 1, &text))
	got, err = store.GetReview(ctx, review.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Stars)
	assert.Equal(t, "Cold coffee", got.ReviewText)

	reviews, err := store.ListReviewsByUser(ctx, 5)
	require.NoError(t, err)
	assert.Len(t, reviews, 1)

	require.NoError(t, store.DeleteReview(ctx, review.ID))
	_, err = store.GetReview(ctx, review.ID)
	assert.ErrorIs(t, err, db.ErrReviewNotFound)
	assert.ErrorIs(t, store.DeleteReview(ctx, review.ID), db.ErrReviewNotFound)
	assert.ErrorIs(t, store.UpdateReview(ctx, review.ID, 3, nil), db.ErrReviewNotFound)
}

func TestReviewConstraints(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	business := newBusiness(1, "Diner")
	require.NoError(t, store.CreateBusiness(ctx, business))

	require.NoError(t, store.CreateReview(ctx, &models.Review{UserID: 1, BusinessID: business.ID, Stars: 5}))

	err := store.CreateReview(ctx, &models.Review{UserID: 1, BusinessID: business.ID, Stars: 3})
	assert.ErrorIs(t, err, db.ErrDuplicateReview)

	err = store.CreateReview(ctx, &models.Review{UserID: 2, BusinessID: business.ID, Stars: 6})
	assert.ErrorIs(t, err, db.ErrConstraint)

	err = store.CreateReview(ctx, &models.Review{UserID: 2, BusinessID: business.ID + 100, Stars: 3})
	assert.ErrorIs(t, err, db.ErrBusinessNotFound)
}

func TestDeleteBusinessCascadesReviews(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	business := newBusiness(1, "Pizza")
	require.NoError(t, store.CreateBusiness(ctx, business))

	review := &models.Review{UserID: 9, BusinessID: business.ID, Stars: 3}
	require.NoError(t, store.CreateReview(ctx, review))

	require.NoError(t, store.DeleteBusiness(ctx, business.ID))

	_, err := store.GetReview(ctx, review.ID)
	assert.ErrorIs(t, err, db.ErrReviewNotFound)
}

func TestMigrationVersion(t *testing.T) {
	store := setupTestStore(t)

	version, dirty, err := db.MigrationVersion(store.Dialect(), store.DB())
	require.NoError(t, err)
	assert.Equal(t, uint(2), version)
	assert.False(t, dirty)

	// a second run is a no-op
	require.NoError(t, db.RunMigrations(store.Dialect(), store.DB()))
}

type failingDialect struct {
	openErr    error
	migrateErr error
	path       string
	closed     int
}

func (d *failingDialect) Name() string { return "sqlite" }

func (d *failingDialect) Open(ctx context.Context) (*sql.DB, error) {
	if d.openErr != nil {
		return nil, d.openErr
	}
	return sql.Open("sqlite3", d.path)
}

func (d *failingDialect) Close() error {
	d.closed++
	return nil
}

func (d *failingDialect) TranslateError(err error) error { return err }

func (d *failingDialect) MigrationDriver(conn *sql.DB) (database.Driver, error) {
	return nil, d.migrateErr
}

func TestOpenFailureClosesDialect(t *testing.T) {
	dialect := &failingDialect{openErr: errors.New("dial failed")}
	store := New(dialect)

	err := store.Connect(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dial failed")
	assert.Equal(t, 1, dialect.closed)
	assert.Nil(t, store.DB())
}

func TestMigrationFailureDisconnects(t *testing.T) {
	dialect := &failingDialect{
		migrateErr: errors.New("no driver"),
		path:       filepath.Join(t.TempDir(), "fail.db"),
	}
	store := New(dialect)

	err := store.Connect(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no driver")
	assert.Equal(t, 1, dialect.closed)
	assert.Nil(t, store.DB())
}
