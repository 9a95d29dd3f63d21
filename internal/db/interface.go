package db

import (
	"context"
	"database/sql"

	"github.com/golang-migrate/migrate/v4/database"

	"github.com/AI2HU/bizreview/internal/models"
)

// Store defines the persistence operations for businesses and reviews
type Store interface {
	// Connection management
	Connect(ctx context.Context) error
	Disconnect(ctx context.Context) error
	Ping(ctx context.Context) error

	// Business operations
	CreateBusiness(ctx context.Context, business *models.Business) error
	GetBusiness(ctx context.Context, id int64) (*models.Business, error)
	ListBusinesses(ctx context.Context, limit, offset int) ([]*models.Business, error)
	ListBusinessesByOwner(ctx context.Context, ownerID int64) ([]*models.Business, error)
	UpdateBusiness(ctx context.Context, business *models.Business) error
	DeleteBusiness(ctx context.Context, id int64) error

	// Review operations
	CreateReview(ctx context.Context, review *models.Review) error
	GetReview(ctx context.Context, id int64) (*models.Review, error)
	ListReviewsByUser(ctx context.Context, userID int64) ([]*models.Review, error)
	UpdateReview(ctx context.Context, id int64, stars int, reviewText *string) error
	DeleteReview(ctx context.Context, id int64) error
}

// Dialect adapts the shared SQL store to one database engine
type Dialect interface {
	// Name is the golang-migrate database name and the migrations directory
	Name() string
	Open(ctx context.Context) (*sql.DB, error)
	// Close releases resources held outside the *sql.DB, such as dialers
	Close() error
	// TranslateError maps driver errors onto the sentinel errors of this package
	TranslateError(err error) error
	MigrationDriver(db *sql.DB) (database.Driver, error)
}
