// Package sqlstore implements db.Store over database/sql. Engine specifics
// (connection, error codes, migration driver) come from a db.Dialect.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/AI2HU/bizreview/internal/db"
	"github.com/AI2HU/bizreview/internal/models"
)

const (
	businessColumns = "business_id, owner_id, name, street_address, city, state, zip_code"
	reviewColumns   = "review_id, user_id, business_id, stars, review_text"
)

// SQLStore implements the Store interface on top of a SQL dialect
type SQLStore struct {
	db      *sql.DB
	dialect db.Dialect
}

// New creates a new store for the given dialect
func New(dialect db.Dialect) *SQLStore {
	return &SQLStore{
		dialect: dialect,
	}
}

// Open establishes the connection pool without touching the schema. The
// dialect is closed again when the pool cannot be opened.
func (s *SQLStore) Open(ctx context.Context) error {
	conn, err := s.dialect.Open(ctx)
	if err != nil {
		s.dialect.Close()
		return fmt.Errorf("failed to open %s database: %w", s.dialect.Name(), err)
	}

	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		s.dialect.Close()
		return fmt.Errorf("failed to ping %s database: %w", s.dialect.Name(), err)
	}

	s.db = conn
	return nil
}

// Connect opens the connection pool and brings the schema up to date. A
// failed migration disconnects the store.
func (s *SQLStore) Connect(ctx context.Context) error {
	if err := s.Open(ctx); err != nil {
		return err
	}

	if err := db.RunMigrations(s.dialect, s.db); err != nil {
		s.Disconnect(ctx)
		return fmt.Errorf("failed to migrate schema: %w", err)
	}

	return nil
}

// Disconnect closes the connection pool and the dialect
func (s *SQLStore) Disconnect(ctx context.Context) error {
	var err error
	if s.db != nil {
		err = s.db.Close()
		s.db = nil
	}
	return errors.Join(err, s.dialect.Close())
}

// Ping checks the database connection
func (s *SQLStore) Ping(ctx context.Context) error {
	if s.db == nil {
		return fmt.Errorf("not connected to database")
	}
	return s.db.PingContext(ctx)
}

// DB exposes the underlying pool
func (s *SQLStore) DB() *sql.DB {
	return s.db
}

// Dialect returns the dialect the store was built with
func (s *SQLStore) Dialect() db.Dialect {
	return s.dialect
}

type scanner interface {
	Scan(dest ...any) error
}

func scanBusiness(row scanner) (*models.Business, error) {
	var b models.Business
	err := row.Scan(&b.ID, &b.OwnerID, &b.Name, &b.StreetAddress, &b.City, &b.State, &b.ZipCode)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func scanReview(row scanner) (*models.Review, error) {
	var r models.Review
	var text sql.NullString
	if err := row.Scan(&r.ID, &r.UserID, &r.BusinessID, &r.Stars, &text); err != nil {
		return nil, err
	}
	r.ReviewText = text.String
	return &r, nil
}

// Business Operations

// CreateBusiness inserts a business and fills in its generated id
func (s *SQLStore) CreateBusiness(ctx context.Context, business *models.Business) error {
	query := `
		INSERT INTO businesses (owner_id, name, street_address, city, state, zip_code)
		VALUES (?, ?, ?, ?, ?, ?)`

	result, err := s.db.ExecContext(ctx, query,
		business.OwnerID,
		business.Name,
		business.StreetAddress,
		business.City,
		business.State,
		business.ZipCode,
	)
	if err != nil {
		return s.dialect.TranslateError(err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read business id: %w", err)
	}

	created, err := s.GetBusiness(ctx, id)
	if err != nil {
		return err
	}
	*business = *created
	return nil
}

// GetBusiness retrieves a business by id
func (s *SQLStore) GetBusiness(ctx context.Context, id int64) (*models.Business, error) {
	query := "SELECT " + businessColumns + " FROM businesses WHERE business_id = ?"

	business, err := scanBusiness(s.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %d", db.ErrBusinessNotFound, id)
	}
	if err != nil {
		return nil, err
	}

	return business, nil
}

// ListBusinesses returns up to limit businesses ordered by id, skipping offset rows
func (s *SQLStore) ListBusinesses(ctx context.Context, limit, offset int) ([]*models.Business, error) {
	query := "SELECT " + businessColumns + " FROM businesses ORDER BY business_id LIMIT ? OFFSET ?"
	return s.queryBusinesses(ctx, query, limit, offset)
}

// ListBusinessesByOwner returns every business of an owner ordered by id
func (s *SQLStore) ListBusinessesByOwner(ctx context.Context, ownerID int64) ([]*models.Business, error) {
	query := "SELECT " + businessColumns + " FROM businesses WHERE owner_id = ? ORDER BY business_id"
	return s.queryBusinesses(ctx, query, ownerID)
}

func (s *SQLStore) queryBusinesses(ctx context.Context, query string, args ...any) ([]*models.Business, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	businesses := []*models.Business{}
	for rows.Next() {
		business, err := scanBusiness(rows)
		if err != nil {
			return nil, err
		}
		businesses = append(businesses, business)
	}

	return businesses, rows.Err()
}

// UpdateBusiness replaces every attribute of an existing business
func (s *SQLStore) UpdateBusiness(ctx context.Context, business *models.Business) error {
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		if err := exists(ctx, tx, "SELECT business_id FROM businesses WHERE business_id = ?", business.ID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return fmt.Errorf("%w: %d", db.ErrBusinessNotFound, business.ID)
			}
			return err
		}

		query := `
			UPDATE businesses
			SET owner_id = ?, name = ?, street_address = ?, city = ?, state = ?, zip_code = ?
			WHERE business_id = ?`

		_, err := tx.ExecContext(ctx, query,
			business.OwnerID,
			business.Name,
			business.StreetAddress,
			business.City,
			business.State,
			business.ZipCode,
			business.ID,
		)
		return err
	})
	if err != nil {
		return err
	}

	updated, err := s.GetBusiness(ctx, business.ID)
	if err != nil {
		return err
	}
	*business = *updated
	return nil
}

// DeleteBusiness deletes a business; its reviews go with it through the foreign key
func (s *SQLStore) DeleteBusiness(ctx context.Context, id int64) error {
	return s.deleteByID(ctx, "DELETE FROM businesses WHERE business_id = ?", id, db.ErrBusinessNotFound)
}

// Review Operations

// CreateReview inserts a review for an existing business and fills in its generated id
func (s *SQLStore) CreateReview(ctx context.Context, review *models.Review) error {
	var id int64
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		if err := exists(ctx, tx, "SELECT business_id FROM businesses WHERE business_id = ?", review.BusinessID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return fmt.Errorf("%w: %d", db.ErrBusinessNotFound, review.BusinessID)
			}
			return err
		}

		query := `
			INSERT INTO reviews (user_id, business_id, stars, review_text)
			VALUES (?, ?, ?, ?)`

		result, err := tx.ExecContext(ctx, query,
			review.UserID,
			review.BusinessID,
			review.Stars,
			review.ReviewText,
		)
		if err != nil {
			return err
		}

		id, err = result.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to read review id: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	created, err := s.GetReview(ctx, id)
	if err != nil {
		return err
	}
	*review = *created
	return nil
}

// GetReview retrieves a review by id
func (s *SQLStore) GetReview(ctx context.Context, id int64) (*models.Review, error) {
	query := "SELECT " + reviewColumns + " FROM reviews WHERE review_id = ?"

	review, err := scanReview(s.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %d", db.ErrReviewNotFound, id)
	}
	if err != nil {
		return nil, err
	}

	return review, nil
}

// ListReviewsByUser returns every review written by a user ordered by id
func (s *SQLStore) ListReviewsByUser(ctx context.Context, userID int64) ([]*models.Review, error) {
	query := "SELECT " + reviewColumns + " FROM reviews WHERE user_id = ? ORDER BY review_id"

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	reviews := []*models.Review{}
	for rows.Next() {
		review, err := scanReview(rows)
		if err != nil {
			return nil, err
		}
		reviews = append(reviews, review)
	}

	return reviews, rows.Err()
}

// UpdateReview sets the stars of a review and, when reviewText is non-nil, its text
func (s *SQLStore) UpdateReview(ctx context.Context, id int64, stars int, reviewText *string) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		if err := exists(ctx, tx, "SELECT review_id FROM reviews WHERE review_id = ?", id); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return fmt.Errorf("%w: %d", db.ErrReviewNotFound, id)
			}
			return err
		}

		var err error
		if reviewText != nil {
			_, err = tx.ExecContext(ctx,
				"UPDATE reviews SET stars = ?, review_text = ? WHERE review_id = ?",
				stars, *reviewText, id)
		} else {
			_, err = tx.ExecContext(ctx,
				"UPDATE reviews SET stars = ? WHERE review_id = ?",
				stars, id)
		}
		return err
	})
}

// DeleteReview deletes a review
func (s *SQLStore) DeleteReview(ctx context.Context, id int64) error {
	return s.deleteByID(ctx, "DELETE FROM reviews WHERE review_id = ?", id, db.ErrReviewNotFound)
}

func (s *SQLStore) deleteByID(ctx context.Context, query string, id int64, notFound error) error {
	result, err := s.db.ExecContext(ctx, query, id)
	if err != nil {
		return s.dialect.TranslateError(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return fmt.Errorf("%w: %d", notFound, id)
	}

	return nil
}

// inTx runs fn in a transaction and translates driver errors on the way out
func (s *SQLStore) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := fn(tx); err != nil {
		tx.Rollback()
		return s.dialect.TranslateError(err)
	}

	if err := tx.Commit(); err != nil {
		return s.dialect.TranslateError(err)
	}
	return nil
}

func exists(ctx context.Context, tx *sql.Tx, query string, id int64) error {
	var found int64
	return tx.QueryRowContext(ctx, query, id).Scan(&found)
}
