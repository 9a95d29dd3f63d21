package services

import (
	"context"
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/AI2HU/bizreview/internal/db"
	"github.com/AI2HU/bizreview/internal/logger"
	"github.com/AI2HU/bizreview/internal/models"
)

const (
	MinStars            = 0
	MaxStars            = 5
	maxReviewTextLength = 1000
)

var ErrInvalidReview = errors.New("invalid review data")

// ReviewService provides business logic for reviews
type ReviewService struct {
	db db.Store
}

// NewReviewService creates a new review service
func NewReviewService(store db.Store) *ReviewService {
	return &ReviewService{db: store}
}

// CreateReview stores a review. It fails with db.ErrBusinessNotFound when the
// business does not exist and db.ErrDuplicateReview when the user already
// reviewed it. A missing business is reported before invalid review data.
func (s *ReviewService) CreateReview(ctx context.Context, review *models.Review) error {
	if _, err := s.db.GetBusiness(ctx, review.BusinessID); err != nil {
		return err
	}
	if err := validateReview(review.Stars, &review.ReviewText); err != nil {
		return err
	}

	if err := s.db.CreateReview(ctx, review); err != nil {
		return translateReviewError(err)
	}

	logger.Debug("User %d reviewed business %d with %d stars", review.UserID, review.BusinessID, review.Stars)
	return nil
}

// GetReview retrieves a review by id
func (s *ReviewService) GetReview(ctx context.Context, id int64) (*models.Review, error) {
	return s.db.GetReview(ctx, id)
}

// ListReviewsByUser returns every review written by a user
func (s *ReviewService) ListReviewsByUser(ctx context.Context, userID int64) ([]*models.Review, error) {
	reviews, err := s.db.ListReviewsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list reviews for user %d: %w", userID, err)
	}
	return reviews, nil
}

// UpdateReview changes the stars of a review and, when given, its text. A
// missing review is reported before invalid review data.
func (s *ReviewService) UpdateReview(ctx context.Context, id int64, stars int, reviewText *string) (*models.Review, error) {
	if _, err := s.db.GetReview(ctx, id); err != nil {
		return nil, err
	}
	if err := validateReview(stars, reviewText); err != nil {
		return nil, err
	}

	if err := s.db.UpdateReview(ctx, id, stars, reviewText); err != nil {
		return nil, translateReviewError(err)
	}

	return s.db.GetReview(ctx, id)
}

// DeleteReview deletes a review
func (s *ReviewService) DeleteReview(ctx context.Context, id int64) error {
	return s.db.DeleteReview(ctx, id)
}

func validateReview(stars int, reviewText *string) error {
	if stars < MinStars || stars > MaxStars {
		return fmt.Errorf("%w: stars must be between %d and %d", ErrInvalidReview, MinStars, MaxStars)
	}
	if reviewText != nil && utf8.RuneCountInString(*reviewText) > maxReviewTextLength {
		return fmt.Errorf("%w: review_text exceeds %d characters", ErrInvalidReview, maxReviewTextLength)
	}
	return nil
}

func translateReviewError(err error) error {
	if errors.Is(err, db.ErrConstraint) {
		return fmt.Errorf("%w: %v", ErrInvalidReview, err)
	}
	return err
}
