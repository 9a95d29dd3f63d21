package db

import "errors"

var (
	ErrBusinessNotFound = errors.New("business not found")
	ErrReviewNotFound   = errors.New("review not found")
	// ErrDuplicateReview is returned when a user reviews the same business twice
	ErrDuplicateReview = errors.New("review already exists for this user and business")
	// ErrConstraint covers CHECK, NOT NULL, length and foreign key violations
	ErrConstraint = errors.New("constraint violation")
)
