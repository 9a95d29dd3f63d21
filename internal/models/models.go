package models

import (
	"encoding/json"
	"fmt"
)

// API request/response models

// APIError is the body of every error response
type APIError struct {
	Error string `json:"Error"`
}

// BusinessRequest is the body of POST and PUT /businesses
type BusinessRequest struct {
	OwnerID       *int64       `json:"owner_id" binding:"required"`
	Name          *string      `json:"name" binding:"required"`
	StreetAddress *string      `json:"street_address" binding:"required"`
	City          *string      `json:"city" binding:"required"`
	State         *string      `json:"state" binding:"required"`
	ZipCode       *ZipCode     `json:"zip_code" binding:"required"`
}

// CreateReviewRequest is the body of POST /reviews
type CreateReviewRequest struct {
	UserID     *int64  `json:"user_id" binding:"required"`
	BusinessID *int64  `json:"business_id" binding:"required"`
	Stars      *int    `json:"stars" binding:"required"`
	ReviewText *string `json:"review_text,omitempty"`
}

// UpdateReviewRequest is the body of PUT /reviews/:id. Only stars is required;
// review_text is left untouched when absent.
type UpdateReviewRequest struct {
	Stars      *int    `json:"stars" binding:"required"`
	ReviewText *string `json:"review_text,omitempty"`
}

// ZipCode accepts a zip code sent either as a JSON integer or as a string.
// Strings keep their leading zeros; whether the value is a valid zip code is
// decided by the business validation.
type ZipCode string

func (z *ZipCode) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*z = ZipCode(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("zip_code must be a number or a string: %w", err)
	}
	*z = ZipCode(n.String())
	return nil
}

// BusinessResponse is the JSON representation of a business
type BusinessResponse struct {
	ID            int64  `json:"id"`
	OwnerID       int64  `json:"owner_id"`
	Name          string `json:"name"`
	StreetAddress string `json:"street_address"`
	City          string `json:"city"`
	State         string `json:"state"`
	ZipCode       int    `json:"zip_code"`
	Self          string `json:"self"`
}

// ReviewResponse is the JSON representation of a review
type ReviewResponse struct {
	ID         int64  `json:"id"`
	UserID     int64  `json:"user_id"`
	Business   string `json:"business"`
	Stars      int    `json:"stars"`
	ReviewText string `json:"review_text"`
	Self       string `json:"self"`
}

// BusinessPageResponse is the body of GET /businesses
type BusinessPageResponse struct {
	Entries []BusinessResponse `json:"entries"`
	Next    string             `json:"next,omitempty"`
}

// HealthResponse is the body of GET /healthz
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}
