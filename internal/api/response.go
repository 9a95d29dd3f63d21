package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/AI2HU/bizreview/internal/logger"
	"github.com/AI2HU/bizreview/internal/models"
	"github.com/AI2HU/bizreview/internal/services"
)

// Error messages returned to clients
const (
	msgMissingAttributes = "The request body is missing at least one of the required attributes"
	msgBusinessNotFound  = "No business with this business_id exists"
	msgReviewNotFound    = "No review with this review_id exists"
	msgDuplicateReview   = "You have already submitted a review for this business. You can update your previous review, or delete it and submit a new review"
	msgInvalidBusiness   = "Invalid business data"
	msgInvalidReview     = "Invalid review data"
	msgCreateBusiness    = "Unable to create business"
	msgCreateReview      = "Unable to create review"
	msgInternal          = "Internal server error"
	msgNotFound          = "Not found"
	msgTimeout           = "Request timed out"
)

// errorResponse aborts the request with an error body
func (s *Server) errorResponse(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, models.APIError{Error: message})
}

// internalError logs err and answers 500, or 504 when the request ran out of time
func (s *Server) internalError(c *gin.Context, message string, err error) {
	if errors.Is(err, context.DeadlineExceeded) {
		logger.Warning("%s %s: %v", c.GetString(requestIDKey), message, err)
		s.errorResponse(c, http.StatusGatewayTimeout, msgTimeout)
		return
	}

	logger.Error("%s %s: %v", c.GetString(requestIDKey), message, err)
	s.errorResponse(c, http.StatusInternalServerError, message)
}

// baseURL is the scheme and host the absolute links start with
func (s *Server) baseURL(c *gin.Context) string {
	host := s.options.PublicHost
	if host == "" {
		host = c.Request.Host
	}
	return fmt.Sprintf("%s://%s", s.options.PublicScheme, host)
}

func businessURL(base string, id int64) string {
	return base + "/businesses/" + strconv.FormatInt(id, 10)
}

func reviewURL(base string, id int64) string {
	return base + "/reviews/" + strconv.FormatInt(id, 10)
}

func toBusinessResponse(base string, b *models.Business) models.BusinessResponse {
	return models.BusinessResponse{
		ID:            b.ID,
		OwnerID:       b.OwnerID,
		Name:          b.Name,
		StreetAddress: b.StreetAddress,
		City:          b.City,
		State:         b.State,
		ZipCode:       services.ZipCodeNumber(b),
		Self:          businessURL(base, b.ID),
	}
}

func toReviewResponse(base string, r *models.Review) models.ReviewResponse {
	return models.ReviewResponse{
		ID:         r.ID,
		UserID:     r.UserID,
		Business:   businessURL(base, r.BusinessID),
		Stars:      r.Stars,
		ReviewText: r.ReviewText,
		Self:       reviewURL(base, r.ID),
	}
}

// parseID reads a numeric path parameter
func parseID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}
