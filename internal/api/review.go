package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/AI2HU/bizreview/internal/db"
	"github.com/AI2HU/bizreview/internal/models"
	"github.com/AI2HU/bizreview/internal/services"
)

// Review endpoints

// createReview handles POST /reviews
func (s *Server) createReview(c *gin.Context) {
	var req models.CreateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.errorResponse(c, http.StatusBadRequest, msgMissingAttributes)
		return
	}

	review := &models.Review{
		UserID:     *req.UserID,
		BusinessID: *req.BusinessID,
		Stars:      *req.Stars,
	}
	if req.ReviewText != nil {
		review.ReviewText = *req.ReviewText
	}

	if err := s.reviewService.CreateReview(c.Request.Context(), review); err != nil {
		switch {
		case errors.Is(err, db.ErrBusinessNotFound):
			s.errorResponse(c, http.StatusNotFound, msgBusinessNotFound)
		case errors.Is(err, db.ErrDuplicateReview):
			s.errorResponse(c, http.StatusConflict, msgDuplicateReview)
		case errors.Is(err, services.ErrInvalidReview):
			s.errorResponse(c, http.StatusBadRequest, msgInvalidReview)
		default:
			s.internalError(c, msgCreateReview, err)
		}
		return
	}

	c.JSON(http.StatusCreated, toReviewResponse(s.baseURL(c), review))
}

// getReview handles GET /reviews/:id
func (s *Server) getReview(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		s.errorResponse(c, http.StatusNotFound, msgReviewNotFound)
		return
	}

	review, err := s.reviewService.GetReview(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, db.ErrReviewNotFound) {
			s.errorResponse(c, http.StatusNotFound, msgReviewNotFound)
			return
		}
		s.internalError(c, msgInternal, err)
		return
	}

	c.JSON(http.StatusOK, toReviewResponse(s.baseURL(c), review))
}

// updateReview handles PUT /reviews/:id
func (s *Server) updateReview(c *gin.Context) {
	var req models.UpdateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.errorResponse(c, http.StatusBadRequest, msgMissingAttributes)
		return
	}

	id, ok := parseID(c, "id")
	if !ok {
		s.errorResponse(c, http.StatusNotFound, msgReviewNotFound)
		return
	}

	review, err := s.reviewService.UpdateReview(c.Request.Context(), id, *req.Stars, req.ReviewText)
	if err != nil {
		switch {
		case errors.Is(err, db.ErrReviewNotFound):
			s.errorResponse(c, http.StatusNotFound, msgReviewNotFound)
		case errors.Is(err, services.ErrInvalidReview):
			s.errorResponse(c, http.StatusBadRequest, msgInvalidReview)
		default:
			s.internalError(c, msgInternal, err)
		}
		return
	}

	c.JSON(http.StatusOK, toReviewResponse(s.baseURL(c), review))
}

// deleteReview handles DELETE /reviews/:id
func (s *Server) deleteReview(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		s.errorResponse(c, http.StatusNotFound, msgReviewNotFound)
		return
	}

	if err := s.reviewService.DeleteReview(c.Request.Context(), id); err != nil {
		if errors.Is(err, db.ErrReviewNotFound) {
			s.errorResponse(c, http.StatusNotFound, msgReviewNotFound)
			return
		}
		s.internalError(c, msgInternal, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// listUserReviews handles GET /users/:user_id/reviews
func (s *Server) listUserReviews(c *gin.Context) {
	userID, ok := parseID(c, "user_id")
	if !ok {
		s.errorResponse(c, http.StatusNotFound, msgNotFound)
		return
	}

	reviews, err := s.reviewService.ListReviewsByUser(c.Request.Context(), userID)
	if err != nil {
		s.internalError(c, msgInternal, err)
		return
	}

	base := s.baseURL(c)
	responses := make([]models.ReviewResponse, len(reviews))
	for i, review := range reviews {
		responses[i] = toReviewResponse(base, review)
	}

	c.JSON(http.StatusOK, responses)
}
