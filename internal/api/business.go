package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/AI2HU/bizreview/internal/db"
	"github.com/AI2HU/bizreview/internal/models"
	"github.com/AI2HU/bizreview/internal/services"
	"github.com/AI2HU/bizreview/internal/shared"
)

// Business endpoints

// createBusiness handles POST /businesses
func (s *Server) createBusiness(c *gin.Context) {
	var req models.BusinessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.errorResponse(c, http.StatusBadRequest, msgMissingAttributes)
		return
	}

	business := businessFromRequest(&req)
	if err := s.businessService.CreateBusiness(c.Request.Context(), business); err != nil {
		if errors.Is(err, services.ErrInvalidBusiness) {
			s.errorResponse(c, http.StatusBadRequest, msgInvalidBusiness)
			return
		}
		s.internalError(c, msgCreateBusiness, err)
		return
	}

	c.JSON(http.StatusCreated, toBusinessResponse(s.baseURL(c), business))
}

// listBusinesses handles GET /businesses?limit=&offset=
func (s *Server) listBusinesses(c *gin.Context) {
	limit, offset := shared.ParsePageWindow(c, services.DefaultPageLimit, services.DefaultPageOffset)

	page, err := s.businessService.ListBusinesses(c.Request.Context(), limit, offset)
	if err != nil {
		s.internalError(c, msgInternal, err)
		return
	}

	base := s.baseURL(c)
	response := models.BusinessPageResponse{
		Entries: make([]models.BusinessResponse, len(page.Businesses)),
	}
	for i, business := range page.Businesses {
		response.Entries[i] = toBusinessResponse(base, business)
	}
	if page.HasMore {
		response.Next = fmt.Sprintf("%s/businesses?offset=%d&limit=%d", base, page.NextOffset(), page.Limit)
	}

	c.JSON(http.StatusOK, response)
}

// getBusiness handles GET /businesses/:id
func (s *Server) getBusiness(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		s.errorResponse(c, http.StatusNotFound, msgBusinessNotFound)
		return
	}

	business, err := s.businessService.GetBusiness(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, db.ErrBusinessNotFound) {
			s.errorResponse(c, http.StatusNotFound, msgBusinessNotFound)
			return
		}
		s.internalError(c, msgInternal, err)
		return
	}

	c.JSON(http.StatusOK, toBusinessResponse(s.baseURL(c), business))
}

// updateBusiness handles PUT /businesses/:id
func (s *Server) updateBusiness(c *gin.Context) {
	var req models.BusinessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.errorResponse(c, http.StatusBadRequest, msgMissingAttributes)
		return
	}

	id, ok := parseID(c, "id")
	if !ok {
		s.errorResponse(c, http.StatusNotFound, msgBusinessNotFound)
		return
	}

	business := businessFromRequest(&req)
	business.ID = id

	if err := s.businessService.UpdateBusiness(c.Request.Context(), business); err != nil {
		switch {
		case errors.Is(err, db.ErrBusinessNotFound):
			s.errorResponse(c, http.StatusNotFound, msgBusinessNotFound)
		case errors.Is(err, services.ErrInvalidBusiness):
			s.errorResponse(c, http.StatusBadRequest, msgInvalidBusiness)
		default:
			s.internalError(c, msgInternal, err)
		}
		return
	}

	c.JSON(http.StatusOK, toBusinessResponse(s.baseURL(c), business))
}

// deleteBusiness handles DELETE /businesses/:id
func (s *Server) deleteBusiness(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		s.errorResponse(c, http.StatusNotFound, msgBusinessNotFound)
		return
	}

	if err := s.businessService.DeleteBusiness(c.Request.Context(), id); err != nil {
		if errors.Is(err, db.ErrBusinessNotFound) {
			s.errorResponse(c, http.StatusNotFound, msgBusinessNotFound)
			return
		}
		s.internalError(c, msgInternal, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// listOwnerBusinesses handles GET /owners/:owner_id/businesses
func (s *Server) listOwnerBusinesses(c *gin.Context) {
	ownerID, ok := parseID(c, "owner_id")
	if !ok {
		s.errorResponse(c, http.StatusNotFound, msgNotFound)
		return
	}

	businesses, err := s.businessService.ListBusinessesByOwner(c.Request.Context(), ownerID)
	if err != nil {
		s.internalError(c, msgInternal, err)
		return
	}

	base := s.baseURL(c)
	responses := make([]models.BusinessResponse, len(businesses))
	for i, business := range businesses {
		responses[i] = toBusinessResponse(base, business)
	}

	c.JSON(http.StatusOK, responses)
}

func businessFromRequest(req *models.BusinessRequest) *models.Business {
	return &models.Business{
		OwnerID:       *req.OwnerID,
		Name:          *req.Name,
		StreetAddress: *req.StreetAddress,
		City:          *req.City,
		State:         *req.State,
		ZipCode:       string(*req.ZipCode),
	}
}
