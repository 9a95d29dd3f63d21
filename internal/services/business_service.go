package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"
	"unicode/utf8"

	"github.com/AI2HU/bizreview/internal/cache"
	"github.com/AI2HU/bizreview/internal/db"
	"github.com/AI2HU/bizreview/internal/logger"
	"github.com/AI2HU/bizreview/internal/models"
)

// Column widths of the businesses table
const (
	maxNameLength    = 50
	maxAddressLength = 100
	maxCityLength    = 50
	maxStateLength   = 2
	maxZipLength     = 5
)

// Default window for GET /businesses
const (
	DefaultPageLimit  = 3
	DefaultPageOffset = 0
)

var ErrInvalidBusiness = errors.New("invalid business data")

// BusinessService provides business logic for business management
type BusinessService struct {
	db    db.Store
	cache cache.Cache
	ttl   time.Duration
}

// NewBusinessService creates a new business service
func NewBusinessService(store db.Store, c cache.Cache, ttl time.Duration) *BusinessService {
	if c == nil {
		c = cache.Noop{}
	}
	return &BusinessService{
		db:    store,
		cache: c,
		ttl:   ttl,
	}
}

// CreateBusiness validates and stores a new business
func (s *BusinessService) CreateBusiness(ctx context.Context, business *models.Business) error {
	if err := ValidateBusiness(business); err != nil {
		return err
	}
	if err := s.db.CreateBusiness(ctx, business); err != nil {
		return s.translate(err)
	}

	logger.Debug("Created business %d for owner %d", business.ID, business.OwnerID)
	return nil
}

// GetBusiness retrieves a business by id, going through the cache
func (s *BusinessService) GetBusiness(ctx context.Context, id int64) (*models.Business, error) {
	key := businessKey(id)

	if data, ok, err := s.cache.Get(ctx, key); err != nil {
		logger.Warning("Cache read failed for %s: %v", key, err)
	} else if ok {
		var business models.Business
		if err := json.Unmarshal(data, &business); err == nil {
			return &business, nil
		}
		logger.Warning("Dropping undecodable cache entry %s", key)
	}

	business, err := s.db.GetBusiness(ctx, id)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(business); err == nil {
		if err := s.cache.Set(ctx, key, data, s.ttl); err != nil {
			logger.Warning("Cache write failed for %s: %v", key, err)
		}
	}

	return business, nil
}

// ListBusinesses returns one page of businesses ordered by id. Negative
// limits and offsets are treated as zero.
func (s *BusinessService) ListBusinesses(ctx context.Context, limit, offset int) (*models.Page, error) {
	limit = max(0, limit)
	offset = max(0, offset)

	// One extra row tells whether a next page exists
	businesses, err := s.db.ListBusinesses(ctx, limit+1, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list businesses: %w", err)
	}

	page := &models.Page{
		Businesses: businesses,
		Limit:      limit,
		Offset:     offset,
	}
	if len(businesses) > limit {
		page.Businesses = businesses[:limit]
		page.HasMore = true
	}

	return page, nil
}

// ListBusinessesByOwner returns every business of an owner
func (s *BusinessService) ListBusinessesByOwner(ctx context.Context, ownerID int64) ([]*models.Business, error) {
	businesses, err := s.db.ListBusinessesByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list businesses for owner %d: %w", ownerID, err)
	}
	return businesses, nil
}

// UpdateBusiness validates and replaces an existing business. A missing
// business is reported before invalid data.
func (s *BusinessService) UpdateBusiness(ctx context.Context, business *models.Business) error {
	if _, err := s.db.GetBusiness(ctx, business.ID); err != nil {
		return err
	}
	if err := ValidateBusiness(business); err != nil {
		return err
	}

	err := s.db.UpdateBusiness(ctx, business)
	s.invalidate(ctx, business.ID)
	if err != nil {
		return s.translate(err)
	}
	return nil
}

// DeleteBusiness deletes a business and, through the schema, its reviews
func (s *BusinessService) DeleteBusiness(ctx context.Context, id int64) error {
	err := s.db.DeleteBusiness(ctx, id)
	s.invalidate(ctx, id)
	return err
}

func (s *BusinessService) invalidate(ctx context.Context, id int64) {
	if err := s.cache.Delete(ctx, businessKey(id)); err != nil {
		logger.Warning("Cache invalidation failed for business %d: %v", id, err)
	}
}

func (s *BusinessService) translate(err error) error {
	if errors.Is(err, db.ErrConstraint) {
		return fmt.Errorf("%w: %v", ErrInvalidBusiness, err)
	}
	return err
}

// ValidateBusiness checks the attributes against the column widths of the schema
func ValidateBusiness(b *models.Business) error {
	checks := []struct {
		field string
		value string
		max   int
	}{
		{"name", b.Name, maxNameLength},
		{"street_address", b.StreetAddress, maxAddressLength},
		{"city", b.City, maxCityLength},
		{"state", b.State, maxStateLength},
		{"zip_code", b.ZipCode, maxZipLength},
	}

	for _, c := range checks {
		if utf8.RuneCountInString(c.value) > c.max {
			return fmt.Errorf("%w: %s exceeds %d characters", ErrInvalidBusiness, c.field, c.max)
		}
	}

	if b.ZipCode == "" {
		return fmt.Errorf("%w: zip_code is empty", ErrInvalidBusiness)
	}
	for _, r := range b.ZipCode {
		if r < '0' || r > '9' {
			return fmt.Errorf("%w: zip_code must be numeric", ErrInvalidBusiness)
		}
	}

	return nil
}

// ZipCodeNumber returns the stored zip code as the integer clients see
func ZipCodeNumber(b *models.Business) int {
	n, err := strconv.Atoi(b.ZipCode)
	if err != nil {
		return 0
	}
	return n
}

func businessKey(id int64) string {
	return "business:" + strconv.FormatInt(id, 10)
}
