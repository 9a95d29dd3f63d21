package models

// Core domain models

// Business represents a row of the businesses table
type Business struct {
	ID            int64
	OwnerID       int64
	Name          string
	StreetAddress string
	City          string
	State         string
	ZipCode       string
}

// Review represents a row of the reviews table
type Review struct {
	ID         int64
	UserID     int64
	BusinessID int64
	Stars      int
	ReviewText string
}

// Page is a window over the businesses table
type Page struct {
	Businesses []*Business
	Limit      int
	Offset     int
	HasMore    bool // at least one row exists after this window
}

// NextOffset returns the offset of the page that follows this one
func (p *Page) NextOffset() int {
	return p.Offset + p.Limit
}
