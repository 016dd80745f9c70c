package sales

import (
	"context"
	"time"

	"woodline/internal/core/id"
)

// Filter for listing sales.
type Filter struct {
	Status     *Status
	CustomerID *id.ID
	CreatedBy  *id.ID
	FromDate   *time.Time
	ToDate     *time.Time
	Limit      int
	Offset     int
}

// Repository defines Sale persistence.
type Repository interface {
	// Create inserts the sale header and all items.
	Create(ctx context.Context, s *Sale) error

	// Update updates the sale header.
	Update(ctx context.Context, s *Sale) error

	// GetByID retrieves a sale with items.
	GetByID(ctx context.Context, saleID id.ID) (*Sale, error)

	// GetByIDForUpdate locks the header row for a status transition.
	// Items are loaded as well.
	GetByIDForUpdate(ctx context.Context, saleID id.ID) (*Sale, error)

	List(ctx context.Context, filter Filter) ([]Sale, int, error)
}
