package product

import (
	"context"

	"woodline/internal/core/id"
)

// Filter for listing products.
type Filter struct {
	Search   string
	Category string
	IsActive *bool
	Limit    int
	Offset   int
}

// Repository defines the interface for Product persistence.
type Repository interface {
	Create(ctx context.Context, p *Product) error
	Update(ctx context.Context, p *Product) error
	GetByID(ctx context.Context, productID id.ID) (*Product, error)
	GetByBarcode(ctx context.Context, barcode string) (*Product, error)
	GetByIDs(ctx context.Context, productIDs []id.ID) (map[id.ID]*Product, error)
	List(ctx context.Context, filter Filter) ([]Product, int, error)

	// UpdateCost records the latest purchase cost.
	UpdateCost(ctx context.Context, productID id.ID, cost string) error
}
