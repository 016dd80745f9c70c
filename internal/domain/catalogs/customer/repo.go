package customer

import (
	"context"

	"woodline/internal/core/id"
)

// Filter for listing customers.
type Filter struct {
	Search string
	Limit  int
	Offset int
}

// Repository defines the interface for Customer persistence.
type Repository interface {
	Create(ctx context.Context, c *Customer) error
	Update(ctx context.Context, c *Customer) error
	GetByID(ctx context.Context, customerID id.ID) (*Customer, error)
	GetByPhone(ctx context.Context, phone string) (*Customer, error)
	List(ctx context.Context, filter Filter) ([]Customer, int, error)
}
