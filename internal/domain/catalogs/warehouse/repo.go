package warehouse

import (
	"context"

	"woodline/internal/core/id"
)

// Repository defines the interface for Warehouse persistence.
type Repository interface {
	Create(ctx context.Context, wh *Warehouse) error
	Update(ctx context.Context, wh *Warehouse) error
	GetByID(ctx context.Context, whID id.ID) (*Warehouse, error)
	List(ctx context.Context, includeInactive bool) ([]Warehouse, error)
	GetDefault(ctx context.Context) (*Warehouse, error)

	// ClearDefault clears the default flag on all warehouses.
	ClearDefault(ctx context.Context) error
}
