package supplier

import (
	"context"

	"woodline/internal/core/id"
)

// Repository defines the interface for Supplier persistence.
type Repository interface {
	Create(ctx context.Context, s *Supplier) error
	Update(ctx context.Context, s *Supplier) error
	GetByID(ctx context.Context, supplierID id.ID) (*Supplier, error)
	List(ctx context.Context, search string, limit, offset int) ([]Supplier, int, error)
}
