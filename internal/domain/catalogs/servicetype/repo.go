package servicetype

import (
	"context"

	"woodline/internal/core/id"
)

// Repository defines the interface for ServiceType persistence.
type Repository interface {
	Create(ctx context.Context, st *ServiceType) error
	Update(ctx context.Context, st *ServiceType) error
	GetByID(ctx context.Context, serviceTypeID id.ID) (*ServiceType, error)
	GetByIDs(ctx context.Context, ids []id.ID) (map[id.ID]*ServiceType, error)
	List(ctx context.Context, includeInactive bool) ([]ServiceType, error)
}
