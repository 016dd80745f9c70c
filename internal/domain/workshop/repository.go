package workshop

import (
	"context"

	"woodline/internal/core/id"
)

// Filter for listing tasks.
type Filter struct {
	Status     *Status
	AssigneeID *id.ID
	SaleID     *id.ID
	Limit      int
	Offset     int
}

// Repository defines task persistence.
type Repository interface {
	Create(ctx context.Context, t *Task) error
	Update(ctx context.Context, t *Task) error
	GetByID(ctx context.Context, taskID id.ID) (*Task, error)

	// GetByIDForUpdate locks the task row for a status transition.
	GetByIDForUpdate(ctx context.Context, taskID id.ID) (*Task, error)

	GetBySale(ctx context.Context, saleID id.ID) ([]Task, error)
	List(ctx context.Context, filter Filter) ([]Task, int, error)
}

// SaleFlagger marks the owning sale when its workshop work is done.
// Implemented by the sales document repository; declared here to keep
// the dependency pointing one way.
type SaleFlagger interface {
	MarkWorkshopDone(ctx context.Context, saleID id.ID) error
}
