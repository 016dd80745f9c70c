package rates

import (
	"context"
	"time"
)

// Repository defines the interface for exchange rate persistence.
type Repository interface {
	// Insert appends a rate entry.
	Insert(ctx context.Context, r *Rate) error

	// GetForDate returns the newest rate effective on or before the date.
	GetForDate(ctx context.Context, date time.Time) (*Rate, error)

	// List returns rate history, newest first.
	List(ctx context.Context, limit int) ([]Rate, error)
}
