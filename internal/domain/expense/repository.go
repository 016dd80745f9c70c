package expense

import (
	"context"
	"time"

	"woodline/internal/core/id"
)

// EntryFilter for listing expenses.
type EntryFilter struct {
	CategoryID *id.ID
	FromDate   *time.Time
	ToDate     *time.Time
	Limit      int
	Offset     int
}

// Repository defines expense persistence.
type Repository interface {
	CreateCategory(ctx context.Context, c *Category) error
	GetCategory(ctx context.Context, categoryID id.ID) (*Category, error)
	GetCategoryByName(ctx context.Context, name string) (*Category, error)
	ListCategories(ctx context.Context) ([]Category, error)
	DeleteCategory(ctx context.Context, categoryID id.ID) error

	CreateEntry(ctx context.Context, e *Entry) error
	ListEntries(ctx context.Context, filter EntryFilter) ([]Entry, int, error)
}
