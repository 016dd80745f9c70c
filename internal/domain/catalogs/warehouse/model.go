// Package warehouse provides the Warehouse catalog.
// Warehouses are physical stock locations: the store floor and the depots.
package warehouse

import (
	"context"

	"woodline/internal/core/apperror"
	"woodline/internal/core/entity"
)

// Type defines the warehouse category.
type Type string

const (
	TypeStore    Type = "store"    // retail floor, sales issue from here
	TypeDepot    Type = "depot"    // backroom or offsite storage
	TypeWorkshop Type = "workshop" // repair shop materials
)

// Warehouse represents a storage location for goods.
type Warehouse struct {
	entity.Catalog

	Type Type `db:"type" json:"type"`

	Address string `db:"address" json:"address,omitempty"`

	IsActive bool `db:"is_active" json:"isActive"`

	// IsDefault marks the warehouse sales issue from when none is given.
	IsDefault bool `db:"is_default" json:"isDefault"`
}

// New creates a new Warehouse.
func New(code, name string, whType Type) *Warehouse {
	return &Warehouse{
		Catalog:  entity.NewCatalog(code, name),
		Type:     whType,
		IsActive: true,
	}
}

// Validate implements entity.Validatable.
func (w *Warehouse) Validate(ctx context.Context) error {
	if err := w.Catalog.Validate(ctx); err != nil {
		return err
	}
	switch w.Type {
	case TypeStore, TypeDepot, TypeWorkshop:
	default:
		return apperror.NewValidation("invalid warehouse type").
			WithDetail("field", "type").
			WithDetail("value", string(w.Type))
	}
	return nil
}

// CanMoveStock reports whether the warehouse participates in movements.
func (w *Warehouse) CanMoveStock() bool {
	return w.IsActive
}
