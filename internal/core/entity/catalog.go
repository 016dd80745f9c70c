package entity

import (
	"context"

	"woodline/internal/core/apperror"
)

// Catalog is the base type for reference data.
// Examples: Product, Customer, Warehouse, Supplier, ServiceType.
type Catalog struct {
	BaseEntity

	// Code is a short human-readable identifier (unique per catalog)
	Code string `db:"code" json:"code"`

	// Name is the display name
	Name string `db:"name" json:"name"`
}

// NewCatalog creates a new Catalog with a generated ID.
func NewCatalog(code, name string) Catalog {
	return Catalog{
		BaseEntity: NewBaseEntity(),
		Code:       code,
		Name:       name,
	}
}

// Validate implements the Validatable interface.
func (c *Catalog) Validate(ctx context.Context) error {
	if c.Name == "" {
		return apperror.NewValidation("name is required").
			WithDetail("field", "name")
	}
	// Code may be auto-generated at save time.
	return nil
}
