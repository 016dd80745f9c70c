// Package supplier provides the Supplier catalog for stock intake.
package supplier

import (
	"context"

	"woodline/internal/core/entity"
)

// Supplier represents a goods supplier.
type Supplier struct {
	entity.Catalog

	Phone         string `db:"phone" json:"phone,omitempty"`
	ContactPerson string `db:"contact_person" json:"contactPerson,omitempty"`
	Notes         string `db:"notes" json:"notes,omitempty"`
}

// New creates a new Supplier.
func New(name string) *Supplier {
	return &Supplier{Catalog: entity.NewCatalog("", name)}
}

// Validate implements entity.Validatable.
func (s *Supplier) Validate(ctx context.Context) error {
	return s.Catalog.Validate(ctx)
}
