// Package servicetype provides the catalog of workshop service offerings.
// Services are sold like products but consume no stock; ones flagged
// RequiresWorkshop spawn a workshop task when the sale is created.
package servicetype

import (
	"context"

	"woodline/internal/core/apperror"
	"woodline/internal/core/entity"
	"woodline/internal/core/types"
)

// ServiceType represents a billable service.
type ServiceType struct {
	entity.Catalog

	// BasePriceUZS is the default price; cashiers may adjust it per sale.
	BasePriceUZS types.Money `db:"base_price_uzs" json:"basePriceUzs"`

	// RequiresWorkshop spawns a workshop task on sale.
	RequiresWorkshop bool `db:"requires_workshop" json:"requiresWorkshop"`

	IsActive bool `db:"is_active" json:"isActive"`
}

// New creates a new ServiceType.
func New(name string, basePrice types.Money, requiresWorkshop bool) *ServiceType {
	return &ServiceType{
		Catalog:          entity.NewCatalog("", name),
		BasePriceUZS:     basePrice,
		RequiresWorkshop: requiresWorkshop,
		IsActive:         true,
	}
}

// Validate implements entity.Validatable.
func (s *ServiceType) Validate(ctx context.Context) error {
	if err := s.Catalog.Validate(ctx); err != nil {
		return err
	}
	if s.BasePriceUZS.IsNegative() {
		return apperror.NewValidation("base price cannot be negative").
			WithDetail("field", "basePriceUzs")
	}
	return nil
}
