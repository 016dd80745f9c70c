// Package product provides the Product catalog.
// Products are furniture and materials sold from the floor; pricing is
// dual-currency with a som floor below which only the owner may sell.
package product

import (
	"context"

	"woodline/internal/core/apperror"
	"woodline/internal/core/entity"
	"woodline/internal/core/types"
)

// Product represents a sellable good.
type Product struct {
	entity.Catalog

	Category string `db:"category" json:"category,omitempty"`
	Barcode  string `db:"barcode" json:"barcode,omitempty"`
	Unit     string `db:"unit" json:"unit"`

	// PriceUZS is the regular retail price in som.
	PriceUZS types.Money `db:"price_uzs" json:"priceUzs"`

	// PriceUSD is the display price in dollars. Zero means "derive from
	// the rate at sale time".
	PriceUSD types.Money `db:"price_usd" json:"priceUsd"`

	// MinPriceUZS is the discount floor. Sales below it are an owner-only
	// privilege.
	MinPriceUZS types.Money `db:"min_price_uzs" json:"minPriceUzs"`

	// CostUZS is the last purchase cost, updated on intake.
	CostUZS types.Money `db:"cost_uzs" json:"costUzs"`

	// LowStockThreshold triggers a restock notification when a balance
	// drops to or below it. Zero disables the alert.
	LowStockThreshold types.Quantity `db:"low_stock_threshold" json:"lowStockThreshold"`

	IsActive bool `db:"is_active" json:"isActive"`
}

// New creates a new Product.
func New(code, name string) *Product {
	return &Product{
		Catalog:  entity.NewCatalog(code, name),
		Unit:     "pcs",
		IsActive: true,
	}
}

// Validate implements entity.Validatable.
func (p *Product) Validate(ctx context.Context) error {
	if err := p.Catalog.Validate(ctx); err != nil {
		return err
	}
	if p.PriceUZS.IsNegative() {
		return apperror.NewValidation("price cannot be negative").
			WithDetail("field", "priceUzs")
	}
	if p.MinPriceUZS.IsNegative() {
		return apperror.NewValidation("minimum price cannot be negative").
			WithDetail("field", "minPriceUzs")
	}
	if p.MinPriceUZS.GreaterThan(p.PriceUZS) && !p.PriceUZS.IsZero() {
		return apperror.NewValidation("minimum price cannot exceed the retail price").
			WithDetail("field", "minPriceUzs")
	}
	if p.LowStockThreshold.IsNegative() {
		return apperror.NewValidation("low stock threshold cannot be negative").
			WithDetail("field", "lowStockThreshold")
	}
	return nil
}

// BelowFloor reports whether a unit price undercuts the floor.
// A zero floor never blocks.
func (p *Product) BelowFloor(unitPrice types.Money) bool {
	if p.MinPriceUZS.IsZero() {
		return false
	}
	return unitPrice.LessThan(p.MinPriceUZS)
}
