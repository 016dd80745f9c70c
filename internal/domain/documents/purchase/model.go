// Package purchase provides the Purchase document: goods intake from a
// supplier. Posting a purchase receives stock, refreshes product costs,
// and books the spend as a stock intake expense in one transaction.
package purchase

import (
	"context"

	"woodline/internal/core/apperror"
	"woodline/internal/core/entity"
	"woodline/internal/core/id"
	"woodline/internal/core/types"
)

// Purchase represents one supplier delivery.
type Purchase struct {
	entity.Document

	SupplierID  id.ID `db:"supplier_id" json:"supplierId"`
	WarehouseID id.ID `db:"warehouse_id" json:"warehouseId"`

	TotalUZS types.Money `db:"total_uzs" json:"totalUzs"`

	Items []Item `db:"-" json:"items,omitempty"`
}

// Item is one delivery line.
type Item struct {
	LineID     id.ID `db:"line_id" json:"lineId"`
	PurchaseID id.ID `db:"purchase_id" json:"purchaseId"`

	ProductID   id.ID          `db:"product_id" json:"productId"`
	Quantity    types.Quantity `db:"quantity" json:"quantity"`
	UnitCostUZS types.Money    `db:"unit_cost_uzs" json:"unitCostUzs"`
	TotalUZS    types.Money    `db:"total_uzs" json:"totalUzs"`
}

// New creates a purchase document.
func New(supplierID, warehouseID id.ID) *Purchase {
	return &Purchase{
		Document:    entity.NewDocument(),
		SupplierID:  supplierID,
		WarehouseID: warehouseID,
		TotalUZS:    types.ZeroMoney(),
	}
}

// Validate implements entity.Validatable.
func (p *Purchase) Validate(ctx context.Context) error {
	if err := p.Document.Validate(ctx); err != nil {
		return err
	}
	if id.IsNil(p.SupplierID) {
		return apperror.NewValidation("supplier is required").WithDetail("field", "supplierId")
	}
	if id.IsNil(p.WarehouseID) {
		return apperror.NewValidation("warehouse is required").WithDetail("field", "warehouseId")
	}
	if len(p.Items) == 0 {
		return apperror.NewValidation("purchase must have at least one item")
	}
	for _, item := range p.Items {
		if !item.Quantity.IsPositive() {
			return apperror.NewValidation("item quantity must be positive")
		}
		if item.UnitCostUZS.IsNegative() {
			return apperror.NewValidation("item cost cannot be negative")
		}
	}
	return nil
}

// RecalculateTotal sums line totals.
func (p *Purchase) RecalculateTotal() {
	total := types.ZeroMoney()
	for i := range p.Items {
		p.Items[i].TotalUZS = p.Items[i].UnitCostUZS.Mul(p.Items[i].Quantity.Decimal())
		total = total.Add(p.Items[i].TotalUZS)
	}
	p.TotalUZS = total
}
