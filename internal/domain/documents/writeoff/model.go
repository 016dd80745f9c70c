// Package writeoff provides the WriteOff document: removing damaged or
// lost goods from stock with a recorded reason.
package writeoff

import (
	"context"

	"woodline/internal/core/apperror"
	"woodline/internal/core/entity"
	"woodline/internal/core/id"
	"woodline/internal/core/types"
)

// WriteOff represents one stock write-off.
type WriteOff struct {
	entity.Document

	WarehouseID id.ID  `db:"warehouse_id" json:"warehouseId"`
	Reason      string `db:"reason" json:"reason"`

	Items []Item `db:"-" json:"items,omitempty"`
}

// Item is one write-off line.
type Item struct {
	LineID     id.ID `db:"line_id" json:"lineId"`
	WriteOffID id.ID `db:"writeoff_id" json:"writeoffId"`

	ProductID id.ID          `db:"product_id" json:"productId"`
	Quantity  types.Quantity `db:"quantity" json:"quantity"`
}

// New creates a write-off document.
func New(warehouseID id.ID, reason string) *WriteOff {
	return &WriteOff{
		Document:    entity.NewDocument(),
		WarehouseID: warehouseID,
		Reason:      reason,
	}
}

// Validate implements entity.Validatable.
func (w *WriteOff) Validate(ctx context.Context) error {
	if err := w.Document.Validate(ctx); err != nil {
		return err
	}
	if id.IsNil(w.WarehouseID) {
		return apperror.NewValidation("warehouse is required").WithDetail("field", "warehouseId")
	}
	if w.Reason == "" {
		return apperror.NewValidation("reason is required").WithDetail("field", "reason")
	}
	if len(w.Items) == 0 {
		return apperror.NewValidation("write-off must have at least one item")
	}
	for _, item := range w.Items {
		if !item.Quantity.IsPositive() {
			return apperror.NewValidation("item quantity must be positive")
		}
	}
	return nil
}
