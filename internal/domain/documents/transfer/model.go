// Package transfer provides the Transfer document: moving goods between
// warehouses. A transfer that cannot be covered by the source warehouse
// fails whole; neither side changes.
package transfer

import (
	"context"

	"woodline/internal/core/apperror"
	"woodline/internal/core/entity"
	"woodline/internal/core/id"
	"woodline/internal/core/types"
)

// Transfer represents one warehouse-to-warehouse move.
type Transfer struct {
	entity.Document

	FromWarehouseID id.ID `db:"from_warehouse_id" json:"fromWarehouseId"`
	ToWarehouseID   id.ID `db:"to_warehouse_id" json:"toWarehouseId"`

	Items []Item `db:"-" json:"items,omitempty"`
}

// Item is one transfer line.
type Item struct {
	LineID     id.ID `db:"line_id" json:"lineId"`
	TransferID id.ID `db:"transfer_id" json:"transferId"`

	ProductID id.ID          `db:"product_id" json:"productId"`
	Quantity  types.Quantity `db:"quantity" json:"quantity"`
}

// New creates a transfer document.
func New(fromID, toID id.ID) *Transfer {
	return &Transfer{
		Document:        entity.NewDocument(),
		FromWarehouseID: fromID,
		ToWarehouseID:   toID,
	}
}

// Validate implements entity.Validatable.
func (t *Transfer) Validate(ctx context.Context) error {
	if err := t.Document.Validate(ctx); err != nil {
		return err
	}
	if id.IsNil(t.FromWarehouseID) || id.IsNil(t.ToWarehouseID) {
		return apperror.NewValidation("both warehouses are required")
	}
	if t.FromWarehouseID == t.ToWarehouseID {
		return apperror.NewValidation("source and destination warehouses must differ")
	}
	if len(t.Items) == 0 {
		return apperror.NewValidation("transfer must have at least one item")
	}
	for _, item := range t.Items {
		if !item.Quantity.IsPositive() {
			return apperror.NewValidation("item quantity must be positive")
		}
	}
	return nil
}
