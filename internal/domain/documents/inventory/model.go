// Package inventory provides the InventoryCheck document: a physical
// recount of one warehouse. Checks are two-phase: counting builds a
// draft, applying adjusts balances. A check applies exactly once.
package inventory

import (
	"context"
	"time"

	"woodline/internal/core/apperror"
	"woodline/internal/core/entity"
	"woodline/internal/core/id"
	"woodline/internal/core/types"
)

// Status is the check lifecycle state.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusCompleted Status = "completed"
)

// Check represents one inventory count.
type Check struct {
	entity.Document

	WarehouseID id.ID  `db:"warehouse_id" json:"warehouseId"`
	Status      Status `db:"status" json:"status"`

	AppliedBy *id.ID     `db:"applied_by" json:"appliedBy,omitempty"`
	AppliedAt *time.Time `db:"applied_at" json:"appliedAt,omitempty"`

	Items []Item `db:"-" json:"items,omitempty"`
}

// Item is one counted line. Expected and Delta are snapshotted from the
// live balance when the draft is created and never rewritten.
type Item struct {
	LineID  id.ID `db:"line_id" json:"lineId"`
	CheckID id.ID `db:"check_id" json:"checkId"`

	ProductID  id.ID          `db:"product_id" json:"productId"`
	CountedQty types.Quantity `db:"counted_qty" json:"countedQty"`

	ExpectedQty types.Quantity `db:"expected_qty" json:"expectedQty"`
	DeltaQty    types.Quantity `db:"delta_qty" json:"deltaQty"`
}

// New creates a draft check.
func New(warehouseID id.ID) *Check {
	return &Check{
		Document:    entity.NewDocument(),
		WarehouseID: warehouseID,
		Status:      StatusDraft,
	}
}

// Validate implements entity.Validatable.
func (c *Check) Validate(ctx context.Context) error {
	if err := c.Document.Validate(ctx); err != nil {
		return err
	}
	if id.IsNil(c.WarehouseID) {
		return apperror.NewValidation("warehouse is required").WithDetail("field", "warehouseId")
	}
	if len(c.Items) == 0 {
		return apperror.NewValidation("check must have at least one counted line")
	}
	seen := map[id.ID]bool{}
	for _, item := range c.Items {
		if item.CountedQty.IsNegative() {
			return apperror.NewValidation("counted quantity cannot be negative")
		}
		if seen[item.ProductID] {
			return apperror.NewValidation("product counted twice").
				WithDetail("product_id", item.ProductID.String())
		}
		seen[item.ProductID] = true
	}
	return nil
}

// MarkApplied moves the check to completed.
func (c *Check) MarkApplied(by id.ID) error {
	if c.Status == StatusCompleted {
		return apperror.NewCheckCompleted(c.ID.String())
	}
	now := time.Now()
	c.Status = StatusCompleted
	c.AppliedBy = &by
	c.AppliedAt = &now
	c.Touch()
	return nil
}
