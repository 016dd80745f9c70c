// Package sales provides the Sale document: the central POS workflow.
//
// A sale opens with its lines priced in both currencies at the rate of
// the day, collects payments through the ledger, and ships stock only
// when completed. Completion and cancellation are terminal.
package sales

import (
	"context"
	"time"

	"woodline/internal/core/apperror"
	"woodline/internal/core/entity"
	"woodline/internal/core/id"
	"woodline/internal/core/types"
)

// Status is the sale lifecycle state.
type Status string

const (
	StatusOpen      Status = "open"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// ItemKind distinguishes goods from workshop services.
type ItemKind string

const (
	KindProduct ItemKind = "product"
	KindService ItemKind = "service"
)

// Sale represents one customer sale.
type Sale struct {
	entity.Document

	// CustomerID is optional: walk-in sales carry no customer.
	CustomerID  id.ID `db:"customer_id" json:"customerId"`
	WarehouseID id.ID `db:"warehouse_id" json:"warehouseId"`

	Status Status `db:"status" json:"status"`

	// RateUZS is the exchange rate the sale was priced with, frozen at
	// creation time.
	RateUZS types.Money `db:"rate_uzs" json:"rateUzs"`

	TotalUZS types.Money `db:"total_uzs" json:"totalUzs"`
	TotalUSD types.Money `db:"total_usd" json:"totalUsd"`

	// HasWorkshop is set when any line spawned a workshop task.
	HasWorkshop bool `db:"has_workshop" json:"hasWorkshop"`

	// WorkshopDone flips when the last workshop task on the sale closes.
	WorkshopDone bool `db:"workshop_done" json:"workshopDone"`

	CompletedAt *time.Time `db:"completed_at" json:"completedAt,omitempty"`
	CancelledAt *time.Time `db:"cancelled_at" json:"cancelledAt,omitempty"`

	Items []SaleItem `db:"-" json:"items,omitempty"`
}

// SaleItem is one sale line. Name and prices are snapshots: later
// catalog edits never rewrite a sold line.
type SaleItem struct {
	LineID id.ID `db:"line_id" json:"lineId"`
	SaleID id.ID `db:"sale_id" json:"saleId"`

	Kind ItemKind `db:"kind" json:"kind"`

	// ProductID is set on product lines. Service lines carry either a
	// catalog ServiceTypeID or just a free-text Name.
	ProductID     *id.ID `db:"product_id" json:"productId,omitempty"`
	ServiceTypeID *id.ID `db:"service_type_id" json:"serviceTypeId,omitempty"`
	Name          string `db:"name" json:"name"`

	// TechnicianID is the master assigned to a service line up front.
	// A service line without one routes the sale to the workshop.
	TechnicianID *id.ID `db:"technician_id" json:"technicianId,omitempty"`

	Quantity types.Quantity `db:"quantity" json:"quantity"`

	UnitPriceUZS types.Money `db:"unit_price_uzs" json:"unitPriceUzs"`
	UnitPriceUSD types.Money `db:"unit_price_usd" json:"unitPriceUsd"`
	TotalUZS     types.Money `db:"total_uzs" json:"totalUzs"`
	TotalUSD     types.Money `db:"total_usd" json:"totalUsd"`

	// SpawnsWorkshop is set on service lines that need workshop routing.
	SpawnsWorkshop bool `db:"spawns_workshop" json:"spawnsWorkshop"`
}

// NewSale creates an open sale.
func NewSale(customerID, warehouseID id.ID, rateUZS types.Money) *Sale {
	return &Sale{
		Document:    entity.NewDocument(),
		CustomerID:  customerID,
		WarehouseID: warehouseID,
		Status:      StatusOpen,
		RateUZS:     rateUZS,
		TotalUZS:    types.ZeroMoney(),
		TotalUSD:    types.ZeroMoney(),
	}
}

// Validate implements entity.Validatable.
func (s *Sale) Validate(ctx context.Context) error {
	if err := s.Document.Validate(ctx); err != nil {
		return err
	}
	if len(s.Items) == 0 {
		return apperror.NewValidation("sale must have at least one item")
	}
	hasProducts := false
	for _, item := range s.Items {
		if item.Kind == KindProduct {
			hasProducts = true
		}
		if !item.Quantity.IsPositive() {
			return apperror.NewValidation("item quantity must be positive").
				WithDetail("line", item.Name)
		}
		if item.UnitPriceUZS.IsNegative() {
			return apperror.NewValidation("item price cannot be negative").
				WithDetail("line", item.Name)
		}
	}
	if hasProducts && id.IsNil(s.WarehouseID) {
		return apperror.NewValidation("warehouse is required for product sales").
			WithDetail("field", "warehouseId")
	}
	return nil
}

// RecalculateTotals sums line totals into the sale header.
func (s *Sale) RecalculateTotals() {
	total := types.ZeroMoney()
	totalUSD := types.ZeroMoney()
	for _, item := range s.Items {
		total = total.Add(item.TotalUZS)
		totalUSD = totalUSD.Add(item.TotalUSD)
	}
	s.TotalUZS = total
	s.TotalUSD = totalUSD
}

// EnsureOpen guards terminal transitions.
func (s *Sale) EnsureOpen() error {
	if s.Status != StatusOpen {
		return apperror.NewSaleFinalized(s.ID.String(), string(s.Status))
	}
	return nil
}

// MarkCompleted moves the sale to completed.
func (s *Sale) MarkCompleted() error {
	if err := s.EnsureOpen(); err != nil {
		return err
	}
	now := time.Now()
	s.Status = StatusCompleted
	s.CompletedAt = &now
	s.Touch()
	return nil
}

// MarkCancelled moves the sale to cancelled.
func (s *Sale) MarkCancelled() error {
	if err := s.EnsureOpen(); err != nil {
		return err
	}
	now := time.Now()
	s.Status = StatusCancelled
	s.CancelledAt = &now
	s.Touch()
	return nil
}

// ProductLines returns the product items of the sale.
func (s *Sale) ProductLines() []SaleItem {
	var out []SaleItem
	for _, item := range s.Items {
		if item.Kind == KindProduct {
			out = append(out, item)
		}
	}
	return out
}
