package inventory

import (
	"context"
	"fmt"

	"woodline/internal/core/apperror"
	"woodline/internal/core/id"
	"woodline/internal/core/numerator"
	"woodline/internal/core/tx"
	"woodline/internal/core/types"
	"woodline/internal/domain/events"
	"woodline/internal/domain/stock"
	"woodline/pkg/logger"
)

// Repository defines InventoryCheck persistence.
type Repository interface {
	Create(ctx context.Context, c *Check) error
	Update(ctx context.Context, c *Check) error
	GetByID(ctx context.Context, checkID id.ID) (*Check, error)

	// GetByIDForUpdate locks the check header against a concurrent apply.
	GetByIDForUpdate(ctx context.Context, checkID id.ID) (*Check, error)

	List(ctx context.Context, limit, offset int) ([]Check, int, error)
}

// ItemInput is one counted line.
type ItemInput struct {
	ProductID  id.ID          `json:"productId"`
	CountedQty types.Quantity `json:"countedQty"`
}

// CreateInput is a draft check request.
type CreateInput struct {
	WarehouseID id.ID       `json:"warehouseId"`
	Comment     string      `json:"comment,omitempty"`
	Items       []ItemInput `json:"items"`
}

// Service manages inventory checks.
type Service struct {
	repo      Repository
	stockSvc  *stock.Service
	numerator numerator.Generator
	txManager tx.Manager
	outbox    events.Outbox
}

// NewService creates a new inventory service.
func NewService(repo Repository, stockSvc *stock.Service, numerator numerator.Generator, txManager tx.Manager, outbox events.Outbox) *Service {
	return &Service{repo: repo, stockSvc: stockSvc, numerator: numerator, txManager: txManager, outbox: outbox}
}

// Create saves a draft check. Expected quantities are snapshotted from
// the live balances at counting time; balances are untouched until apply.
func (s *Service) Create(ctx context.Context, actorID id.ID, input CreateInput) (*Check, error) {
	doc := New(input.WarehouseID)
	doc.Comment = input.Comment
	doc.CreatedBy = actorID
	doc.UpdatedBy = actorID

	doc.Items = make([]Item, 0, len(input.Items))
	for _, in := range input.Items {
		doc.Items = append(doc.Items, Item{
			LineID:     id.New(),
			CheckID:    doc.ID,
			ProductID:  in.ProductID,
			CountedQty: in.CountedQty,
		})
	}

	if err := doc.Validate(ctx); err != nil {
		return nil, err
	}

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		number, err := s.numerator.GetNextNumber(ctx, numerator.DefaultConfig("I"), doc.Date)
		if err != nil {
			return fmt.Errorf("generate number: %w", err)
		}
		doc.Number = number

		for i := range doc.Items {
			item := &doc.Items[i]
			balance, err := s.stockSvc.GetBalance(ctx, doc.WarehouseID, item.ProductID)
			if err != nil {
				return fmt.Errorf("read balance: %w", err)
			}
			item.ExpectedQty = balance.Quantity
			item.DeltaQty = item.CountedQty - item.ExpectedQty
		}

		if err := s.repo.Create(ctx, doc); err != nil {
			return fmt.Errorf("create check: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "inventory check drafted",
		"check_id", doc.ID,
		"number", doc.Number,
		"lines", len(doc.Items))

	return doc, nil
}

// Apply adjusts balances to the counted quantities. The header lock plus
// the completed-status guard make a double apply impossible: the second
// caller finds the check completed and gets a clean error, not doubled
// adjustments.
func (s *Service) Apply(ctx context.Context, actorID id.ID, checkID id.ID) (*Check, error) {
	var check *Check
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		c, err := s.repo.GetByIDForUpdate(ctx, checkID)
		if err != nil {
			return apperror.NewNotFound("inventory check", checkID.String())
		}
		if err := c.MarkApplied(actorID); err != nil {
			return err
		}

		// Expected and delta stay as snapshotted at counting time; only
		// the live balances move here.
		adjustments := 0
		for i := range c.Items {
			item := &c.Items[i]
			delta, err := s.stockSvc.SetCount(ctx, c.ID, c.Date, c.WarehouseID, item.ProductID, item.CountedQty)
			if err != nil {
				return err
			}
			if !delta.IsZero() {
				adjustments++
			}
		}

		if err := s.repo.Update(ctx, c); err != nil {
			return fmt.Errorf("update check: %w", err)
		}

		err = s.outbox.Enqueue(ctx, events.New(events.TypeInventoryApplied, events.RoomStock, events.InventoryAppliedPayload{
			CheckID:     c.ID,
			WarehouseID: c.WarehouseID,
			Adjustments: adjustments,
			AppliedBy:   actorID,
		}))
		if err != nil {
			return fmt.Errorf("enqueue event: %w", err)
		}

		check = c
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "inventory check applied",
		"check_id", checkID,
		"number", check.Number)

	return check, nil
}

// GetByID retrieves a check with items.
func (s *Service) GetByID(ctx context.Context, checkID id.ID) (*Check, error) {
	c, err := s.repo.GetByID(ctx, checkID)
	if err != nil {
		return nil, apperror.NewNotFound("inventory check", checkID.String())
	}
	return c, nil
}

// List lists checks.
func (s *Service) List(ctx context.Context, limit, offset int) ([]Check, int, error) {
	return s.repo.List(ctx, limit, offset)
}
