package purchase

import (
	"context"
	"fmt"

	"woodline/internal/core/apperror"
	"woodline/internal/core/id"
	"woodline/internal/core/numerator"
	"woodline/internal/core/tx"
	"woodline/internal/core/types"
	"woodline/internal/domain/expense"
	"woodline/internal/domain/ledger"
	"woodline/internal/domain/stock"
	"woodline/pkg/logger"
)

// Repository defines Purchase persistence.
type Repository interface {
	Create(ctx context.Context, p *Purchase) error
	GetByID(ctx context.Context, purchaseID id.ID) (*Purchase, error)
	List(ctx context.Context, limit, offset int) ([]Purchase, int, error)
}

// CostUpdater refreshes product costs on intake.
// Satisfied by the product repository.
type CostUpdater interface {
	UpdateCost(ctx context.Context, productID id.ID, cost string) error
}

// ItemInput is one requested delivery line.
type ItemInput struct {
	ProductID   id.ID          `json:"productId"`
	Quantity    types.Quantity `json:"quantity"`
	UnitCostUZS types.Money    `json:"unitCostUzs"`
}

// CreateInput is a purchase posting request.
type CreateInput struct {
	SupplierID  id.ID       `json:"supplierId"`
	WarehouseID id.ID       `json:"warehouseId"`
	Comment     string      `json:"comment,omitempty"`
	Items       []ItemInput `json:"items"`
}

// Service posts purchase documents.
type Service struct {
	repo        Repository
	costUpdater CostUpdater
	stockSvc    *stock.Service
	expenseSvc  *expense.Service
	numerator   numerator.Generator
	txManager   tx.Manager
}

// NewService creates a new purchase service.
func NewService(
	repo Repository,
	costUpdater CostUpdater,
	stockSvc *stock.Service,
	expenseSvc *expense.Service,
	numerator numerator.Generator,
	txManager tx.Manager,
) *Service {
	return &Service{
		repo:        repo,
		costUpdater: costUpdater,
		stockSvc:    stockSvc,
		expenseSvc:  expenseSvc,
		numerator:   numerator,
		txManager:   txManager,
	}
}

// Create posts a purchase: stock intake, cost refresh, and the expense
// entry with its till withdrawal all commit or roll back together.
func (s *Service) Create(ctx context.Context, actor ledger.Actor, input CreateInput) (*Purchase, error) {
	doc := New(input.SupplierID, input.WarehouseID)
	doc.Comment = input.Comment
	doc.CreatedBy = actor.UserID
	doc.UpdatedBy = actor.UserID

	doc.Items = make([]Item, 0, len(input.Items))
	for _, in := range input.Items {
		doc.Items = append(doc.Items, Item{
			LineID:      id.New(),
			PurchaseID:  doc.ID,
			ProductID:   in.ProductID,
			Quantity:    in.Quantity,
			UnitCostUZS: in.UnitCostUZS,
		})
	}
	doc.RecalculateTotal()

	if err := doc.Validate(ctx); err != nil {
		return nil, err
	}

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		number, err := s.numerator.GetNextNumber(ctx, numerator.DefaultConfig("P"), doc.Date)
		if err != nil {
			return fmt.Errorf("generate number: %w", err)
		}
		doc.Number = number

		if err := s.repo.Create(ctx, doc); err != nil {
			return fmt.Errorf("create purchase: %w", err)
		}

		for _, item := range doc.Items {
			if _, err := s.stockSvc.Receive(ctx, doc.ID, "Purchase", doc.Date, doc.WarehouseID, item.ProductID, item.Quantity); err != nil {
				return err
			}
			if err := s.costUpdater.UpdateCost(ctx, item.ProductID, item.UnitCostUZS.String()); err != nil {
				return fmt.Errorf("update cost: %w", err)
			}
		}

		comment := fmt.Sprintf("stock intake %s", doc.Number)
		if _, err := s.expenseSvc.RecordIntakeExpense(ctx, actor, doc.ID, doc.TotalUZS, types.ZeroMoney(), comment); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "purchase posted",
		"purchase_id", doc.ID,
		"number", doc.Number,
		"total_uzs", doc.TotalUZS)

	return doc, nil
}

// GetByID retrieves a purchase with items.
func (s *Service) GetByID(ctx context.Context, purchaseID id.ID) (*Purchase, error) {
	doc, err := s.repo.GetByID(ctx, purchaseID)
	if err != nil {
		return nil, apperror.NewNotFound("purchase", purchaseID.String())
	}
	return doc, nil
}

// List lists purchases.
func (s *Service) List(ctx context.Context, limit, offset int) ([]Purchase, int, error) {
	return s.repo.List(ctx, limit, offset)
}
