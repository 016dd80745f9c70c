package writeoff

import (
	"context"
	"fmt"

	"woodline/internal/core/apperror"
	"woodline/internal/core/id"
	"woodline/internal/core/numerator"
	"woodline/internal/core/tx"
	"woodline/internal/core/types"
	"woodline/internal/domain/stock"
	"woodline/pkg/logger"
)

// Repository defines WriteOff persistence.
type Repository interface {
	Create(ctx context.Context, w *WriteOff) error
	GetByID(ctx context.Context, writeoffID id.ID) (*WriteOff, error)
	List(ctx context.Context, limit, offset int) ([]WriteOff, int, error)
}

// ItemInput is one requested write-off line.
type ItemInput struct {
	ProductID id.ID          `json:"productId"`
	Quantity  types.Quantity `json:"quantity"`
}

// CreateInput is a write-off posting request.
type CreateInput struct {
	WarehouseID id.ID       `json:"warehouseId"`
	Reason      string      `json:"reason"`
	Comment     string      `json:"comment,omitempty"`
	Items       []ItemInput `json:"items"`
}

// Service posts write-off documents.
type Service struct {
	repo      Repository
	stockSvc  *stock.Service
	numerator numerator.Generator
	txManager tx.Manager
}

// NewService creates a new write-off service.
func NewService(repo Repository, stockSvc *stock.Service, numerator numerator.Generator, txManager tx.Manager) *Service {
	return &Service{repo: repo, stockSvc: stockSvc, numerator: numerator, txManager: txManager}
}

// Create posts a write-off. Lines that exceed the available balance
// fail the whole document.
func (s *Service) Create(ctx context.Context, actorID id.ID, input CreateInput) (*WriteOff, error) {
	doc := New(input.WarehouseID, input.Reason)
	doc.Comment = input.Comment
	doc.CreatedBy = actorID
	doc.UpdatedBy = actorID

	doc.Items = make([]Item, 0, len(input.Items))
	for _, in := range input.Items {
		doc.Items = append(doc.Items, Item{
			LineID:     id.New(),
			WriteOffID: doc.ID,
			ProductID:  in.ProductID,
			Quantity:   in.Quantity,
		})
	}

	if err := doc.Validate(ctx); err != nil {
		return nil, err
	}

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		number, err := s.numerator.GetNextNumber(ctx, numerator.DefaultConfig("WO"), doc.Date)
		if err != nil {
			return fmt.Errorf("generate number: %w", err)
		}
		doc.Number = number

		if err := s.repo.Create(ctx, doc); err != nil {
			return fmt.Errorf("create write-off: %w", err)
		}

		for _, item := range doc.Items {
			if _, err := s.stockSvc.Issue(ctx, doc.ID, "WriteOff", doc.Date, doc.WarehouseID, item.ProductID, item.Quantity); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "write-off posted",
		"writeoff_id", doc.ID,
		"number", doc.Number,
		"reason", doc.Reason)

	return doc, nil
}

// GetByID retrieves a write-off with items.
func (s *Service) GetByID(ctx context.Context, writeoffID id.ID) (*WriteOff, error) {
	doc, err := s.repo.GetByID(ctx, writeoffID)
	if err != nil {
		return nil, apperror.NewNotFound("write-off", writeoffID.String())
	}
	return doc, nil
}

// List lists write-offs.
func (s *Service) List(ctx context.Context, limit, offset int) ([]WriteOff, int, error) {
	return s.repo.List(ctx, limit, offset)
}
