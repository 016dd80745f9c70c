package transfer

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

// Repository defines Transfer persistence.
type Repository interface {
	Create(ctx context.Context, t *Transfer) error
	GetByID(ctx context.Context, transferID id.ID) (*Transfer, error)
	List(ctx context.Context, limit, offset int) ([]Transfer, int, error)
}

// ItemInput is one requested transfer line.
type ItemInput struct {
	ProductID id.ID          `json:"productId"`
	Quantity  types.Quantity `json:"quantity"`
}

// CreateInput is a transfer posting request.
type CreateInput struct {
	FromWarehouseID id.ID       `json:"fromWarehouseId"`
	ToWarehouseID   id.ID       `json:"toWarehouseId"`
	Comment         string      `json:"comment,omitempty"`
	Items           []ItemInput `json:"items"`
}

// Service posts transfer documents.
type Service struct {
	repo      Repository
	stockSvc  *stock.Service
	numerator numerator.Generator
	txManager tx.Manager
	outbox    events.Outbox
}

// NewService creates a new transfer service.
func NewService(repo Repository, stockSvc *stock.Service, numerator numerator.Generator, txManager tx.Manager, outbox events.Outbox) *Service {
	return &Service{repo: repo, stockSvc: stockSvc, numerator: numerator, txManager: txManager, outbox: outbox}
}

// Create posts a transfer. Every line issues from the source and lands
// in the destination inside one transaction; a single short line rolls
// back the entire document, leaving both warehouses as they were.
func (s *Service) Create(ctx context.Context, actorID id.ID, input CreateInput) (*Transfer, error) {
	doc := New(input.FromWarehouseID, input.ToWarehouseID)
	doc.Comment = input.Comment
	doc.CreatedBy = actorID
	doc.UpdatedBy = actorID

	doc.Items = make([]Item, 0, len(input.Items))
	for _, in := range input.Items {
		doc.Items = append(doc.Items, Item{
			LineID:     id.New(),
			TransferID: doc.ID,
			ProductID:  in.ProductID,
			Quantity:   in.Quantity,
		})
	}

	if err := doc.Validate(ctx); err != nil {
		return nil, err
	}

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		number, err := s.numerator.GetNextNumber(ctx, numerator.DefaultConfig("T"), doc.Date)
		if err != nil {
			return fmt.Errorf("generate number: %w", err)
		}
		doc.Number = number

		if err := s.repo.Create(ctx, doc); err != nil {
			return fmt.Errorf("create transfer: %w", err)
		}

		for _, item := range doc.Items {
			err := s.stockSvc.Transfer(ctx, doc.ID, doc.Date, doc.FromWarehouseID, doc.ToWarehouseID, item.ProductID, item.Quantity)
			if err != nil {
				return err
			}
		}

		err = s.outbox.Enqueue(ctx, events.New(events.TypeStockTransferred, events.RoomStock, events.StockTransferredPayload{
			TransferID:  doc.ID,
			Number:      doc.Number,
			FromID:      doc.FromWarehouseID,
			ToID:        doc.ToWarehouseID,
			LineCount:   len(doc.Items),
			PerformedBy: actorID,
		}))
		if err != nil {
			return fmt.Errorf("enqueue event: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "transfer posted",
		"transfer_id", doc.ID,
		"number", doc.Number,
		"from", doc.FromWarehouseID,
		"to", doc.ToWarehouseID)

	return doc, nil
}

// GetByID retrieves a transfer with items.
func (s *Service) GetByID(ctx context.Context, transferID id.ID) (*Transfer, error) {
	doc, err := s.repo.GetByID(ctx, transferID)
	if err != nil {
		return nil, apperror.NewNotFound("transfer", transferID.String())
	}
	return doc, nil
}

// List lists transfers.
func (s *Service) List(ctx context.Context, limit, offset int) ([]Transfer, int, error) {
	return s.repo.List(ctx, limit, offset)
}
