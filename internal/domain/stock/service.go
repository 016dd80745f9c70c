package stock

import (
	"context"
	"fmt"
	"time"

	"woodline/internal/core/apperror"
	"woodline/internal/core/entity"
	"woodline/internal/core/id"
	"woodline/internal/core/types"
	"woodline/pkg/logger"
)

// Service provides business operations for the stock register.
// Transactions are owned by the calling document service; every write
// here joins the caller's transaction from context.
type Service struct {
	repo Repository
}

// NewService creates a new stock register service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Receive records an incoming movement and returns the new level.
func (s *Service) Receive(ctx context.Context, recorderID id.ID, recorderType string, period time.Time, warehouseID, productID id.ID, qty types.Quantity) (types.Quantity, error) {
	if !qty.IsPositive() {
		return 0, apperror.NewValidation("quantity must be positive")
	}

	m := entity.NewStockMovement(recorderID, recorderType, period, entity.RecordTypeReceipt, warehouseID, productID, qty)
	if err := s.repo.CreateMovements(ctx, []entity.StockMovement{m}); err != nil {
		return 0, fmt.Errorf("create movement: %w", err)
	}

	level, err := s.repo.IncrementBalance(ctx, warehouseID, productID, qty)
	if err != nil {
		return 0, fmt.Errorf("increment balance: %w", err)
	}
	return level, nil
}

// Issue records an outgoing movement and returns the new level.
// The decrement and the availability check are one atomic statement, so
// two concurrent issues of the last unit cannot both succeed.
func (s *Service) Issue(ctx context.Context, recorderID id.ID, recorderType string, period time.Time, warehouseID, productID id.ID, qty types.Quantity) (types.Quantity, error) {
	if !qty.IsPositive() {
		return 0, apperror.NewValidation("quantity must be positive")
	}

	level, err := s.repo.DecrementIfAvailable(ctx, warehouseID, productID, qty)
	if err != nil {
		return 0, err
	}

	m := entity.NewStockMovement(recorderID, recorderType, period, entity.RecordTypeExpense, warehouseID, productID, qty)
	if err := s.repo.CreateMovements(ctx, []entity.StockMovement{m}); err != nil {
		return 0, fmt.Errorf("create movement: %w", err)
	}
	return level, nil
}

// ReturnToStock puts previously issued goods back on the shelf. Returns
// carry no upper bound check, only the positive-quantity rule.
func (s *Service) ReturnToStock(ctx context.Context, recorderID id.ID, period time.Time, warehouseID, productID id.ID, qty types.Quantity) (types.Quantity, error) {
	level, err := s.Receive(ctx, recorderID, "Return", period, warehouseID, productID, qty)
	if err != nil {
		return 0, err
	}

	logger.Info(ctx, "stock return",
		"warehouse_id", warehouseID,
		"product_id", productID,
		"quantity", qty,
		"level", level)

	return level, nil
}

// Transfer moves quantity between warehouses. The issue side guards
// availability; both sides land in the caller's transaction, so a failed
// issue leaves both warehouses untouched.
func (s *Service) Transfer(ctx context.Context, recorderID id.ID, period time.Time, fromID, toID, productID id.ID, qty types.Quantity) error {
	if fromID == toID {
		return apperror.NewValidation("source and destination warehouses must differ")
	}

	if _, err := s.Issue(ctx, recorderID, "Transfer", period, fromID, productID, qty); err != nil {
		return err
	}
	if _, err := s.Receive(ctx, recorderID, "Transfer", period, toID, productID, qty); err != nil {
		return err
	}
	return nil
}

// SetCount adjusts a balance to a counted quantity and returns the
// signed difference. The row lock holds the balance still between the
// read and the adjustment.
func (s *Service) SetCount(ctx context.Context, recorderID id.ID, period time.Time, warehouseID, productID id.ID, counted types.Quantity) (types.Quantity, error) {
	if counted.IsNegative() {
		return 0, apperror.NewValidation("counted quantity cannot be negative")
	}

	balance, err := s.repo.GetBalanceForUpdate(ctx, warehouseID, productID)
	if err != nil {
		return 0, fmt.Errorf("lock balance: %w", err)
	}

	delta := counted - balance.Quantity
	if delta.IsZero() {
		return 0, nil
	}

	recordType := entity.RecordTypeReceipt
	if delta.IsNegative() {
		recordType = entity.RecordTypeExpense
	}
	m := entity.NewStockMovement(recorderID, "InventoryCheck", period, recordType, warehouseID, productID, delta.Abs())
	if err := s.repo.CreateMovements(ctx, []entity.StockMovement{m}); err != nil {
		return 0, fmt.Errorf("create movement: %w", err)
	}

	if err := s.repo.SetBalance(ctx, warehouseID, productID, counted); err != nil {
		return 0, fmt.Errorf("set balance: %w", err)
	}

	logger.Info(ctx, "inventory adjustment",
		"warehouse_id", warehouseID,
		"product_id", productID,
		"was", balance.Quantity,
		"counted", counted,
		"delta", delta)

	return delta, nil
}

// GetBalance returns the current balance for warehouse+product.
func (s *Service) GetBalance(ctx context.Context, warehouseID, productID id.ID) (entity.StockBalance, error) {
	return s.repo.GetBalance(ctx, warehouseID, productID)
}

// GetProductAvailability returns available quantity across warehouses.
func (s *Service) GetProductAvailability(ctx context.Context, productID id.ID) (types.Quantity, error) {
	balances, err := s.repo.GetBalancesByProduct(ctx, productID)
	if err != nil {
		return 0, fmt.Errorf("get balances: %w", err)
	}

	var total types.Quantity
	for _, b := range balances {
		total += b.Quantity
	}
	return total, nil
}

// GetWarehouseStock returns all products with stock in a warehouse.
func (s *Service) GetWarehouseStock(ctx context.Context, warehouseID id.ID) ([]entity.StockBalance, error) {
	return s.repo.GetBalancesByWarehouse(ctx, warehouseID, BalanceFilter{ExcludeZero: true})
}

// GetMovementHistory returns movement history for a product.
func (s *Service) GetMovementHistory(ctx context.Context, productID id.ID, filter MovementFilter) ([]entity.StockMovement, error) {
	return s.repo.GetMovementHistory(ctx, productID, filter)
}

// GetTurnover generates a turnover report for the period.
func (s *Service) GetTurnover(ctx context.Context, filter TurnoverFilter) (Turnover, error) {
	return s.repo.GetTurnover(ctx, filter)
}
