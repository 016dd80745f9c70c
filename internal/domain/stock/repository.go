// Package stock provides the stock accumulation register.
package stock

import (
	"context"
	"time"

	"woodline/internal/core/entity"
	"woodline/internal/core/id"
	"woodline/internal/core/types"
)

// Repository defines operations for the stock register.
// All writes are expected to run inside the caller's transaction.
type Repository interface {
	// CreateMovements batch inserts movement rows.
	CreateMovements(ctx context.Context, movements []entity.StockMovement) error

	// IncrementBalance adds quantity to a balance row, creating it when
	// absent, and returns the new level.
	IncrementBalance(ctx context.Context, warehouseID, productID id.ID, qty types.Quantity) (types.Quantity, error)

	// DecrementIfAvailable subtracts quantity only when the balance
	// covers it, in a single statement, and returns the new level.
	// Returns an error with code INSUFFICIENT_STOCK when it does not.
	DecrementIfAvailable(ctx context.Context, warehouseID, productID id.ID, qty types.Quantity) (types.Quantity, error)

	// SetBalance overwrites a balance row (inventory adjustments).
	SetBalance(ctx context.Context, warehouseID, productID id.ID, qty types.Quantity) error

	// GetBalance returns the current balance for warehouse+product.
	// A missing row reads as zero.
	GetBalance(ctx context.Context, warehouseID, productID id.ID) (entity.StockBalance, error)

	// GetBalanceForUpdate returns the balance with a row lock.
	GetBalanceForUpdate(ctx context.Context, warehouseID, productID id.ID) (entity.StockBalance, error)

	// GetBalancesByWarehouse returns balances for a warehouse.
	GetBalancesByWarehouse(ctx context.Context, warehouseID id.ID, filter BalanceFilter) ([]entity.StockBalance, error)

	// GetBalancesByProduct returns balances across all warehouses.
	GetBalancesByProduct(ctx context.Context, productID id.ID) ([]entity.StockBalance, error)

	// GetMovementHistory returns movement history for a product.
	GetMovementHistory(ctx context.Context, productID id.ID, filter MovementFilter) ([]entity.StockMovement, error)

	// GetTurnover calculates receipt and expense totals for a period.
	GetTurnover(ctx context.Context, filter TurnoverFilter) (Turnover, error)
}

// BalanceFilter for filtering balance queries.
type BalanceFilter struct {
	ProductIDs  []id.ID
	ExcludeZero bool
}

// MovementFilter for filtering movement history.
type MovementFilter struct {
	WarehouseID *id.ID
	RecordType  *entity.RecordType
	FromDate    *time.Time
	ToDate      *time.Time
	Limit       int
	Offset      int
}

// TurnoverFilter for turnover reports.
type TurnoverFilter struct {
	WarehouseID *id.ID
	ProductID   *id.ID
	FromDate    time.Time
	ToDate      time.Time
}

// Turnover represents receipt/expense totals.
type Turnover struct {
	WarehouseID    id.ID          `json:"warehouseId,omitempty"`
	ProductID      id.ID          `json:"productId,omitempty"`
	OpeningBalance types.Quantity `json:"openingBalance"`
	Receipt        types.Quantity `json:"receipt"`
	Expense        types.Quantity `json:"expense"`
	ClosingBalance types.Quantity `json:"closingBalance"`
}
