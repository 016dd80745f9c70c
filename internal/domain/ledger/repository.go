package ledger

import (
	"context"
	"time"

	"woodline/internal/core/id"
	"woodline/internal/core/types"
)

// OpFilter for listing ledger entries.
type OpFilter struct {
	Register *Register
	Type     *OpType
	FromDate *time.Time
	ToDate   *time.Time
	Limit    int
	Offset   int
}

// PaymentFilter for listing payments.
type PaymentFilter struct {
	CustomerID *id.ID
	SaleID     *id.ID
	Kind       *PaymentKind
	FromDate   *time.Time
	ToDate     *time.Time
	Limit      int
	Offset     int
}

// Repository defines ledger persistence.
type Repository interface {
	CreatePayment(ctx context.Context, p *Payment) error
	GetPayment(ctx context.Context, paymentID id.ID) (*Payment, error)
	ListPayments(ctx context.Context, filter PaymentFilter) ([]Payment, int, error)

	// AdjustBalance applies signed deltas to a register row in one
	// statement and returns the resulting balances. A negative result is
	// rejected by the statement itself, surfacing INSUFFICIENT_FUNDS
	// style business errors from a single round trip.
	AdjustBalance(ctx context.Context, register Register, deltaUZS, deltaUSD types.Money) (types.Money, types.Money, error)

	CreateOp(ctx context.Context, op *Op) error
	ListOps(ctx context.Context, filter OpFilter) ([]Op, int, error)

	GetBalance(ctx context.Context, register Register) (*Balance, error)
	GetBalances(ctx context.Context) ([]Balance, error)

	// SumPaymentsBySale totals payments against a sale, for debt views.
	SumPaymentsBySale(ctx context.Context, saleID id.ID) (types.Money, types.Money, error)
}
