// Package ledger provides payments and the cash register ledger.
//
// Two physical registers exist: the sales till and the service till.
// Which one a payment lands in follows from who takes it, not from what
// is sold. Every ledger entry stores the register balance after the
// entry, maintained by an atomic adjust-and-return on the register row.
package ledger

import (
	"context"
	"time"

	"woodline/internal/core/apperror"
	"woodline/internal/core/id"
	"woodline/internal/core/types"
	"woodline/internal/domain/access"
)

// Register identifies a physical cash register.
type Register string

const (
	RegisterSales   Register = "sales"
	RegisterService Register = "service"
)

// RegisterForRole maps the acting cashier to their register.
// Everyone except the service cashier works the sales till.
func RegisterForRole(role access.Role) Register {
	if role == access.RoleServiceCashier {
		return RegisterService
	}
	return RegisterSales
}

// PaymentKind classifies incoming money.
type PaymentKind string

const (
	KindSaleIncome     PaymentKind = "sale_income"
	KindDebtPayment    PaymentKind = "debt_payment"
	KindAdvancePayment PaymentKind = "advance_payment"
)

// Method is how the money arrived.
type Method string

const (
	MethodCash     Method = "cash"
	MethodCard     Method = "card"
	MethodTransfer Method = "transfer"
)

// Payment is an incoming payment from a customer.
type Payment struct {
	ID     id.ID  `db:"id" json:"id"`
	Number string `db:"number" json:"number"`

	SaleID     *id.ID `db:"sale_id" json:"saleId,omitempty"`
	CustomerID id.ID  `db:"customer_id" json:"customerId"`

	Kind   PaymentKind `db:"kind" json:"kind"`
	Method Method      `db:"method" json:"method"`

	AmountUZS types.Money `db:"amount_uzs" json:"amountUzs"`
	AmountUSD types.Money `db:"amount_usd" json:"amountUsd"`

	Register Register `db:"register" json:"register"`
	Comment  string   `db:"comment" json:"comment,omitempty"`

	CreatedBy id.ID     `db:"created_by" json:"createdBy"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// Validate checks the payment.
func (p *Payment) Validate(ctx context.Context) error {
	switch p.Kind {
	case KindSaleIncome, KindDebtPayment, KindAdvancePayment:
	default:
		return apperror.NewValidation("unknown payment kind").WithDetail("kind", string(p.Kind))
	}
	switch p.Method {
	case MethodCash, MethodCard, MethodTransfer:
	default:
		return apperror.NewValidation("unknown payment method").WithDetail("method", string(p.Method))
	}
	if p.AmountUZS.IsNegative() || p.AmountUSD.IsNegative() {
		return apperror.NewValidation("payment amounts cannot be negative")
	}
	if p.AmountUZS.IsZero() && p.AmountUSD.IsZero() {
		return apperror.NewValidation("payment must carry an amount")
	}
	if p.Kind == KindSaleIncome && p.SaleID == nil {
		return apperror.NewValidation("sale is required for sale income").WithDetail("field", "saleId")
	}
	if id.IsNil(p.CustomerID) {
		return apperror.NewValidation("customer is required").WithDetail("field", "customerId")
	}
	return nil
}

// OpType is the ledger entry direction.
type OpType string

const (
	OpIncome  OpType = "income"
	OpExpense OpType = "expense"
)

// OpSource classifies what produced a ledger entry.
type OpSource string

const (
	SourceSaleIncome     OpSource = "sale_income"
	SourceDebtPayment    OpSource = "debt_payment"
	SourceAdvancePayment OpSource = "advance_payment"
	SourceExpense        OpSource = "expense"
)

// Op is one cash register ledger entry.
type Op struct {
	ID       id.ID    `db:"id" json:"id"`
	Register Register `db:"register" json:"register"`
	Type     OpType   `db:"type" json:"type"`
	Source   OpSource `db:"source" json:"source"`

	// RefID points at the payment or expense entry behind this op.
	RefID id.ID `db:"ref_id" json:"refId"`

	AmountUZS types.Money `db:"amount_uzs" json:"amountUzs"`
	AmountUSD types.Money `db:"amount_usd" json:"amountUsd"`

	// BalanceUZS/USD are the register balances after this entry.
	BalanceUZS types.Money `db:"balance_uzs" json:"balanceUzs"`
	BalanceUSD types.Money `db:"balance_usd" json:"balanceUsd"`

	PerformedBy id.ID     `db:"performed_by" json:"performedBy"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
}

// Balance is the current state of one register.
type Balance struct {
	Register   Register    `db:"register" json:"register"`
	BalanceUZS types.Money `db:"balance_uzs" json:"balanceUzs"`
	BalanceUSD types.Money `db:"balance_usd" json:"balanceUsd"`
	UpdatedAt  time.Time   `db:"updated_at" json:"updatedAt"`
}
