package ledger

import (
	"context"
	"fmt"
	"time"

	"woodline/internal/core/apperror"
	"woodline/internal/core/id"
	"woodline/internal/core/numerator"
	"woodline/internal/core/tx"
	"woodline/internal/core/types"
	"woodline/internal/domain/access"
	"woodline/internal/domain/events"
	"woodline/pkg/logger"
)

// Actor identifies who handles the money.
type Actor struct {
	UserID id.ID
	Role   access.Role
}

// PaymentInput is a payment registration request.
type PaymentInput struct {
	SaleID     *id.ID      `json:"saleId,omitempty"`
	CustomerID id.ID       `json:"customerId"`
	Kind       PaymentKind `json:"kind"`
	Method     Method      `json:"method"`
	AmountUZS  types.Money `json:"amountUzs"`
	AmountUSD  types.Money `json:"amountUsd"`
	Comment    string      `json:"comment,omitempty"`
}

// Service provides payment and cash register logic.
type Service struct {
	repo      Repository
	numerator numerator.Generator
	txManager tx.Manager
	outbox    events.Outbox
}

// NewService creates a new ledger service.
func NewService(repo Repository, numerator numerator.Generator, txManager tx.Manager, outbox events.Outbox) *Service {
	return &Service{repo: repo, numerator: numerator, txManager: txManager, outbox: outbox}
}

// ReceivePayment registers incoming money. The register follows from the
// actor's role; the payment, the ledger entry, and the balance update
// commit together.
func (s *Service) ReceivePayment(ctx context.Context, actor Actor, input PaymentInput) (*Payment, error) {
	register := RegisterForRole(actor.Role)

	p := &Payment{
		ID:         id.New(),
		SaleID:     input.SaleID,
		CustomerID: input.CustomerID,
		Kind:       input.Kind,
		Method:     input.Method,
		AmountUZS:  input.AmountUZS,
		AmountUSD:  input.AmountUSD,
		Register:   register,
		Comment:    input.Comment,
		CreatedBy:  actor.UserID,
		CreatedAt:  time.Now(),
	}
	if err := p.Validate(ctx); err != nil {
		return nil, err
	}

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		number, err := s.numerator.GetNextNumber(ctx, numerator.DefaultConfig("PAY"), p.CreatedAt)
		if err != nil {
			return fmt.Errorf("generate number: %w", err)
		}
		p.Number = number

		if err := s.repo.CreatePayment(ctx, p); err != nil {
			return fmt.Errorf("create payment: %w", err)
		}

		balUZS, balUSD, err := s.repo.AdjustBalance(ctx, register, p.AmountUZS, p.AmountUSD)
		if err != nil {
			return fmt.Errorf("adjust balance: %w", err)
		}

		op := &Op{
			ID:          id.New(),
			Register:    register,
			Type:        OpIncome,
			Source:      OpSource(p.Kind),
			RefID:       p.ID,
			AmountUZS:   p.AmountUZS,
			AmountUSD:   p.AmountUSD,
			BalanceUZS:  balUZS,
			BalanceUSD:  balUSD,
			PerformedBy: actor.UserID,
			CreatedAt:   time.Now(),
		}
		if err := s.repo.CreateOp(ctx, op); err != nil {
			return fmt.Errorf("create ledger entry: %w", err)
		}

		err = s.outbox.Enqueue(ctx, events.New(events.TypePaymentReceived, events.RoomBoss, events.PaymentReceivedPayload{
			PaymentID:  p.ID,
			SaleID:     p.SaleID,
			CustomerID: p.CustomerID,
			AmountUZS:  p.AmountUZS.String(),
			Register:   string(register),
			Kind:       string(p.Kind),
		}))
		if err != nil {
			return fmt.Errorf("enqueue event: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "payment received",
		"payment_id", p.ID,
		"number", p.Number,
		"register", register,
		"amount_uzs", p.AmountUZS,
		"kind", p.Kind)

	return p, nil
}

// Withdraw takes money out of a register for an expense. Called inside
// the expense service's transaction; a till cannot go negative.
func (s *Service) Withdraw(ctx context.Context, actor Actor, register Register, refID id.ID, amountUZS, amountUSD types.Money) (*Op, error) {
	if amountUZS.IsNegative() || amountUSD.IsNegative() {
		return nil, apperror.NewValidation("withdrawal amounts cannot be negative")
	}
	if amountUZS.IsZero() && amountUSD.IsZero() {
		return nil, apperror.NewValidation("withdrawal must carry an amount")
	}

	balUZS, balUSD, err := s.repo.AdjustBalance(ctx, register, amountUZS.Neg(), amountUSD.Neg())
	if err != nil {
		return nil, err
	}

	op := &Op{
		ID:          id.New(),
		Register:    register,
		Type:        OpExpense,
		Source:      SourceExpense,
		RefID:       refID,
		AmountUZS:   amountUZS,
		AmountUSD:   amountUSD,
		BalanceUZS:  balUZS,
		BalanceUSD:  balUSD,
		PerformedBy: actor.UserID,
		CreatedAt:   time.Now(),
	}
	if err := s.repo.CreateOp(ctx, op); err != nil {
		return nil, fmt.Errorf("create ledger entry: %w", err)
	}
	return op, nil
}

// GetBalance returns the current state of one register.
func (s *Service) GetBalance(ctx context.Context, register Register) (*Balance, error) {
	b, err := s.repo.GetBalance(ctx, register)
	if err != nil {
		return nil, apperror.NewNotFound("register", string(register))
	}
	return b, nil
}

// GetBalances returns both registers.
func (s *Service) GetBalances(ctx context.Context) ([]Balance, error) {
	return s.repo.GetBalances(ctx)
}

// ListOps returns ledger entries.
func (s *Service) ListOps(ctx context.Context, filter OpFilter) ([]Op, int, error) {
	return s.repo.ListOps(ctx, filter)
}

// ListPayments returns payments.
func (s *Service) ListPayments(ctx context.Context, filter PaymentFilter) ([]Payment, int, error) {
	return s.repo.ListPayments(ctx, filter)
}

// SaleOutstanding returns how much of a sale remains unpaid in som.
func (s *Service) SaleOutstanding(ctx context.Context, saleID id.ID, totalUZS types.Money) (types.Money, error) {
	paidUZS, _, err := s.repo.SumPaymentsBySale(ctx, saleID)
	if err != nil {
		return types.ZeroMoney(), fmt.Errorf("sum payments: %w", err)
	}
	outstanding := totalUZS.Sub(paidUZS)
	if outstanding.IsNegative() {
		return types.ZeroMoney(), nil
	}
	return outstanding, nil
}
