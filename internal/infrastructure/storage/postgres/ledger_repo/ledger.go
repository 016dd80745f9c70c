// Package ledger_repo provides the PostgreSQL ledger repository.
package ledger_repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"woodline/internal/core/apperror"
	"woodline/internal/core/id"
	"woodline/internal/core/types"
	"woodline/internal/domain/ledger"
	"woodline/internal/infrastructure/storage/postgres"
)

const (
	paymentsTable  = "doc_payments"
	cashOpsTable   = "reg_cash_ops"
	registersTable = "reg_register_balances"
)

var (
	paymentColumns = postgres.ExtractDBColumns[ledger.Payment]()
	opColumns      = postgres.ExtractDBColumns[ledger.Op]()
	balanceColumns = postgres.ExtractDBColumns[ledger.Balance]()
)

// LedgerRepo implements ledger.Repository.
type LedgerRepo struct {
	txManager *postgres.TxManager
	builder   squirrel.StatementBuilderType
}

var _ ledger.Repository = (*LedgerRepo)(nil)

// NewLedgerRepo creates a new ledger repository.
func NewLedgerRepo(txManager *postgres.TxManager) *LedgerRepo {
	return &LedgerRepo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// CreatePayment inserts a payment.
func (r *LedgerRepo) CreatePayment(ctx context.Context, p *ledger.Payment) error {
	data := postgres.StructToMap(p)

	q := r.builder.Insert(paymentsTable).SetMap(data)
	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return apperror.NewDuplicate("payment", "number", p.Number)
		}
		return fmt.Errorf("insert payment: %w", err)
	}
	return nil
}

// GetPayment retrieves a payment.
func (r *LedgerRepo) GetPayment(ctx context.Context, paymentID id.ID) (*ledger.Payment, error) {
	q := r.builder.Select(paymentColumns...).
		From(paymentsTable).
		Where(squirrel.Eq{"id": paymentID})

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var p ledger.Payment
	if err := pgxscan.Get(ctx, r.txManager.GetQuerier(ctx), &p, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("payment", paymentID.String())
		}
		return nil, fmt.Errorf("get payment: %w", err)
	}
	return &p, nil
}

// ListPayments retrieves payments matching the filter, newest first.
func (r *LedgerRepo) ListPayments(ctx context.Context, filter ledger.PaymentFilter) ([]ledger.Payment, int, error) {
	q := r.builder.Select(paymentColumns...).From(paymentsTable)

	if filter.CustomerID != nil {
		q = q.Where(squirrel.Eq{"customer_id": *filter.CustomerID})
	}
	if filter.SaleID != nil {
		q = q.Where(squirrel.Eq{"sale_id": *filter.SaleID})
	}
	if filter.Kind != nil {
		q = q.Where(squirrel.Eq{"kind": *filter.Kind})
	}
	if filter.FromDate != nil {
		q = q.Where(squirrel.GtOrEq{"created_at": *filter.FromDate})
	}
	if filter.ToDate != nil {
		q = q.Where(squirrel.Lt{"created_at": *filter.ToDate})
	}

	countQ := r.builder.Select("COUNT(*)").FromSelect(q, "sub")
	countSQL, countArgs, err := countQ.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build count query: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)

	var total int
	if err := querier.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count payments: %w", err)
	}

	q = q.OrderBy("created_at DESC")
	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		q = q.Offset(uint64(filter.Offset))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build query: %w", err)
	}

	var payments []ledger.Payment
	if err := pgxscan.Select(ctx, querier, &payments, sql, args...); err != nil {
		return nil, 0, fmt.Errorf("list payments: %w", err)
	}

	return payments, total, nil
}

// AdjustBalance applies signed deltas to a register row atomically.
// The WHERE clause rejects any adjustment that would take a balance
// below zero, so concurrent withdrawals cannot overdraw the till.
func (r *LedgerRepo) AdjustBalance(ctx context.Context, register ledger.Register, deltaUZS, deltaUSD types.Money) (types.Money, types.Money, error) {
	querier := r.txManager.GetQuerier(ctx)

	var newUZS, newUSD types.Money
	err := querier.QueryRow(ctx,
		`UPDATE reg_register_balances
		 SET balance_uzs = balance_uzs + $2,
		     balance_usd = balance_usd + $3,
		     updated_at = now()
		 WHERE register = $1
		   AND balance_uzs + $2 >= 0
		   AND balance_usd + $3 >= 0
		 RETURNING balance_uzs, balance_usd`,
		register, deltaUZS, deltaUSD,
	).Scan(&newUZS, &newUSD)
	if err == nil {
		return newUZS, newUSD, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return types.ZeroMoney(), types.ZeroMoney(), fmt.Errorf("adjust register balance: %w", err)
	}

	// No row updated: either the register row does not exist yet, or
	// the adjustment would go negative.
	exists, err := r.registerExists(ctx, register)
	if err != nil {
		return types.ZeroMoney(), types.ZeroMoney(), err
	}
	if exists || deltaUZS.IsNegative() || deltaUSD.IsNegative() {
		return types.ZeroMoney(), types.ZeroMoney(),
			apperror.NewBusinessRule(apperror.CodeBusinessRule, "insufficient funds in register").
				WithDetail("register", string(register))
	}

	err = querier.QueryRow(ctx,
		`INSERT INTO reg_register_balances (register, balance_uzs, balance_usd, updated_at)
		 VALUES ($1, $2, $3, now())
		 ON CONFLICT (register) DO UPDATE
		 SET balance_uzs = reg_register_balances.balance_uzs + EXCLUDED.balance_uzs,
		     balance_usd = reg_register_balances.balance_usd + EXCLUDED.balance_usd,
		     updated_at = now()
		 RETURNING balance_uzs, balance_usd`,
		register, deltaUZS, deltaUSD,
	).Scan(&newUZS, &newUSD)
	if err != nil {
		return types.ZeroMoney(), types.ZeroMoney(), fmt.Errorf("init register balance: %w", err)
	}
	return newUZS, newUSD, nil
}

func (r *LedgerRepo) registerExists(ctx context.Context, register ledger.Register) (bool, error) {
	var one int
	err := r.txManager.GetQuerier(ctx).QueryRow(ctx,
		`SELECT 1 FROM reg_register_balances WHERE register = $1`, register,
	).Scan(&one)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check register: %w", err)
	}
	return true, nil
}

// CreateOp inserts a ledger entry.
func (r *LedgerRepo) CreateOp(ctx context.Context, op *ledger.Op) error {
	data := postgres.StructToMap(op)

	q := r.builder.Insert(cashOpsTable).SetMap(data)
	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert ledger op: %w", err)
	}
	return nil
}

// ListOps retrieves ledger entries matching the filter, newest first.
func (r *LedgerRepo) ListOps(ctx context.Context, filter ledger.OpFilter) ([]ledger.Op, int, error) {
	q := r.builder.Select(opColumns...).From(cashOpsTable)

	if filter.Register != nil {
		q = q.Where(squirrel.Eq{"register": *filter.Register})
	}
	if filter.Type != nil {
		q = q.Where(squirrel.Eq{"type": *filter.Type})
	}
	if filter.FromDate != nil {
		q = q.Where(squirrel.GtOrEq{"created_at": *filter.FromDate})
	}
	if filter.ToDate != nil {
		q = q.Where(squirrel.Lt{"created_at": *filter.ToDate})
	}

	countQ := r.builder.Select("COUNT(*)").FromSelect(q, "sub")
	countSQL, countArgs, err := countQ.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build count query: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)

	var total int
	if err := querier.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count ledger ops: %w", err)
	}

	q = q.OrderBy("created_at DESC")
	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		q = q.Offset(uint64(filter.Offset))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build query: %w", err)
	}

	var ops []ledger.Op
	if err := pgxscan.Select(ctx, querier, &ops, sql, args...); err != nil {
		return nil, 0, fmt.Errorf("list ledger ops: %w", err)
	}

	return ops, total, nil
}

// GetBalance returns the state of one register. A register without any
// activity yet reads as zero.
func (r *LedgerRepo) GetBalance(ctx context.Context, register ledger.Register) (*ledger.Balance, error) {
	q := r.builder.Select(balanceColumns...).
		From(registersTable).
		Where(squirrel.Eq{"register": register})

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var b ledger.Balance
	if err := pgxscan.Get(ctx, r.txManager.GetQuerier(ctx), &b, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return &ledger.Balance{
				Register:   register,
				BalanceUZS: types.ZeroMoney(),
				BalanceUSD: types.ZeroMoney(),
			}, nil
		}
		return nil, fmt.Errorf("get register balance: %w", err)
	}
	return &b, nil
}

// GetBalances returns the state of all registers.
func (r *LedgerRepo) GetBalances(ctx context.Context) ([]ledger.Balance, error) {
	q := r.builder.Select(balanceColumns...).
		From(registersTable).
		OrderBy("register")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var balances []ledger.Balance
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &balances, sql, args...); err != nil {
		return nil, fmt.Errorf("list register balances: %w", err)
	}
	return balances, nil
}

// SumPaymentsBySale totals payments posted against a sale.
func (r *LedgerRepo) SumPaymentsBySale(ctx context.Context, saleID id.ID) (types.Money, types.Money, error) {
	var sumUZS, sumUSD types.Money
	err := r.txManager.GetQuerier(ctx).QueryRow(ctx,
		`SELECT COALESCE(SUM(amount_uzs), 0), COALESCE(SUM(amount_usd), 0)
		 FROM doc_payments
		 WHERE sale_id = $1`,
		saleID,
	).Scan(&sumUZS, &sumUSD)
	if err != nil {
		return types.ZeroMoney(), types.ZeroMoney(), fmt.Errorf("sum payments by sale: %w", err)
	}
	return sumUZS, sumUSD, nil
}
