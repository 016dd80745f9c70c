package expense

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"woodline/internal/core/apperror"
	"woodline/internal/core/id"
	"woodline/internal/core/numerator"
	"woodline/internal/core/types"
	"woodline/internal/domain/access"
	"woodline/internal/domain/events"
	"woodline/internal/domain/ledger"
)

type passthroughTx struct{}

func (passthroughTx) RunInTransaction(ctx context.Context, fn func(context.Context) error) error {
	return fn(ctx)
}

type nullOutbox struct{}

func (nullOutbox) Enqueue(ctx context.Context, evs ...events.Event) error { return nil }

type memExpenseRepo struct {
	categories map[id.ID]*Category
	entries    []Entry
}

func newMemExpenseRepo() *memExpenseRepo {
	return &memExpenseRepo{categories: map[id.ID]*Category{}}
}

func (r *memExpenseRepo) CreateCategory(ctx context.Context, c *Category) error {
	r.categories[c.ID] = c
	return nil
}

func (r *memExpenseRepo) GetCategory(ctx context.Context, categoryID id.ID) (*Category, error) {
	c, ok := r.categories[categoryID]
	if !ok {
		return nil, apperror.NewNotFound("expense category", categoryID.String())
	}
	return c, nil
}

func (r *memExpenseRepo) GetCategoryByName(ctx context.Context, name string) (*Category, error) {
	for _, c := range r.categories {
		if c.Name == name {
			return c, nil
		}
	}
	return nil, apperror.NewNotFound("expense category", name)
}

func (r *memExpenseRepo) ListCategories(ctx context.Context) ([]Category, error) {
	out := make([]Category, 0, len(r.categories))
	for _, c := range r.categories {
		out = append(out, *c)
	}
	return out, nil
}

func (r *memExpenseRepo) DeleteCategory(ctx context.Context, categoryID id.ID) error {
	delete(r.categories, categoryID)
	return nil
}

func (r *memExpenseRepo) CreateEntry(ctx context.Context, e *Entry) error {
	r.entries = append(r.entries, *e)
	return nil
}

func (r *memExpenseRepo) ListEntries(ctx context.Context, filter EntryFilter) ([]Entry, int, error) {
	return r.entries, len(r.entries), nil
}

// memLedgerRepo backs a real ledger service so withdrawals hit the
// same balance rules production does.
type memLedgerRepo struct {
	balances map[ledger.Register]types.Money
	ops      []ledger.Op
}

func newMemLedgerRepo() *memLedgerRepo {
	return &memLedgerRepo{balances: map[ledger.Register]types.Money{
		ledger.RegisterSales:   types.ZeroMoney(),
		ledger.RegisterService: types.ZeroMoney(),
	}}
}

func (r *memLedgerRepo) CreatePayment(ctx context.Context, p *ledger.Payment) error { return nil }

func (r *memLedgerRepo) GetPayment(ctx context.Context, paymentID id.ID) (*ledger.Payment, error) {
	return nil, apperror.NewNotFound("payment", paymentID.String())
}

func (r *memLedgerRepo) ListPayments(ctx context.Context, filter ledger.PaymentFilter) ([]ledger.Payment, int, error) {
	return nil, 0, nil
}

func (r *memLedgerRepo) AdjustBalance(ctx context.Context, register ledger.Register, deltaUZS, deltaUSD types.Money) (types.Money, types.Money, error) {
	newUZS := r.balances[register].Add(deltaUZS)
	if newUZS.IsNegative() {
		return types.ZeroMoney(), types.ZeroMoney(),
			apperror.NewBusinessRule(apperror.CodeBusinessRule, "insufficient funds in register")
	}
	r.balances[register] = newUZS
	return newUZS, types.ZeroMoney(), nil
}

func (r *memLedgerRepo) CreateOp(ctx context.Context, op *ledger.Op) error {
	r.ops = append(r.ops, *op)
	return nil
}

func (r *memLedgerRepo) ListOps(ctx context.Context, filter ledger.OpFilter) ([]ledger.Op, int, error) {
	return r.ops, len(r.ops), nil
}

func (r *memLedgerRepo) GetBalance(ctx context.Context, register ledger.Register) (*ledger.Balance, error) {
	return &ledger.Balance{Register: register, BalanceUZS: r.balances[register], UpdatedAt: time.Now()}, nil
}

func (r *memLedgerRepo) GetBalances(ctx context.Context) ([]ledger.Balance, error) { return nil, nil }

func (r *memLedgerRepo) SumPaymentsBySale(ctx context.Context, saleID id.ID) (types.Money, types.Money, error) {
	return types.ZeroMoney(), types.ZeroMoney(), nil
}

func newExpenseFixture(t *testing.T) (*Service, *memExpenseRepo, *memLedgerRepo) {
	t.Helper()
	expenseRepo := newMemExpenseRepo()
	ledgerRepo := newMemLedgerRepo()
	ledgerSvc := ledger.NewService(ledgerRepo, &numerator.MockGenerator{}, passthroughTx{}, nullOutbox{})
	svc := NewService(expenseRepo, ledgerSvc, &numerator.MockGenerator{}, passthroughTx{})
	return svc, expenseRepo, ledgerRepo
}

func salesActor() ledger.Actor {
	return ledger.Actor{UserID: id.New(), Role: access.RoleSalesCashier}
}

func TestCreateExpense_WithdrawsFromRegister(t *testing.T) {
	svc, _, ledgerRepo := newExpenseFixture(t)
	ctx := context.Background()
	ledgerRepo.balances[ledger.RegisterSales] = types.MustMoney("500000")

	category, err := svc.CreateCategory(ctx, "Rent")
	require.NoError(t, err)

	entry, err := svc.Create(ctx, salesActor(), CreateInput{
		CategoryID: category.ID,
		AmountUZS:  types.MustMoney("200000"),
	})
	require.NoError(t, err)
	assert.Equal(t, ledger.RegisterSales, entry.Register)
	assert.NotEmpty(t, entry.Number)
	assert.True(t, ledgerRepo.balances[ledger.RegisterSales].Equal(types.MustMoney("300000")))
}

func TestCreateExpense_InsufficientFunds(t *testing.T) {
	svc, _, ledgerRepo := newExpenseFixture(t)
	ctx := context.Background()

	category, err := svc.CreateCategory(ctx, "Rent")
	require.NoError(t, err)

	_, err = svc.Create(ctx, salesActor(), CreateInput{
		CategoryID: category.ID,
		AmountUZS:  types.MustMoney("200000"),
	})
	require.Error(t, err)
	assert.Equal(t, apperror.CodeBusinessRule, apperror.Code(err))
	assert.True(t, ledgerRepo.balances[ledger.RegisterSales].IsZero())
	assert.Empty(t, ledgerRepo.ops)
}

func TestCreateExpense_UnknownCategory(t *testing.T) {
	svc, _, ledgerRepo := newExpenseFixture(t)
	ledgerRepo.balances[ledger.RegisterSales] = types.MustMoney("500000")

	_, err := svc.Create(context.Background(), salesActor(), CreateInput{
		CategoryID: id.New(),
		AmountUZS:  types.MustMoney("1000"),
	})
	require.Error(t, err)
	assert.Equal(t, apperror.CodeNotFound, apperror.Code(err))
}

func TestCategoryLifecycle(t *testing.T) {
	svc, _, _ := newExpenseFixture(t)
	ctx := context.Background()

	category, err := svc.CreateCategory(ctx, "Utilities")
	require.NoError(t, err)

	_, err = svc.CreateCategory(ctx, "Utilities")
	require.Error(t, err)
	assert.Equal(t, apperror.CodeDuplicate, apperror.Code(err))

	require.NoError(t, svc.DeleteCategory(ctx, category.ID))

	_, err = svc.CreateCategory(ctx, "")
	require.Error(t, err)
	assert.Equal(t, apperror.CodeValidation, apperror.Code(err))
}

func TestDeleteCategory_SystemProtected(t *testing.T) {
	svc, _, _ := newExpenseFixture(t)
	ctx := context.Background()

	category, err := svc.EnsureStockIntakeCategory(ctx)
	require.NoError(t, err)
	require.True(t, category.IsSystem)

	err = svc.DeleteCategory(ctx, category.ID)
	require.Error(t, err)
	assert.Equal(t, apperror.CodeForbidden, apperror.Code(err))

	// Idempotent: second call returns the same category.
	again, err := svc.EnsureStockIntakeCategory(ctx)
	require.NoError(t, err)
	assert.Equal(t, category.ID, again.ID)
}
