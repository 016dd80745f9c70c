package purchase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"woodline/internal/core/apperror"
	"woodline/internal/core/entity"
	"woodline/internal/core/id"
	"woodline/internal/core/numerator"
	"woodline/internal/core/types"
	"woodline/internal/domain/access"
	"woodline/internal/domain/events"
	"woodline/internal/domain/expense"
	"woodline/internal/domain/ledger"
	"woodline/internal/domain/stock"
)

type passthroughTx struct{}

func (passthroughTx) RunInTransaction(ctx context.Context, fn func(context.Context) error) error {
	return fn(ctx)
}

type nullOutbox struct{}

func (nullOutbox) Enqueue(ctx context.Context, evs ...events.Event) error { return nil }

type memPurchaseRepo struct {
	purchases map[id.ID]*Purchase
}

func newMemPurchaseRepo() *memPurchaseRepo {
	return &memPurchaseRepo{purchases: map[id.ID]*Purchase{}}
}

func (r *memPurchaseRepo) Create(ctx context.Context, p *Purchase) error {
	r.purchases[p.ID] = p
	return nil
}

func (r *memPurchaseRepo) GetByID(ctx context.Context, purchaseID id.ID) (*Purchase, error) {
	p, ok := r.purchases[purchaseID]
	if !ok {
		return nil, apperror.NewNotFound("purchase", purchaseID.String())
	}
	return p, nil
}

func (r *memPurchaseRepo) List(ctx context.Context, limit, offset int) ([]Purchase, int, error) {
	out := make([]Purchase, 0, len(r.purchases))
	for _, p := range r.purchases {
		out = append(out, *p)
	}
	return out, len(out), nil
}

type memCostUpdater struct {
	costs map[id.ID]string
}

func (u *memCostUpdater) UpdateCost(ctx context.Context, productID id.ID, cost string) error {
	if u.costs == nil {
		u.costs = map[id.ID]string{}
	}
	u.costs[productID] = cost
	return nil
}

type balanceKey struct {
	warehouseID id.ID
	productID   id.ID
}

type memStockRepo struct {
	balances  map[balanceKey]types.Quantity
	movements []entity.StockMovement
}

func newMemStockRepo() *memStockRepo {
	return &memStockRepo{balances: map[balanceKey]types.Quantity{}}
}

func (r *memStockRepo) CreateMovements(ctx context.Context, movements []entity.StockMovement) error {
	r.movements = append(r.movements, movements...)
	return nil
}

func (r *memStockRepo) IncrementBalance(ctx context.Context, warehouseID, productID id.ID, qty types.Quantity) (types.Quantity, error) {
	key := balanceKey{warehouseID, productID}
	r.balances[key] += qty
	return r.balances[key], nil
}

func (r *memStockRepo) DecrementIfAvailable(ctx context.Context, warehouseID, productID id.ID, qty types.Quantity) (types.Quantity, error) {
	key := balanceKey{warehouseID, productID}
	if r.balances[key] < qty {
		return 0, apperror.NewInsufficientStock(productID.String(), qty.Float64(), r.balances[key].Float64())
	}
	r.balances[key] -= qty
	return r.balances[key], nil
}

func (r *memStockRepo) SetBalance(ctx context.Context, warehouseID, productID id.ID, qty types.Quantity) error {
	r.balances[balanceKey{warehouseID, productID}] = qty
	return nil
}

func (r *memStockRepo) GetBalance(ctx context.Context, warehouseID, productID id.ID) (entity.StockBalance, error) {
	return entity.StockBalance{
		WarehouseID: warehouseID,
		ProductID:   productID,
		Quantity:    r.balances[balanceKey{warehouseID, productID}],
	}, nil
}

func (r *memStockRepo) GetBalanceForUpdate(ctx context.Context, warehouseID, productID id.ID) (entity.StockBalance, error) {
	return r.GetBalance(ctx, warehouseID, productID)
}

func (r *memStockRepo) GetBalancesByWarehouse(ctx context.Context, warehouseID id.ID, filter stock.BalanceFilter) ([]entity.StockBalance, error) {
	return nil, nil
}

func (r *memStockRepo) GetBalancesByProduct(ctx context.Context, productID id.ID) ([]entity.StockBalance, error) {
	return nil, nil
}

func (r *memStockRepo) GetMovementHistory(ctx context.Context, productID id.ID, filter stock.MovementFilter) ([]entity.StockMovement, error) {
	return r.movements, nil
}

func (r *memStockRepo) GetTurnover(ctx context.Context, filter stock.TurnoverFilter) (stock.Turnover, error) {
	return stock.Turnover{}, nil
}

type memExpenseRepo struct {
	categories map[id.ID]*expense.Category
	entries    []expense.Entry
}

func newMemExpenseRepo() *memExpenseRepo {
	return &memExpenseRepo{categories: map[id.ID]*expense.Category{}}
}

func (r *memExpenseRepo) CreateCategory(ctx context.Context, c *expense.Category) error {
	r.categories[c.ID] = c
	return nil
}

func (r *memExpenseRepo) GetCategory(ctx context.Context, categoryID id.ID) (*expense.Category, error) {
	c, ok := r.categories[categoryID]
	if !ok {
		return nil, apperror.NewNotFound("expense category", categoryID.String())
	}
	return c, nil
}

func (r *memExpenseRepo) GetCategoryByName(ctx context.Context, name string) (*expense.Category, error) {
	for _, c := range r.categories {
		if c.Name == name {
			return c, nil
		}
	}
	return nil, apperror.NewNotFound("expense category", name)
}

func (r *memExpenseRepo) ListCategories(ctx context.Context) ([]expense.Category, error) {
	return nil, nil
}

func (r *memExpenseRepo) DeleteCategory(ctx context.Context, categoryID id.ID) error {
	delete(r.categories, categoryID)
	return nil
}

func (r *memExpenseRepo) CreateEntry(ctx context.Context, e *expense.Entry) error {
	r.entries = append(r.entries, *e)
	return nil
}

func (r *memExpenseRepo) ListEntries(ctx context.Context, filter expense.EntryFilter) ([]expense.Entry, int, error) {
	return r.entries, len(r.entries), nil
}

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

type purchaseFixture struct {
	svc         *Service
	repo        *memPurchaseRepo
	costs       *memCostUpdater
	stockRepo   *memStockRepo
	expenseRepo *memExpenseRepo
	ledgerRepo  *memLedgerRepo
}

func newPurchaseFixture(t *testing.T) *purchaseFixture {
	t.Helper()
	f := &purchaseFixture{
		repo:        newMemPurchaseRepo(),
		costs:       &memCostUpdater{},
		stockRepo:   newMemStockRepo(),
		expenseRepo: newMemExpenseRepo(),
		ledgerRepo:  newMemLedgerRepo(),
	}
	ledgerSvc := ledger.NewService(f.ledgerRepo, &numerator.MockGenerator{}, passthroughTx{}, nullOutbox{})
	expenseSvc := expense.NewService(f.expenseRepo, ledgerSvc, &numerator.MockGenerator{}, passthroughTx{})
	f.svc = NewService(f.repo, f.costs, stock.NewService(f.stockRepo), expenseSvc, &numerator.MockGenerator{}, passthroughTx{})
	return f
}

func salesActor() ledger.Actor {
	return ledger.Actor{UserID: id.New(), Role: access.RoleSalesCashier}
}

func TestCreatePurchase_BooksIntakeExpenseAndCashOp(t *testing.T) {
	f := newPurchaseFixture(t)
	ctx := context.Background()
	f.ledgerRepo.balances[ledger.RegisterSales] = types.MustMoney("500000")

	actor := salesActor()
	warehouseID, productID := id.New(), id.New()
	doc, err := f.svc.Create(ctx, actor, CreateInput{
		SupplierID:  id.New(),
		WarehouseID: warehouseID,
		Items: []ItemInput{{
			ProductID:   productID,
			Quantity:    types.NewQuantityFromInt(5),
			UnitCostUZS: types.MustMoney("20000"),
		}},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, doc.Number)
	assert.Equal(t, actor.UserID, doc.CreatedBy)
	assert.True(t, doc.TotalUZS.Equal(types.MustMoney("100000")))

	// Stock went up by the delivered quantity.
	assert.Equal(t, types.NewQuantityFromInt(5), f.stockRepo.balances[balanceKey{warehouseID, productID}])
	assert.Equal(t, "20000", f.costs.costs[productID])

	// The full amount landed in the auto-provisioned intake category.
	require.Len(t, f.expenseRepo.entries, 1)
	entry := f.expenseRepo.entries[0]
	assert.True(t, entry.AmountUZS.Equal(types.MustMoney("100000")))
	require.NotNil(t, entry.RefID)
	assert.Equal(t, doc.ID, *entry.RefID)
	category, err := f.expenseRepo.GetCategory(ctx, entry.CategoryID)
	require.NoError(t, err)
	assert.Equal(t, expense.StockIntakeCategory, category.Name)
	assert.True(t, category.IsSystem)

	// Exactly one expense op hit the till, and the balance reflects it.
	require.Len(t, f.ledgerRepo.ops, 1)
	op := f.ledgerRepo.ops[0]
	assert.Equal(t, ledger.OpExpense, op.Type)
	assert.True(t, op.AmountUZS.Equal(types.MustMoney("100000")))
	assert.True(t, f.ledgerRepo.balances[ledger.RegisterSales].Equal(types.MustMoney("400000")))
}

func TestCreatePurchase_InsufficientFunds(t *testing.T) {
	f := newPurchaseFixture(t)
	ctx := context.Background()
	f.ledgerRepo.balances[ledger.RegisterSales] = types.MustMoney("50000")

	_, err := f.svc.Create(ctx, salesActor(), CreateInput{
		SupplierID:  id.New(),
		WarehouseID: id.New(),
		Items: []ItemInput{{
			ProductID:   id.New(),
			Quantity:    types.NewQuantityFromInt(5),
			UnitCostUZS: types.MustMoney("20000"),
		}},
	})
	require.Error(t, err)
	assert.Equal(t, apperror.CodeBusinessRule, apperror.Code(err))
	assert.Empty(t, f.ledgerRepo.ops)
}

func TestCreatePurchase_Validation(t *testing.T) {
	f := newPurchaseFixture(t)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, salesActor(), CreateInput{
		SupplierID:  id.New(),
		WarehouseID: id.New(),
	})
	require.Error(t, err)
	assert.Equal(t, apperror.CodeValidation, apperror.Code(err))

	_, err = f.svc.Create(ctx, salesActor(), CreateInput{
		SupplierID:  id.New(),
		WarehouseID: id.New(),
		Items: []ItemInput{{
			ProductID:   id.New(),
			Quantity:    types.NewQuantityFromInt(0),
			UnitCostUZS: types.MustMoney("1000"),
		}},
	})
	require.Error(t, err)
	assert.Equal(t, apperror.CodeValidation, apperror.Code(err))
}
