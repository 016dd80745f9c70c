package stock

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"woodline/internal/core/apperror"
	"woodline/internal/core/entity"
	"woodline/internal/core/id"
	"woodline/internal/core/types"
)

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

func (r *memStockRepo) GetBalancesByWarehouse(ctx context.Context, warehouseID id.ID, filter BalanceFilter) ([]entity.StockBalance, error) {
	var out []entity.StockBalance
	for key, qty := range r.balances {
		if key.warehouseID != warehouseID {
			continue
		}
		if filter.ExcludeZero && qty.IsZero() {
			continue
		}
		out = append(out, entity.StockBalance{WarehouseID: key.warehouseID, ProductID: key.productID, Quantity: qty})
	}
	return out, nil
}

func (r *memStockRepo) GetBalancesByProduct(ctx context.Context, productID id.ID) ([]entity.StockBalance, error) {
	var out []entity.StockBalance
	for key, qty := range r.balances {
		if key.productID == productID {
			out = append(out, entity.StockBalance{WarehouseID: key.warehouseID, ProductID: key.productID, Quantity: qty})
		}
	}
	return out, nil
}

func (r *memStockRepo) GetMovementHistory(ctx context.Context, productID id.ID, filter MovementFilter) ([]entity.StockMovement, error) {
	return r.movements, nil
}

func (r *memStockRepo) GetTurnover(ctx context.Context, filter TurnoverFilter) (Turnover, error) {
	return Turnover{}, nil
}

func qty(v float64) types.Quantity { return types.NewQuantityFromFloat64(v) }

func TestReceiveAndIssue(t *testing.T) {
	repo := newMemStockRepo()
	svc := NewService(repo)
	ctx := context.Background()
	warehouseID, productID := id.New(), id.New()

	level, err := svc.Receive(ctx, id.New(), "Purchase", time.Now(), warehouseID, productID, qty(10))
	require.NoError(t, err)
	assert.Equal(t, qty(10), level)

	level, err = svc.Issue(ctx, id.New(), "Sale", time.Now(), warehouseID, productID, qty(4))
	require.NoError(t, err)
	assert.Equal(t, qty(6), level)

	require.Len(t, repo.movements, 2)
	assert.Equal(t, entity.RecordTypeReceipt, repo.movements[0].RecordType)
	assert.Equal(t, entity.RecordTypeExpense, repo.movements[1].RecordType)
}

func TestIssue_InsufficientStock(t *testing.T) {
	repo := newMemStockRepo()
	svc := NewService(repo)
	ctx := context.Background()
	warehouseID, productID := id.New(), id.New()

	_, err := svc.Receive(ctx, id.New(), "Purchase", time.Now(), warehouseID, productID, qty(3))
	require.NoError(t, err)

	_, err = svc.Issue(ctx, id.New(), "Sale", time.Now(), warehouseID, productID, qty(5))
	require.Error(t, err)
	assert.Equal(t, apperror.CodeInsufficientStock, apperror.Code(err))

	// No movement row for the rejected issue.
	require.Len(t, repo.movements, 1)
}

func TestIssue_RejectsNonPositiveQuantity(t *testing.T) {
	svc := NewService(newMemStockRepo())

	_, err := svc.Issue(context.Background(), id.New(), "Sale", time.Now(), id.New(), id.New(), qty(0))
	require.Error(t, err)
	assert.Equal(t, apperror.CodeValidation, apperror.Code(err))

	_, err = svc.Receive(context.Background(), id.New(), "Purchase", time.Now(), id.New(), id.New(), qty(-1))
	require.Error(t, err)
	assert.Equal(t, apperror.CodeValidation, apperror.Code(err))
}

func TestReturnToStock(t *testing.T) {
	repo := newMemStockRepo()
	svc := NewService(repo)
	ctx := context.Background()
	warehouseID, productID := id.New(), id.New()

	// Returns are not bounded by what was ever issued.
	level, err := svc.ReturnToStock(ctx, id.New(), time.Now(), warehouseID, productID, qty(2))
	require.NoError(t, err)
	assert.Equal(t, qty(2), level)

	level, err = svc.ReturnToStock(ctx, id.New(), time.Now(), warehouseID, productID, qty(3))
	require.NoError(t, err)
	assert.Equal(t, qty(5), level)

	require.Len(t, repo.movements, 2)
	assert.Equal(t, entity.RecordTypeReceipt, repo.movements[0].RecordType)
	assert.Equal(t, "Return", repo.movements[0].RecorderType)

	_, err = svc.ReturnToStock(ctx, id.New(), time.Now(), warehouseID, productID, qty(0))
	require.Error(t, err)
	assert.Equal(t, apperror.CodeValidation, apperror.Code(err))
}

func TestTransfer(t *testing.T) {
	repo := newMemStockRepo()
	svc := NewService(repo)
	ctx := context.Background()
	fromID, toID, productID := id.New(), id.New(), id.New()

	_, err := svc.Receive(ctx, id.New(), "Purchase", time.Now(), fromID, productID, qty(8))
	require.NoError(t, err)

	require.NoError(t, svc.Transfer(ctx, id.New(), time.Now(), fromID, toID, productID, qty(5)))

	from, _ := svc.GetBalance(ctx, fromID, productID)
	to, _ := svc.GetBalance(ctx, toID, productID)
	assert.Equal(t, qty(3), from.Quantity)
	assert.Equal(t, qty(5), to.Quantity)

	err = svc.Transfer(ctx, id.New(), time.Now(), fromID, fromID, productID, qty(1))
	require.Error(t, err)
	assert.Equal(t, apperror.CodeValidation, apperror.Code(err))
}

func TestSetCount(t *testing.T) {
	repo := newMemStockRepo()
	svc := NewService(repo)
	ctx := context.Background()
	warehouseID, productID := id.New(), id.New()

	_, err := svc.Receive(ctx, id.New(), "Purchase", time.Now(), warehouseID, productID, qty(10))
	require.NoError(t, err)

	// Counted below book: shortage.
	delta, err := svc.SetCount(ctx, id.New(), time.Now(), warehouseID, productID, qty(7))
	require.NoError(t, err)
	assert.Equal(t, qty(-3), delta)

	balance, _ := svc.GetBalance(ctx, warehouseID, productID)
	assert.Equal(t, qty(7), balance.Quantity)

	// Counted equals book: no movement.
	delta, err = svc.SetCount(ctx, id.New(), time.Now(), warehouseID, productID, qty(7))
	require.NoError(t, err)
	assert.True(t, delta.IsZero())

	_, err = svc.SetCount(ctx, id.New(), time.Now(), warehouseID, productID, qty(-1))
	require.Error(t, err)
	assert.Equal(t, apperror.CodeValidation, apperror.Code(err))
}

func TestGetProductAvailability(t *testing.T) {
	repo := newMemStockRepo()
	svc := NewService(repo)
	ctx := context.Background()
	productID := id.New()

	_, err := svc.Receive(ctx, id.New(), "Purchase", time.Now(), id.New(), productID, qty(4))
	require.NoError(t, err)
	_, err = svc.Receive(ctx, id.New(), "Purchase", time.Now(), id.New(), productID, qty(6))
	require.NoError(t, err)

	total, err := svc.GetProductAvailability(ctx, productID)
	require.NoError(t, err)
	assert.Equal(t, qty(10), total)
}
