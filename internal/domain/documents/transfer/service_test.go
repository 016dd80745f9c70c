package transfer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"woodline/internal/core/apperror"
	"woodline/internal/core/entity"
	"woodline/internal/core/id"
	"woodline/internal/core/numerator"
	"woodline/internal/core/types"
	"woodline/internal/domain/events"
	"woodline/internal/domain/stock"
)

type passthroughTx struct{}

func (passthroughTx) RunInTransaction(ctx context.Context, fn func(context.Context) error) error {
	return fn(ctx)
}

type memOutbox struct {
	events []events.Event
}

func (o *memOutbox) Enqueue(ctx context.Context, evs ...events.Event) error {
	o.events = append(o.events, evs...)
	return nil
}

type memTransferRepo struct {
	docs map[id.ID]*Transfer
}

func (r *memTransferRepo) Create(ctx context.Context, t *Transfer) error {
	r.docs[t.ID] = t
	return nil
}

func (r *memTransferRepo) GetByID(ctx context.Context, transferID id.ID) (*Transfer, error) {
	t, ok := r.docs[transferID]
	if !ok {
		return nil, apperror.NewNotFound("transfer", transferID.String())
	}
	return t, nil
}

func (r *memTransferRepo) List(ctx context.Context, limit, offset int) ([]Transfer, int, error) {
	return nil, 0, nil
}

type balanceKey struct {
	warehouseID id.ID
	productID   id.ID
}

type memStockRepo struct {
	balances map[balanceKey]types.Quantity
}

func (r *memStockRepo) CreateMovements(ctx context.Context, movements []entity.StockMovement) error {
	return nil
}

func (r *memStockRepo) IncrementBalance(ctx context.Context, warehouseID, productID id.ID, qty types.Quantity) (types.Quantity, error) {
	k := balanceKey{warehouseID, productID}
	r.balances[k] += qty
	return r.balances[k], nil
}

func (r *memStockRepo) DecrementIfAvailable(ctx context.Context, warehouseID, productID id.ID, qty types.Quantity) (types.Quantity, error) {
	k := balanceKey{warehouseID, productID}
	if r.balances[k] < qty {
		return 0, apperror.NewInsufficientStock(productID.String(), qty.Float64(), r.balances[k].Float64())
	}
	r.balances[k] -= qty
	return r.balances[k], nil
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
	return nil, nil
}

func (r *memStockRepo) GetTurnover(ctx context.Context, filter stock.TurnoverFilter) (stock.Turnover, error) {
	return stock.Turnover{}, nil
}

func newTransferFixture() (*Service, *memStockRepo, *memOutbox) {
	stockRepo := &memStockRepo{balances: map[balanceKey]types.Quantity{}}
	outbox := &memOutbox{}
	svc := NewService(
		&memTransferRepo{docs: map[id.ID]*Transfer{}},
		stock.NewService(stockRepo),
		&numerator.MockGenerator{},
		passthroughTx{},
		outbox,
	)
	return svc, stockRepo, outbox
}

func TestCreate_MovesStockBetweenWarehouses(t *testing.T) {
	svc, stockRepo, outbox := newTransferFixture()
	depot, store, productID := id.New(), id.New(), id.New()
	stockRepo.balances[balanceKey{depot, productID}] = types.NewQuantityFromInt(5)

	doc, err := svc.Create(context.Background(), id.New(), CreateInput{
		FromWarehouseID: depot,
		ToWarehouseID:   store,
		Items: []ItemInput{
			{ProductID: productID, Quantity: types.NewQuantityFromInt(5)},
		},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, doc.Number)

	assert.Equal(t, types.NewQuantityFromInt(0), stockRepo.balances[balanceKey{depot, productID}])
	assert.Equal(t, types.NewQuantityFromInt(5), stockRepo.balances[balanceKey{store, productID}])

	require.Len(t, outbox.events, 1)
	assert.Equal(t, events.TypeStockTransferred, outbox.events[0].Type)
}

func TestCreate_ShortLineFailsWhole(t *testing.T) {
	svc, stockRepo, outbox := newTransferFixture()
	depot, store, productID := id.New(), id.New(), id.New()
	stockRepo.balances[balanceKey{depot, productID}] = types.NewQuantityFromInt(5)

	_, err := svc.Create(context.Background(), id.New(), CreateInput{
		FromWarehouseID: depot,
		ToWarehouseID:   store,
		Items: []ItemInput{
			{ProductID: productID, Quantity: types.NewQuantityFromInt(6)},
		},
	})
	require.Error(t, err)
	assert.Equal(t, apperror.CodeInsufficientStock, apperror.Code(err))

	// Neither side moved.
	assert.Equal(t, types.NewQuantityFromInt(5), stockRepo.balances[balanceKey{depot, productID}])
	assert.Equal(t, types.NewQuantityFromInt(0), stockRepo.balances[balanceKey{store, productID}])
	assert.Empty(t, outbox.events)
}

func TestCreate_SameWarehouseRejected(t *testing.T) {
	svc, _, _ := newTransferFixture()
	wh, productID := id.New(), id.New()

	_, err := svc.Create(context.Background(), id.New(), CreateInput{
		FromWarehouseID: wh,
		ToWarehouseID:   wh,
		Items: []ItemInput{
			{ProductID: productID, Quantity: types.NewQuantityFromInt(1)},
		},
	})
	require.Error(t, err)
	assert.Equal(t, apperror.CodeValidation, apperror.Code(err))
}
