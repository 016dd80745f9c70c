package inventory

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

type memCheckRepo struct {
	docs map[id.ID]*Check
}

func (r *memCheckRepo) Create(ctx context.Context, c *Check) error {
	r.docs[c.ID] = c
	return nil
}

func (r *memCheckRepo) Update(ctx context.Context, c *Check) error {
	r.docs[c.ID] = c
	return nil
}

func (r *memCheckRepo) GetByID(ctx context.Context, checkID id.ID) (*Check, error) {
	c, ok := r.docs[checkID]
	if !ok {
		return nil, apperror.NewNotFound("inventory check", checkID.String())
	}
	return c, nil
}

func (r *memCheckRepo) GetByIDForUpdate(ctx context.Context, checkID id.ID) (*Check, error) {
	return r.GetByID(ctx, checkID)
}

func (r *memCheckRepo) List(ctx context.Context, limit, offset int) ([]Check, int, error) {
	return nil, 0, nil
}

type balanceKey struct {
	warehouseID id.ID
	productID   id.ID
}

type memStockRepo struct {
	balances  map[balanceKey]types.Quantity
	movements []entity.StockMovement
}

func (r *memStockRepo) CreateMovements(ctx context.Context, movements []entity.StockMovement) error {
	r.movements = append(r.movements, movements...)
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
	return r.movements, nil
}

func (r *memStockRepo) GetTurnover(ctx context.Context, filter stock.TurnoverFilter) (stock.Turnover, error) {
	return stock.Turnover{}, nil
}

func newInventoryFixture() (*Service, *memStockRepo, *memOutbox) {
	stockRepo := &memStockRepo{balances: map[balanceKey]types.Quantity{}}
	outbox := &memOutbox{}
	svc := NewService(
		&memCheckRepo{docs: map[id.ID]*Check{}},
		stock.NewService(stockRepo),
		&numerator.MockGenerator{},
		passthroughTx{},
		outbox,
	)
	return svc, stockRepo, outbox
}

func TestApply_AdjustsBalancesOnce(t *testing.T) {
	svc, stockRepo, outbox := newInventoryFixture()
	wh := id.New()
	shortProduct, overProduct, exactProduct := id.New(), id.New(), id.New()

	stockRepo.balances[balanceKey{wh, shortProduct}] = types.NewQuantityFromInt(10)
	stockRepo.balances[balanceKey{wh, overProduct}] = types.NewQuantityFromInt(3)
	stockRepo.balances[balanceKey{wh, exactProduct}] = types.NewQuantityFromInt(7)

	actor := id.New()
	check, err := svc.Create(context.Background(), actor, CreateInput{
		WarehouseID: wh,
		Items: []ItemInput{
			{ProductID: shortProduct, CountedQty: types.NewQuantityFromInt(8)},
			{ProductID: overProduct, CountedQty: types.NewQuantityFromInt(5)},
			{ProductID: exactProduct, CountedQty: types.NewQuantityFromInt(7)},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, StatusDraft, check.Status)

	// Expected and delta snapshotted at counting time.
	assert.Equal(t, types.NewQuantityFromInt(10), check.Items[0].ExpectedQty)
	assert.Equal(t, types.NewQuantityFromInt(-2), check.Items[0].DeltaQty)
	assert.Equal(t, types.NewQuantityFromInt(3), check.Items[1].ExpectedQty)
	assert.Equal(t, types.NewQuantityFromInt(2), check.Items[1].DeltaQty)
	assert.True(t, check.Items[2].DeltaQty.IsZero())

	// Drafting touches nothing.
	assert.Equal(t, types.NewQuantityFromInt(10), stockRepo.balances[balanceKey{wh, shortProduct}])

	applied, err := svc.Apply(context.Background(), actor, check.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, applied.Status)
	require.NotNil(t, applied.AppliedAt)

	assert.Equal(t, types.NewQuantityFromInt(8), stockRepo.balances[balanceKey{wh, shortProduct}])
	assert.Equal(t, types.NewQuantityFromInt(5), stockRepo.balances[balanceKey{wh, overProduct}])
	assert.Equal(t, types.NewQuantityFromInt(7), stockRepo.balances[balanceKey{wh, exactProduct}])

	// The creation-time snapshot survives the apply untouched.
	assert.Equal(t, types.NewQuantityFromInt(10), applied.Items[0].ExpectedQty)
	assert.Equal(t, types.NewQuantityFromInt(-2), applied.Items[0].DeltaQty)
	assert.Equal(t, types.NewQuantityFromInt(2), applied.Items[1].DeltaQty)
	assert.True(t, applied.Items[2].DeltaQty.IsZero())

	require.Len(t, outbox.events, 1)
	assert.Equal(t, events.TypeInventoryApplied, outbox.events[0].Type)
}

func TestApply_Twice(t *testing.T) {
	svc, stockRepo, _ := newInventoryFixture()
	wh, productID := id.New(), id.New()
	stockRepo.balances[balanceKey{wh, productID}] = types.NewQuantityFromInt(10)

	actor := id.New()
	check, err := svc.Create(context.Background(), actor, CreateInput{
		WarehouseID: wh,
		Items: []ItemInput{
			{ProductID: productID, CountedQty: types.NewQuantityFromInt(6)},
		},
	})
	require.NoError(t, err)

	_, err = svc.Apply(context.Background(), actor, check.ID)
	require.NoError(t, err)
	assert.Equal(t, types.NewQuantityFromInt(6), stockRepo.balances[balanceKey{wh, productID}])

	// A second apply is rejected and the balance stays put.
	_, err = svc.Apply(context.Background(), actor, check.ID)
	require.Error(t, err)
	assert.Equal(t, apperror.CodeCheckCompleted, apperror.Code(err))
	assert.Equal(t, types.NewQuantityFromInt(6), stockRepo.balances[balanceKey{wh, productID}])
}

func TestCreate_SnapshotFrozenAgainstLaterMovements(t *testing.T) {
	svc, stockRepo, _ := newInventoryFixture()
	wh, productID := id.New(), id.New()
	stockRepo.balances[balanceKey{wh, productID}] = types.NewQuantityFromInt(10)

	actor := id.New()
	check, err := svc.Create(context.Background(), actor, CreateInput{
		WarehouseID: wh,
		Items: []ItemInput{
			{ProductID: productID, CountedQty: types.NewQuantityFromInt(9)},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, types.NewQuantityFromInt(10), check.Items[0].ExpectedQty)
	assert.Equal(t, types.NewQuantityFromInt(-1), check.Items[0].DeltaQty)

	// Stock moves between counting and applying.
	stockRepo.balances[balanceKey{wh, productID}] = types.NewQuantityFromInt(12)

	applied, err := svc.Apply(context.Background(), actor, check.ID)
	require.NoError(t, err)

	// The live balance lands on the count; the record keeps what the
	// counter saw.
	assert.Equal(t, types.NewQuantityFromInt(9), stockRepo.balances[balanceKey{wh, productID}])
	assert.Equal(t, types.NewQuantityFromInt(10), applied.Items[0].ExpectedQty)
	assert.Equal(t, types.NewQuantityFromInt(-1), applied.Items[0].DeltaQty)
}

func TestCreate_DuplicateProductRejected(t *testing.T) {
	svc, _, _ := newInventoryFixture()
	wh, productID := id.New(), id.New()

	_, err := svc.Create(context.Background(), id.New(), CreateInput{
		WarehouseID: wh,
		Items: []ItemInput{
			{ProductID: productID, CountedQty: types.NewQuantityFromInt(1)},
			{ProductID: productID, CountedQty: types.NewQuantityFromInt(2)},
		},
	})
	require.Error(t, err)
	assert.Equal(t, apperror.CodeValidation, apperror.Code(err))
}
