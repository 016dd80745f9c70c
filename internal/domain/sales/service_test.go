package sales

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
	"woodline/internal/domain/catalogs/product"
	"woodline/internal/domain/catalogs/rates"
	"woodline/internal/domain/catalogs/servicetype"
	"woodline/internal/domain/events"
	"woodline/internal/domain/stock"
	"woodline/internal/domain/workshop"
)

// --- test doubles ---

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

func (o *memOutbox) byType(t string) []events.Event {
	var out []events.Event
	for _, ev := range o.events {
		if ev.Type == t {
			out = append(out, ev)
		}
	}
	return out
}

type memSaleRepo struct {
	sales map[id.ID]*Sale
}

func newMemSaleRepo() *memSaleRepo { return &memSaleRepo{sales: map[id.ID]*Sale{}} }

func (r *memSaleRepo) Create(ctx context.Context, s *Sale) error {
	r.sales[s.ID] = s
	return nil
}

func (r *memSaleRepo) Update(ctx context.Context, s *Sale) error {
	r.sales[s.ID] = s
	return nil
}

func (r *memSaleRepo) GetByID(ctx context.Context, saleID id.ID) (*Sale, error) {
	s, ok := r.sales[saleID]
	if !ok {
		return nil, apperror.NewNotFound("sale", saleID.String())
	}
	return s, nil
}

func (r *memSaleRepo) GetByIDForUpdate(ctx context.Context, saleID id.ID) (*Sale, error) {
	return r.GetByID(ctx, saleID)
}

func (r *memSaleRepo) List(ctx context.Context, filter Filter) ([]Sale, int, error) {
	var out []Sale
	for _, s := range r.sales {
		out = append(out, *s)
	}
	return out, len(out), nil
}

type memProductRepo struct {
	products map[id.ID]*product.Product
}

func (r *memProductRepo) Create(ctx context.Context, p *product.Product) error { return nil }
func (r *memProductRepo) Update(ctx context.Context, p *product.Product) error { return nil }
func (r *memProductRepo) GetByID(ctx context.Context, productID id.ID) (*product.Product, error) {
	p, ok := r.products[productID]
	if !ok {
		return nil, apperror.NewNotFound("product", productID.String())
	}
	return p, nil
}
func (r *memProductRepo) GetByBarcode(ctx context.Context, barcode string) (*product.Product, error) {
	return nil, apperror.NewNotFound("product", barcode)
}
func (r *memProductRepo) GetByIDs(ctx context.Context, ids []id.ID) (map[id.ID]*product.Product, error) {
	out := map[id.ID]*product.Product{}
	for _, pid := range ids {
		if p, ok := r.products[pid]; ok {
			out[pid] = p
		}
	}
	return out, nil
}
func (r *memProductRepo) List(ctx context.Context, filter product.Filter) ([]product.Product, int, error) {
	return nil, 0, nil
}
func (r *memProductRepo) UpdateCost(ctx context.Context, productID id.ID, cost string) error {
	return nil
}

type memServiceTypeRepo struct {
	services map[id.ID]*servicetype.ServiceType
}

func (r *memServiceTypeRepo) Create(ctx context.Context, st *servicetype.ServiceType) error { return nil }
func (r *memServiceTypeRepo) Update(ctx context.Context, st *servicetype.ServiceType) error { return nil }
func (r *memServiceTypeRepo) GetByID(ctx context.Context, stID id.ID) (*servicetype.ServiceType, error) {
	st, ok := r.services[stID]
	if !ok {
		return nil, apperror.NewNotFound("service type", stID.String())
	}
	return st, nil
}
func (r *memServiceTypeRepo) GetByIDs(ctx context.Context, ids []id.ID) (map[id.ID]*servicetype.ServiceType, error) {
	out := map[id.ID]*servicetype.ServiceType{}
	for _, sid := range ids {
		if st, ok := r.services[sid]; ok {
			out[sid] = st
		}
	}
	return out, nil
}
func (r *memServiceTypeRepo) List(ctx context.Context, includeInactive bool) ([]servicetype.ServiceType, error) {
	return nil, nil
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

type memTaskRepo struct {
	tasks map[id.ID]*workshop.Task
}

func newMemTaskRepo() *memTaskRepo { return &memTaskRepo{tasks: map[id.ID]*workshop.Task{}} }

func (r *memTaskRepo) Create(ctx context.Context, t *workshop.Task) error {
	r.tasks[t.ID] = t
	return nil
}
func (r *memTaskRepo) Update(ctx context.Context, t *workshop.Task) error {
	r.tasks[t.ID] = t
	return nil
}
func (r *memTaskRepo) GetByID(ctx context.Context, taskID id.ID) (*workshop.Task, error) {
	t, ok := r.tasks[taskID]
	if !ok {
		return nil, apperror.NewNotFound("task", taskID.String())
	}
	return t, nil
}
func (r *memTaskRepo) GetByIDForUpdate(ctx context.Context, taskID id.ID) (*workshop.Task, error) {
	return r.GetByID(ctx, taskID)
}
func (r *memTaskRepo) GetBySale(ctx context.Context, saleID id.ID) ([]workshop.Task, error) {
	var out []workshop.Task
	for _, t := range r.tasks {
		if t.SaleID == saleID {
			out = append(out, *t)
		}
	}
	return out, nil
}
func (r *memTaskRepo) List(ctx context.Context, filter workshop.Filter) ([]workshop.Task, int, error) {
	return nil, 0, nil
}

type noopFlagger struct{ flagged []id.ID }

func (f *noopFlagger) MarkWorkshopDone(ctx context.Context, saleID id.ID) error {
	f.flagged = append(f.flagged, saleID)
	return nil
}

// --- fixture ---

type fixture struct {
	svc       *Service
	saleRepo  *memSaleRepo
	products  *memProductRepo
	services  *memServiceTypeRepo
	stockRepo *memStockRepo
	taskRepo  *memTaskRepo
	outbox    *memOutbox
	warehouse id.ID
	customer  id.ID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	saleRepo := newMemSaleRepo()
	productRepo := &memProductRepo{products: map[id.ID]*product.Product{}}
	serviceTypeRepo := &memServiceTypeRepo{services: map[id.ID]*servicetype.ServiceType{}}
	stockRepo := newMemStockRepo()
	taskRepo := newMemTaskRepo()
	outbox := &memOutbox{}
	gen := &numerator.MockGenerator{}
	txm := passthroughTx{}

	workshopSvc := workshop.NewService(taskRepo, &noopFlagger{}, gen, txm, outbox)
	stockSvc := stock.NewService(stockRepo)

	svc := NewService(saleRepo, productRepo, serviceTypeRepo, stockSvc, workshopSvc, gen, txm, outbox)

	return &fixture{
		svc:       svc,
		saleRepo:  saleRepo,
		products:  productRepo,
		services:  serviceTypeRepo,
		stockRepo: stockRepo,
		taskRepo:  taskRepo,
		outbox:    outbox,
		warehouse: id.New(),
		customer:  id.New(),
	}
}

func (f *fixture) addProduct(t *testing.T, name, price, minPrice string, threshold int, onHand int) *product.Product {
	t.Helper()
	p := product.New("", name)
	p.PriceUZS = types.MustMoney(price)
	p.MinPriceUZS = types.MustMoney(minPrice)
	p.LowStockThreshold = types.NewQuantityFromInt(int64(threshold))
	f.products.products[p.ID] = p
	if onHand > 0 {
		f.stockRepo.balances[balanceKey{f.warehouse, p.ID}] = types.NewQuantityFromInt(int64(onHand))
	}
	return p
}

func (f *fixture) addService(t *testing.T, name, price string, requiresWorkshop bool) *servicetype.ServiceType {
	t.Helper()
	st := servicetype.New(name, types.MustMoney(price), requiresWorkshop)
	f.services.services[st.ID] = st
	return st
}

func testRate(value string) *rates.Rate {
	return rates.New(types.MustMoney(value), time.Now(), id.New())
}

func cashier() Actor { return Actor{UserID: id.New(), Role: access.RoleSalesCashier} }
func owner() Actor   { return Actor{UserID: id.New(), Role: access.RoleOwner} }

// --- tests ---

func TestCreate_TotalsBothCurrencies(t *testing.T) {
	f := newFixture(t)
	p := f.addProduct(t, "Sofa Verona", "50000", "40000", 0, 100)

	actor := cashier()
	sale, err := f.svc.Create(context.Background(), actor, CreateInput{
		CustomerID:  f.customer,
		WarehouseID: f.warehouse,
		Items: []CreateItemInput{
			{Kind: KindProduct, ProductID: &p.ID, Quantity: types.NewQuantityFromInt(3)},
		},
	}, testRate("12500"))
	require.NoError(t, err)

	assert.Equal(t, StatusOpen, sale.Status)
	assert.Equal(t, actor.UserID, sale.CreatedBy)
	assert.True(t, sale.TotalUZS.Equal(types.MustMoney("150000")), "got %s", sale.TotalUZS)
	// 150000 / 12500 = 12 USD
	assert.True(t, sale.TotalUSD.Equal(types.MustMoney("12")), "got %s", sale.TotalUSD)
	assert.True(t, sale.RateUZS.Equal(types.MustMoney("12500")))
	assert.NotEmpty(t, sale.Number)

	// Stock untouched before completion.
	bal := f.stockRepo.balances[balanceKey{f.warehouse, p.ID}]
	assert.Equal(t, types.NewQuantityFromInt(100), bal)

	require.Len(t, f.outbox.byType(events.TypeSaleCreated), 1)
}

func TestCreate_NoRate(t *testing.T) {
	f := newFixture(t)
	p := f.addProduct(t, "Chair", "80000", "0", 0, 10)

	_, err := f.svc.Create(context.Background(), cashier(), CreateInput{
		CustomerID:  f.customer,
		WarehouseID: f.warehouse,
		Items: []CreateItemInput{
			{Kind: KindProduct, ProductID: &p.ID, Quantity: types.NewQuantityFromInt(1)},
		},
	}, nil)

	require.Error(t, err)
	assert.Equal(t, apperror.CodeNoExchangeRate, apperror.Code(err))
}

func TestCreate_FloorPrice(t *testing.T) {
	f := newFixture(t)
	p := f.addProduct(t, "Wardrobe Oslo", "900000", "800000", 0, 5)

	input := CreateInput{
		CustomerID:  f.customer,
		WarehouseID: f.warehouse,
		Items: []CreateItemInput{
			{
				Kind:         KindProduct,
				ProductID:    &p.ID,
				Quantity:     types.NewQuantityFromInt(1),
				UnitPriceUZS: types.MustMoney("750000"),
			},
		},
	}

	// Cashier cannot discount below the floor.
	_, err := f.svc.Create(context.Background(), cashier(), input, testRate("12500"))
	require.Error(t, err)
	assert.Equal(t, apperror.CodeBelowMinimumPrice, apperror.Code(err))
	assert.Equal(t, 403, apperror.GetHTTPStatus(err))

	// The owner can.
	sale, err := f.svc.Create(context.Background(), owner(), input, testRate("12500"))
	require.NoError(t, err)
	assert.True(t, sale.TotalUZS.Equal(types.MustMoney("750000")))
}

func TestCreate_ServiceSpawnsWorkshopTask(t *testing.T) {
	f := newFixture(t)
	repair := f.addService(t, "Upholstery repair", "200000", true)
	delivery := f.addService(t, "Delivery", "50000", false)

	sale, err := f.svc.Create(context.Background(), cashier(), CreateInput{
		CustomerID: f.customer,
		Items: []CreateItemInput{
			{Kind: KindService, ServiceTypeID: &repair.ID, Quantity: types.NewQuantityFromInt(1), Description: "tear in left armrest"},
			{Kind: KindService, ServiceTypeID: &delivery.ID, Quantity: types.NewQuantityFromInt(1)},
		},
	}, testRate("12500"))
	require.NoError(t, err)

	assert.True(t, sale.HasWorkshop)

	tasks, err := f.taskRepo.GetBySale(context.Background(), sale.ID)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "Upholstery repair", tasks[0].ServiceName)
	assert.Equal(t, workshop.StatusPending, tasks[0].Status)
	assert.Equal(t, "tear in left armrest", tasks[0].Description)

	require.Len(t, f.outbox.byType(events.TypeWorkshopTaskCreated), 1)
}

func TestCreate_OneTaskPerSale(t *testing.T) {
	f := newFixture(t)
	repair := f.addService(t, "Upholstery repair", "200000", true)
	polish := f.addService(t, "Polishing", "80000", true)

	sale, err := f.svc.Create(context.Background(), cashier(), CreateInput{
		CustomerID: f.customer,
		Items: []CreateItemInput{
			{Kind: KindService, ServiceTypeID: &repair.ID, Quantity: types.NewQuantityFromInt(1)},
			{Kind: KindService, ServiceTypeID: &polish.ID, Quantity: types.NewQuantityFromInt(1)},
		},
	}, testRate("12500"))
	require.NoError(t, err)

	assert.True(t, sale.HasWorkshop)

	// Two workshop lines, one task for the whole sale.
	tasks, err := f.taskRepo.GetBySale(context.Background(), sale.ID)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "Upholstery repair", tasks[0].ServiceName)
	require.Len(t, f.outbox.byType(events.TypeWorkshopTaskCreated), 1)
}

func TestCreate_AssignedTechnicianSkipsWorkshop(t *testing.T) {
	f := newFixture(t)
	repair := f.addService(t, "Upholstery repair", "200000", true)
	master := id.New()

	sale, err := f.svc.Create(context.Background(), cashier(), CreateInput{
		CustomerID: f.customer,
		Items: []CreateItemInput{
			{Kind: KindService, ServiceTypeID: &repair.ID, Quantity: types.NewQuantityFromInt(1), TechnicianID: &master},
		},
	}, testRate("12500"))
	require.NoError(t, err)

	assert.False(t, sale.HasWorkshop)
	require.NotNil(t, sale.Items[0].TechnicianID)
	assert.Equal(t, master, *sale.Items[0].TechnicianID)

	tasks, err := f.taskRepo.GetBySale(context.Background(), sale.ID)
	require.NoError(t, err)
	assert.Empty(t, tasks)
}

func TestCreate_ExplicitDollarPrice(t *testing.T) {
	f := newFixture(t)
	p := f.addProduct(t, "Sofa Verona", "50000", "0", 0, 10)

	sale, err := f.svc.Create(context.Background(), cashier(), CreateInput{
		CustomerID:  f.customer,
		WarehouseID: f.warehouse,
		Items: []CreateItemInput{
			{
				Kind:         KindProduct,
				ProductID:    &p.ID,
				Quantity:     types.NewQuantityFromInt(2),
				UnitPriceUSD: types.MustMoney("5"),
			},
		},
	}, testRate("12500"))
	require.NoError(t, err)

	// The dollar price is taken as given, not derived from the rate.
	assert.True(t, sale.TotalUZS.Equal(types.MustMoney("100000")), "got %s", sale.TotalUZS)
	assert.True(t, sale.TotalUSD.Equal(types.MustMoney("10")), "got %s", sale.TotalUSD)
}

func TestCreate_WalkInFreeTextService(t *testing.T) {
	f := newFixture(t)

	sale, err := f.svc.Create(context.Background(), cashier(), CreateInput{
		Items: []CreateItemInput{
			{
				Kind:         KindService,
				ServiceName:  "Drawer rail adjustment",
				Quantity:     types.NewQuantityFromInt(1),
				UnitPriceUZS: types.MustMoney("60000"),
			},
		},
	}, testRate("12500"))
	require.NoError(t, err)

	assert.True(t, id.IsNil(sale.CustomerID))
	assert.True(t, sale.HasWorkshop)
	assert.Equal(t, "Drawer rail adjustment", sale.Items[0].Name)

	tasks, err := f.taskRepo.GetBySale(context.Background(), sale.ID)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "Drawer rail adjustment", tasks[0].ServiceName)
}

func TestCreate_ServiceLineNeedsTypeOrName(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Create(context.Background(), cashier(), CreateInput{
		CustomerID: f.customer,
		Items: []CreateItemInput{
			{Kind: KindService, Quantity: types.NewQuantityFromInt(1)},
		},
	}, testRate("12500"))
	require.Error(t, err)
	assert.Equal(t, apperror.CodeValidation, apperror.Code(err))
}

func TestComplete_IssuesStockAndFiresLowStockAlert(t *testing.T) {
	f := newFixture(t)
	p := f.addProduct(t, "Table Milano", "300000", "0", 10, 12)

	sale, err := f.svc.Create(context.Background(), cashier(), CreateInput{
		CustomerID:  f.customer,
		WarehouseID: f.warehouse,
		Items: []CreateItemInput{
			{Kind: KindProduct, ProductID: &p.ID, Quantity: types.NewQuantityFromInt(5)},
		},
	}, testRate("12500"))
	require.NoError(t, err)

	done, err := f.svc.Complete(context.Background(), cashier(), sale.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, done.Status)
	require.NotNil(t, done.CompletedAt)

	// 12 - 5 = 7, at or below the threshold of 10.
	bal := f.stockRepo.balances[balanceKey{f.warehouse, p.ID}]
	assert.Equal(t, types.NewQuantityFromInt(7), bal)

	low := f.outbox.byType(events.TypeStockLow)
	require.Len(t, low, 1)
	assert.Equal(t, events.RoomBoss, low[0].Room)

	require.Len(t, f.outbox.byType(events.TypeSaleCompleted), 1)
}

func TestComplete_ZeroThresholdNeverAlerts(t *testing.T) {
	f := newFixture(t)
	p := f.addProduct(t, "Mirror", "100000", "0", 0, 3)

	sale, err := f.svc.Create(context.Background(), cashier(), CreateInput{
		CustomerID:  f.customer,
		WarehouseID: f.warehouse,
		Items: []CreateItemInput{
			{Kind: KindProduct, ProductID: &p.ID, Quantity: types.NewQuantityFromInt(3)},
		},
	}, testRate("12500"))
	require.NoError(t, err)

	_, err = f.svc.Complete(context.Background(), cashier(), sale.ID)
	require.NoError(t, err)

	assert.Empty(t, f.outbox.byType(events.TypeStockLow))
}

func TestComplete_InsufficientStock(t *testing.T) {
	f := newFixture(t)
	p := f.addProduct(t, "Bed Frame", "500000", "0", 0, 2)

	sale, err := f.svc.Create(context.Background(), cashier(), CreateInput{
		CustomerID:  f.customer,
		WarehouseID: f.warehouse,
		Items: []CreateItemInput{
			{Kind: KindProduct, ProductID: &p.ID, Quantity: types.NewQuantityFromInt(3)},
		},
	}, testRate("12500"))
	require.NoError(t, err)

	_, err = f.svc.Complete(context.Background(), cashier(), sale.ID)
	require.Error(t, err)
	assert.Equal(t, apperror.CodeInsufficientStock, apperror.Code(err))

	// Balance untouched by the failed issue.
	bal := f.stockRepo.balances[balanceKey{f.warehouse, p.ID}]
	assert.Equal(t, types.NewQuantityFromInt(2), bal)
}

func TestComplete_Twice(t *testing.T) {
	f := newFixture(t)
	p := f.addProduct(t, "Shelf", "150000", "0", 0, 10)

	sale, err := f.svc.Create(context.Background(), cashier(), CreateInput{
		CustomerID:  f.customer,
		WarehouseID: f.warehouse,
		Items: []CreateItemInput{
			{Kind: KindProduct, ProductID: &p.ID, Quantity: types.NewQuantityFromInt(1)},
		},
	}, testRate("12500"))
	require.NoError(t, err)

	_, err = f.svc.Complete(context.Background(), cashier(), sale.ID)
	require.NoError(t, err)

	_, err = f.svc.Complete(context.Background(), cashier(), sale.ID)
	require.Error(t, err)
	assert.Equal(t, apperror.CodeSaleFinalized, apperror.Code(err))
	assert.Equal(t, 400, apperror.GetHTTPStatus(err))

	// Stock issued exactly once.
	bal := f.stockRepo.balances[balanceKey{f.warehouse, p.ID}]
	assert.Equal(t, types.NewQuantityFromInt(9), bal)
}

func TestCancel_VoidsOpenSaleAndTasks(t *testing.T) {
	f := newFixture(t)
	repair := f.addService(t, "Leg replacement", "120000", true)

	sale, err := f.svc.Create(context.Background(), cashier(), CreateInput{
		CustomerID: f.customer,
		Items: []CreateItemInput{
			{Kind: KindService, ServiceTypeID: &repair.ID, Quantity: types.NewQuantityFromInt(1)},
		},
	}, testRate("12500"))
	require.NoError(t, err)

	cancelled, err := f.svc.Cancel(context.Background(), cashier(), sale.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, cancelled.Status)

	tasks, err := f.taskRepo.GetBySale(context.Background(), sale.ID)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, workshop.StatusCancelled, tasks[0].Status)

	// A cancelled sale cannot be completed.
	_, err = f.svc.Complete(context.Background(), cashier(), sale.ID)
	require.Error(t, err)
	assert.Equal(t, apperror.CodeSaleFinalized, apperror.Code(err))
}
