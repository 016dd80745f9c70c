package ledger

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

type regState struct {
	uzs types.Money
	usd types.Money
}

type memLedgerRepo struct {
	payments  map[id.ID]*Payment
	ops       []Op
	registers map[Register]*regState
}

func newMemLedgerRepo() *memLedgerRepo {
	return &memLedgerRepo{
		payments: map[id.ID]*Payment{},
		registers: map[Register]*regState{
			RegisterSales:   {uzs: types.ZeroMoney(), usd: types.ZeroMoney()},
			RegisterService: {uzs: types.ZeroMoney(), usd: types.ZeroMoney()},
		},
	}
}

func (r *memLedgerRepo) CreatePayment(ctx context.Context, p *Payment) error {
	r.payments[p.ID] = p
	return nil
}

func (r *memLedgerRepo) GetPayment(ctx context.Context, paymentID id.ID) (*Payment, error) {
	p, ok := r.payments[paymentID]
	if !ok {
		return nil, apperror.NewNotFound("payment", paymentID.String())
	}
	return p, nil
}

func (r *memLedgerRepo) ListPayments(ctx context.Context, filter PaymentFilter) ([]Payment, int, error) {
	return nil, 0, nil
}

func (r *memLedgerRepo) AdjustBalance(ctx context.Context, register Register, deltaUZS, deltaUSD types.Money) (types.Money, types.Money, error) {
	st := r.registers[register]
	newUZS := st.uzs.Add(deltaUZS)
	newUSD := st.usd.Add(deltaUSD)
	if newUZS.IsNegative() || newUSD.IsNegative() {
		return types.ZeroMoney(), types.ZeroMoney(),
			apperror.NewBusinessRule(apperror.CodeBusinessRule, "insufficient funds in register").
				WithDetail("register", string(register))
	}
	st.uzs = newUZS
	st.usd = newUSD
	return newUZS, newUSD, nil
}

func (r *memLedgerRepo) CreateOp(ctx context.Context, op *Op) error {
	r.ops = append(r.ops, *op)
	return nil
}

func (r *memLedgerRepo) ListOps(ctx context.Context, filter OpFilter) ([]Op, int, error) {
	return r.ops, len(r.ops), nil
}

func (r *memLedgerRepo) GetBalance(ctx context.Context, register Register) (*Balance, error) {
	st := r.registers[register]
	return &Balance{Register: register, BalanceUZS: st.uzs, BalanceUSD: st.usd, UpdatedAt: time.Now()}, nil
}

func (r *memLedgerRepo) GetBalances(ctx context.Context) ([]Balance, error) {
	return nil, nil
}

func (r *memLedgerRepo) SumPaymentsBySale(ctx context.Context, saleID id.ID) (types.Money, types.Money, error) {
	totalUZS := types.ZeroMoney()
	totalUSD := types.ZeroMoney()
	for _, p := range r.payments {
		if p.SaleID != nil && *p.SaleID == saleID {
			totalUZS = totalUZS.Add(p.AmountUZS)
			totalUSD = totalUSD.Add(p.AmountUSD)
		}
	}
	return totalUZS, totalUSD, nil
}

func newLedgerFixture() (*Service, *memLedgerRepo, *memOutbox) {
	repo := newMemLedgerRepo()
	outbox := &memOutbox{}
	svc := NewService(repo, &numerator.MockGenerator{}, passthroughTx{}, outbox)
	return svc, repo, outbox
}

func salesCashier() Actor   { return Actor{UserID: id.New(), Role: access.RoleSalesCashier} }
func serviceCashier() Actor { return Actor{UserID: id.New(), Role: access.RoleServiceCashier} }

func saleIncome(saleID id.ID, customerID id.ID, uzs string) PaymentInput {
	return PaymentInput{
		SaleID:     &saleID,
		CustomerID: customerID,
		Kind:       KindSaleIncome,
		Method:     MethodCash,
		AmountUZS:  types.MustMoney(uzs),
		AmountUSD:  types.ZeroMoney(),
	}
}

func TestReceivePayment_RegisterFollowsRole(t *testing.T) {
	svc, repo, outbox := newLedgerFixture()
	customerID := id.New()
	saleID := id.New()

	p1, err := svc.ReceivePayment(context.Background(), salesCashier(), saleIncome(saleID, customerID, "100000"))
	require.NoError(t, err)
	assert.Equal(t, RegisterSales, p1.Register)

	p2, err := svc.ReceivePayment(context.Background(), serviceCashier(), saleIncome(saleID, customerID, "50000"))
	require.NoError(t, err)
	assert.Equal(t, RegisterService, p2.Register)

	sales, _ := repo.GetBalance(context.Background(), RegisterSales)
	service, _ := repo.GetBalance(context.Background(), RegisterService)
	assert.True(t, sales.BalanceUZS.Equal(types.MustMoney("100000")))
	assert.True(t, service.BalanceUZS.Equal(types.MustMoney("50000")))

	require.Len(t, outbox.events, 2)
	assert.Equal(t, events.TypePaymentReceived, outbox.events[0].Type)
}

func TestReceivePayment_RunningBalance(t *testing.T) {
	svc, repo, _ := newLedgerFixture()
	customerID := id.New()
	saleID := id.New()

	amounts := []string{"100000", "250000", "50000"}
	expected := []string{"100000", "350000", "400000"}

	for i, amt := range amounts {
		_, err := svc.ReceivePayment(context.Background(), salesCashier(), saleIncome(saleID, customerID, amt))
		require.NoError(t, err)
		require.Len(t, repo.ops, i+1)
		assert.True(t, repo.ops[i].BalanceUZS.Equal(types.MustMoney(expected[i])),
			"op %d balance: got %s want %s", i, repo.ops[i].BalanceUZS, expected[i])
	}
}

func TestReceivePayment_Validation(t *testing.T) {
	svc, _, _ := newLedgerFixture()
	customerID := id.New()

	// Sale income without a sale.
	_, err := svc.ReceivePayment(context.Background(), salesCashier(), PaymentInput{
		CustomerID: customerID,
		Kind:       KindSaleIncome,
		Method:     MethodCash,
		AmountUZS:  types.MustMoney("1000"),
	})
	require.Error(t, err)
	assert.Equal(t, apperror.CodeValidation, apperror.Code(err))

	// Zero amount.
	_, err = svc.ReceivePayment(context.Background(), salesCashier(), PaymentInput{
		CustomerID: customerID,
		Kind:       KindAdvancePayment,
		Method:     MethodCash,
	})
	require.Error(t, err)
	assert.Equal(t, apperror.CodeValidation, apperror.Code(err))
}

func TestWithdraw_CannotOverdraw(t *testing.T) {
	svc, repo, _ := newLedgerFixture()
	customerID := id.New()
	saleID := id.New()

	_, err := svc.ReceivePayment(context.Background(), salesCashier(), saleIncome(saleID, customerID, "80000"))
	require.NoError(t, err)

	actor := salesCashier()
	_, err = svc.Withdraw(context.Background(), actor, RegisterSales, id.New(), types.MustMoney("100000"), types.ZeroMoney())
	require.Error(t, err)
	assert.Equal(t, apperror.CodeBusinessRule, apperror.Code(err))

	// Balance intact after the rejected withdrawal.
	bal, _ := repo.GetBalance(context.Background(), RegisterSales)
	assert.True(t, bal.BalanceUZS.Equal(types.MustMoney("80000")))

	op, err := svc.Withdraw(context.Background(), actor, RegisterSales, id.New(), types.MustMoney("30000"), types.ZeroMoney())
	require.NoError(t, err)
	assert.Equal(t, OpExpense, op.Type)
	assert.True(t, op.BalanceUZS.Equal(types.MustMoney("50000")))
}

func TestSaleOutstanding(t *testing.T) {
	svc, _, _ := newLedgerFixture()
	customerID := id.New()
	saleID := id.New()

	_, err := svc.ReceivePayment(context.Background(), salesCashier(), saleIncome(saleID, customerID, "300000"))
	require.NoError(t, err)

	outstanding, err := svc.SaleOutstanding(context.Background(), saleID, types.MustMoney("500000"))
	require.NoError(t, err)
	assert.True(t, outstanding.Equal(types.MustMoney("200000")))

	// Overpaid sales report zero, not negative.
	outstanding, err = svc.SaleOutstanding(context.Background(), saleID, types.MustMoney("250000"))
	require.NoError(t, err)
	assert.True(t, outstanding.IsZero())
}
