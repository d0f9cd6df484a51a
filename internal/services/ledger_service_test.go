package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	gateway "github.com/nimasrn/customer-ledger/internal/gateways"
	"github.com/nimasrn/customer-ledger/internal/model"
	"github.com/nimasrn/customer-ledger/internal/notify"
	"github.com/nimasrn/customer-ledger/internal/phone"
	"github.com/nimasrn/customer-ledger/internal/repository"
	"github.com/nimasrn/customer-ledger/pkg/redis"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type stack struct {
	ledger    *LedgerService
	customers *CustomerDirectory
	writer    *TransactionWriter
	gateway   *notify.Gateway
	txnRepo   *repository.TransactionRepository
}

type stubTransport struct{}

func (stubTransport) Send(context.Context, string, string) (gateway.Result, error) {
	return gateway.Result{Delivery: gateway.DeliveryDelivered}, nil
}

func setupStack(t *testing.T) *stack {
	t.Helper()
	db := repository.SetupTestDB(t).DB
	customerRepo := repository.NewCustomerRepository(db)
	txnRepo := repository.NewTransactionRepository(db)

	mr := miniredis.RunT(t)
	rdb, err := redis.NewRedisAdapter("services-"+t.Name(), "test:", &redis.Options{Addrs: []string{mr.Addr()}})
	require.NoError(t, err)

	customers := NewCustomerDirectory(customerRepo, phone.Normalizer{})
	writer := NewTransactionWriter(txnRepo, customerRepo, NewMonotonicClock())
	gw := notify.NewGateway(notify.NewRedisDraftStore(rdb, time.Minute, time.Second), stubTransport{}, phone.Normalizer{})

	return &stack{
		ledger:    NewLedgerService(db, customers, writer, gw),
		customers: customers,
		writer:    writer,
		gateway:   gw,
		txnRepo:   txnRepo,
	}
}

func TestLedgerService_BalanceScenario(t *testing.T) {
	s := setupStack(t)
	ctx := context.Background()

	c, err := s.customers.Add(ctx, "u1", "Ahmad", "0599123456")
	require.NoError(t, err)

	record := func(kind model.Kind, sub model.Subkind, amount int64, desc string) *RecordResult {
		res, err := s.ledger.Record(ctx, RecordRequest{
			UserID: "u1", CustomerID: c.ID, Kind: kind, Subkind: sub,
			Amount: decimal.NewFromInt(amount), Description: desc,
		})
		require.NoError(t, err)
		return res
	}

	record(model.KindDebt, model.SubkindOnAccount, 100, "groceries")
	res := record(model.KindPayment, model.SubkindNone, 40, "")
	assert.Equal(t, "60", res.Balance.Value.String())
	assert.Equal(t, "دين", res.Balance.Label)

	res = record(model.KindDebt, model.SubkindCash, 500, "tv")
	assert.Equal(t, "60", res.Balance.Value.String())
	require.NotNil(t, res.Draft)
	assert.Contains(t, res.Draft.Message, "تم تسجيل عملية شراء كاش بقيمة 500.00 شيكل")
	assert.True(t, strings.HasSuffix(res.Draft.Message, "رصيدك الحالي: 60.00 شيكل دين"))
	assert.Equal(t, "970599123456", res.Draft.Phone)
	assert.Equal(t, res.Transaction.ID, res.Draft.TransactionID)

	res = record(model.KindPayment, model.SubkindNone, 60, "")
	assert.True(t, res.Balance.Value.IsZero())

	b, err := s.ledger.CustomerBalance(ctx, "u1", c.ID)
	require.NoError(t, err)
	assert.True(t, b.Value.IsZero())

	again, _, err := s.writer.Recompute(ctx, "u1", c.ID)
	require.NoError(t, err)
	assert.True(t, again.IsZero())
}

func TestLedgerService_ConfirmFlow(t *testing.T) {
	s := setupStack(t)
	ctx := context.Background()

	c, err := s.customers.Add(ctx, "u1", "Mona", "0568000111")
	require.NoError(t, err)

	res, err := s.ledger.Record(ctx, RecordRequest{UserID: "u1", CustomerID: c.ID, Kind: model.KindPayment, Amount: decimal.NewFromInt(20)})
	require.NoError(t, err)
	require.NotNil(t, res.Draft)
	assert.Equal(t, "20", res.Draft.BalanceAfter.Neg().String())
	assert.True(t, strings.HasSuffix(res.Draft.Message, "20.00 شيكل رصيد"))

	outcome, err := s.gateway.Confirm(ctx, "u1", res.Draft.ID)
	require.NoError(t, err)
	assert.True(t, outcome.Success)
}

func TestLedgerService_NoPhoneNoDraft(t *testing.T) {
	s := setupStack(t)
	ctx := context.Background()

	res, err := s.ledger.Record(ctx, RecordRequest{
		UserID: "u1", CustomerName: "Walk-in", Kind: model.KindDebt, Subkind: model.SubkindOnAccount,
		Amount: decimal.RequireFromString("12.75"), Description: "bread",
	})
	require.NoError(t, err)
	assert.True(t, res.CustomerCreated)
	assert.Nil(t, res.Draft)
	assert.Equal(t, "12.75", res.Balance.Value.String())

	again, err := s.ledger.Record(ctx, RecordRequest{
		UserID: "u1", CustomerName: "Walk-in", Kind: model.KindPayment, Amount: decimal.RequireFromString("2.75"),
	})
	require.NoError(t, err)
	assert.False(t, again.CustomerCreated)
	assert.Equal(t, res.Customer.ID, again.Customer.ID)
	assert.Equal(t, "10", again.Balance.Value.String())
}

func TestLedgerService_RecordValidation(t *testing.T) {
	s := setupStack(t)
	ctx := context.Background()

	_, err := s.ledger.Record(ctx, RecordRequest{
		UserID: "u1", CustomerName: "Ghost", Kind: model.KindDebt, Subkind: model.SubkindCash,
		Amount: decimal.NewFromInt(5), Description: "",
	})
	assert.True(t, model.IsValidation(err))

	found, err := s.customers.Find(ctx, "u1", "")
	require.NoError(t, err)
	assert.Empty(t, found, "an invalid record must not create its customer")

	_, err = s.ledger.Record(ctx, RecordRequest{UserID: "u1", Kind: model.KindPayment, Amount: decimal.NewFromInt(5)})
	assert.True(t, model.IsValidation(err))

	_, err = s.ledger.Record(ctx, RecordRequest{UserID: "u1", CustomerID: "missing", Kind: model.KindPayment, Amount: decimal.NewFromInt(5)})
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestLedgerService_DeleteCustomerCascades(t *testing.T) {
	s := setupStack(t)
	ctx := context.Background()

	c, err := s.customers.Add(ctx, "u1", "Ahmad", "")
	require.NoError(t, err)
	other, err := s.customers.Add(ctx, "u1", "Mona", "")
	require.NoError(t, err)

	for _, amount := range []int64{10, 20, 30} {
		_, err := s.ledger.Record(ctx, RecordRequest{UserID: "u1", CustomerID: c.ID, Kind: model.KindPayment, Amount: decimal.NewFromInt(amount)})
		require.NoError(t, err)
	}
	_, err = s.ledger.Record(ctx, RecordRequest{UserID: "u1", CustomerID: other.ID, Kind: model.KindPayment, Amount: decimal.NewFromInt(1)})
	require.NoError(t, err)

	removed, err := s.ledger.DeleteCustomer(ctx, "u1", c.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), removed)

	left, err := s.txnRepo.ListByCustomer(ctx, "u1", c.ID)
	require.NoError(t, err)
	assert.Empty(t, left)

	_, err = s.customers.Get(ctx, "u1", c.ID)
	assert.ErrorIs(t, err, model.ErrNotFound)

	kept, err := s.txnRepo.ListByCustomer(ctx, "u1", other.ID)
	require.NoError(t, err)
	assert.Len(t, kept, 1)

	_, err = s.ledger.DeleteCustomer(ctx, "u1", c.ID)
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestLedgerService_Statistics(t *testing.T) {
	s := setupStack(t)
	ctx := context.Background()

	c, err := s.customers.Add(ctx, "u1", "Ahmad", "")
	require.NoError(t, err)
	for _, req := range []RecordRequest{
		{Kind: model.KindDebt, Subkind: model.SubkindOnAccount, Amount: decimal.NewFromInt(100), Description: "a"},
		{Kind: model.KindDebt, Subkind: model.SubkindCash, Amount: decimal.NewFromInt(25), Description: "b"},
		{Kind: model.KindPayment, Amount: decimal.NewFromInt(30)},
	} {
		req.UserID, req.CustomerID = "u1", c.ID
		_, err := s.ledger.Record(ctx, req)
		require.NoError(t, err)
	}

	today := time.Now().UTC()
	sum, err := s.writer.Statistics(ctx, "u1", today, today)
	require.NoError(t, err)
	assert.Equal(t, 3, sum.Count)
	assert.Equal(t, "100", sum.TotalDebts.String())
	assert.Equal(t, "25", sum.TotalCash.String())
	assert.Equal(t, "30", sum.TotalPayments.String())
	assert.Equal(t, "70", sum.NetBalance.String())

	past, err := s.writer.Statistics(ctx, "u1", today.AddDate(0, 0, -10), today.AddDate(0, 0, -5))
	require.NoError(t, err)
	assert.Zero(t, past.Count)
}

func TestLedgerService_NotificationFailureKeepsTransaction(t *testing.T) {
	customers := new(MockCustomerRepository)
	txns := new(MockTransactionRepository)
	notifier := new(MockNotifier)
	ctx := context.Background()

	c := &model.Customer{ID: "c1", UserID: "u1", Name: "Ahmad", Phone: "970599123456"}
	customers.On("FindByID", mock.Anything, "u1", "c1").Return(c, nil)
	created := &model.Transaction{ID: "t1", UserID: "u1", CustomerID: "c1", CustomerName: "Ahmad", Kind: model.KindPayment, Amount: decimal.NewFromInt(5)}
	txns.On("Create", mock.Anything, mock.Anything).Return(created, nil)
	txns.On("ListByCustomer", mock.Anything, "u1", "c1").Return([]*model.Transaction{created}, nil)
	notifier.On("Open", mock.Anything, "u1", mock.Anything).Return(nil, errors.New("redis down"))

	svc := NewLedgerService(passthroughTx{},
		NewCustomerDirectory(customers, fakeNormalizer{}),
		NewTransactionWriter(txns, customers, nil),
		notifier)

	res, err := svc.Record(ctx, RecordRequest{UserID: "u1", CustomerID: "c1", Kind: model.KindPayment, Amount: decimal.NewFromInt(5)})
	require.NoError(t, err)
	assert.Equal(t, "t1", res.Transaction.ID)
	assert.Nil(t, res.Draft)
	assert.Equal(t, "redis down", res.NotificationError)
	assert.Equal(t, "-5", res.Balance.Value.String())
	assert.Equal(t, "رصيد", res.Balance.Label)
}
