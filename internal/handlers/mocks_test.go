package handlers

import (
	"context"
	"time"

	"github.com/nimasrn/customer-ledger/internal/ledger"
	"github.com/nimasrn/customer-ledger/internal/model"
	"github.com/nimasrn/customer-ledger/internal/notify"
	"github.com/nimasrn/customer-ledger/internal/services"
	xhttp "github.com/nimasrn/customer-ledger/pkg/http"
	"github.com/stretchr/testify/mock"
	"github.com/valyala/fasthttp"
)

const testUser = "user-1"

type MockCustomerService struct {
	mock.Mock
}

func (m *MockCustomerService) Add(ctx context.Context, userID, name, phone string) (*model.Customer, error) {
	args := m.Called(ctx, userID, name, phone)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Customer), args.Error(1)
}

func (m *MockCustomerService) Find(ctx context.Context, userID, query string) ([]*model.Customer, error) {
	args := m.Called(ctx, userID, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Customer), args.Error(1)
}

func (m *MockCustomerService) Get(ctx context.Context, userID, id string) (*model.Customer, error) {
	args := m.Called(ctx, userID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Customer), args.Error(1)
}

func (m *MockCustomerService) Update(ctx context.Context, userID, id string, u model.CustomerUpdate) (*model.Customer, error) {
	args := m.Called(ctx, userID, id, u)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Customer), args.Error(1)
}

type MockLedger struct {
	mock.Mock
}

func (m *MockLedger) Record(ctx context.Context, req services.RecordRequest) (*services.RecordResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.RecordResult), args.Error(1)
}

func (m *MockLedger) CustomerBalance(ctx context.Context, userID, customerID string) (services.Balance, error) {
	args := m.Called(ctx, userID, customerID)
	return args.Get(0).(services.Balance), args.Error(1)
}

func (m *MockLedger) DeleteCustomer(ctx context.Context, userID, customerID string) (int64, error) {
	args := m.Called(ctx, userID, customerID)
	return args.Get(0).(int64), args.Error(1)
}

type MockTransactions struct {
	mock.Mock
}

func (m *MockTransactions) History(ctx context.Context, userID, customerID string, dir ledger.Direction) ([]*model.Transaction, error) {
	args := m.Called(ctx, userID, customerID, dir)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Transaction), args.Error(1)
}

func (m *MockTransactions) Edit(ctx context.Context, userID, id string, u model.TransactionUpdate) (*model.Transaction, error) {
	args := m.Called(ctx, userID, id, u)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Transaction), args.Error(1)
}

func (m *MockTransactions) Delete(ctx context.Context, userID, id string) (*model.Transaction, error) {
	args := m.Called(ctx, userID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Transaction), args.Error(1)
}

func (m *MockTransactions) Statistics(ctx context.Context, userID string, from, to time.Time) (ledger.Summary, error) {
	args := m.Called(ctx, userID, from, to)
	return args.Get(0).(ledger.Summary), args.Error(1)
}

type MockNotifications struct {
	mock.Mock
}

func (m *MockNotifications) Get(ctx context.Context, userID, id string) (*notify.Draft, error) {
	args := m.Called(ctx, userID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*notify.Draft), args.Error(1)
}

func (m *MockNotifications) Edit(ctx context.Context, userID, id string, edit notify.DraftEdit) (*notify.Draft, error) {
	args := m.Called(ctx, userID, id, edit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*notify.Draft), args.Error(1)
}

func (m *MockNotifications) Confirm(ctx context.Context, userID, id string) (notify.Outcome, error) {
	args := m.Called(ctx, userID, id)
	return args.Get(0).(notify.Outcome), args.Error(1)
}

func (m *MockNotifications) Cancel(ctx context.Context, userID, id string) (notify.Outcome, error) {
	args := m.Called(ctx, userID, id)
	return args.Get(0).(notify.Outcome), args.Error(1)
}

// setupTestContext builds a request as the router would hand it over: path
// params as user values and the caller already authenticated.
func setupTestContext(method, path string, body []byte, params ...string) *xhttp.RequestCtx {
	ctx := &fasthttp.RequestCtx{}
	ctx.Request.Header.SetMethod(method)
	ctx.Request.SetRequestURI(path)
	ctx.Request.Header.Set(HeaderUserID, testUser)
	if body != nil {
		ctx.Request.SetBody(body)
	}
	for i := 0; i+1 < len(params); i += 2 {
		ctx.SetUserValue(params[i], params[i+1])
	}
	ctx.SetUserValue(userIDKey, testUser)
	return ctx
}
