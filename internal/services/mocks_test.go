package services

import (
	"context"

	"github.com/nimasrn/customer-ledger/internal/model"
	"github.com/nimasrn/customer-ledger/internal/notify"
	"github.com/nimasrn/customer-ledger/internal/repository"
	"github.com/stretchr/testify/mock"
)

type MockCustomerRepository struct {
	mock.Mock
}

func (m *MockCustomerRepository) Create(ctx context.Context, c *model.Customer) (*model.Customer, error) {
	args := m.Called(ctx, c)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Customer), args.Error(1)
}

func (m *MockCustomerRepository) FindByID(ctx context.Context, userID, id string) (*model.Customer, error) {
	args := m.Called(ctx, userID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Customer), args.Error(1)
}

func (m *MockCustomerRepository) FindByName(ctx context.Context, userID, name string) (*model.Customer, error) {
	args := m.Called(ctx, userID, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Customer), args.Error(1)
}

func (m *MockCustomerRepository) Search(ctx context.Context, userID, query string) ([]*model.Customer, error) {
	args := m.Called(ctx, userID, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Customer), args.Error(1)
}

func (m *MockCustomerRepository) Update(ctx context.Context, userID, id string, u model.CustomerUpdate) error {
	args := m.Called(ctx, userID, id, u)
	return args.Error(0)
}

func (m *MockCustomerRepository) Delete(ctx context.Context, userID, id string) error {
	args := m.Called(ctx, userID, id)
	return args.Error(0)
}

type MockTransactionRepository struct {
	mock.Mock
}

func (m *MockTransactionRepository) Create(ctx context.Context, txn *model.Transaction) (*model.Transaction, error) {
	args := m.Called(ctx, txn)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) FindByID(ctx context.Context, userID, id string) (*model.Transaction, error) {
	args := m.Called(ctx, userID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) List(ctx context.Context, f repository.TransactionFilter) ([]*model.Transaction, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) ListByCustomer(ctx context.Context, userID, customerID string) ([]*model.Transaction, error) {
	args := m.Called(ctx, userID, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) Update(ctx context.Context, userID, id string, u model.TransactionUpdate) error {
	args := m.Called(ctx, userID, id, u)
	return args.Error(0)
}

func (m *MockTransactionRepository) Delete(ctx context.Context, userID, id string) error {
	args := m.Called(ctx, userID, id)
	return args.Error(0)
}

func (m *MockTransactionRepository) DeleteByCustomer(ctx context.Context, userID, customerID string) (int64, error) {
	args := m.Called(ctx, userID, customerID)
	return args.Get(0).(int64), args.Error(1)
}

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Open(ctx context.Context, userID string, d notify.Draft) (*notify.Draft, error) {
	args := m.Called(ctx, userID, d)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*notify.Draft), args.Error(1)
}

type fakeNormalizer struct{}

func (fakeNormalizer) Normalize(s string) (string, error) {
	if s == "bad" {
		return "", errBadPhone
	}
	return "970" + s, nil
}

type passthroughTx struct{}

func (passthroughTx) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
