package services

import (
	"context"
	"strings"
	"time"

	"github.com/nimasrn/customer-ledger/internal/ledger"
	"github.com/nimasrn/customer-ledger/internal/model"
	"github.com/nimasrn/customer-ledger/internal/repository"
	"github.com/nimasrn/customer-ledger/pkg/logger"
	"github.com/nimasrn/customer-ledger/pkg/pg"
	"github.com/nimasrn/customer-ledger/pkg/prom"
	"github.com/shopspring/decimal"
)

type TransactionRepository interface {
	Create(ctx context.Context, txn *model.Transaction) (*model.Transaction, error)
	FindByID(ctx context.Context, userID, id string) (*model.Transaction, error)
	List(ctx context.Context, f repository.TransactionFilter) ([]*model.Transaction, error)
	ListByCustomer(ctx context.Context, userID, customerID string) ([]*model.Transaction, error)
	Update(ctx context.Context, userID, id string, u model.TransactionUpdate) error
	Delete(ctx context.Context, userID, id string) error
	DeleteByCustomer(ctx context.Context, userID, customerID string) (int64, error)
}

type CustomerReader interface {
	FindByID(ctx context.Context, userID, id string) (*model.Customer, error)
}

// TransactionWriter records ledger events and derives balances from them. It
// never sends notifications.
type TransactionWriter struct {
	repo      TransactionRepository
	customers CustomerReader
	clock     Clock
}

func NewTransactionWriter(repo TransactionRepository, customers CustomerReader, clock Clock) *TransactionWriter {
	if clock == nil {
		clock = NewMonotonicClock()
	}
	return &TransactionWriter{
		repo:      repo,
		customers: customers,
		clock:     clock,
	}
}

func (s *TransactionWriter) RecordDebt(ctx context.Context, req model.DebtRequest) (*model.Transaction, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	customer, err := s.customers.FindByID(ctx, req.UserID, req.CustomerID)
	if err != nil {
		return nil, storeErr("find customer", "customer", req.CustomerID, err)
	}

	return s.record(ctx, &model.Transaction{
		UserID:       req.UserID,
		CustomerID:   customer.ID,
		CustomerName: customer.Name,
		Kind:         model.KindDebt,
		Subkind:      req.Subkind,
		Description:  strings.TrimSpace(req.Description),
		Amount:       req.Amount,
	})
}

func (s *TransactionWriter) RecordPayment(ctx context.Context, req model.PaymentRequest) (*model.Transaction, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	customer, err := s.customers.FindByID(ctx, req.UserID, req.CustomerID)
	if err != nil {
		return nil, storeErr("find customer", "customer", req.CustomerID, err)
	}

	return s.record(ctx, &model.Transaction{
		UserID:       req.UserID,
		CustomerID:   customer.ID,
		CustomerName: customer.Name,
		Kind:         model.KindPayment,
		Amount:       req.Amount,
	})
}

func (s *TransactionWriter) record(ctx context.Context, txn *model.Transaction) (*model.Transaction, error) {
	now := s.clock.Now()
	txn.CreatedAt = now
	txn.UpdatedAt = now
	if err := txn.Validate(); err != nil {
		return nil, err
	}

	created, err := s.repo.Create(ctx, txn)
	if err != nil {
		return nil, storeErr("insert transaction", "transaction", "", err)
	}

	prom.IncTransactionRecorded(string(created.Kind), string(created.Subkind))
	logger.Info("transaction recorded",
		"user_id", created.UserID,
		"customer_id", created.CustomerID,
		"transaction_id", created.ID,
		"kind", string(created.Kind),
		"subkind", string(created.Subkind),
		"amount", created.Amount.String(),
	)
	return created, nil
}

// Recompute re-reads the customer's full history from the primary and folds it.
// Nothing is cached between calls.
func (s *TransactionWriter) Recompute(ctx context.Context, userID, customerID string) (decimal.Decimal, []*model.Transaction, error) {
	txns, err := s.repo.ListByCustomer(pg.UsePrimary(ctx), userID, customerID)
	if err != nil {
		return decimal.Zero, nil, storeErr("list transactions", "customer", customerID, err)
	}
	return ledger.Balance(txns), txns, nil
}

func (s *TransactionWriter) History(ctx context.Context, userID, customerID string, dir ledger.Direction) ([]*model.Transaction, error) {
	txns, err := s.repo.ListByCustomer(ctx, userID, customerID)
	if err != nil {
		return nil, storeErr("list transactions", "customer", customerID, err)
	}
	return ledger.SortByTime(txns, dir), nil
}

func (s *TransactionWriter) Get(ctx context.Context, userID, id string) (*model.Transaction, error) {
	txn, err := s.repo.FindByID(ctx, userID, id)
	if err != nil {
		return nil, storeErr("get transaction", "transaction", id, err)
	}
	return txn, nil
}

// Edit changes the amount and, for debts, the description. Kind, subkind,
// customer and creation time are fixed once recorded.
func (s *TransactionWriter) Edit(ctx context.Context, userID, id string, u model.TransactionUpdate) (*model.Transaction, error) {
	if u.Amount != nil {
		if err := model.ValidateAmount(*u.Amount); err != nil {
			return nil, err
		}
	}
	if u.Description != nil {
		desc := strings.TrimSpace(*u.Description)
		u.Description = &desc
	}

	current, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if u.Description != nil {
		if current.Kind != model.KindDebt {
			return nil, model.NewValidationError("description", "payments have no description")
		}
		if *u.Description == "" {
			return nil, model.NewValidationError("description", "description is required for debts")
		}
	}
	if u.IsEmpty() {
		return current, nil
	}

	if err := s.repo.Update(ctx, userID, id, u); err != nil {
		return nil, storeErr("update transaction", "transaction", id, err)
	}
	logger.Info("transaction updated", "user_id", userID, "transaction_id", id)
	return s.Get(pg.UsePrimary(ctx), userID, id)
}

func (s *TransactionWriter) Delete(ctx context.Context, userID, id string) (*model.Transaction, error) {
	current, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Delete(ctx, userID, id); err != nil {
		return nil, storeErr("delete transaction", "transaction", id, err)
	}
	logger.Info("transaction deleted", "user_id", userID, "transaction_id", id)
	return current, nil
}

func (s *TransactionWriter) DeleteAllForCustomer(ctx context.Context, userID, customerID string) (int64, error) {
	n, err := s.repo.DeleteByCustomer(ctx, userID, customerID)
	if err != nil {
		return 0, storeErr("delete transactions", "customer", customerID, err)
	}
	logger.Info("customer transactions deleted", "user_id", userID, "customer_id", customerID, "count", n)
	return n, nil
}

// Statistics summarizes the user's transactions created within the day range.
func (s *TransactionWriter) Statistics(ctx context.Context, userID string, from, to time.Time) (ledger.Summary, error) {
	start, end := ledger.DayRange(from, to)
	if end.Before(start) {
		return ledger.Summary{}, model.NewValidationError("to", "end date is before start date")
	}
	txns, err := s.repo.List(ctx, repository.TransactionFilter{UserID: userID, From: &start, To: &end})
	if err != nil {
		return ledger.Summary{}, storeErr("list transactions", "transaction", "", err)
	}
	return ledger.Summarize(txns, from, to), nil
}
