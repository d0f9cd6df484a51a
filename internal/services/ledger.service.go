package services

import (
	"context"
	"strings"

	"github.com/nimasrn/customer-ledger/internal/ledger"
	"github.com/nimasrn/customer-ledger/internal/model"
	"github.com/nimasrn/customer-ledger/internal/notify"
	"github.com/nimasrn/customer-ledger/pkg/logger"
	"github.com/nimasrn/customer-ledger/pkg/prom"
	"github.com/shopspring/decimal"
)

type TxRunner interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

type Notifier interface {
	Open(ctx context.Context, userID string, d notify.Draft) (*notify.Draft, error)
}

// RecordRequest names the customer either by id or by name. A name that does
// not match an existing customer creates one.
type RecordRequest struct {
	UserID       string
	CustomerID   string
	CustomerName string
	Kind         model.Kind
	Subkind      model.Subkind
	Amount       decimal.Decimal
	Description  string
}

type Balance struct {
	Value    decimal.Decimal `json:"balance"`
	Display  decimal.Decimal `json:"display"`
	Label    string          `json:"label"`
	Standing ledger.Standing `json:"standing"`
}

func NewBalance(v decimal.Decimal) Balance {
	abs, label := ledger.Display(v)
	return Balance{Value: v, Display: abs, Label: label, Standing: ledger.StandingOf(v)}
}

type RecordResult struct {
	Transaction     *model.Transaction `json:"transaction"`
	Customer        *model.Customer    `json:"customer"`
	CustomerCreated bool               `json:"customer_created"`
	Balance         Balance            `json:"balance"`
	Draft           *notify.Draft      `json:"notification,omitempty"`
	// NotificationError is set when a draft could not be opened. The
	// transaction is recorded regardless.
	NotificationError string `json:"notification_error,omitempty"`
}

// LedgerService runs the record, recompute, compose sequence and the customer
// cascade delete on top of the directory and the writer.
type LedgerService struct {
	tx        TxRunner
	customers *CustomerDirectory
	writer    *TransactionWriter
	notifier  Notifier
}

func NewLedgerService(tx TxRunner, customers *CustomerDirectory, writer *TransactionWriter, notifier Notifier) *LedgerService {
	return &LedgerService{
		tx:        tx,
		customers: customers,
		writer:    writer,
		notifier:  notifier,
	}
}

func (s *LedgerService) Record(ctx context.Context, req RecordRequest) (*RecordResult, error) {
	if err := validateRecord(req); err != nil {
		return nil, err
	}
	log := logger.GetLogger().With("user_id", req.UserID, "kind", string(req.Kind))

	res := &RecordResult{}
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		customer, created, err := s.resolveCustomer(ctx, req)
		if err != nil {
			return err
		}
		res.Customer, res.CustomerCreated = customer, created

		switch req.Kind {
		case model.KindDebt:
			res.Transaction, err = s.writer.RecordDebt(ctx, model.DebtRequest{
				UserID:      req.UserID,
				CustomerID:  customer.ID,
				Subkind:     req.Subkind,
				Amount:      req.Amount,
				Description: req.Description,
			})
		default:
			res.Transaction, err = s.writer.RecordPayment(ctx, model.PaymentRequest{
				UserID:     req.UserID,
				CustomerID: customer.ID,
				Amount:     req.Amount,
			})
		}
		return err
	})
	if err != nil {
		return nil, err
	}

	balance, _, err := s.writer.Recompute(ctx, req.UserID, res.Customer.ID)
	if err != nil {
		return nil, err
	}
	res.Balance = NewBalance(balance)

	if !res.Customer.HasPhone() {
		log.Debug("customer has no phone, skipping notification", "customer_id", res.Customer.ID)
		return res, nil
	}

	draft, err := s.openDraft(ctx, res.Customer, res.Transaction, balance)
	if err != nil {
		log.Warn("failed to open notification draft", "transaction_id", res.Transaction.ID, "error", err)
		res.NotificationError = err.Error()
		return res, nil
	}
	res.Draft = draft
	return res, nil
}

func validateRecord(req RecordRequest) error {
	if strings.TrimSpace(req.CustomerID) == "" && strings.TrimSpace(req.CustomerName) == "" {
		return model.NewValidationError("customer", "customer id or name is required")
	}
	switch req.Kind {
	case model.KindDebt:
		return model.DebtRequest{Subkind: req.Subkind, Amount: req.Amount, Description: req.Description}.Validate()
	case model.KindPayment:
		if req.Subkind != model.SubkindNone {
			return model.NewValidationError("subkind", "payments have no subkind")
		}
		if strings.TrimSpace(req.Description) != "" {
			return model.NewValidationError("description", "payments have no description")
		}
		return model.PaymentRequest{Amount: req.Amount}.Validate()
	}
	return model.NewValidationError("kind", "unknown transaction kind "+string(req.Kind))
}

func (s *LedgerService) resolveCustomer(ctx context.Context, req RecordRequest) (*model.Customer, bool, error) {
	if id := strings.TrimSpace(req.CustomerID); id != "" {
		c, err := s.customers.Get(ctx, req.UserID, id)
		return c, false, err
	}
	return s.customers.Resolve(ctx, req.UserID, req.CustomerName)
}

func (s *LedgerService) openDraft(ctx context.Context, c *model.Customer, txn *model.Transaction, balance decimal.Decimal) (*notify.Draft, error) {
	message, err := notify.ComposeFor(txn, balance)
	if err != nil {
		return nil, err
	}
	return s.notifier.Open(ctx, txn.UserID, notify.Draft{
		Phone:         c.Phone,
		Message:       message,
		CustomerID:    c.ID,
		CustomerName:  c.Name,
		TransactionID: txn.ID,
		Kind:          txn.Kind,
		Subkind:       txn.Subkind,
		Amount:        txn.Amount,
		Description:   txn.Description,
		BalanceAfter:  balance,
	})
}

func (s *LedgerService) CustomerBalance(ctx context.Context, userID, customerID string) (Balance, error) {
	if _, err := s.customers.Get(ctx, userID, customerID); err != nil {
		return Balance{}, err
	}
	balance, _, err := s.writer.Recompute(ctx, userID, customerID)
	if err != nil {
		return Balance{}, err
	}
	return NewBalance(balance), nil
}

// DeleteCustomer removes the customer's transactions and then the customer.
func (s *LedgerService) DeleteCustomer(ctx context.Context, userID, customerID string) (int64, error) {
	var removed int64
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if _, err := s.customers.Get(ctx, userID, customerID); err != nil {
			return err
		}
		n, err := s.writer.DeleteAllForCustomer(ctx, userID, customerID)
		if err != nil {
			return err
		}
		removed = n
		return s.customers.Remove(ctx, userID, customerID)
	})
	if err != nil {
		return 0, err
	}

	prom.IncCustomerDeleted()
	return removed, nil
}
