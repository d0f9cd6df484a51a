package model

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type Kind string

const (
	KindDebt    Kind = "debt"
	KindPayment Kind = "payment"
)

func (k Kind) IsValid() bool {
	return k == KindDebt || k == KindPayment
}

func (k Kind) Label() string {
	if k == KindPayment {
		return "دفعة"
	}
	return "دين"
}

// Subkind only applies to debts. OnAccount debt is owed later and counts
// toward the balance, cash is settled at purchase time and does not.
type Subkind string

const (
	SubkindNone      Subkind = ""
	SubkindOnAccount Subkind = "debt"
	SubkindCash      Subkind = "cash"
)

func (s Subkind) IsValid() bool {
	return s == SubkindOnAccount || s == SubkindCash
}

func (s Subkind) Label() string {
	switch s {
	case SubkindOnAccount:
		return "دين"
	case SubkindCash:
		return "كاش"
	}
	return ""
}

type Transaction struct {
	ID           string          `json:"id"`
	UserID       string          `json:"-"`
	CustomerID   string          `json:"customer_id"`
	CustomerName string          `json:"customer_name"`
	Kind         Kind            `json:"kind"`
	Subkind      Subkind         `json:"subkind,omitempty"`
	Description  string          `json:"description,omitempty"`
	Amount       decimal.Decimal `json:"amount"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// AmountPlaces is the scale amounts are stored with.
const AmountPlaces = 2

// ValidateAmount accepts strictly positive amounts with at most two decimal
// places. Anything finer would be rounded by the store.
func ValidateAmount(d decimal.Decimal) error {
	if !d.IsPositive() {
		return NewValidationError("amount", "amount must be greater than zero")
	}
	if !d.Equal(d.Round(AmountPlaces)) {
		return NewValidationError("amount", "amount must have at most 2 decimal places")
	}
	return nil
}

// Validate checks the shape invariants: a payment has no subkind and no
// description, a debt has both, and the amount is strictly positive.
func (t *Transaction) Validate() error {
	if err := ValidateAmount(t.Amount); err != nil {
		return err
	}
	switch t.Kind {
	case KindDebt:
		if !t.Subkind.IsValid() {
			return NewValidationError("subkind", "unknown debt subkind "+string(t.Subkind))
		}
		if strings.TrimSpace(t.Description) == "" {
			return NewValidationError("description", "description is required for debts")
		}
	case KindPayment:
		if t.Subkind != SubkindNone {
			return NewValidationError("subkind", "payments have no subkind")
		}
		if t.Description != "" {
			return NewValidationError("description", "payments have no description")
		}
	default:
		return NewValidationError("kind", "unknown transaction kind "+string(t.Kind))
	}
	return nil
}

type DebtRequest struct {
	UserID      string
	CustomerID  string
	Subkind     Subkind
	Amount      decimal.Decimal
	Description string
}

func (r DebtRequest) Validate() error {
	if !r.Subkind.IsValid() {
		return NewValidationError("subkind", "unknown debt subkind "+string(r.Subkind))
	}
	if strings.TrimSpace(r.Description) == "" {
		return NewValidationError("description", "description is required for debts")
	}
	if err := ValidateAmount(r.Amount); err != nil {
		return err
	}
	return nil
}

type PaymentRequest struct {
	UserID     string
	CustomerID string
	Amount     decimal.Decimal
}

func (r PaymentRequest) Validate() error {
	if err := ValidateAmount(r.Amount); err != nil {
		return err
	}
	return nil
}

// TransactionUpdate edits an existing transaction. Description is only
// accepted for debts.
type TransactionUpdate struct {
	Amount      *decimal.Decimal `json:"amount"`
	Description *string          `json:"description"`
}

func (u TransactionUpdate) IsEmpty() bool {
	return u.Amount == nil && u.Description == nil
}
