package notify

import (
	"time"

	"github.com/nimasrn/customer-ledger/internal/model"
	"github.com/shopspring/decimal"
)

type State string

const (
	StateComposed  State = "composed"
	StateSent      State = "sent"
	StateCancelled State = "cancelled"
)

func (s State) Terminal() bool {
	return s == StateSent || s == StateCancelled
}

const (
	StatusSent          = "تم إرسال الرسالة بنجاح"
	StatusFailed        = "فشل إرسال الرسالة"
	StatusSavedNoSMS    = "تم حفظ المعاملة (لم يتم إرسال SMS)"
	StatusSavedCanceled = "تم حفظ المعاملة بدون إرسال SMS"
)

// Outcome is the terminal result of a draft. Sent is false only for a cancel.
type Outcome struct {
	Sent     bool   `json:"sent"`
	Success  bool   `json:"success"`
	Delivery string `json:"delivery,omitempty"`
	Status   string `json:"status"`
	Notice   string `json:"notice,omitempty"`
	Detail   string `json:"detail,omitempty"`
}

// Draft is a composed notification awaiting confirmation. It is never
// persisted in the record store.
type Draft struct {
	ID            string          `json:"id"`
	UserID        string          `json:"-"`
	Phone         string          `json:"phone"`
	Message       string          `json:"message"`
	CustomerID    string          `json:"customer_id"`
	CustomerName  string          `json:"customer_name"`
	TransactionID string          `json:"transaction_id"`
	Kind          model.Kind      `json:"kind"`
	Subkind       model.Subkind   `json:"subkind,omitempty"`
	Amount        decimal.Decimal `json:"amount"`
	Description   string          `json:"description,omitempty"`
	BalanceAfter  decimal.Decimal `json:"balance_after"`
	State         State           `json:"state"`
	Outcome       *Outcome        `json:"outcome,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

type DraftEdit struct {
	Phone   *string `json:"phone"`
	Message *string `json:"message"`
}

// storedDraft carries UserID into the serialized form, which the API view hides.
type storedDraft struct {
	Draft
	Owner string `json:"user_id"`
}
