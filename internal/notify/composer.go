package notify

import (
	"fmt"
	"strings"

	"github.com/nimasrn/customer-ledger/internal/ledger"
	"github.com/nimasrn/customer-ledger/internal/model"
	"github.com/shopspring/decimal"
)

const currency = "شيكل"

type ComposeInput struct {
	CustomerName string
	Kind         model.Kind
	Subkind      model.Subkind
	Amount       decimal.Decimal
	Description  string
	// Balance is the customer's balance after the transaction was recorded.
	Balance decimal.Decimal
}

// FormatAmount renders two decimals without grouping, rounding half away from zero.
func FormatAmount(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// Compose renders the customer facing text for a recorded transaction.
func Compose(in ComposeInput) (string, error) {
	name := strings.TrimSpace(in.CustomerName)
	abs, label := ledger.Display(in.Balance)

	var b strings.Builder
	fmt.Fprintf(&b, "مرحبا %s،\n", name)

	switch {
	case in.Kind == model.KindDebt && in.Subkind == model.SubkindCash:
		fmt.Fprintf(&b, "تم تسجيل عملية شراء كاش بقيمة %s %s\n", FormatAmount(in.Amount), currency)
		fmt.Fprintf(&b, "التفاصيل: %s\n", in.Description)
		fmt.Fprintf(&b, "رصيدك الحالي: %s %s %s", FormatAmount(abs), currency, label)
	case in.Kind == model.KindDebt && in.Subkind == model.SubkindOnAccount:
		fmt.Fprintf(&b, "تم تسجيل دين جديد بقيمة %s %s\n", FormatAmount(in.Amount), currency)
		fmt.Fprintf(&b, "التفاصيل: %s\n", in.Description)
		// on-account notices always say debt, even when the customer is in credit
		fmt.Fprintf(&b, "رصيدك الحالي: %s %s %s", FormatAmount(abs), currency, ledger.LabelDebt)
	case in.Kind == model.KindPayment:
		fmt.Fprintf(&b, "تم استلام دفعة بقيمة %s %s\n", FormatAmount(in.Amount), currency)
		b.WriteString("شكرا لك!\n")
		fmt.Fprintf(&b, "رصيدك الحالي: %s %s %s", FormatAmount(abs), currency, label)
	default:
		return "", model.NewValidationError("kind", fmt.Sprintf("cannot compose a notice for %s/%s", in.Kind, in.Subkind))
	}

	return b.String(), nil
}

// ComposeFor builds the input from a stored transaction and the balance after it.
func ComposeFor(txn *model.Transaction, balance decimal.Decimal) (string, error) {
	return Compose(ComposeInput{
		CustomerName: txn.CustomerName,
		Kind:         txn.Kind,
		Subkind:      txn.Subkind,
		Amount:       txn.Amount,
		Description:  txn.Description,
		Balance:      balance,
	})
}
