// Package ledger derives a customer's standing from its transaction history.
// Nothing here touches storage: every function is a pure fold over the slice it
// is given.
package ledger

import (
	"sort"
	"time"

	"github.com/nimasrn/customer-ledger/internal/model"
	"github.com/shopspring/decimal"
)

type Direction int

const (
	Desc Direction = iota
	Asc
)

func ParseDirection(s string) Direction {
	if s == "asc" {
		return Asc
	}
	return Desc
}

const (
	LabelDebt   = "دين"
	LabelCredit = "رصيد"
)

// Contribution is the signed effect of one transaction on the balance.
// Cash debts are paid on the spot and contribute nothing.
func Contribution(t *model.Transaction) decimal.Decimal {
	switch {
	case t.Kind == model.KindDebt && t.Subkind == model.SubkindOnAccount:
		return t.Amount
	case t.Kind == model.KindPayment:
		return t.Amount.Neg()
	}
	return decimal.Zero
}

// Balance is the sum of on-account debts minus the sum of payments. Order does
// not matter and an empty history is zero.
func Balance(txns []*model.Transaction) decimal.Decimal {
	sum := decimal.Zero
	for _, t := range txns {
		sum = sum.Add(Contribution(t))
	}
	return sum
}

// SortByTime returns a new slice ordered by CreatedAt. Ties keep their input order.
func SortByTime(txns []*model.Transaction, dir Direction) []*model.Transaction {
	out := make([]*model.Transaction, len(txns))
	copy(out, txns)
	sort.SliceStable(out, func(i, j int) bool {
		if dir == Asc {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

type Standing string

const (
	Owes    Standing = "owes"
	Credit  Standing = "credit"
	Settled Standing = "settled"
)

func StandingOf(balance decimal.Decimal) Standing {
	switch balance.Sign() {
	case 1:
		return Owes
	case -1:
		return Credit
	}
	return Settled
}

// Display returns the magnitude shown to people and its label. Zero is shown
// as a debt of zero.
func Display(balance decimal.Decimal) (decimal.Decimal, string) {
	if balance.IsNegative() {
		return balance.Abs(), LabelCredit
	}
	return balance, LabelDebt
}

type Summary struct {
	From          time.Time       `json:"from"`
	To            time.Time       `json:"to"`
	TotalDebts    decimal.Decimal `json:"total_debts"`
	TotalCash     decimal.Decimal `json:"total_cash"`
	TotalPayments decimal.Decimal `json:"total_payments"`
	NetBalance    decimal.Decimal `json:"net_balance"`
	Count         int             `json:"transaction_count"`
}

// DayRange widens from and to into the inclusive range from the start of the
// first day to the last millisecond of the second.
func DayRange(from, to time.Time) (time.Time, time.Time) {
	start := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, from.Location())
	end := time.Date(to.Year(), to.Month(), to.Day(), 23, 59, 59, int(999*time.Millisecond), to.Location())
	return start, end
}

// Summarize totals the transactions created within the day range [from, to].
func Summarize(txns []*model.Transaction, from, to time.Time) Summary {
	start, end := DayRange(from, to)
	s := Summary{
		From:          start,
		To:            end,
		TotalDebts:    decimal.Zero,
		TotalCash:     decimal.Zero,
		TotalPayments: decimal.Zero,
	}
	for _, t := range txns {
		if t.CreatedAt.Before(start) || t.CreatedAt.After(end) {
			continue
		}
		s.Count++
		switch {
		case t.Kind == model.KindPayment:
			s.TotalPayments = s.TotalPayments.Add(t.Amount)
		case t.Subkind == model.SubkindCash:
			s.TotalCash = s.TotalCash.Add(t.Amount)
		default:
			s.TotalDebts = s.TotalDebts.Add(t.Amount)
		}
	}
	s.NetBalance = s.TotalDebts.Sub(s.TotalPayments)
	return s
}
