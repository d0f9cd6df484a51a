package ledger

import (
	"math/rand"
	"testing"
	"time"

	"github.com/nimasrn/customer-ledger/internal/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)

func debt(amount int64, at time.Time) *model.Transaction {
	return &model.Transaction{Kind: model.KindDebt, Subkind: model.SubkindOnAccount, Description: "goods", Amount: decimal.NewFromInt(amount), CreatedAt: at}
}

func cash(amount int64, at time.Time) *model.Transaction {
	return &model.Transaction{Kind: model.KindDebt, Subkind: model.SubkindCash, Description: "bread", Amount: decimal.NewFromInt(amount), CreatedAt: at}
}

func payment(amount int64, at time.Time) *model.Transaction {
	return &model.Transaction{Kind: model.KindPayment, Amount: decimal.NewFromInt(amount), CreatedAt: at}
}

func TestBalance(t *testing.T) {
	assert.True(t, Balance(nil).IsZero())

	txns := []*model.Transaction{debt(100, t0), cash(50, t0), payment(30, t0)}
	assert.Equal(t, "70", Balance(txns).String())

	overpaid := []*model.Transaction{debt(20, t0), payment(50, t0)}
	b := Balance(overpaid)
	assert.Equal(t, "-30", b.String())
	abs, label := Display(b)
	assert.Equal(t, "30", abs.String())
	assert.Equal(t, LabelCredit, label)
	assert.Equal(t, Credit, StandingOf(b))
}

func TestBalance_CashOnly(t *testing.T) {
	b := Balance([]*model.Transaction{cash(15, t0), cash(7, t0)})
	assert.True(t, b.IsZero())
	assert.Equal(t, Settled, StandingOf(b))
	_, label := Display(b)
	assert.Equal(t, LabelDebt, label)
}

func TestBalance_OrderIndependent(t *testing.T) {
	txns := []*model.Transaction{debt(100, t0), payment(40, t0), cash(9, t0), debt(3, t0), payment(1, t0)}
	want := Balance(txns)
	r := rand.New(rand.NewSource(1))
	for i := 0; i < 20; i++ {
		shuffled := append([]*model.Transaction(nil), txns...)
		r.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })
		assert.True(t, want.Equal(Balance(shuffled)))
	}
}

func TestBalance_PaymentReducesByAmount(t *testing.T) {
	before := []*model.Transaction{debt(80, t0)}
	after := append(before, payment(25, t0.Add(time.Minute)))
	assert.True(t, Balance(after).Equal(Balance(before).Sub(decimal.NewFromInt(25))))
}

func TestSortByTime(t *testing.T) {
	a := debt(1, t0)
	b := debt(2, t0.Add(time.Hour))
	c := debt(3, t0.Add(time.Hour))
	d := payment(4, t0.Add(2*time.Hour))
	in := []*model.Transaction{b, d, a, c}

	asc := SortByTime(in, Asc)
	assert.Equal(t, []*model.Transaction{a, b, c, d}, asc)

	desc := SortByTime(in, Desc)
	assert.Equal(t, []*model.Transaction{d, b, c, a}, desc)

	// input untouched
	assert.Equal(t, []*model.Transaction{b, d, a, c}, in)
	assert.Equal(t, Asc, ParseDirection("asc"))
	assert.Equal(t, Desc, ParseDirection(""))
}

func TestSummarize(t *testing.T) {
	day := func(d int, h int) time.Time { return time.Date(2024, 3, d, h, 0, 0, 0, time.UTC) }
	txns := []*model.Transaction{
		debt(100, day(9, 23)),
		debt(40, day(10, 0)),
		cash(25, day(10, 12)),
		payment(15, day(11, 23)),
		debt(999, day(12, 0)),
	}
	s := Summarize(txns, day(10, 15), day(11, 1))
	require.Equal(t, 3, s.Count)
	assert.Equal(t, "40", s.TotalDebts.String())
	assert.Equal(t, "25", s.TotalCash.String())
	assert.Equal(t, "15", s.TotalPayments.String())
	assert.Equal(t, "25", s.NetBalance.String())
	assert.Equal(t, day(10, 0), s.From)
	assert.Equal(t, 23, s.To.Hour())
	assert.Equal(t, 59, s.To.Second())

	empty := Summarize(nil, day(1, 0), day(2, 0))
	assert.Zero(t, empty.Count)
	assert.True(t, empty.NetBalance.IsZero())
}
