package repository

import (
	"github.com/nimasrn/customer-ledger/internal/model"
	"github.com/nimasrn/customer-ledger/pkg/pg"
	"github.com/shopspring/decimal"
)

type TransactionEntity struct {
	pg.Model
	UserID       string          `db:"user_id"       gorm:"column:user_id;type:varchar(128);not null;index:idx_transactions_user_customer,priority:1"`
	CustomerID   string          `db:"customer_id"   gorm:"column:customer_id;type:varchar(36);not null;index:idx_transactions_user_customer,priority:2"`
	CustomerName string          `db:"customer_name" gorm:"column:customer_name;not null"`
	Kind         string          `db:"kind"          gorm:"column:kind;type:varchar(16);not null"`
	Subkind      string          `db:"subkind"       gorm:"column:subkind;type:varchar(16);not null;default:''"`
	Description  string          `db:"description"   gorm:"column:description;not null;default:''"`
	Amount       decimal.Decimal `db:"amount"        gorm:"column:amount;type:decimal(18,2);not null"`
}

func (TransactionEntity) TableName() string {
	return "transactions"
}

func toTransactionEntity(m *model.Transaction) *TransactionEntity {
	if m == nil {
		return nil
	}
	return &TransactionEntity{
		Model: pg.Model{
			ID:        m.ID,
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		UserID:       m.UserID,
		CustomerID:   m.CustomerID,
		CustomerName: m.CustomerName,
		Kind:         string(m.Kind),
		Subkind:      string(m.Subkind),
		Description:  m.Description,
		Amount:       m.Amount,
	}
}

func toTransactionModel(e *TransactionEntity) *model.Transaction {
	if e == nil {
		return nil
	}
	return &model.Transaction{
		ID:           e.ID,
		UserID:       e.UserID,
		CustomerID:   e.CustomerID,
		CustomerName: e.CustomerName,
		Kind:         model.Kind(e.Kind),
		Subkind:      model.Subkind(e.Subkind),
		Description:  e.Description,
		Amount:       e.Amount,
		CreatedAt:    e.CreatedAt,
		UpdatedAt:    e.UpdatedAt,
	}
}

func toTransactionModels(entities []*TransactionEntity) []*model.Transaction {
	if entities == nil {
		return nil
	}
	models := make([]*model.Transaction, len(entities))
	for i, e := range entities {
		models[i] = toTransactionModel(e)
	}
	return models
}
