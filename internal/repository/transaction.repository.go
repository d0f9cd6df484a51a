package repository

import (
	"context"
	"errors"
	"time"

	"github.com/nimasrn/customer-ledger/internal/model"
	"github.com/nimasrn/customer-ledger/pkg/pg"
	"gorm.io/gorm"
)

var ErrTransactionNotFound = errors.New("transaction not found")

type TransactionRepository struct {
	*pg.DB
}

func NewTransactionRepository(db *pg.DB) *TransactionRepository {
	return &TransactionRepository{
		db,
	}
}

func (r *TransactionRepository) Create(ctx context.Context, txn *model.Transaction) (*model.Transaction, error) {
	entity := toTransactionEntity(txn)

	if err := r.Write(ctx).Create(entity).Error; err != nil {
		return nil, err
	}

	return toTransactionModel(entity), nil
}

func (r *TransactionRepository) FindByID(ctx context.Context, userID, id string) (*model.Transaction, error) {
	var entity TransactionEntity
	err := r.Read(ctx).
		Where("user_id = ? AND id = ?", userID, id).
		First(&entity).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTransactionNotFound
		}
		return nil, err
	}
	return toTransactionModel(&entity), nil
}

type TransactionFilter struct {
	UserID     string
	CustomerID *string
	From       *time.Time // inclusive
	To         *time.Time // inclusive
	Asc        bool
}

// List always scopes by UserID and orders by created_at, newest first unless Asc is set.
func (r *TransactionRepository) List(ctx context.Context, f TransactionFilter) ([]*model.Transaction, error) {
	q := r.Read(ctx).Model(&TransactionEntity{}).Where("user_id = ?", f.UserID)

	if f.CustomerID != nil {
		q = q.Where("customer_id = ?", *f.CustomerID)
	}
	if f.From != nil {
		q = q.Where("created_at >= ?", *f.From)
	}
	if f.To != nil {
		q = q.Where("created_at <= ?", *f.To)
	}

	order := "created_at"
	if f.Asc {
		order += " ASC"
	} else {
		order += " DESC"
	}

	var entities []*TransactionEntity
	if err := q.Order(order).Find(&entities).Error; err != nil {
		return nil, err
	}
	return toTransactionModels(entities), nil
}

func (r *TransactionRepository) ListByCustomer(ctx context.Context, userID, customerID string) ([]*model.Transaction, error) {
	return r.List(ctx, TransactionFilter{UserID: userID, CustomerID: &customerID})
}

func (r *TransactionRepository) Update(ctx context.Context, userID, id string, u model.TransactionUpdate) error {
	fields := map[string]any{"updated_at": time.Now().UTC()}
	if u.Amount != nil {
		fields["amount"] = *u.Amount
	}
	if u.Description != nil {
		fields["description"] = *u.Description
	}

	result := r.Write(ctx).
		Model(&TransactionEntity{}).
		Where("user_id = ? AND id = ?", userID, id).
		Updates(fields)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrTransactionNotFound
	}
	return nil
}

func (r *TransactionRepository) Delete(ctx context.Context, userID, id string) error {
	result := r.Write(ctx).
		Where("user_id = ? AND id = ?", userID, id).
		Delete(&TransactionEntity{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrTransactionNotFound
	}
	return nil
}

// DeleteByCustomer removes every transaction of the customer and reports how many went.
func (r *TransactionRepository) DeleteByCustomer(ctx context.Context, userID, customerID string) (int64, error) {
	result := r.Write(ctx).
		Where("user_id = ? AND customer_id = ?", userID, customerID).
		Delete(&TransactionEntity{})
	return result.RowsAffected, result.Error
}
