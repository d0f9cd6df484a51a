package repository

import (
	"github.com/nimasrn/customer-ledger/internal/model"
	"github.com/nimasrn/customer-ledger/pkg/pg"
)

type CustomerEntity struct {
	pg.Model
	UserID string `db:"user_id" gorm:"column:user_id;type:varchar(128);not null;index"`
	Name   string `db:"name"    gorm:"column:name;not null"`
	Phone  string `db:"phone"   gorm:"column:phone;not null;default:''"`
}

func (CustomerEntity) TableName() string {
	return "customers"
}

func toCustomerEntity(m *model.Customer) *CustomerEntity {
	if m == nil {
		return nil
	}
	return &CustomerEntity{
		Model: pg.Model{
			ID:        m.ID,
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		UserID: m.UserID,
		Name:   m.Name,
		Phone:  m.Phone,
	}
}

func toCustomerModel(e *CustomerEntity) *model.Customer {
	if e == nil {
		return nil
	}
	return &model.Customer{
		ID:        e.ID,
		UserID:    e.UserID,
		Name:      e.Name,
		Phone:     e.Phone,
		CreatedAt: e.CreatedAt,
		UpdatedAt: e.UpdatedAt,
	}
}

func toCustomerModels(entities []*CustomerEntity) []*model.Customer {
	if entities == nil {
		return nil
	}
	models := make([]*model.Customer, len(entities))
	for i, e := range entities {
		models[i] = toCustomerModel(e)
	}
	return models
}
