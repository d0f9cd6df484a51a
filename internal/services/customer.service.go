package services

import (
	"context"
	"errors"
	"strings"

	"github.com/nimasrn/customer-ledger/internal/model"
	"github.com/nimasrn/customer-ledger/internal/repository"
	"github.com/nimasrn/customer-ledger/pkg/logger"
	"github.com/nimasrn/customer-ledger/pkg/pg"
)

type CustomerRepository interface {
	Create(ctx context.Context, c *model.Customer) (*model.Customer, error)
	FindByID(ctx context.Context, userID, id string) (*model.Customer, error)
	FindByName(ctx context.Context, userID, name string) (*model.Customer, error)
	Search(ctx context.Context, userID, query string) ([]*model.Customer, error)
	Update(ctx context.Context, userID, id string, u model.CustomerUpdate) error
	Delete(ctx context.Context, userID, id string) error
}

type PhoneNormalizer interface {
	Normalize(s string) (string, error)
}

// CustomerDirectory owns customer records. Every call is scoped to one user.
type CustomerDirectory struct {
	repo   CustomerRepository
	phones PhoneNormalizer
}

func NewCustomerDirectory(repo CustomerRepository, phones PhoneNormalizer) *CustomerDirectory {
	return &CustomerDirectory{
		repo:   repo,
		phones: phones,
	}
}

func (s *CustomerDirectory) Add(ctx context.Context, userID, name, phone string) (*model.Customer, error) {
	name, err := model.ValidateCustomerName(name)
	if err != nil {
		return nil, err
	}
	phone, err = s.normalizePhone(phone)
	if err != nil {
		return nil, err
	}

	created, err := s.repo.Create(ctx, &model.Customer{
		UserID: userID,
		Name:   name,
		Phone:  phone,
	})
	if err != nil {
		return nil, storeErr("create customer", "customer", "", err)
	}

	logger.Info("customer created", "user_id", userID, "customer_id", created.ID)
	return created, nil
}

// Resolve returns the user's customer with exactly this name, creating one
// without a phone when none exists.
func (s *CustomerDirectory) Resolve(ctx context.Context, userID, name string) (*model.Customer, bool, error) {
	name, err := model.ValidateCustomerName(name)
	if err != nil {
		return nil, false, err
	}

	c, err := s.repo.FindByName(ctx, userID, name)
	if err == nil {
		return c, false, nil
	}
	if !errors.Is(err, repository.ErrCustomerNotFound) {
		return nil, false, storeErr("find customer", "customer", name, err)
	}

	c, err = s.Add(ctx, userID, name, "")
	if err != nil {
		return nil, false, err
	}
	return c, true, nil
}

func (s *CustomerDirectory) Find(ctx context.Context, userID, query string) ([]*model.Customer, error) {
	customers, err := s.repo.Search(ctx, userID, query)
	if err != nil {
		return nil, storeErr("search customers", "customer", "", err)
	}
	return customers, nil
}

func (s *CustomerDirectory) Get(ctx context.Context, userID, id string) (*model.Customer, error) {
	c, err := s.repo.FindByID(ctx, userID, id)
	if err != nil {
		return nil, storeErr("get customer", "customer", id, err)
	}
	return c, nil
}

// Update applies a partial edit with the same rules as Add. An empty phone
// clears the stored number.
func (s *CustomerDirectory) Update(ctx context.Context, userID, id string, u model.CustomerUpdate) (*model.Customer, error) {
	if u.Name != nil {
		name, err := model.ValidateCustomerName(*u.Name)
		if err != nil {
			return nil, err
		}
		u.Name = &name
	}
	if u.Phone != nil {
		phone, err := s.normalizePhone(*u.Phone)
		if err != nil {
			return nil, err
		}
		u.Phone = &phone
	}

	if !u.IsEmpty() {
		if err := s.repo.Update(ctx, userID, id, u); err != nil {
			return nil, storeErr("update customer", "customer", id, err)
		}
		logger.Info("customer updated", "user_id", userID, "customer_id", id)
	}
	return s.Get(pg.UsePrimary(ctx), userID, id)
}

// Remove deletes the customer record only. Callers delete its transactions first.
func (s *CustomerDirectory) Remove(ctx context.Context, userID, id string) error {
	if err := s.repo.Delete(ctx, userID, id); err != nil {
		return storeErr("delete customer", "customer", id, err)
	}
	logger.Info("customer removed", "user_id", userID, "customer_id", id)
	return nil
}

func (s *CustomerDirectory) normalizePhone(raw string) (string, error) {
	if strings.TrimSpace(raw) == "" {
		return "", nil
	}
	p, err := s.phones.Normalize(raw)
	if err != nil {
		return "", model.NewValidationError("phone", err.Error())
	}
	return p, nil
}
