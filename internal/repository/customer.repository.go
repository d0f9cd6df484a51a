package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/nimasrn/customer-ledger/internal/model"
	"github.com/nimasrn/customer-ledger/pkg/pg"
	"gorm.io/gorm"
)

var (
	ErrCustomerNotFound = errors.New("customer not found")
)

type CustomerRepository struct {
	*pg.DB
}

func NewCustomerRepository(db *pg.DB) *CustomerRepository {
	return &CustomerRepository{
		db,
	}
}

func (r *CustomerRepository) Create(ctx context.Context, c *model.Customer) (*model.Customer, error) {
	entity := toCustomerEntity(c)

	if err := r.Write(ctx).Create(entity).Error; err != nil {
		return nil, err
	}

	return toCustomerModel(entity), nil
}

// FindByID only returns customers owned by userID.
func (r *CustomerRepository) FindByID(ctx context.Context, userID, id string) (*model.Customer, error) {
	var entity CustomerEntity
	err := r.Read(ctx).
		Where("user_id = ? AND id = ?", userID, id).
		First(&entity).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCustomerNotFound
		}
		return nil, err
	}
	return toCustomerModel(&entity), nil
}

// FindByName is an exact, case sensitive match used when a transaction names a
// customer instead of referencing one.
func (r *CustomerRepository) FindByName(ctx context.Context, userID, name string) (*model.Customer, error) {
	var entity CustomerEntity
	err := r.Read(ctx).
		Where("user_id = ? AND name = ?", userID, name).
		Order("created_at DESC").
		First(&entity).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCustomerNotFound
		}
		return nil, err
	}
	return toCustomerModel(&entity), nil
}

// Search returns the user's customers whose name contains query, ignoring case,
// newest first. An empty query matches everyone.
func (r *CustomerRepository) Search(ctx context.Context, userID, query string) ([]*model.Customer, error) {
	q := r.Read(ctx).Model(&CustomerEntity{}).Where("user_id = ?", userID)

	if query = strings.TrimSpace(query); query != "" {
		q = q.Where("LOWER(name) LIKE ? ESCAPE '\\'", "%"+escapeLike(strings.ToLower(query))+"%")
	}

	var entities []*CustomerEntity
	if err := q.Order("created_at DESC").Find(&entities).Error; err != nil {
		return nil, err
	}
	return toCustomerModels(entities), nil
}

// Update applies the non-nil fields of u. Values are expected to be validated
// and normalized already.
func (r *CustomerRepository) Update(ctx context.Context, userID, id string, u model.CustomerUpdate) error {
	fields := map[string]any{"updated_at": time.Now().UTC()}
	if u.Name != nil {
		fields["name"] = *u.Name
	}
	if u.Phone != nil {
		fields["phone"] = *u.Phone
	}

	result := r.Write(ctx).
		Model(&CustomerEntity{}).
		Where("user_id = ? AND id = ?", userID, id).
		Updates(fields)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrCustomerNotFound
	}
	return nil
}

func (r *CustomerRepository) Delete(ctx context.Context, userID, id string) error {
	result := r.Write(ctx).
		Where("user_id = ? AND id = ?", userID, id).
		Delete(&CustomerEntity{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrCustomerNotFound
	}
	return nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
