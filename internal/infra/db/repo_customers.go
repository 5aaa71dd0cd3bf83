package db

import (
	"context"
	"errors"

	"mercato/internal/domain"

	"gorm.io/gorm"
)

type CustomerRepository struct {
	db *gorm.DB
}

func NewCustomerRepository(db *gorm.DB) *CustomerRepository {
	return &CustomerRepository{db: db}
}

// GetByEmail matches the stored email exactly, case preserved. Normalization
// is intentionally absent; see the resolver notes in DESIGN.md.
func (r *CustomerRepository) GetByEmail(ctx context.Context, email string) (*domain.Customer, error) {
	if r.db == nil {
		return nil, errDBUnavailable
	}
	var model CustomerModel
	err := r.db.WithContext(ctx).First(&model, "email = ?", email).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return customerFromModel(model), nil
}

func (r *CustomerRepository) GetByID(ctx context.Context, id string) (*domain.Customer, error) {
	if r.db == nil {
		return nil, errDBUnavailable
	}
	var model CustomerModel
	err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return customerFromModel(model), nil
}

func (r *CustomerRepository) Create(ctx context.Context, customer domain.Customer) error {
	if r.db == nil {
		return errDBUnavailable
	}
	model := CustomerModel{
		ID:        customer.ID,
		Name:      customer.Name,
		Email:     customer.EmailAddr,
		Secret:    customer.StoredSecret.Value,
		Phone:     customer.Phone,
		City:      customer.City,
		Address:   customer.Address,
		Photo:     customer.Photo,
		CreatedAt: customer.CreatedAt,
	}
	return r.db.WithContext(ctx).Create(&model).Error
}

// UpdateProfile writes the mutable profile columns and returns the row as
// stored.
func (r *CustomerRepository) UpdateProfile(ctx context.Context, id string, update domain.CustomerProfileUpdate) (*domain.Customer, error) {
	if r.db == nil {
		return nil, errDBUnavailable
	}
	columns := map[string]any{
		"name":  update.Name,
		"email": update.Email,
		"phone": update.Phone,
		"city":  update.City,
	}
	err := r.db.WithContext(ctx).Model(&CustomerModel{}).Where("id = ?", id).Updates(columns).Error
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

func (r *CustomerRepository) UpdateSecret(ctx context.Context, id, storedSecret string) error {
	if r.db == nil {
		return errDBUnavailable
	}
	return r.db.WithContext(ctx).Model(&CustomerModel{}).Where("id = ?", id).
		Update("secret", storedSecret).Error
}

func customerFromModel(model CustomerModel) *domain.Customer {
	return &domain.Customer{
		ID:           model.ID,
		Name:         model.Name,
		EmailAddr:    model.Email,
		StoredSecret: domain.SecretFromStored(model.Secret),
		Phone:        model.Phone,
		City:         model.City,
		Address:      model.Address,
		Photo:        model.Photo,
		CreatedAt:    model.CreatedAt,
	}
}
