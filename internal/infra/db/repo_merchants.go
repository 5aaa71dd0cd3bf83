package db

import (
	"context"
	"errors"

	"mercato/internal/domain"

	"gorm.io/gorm"
)

type MerchantRepository struct {
	db *gorm.DB
}

func NewMerchantRepository(db *gorm.DB) *MerchantRepository {
	return &MerchantRepository{db: db}
}

func (r *MerchantRepository) GetByEmail(ctx context.Context, email string) (*domain.Merchant, error) {
	if r.db == nil {
		return nil, errDBUnavailable
	}
	var model MerchantModel
	err := r.db.WithContext(ctx).First(&model, "email = ?", email).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return merchantFromModel(model), nil
}

func (r *MerchantRepository) GetByID(ctx context.Context, id string) (*domain.Merchant, error) {
	if r.db == nil {
		return nil, errDBUnavailable
	}
	var model MerchantModel
	err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return merchantFromModel(model), nil
}

func (r *MerchantRepository) Create(ctx context.Context, merchant domain.Merchant) error {
	if r.db == nil {
		return errDBUnavailable
	}
	model := MerchantModel{
		ID:          merchant.ID,
		Name:        merchant.Name,
		Email:       merchant.EmailAddr,
		Secret:      merchant.StoredSecret.Value,
		Address:     merchant.Address,
		Phone:       merchant.Phone,
		Description: merchant.Description,
		Photos:      merchant.Photos,
		CreatedAt:   merchant.CreatedAt,
	}
	return r.db.WithContext(ctx).Create(&model).Error
}

func (r *MerchantRepository) UpdateProfile(ctx context.Context, id string, update domain.MerchantProfileUpdate) (*domain.Merchant, error) {
	if r.db == nil {
		return nil, errDBUnavailable
	}
	columns := map[string]any{
		"name":        update.Name,
		"email":       update.Email,
		"phone":       update.Phone,
		"address":     update.Address,
		"description": update.Description,
	}
	err := r.db.WithContext(ctx).Model(&MerchantModel{}).Where("id = ?", id).Updates(columns).Error
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

func (r *MerchantRepository) UpdateSecret(ctx context.Context, id, storedSecret string) error {
	if r.db == nil {
		return errDBUnavailable
	}
	return r.db.WithContext(ctx).Model(&MerchantModel{}).Where("id = ?", id).
		Update("secret", storedSecret).Error
}

func merchantFromModel(model MerchantModel) *domain.Merchant {
	return &domain.Merchant{
		ID:           model.ID,
		Name:         model.Name,
		EmailAddr:    model.Email,
		StoredSecret: domain.SecretFromStored(model.Secret),
		Address:      model.Address,
		Phone:        model.Phone,
		Description:  model.Description,
		Photos:       model.Photos,
		CreatedAt:    model.CreatedAt,
	}
}
