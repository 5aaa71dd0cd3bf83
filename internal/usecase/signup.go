package usecase

import (
	"context"
	"errors"
	"time"

	"mercato/internal/domain"
	"mercato/internal/infra/password"

	"github.com/google/uuid"
)

type SignupCustomerRequest struct {
	Name    string
	Email   string
	Secret  string
	Address string
	Phone   string
	City    string
}

type SignupMerchantRequest struct {
	Name        string
	Email       string
	Secret      string
	Address     string
	Phone       string
	Description string
}

// Signup creates principal rows. New secrets are always stored hashed; the
// legacy plaintext encoding is read-only migration debt.
type Signup struct {
	Customers CustomerStore
	Merchants MerchantStore
	Now       func() time.Time
}

func (uc *Signup) Customer(ctx context.Context, req SignupCustomerRequest) (*domain.Customer, error) {
	if req.Name == "" || req.Email == "" || req.Secret == "" {
		return nil, domain.ErrValidation
	}
	if err := uc.checkEmailFree(ctx, req.Email, domain.RoleCustomer); err != nil {
		return nil, err
	}
	stored, err := password.Hash(req.Secret)
	if err != nil {
		return nil, err
	}
	customer := domain.Customer{
		ID:           uuid.NewString(),
		Name:         req.Name,
		EmailAddr:    req.Email,
		StoredSecret: domain.SecretFromStored(stored),
		Phone:        req.Phone,
		City:         req.City,
		Address:      req.Address,
		CreatedAt:    uc.now(),
	}
	if err := uc.Customers.Create(ctx, customer); err != nil {
		return nil, err
	}
	return &customer, nil
}

func (uc *Signup) Merchant(ctx context.Context, req SignupMerchantRequest) (*domain.Merchant, error) {
	if req.Name == "" || req.Email == "" || req.Secret == "" {
		return nil, domain.ErrValidation
	}
	if err := uc.checkEmailFree(ctx, req.Email, domain.RoleMerchant); err != nil {
		return nil, err
	}
	stored, err := password.Hash(req.Secret)
	if err != nil {
		return nil, err
	}
	merchant := domain.Merchant{
		ID:           uuid.NewString(),
		Name:         req.Name,
		EmailAddr:    req.Email,
		StoredSecret: domain.SecretFromStored(stored),
		Address:      req.Address,
		Phone:        req.Phone,
		Description:  req.Description,
		CreatedAt:    uc.now(),
	}
	if err := uc.Merchants.Create(ctx, merchant); err != nil {
		return nil, err
	}
	return &merchant, nil
}

// checkEmailFree enforces uniqueness within one store only. The same email
// may exist in the other store; cross-store uniqueness is not a constraint.
func (uc *Signup) checkEmailFree(ctx context.Context, email string, role domain.Role) error {
	var err error
	switch role {
	case domain.RoleMerchant:
		_, err = uc.Merchants.GetByEmail(ctx, email)
	default:
		_, err = uc.Customers.GetByEmail(ctx, email)
	}
	if err == nil {
		return domain.ErrEmailTaken
	}
	if errors.Is(err, domain.ErrNotFound) {
		return nil
	}
	return err
}

func (uc *Signup) now() time.Time {
	if uc.Now != nil {
		return uc.Now()
	}
	return time.Now()
}
