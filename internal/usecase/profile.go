package usecase

import (
	"context"

	"mercato/internal/domain"
	"mercato/internal/infra/password"
)

type ChangePasswordRequest struct {
	Current string
	New     string
}

// Profile serves the authenticated principal's own record, keyed by the
// identity the middleware attached to the request.
type Profile struct {
	Customers CustomerStore
	Merchants MerchantStore
}

func (uc *Profile) Get(ctx context.Context, claims domain.TokenClaims) (domain.Principal, error) {
	switch claims.Role {
	case domain.RoleMerchant:
		merchant, err := uc.Merchants.GetByID(ctx, claims.PrincipalID)
		if err != nil {
			return nil, err
		}
		return *merchant, nil
	default:
		customer, err := uc.Customers.GetByID(ctx, claims.PrincipalID)
		if err != nil {
			return nil, err
		}
		return *customer, nil
	}
}

func (uc *Profile) UpdateCustomer(ctx context.Context, claims domain.TokenClaims, update domain.CustomerProfileUpdate) (*domain.Customer, error) {
	if update.Name == "" || update.Email == "" {
		return nil, domain.ErrValidation
	}
	return uc.Customers.UpdateProfile(ctx, claims.PrincipalID, update)
}

func (uc *Profile) UpdateMerchant(ctx context.Context, claims domain.TokenClaims, update domain.MerchantProfileUpdate) (*domain.Merchant, error) {
	if update.Name == "" || update.Email == "" {
		return nil, domain.ErrValidation
	}
	return uc.Merchants.UpdateProfile(ctx, claims.PrincipalID, update)
}

// ChangePassword re-verifies the current secret through the same dual-mode
// verifier the login path uses, then stores the replacement hashed. A legacy
// plaintext row migrates to bcrypt on its first password change.
func (uc *Profile) ChangePassword(ctx context.Context, claims domain.TokenClaims, req ChangePasswordRequest) error {
	if req.Current == "" || req.New == "" {
		return domain.ErrValidation
	}
	principal, err := uc.Get(ctx, claims)
	if err != nil {
		return err
	}
	if !password.Verify(req.Current, principal.Secret()) {
		return domain.ErrInvalidCredentials
	}
	stored, err := password.Hash(req.New)
	if err != nil {
		return err
	}
	switch claims.Role {
	case domain.RoleMerchant:
		return uc.Merchants.UpdateSecret(ctx, claims.PrincipalID, stored)
	default:
		return uc.Customers.UpdateSecret(ctx, claims.PrincipalID, stored)
	}
}
