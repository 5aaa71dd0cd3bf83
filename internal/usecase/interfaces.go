package usecase

import (
	"context"
	"time"

	"mercato/internal/domain"
)

type CustomerStore interface {
	GetByEmail(ctx context.Context, email string) (*domain.Customer, error)
	GetByID(ctx context.Context, id string) (*domain.Customer, error)
	Create(ctx context.Context, customer domain.Customer) error
	UpdateProfile(ctx context.Context, id string, update domain.CustomerProfileUpdate) (*domain.Customer, error)
	UpdateSecret(ctx context.Context, id, storedSecret string) error
}

type MerchantStore interface {
	GetByEmail(ctx context.Context, email string) (*domain.Merchant, error)
	GetByID(ctx context.Context, id string) (*domain.Merchant, error)
	Create(ctx context.Context, merchant domain.Merchant) error
	UpdateProfile(ctx context.Context, id string, update domain.MerchantProfileUpdate) (*domain.Merchant, error)
	UpdateSecret(ctx context.Context, id, storedSecret string) error
}

// TokenIssuer mints a self-contained signed token for a resolved principal.
type TokenIssuer interface {
	Issue(principal domain.Principal) (string, time.Time, error)
}

// SessionRecorder persists the per-login audit row.
type SessionRecorder interface {
	Record(ctx context.Context, session domain.Session) error
}
