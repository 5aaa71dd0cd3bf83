package usecase

import (
	"context"
	"errors"
	"log"
	"time"

	"mercato/internal/domain"
	"mercato/internal/infra/password"

	"github.com/google/uuid"
)

type LoginRequest struct {
	Email         string
	Secret        string
	DeviceInfo    string
	NetworkOrigin string
}

type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	Principal domain.Principal
}

// Login runs the full authentication flow: resolve the principal across the
// two stores, verify the submitted secret, mint a token and append the audit
// session row.
type Login struct {
	Customers CustomerStore
	Merchants MerchantStore
	Tokens    TokenIssuer
	Sessions  SessionRecorder
	Now       func() time.Time
}

func (uc *Login) Execute(ctx context.Context, req LoginRequest) (*LoginResult, error) {
	if req.Email == "" || req.Secret == "" {
		return nil, domain.ErrValidation
	}

	principal, err := uc.resolve(ctx, req.Email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			// Same error as a wrong secret so callers cannot probe
			// which emails are registered.
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	if !password.Verify(req.Secret, principal.Secret()) {
		return nil, domain.ErrInvalidCredentials
	}

	token, expiresAt, err := uc.Tokens.Issue(principal)
	if err != nil {
		return nil, err
	}

	now := time.Now
	if uc.Now != nil {
		now = uc.Now
	}
	session := domain.Session{
		ID:            uuid.NewString(),
		OwnerID:       principal.PrincipalID(),
		Role:          principal.Role(),
		Token:         token,
		DeviceInfo:    req.DeviceInfo,
		NetworkOrigin: req.NetworkOrigin,
		ExpiresAt:     expiresAt,
		CreatedAt:     now(),
	}
	if uc.Sessions != nil {
		// Session rows are an audit trail, not a capability store: a
		// failed write is logged and the login still succeeds.
		if err := uc.Sessions.Record(ctx, session); err != nil {
			log.Printf("session record failed for %s %s: %v", principal.Role(), principal.PrincipalID(), err)
		}
	}

	return &LoginResult{
		Token:     token,
		ExpiresAt: expiresAt,
		Principal: principal,
	}, nil
}

// resolve tries the customer store first and only consults the merchant
// store on a miss. When the same email exists in both stores the customer
// wins; the ordering is a documented tie-break and must stay sequential.
func (uc *Login) resolve(ctx context.Context, email string) (domain.Principal, error) {
	customer, err := uc.Customers.GetByEmail(ctx, email)
	if err == nil {
		return *customer, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	merchant, err := uc.Merchants.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	return *merchant, nil
}
