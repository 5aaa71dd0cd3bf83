package db

import (
	"context"
	"fmt"

	"mercato/internal/domain"

	"gorm.io/gorm"
)

// SessionRepository appends login audit rows. Each role has its own table;
// rows are never updated or deleted here.
type SessionRepository struct {
	db *gorm.DB
}

func NewSessionRepository(db *gorm.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

func (r *SessionRepository) Record(ctx context.Context, session domain.Session) error {
	if r.db == nil {
		return errDBUnavailable
	}
	switch session.Role {
	case domain.RoleCustomer:
		model := CustomerSessionModel{
			ID:            session.ID,
			CustomerID:    session.OwnerID,
			Token:         session.Token,
			DeviceInfo:    session.DeviceInfo,
			NetworkOrigin: session.NetworkOrigin,
			ExpiresAt:     session.ExpiresAt,
			CreatedAt:     session.CreatedAt,
		}
		return r.db.WithContext(ctx).Create(&model).Error
	case domain.RoleMerchant:
		model := MerchantSessionModel{
			ID:            session.ID,
			MerchantID:    session.OwnerID,
			Token:         session.Token,
			DeviceInfo:    session.DeviceInfo,
			NetworkOrigin: session.NetworkOrigin,
			ExpiresAt:     session.ExpiresAt,
			CreatedAt:     session.CreatedAt,
		}
		return r.db.WithContext(ctx).Create(&model).Error
	default:
		return fmt.Errorf("unknown session role %q", session.Role)
	}
}
