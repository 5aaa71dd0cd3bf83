package db

import (
	"errors"
	"fmt"

	"mercato/internal/config"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type Store struct {
	DB *gorm.DB
}

func NewStore(cfg config.Config) (*Store, error) {
	if cfg.PostgresDSN == "" {
		return nil, errors.New("POSTGRES_DSN is required")
	}
	gdb, err := gorm.Open(postgres.Open(cfg.PostgresDSN), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return &Store{DB: gdb}, nil
}

// AutoMigrate creates the two principal tables and their parallel session
// tables. The session tables are deliberately separate per role.
func (s *Store) AutoMigrate() error {
	if s.DB == nil {
		return errDBUnavailable
	}
	return s.DB.AutoMigrate(
		&CustomerModel{},
		&MerchantModel{},
		&CustomerSessionModel{},
		&MerchantSessionModel{},
	)
}
