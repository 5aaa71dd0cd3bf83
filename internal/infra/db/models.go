package db

import "time"

type CustomerModel struct {
	ID        string `gorm:"type:uuid;primaryKey"`
	Name      string `gorm:"not null"`
	Email     string `gorm:"uniqueIndex;not null"`
	Secret    string `gorm:"not null"`
	Phone     string
	City      string
	Address   string
	Photo     string
	CreatedAt time.Time `gorm:"not null"`
}

func (CustomerModel) TableName() string { return "customers" }

type MerchantModel struct {
	ID          string `gorm:"type:uuid;primaryKey"`
	Name        string `gorm:"not null"`
	Email       string `gorm:"uniqueIndex;not null"`
	Secret      string `gorm:"not null"`
	Address     string
	Phone       string
	Description string
	Photos      string
	CreatedAt   time.Time `gorm:"not null"`
}

func (MerchantModel) TableName() string { return "merchants" }

type CustomerSessionModel struct {
	ID            string `gorm:"type:uuid;primaryKey"`
	CustomerID    string `gorm:"type:uuid;index;not null"`
	Token         string `gorm:"not null"`
	DeviceInfo    string
	NetworkOrigin string
	ExpiresAt     time.Time `gorm:"not null"`
	CreatedAt     time.Time `gorm:"not null"`
}

func (CustomerSessionModel) TableName() string { return "customer_sessions" }

type MerchantSessionModel struct {
	ID            string `gorm:"type:uuid;primaryKey"`
	MerchantID    string `gorm:"type:uuid;index;not null"`
	Token         string `gorm:"not null"`
	DeviceInfo    string
	NetworkOrigin string
	ExpiresAt     time.Time `gorm:"not null"`
	CreatedAt     time.Time `gorm:"not null"`
}

func (MerchantSessionModel) TableName() string { return "merchant_sessions" }
