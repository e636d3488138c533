package models

import (
	"time"

	"github.com/google/uuid"
)

type Payment struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()"`
	UserID        uuid.UUID  `gorm:"type:uuid;not null;index"`
	Purpose       string     `gorm:"type:varchar(50);not null"`
	Plan          string     `gorm:"type:varchar(50)"`
	PackageID     string     `gorm:"type:varchar(100)"`
	OrderID       *uuid.UUID `gorm:"type:uuid;index"`
	AmountUSD     string     `gorm:"column:amount_usd;type:decimal(12,2);not null"`
	Currency      string     `gorm:"type:varchar(10);not null;default:'USD'"`
	Network       string     `gorm:"type:varchar(20)"`
	WalletAddress string     `gorm:"type:varchar(255)"`
	Reference     string     `gorm:"type:varchar(100);uniqueIndex;not null"`
	Provider      string     `gorm:"type:varchar(50);not null"`
	TxHash        *string    `gorm:"type:varchar(255);index"`
	Status        string     `gorm:"type:varchar(50);not null;index"`
	ExpiresAt     time.Time  `gorm:"not null"`
	SubmittedAt   *time.Time
	VerifiedAt    *time.Time
	VerifiedBy    *uuid.UUID `gorm:"type:uuid"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
