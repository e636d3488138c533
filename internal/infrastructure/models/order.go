package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Listing struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()"`
	SellerID      uuid.UUID `gorm:"type:uuid;not null;index"`
	Title         string    `gorm:"type:varchar(255);not null"`
	Slug          string    `gorm:"type:varchar(255);uniqueIndex;not null"`
	AmountCents   int64     `gorm:"not null"`
	Currency      string    `gorm:"type:varchar(10);not null;default:'USD'"`
	PurchaseCount int       `gorm:"not null;default:0"`
	IsActive      bool      `gorm:"not null;default:true"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
	DeletedAt     gorm.DeletedAt `gorm:"index"`
}

type Order struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()"`
	ListingID   uuid.UUID `gorm:"type:uuid;not null;index"`
	BuyerID     uuid.UUID `gorm:"type:uuid;not null;index"`
	AmountCents int64     `gorm:"not null"`
	Currency    string    `gorm:"type:varchar(10);not null;default:'USD'"`
	Status      string    `gorm:"type:varchar(50);not null;index"`
	Provider    string    `gorm:"type:varchar(50)"`
	ProviderRef *string   `gorm:"type:varchar(255);index"`
	PaidAt      *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// LicenseKey carries the storage-level uniqueness constraint that makes
// license issuance idempotent: one license per order.
type LicenseKey struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()"`
	OrderID   uuid.UUID `gorm:"type:uuid;uniqueIndex;not null"`
	BuyerID   uuid.UUID `gorm:"type:uuid;not null;index"`
	ListingID uuid.UUID `gorm:"type:uuid;not null;index"`
	Key       string    `gorm:"type:varchar(100);uniqueIndex;not null"`
	Status    string    `gorm:"type:varchar(50);not null;default:'ACTIVE'"`
	CreatedAt time.Time
}
