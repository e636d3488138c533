package entities

import (
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
)

// OrderStatus represents the status of a marketplace order.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "PENDING"
	OrderStatusSucceeded OrderStatus = "SUCCEEDED"
	OrderStatusFailed    OrderStatus = "FAILED"
)

// Listing is a marketplace listing for an AI model.
type Listing struct {
	ID            uuid.UUID  `json:"id"`
	SellerID      uuid.UUID  `json:"sellerId"`
	Title         string     `json:"title"`
	Slug          string     `json:"slug"`
	AmountCents   int64      `json:"amountCents"` // minor currency units
	Currency      string     `json:"currency"`
	PurchaseCount int        `json:"purchaseCount"`
	IsActive      bool       `json:"isActive"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
	DeletedAt     *time.Time `json:"-"`
}

// Order is a buyer's purchase of a listing. AmountCents mirrors the
// listing price at checkout time in minor currency units.
type Order struct {
	ID          uuid.UUID   `json:"id"`
	ListingID   uuid.UUID   `json:"listingId"`
	BuyerID     uuid.UUID   `json:"buyerId"`
	AmountCents int64       `json:"amountCents"`
	Currency    string      `json:"currency"`
	Status      OrderStatus `json:"status"`
	Provider    string      `json:"provider"`
	ProviderRef null.String `json:"providerRef,omitempty"`
	PaidAt      *time.Time  `json:"paidAt,omitempty"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`
}

// LicenseStatus represents the status of a license key.
type LicenseStatus string

const (
	LicenseStatusActive  LicenseStatus = "ACTIVE"
	LicenseStatusRevoked LicenseStatus = "REVOKED"
)

// LicenseKey is the one-per-order license minted when an order succeeds.
type LicenseKey struct {
	ID        uuid.UUID     `json:"id"`
	OrderID   uuid.UUID     `json:"orderId"`
	BuyerID   uuid.UUID     `json:"buyerId"`
	ListingID uuid.UUID     `json:"listingId"`
	Key       string        `json:"key"`
	Status    LicenseStatus `json:"status"`
	CreatedAt time.Time     `json:"createdAt"`
}

// CreateListingInput is the seller-facing listing creation payload.
type CreateListingInput struct {
	Title       string `json:"title" binding:"required,min=3,max=255"`
	Slug        string `json:"slug" binding:"required,min=3,max=255"`
	AmountCents int64  `json:"amountCents" binding:"required,gt=0"`
}

// CheckoutInput selects a listing and a hosted-checkout provider.
type CheckoutInput struct {
	ListingID string `json:"listingId" binding:"required,uuid"`
	Provider  string `json:"provider" binding:"required,oneof=stripe flutterwave"`
}
