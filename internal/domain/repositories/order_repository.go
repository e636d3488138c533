package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"echoforge.backend/internal/domain/entities"
)

// OrderRepository is the port for marketplace orders.
type OrderRepository interface {
	Create(ctx context.Context, order *entities.Order) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.Order, error)
	GetByBuyerID(ctx context.Context, buyerID uuid.UUID, limit, offset int) ([]*entities.Order, int, error)
	// MarkSucceeded transitions PENDING -> SUCCEEDED; returns false when the
	// order was already succeeded (duplicate webhook delivery).
	MarkSucceeded(ctx context.Context, id uuid.UUID, providerRef string, paidAt time.Time) (bool, error)
	MarkFailed(ctx context.Context, id uuid.UUID) (bool, error)
}

// ListingRepository is the port for marketplace listings.
type ListingRepository interface {
	Create(ctx context.Context, listing *entities.Listing) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.Listing, error)
	ListActive(ctx context.Context, limit, offset int) ([]*entities.Listing, int, error)
	IncrementPurchaseCount(ctx context.Context, id uuid.UUID) error
}

// LicenseKeyRepository is the port for license keys. Uniqueness per order
// is a storage-level constraint; UpsertForOrder never errors on conflict.
type LicenseKeyRepository interface {
	// UpsertForOrder inserts the license unless one already exists for the
	// order, then returns whichever license is now bound to the order.
	UpsertForOrder(ctx context.Context, license *entities.LicenseKey) (*entities.LicenseKey, error)
	GetByOrderID(ctx context.Context, orderID uuid.UUID) (*entities.LicenseKey, error)
	GetByBuyerID(ctx context.Context, buyerID uuid.UUID) ([]*entities.LicenseKey, error)
}
