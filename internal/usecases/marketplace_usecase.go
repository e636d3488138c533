package usecases

import (
	"context"

	"github.com/google/uuid"
	"echoforge.backend/internal/domain/entities"
	domainerrors "echoforge.backend/internal/domain/errors"
	"echoforge.backend/internal/domain/repositories"
	"echoforge.backend/pkg/utils"
)

// CheckoutResult is returned on checkout initiation. Metadata is the
// correlation echo the provider sends back on its webhook.
type CheckoutResult struct {
	Order    *entities.Order   `json:"order"`
	Metadata map[string]string `json:"metadata"`
}

// MarketplaceUsecase handles listings, checkout initiation and license
// retrieval. Settlement itself arrives via the webhook path.
type MarketplaceUsecase struct {
	listingRepo repositories.ListingRepository
	orderRepo   repositories.OrderRepository
	licenseRepo repositories.LicenseKeyRepository
}

func NewMarketplaceUsecase(
	listingRepo repositories.ListingRepository,
	orderRepo repositories.OrderRepository,
	licenseRepo repositories.LicenseKeyRepository,
) *MarketplaceUsecase {
	return &MarketplaceUsecase{
		listingRepo: listingRepo,
		orderRepo:   orderRepo,
		licenseRepo: licenseRepo,
	}
}

// ListListings returns active listings.
func (u *MarketplaceUsecase) ListListings(ctx context.Context, limit, offset int) ([]*entities.Listing, int, error) {
	return u.listingRepo.ListActive(ctx, limit, offset)
}

// CreateListing registers a new listing for the seller.
func (u *MarketplaceUsecase) CreateListing(ctx context.Context, sellerID uuid.UUID, input *entities.CreateListingInput) (*entities.Listing, error) {
	listing := &entities.Listing{
		ID:          utils.GenerateUUIDv7(),
		SellerID:    sellerID,
		Title:       input.Title,
		Slug:        input.Slug,
		AmountCents: input.AmountCents,
		Currency:    "USD",
		IsActive:    true,
	}
	if err := u.listingRepo.Create(ctx, listing); err != nil {
		return nil, err
	}
	return listing, nil
}

// Checkout creates a PENDING order for a listing and returns the
// correlation metadata the hosted-checkout provider must echo back.
func (u *MarketplaceUsecase) Checkout(ctx context.Context, buyerID, listingID uuid.UUID, provider string) (*CheckoutResult, error) {
	listing, err := u.listingRepo.GetByID(ctx, listingID)
	if err != nil {
		return nil, err
	}
	if !listing.IsActive {
		return nil, domainerrors.BadRequest("listing is not available")
	}

	order := &entities.Order{
		ID:          utils.GenerateUUIDv7(),
		ListingID:   listing.ID,
		BuyerID:     buyerID,
		AmountCents: listing.AmountCents,
		Currency:    listing.Currency,
		Status:      entities.OrderStatusPending,
		Provider:    provider,
	}
	if err := u.orderRepo.Create(ctx, order); err != nil {
		return nil, err
	}

	return &CheckoutResult{
		Order:    order,
		Metadata: map[string]string{"order_id": order.ID.String()},
	}, nil
}

// GetOrder returns an order visible to its buyer.
func (u *MarketplaceUsecase) GetOrder(ctx context.Context, orderID, buyerID uuid.UUID) (*entities.Order, error) {
	order, err := u.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.BuyerID != buyerID {
		return nil, domainerrors.NotFound("order not found")
	}
	return order, nil
}

// Licenses returns the buyer's license keys.
func (u *MarketplaceUsecase) Licenses(ctx context.Context, buyerID uuid.UUID) ([]*entities.LicenseKey, error) {
	return u.licenseRepo.GetByBuyerID(ctx, buyerID)
}
