package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"echoforge.backend/internal/domain/entities"
	domainerrors "echoforge.backend/internal/domain/errors"
)

func TestOrderRepository_Lifecycle(t *testing.T) {
	db := newTestDB(t)
	createMarketplaceTables(t, db)
	repo := NewOrderRepository(db)
	ctx := context.Background()

	buyerID := uuid.New()
	o := &entities.Order{
		ID:          uuid.New(),
		ListingID:   uuid.New(),
		BuyerID:     buyerID,
		AmountCents: 4900,
		Currency:    "USD",
		Status:      entities.OrderStatusPending,
		Provider:    "stripe",
	}
	require.NoError(t, repo.Create(ctx, o))

	got, err := repo.GetByID(ctx, o.ID)
	require.NoError(t, err)
	require.Equal(t, entities.OrderStatusPending, got.Status)
	require.Equal(t, int64(4900), got.AmountCents)

	_, err = repo.GetByID(ctx, uuid.New())
	require.ErrorIs(t, err, domainerrors.ErrNotFound)

	paidAt := time.Now()
	ok, err := repo.MarkSucceeded(ctx, o.ID, "pi_123", paidAt)
	require.NoError(t, err)
	require.True(t, ok)

	got, err = repo.GetByID(ctx, o.ID)
	require.NoError(t, err)
	require.Equal(t, entities.OrderStatusSucceeded, got.Status)
	require.Equal(t, "pi_123", got.ProviderRef.String)
	require.NotNil(t, got.PaidAt)

	// redelivered settlement affects zero rows
	ok, err = repo.MarkSucceeded(ctx, o.ID, "pi_456", time.Now())
	require.NoError(t, err)
	require.False(t, ok)

	got, err = repo.GetByID(ctx, o.ID)
	require.NoError(t, err)
	require.Equal(t, "pi_123", got.ProviderRef.String, "first provider ref must win")

	orders, total, err := repo.GetByBuyerID(ctx, buyerID, 10, 0)
	require.NoError(t, err)
	require.Equal(t, 1, total)
	require.Len(t, orders, 1)
}

func TestOrderRepository_MarkFailed(t *testing.T) {
	db := newTestDB(t)
	createMarketplaceTables(t, db)
	repo := NewOrderRepository(db)
	ctx := context.Background()

	o := &entities.Order{ID: uuid.New(), ListingID: uuid.New(), BuyerID: uuid.New(), AmountCents: 100, Currency: "USD", Status: entities.OrderStatusPending}
	require.NoError(t, repo.Create(ctx, o))

	ok, err := repo.MarkFailed(ctx, o.ID)
	require.NoError(t, err)
	require.True(t, ok)

	// a failed order cannot later succeed
	ok, err = repo.MarkSucceeded(ctx, o.ID, "pi_late", time.Now())
	require.NoError(t, err)
	require.False(t, ok)
}

func TestListingRepository_CreateListIncrement(t *testing.T) {
	db := newTestDB(t)
	createMarketplaceTables(t, db)
	repo := NewListingRepository(db)
	ctx := context.Background()

	l := &entities.Listing{
		ID:          uuid.New(),
		SellerID:    uuid.New(),
		Title:       "Voice pack vol. 1",
		Slug:        "voice-pack-vol-1",
		AmountCents: 1900,
		Currency:    "USD",
		IsActive:    true,
	}
	require.NoError(t, repo.Create(ctx, l))

	inactive := &entities.Listing{ID: uuid.New(), SellerID: l.SellerID, Title: "Hidden", Slug: "hidden", AmountCents: 900, Currency: "USD", IsActive: false}
	require.NoError(t, repo.Create(ctx, inactive))

	items, total, err := repo.ListActive(ctx, 10, 0)
	require.NoError(t, err)
	require.Equal(t, 1, total)
	require.Len(t, items, 1)
	require.Equal(t, "voice-pack-vol-1", items[0].Slug)

	require.NoError(t, repo.IncrementPurchaseCount(ctx, l.ID))
	require.NoError(t, repo.IncrementPurchaseCount(ctx, l.ID))

	got, err := repo.GetByID(ctx, l.ID)
	require.NoError(t, err)
	require.Equal(t, 2, got.PurchaseCount)
}

func TestLicenseKeyRepository_UpsertForOrder_Idempotent(t *testing.T) {
	db := newTestDB(t)
	createMarketplaceTables(t, db)
	repo := NewLicenseKeyRepository(db)
	ctx := context.Background()

	orderID := uuid.New()
	buyerID := uuid.New()
	listingID := uuid.New()

	first := &entities.LicenseKey{
		ID:        uuid.New(),
		OrderID:   orderID,
		BuyerID:   buyerID,
		ListingID: listingID,
		Key:       "EF-AAAA1111-ZZZZ",
		Status:    entities.LicenseStatusActive,
	}
	got, err := repo.UpsertForOrder(ctx, first)
	require.NoError(t, err)
	require.Equal(t, first.Key, got.Key)

	// a second issuance for the same order converges on the stored key
	second := &entities.LicenseKey{
		ID:        uuid.New(),
		OrderID:   orderID,
		BuyerID:   buyerID,
		ListingID: listingID,
		Key:       "EF-BBBB2222-YYYY",
		Status:    entities.LicenseStatusActive,
	}
	got, err = repo.UpsertForOrder(ctx, second)
	require.NoError(t, err)
	require.Equal(t, first.Key, got.Key, "duplicate issuance must return the original key")

	var count int64
	require.NoError(t, db.Table("license_keys").Count(&count).Error)
	require.Equal(t, int64(1), count)

	licenses, err := repo.GetByBuyerID(ctx, buyerID)
	require.NoError(t, err)
	require.Len(t, licenses, 1)

	_, err = repo.GetByOrderID(ctx, uuid.New())
	require.ErrorIs(t, err, domainerrors.ErrNotFound)
}
