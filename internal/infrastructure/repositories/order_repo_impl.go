package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"echoforge.backend/internal/domain/entities"
	domainerrors "echoforge.backend/internal/domain/errors"
	"echoforge.backend/internal/infrastructure/models"
)

// OrderRepositoryImpl implements OrderRepository
type OrderRepositoryImpl struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) *OrderRepositoryImpl {
	return &OrderRepositoryImpl{db: db}
}

func (r *OrderRepositoryImpl) Create(ctx context.Context, order *entities.Order) error {
	m := &models.Order{
		ID:          order.ID,
		ListingID:   order.ListingID,
		BuyerID:     order.BuyerID,
		AmountCents: order.AmountCents,
		Currency:    order.Currency,
		Status:      string(order.Status),
		Provider:    order.Provider,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
	if order.ProviderRef.Valid {
		m.ProviderRef = &order.ProviderRef.String
	}
	return GetDB(ctx, r.db).WithContext(ctx).Create(m).Error
}

func (r *OrderRepositoryImpl) GetByID(ctx context.Context, id uuid.UUID) (*entities.Order, error) {
	var m models.Order
	db := GetDB(ctx, r.db).WithContext(ctx)
	if lockRequested(ctx) {
		db = db.Clauses(rowLock)
	}
	if err := db.Where("id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return r.toEntity(&m), nil
}

func (r *OrderRepositoryImpl) GetByBuyerID(ctx context.Context, buyerID uuid.UUID, limit, offset int) ([]*entities.Order, int, error) {
	db := GetDB(ctx, r.db).WithContext(ctx)

	var total int64
	if err := db.Model(&models.Order{}).Where("buyer_id = ?", buyerID).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var ms []models.Order
	if err := db.Where("buyer_id = ?", buyerID).
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&ms).Error; err != nil {
		return nil, 0, err
	}

	var orders []*entities.Order
	for _, m := range ms {
		model := m
		orders = append(orders, r.toEntity(&model))
	}
	return orders, int(total), nil
}

// MarkSucceeded transitions out of PENDING only; a duplicate webhook for
// an already-succeeded order affects zero rows and reports false, which
// is what keeps the purchase counter from double-incrementing.
func (r *OrderRepositoryImpl) MarkSucceeded(ctx context.Context, id uuid.UUID, providerRef string, paidAt time.Time) (bool, error) {
	res := GetDB(ctx, r.db).WithContext(ctx).Model(&models.Order{}).
		Where("id = ? AND status = ?", id, string(entities.OrderStatusPending)).
		Updates(map[string]interface{}{
			"status":       string(entities.OrderStatusSucceeded),
			"provider_ref": providerRef,
			"paid_at":      paidAt,
			"updated_at":   time.Now(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *OrderRepositoryImpl) MarkFailed(ctx context.Context, id uuid.UUID) (bool, error) {
	res := GetDB(ctx, r.db).WithContext(ctx).Model(&models.Order{}).
		Where("id = ? AND status = ?", id, string(entities.OrderStatusPending)).
		Updates(map[string]interface{}{
			"status":     string(entities.OrderStatusFailed),
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *OrderRepositoryImpl) toEntity(m *models.Order) *entities.Order {
	o := &entities.Order{
		ID:          m.ID,
		ListingID:   m.ListingID,
		BuyerID:     m.BuyerID,
		AmountCents: m.AmountCents,
		Currency:    m.Currency,
		Status:      entities.OrderStatus(m.Status),
		Provider:    m.Provider,
		PaidAt:      m.PaidAt,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
	if m.ProviderRef != nil {
		o.ProviderRef = null.StringFrom(*m.ProviderRef)
	}
	return o
}

// ListingRepositoryImpl implements ListingRepository
type ListingRepositoryImpl struct {
	db *gorm.DB
}

func NewListingRepository(db *gorm.DB) *ListingRepositoryImpl {
	return &ListingRepositoryImpl{db: db}
}

func (r *ListingRepositoryImpl) Create(ctx context.Context, listing *entities.Listing) error {
	m := &models.Listing{
		ID:            listing.ID,
		SellerID:      listing.SellerID,
		Title:         listing.Title,
		Slug:          listing.Slug,
		AmountCents:   listing.AmountCents,
		Currency:      listing.Currency,
		PurchaseCount: listing.PurchaseCount,
		IsActive:      listing.IsActive,
		CreatedAt:     time.Now(),
		UpdatedAt:     time.Now(),
	}
	return GetDB(ctx, r.db).WithContext(ctx).Create(m).Error
}

func (r *ListingRepositoryImpl) GetByID(ctx context.Context, id uuid.UUID) (*entities.Listing, error) {
	var m models.Listing
	if err := GetDB(ctx, r.db).WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return r.listingToEntity(&m), nil
}

func (r *ListingRepositoryImpl) ListActive(ctx context.Context, limit, offset int) ([]*entities.Listing, int, error) {
	db := GetDB(ctx, r.db).WithContext(ctx)

	var total int64
	if err := db.Model(&models.Listing{}).Where("is_active = ?", true).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var ms []models.Listing
	if err := db.Where("is_active = ?", true).
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&ms).Error; err != nil {
		return nil, 0, err
	}

	var listings []*entities.Listing
	for _, m := range ms {
		model := m
		listings = append(listings, r.listingToEntity(&model))
	}
	return listings, int(total), nil
}

func (r *ListingRepositoryImpl) IncrementPurchaseCount(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).WithContext(ctx).Model(&models.Listing{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"purchase_count": gorm.Expr("purchase_count + 1"),
			"updated_at":     time.Now(),
		}).Error
}

func (r *ListingRepositoryImpl) listingToEntity(m *models.Listing) *entities.Listing {
	return &entities.Listing{
		ID:            m.ID,
		SellerID:      m.SellerID,
		Title:         m.Title,
		Slug:          m.Slug,
		AmountCents:   m.AmountCents,
		Currency:      m.Currency,
		PurchaseCount: m.PurchaseCount,
		IsActive:      m.IsActive,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}

// LicenseKeyRepositoryImpl implements LicenseKeyRepository
type LicenseKeyRepositoryImpl struct {
	db *gorm.DB
}

func NewLicenseKeyRepository(db *gorm.DB) *LicenseKeyRepositoryImpl {
	return &LicenseKeyRepositoryImpl{db: db}
}

// UpsertForOrder leans on the unique index on order_id: the insert is a
// no-op when a license already exists, and the follow-up read returns
// whichever license won. Duplicate reconciliations converge on one key.
func (r *LicenseKeyRepositoryImpl) UpsertForOrder(ctx context.Context, license *entities.LicenseKey) (*entities.LicenseKey, error) {
	m := &models.LicenseKey{
		ID:        license.ID,
		OrderID:   license.OrderID,
		BuyerID:   license.BuyerID,
		ListingID: license.ListingID,
		Key:       license.Key,
		Status:    string(license.Status),
		CreatedAt: time.Now(),
	}
	res := GetDB(ctx, r.db).WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "order_id"}},
			DoNothing: true,
		}).
		Create(m)
	if res.Error != nil {
		return nil, res.Error
	}
	return r.GetByOrderID(ctx, license.OrderID)
}

func (r *LicenseKeyRepositoryImpl) GetByOrderID(ctx context.Context, orderID uuid.UUID) (*entities.LicenseKey, error) {
	var m models.LicenseKey
	if err := GetDB(ctx, r.db).WithContext(ctx).Where("order_id = ?", orderID).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return r.licenseToEntity(&m), nil
}

func (r *LicenseKeyRepositoryImpl) GetByBuyerID(ctx context.Context, buyerID uuid.UUID) ([]*entities.LicenseKey, error) {
	var ms []models.LicenseKey
	if err := GetDB(ctx, r.db).WithContext(ctx).
		Where("buyer_id = ?", buyerID).
		Order("created_at DESC").
		Find(&ms).Error; err != nil {
		return nil, err
	}

	var licenses []*entities.LicenseKey
	for _, m := range ms {
		model := m
		licenses = append(licenses, r.licenseToEntity(&model))
	}
	return licenses, nil
}

func (r *LicenseKeyRepositoryImpl) licenseToEntity(m *models.LicenseKey) *entities.LicenseKey {
	return &entities.LicenseKey{
		ID:        m.ID,
		OrderID:   m.OrderID,
		BuyerID:   m.BuyerID,
		ListingID: m.ListingID,
		Key:       m.Key,
		Status:    entities.LicenseStatus(m.Status),
		CreatedAt: m.CreatedAt,
	}
}
