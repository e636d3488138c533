package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/volatiletech/null/v8"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"echoforge.backend/internal/domain/entities"
	domainerrors "echoforge.backend/internal/domain/errors"
	"echoforge.backend/internal/infrastructure/models"
)

// PaymentRepositoryImpl implements PaymentRepository
type PaymentRepositoryImpl struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) *PaymentRepositoryImpl {
	return &PaymentRepositoryImpl{db: db}
}

func (r *PaymentRepositoryImpl) Create(ctx context.Context, p *entities.Payment) error {
	m := r.toModel(p)
	m.CreatedAt = time.Now()
	m.UpdatedAt = time.Now()
	return GetDB(ctx, r.db).WithContext(ctx).Create(m).Error
}

func (r *PaymentRepositoryImpl) GetByID(ctx context.Context, id uuid.UUID) (*entities.Payment, error) {
	var m models.Payment
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

func (r *PaymentRepositoryImpl) GetByReference(ctx context.Context, reference string) (*entities.Payment, error) {
	var m models.Payment
	if err := GetDB(ctx, r.db).WithContext(ctx).Where("reference = ?", reference).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return r.toEntity(&m), nil
}

func (r *PaymentRepositoryImpl) GetByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*entities.Payment, int, error) {
	return r.list(ctx, "user_id = ?", []interface{}{userID}, limit, offset)
}

func (r *PaymentRepositoryImpl) ListByStatus(ctx context.Context, status entities.PaymentStatus, limit, offset int) ([]*entities.Payment, int, error) {
	return r.list(ctx, "status = ?", []interface{}{string(status)}, limit, offset)
}

func (r *PaymentRepositoryImpl) list(ctx context.Context, cond string, args []interface{}, limit, offset int) ([]*entities.Payment, int, error) {
	db := GetDB(ctx, r.db).WithContext(ctx)

	var total int64
	if err := db.Model(&models.Payment{}).Where(cond, args...).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var ms []models.Payment
	if err := db.Where(cond, args...).
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&ms).Error; err != nil {
		return nil, 0, err
	}

	var payments []*entities.Payment
	for _, m := range ms {
		model := m
		payments = append(payments, r.toEntity(&model))
	}
	return payments, int(total), nil
}

// MarkSubmitted advances PENDING -> PENDING_VERIFICATION. The status and
// expiry guard live in the WHERE clause so a concurrent second submission
// (or a submission on an expired record) affects zero rows.
func (r *PaymentRepositoryImpl) MarkSubmitted(ctx context.Context, id uuid.UUID, txHash string, now time.Time) (bool, error) {
	res := GetDB(ctx, r.db).WithContext(ctx).Model(&models.Payment{}).
		Where("id = ? AND status = ? AND expires_at > ?", id, string(entities.PaymentStatusPending), now).
		Updates(map[string]interface{}{
			"status":       string(entities.PaymentStatusPendingVerification),
			"tx_hash":      txHash,
			"submitted_at": now,
			"updated_at":   now,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// MarkVerified advances PENDING_VERIFICATION to a terminal outcome; the
// prior-state guard makes verification run at most once per record.
func (r *PaymentRepositoryImpl) MarkVerified(ctx context.Context, id uuid.UUID, outcome entities.PaymentStatus, adminID uuid.UUID, now time.Time) (bool, error) {
	if outcome != entities.PaymentStatusConfirmed && outcome != entities.PaymentStatusRejected {
		return false, errors.New("outcome must be CONFIRMED or REJECTED")
	}
	res := GetDB(ctx, r.db).WithContext(ctx).Model(&models.Payment{}).
		Where("id = ? AND status = ?", id, string(entities.PaymentStatusPendingVerification)).
		Updates(map[string]interface{}{
			"status":      string(outcome),
			"verified_at": now,
			"verified_by": adminID,
			"updated_at":  now,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *PaymentRepositoryImpl) MarkExpired(ctx context.Context, id uuid.UUID) (bool, error) {
	res := GetDB(ctx, r.db).WithContext(ctx).Model(&models.Payment{}).
		Where("id = ? AND status = ?", id, string(entities.PaymentStatusPending)).
		Updates(map[string]interface{}{
			"status":     string(entities.PaymentStatusExpired),
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// CreateConfirmed records a webhook-settled payment. The unique reference
// column is the idempotency anchor: a redelivered webhook conflicts and
// reports created=false instead of inserting a duplicate ledger entry.
func (r *PaymentRepositoryImpl) CreateConfirmed(ctx context.Context, p *entities.Payment) (bool, error) {
	m := r.toModel(p)
	m.Status = string(entities.PaymentStatusConfirmed)
	m.CreatedAt = time.Now()
	m.UpdatedAt = time.Now()
	res := GetDB(ctx, r.db).WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "reference"}},
			DoNothing: true,
		}).
		Create(m)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *PaymentRepositoryImpl) GetExpiredPending(ctx context.Context, limit int) ([]*entities.Payment, error) {
	var ms []models.Payment
	if err := GetDB(ctx, r.db).WithContext(ctx).
		Where("status = ? AND expires_at < ?", string(entities.PaymentStatusPending), time.Now()).
		Limit(limit).
		Find(&ms).Error; err != nil {
		return nil, err
	}

	var payments []*entities.Payment
	for _, m := range ms {
		model := m
		payments = append(payments, r.toEntity(&model))
	}
	return payments, nil
}

func (r *PaymentRepositoryImpl) ExpirePayments(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	return GetDB(ctx, r.db).WithContext(ctx).Model(&models.Payment{}).
		Where("id IN ? AND status = ?", ids, string(entities.PaymentStatusPending)).
		Updates(map[string]interface{}{
			"status":     string(entities.PaymentStatusExpired),
			"updated_at": time.Now(),
		}).Error
}

func (r *PaymentRepositoryImpl) CountByStatus(ctx context.Context, status entities.PaymentStatus) (int64, error) {
	var total int64
	err := GetDB(ctx, r.db).WithContext(ctx).Model(&models.Payment{}).
		Where("status = ?", string(status)).
		Count(&total).Error
	return total, err
}

func (r *PaymentRepositoryImpl) toModel(p *entities.Payment) *models.Payment {
	m := &models.Payment{
		ID:            p.ID,
		UserID:        p.UserID,
		Purpose:       string(p.Purpose),
		Plan:          string(p.Plan),
		PackageID:     p.PackageID,
		OrderID:       p.OrderID,
		AmountUSD:     p.AmountUSD.StringFixed(2),
		Currency:      p.Currency,
		Network:       string(p.Network),
		WalletAddress: p.WalletAddress,
		Reference:     p.Reference,
		Provider:      string(p.Provider),
		Status:        string(p.Status),
		ExpiresAt:     p.ExpiresAt,
		SubmittedAt:   p.SubmittedAt,
		VerifiedAt:    p.VerifiedAt,
		VerifiedBy:    p.VerifiedBy,
	}
	if p.TxHash.Valid {
		m.TxHash = &p.TxHash.String
	}
	return m
}

func (r *PaymentRepositoryImpl) toEntity(m *models.Payment) *entities.Payment {
	amount, err := decimal.NewFromString(m.AmountUSD)
	if err != nil {
		amount = decimal.Zero
	}
	p := &entities.Payment{
		ID:            m.ID,
		UserID:        m.UserID,
		Purpose:       entities.PaymentPurpose(m.Purpose),
		Plan:          entities.Plan(m.Plan),
		PackageID:     m.PackageID,
		OrderID:       m.OrderID,
		AmountUSD:     amount,
		Currency:      m.Currency,
		Network:       entities.Network(m.Network),
		WalletAddress: m.WalletAddress,
		Reference:     m.Reference,
		Provider:      entities.PaymentProvider(m.Provider),
		Status:        entities.PaymentStatus(m.Status),
		ExpiresAt:     m.ExpiresAt,
		SubmittedAt:   m.SubmittedAt,
		VerifiedAt:    m.VerifiedAt,
		VerifiedBy:    m.VerifiedBy,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
	if m.TxHash != nil {
		p.TxHash = null.StringFrom(*m.TxHash)
	}
	return p
}
