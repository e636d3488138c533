package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"echoforge.backend/internal/domain/entities"
	domainerrors "echoforge.backend/internal/domain/errors"
	"echoforge.backend/internal/infrastructure/models"
)

// UsageRepositoryImpl implements UsageRepository
type UsageRepositoryImpl struct {
	db *gorm.DB
}

func NewUsageRepository(db *gorm.DB) *UsageRepositoryImpl {
	return &UsageRepositoryImpl{db: db}
}

func (r *UsageRepositoryImpl) Create(ctx context.Context, record *entities.UsageRecord) error {
	m := &models.UsageRecord{
		ID:          record.ID,
		UserID:      record.UserID,
		Type:        string(record.Type),
		AmountMicro: record.AmountMicro,
		Description: record.Description,
		AnalysisID:  record.AnalysisID,
		CreatedAt:   time.Now(),
	}
	return GetDB(ctx, r.db).WithContext(ctx).Create(m).Error
}

func (r *UsageRepositoryImpl) GetByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*entities.UsageRecord, int, error) {
	db := GetDB(ctx, r.db).WithContext(ctx)

	var total int64
	if err := db.Model(&models.UsageRecord{}).Where("user_id = ?", userID).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var ms []models.UsageRecord
	if err := db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&ms).Error; err != nil {
		return nil, 0, err
	}

	var records []*entities.UsageRecord
	for _, m := range ms {
		records = append(records, &entities.UsageRecord{
			ID:          m.ID,
			UserID:      m.UserID,
			Type:        entities.UsageType(m.Type),
			AmountMicro: m.AmountMicro,
			Description: m.Description,
			AnalysisID:  m.AnalysisID,
			CreatedAt:   m.CreatedAt,
		})
	}
	return records, int(total), nil
}

// AnalysisRepositoryImpl implements AnalysisRepository
type AnalysisRepositoryImpl struct {
	db *gorm.DB
}

func NewAnalysisRepository(db *gorm.DB) *AnalysisRepositoryImpl {
	return &AnalysisRepositoryImpl{db: db}
}

func (r *AnalysisRepositoryImpl) Create(ctx context.Context, analysis *entities.Analysis) error {
	m := r.toModel(analysis)
	m.CreatedAt = time.Now()
	m.UpdatedAt = time.Now()
	return GetDB(ctx, r.db).WithContext(ctx).Create(m).Error
}

func (r *AnalysisRepositoryImpl) GetByID(ctx context.Context, id uuid.UUID) (*entities.Analysis, error) {
	var m models.Analysis
	if err := GetDB(ctx, r.db).WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return r.toEntity(&m), nil
}

func (r *AnalysisRepositoryImpl) GetByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*entities.Analysis, int, error) {
	db := GetDB(ctx, r.db).WithContext(ctx)

	var total int64
	if err := db.Model(&models.Analysis{}).Where("user_id = ?", userID).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var ms []models.Analysis
	if err := db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&ms).Error; err != nil {
		return nil, 0, err
	}

	var analyses []*entities.Analysis
	for _, m := range ms {
		model := m
		analyses = append(analyses, r.toEntity(&model))
	}
	return analyses, int(total), nil
}

func (r *AnalysisRepositoryImpl) Update(ctx context.Context, analysis *entities.Analysis) error {
	return GetDB(ctx, r.db).WithContext(ctx).Model(&models.Analysis{}).
		Where("id = ?", analysis.ID).
		Updates(map[string]interface{}{
			"status":       string(analysis.Status),
			"anomalies":    analysis.Anomalies,
			"error":        analysis.Error,
			"cost_micro":   analysis.CostMicro,
			"completed_at": analysis.CompletedAt,
			"updated_at":   time.Now(),
		}).Error
}

func (r *AnalysisRepositoryImpl) toModel(a *entities.Analysis) *models.Analysis {
	return &models.Analysis{
		ID:          a.ID,
		UserID:      a.UserID,
		RowCount:    a.RowCount,
		CostMicro:   a.CostMicro,
		Status:      string(a.Status),
		Anomalies:   a.Anomalies,
		Error:       a.Error,
		CompletedAt: a.CompletedAt,
	}
}

func (r *AnalysisRepositoryImpl) toEntity(m *models.Analysis) *entities.Analysis {
	return &entities.Analysis{
		ID:          m.ID,
		UserID:      m.UserID,
		RowCount:    m.RowCount,
		CostMicro:   m.CostMicro,
		Status:      entities.AnalysisStatus(m.Status),
		Anomalies:   m.Anomalies,
		Error:       m.Error,
		CompletedAt: m.CompletedAt,
		CreatedAt:   m.CreatedAt,
	}
}
