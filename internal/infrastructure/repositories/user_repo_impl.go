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

// UserRepositoryImpl implements UserRepository
type UserRepositoryImpl struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepositoryImpl {
	return &UserRepositoryImpl{db: db}
}

func (r *UserRepositoryImpl) Create(ctx context.Context, user *entities.User) error {
	m := &models.User{
		ID:                user.ID,
		Email:             user.Email,
		Name:              user.Name,
		PasswordHash:      user.PasswordHash,
		Role:              string(user.Role),
		Plan:              string(user.Plan),
		TokenBalanceMicro: user.TokenBalanceMicro,
		CreatedAt:         time.Now(),
		UpdatedAt:         time.Now(),
	}
	return GetDB(ctx, r.db).WithContext(ctx).Create(m).Error
}

func (r *UserRepositoryImpl) GetByID(ctx context.Context, id uuid.UUID) (*entities.User, error) {
	var m models.User
	if err := GetDB(ctx, r.db).WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return r.toEntity(&m), nil
}

func (r *UserRepositoryImpl) GetByEmail(ctx context.Context, email string) (*entities.User, error) {
	var m models.User
	if err := GetDB(ctx, r.db).WithContext(ctx).Where("email = ?", email).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return r.toEntity(&m), nil
}

func (r *UserRepositoryImpl) UpdatePlan(ctx context.Context, id uuid.UUID, plan entities.Plan) error {
	return GetDB(ctx, r.db).WithContext(ctx).Model(&models.User{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"plan":       string(plan),
			"updated_at": time.Now(),
		}).Error
}

func (r *UserRepositoryImpl) CreditBalance(ctx context.Context, id uuid.UUID, amountMicro int64) error {
	res := GetDB(ctx, r.db).WithContext(ctx).Model(&models.User{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"token_balance_micro": gorm.Expr("token_balance_micro + ?", amountMicro),
			"updated_at":          time.Now(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

// DebitBalance is a conditional decrement: the WHERE clause re-checks the
// balance so the check and the write are one statement. Two concurrent
// debits can never drive the balance negative.
func (r *UserRepositoryImpl) DebitBalance(ctx context.Context, id uuid.UUID, amountMicro int64) (bool, error) {
	res := GetDB(ctx, r.db).WithContext(ctx).Model(&models.User{}).
		Where("id = ? AND token_balance_micro >= ?", id, amountMicro).
		Updates(map[string]interface{}{
			"token_balance_micro": gorm.Expr("token_balance_micro - ?", amountMicro),
			"updated_at":          time.Now(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *UserRepositoryImpl) GetBalance(ctx context.Context, id uuid.UUID) (int64, error) {
	var m models.User
	if err := GetDB(ctx, r.db).WithContext(ctx).Select("token_balance_micro").Where("id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, domainerrors.ErrNotFound
		}
		return 0, err
	}
	return m.TokenBalanceMicro, nil
}

func (r *UserRepositoryImpl) Count(ctx context.Context) (int64, error) {
	var total int64
	if err := GetDB(ctx, r.db).WithContext(ctx).Model(&models.User{}).Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

func (r *UserRepositoryImpl) toEntity(m *models.User) *entities.User {
	return &entities.User{
		ID:                m.ID,
		Email:             m.Email,
		Name:              m.Name,
		PasswordHash:      m.PasswordHash,
		Role:              entities.NormalizeRole(m.Role),
		Plan:              entities.Plan(m.Plan),
		TokenBalanceMicro: m.TokenBalanceMicro,
		CreatedAt:         m.CreatedAt,
		UpdatedAt:         m.UpdatedAt,
	}
}
