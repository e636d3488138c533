package usecases

import (
	"context"

	"github.com/google/uuid"
	"echoforge.backend/internal/domain/entities"
	domainerrors "echoforge.backend/internal/domain/errors"
	"echoforge.backend/internal/domain/repositories"
	"echoforge.backend/pkg/metrics"
	"echoforge.backend/pkg/utils"
)

// LedgerUsecase owns the pay-as-you-go token balance. Every mutation
// pairs the balance change with an append-only UsageRecord in one
// transaction, so the history reconstructs the balance.
type LedgerUsecase struct {
	uow       repositories.UnitOfWork
	userRepo  repositories.UserRepository
	usageRepo repositories.UsageRepository
}

func NewLedgerUsecase(
	uow repositories.UnitOfWork,
	userRepo repositories.UserRepository,
	usageRepo repositories.UsageRepository,
) *LedgerUsecase {
	return &LedgerUsecase{
		uow:       uow,
		userRepo:  userRepo,
		usageRepo: usageRepo,
	}
}

// CostForRows is the deterministic analysis price in micro-units.
func CostForRows(rowCount int) int64 {
	return AnalysisBaseCostMicro + AnalysisPerRowCostMicro*int64(rowCount)
}

// Debit atomically decrements the balance and appends the debit record.
// The decrement is conditional at the storage layer; two concurrent
// debits whose combined cost exceeds the balance cannot both succeed.
func (u *LedgerUsecase) Debit(ctx context.Context, userID uuid.UUID, amountMicro int64, description string, analysisID *uuid.UUID) error {
	if amountMicro <= 0 {
		return domainerrors.BadRequest("debit amount must be positive")
	}

	err := u.uow.Do(ctx, func(txCtx context.Context) error {
		ok, err := u.userRepo.DebitBalance(txCtx, userID, amountMicro)
		if err != nil {
			return err
		}
		if !ok {
			available, err := u.userRepo.GetBalance(txCtx, userID)
			if err != nil {
				return err
			}
			return domainerrors.InsufficientBalance(amountMicro, available)
		}
		return u.usageRepo.Create(txCtx, &entities.UsageRecord{
			ID:          utils.GenerateUUIDv7(),
			UserID:      userID,
			Type:        entities.UsageTypeDebit,
			AmountMicro: amountMicro,
			Description: description,
			AnalysisID:  analysisID,
		})
	})
	if err != nil {
		metrics.TokenDebits.WithLabelValues("rejected").Inc()
		return err
	}
	metrics.TokenDebits.WithLabelValues("ok").Inc()
	return nil
}

// Credit atomically increments the balance and appends the credit record.
func (u *LedgerUsecase) Credit(ctx context.Context, userID uuid.UUID, amountMicro int64, description string, analysisID *uuid.UUID) error {
	if amountMicro <= 0 {
		return domainerrors.BadRequest("credit amount must be positive")
	}
	return u.uow.Do(ctx, func(txCtx context.Context) error {
		if err := u.userRepo.CreditBalance(txCtx, userID, amountMicro); err != nil {
			return err
		}
		return u.usageRepo.Create(txCtx, &entities.UsageRecord{
			ID:          utils.GenerateUUIDv7(),
			UserID:      userID,
			Type:        entities.UsageTypeCredit,
			AmountMicro: amountMicro,
			Description: description,
			AnalysisID:  analysisID,
		})
	})
}

// Balance returns the current balance in micro-units.
func (u *LedgerUsecase) Balance(ctx context.Context, userID uuid.UUID) (int64, error) {
	return u.userRepo.GetBalance(ctx, userID)
}

// History returns the usage records, newest first.
func (u *LedgerUsecase) History(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*entities.UsageRecord, int, error) {
	return u.usageRepo.GetByUserID(ctx, userID, limit, offset)
}
