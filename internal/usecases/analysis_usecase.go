package usecases

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"echoforge.backend/internal/domain/entities"
	domainerrors "echoforge.backend/internal/domain/errors"
	"echoforge.backend/internal/domain/repositories"
	"echoforge.backend/internal/infrastructure/detection"
	"echoforge.backend/pkg/logger"
	"echoforge.backend/pkg/utils"
)

// Detector is the external anomaly-detection backend.
type Detector interface {
	Detect(ctx context.Context, req *detection.Request) (*detection.Result, error)
}

// AnalysisUsecase runs an anomaly-detection analysis. PAYG users are
// debited before the backend call and refunded if the call fails; a
// user is never charged for a result that was not delivered.
type AnalysisUsecase struct {
	userRepo     repositories.UserRepository
	analysisRepo repositories.AnalysisRepository
	ledger       *LedgerUsecase
	detector     Detector
}

func NewAnalysisUsecase(
	userRepo repositories.UserRepository,
	analysisRepo repositories.AnalysisRepository,
	ledger *LedgerUsecase,
	detector Detector,
) *AnalysisUsecase {
	return &AnalysisUsecase{
		userRepo:     userRepo,
		analysisRepo: analysisRepo,
		ledger:       ledger,
		detector:     detector,
	}
}

// Run executes one analysis for the user.
func (u *AnalysisUsecase) Run(ctx context.Context, userID uuid.UUID, rowCount int) (*entities.Analysis, error) {
	if rowCount <= 0 {
		return nil, domainerrors.BadRequest("rowCount must be positive")
	}

	user, err := u.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	analysis := &entities.Analysis{
		ID:       utils.GenerateUUIDv7(),
		UserID:   userID,
		RowCount: rowCount,
		Status:   entities.AnalysisStatusRunning,
	}

	// only PAYG runs are metered
	var cost int64
	if user.Plan == entities.PlanPAYG {
		cost = CostForRows(rowCount)
	}
	analysis.CostMicro = cost

	if err := u.analysisRepo.Create(ctx, analysis); err != nil {
		return nil, err
	}

	if cost > 0 {
		if err := u.ledger.Debit(ctx, userID, cost, "analysis run", &analysis.ID); err != nil {
			u.finish(ctx, analysis, entities.AnalysisStatusFailed, 0, "payment required")
			return nil, err
		}
	}

	result, err := u.detector.Detect(ctx, &detection.Request{
		AnalysisID: analysis.ID.String(),
		RowCount:   rowCount,
	})
	if err != nil {
		// compensating credit: the backend delivered nothing
		if cost > 0 {
			if cerr := u.ledger.Credit(ctx, userID, cost, "refund: analysis failed", &analysis.ID); cerr != nil {
				// the row keeps its cost and carries the refund debt so
				// the charge stays visible and recoverable
				logger.Error(ctx, "analysis refund failed",
					zap.String("analysis_id", analysis.ID.String()),
					zap.Int64("cost_micro", cost),
					zap.Error(cerr),
				)
				u.finish(ctx, analysis, entities.AnalysisStatusFailed, 0, "refund pending: "+err.Error())
				return nil, err
			}
			analysis.CostMicro = 0
		}
		u.finish(ctx, analysis, entities.AnalysisStatusFailed, 0, err.Error())
		return nil, err
	}

	u.finish(ctx, analysis, entities.AnalysisStatusCompleted, result.Anomalies, "")
	return analysis, nil
}

// GetByID returns an analysis owned by the caller.
func (u *AnalysisUsecase) GetByID(ctx context.Context, analysisID, callerID uuid.UUID) (*entities.Analysis, error) {
	analysis, err := u.analysisRepo.GetByID(ctx, analysisID)
	if err != nil {
		return nil, err
	}
	if analysis.UserID != callerID {
		return nil, domainerrors.NotFound("analysis not found")
	}
	return analysis, nil
}

// ListByUser returns the caller's analyses, newest first.
func (u *AnalysisUsecase) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*entities.Analysis, int, error) {
	return u.analysisRepo.GetByUserID(ctx, userID, limit, offset)
}

func (u *AnalysisUsecase) finish(ctx context.Context, analysis *entities.Analysis, status entities.AnalysisStatus, anomalies int, errMsg string) {
	now := time.Now()
	analysis.Status = status
	analysis.Anomalies = anomalies
	analysis.Error = errMsg
	analysis.CompletedAt = &now
	if err := u.analysisRepo.Update(ctx, analysis); err != nil {
		logger.Warn(ctx, "analysis status not persisted",
			zap.String("analysis_id", analysis.ID.String()),
			zap.Error(err),
		)
	}
}
