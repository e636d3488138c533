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

func TestUsageRepository_CreateAndList(t *testing.T) {
	db := newTestDB(t)
	createUsageTables(t, db)
	repo := NewUsageRepository(db)
	ctx := context.Background()

	userID := uuid.New()
	analysisID := uuid.New()

	require.NoError(t, repo.Create(ctx, &entities.UsageRecord{
		ID:          uuid.New(),
		UserID:      userID,
		Type:        entities.UsageTypeCredit,
		AmountMicro: 100_000,
		Description: "token package purchase",
	}))
	require.NoError(t, repo.Create(ctx, &entities.UsageRecord{
		ID:          uuid.New(),
		UserID:      userID,
		Type:        entities.UsageTypeDebit,
		AmountMicro: 5_000,
		Description: "analysis run",
		AnalysisID:  &analysisID,
	}))

	records, total, err := repo.GetByUserID(ctx, userID, 10, 0)
	require.NoError(t, err)
	require.Equal(t, 2, total)
	require.Len(t, records, 2)

	records, total, err = repo.GetByUserID(ctx, userID, 1, 0)
	require.NoError(t, err)
	require.Equal(t, 2, total)
	require.Len(t, records, 1)

	records, total, err = repo.GetByUserID(ctx, uuid.New(), 10, 0)
	require.NoError(t, err)
	require.Equal(t, 0, total)
	require.Empty(t, records)
}

func TestAnalysisRepository_CreateUpdateGet(t *testing.T) {
	db := newTestDB(t)
	createUsageTables(t, db)
	repo := NewAnalysisRepository(db)
	ctx := context.Background()

	userID := uuid.New()
	a := &entities.Analysis{
		ID:       uuid.New(),
		UserID:   userID,
		RowCount: 500,
		Status:   entities.AnalysisStatusRunning,
	}
	require.NoError(t, repo.Create(ctx, a))

	got, err := repo.GetByID(ctx, a.ID)
	require.NoError(t, err)
	require.Equal(t, entities.AnalysisStatusRunning, got.Status)
	require.Equal(t, 500, got.RowCount)

	completedAt := time.Now()
	a.Status = entities.AnalysisStatusCompleted
	a.Anomalies = 7
	a.CostMicro = 55_000
	a.CompletedAt = &completedAt
	require.NoError(t, repo.Update(ctx, a))

	got, err = repo.GetByID(ctx, a.ID)
	require.NoError(t, err)
	require.Equal(t, entities.AnalysisStatusCompleted, got.Status)
	require.Equal(t, 7, got.Anomalies)
	require.Equal(t, int64(55_000), got.CostMicro)
	require.NotNil(t, got.CompletedAt)

	items, total, err := repo.GetByUserID(ctx, userID, 10, 0)
	require.NoError(t, err)
	require.Equal(t, 1, total)
	require.Len(t, items, 1)

	_, err = repo.GetByID(ctx, uuid.New())
	require.ErrorIs(t, err, domainerrors.ErrNotFound)
}
