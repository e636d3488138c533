package repositories

import (
	"context"

	"github.com/google/uuid"
	"echoforge.backend/internal/domain/entities"
)

// UsageRepository is the port for append-only usage records.
type UsageRepository interface {
	Create(ctx context.Context, record *entities.UsageRecord) error
	GetByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*entities.UsageRecord, int, error)
}

// AnalysisRepository is the port for analysis run records.
type AnalysisRepository interface {
	Create(ctx context.Context, analysis *entities.Analysis) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.Analysis, error)
	GetByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*entities.Analysis, int, error)
	Update(ctx context.Context, analysis *entities.Analysis) error
}
