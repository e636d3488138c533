package repositories

import (
	"context"

	"github.com/google/uuid"
	"echoforge.backend/internal/domain/entities"
)

// UserRepository is the port for user and token-balance persistence.
// Balance mutations are single atomic read-modify-writes at the storage
// layer; DebitBalance must be a conditional decrement that refuses to
// drive the balance negative.
type UserRepository interface {
	Create(ctx context.Context, user *entities.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.User, error)
	GetByEmail(ctx context.Context, email string) (*entities.User, error)
	UpdatePlan(ctx context.Context, id uuid.UUID, plan entities.Plan) error
	// CreditBalance atomically increments the token balance.
	CreditBalance(ctx context.Context, id uuid.UUID, amountMicro int64) error
	// DebitBalance atomically decrements the token balance only if the
	// current balance covers amountMicro; returns false otherwise.
	DebitBalance(ctx context.Context, id uuid.UUID, amountMicro int64) (bool, error)
	GetBalance(ctx context.Context, id uuid.UUID) (int64, error)
	Count(ctx context.Context) (int64, error)
}
