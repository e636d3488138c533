package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"echoforge.backend/internal/domain/entities"
)

// PaymentRepository is the port for payment record persistence. Status
// transitions are guarded at the storage layer: the Mark* methods update
// only when the record is still in the expected prior state and report
// whether the transition happened, so concurrent callers race safely.
type PaymentRepository interface {
	Create(ctx context.Context, payment *entities.Payment) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.Payment, error)
	GetByReference(ctx context.Context, reference string) (*entities.Payment, error)
	GetByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*entities.Payment, int, error)
	ListByStatus(ctx context.Context, status entities.PaymentStatus, limit, offset int) ([]*entities.Payment, int, error)
	// MarkSubmitted advances PENDING -> PENDING_VERIFICATION, attaching the
	// tx hash, but only while the record is unexpired PENDING.
	MarkSubmitted(ctx context.Context, id uuid.UUID, txHash string, now time.Time) (bool, error)
	// MarkVerified advances PENDING_VERIFICATION -> CONFIRMED or REJECTED,
	// stamping the verifying admin.
	MarkVerified(ctx context.Context, id uuid.UUID, outcome entities.PaymentStatus, adminID uuid.UUID, now time.Time) (bool, error)
	// MarkExpired advances PENDING -> EXPIRED.
	MarkExpired(ctx context.Context, id uuid.UUID) (bool, error)
	// CreateConfirmed inserts an already-confirmed record (webhook settled
	// payments), keyed by its unique reference; returns false when a record
	// with that reference already exists.
	CreateConfirmed(ctx context.Context, payment *entities.Payment) (bool, error)
	GetExpiredPending(ctx context.Context, limit int) ([]*entities.Payment, error)
	ExpirePayments(ctx context.Context, ids []uuid.UUID) error
	CountByStatus(ctx context.Context, status entities.PaymentStatus) (int64, error)
}
