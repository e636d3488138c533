package repositories

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"echoforge.backend/internal/domain/entities"
	domainerrors "echoforge.backend/internal/domain/errors"
)

func newPendingPayment(userID uuid.UUID, reference string) *entities.Payment {
	return &entities.Payment{
		ID:            uuid.New(),
		UserID:        userID,
		Purpose:       entities.PurposeSubscription,
		Plan:          entities.PlanPro,
		AmountUSD:     decimal.NewFromInt(99),
		Currency:      "USD",
		Network:       entities.NetworkTRC20,
		WalletAddress: "TXYZabc123",
		Reference:     reference,
		Provider:      entities.ProviderCrypto,
		Status:        entities.PaymentStatusPending,
		ExpiresAt:     time.Now().Add(time.Hour),
	}
}

func TestPaymentRepository_CreateAndGet(t *testing.T) {
	db := newTestDB(t)
	createPaymentTable(t, db)
	repo := NewPaymentRepository(db)
	ctx := context.Background()

	p := newPendingPayment(uuid.New(), "EF-1-ABCDEF")
	require.NoError(t, repo.Create(ctx, p))

	byID, err := repo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	require.Equal(t, p.Reference, byID.Reference)
	require.True(t, byID.AmountUSD.Equal(decimal.NewFromInt(99)))
	require.Equal(t, entities.PaymentStatusPending, byID.Status)

	byRef, err := repo.GetByReference(ctx, p.Reference)
	require.NoError(t, err)
	require.Equal(t, p.ID, byRef.ID)

	_, err = repo.GetByID(ctx, uuid.New())
	require.ErrorIs(t, err, domainerrors.ErrNotFound)

	_, err = repo.GetByReference(ctx, "EF-0-MISSING")
	require.ErrorIs(t, err, domainerrors.ErrNotFound)
}

func TestPaymentRepository_ListAndCount(t *testing.T) {
	db := newTestDB(t)
	createPaymentTable(t, db)
	repo := NewPaymentRepository(db)
	ctx := context.Background()

	userID := uuid.New()
	for i := 0; i < 3; i++ {
		require.NoError(t, repo.Create(ctx, newPendingPayment(userID, fmt.Sprintf("EF-%d-AAAAAA", i))))
	}
	require.NoError(t, repo.Create(ctx, newPendingPayment(uuid.New(), "EF-9-OTHER1")))

	items, total, err := repo.GetByUserID(ctx, userID, 2, 0)
	require.NoError(t, err)
	require.Equal(t, 3, total)
	require.Len(t, items, 2)

	items, total, err = repo.ListByStatus(ctx, entities.PaymentStatusPending, 10, 0)
	require.NoError(t, err)
	require.Equal(t, 4, total)
	require.Len(t, items, 4)

	count, err := repo.CountByStatus(ctx, entities.PaymentStatusPending)
	require.NoError(t, err)
	require.Equal(t, int64(4), count)

	count, err = repo.CountByStatus(ctx, entities.PaymentStatusConfirmed)
	require.NoError(t, err)
	require.Equal(t, int64(0), count)
}

func TestPaymentRepository_MarkSubmitted(t *testing.T) {
	db := newTestDB(t)
	createPaymentTable(t, db)
	repo := NewPaymentRepository(db)
	ctx := context.Background()

	p := newPendingPayment(uuid.New(), "EF-1-SUBMIT")
	require.NoError(t, repo.Create(ctx, p))

	now := time.Now()
	ok, err := repo.MarkSubmitted(ctx, p.ID, "0xdeadbeef", now)
	require.NoError(t, err)
	require.True(t, ok)

	got, err := repo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	require.Equal(t, entities.PaymentStatusPendingVerification, got.Status)
	require.Equal(t, "0xdeadbeef", got.TxHash.String)
	require.NotNil(t, got.SubmittedAt)

	// second submission is a no-op
	ok, err = repo.MarkSubmitted(ctx, p.ID, "0xother", now)
	require.NoError(t, err)
	require.False(t, ok)

	got, err = repo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	require.Equal(t, "0xdeadbeef", got.TxHash.String, "second hash must not overwrite the first")
}

func TestPaymentRepository_MarkSubmitted_ExpiredRecord(t *testing.T) {
	db := newTestDB(t)
	createPaymentTable(t, db)
	repo := NewPaymentRepository(db)
	ctx := context.Background()

	p := newPendingPayment(uuid.New(), "EF-1-STALE1")
	p.ExpiresAt = time.Now().Add(-time.Minute)
	require.NoError(t, repo.Create(ctx, p))

	ok, err := repo.MarkSubmitted(ctx, p.ID, "0xlate", time.Now())
	require.NoError(t, err)
	require.False(t, ok, "submission after the expiry window must not advance the record")
}

func TestPaymentRepository_MarkVerified(t *testing.T) {
	db := newTestDB(t)
	createPaymentTable(t, db)
	repo := NewPaymentRepository(db)
	ctx := context.Background()

	p := newPendingPayment(uuid.New(), "EF-1-VERIFY")
	require.NoError(t, repo.Create(ctx, p))

	adminID := uuid.New()
	now := time.Now()

	// verifying a record that is still PENDING affects zero rows
	ok, err := repo.MarkVerified(ctx, p.ID, entities.PaymentStatusConfirmed, adminID, now)
	require.NoError(t, err)
	require.False(t, ok)

	ok, err = repo.MarkSubmitted(ctx, p.ID, "0xhash", now)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = repo.MarkVerified(ctx, p.ID, entities.PaymentStatusConfirmed, adminID, now)
	require.NoError(t, err)
	require.True(t, ok)

	got, err := repo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	require.Equal(t, entities.PaymentStatusConfirmed, got.Status)
	require.NotNil(t, got.VerifiedAt)
	require.Equal(t, adminID, *got.VerifiedBy)

	// a second verification on a terminal record reports false
	ok, err = repo.MarkVerified(ctx, p.ID, entities.PaymentStatusRejected, adminID, now)
	require.NoError(t, err)
	require.False(t, ok)

	got, err = repo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	require.Equal(t, entities.PaymentStatusConfirmed, got.Status, "terminal status must not change")
}

func TestPaymentRepository_MarkVerified_InvalidOutcome(t *testing.T) {
	db := newTestDB(t)
	createPaymentTable(t, db)
	repo := NewPaymentRepository(db)

	_, err := repo.MarkVerified(context.Background(), uuid.New(), entities.PaymentStatusExpired, uuid.New(), time.Now())
	require.Error(t, err)
}

func TestPaymentRepository_CreateConfirmed_Idempotent(t *testing.T) {
	db := newTestDB(t)
	createPaymentTable(t, db)
	repo := NewPaymentRepository(db)
	ctx := context.Background()

	p := newPendingPayment(uuid.New(), "EF-1-STRIPE")
	p.Provider = entities.ProviderStripe

	created, err := repo.CreateConfirmed(ctx, p)
	require.NoError(t, err)
	require.True(t, created)

	// redelivery with the same reference conflicts and inserts nothing
	dup := newPendingPayment(p.UserID, "EF-1-STRIPE")
	dup.Provider = entities.ProviderStripe
	created, err = repo.CreateConfirmed(ctx, dup)
	require.NoError(t, err)
	require.False(t, created)

	count, err := repo.CountByStatus(ctx, entities.PaymentStatusConfirmed)
	require.NoError(t, err)
	require.Equal(t, int64(1), count)
}

func TestPaymentRepository_ExpireSweep(t *testing.T) {
	db := newTestDB(t)
	createPaymentTable(t, db)
	repo := NewPaymentRepository(db)
	ctx := context.Background()

	stale := newPendingPayment(uuid.New(), "EF-1-STALE2")
	stale.ExpiresAt = time.Now().Add(-time.Minute)
	require.NoError(t, repo.Create(ctx, stale))

	fresh := newPendingPayment(uuid.New(), "EF-1-FRESH1")
	require.NoError(t, repo.Create(ctx, fresh))

	expired, err := repo.GetExpiredPending(ctx, 10)
	require.NoError(t, err)
	require.Len(t, expired, 1)
	require.Equal(t, stale.ID, expired[0].ID)

	require.NoError(t, repo.ExpirePayments(ctx, []uuid.UUID{stale.ID}))

	got, err := repo.GetByID(ctx, stale.ID)
	require.NoError(t, err)
	require.Equal(t, entities.PaymentStatusExpired, got.Status)

	got, err = repo.GetByID(ctx, fresh.ID)
	require.NoError(t, err)
	require.Equal(t, entities.PaymentStatusPending, got.Status)

	require.NoError(t, repo.ExpirePayments(ctx, nil))
}

func TestPaymentRepository_MarkExpired(t *testing.T) {
	db := newTestDB(t)
	createPaymentTable(t, db)
	repo := NewPaymentRepository(db)
	ctx := context.Background()

	p := newPendingPayment(uuid.New(), "EF-1-LAZY01")
	require.NoError(t, repo.Create(ctx, p))

	ok, err := repo.MarkExpired(ctx, p.ID)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = repo.MarkExpired(ctx, p.ID)
	require.NoError(t, err)
	require.False(t, ok)
}
