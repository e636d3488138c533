package jobs

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"
	"echoforge.backend/internal/domain/entities"
)

type expiryRepo interface {
	GetExpiredPending(ctx context.Context, limit int) ([]*entities.Payment, error)
	ExpirePayments(ctx context.Context, ids []uuid.UUID) error
}

// PaymentExpiryJob sweeps crypto payments whose window has elapsed while
// still PENDING. Reads also expire lazily, so the sweeper only has to
// keep the table from accumulating stale rows.
type PaymentExpiryJob struct {
	repo     expiryRepo
	interval time.Duration
	stop     chan struct{}
}

func NewPaymentExpiryJob(repo expiryRepo) *PaymentExpiryJob {
	return &PaymentExpiryJob{
		repo:     repo,
		interval: 30 * time.Second,
		stop:     make(chan struct{}),
	}
}

func (j *PaymentExpiryJob) Start(ctx context.Context) {
	log.Println("🕐 Starting payment expiry job...")

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("⏹️ Payment expiry job stopped (context cancelled)")
			return
		case <-j.stop:
			log.Println("⏹️ Payment expiry job stopped")
			return
		case <-ticker.C:
			j.processExpiredPayments(ctx)
		}
	}
}

func (j *PaymentExpiryJob) Stop() {
	close(j.stop)
}

func (j *PaymentExpiryJob) processExpiredPayments(ctx context.Context) {
	expired, err := j.repo.GetExpiredPending(ctx, 100)
	if err != nil {
		log.Printf("❌ Error fetching expired payments: %v", err)
		return
	}

	if len(expired) == 0 {
		return
	}

	var ids []uuid.UUID
	for _, p := range expired {
		ids = append(ids, p.ID)
	}

	if err := j.repo.ExpirePayments(ctx, ids); err != nil {
		log.Printf("❌ Error expiring payments: %v", err)
		return
	}

	log.Printf("✅ Expired %d payments", len(expired))
}
