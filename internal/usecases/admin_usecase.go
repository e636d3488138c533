package usecases

import (
	"context"

	"echoforge.backend/internal/domain/entities"
	"echoforge.backend/internal/domain/repositories"
)

// BillingStats is the admin dashboard summary.
type BillingStats struct {
	Users             int64 `json:"users"`
	PaymentsPending   int64 `json:"paymentsPending"`
	PaymentsAwaiting  int64 `json:"paymentsAwaitingVerification"`
	PaymentsConfirmed int64 `json:"paymentsConfirmed"`
	PaymentsRejected  int64 `json:"paymentsRejected"`
	PaymentsExpired   int64 `json:"paymentsExpired"`
}

// AdminUsecase aggregates counts for the admin surface.
type AdminUsecase struct {
	userRepo    repositories.UserRepository
	paymentRepo repositories.PaymentRepository
}

func NewAdminUsecase(userRepo repositories.UserRepository, paymentRepo repositories.PaymentRepository) *AdminUsecase {
	return &AdminUsecase{
		userRepo:    userRepo,
		paymentRepo: paymentRepo,
	}
}

func (u *AdminUsecase) Stats(ctx context.Context) (*BillingStats, error) {
	stats := &BillingStats{}

	var err error
	if stats.Users, err = u.userRepo.Count(ctx); err != nil {
		return nil, err
	}

	counts := []struct {
		status entities.PaymentStatus
		dest   *int64
	}{
		{entities.PaymentStatusPending, &stats.PaymentsPending},
		{entities.PaymentStatusPendingVerification, &stats.PaymentsAwaiting},
		{entities.PaymentStatusConfirmed, &stats.PaymentsConfirmed},
		{entities.PaymentStatusRejected, &stats.PaymentsRejected},
		{entities.PaymentStatusExpired, &stats.PaymentsExpired},
	}
	for _, c := range counts {
		if *c.dest, err = u.paymentRepo.CountByStatus(ctx, c.status); err != nil {
			return nil, err
		}
	}
	return stats, nil
}
