package usecases

import (
	"context"
	"time"

	"github.com/google/uuid"
	"echoforge.backend/internal/domain/entities"
	domainerrors "echoforge.backend/internal/domain/errors"
	"echoforge.backend/internal/domain/repositories"
	"echoforge.backend/pkg/metrics"
	"echoforge.backend/pkg/utils"
)

// Reconciler applies the single business effect of a confirmed payment.
type Reconciler interface {
	ApplyConfirmedPayment(ctx context.Context, payment *entities.Payment) error
}

// PaymentUsecase drives the crypto manual-submission payment flow:
// initiate, submit a tx hash, admin verify.
type PaymentUsecase struct {
	uow         repositories.UnitOfWork
	paymentRepo repositories.PaymentRepository
	wallets     *WalletRegistry
	reconciler  Reconciler
}

func NewPaymentUsecase(
	uow repositories.UnitOfWork,
	paymentRepo repositories.PaymentRepository,
	wallets *WalletRegistry,
	reconciler Reconciler,
) *PaymentUsecase {
	return &PaymentUsecase{
		uow:         uow,
		paymentRepo: paymentRepo,
		wallets:     wallets,
		reconciler:  reconciler,
	}
}

// Initiate creates a PENDING payment record for a subscription plan or a
// token package. The expiry window is fixed at creation.
func (u *PaymentUsecase) Initiate(ctx context.Context, userID uuid.UUID, input *entities.InitiatePaymentInput) (*entities.Payment, error) {
	network := entities.Network(input.Network)
	address, err := u.wallets.AddressFor(network)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	payment := &entities.Payment{
		ID:            utils.GenerateUUIDv7(),
		UserID:        userID,
		Currency:      "USD",
		Network:       network,
		WalletAddress: address,
		Reference:     utils.GeneratePaymentReference(),
		Provider:      entities.ProviderCrypto,
		Status:        entities.PaymentStatusPending,
		ExpiresAt:     now.Add(PaymentExpiryDuration),
	}

	switch {
	case input.Plan != "":
		plan := entities.Plan(input.Plan)
		price, ok := PlanPrices[plan]
		if !ok {
			return nil, domainerrors.BadRequest("unknown or non-purchasable plan")
		}
		payment.Purpose = entities.PurposeSubscription
		payment.Plan = plan
		payment.AmountUSD = price
	case input.PackageID != "":
		pkg, ok := TokenPackages[input.PackageID]
		if !ok {
			return nil, domainerrors.BadRequest("unknown token package")
		}
		payment.Purpose = entities.PurposeTokenPackage
		payment.PackageID = pkg.ID
		payment.AmountUSD = pkg.PriceUSD
	default:
		return nil, domainerrors.BadRequest("either plan or packageId is required")
	}

	if err := u.paymentRepo.Create(ctx, payment); err != nil {
		return nil, err
	}
	return payment, nil
}

// Submit attaches a transaction hash and advances PENDING to
// PENDING_VERIFICATION. Only the owning user may submit; ownership
// failures read as NotFound so record ids cannot be enumerated.
func (u *PaymentUsecase) Submit(ctx context.Context, paymentID, userID uuid.UUID, input *entities.SubmitPaymentInput) (*entities.Payment, error) {
	payment, err := u.paymentRepo.GetByID(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if payment.UserID != userID {
		return nil, domainerrors.NotFound("payment not found")
	}

	now := time.Now()
	if payment.ExpiredNow(now) {
		_, _ = u.paymentRepo.MarkExpired(ctx, payment.ID)
		return nil, domainerrors.Conflict("payment window has expired")
	}

	ok, err := u.paymentRepo.MarkSubmitted(ctx, payment.ID, input.TxHash, now)
	if err != nil {
		return nil, err
	}
	if !ok {
		// the guard failed: the record left PENDING between our read and
		// the update, or expired in between
		current, err := u.paymentRepo.GetByID(ctx, payment.ID)
		if err != nil {
			return nil, err
		}
		if current.Status == entities.PaymentStatusConfirmed {
			return nil, domainerrors.Conflict("payment already confirmed")
		}
		return nil, domainerrors.Conflict("payment is not awaiting submission")
	}

	return u.paymentRepo.GetByID(ctx, payment.ID)
}

// Verify records the admin verdict. A CONFIRMED verdict triggers
// reconciliation exactly once: the status-guarded transition reports
// whether this call actually moved the record. The transition and the
// business effect commit in one transaction, so a failed reconciliation
// rolls the verdict back and the admin can simply verify again.
func (u *PaymentUsecase) Verify(ctx context.Context, paymentID, adminID uuid.UUID, input *entities.VerifyPaymentInput) (*entities.Payment, error) {
	outcome := entities.PaymentStatus(input.Outcome)

	var payment *entities.Payment
	err := u.uow.Do(ctx, func(txCtx context.Context) error {
		moved, err := u.paymentRepo.MarkVerified(txCtx, paymentID, outcome, adminID, time.Now())
		if err != nil {
			return err
		}

		payment, err = u.paymentRepo.GetByID(txCtx, paymentID)
		if err != nil {
			return err
		}

		if !moved {
			if payment.Status.Terminal() {
				return domainerrors.Conflict("payment already in terminal state " + string(payment.Status))
			}
			return domainerrors.Conflict("payment has no submitted transaction to verify")
		}

		if outcome == entities.PaymentStatusConfirmed {
			return u.reconciler.ApplyConfirmedPayment(txCtx, payment)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if outcome == entities.PaymentStatusConfirmed {
		metrics.PaymentsConfirmed.WithLabelValues(string(payment.Purpose)).Inc()
	}
	return payment, nil
}

// GetByID returns a payment visible to the caller. Pending records past
// their expiry are transitioned lazily and reported as EXPIRED.
func (u *PaymentUsecase) GetByID(ctx context.Context, paymentID, callerID uuid.UUID, callerRole entities.Role) (*entities.Payment, error) {
	payment, err := u.paymentRepo.GetByID(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if payment.UserID != callerID && callerRole != entities.RoleAdmin && callerRole != entities.RoleSupport {
		return nil, domainerrors.NotFound("payment not found")
	}
	return u.expireLazily(ctx, payment), nil
}

// ListByUser returns the caller's payments, newest first.
func (u *PaymentUsecase) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*entities.Payment, int, error) {
	payments, total, err := u.paymentRepo.GetByUserID(ctx, userID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	for i, p := range payments {
		payments[i] = u.expireLazily(ctx, p)
	}
	return payments, total, nil
}

// ListPendingVerification returns payments awaiting an admin verdict.
func (u *PaymentUsecase) ListPendingVerification(ctx context.Context, limit, offset int) ([]*entities.Payment, int, error) {
	return u.paymentRepo.ListByStatus(ctx, entities.PaymentStatusPendingVerification, limit, offset)
}

func (u *PaymentUsecase) expireLazily(ctx context.Context, payment *entities.Payment) *entities.Payment {
	if !payment.ExpiredNow(time.Now()) {
		return payment
	}
	// best effort; the sweeper job catches anything this misses
	_, _ = u.paymentRepo.MarkExpired(ctx, payment.ID)
	payment.Status = entities.PaymentStatusExpired
	return payment
}
