package usecases

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"echoforge.backend/internal/domain/entities"
	domainerrors "echoforge.backend/internal/domain/errors"
	"echoforge.backend/internal/domain/repositories"
	"echoforge.backend/pkg/logger"
	"echoforge.backend/pkg/utils"
)

// Mailer sends best-effort notification emails. A send failure never
// fails or rolls back a reconciliation.
type Mailer interface {
	SendPaymentConfirmed(to string, payment *entities.Payment) error
	SendPaymentRejected(to string, payment *entities.Payment) error
	SendLicenseIssued(to string, license *entities.LicenseKey) error
}

// ReconcilerUsecase applies the single business effect of a confirmed
// payment: order settlement + license, plan upgrade, or token credit.
// Idempotence comes from storage constraints (status-guarded transitions,
// license-per-order uniqueness), not application locks.
type ReconcilerUsecase struct {
	uow         repositories.UnitOfWork
	userRepo    repositories.UserRepository
	orderRepo   repositories.OrderRepository
	listingRepo repositories.ListingRepository
	usageRepo   repositories.UsageRepository
	issuer      *LicenseIssuer
	mailer      Mailer
}

func NewReconcilerUsecase(
	uow repositories.UnitOfWork,
	userRepo repositories.UserRepository,
	orderRepo repositories.OrderRepository,
	listingRepo repositories.ListingRepository,
	usageRepo repositories.UsageRepository,
	issuer *LicenseIssuer,
	mailer Mailer,
) *ReconcilerUsecase {
	return &ReconcilerUsecase{
		uow:         uow,
		userRepo:    userRepo,
		orderRepo:   orderRepo,
		listingRepo: listingRepo,
		usageRepo:   usageRepo,
		issuer:      issuer,
		mailer:      mailer,
	}
}

// ApplyConfirmedPayment resolves the payment's correlation and applies it.
func (u *ReconcilerUsecase) ApplyConfirmedPayment(ctx context.Context, payment *entities.Payment) error {
	corr := payment.Correlation()
	if corr == nil {
		return errors.New("confirmed payment carries no correlation")
	}
	return u.ApplyCorrelation(ctx, corr, payment)
}

// ApplyCorrelation applies an already-resolved correlation. The webhook
// boundary resolves provider metadata into the union exactly once and
// hands it here; nothing downstream re-parses metadata.
func (u *ReconcilerUsecase) ApplyCorrelation(ctx context.Context, corr entities.Correlation, payment *entities.Payment) error {
	switch c := corr.(type) {
	case entities.OrderCorrelation:
		return u.applyOrder(ctx, c, payment)
	case entities.PlanCorrelation:
		return u.applyPlan(ctx, c, payment)
	case entities.TokenCorrelation:
		return u.applyTokens(ctx, c)
	default:
		return errors.New("unknown correlation type")
	}
}

// applyOrder settles a marketplace order: order SUCCEEDED, license
// upserted, purchase counter bumped, all in one transaction. A duplicate
// delivery finds the order already SUCCEEDED, skips the counter, and
// converges on the existing license.
func (u *ReconcilerUsecase) applyOrder(ctx context.Context, corr entities.OrderCorrelation, payment *entities.Payment) error {
	var license *entities.LicenseKey
	var buyerID uuid.UUID

	err := u.uow.Do(ctx, func(txCtx context.Context) error {
		txCtx = u.uow.WithLock(txCtx)

		order, err := u.orderRepo.GetByID(txCtx, corr.OrderID)
		if err != nil {
			return err
		}
		buyerID = order.BuyerID

		providerRef := ""
		if payment != nil {
			providerRef = payment.Reference
		}

		moved, err := u.orderRepo.MarkSucceeded(txCtx, order.ID, providerRef, time.Now())
		if err != nil {
			return err
		}
		if moved {
			if err := u.listingRepo.IncrementPurchaseCount(txCtx, order.ListingID); err != nil {
				return err
			}
		}

		listing, err := u.listingRepo.GetByID(txCtx, order.ListingID)
		if err != nil {
			return err
		}

		license, err = u.issuer.Issue(txCtx, order, listing)
		return err
	})
	if err != nil {
		return err
	}

	if license != nil {
		if buyer, err := u.userRepo.GetByID(ctx, buyerID); err == nil {
			if err := u.mailer.SendLicenseIssued(buyer.Email, license); err != nil {
				logger.Warn(ctx, "license email not sent",
					zap.String("order_id", corr.OrderID.String()),
					zap.Error(err),
				)
			}
		}
	}
	return nil
}

// applyPlan sets the user's plan and sends a best-effort notification.
func (u *ReconcilerUsecase) applyPlan(ctx context.Context, corr entities.PlanCorrelation, payment *entities.Payment) error {
	if !entities.ValidPlan(corr.Plan) {
		return domainerrors.BadRequest("unknown plan in correlation")
	}
	if err := u.userRepo.UpdatePlan(ctx, corr.UserID, corr.Plan); err != nil {
		return err
	}
	if payment != nil {
		if user, err := u.userRepo.GetByID(ctx, corr.UserID); err == nil {
			if err := u.mailer.SendPaymentConfirmed(user.Email, payment); err != nil {
				logger.Warn(ctx, "payment confirmation email not sent",
					zap.String("user_id", corr.UserID.String()),
					zap.Error(err),
				)
			}
		}
	}
	return nil
}

// applyTokens credits the package's micro amount and appends the credit
// UsageRecord in the same transaction.
func (u *ReconcilerUsecase) applyTokens(ctx context.Context, corr entities.TokenCorrelation) error {
	pkg, ok := TokenPackages[corr.PackageID]
	if !ok {
		return domainerrors.BadRequest("unknown token package in correlation")
	}

	return u.uow.Do(ctx, func(txCtx context.Context) error {
		if err := u.userRepo.CreditBalance(txCtx, corr.UserID, pkg.AmountMicro); err != nil {
			return err
		}
		return u.usageRepo.Create(txCtx, &entities.UsageRecord{
			ID:          utils.GenerateUUIDv7(),
			UserID:      corr.UserID,
			Type:        entities.UsageTypeCredit,
			AmountMicro: pkg.AmountMicro,
			Description: "token package purchase: " + pkg.Name,
		})
	})
}
