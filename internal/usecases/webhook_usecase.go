package usecases

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"echoforge.backend/internal/config"
	"echoforge.backend/internal/domain/entities"
	domainerrors "echoforge.backend/internal/domain/errors"
	"echoforge.backend/internal/domain/repositories"
	"echoforge.backend/pkg/metrics"
	"echoforge.backend/pkg/utils"
)

// CorrelationApplier applies a resolved correlation.
type CorrelationApplier interface {
	ApplyCorrelation(ctx context.Context, corr entities.Correlation, payment *entities.Payment) error
}

// WebhookUsecase authenticates provider callbacks and forwards verified
// success events to the reconciler. Verification fails closed: an
// unverifiable delivery produces no side effect whatsoever.
type WebhookUsecase struct {
	providers   config.ProviderConfig
	uow         repositories.UnitOfWork
	paymentRepo repositories.PaymentRepository
	reconciler  CorrelationApplier
}

func NewWebhookUsecase(
	providers config.ProviderConfig,
	uow repositories.UnitOfWork,
	paymentRepo repositories.PaymentRepository,
	reconciler CorrelationApplier,
) *WebhookUsecase {
	return &WebhookUsecase{
		providers:   providers,
		uow:         uow,
		paymentRepo: paymentRepo,
		reconciler:  reconciler,
	}
}

type stripeEvent struct {
	Type string `json:"type"`
	Data struct {
		Object struct {
			ID            string            `json:"id"`
			AmountTotal   int64             `json:"amount_total"`
			PaymentStatus string            `json:"payment_status"`
			Metadata      map[string]string `json:"metadata"`
		} `json:"object"`
	} `json:"data"`
}

// HandleStripe verifies the Stripe-Signature header and applies the
// event. Redelivered events and non-success statuses are acknowledged
// as no-ops.
func (u *WebhookUsecase) HandleStripe(ctx context.Context, body []byte, sigHeader string) error {
	if u.providers.StripeWebhookSecret == "" {
		metrics.WebhooksReceived.WithLabelValues("stripe", "unconfigured").Inc()
		return domainerrors.ConfigError("stripe webhook secret not configured")
	}
	if !verifyStripeSignature(u.providers.StripeWebhookSecret, body, sigHeader) {
		metrics.WebhooksReceived.WithLabelValues("stripe", "invalid_signature").Inc()
		return domainerrors.InvalidSignature("stripe signature mismatch")
	}

	var event stripeEvent
	if err := json.Unmarshal(body, &event); err != nil {
		metrics.WebhooksReceived.WithLabelValues("stripe", "malformed").Inc()
		return domainerrors.BadRequest("malformed webhook payload")
	}

	if event.Type != "checkout.session.completed" || event.Data.Object.PaymentStatus != "paid" {
		metrics.WebhooksReceived.WithLabelValues("stripe", "ignored").Inc()
		return nil
	}

	corr, userID, err := resolveCorrelation(event.Data.Object.Metadata)
	if err != nil {
		metrics.WebhooksReceived.WithLabelValues("stripe", "malformed").Inc()
		return err
	}

	amount := decimal.New(event.Data.Object.AmountTotal, -2)
	err = u.settle(ctx, entities.ProviderStripe, "stripe-"+event.Data.Object.ID, amount, corr, userID)
	if err != nil {
		metrics.WebhooksReceived.WithLabelValues("stripe", "error").Inc()
		return err
	}
	metrics.WebhooksReceived.WithLabelValues("stripe", "ok").Inc()
	return nil
}

type flutterwaveEvent struct {
	Event string `json:"event"`
	Data  struct {
		Status string            `json:"status"`
		TxRef  string            `json:"tx_ref"`
		Amount float64           `json:"amount"`
		Meta   map[string]string `json:"meta"`
	} `json:"data"`
}

// HandleFlutterwave verifies the verif-hash header by exact equality
// against the configured secret hash.
func (u *WebhookUsecase) HandleFlutterwave(ctx context.Context, body []byte, verifHash string) error {
	secret := u.providers.FlutterwaveSecretHash
	if secret == "" {
		metrics.WebhooksReceived.WithLabelValues("flutterwave", "unconfigured").Inc()
		return domainerrors.ConfigError("flutterwave secret hash not configured")
	}
	if verifHash == "" || !hmac.Equal([]byte(verifHash), []byte(secret)) {
		metrics.WebhooksReceived.WithLabelValues("flutterwave", "invalid_signature").Inc()
		return domainerrors.InvalidSignature("flutterwave verif-hash mismatch")
	}

	var event flutterwaveEvent
	if err := json.Unmarshal(body, &event); err != nil {
		metrics.WebhooksReceived.WithLabelValues("flutterwave", "malformed").Inc()
		return domainerrors.BadRequest("malformed webhook payload")
	}

	if event.Event != "charge.completed" || event.Data.Status != "successful" {
		metrics.WebhooksReceived.WithLabelValues("flutterwave", "ignored").Inc()
		return nil
	}

	corr, userID, err := resolveCorrelation(event.Data.Meta)
	if err != nil {
		metrics.WebhooksReceived.WithLabelValues("flutterwave", "malformed").Inc()
		return err
	}

	amount := decimal.NewFromFloat(event.Data.Amount)
	err = u.settle(ctx, entities.ProviderFlutterwave, "flw-"+event.Data.TxRef, amount, corr, userID)
	if err != nil {
		metrics.WebhooksReceived.WithLabelValues("flutterwave", "error").Inc()
		return err
	}
	metrics.WebhooksReceived.WithLabelValues("flutterwave", "ok").Inc()
	return nil
}

// settle records the ledger entry and applies the correlation in one
// transaction. For plan and token effects the unique payment reference
// is the idempotency gate: a redelivery conflicts on insert and is
// acknowledged without reapplying. A failed effect rolls the ledger
// insert back with it, so the provider's retry starts from a clean
// slate instead of hitting the gate. Order effects are idempotent on
// their own (status-guarded transition + license-per-order constraint),
// so they always forward.
func (u *WebhookUsecase) settle(ctx context.Context, provider entities.PaymentProvider, reference string, amount decimal.Decimal, corr entities.Correlation, userID uuid.UUID) error {
	if _, ok := corr.(entities.OrderCorrelation); ok {
		return u.reconciler.ApplyCorrelation(ctx, corr, nil)
	}

	payment := &entities.Payment{
		ID:        utils.GenerateUUIDv7(),
		UserID:    userID,
		AmountUSD: amount,
		Currency:  "USD",
		Reference: reference,
		Provider:  provider,
		Status:    entities.PaymentStatusConfirmed,
	}
	switch c := corr.(type) {
	case entities.PlanCorrelation:
		payment.Purpose = entities.PurposeSubscription
		payment.Plan = c.Plan
	case entities.TokenCorrelation:
		payment.Purpose = entities.PurposeTokenPackage
		payment.PackageID = c.PackageID
	}

	return u.uow.Do(ctx, func(txCtx context.Context) error {
		created, err := u.paymentRepo.CreateConfirmed(txCtx, payment)
		if err != nil {
			return err
		}
		if !created {
			// redelivery: the effect already committed with the first insert
			return nil
		}

		if err := u.reconciler.ApplyCorrelation(txCtx, corr, payment); err != nil {
			return err
		}
		metrics.PaymentsConfirmed.WithLabelValues(string(payment.Purpose)).Inc()
		return nil
	})
}

// resolveCorrelation maps the provider metadata echo onto the tagged
// union. This is the only place raw metadata is interpreted.
func resolveCorrelation(meta map[string]string) (entities.Correlation, uuid.UUID, error) {
	if orderID, ok := meta["order_id"]; ok {
		id, err := uuid.Parse(orderID)
		if err != nil {
			return nil, uuid.Nil, domainerrors.BadRequest("invalid order_id in metadata")
		}
		return entities.OrderCorrelation{OrderID: id}, uuid.Nil, nil
	}

	rawUser, ok := meta["user_id"]
	if !ok {
		return nil, uuid.Nil, domainerrors.BadRequest("metadata carries no correlation")
	}
	userID, err := uuid.Parse(rawUser)
	if err != nil {
		return nil, uuid.Nil, domainerrors.BadRequest("invalid user_id in metadata")
	}

	if plan, ok := meta["plan"]; ok {
		p := entities.Plan(strings.ToUpper(plan))
		if !entities.ValidPlan(p) {
			return nil, uuid.Nil, domainerrors.BadRequest("invalid plan in metadata")
		}
		return entities.PlanCorrelation{UserID: userID, Plan: p}, userID, nil
	}
	if pkgID, ok := meta["package_id"]; ok {
		return entities.TokenCorrelation{UserID: userID, PackageID: pkgID}, userID, nil
	}
	return nil, uuid.Nil, domainerrors.BadRequest("metadata carries no correlation")
}

// verifyStripeSignature checks the `t=<ts>,v1=<hex hmac>` header format:
// the signed payload is "<ts>.<body>" keyed with the webhook secret.
func verifyStripeSignature(secret string, body []byte, header string) bool {
	var ts, v1 string
	for _, part := range strings.Split(header, ",") {
		kv := strings.SplitN(strings.TrimSpace(part), "=", 2)
		if len(kv) != 2 {
			continue
		}
		switch kv[0] {
		case "t":
			ts = kv[1]
		case "v1":
			v1 = kv[1]
		}
	}
	if ts == "" || v1 == "" {
		return false
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(ts))
	mac.Write([]byte("."))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(expected), []byte(v1))
}
