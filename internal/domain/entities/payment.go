package entities

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/volatiletech/null/v8"
)

// Network is a supported crypto settlement network.
type Network string

const (
	NetworkTRC20 Network = "TRC20"
	NetworkERC20 Network = "ERC20"
	NetworkBEP20 Network = "BEP20"
)

// ValidNetwork reports whether n is a supported network.
func ValidNetwork(n Network) bool {
	switch n {
	case NetworkTRC20, NetworkERC20, NetworkBEP20:
		return true
	}
	return false
}

// PaymentStatus represents the lifecycle state of a payment record.
type PaymentStatus string

const (
	PaymentStatusPending             PaymentStatus = "PENDING"
	PaymentStatusPendingVerification PaymentStatus = "PENDING_VERIFICATION"
	PaymentStatusConfirmed           PaymentStatus = "CONFIRMED"
	PaymentStatusRejected            PaymentStatus = "REJECTED"
	PaymentStatusExpired             PaymentStatus = "EXPIRED"
)

// Terminal reports whether no further transition is permitted out of s.
func (s PaymentStatus) Terminal() bool {
	switch s {
	case PaymentStatusConfirmed, PaymentStatusRejected, PaymentStatusExpired:
		return true
	}
	return false
}

// CanTransitionTo enforces the payment state machine:
// PENDING -> PENDING_VERIFICATION -> {CONFIRMED | REJECTED},
// with PENDING also allowed to expire.
func (s PaymentStatus) CanTransitionTo(next PaymentStatus) bool {
	switch s {
	case PaymentStatusPending:
		return next == PaymentStatusPendingVerification || next == PaymentStatusExpired
	case PaymentStatusPendingVerification:
		return next == PaymentStatusConfirmed || next == PaymentStatusRejected
	}
	return false
}

// PaymentPurpose tags what a payment pays for.
type PaymentPurpose string

const (
	PurposeSubscription PaymentPurpose = "SUBSCRIPTION"
	PurposeTokenPackage PaymentPurpose = "TOKEN_PACKAGE"
	PurposeOrder        PaymentPurpose = "ORDER"
)

// PaymentProvider tags how a payment is settled.
type PaymentProvider string

const (
	ProviderCrypto      PaymentProvider = "crypto"
	ProviderStripe      PaymentProvider = "stripe"
	ProviderFlutterwave PaymentProvider = "flutterwave"
)

// Payment represents a payment record. Crypto payments go through the
// manual-submission flow (user submits a tx hash, an admin verifies);
// hosted-checkout payments are recorded already confirmed by webhook.
type Payment struct {
	ID            uuid.UUID       `json:"id"`
	UserID        uuid.UUID       `json:"userId"`
	Purpose       PaymentPurpose  `json:"purpose"`
	Plan          Plan            `json:"plan,omitempty"`
	PackageID     string          `json:"packageId,omitempty"`
	OrderID       *uuid.UUID      `json:"orderId,omitempty"`
	AmountUSD     decimal.Decimal `json:"amountUsd"`
	Currency      string          `json:"currency"`
	Network       Network         `json:"network,omitempty"`
	WalletAddress string          `json:"walletAddress,omitempty"`
	Reference     string          `json:"reference"`
	Provider      PaymentProvider `json:"provider"`
	TxHash        null.String     `json:"txHash,omitempty"`
	Status        PaymentStatus   `json:"status"`
	ExpiresAt     time.Time       `json:"expiresAt"`
	SubmittedAt   *time.Time      `json:"submittedAt,omitempty"`
	VerifiedAt    *time.Time      `json:"verifiedAt,omitempty"`
	VerifiedBy    *uuid.UUID      `json:"verifiedBy,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

// ExpiredNow reports whether a still-pending payment has run past its
// expiry. Expiry is fixed at creation and never extended.
func (p *Payment) ExpiredNow(now time.Time) bool {
	return p.Status == PaymentStatusPending && now.After(p.ExpiresAt)
}

// Correlation derives the reconciliation target from the record's
// purpose tag. Returns nil if the record is not self-describing.
func (p *Payment) Correlation() Correlation {
	switch p.Purpose {
	case PurposeOrder:
		if p.OrderID != nil {
			return OrderCorrelation{OrderID: *p.OrderID}
		}
	case PurposeTokenPackage:
		return TokenCorrelation{UserID: p.UserID, PackageID: p.PackageID}
	case PurposeSubscription:
		return PlanCorrelation{UserID: p.UserID, Plan: p.Plan, AmountUSD: p.AmountUSD}
	}
	return nil
}

// InitiatePaymentInput selects what is being bought: a subscription plan
// or a token package, settled over one of the supported networks.
type InitiatePaymentInput struct {
	Plan      string `json:"plan"`
	PackageID string `json:"packageId"`
	Network   string `json:"network" binding:"required"`
}

// SubmitPaymentInput carries the user-supplied transaction hash.
type SubmitPaymentInput struct {
	TxHash string `json:"txHash" binding:"required,min=10,max=255"`
}

// VerifyPaymentInput is the admin verdict on a submitted payment.
type VerifyPaymentInput struct {
	Outcome string `json:"outcome" binding:"required,oneof=CONFIRMED REJECTED"`
}
