package entities

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Correlation is the tagged union resolved once at the webhook or
// verification boundary: it names the single business effect a confirmed
// payment should have. Handlers never re-derive it from raw metadata.
type Correlation interface {
	isCorrelation()
}

// OrderCorrelation targets a marketplace order (license issuance).
type OrderCorrelation struct {
	OrderID uuid.UUID
}

// PlanCorrelation targets a subscription plan upgrade.
type PlanCorrelation struct {
	UserID    uuid.UUID
	Plan      Plan
	AmountUSD decimal.Decimal
}

// TokenCorrelation targets a pay-as-you-go token package credit.
type TokenCorrelation struct {
	UserID    uuid.UUID
	PackageID string
}

func (OrderCorrelation) isCorrelation() {}
func (PlanCorrelation) isCorrelation()  {}
func (TokenCorrelation) isCorrelation() {}
