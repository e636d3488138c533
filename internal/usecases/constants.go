package usecases

import (
	"time"

	"github.com/shopspring/decimal"
	"echoforge.backend/internal/domain/entities"
)

// Expiry window for crypto payments; fixed at creation, never extended.
const PaymentExpiryDuration = 1 * time.Hour

// Analysis cost model: a flat base fee plus a per-row fee, all in
// micro-units. Deterministic for a given row count.
const (
	AnalysisBaseCostMicro   int64 = 5_000
	AnalysisPerRowCostMicro int64 = 100
)

// PlanPrices maps purchasable subscription plans to their USD price.
// FREE and PAYG are not purchasable as subscriptions.
var PlanPrices = map[entities.Plan]decimal.Decimal{
	entities.PlanStarter: decimal.NewFromInt(39),
	entities.PlanPro:     decimal.NewFromInt(99),
}

// TokenPackages is the catalog of purchasable PAYG token bundles.
var TokenPackages = map[string]entities.TokenPackage{
	"starter-pack": {
		ID:          "starter-pack",
		Name:        "Starter Pack",
		PriceUSD:    decimal.NewFromInt(5),
		AmountMicro: 100_000,
	},
	"creator-pack": {
		ID:          "creator-pack",
		Name:        "Creator Pack",
		PriceUSD:    decimal.NewFromInt(20),
		AmountMicro: 500_000,
	},
	"studio-pack": {
		ID:          "studio-pack",
		Name:        "Studio Pack",
		PriceUSD:    decimal.NewFromInt(75),
		AmountMicro: 2_000_000,
	},
}
