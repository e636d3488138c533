package entities

import (
	"strconv"

	"github.com/shopspring/decimal"
)

// TokenPrecision is the number of micro-units per token. All balance and
// cost arithmetic stays in integer micro-units; division by this constant
// happens only at the presentation boundary.
const TokenPrecision = 1_000_000

// FormatTokens renders a micro-unit amount as a human-readable token
// amount, e.g. 1500000 -> "1.5".
func FormatTokens(micro int64) string {
	d := decimal.New(micro, 0).Div(decimal.New(TokenPrecision, 0))
	return d.String()
}

// TokenPackage is a purchasable bundle of tokens for the PAYG plan.
type TokenPackage struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	PriceUSD    decimal.Decimal `json:"priceUsd"`
	AmountMicro int64           `json:"amountMicro"`
}

// AmountTokens renders the package size in whole token units.
func (p TokenPackage) AmountTokens() string {
	return FormatTokens(p.AmountMicro)
}

// ParseMicro parses a micro-unit amount from its decimal string form.
func ParseMicro(s string) (int64, error) {
	return strconv.ParseInt(s, 10, 64)
}
