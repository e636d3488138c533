package entities

import (
	"time"

	"github.com/google/uuid"
)

// UsageType is the direction of a token ledger movement.
type UsageType string

const (
	UsageTypeCredit UsageType = "CREDIT"
	UsageTypeDebit  UsageType = "DEBIT"
)

// UsageRecord is an append-only ledger entry paired with every balance
// mutation. Records are never updated after creation; the balance history
// can be reconstructed from them independently of the mutable balance.
type UsageRecord struct {
	ID          uuid.UUID  `json:"id"`
	UserID      uuid.UUID  `json:"userId"`
	Type        UsageType  `json:"type"`
	AmountMicro int64      `json:"amountMicro"`
	Description string     `json:"description"`
	AnalysisID  *uuid.UUID `json:"analysisId,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
}
