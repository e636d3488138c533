package models

import (
	"time"

	"github.com/google/uuid"
)

// UsageRecord rows are append-only; there is no UpdatedAt on purpose.
type UsageRecord struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()"`
	UserID      uuid.UUID  `gorm:"type:uuid;not null;index"`
	Type        string     `gorm:"type:varchar(20);not null"`
	AmountMicro int64      `gorm:"not null"`
	Description string     `gorm:"type:text"`
	AnalysisID  *uuid.UUID `gorm:"type:uuid;index"`
	CreatedAt   time.Time
}

type Analysis struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()"`
	UserID      uuid.UUID `gorm:"type:uuid;not null;index"`
	RowCount    int       `gorm:"not null"`
	CostMicro   int64     `gorm:"not null;default:0"`
	Status      string    `gorm:"type:varchar(50);not null;index"`
	Anomalies   int       `gorm:"not null;default:0"`
	Error       string    `gorm:"type:text"`
	CompletedAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
