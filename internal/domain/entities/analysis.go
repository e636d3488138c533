package entities

import (
	"time"

	"github.com/google/uuid"
)

// AnalysisStatus represents the lifecycle of an analysis run.
type AnalysisStatus string

const (
	AnalysisStatusRunning   AnalysisStatus = "RUNNING"
	AnalysisStatusCompleted AnalysisStatus = "COMPLETED"
	AnalysisStatusFailed    AnalysisStatus = "FAILED"
)

// Analysis is a single anomaly-detection run. CostMicro is the amount
// debited from a PAYG balance for this run; zero for flat-plan users.
type Analysis struct {
	ID          uuid.UUID      `json:"id"`
	UserID      uuid.UUID      `json:"userId"`
	RowCount    int            `json:"rowCount"`
	CostMicro   int64          `json:"costMicro"`
	Status      AnalysisStatus `json:"status"`
	Anomalies   int            `json:"anomalies"`
	Error       string         `json:"error,omitempty"`
	CreatedAt   time.Time      `json:"createdAt"`
	CompletedAt *time.Time     `json:"completedAt,omitempty"`
}
