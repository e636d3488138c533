package detection

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	domainerrors "echoforge.backend/internal/domain/errors"
)

// Request describes one detection run sent to the backend.
type Request struct {
	AnalysisID string `json:"analysisId"`
	RowCount   int    `json:"rowCount"`
}

// Result is the backend's verdict for a run.
type Result struct {
	Anomalies int `json:"anomalies"`
}

// Client calls the anomaly-detection backend over HTTP. Every call is
// bounded by the configured timeout; a failed or non-2xx call returns
// ErrDetectionFailed and never a fabricated result.
type Client struct {
	http *resty.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	c := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout)
	return &Client{http: c}
}

func (c *Client) Detect(ctx context.Context, req *Request) (*Result, error) {
	var out Result
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&out).
		Post("/v1/detect")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domainerrors.ErrDetectionFailed, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("%w: status %d", domainerrors.ErrDetectionFailed, resp.StatusCode())
	}
	return &out, nil
}
