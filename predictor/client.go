package predictor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ItemInput is one durable item in a batch prediction request.
type ItemInput struct {
	ItemID           string  `json:"item_id"`
	Category         string  `json:"category"`
	YearsInUse       float64 `json:"years_in_use"`
	MaintenanceCount int     `json:"maintenance_count"`
	ConditionNumber  int     `json:"condition_number"`
	ConditionStatus  string  `json:"condition_status"`
	Condition        string  `json:"condition"`
	LastReason       string  `json:"last_reason"`
}

// Prediction is one item's predicted remaining useful life.
type Prediction struct {
	ItemID           string  `json:"item_id"`
	RemainingYears   float64 `json:"remaining_years"`
	LifespanEstimate string  `json:"lifespan_estimate"`
}

type predictRequest struct {
	Items []ItemInput `json:"items"`
}

type predictResponse struct {
	Success     bool         `json:"success"`
	Message     string       `json:"message,omitempty"`
	Predictions []Prediction `json:"predictions"`
}

// Client is the lifespan prediction service client.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a prediction client. The timeout bounds the whole batch
// call; a timed-out batch is retried at the next scheduled tick, never
// immediately.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Predict sends the whole batch in one request and returns the predictions.
// Any transport error, non-2xx status or success=false body fails the whole
// batch.
func (c *Client) Predict(ctx context.Context, items []ItemInput) ([]Prediction, error) {
	body, err := json.Marshal(predictRequest{Items: items})
	if err != nil {
		return nil, fmt.Errorf("marshal predict request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/predict", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build predict request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("prediction service unreachable: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read predict response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("prediction service returned status %d: %s", resp.StatusCode, string(respBody))
	}

	var parsed predictResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, fmt.Errorf("parse predict response: %w", err)
	}
	if !parsed.Success {
		return nil, fmt.Errorf("prediction service reported failure: %s", parsed.Message)
	}
	return parsed.Predictions, nil
}
