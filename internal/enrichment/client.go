package enrichment

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"housy-backend/internal/shared/telemetry"
)

const (
	defaultAITimeout = 30 * time.Second
	retryBaseDelay   = 300 * time.Millisecond
	maxResponseBytes = 1 << 20
)

// Result is the structured answer of the AI service.
type Result struct {
	Title              string
	Description        string
	PriceEstimate      float64
	RecommendedPhotos  []string
	QualityOfLifeScore string
	LocationDetails    string
}

// AIClient requests enrichment for a property.
type AIClient interface {
	Enrich(ctx context.Context, propertyID string) (Result, error)
}

// HTTPClient posts {"propertyId"} to the AI service and decodes its JSON answer.
type HTTPClient struct {
	url        string
	httpClient *http.Client
	retryDelay time.Duration
}

// NewHTTPClient builds a client. A non-positive timeout uses 30s.
func NewHTTPClient(url string, timeout time.Duration) *HTTPClient {
	if timeout <= 0 {
		timeout = defaultAITimeout
	}
	return &HTTPClient{
		url:        strings.TrimSpace(url),
		httpClient: &http.Client{Timeout: timeout},
		retryDelay: retryBaseDelay,
	}
}

type enrichRequest struct {
	PropertyID string `json:"propertyId"`
}

type enrichResponse struct {
	Title              string          `json:"title"`
	Description        string          `json:"description"`
	PriceEstimate      json.Number     `json:"priceEstimate"`
	RecommendedPhotos  []string        `json:"recommendedPhotos"`
	QualityOfLifeScore json.RawMessage `json:"qualityOfLifeScore"`
	LocationDetails    string          `json:"locationDetails"`
}

type statusError struct {
	code int
}

func (e statusError) Error() string {
	return fmt.Sprintf("ai service http status %d", e.code)
}

// Enrich calls the AI service, retrying once on transport errors and 5xx answers.
func (c *HTTPClient) Enrich(ctx context.Context, propertyID string) (Result, error) {
	if c.url == "" {
		return Result{}, ErrNotConfigured
	}
	res, err := c.enrichOnce(ctx, propertyID)
	if err == nil || !shouldRetry(err) {
		return res, err
	}

	telemetry.Warn("ai service retry", map[string]any{
		"property_id": propertyID,
		"request_id":  telemetry.RequestIDFromContext(ctx),
		"error":       err.Error(),
	})
	select {
	case <-time.After(c.retryDelay):
	case <-ctx.Done():
		return Result{}, ctx.Err()
	}
	return c.enrichOnce(ctx, propertyID)
}

func (c *HTTPClient) enrichOnce(ctx context.Context, propertyID string) (Result, error) {
	payload, err := json.Marshal(enrichRequest{PropertyID: propertyID})
	if err != nil {
		return Result{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return Result{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	if id := telemetry.RequestIDFromContext(ctx); id != "" {
		req.Header.Set("X-Request-Id", id)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Result{}, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return Result{}, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Result{}, statusError{code: resp.StatusCode}
	}

	var parsed enrichResponse
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	if err := dec.Decode(&parsed); err != nil {
		return Result{}, fmt.Errorf("ai response parse: %w", err)
	}

	out := Result{
		Title:              parsed.Title,
		Description:        parsed.Description,
		RecommendedPhotos:  parsed.RecommendedPhotos,
		QualityOfLifeScore: scoreString(parsed.QualityOfLifeScore),
		LocationDetails:    parsed.LocationDetails,
	}
	if parsed.PriceEstimate != "" {
		price, err := parsed.PriceEstimate.Float64()
		if err != nil {
			return Result{}, fmt.Errorf("ai response priceEstimate: %w", err)
		}
		out.PriceEstimate = price
	}
	if out.RecommendedPhotos == nil {
		out.RecommendedPhotos = []string{}
	}
	return out, nil
}

// scoreString accepts the score as a JSON string or number.
func scoreString(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}

func shouldRetry(err error) bool {
	var se statusError
	if errors.As(err, &se) {
		return se.code >= 500
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}

var _ AIClient = (*HTTPClient)(nil)
