package ui

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// ErrConnection reports that the prediction API could not be reached.
var ErrConnection = errors.New("ui: api unreachable")

// Property is the payload sent to POST /predict.
type Property struct {
	Bedrooms       float64 `json:"Bedrooms"`
	Bathrooms      float64 `json:"Bathrooms"`
	ErfSize        float64 `json:"Erf_Size"`
	TypeOfProperty string  `json:"Type_of_Property"`
}

// APIError is a non-200 answer from the prediction API. Body holds the raw
// response text.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api status %d: %s", e.Status, e.Body)
}

type Client struct {
	base string
	hc   *http.Client
	rl   *rate.Limiter
}

// NewClient returns a client for the API at base. rps limits outbound
// requests; non-positive values default to 5 per second.
func NewClient(base string, rps float64, timeout time.Duration) *Client {
	if rps <= 0 {
		rps = 5
	}
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	burst := int(rps)
	if burst < 1 {
		burst = 1
	}
	return &Client{
		base: strings.TrimRight(base, "/"),
		hc:   &http.Client{Timeout: timeout},
		rl:   rate.NewLimiter(rate.Limit(rps), burst),
	}
}

// Predict posts p and returns the predicted price. Transport failures wrap
// ErrConnection; non-200 answers are *APIError.
func (c *Client) Predict(ctx context.Context, p Property) (float64, error) {
	if err := c.rl.Wait(ctx); err != nil {
		return 0, err
	}

	body, err := json.Marshal(p)
	if err != nil {
		return 0, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+"/predict", bytes.NewReader(body))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "housepricer-ui/1.0")

	resp, err := c.hc.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return 0, ctx.Err()
		}
		return 0, fmt.Errorf("%w: %v", ErrConnection, err)
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrConnection, err)
	}
	if resp.StatusCode != http.StatusOK {
		return 0, &APIError{Status: resp.StatusCode, Body: strings.TrimSpace(string(b))}
	}

	var out struct {
		PredictedPrice float64 `json:"predicted_price"`
		Currency       string  `json:"currency"`
	}
	if err := json.Unmarshal(b, &out); err != nil {
		return 0, fmt.Errorf("decode prediction: %w", err)
	}
	return out.PredictedPrice, nil
}
