/**
 * @description
 * This package provides a client for the Razorpay Orders API. It encapsulates the
 * logic for making authenticated HTTP requests to Razorpay's endpoints, handling
 * request body construction, and parsing responses.
 *
 * @dependencies
 * - bytes, context, encoding/json, fmt, net/http, time: Standard Go libraries.
 */
package razorpay

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// DefaultBaseURL is the production Razorpay API host.
const DefaultBaseURL = "https://api.razorpay.com"

// Client is a client for the Razorpay REST API. Requests authenticate with HTTP
// basic auth using the key id and secret issued for the account.
type Client struct {
	BaseURL    string
	KeyID      string
	KeySecret  string
	HTTPClient *http.Client
}

// NewClient creates a new Razorpay API client. An empty baseURL selects the
// production host.
func NewClient(baseURL, keyID, keySecret string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		BaseURL:   baseURL,
		KeyID:     keyID,
		KeySecret: keySecret,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// OrderParams is the payload for order creation. Amount is in minor currency
// units. Notes are opaque key/value pairs echoed back on every webhook for the
// payment, which is how campaign and referral identifiers survive the round trip
// without trusting client-supplied data at capture time.
type OrderParams struct {
	Amount   int64             `json:"amount"`
	Currency string            `json:"currency"`
	Receipt  string            `json:"receipt"`
	Notes    map[string]string `json:"notes,omitempty"`
}

// Order is the gateway's server-side order object. Only the fields this service
// reads are modeled; the object is owned by Razorpay.
type Order struct {
	ID        string `json:"id"`
	Entity    string `json:"entity"`
	Amount    int64  `json:"amount"`
	Currency  string `json:"currency"`
	Receipt   string `json:"receipt"`
	Status    string `json:"status"`
	CreatedAt int64  `json:"created_at"`
}

// ErrorResponse represents an error returned by the Razorpay API.
type ErrorResponse struct {
	Detail struct {
		Code        string `json:"code"`
		Description string `json:"description"`
	} `json:"error"`
}

func (e *ErrorResponse) Error() string {
	if e.Detail.Code != "" || e.Detail.Description != "" {
		return fmt.Sprintf("razorpay api error: %s - %s", e.Detail.Code, e.Detail.Description)
	}
	return "unknown razorpay api error"
}

// CreateOrder creates a payment order with the gateway. The returned order id is
// the handle the client uses to complete payment in the hosted checkout widget.
func (c *Client) CreateOrder(ctx context.Context, params OrderParams) (*Order, error) {
	body, err := json.Marshal(params)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal order params: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/v1/orders", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build order request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(c.KeyID, c.KeySecret)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("order request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read order response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &ErrorResponse{}
		if jsonErr := json.Unmarshal(respBody, apiErr); jsonErr == nil {
			return nil, apiErr
		}
		return nil, fmt.Errorf("razorpay api returned status %d", resp.StatusCode)
	}

	var order Order
	if err := json.Unmarshal(respBody, &order); err != nil {
		return nil, fmt.Errorf("failed to decode order response: %w", err)
	}
	return &order, nil
}
