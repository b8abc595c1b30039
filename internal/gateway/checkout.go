package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/imrann-dev/school-erp-api/internal/models"
	appErrors "github.com/imrann-dev/school-erp-api/pkg/errors"
)

// CheckoutClient talks to the hosted checkout server that fronts the
// card processor. Amounts cross this boundary in major currency units;
// the server converts to minor units for the processor.
type CheckoutClient struct {
	baseURL    string
	currency   string
	httpClient *http.Client
}

// NewCheckoutClient constructs a client for the checkout server.
func NewCheckoutClient(baseURL, currency string, timeout time.Duration) *CheckoutClient {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &CheckoutClient{
		baseURL:    baseURL,
		currency:   currency,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// CreateSessionRequest describes a new hosted checkout session.
type CreateSessionRequest struct {
	Amount      float64 `json:"amount"`
	Currency    string  `json:"currency"`
	FeeID       string  `json:"feeId"`
	StudentName string  `json:"studentName"`
	FeeType     string  `json:"feeType"`
}

// CreateSessionResponse carries the session handle and redirect URL.
type CreateSessionResponse struct {
	SessionID string `json:"sessionId"`
	URL       string `json:"url"`
}

// CreateSession requests a hosted checkout session.
func (c *CheckoutClient) CreateSession(ctx context.Context, req CreateSessionRequest) (*CreateSessionResponse, error) {
	if req.Currency == "" {
		req.Currency = c.currency
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encode checkout request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/create-checkout-session", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build checkout request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrGateway.Code, appErrors.ErrGateway.Status, "failed to create checkout session")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, gatewayError(resp, "create checkout session")
	}

	var out CreateSessionResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode checkout response: %w", err)
	}
	return &out, nil
}

// GetSession fetches the gateway's view of a checkout session.
func (c *CheckoutClient) GetSession(ctx context.Context, sessionID string) (*models.CheckoutSession, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/checkout-session/"+sessionID, nil)
	if err != nil {
		return nil, fmt.Errorf("build session request: %w", err)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrGateway.Code, appErrors.ErrGateway.Status, "failed to fetch checkout session")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, gatewayError(resp, "fetch checkout session")
	}

	var session models.CheckoutSession
	if err := json.NewDecoder(resp.Body).Decode(&session); err != nil {
		return nil, fmt.Errorf("decode checkout session: %w", err)
	}
	return &session, nil
}

func gatewayError(resp *http.Response, op string) error {
	var payload struct {
		Error string `json:"error"`
	}
	_ = json.NewDecoder(resp.Body).Decode(&payload)
	message := fmt.Sprintf("%s: gateway returned %d", op, resp.StatusCode)
	if payload.Error != "" {
		message = fmt.Sprintf("%s: %s", message, payload.Error)
	}
	return appErrors.New(appErrors.ErrGateway.Code, appErrors.ErrGateway.Status, message)
}
