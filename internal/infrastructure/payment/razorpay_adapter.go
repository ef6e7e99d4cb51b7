package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	domain "github.com/storefront/backend/internal/domain/payment"
)

// RazorpayAdapter implements domain.Gateway against the Razorpay Orders API
type RazorpayAdapter struct {
	config     *RazorpayConfig
	httpClient *http.Client
}

// NewRazorpayAdapter creates a new Razorpay adapter
func NewRazorpayAdapter(config *RazorpayConfig) (*RazorpayAdapter, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &RazorpayAdapter{
		config:     config,
		httpClient: &http.Client{Timeout: config.timeout()},
	}, nil
}

// Type returns the gateway type
func (a *RazorpayAdapter) Type() domain.GatewayType {
	return domain.GatewayRazorpay
}

// KeyID returns the public checkout key
func (a *RazorpayAdapter) KeyID() string {
	return a.config.KeyID
}

type razorpayOrderRequest struct {
	Amount   int64             `json:"amount"`
	Currency string            `json:"currency"`
	Receipt  string            `json:"receipt"`
	Notes    map[string]string `json:"notes,omitempty"`
}

type razorpayOrderResponse struct {
	ID       string `json:"id"`
	Entity   string `json:"entity"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	Status   string `json:"status"`
}

type razorpayErrorResponse struct {
	Error struct {
		Code        string `json:"code"`
		Description string `json:"description"`
	} `json:"error"`
}

// CreateOrder opens a hosted-checkout order
func (a *RazorpayAdapter) CreateOrder(ctx context.Context, req domain.CreateOrderRequest) (*domain.GatewayOrder, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	currency := req.Currency
	if currency == "" {
		currency = a.config.currency()
	}

	body, err := json.Marshal(razorpayOrderRequest{
		Amount:   req.Amount,
		Currency: currency,
		Receipt:  req.Receipt,
		Notes:    req.Notes,
	})
	if err != nil {
		return nil, fmt.Errorf("razorpay: failed to marshal request: %w", err)
	}

	respBody, err := a.doRequest(ctx, http.MethodPost, "/v1/orders", body)
	if err != nil {
		return nil, err
	}

	var resp razorpayOrderResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidResponse, err)
	}
	if resp.ID == "" {
		return nil, fmt.Errorf("%w: missing order id", domain.ErrInvalidResponse)
	}

	return &domain.GatewayOrder{
		ID:       resp.ID,
		Amount:   resp.Amount,
		Currency: resp.Currency,
		Receipt:  resp.Receipt,
		Status:   resp.Status,
	}, nil
}

// VerifyPayment checks the checkout signature with the key secret
func (a *RazorpayAdapter) VerifyPayment(_ context.Context, gatewayOrderID, paymentID, signature string) error {
	return verifySignature(a.config.KeySecret, CheckoutMessage(gatewayOrderID, paymentID), signature)
}

type razorpayWebhook struct {
	Event   string `json:"event"`
	Payload struct {
		Payment struct {
			Entity struct {
				ID               string  `json:"id"`
				OrderID          string  `json:"order_id"`
				Amount           int64   `json:"amount"`
				ErrorDescription *string `json:"error_description"`
			} `json:"entity"`
		} `json:"payment"`
	} `json:"payload"`
}

// ParseWebhook verifies the body against the webhook secret and decodes it
func (a *RazorpayAdapter) ParseWebhook(body []byte, signature string) (*domain.WebhookEvent, error) {
	if err := verifySignature(a.config.WebhookSecret, string(body), signature); err != nil {
		return nil, err
	}
	return decodeWebhook(body)
}

func decodeWebhook(body []byte) (*domain.WebhookEvent, error) {
	var hook razorpayWebhook
	if err := json.Unmarshal(body, &hook); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidResponse, err)
	}
	entity := hook.Payload.Payment.Entity
	event := &domain.WebhookEvent{
		Event:          hook.Event,
		GatewayOrderID: entity.OrderID,
		PaymentID:      entity.ID,
		Amount:         entity.Amount,
	}
	if entity.ErrorDescription != nil {
		event.ErrorReason = *entity.ErrorDescription
	}
	return event, nil
}

func (a *RazorpayAdapter) doRequest(ctx context.Context, method, path string, body []byte) ([]byte, error) {
	var reqBody io.Reader
	if body != nil {
		reqBody = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, a.config.baseURL()+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("razorpay: failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.SetBasicAuth(a.config.KeyID, a.config.KeySecret)

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrGatewayUnavailable, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("razorpay: failed to read response: %w", err)
	}

	if resp.StatusCode >= http.StatusInternalServerError {
		return nil, fmt.Errorf("%w: HTTP %d", domain.ErrGatewayUnavailable, resp.StatusCode)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		var errResp razorpayErrorResponse
		if err := json.Unmarshal(respBody, &errResp); err == nil && errResp.Error.Code != "" {
			return nil, fmt.Errorf("%w: %s - %s", domain.ErrGatewayRequest, errResp.Error.Code, errResp.Error.Description)
		}
		return nil, fmt.Errorf("%w: HTTP %d", domain.ErrGatewayRequest, resp.StatusCode)
	}

	return respBody, nil
}

var _ domain.Gateway = (*RazorpayAdapter)(nil)
