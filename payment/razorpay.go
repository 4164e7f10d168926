package payment

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"os"
	"time"
)

// ErrInvalidAmount is returned before any gateway call when the order amount
// is not positive.
var ErrInvalidAmount = errors.New("invalid amount")

// GatewayError wraps an upstream payment-provider failure. Its detail is for
// server logs; handlers report it to clients generically.
type GatewayError struct {
	StatusCode int
	Detail     string
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("gateway error (status %d): %s", e.StatusCode, e.Detail)
}

// Order is the ephemeral reference the gateway hands back for a checkout
// attempt. Amount is in paise.
type Order struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
}

// Payment mirrors the fields of a gateway payment we surface to callers.
type Payment struct {
	ID        string  `json:"id"`
	Amount    float64 `json:"amount"`
	Currency  string  `json:"currency"`
	Status    string  `json:"status"`
	Method    string  `json:"method,omitempty"`
	Email     string  `json:"email,omitempty"`
	Contact   string  `json:"contact,omitempty"`
	CreatedAt int64   `json:"created_at"`
}

// Client talks to the Razorpay order API. It is constructed once at startup
// and injected into whoever needs it; there is no package-level instance.
// With mock enabled it fabricates order ids locally and accepts any payment
// id on fetch, which is what local development and the test suite use.
type Client struct {
	keyID     string
	keySecret string
	baseURL   string
	http      *http.Client
	mock      bool
}

func NewClient(keyID, keySecret string, mock bool) *Client {
	return &Client{
		keyID:     keyID,
		keySecret: keySecret,
		baseURL:   "https://api.razorpay.com",
		http:      &http.Client{Timeout: 10 * time.Second},
		mock:      mock,
	}
}

// NewClientFromEnv builds a client from RAZORPAY_KEY_ID / RAZORPAY_KEY_SECRET,
// falling back to the documented test credentials. RAZORPAY_MOCK=1 enables
// mock mode.
func NewClientFromEnv() *Client {
	keyID := os.Getenv("RAZORPAY_KEY_ID")
	if keyID == "" {
		keyID = "rzp_test_1DP5MMOk9HrDPG"
	}
	secret := os.Getenv("RAZORPAY_KEY_SECRET")
	if secret == "" {
		secret = "test_secret_key"
	}
	return NewClient(keyID, secret, os.Getenv("RAZORPAY_MOCK") == "1")
}

// KeyID is the public key the checkout widget needs.
func (c *Client) KeyID() string { return c.keyID }

// CreateOrder requests an order for the given amount in major currency units
// (rupees). The gateway speaks paise, so the amount is converted here, and
// only here.
func (c *Client) CreateOrder(ctx context.Context, amountMajor float64, receipt string) (Order, error) {
	if amountMajor <= 0 {
		return Order{}, ErrInvalidAmount
	}
	paise := int64(math.Round(amountMajor * 100))

	if c.mock {
		buf := make([]byte, 10)
		if _, err := rand.Read(buf); err != nil {
			return Order{}, err
		}
		return Order{
			ID:       "order_" + hex.EncodeToString(buf),
			Amount:   paise,
			Currency: "INR",
			Receipt:  receipt,
		}, nil
	}

	payload := map[string]any{
		"amount":   paise,
		"currency": "INR",
		"receipt":  receipt,
		"notes":    map[string]string{"description": "Booking payment for Dora Explorer"},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return Order{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/orders", bytes.NewReader(body))
	if err != nil {
		return Order{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(c.keyID, c.keySecret)

	resp, err := c.http.Do(req)
	if err != nil {
		return Order{}, &GatewayError{StatusCode: 0, Detail: err.Error()}
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Order{}, &GatewayError{StatusCode: resp.StatusCode, Detail: string(respBody)}
	}

	var order Order
	if err := json.Unmarshal(respBody, &order); err != nil {
		return Order{}, &GatewayError{StatusCode: resp.StatusCode, Detail: "malformed order response"}
	}
	return order, nil
}

// FetchPayment looks up a payment's details on the gateway.
func (c *Client) FetchPayment(ctx context.Context, paymentID string) (Payment, error) {
	if c.mock {
		return Payment{
			ID:        paymentID,
			Currency:  "INR",
			Status:    "captured",
			CreatedAt: time.Now().Unix(),
		}, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1/payments/"+paymentID, nil)
	if err != nil {
		return Payment{}, err
	}
	req.SetBasicAuth(c.keyID, c.keySecret)

	resp, err := c.http.Do(req)
	if err != nil {
		return Payment{}, &GatewayError{StatusCode: 0, Detail: err.Error()}
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Payment{}, &GatewayError{StatusCode: resp.StatusCode, Detail: string(respBody)}
	}

	var raw struct {
		ID        string `json:"id"`
		Amount    int64  `json:"amount"`
		Currency  string `json:"currency"`
		Status    string `json:"status"`
		Method    string `json:"method"`
		Email     string `json:"email"`
		Contact   string `json:"contact"`
		CreatedAt int64  `json:"created_at"`
	}
	if err := json.Unmarshal(respBody, &raw); err != nil {
		return Payment{}, &GatewayError{StatusCode: resp.StatusCode, Detail: "malformed payment response"}
	}
	return Payment{
		ID:        raw.ID,
		Amount:    float64(raw.Amount) / 100,
		Currency:  raw.Currency,
		Status:    raw.Status,
		Method:    raw.Method,
		Email:     raw.Email,
		Contact:   raw.Contact,
		CreatedAt: raw.CreatedAt,
	}, nil
}
