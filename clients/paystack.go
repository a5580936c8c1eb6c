package clients

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

// PaystackClientWrapper provides an interface for Paystack operations.
// This interface allows for easier testing by mocking provider interactions.
type PaystackClientWrapper interface {
	InitializeTransaction(ctx context.Context, req InitializeRequest) (*InitializeResponse, error)
	VerifyWebhookSignature(signature string, rawBody []byte) bool
}

// InitializeRequest is the payload for creating a payment authorization.
// Amount is in kobo, the provider's minor unit.
type InitializeRequest struct {
	Email     string         `json:"email"`
	Amount    int64          `json:"amount"`
	Reference string         `json:"reference"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// InitializeResponse is the authorization handle returned by the provider.
type InitializeResponse struct {
	AuthorizationURL string `json:"authorization_url"`
	AccessCode       string `json:"access_code"`
	Reference        string `json:"reference"`
}

// PaystackClient implements PaystackClientWrapper against the Paystack API.
type PaystackClient struct {
	SecretKey  string
	BaseURL    string
	HttpClient *http.Client // Shared HTTP client for performance
}

// NewPaystackClient creates a Paystack client from PAYSTACK_SECRET_KEY and
// optional PAYSTACK_BASE_URL.
func NewPaystackClient() (*PaystackClient, error) {
	secretKey := os.Getenv("PAYSTACK_SECRET_KEY")
	if secretKey == "" {
		return nil, fmt.Errorf("PAYSTACK_SECRET_KEY not set")
	}

	baseURL := os.Getenv("PAYSTACK_BASE_URL")
	if baseURL == "" {
		baseURL = "https://api.paystack.co"
	}

	return &PaystackClient{
		SecretKey: secretKey,
		BaseURL:   baseURL,
		// Bounded timeout: a hung provider call must surface as a
		// retryable failure, not hold the request open indefinitely.
		HttpClient: &http.Client{Timeout: 15 * time.Second},
	}, nil
}

type initializeEnvelope struct {
	Status  bool               `json:"status"`
	Message string             `json:"message"`
	Data    InitializeResponse `json:"data"`
}

// InitializeTransaction asks Paystack for a payment authorization handle.
// Failures leave no local state behind; the caller only commits the
// reference after this returns successfully.
func (p *PaystackClient) InitializeTransaction(ctx context.Context, req InitializeRequest) (*InitializeResponse, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal initialize payload: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		p.BaseURL+"/transaction/initialize", bytes.NewBuffer(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build initialize request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+p.SecretKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := p.HttpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("paystack request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		return nil, fmt.Errorf("paystack returned %d: %s", resp.StatusCode, string(body))
	}

	var envelope initializeEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("invalid paystack response: %w", err)
	}
	if !envelope.Status {
		return nil, fmt.Errorf("paystack initialization failed: %s", envelope.Message)
	}

	return &envelope.Data, nil
}

// VerifyWebhookSignature checks the HMAC-SHA512 hex signature Paystack
// computes over the exact raw request bytes. The comparison is constant
// time, and the raw bytes are used as received: re-serializing a parsed
// payload can change byte layout and falsely reject or accept.
func (p *PaystackClient) VerifyWebhookSignature(signature string, rawBody []byte) bool {
	if signature == "" {
		return false
	}

	mac := hmac.New(sha512.New, []byte(p.SecretKey))
	mac.Write(rawBody)
	expected := hex.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(expected), []byte(signature))
}
