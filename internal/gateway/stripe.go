// Package gateway holds thin HTTP clients for the external providers:
// Stripe for card payments, Twilio for SMS and Resend for email. Each
// client wraps the provider's REST endpoint directly and decodes only the
// fields the rest of the system reads.
package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const stripeBaseURL = "https://api.stripe.com/v1"

// StripeClient talks to the Stripe payment intents API.
type StripeClient struct {
	secretKey string
	baseURL   string
	http      *http.Client
}

func NewStripeClient(secretKey string) *StripeClient {
	return &StripeClient{
		secretKey: secretKey,
		baseURL:   stripeBaseURL,
		http:      &http.Client{Timeout: 10 * time.Second},
	}
}

// PaymentIntent is the subset of Stripe's payment intent object we consume.
type PaymentIntent struct {
	ID           string `json:"id"`
	ClientSecret string `json:"client_secret"`
	Status       string `json:"status"`
	Amount       int64  `json:"amount"`
}

// CreatePaymentIntent creates an intent for amountCents. customerID and
// metadata are optional.
func (s *StripeClient) CreatePaymentIntent(ctx context.Context, amountCents int64, currency, customerID, description string, metadata map[string]string) (*PaymentIntent, error) {
	if s.secretKey == "" {
		return nil, fmt.Errorf("stripe: secret key not configured")
	}
	form := url.Values{}
	form.Set("amount", strconv.FormatInt(amountCents, 10))
	form.Set("currency", currency)
	form.Set("automatic_payment_methods[enabled]", "true")
	if customerID != "" {
		form.Set("customer", customerID)
	}
	if description != "" {
		form.Set("description", description)
	}
	for k, v := range metadata {
		form.Set("metadata["+k+"]", v)
	}

	var pi PaymentIntent
	if err := s.postForm(ctx, "/payment_intents", form, &pi); err != nil {
		return nil, err
	}
	return &pi, nil
}

// CreateCustomer registers a customer record with Stripe and returns its id.
func (s *StripeClient) CreateCustomer(ctx context.Context, email, name string) (string, error) {
	if s.secretKey == "" {
		return "", fmt.Errorf("stripe: secret key not configured")
	}
	form := url.Values{}
	form.Set("email", email)
	form.Set("name", name)

	var out struct {
		ID string `json:"id"`
	}
	if err := s.postForm(ctx, "/customers", form, &out); err != nil {
		return "", err
	}
	return out.ID, nil
}

func (s *StripeClient) postForm(ctx context.Context, path string, form url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+path, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("stripe: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.secretKey)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.http.Do(req)
	if err != nil {
		return fmt.Errorf("stripe: %s: %w", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("stripe: read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr struct {
			Error struct {
				Message string `json:"message"`
			} `json:"error"`
		}
		_ = json.Unmarshal(body, &apiErr)
		if apiErr.Error.Message != "" {
			return fmt.Errorf("stripe: %s: %s", path, apiErr.Error.Message)
		}
		return fmt.Errorf("stripe: %s: status %d", path, resp.StatusCode)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("stripe: decode response: %w", err)
	}
	return nil
}
