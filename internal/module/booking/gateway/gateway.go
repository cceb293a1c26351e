// Package gateway is the narrow handle onto the payment provider. The rest of
// the service only ever creates intents and verifies incoming events through
// this interface, so provider configuration never leaks into usecases.
package gateway

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"

	"rental-service/config"
	"rental-service/internal/pkg/log"

	"github.com/goccy/go-json"
	circuit "github.com/rubyist/circuitbreaker"
)

const (
	EventPaymentSucceeded = "payment_intent.succeeded"
	EventPaymentFailed    = "payment_intent.payment_failed"
)

var (
	ErrSignatureMismatch = errors.New("event signature mismatch")
	ErrMalformedEvent    = errors.New("malformed event payload")
)

type Intent struct {
	ID           string `json:"id"`
	ClientSecret string `json:"client_secret"`
}

// Event is a provider callback already stripped down to what the reconciler
// needs. ID doubles as the idempotency key.
type Event struct {
	ID         string `json:"id"`
	Type       string `json:"type"`
	BookingRef string `json:"booking_ref"`
}

type Gateway interface {
	CreateIntent(ctx context.Context, bookingID string, amountCents int64, currency string) (Intent, error)
	VerifyAndParse(payload []byte, signature string) (Event, error)
}

type gateway struct {
	httpClient *circuit.HTTPClient
	cfg        *config.PaymentGatewayConfig
	log        log.Logger
}

func New(httpClient *circuit.HTTPClient, cfg *config.PaymentGatewayConfig, log log.Logger) Gateway {
	return &gateway{
		httpClient: httpClient,
		cfg:        cfg,
		log:        log,
	}
}

type createIntentRequest struct {
	Amount   int64             `json:"amount"`
	Currency string            `json:"currency"`
	Metadata map[string]string `json:"metadata"`
}

// CreateIntent implements Gateway.
func (g *gateway) CreateIntent(ctx context.Context, bookingID string, amountCents int64, currency string) (Intent, error) {
	if amountCents <= 0 {
		return Intent{}, fmt.Errorf("invalid amount: %d", amountCents)
	}

	body, err := json.Marshal(createIntentRequest{
		Amount:   amountCents,
		Currency: currency,
		Metadata: map[string]string{"booking_id": bookingID},
	})
	if err != nil {
		return Intent{}, err
	}

	url := fmt.Sprintf("%s/v1/payment_intents", g.cfg.BaseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return Intent{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+g.cfg.SecretKey)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return Intent{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		g.log.Error(ctx, "payment provider rejected intent", resp.StatusCode)
		return Intent{}, fmt.Errorf("payment provider returned status %d", resp.StatusCode)
	}

	var intent Intent
	dec := json.NewDecoder(resp.Body)
	if err := dec.Decode(&intent); err != nil {
		return Intent{}, err
	}

	return intent, nil
}

// wireEvent mirrors the provider's webhook envelope.
type wireEvent struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		Object struct {
			ID       string            `json:"id"`
			Metadata map[string]string `json:"metadata"`
		} `json:"object"`
	} `json:"data"`
}

// VerifyAndParse checks the HMAC-SHA256 hex signature over the raw payload
// before any field of the event is trusted.
func (g *gateway) VerifyAndParse(payload []byte, signature string) (Event, error) {
	mac := hmac.New(sha256.New, []byte(g.cfg.WebhookSecret))
	if _, err := mac.Write(payload); err != nil {
		return Event{}, err
	}
	expected := hex.EncodeToString(mac.Sum(nil))
	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return Event{}, ErrSignatureMismatch
	}

	var wire wireEvent
	if err := json.Unmarshal(payload, &wire); err != nil {
		return Event{}, ErrMalformedEvent
	}
	if wire.ID == "" || wire.Type == "" {
		return Event{}, ErrMalformedEvent
	}

	return Event{
		ID:         wire.ID,
		Type:       wire.Type,
		BookingRef: wire.Data.Object.Metadata["booking_id"],
	}, nil
}

// Sign computes the signature the provider would attach to payload. Exposed
// for tests and local tooling that replay webhook deliveries.
func Sign(secret string, payload []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	_, _ = io.WriteString(mac, string(payload))
	return hex.EncodeToString(mac.Sum(nil))
}
