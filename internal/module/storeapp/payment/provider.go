package payment

import (
	"context"
	"time"
)

// CreateChargeRequest is what every provider needs to open a PIX charge.
type CreateChargeRequest struct {
	ChargeID  string
	OrderID   string
	Amount    float64
	ExpiresAt time.Time
}

type CreateChargeResponse struct {
	ExternalID string
	QRPayload  string
}

// WebhookResult is the normalized outcome of a gateway notification. The
// orchestrator never branches on provider type; everything it needs is here.
type WebhookResult struct {
	ExternalID string
	Status     string
	Amount     float64
}

// Provider abstracts one PIX payment backend. Signature verification runs on
// the raw request body before any parsing, and a verification failure is
// permanent, never retried.
type Provider interface {
	Name() string
	CreateCharge(ctx context.Context, req CreateChargeRequest) (CreateChargeResponse, error)
	VerifySignature(rawBody []byte, signature string) error
	ParseWebhook(rawBody []byte) (WebhookResult, error)
	Refund(ctx context.Context, externalID string, amount float64) error
}
