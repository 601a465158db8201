package payment

import "time"

const (
	MethodPix = "PIX"

	ProviderLocal   = "local"
	ProviderOpenPix = "openpix"
)

const (
	ChargeStatusWaiting  = "WAITING"
	ChargeStatusPaid     = "PAID"
	ChargeStatusExpired  = "EXPIRED"
	ChargeStatusFailed   = "FAILED"
	ChargeStatusRefunded = "REFUNDED"
)

// Charge is one PIX payment attempt tied to exactly one order. An order may
// accumulate charges over retries, but at most one WAITING charge exists at
// any time.
type Charge struct {
	ID         string
	OrderID    string
	TenantID   string
	Provider   string
	ExternalID string
	Amount     float64
	Status     string
	QRPayload  string
	ExpiresAt  time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// TenantConfig holds a tenant's provider choice and credentials for one
// payment method. At most one row per (tenant, method) is active.
type TenantConfig struct {
	ID            int64
	TenantID      string
	Method        string
	Provider      string
	PixKey        string
	MerchantName  string
	MerchantCity  string
	APIKey        string
	WebhookSecret string
	Sandbox       bool
	Active        bool
	ActivatedAt   time.Time
	CreatedAt     time.Time
}
