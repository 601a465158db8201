package paymentconfig

import "time"

// Config is one row of a tenant's payment provider credentials. Rows are
// created inactive and switched on through activation, which deactivates the
// previous row for the same tenant and method.
type Config struct {
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
