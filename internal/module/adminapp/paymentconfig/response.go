package paymentconfig

import "time"

// ConfigResponse never includes the API key or webhook secret; credentials
// are write-only through this surface.
type ConfigResponse struct {
	ID           int64     `json:"id"`
	TenantID     string    `json:"tenant_id"`
	Method       string    `json:"method"`
	Provider     string    `json:"provider"`
	PixKey       string    `json:"pix_key,omitempty"`
	MerchantName string    `json:"merchant_name,omitempty"`
	MerchantCity string    `json:"merchant_city,omitempty"`
	Sandbox      bool      `json:"sandbox"`
	Active       bool      `json:"active"`
	ActivatedAt  time.Time `json:"activated_at,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

func (r *ConfigResponse) PopulateFromEntity(c Config) {
	r.ID = c.ID
	r.TenantID = c.TenantID
	r.Method = c.Method
	r.Provider = c.Provider
	r.PixKey = c.PixKey
	r.MerchantName = c.MerchantName
	r.MerchantCity = c.MerchantCity
	r.Sandbox = c.Sandbox
	r.Active = c.Active
	r.ActivatedAt = c.ActivatedAt
	r.CreatedAt = c.CreatedAt
}

type GetManyConfigResponse []ConfigResponse
