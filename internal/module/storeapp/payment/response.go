package payment

import "time"

type PixChargeResult struct {
	ChargeID   string    `json:"charge_id"`
	OrderID    string    `json:"order_id"`
	Provider   string    `json:"provider"`
	ExternalID string    `json:"external_id"`
	Amount     float64   `json:"amount"`
	Status     string    `json:"status"`
	QRPayload  string    `json:"qr_payload"`
	ExpiresAt  time.Time `json:"expires_at"`
}

func (r *PixChargeResult) PopulateFromEntity(c Charge) {
	r.ChargeID = c.ID
	r.OrderID = c.OrderID
	r.Provider = c.Provider
	r.ExternalID = c.ExternalID
	r.Amount = c.Amount
	r.Status = c.Status
	r.QRPayload = c.QRPayload
	r.ExpiresAt = c.ExpiresAt
}
