package payment

type ExpireChargeEvent struct {
	ChargeID string `json:"charge_id"`
}
