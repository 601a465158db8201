package order

const (
	TopicOrderCreated       = "order-created"
	TopicOrderStatusChanged = "order-status-changed"
)

type OrderCreatedEvent struct {
	OrderID      string  `json:"order_id"`
	TenantID     string  `json:"tenant_id"`
	CustomerID   string  `json:"customer_id"`
	DeliveryMode string  `json:"delivery_mode"`
	Total        float64 `json:"total"`
	Status       string  `json:"status"`
}

type StatusChangedEvent struct {
	OrderID   string `json:"order_id"`
	TenantID  string `json:"tenant_id"`
	OldStatus string `json:"old_status"`
	NewStatus string `json:"new_status"`
	Actor     string `json:"actor"`
	Note      string `json:"note,omitempty"`
}
