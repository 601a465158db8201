package order

import "time"

const (
	StatusPending        = "PENDING"
	StatusConfirmed      = "CONFIRMED"
	StatusPreparing      = "PREPARING"
	StatusReady          = "READY"
	StatusOutForDelivery = "OUT_FOR_DELIVERY"
	StatusDelivered      = "DELIVERED"
	StatusCancelled      = "CANCELLED"
	StatusRejected       = "REJECTED"
)

const (
	ModeDelivery = "DELIVERY"
	ModePickup   = "PICKUP"
	ModeDineIn   = "DINE_IN"
	ModeCounter  = "COUNTER"
)

const (
	PaymentPix        = "PIX"
	PaymentOnDelivery = "ON_DELIVERY"
)

type Address struct {
	Street     string
	Number     string
	District   string
	City       string
	Complement string
}

type Addon struct {
	ID    string
	Name  string
	Price float64
}

type Item struct {
	ID          int64
	OrderID     string
	ProductID   string
	ProductName string
	Quantity    int64
	UnitPrice   float64
	Addons      []Addon
	Notes       string
}

// Order is owned exclusively by its tenant and mutated only through the
// status transition flow. Cancelled and rejected orders are kept for audit,
// never deleted.
type Order struct {
	ID                 string
	TenantID           string
	CustomerID         string
	CustomerName       string
	CustomerPhone      string
	Items              []Item
	DeliveryMode       string
	Address            *Address
	TableRef           *string
	PaymentMethod      string
	Subtotal           float64
	DeliveryFee        float64
	Discount           float64
	RedeemedPoints     int64
	Total              float64
	Status             string
	RejectionReason    *string
	CancellationReason *string
	DriverID           *string
	RefundFlagged      bool
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// StatusHistory entries are append-only; one order owns many and none is ever
// mutated after insertion.
type StatusHistory struct {
	ID        int64
	OrderID   string
	Status    string
	Actor     string
	Note      string
	CreatedAt time.Time
}
