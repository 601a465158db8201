package order

type AddressRequest struct {
	Street     string `json:"street" validate:"required"`
	Number     string `json:"number" validate:"required"`
	District   string `json:"district"`
	City       string `json:"city" validate:"required"`
	Complement string `json:"complement"`
}

type AddonRequest struct {
	ID    string  `json:"id" validate:"required"`
	Name  string  `json:"name"`
	Price float64 `json:"price" validate:"gte=0"`
}

type ItemRequest struct {
	ProductID   string         `json:"product_id" validate:"required"`
	ProductName string         `json:"product_name"`
	Quantity    int64          `json:"quantity"`
	UnitPrice   float64        `json:"unit_price" validate:"gte=0"`
	Addons      []AddonRequest `json:"addons" validate:"dive"`
	Notes       string         `json:"notes"`
}

type PlaceOrderRequest struct {
	CustomerID    string          `json:"customer_id"`
	CustomerName  string          `json:"customer_name"`
	CustomerPhone string          `json:"customer_phone"`
	Items         []ItemRequest   `json:"items"`
	DeliveryMode  string          `json:"delivery_mode" validate:"oneof=DELIVERY PICKUP DINE_IN COUNTER"`
	Address       *AddressRequest `json:"address"`
	TableRef      *string         `json:"table_ref"`
	PaymentMethod string          `json:"payment_method" validate:"oneof=PIX ON_DELIVERY"`
	DeliveryFee   float64         `json:"delivery_fee" validate:"gte=0"`
	RedeemPoints  int64           `json:"redeem_points" validate:"gte=0"`
}

type TransitionRequest struct {
	OrderID      string `json:"-"`
	TargetStatus string `json:"target_status" validate:"required"`
	Actor        string `json:"actor" validate:"required"`
	Note         string `json:"note"`
	Reason       string `json:"reason"`
}

type GetManyOrderRequest struct {
	Page int64 `validate:"required,gte=1"`
	Size int64 `validate:"required,gte=1,lte=100"`
}
