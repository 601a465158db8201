package order

import (
	"time"

	"github.com/opamenu/om-order/internal/module/storeapp/payment"
)

type AddonResponse struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

type ItemResponse struct {
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int64           `json:"quantity"`
	UnitPrice   float64         `json:"unit_price"`
	Addons      []AddonResponse `json:"addons"`
	Notes       string          `json:"notes,omitempty"`
}

type AddressResponse struct {
	Street     string `json:"street"`
	Number     string `json:"number"`
	District   string `json:"district,omitempty"`
	City       string `json:"city"`
	Complement string `json:"complement,omitempty"`
}

type OrderResponse struct {
	ID                 string           `json:"id"`
	TenantID           string           `json:"tenant_id"`
	CustomerID         string           `json:"customer_id"`
	CustomerName       string           `json:"customer_name"`
	CustomerPhone      string           `json:"customer_phone"`
	Items              []ItemResponse   `json:"items"`
	DeliveryMode       string           `json:"delivery_mode"`
	Address            *AddressResponse `json:"address,omitempty"`
	TableRef           *string          `json:"table_ref,omitempty"`
	PaymentMethod      string           `json:"payment_method"`
	Subtotal           float64          `json:"subtotal"`
	DeliveryFee        float64          `json:"delivery_fee"`
	Discount           float64          `json:"discount"`
	RedeemedPoints     int64            `json:"redeemed_points,omitempty"`
	Total              float64          `json:"total"`
	Status             string           `json:"status"`
	RejectionReason    *string          `json:"rejection_reason,omitempty"`
	CancellationReason *string          `json:"cancellation_reason,omitempty"`
	RefundFlagged      bool             `json:"refund_flagged,omitempty"`
	CreatedAt          time.Time        `json:"created_at"`
	UpdatedAt          time.Time        `json:"updated_at"`

	History []StatusHistoryResponse `json:"history,omitempty"`
}

func (r *OrderResponse) PopulateFromEntity(o Order) {
	r.ID = o.ID
	r.TenantID = o.TenantID
	r.CustomerID = o.CustomerID
	r.CustomerName = o.CustomerName
	r.CustomerPhone = o.CustomerPhone
	r.DeliveryMode = o.DeliveryMode
	r.TableRef = o.TableRef
	r.PaymentMethod = o.PaymentMethod
	r.Subtotal = o.Subtotal
	r.DeliveryFee = o.DeliveryFee
	r.Discount = o.Discount
	r.RedeemedPoints = o.RedeemedPoints
	r.Total = o.Total
	r.Status = o.Status
	r.RejectionReason = o.RejectionReason
	r.CancellationReason = o.CancellationReason
	r.RefundFlagged = o.RefundFlagged
	r.CreatedAt = o.CreatedAt
	r.UpdatedAt = o.UpdatedAt

	if o.Address != nil {
		r.Address = &AddressResponse{
			Street:     o.Address.Street,
			Number:     o.Address.Number,
			District:   o.Address.District,
			City:       o.Address.City,
			Complement: o.Address.Complement,
		}
	}

	items := make([]ItemResponse, len(o.Items))
	for k, v := range o.Items {
		addons := make([]AddonResponse, len(v.Addons))
		for j, a := range v.Addons {
			addons[j] = AddonResponse{ID: a.ID, Name: a.Name, Price: a.Price}
		}

		items[k] = ItemResponse{
			ProductID:   v.ProductID,
			ProductName: v.ProductName,
			Quantity:    v.Quantity,
			UnitPrice:   v.UnitPrice,
			Addons:      addons,
			Notes:       v.Notes,
		}
	}
	r.Items = items
}

type StatusHistoryResponse struct {
	Status    string    `json:"status"`
	Actor     string    `json:"actor"`
	Note      string    `json:"note,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type PlaceOrderResponse struct {
	Order OrderResponse            `json:"order"`
	Pix   *payment.PixChargeResult `json:"pix,omitempty"`
}

type GetManyOrderResponse []OrderResponse

type TransitionResponse struct {
	OrderID   string `json:"order_id"`
	OldStatus string `json:"old_status"`
	NewStatus string `json:"new_status"`
}
