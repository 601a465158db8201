package loyalty

import "time"

const (
	TransactionEarn     = "EARN"
	TransactionRedeem   = "REDEEM"
	TransactionReversal = "REVERSAL"
)

// Program is a tenant's loyalty configuration. EarnRate is points per
// currency unit spent; RedemptionValue is the currency value of one point.
type Program struct {
	TenantID        string
	EarnRate        float64
	RedemptionValue float64
	Active          bool
}

// Transaction is one signed entry of the append-only ledger. A customer's
// balance is always the sum of their transactions, never a cached field.
type Transaction struct {
	ID         string
	TenantID   string
	CustomerID string
	OrderID    string
	Type       string
	Points     int64
	CreatedAt  time.Time
}
