package transactions

import (
	"time"

	"github.com/shopspring/decimal"

	"tapin/internal/catalog"
)

// Transaction states.
const (
	StatusPurchased = "PURCHASED"
	StatusRedeemed  = "REDEEMED"
)

// Transaction is one purchased unit, individually redeemable at the
// bar via QR code.
type Transaction struct {
	TransactionID string          `json:"transaction_id"`
	UserID        string          `json:"user_id"`
	RestaurantID  string          `json:"restaurant_id"`
	OrderID       string          `json:"order_id"`
	Item          catalog.Item    `json:"item"`
	ItemName      string          `json:"item_name"`
	PaidPrice     decimal.Decimal `json:"paid_price"`
	PolicyID      *string         `json:"policy_id,omitempty"` // policy that touched this unit, if any
	Status        string          `json:"status"`
	CreatedAt     time.Time       `json:"created_at"`
	RedeemedAt    *time.Time      `json:"redeemed_at,omitempty"`
}

// Redeemed reports whether the unit has already been fulfilled.
func (t *Transaction) Redeemed() bool {
	return t.Status == StatusRedeemed
}
