package checkout

import (
	"github.com/shopspring/decimal"

	"tapin/internal/cart"
	"tapin/internal/deal"
	"tapin/internal/pricing"
	"tapin/internal/transactions"
)

// --------------------------------------------------
// WIRE CONTRACTS
// --------------------------------------------------

// Quote is the derived state the ordering UI renders: cart, deal
// effect and cart results from one atomic recomputation.
type Quote struct {
	Cart        *cart.Cart      `json:"cart"`
	DealEffect  *deal.Payload   `json:"dealEffect"`
	CartResults pricing.Results `json:"cartResults"`
}

// IntentRequest asks for a payment authorization over the current
// quote plus tip. Tip lives at the checkout boundary, never inside
// the pricing engine.
type IntentRequest struct {
	RestaurantID string          `json:"restaurant_id"`
	Tip          decimal.Decimal `json:"tip"`
	ApplyCredit  bool            `json:"apply_credit"`
}

// PurchaseRequest is the submit-order contract, produced verbatim for
// the external purchase function.
type PurchaseRequest struct {
	UserAccessToken string           `json:"userAccessToken"`
	RestaurantID    string           `json:"restaurant_id"`
	TotalWithTip    decimal.Decimal  `json:"totalWithTip"`
	Cart            *cart.Cart       `json:"cart"`
	UserDealEffect  *deal.Payload    `json:"userDealEffect"`
	UserPolicy      []string         `json:"userPolicy"`
	UserCartResults *pricing.Results `json:"userCartResults"`
	Token           string           `json:"token"`
	PaymentData     map[string]any   `json:"paymentData"`

	ApplyCredit bool `json:"apply_credit"`
}

// PurchaseResponse mirrors the external purchase function's reply.
type PurchaseResponse struct {
	Transactions     []transactions.Transaction `json:"transactions"`
	ModifiedUserData UserData                   `json:"modifiedUserData"`
}

// UserData is the user's post-checkout standing with the restaurant.
type UserData struct {
	UserID string          `json:"user_id"`
	Points int             `json:"points"`
	Credit decimal.Decimal `json:"credit"`
}

// BundlePurchaseRequest buys a pass.
type BundlePurchaseRequest struct {
	Token       string         `json:"token"`
	PaymentData map[string]any `json:"paymentData"`
}
