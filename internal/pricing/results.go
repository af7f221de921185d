package pricing

import "github.com/shopspring/decimal"

// --------------------------------------------------
// CART RESULTS
// --------------------------------------------------

// Credit is the credit movement of one priced cart.
type Credit struct {
	CreditUsed  decimal.Decimal `json:"credit_used"`
	CreditToAdd decimal.Decimal `json:"credit_to_add"`
}

// Breakdown exposes intermediate totals for display.
type Breakdown struct {
	ItemTotal     decimal.Decimal `json:"item_total"`     // after item-level discounts
	OrderDiscount decimal.Decimal `json:"order_discount"` // order-level share of Discount
}

// Results is the fully derived pricing of a cart under a deal effect.
// Recomputed wholesale on every change, never patched incrementally.
type Results struct {
	Subtotal           decimal.Decimal `json:"subtotal"` // pre-discount
	Discount           decimal.Decimal `json:"discount"`
	Tax                decimal.Decimal `json:"tax"`
	CustomerServiceFee decimal.Decimal `json:"customer_service_fee"`
	TotalPrice         decimal.Decimal `json:"total_price"`
	TotalPoints        int             `json:"total_points"`
	TotalPointCost     int             `json:"total_point_cost"`
	Credit             Credit          `json:"credit"`
	Breakdown          Breakdown       `json:"breakdown"`

	// InsufficientPoints is a reported condition, not an error:
	// checkout must be blocked while it is set.
	InsufficientPoints bool `json:"insufficient_points"`
}

// Config is the restaurant-level pricing configuration.
type Config struct {
	TaxRate           decimal.Decimal
	ServiceFeeFlat    decimal.Decimal
	ServiceFeePercent decimal.Decimal
	CreditBackRate    decimal.Decimal
}
