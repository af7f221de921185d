package cart

import (
	"github.com/shopspring/decimal"

	"tapin/internal/catalog"
)

// --------------------------------------------------
// CART
// --------------------------------------------------

// CartItem is one cart line: a unique item reference plus quantity.
type CartItem struct {
	ID           int             `json:"id"`
	Item         catalog.Item    `json:"item"`
	Quantity     int             `json:"quantity"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	PointsEarned int             `json:"points_earned"`
	PointCost    int             `json:"point_cost"`
}

// LineTotal is the undiscounted price of the line.
func (ci *CartItem) LineTotal() decimal.Decimal {
	return ci.UnitPrice.Mul(decimal.NewFromInt(int64(ci.Quantity)))
}

// Cart is an ordered sequence of lines, unique by item reference.
// Line ids are assigned monotonically and never reused; Version bumps
// on every mutation so deal effects and cart results can be derived
// from one consistent snapshot.
type Cart struct {
	RestaurantID string      `json:"restaurant_id"`
	Items        []*CartItem `json:"items"`
	NextID       int         `json:"next_id"`
	Version      int         `json:"version"`

	// SelectedPolicies are the deals the user has tapped, in
	// selection order. Selection order is the resolver's candidate
	// order, so it is part of the persisted cart state.
	SelectedPolicies []string `json:"selected_policies,omitempty"`
}

// New returns an empty cart for a restaurant.
func New(restaurantID string) *Cart {
	return &Cart{RestaurantID: restaurantID, NextID: 1}
}

// Find returns the line holding an equal item reference, or nil.
func (c *Cart) Find(item catalog.Item) *CartItem {
	for _, line := range c.Items {
		if line.Item.Equal(item) {
			return line
		}
	}
	return nil
}

// Line returns the line with the given id, or nil.
func (c *Cart) Line(id int) *CartItem {
	for _, line := range c.Items {
		if line.ID == id {
			return line
		}
	}
	return nil
}

// Subtotal is the pre-discount total of every line.
func (c *Cart) Subtotal() decimal.Decimal {
	total := decimal.Zero
	for _, line := range c.Items {
		total = total.Add(line.LineTotal())
	}
	return total
}

// QuantityMatching sums quantities of lines whose item id satisfies
// any of the given item specs.
func (c *Cart) QuantityMatching(ix *catalog.Index, specs []string) int {
	total := 0
	for _, line := range c.Items {
		if ix.Matches(line.Item.ID, specs) {
			total += line.Quantity
		}
	}
	return total
}

// Empty reports whether the cart has no lines.
func (c *Cart) Empty() bool {
	return len(c.Items) == 0
}
