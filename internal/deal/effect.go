package deal

import (
	"github.com/shopspring/decimal"

	"tapin/internal/catalog"
)

// Whole-cart modification kinds.
const (
	KindFixed           = "fixed"
	KindPercent         = "percent"
	KindPointMultiplier = "point_multiplier"
)

// --------------------------------------------------
// DEAL EFFECT PAYLOAD
// --------------------------------------------------

// AddedItem is one cart unit granted for free. One entry per unit.
type AddedItem struct {
	CartItemID int          `json:"cart_item_id"`
	Item       catalog.Item `json:"item"`
	PolicyID   string       `json:"policy_id"`
}

// ModifiedItem records units of a cart line claimed by a policy:
// either a price change (DiscountedUnitPrice set) or a point boost
// (PointMultiplier set), never both.
type ModifiedItem struct {
	CartItemID          int              `json:"cart_item_id"`
	PolicyID            string           `json:"policy_id"`
	Quantity            int              `json:"quantity"`
	DiscountedUnitPrice *decimal.Decimal `json:"discounted_unit_price,omitempty"`
	PointMultiplier     *decimal.Decimal `json:"point_multiplier,omitempty"`
}

// WholeCartModification is the single active order-level effect.
type WholeCartModification struct {
	PolicyID string          `json:"policy_id"`
	Kind     string          `json:"kind"`
	Amount   decimal.Decimal `json:"amount"`
}

// CreditGrant flags an add_to_user_credit action for the aggregator.
type CreditGrant struct {
	PolicyID string          `json:"policy_id"`
	Amount   decimal.Decimal `json:"amount"`
}

// Payload is the resolver's complete output: a deterministic, derived
// description of what the active policies do to the cart. It never
// contains policy state of its own beyond the referenced ids.
type Payload struct {
	AddedItems            []AddedItem            `json:"added_items"`
	ModifiedItems         []ModifiedItem         `json:"modified_items"`
	WholeCartModification *WholeCartModification `json:"whole_cart_modification,omitempty"`
	CreditGrants          []CreditGrant          `json:"credit_grants,omitempty"`
}

// ActivePolicyIDs is the set of policies baked into the effect,
// regardless of whether they would still be eligible now.
func (p *Payload) ActivePolicyIDs() map[string]struct{} {
	ids := make(map[string]struct{})
	if p == nil {
		return ids
	}
	for _, a := range p.AddedItems {
		ids[a.PolicyID] = struct{}{}
	}
	for _, m := range p.ModifiedItems {
		ids[m.PolicyID] = struct{}{}
	}
	for _, g := range p.CreditGrants {
		ids[g.PolicyID] = struct{}{}
	}
	if p.WholeCartModification != nil {
		ids[p.WholeCartModification.PolicyID] = struct{}{}
	}
	return ids
}

// Active reports whether a policy participates in the effect.
func (p *Payload) Active(policyID string) bool {
	_, ok := p.ActivePolicyIDs()[policyID]
	return ok
}
