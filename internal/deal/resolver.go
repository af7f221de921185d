package deal

import (
	"sort"

	"github.com/shopspring/decimal"

	"tapin/internal/cart"
	"tapin/internal/catalog"
	"tapin/internal/policy"
)

// --------------------------------------------------
// RESOLVER
// --------------------------------------------------

// Input is everything resolution depends on. The resolver is a pure
// function of it: same cart (including insertion order), same ordered
// candidate list, same previous effect — byte-identical output.
// Candidates must already be filtered to eligible policies.
type Input struct {
	Cart       *cart.Cart
	Candidates []policy.Policy
	Catalog    *catalog.Index

	// Previous carries the prior effect so an already-selected
	// order-level policy stays selected (sticky selection).
	Previous *Payload
}

// Resolve computes the deal effect for a cart.
//
// Precedence: at most one order-level policy is active (sticky, else
// first in input order). Item-level policies run independently in
// input order; a cart line is claimed by at most one discount-style
// policy, first wins. Actions that find nothing to affect are silent
// no-ops.
func Resolve(in Input) *Payload {
	out := &Payload{}
	if in.Cart == nil {
		return out
	}

	var orderLevel, itemLevel []policy.Policy
	for _, p := range in.Candidates {
		if p.Definition.Action == nil {
			continue
		}
		if policy.OrderLevel(p.Definition.Action) {
			orderLevel = append(orderLevel, p)
		} else {
			itemLevel = append(itemLevel, p)
		}
	}

	r := &resolution{
		cart:         in.Cart,
		catalog:      in.Catalog,
		out:          out,
		claimed:      make(map[int]bool),
		pointClaimed: make(map[int]bool),
	}

	for _, p := range itemLevel {
		r.applyItemLevel(p)
	}

	if active := pickOrderLevel(orderLevel, in.Previous); active != nil {
		r.applyOrderLevel(*active)
	}

	return out
}

// pickOrderLevel resolves the ambiguous multi-candidate case: the
// previously active selection wins, otherwise the first candidate.
func pickOrderLevel(candidates []policy.Policy, previous *Payload) *policy.Policy {
	if len(candidates) == 0 {
		return nil
	}
	if previous != nil {
		prev := previous.ActivePolicyIDs()
		for i := range candidates {
			if _, ok := prev[candidates[i].PolicyID]; ok {
				return &candidates[i]
			}
		}
	}
	return &candidates[0]
}

// --------------------------------------------------
// RESOLUTION STATE
// --------------------------------------------------

type resolution struct {
	cart    *cart.Cart
	catalog *catalog.Index
	out     *Payload

	// claimed guards discount-style and free-item claims; a line in
	// it is closed to later price-affecting policies. pointClaimed is
	// the separate claim class for point multipliers.
	claimed      map[int]bool
	pointClaimed map[int]bool
}

func (r *resolution) applyItemLevel(p policy.Policy) {
	switch action := p.Definition.Action.(type) {
	case policy.AddFreeItem:
		r.addFreeItems(p.PolicyID, action)
	case policy.ApplyPercentDiscount:
		r.discountItems(p.PolicyID, action.Items, action.MaxEffectedItems, func(price decimal.Decimal) decimal.Decimal {
			return price.Mul(decimal.NewFromInt(1).Sub(action.Amount))
		})
	case policy.ApplyFixedDiscount:
		r.discountItems(p.PolicyID, action.Items, action.MaxEffectedItems, func(price decimal.Decimal) decimal.Decimal {
			return price.Sub(action.Amount)
		})
	case policy.ApplyBlanketPrice:
		r.blanketPrice(p.PolicyID, action)
	case policy.ApplyPointMultiplier:
		r.boostPoints(p.PolicyID, action)
	case policy.ApplyAddOn:
		r.applyAddOn(p.PolicyID, action)
	case policy.AddToUserCredit:
		r.out.CreditGrants = append(r.out.CreditGrants, CreditGrant{
			PolicyID: p.PolicyID,
			Amount:   action.Amount,
		})
	}
}

func (r *resolution) applyOrderLevel(p policy.Policy) {
	mod := &WholeCartModification{PolicyID: p.PolicyID}
	switch action := p.Definition.Action.(type) {
	case policy.ApplyFixedOrderDiscount:
		mod.Kind, mod.Amount = KindFixed, action.Amount
	case policy.ApplyOrderPercentDiscount:
		mod.Kind, mod.Amount = KindPercent, action.Amount
	case policy.ApplyOrderPointMultiplier:
		mod.Kind, mod.Amount = KindPointMultiplier, action.Amount
	default:
		return
	}
	r.out.WholeCartModification = mod
}

// addFreeItems frees up to action.Quantity units already present in
// the cart, walking resolved specs in order (earliest-expiring dated
// items last per catalog ordering). A shortfall is not an error.
func (r *resolution) addFreeItems(policyID string, action policy.AddFreeItem) {
	remaining := action.Quantity
	for _, id := range r.catalog.ResolveItemSpecs(action.Items) {
		if remaining <= 0 {
			return
		}
		for _, line := range r.cart.Items {
			if remaining <= 0 {
				return
			}
			if line.Item.ID != id || r.claimed[line.ID] {
				continue
			}
			units := min(remaining, line.Quantity)
			for u := 0; u < units; u++ {
				r.out.AddedItems = append(r.out.AddedItems, AddedItem{
					CartItemID: line.ID,
					Item:       line.Item,
					PolicyID:   policyID,
				})
			}
			r.claimed[line.ID] = true
			remaining -= units
		}
	}
}

// matchingLines returns unclaimed cart lines matching the specs,
// highest unit price first, ties by cart insertion order.
func (r *resolution) matchingLines(specs []string, claims map[int]bool) []*cart.CartItem {
	var lines []*cart.CartItem
	for _, line := range r.cart.Items {
		if claims[line.ID] {
			continue
		}
		if r.catalog.Matches(line.Item.ID, specs) {
			lines = append(lines, line)
		}
	}
	sort.SliceStable(lines, func(a, b int) bool {
		return lines[a].UnitPrice.GreaterThan(lines[b].UnitPrice)
	})
	return lines
}

func (r *resolution) discountItems(policyID string, specs []string, maxUnits int, reprice func(decimal.Decimal) decimal.Decimal) {
	remaining := maxUnits
	if maxUnits <= 0 {
		remaining = int(^uint(0) >> 1) // uncapped
	}

	for _, line := range r.matchingLines(specs, r.claimed) {
		if remaining <= 0 {
			return
		}
		units := min(remaining, line.Quantity)
		discounted := clampPrice(reprice(line.UnitPrice))
		r.out.ModifiedItems = append(r.out.ModifiedItems, ModifiedItem{
			CartItemID:          line.ID,
			PolicyID:            policyID,
			Quantity:            units,
			DiscountedUnitPrice: &discounted,
		})
		r.claimed[line.ID] = true
		remaining -= units
	}
}

// blanketPrice reprices all matching lines to exactly action.Amount
// combined, distributing proportionally to each line's share of the
// natural total so no line goes negative. A no-op when the natural
// total does not exceed the blanket amount.
func (r *resolution) blanketPrice(policyID string, action policy.ApplyBlanketPrice) {
	lines := r.matchingLines(action.Items, r.claimed)
	if len(lines) == 0 {
		return
	}

	combined := decimal.Zero
	for _, line := range lines {
		combined = combined.Add(line.LineTotal())
	}
	if combined.LessThanOrEqual(action.Amount) || combined.IsZero() {
		return
	}

	distributed := decimal.Zero
	for i, line := range lines {
		remainder := action.Amount.Sub(distributed)
		var target decimal.Decimal
		if i == len(lines)-1 {
			// last line absorbs rounding so the sum is exact
			target = remainder
		} else {
			target = action.Amount.Mul(line.LineTotal()).Div(combined).Round(2)
			// rounding up many small shares must not overshoot the
			// blanket amount and push later lines negative
			if target.GreaterThan(remainder) {
				target = remainder
			}
		}
		distributed = distributed.Add(target)

		unit := target.Div(decimal.NewFromInt(int64(line.Quantity)))
		r.out.ModifiedItems = append(r.out.ModifiedItems, ModifiedItem{
			CartItemID:          line.ID,
			PolicyID:            policyID,
			Quantity:            line.Quantity,
			DiscountedUnitPrice: &unit,
		})
		r.claimed[line.ID] = true
	}
}

func (r *resolution) boostPoints(policyID string, action policy.ApplyPointMultiplier) {
	remaining := action.MaxEffectedItems
	if remaining <= 0 {
		remaining = int(^uint(0) >> 1)
	}

	for _, line := range r.matchingLines(action.Items, r.pointClaimed) {
		if remaining <= 0 {
			return
		}
		units := min(remaining, line.Quantity)
		mult := action.Amount
		r.out.ModifiedItems = append(r.out.ModifiedItems, ModifiedItem{
			CartItemID:      line.ID,
			PolicyID:        policyID,
			Quantity:        units,
			PointMultiplier: &mult,
		})
		r.pointClaimed[line.ID] = true
		remaining -= units
	}
}

// applyAddOn activates an add-on once its item is in the cart: one
// unit, repriced by whichever of free/percent/fixed/flat the action
// carries. Display eligibility before the item is added is the
// caller's concern.
func (r *resolution) applyAddOn(policyID string, action policy.ApplyAddOn) {
	for _, line := range r.matchingLines(action.Items, r.claimed) {
		if action.PriceLimit != nil && line.UnitPrice.GreaterThan(*action.PriceLimit) {
			continue
		}

		price := line.UnitPrice
		switch {
		case action.Free:
			price = decimal.Zero
		case action.PercentDiscount != nil:
			price = price.Mul(decimal.NewFromInt(1).Sub(*action.PercentDiscount))
		case action.FixedDiscount != nil:
			price = price.Sub(*action.FixedDiscount)
		case action.Amount != nil:
			price = *action.Amount
		}
		price = clampPrice(price)

		r.out.ModifiedItems = append(r.out.ModifiedItems, ModifiedItem{
			CartItemID:          line.ID,
			PolicyID:            policyID,
			Quantity:            1,
			DiscountedUnitPrice: &price,
		})
		r.claimed[line.ID] = true
		return
	}
}

func clampPrice(p decimal.Decimal) decimal.Decimal {
	if p.IsNegative() {
		return decimal.Zero
	}
	return p.Round(2)
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
