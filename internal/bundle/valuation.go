package bundle

import (
	"sort"

	"github.com/shopspring/decimal"

	"tapin/internal/catalog"
	"tapin/internal/policy"
)

// --------------------------------------------------
// VALUATION (ADVISORY, DISPLAY-ONLY)
// --------------------------------------------------

// EstimateValue scores what a bundle is worth to a customer over its
// duration: per child policy, an estimated per-use value times an
// estimated use count, plus the fixed credit. Never feeds back into
// deal resolution.
func EstimateValue(b Bundle, ix *catalog.Index, children []policy.Policy) decimal.Decimal {
	total := b.FixedCredit
	for _, child := range children {
		value := estimatedPolicyValue(child, ix)
		uses := estimatedUses(child, b.Duration)
		total = total.Add(value.Mul(decimal.NewFromInt(int64(uses))))
	}
	return total.Round(2)
}

func estimatedUses(p policy.Policy, durationDays int) int {
	if p.TotalUsages != nil {
		return *p.TotalUsages
	}
	if p.DaysSinceLastUse != nil && *p.DaysSinceLastUse > 0 {
		return durationDays / *p.DaysSinceLastUse
	}
	return 1
}

func estimatedPolicyValue(p policy.Policy, ix *catalog.Index) decimal.Decimal {
	switch action := p.Definition.Action.(type) {
	case policy.AddFreeItem:
		return highestPrice(ix, action.Items).
			Mul(decimal.NewFromInt(int64(action.Quantity)))
	case policy.ApplyPercentDiscount:
		// monetized against the priciest matching item
		return highestPrice(ix, action.Items).
			Mul(action.Amount).
			Mul(decimal.NewFromInt(int64(max(action.MaxEffectedItems, 1))))
	case policy.ApplyFixedDiscount:
		return action.Amount.Mul(decimal.NewFromInt(int64(max(action.MaxEffectedItems, 1))))
	case policy.ApplyFixedOrderDiscount:
		return action.Amount
	case policy.AddToUserCredit:
		return action.Amount
	case policy.ApplyAddOn:
		if action.Free {
			return highestPrice(ix, action.Items)
		}
	}
	// multipliers and blanket pricing are not independently
	// monetizable for display
	return decimal.Zero
}

func highestPrice(ix *catalog.Index, specs []string) decimal.Decimal {
	best := decimal.Zero
	for _, id := range ix.ResolveItemSpecs(specs) {
		node := ix.Node(id)
		if node == nil || node.Price == nil {
			continue
		}
		if node.Price.GreaterThan(best) {
			best = *node.Price
		}
	}
	return best
}

// --------------------------------------------------
// RANKING
// --------------------------------------------------

// Recommendation pairs a bundle with its estimated value for display.
type Recommendation struct {
	Bundle         Bundle          `json:"bundle"`
	EstimatedValue decimal.Decimal `json:"estimated_value"`
}

// Rank orders bundles by estimated value over price, best first.
// Ties keep input order.
func Rank(bundles []Bundle, ix *catalog.Index, childrenOf func(Bundle) []policy.Policy) []Recommendation {
	recs := make([]Recommendation, 0, len(bundles))
	for _, b := range bundles {
		recs = append(recs, Recommendation{
			Bundle:         b,
			EstimatedValue: EstimateValue(b, ix, childrenOf(b)),
		})
	}
	sort.SliceStable(recs, func(a, b int) bool {
		netA := recs[a].EstimatedValue.Sub(recs[a].Bundle.Price)
		netB := recs[b].EstimatedValue.Sub(recs[b].Bundle.Price)
		return netA.GreaterThan(netB)
	})
	return recs
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
