package pricing

import (
	"github.com/shopspring/decimal"

	"tapin/internal/cart"
	"tapin/internal/deal"
	"tapin/internal/policy"
)

// Options carries the user-side inputs of one pricing run.
type Options struct {
	UserPointBalance int

	// ApplyCredit opts the user into spending stored credit.
	ApplyCredit     bool
	AvailableCredit decimal.Decimal

	// PolicyTags maps policy id to its definition tag, used to price
	// loyalty-reward redemptions in points.
	PolicyTags map[string]string
}

var one = decimal.NewFromInt(1)

// PriceCart folds a cart and its deal effect into final results. Pure
// and idempotent: identical inputs produce identical output, and the
// function holds no state between calls.
func PriceCart(c *cart.Cart, effect *deal.Payload, cfg Config, opts Options) Results {
	if effect == nil {
		effect = &deal.Payload{}
	}

	freeUnits := make(map[int]int)
	lineFreePolicy := make(map[int]string)
	for _, a := range effect.AddedItems {
		freeUnits[a.CartItemID]++
		lineFreePolicy[a.CartItemID] = a.PolicyID
	}

	priceMods := make(map[int]deal.ModifiedItem)
	pointMods := make(map[int]deal.ModifiedItem)
	for _, m := range effect.ModifiedItems {
		if m.DiscountedUnitPrice != nil {
			priceMods[m.CartItemID] = m
		}
		if m.PointMultiplier != nil {
			pointMods[m.CartItemID] = m
		}
	}

	orderPointMult := one
	if w := effect.WholeCartModification; w != nil && w.Kind == deal.KindPointMultiplier {
		orderPointMult = w.Amount
	}

	var (
		subtotal  = decimal.Zero
		itemTotal = decimal.Zero
		points    = decimal.Zero
		pointCost int
	)

	for _, line := range c.Items {
		qty := line.Quantity
		natural := line.UnitPrice

		free := min(freeUnits[line.ID], qty)
		discounted, discPrice := 0, decimal.Zero
		if m, ok := priceMods[line.ID]; ok {
			discounted = min(m.Quantity, qty-free)
			discPrice = *m.DiscountedUnitPrice
		}
		full := qty - free - discounted

		subtotal = subtotal.Add(natural.Mul(decimal.NewFromInt(int64(qty))))
		itemTotal = itemTotal.
			Add(discPrice.Mul(decimal.NewFromInt(int64(discounted)))).
			Add(natural.Mul(decimal.NewFromInt(int64(full))))

		// points accrue on every unit, boosted ones at the multiplier
		base := decimal.NewFromInt(int64(line.PointsEarned))
		boosted := 0
		mult := one
		if m, ok := pointMods[line.ID]; ok {
			boosted = min(m.Quantity, qty)
			mult = *m.PointMultiplier
		}
		linePoints := base.Mul(mult).Mul(decimal.NewFromInt(int64(boosted))).
			Add(base.Mul(decimal.NewFromInt(int64(qty - boosted))))
		points = points.Add(linePoints.Mul(orderPointMult))

		// loyalty-reward redemptions consume points instead of money
		if free > 0 && opts.PolicyTags[lineFreePolicy[line.ID]] == policy.TagLoyaltyReward {
			pointCost += line.PointCost * free
		}
	}

	// order-level discount applies to the post item-level subtotal
	orderDiscount := decimal.Zero
	if w := effect.WholeCartModification; w != nil {
		switch w.Kind {
		case deal.KindFixed:
			orderDiscount = decimal.Min(itemTotal, w.Amount)
		case deal.KindPercent:
			orderDiscount = itemTotal.Mul(w.Amount).Round(2)
		}
	}
	postTotal := itemTotal.Sub(orderDiscount)

	discount := subtotal.Sub(postTotal)
	if discount.IsNegative() {
		discount = decimal.Zero
	}

	tax := postTotal.Mul(cfg.TaxRate).Round(2)
	fee := cfg.ServiceFeeFlat.Add(postTotal.Mul(cfg.ServiceFeePercent)).Round(2)

	creditUsed := decimal.Zero
	if opts.ApplyCredit {
		creditUsed = decimal.Min(opts.AvailableCredit, postTotal)
	}

	creditToAdd := postTotal.Mul(cfg.CreditBackRate).Round(2)
	for _, g := range effect.CreditGrants {
		creditToAdd = creditToAdd.Add(g.Amount)
	}

	return Results{
		Subtotal:           subtotal,
		Discount:           discount,
		Tax:                tax,
		CustomerServiceFee: fee,
		TotalPrice:         postTotal.Sub(creditUsed).Add(tax).Add(fee),
		TotalPoints:        int(points.IntPart()),
		TotalPointCost:     pointCost,
		InsufficientPoints: pointCost > opts.UserPointBalance,
		Credit: Credit{
			CreditUsed:  creditUsed,
			CreditToAdd: creditToAdd,
		},
		Breakdown: Breakdown{
			ItemTotal:     itemTotal,
			OrderDiscount: orderDiscount,
		},
	}
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
