package policy

import (
	"strings"
	"time"

	"tapin/internal/cart"
	"tapin/internal/catalog"
)

// --------------------------------------------------
// ELIGIBILITY
// --------------------------------------------------

// Usage is a user's history with one policy.
type Usage struct {
	Count    int
	LastUsed *time.Time
}

// Facts is everything outside the cart that eligibility depends on:
// which locked policies the user's bundles unlock, and per-policy
// usage history.
type Facts struct {
	Unlocked map[string]struct{}
	Usage    map[string]Usage
}

// IsEligible reports whether a policy may be offered at all right
// now: active, inside its validity window, unlocked, and within its
// usage limits. Cart conditions are a separate, later check.
func IsEligible(p Policy, now time.Time, facts Facts) bool {
	if !p.Active {
		return false
	}
	if p.BeginTime != nil && now.Before(*p.BeginTime) {
		return false
	}
	if p.EndTime != nil && now.After(*p.EndTime) {
		return false
	}
	if p.Locked {
		if _, ok := facts.Unlocked[p.PolicyID]; !ok {
			return false
		}
	}

	usage := facts.Usage[p.PolicyID]
	if p.TotalUsages != nil && usage.Count >= *p.TotalUsages {
		return false
	}
	if p.DaysSinceLastUse != nil && usage.LastUsed != nil {
		cooldown := time.Duration(*p.DaysSinceLastUse) * 24 * time.Hour
		if now.Sub(*usage.LastUsed) < cooldown {
			return false
		}
	}
	return true
}

// Env carries the cart-independent context condition checks run in.
type Env struct {
	Catalog    *catalog.Index
	UserPoints int
	Location   *time.Location
	Now        time.Time
}

// ConditionsSatisfied reports whether every condition of the policy
// holds against the cart. Conditions are AND-ed; an empty list holds
// trivially.
func ConditionsSatisfied(p Policy, c *cart.Cart, env Env) bool {
	for _, cond := range p.Definition.Conditions {
		if !conditionHolds(cond, c, env) {
			return false
		}
	}
	return true
}

func conditionHolds(cond Condition, c *cart.Cart, env Env) bool {
	switch cond := cond.(type) {
	case MinimumCartTotal:
		// compared against the pre-discount subtotal
		return c.Subtotal().GreaterThanOrEqual(cond.Amount)
	case MinimumQuantity:
		return c.QuantityMatching(env.Catalog, cond.Items) >= cond.Quantity
	case ExactQuantity:
		return c.QuantityMatching(env.Catalog, cond.Items) == cond.Quantity
	case MinimumUserPoints:
		return env.UserPoints >= cond.Amount
	case TimeRange:
		return timeRangeHolds(cond, env)
	}
	return false
}

func timeRangeHolds(cond TimeRange, env Env) bool {
	loc := env.Location
	if loc == nil {
		loc = time.UTC
	}
	local := env.Now.In(loc)

	if len(cond.AllowedDays) > 0 {
		day := strings.ToLower(local.Weekday().String())
		allowed := false
		for _, d := range cond.AllowedDays {
			if strings.ToLower(d) == day {
				allowed = true
				break
			}
		}
		if !allowed {
			return false
		}
	}

	begin, okB := minutesOfDay(cond.BeginTime)
	end, okE := minutesOfDay(cond.EndTime)
	if !okB || !okE {
		return false
	}

	now := local.Hour()*60 + local.Minute()
	if begin <= end {
		return now >= begin && now < end
	}
	// window wraps past midnight
	return now >= begin || now < end
}

func minutesOfDay(hhmm string) (int, bool) {
	t, err := time.Parse("15:04", hhmm)
	if err != nil {
		return 0, false
	}
	return t.Hour()*60 + t.Minute(), true
}

// --------------------------------------------------
// MISSING ITEMS (UI GUIDANCE)
// --------------------------------------------------

// Shortfall describes how many more matching items a quantity
// condition still needs.
type Shortfall struct {
	Items          []string `json:"items"`
	QuantityNeeded int      `json:"quantity_needed"`
}

// MissingItemsForQuantityConditions emits the shortfall of every
// unsatisfied quantity condition. Purely advisory; never affects
// resolution.
func MissingItemsForQuantityConditions(p Policy, c *cart.Cart, env Env) []Shortfall {
	var out []Shortfall
	for _, cond := range p.Definition.Conditions {
		var items []string
		var required int
		switch cond := cond.(type) {
		case MinimumQuantity:
			items, required = cond.Items, cond.Quantity
		case ExactQuantity:
			items, required = cond.Items, cond.Quantity
		default:
			continue
		}

		have := c.QuantityMatching(env.Catalog, items)
		if have >= required {
			continue
		}
		out = append(out, Shortfall{Items: items, QuantityNeeded: required - have})
	}
	return out
}
