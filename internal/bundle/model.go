package bundle

import (
	"time"

	"github.com/shopspring/decimal"
)

// --------------------------------------------------
// BUNDLE
// --------------------------------------------------

// Bundle is a purchasable pass: fixed credit up front plus a set of
// child policies unlocked for Duration days.
type Bundle struct {
	BundleID        string           `json:"bundle_id"`
	RestaurantID    string           `json:"restaurant_id"`
	Name            string           `json:"name"`
	Price           decimal.Decimal  `json:"price"`
	Duration        int              `json:"duration"` // days
	FixedCredit     decimal.Decimal  `json:"fixed_credit"`
	PointMultiplier *decimal.Decimal `json:"point_multiplier,omitempty"`
	DeactivatedAt   *time.Time       `json:"deactivated_at,omitempty"`
	PolicyIDs       []string         `json:"policy_ids"`
}

// Available reports whether the bundle can still be purchased.
func (b *Bundle) Available(now time.Time) bool {
	return b.DeactivatedAt == nil || now.Before(*b.DeactivatedAt)
}

// --------------------------------------------------
// OWNERSHIP
// --------------------------------------------------

// Ownership is the fact that a user bought a bundle.
type Ownership struct {
	UserID      string    `json:"user_id"`
	BundleID    string    `json:"bundle_id"`
	PurchasedAt time.Time `json:"purchased_at"`
}

// ValidAt reports whether the ownership is still live for a bundle
// of the given duration.
func (o Ownership) ValidAt(now time.Time, durationDays int) bool {
	return now.Before(o.PurchasedAt.Add(time.Duration(durationDays) * 24 * time.Hour))
}

// UnlockedPolicies folds ownership facts into the set of policy ids
// the user's live bundles unlock.
func UnlockedPolicies(bundles []Bundle, owned []Ownership, now time.Time) map[string]struct{} {
	byID := make(map[string]*Bundle, len(bundles))
	for i := range bundles {
		byID[bundles[i].BundleID] = &bundles[i]
	}

	unlocked := make(map[string]struct{})
	for _, o := range owned {
		b := byID[o.BundleID]
		if b == nil || !o.ValidAt(now, b.Duration) {
			continue
		}
		for _, pid := range b.PolicyIDs {
			unlocked[pid] = struct{}{}
		}
	}
	return unlocked
}
