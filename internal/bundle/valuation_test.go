package bundle

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"tapin/internal/catalog"
	"tapin/internal/policy"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func intPtr(v int) *int { return &v }

func testIndex() *catalog.Index {
	return catalog.Build(map[string]catalog.MenuRecord{
		"drinks": {Info: catalog.MenuInfo{Name: "Drinks"}, Children: []string{"beer", "wine"}},
		"beer":   {Info: catalog.MenuInfo{Name: "Beer", Price: decPtr("5.00")}},
		"wine":   {Info: catalog.MenuInfo{Name: "Wine", Price: decPtr("8.00")}},
	})
}

func dealPolicy(id string, action policy.Action, totalUsages, cooldownDays *int) policy.Policy {
	return policy.Policy{
		PolicyID:         id,
		Active:           true,
		TotalUsages:      totalUsages,
		DaysSinceLastUse: cooldownDays,
		Definition:       policy.Definition{Tag: policy.TagDeal, Action: action},
	}
}

func TestEstimateValue(t *testing.T) {
	ix := testIndex()
	b := Bundle{Duration: 30, FixedCredit: dec("10.00")}

	children := []policy.Policy{
		// priciest matching drink (8.00) × qty 1, capped at 2 total uses
		dealPolicy("free-drink", policy.AddFreeItem{Items: []string{"drinks"}, Quantity: 1}, intPtr(2), nil),
		// 50% of 8.00 once a week over 30 days: 4 uses
		dealPolicy("half-off", policy.ApplyPercentDiscount{
			Items: []string{"drinks"}, Amount: dec("0.5"), MaxEffectedItems: 1,
		}, nil, intPtr(7)),
	}

	got := EstimateValue(b, ix, children)
	// 10.00 + 8.00×2 + 4.00×4 = 42.00
	require.True(t, got.Equal(dec("42.00")), "got %s", got)
}

func TestEstimateValueUnboundedDefaultsToOneUse(t *testing.T) {
	ix := testIndex()
	b := Bundle{Duration: 30}

	children := []policy.Policy{
		dealPolicy("credit", policy.AddToUserCredit{Amount: dec("5.00")}, nil, nil),
	}
	require.True(t, EstimateValue(b, ix, children).Equal(dec("5.00")))
}

func TestEstimateValueNonMonetizableActions(t *testing.T) {
	ix := testIndex()
	b := Bundle{Duration: 30}

	children := []policy.Policy{
		dealPolicy("points", policy.ApplyOrderPointMultiplier{Amount: dec("2")}, nil, nil),
		dealPolicy("blanket", policy.ApplyBlanketPrice{Items: []string{"drinks"}, Amount: dec("9.00")}, nil, nil),
	}
	require.True(t, EstimateValue(b, ix, children).IsZero())
}

func TestRankOrdersByNetValue(t *testing.T) {
	ix := testIndex()

	cheap := Bundle{BundleID: "cheap", Price: dec("5.00"), Duration: 30, FixedCredit: dec("10.00")}
	dear := Bundle{BundleID: "dear", Price: dec("50.00"), Duration: 30, FixedCredit: dec("20.00")}

	recs := Rank([]Bundle{dear, cheap}, ix, func(Bundle) []policy.Policy { return nil })

	require.Len(t, recs, 2)
	// net +5.00 beats net -30.00
	require.Equal(t, "cheap", recs[0].Bundle.BundleID)
	require.Equal(t, "dear", recs[1].Bundle.BundleID)
	require.True(t, recs[0].EstimatedValue.Equal(dec("10.00")))
}

func TestBundleAvailability(t *testing.T) {
	now := time.Date(2026, 7, 1, 12, 0, 0, 0, time.UTC)

	b := Bundle{BundleID: "b1"}
	require.True(t, b.Available(now))

	past := now.Add(-time.Hour)
	b.DeactivatedAt = &past
	require.False(t, b.Available(now))

	future := now.Add(time.Hour)
	b.DeactivatedAt = &future
	require.True(t, b.Available(now))
}

func TestUnlockedPolicies(t *testing.T) {
	now := time.Date(2026, 7, 1, 12, 0, 0, 0, time.UTC)
	bundles := []Bundle{
		{BundleID: "month", Duration: 30, PolicyIDs: []string{"p1", "p2"}},
		{BundleID: "day", Duration: 1, PolicyIDs: []string{"p3"}},
	}
	owned := []Ownership{
		{UserID: "u1", BundleID: "month", PurchasedAt: now.Add(-29 * 24 * time.Hour)},
		{UserID: "u1", BundleID: "day", PurchasedAt: now.Add(-2 * 24 * time.Hour)}, // expired
		{UserID: "u1", BundleID: "gone", PurchasedAt: now},                         // unknown bundle
	}

	unlocked := UnlockedPolicies(bundles, owned, now)
	require.Equal(t, map[string]struct{}{"p1": {}, "p2": {}}, unlocked)
}
