package policy

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"tapin/internal/cart"
	"tapin/internal/catalog"
)

func testIndex() *catalog.Index {
	p := func(s string) *decimal.Decimal {
		d := decimal.RequireFromString(s)
		return &d
	}
	return catalog.Build(map[string]catalog.MenuRecord{
		"menu":   {Info: catalog.MenuInfo{Name: "Menu"}, Children: []string{"drinks", "food"}},
		"drinks": {Info: catalog.MenuInfo{Name: "Drinks"}, Children: []string{"beer", "wine"}},
		"beer":   {Info: catalog.MenuInfo{Name: "Beer", Price: p("5.00")}},
		"wine":   {Info: catalog.MenuInfo{Name: "Wine", Price: p("8.00")}},
		"food":   {Info: catalog.MenuInfo{Name: "Food"}, Children: []string{"burger"}},
		"burger": {Info: catalog.MenuInfo{Name: "Burger", Price: p("12.00")}},
	})
}

func cartWith(lines ...*cart.CartItem) *cart.Cart {
	c := cart.New("r1")
	c.Items = lines
	return c
}

func line(id int, itemID string, qty int, unitPrice string) *cart.CartItem {
	return &cart.CartItem{
		ID:        id,
		Item:      catalog.Item{ID: itemID},
		Quantity:  qty,
		UnitPrice: decimal.RequireFromString(unitPrice),
	}
}

func intPtr(v int) *int              { return &v }
func timePtr(t time.Time) *time.Time { return &t }

// --------------------------------------------------
// IsEligible
// --------------------------------------------------

func TestIsEligibleWindows(t *testing.T) {
	now := time.Date(2026, 6, 1, 18, 0, 0, 0, time.UTC)
	p := Policy{PolicyID: "p1", Active: true}

	require.True(t, IsEligible(p, now, Facts{}))

	p.Active = false
	require.False(t, IsEligible(p, now, Facts{}))

	p.Active = true
	p.BeginTime = timePtr(now.Add(time.Hour))
	require.False(t, IsEligible(p, now, Facts{}))

	p.BeginTime = timePtr(now.Add(-time.Hour))
	p.EndTime = timePtr(now.Add(-time.Minute))
	require.False(t, IsEligible(p, now, Facts{}))

	p.EndTime = timePtr(now.Add(time.Hour))
	require.True(t, IsEligible(p, now, Facts{}))
}

func TestIsEligibleLocked(t *testing.T) {
	now := time.Now()
	p := Policy{PolicyID: "p1", Active: true, Locked: true}

	require.False(t, IsEligible(p, now, Facts{}))
	require.True(t, IsEligible(p, now, Facts{
		Unlocked: map[string]struct{}{"p1": {}},
	}))
}

func TestIsEligibleUsageLimits(t *testing.T) {
	now := time.Date(2026, 6, 10, 12, 0, 0, 0, time.UTC)
	p := Policy{PolicyID: "p1", Active: true, TotalUsages: intPtr(3)}

	facts := Facts{Usage: map[string]Usage{"p1": {Count: 2}}}
	require.True(t, IsEligible(p, now, facts))

	facts.Usage["p1"] = Usage{Count: 3}
	require.False(t, IsEligible(p, now, facts))
}

func TestIsEligibleCooldown(t *testing.T) {
	now := time.Date(2026, 6, 10, 12, 0, 0, 0, time.UTC)
	p := Policy{PolicyID: "p1", Active: true, DaysSinceLastUse: intPtr(7)}

	lastUsed := now.Add(-3 * 24 * time.Hour)
	facts := Facts{Usage: map[string]Usage{"p1": {Count: 1, LastUsed: &lastUsed}}}
	require.False(t, IsEligible(p, now, facts))

	lastUsed = now.Add(-8 * 24 * time.Hour)
	facts.Usage["p1"] = Usage{Count: 1, LastUsed: &lastUsed}
	require.True(t, IsEligible(p, now, facts))

	// never used: cooldown does not apply
	require.True(t, IsEligible(p, now, Facts{}))
}

// --------------------------------------------------
// ConditionsSatisfied
// --------------------------------------------------

func TestConditionsCartTotalAndQuantity(t *testing.T) {
	ix := testIndex()
	c := cartWith(
		line(1, "beer", 2, "5.00"),
		line(2, "burger", 1, "12.00"),
	)
	env := Env{Catalog: ix, Now: time.Now()}

	p := Policy{Definition: Definition{
		Tag: TagDeal,
		Conditions: []Condition{
			MinimumCartTotal{Amount: decimal.RequireFromString("22.00")},
			MinimumQuantity{Items: []string{"drinks"}, Quantity: 2},
		},
	}}
	require.True(t, ConditionsSatisfied(p, c, env))

	p.Definition.Conditions = []Condition{
		MinimumCartTotal{Amount: decimal.RequireFromString("22.01")},
	}
	require.False(t, ConditionsSatisfied(p, c, env))

	p.Definition.Conditions = []Condition{
		ExactQuantity{Items: []string{"drinks"}, Quantity: 2},
	}
	require.True(t, ConditionsSatisfied(p, c, env))

	p.Definition.Conditions = []Condition{
		ExactQuantity{Items: []string{"drinks"}, Quantity: 3},
	}
	require.False(t, ConditionsSatisfied(p, c, env))
}

func TestConditionsUserPoints(t *testing.T) {
	c := cartWith(line(1, "beer", 1, "5.00"))
	p := Policy{Definition: Definition{
		Conditions: []Condition{MinimumUserPoints{Amount: 100}},
	}}

	require.False(t, ConditionsSatisfied(p, c, Env{Catalog: testIndex(), UserPoints: 99}))
	require.True(t, ConditionsSatisfied(p, c, Env{Catalog: testIndex(), UserPoints: 100}))
}

func TestTimeRangeLocalZone(t *testing.T) {
	// 23:30 UTC on a Thursday is 18:30 Thursday in New York
	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)
	now := time.Date(2026, 6, 4, 23, 30, 0, 0, time.UTC)

	cond := TimeRange{BeginTime: "16:00", EndTime: "19:00", AllowedDays: []string{"thursday"}}

	require.True(t, timeRangeHolds(cond, Env{Location: ny, Now: now}))
	require.False(t, timeRangeHolds(cond, Env{Location: time.UTC, Now: now}))
}

func TestTimeRangeMidnightWrap(t *testing.T) {
	cond := TimeRange{BeginTime: "22:00", EndTime: "02:00"}

	at := func(hour int) Env {
		return Env{Now: time.Date(2026, 6, 4, hour, 30, 0, 0, time.UTC), Location: time.UTC}
	}
	require.True(t, timeRangeHolds(cond, at(23)))
	require.True(t, timeRangeHolds(cond, at(1)))
	require.False(t, timeRangeHolds(cond, at(12)))
}

func TestTimeRangeMalformed(t *testing.T) {
	cond := TimeRange{BeginTime: "sixish", EndTime: "19:00"}
	require.False(t, timeRangeHolds(cond, Env{Now: time.Now(), Location: time.UTC}))
}

// --------------------------------------------------
// Missing items
// --------------------------------------------------

func TestMissingItemsForQuantityConditions(t *testing.T) {
	ix := testIndex()
	c := cartWith(line(1, "beer", 1, "5.00"))
	env := Env{Catalog: ix, Now: time.Now()}

	p := Policy{Definition: Definition{
		Conditions: []Condition{
			MinimumQuantity{Items: []string{"drinks"}, Quantity: 3},
			MinimumCartTotal{Amount: decimal.RequireFromString("100.00")}, // not a quantity condition
			ExactQuantity{Items: []string{"food"}, Quantity: 1},
		},
	}}

	got := MissingItemsForQuantityConditions(p, c, env)
	require.Equal(t, []Shortfall{
		{Items: []string{"drinks"}, QuantityNeeded: 2},
		{Items: []string{"food"}, QuantityNeeded: 1},
	}, got)

	// satisfied conditions emit nothing
	c.Items = append(c.Items, line(2, "wine", 2, "8.00"), line(3, "burger", 1, "12.00"))
	require.Empty(t, MissingItemsForQuantityConditions(p, c, env))
}
