package catalog

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func price(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func testMenu() map[string]MenuRecord {
	day1 := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)
	day2 := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)

	return map[string]MenuRecord{
		"menu":   {Info: MenuInfo{Name: "Menu"}, Children: []string{"drinks", "food", "passes"}},
		"drinks": {Info: MenuInfo{Name: "Drinks"}, Children: []string{"beer", "wine"}},
		"beer":   {Info: MenuInfo{Name: "House Lager", Price: price("5.00"), BasePoints: 5}},
		"wine":   {Info: MenuInfo{Name: "House Red", Price: price("8.00"), BasePoints: 8}},
		"food":   {Info: MenuInfo{Name: "Food"}, Children: []string{"burger", "fries"}},
		"burger": {Info: MenuInfo{Name: "Smash Burger", Price: price("12.00"), BasePoints: 12}},
		"fries":  {Info: MenuInfo{Name: "Fries", Price: price("4.00"), BasePoints: 4}},
		"passes": {Info: MenuInfo{Name: "Passes"}, Children: []string{"pass-sat", "pass-fri"}},
		"pass-fri": {Info: MenuInfo{
			Name: "Friday Pass", Price: price("20.00"), ForDate: &day1, PointCost: 200,
		}},
		"pass-sat": {Info: MenuInfo{
			Name: "Saturday Pass", Price: price("25.00"), ForDate: &day2, PointCost: 250,
		}},
	}
}

func TestBuildAssignsPathTags(t *testing.T) {
	ix := Build(testMenu())

	beer := ix.Node("beer")
	require.NotNil(t, beer)
	require.True(t, beer.Under("drinks"))
	require.True(t, beer.Under("menu"))
	require.True(t, beer.Under("beer"))
	require.False(t, beer.Under("food"))
}

func TestNodeUnknownID(t *testing.T) {
	ix := Build(testMenu())
	require.Nil(t, ix.Node("nachos"))
}

func TestItemsUnder(t *testing.T) {
	ix := Build(testMenu())

	require.ElementsMatch(t, []string{"beer", "wine"}, ix.ItemsUnder("drinks"))
	require.ElementsMatch(t,
		[]string{"beer", "wine", "burger", "fries", "pass-fri", "pass-sat"},
		ix.ItemsUnder("menu"))

	// a priced node resolves to itself
	require.Equal(t, []string{"beer"}, ix.ItemsUnder("beer"))
	require.Nil(t, ix.ItemsUnder("nachos"))
}

func TestResolveItemSpecsDedupesAndOrdersDated(t *testing.T) {
	ix := Build(testMenu())

	got := ix.ResolveItemSpecs([]string{"drinks", "beer", "passes"})

	// "beer" appears once despite matching two specs, and dated passes
	// come last, earliest date first
	require.Equal(t, []string{"beer", "wine", "pass-fri", "pass-sat"}, got)
}

func TestMatches(t *testing.T) {
	ix := Build(testMenu())

	require.True(t, ix.Matches("beer", []string{"drinks"}))
	require.True(t, ix.Matches("beer", []string{"beer"}))
	require.False(t, ix.Matches("beer", []string{"food"}))
	require.False(t, ix.Matches("nachos", []string{"menu"}))
}

func TestPriceWithModifiers(t *testing.T) {
	ix := Build(testMenu())

	p, err := ix.Price(Item{ID: "beer"})
	require.NoError(t, err)
	require.True(t, p.Equal(decimal.RequireFromString("5.00")))

	p, err = ix.Price(Item{ID: "beer", Modifiers: []string{"double"}})
	require.NoError(t, err)
	require.True(t, p.Equal(decimal.RequireFromString("10.00")))

	// unknown modifiers are free text
	p, err = ix.Price(Item{ID: "beer", Modifiers: []string{"extra cold"}})
	require.NoError(t, err)
	require.True(t, p.Equal(decimal.RequireFromString("5.00")))

	_, err = ix.Price(Item{ID: "drinks"})
	require.ErrorIs(t, err, ErrItemNotPriceable)

	_, err = ix.Price(Item{ID: "nachos"})
	require.ErrorIs(t, err, ErrItemNotPriceable)
}

func TestDisplayName(t *testing.T) {
	ix := Build(testMenu())

	name, err := ix.DisplayName(Item{ID: "burger"})
	require.NoError(t, err)
	require.Equal(t, "Smash Burger", name)

	name, err = ix.DisplayName(Item{ID: "beer", Modifiers: []string{"double", "extra cold"}})
	require.NoError(t, err)
	require.Equal(t, "House Lager (Double, Extra Cold)", name)
}

func TestItemEqual(t *testing.T) {
	a := Item{ID: "beer", Modifiers: []string{"double"}}
	require.True(t, a.Equal(Item{ID: "beer", Modifiers: []string{"double"}}))
	require.False(t, a.Equal(Item{ID: "beer"}))
	require.False(t, a.Equal(Item{ID: "wine", Modifiers: []string{"double"}}))
	// modifier order is significant
	b := Item{ID: "beer", Modifiers: []string{"double", "cold"}}
	require.False(t, b.Equal(Item{ID: "beer", Modifiers: []string{"cold", "double"}}))
}
