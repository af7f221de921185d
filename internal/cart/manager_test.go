package cart

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"tapin/internal/catalog"
)

func testIndex() *catalog.Index {
	p := func(s string) *decimal.Decimal {
		d := decimal.RequireFromString(s)
		return &d
	}
	return catalog.Build(map[string]catalog.MenuRecord{
		"drinks": {Info: catalog.MenuInfo{Name: "Drinks"}, Children: []string{"beer"}},
		"beer":   {Info: catalog.MenuInfo{Name: "Beer", Price: p("5.00"), BasePoints: 5, PointCost: 50}},
		"burger": {Info: catalog.MenuInfo{Name: "Burger", Price: p("12.00"), BasePoints: 12}},
	})
}

func TestAddItemPricesFromCatalog(t *testing.T) {
	ix := testIndex()
	c := New("r1")

	l, err := c.AddItem(ix, catalog.Item{ID: "beer"}, 2)
	require.NoError(t, err)
	require.Equal(t, 1, l.ID)
	require.Equal(t, 2, l.Quantity)
	require.True(t, l.UnitPrice.Equal(decimal.RequireFromString("5.00")))
	require.Equal(t, 5, l.PointsEarned)
	require.Equal(t, 50, l.PointCost)
	require.Equal(t, 1, c.Version)
}

func TestAddItemDedupesEqualReferences(t *testing.T) {
	ix := testIndex()
	c := New("r1")

	_, err := c.AddItem(ix, catalog.Item{ID: "beer"}, 1)
	require.NoError(t, err)
	_, err = c.AddItem(ix, catalog.Item{ID: "beer"}, 2)
	require.NoError(t, err)

	require.Len(t, c.Items, 1)
	require.Equal(t, 3, c.Items[0].Quantity)

	// a different modifier set is a distinct line with a doubled price
	l, err := c.AddItem(ix, catalog.Item{ID: "beer", Modifiers: []string{"double"}}, 1)
	require.NoError(t, err)
	require.Len(t, c.Items, 2)
	require.Equal(t, 2, l.ID)
	require.True(t, l.UnitPrice.Equal(decimal.RequireFromString("10.00")))
}

func TestAddItemRejections(t *testing.T) {
	ix := testIndex()
	c := New("r1")

	_, err := c.AddItem(ix, catalog.Item{ID: "beer"}, 0)
	require.ErrorIs(t, err, ErrBadQuantity)

	_, err = c.AddItem(ix, catalog.Item{ID: "drinks"}, 1)
	require.ErrorIs(t, err, catalog.ErrItemNotPriceable)

	_, err = c.AddItem(ix, catalog.Item{ID: "nachos"}, 1)
	require.ErrorIs(t, err, catalog.ErrItemNotPriceable)
}

func TestUpdateQuantityAndRemove(t *testing.T) {
	ix := testIndex()
	c := New("r1")
	l, err := c.AddItem(ix, catalog.Item{ID: "beer"}, 3)
	require.NoError(t, err)

	require.NoError(t, c.UpdateQuantity(l.ID, 5))
	require.Equal(t, 5, c.Line(l.ID).Quantity)

	require.NoError(t, c.RemoveItem(l.ID))
	require.Equal(t, 4, c.Line(l.ID).Quantity)

	require.NoError(t, c.UpdateQuantity(l.ID, 0))
	require.True(t, c.Empty())

	require.ErrorIs(t, c.UpdateQuantity(l.ID, 1), ErrLineNotFound)
	require.ErrorIs(t, c.UpdateQuantity(99, -1), ErrBadQuantity)
}

func TestLineIDsNeverReused(t *testing.T) {
	ix := testIndex()
	c := New("r1")

	l1, err := c.AddItem(ix, catalog.Item{ID: "beer"}, 1)
	require.NoError(t, err)
	require.NoError(t, c.UpdateQuantity(l1.ID, 0))

	l2, err := c.AddItem(ix, catalog.Item{ID: "beer"}, 1)
	require.NoError(t, err)
	require.Greater(t, l2.ID, l1.ID)
}

func TestVersionBumpsOnEveryMutation(t *testing.T) {
	ix := testIndex()
	c := New("r1")

	_, err := c.AddItem(ix, catalog.Item{ID: "beer"}, 1)
	require.NoError(t, err)
	v := c.Version

	c.SelectPolicy("p1")
	require.Equal(t, v+1, c.Version)

	// re-selecting is a no-op
	c.SelectPolicy("p1")
	require.Equal(t, v+1, c.Version)

	c.SelectPolicy("p2")
	c.DeselectPolicy("p1")
	require.Equal(t, []string{"p2"}, c.SelectedPolicies)

	c.Clear()
	require.True(t, c.Empty())
	require.Nil(t, c.SelectedPolicies)
}

func TestSubtotalAndQuantityMatching(t *testing.T) {
	ix := testIndex()
	c := New("r1")
	_, err := c.AddItem(ix, catalog.Item{ID: "beer"}, 2)
	require.NoError(t, err)
	_, err = c.AddItem(ix, catalog.Item{ID: "burger"}, 1)
	require.NoError(t, err)

	require.True(t, c.Subtotal().Equal(decimal.RequireFromString("22.00")))
	require.Equal(t, 2, c.QuantityMatching(ix, []string{"drinks"}))
	require.Equal(t, 3, c.QuantityMatching(ix, []string{"drinks", "burger"}))
	require.Equal(t, 0, c.QuantityMatching(ix, []string{"desserts"}))
}
