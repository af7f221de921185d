package cart

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"tapin/internal/catalog"
)

func TestStoreRoundTrip(t *testing.T) {
	s := NewStore()
	ix := testIndex()

	c := New("r1")
	_, err := c.AddItem(ix, catalog.Item{ID: "beer", Modifiers: []string{"double"}}, 2)
	require.NoError(t, err)
	c.SelectPolicy("happy-hour")

	require.NoError(t, s.Put("u1", "r1", c))

	got, ok := s.Get("u1", "r1")
	require.True(t, ok)
	require.Equal(t, c.Version, got.Version)
	require.Equal(t, c.NextID, got.NextID)
	require.Equal(t, []string{"happy-hour"}, got.SelectedPolicies)
	require.Len(t, got.Items, 1)
	require.True(t, got.Items[0].Item.Equal(c.Items[0].Item))
	require.True(t, got.Items[0].UnitPrice.Equal(c.Items[0].UnitPrice))
}

func TestStoreScopedPerUserAndRestaurant(t *testing.T) {
	s := NewStore()

	require.NoError(t, s.Put("u1", "r1", New("r1")))

	_, ok := s.Get("u2", "r1")
	require.False(t, ok)
	_, ok = s.Get("u1", "r2")
	require.False(t, ok)
	_, ok = s.Get("u1", "r1")
	require.True(t, ok)
}

func TestStoreExpiry(t *testing.T) {
	s := NewStore()
	now := time.Now()
	s.nowFunc = func() time.Time { return now }

	require.NoError(t, s.Put("u1", "r1", New("r1")))

	now = now.Add(StoreTTL - time.Second)
	_, ok := s.Get("u1", "r1")
	require.True(t, ok)

	now = now.Add(2 * time.Second)
	_, ok = s.Get("u1", "r1")
	require.False(t, ok)
}

func TestStoreDelete(t *testing.T) {
	s := NewStore()
	require.NoError(t, s.Put("u1", "r1", New("r1")))
	s.Delete("u1", "r1")
	_, ok := s.Get("u1", "r1")
	require.False(t, ok)
}
