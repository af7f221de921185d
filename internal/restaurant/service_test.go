package restaurant

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"tapin/internal/catalog"
)

type mockRepo struct {
	restaurants map[string]*Restaurant
	gets        int
}

func (m *mockRepo) Get(_ context.Context, id string) (*Restaurant, error) {
	m.gets++
	r, ok := m.restaurants[id]
	if !ok {
		return nil, ErrNotFound
	}
	return r, nil
}

func (m *mockRepo) List(context.Context) ([]*Restaurant, error) {
	var out []*Restaurant
	for _, r := range m.restaurants {
		out = append(out, r)
	}
	return out, nil
}

func testRestaurant() *Restaurant {
	price := decimal.RequireFromString("5.00")
	return &Restaurant{
		ID:   "r1",
		Name: "Test Bar",
		Menu: map[string]catalog.MenuRecord{
			"beer": {Info: catalog.MenuInfo{Name: "Beer", Price: &price}},
		},
		Metadata: Metadata{TimeZone: "America/New_York"},
	}
}

func TestGetBuildsIndexOnce(t *testing.T) {
	repo := &mockRepo{restaurants: map[string]*Restaurant{"r1": testRestaurant()}}
	svc := NewService(repo)

	_, ix1, err := svc.Get(context.Background(), "r1")
	require.NoError(t, err)
	require.NotNil(t, ix1.Node("beer"))

	_, ix2, err := svc.Get(context.Background(), "r1")
	require.NoError(t, err)
	require.Same(t, ix1, ix2)
}

func TestRefreshDropsCachedIndex(t *testing.T) {
	repo := &mockRepo{restaurants: map[string]*Restaurant{"r1": testRestaurant()}}
	svc := NewService(repo)

	_, ix1, err := svc.Get(context.Background(), "r1")
	require.NoError(t, err)

	svc.Refresh("r1")
	_, ix2, err := svc.Get(context.Background(), "r1")
	require.NoError(t, err)
	require.NotSame(t, ix1, ix2)
}

func TestGetUnknownRestaurant(t *testing.T) {
	svc := NewService(&mockRepo{restaurants: map[string]*Restaurant{}})
	_, _, err := svc.Get(context.Background(), "nowhere")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestLocationFallsBackToUTC(t *testing.T) {
	r := testRestaurant()
	require.Equal(t, "America/New_York", r.Location().String())

	r.Metadata.TimeZone = "Mars/Olympus_Mons"
	require.Equal(t, "UTC", r.Location().String())
}
