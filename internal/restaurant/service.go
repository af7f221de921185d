package restaurant

import (
	"context"
	"sync"

	"tapin/internal/catalog"
)

// Service serves restaurant records and their catalog indexes. The
// index is built once per fetch and rebuilt wholesale on refresh,
// never patched.
type Service struct {
	repo Repository

	mu      sync.RWMutex
	indexes map[string]*catalog.Index
}

func NewService(repo Repository) *Service {
	return &Service{
		repo:    repo,
		indexes: make(map[string]*catalog.Index),
	}
}

// Get loads a restaurant and its catalog index, building the index on
// first access.
func (s *Service) Get(ctx context.Context, restaurantID string) (*Restaurant, *catalog.Index, error) {
	res, err := s.repo.Get(ctx, restaurantID)
	if err != nil {
		return nil, nil, err
	}

	s.mu.RLock()
	ix, ok := s.indexes[restaurantID]
	s.mu.RUnlock()
	if ok {
		return res, ix, nil
	}

	ix = catalog.Build(res.Menu)
	s.mu.Lock()
	s.indexes[restaurantID] = ix
	s.mu.Unlock()
	return res, ix, nil
}

// Refresh drops the cached index so the next Get rebuilds it.
func (s *Service) Refresh(restaurantID string) {
	s.mu.Lock()
	delete(s.indexes, restaurantID)
	s.mu.Unlock()
}

// List returns every restaurant.
func (s *Service) List(ctx context.Context) ([]*Restaurant, error) {
	return s.repo.List(ctx)
}
