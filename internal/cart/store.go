package cart

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"
)

// Carts are short-lived: a stale cart must not survive a menu or
// policy refresh cycle.
const StoreTTL = 6 * time.Minute

// --------------------------------------------------
// STORE
// --------------------------------------------------

// Store keeps each user's per-restaurant cart as a JSON envelope
// {value, timestamp} under "state:<restaurantID>_cart", expiring
// entries after StoreTTL. Values round-trip exactly through JSON.
type Store struct {
	mu      sync.Mutex
	data    map[string][]byte
	expiry  map[string]time.Time
	nowFunc func() time.Time
}

type envelope struct {
	Value     *Cart     `json:"value"`
	Timestamp time.Time `json:"timestamp"`
}

func NewStore() *Store {
	return &Store{
		data:    make(map[string][]byte),
		expiry:  make(map[string]time.Time),
		nowFunc: time.Now,
	}
}

func storeKey(userID, restaurantID string) string {
	return fmt.Sprintf("%s/state:%s_cart", userID, restaurantID)
}

// Get loads a user's cart for a restaurant. Expired or missing
// entries return (nil, false).
func (s *Store) Get(userID, restaurantID string) (*Cart, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := storeKey(userID, restaurantID)
	raw, ok := s.data[key]
	if !ok {
		return nil, false
	}
	if exp, has := s.expiry[key]; has && s.nowFunc().After(exp) {
		delete(s.data, key)
		delete(s.expiry, key)
		return nil, false
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil || env.Value == nil {
		return nil, false
	}
	return env.Value, true
}

// Put stores a cart, resetting its TTL.
func (s *Store) Put(userID, restaurantID string, c *Cart) error {
	raw, err := json.Marshal(envelope{Value: c, Timestamp: s.nowFunc()})
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	key := storeKey(userID, restaurantID)
	s.data[key] = raw
	s.expiry[key] = s.nowFunc().Add(StoreTTL)
	return nil
}

// Delete drops a user's cart for a restaurant.
func (s *Store) Delete(userID, restaurantID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := storeKey(userID, restaurantID)
	delete(s.data, key)
	delete(s.expiry, key)
}
