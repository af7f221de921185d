package checkout

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"tapin/internal/bundle"
	"tapin/internal/cart"
	"tapin/internal/catalog"
	"tapin/internal/deal"
	"tapin/internal/loyalty"
	"tapin/internal/payment"
	"tapin/internal/policy"
	"tapin/internal/pricing"
	"tapin/internal/restaurant"
	"tapin/internal/transactions"
)

var (
	ErrEmptyCart          = errors.New("cart is empty")
	ErrStaleCart          = errors.New("cart is stale, re-quote before submitting")
	ErrTotalMismatch      = errors.New("client total does not cover the server total")
	ErrInsufficientPoints = errors.New("insufficient points for loyalty redemption")
	ErrBundleUnavailable  = errors.New("bundle is not available for purchase")
)

// PolicyReader is the slice of the policy repository checkout needs.
type PolicyReader interface {
	ListByRestaurant(ctx context.Context, restaurantID string) ([]policy.Policy, error)
}

// BundleStore is the slice of the bundle repository checkout needs.
type BundleStore interface {
	ListByRestaurant(ctx context.Context, restaurantID string) ([]bundle.Bundle, error)
	Get(ctx context.Context, bundleID string) (*bundle.Bundle, error)
	ListOwnership(ctx context.Context, userID, restaurantID string) ([]bundle.Ownership, error)
	RecordOwnership(ctx context.Context, userID, bundleID string, purchasedAt time.Time) error
}

// LoyaltyStore is the slice of the loyalty repository checkout needs.
type LoyaltyStore interface {
	Get(ctx context.Context, userID, restaurantID string) (loyalty.Balance, error)
	Apply(ctx context.Context, userID, restaurantID string, pointsDelta int, creditDelta decimal.Decimal) error
}

// TransactionStore is the slice of the transactions repository
// checkout needs.
type TransactionStore interface {
	CreateBatch(ctx context.Context, txns []transactions.Transaction) error
	PolicyUsage(ctx context.Context, userID, restaurantID string) (map[string]transactions.UsageRow, error)
}

// Service orchestrates quoting and checkout. The cart, deal effect
// and cart results are always recomputed together from one snapshot;
// nothing here is memoized independently.
type Service struct {
	restaurants *restaurant.Service
	policies    PolicyReader
	bundles     BundleStore
	loyalty     LoyaltyStore
	txns        TransactionStore
	carts       *cart.Store
	processor   payment.Processor
	now         func() time.Time

	// last resolved effect per (user, restaurant), input to the
	// resolver's sticky order-level selection; entries expire with
	// the cart they belong to
	mu          sync.Mutex
	lastEffects map[string]effectEntry
}

type effectEntry struct {
	payload *deal.Payload
	savedAt time.Time
}

func NewService(
	restaurants *restaurant.Service,
	policies PolicyReader,
	bundles BundleStore,
	loyaltyStore LoyaltyStore,
	txns TransactionStore,
	carts *cart.Store,
	processor payment.Processor,
) *Service {
	return &Service{
		restaurants: restaurants,
		policies:    policies,
		bundles:     bundles,
		loyalty:     loyaltyStore,
		txns:        txns,
		carts:       carts,
		processor:   processor,
		now:         time.Now,
		lastEffects: make(map[string]effectEntry),
	}
}

// --------------------------------------------------
// QUOTE (ATOMIC CART + EFFECT + RESULTS)
// --------------------------------------------------

// Quote recomputes the deal effect and cart results for the user's
// stored cart as one step.
func (s *Service) Quote(ctx context.Context, userID, restaurantID string, applyCredit bool) (*Quote, error) {
	c, ok := s.carts.Get(userID, restaurantID)
	if !ok {
		c = cart.New(restaurantID)
	}
	return s.quoteCart(ctx, userID, c, applyCredit)
}

func (s *Service) quoteCart(ctx context.Context, userID string, c *cart.Cart, applyCredit bool) (*Quote, error) {
	res, ix, err := s.restaurants.Get(ctx, c.RestaurantID)
	if err != nil {
		return nil, err
	}

	balance, err := s.loyalty.Get(ctx, userID, c.RestaurantID)
	if err != nil {
		return nil, err
	}

	candidates, tags, err := s.candidatePolicies(ctx, userID, c, res, ix, balance.Points)
	if err != nil {
		return nil, err
	}

	effectKey := userID + "/" + c.RestaurantID
	s.mu.Lock()
	var previous *deal.Payload
	if e, ok := s.lastEffects[effectKey]; ok && s.now().Sub(e.savedAt) <= cart.StoreTTL {
		previous = e.payload
	}
	s.mu.Unlock()

	effect := deal.Resolve(deal.Input{
		Cart:       c,
		Candidates: candidates,
		Catalog:    ix,
		Previous:   previous,
	})

	results := pricing.PriceCart(c, effect, res.PricingConfig(), pricing.Options{
		UserPointBalance: balance.Points,
		ApplyCredit:      applyCredit,
		AvailableCredit:  balance.Credit,
		PolicyTags:       tags,
	})

	s.mu.Lock()
	now := s.now()
	for k, e := range s.lastEffects {
		if now.Sub(e.savedAt) > cart.StoreTTL {
			delete(s.lastEffects, k)
		}
	}
	s.lastEffects[effectKey] = effectEntry{payload: effect, savedAt: now}
	s.mu.Unlock()

	return &Quote{Cart: c, DealEffect: effect, CartResults: results}, nil
}

// candidatePolicies builds the resolver's ordered candidate list:
// the user's selected deals, filtered to eligible policies whose
// conditions the cart satisfies, in selection order.
func (s *Service) candidatePolicies(
	ctx context.Context,
	userID string,
	c *cart.Cart,
	res *restaurant.Restaurant,
	ix *catalog.Index,
	userPoints int,
) ([]policy.Policy, map[string]string, error) {
	all, err := s.policies.ListByRestaurant(ctx, c.RestaurantID)
	if err != nil {
		return nil, nil, err
	}
	bundles, err := s.bundles.ListByRestaurant(ctx, c.RestaurantID)
	if err != nil {
		return nil, nil, err
	}
	owned, err := s.bundles.ListOwnership(ctx, userID, c.RestaurantID)
	if err != nil {
		return nil, nil, err
	}
	usageRows, err := s.txns.PolicyUsage(ctx, userID, c.RestaurantID)
	if err != nil {
		return nil, nil, err
	}

	now := s.now()
	facts := policy.Facts{
		Unlocked: bundle.UnlockedPolicies(bundles, owned, now),
		Usage:    make(map[string]policy.Usage, len(usageRows)),
	}
	for id, row := range usageRows {
		facts.Usage[id] = policy.Usage{Count: row.Count, LastUsed: row.LastUsed}
	}

	env := policy.Env{
		Catalog:    ix,
		UserPoints: userPoints,
		Location:   res.Location(),
		Now:        now,
	}

	byID := make(map[string]policy.Policy, len(all))
	tags := make(map[string]string, len(all))
	for _, p := range all {
		byID[p.PolicyID] = p
		tags[p.PolicyID] = p.Definition.Tag
	}

	var candidates []policy.Policy
	for _, id := range c.SelectedPolicies {
		p, ok := byID[id]
		if !ok {
			continue
		}
		if !policy.IsEligible(p, now, facts) || !policy.ConditionsSatisfied(p, c, env) {
			continue
		}
		candidates = append(candidates, p)
	}
	return candidates, tags, nil
}

// --------------------------------------------------
// CART OPERATIONS
// --------------------------------------------------

// MutateCart loads the stored cart, applies fn, persists, and returns
// a fresh quote so callers never see a cart without its derived state.
func (s *Service) MutateCart(ctx context.Context, userID, restaurantID string, fn func(*cart.Cart, *catalog.Index) error) (*Quote, error) {
	_, ix, err := s.restaurants.Get(ctx, restaurantID)
	if err != nil {
		return nil, err
	}

	c, ok := s.carts.Get(userID, restaurantID)
	if !ok {
		c = cart.New(restaurantID)
	}

	if err := fn(c, ix); err != nil {
		return nil, err
	}
	if err := s.carts.Put(userID, restaurantID, c); err != nil {
		return nil, err
	}
	return s.quoteCart(ctx, userID, c, false)
}

// MissingItems reports what the cart still needs for a policy's
// quantity conditions, for "add N more" UI prompts.
func (s *Service) MissingItems(ctx context.Context, userID, restaurantID, policyID string) ([]policy.Shortfall, error) {
	res, ix, err := s.restaurants.Get(ctx, restaurantID)
	if err != nil {
		return nil, err
	}

	all, err := s.policies.ListByRestaurant(ctx, restaurantID)
	if err != nil {
		return nil, err
	}
	var target *policy.Policy
	for i := range all {
		if all[i].PolicyID == policyID {
			target = &all[i]
			break
		}
	}
	if target == nil {
		return nil, policy.ErrNotFound
	}

	c, ok := s.carts.Get(userID, restaurantID)
	if !ok {
		c = cart.New(restaurantID)
	}
	balance, err := s.loyalty.Get(ctx, userID, restaurantID)
	if err != nil {
		return nil, err
	}

	env := policy.Env{
		Catalog:    ix,
		UserPoints: balance.Points,
		Location:   res.Location(),
		Now:        s.now(),
	}
	return policy.MissingItemsForQuantityConditions(*target, c, env), nil
}

// --------------------------------------------------
// PAYMENT INTENT
// --------------------------------------------------

// CreateIntent authorizes payment for the current quote plus tip.
func (s *Service) CreateIntent(ctx context.Context, userID string, req IntentRequest) (*payment.Intent, *Quote, error) {
	if req.Tip.IsNegative() {
		return nil, nil, fmt.Errorf("negative tip")
	}

	q, err := s.Quote(ctx, userID, req.RestaurantID, req.ApplyCredit)
	if err != nil {
		return nil, nil, err
	}
	if q.Cart.Empty() {
		return nil, nil, ErrEmptyCart
	}
	if q.CartResults.InsufficientPoints {
		return nil, nil, ErrInsufficientPoints
	}

	intent, err := s.processor.CreateIntent(ctx, q.CartResults.TotalPrice.Add(req.Tip))
	if err != nil {
		return nil, nil, err
	}
	return intent, q, nil
}

// --------------------------------------------------
// SUBMIT ORDER
// --------------------------------------------------

// Submit settles an order: the cart and deal effect are re-derived
// server-side from the stored snapshot, the client total is verified
// against them, payment is captured, and transactions plus loyalty
// movement are written.
func (s *Service) Submit(ctx context.Context, userID string, req PurchaseRequest) (*PurchaseResponse, error) {
	stored, ok := s.carts.Get(userID, req.RestaurantID)
	if !ok || stored.Empty() {
		return nil, ErrEmptyCart
	}
	if req.Cart == nil || req.Cart.Version != stored.Version {
		return nil, ErrStaleCart
	}

	q, err := s.quoteCart(ctx, userID, stored, req.ApplyCredit)
	if err != nil {
		return nil, err
	}
	if q.CartResults.InsufficientPoints {
		return nil, ErrInsufficientPoints
	}

	tip := req.TotalWithTip.Sub(q.CartResults.TotalPrice)
	if tip.IsNegative() {
		return nil, ErrTotalMismatch
	}

	if err := s.processor.Capture(ctx, req.Token, req.TotalWithTip, req.PaymentData); err != nil {
		return nil, fmt.Errorf("capture payment: %w", err)
	}

	_, ix, err := s.restaurants.Get(ctx, req.RestaurantID)
	if err != nil {
		return nil, err
	}

	txns := s.buildTransactions(userID, req.RestaurantID, stored, q.DealEffect, ix)
	if err := s.txns.CreateBatch(ctx, txns); err != nil {
		return nil, fmt.Errorf("record transactions: %w", err)
	}

	pointsDelta := q.CartResults.TotalPoints - q.CartResults.TotalPointCost
	creditDelta := q.CartResults.Credit.CreditToAdd.Sub(q.CartResults.Credit.CreditUsed)
	if err := s.loyalty.Apply(ctx, userID, req.RestaurantID, pointsDelta, creditDelta); err != nil {
		return nil, fmt.Errorf("apply loyalty movement: %w", err)
	}

	s.carts.Delete(userID, req.RestaurantID)
	s.mu.Lock()
	delete(s.lastEffects, userID+"/"+req.RestaurantID)
	s.mu.Unlock()

	balance, err := s.loyalty.Get(ctx, userID, req.RestaurantID)
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"user":         userID,
		"restaurant":   req.RestaurantID,
		"transactions": len(txns),
		"total":        req.TotalWithTip,
	}).Info("order submitted")

	return &PurchaseResponse{
		Transactions: txns,
		ModifiedUserData: UserData{
			UserID: userID,
			Points: balance.Points,
			Credit: balance.Credit,
		},
	}, nil
}

// buildTransactions expands the cart into one redeemable transaction
// per unit, carrying each unit's effective price and the policy that
// touched it.
func (s *Service) buildTransactions(userID, restaurantID string, c *cart.Cart, effect *deal.Payload, ix *catalog.Index) []transactions.Transaction {
	freeUnits := make(map[int]int)
	freePolicy := make(map[int]string)
	for _, a := range effect.AddedItems {
		freeUnits[a.CartItemID]++
		freePolicy[a.CartItemID] = a.PolicyID
	}
	priceMods := make(map[int]deal.ModifiedItem)
	for _, m := range effect.ModifiedItems {
		if m.DiscountedUnitPrice != nil {
			priceMods[m.CartItemID] = m
		}
	}

	orderID := uuid.NewString()
	now := s.now()

	var txns []transactions.Transaction
	for _, line := range c.Items {
		name, err := ix.DisplayName(line.Item)
		if err != nil {
			name = line.Item.ID
		}

		free := freeUnits[line.ID]
		discounted, discPrice := 0, decimal.Zero
		var discPolicy string
		if m, ok := priceMods[line.ID]; ok {
			discounted, discPrice, discPolicy = m.Quantity, *m.DiscountedUnitPrice, m.PolicyID
		}

		for u := 0; u < line.Quantity; u++ {
			price := line.UnitPrice
			var policyID *string
			switch {
			case u < free:
				price = decimal.Zero
				pid := freePolicy[line.ID]
				policyID = &pid
			case u < free+discounted:
				price = discPrice
				pid := discPolicy
				policyID = &pid
			}

			txns = append(txns, transactions.Transaction{
				TransactionID: uuid.NewString(),
				UserID:        userID,
				RestaurantID:  restaurantID,
				OrderID:       orderID,
				Item:          line.Item,
				ItemName:      name,
				PaidPrice:     price,
				PolicyID:      policyID,
				Status:        transactions.StatusPurchased,
				CreatedAt:     now,
			})
		}
	}
	return txns
}

// --------------------------------------------------
// BUNDLE PURCHASE
// --------------------------------------------------

// PurchaseBundle charges the bundle price, records ownership, and
// grants the bundle's fixed credit. Locked child policies become
// eligible for as long as the ownership stays valid.
func (s *Service) PurchaseBundle(ctx context.Context, userID, bundleID string, req BundlePurchaseRequest) (*bundle.Bundle, error) {
	b, err := s.bundles.Get(ctx, bundleID)
	if err != nil {
		return nil, err
	}
	now := s.now()
	if !b.Available(now) {
		return nil, ErrBundleUnavailable
	}

	if err := s.processor.Capture(ctx, req.Token, b.Price, req.PaymentData); err != nil {
		return nil, fmt.Errorf("capture bundle payment: %w", err)
	}
	if err := s.bundles.RecordOwnership(ctx, userID, bundleID, now); err != nil {
		return nil, err
	}
	if b.FixedCredit.IsPositive() {
		if err := s.loyalty.Apply(ctx, userID, b.RestaurantID, 0, b.FixedCredit); err != nil {
			return nil, err
		}
	}

	logrus.WithFields(logrus.Fields{
		"user":   userID,
		"bundle": bundleID,
		"price":  b.Price,
	}).Info("bundle purchased")

	return b, nil
}
