package bundle

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"tapin/internal/policy"
	"tapin/internal/restaurant"
)

type Handler struct {
	repo        *Repository
	policies    *policy.Repository
	restaurants *restaurant.Service
}

func NewHandler(repo *Repository, policies *policy.Repository, restaurants *restaurant.Service) *Handler {
	return &Handler{repo: repo, policies: policies, restaurants: restaurants}
}

//
// --------------------------------------------------
// GET /restaurants/:id/bundles
// --------------------------------------------------
//

// List returns the restaurant's purchasable bundles ranked by
// estimated value over price.
func (h *Handler) List() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		restaurantID := c.Param("id")

		_, ix, err := h.restaurants.Get(ctx, restaurantID)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "restaurant not found"})
			return
		}

		bundles, err := h.repo.ListByRestaurant(ctx, restaurantID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load bundles"})
			return
		}

		policies, err := h.policies.ListByRestaurant(ctx, restaurantID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load policies"})
			return
		}
		byID := make(map[string]policy.Policy, len(policies))
		for _, p := range policies {
			byID[p.PolicyID] = p
		}

		now := time.Now()
		available := make([]Bundle, 0, len(bundles))
		for _, b := range bundles {
			if b.Available(now) {
				available = append(available, b)
			}
		}

		recs := Rank(available, ix, func(b Bundle) []policy.Policy {
			children := make([]policy.Policy, 0, len(b.PolicyIDs))
			for _, id := range b.PolicyIDs {
				if p, ok := byID[id]; ok {
					children = append(children, p)
				}
			}
			return children
		})
		c.JSON(http.StatusOK, recs)
	}
}

//
// --------------------------------------------------
// GET /bundles/:bundleId/owned
// --------------------------------------------------
//

// Owned lists the caller's bundle ownerships for a restaurant.
func (h *Handler) Owned() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := c.Get("userID")
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		owned, err := h.repo.ListOwnership(c.Request.Context(), userID.(string), c.Param("id"))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load ownerships"})
			return
		}
		c.JSON(http.StatusOK, owned)
	}
}
