package transactions

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	repo *Repository
}

func NewHandler(repo *Repository) *Handler {
	return &Handler{repo: repo}
}

//
// --------------------------------------------------
// GET /restaurants/:id/transactions
// --------------------------------------------------
//

// List returns the caller's transactions at a restaurant, the backing
// data for the in-app wallet of redeemable QR codes. Pass
// ?unredeemed=true for only the outstanding ones.
func (h *Handler) List() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := c.Get("userID")
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		unredeemedOnly := c.Query("unredeemed") == "true"
		txns, err := h.repo.ListForRestaurant(
			c.Request.Context(), userID.(string), c.Param("id"), unredeemedOnly)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load transactions"})
			return
		}
		c.JSON(http.StatusOK, txns)
	}
}
