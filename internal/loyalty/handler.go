package loyalty

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
// GET /restaurants/:id/loyalty
// --------------------------------------------------
//

// Balance returns the caller's points and credit at a restaurant.
func (h *Handler) Balance() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := c.Get("userID")
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		b, err := h.repo.Get(c.Request.Context(), userID.(string), c.Param("id"))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load balance"})
			return
		}
		c.JSON(http.StatusOK, b)
	}
}
