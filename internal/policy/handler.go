package policy

import (
	"errors"
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
// GET /restaurants/:id/policies
// --------------------------------------------------
//

// List returns the restaurant's active policies. Locked policies are
// included so clients can show what a bundle would unlock.
func (h *Handler) List() gin.HandlerFunc {
	return func(c *gin.Context) {
		all, err := h.repo.ListByRestaurant(c.Request.Context(), c.Param("id"))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load policies"})
			return
		}

		active := make([]Policy, 0, len(all))
		for _, p := range all {
			if p.Active {
				active = append(active, p)
			}
		}
		c.JSON(http.StatusOK, active)
	}
}

//
// --------------------------------------------------
// GET /restaurants/:id/policies/:policyId
// --------------------------------------------------
//

func (h *Handler) Get() gin.HandlerFunc {
	return func(c *gin.Context) {
		p, err := h.repo.Get(c.Request.Context(), c.Param("policyId"))
		if errors.Is(err, ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "policy not found"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, p)
	}
}

//
// --------------------------------------------------
// PUT /restaurants/:id/policies (admin)
// --------------------------------------------------
//

func (h *Handler) Upsert() gin.HandlerFunc {
	return func(c *gin.Context) {
		var p Policy
		if err := c.ShouldBindJSON(&p); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid policy: " + err.Error()})
			return
		}
		if p.PolicyID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "policyId is required"})
			return
		}

		if err := h.repo.Upsert(c.Request.Context(), c.Param("id"), p); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not save policy"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"policyId": p.PolicyID})
	}
}
