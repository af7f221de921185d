package redemption

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

//
// --------------------------------------------------
// POST /redeem
// --------------------------------------------------
//

func (h *Handler) Redeem() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := c.Get("userID")
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		var req Request
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}

		resp, err := h.service.Redeem(c.Request.Context(), userID.(string), req)
		switch {
		case errors.Is(err, ErrNoTransactions):
			c.JSON(http.StatusBadRequest, gin.H{"error": "no transactions to redeem"})
		case errors.Is(err, ErrNotOwned):
			c.JSON(http.StatusForbidden, gin.H{"error": "transactions do not belong to this user"})
		case errors.Is(err, ErrAlreadyRedeemed):
			c.JSON(http.StatusConflict, gin.H{"error": "transaction already redeemed"})
		case err != nil:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusOK, resp)
		}
	}
}
