package checkout

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"tapin/internal/cart"
	"tapin/internal/catalog"
	"tapin/internal/payment"
	"tapin/internal/restaurant"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func currentUser(c *gin.Context) (string, bool) {
	userID, exists := c.Get("userID")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return "", false
	}
	return userID.(string), true
}

//
// --------------------------------------------------
// GET /restaurants/:id/cart
// --------------------------------------------------
//

func (h *Handler) GetQuote() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUser(c)
		if !ok {
			return
		}

		applyCredit := c.Query("apply_credit") == "true"
		q, err := h.service.Quote(c.Request.Context(), userID, c.Param("id"), applyCredit)
		if err != nil {
			writeServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, q)
	}
}

//
// --------------------------------------------------
// POST /restaurants/:id/cart/items
// --------------------------------------------------
//

func (h *Handler) AddItem() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUser(c)
		if !ok {
			return
		}

		var body struct {
			Item     catalog.Item `json:"item"`
			Quantity int          `json:"quantity"`
		}
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
		if body.Quantity == 0 {
			body.Quantity = 1
		}

		q, err := h.service.MutateCart(c.Request.Context(), userID, c.Param("id"),
			func(crt *cart.Cart, ix *catalog.Index) error {
				_, err := crt.AddItem(ix, body.Item, body.Quantity)
				return err
			})
		if err != nil {
			writeServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, q)
	}
}

//
// --------------------------------------------------
// PATCH /restaurants/:id/cart/items/:lineId
// --------------------------------------------------
//

func (h *Handler) UpdateItem() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUser(c)
		if !ok {
			return
		}

		lineID, err := strconv.Atoi(c.Param("lineId"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid cart line id"})
			return
		}

		var body struct {
			Quantity int `json:"quantity"`
		}
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}

		q, err := h.service.MutateCart(c.Request.Context(), userID, c.Param("id"),
			func(crt *cart.Cart, _ *catalog.Index) error {
				return crt.UpdateQuantity(lineID, body.Quantity)
			})
		if err != nil {
			writeServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, q)
	}
}

//
// --------------------------------------------------
// POST /restaurants/:id/cart/policies/:policyId
// DELETE /restaurants/:id/cart/policies/:policyId
// --------------------------------------------------
//

func (h *Handler) SelectPolicy() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUser(c)
		if !ok {
			return
		}

		q, err := h.service.MutateCart(c.Request.Context(), userID, c.Param("id"),
			func(crt *cart.Cart, _ *catalog.Index) error {
				crt.SelectPolicy(c.Param("policyId"))
				return nil
			})
		if err != nil {
			writeServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, q)
	}
}

func (h *Handler) DeselectPolicy() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUser(c)
		if !ok {
			return
		}

		q, err := h.service.MutateCart(c.Request.Context(), userID, c.Param("id"),
			func(crt *cart.Cart, _ *catalog.Index) error {
				crt.DeselectPolicy(c.Param("policyId"))
				return nil
			})
		if err != nil {
			writeServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, q)
	}
}

//
// --------------------------------------------------
// GET /restaurants/:id/policies/:policyId/missing-items
// --------------------------------------------------
//

func (h *Handler) MissingItems() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUser(c)
		if !ok {
			return
		}

		shortfalls, err := h.service.MissingItems(
			c.Request.Context(), userID, c.Param("id"), c.Param("policyId"))
		if err != nil {
			writeServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"missing_items": shortfalls})
	}
}

//
// --------------------------------------------------
// POST /checkout/intent
// --------------------------------------------------
//

func (h *Handler) CreateIntent() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUser(c)
		if !ok {
			return
		}

		var req IntentRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}

		intent, q, err := h.service.CreateIntent(c.Request.Context(), userID, req)
		if err != nil {
			writeServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"intent": intent, "quote": q})
	}
}

//
// --------------------------------------------------
// POST /checkout/submit
// --------------------------------------------------
//

func (h *Handler) Submit() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUser(c)
		if !ok {
			return
		}

		var req PurchaseRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}

		resp, err := h.service.Submit(c.Request.Context(), userID, req)
		if err != nil {
			writeServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, resp)
	}
}

//
// --------------------------------------------------
// POST /restaurants/:id/bundles/:bundleId/purchase
// --------------------------------------------------
//

func (h *Handler) PurchaseBundle() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUser(c)
		if !ok {
			return
		}

		var req BundlePurchaseRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}

		b, err := h.service.PurchaseBundle(c.Request.Context(), userID, c.Param("bundleId"), req)
		if err != nil {
			writeServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"bundle": b})
	}
}

func writeServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, restaurant.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "restaurant not found"})
	case errors.Is(err, ErrEmptyCart):
		c.JSON(http.StatusBadRequest, gin.H{"error": "cart is empty"})
	case errors.Is(err, ErrStaleCart):
		c.JSON(http.StatusConflict, gin.H{"error": "cart changed, refresh and try again"})
	case errors.Is(err, ErrTotalMismatch):
		c.JSON(http.StatusConflict, gin.H{"error": "total no longer matches, refresh and try again"})
	case errors.Is(err, ErrInsufficientPoints):
		c.JSON(http.StatusPaymentRequired, gin.H{"error": "not enough points for this redemption"})
	case errors.Is(err, ErrBundleUnavailable):
		c.JSON(http.StatusConflict, gin.H{"error": "bundle is no longer available"})
	case errors.Is(err, payment.ErrDeclined):
		c.JSON(http.StatusPaymentRequired, gin.H{"error": "payment declined"})
	case errors.Is(err, catalog.ErrItemNotPriceable):
		c.JSON(http.StatusBadRequest, gin.H{"error": "item is unavailable"})
	case errors.Is(err, cart.ErrBadQuantity), errors.Is(err, cart.ErrLineNotFound):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
