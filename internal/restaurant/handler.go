package restaurant

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
// GET /restaurants
// --------------------------------------------------
//

func (h *Handler) List() gin.HandlerFunc {
	return func(c *gin.Context) {
		restaurants, err := h.service.List(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load restaurants"})
			return
		}
		c.JSON(http.StatusOK, restaurants)
	}
}

//
// --------------------------------------------------
// GET /restaurants/:id
// --------------------------------------------------
//

func (h *Handler) Get() gin.HandlerFunc {
	return func(c *gin.Context) {
		res, _, err := h.service.Get(c.Request.Context(), c.Param("id"))
		if errors.Is(err, ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "restaurant not found"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, res)
	}
}

//
// --------------------------------------------------
// POST /restaurants/:id/refresh
// --------------------------------------------------
//

func (h *Handler) Refresh() gin.HandlerFunc {
	return func(c *gin.Context) {
		h.service.Refresh(c.Param("id"))
		c.JSON(http.StatusOK, gin.H{"message": "catalog index will rebuild on next fetch"})
	}
}
