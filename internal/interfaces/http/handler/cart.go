package handler

import (
	"github.com/gin-gonic/gin"
	cartapp "github.com/troves/backend/internal/application/cart"
	"github.com/troves/backend/internal/interfaces/http/middleware"
)

// CartHandler serves the visitor's cart, keyed by the session middleware
type CartHandler struct {
	BaseHandler
	carts *cartapp.Service
}

// NewCartHandler creates a CartHandler
func NewCartHandler(carts *cartapp.Service) *CartHandler {
	return &CartHandler{carts: carts}
}

// Get returns the current cart
func (h *CartHandler) Get(c *gin.Context) {
	cart, err := h.carts.Get(c.Request.Context(), middleware.GetSessionID(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, cart)
}

// AddItem adds units of a product
func (h *CartHandler) AddItem(c *gin.Context) {
	var req cartapp.AddItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}
	cart, err := h.carts.AddItem(c.Request.Context(), middleware.GetSessionID(c), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, cart)
}

// UpdateQuantity overwrites a line's quantity
func (h *CartHandler) UpdateQuantity(c *gin.Context) {
	productID, ok := h.pathUUID(c, "product_id")
	if !ok {
		return
	}
	var req cartapp.UpdateQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}
	cart, err := h.carts.UpdateQuantity(c.Request.Context(), middleware.GetSessionID(c), productID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, cart)
}

// RemoveItem drops a line
func (h *CartHandler) RemoveItem(c *gin.Context) {
	productID, ok := h.pathUUID(c, "product_id")
	if !ok {
		return
	}
	cart, err := h.carts.RemoveItem(c.Request.Context(), middleware.GetSessionID(c), productID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, cart)
}

// Clear empties the cart
func (h *CartHandler) Clear(c *gin.Context) {
	if err := h.carts.Clear(c.Request.Context(), middleware.GetSessionID(c)); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
