package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	orderapp "github.com/troves/backend/internal/application/order"
	"github.com/troves/backend/internal/interfaces/http/middleware"
)

// OrderHandler serves checkout, order lookup and the admin fulfilment flow
type OrderHandler struct {
	BaseHandler
	orders *orderapp.Service
}

// NewOrderHandler creates an OrderHandler
func NewOrderHandler(orders *orderapp.Service) *OrderHandler {
	return &OrderHandler{orders: orders}
}

func viewer(c *gin.Context) orderapp.Viewer {
	return orderapp.Viewer{SessionID: middleware.GetSessionID(c), Admin: middleware.IsAdmin(c)}
}

// Place checks out the session's cart
func (h *OrderHandler) Place(c *gin.Context) {
	var req orderapp.PlaceOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}
	order, err := h.orders.PlaceOrder(c.Request.Context(), middleware.GetSessionID(c), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, order)
}

// Get returns an order the caller may see
func (h *OrderHandler) Get(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	order, err := h.orders.Get(c.Request.Context(), id, viewer(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

// Receipt streams the receipt as HTML, or as PDF with ?format=pdf
func (h *OrderHandler) Receipt(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	format := orderapp.ReceiptFormat(c.DefaultQuery("format", string(orderapp.ReceiptHTML)))
	doc, err := h.orders.Receipt(c.Request.Context(), id, viewer(c), format)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	disposition := "inline"
	if format == orderapp.ReceiptPDF {
		disposition = "attachment"
	}
	c.Header("Content-Disposition", fmt.Sprintf("%s; filename=%q", disposition, doc.Filename))
	c.Header("Cache-Control", "private, no-store")
	c.Data(http.StatusOK, doc.ContentType, doc.Data)
}

// List returns a page of orders for the admin
func (h *OrderHandler) List(c *gin.Context) {
	var filter orderapp.ListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindingError(c, err)
		return
	}
	orders, total, err := h.orders.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, orders, total, filter.Page, filter.PageSize)
}

// Confirm moves a pending order to confirmed
func (h *OrderHandler) Confirm(c *gin.Context) {
	h.transition(c, h.orders.Confirm)
}

// Ship marks a confirmed order as shipped
func (h *OrderHandler) Ship(c *gin.Context) {
	h.transition(c, h.orders.Ship)
}

// Deliver marks a shipped order as delivered
func (h *OrderHandler) Deliver(c *gin.Context) {
	h.transition(c, h.orders.Deliver)
}

// Cancel cancels an order and restocks its lines. The body is optional.
func (h *OrderHandler) Cancel(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	var req orderapp.CancelOrderRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			h.BindingError(c, err)
			return
		}
	}
	order, err := h.orders.Cancel(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

func (h *OrderHandler) transition(c *gin.Context, apply func(ctx context.Context, id uuid.UUID) (*orderapp.Response, error)) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	order, err := apply(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}
