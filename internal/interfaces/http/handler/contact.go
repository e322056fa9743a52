package handler

import (
	"github.com/gin-gonic/gin"
	contactapp "github.com/troves/backend/internal/application/contact"
)

// ContactHandler serves the contact form and the admin inbox
type ContactHandler struct {
	BaseHandler
	contacts *contactapp.Service
}

// NewContactHandler creates a ContactHandler
func NewContactHandler(contacts *contactapp.Service) *ContactHandler {
	return &ContactHandler{contacts: contacts}
}

// Submit stores a contact form message
func (h *ContactHandler) Submit(c *gin.Context) {
	var req contactapp.SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}
	msg, err := h.contacts.Submit(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, msg)
}

// List returns the inbox, newest first
func (h *ContactHandler) List(c *gin.Context) {
	var filter contactapp.ListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindingError(c, err)
		return
	}
	msgs, total, err := h.contacts.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, msgs, total, filter.Page, filter.PageSize)
}

// MarkRead flags a message as read
func (h *ContactHandler) MarkRead(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	msg, err := h.contacts.MarkRead(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, msg)
}

// Archive moves a message out of the inbox
func (h *ContactHandler) Archive(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	msg, err := h.contacts.Archive(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, msg)
}
