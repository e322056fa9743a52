package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	assistantapp "github.com/troves/backend/internal/application/assistant"
	"github.com/troves/backend/internal/interfaces/http/dto"
)

// Assistant is the AI orchestrator as seen by the HTTP layer
type Assistant interface {
	Chat(ctx context.Context, req assistantapp.ChatRequest) (*assistantapp.ChatResponse, error)
	DescribeProduct(ctx context.Context, productID uuid.UUID) (*assistantapp.DescribeResponse, error)
	MatchCrystals(ctx context.Context, req assistantapp.MatchRequest) (*assistantapp.MatchResponse, error)
	MoonGuidance(ctx context.Context, at time.Time) (*assistantapp.MoonResponse, error)
	GenerateImage(ctx context.Context, req assistantapp.ImageRequest) (*assistantapp.ImageResponse, error)
	ProviderStatus() []assistantapp.ProviderStatus
}

// AssistantHandler serves the crystal assistant endpoints
type AssistantHandler struct {
	BaseHandler
	assistant Assistant
}

// NewAssistantHandler creates an AssistantHandler
func NewAssistantHandler(assistant Assistant) *AssistantHandler {
	return &AssistantHandler{assistant: assistant}
}

// Chat answers a shopper message
func (h *AssistantHandler) Chat(c *gin.Context) {
	var req assistantapp.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}
	resp, err := h.assistant.Chat(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Describe writes a product description
func (h *AssistantHandler) Describe(c *gin.Context) {
	var req assistantapp.DescribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}
	resp, err := h.assistant.DescribeProduct(c.Request.Context(), req.ProductID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Match ranks crystals for the shopper's intentions, birth month, zodiac
// sign and chakras
func (h *AssistantHandler) Match(c *gin.Context) {
	var req assistantapp.MatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}
	resp, err := h.assistant.MatchCrystals(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Moon returns the moon phase at ?at (RFC 3339 or YYYY-MM-DD), default now
func (h *AssistantHandler) Moon(c *gin.Context) {
	var at time.Time
	if raw := c.Query("at"); raw != "" {
		parsed, err := parseMoonTime(raw)
		if err != nil {
			h.Error(c, http.StatusBadRequest, dto.ErrCodeInvalidInput, "at must be an RFC 3339 timestamp or a YYYY-MM-DD date")
			return
		}
		at = parsed
	}
	resp, err := h.assistant.MoonGuidance(c.Request.Context(), at)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

func parseMoonTime(raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	return time.ParseInLocation(time.DateOnly, raw, time.UTC)
}

// GenerateImage creates an image and returns a time-limited link to it
func (h *AssistantHandler) GenerateImage(c *gin.Context) {
	var req assistantapp.ImageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}
	resp, err := h.assistant.GenerateImage(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// Providers reports per-provider attempt and failure counts
func (h *AssistantHandler) Providers(c *gin.Context) {
	h.Success(c, h.assistant.ProviderStatus())
}
