package handler

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/troves/backend/internal/infrastructure/auth"
	"github.com/troves/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// adminSubject is the subject of every admin token; the shop has one owner
const adminSubject = "owner"

// LoginRequest is the admin login payload
type LoginRequest struct {
	Password string `json:"password" binding:"required,max=200"`
}

// AuthHandler signs the shop owner in
type AuthHandler struct {
	BaseHandler
	jwt          *auth.JWTService
	passwordHash string
}

// NewAuthHandler creates an AuthHandler checking passwords against a bcrypt hash
func NewAuthHandler(jwt *auth.JWTService, passwordHash string) *AuthHandler {
	return &AuthHandler{jwt: jwt, passwordHash: passwordHash}
}

// Login exchanges the admin password for an access token
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	if err := auth.CheckPassword(h.passwordHash, req.Password); err != nil {
		logger.L(c.Request.Context()).Warn("Admin login failed",
			zap.String("client_ip", c.ClientIP()),
			zap.Bool("hash_configured", h.passwordHash != ""),
		)
		h.Unauthorized(c, "Invalid credentials")
		return
	}

	token, err := h.jwt.Issue(adminSubject)
	if err != nil {
		h.HandleError(c, fmt.Errorf("issue admin token: %w", err))
		return
	}
	logger.L(c.Request.Context()).Info("Admin logged in", zap.String("client_ip", c.ClientIP()))
	h.Success(c, token)
}
