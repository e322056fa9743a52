package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/troves/backend/internal/infrastructure/auth"
	"github.com/troves/backend/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

// BearerPrefix precedes the token in the Authorization header
const BearerPrefix = "Bearer "

// AdminAuthConfig holds configuration for the admin guard
type AdminAuthConfig struct {
	JWTService *auth.JWTService
	Logger     *zap.Logger
}

// AdminAuth requires a valid admin access token
func AdminAuth(jwtService *auth.JWTService, logger *zap.Logger) gin.HandlerFunc {
	return AdminAuthWithConfig(AdminAuthConfig{JWTService: jwtService, Logger: logger})
}

// AdminAuthWithConfig validates the bearer token and stores its claims
// under ClaimsKey
func AdminAuthWithConfig(cfg AdminAuthConfig) gin.HandlerFunc {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return func(c *gin.Context) {
		tokenString, ok := bearerToken(c)
		if !ok {
			authFailed(c, cfg.Logger, dto.ErrCodeUnauthorized, auth.ErrInvalidToken, "Missing or malformed authorization header")
			return
		}

		claims, err := cfg.JWTService.Validate(tokenString)
		if err != nil {
			authFailed(c, cfg.Logger, dto.ErrCodeTokenInvalid, err, "Token validation failed")
			return
		}

		c.Set(ClaimsKey, claims)
		c.Next()
	}
}

// IsAdmin reports whether the request was authenticated by AdminAuth
func IsAdmin(c *gin.Context) bool {
	return GetClaims(c) != nil
}

// OptionalAdmin stores admin claims when a valid token is present and
// otherwise lets the request through unauthenticated
func OptionalAdmin(jwtService *auth.JWTService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if tokenString, ok := bearerToken(c); ok {
			if claims, err := jwtService.Validate(tokenString); err == nil {
				c.Set(ClaimsKey, claims)
			}
		}
		c.Next()
	}
}

// GetClaims returns the validated claims or nil
func GetClaims(c *gin.Context) *auth.Claims {
	if v, ok := c.Get(ClaimsKey); ok {
		if claims, ok := v.(*auth.Claims); ok {
			return claims
		}
	}
	return nil
}

func bearerToken(c *gin.Context) (string, bool) {
	header := c.GetHeader("Authorization")
	if !strings.HasPrefix(header, BearerPrefix) {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, BearerPrefix))
	return token, token != ""
}

func authFailed(c *gin.Context, logger *zap.Logger, code string, err error, message string) {
	logger.Warn("Admin authentication failed",
		zap.String("path", c.Request.URL.Path),
		zap.String("client_ip", c.ClientIP()),
		zap.Error(err),
	)
	if errors.Is(err, auth.ErrExpiredToken) {
		code, message = dto.ErrCodeTokenExpired, "Token has expired"
	}
	abortWithError(c, http.StatusUnauthorized, code, message)
}
