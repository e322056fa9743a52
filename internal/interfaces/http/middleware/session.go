package middleware

import (
	"net/http"
	"regexp"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/troves/backend/internal/infrastructure/logger"
)

var sessionIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{8,128}$`)

// SessionConfig configures the anonymous storefront session
type SessionConfig struct {
	CookieName string
	Secure     bool
	MaxAge     time.Duration
}

// DefaultSessionConfig returns a 30 day session cookie named session_id
func DefaultSessionConfig() SessionConfig {
	return SessionConfig{
		CookieName: "session_id",
		MaxAge:     30 * 24 * time.Hour,
	}
}

// Session binds each request to a visitor session. The X-Session-ID header
// wins over the cookie; malformed or missing IDs are replaced by a new UUID
// which is returned in both the header and the cookie.
func Session(cfg SessionConfig) gin.HandlerFunc {
	if cfg.CookieName == "" {
		cfg.CookieName = DefaultSessionConfig().CookieName
	}
	if cfg.MaxAge <= 0 {
		cfg.MaxAge = DefaultSessionConfig().MaxAge
	}

	return func(c *gin.Context) {
		id := c.GetHeader(SessionIDHeader)
		if !sessionIDPattern.MatchString(id) {
			id = ""
			if cookie, err := c.Cookie(cfg.CookieName); err == nil && sessionIDPattern.MatchString(cookie) {
				id = cookie
			}
		}
		if id == "" {
			id = uuid.NewString()
		}

		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(cfg.CookieName, id, int(cfg.MaxAge.Seconds()), "/", "", cfg.Secure, true)
		c.Header(SessionIDHeader, id)

		c.Set(SessionIDKey, id)
		c.Request = c.Request.WithContext(logger.WithSessionID(c.Request.Context(), id))
		c.Next()
	}
}
