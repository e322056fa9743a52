package middleware

import (
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/troves/backend/internal/infrastructure/ratelimit"
	"github.com/troves/backend/internal/interfaces/http/dto"
)

// Rate limit response headers
const (
	HeaderRateLimitLimit     = "X-RateLimit-Limit"
	HeaderRateLimitRemaining = "X-RateLimit-Remaining"
	HeaderRateLimitReset     = "X-RateLimit-Reset"
	HeaderRetryAfter         = "Retry-After"
)

// RateLimitConfig configures a limiter-backed middleware
type RateLimitConfig struct {
	Limiter *ratelimit.Limiter
	// KeyFunc picks the subject being counted. Defaults to the client IP.
	KeyFunc func(*gin.Context) string
	// Message is returned in the 429 body
	Message   string
	SkipPaths []string
	Now       func() time.Time
}

// RateLimit counts every request by client IP
func RateLimit(limiter *ratelimit.Limiter) gin.HandlerFunc {
	return RateLimitWithConfig(RateLimitConfig{Limiter: limiter})
}

// RateLimitWithConfig returns a middleware that sets the X-RateLimit headers
// on every response and answers 429 with Retry-After once the subject is
// over its limit for the current window.
func RateLimitWithConfig(cfg RateLimitConfig) gin.HandlerFunc {
	if cfg.Limiter == nil {
		return func(c *gin.Context) { c.Next() }
	}
	if cfg.KeyFunc == nil {
		cfg.KeyFunc = func(c *gin.Context) string { return c.ClientIP() }
	}
	if cfg.Message == "" {
		cfg.Message = "Too many requests. Please try again later."
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	skip := make(map[string]struct{}, len(cfg.SkipPaths))
	for _, p := range cfg.SkipPaths {
		skip[p] = struct{}{}
	}

	return func(c *gin.Context) {
		if _, ok := skip[c.Request.URL.Path]; ok {
			c.Next()
			return
		}

		d := cfg.Limiter.Allow(c.Request.Context(), cfg.KeyFunc(c))
		h := c.Writer.Header()
		h.Set(HeaderRateLimitLimit, strconv.Itoa(d.Limit))
		h.Set(HeaderRateLimitRemaining, strconv.Itoa(d.Remaining))
		h.Set(HeaderRateLimitReset, strconv.FormatInt(d.ResetAt.Unix(), 10))

		if !d.Allowed {
			wait := d.RetryAfter(cfg.Now())
			h.Set(HeaderRetryAfter, strconv.Itoa(int(math.Ceil(wait.Seconds()))))
			abortWithError(c, http.StatusTooManyRequests, dto.ErrCodeRateLimited, cfg.Message)
			return
		}
		c.Next()
	}
}
