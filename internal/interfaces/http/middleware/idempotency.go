package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/troves/backend/internal/infrastructure/idempotency"
	"github.com/troves/backend/internal/infrastructure/logger"
	"github.com/troves/backend/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

// IdempotencyKeyHeader carries a client-chosen key for a write
const IdempotencyKeyHeader = "Idempotency-Key"

const maxIdempotencyKeyLen = 128

// IdempotencyConfig configures Idempotency
type IdempotencyConfig struct {
	Store  idempotency.Store
	TTL    time.Duration
	Logger *zap.Logger
}

// Idempotency rejects a replayed Idempotency-Key with 409 while the first
// request holding it succeeded or is still running. Keys are scoped to the
// session and route. A failed response or a panicking handler releases the
// key so the client may retry. Requests without the header pass through.
func Idempotency(cfg IdempotencyConfig) gin.HandlerFunc {
	if cfg.Store == nil {
		return func(c *gin.Context) { c.Next() }
	}
	if cfg.TTL <= 0 {
		cfg.TTL = 24 * time.Hour
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	return func(c *gin.Context) {
		raw := c.GetHeader(IdempotencyKeyHeader)
		if raw == "" {
			c.Next()
			return
		}
		if len(raw) > maxIdempotencyKeyLen {
			abortWithError(c, http.StatusBadRequest, dto.ErrCodeInvalidInput,
				"Idempotency-Key must be at most 128 characters")
			return
		}

		ctx := c.Request.Context()
		key := GetSessionID(c) + ":" + c.Request.Method + ":" + c.FullPath() + ":" + raw
		claimed, err := cfg.Store.Claim(ctx, key, cfg.TTL)
		if err != nil {
			logger.Enrich(ctx, cfg.Logger).Warn("idempotency store unavailable, continuing", zap.Error(err))
			c.Next()
			return
		}
		if !claimed {
			abortWithError(c, http.StatusConflict, dto.ErrCodeDuplicateRequest,
				"This request has already been submitted")
			return
		}

		defer func() {
			rec := recover()
			if rec != nil || c.Writer.Status() >= http.StatusBadRequest {
				if err := cfg.Store.Release(ctx, key); err != nil {
					logger.Enrich(ctx, cfg.Logger).Warn("failed to release idempotency key", zap.Error(err))
				}
			}
			if rec != nil {
				panic(rec)
			}
		}()
		c.Next()
	}
}
