package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/troves/backend/internal/infrastructure/logger"
)

func sessionRouter(cfg SessionConfig) *gin.Engine {
	r := gin.New()
	r.Use(Session(cfg))
	r.GET("/test", func(c *gin.Context) {
		if logger.GetSessionID(c.Request.Context()) != GetSessionID(c) {
			c.String(http.StatusInternalServerError, "context mismatch")
			return
		}
		c.String(http.StatusOK, GetSessionID(c))
	})
	return r
}

func TestSession(t *testing.T) {
	r := sessionRouter(SessionConfig{CookieName: "sid", Secure: true})

	t.Run("mints a session when none is sent", func(t *testing.T) {
		w := serve(r, httptest.NewRequest(http.MethodGet, "/test", nil))

		require.Equal(t, http.StatusOK, w.Code)
		_, err := uuid.Parse(w.Body.String())
		assert.NoError(t, err)
		assert.Equal(t, w.Body.String(), w.Header().Get(SessionIDHeader))

		cookies := w.Result().Cookies()
		require.Len(t, cookies, 1)
		assert.Equal(t, "sid", cookies[0].Name)
		assert.Equal(t, w.Body.String(), cookies[0].Value)
		assert.True(t, cookies[0].HttpOnly)
		assert.True(t, cookies[0].Secure)
	})

	t.Run("header wins over cookie", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set(SessionIDHeader, "header-session-1")
		req.AddCookie(&http.Cookie{Name: "sid", Value: "cookie-session-1"})
		w := serve(r, req)

		assert.Equal(t, "header-session-1", w.Body.String())
	})

	t.Run("falls back to cookie", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.AddCookie(&http.Cookie{Name: "sid", Value: "cookie-session-1"})
		w := serve(r, req)

		assert.Equal(t, "cookie-session-1", w.Body.String())
	})

	t.Run("replaces malformed IDs", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set(SessionIDHeader, "bad id; drop table")
		w := serve(r, req)

		assert.NotEqual(t, "bad id; drop table", w.Body.String())
		_, err := uuid.Parse(w.Body.String())
		assert.NoError(t, err)
	})
}
