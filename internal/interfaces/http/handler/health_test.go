package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) PingContext(ctx context.Context) error { return f(ctx) }

func TestHealthHandler_Check(t *testing.T) {
	fixed := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		db         Pinger
		wantStatus int
		wantBody   []string
	}{
		{
			name:       "no database configured",
			db:         nil,
			wantStatus: http.StatusOK,
			wantBody:   []string{`"status":"ok"`, `"version":"1.2.3"`},
		},
		{
			name:       "database reachable",
			db:         pingerFunc(func(context.Context) error { return nil }),
			wantStatus: http.StatusOK,
			wantBody:   []string{`"database":"ok"`, `"success":true`},
		},
		{
			name:       "database down",
			db:         pingerFunc(func(context.Context) error { return errors.New("dial tcp: connection refused") }),
			wantStatus: http.StatusServiceUnavailable,
			wantBody:   []string{`"status":"degraded"`, `"database":"unavailable"`, `"success":false`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHealthHandler(tt.db, "1.2.3")
			h.now = func() time.Time { return fixed }

			r := gin.New()
			r.GET("/health", h.Check)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

			assert.Equal(t, tt.wantStatus, w.Code)
			for _, s := range tt.wantBody {
				assert.Contains(t, w.Body.String(), s)
			}
			assert.Contains(t, w.Body.String(), "2026-03-14T09:00:00Z")
			assert.NotContains(t, w.Body.String(), "connection refused")
		})
	}
}

func TestHealthHandler_PingUsesDeadline(t *testing.T) {
	var hadDeadline bool
	h := NewHealthHandler(pingerFunc(func(ctx context.Context) error {
		_, hadDeadline = ctx.Deadline()
		return nil
	}), "")

	r := gin.New()
	r.GET("/health", h.Check)
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.True(t, hadDeadline)
}
