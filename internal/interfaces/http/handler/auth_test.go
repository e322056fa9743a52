package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/troves/backend/internal/infrastructure/auth"
	"github.com/troves/backend/internal/infrastructure/config"
	"github.com/troves/backend/internal/interfaces/http/dto"
	"github.com/troves/backend/internal/interfaces/http/middleware"
)

func newLoginRouter(t *testing.T, password string) (*gin.Engine, *auth.JWTService) {
	t.Helper()
	require.NoError(t, middleware.SetupValidator())

	jwtService := auth.NewJWTService(config.JWTConfig{
		Secret:                "test-secret-key-at-least-32-bytes-long",
		AccessTokenExpiration: time.Hour,
		Issuer:                "troves-test",
		Audience:              "troves-admin",
	})
	hash := ""
	if password != "" {
		var err error
		hash, err = auth.HashPassword(password)
		require.NoError(t, err)
	}

	r := gin.New()
	r.POST("/admin/login", NewAuthHandler(jwtService, hash).Login)
	return r, jwtService
}

func postLogin(r *gin.Engine, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/admin/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthHandler_Login(t *testing.T) {
	r, jwtService := newLoginRouter(t, "moonstone-and-sage")

	t.Run("correct password issues a valid admin token", func(t *testing.T) {
		w := postLogin(r, `{"password":"moonstone-and-sage"}`)
		require.Equal(t, http.StatusOK, w.Code)

		var token auth.Token
		resp := decodeResponse(t, w)
		require.True(t, resp.Success)
		decodeData(t, w, &token)
		assert.Equal(t, "Bearer", token.TokenType)

		claims, err := jwtService.Validate(token.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, auth.RoleAdmin, claims.Role)
		assert.Equal(t, "owner", claims.Subject)
	})

	t.Run("wrong password", func(t *testing.T) {
		w := postLogin(r, `{"password":"quartz"}`)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		resp := decodeResponse(t, w)
		assert.Equal(t, dto.ErrCodeUnauthorized, resp.Error.Code)
		assert.Equal(t, "Invalid credentials", resp.Error.Message)
	})

	t.Run("missing password", func(t *testing.T) {
		w := postLogin(r, `{}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		resp := decodeResponse(t, w)
		assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)
	})

	t.Run("malformed json", func(t *testing.T) {
		w := postLogin(r, `{"password":`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		resp := decodeResponse(t, w)
		assert.Equal(t, dto.ErrCodeInvalidJSON, resp.Error.Code)
	})
}

func TestAuthHandler_LoginWithoutConfiguredHash(t *testing.T) {
	r, _ := newLoginRouter(t, "")

	w := postLogin(r, `{"password":""}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = postLogin(r, `{"password":"anything"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
