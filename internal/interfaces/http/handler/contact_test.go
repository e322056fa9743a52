package handler

import (
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	contactapp "github.com/troves/backend/internal/application/contact"
	"github.com/troves/backend/internal/interfaces/http/dto"
)

func contactBody(message string) string {
	return fmt.Sprintf(`{"name":"Luna Reyes","email":"Luna@Example.com","subject":"Custom order","message":%q}`, message)
}

func TestContactHandler_Submit(t *testing.T) {
	s := newStorefront(t)

	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantCode   string
	}{
		{"shortest message", contactBody(strings.Repeat("a", 10)), http.StatusCreated, ""},
		{"longest message", contactBody(strings.Repeat("a", 5000)), http.StatusCreated, ""},
		{"multibyte counted as characters", contactBody(strings.Repeat("💎", 10)), http.StatusCreated, ""},
		{"too short", contactBody(strings.Repeat("a", 9)), http.StatusBadRequest, dto.ErrCodeValidation},
		{"too long", contactBody(strings.Repeat("a", 5001)), http.StatusBadRequest, dto.ErrCodeValidation},
		{"short once trimmed", contactBody("   hello    "), http.StatusBadRequest, dto.ErrCodeInvalidInput},
		{"bad email", `{"name":"Luna","email":"luna","message":"I would love a custom piece"}`, http.StatusBadRequest, dto.ErrCodeValidation},
		{"missing name", `{"email":"luna@example.com","message":"I would love a custom piece"}`, http.StatusBadRequest, dto.ErrCodeValidation},
		{"malformed json", `{"name":`, http.StatusBadRequest, dto.ErrCodeInvalidJSON},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := s.do(request{method: http.MethodPost, path: "/contact", body: tt.body})
			require.Equal(t, tt.wantStatus, w.Code, w.Body.String())
			if tt.wantCode != "" {
				assert.Equal(t, tt.wantCode, errorCodeOf(t, w))
				return
			}
			var msg contactapp.MessageResponse
			decodeData(t, w, &msg)
			assert.Equal(t, "NEW", msg.Status)
			assert.Equal(t, "luna@example.com", msg.Email)
			assert.Nil(t, msg.ReadAt)
		})
	}
}

func TestContactHandler_Inbox(t *testing.T) {
	s := newStorefront(t)
	w := s.do(request{method: http.MethodPost, path: "/contact", body: contactBody("Do you ship moonstone rings abroad?")})
	require.Equal(t, http.StatusCreated, w.Code)
	var msg contactapp.MessageResponse
	decodeData(t, w, &msg)
	base := "/contact/" + msg.ID.String()

	w = s.do(request{method: http.MethodPost, path: base + "/read", admin: true})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	decodeData(t, w, &msg)
	assert.Equal(t, "READ", msg.Status)
	assert.NotNil(t, msg.ReadAt)

	w = s.do(request{method: http.MethodPost, path: base + "/read", admin: true})
	assert.Equal(t, http.StatusOK, w.Code)

	w = s.do(request{method: http.MethodPost, path: base + "/archive", admin: true})
	require.Equal(t, http.StatusOK, w.Code)
	decodeData(t, w, &msg)
	assert.Equal(t, "ARCHIVED", msg.Status)

	w = s.do(request{method: http.MethodPost, path: base + "/read", admin: true})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, dto.ErrCodeInvalidState, errorCodeOf(t, w))

	tests := []struct {
		path       string
		wantStatus int
		wantTotal  int64
	}{
		{"/contact", http.StatusOK, 1},
		{"/contact?status=ARCHIVED", http.StatusOK, 1},
		{"/contact?status=NEW", http.StatusOK, 0},
		{"/contact?status=SPAM", http.StatusBadRequest, 0},
		{"/contact?page_size=500", http.StatusBadRequest, 0},
	}
	for _, tt := range tests {
		w := s.do(request{method: http.MethodGet, path: tt.path, admin: true})
		require.Equal(t, tt.wantStatus, w.Code, tt.path)
		if tt.wantStatus != http.StatusOK {
			continue
		}
		resp := decodeResponse(t, w)
		require.NotNil(t, resp.Meta)
		assert.Equal(t, tt.wantTotal, resp.Meta.Total, tt.path)
	}

	w = s.do(request{method: http.MethodPost, path: "/contact/" + uuid.NewString() + "/archive", admin: true})
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = s.do(request{method: http.MethodPost, path: "/contact/nope/read", admin: true})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
