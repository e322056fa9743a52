package handler

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	cartapp "github.com/troves/backend/internal/application/cart"
	"github.com/troves/backend/internal/interfaces/http/dto"
)

func TestCartHandler_AddItem(t *testing.T) {
	s := newStorefront(t)
	amethyst := s.seedProduct("Amethyst Bracelet", 24, 5)
	retired := s.seedProduct("Retired Pendant", 30, 5)
	require.Equal(t, http.StatusOK, s.do(request{
		method: http.MethodPost, path: "/products/" + retired.ID.String() + "/deactivate", admin: true,
	}).Code)

	tests := []struct {
		name       string
		session    string
		body       string
		wantStatus int
		wantCode   string
	}{
		{"valid line", "sess-add", fmt.Sprintf(`{"product_id":%q,"quantity":2}`, amethyst.ID), http.StatusOK, ""},
		{"quantity above cap", "sess-add", fmt.Sprintf(`{"product_id":%q,"quantity":100}`, amethyst.ID), http.StatusBadRequest, dto.ErrCodeValidation},
		{"zero quantity", "sess-add", fmt.Sprintf(`{"product_id":%q,"quantity":0}`, amethyst.ID), http.StatusBadRequest, dto.ErrCodeValidation},
		{"more than in stock", "sess-add", fmt.Sprintf(`{"product_id":%q,"quantity":6}`, amethyst.ID), http.StatusUnprocessableEntity, dto.ErrCodeInsufficientStock},
		{"inactive product", "sess-add", fmt.Sprintf(`{"product_id":%q,"quantity":1}`, retired.ID), http.StatusUnprocessableEntity, dto.ErrCodeProductUnavailable},
		{"unknown product", "sess-add", fmt.Sprintf(`{"product_id":%q,"quantity":1}`, uuid.New()), http.StatusNotFound, dto.ErrCodeNotFound},
		{"malformed body", "sess-add", `{"product_id":`, http.StatusBadRequest, dto.ErrCodeInvalidJSON},
		{"no session", "", fmt.Sprintf(`{"product_id":%q,"quantity":1}`, amethyst.ID), http.StatusBadRequest, dto.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := s.do(request{method: http.MethodPost, path: "/cart/items", body: tt.body, session: tt.session})
			require.Equal(t, tt.wantStatus, w.Code, w.Body.String())
			if tt.wantCode != "" {
				assert.Equal(t, tt.wantCode, errorCodeOf(t, w))
			}
		})
	}

	w := s.do(request{method: http.MethodGet, path: "/cart", session: "sess-add"})
	require.Equal(t, http.StatusOK, w.Code)
	var cart cartapp.Response
	decodeData(t, w, &cart)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 2, cart.ItemCount)
	assert.True(t, cart.Total.Equal(decimal.NewFromInt(48)), cart.Total.String())
}

func TestCartHandler_MergeChecksCombinedQuantity(t *testing.T) {
	s := newStorefront(t)
	p := s.seedProduct("Rose Quartz Ring", 18, 3)
	body := fmt.Sprintf(`{"product_id":%q,"quantity":2}`, p.ID)

	require.Equal(t, http.StatusOK, s.do(request{method: http.MethodPost, path: "/cart/items", body: body, session: "sess-merge"}).Code)
	w := s.do(request{method: http.MethodPost, path: "/cart/items", body: body, session: "sess-merge"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, dto.ErrCodeInsufficientStock, errorCodeOf(t, w))
}

func TestCartHandler_UpdateRemoveClear(t *testing.T) {
	s := newStorefront(t)
	tiger := s.seedProduct("Tiger's Eye Bracelet", 24, 10)
	moon := s.seedProduct("Moonstone Pendant", 40, 10)
	for _, p := range []uuid.UUID{tiger.ID, moon.ID} {
		w := s.do(request{method: http.MethodPost, path: "/cart/items", session: "sess-edit",
			body: fmt.Sprintf(`{"product_id":%q,"quantity":1}`, p)})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	}
	itemPath := func(id uuid.UUID) string { return "/cart/items/" + id.String() }

	w := s.do(request{method: http.MethodPut, path: itemPath(tiger.ID), body: `{"quantity":4}`, session: "sess-edit"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var cart cartapp.Response
	decodeData(t, w, &cart)
	assert.Equal(t, 5, cart.ItemCount)

	w = s.do(request{method: http.MethodPut, path: itemPath(uuid.New()), body: `{"quantity":1}`, session: "sess-edit"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(request{method: http.MethodPut, path: "/cart/items/nope", body: `{"quantity":1}`, session: "sess-edit"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, dto.ErrCodeInvalidInput, errorCodeOf(t, w))

	w = s.do(request{method: http.MethodPut, path: itemPath(tiger.ID), body: `{"quantity":0}`, session: "sess-edit"})
	require.Equal(t, http.StatusOK, w.Code)
	decodeData(t, w, &cart)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, moon.ID, cart.Items[0].ProductID)

	w = s.do(request{method: http.MethodDelete, path: itemPath(moon.ID), session: "sess-edit"})
	require.Equal(t, http.StatusOK, w.Code)
	decodeData(t, w, &cart)
	assert.Empty(t, cart.Items)

	assert.Equal(t, http.StatusNoContent, s.do(request{method: http.MethodDelete, path: "/cart", session: "sess-edit"}).Code)
}

func TestCartHandler_SessionsAreIsolated(t *testing.T) {
	s := newStorefront(t)
	p := s.seedProduct("Citrine Point", 15, 5)
	w := s.do(request{method: http.MethodPost, path: "/cart/items", session: "sess-one",
		body: fmt.Sprintf(`{"product_id":%q,"quantity":1}`, p.ID)})
	require.Equal(t, http.StatusOK, w.Code)

	w = s.do(request{method: http.MethodGet, path: "/cart", session: "sess-two"})
	require.Equal(t, http.StatusOK, w.Code)
	var cart cartapp.Response
	decodeData(t, w, &cart)
	assert.Empty(t, cart.Items)
	assert.Equal(t, "sess-two", cart.SessionID)
}
