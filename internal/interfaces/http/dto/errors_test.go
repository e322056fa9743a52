package dto

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetHTTPStatus(t *testing.T) {
	tests := []struct {
		code     string
		expected int
	}{
		{ErrCodeInternal, http.StatusInternalServerError},
		{ErrCodeValidation, http.StatusBadRequest},
		{ErrCodeUnauthorized, http.StatusUnauthorized},
		{ErrCodeTokenExpired, http.StatusUnauthorized},
		{ErrCodeForbidden, http.StatusForbidden},
		{ErrCodeNotFound, http.StatusNotFound},
		{ErrCodeAlreadyExists, http.StatusConflict},
		{ErrCodeConcurrencyConflict, http.StatusConflict},
		{ErrCodeInvalidState, http.StatusUnprocessableEntity},
		{ErrCodeInsufficientStock, http.StatusUnprocessableEntity},
		{ErrCodeEmptyCart, http.StatusUnprocessableEntity},
		{ErrCodeProductUnavailable, http.StatusUnprocessableEntity},
		{ErrCodeInvalidInput, http.StatusBadRequest},
		{ErrCodeRateLimited, http.StatusTooManyRequests},
		{ErrCodeStorageUnavailable, http.StatusServiceUnavailable},
		{ErrCodeReceiptUnavailable, http.StatusServiceUnavailable},
		{ErrCodeImageUnavailable, http.StatusServiceUnavailable},
		{"SOMETHING_ELSE", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.expected, GetHTTPStatus(tt.code))
		})
	}
}

func TestNormalizeErrorCode(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"NOT_FOUND", ErrCodeNotFound},
		{"INVALID_STATE", ErrCodeInvalidState},
		{"INVALID_INPUT", ErrCodeInvalidInput},
		{"INVALID_QUANTITY", ErrCodeInvalidInput},
		{"INVALID_SLUG", ErrCodeInvalidInput},
		{"EMPTY_CART", ErrCodeEmptyCart},
		{"PRODUCT_UNAVAILABLE", ErrCodeProductUnavailable},
		{"ALREADY_ACTIVE", ErrCodeInvalidState},
		{"DUPLICATE_ITEM", ErrCodeConflict},
		{"IMAGE_UNAVAILABLE", ErrCodeImageUnavailable},
		{ErrCodeNotFound, ErrCodeNotFound},
		{"CUSTOM_ERROR", "ERR_CUSTOM_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeErrorCode(tt.input))
		})
	}
}

func TestNormalizedDomainCodesHaveStatus(t *testing.T) {
	for _, code := range []string{
		"NOT_FOUND", "ALREADY_EXISTS", "INVALID_INPUT", "INVALID_STATE", "CONCURRENCY_CONFLICT",
		"INSUFFICIENT_STOCK", "EMPTY_CART", "PRODUCT_UNAVAILABLE", "DUPLICATE_ITEM", "ALREADY_ACTIVE",
		"ALREADY_INACTIVE", "STORAGE_UNAVAILABLE", "RECEIPT_UNAVAILABLE", "IMAGE_UNAVAILABLE",
		"UNAUTHORIZED", "FORBIDDEN", "VALIDATION_ERROR", "INTERNAL_ERROR",
	} {
		_, ok := errorStatus[NormalizeErrorCode(code)]
		assert.True(t, ok, "%s normalizes to %s which has no HTTP status", code, NormalizeErrorCode(code))
	}
}

func TestCheckoutRejectionsShareInvalidStateStatus(t *testing.T) {
	want := GetHTTPStatus(NormalizeErrorCode("INVALID_STATE"))
	for _, code := range []string{"EMPTY_CART", "INSUFFICIENT_STOCK", "PRODUCT_UNAVAILABLE"} {
		assert.Equal(t, want, GetHTTPStatus(NormalizeErrorCode(code)), code)
	}
}

func TestNewSuccessResponseWithMeta(t *testing.T) {
	resp := NewSuccessResponseWithMeta([]string{"a"}, 41, 2, 20)
	require.NotNil(t, resp.Meta)
	assert.True(t, resp.Success)
	assert.Equal(t, 3, resp.Meta.TotalPages)
	assert.Equal(t, 2, resp.Meta.Page)

	resp = NewSuccessResponseWithMeta(nil, 5, 0, 0)
	assert.Equal(t, 1, resp.Meta.Page)
	assert.Equal(t, DefaultPageSize, resp.Meta.PageSize)
	assert.Equal(t, 1, resp.Meta.TotalPages)
}

func TestErrorResponseJSON(t *testing.T) {
	resp := NewValidationErrorResponse("Request validation failed", "req-1", []ValidationDetail{
		{Field: "email", Message: "Invalid email format"},
	})

	raw, err := json.Marshal(resp)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, false, decoded["success"])
	assert.NotContains(t, decoded, "data")

	errInfo := decoded["error"].(map[string]any)
	assert.Equal(t, ErrCodeValidation, errInfo["code"])
	assert.Equal(t, "req-1", errInfo["request_id"])
	assert.Len(t, errInfo["details"], 1)
}
