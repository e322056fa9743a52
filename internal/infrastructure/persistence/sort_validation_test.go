package persistence

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateSortOrder(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"", "DESC"},
		{"ASC", "ASC"},
		{"  asc  ", "ASC"},
		{"desc", "DESC"},
		{"ASC; DROP TABLE products;--", "DESC"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, ValidateSortOrder(tt.input), "input %q", tt.input)
	}
}

func TestValidateSortField(t *testing.T) {
	assert.Equal(t, "price", ValidateSortField(" price ", ProductSortFields, "created_at"))
	assert.Equal(t, "created_at", ValidateSortField("", ProductSortFields, "created_at"))
	assert.Equal(t, "created_at", ValidateSortField("password", ProductSortFields, "created_at"))
}

func TestOrderClauseRejectsInjection(t *testing.T) {
	payloads := []string{
		"price; DROP TABLE products;--",
		"price' OR '1'='1",
		"price UNION SELECT * FROM orders",
		"CASE WHEN 1=1 THEN price ELSE name END",
	}
	for _, p := range payloads {
		assert.Equal(t, "created_at DESC", orderClause(p, p, ProductSortFields), p)
	}
	assert.Equal(t, "total_amount ASC", orderClause("total_amount", "asc", OrderSortFields))
}
