package persistence

import (
	"strings"
)

// ValidateSortOrder normalizes the sort order to ASC or DESC, defaulting to DESC
func ValidateSortOrder(orderDir string) string {
	if strings.ToUpper(strings.TrimSpace(orderDir)) == "ASC" {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField returns sortField if whitelisted, otherwise defaultField
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if trimmed == "" || !allowedFields[trimmed] {
		return defaultField
	}
	return trimmed
}

// ProductSortFields contains allowed sort fields for products
var ProductSortFields = map[string]bool{
	"created_at":   true,
	"updated_at":   true,
	"name":         true,
	"price":        true,
	"stock":        true,
	"crystal_type": true,
	"category":     true,
}

// OrderSortFields contains allowed sort fields for orders
var OrderSortFields = map[string]bool{
	"created_at":     true,
	"updated_at":     true,
	"order_number":   true,
	"total_amount":   true,
	"status":         true,
	"customer_email": true,
}

// ContactSortFields contains allowed sort fields for contact messages
var ContactSortFields = map[string]bool{
	"created_at": true,
	"updated_at": true,
	"status":     true,
	"email":      true,
}

// orderClause builds a safe ORDER BY expression from untrusted input
func orderClause(orderBy, orderDir string, allowed map[string]bool) string {
	return ValidateSortField(orderBy, allowed, "created_at") + " " + ValidateSortOrder(orderDir)
}
