package persistence

import (
	"strings"
)

// ValidateSortOrder validates and normalizes the sort order to ASC or DESC.
// Returns "DESC" as the default if the input is invalid or empty.
func ValidateSortOrder(orderDir string) string {
	if strings.EqualFold(strings.TrimSpace(orderDir), "asc") {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField validates the sort field against a whitelist of
// allowed columns. Returns the defaultField if the input is empty or not
// whitelisted. Order-by input never reaches SQL unvalidated.
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if trimmed == "" {
		return defaultField
	}
	if allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

// BillSortFields contains allowed sort fields for bills
var BillSortFields = map[string]bool{
	"id":             true,
	"created_at":     true,
	"updated_at":     true,
	"bill_number":    true,
	"bill_date":      true,
	"due_date":       true,
	"patient_name":   true,
	"status":         true,
	"total_amount":   true,
	"paid_amount":    true,
	"balance_amount": true,
}

// ServiceSortFields contains allowed sort fields for catalog services
var ServiceSortFields = map[string]bool{
	"id":           true,
	"created_at":   true,
	"updated_at":   true,
	"service_code": true,
	"service_name": true,
	"service_type": true,
	"category":     true,
	"unit_price":   true,
}
