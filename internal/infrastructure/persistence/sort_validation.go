package persistence

import (
	"strings"
)

// ValidateSortOrder normalizes the sort order to ASC or DESC.
// Returns "DESC" if the input is invalid or empty.
func ValidateSortOrder(orderDir string) string {
	normalized := strings.ToUpper(strings.TrimSpace(orderDir))
	if normalized == "ASC" {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField checks the sort field against a whitelist. User input
// ends up concatenated into ORDER BY, so anything off the list falls back
// to the default field.
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

// AccountSortFields contains allowed sort fields for ledger accounts
var AccountSortFields = map[string]bool{
	"id":                true,
	"created_at":        true,
	"updated_at":        true,
	"name":              true,
	"type":              true,
	"current_balance":   true,
	"credit_limit":      true,
	"transaction_count": true,
}

// MaterialSortFields contains allowed sort fields for materials
var MaterialSortFields = map[string]bool{
	"id":           true,
	"created_at":   true,
	"updated_at":   true,
	"name":         true,
	"category_id":  true,
	"average_cost": true,
}

// CategorySortFields contains allowed sort fields for categories
var CategorySortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"name":       true,
}

// WarehouseSortFields contains allowed sort fields for warehouses
var WarehouseSortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"name":       true,
	"location":   true,
	"capacity":   true,
}

// WarehouseStockSortFields contains allowed sort fields for stock projections
var WarehouseStockSortFields = map[string]bool{
	"id":            true,
	"created_at":    true,
	"updated_at":    true,
	"current_stock": true,
	"average_cost":  true,
	"minimum_stock": true,
}

// TransferSortFields contains allowed sort fields for transfers
var TransferSortFields = map[string]bool{
	"id":           true,
	"created_at":   true,
	"request_date": true,
	"status":       true,
}

// ProductionSortFields contains allowed sort fields for production runs
var ProductionSortFields = map[string]bool{
	"id":              true,
	"created_at":      true,
	"production_date": true,
	"status":          true,
	"total_cost":      true,
}
