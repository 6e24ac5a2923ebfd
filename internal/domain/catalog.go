package domain

import "time"

// BrandAbsent is the sentinel stored when a catalog entry has no brand on record.
const BrandAbsent = "NA"

// CatalogEntry is one sellable item in the merchant's inventory.
type CatalogEntry struct {
	ItemID        string    `json:"itemId"`
	ItemName      string    `json:"itemName"`
	Brand         string    `json:"brand,omitempty"`
	Category      string    `json:"category,omitempty"`
	UnitSize      string    `json:"unitSize,omitempty"`
	BasePrice     float64   `json:"basePrice"`
	SellingPrice  float64   `json:"sellingPrice"`
	MRP           float64   `json:"mrp"`
	GSTPercent    float64   `json:"gst"`
	StockQuantity float64   `json:"stockQuantity"`
	ExpiryDate    string    `json:"expiryDate,omitempty"` // YYYY-MM-DD
	CreatedAt     time.Time `json:"createdAt,omitempty"`
	UpdatedAt     time.Time `json:"updatedAt,omitempty"`
}

// HasBrand reports whether the entry carries a usable brand for matching.
func (e CatalogEntry) HasBrand() bool {
	return e.Brand != "" && e.Brand != BrandAbsent
}

// HasCategory reports whether the entry carries a category for matching.
func (e CatalogEntry) HasCategory() bool {
	return e.Category != ""
}

// InventorySummary aggregates stock-level statistics across the catalog.
type InventorySummary struct {
	TotalItems        int     `json:"totalItems"`
	LowStockItems     int     `json:"lowStockItems"`
	OutOfStockItems   int     `json:"outOfStockItems"`
	ExpiringSoonItems int     `json:"expiringSoonItems"`
	TotalValue        float64 `json:"totalValue"`
	AvgValue          float64 `json:"avgValue"`
}
