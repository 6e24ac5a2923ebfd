package domain

import "time"

// Point is a pixel coordinate in the receipt image.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// RawFragment is one OCR detection: a bounding polygon with recognized text.
// The polygon corners are ordered top-left, top-right, bottom-right, bottom-left.
type RawFragment struct {
	Polygon    []Point `json:"polygon"`
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"` // 0..1
}

// ReconstructedLine is a visually coherent row of receipt text, merged from
// fragments in left-to-right order.
type ReconstructedLine struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
}

// MatchResult is the outcome of fuzzy-matching an extracted name against the
// catalog. A nil MatchResult means no entry cleared the acceptance threshold.
type MatchResult struct {
	Item            *CatalogEntry `json:"inventoryItem"`
	SimilarityScore float64       `json:"similarityScore"` // 0..1, higher is better
	MatchedField    string        `json:"matchedField"`    // "name", "brand_name" or "category_name"
	ExtractedName   string        `json:"extractedName"`
	MatchedName     string        `json:"matchedName"`
}

// ExtractedLineItem is one line of sale recovered from a receipt image.
// Item holds the catalog's canonical name when matched, otherwise the
// title-cased cleaned text. Quantity is nil when left for manual entry.
type ExtractedLineItem struct {
	Item        string       `json:"item"`
	RawText     string       `json:"rawText"`
	CleanedName string       `json:"cleanedName"`
	Quantity    *float64     `json:"quantity"`
	Unit        string       `json:"unit,omitempty"`
	Confidence  float64      `json:"confidence"`
	Match       *MatchResult `json:"fuzzyMatch,omitempty"`
}

// ReceiptExtraction bundles the final item list with the intermediate data
// callers use for manual-correction UIs.
type ReceiptExtraction struct {
	Items     []ExtractedLineItem `json:"items"`
	Lines     []ReconstructedLine `json:"reconstructedLines"`
	Fragments []RawFragment       `json:"rawFragments"`
}

// ReceiptItem is a confirmed line item with its manually entered quantity.
type ReceiptItem struct {
	ItemName     string  `json:"itemName"`
	ItemID       string  `json:"itemId,omitempty"`
	Quantity     float64 `json:"quantity"`
	SellingPrice float64 `json:"sellingPrice"`
	MRP          float64 `json:"mrp,omitempty"`
}

// Receipt is a saved set of confirmed receipt items.
type Receipt struct {
	ID        string        `json:"id"`
	Items     []ReceiptItem `json:"items"`
	CreatedAt time.Time     `json:"createdAt"`
	UpdatedAt time.Time     `json:"updatedAt"`
}

// BillLine is one priced row of a customer bill.
type BillLine struct {
	ItemName  string  `json:"itemName"`
	Quantity  float64 `json:"quantity"`
	UnitPrice float64 `json:"unitPrice"`
	Total     float64 `json:"total"`
}

// Bill is a generated customer bill with computed totals.
type Bill struct {
	Number      string     `json:"billNumber"`
	Lines       []BillLine `json:"lines"`
	TotalAmount float64    `json:"totalAmount"`
	CreatedAt   time.Time  `json:"createdAt"`
}
