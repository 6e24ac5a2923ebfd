package domain

import "context"

// CatalogRepository defines the persistence interface for inventory items.
// Snapshot must return entries in a stable order so matching stays deterministic.
type CatalogRepository interface {
	Snapshot(ctx context.Context) ([]CatalogEntry, error)
	Get(ctx context.Context, itemID string) (*CatalogEntry, error)
	Add(ctx context.Context, entry CatalogEntry) (*CatalogEntry, error)
	Update(ctx context.Context, entry CatalogEntry) (*CatalogEntry, error)
	Delete(ctx context.Context, itemID string) error
	// AdjustStock applies a signed delta to an item's stock quantity.
	// A delta that would push stock below zero fails with ErrInsufficientStock.
	AdjustStock(ctx context.Context, itemID string, delta float64) (*CatalogEntry, error)
}

// ReceiptRepository persists confirmed receipts.
type ReceiptRepository interface {
	Save(ctx context.Context, receipt *Receipt) error
	Get(ctx context.Context, id string) (*Receipt, error)
	List(ctx context.Context) ([]Receipt, error)
}

// BillRepository persists generated bills.
type BillRepository interface {
	Save(ctx context.Context, bill *Bill) error
	GetByNumber(ctx context.Context, number string) (*Bill, error)
	List(ctx context.Context) ([]Bill, error)
}

// OCREngine is the external OCR collaborator: image bytes in, fragments out.
// An empty fragment slice is a valid result (no text found), not an error.
type OCREngine interface {
	Recognize(ctx context.Context, image []byte) ([]RawFragment, error)
}

// SnapshotCache holds a catalog snapshot with a TTL so receipt processing
// does not hit the repository on every upload. The cache owns staleness;
// the extraction core always receives an already-materialized snapshot.
type SnapshotCache interface {
	Get(ctx context.Context) ([]CatalogEntry, bool)
	Set(ctx context.Context, entries []CatalogEntry)
	Invalidate()
}
