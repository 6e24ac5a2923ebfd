package usecase

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/kiranascan/backend/internal/domain"
	"github.com/kiranascan/backend/internal/extract"
	"github.com/kiranascan/backend/internal/infrastructure/inventory"
)

const expiryDateLayout = "2006-01-02"

// InventoryServiceConfig tunes stock-level reporting.
type InventoryServiceConfig struct {
	LowStockThreshold float64
	ExpiryWarningDays int
}

// InventoryService implements catalog management: CRUD, stock operations,
// stock-level queries, fuzzy search and bulk import.
type InventoryService struct {
	catalog domain.CatalogRepository
	cache   domain.SnapshotCache
	matcher *extract.Matcher
	cfg     InventoryServiceConfig
	log     zerolog.Logger
	now     func() time.Time
}

// NewInventoryService wires the inventory service. The matcher is shared
// with receipt extraction so search and matching rank identically.
func NewInventoryService(
	catalog domain.CatalogRepository,
	cache domain.SnapshotCache,
	matcher *extract.Matcher,
	cfg InventoryServiceConfig,
	log zerolog.Logger,
) *InventoryService {
	if cfg.LowStockThreshold <= 0 {
		cfg.LowStockThreshold = 10
	}
	if cfg.ExpiryWarningDays <= 0 {
		cfg.ExpiryWarningDays = 30
	}
	return &InventoryService{
		catalog: catalog,
		cache:   cache,
		matcher: matcher,
		cfg:     cfg,
		log:     log,
		now:     time.Now,
	}
}

// AddItem validates and stores a new catalog entry.
func (s *InventoryService) AddItem(ctx context.Context, entry domain.CatalogEntry) (*domain.CatalogEntry, error) {
	if err := validateEntry(entry); err != nil {
		return nil, err
	}
	added, err := s.catalog.Add(ctx, entry)
	if err != nil {
		return nil, err
	}
	s.cache.Invalidate()
	return added, nil
}

// GetItem returns one catalog entry by ID.
func (s *InventoryService) GetItem(ctx context.Context, itemID string) (*domain.CatalogEntry, error) {
	return s.catalog.Get(ctx, itemID)
}

// UpdateItem validates and replaces an existing entry.
func (s *InventoryService) UpdateItem(ctx context.Context, entry domain.CatalogEntry) (*domain.CatalogEntry, error) {
	if entry.ItemID == "" {
		return nil, fmt.Errorf("%w: item id is required", domain.ErrInvalidRequest)
	}
	if err := validateEntry(entry); err != nil {
		return nil, err
	}
	updated, err := s.catalog.Update(ctx, entry)
	if err != nil {
		return nil, err
	}
	s.cache.Invalidate()
	return updated, nil
}

// DeleteItem removes an entry.
func (s *InventoryService) DeleteItem(ctx context.Context, itemID string) error {
	if err := s.catalog.Delete(ctx, itemID); err != nil {
		return err
	}
	s.cache.Invalidate()
	return nil
}

// ListItems returns the full catalog in stable order.
func (s *InventoryService) ListItems(ctx context.Context) ([]domain.CatalogEntry, error) {
	return s.catalog.Snapshot(ctx)
}

// UpdateStock applies a signed stock delta to one item.
func (s *InventoryService) UpdateStock(ctx context.Context, itemID string, delta float64) (*domain.CatalogEntry, error) {
	entry, err := s.catalog.AdjustStock(ctx, itemID, delta)
	if err != nil {
		return nil, err
	}
	s.cache.Invalidate()
	return entry, nil
}

// SearchResult pairs a catalog entry with its match diagnostics.
type SearchResult struct {
	Entry           domain.CatalogEntry `json:"item"`
	SimilarityScore float64             `json:"similarityScore"`
	MatchedField    string              `json:"matchedField"`
}

// Search ranks catalog entries against a free-text query using the same
// fuzzy matcher the receipt pipeline uses. Entries below the acceptance
// threshold are omitted.
func (s *InventoryService) Search(ctx context.Context, query string, limit int) ([]SearchResult, error) {
	snapshot, err := s.catalog.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	results := make([]SearchResult, 0, len(snapshot))
	for i := range snapshot {
		match := s.matcher.Match(query, snapshot[i:i+1])
		if match == nil {
			continue
		}
		results = append(results, SearchResult{
			Entry:           snapshot[i],
			SimilarityScore: match.SimilarityScore,
			MatchedField:    match.MatchedField,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].SimilarityScore > results[j].SimilarityScore
	})
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

// LowStock returns items whose stock is at or below the configured
// threshold but not empty.
func (s *InventoryService) LowStock(ctx context.Context) ([]domain.CatalogEntry, error) {
	return s.filter(ctx, func(e domain.CatalogEntry) bool {
		return e.StockQuantity > 0 && e.StockQuantity <= s.cfg.LowStockThreshold
	})
}

// OutOfStock returns items with zero stock.
func (s *InventoryService) OutOfStock(ctx context.Context) ([]domain.CatalogEntry, error) {
	return s.filter(ctx, func(e domain.CatalogEntry) bool {
		return e.StockQuantity == 0
	})
}

// ExpiringSoon returns items whose expiry date falls within the warning
// window, including items already expired. Entries without a parseable
// expiry date are skipped.
func (s *InventoryService) ExpiringSoon(ctx context.Context) ([]domain.CatalogEntry, error) {
	cutoff := s.now().AddDate(0, 0, s.cfg.ExpiryWarningDays)
	return s.filter(ctx, func(e domain.CatalogEntry) bool {
		if e.ExpiryDate == "" {
			return false
		}
		expiry, err := time.Parse(expiryDateLayout, e.ExpiryDate)
		if err != nil {
			return false
		}
		return !expiry.After(cutoff)
	})
}

// Categories returns the distinct non-empty categories, sorted.
func (s *InventoryService) Categories(ctx context.Context) ([]string, error) {
	return s.distinct(ctx, func(e domain.CatalogEntry) string { return e.Category })
}

// Brands returns the distinct usable brands, sorted.
func (s *InventoryService) Brands(ctx context.Context) ([]string, error) {
	return s.distinct(ctx, func(e domain.CatalogEntry) string {
		if !e.HasBrand() {
			return ""
		}
		return e.Brand
	})
}

// Summary aggregates stock-level statistics over the whole catalog.
func (s *InventoryService) Summary(ctx context.Context) (*domain.InventorySummary, error) {
	snapshot, err := s.catalog.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	cutoff := s.now().AddDate(0, 0, s.cfg.ExpiryWarningDays)
	summary := &domain.InventorySummary{TotalItems: len(snapshot)}
	for _, e := range snapshot {
		switch {
		case e.StockQuantity == 0:
			summary.OutOfStockItems++
		case e.StockQuantity <= s.cfg.LowStockThreshold:
			summary.LowStockItems++
		}
		if e.ExpiryDate != "" {
			if expiry, err := time.Parse(expiryDateLayout, e.ExpiryDate); err == nil && !expiry.After(cutoff) {
				summary.ExpiringSoonItems++
			}
		}
		summary.TotalValue += e.SellingPrice * e.StockQuantity
	}
	if summary.TotalItems > 0 {
		summary.AvgValue = summary.TotalValue / float64(summary.TotalItems)
	}
	return summary, nil
}

// ImportCatalog bulk-loads entries from a .csv or .xlsx export. Rows the
// parser skipped are reported in the result; rows that fail validation
// are counted as skipped too.
func (s *InventoryService) ImportCatalog(ctx context.Context, r io.Reader, filename string) (*inventory.ImportResult, error) {
	entries, result, err := inventory.ReadCatalogFile(r, filename)
	if err != nil {
		return nil, err
	}

	imported := 0
	for _, entry := range entries {
		if err := validateEntry(entry); err != nil {
			result.Skipped++
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", entry.ItemName, err))
			continue
		}
		if _, err := s.catalog.Add(ctx, entry); err != nil {
			result.Skipped++
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", entry.ItemName, err))
			continue
		}
		imported++
	}
	result.Imported = imported

	if imported > 0 {
		s.cache.Invalidate()
	}
	s.log.Info().Int("imported", imported).Int("skipped", result.Skipped).Str("file", filename).Msg("catalog import finished")
	return result, nil
}

// validateEntry checks required fields and price consistency: prices are
// non-negative, base <= selling <= MRP (when MRP is set), GST is a
// percentage.
func validateEntry(entry domain.CatalogEntry) error {
	if strings.TrimSpace(entry.ItemName) == "" {
		return fmt.Errorf("%w: item name is required", domain.ErrInvalidRequest)
	}
	if entry.BasePrice < 0 || entry.SellingPrice < 0 || entry.MRP < 0 {
		return fmt.Errorf("%w: prices must be non-negative", domain.ErrInvalidPrice)
	}
	if entry.SellingPrice > 0 && entry.BasePrice > entry.SellingPrice {
		return fmt.Errorf("%w: base price %.2f exceeds selling price %.2f", domain.ErrInvalidPrice, entry.BasePrice, entry.SellingPrice)
	}
	if entry.MRP > 0 && entry.SellingPrice > entry.MRP {
		return fmt.Errorf("%w: selling price %.2f exceeds MRP %.2f", domain.ErrInvalidPrice, entry.SellingPrice, entry.MRP)
	}
	if entry.GSTPercent < 0 || entry.GSTPercent > 100 {
		return fmt.Errorf("%w: gst must be between 0 and 100", domain.ErrInvalidPrice)
	}
	if entry.StockQuantity < 0 {
		return fmt.Errorf("%w: stock quantity must be non-negative", domain.ErrInvalidRequest)
	}
	if entry.ExpiryDate != "" {
		if _, err := time.Parse(expiryDateLayout, entry.ExpiryDate); err != nil {
			return fmt.Errorf("%w: expiry date must be YYYY-MM-DD", domain.ErrInvalidRequest)
		}
	}
	return nil
}

func (s *InventoryService) filter(ctx context.Context, keep func(domain.CatalogEntry) bool) ([]domain.CatalogEntry, error) {
	snapshot, err := s.catalog.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domain.CatalogEntry, 0)
	for _, e := range snapshot {
		if keep(e) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *InventoryService) distinct(ctx context.Context, key func(domain.CatalogEntry) string) ([]string, error) {
	snapshot, err := s.catalog.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]struct{})
	out := make([]string, 0)
	for _, e := range snapshot {
		k := key(e)
		if k == "" {
			continue
		}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	sort.Strings(out)
	return out, nil
}
