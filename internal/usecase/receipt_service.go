package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/kiranascan/backend/internal/domain"
	"github.com/kiranascan/backend/internal/extract"
)

// ReceiptService orchestrates the receipt flow: image preprocessing, OCR,
// catalog-matched extraction, and persisting confirmed receipts and bills.
type ReceiptService struct {
	engine     domain.OCREngine
	catalog    domain.CatalogRepository
	receipts   domain.ReceiptRepository
	bills      domain.BillRepository
	cache      domain.SnapshotCache
	pipeline   *extract.Pipeline
	preprocess func([]byte) ([]byte, error)
	log        zerolog.Logger
	now        func() time.Time
}

// NewReceiptService wires the receipt service. preprocess may be nil when
// images go to the OCR engine untouched.
func NewReceiptService(
	engine domain.OCREngine,
	catalog domain.CatalogRepository,
	receipts domain.ReceiptRepository,
	bills domain.BillRepository,
	cache domain.SnapshotCache,
	pipeline *extract.Pipeline,
	preprocess func([]byte) ([]byte, error),
	log zerolog.Logger,
) *ReceiptService {
	return &ReceiptService{
		engine:     engine,
		catalog:    catalog,
		receipts:   receipts,
		bills:      bills,
		cache:      cache,
		pipeline:   pipeline,
		preprocess: preprocess,
		log:        log,
		now:        time.Now,
	}
}

// ProcessReceipt runs the full extraction flow on a receipt image and
// returns matched line items plus intermediate data for correction UIs.
// A catalog snapshot failure degrades to unmatched extraction instead of
// failing the upload.
func (s *ReceiptService) ProcessReceipt(ctx context.Context, image []byte) (*domain.ReceiptExtraction, error) {
	prepared := image
	if s.preprocess != nil {
		p, err := s.preprocess(image)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrUnsupportedFile, err)
		}
		prepared = p
	}

	fragments, err := s.engine.Recognize(ctx, prepared)
	if err != nil {
		return nil, err
	}

	snapshot := s.catalogSnapshot(ctx)
	extraction, err := s.pipeline.Process(ctx, fragments, snapshot)
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Int("fragments", len(fragments)).
		Int("lines", len(extraction.Lines)).
		Int("items", len(extraction.Items)).
		Msg("receipt processed")
	return extraction, nil
}

// DebugRecognize returns raw OCR output without cleaning or matching.
func (s *ReceiptService) DebugRecognize(ctx context.Context, image []byte) ([]domain.RawFragment, error) {
	prepared := image
	if s.preprocess != nil {
		p, err := s.preprocess(image)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrUnsupportedFile, err)
		}
		prepared = p
	}
	return s.engine.Recognize(ctx, prepared)
}

// SaveReceiptItems persists a confirmed receipt and increments stock for
// every item tied to a catalog entry. Quantities must be positive.
func (s *ReceiptService) SaveReceiptItems(ctx context.Context, items []domain.ReceiptItem) (*domain.Receipt, error) {
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: receipt has no items", domain.ErrInvalidRequest)
	}
	for _, item := range items {
		if item.ItemName == "" {
			return nil, fmt.Errorf("%w: item name is required", domain.ErrInvalidRequest)
		}
		if item.Quantity <= 0 {
			return nil, fmt.Errorf("%w: quantity for %q must be positive", domain.ErrInvalidRequest, item.ItemName)
		}
	}

	receipt := &domain.Receipt{Items: items}
	if err := s.receipts.Save(ctx, receipt); err != nil {
		return nil, err
	}

	adjusted := false
	for _, item := range items {
		if item.ItemID == "" {
			continue
		}
		if _, err := s.catalog.AdjustStock(ctx, item.ItemID, item.Quantity); err != nil {
			s.log.Warn().Err(err).Str("item_id", item.ItemID).Msg("stock increment failed")
			continue
		}
		adjusted = true
	}
	if adjusted {
		s.cache.Invalidate()
	}
	return receipt, nil
}

// BillRequest is one requested bill line: an inventory item and quantity.
type BillRequest struct {
	ItemID   string  `json:"itemId"`
	Quantity float64 `json:"quantity"`
}

// CreateBill decrements stock for each requested item and produces a
// priced bill. Any unknown item or insufficient stock fails the whole
// request before stock is touched.
func (s *ReceiptService) CreateBill(ctx context.Context, requests []BillRequest) (*domain.Bill, error) {
	if len(requests) == 0 {
		return nil, fmt.Errorf("%w: bill has no items", domain.ErrInvalidRequest)
	}

	// Validate everything up front so a mid-bill failure cannot leave
	// stock half-decremented.
	entries := make([]*domain.CatalogEntry, len(requests))
	for i, req := range requests {
		if req.Quantity <= 0 {
			return nil, fmt.Errorf("%w: quantity must be positive", domain.ErrInvalidRequest)
		}
		entry, err := s.catalog.Get(ctx, req.ItemID)
		if err != nil {
			return nil, err
		}
		if entry.StockQuantity < req.Quantity {
			return nil, fmt.Errorf("%w: %s has %.2f in stock, %.2f requested",
				domain.ErrInsufficientStock, entry.ItemName, entry.StockQuantity, req.Quantity)
		}
		entries[i] = entry
	}

	now := s.now()
	bill := &domain.Bill{
		Number:    fmt.Sprintf("BILL-%s", now.Format("20060102-150405")),
		CreatedAt: now,
	}
	for i, req := range requests {
		if _, err := s.catalog.AdjustStock(ctx, req.ItemID, -req.Quantity); err != nil {
			return nil, err
		}
		line := domain.BillLine{
			ItemName:  entries[i].ItemName,
			Quantity:  req.Quantity,
			UnitPrice: entries[i].SellingPrice,
			Total:     req.Quantity * entries[i].SellingPrice,
		}
		bill.Lines = append(bill.Lines, line)
		bill.TotalAmount += line.Total
	}

	if err := s.bills.Save(ctx, bill); err != nil {
		return nil, err
	}
	s.cache.Invalidate()

	s.log.Info().Str("bill", bill.Number).Float64("total", bill.TotalAmount).Msg("bill created")
	return bill, nil
}

// GetBill returns a saved bill by number.
func (s *ReceiptService) GetBill(ctx context.Context, number string) (*domain.Bill, error) {
	return s.bills.GetByNumber(ctx, number)
}

// ListBills returns all saved bills, newest first.
func (s *ReceiptService) ListBills(ctx context.Context) ([]domain.Bill, error) {
	return s.bills.List(ctx)
}

// GetReceipt returns a saved receipt by ID.
func (s *ReceiptService) GetReceipt(ctx context.Context, id string) (*domain.Receipt, error) {
	return s.receipts.Get(ctx, id)
}

// ListReceipts returns all saved receipts, newest first.
func (s *ReceiptService) ListReceipts(ctx context.Context) ([]domain.Receipt, error) {
	return s.receipts.List(ctx)
}

// catalogSnapshot returns the current snapshot, serving from cache when
// fresh. Repository failures degrade to an empty catalog.
func (s *ReceiptService) catalogSnapshot(ctx context.Context) []domain.CatalogEntry {
	if snapshot, ok := s.cache.Get(ctx); ok {
		return snapshot
	}

	snapshot, err := s.catalog.Snapshot(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("catalog snapshot unavailable, matching disabled for this receipt")
		return nil
	}
	s.cache.Set(ctx, snapshot)
	return snapshot
}
