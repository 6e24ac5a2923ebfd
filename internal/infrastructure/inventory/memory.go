package inventory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kiranascan/backend/internal/domain"
)

// MemoryStore is a thread-safe in-memory catalog repository. It also
// persists receipts and bills, which keeps the service self-contained
// for single-shop deployments and tests.
type MemoryStore struct {
	mutex    sync.RWMutex
	items    map[string]domain.CatalogEntry
	receipts map[string]domain.Receipt
	bills    map[string]domain.Bill
	now      func() time.Time
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		items:    make(map[string]domain.CatalogEntry),
		receipts: make(map[string]domain.Receipt),
		bills:    make(map[string]domain.Bill),
		now:      time.Now,
	}
}

// Snapshot returns all catalog entries sorted by item ID so matching
// and listing stay deterministic across calls.
func (s *MemoryStore) Snapshot(ctx context.Context) ([]domain.CatalogEntry, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	out := make([]domain.CatalogEntry, 0, len(s.items))
	for _, entry := range s.items {
		out = append(out, entry)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ItemID < out[j].ItemID })
	return out, nil
}

// Get returns the entry with the given ID.
func (s *MemoryStore) Get(ctx context.Context, itemID string) (*domain.CatalogEntry, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	entry, ok := s.items[itemID]
	if !ok {
		return nil, domain.ErrItemNotFound
	}
	return &entry, nil
}

// Add stores a new entry. A missing ItemID is assigned a fresh UUID.
func (s *MemoryStore) Add(ctx context.Context, entry domain.CatalogEntry) (*domain.CatalogEntry, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if entry.ItemID == "" {
		entry.ItemID = uuid.NewString()
	}
	now := s.now()
	entry.CreatedAt = now
	entry.UpdatedAt = now

	s.items[entry.ItemID] = entry
	return &entry, nil
}

// Update replaces an existing entry, preserving its creation time.
func (s *MemoryStore) Update(ctx context.Context, entry domain.CatalogEntry) (*domain.CatalogEntry, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	existing, ok := s.items[entry.ItemID]
	if !ok {
		return nil, domain.ErrItemNotFound
	}
	entry.CreatedAt = existing.CreatedAt
	entry.UpdatedAt = s.now()

	s.items[entry.ItemID] = entry
	return &entry, nil
}

// Delete removes an entry.
func (s *MemoryStore) Delete(ctx context.Context, itemID string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if _, ok := s.items[itemID]; !ok {
		return domain.ErrItemNotFound
	}
	delete(s.items, itemID)
	return nil
}

// AdjustStock applies a signed delta to an item's stock quantity.
func (s *MemoryStore) AdjustStock(ctx context.Context, itemID string, delta float64) (*domain.CatalogEntry, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	entry, ok := s.items[itemID]
	if !ok {
		return nil, domain.ErrItemNotFound
	}
	updated := entry.StockQuantity + delta
	if updated < 0 {
		return nil, domain.ErrInsufficientStock
	}
	entry.StockQuantity = updated
	entry.UpdatedAt = s.now()

	s.items[itemID] = entry
	return &entry, nil
}

// SaveReceipt stores a confirmed receipt, assigning an ID when absent.
func (s *MemoryStore) SaveReceipt(ctx context.Context, receipt *domain.Receipt) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if receipt.ID == "" {
		receipt.ID = uuid.NewString()
	}
	now := s.now()
	if receipt.CreatedAt.IsZero() {
		receipt.CreatedAt = now
	}
	receipt.UpdatedAt = now

	s.receipts[receipt.ID] = *receipt
	return nil
}

// GetReceipt returns a saved receipt by ID.
func (s *MemoryStore) GetReceipt(ctx context.Context, id string) (*domain.Receipt, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	receipt, ok := s.receipts[id]
	if !ok {
		return nil, domain.ErrReceiptNotFound
	}
	return &receipt, nil
}

// ListReceipts returns all saved receipts, newest first.
func (s *MemoryStore) ListReceipts(ctx context.Context) ([]domain.Receipt, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	out := make([]domain.Receipt, 0, len(s.receipts))
	for _, receipt := range s.receipts {
		out = append(out, receipt)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// SaveBill stores a generated bill keyed by its bill number.
func (s *MemoryStore) SaveBill(ctx context.Context, bill *domain.Bill) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.bills[bill.Number] = *bill
	return nil
}

// GetBill returns a bill by number.
func (s *MemoryStore) GetBill(ctx context.Context, number string) (*domain.Bill, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	bill, ok := s.bills[number]
	if !ok {
		return nil, domain.ErrBillNotFound
	}
	return &bill, nil
}

// ListBills returns all bills, newest first.
func (s *MemoryStore) ListBills(ctx context.Context) ([]domain.Bill, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	out := make([]domain.Bill, 0, len(s.bills))
	for _, bill := range s.bills {
		out = append(out, bill)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// Receipts exposes the store as a domain.ReceiptRepository.
func (s *MemoryStore) Receipts() domain.ReceiptRepository { return receiptView{s} }

// Bills exposes the store as a domain.BillRepository.
func (s *MemoryStore) Bills() domain.BillRepository { return billView{s} }

type receiptView struct{ store *MemoryStore }

func (v receiptView) Save(ctx context.Context, receipt *domain.Receipt) error {
	return v.store.SaveReceipt(ctx, receipt)
}

func (v receiptView) Get(ctx context.Context, id string) (*domain.Receipt, error) {
	return v.store.GetReceipt(ctx, id)
}

func (v receiptView) List(ctx context.Context) ([]domain.Receipt, error) {
	return v.store.ListReceipts(ctx)
}

type billView struct{ store *MemoryStore }

func (v billView) Save(ctx context.Context, bill *domain.Bill) error {
	return v.store.SaveBill(ctx, bill)
}

func (v billView) GetByNumber(ctx context.Context, number string) (*domain.Bill, error) {
	return v.store.GetBill(ctx, number)
}

func (v billView) List(ctx context.Context) ([]domain.Bill, error) {
	return v.store.ListBills(ctx)
}
