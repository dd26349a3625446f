package storage

import (
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"copart-watcher/models"
)

// MemoryStore keeps lots and the price ledger in memory with the same
// semantics as PostgresStore, including the unique link constraint. It backs
// tests and database-free experiments.
type MemoryStore struct {
	mu      sync.Mutex
	lots    map[string]*models.Lot
	links   map[string]string // link -> lot_id, mirrors the UNIQUE constraint
	history []models.PriceHistoryEntry
	nextID  int64
	now     func() time.Time
}

// NewMemoryStore creates an empty store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		lots:   make(map[string]*models.Lot),
		links:  make(map[string]string),
		nextID: 1,
		now:    time.Now,
	}
}

// UpsertLot inserts the lot or refreshes price/updated_at on conflict
func (s *MemoryStore) UpsertLot(r *models.LotRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.lots[r.LotID]; ok {
		existing.Price = r.Price
		existing.UpdatedAt = s.now()
		return nil
	}

	if owner, ok := s.links[r.Link]; ok && owner != r.LotID {
		return fmt.Errorf("upsert lot %s: link %q already belongs to lot %s", r.LotID, r.Link, owner)
	}

	now := s.now()
	s.lots[r.LotID] = &models.Lot{
		LotID:     r.LotID,
		Link:      r.Link,
		Name:      r.Name,
		Title:     r.Title,
		Dealer:    r.Dealer,
		Price:     r.Price,
		ImageURLs: append([]string(nil), r.ImageURLs...),
		CreatedAt: now,
		UpdatedAt: now,
		Status:    "active",
	}
	s.links[r.Link] = r.LotID
	return nil
}

// AppendPriceHistory records one observed price in the ledger
func (s *MemoryStore) AppendPriceHistory(lotID string, price decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.history = append(s.history, models.PriceHistoryEntry{
		ID:        s.nextID,
		LotID:     lotID,
		Price:     price,
		CreatedAt: s.now(),
	})
	s.nextID++
	return nil
}

// LatestPrice returns the newest ledger price for the lot
func (s *MemoryStore) LatestPrice(lotID string) (decimal.Decimal, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := len(s.history) - 1; i >= 0; i-- {
		if s.history[i].LotID == lotID {
			return s.history[i].Price, true, nil
		}
	}
	return decimal.Decimal{}, false, nil
}

// Lot returns a copy of the persisted state of one lot
func (s *MemoryStore) Lot(lotID string) (*models.Lot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	lot, ok := s.lots[lotID]
	if !ok {
		return nil, false
	}
	cp := *lot
	cp.ImageURLs = append([]string(nil), lot.ImageURLs...)
	return &cp, true
}

// LotCount returns the number of stored lots
func (s *MemoryStore) LotCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.lots)
}

// History returns the ledger rows for one lot in insertion order
func (s *MemoryStore) History(lotID string) []models.PriceHistoryEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []models.PriceHistoryEntry
	for _, e := range s.history {
		if e.LotID == lotID {
			out = append(out, e)
		}
	}
	return out
}

// Close is a no-op
func (s *MemoryStore) Close() error { return nil }
