package utils

import "sync"

// LotTracker counts distinct lot links observed during one run. It never
// filters records: duplicates are still processed, only the count is unique.
type LotTracker struct {
	mu   sync.Mutex
	seen map[string]struct{}
}

// NewLotTracker creates a new tracker
func NewLotTracker() *LotTracker {
	return &LotTracker{seen: make(map[string]struct{})}
}

// Add records the link and reports whether it was new
func (t *LotTracker) Add(link string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, exists := t.seen[link]; exists {
		return false
	}
	t.seen[link] = struct{}{}
	return true
}

// Count returns the number of distinct links seen so far
func (t *LotTracker) Count() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.seen)
}
