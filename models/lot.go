package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// LotRecord is one observation of a lot as scraped from a search results page.
// Every field carries a fallback value, so a record is always complete even
// when individual page elements were missing or malformed.
type LotRecord struct {
	LotID     string
	Link      string
	Name      string
	Title     string
	Dealer    string
	Price     decimal.Decimal
	ImageURLs []string
}

// Lot is the latest known state of a lot_id as persisted in storage.
type Lot struct {
	LotID     string
	Link      string
	Name      string
	Title     string
	Dealer    string
	Price     decimal.Decimal
	ImageURLs []string
	CreatedAt time.Time
	UpdatedAt time.Time
	Status    string
}

// PriceHistoryEntry is one row of the append-only price ledger. Entries are
// observations, not changes: one is written per record per run regardless of
// whether the price moved.
type PriceHistoryEntry struct {
	ID        int64
	LotID     string
	Price     decimal.Decimal
	CreatedAt time.Time
}

// PriceChangeEvent is a detected difference between a lot's previously stored
// price and its newly observed one.
type PriceChangeEvent struct {
	LotID    string
	Name     string
	Link     string
	OldPrice decimal.Decimal
	NewPrice decimal.Decimal
}

// RunSummary reports what happened during one sync run.
type RunSummary struct {
	RunID             string
	Pages             int
	LotsProcessed     int
	UniqueLots        int
	PriceChanges      int
	NotificationsSent int
	Errors            int
	Duration          time.Duration
}
