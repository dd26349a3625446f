package storage

import (
	"github.com/shopspring/decimal"

	"copart-watcher/models"
)

// LotStore is durable lot state plus an append-only price ledger.
type LotStore interface {
	// UpsertLot inserts a new lot or, on conflict on lot_id, refreshes only
	// price and updated_at. Descriptive fields keep their first-insert values.
	UpsertLot(record *models.LotRecord) error
	// AppendPriceHistory writes one ledger row per observation, whether or
	// not the price changed.
	AppendPriceHistory(lotID string, price decimal.Decimal) error
	// LatestPrice returns the most recently appended ledger price for lotID,
	// or false when the lot has no history yet.
	LatestPrice(lotID string) (decimal.Decimal, bool, error)
	Close() error
}
