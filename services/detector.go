package services

import (
	"copart-watcher/models"
	"copart-watcher/storage"
	"copart-watcher/utils"
)

// ChangeDetector compares freshly scraped records against the stored ledger
type ChangeDetector struct {
	store  storage.LotStore
	logger *utils.Logger
}

// NewChangeDetector creates a new ChangeDetector
func NewChangeDetector(store storage.LotStore, logger *utils.Logger) *ChangeDetector {
	return &ChangeDetector{store: store, logger: logger}
}

// Detect returns one event per record whose price differs from the lot's
// latest ledger price. It must run before the batch is persisted: once the
// new price is in the ledger every record compares equal to itself. Records
// are evaluated independently, duplicates included; first sightings never
// produce an event.
func (d *ChangeDetector) Detect(records []*models.LotRecord) []*models.PriceChangeEvent {
	var events []*models.PriceChangeEvent
	for _, r := range records {
		prev, ok, err := d.store.LatestPrice(r.LotID)
		if err != nil {
			d.logger.Error("Price lookup failed for lot %s: %v", r.LotID, err)
			continue
		}
		if !ok {
			continue
		}
		if prev.Equal(r.Price) {
			continue
		}
		events = append(events, &models.PriceChangeEvent{
			LotID:    r.LotID,
			Name:     r.Name,
			Link:     r.Link,
			OldPrice: prev,
			NewPrice: r.Price,
		})
	}
	return events
}
