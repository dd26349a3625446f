package services

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"copart-watcher/models"
	"copart-watcher/storage"
	"copart-watcher/utils"
)

func newRecord(lotID string, price int64) *models.LotRecord {
	return &models.LotRecord{
		LotID: lotID,
		Link:  "https://x.test/lot/" + lotID,
		Name:  "lot " + lotID,
		Price: decimal.NewFromInt(price),
	}
}

func TestDetectFirstSightingProducesNoEvent(t *testing.T) {
	store := storage.NewMemoryStore()
	d := NewChangeDetector(store, utils.NewLogger())

	events := d.Detect([]*models.LotRecord{newRecord("a1", 100)})

	assert.Empty(t, events)
}

func TestDetectPriceChangeProducesOneEvent(t *testing.T) {
	store := storage.NewMemoryStore()
	require.NoError(t, store.AppendPriceHistory("a1", decimal.NewFromInt(100)))
	d := NewChangeDetector(store, utils.NewLogger())

	events := d.Detect([]*models.LotRecord{newRecord("a1", 120)})

	require.Len(t, events, 1)
	assert.Equal(t, "a1", events[0].LotID)
	assert.True(t, events[0].OldPrice.Equal(decimal.NewFromInt(100)))
	assert.True(t, events[0].NewPrice.Equal(decimal.NewFromInt(120)))
	assert.Equal(t, "lot a1", events[0].Name)
	assert.Equal(t, "https://x.test/lot/a1", events[0].Link)
}

func TestDetectUnchangedPriceProducesNoEvent(t *testing.T) {
	store := storage.NewMemoryStore()
	require.NoError(t, store.AppendPriceHistory("a1", decimal.NewFromInt(100)))
	d := NewChangeDetector(store, utils.NewLogger())

	events := d.Detect([]*models.LotRecord{newRecord("a1", 100)})

	assert.Empty(t, events)
}

func TestDetectEvaluatesEachRecordIndependently(t *testing.T) {
	store := storage.NewMemoryStore()
	require.NoError(t, store.AppendPriceHistory("a1", decimal.NewFromInt(100)))
	d := NewChangeDetector(store, utils.NewLogger())

	// The same lot twice in one batch: both are compared against the ledger.
	events := d.Detect([]*models.LotRecord{newRecord("a1", 120), newRecord("a1", 120)})

	assert.Len(t, events, 2)
}

func TestDetectUsesLatestLedgerPrice(t *testing.T) {
	store := storage.NewMemoryStore()
	require.NoError(t, store.AppendPriceHistory("a1", decimal.NewFromInt(100)))
	require.NoError(t, store.AppendPriceHistory("a1", decimal.NewFromInt(150)))
	d := NewChangeDetector(store, utils.NewLogger())

	events := d.Detect([]*models.LotRecord{newRecord("a1", 120)})

	require.Len(t, events, 1)
	assert.True(t, events[0].OldPrice.Equal(decimal.NewFromInt(150)))
}
