package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"copart-watcher/models"
	"copart-watcher/notify"
	"copart-watcher/scraper/copart"
	"copart-watcher/storage"
	"copart-watcher/utils"
)

// SyncOrchestrator runs one crawl: paginate, extract, detect, persist, notify.
// Pages are processed strictly one at a time.
type SyncOrchestrator struct {
	paginator *copart.Paginator
	extractor *copart.FieldExtractor
	store     storage.LotStore
	detector  *ChangeDetector
	notifier  notify.Notifier    // nil disables alerts
	csv       *storage.CSVWriter // nil disables the audit export
	logger    *utils.Logger
}

// NewSyncOrchestrator wires the pipeline together
func NewSyncOrchestrator(
	paginator *copart.Paginator,
	extractor *copart.FieldExtractor,
	store storage.LotStore,
	detector *ChangeDetector,
	notifier notify.Notifier,
	csv *storage.CSVWriter,
	logger *utils.Logger,
) *SyncOrchestrator {
	return &SyncOrchestrator{
		paginator: paginator,
		extractor: extractor,
		store:     store,
		detector:  detector,
		notifier:  notifier,
		csv:       csv,
		logger:    logger,
	}
}

// Run crawls baseURL up to maxPages pages and reports what happened. Only a
// dead page session or cancellation aborts the crawl; every other failure is
// logged, counted, and skipped.
func (o *SyncOrchestrator) Run(ctx context.Context, baseURL string, maxPages int) (*models.RunSummary, error) {
	summary := &models.RunSummary{RunID: uuid.NewString()}
	start := time.Now()
	tracker := utils.NewLotTracker()
	var allRecords []*models.LotRecord

	o.logger.Info("Run %s: starting sync of %s (max %d pages)", summary.RunID, baseURL, maxPages)

	err := o.paginator.Each(ctx, baseURL, maxPages, func(page copart.Page) error {
		summary.Pages++
		records := make([]*models.LotRecord, 0, len(page.Lots))
		for i, lot := range page.Lots {
			record, eerr := o.extractRecord(lot)
			if eerr != nil {
				summary.Errors++
				o.logger.Error("Page %d: lot %d dropped: %v", page.Number, i+1, eerr)
				continue
			}
			records = append(records, record)
		}
		o.processBatch(ctx, summary, tracker, records)
		allRecords = append(allRecords, records...)
		return nil
	})

	if o.csv != nil && len(allRecords) > 0 {
		if werr := o.csv.WriteRecords(allRecords); werr != nil {
			summary.Errors++
			o.logger.Error("Run %s: CSV export failed: %v", summary.RunID, werr)
		}
	}

	summary.UniqueLots = tracker.Count()
	summary.Duration = time.Since(start)

	if err != nil {
		return summary, fmt.Errorf("run %s aborted: %w", summary.RunID, err)
	}
	o.logger.Info("Run %s: complete, %d lots stored across %d pages, %d price changes",
		summary.RunID, summary.LotsProcessed, summary.Pages, summary.PriceChanges)
	return summary, nil
}

// extractRecord shields the batch from a misbehaving node: one bad lot is
// dropped, its siblings survive.
func (o *SyncOrchestrator) extractRecord(lot copart.Node) (record *models.LotRecord, err error) {
	defer func() {
		if r := recover(); r != nil {
			record = nil
			err = fmt.Errorf("extraction panicked: %v", r)
		}
	}()
	return o.extractor.Extract(lot), nil
}

// processBatch applies the ordering that change detection depends on: compare
// against the stored ledger first, persist after, notify last. Persistence is
// best-effort per lot, not atomic over the batch.
func (o *SyncOrchestrator) processBatch(ctx context.Context, summary *models.RunSummary, tracker *utils.LotTracker, records []*models.LotRecord) {
	if len(records) == 0 {
		return
	}

	events := o.detector.Detect(records)

	for _, r := range records {
		if err := o.store.UpsertLot(r); err != nil {
			summary.Errors++
			o.logger.Error("Upsert failed for lot %s: %v", r.LotID, err)
			continue
		}
		if err := o.store.AppendPriceHistory(r.LotID, r.Price); err != nil {
			summary.Errors++
			o.logger.Error("History append failed for lot %s: %v", r.LotID, err)
			continue
		}
		summary.LotsProcessed++
		tracker.Add(r.Link)
	}

	summary.PriceChanges += len(events)
	for _, ev := range events {
		o.logger.Info("Price change for lot %s: %s -> %s",
			ev.LotID, ev.OldPrice.StringFixed(2), ev.NewPrice.StringFixed(2))
		if o.notifier == nil {
			continue
		}
		if err := o.notifier.Send(ctx, notify.FormatPriceChange(ev)); err != nil {
			summary.Errors++
			o.logger.Error("Notification failed for lot %s: %v", ev.LotID, err)
			continue
		}
		summary.NotificationsSent++
	}
}
