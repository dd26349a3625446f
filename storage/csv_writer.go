package storage

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"copart-watcher/models"
	"copart-watcher/utils"
)

// CSVWriter writes the raw records observed during one run to a CSV file,
// as an audit trail next to the database state
type CSVWriter struct {
	filePath string
	logger   *utils.Logger
}

// NewCSVWriter creates a new CSVWriter
func NewCSVWriter(filePath string, logger *utils.Logger) *CSVWriter {
	return &CSVWriter{filePath: filePath, logger: logger}
}

// WriteRecords writes a slice of LotRecords to the CSV file
func (w *CSVWriter) WriteRecords(records []*models.LotRecord) error {
	// Ensure output directory exists
	dir := filepath.Dir(w.filePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	file, err := os.Create(w.filePath)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	header := []string{
		"lot_id", "link", "name", "title",
		"dealer", "price", "image_urls", "scraped_at",
	}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	scrapedAt := time.Now().Format(time.RFC3339)
	for _, r := range records {
		row := []string{
			r.LotID,
			r.Link,
			r.Name,
			r.Title,
			r.Dealer,
			r.Price.StringFixed(2),
			strings.Join(r.ImageURLs, ","),
			scrapedAt,
		}
		if err := writer.Write(row); err != nil {
			w.logger.Error("Failed to write CSV row for lot %s: %v", r.LotID, err)
		}
	}

	w.logger.Info("Scraped records written to: %s (%d rows)", w.filePath, len(records))
	return nil
}
