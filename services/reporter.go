package services

import (
	"fmt"
	"strings"
	"time"

	"copart-watcher/models"
)

// PrintRunReport formats and prints the run summary to terminal
func PrintRunReport(summary *models.RunSummary) {
	if summary == nil {
		return
	}
	border := strings.Repeat("═", 55)
	thin := strings.Repeat("─", 55)

	fmt.Printf("\n╔%s╗\n", border)
	fmt.Printf("║%s║\n", center("COPART LOT SYNC REPORT ", 55))
	fmt.Printf("╚%s╝\n", border)

	fmt.Printf("\n RUN %s\n%s\n", summary.RunID, thin)
	fmt.Printf("  Pages Crawled        : %d\n", summary.Pages)
	fmt.Printf("  Lots Stored          : %d\n", summary.LotsProcessed)
	fmt.Printf("  Unique Lots          : %d\n", summary.UniqueLots)
	fmt.Printf("  Price Changes        : %d\n", summary.PriceChanges)
	fmt.Printf("  Notifications Sent   : %d\n", summary.NotificationsSent)
	fmt.Printf("  Errors               : %d\n", summary.Errors)
	fmt.Printf("  Duration             : %s\n", summary.Duration.Round(time.Millisecond))

	fmt.Printf("\n%s\n\n", border)
}

func center(s string, width int) string {
	runes := []rune(s)
	if len(runes) >= width {
		return s
	}
	pad := (width - len(runes)) / 2
	return strings.Repeat(" ", pad) + s + strings.Repeat(" ", width-len(runes)-pad)
}
