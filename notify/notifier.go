package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"copart-watcher/models"
)

// Notifier delivers a plain-text message to the configured channel. Delivery
// failures are never fatal to a run.
type Notifier interface {
	Send(ctx context.Context, text string) error
}

// FormatPriceChange renders the alert sent when a lot's price moves.
func FormatPriceChange(ev *models.PriceChangeEvent) string {
	return fmt.Sprintf(
		"🚨 Изменение цены!\nЛот: %s\nСтарая цена: $%s\nНовая цена: $%s\nСсылка: %s",
		ev.Name,
		formatAmount(ev.OldPrice),
		formatAmount(ev.NewPrice),
		ev.Link,
	)
}

// formatAmount renders 12345.67 as "12,345.67".
func formatAmount(d decimal.Decimal) string {
	s := d.StringFixed(2)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	intPart, fracPart, _ := strings.Cut(s, ".")
	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	out := b.String() + "." + fracPart
	if neg {
		return "-" + out
	}
	return out
}
