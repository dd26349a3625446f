package copart

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"copart-watcher/models"
)

// Fallback values substituted when a field cannot be extracted.
const (
	FallbackLotID  = "unknown_id"
	FallbackName   = "Название не указано"
	FallbackLink   = "Ссылка недоступна"
	FallbackTitle  = "Сертификат отсутствует"
	FallbackDealer = "Дилер не указан"
)

var priceRegex = regexp.MustCompile(`\$?\s*([\d,]+(?:\.\d{1,2})?)`)

// FieldExtractor turns one lot block into a LotRecord. Extraction is total:
// every field is read independently and a field that cannot be read gets its
// fallback value, never an error.
type FieldExtractor struct {
	origin string
}

// NewFieldExtractor creates an extractor that resolves relative detail links
// against origin.
func NewFieldExtractor(origin string) *FieldExtractor {
	return &FieldExtractor{origin: strings.TrimRight(origin, "/")}
}

// Extract builds a complete record from a lot block.
func (e *FieldExtractor) Extract(block Node) *models.LotRecord {
	lotID, link := e.identity(block)
	return &models.LotRecord{
		LotID:     lotID,
		Link:      link,
		Name:      textField(block, SelectorLotName, FallbackName),
		Title:     textField(block, SelectorTitleCert, FallbackTitle),
		Dealer:    textField(block, SelectorDealer, FallbackDealer),
		Price:     priceField(block),
		ImageURLs: imageField(block),
	}
}

// identity reads the detail anchor once for both lot_id and link. The lot id
// is the path segment following "/lot/".
func (e *FieldExtractor) identity(block Node) (string, string) {
	a, err := block.FindOne(SelectorDetailLink)
	if err != nil {
		return FallbackLotID, FallbackLink
	}
	href, ok := a.Attr("href")
	if !ok || href == "" {
		return FallbackLotID, FallbackLink
	}

	id := FallbackLotID
	if _, rest, found := strings.Cut(href, "/lot/"); found {
		if seg, _, _ := strings.Cut(rest, "/"); seg != "" {
			id = seg
		}
	}

	link := href
	if !strings.HasPrefix(href, "http") {
		link = e.origin + href
	}
	return id, link
}

func textField(block Node, selector, fallback string) string {
	n, err := block.FindOne(selector)
	if err != nil {
		return fallback
	}
	text, err := n.Text()
	if err != nil {
		return fallback
	}
	if text = strings.TrimSpace(text); text == "" {
		return fallback
	}
	return text
}

func priceField(block Node) decimal.Decimal {
	n, err := block.FindOne(SelectorPrice)
	if err != nil {
		return decimal.Zero
	}
	text, err := n.Text()
	if err != nil {
		return decimal.Zero
	}
	return ParsePrice(text)
}

// ParsePrice extracts a decimal amount from localized currency text like
// "$12,345.67". Unparsable input yields zero.
func ParsePrice(raw string) decimal.Decimal {
	m := priceRegex.FindStringSubmatch(strings.TrimSpace(raw))
	if len(m) < 2 {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(strings.ReplaceAll(m[1], ",", ""))
	if err != nil {
		return decimal.Zero
	}
	return d
}

func imageField(block Node) []string {
	nodes, err := block.FindAll(SelectorLotImage)
	if err != nil {
		return nil
	}
	var urls []string
	for _, img := range nodes {
		if src, ok := img.Attr("src"); ok && src != "" {
			urls = append(urls, src)
		}
	}
	return urls
}
