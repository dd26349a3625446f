package copart

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"copart-watcher/config"
	"copart-watcher/utils"
)

var totalEntriesRegex = regexp.MustCompile(`of\s+([\d,]+)\s+entries`)

// Page is one crawled results page. Lots is empty when the page failed to
// load or timed out.
type Page struct {
	Number int
	Lots   []Node
}

// Paginator drives a PageSource across the result pages of one search query.
// Every page is delivered, loaded or not; only a dead session aborts the walk.
type Paginator struct {
	source  PageSource
	logger  *utils.Logger
	limiter *utils.RateLimiter

	timeout      time.Duration
	maxRetries   int
	itemsPerPage int
	dynamic      bool
}

// NewPaginator creates a new Paginator
func NewPaginator(source PageSource, cfg *config.Config, logger *utils.Logger) *Paginator {
	return &Paginator{
		source:       source,
		logger:       logger,
		limiter:      utils.NewRateLimiter(cfg.PageDelay),
		timeout:      cfg.SelectorTimeout,
		maxRetries:   cfg.MaxRetries,
		itemsPerPage: cfg.ItemsPerPage,
		dynamic:      cfg.DynamicPaging,
	}
}

// Each navigates from page 1 and hands every page to fn in order. The walk is
// finite and not restartable: call Each again to start over from page 1.
func (p *Paginator) Each(ctx context.Context, baseURL string, maxPages int, fn func(page Page) error) error {
	if p.dynamic {
		return p.eachDynamic(ctx, baseURL, maxPages, fn)
	}
	return p.eachFixed(ctx, baseURL, maxPages, fn)
}

// eachFixed re-navigates for every page index using the page query parameter.
func (p *Paginator) eachFixed(ctx context.Context, baseURL string, maxPages int, fn func(Page) error) error {
	for page := 1; page <= maxPages; page++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if page > 1 {
			p.limiter.Wait()
		}
		lots, err := p.loadPage(ctx, pageURL(baseURL, page), page)
		if err != nil {
			return err
		}
		if err := fn(Page{Number: page, Lots: lots}); err != nil {
			return err
		}
	}
	return nil
}

// eachDynamic loads the first page once, derives the page count from the
// paginator status text, and advances by clicking the next page button.
func (p *Paginator) eachDynamic(ctx context.Context, baseURL string, maxPages int, fn func(Page) error) error {
	if err := p.navigate(ctx, baseURL); err != nil {
		if isFatal(ctx, err) {
			return err
		}
		p.logger.Error("Initial navigation failed: %v", err)
		return nil
	}

	total := p.totalPages(ctx)
	if total == 0 {
		p.logger.Warn("Paginator reported no entries, nothing to crawl")
		return nil
	}
	if maxPages > 0 && total > maxPages {
		total = maxPages
	}

	for page := 1; page <= total; page++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		lots, err := p.collectLots(ctx, page)
		if err != nil {
			return err
		}
		if err := fn(Page{Number: page, Lots: lots}); err != nil {
			return err
		}
		if page == total {
			break
		}
		if !p.nextPage(ctx, page+1) {
			p.logger.Warn("Could not advance to page %d, stopping early", page+1)
			break
		}
	}
	return nil
}

// loadPage navigates to url and collects the lot blocks, with retries on
// navigation errors. A timeout or failed page yields zero lots.
func (p *Paginator) loadPage(ctx context.Context, url string, page int) ([]Node, error) {
	err := utils.RetryWithBackoff(ctx, p.maxRetries, func() error {
		return p.source.Navigate(ctx, url)
	}, p.logger)
	if err != nil {
		if isFatal(ctx, err) {
			return nil, err
		}
		p.logger.Error("Page %d: navigation failed: %v", page, err)
		return nil, nil
	}
	return p.collectLots(ctx, page)
}

// collectLots waits for the lot list container and queries the lot blocks on
// the currently rendered page.
func (p *Paginator) collectLots(ctx context.Context, page int) ([]Node, error) {
	if err := p.source.WaitForSelector(ctx, SelectorLotBlock, p.timeout); err != nil {
		if isFatal(ctx, err) {
			return nil, err
		}
		if errors.Is(err, ErrWaitTimeout) {
			p.logger.Warn("Page %d: timed out waiting for lot blocks", page)
		} else {
			p.logger.Error("Page %d: wait failed: %v", page, err)
		}
		return nil, nil
	}
	lots, err := p.source.FindAll(ctx, SelectorLotBlock)
	if err != nil {
		if isFatal(ctx, err) {
			return nil, err
		}
		p.logger.Error("Page %d: lot query failed: %v", page, err)
		return nil, nil
	}
	p.logger.Info("Page %d: found %d lots", page, len(lots))
	return lots, nil
}

func (p *Paginator) navigate(ctx context.Context, url string) error {
	return utils.RetryWithBackoff(ctx, p.maxRetries, func() error {
		return p.source.Navigate(ctx, url)
	}, p.logger)
}

// totalPages reads the "Showing X to Y of N entries" paginator status.
func (p *Paginator) totalPages(ctx context.Context) int {
	if err := p.source.WaitForSelector(ctx, SelectorPaginatorState, p.timeout); err != nil {
		p.logger.Warn("Paginator status not found: %v", err)
		return 0
	}
	nodes, err := p.source.FindAll(ctx, SelectorPaginatorState)
	if err != nil || len(nodes) == 0 {
		p.logger.Warn("Paginator status not found")
		return 0
	}
	text, err := nodes[0].Text()
	if err != nil {
		p.logger.Warn("Paginator status unreadable: %v", err)
		return 0
	}
	totalRecords := ParseTotalRecords(text)
	if totalRecords == 0 {
		return 0
	}
	pages := PageCount(totalRecords, p.itemsPerPage)
	p.logger.Info("Total records: %d, pages: %d", totalRecords, pages)
	return pages
}

// nextPage clicks the button labeled with the next page index and waits for
// the old button to go stale, proof that the page content was replaced.
func (p *Paginator) nextPage(ctx context.Context, next int) bool {
	selector := fmt.Sprintf(`%s[aria-label="%d"]`, SelectorPageButton, next)
	buttons, err := p.source.FindAll(ctx, selector)
	if err != nil || len(buttons) == 0 {
		p.logger.Warn("Next page button %d not found", next)
		return false
	}
	btn := buttons[0]
	if err := btn.ScrollIntoView(); err != nil {
		p.logger.Debug("Scroll to page button %d failed: %v", next, err)
	}
	if err := btn.Click(); err != nil {
		p.logger.Warn("Click on page button %d failed: %v", next, err)
		return false
	}
	if err := p.source.WaitGone(ctx, btn, p.timeout); err != nil {
		p.logger.Warn("Page %d did not replace the previous one: %v", next, err)
		return false
	}
	// Settle delay after the swap, same politeness interval as between fetches.
	p.limiter.Wait()
	return true
}

// ParseTotalRecords pulls the record count out of text like
// "Showing 1 to 20 of 157 entries". Unparsable text counts as zero.
func ParseTotalRecords(text string) int {
	m := totalEntriesRegex.FindStringSubmatch(text)
	if len(m) < 2 {
		return 0
	}
	n, err := strconv.Atoi(strings.ReplaceAll(m[1], ",", ""))
	if err != nil {
		return 0
	}
	return n
}

// PageCount is ceil(totalRecords / itemsPerPage).
func PageCount(totalRecords, itemsPerPage int) int {
	if totalRecords <= 0 || itemsPerPage <= 0 {
		return 0
	}
	return (totalRecords + itemsPerPage - 1) / itemsPerPage
}

// pageURL appends the page parameter the way the site expects it.
func pageURL(baseURL string, page int) string {
	sep := "?"
	if strings.Contains(baseURL, "?") {
		sep = "&"
	}
	return fmt.Sprintf("%s%spage=%d", baseURL, sep, page)
}

// isFatal reports whether err means the crawl cannot continue: either the
// caller cancelled or the page session itself is gone.
func isFatal(ctx context.Context, err error) bool {
	return ctx.Err() != nil || errors.Is(err, ErrSessionClosed)
}
