package copart

import (
	"context"
	"errors"
	"time"
)

// Selectors for the Copart search results markup
const (
	SelectorLotBlock       = ".search_result_lot_detail_block"
	SelectorDetailLink     = `a[href*="/lot/"]`
	SelectorLotName        = ".lot-name"
	SelectorPrice          = ".currencyAmount"
	SelectorDealer         = ".dealer-info"
	SelectorTitleCert      = `span[title*="CERTIFICATE OF TITLE"]`
	SelectorLotImage       = "img.lot-image"
	SelectorPaginatorState = ".p-paginator-current"
	SelectorPageButton     = "button.p-paginator-page"
)

var (
	// ErrNotFound is returned when a selector matches nothing.
	ErrNotFound = errors.New("element not found")
	// ErrWaitTimeout is returned when a wait expires before its condition holds.
	ErrWaitTimeout = errors.New("wait timed out")
	// ErrSessionClosed marks the page session as unusable. It is the only
	// scraping error that aborts a whole run.
	ErrSessionClosed = errors.New("page session closed")
)

// Node is one element of a rendered page.
type Node interface {
	// FindOne returns the first descendant matching selector, or ErrNotFound.
	FindOne(selector string) (Node, error)
	// FindAll returns every descendant matching selector, possibly none.
	FindAll(selector string) ([]Node, error)
	// Attr returns the attribute value and whether the attribute exists.
	Attr(name string) (string, bool)
	// Text returns the element's rendered text content.
	Text() (string, error)
	Click() error
	ScrollIntoView() error
}

// PageSource is the rendered-page collaborator: it turns URLs into queryable
// element trees. One session is exclusively owned for the lifetime of a run
// and must be closed on every exit path.
type PageSource interface {
	Navigate(ctx context.Context, url string) error
	// WaitForSelector blocks until selector is present or timeout elapses,
	// returning ErrWaitTimeout in the latter case.
	WaitForSelector(ctx context.Context, selector string, timeout time.Duration) error
	FindAll(ctx context.Context, selector string) ([]Node, error)
	// WaitGone blocks until n has been removed from the live page. Used to
	// detect that an in-place pagination step actually replaced the content.
	WaitGone(ctx context.Context, n Node, timeout time.Duration) error
	Close() error
}
