package copart

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/dom"
	"github.com/chromedp/chromedp"

	"copart-watcher/utils"
)

// Browser is the chromedp-backed PageSource: one headless Chrome session
// owned for the lifetime of a run.
type Browser struct {
	ctx    context.Context
	cancel context.CancelFunc
	logger *utils.Logger
}

// NewBrowser starts a headless Chrome session. The caller must Close it.
func NewBrowser(logger *utils.Logger) (*Browser, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.Flag("log-level", "3"), // suppress Chrome logs
		chromedp.UserAgent("Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"),
		chromedp.WindowSize(1920, 1080),
	)

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(context.Background(), opts...)
	ctx, cancelCtx := chromedp.NewContext(allocCtx, chromedp.WithLogf(func(string, ...interface{}) {}))

	cancel := func() {
		cancelCtx()
		cancelAlloc()
	}

	// Launch now so a broken environment fails at startup, not mid-run.
	if err := chromedp.Run(ctx); err != nil {
		cancel()
		return nil, fmt.Errorf("chrome start failed: %w", err)
	}

	return &Browser{ctx: ctx, cancel: cancel, logger: logger}, nil
}

// Navigate loads url in the session tab.
func (b *Browser) Navigate(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := chromedp.Run(b.ctx, chromedp.Navigate(url)); err != nil {
		if b.ctx.Err() != nil {
			return fmt.Errorf("%w: %v", ErrSessionClosed, err)
		}
		return fmt.Errorf("navigate %s: %w", url, err)
	}
	return nil
}

// WaitForSelector blocks until selector is present in the DOM.
func (b *Browser) WaitForSelector(ctx context.Context, selector string, timeout time.Duration) error {
	wctx, cancel := context.WithTimeout(b.ctx, timeout)
	defer cancel()
	if err := chromedp.Run(wctx, chromedp.WaitReady(selector, chromedp.ByQuery)); err != nil {
		if b.ctx.Err() != nil {
			return fmt.Errorf("%w: %v", ErrSessionClosed, err)
		}
		if errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("%w: %s", ErrWaitTimeout, selector)
		}
		return fmt.Errorf("wait %s: %w", selector, err)
	}
	return nil
}

// FindAll queries the whole document.
func (b *Browser) FindAll(ctx context.Context, selector string) ([]Node, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var nodes []*cdp.Node
	err := chromedp.Run(b.ctx, chromedp.Nodes(selector, &nodes, chromedp.ByQueryAll, chromedp.AtLeast(0)))
	if err != nil {
		if b.ctx.Err() != nil {
			return nil, fmt.Errorf("%w: %v", ErrSessionClosed, err)
		}
		return nil, fmt.Errorf("query %s: %w", selector, err)
	}
	out := make([]Node, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, &browserNode{ctx: b.ctx, node: n})
	}
	return out, nil
}

// WaitGone polls until n no longer resolves in the live DOM.
func (b *Browser) WaitGone(ctx context.Context, n Node, timeout time.Duration) error {
	bn, ok := n.(*browserNode)
	if !ok {
		return errors.New("node does not belong to this session")
	}
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		present := true
		err := chromedp.Run(b.ctx, chromedp.ActionFunc(func(c context.Context) error {
			if _, derr := dom.DescribeNode().WithNodeID(bn.node.NodeID).Do(c); derr != nil {
				present = false
			}
			return nil
		}))
		if err != nil {
			return fmt.Errorf("%w: %v", ErrSessionClosed, err)
		}
		if !present {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(250 * time.Millisecond):
		}
	}
	return fmt.Errorf("%w: node still present", ErrWaitTimeout)
}

// Close shuts down the Chrome session.
func (b *Browser) Close() error {
	b.cancel()
	return nil
}

type browserNode struct {
	ctx  context.Context
	node *cdp.Node
}

func (n *browserNode) FindOne(selector string) (Node, error) {
	nodes, err := n.query(selector, chromedp.ByQuery)
	if err != nil {
		return nil, err
	}
	if len(nodes) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, selector)
	}
	return nodes[0], nil
}

func (n *browserNode) FindAll(selector string) ([]Node, error) {
	return n.query(selector, chromedp.ByQueryAll)
}

func (n *browserNode) query(selector string, by chromedp.QueryOption) ([]Node, error) {
	var nodes []*cdp.Node
	err := chromedp.Run(n.ctx, chromedp.Nodes(selector, &nodes, by, chromedp.FromNode(n.node), chromedp.AtLeast(0)))
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", selector, err)
	}
	out := make([]Node, 0, len(nodes))
	for _, c := range nodes {
		out = append(out, &browserNode{ctx: n.ctx, node: c})
	}
	return out, nil
}

func (n *browserNode) Attr(name string) (string, bool) {
	n.node.RLock()
	defer n.node.RUnlock()
	attrs := n.node.Attributes
	for i := 0; i < len(attrs)-1; i += 2 {
		if attrs[i] == name {
			return attrs[i+1], true
		}
	}
	return "", false
}

func (n *browserNode) Text() (string, error) {
	var s string
	err := chromedp.Run(n.ctx, chromedp.Text([]cdp.NodeID{n.node.NodeID}, &s, chromedp.ByNodeID))
	if err != nil {
		return "", fmt.Errorf("text: %w", err)
	}
	return s, nil
}

func (n *browserNode) Click() error {
	if err := chromedp.Run(n.ctx, chromedp.MouseClickNode(n.node)); err != nil {
		return fmt.Errorf("click: %w", err)
	}
	return nil
}

func (n *browserNode) ScrollIntoView() error {
	err := chromedp.Run(n.ctx, chromedp.ScrollIntoView([]cdp.NodeID{n.node.NodeID}, chromedp.ByNodeID))
	if err != nil {
		return fmt.Errorf("scroll: %w", err)
	}
	return nil
}
