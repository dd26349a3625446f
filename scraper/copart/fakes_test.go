package copart

import (
	"context"
	"fmt"
	"time"
)

// fakeNode is an in-memory Node for extractor and paginator tests.
type fakeNode struct {
	attrs    map[string]string
	text     string
	textErr  error
	children map[string][]*fakeNode
	clickErr error
	clicked  int
	panics   bool
}

func (n *fakeNode) FindOne(selector string) (Node, error) {
	if n.panics {
		panic("node backend gone")
	}
	kids := n.children[selector]
	if len(kids) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, selector)
	}
	return kids[0], nil
}

func (n *fakeNode) FindAll(selector string) ([]Node, error) {
	if n.panics {
		panic("node backend gone")
	}
	kids := n.children[selector]
	out := make([]Node, 0, len(kids))
	for _, k := range kids {
		out = append(out, k)
	}
	return out, nil
}

func (n *fakeNode) Attr(name string) (string, bool) {
	v, ok := n.attrs[name]
	return v, ok
}

func (n *fakeNode) Text() (string, error) {
	return n.text, n.textErr
}

func (n *fakeNode) Click() error {
	n.clicked++
	return n.clickErr
}

func (n *fakeNode) ScrollIntoView() error { return nil }

// fakePage is the content the fake source serves for one page state.
type fakePage struct {
	lots      []*fakeNode
	paginator *fakeNode            // node matched by SelectorPaginatorState
	buttons   map[string]*fakeNode // full selector -> next page button
	waitErr   error                // returned by WaitForSelector for the lot block
}

// fakeSource serves fakePages either keyed by URL (fixed mode) or as an
// ordered sequence advanced by button clicks (dynamic mode).
type fakeSource struct {
	byURL map[string]*fakePage

	sequence []*fakePage
	position int

	navErrs map[string]error
	navLog  []string
	closed  bool
}

func (s *fakeSource) current() *fakePage {
	if s.byURL != nil {
		if len(s.navLog) == 0 {
			return nil
		}
		return s.byURL[s.navLog[len(s.navLog)-1]]
	}
	if s.position >= len(s.sequence) {
		return nil
	}
	return s.sequence[s.position]
}

func (s *fakeSource) Navigate(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.navLog = append(s.navLog, url)
	if err := s.navErrs[url]; err != nil {
		return err
	}
	return nil
}

func (s *fakeSource) WaitForSelector(ctx context.Context, selector string, timeout time.Duration) error {
	page := s.current()
	if page == nil {
		return fmt.Errorf("%w: %s", ErrWaitTimeout, selector)
	}
	if selector == SelectorLotBlock {
		return page.waitErr
	}
	if selector == SelectorPaginatorState && page.paginator == nil {
		return fmt.Errorf("%w: %s", ErrWaitTimeout, selector)
	}
	return nil
}

func (s *fakeSource) FindAll(ctx context.Context, selector string) ([]Node, error) {
	page := s.current()
	if page == nil {
		return nil, nil
	}
	switch {
	case selector == SelectorLotBlock:
		out := make([]Node, 0, len(page.lots))
		for _, l := range page.lots {
			out = append(out, l)
		}
		return out, nil
	case selector == SelectorPaginatorState:
		if page.paginator == nil {
			return nil, nil
		}
		return []Node{page.paginator}, nil
	default:
		if btn, ok := page.buttons[selector]; ok {
			return []Node{btn}, nil
		}
		return nil, nil
	}
}

func (s *fakeSource) WaitGone(ctx context.Context, n Node, timeout time.Duration) error {
	// A successful click advances the sequence, so the old button is gone.
	btn, ok := n.(*fakeNode)
	if ok && btn.clicked > 0 {
		s.position++
		return nil
	}
	return fmt.Errorf("%w: node still present", ErrWaitTimeout)
}

func (s *fakeSource) Close() error {
	s.closed = true
	return nil
}

// lotBlock builds a fake lot sub-tree with the given detail href, price text
// and named text fields.
func lotBlock(href, priceText string, fields map[string]string, images ...string) *fakeNode {
	block := &fakeNode{children: map[string][]*fakeNode{}}
	if href != "" {
		block.children[SelectorDetailLink] = []*fakeNode{{attrs: map[string]string{"href": href}}}
	}
	if priceText != "" {
		block.children[SelectorPrice] = []*fakeNode{{text: priceText}}
	}
	for sel, text := range fields {
		block.children[sel] = []*fakeNode{{text: text}}
	}
	for _, src := range images {
		attrs := map[string]string{}
		if src != "" {
			attrs["src"] = src
		}
		block.children[SelectorLotImage] = append(block.children[SelectorLotImage], &fakeNode{attrs: attrs})
	}
	return block
}
