package crawler

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Page is a rendered browser tab. Implementations live outside this package;
// the crawler only drives pages through this interface.
type Page interface {
	Navigate(ctx context.Context, url string) error
	WaitForSelector(ctx context.Context, selector string, timeout time.Duration) error
	// Evaluate runs script in the page and decodes its result into out, which
	// may be nil. A returned promise is awaited.
	Evaluate(ctx context.Context, script string, out any) error
	// QueryAll returns every element matching selector, in document order.
	QueryAll(ctx context.Context, selector string) ([]ItemNode, error)
	Close() error
}

// Browser hands out pages. Each page is owned by exactly one job.
type Browser interface {
	NewPage(ctx context.Context) (Page, error)
}

// ItemNode is a snapshot of one rendered element.
type ItemNode interface {
	// Text returns the trimmed text of the first descendant matching selector.
	Text(selector string) (string, bool)
	// Attr returns attribute name of the first descendant matching selector.
	Attr(selector, name string) (string, bool)
}

type htmlNode struct {
	sel *goquery.Selection
}

func (n htmlNode) Text(selector string) (string, bool) {
	found := n.sel.Find(selector).First()
	if found.Length() == 0 {
		return "", false
	}
	return strings.TrimSpace(found.Text()), true
}

func (n htmlNode) Attr(selector, name string) (string, bool) {
	found := n.sel.Find(selector).First()
	if found.Length() == 0 {
		return "", false
	}
	return found.Attr(name)
}

// ParseItemNodes parses outerHTML fragments, one per element, into nodes.
func ParseItemNodes(fragments []string) ([]ItemNode, error) {
	nodes := make([]ItemNode, 0, len(fragments))
	for i, fragment := range fragments {
		root, err := html.Parse(strings.NewReader(fragment))
		if err != nil {
			return nil, fmt.Errorf("parse item %d: %w", i, err)
		}
		doc := goquery.NewDocumentFromNode(root)
		nodes = append(nodes, htmlNode{sel: doc.Selection})
	}
	return nodes, nil
}

// budgetPage caps the number of navigations a job may issue.
type budgetPage struct {
	Page

	mu        sync.Mutex
	remaining int
	used      int
}

func withBudget(p Page, budget int) *budgetPage {
	return &budgetPage{Page: p, remaining: budget}
}

func (b *budgetPage) Navigate(ctx context.Context, url string) error {
	b.mu.Lock()
	if b.remaining <= 0 {
		b.mu.Unlock()
		return ErrBudgetExhausted
	}
	b.remaining--
	b.used++
	b.mu.Unlock()

	return b.Page.Navigate(ctx, url)
}

func (b *budgetPage) Used() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.used
}
