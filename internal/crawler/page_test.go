package crawler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

// fakePage is a scripted Page. Every scroll grows the document by 100px while
// growths remain.
type fakePage struct {
	mu sync.Mutex

	height  int64
	growths int

	navigateErr error
	waitErr     error
	queryErr    error
	evalErr     error
	nodes       []ItemNode
	panicQuery  bool

	navigations []string
	scrolls     int
	evaluations int
	closed      int
}

func (p *fakePage) Navigate(ctx context.Context, url string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.navigations = append(p.navigations, url)
	return p.navigateErr
}

func (p *fakePage) WaitForSelector(ctx context.Context, selector string, timeout time.Duration) error {
	if p.waitErr != nil {
		return p.waitErr
	}
	return ctx.Err()
}

func (p *fakePage) Evaluate(ctx context.Context, script string, out any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.evaluations++
	if p.evalErr != nil {
		return p.evalErr
	}
	switch script {
	case scrollHeightScript:
		*(out.(*float64)) = float64(p.height)
	case scrollBottomScript:
		p.scrolls++
		if p.growths > 0 {
			p.growths--
			p.height += 100
		}
	}
	return nil
}

func (p *fakePage) QueryAll(ctx context.Context, selector string) ([]ItemNode, error) {
	if p.panicQuery {
		panic("renderer went away")
	}
	return p.nodes, p.queryErr
}

func (p *fakePage) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed++
	return nil
}

func (p *fakePage) navigateCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.navigations)
}

type fakeBrowser struct {
	mu     sync.Mutex
	page   *fakePage
	err    error
	opened int
}

func (b *fakeBrowser) NewPage(ctx context.Context) (Page, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.err != nil {
		return nil, b.err
	}
	b.opened++
	return b.page, nil
}

func TestBudgetPageCapsNavigations(t *testing.T) {
	page := &fakePage{}
	budgeted := withBudget(page, 2)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if err := budgeted.Navigate(ctx, "https://example.com"); err != nil {
			t.Fatalf("navigation %d: unexpected error %v", i, err)
		}
	}
	if err := budgeted.Navigate(ctx, "https://example.com"); !errors.Is(err, ErrBudgetExhausted) {
		t.Fatalf("expected ErrBudgetExhausted, got %v", err)
	}
	if page.navigateCount() != 2 {
		t.Errorf("underlying page saw %d navigations, want 2", page.navigateCount())
	}
	if budgeted.Used() != 2 {
		t.Errorf("Used() = %d, want 2", budgeted.Used())
	}
}

func TestParseItemNodesText(t *testing.T) {
	nodes, err := ParseItemNodes([]string{`<p><span class="x">  hi  </span><span class="x">there</span></p>`})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text, ok := nodes[0].Text(".x"); !ok || text != "hi" {
		t.Errorf("Text(.x) = %q, %v; want first match %q", text, ok, "hi")
	}
	if _, ok := nodes[0].Text(".missing"); ok {
		t.Error("Text on a missing selector should report false")
	}
	if _, ok := nodes[0].Attr("span", "href"); ok {
		t.Error("Attr on a missing attribute should report false")
	}
}
