package crawler

import (
	"context"
	"fmt"
	"time"
)

const (
	scrollHeightScript = `document.body.scrollHeight`
	scrollBottomScript = `window.scrollTo(0, document.body.scrollHeight)`
)

// ScrollOptions bounds the scroll loop. Zero MaxIterations or MaxDuration
// means no bound of that kind.
type ScrollOptions struct {
	Interval      time.Duration
	MaxIterations int
	MaxDuration   time.Duration
}

// DefaultScrollOptions polls every 100ms.
func DefaultScrollOptions() ScrollOptions {
	return ScrollOptions{
		Interval:      100 * time.Millisecond,
		MaxIterations: 1000,
		MaxDuration:   2 * time.Minute,
	}
}

// Stabilize scrolls page to the bottom until its height stops growing and
// returns the number of scroll rounds taken. A page that never grows stops
// after one round. Hitting a bound returns ErrScrollBudget with the rounds
// done so far; the page keeps whatever it loaded.
func Stabilize(ctx context.Context, page Page, opts ScrollOptions) (int, error) {
	var deadline <-chan time.Time
	if opts.MaxDuration > 0 {
		timer := time.NewTimer(opts.MaxDuration)
		defer timer.Stop()
		deadline = timer.C
	}

	height, err := pageHeight(ctx, page)
	if err != nil {
		return 0, err
	}

	for rounds := 1; ; rounds++ {
		if err := page.Evaluate(ctx, scrollBottomScript, nil); err != nil {
			return rounds - 1, fmt.Errorf("scroll: %w", err)
		}

		wait := time.NewTimer(opts.Interval)
		select {
		case <-ctx.Done():
			wait.Stop()
			return rounds, ctx.Err()
		case <-deadline:
			wait.Stop()
			return rounds, fmt.Errorf("%w: after %s", ErrScrollBudget, opts.MaxDuration)
		case <-wait.C:
		}

		next, err := pageHeight(ctx, page)
		if err != nil {
			return rounds, err
		}
		if next == height {
			return rounds, nil
		}
		height = next

		if opts.MaxIterations > 0 && rounds >= opts.MaxIterations {
			return rounds, fmt.Errorf("%w: after %d rounds", ErrScrollBudget, rounds)
		}
	}
}

func pageHeight(ctx context.Context, page Page) (int64, error) {
	var height float64
	if err := page.Evaluate(ctx, scrollHeightScript, &height); err != nil {
		return 0, fmt.Errorf("measure height: %w", err)
	}
	return int64(height), nil
}
