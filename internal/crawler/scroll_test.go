package crawler

import (
	"context"
	"errors"
	"testing"
	"time"
)

func fastScroll() ScrollOptions {
	return ScrollOptions{Interval: time.Millisecond}
}

func TestStabilizeStaticPage(t *testing.T) {
	page := &fakePage{height: 800}

	rounds, err := Stabilize(context.Background(), page, fastScroll())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rounds != 1 {
		t.Errorf("rounds = %d, want 1", rounds)
	}
	if page.scrolls != 1 {
		t.Errorf("scrolls = %d, want 1", page.scrolls)
	}
}

func TestStabilizeGrowsThenPlateaus(t *testing.T) {
	for _, growths := range []int{1, 3, 10} {
		page := &fakePage{height: 800, growths: growths}

		rounds, err := Stabilize(context.Background(), page, fastScroll())
		if err != nil {
			t.Fatalf("growths=%d: unexpected error: %v", growths, err)
		}
		if rounds != growths+1 {
			t.Errorf("growths=%d: rounds = %d, want %d", growths, rounds, growths+1)
		}
	}
}

func TestStabilizeIterationBound(t *testing.T) {
	page := &fakePage{height: 800, growths: 1 << 30}
	opts := fastScroll()
	opts.MaxIterations = 5

	rounds, err := Stabilize(context.Background(), page, opts)
	if !errors.Is(err, ErrScrollBudget) {
		t.Fatalf("expected ErrScrollBudget, got %v", err)
	}
	if rounds != 5 {
		t.Errorf("rounds = %d, want 5", rounds)
	}
}

func TestStabilizeDurationBound(t *testing.T) {
	page := &fakePage{height: 800, growths: 1 << 30}
	opts := ScrollOptions{Interval: 5 * time.Millisecond, MaxDuration: 30 * time.Millisecond}

	_, err := Stabilize(context.Background(), page, opts)
	if !errors.Is(err, ErrScrollBudget) {
		t.Fatalf("expected ErrScrollBudget, got %v", err)
	}
}

func TestStabilizeCancellation(t *testing.T) {
	page := &fakePage{height: 800, growths: 1 << 30}
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := Stabilize(ctx, page, ScrollOptions{Interval: 5 * time.Millisecond})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}

func TestStabilizeEvaluateError(t *testing.T) {
	page := &fakePage{evalErr: errors.New("target closed")}

	if _, err := Stabilize(context.Background(), page, fastScroll()); err == nil {
		t.Fatal("expected an error from a broken page")
	}
}
