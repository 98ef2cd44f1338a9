package crawler

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrScrapeFailed wraps every failure of a crawl that was attempted.
	ErrScrapeFailed = errors.New("scrape failed")

	ErrBudgetExhausted = errors.New("request budget exhausted")
	ErrScrollBudget    = errors.New("scroll budget reached before height settled")
	ErrDisallowed      = errors.New("disallowed by robots.txt")
)

// InvalidInputError rejects a request before any crawl is attempted.
type InvalidInputError struct {
	Err error
}

func (e InvalidInputError) Error() string {
	return fmt.Errorf("invalid_input: %w", e.Err).Error()
}

func (e InvalidInputError) Unwrap() error {
	return e.Err
}

// ContentNotFoundError means no playlist item appeared before the content timeout.
type ContentNotFoundError struct {
	Err error
}

func (e ContentNotFoundError) Error() string {
	return fmt.Errorf("content_not_found: %w", e.Err).Error()
}

func (e ContentNotFoundError) Unwrap() error {
	return e.Err
}

// ExtractionFaultError covers page structure the extractor cannot tolerate.
type ExtractionFaultError struct {
	Err error
}

func (e ExtractionFaultError) Error() string {
	return fmt.Errorf("extraction_fault: %w", e.Err).Error()
}

func (e ExtractionFaultError) Unwrap() error {
	return e.Err
}

// NavigationFaultError means the target could not be loaded.
type NavigationFaultError struct {
	Err error
}

func (e NavigationFaultError) Error() string {
	return fmt.Errorf("navigation_fault: %w", e.Err).Error()
}

func (e NavigationFaultError) Unwrap() error {
	return e.Err
}

// ErrorKind labels err for logs and metrics.
func ErrorKind(err error) string {
	if err == nil {
		return "none"
	}
	var invalid InvalidInputError
	if errors.As(err, &invalid) {
		return "invalid_input"
	}
	var notFound ContentNotFoundError
	if errors.As(err, &notFound) {
		return "content_not_found"
	}
	var extraction ExtractionFaultError
	if errors.As(err, &extraction) {
		return "extraction_fault"
	}
	var navigation NavigationFaultError
	if errors.As(err, &navigation) {
		return "navigation_fault"
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return "canceled"
	}
	return "other"
}

// IsInvalidInput reports whether err is a client-side input error.
func IsInvalidInput(err error) bool {
	var invalid InvalidInputError
	return errors.As(err, &invalid)
}
