package errors

import (
	"fmt"
	"time"
)

const dateFormat = "2006-01-02"

type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return e.Field + ": " + e.Message
}

// ErrMalformedInput reports a statement row that failed shape validation.
// Row is the 1-based line number in the uploaded statement (0 when unknown).
type ErrMalformedInput struct {
	Row    int
	Reason string
}

func (e *ErrMalformedInput) Error() string {
	if e.Row <= 0 {
		return "malformed input: " + e.Reason
	}
	return fmt.Sprintf("malformed input at row %d: %s", e.Row, e.Reason)
}

// ErrRateUnavailable is returned when no published rate exists between
// WindowStart and Date (inclusive).
type ErrRateUnavailable struct {
	Date        time.Time
	WindowStart time.Time
}

func (e *ErrRateUnavailable) Error() string {
	return fmt.Sprintf("no exchange rate published for %s (searched back to %s)",
		e.Date.Format(dateFormat), e.WindowStart.Format(dateFormat))
}

// ErrUpstreamFetch wraps a failure of the external rate source for a date range.
type ErrUpstreamFetch struct {
	Start time.Time
	End   time.Time
	Cause error
}

func (e *ErrUpstreamFetch) Error() string {
	return fmt.Sprintf("failed to fetch exchange rates for %s..%s: %v",
		e.Start.Format(dateFormat), e.End.Format(dateFormat), e.Cause)
}

func (e *ErrUpstreamFetch) Unwrap() error { return e.Cause }
