package domain

import "fmt"

// NotFoundError signals an empty search result. It is terminal: retries
// apply to transient failures only, never to an empty response.
type NotFoundError struct {
	Entity string
	Query  string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Entity, e.Query)
}

// TransientError marks a failure worth retrying: a network error, a
// timeout, or a 429/5xx response. Status is zero when no response was
// received.
type TransientError struct {
	Op     string
	Status int
	Err    error
}

func (e *TransientError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s: status %d", e.Op, e.Status)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransientError) Unwrap() error {
	return e.Err
}

// Transient reports retryability; the retry layer dispatches on this
// method rather than on the concrete type.
func (e *TransientError) Transient() bool {
	return true
}

// ParseError reports a malformed provider response for a single item. The
// item is dropped and the crawl continues.
type ParseError struct {
	Source string
	Item   string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: parsing %q: %v", e.Source, e.Item, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// AggregationError wraps any unrecovered failure of a crawl, carrying the
// queried artist name and the root cause.
type AggregationError struct {
	ArtistName string
	Err        error
}

func (e *AggregationError) Error() string {
	return fmt.Sprintf("crawl for %q failed: %v", e.ArtistName, e.Err)
}

func (e *AggregationError) Unwrap() error {
	return e.Err
}
