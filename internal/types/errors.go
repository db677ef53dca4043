package types

import (
	"errors"
	"fmt"
)

// Sentinel errors for common failure modes.
var (
	ErrTimeout       = errors.New("request timed out")
	ErrMaxRetries    = errors.New("max retries exceeded")
	ErrDuplicate     = errors.New("duplicate URL")
	ErrEmptyResponse = errors.New("empty response body")
	ErrInvalidURL    = errors.New("invalid URL")
	ErrEmptyCategory = errors.New("category name is empty")
)

// FetchError wraps errors that occur while fetching a single page.
// A FetchError on a non-seed page is logged and the page is skipped;
// only the seed category fetch is fatal to the run.
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
	Retryable  bool
}

func (e *FetchError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("fetch error for %s (status %d): %v", e.URL, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("fetch error for %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

func (e *FetchError) IsRetryable() bool { return e.Retryable }

// ParseError wraps errors that make a page's HTML unparseable as a whole.
// Individual missing fields on an otherwise-parsed page are not errors;
// they surface as warnings on the ArticleResult instead.
type ParseError struct {
	URL string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error for %s: %v", e.URL, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// EmitError wraps errors from the output stream.
type EmitError struct {
	Sink string
	Err  error
}

func (e *EmitError) Error() string {
	return fmt.Sprintf("emit error (%s): %v", e.Sink, e.Err)
}

func (e *EmitError) Unwrap() error { return e.Err }
