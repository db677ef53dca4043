package types

import (
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// Request represents one HTTP GET the scraper will issue.
type Request struct {
	// URL is the target URL to fetch.
	URL *url.URL

	// Headers are custom HTTP headers to send with the request.
	Headers http.Header

	// Tag categorizes this request: "category" or "article".
	Tag string

	// RetryCount tracks the current retry attempt.
	RetryCount int

	// CreatedAt is when this request was created.
	CreatedAt time.Time
}

// NewRequest creates a Request for the given URL.
func NewRequest(rawURL, tag string) (*Request, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid URL %q: %w", rawURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("%w: scheme %q", ErrInvalidURL, u.Scheme)
	}

	return &Request{
		URL:       u,
		Headers:   make(http.Header),
		Tag:       tag,
		CreatedAt: time.Now(),
	}, nil
}

// URLString returns the string representation of the request URL.
func (r *Request) URLString() string {
	if r.URL == nil {
		return ""
	}
	return r.URL.String()
}

// Domain returns the hostname of the request URL.
func (r *Request) Domain() string {
	if r.URL == nil {
		return ""
	}
	return r.URL.Hostname()
}
