package fetcher

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
)

// Reason classifies why a page could not be fetched.
type Reason string

const (
	// ReasonTimeout means the request exceeded its deadline.
	ReasonTimeout Reason = "timeout"
	// ReasonHTTPStatus means the server answered with a non-success status.
	ReasonHTTPStatus Reason = "http_status"
	// ReasonTransport covers DNS, connection and protocol failures.
	ReasonTransport Reason = "transport"
)

// FetchError describes a failed page fetch.
type FetchError struct {
	URL        string
	Reason     Reason
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.Reason == ReasonHTTPStatus {
		return fmt.Sprintf("fetch %s: http status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fetch %s: %s: %v", e.URL, e.Reason, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Result is the outcome of one page fetch: either a body or a failure.
type Result struct {
	URL        string
	StatusCode int
	Body       []byte
	Err        *FetchError
}

// OK reports whether the fetch succeeded.
func (r Result) OK() bool {
	return r.Err == nil
}

// success builds a successful result.
func success(url string, status int, body []byte) Result {
	return Result{URL: url, StatusCode: status, Body: body}
}

// failure builds a failed result.
func failure(url string, status int, err error) Result {
	return Result{URL: url, StatusCode: status, Err: NewFetchError(url, status, err)}
}

// NewFetchError builds a FetchError, classifying err by status code and error
// type.
func NewFetchError(url string, status int, err error) *FetchError {
	return &FetchError{
		URL:        url,
		Reason:     classifyFailure(status, err),
		StatusCode: status,
		Err:        err,
	}
}

// classifyFailure maps a failure to its reason. A response status outside
// the 2xx range wins over the error text.
func classifyFailure(status int, err error) Reason {
	if status != 0 && (status < http.StatusOK || status >= http.StatusMultipleChoices) {
		return ReasonHTTPStatus
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ReasonTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return ReasonTimeout
	}
	if status != 0 {
		return ReasonHTTPStatus
	}
	return ReasonTransport
}
