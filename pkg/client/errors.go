package client

import (
	"errors"
	"fmt"
)

// Errors returned by Fetch. Transport failures wrap both ErrUpstreamUnavailable
// and their cause, so errors.Is(err, context.DeadlineExceeded) still works.
var (
	// ErrUpstreamUnavailable is returned when the registry could not be reached
	// (timeout, refused connection, DNS failure, cancelled context).
	ErrUpstreamUnavailable = errors.New("upstream unavailable")

	// ErrMissingUpstreamState is returned when a page > 1 is requested but the
	// first response carries no __VIEWSTATE. Retrying will not help.
	ErrMissingUpstreamState = errors.New("upstream form state missing")

	// ErrInvalidPage is returned for page numbers below 1.
	ErrInvalidPage = errors.New("invalid page")
)

// UpstreamError is returned when the registry answers with a non-2xx status.
type UpstreamError struct {
	StatusCode int
	Status     string
	Method     string
	ErrorClass ErrorClass
}

// Error implements the error interface.
func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream %s error (status %d) on %s: %s",
		e.ErrorClass, e.StatusCode, e.Method, e.Status)
}

// Retryable reports whether a caller may reasonably try the same search
// again later. Only transport failures qualify; the proxy itself never retries.
func Retryable(err error) bool {
	return errors.Is(err, ErrUpstreamUnavailable)
}

// classify categorizes a round-trip outcome for metrics and logs.
func classify(statusCode int, err error) ErrorClass {
	switch {
	case err != nil:
		return ErrorClassNetwork
	case statusCode >= 400 && statusCode < 500:
		return ErrorClassClient
	case statusCode >= 500:
		return ErrorClassServer
	default:
		return ErrorClassUnexpected
	}
}
