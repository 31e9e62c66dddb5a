package feed

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"syscall"

	"tapnews/pkg/news"
)

var (
	ErrRateLimited        = errors.New("rate limited")
	ErrUnauthorized       = errors.New("upstream authorization failed")
	ErrNotFound           = errors.New("not found")
	ErrNetworkUnreachable = errors.New("network unreachable")
	ErrUnauthenticated    = errors.New("unauthenticated")
	ErrNoResults          = errors.New("no results")
)

type UnexpectedError struct {
	Message string
	Err     error
}

func (e *UnexpectedError) Error() string {
	return "unexpected: " + e.Message
}

func (e *UnexpectedError) Unwrap() error {
	return e.Err
}

// Classify maps an upstream failure onto the caller-facing taxonomy. Errors that
// already belong to it are returned unchanged.
func Classify(err error) error {
	return ClassifyContext(context.Background(), err)
}

// ClassifyContext classifies an error returned by a call made with ctx. Only the
// caller's own cancellation or deadline is unexpected; a deadline hit inside the
// upstream client is a network failure.
func ClassifyContext(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}

	for _, known := range []error{ErrRateLimited, ErrUnauthorized, ErrNotFound, ErrNetworkUnreachable, ErrUnauthenticated, ErrNoResults} {
		if errors.Is(err, known) {
			return known
		}
	}

	var unexpected *UnexpectedError
	if errors.As(err, &unexpected) {
		return unexpected
	}

	var apiErr *news.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.StatusCode {
		case http.StatusTooManyRequests:
			return ErrRateLimited
		case http.StatusUnauthorized:
			return ErrUnauthorized
		case http.StatusNotFound:
			return ErrNotFound
		}
		msg := apiErr.Message
		if msg == "" {
			msg = fmt.Sprintf("status %d", apiErr.StatusCode)
		}
		return &UnexpectedError{Message: msg, Err: err}
	}

	if ctx.Err() != nil || errors.Is(err, context.Canceled) {
		return &UnexpectedError{Message: err.Error(), Err: err}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrNetworkUnreachable
	}

	var dnsErr *net.DNSError
	var opErr *net.OpError
	var urlErr *url.Error
	if errors.As(err, &dnsErr) || errors.As(err, &opErr) || errors.Is(err, syscall.ECONNREFUSED) {
		return ErrNetworkUnreachable
	}
	if errors.As(err, &urlErr) {
		var netErr net.Error
		if errors.As(urlErr.Err, &netErr) {
			return ErrNetworkUnreachable
		}
	}

	return &UnexpectedError{Message: err.Error(), Err: err}
}

// Message is the display text for an error of the taxonomy.
func Message(err error) string {
	if err == nil {
		return ""
	}

	switch Classify(err) {
	case ErrRateLimited:
		return "Rate limit exceeded. Please try again later."
	case ErrUnauthorized:
		return "API authorization failed. Please check the configuration."
	case ErrNotFound:
		return "Could not find news at this time. Please try again later."
	case ErrNetworkUnreachable:
		return "Could not connect to the server. Please check your internet connection."
	case ErrUnauthenticated:
		return "Please login to save favorites"
	case ErrNoResults:
		return "No news found matching your search"
	}

	var unexpected *UnexpectedError
	if errors.As(err, &unexpected) {
		return "An unexpected error occurred: " + unexpected.Message
	}
	return "An unexpected error occurred: " + err.Error()
}
