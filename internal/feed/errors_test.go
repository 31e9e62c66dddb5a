package feed

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"testing"

	"tapnews/pkg/news"

	"github.com/go-playground/assert/v2"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{
			name: "rate limited status",
			err:  fmt.Errorf("newsapi everything: %w", &news.APIError{StatusCode: http.StatusTooManyRequests}),
			want: ErrRateLimited,
		},
		{
			name: "unauthorized status",
			err:  &news.APIError{StatusCode: http.StatusUnauthorized, Code: "apiKeyInvalid"},
			want: ErrUnauthorized,
		},
		{
			name: "not found status",
			err:  &news.APIError{StatusCode: http.StatusNotFound},
			want: ErrNotFound,
		},
		{
			name: "dns failure",
			err:  &url.Error{Op: "Get", URL: "https://newsapi.org", Err: &net.DNSError{Err: "no such host", Name: "newsapi.org"}},
			want: ErrNetworkUnreachable,
		},
		{
			name: "connection refused",
			err:  &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("connection refused")},
			want: ErrNetworkUnreachable,
		},
		{
			name: "already classified",
			err:  fmt.Errorf("save favorite: %w", ErrUnauthenticated),
			want: ErrUnauthenticated,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.err)
			if got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestClassifyUnexpected(t *testing.T) {
	got := Classify(&news.APIError{StatusCode: http.StatusBadRequest, Code: "parameterInvalid", Message: "bad country"})

	var unexpected *UnexpectedError
	assert.Equal(t, true, errors.As(got, &unexpected))
	assert.Equal(t, "bad country", unexpected.Message)

	got = Classify(context.Canceled)
	assert.Equal(t, true, errors.As(got, &unexpected))
	assert.Equal(t, true, errors.Is(got, context.Canceled))

	assert.Equal(t, nil, Classify(nil))
}

func TestMessage(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{ErrRateLimited, "Rate limit exceeded. Please try again later."},
		{ErrUnauthorized, "API authorization failed. Please check the configuration."},
		{ErrNotFound, "Could not find news at this time. Please try again later."},
		{ErrNetworkUnreachable, "Could not connect to the server. Please check your internet connection."},
		{ErrUnauthenticated, "Please login to save favorites"},
		{ErrNoResults, "No news found matching your search"},
		{errors.New("disk on fire"), "An unexpected error occurred: disk on fire"},
		{nil, ""},
	}

	for _, tt := range tests {
		if got := Message(tt.err); got != tt.want {
			t.Errorf("Message(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}

func TestClassifyContext_Timeouts(t *testing.T) {
	clientTimeout := &url.Error{Op: "Get", URL: "https://newsapi.org/v2/top-headlines", Err: fmt.Errorf("awaiting headers: %w", context.DeadlineExceeded)}

	assert.Equal(t, ErrNetworkUnreachable, ClassifyContext(context.Background(), clientTimeout))

	ctx, cancel := context.WithTimeout(context.Background(), 0)
	defer cancel()
	<-ctx.Done()

	var unexpected *UnexpectedError
	assert.Equal(t, true, errors.As(ClassifyContext(ctx, clientTimeout), &unexpected))
}
