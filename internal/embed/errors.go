package embed

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedInput indicates the URL did not match the identifier
	// pattern of the provider that constructed the resolver.
	ErrMalformedInput = errors.New("embed: malformed input url")

	// ErrUpstreamUnavailable indicates a transport failure or a non-2xx
	// response from a remote API.
	ErrUpstreamUnavailable = errors.New("embed: upstream unavailable")

	// ErrUpstreamEmpty marks a successful remote call that returned no usable
	// content. Resolvers treat it as a soft miss and fall back to scraping.
	ErrUpstreamEmpty = errors.New("embed: upstream returned no usable content")

	// ErrWriterClosed is returned by response writer methods invoked after
	// Close.
	ErrWriterClosed = errors.New("embed: response writer closed")
)

// UpstreamError wraps a transport fault in the upstream taxonomy.
func UpstreamError(op string, err error) error {
	return fmt.Errorf("%s: %v: %w", op, err, ErrUpstreamUnavailable)
}

// UpstreamStatusError reports an unexpected HTTP status in the upstream
// taxonomy.
func UpstreamStatusError(op string, status int) error {
	return fmt.Errorf("%s: unexpected status %d: %w", op, status, ErrUpstreamUnavailable)
}
