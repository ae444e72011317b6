package embed

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// MetadataService owns the provider registry, the shared HTTP transport and
// the cache policy applied to remembered provider faults. The registry is
// immutable after construction; the service is safe for concurrent use.
type MetadataService struct {
	providers   []Provider
	fallback    Provider
	client      *http.Client
	errCacheAge time.Duration
}

// NewMetadataService builds a service dispatching across the given providers
// in order. fallback handles URLs no provider accepts.
func NewMetadataService(client *http.Client, errCacheAge time.Duration, fallback Provider, providers ...Provider) *MetadataService {
	if client == nil {
		client = http.DefaultClient
	}
	if errCacheAge <= 0 {
		errCacheAge = time.Hour
	}
	return &MetadataService{
		providers:   providers,
		fallback:    fallback,
		client:      client,
		errCacheAge: errCacheAge,
	}
}

// HTTPClient returns the transport shared by all resolutions.
func (s *MetadataService) HTTPClient() *http.Client {
	return s.client
}

// ErrorResponseCacheAge is how long a provider suppresses API attempts after
// a remembered fault.
func (s *MetadataService) ErrorResponseCacheAge() time.Duration {
	return s.errCacheAge
}

// Resolve dispatches the URL to the first accepting provider and returns the
// constructed resolver. No network I/O happens here.
func (s *MetadataService) Resolve(rawURL string) (Metadata, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse %q: %v: %w", rawURL, err, ErrMalformedInput)
	}
	if !u.IsAbs() || u.Host == "" {
		return nil, fmt.Errorf("parse %q: not an absolute url: %w", rawURL, ErrMalformedInput)
	}

	for _, p := range s.providers {
		if p.CanHandle(u) {
			return p.NewMetadata(u), nil
		}
	}
	if s.fallback != nil {
		return s.fallback.NewMetadata(u), nil
	}
	return nil, fmt.Errorf("no provider for %q: %w", rawURL, ErrMalformedInput)
}

// Embed resolves and fetches in one step: URL in, normalized data out.
func (s *MetadataService) Embed(ctx context.Context, rawURL string) (*EmbedData, error) {
	m, err := s.Resolve(rawURL)
	if err != nil {
		return nil, err
	}
	return m.Fetch(ctx, &RequestContext{Service: s})
}

// RequestContext carries the process-wide collaborators into a resolver
// fetch. Resolvers treat it as read-only.
type RequestContext struct {
	Service *MetadataService
}
