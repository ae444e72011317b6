package embed

import "net/url"

// Provider recognizes URLs belonging to one external source and constructs
// the resolver for them. Providers are registered once at service start and
// evaluated in registration order, so more specific sources must be
// registered before broader ones.
type Provider interface {
	CanHandle(u *url.URL) bool
	NewMetadata(u *url.URL) Metadata
}
