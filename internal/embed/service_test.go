package embed

import (
	"context"
	"errors"
	"net/url"
	"testing"
	"time"
)

type stubMetadata struct {
	name string
}

func (m *stubMetadata) Fetch(context.Context, *RequestContext) (*EmbedData, error) {
	return NewEmbedData("https://stub/" + m.name), nil
}

type stubProvider struct {
	name    string
	accepts bool
	created int
}

func (p *stubProvider) CanHandle(*url.URL) bool { return p.accepts }

func (p *stubProvider) NewMetadata(*url.URL) Metadata {
	p.created++
	return &stubMetadata{name: p.name}
}

func TestResolveDispatchesInRegistrationOrder(t *testing.T) {
	first := &stubProvider{name: "first", accepts: true}
	second := &stubProvider{name: "second", accepts: true}
	svc := NewMetadataService(nil, time.Hour, nil, first, second)

	m, err := svc.Resolve("https://example.com/x")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got := m.(*stubMetadata).name; got != "first" {
		t.Fatalf("expected the first registered provider, got %q", got)
	}
	if second.created != 0 {
		t.Fatal("second provider must not construct a resolver")
	}
}

func TestResolveFallsBackWhenNoProviderMatches(t *testing.T) {
	specific := &stubProvider{name: "specific", accepts: false}
	fallback := &stubProvider{name: "fallback", accepts: true}
	svc := NewMetadataService(nil, time.Hour, fallback, specific)

	m, err := svc.Resolve("https://example.com/x")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got := m.(*stubMetadata).name; got != "fallback" {
		t.Fatalf("expected fallback resolver, got %q", got)
	}
}

func TestResolveRejectsMalformedURLs(t *testing.T) {
	svc := NewMetadataService(nil, time.Hour, &stubProvider{accepts: true})

	for _, raw := range []string{"", "example.com/no-scheme", "://bad", "mailto:"} {
		if _, err := svc.Resolve(raw); !errors.Is(err, ErrMalformedInput) {
			t.Fatalf("resolve(%q): expected ErrMalformedInput got %v", raw, err)
		}
	}
}

func TestEmbedResolvesAndFetches(t *testing.T) {
	provider := &stubProvider{name: "p", accepts: true}
	svc := NewMetadataService(nil, time.Hour, nil, provider)

	data, err := svc.Embed(context.Background(), "https://example.com/x")
	if err != nil {
		t.Fatalf("embed: %v", err)
	}
	if data.URL != "https://stub/p" {
		t.Fatalf("unexpected data url %q", data.URL)
	}
}
