package providers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/linkembed/backend/internal/embed"
)

func testRequestContext(client *http.Client) *embed.RequestContext {
	return &embed.RequestContext{
		Service: embed.NewMetadataService(client, time.Hour, nil),
	}
}

func mustParse(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("parse %q: %v", raw, err)
	}
	return u
}

const ogPage = `<!DOCTYPE html>
<html>
<head>
<title>Fallback Title</title>
<meta property="og:title" content="OG Title">
<meta property="og:description" content="OG Description">
<meta property="og:image" content="https://cdn.example.com/cover.jpg">
<meta property="og:url" content="https://example.com/canonical">
</head>
<body></body>
</html>`

const barePage = `<!DOCTYPE html>
<html>
<head>
<title>Bare Title</title>
<meta name="description" content="Bare description">
</head>
<body></body>
</html>`

func TestHTMLMetadataExtractsOpenGraph(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(ogPage))
	}))
	defer srv.Close()

	m := NewHTMLMetadata(mustParse(t, srv.URL))
	data, err := m.Fetch(context.Background(), testRequestContext(srv.Client()))
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}

	if data.Title != "OG Title" {
		t.Fatalf("title mismatch: %q", data.Title)
	}
	if data.Description != "OG Description" {
		t.Fatalf("description mismatch: %q", data.Description)
	}
	if data.URL != "https://example.com/canonical" {
		t.Fatalf("canonical url mismatch: %q", data.URL)
	}
	if data.Type != embed.SingleImage {
		t.Fatalf("expected single image type got %q", data.Type)
	}
	if len(data.Medias) != 1 {
		t.Fatalf("expected one media got %d", len(data.Medias))
	}
	if data.Medias[0].RawURL != "https://cdn.example.com/cover.jpg" {
		t.Fatalf("media raw url mismatch: %q", data.Medias[0].RawURL)
	}
	if data.MetadataImage == nil || data.MetadataImage.Thumbnail.URL != "https://cdn.example.com/cover.jpg" {
		t.Fatalf("metadata image mismatch: %+v", data.MetadataImage)
	}
}

func TestHTMLMetadataDegradesWithoutImage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(barePage))
	}))
	defer srv.Close()

	m := NewHTMLMetadata(mustParse(t, srv.URL))
	data, err := m.Fetch(context.Background(), testRequestContext(srv.Client()))
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}

	if data.Title != "Bare Title" {
		t.Fatalf("title mismatch: %q", data.Title)
	}
	if data.Description != "Bare description" {
		t.Fatalf("description mismatch: %q", data.Description)
	}
	if data.Medias == nil || len(data.Medias) != 0 {
		t.Fatalf("expected empty media list got %+v", data.Medias)
	}
	if data.MetadataImage != nil {
		t.Fatalf("expected no metadata image got %+v", data.MetadataImage)
	}
}

func TestHTMLMetadataReportsUpstreamFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	m := NewHTMLMetadata(mustParse(t, srv.URL))
	if _, err := m.Fetch(context.Background(), testRequestContext(srv.Client())); !errors.Is(err, embed.ErrUpstreamUnavailable) {
		t.Fatalf("expected ErrUpstreamUnavailable got %v", err)
	}
}

func TestHTMLMetadataFetchesOnce(t *testing.T) {
	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		_, _ = w.Write([]byte(ogPage))
	}))
	defer srv.Close()

	m := NewHTMLMetadata(mustParse(t, srv.URL))
	req := testRequestContext(srv.Client())

	first, err := m.Fetch(context.Background(), req)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	second, err := m.Fetch(context.Background(), req)
	if err != nil {
		t.Fatalf("refetch: %v", err)
	}
	if hits != 1 {
		t.Fatalf("expected one page fetch got %d", hits)
	}
	if first != second {
		t.Fatal("expected the cached result reference")
	}
}
