package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/linkembed/backend/internal/embed"
)

type stubResolver struct {
	data *embed.EmbedData
	err  error
	urls []string
}

func (s *stubResolver) Embed(_ context.Context, rawURL string) (*embed.EmbedData, error) {
	s.urls = append(s.urls, rawURL)
	if s.err != nil {
		return nil, s.err
	}
	return s.data, nil
}

func resolvedData() *embed.EmbedData {
	data := embed.NewEmbedData("https://example.com/post")
	data.Title = "A post"
	data.Type = embed.SingleImage
	data.Medias = []embed.Media{{
		Type:      embed.ImageMedia,
		Thumbnail: &embed.ImageInfo{URL: "https://example.com/t.jpg"},
		RawURL:    "https://example.com/t.jpg",
		Location:  "https://example.com/post",
	}}
	return data
}

func TestEmbedHandlerResolveJSON(t *testing.T) {
	resolver := &stubResolver{data: resolvedData()}
	handler := EmbedHandler{Embeds: resolver}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/embed?url=https%3A%2F%2Fexample.com%2Fpost", nil)
	rec := httptest.NewRecorder()

	handler.Resolve(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200 got %d: %s", rec.Code, rec.Body.String())
	}
	if got := rec.Header().Get("Content-Type"); got != "application/json" {
		t.Fatalf("expected json content type got %q", got)
	}
	if len(resolver.urls) != 1 || resolver.urls[0] != "https://example.com/post" {
		t.Fatalf("resolver saw %v", resolver.urls)
	}

	var decoded struct {
		URL    string `json:"url"`
		Title  string `json:"title"`
		Medias []any  `json:"medias"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &decoded); err != nil {
		t.Fatalf("invalid json body %q: %v", rec.Body.String(), err)
	}
	if decoded.URL != "https://example.com/post" || decoded.Title != "A post" {
		t.Fatalf("body mismatch: %+v", decoded)
	}
	if len(decoded.Medias) != 1 {
		t.Fatalf("expected one media got %d", len(decoded.Medias))
	}
}

func TestEmbedHandlerResolveXML(t *testing.T) {
	handler := EmbedHandler{Embeds: &stubResolver{data: resolvedData()}}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/embed?format=xml&url=https%3A%2F%2Fexample.com%2Fpost", nil)
	rec := httptest.NewRecorder()

	handler.Resolve(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200 got %d", rec.Code)
	}
	if got := rec.Header().Get("Content-Type"); got != "text/xml" {
		t.Fatalf("expected xml content type got %q", got)
	}
	body := rec.Body.String()
	if !strings.HasPrefix(body, "<embed>") || !strings.Contains(body, "<title>A post</title>") {
		t.Fatalf("unexpected xml body %q", body)
	}
}

func TestEmbedHandlerValidation(t *testing.T) {
	tests := []struct {
		name   string
		target string
		method string
		status int
	}{
		{"missing url", "/api/v1/embed", http.MethodGet, http.StatusBadRequest},
		{"bad format", "/api/v1/embed?url=https%3A%2F%2Fx&format=yaml", http.MethodGet, http.StatusBadRequest},
		{"wrong method", "/api/v1/embed?url=https%3A%2F%2Fx", http.MethodPost, http.StatusMethodNotAllowed},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			handler := EmbedHandler{Embeds: &stubResolver{data: resolvedData()}}
			req := httptest.NewRequest(tc.method, tc.target, nil)
			rec := httptest.NewRecorder()

			handler.Resolve(rec, req)

			if rec.Code != tc.status {
				t.Fatalf("expected status %d got %d", tc.status, rec.Code)
			}
		})
	}
}

func TestEmbedHandlerErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"malformed input", embed.ErrMalformedInput, http.StatusBadRequest},
		{"upstream failure", embed.ErrUpstreamUnavailable, http.StatusBadGateway},
		{"other failure", errors.New("boom"), http.StatusBadGateway},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			handler := EmbedHandler{Embeds: &stubResolver{err: tc.err}}
			req := httptest.NewRequest(http.MethodGet, "/api/v1/embed?url=https%3A%2F%2Fx", nil)
			rec := httptest.NewRecorder()

			handler.Resolve(rec, req)

			if rec.Code != tc.status {
				t.Fatalf("expected status %d got %d", tc.status, rec.Code)
			}
		})
	}
}

type denyLimiter struct{}

func (denyLimiter) Allow(string) bool { return false }

func TestEmbedHandlerRateLimited(t *testing.T) {
	handler := EmbedHandler{Embeds: &stubResolver{data: resolvedData()}, Limiter: denyLimiter{}}
	req := httptest.NewRequest(http.MethodGet, "/api/v1/embed?url=https%3A%2F%2Fx", nil)
	rec := httptest.NewRecorder()

	handler.Resolve(rec, req)

	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected status 429 got %d", rec.Code)
	}
}
