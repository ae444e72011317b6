package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/linkembed/backend/internal/embed"
	"github.com/linkembed/backend/internal/logging"
)

// EmbedHandler serves embeddable-content lookups.
type EmbedHandler struct {
	Embeds  EmbedResolver
	Limiter RateLimiter
}

// Resolve handles GET /api/v1/embed?url=...&format=json|xml.
func (h EmbedHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()

	if !allowRequest(h.Limiter, r, "embed") {
		respondJSON(ctx, w, http.StatusTooManyRequests, map[string]string{
			"error": "rate limit exceeded",
		})
		return
	}

	rawURL := r.URL.Query().Get("url")
	if rawURL == "" {
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{
			"error": "missing url parameter",
		})
		return
	}

	format := r.URL.Query().Get("format")
	if format == "" {
		format = "json"
	}
	if format != "json" && format != "xml" {
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{
			"error": "format must be json or xml",
		})
		return
	}

	if h.Embeds == nil {
		respondJSON(ctx, w, http.StatusServiceUnavailable, map[string]string{
			"error": "embed resolver unavailable",
		})
		return
	}

	ctx, span := logging.StartSpan(ctx, "resolve_embed")
	data, err := h.Embeds.Embed(ctx, rawURL)
	span.End()
	if err != nil {
		logging.FromContext(ctx).Warn("resolve embed", "url", rawURL, "error", err)
		status := http.StatusBadGateway
		if errors.Is(err, embed.ErrMalformedInput) {
			status = http.StatusBadRequest
		}
		respondJSON(ctx, w, status, map[string]string{
			"error": "could not resolve url",
		})
		return
	}

	// Serialize into a buffer first so the client never sees a partially
	// written document if the walk fails midway.
	var buf bytes.Buffer
	var rw embed.ResponseWriter
	contentType := "application/json"
	if format == "xml" {
		rw = embed.NewXMLWriter(&buf)
		contentType = "text/xml"
	} else {
		rw = embed.NewJSONWriter(&buf)
	}

	if err := embed.WriteEmbedData(data, rw); err != nil {
		logging.FromContext(ctx).Error("serialize embed", "url", rawURL, "error", err)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{
			"error": "serialization failed",
		})
		return
	}
	if err := rw.Close(); err != nil {
		logging.FromContext(ctx).Error("close writer", "url", rawURL, "error", err)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{
			"error": "serialization failed",
		})
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func respondJSON(ctx context.Context, w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logging.FromContext(ctx).Error("encode response body", "status", status, "error", err)
		return
	}

	logger := logging.FromContext(ctx)
	switch {
	case status >= http.StatusInternalServerError:
		logger.Error("request failed", "status", status, "response", payload)
	case status >= http.StatusBadRequest:
		logger.Warn("request returned client error", "status", status, "response", payload)
	}
}
