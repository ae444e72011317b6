package handlers

import (
	"context"

	"github.com/linkembed/backend/internal/embed"
)

// EmbedResolver resolves a URL into normalized embeddable-content data.
type EmbedResolver interface {
	Embed(ctx context.Context, rawURL string) (*embed.EmbedData, error)
}
