package app

import (
	"log/slog"
	"net/http"

	"github.com/hashicorp/go-cleanhttp"

	"github.com/linkembed/backend/internal/config"
	"github.com/linkembed/backend/internal/embed"
	"github.com/linkembed/backend/internal/handlers"
	"github.com/linkembed/backend/internal/middleware"
	"github.com/linkembed/backend/internal/providers"
)

// buildDependencies wires the provider registry, the shared transport and the
// caching layer into the handler dependencies. Registration order is the
// dispatch priority: source-bound providers come before the oEmbed proxy, and
// the generic scraper only ever runs as fallback.
func buildDependencies(cfg config.Config, logger *slog.Logger) handlers.Dependencies {
	client := &http.Client{
		Transport: cleanhttp.DefaultPooledTransport(),
		Timeout:   cfg.HTTPTimeout,
	}

	var registry []embed.Provider

	if cfg.TwitterConfigured() {
		registry = append(registry, providers.NewTwitterProvider(
			cfg.TwitterConsumerKey,
			cfg.TwitterConsumerSecret,
			cfg.TwitterAccessToken,
			cfg.TwitterAccessSecret,
		))
	} else {
		logger.Warn("twitter credentials missing, provider disabled")
	}

	if cfg.ImgurClientID == "" {
		logger.Warn("imgur client id missing, falling back to page scraping for imgur urls")
	}
	registry = append(registry,
		providers.NewImgurProvider(cfg.ImgurClientID),
		providers.PixivProvider{},
		providers.OEmbedProxyProvider{},
	)

	service := embed.NewMetadataService(client, cfg.ErrorResponseCacheAge, providers.HTMLProvider{}, registry...)
	embeds := embed.NewCachingEmbedder(service, cfg.EmbedCacheTTL)

	limiter := middleware.NewIPRateLimiter(
		cfg.RateLimitRequests,
		cfg.RateLimitWindow,
		cfg.RateLimitBurst,
		cfg.RateLimitWindow*5,
	)

	return handlers.Dependencies{
		Embeds:       embeds,
		EmbedLimiter: limiter,
	}
}
