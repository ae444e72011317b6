package config

import (
	"os"
	"strconv"
	"time"
)

// Config captures the runtime configuration for the linkembed backend
// service.
type Config struct {
	AppPort     int
	LogLevel    string
	HTTPTimeout time.Duration

	// EmbedCacheTTL is the default lifetime of a cached resolution when the
	// result carries no cache advice of its own.
	EmbedCacheTTL time.Duration

	// ErrorResponseCacheAge is how long a provider suppresses API attempts
	// after a remembered credential fault.
	ErrorResponseCacheAge time.Duration

	ImgurClientID string

	TwitterConsumerKey    string
	TwitterConsumerSecret string
	TwitterAccessToken    string
	TwitterAccessSecret   string

	RateLimitRequests int
	RateLimitWindow   time.Duration
	RateLimitBurst    int
}

// Load reads configuration from environment variables, applying sensible
// defaults for local development while allowing overrides through environment
// variables.
func Load() (Config, error) {
	cfg := Config{
		AppPort:               getInt("LINKEMBED_PORT", 8080),
		LogLevel:              getString("LINKEMBED_LOG_LEVEL", "info"),
		HTTPTimeout:           getDuration("LINKEMBED_HTTP_TIMEOUT", 15*time.Second),
		EmbedCacheTTL:         getDuration("LINKEMBED_EMBED_CACHE_TTL", 15*time.Minute),
		ErrorResponseCacheAge: getDuration("LINKEMBED_ERROR_CACHE_AGE", time.Hour),
		ImgurClientID:         getString("LINKEMBED_IMGUR_CLIENT_ID", ""),
		TwitterConsumerKey:    getString("LINKEMBED_TWITTER_CONSUMER_KEY", ""),
		TwitterConsumerSecret: getString("LINKEMBED_TWITTER_CONSUMER_SECRET", ""),
		TwitterAccessToken:    getString("LINKEMBED_TWITTER_ACCESS_TOKEN", ""),
		TwitterAccessSecret:   getString("LINKEMBED_TWITTER_ACCESS_SECRET", ""),
		RateLimitRequests:     getInt("LINKEMBED_RATE_LIMIT_REQUESTS", 30),
		RateLimitWindow:       getDuration("LINKEMBED_RATE_LIMIT_WINDOW", time.Minute),
		RateLimitBurst:        getInt("LINKEMBED_RATE_LIMIT_BURST", 10),
	}

	return cfg, nil
}

// TwitterConfigured reports whether every Twitter credential is present.
func (c Config) TwitterConfigured() bool {
	return c.TwitterConsumerKey != "" && c.TwitterConsumerSecret != "" &&
		c.TwitterAccessToken != "" && c.TwitterAccessSecret != ""
}

func getString(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return i
}

func getDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return d
}
