package handlers

import "net/http"

// RegisterRoutes wires HTTP handlers into the provided ServeMux.
func RegisterRoutes(mux *http.ServeMux, deps Dependencies) {
	health := HealthHandler{}
	embeds := EmbedHandler{Embeds: deps.Embeds, Limiter: deps.EmbedLimiter}

	mux.HandleFunc("/healthz", health.Handle)
	mux.HandleFunc("/api/v1/embed", embeds.Resolve)
}

// Dependencies aggregates collaborators required by HTTP handlers.
type Dependencies struct {
	Embeds       EmbedResolver
	EmbedLimiter RateLimiter
}
