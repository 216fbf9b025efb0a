package middleware

import (
	"net/http"

	"github.com/go-chi/cors"
)

var defaultCORSOrigins = []string{
	"http://localhost:5173", // storefront dev server
	"http://localhost:3000",
	"https://cellsphere.shop",
	"https://admin.cellsphere.shop",
}

// CORS applies the allowed-origin policy. An empty list falls back to the
// storefront and admin origins.
func CORS(origins []string) func(http.Handler) http.Handler {
	if len(origins) == 0 {
		origins = defaultCORSOrigins
	}
	return cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", IdempotencyHeader, requestIDHeader},
		ExposedHeaders: []string{requestIDHeader, ReplayedHeader, "Retry-After"},
		// Bearer tokens travel in headers; no cookies cross origins.
		AllowCredentials: false,
		MaxAge:           300,
	})
}
