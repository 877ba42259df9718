package middleware

import (
	"net/http"

	"github.com/go-chi/cors"
)

var defaultCORSOrigins = []string{
	"http://localhost:5173", // storefront dev server
	"http://localhost:3000", // admin panel dev server
}

// CORS returns middleware that lets the storefront and register panel call
// the API from the browser.
func CORS(origins []string, sessionHeader string) func(http.Handler) http.Handler {
	if len(origins) == 0 {
		origins = defaultCORSOrigins
	}
	if sessionHeader == "" {
		sessionHeader = DefaultCartSessionHeader
	}
	return cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "Idempotency-Key", "X-Requested-With", requestIDHeader, sessionHeader},
		ExposedHeaders:   []string{requestIDHeader, sessionHeader},
		AllowCredentials: false,
		MaxAge:           300,
	}).Handler
}
