package middleware

import (
	"net/http"

	"github.com/rs/cors"
)

// CORS allows browser clients to send bearer tokens and read the headers the
// account API sets (Location on created positions, Retry-After on throttling).
func CORS(origins []string) func(http.Handler) http.Handler {
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	handler := cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type", requestIDHeader},
		ExposedHeaders: []string{"Location", "Retry-After", requestIDHeader},
		MaxAge:         600,
		// Tokens travel in the Authorization header, never in cookies.
		AllowCredentials: false,
	})

	return handler.Handler
}
