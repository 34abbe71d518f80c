package middleware

import (
	"encoding/json"
	"net/http"
	"time"
)

const defaultRequestTimeout = 30 * time.Second

// Timeout bounds handler execution; the request context is cancelled at the
// deadline so store calls abort with it.
func Timeout(timeout time.Duration) func(http.Handler) http.Handler {
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}

	message, err := json.Marshal(errorEnvelope("REQUEST_TIMEOUT", "request timed out"))
	if err != nil {
		message = []byte(`{"success":false}`)
	}

	return func(next http.Handler) http.Handler {
		return http.TimeoutHandler(next, timeout, string(message))
	}
}
