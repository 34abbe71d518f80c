package middleware

import (
	"encoding/json"
	"net/http"

	"go-account-service/internal/model"
)

func errorEnvelope(code string, message string) model.APIResponse {
	return model.APIResponse{
		Success: false,
		Error: &model.APIError{
			Code:    code,
			Message: message,
		},
	}
}

// writeJSONError writes the standard error envelope from code paths that run
// before a handler gets the chance to.
func writeJSONError(w http.ResponseWriter, status int, code string, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorEnvelope(code, message))
}
