package middleware

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"
)

// Envelope is the uniform response shape: {success, data} on the happy path,
// {success, error} otherwise. Every handler answers with it, including the
// panic path.
type Envelope struct {
	Success bool                   `json:"success"`
	Data    interface{}            `json:"data,omitempty"`
	Error   string                 `json:"error,omitempty"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// RespondWithData sends a success envelope
func RespondWithData(w http.ResponseWriter, statusCode int, data interface{}) {
	writeJSON(w, statusCode, Envelope{Success: true, Data: data})
}

// RespondWithError sends a failure envelope
func RespondWithError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, Envelope{Success: false, Error: message})
}

// RespondWithValidationErrors sends a failure envelope carrying field errors
func RespondWithValidationErrors(w http.ResponseWriter, errors []ValidationError) {
	writeJSON(w, http.StatusBadRequest, Envelope{
		Success: false,
		Error:   "validation failed",
		Details: map[string]interface{}{"validation_errors": errors},
	})
}

// RespondWithJSON sends an arbitrary JSON payload outside the envelope
func RespondWithJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	writeJSON(w, statusCode, payload)
}

func writeJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(payload)
}

// ErrorHandlingMiddleware catches panics and converts them to envelope 500s,
// so no request path can answer with anything but JSON.
func ErrorHandlingMiddleware(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					logger.Error("Panic recovered",
						zap.Any("error", err),
						zap.String("path", r.URL.Path),
						zap.String("method", r.Method),
					)

					RespondWithError(w, http.StatusInternalServerError, "internal server error")
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
