package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/marketpulse/core/pkg/logger"
)

// RequestID tags every request with an ID, echoes it back in the
// response headers, and puts a request-scoped logger on the context.
// An ID supplied by the caller is kept.
func RequestID(log *logger.Logger, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}
		w.Header().Set("X-Request-ID", requestID)

		reqLogger := log.WithRequestID(requestID)
		next(w, r.WithContext(reqLogger.ToContext(r.Context())))
	}
}
