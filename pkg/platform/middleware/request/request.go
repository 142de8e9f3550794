// Package request assigns every inbound request a correlation ID.
package request

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"obligo/pkg/requestcontext"
)

// HeaderRequestID is read from the client when present and echoed on the response.
const HeaderRequestID = "X-Request-ID"

const maxRequestIDLength = 128

// RequestID stores the caller's X-Request-ID (or a fresh UUID) in the context.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(HeaderRequestID)
		if requestID == "" || len(requestID) > maxRequestIDLength {
			requestID = uuid.NewString()
		}
		w.Header().Set(HeaderRequestID, requestID)
		ctx := requestcontext.WithRequestID(r.Context(), requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetRequestID retrieves the request ID from the context.
func GetRequestID(ctx context.Context) string {
	return requestcontext.RequestID(ctx)
}
