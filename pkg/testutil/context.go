package testutil

import (
	"net/http"
	"time"

	"obligo/pkg/requestcontext"
)

// WithOperator adds an operator identity to the request context.
// This simulates what the auth middleware does for authenticated requests.
func WithOperator(req *http.Request, operator string) *http.Request {
	return req.WithContext(requestcontext.WithOperatorID(req.Context(), operator))
}

// WithRequestMeta sets the request ID and request time the middleware would set.
func WithRequestMeta(req *http.Request, requestID string, now time.Time) *http.Request {
	ctx := requestcontext.WithRequestID(req.Context(), requestID)
	ctx = requestcontext.WithTime(ctx, now)
	return req.WithContext(ctx)
}
