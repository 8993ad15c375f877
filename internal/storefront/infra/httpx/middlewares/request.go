package middlewares

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/jcmexdev/supermarket-storefront/internal/catalog"
)

// contextKey is unexported so keys cannot collide with other packages.
type contextKey string

const (
	HeaderXRequestId      = "X-Request-Id"
	HeaderXIdempotencyKey = "X-Idempotency-Key"

	ContextKeyRequestID contextKey = "request_id"
)

// AttachRequestMetadata stores the chi request id in the context and echoes it
// back. The caller's idempotency key and bearer token are passed through to
// catalog calls.
func AttachRequestMetadata(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := middleware.GetReqID(r.Context())
		idempotencyKey := r.Header.Get(HeaderXIdempotencyKey)

		ctx := context.WithValue(r.Context(), ContextKeyRequestID, requestID)
		if idempotencyKey != "" {
			ctx = catalog.WithIdempotencyKey(ctx, idempotencyKey)
		}
		if token := bearerToken(r.Header.Get("Authorization")); token != "" {
			ctx = catalog.WithToken(ctx, token)
		}

		if requestID != "" {
			w.Header().Set(HeaderXRequestId, requestID)
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequestID returns the id stored by AttachRequestMetadata.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(ContextKeyRequestID).(string)
	return id
}

func bearerToken(header string) string {
	const prefix = "bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}
