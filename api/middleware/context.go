package middleware

import "context"

type contextKey string

const (
	ctxCartSession contextKey = "cart_session"
	ctxRequestID   contextKey = "request_id"
)

// CartSessionFromContext returns the storefront session id set by CartSession.
func CartSessionFromContext(ctx context.Context) string {
	return stringValue(ctx, ctxCartSession)
}

// WithCartSession injects the storefront session id into the context.
func WithCartSession(ctx context.Context, sessionID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxCartSession, sessionID)
}

// RequestIDFromContext returns the id assigned by RequestID.
func RequestIDFromContext(ctx context.Context) string {
	return stringValue(ctx, ctxRequestID)
}

func withRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxRequestID, id)
}

func stringValue(ctx context.Context, key contextKey) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(key).(string); ok {
		return v
	}
	return ""
}
