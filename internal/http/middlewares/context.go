package middlewares

import (
	"context"

	"github.com/dropDatabas3/imageguard/internal/session"
)

type ctxKey string

const (
	ctxIdentityKey  ctxKey = "identity"
	ctxRequestIDKey ctxKey = "request_id"
)

// WithIdentity inyecta la identidad autenticada en el contexto.
func WithIdentity(ctx context.Context, id *session.Identity) context.Context {
	return context.WithValue(ctx, ctxIdentityKey, id)
}

// GetIdentity retorna nil si la ruta no pasó por RequireAuth.
func GetIdentity(ctx context.Context) *session.Identity {
	if id, ok := ctx.Value(ctxIdentityKey).(*session.Identity); ok {
		return id
	}
	return nil
}

func setRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ctxRequestIDKey, requestID)
}

// GetRequestID retorna "" si no hay request ID.
func GetRequestID(ctx context.Context) string {
	if s, ok := ctx.Value(ctxRequestIDKey).(string); ok {
		return s
	}
	return ""
}
