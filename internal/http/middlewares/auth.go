package middlewares

import (
	"context"
	"net/http"
	"strings"

	"github.com/dropDatabas3/imageguard/internal/domain/repository"
	httperrors "github.com/dropDatabas3/imageguard/internal/http/errors"
	"github.com/dropDatabas3/imageguard/internal/observability/logger"
	"github.com/dropDatabas3/imageguard/internal/session"
)

// Authorizer es el gate de sesión (session.Service lo cumple).
type Authorizer interface {
	Authorize(ctx context.Context, token string) (*session.Identity, error)
}

// BearerToken extrae el token de "Authorization: Bearer <token>".
// Retorna "" si el header falta o tiene otro esquema.
func BearerToken(r *http.Request) string {
	ah := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(ah) < len("Bearer ") || !strings.EqualFold(ah[:len("Bearer ")], "bearer ") {
		return ""
	}
	return strings.TrimSpace(ah[len("Bearer "):])
}

// RequireAuth valida el bearer token contra el Authorizer y guarda la
// identidad en el contexto. Sin token responde 401 TOKEN_MISSING.
func RequireAuth(a Authorizer) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := BearerToken(r)
			if raw == "" {
				httperrors.WriteError(w, httperrors.ErrTokenMissing)
				return
			}

			id, err := a.Authorize(r.Context(), raw)
			if err != nil {
				appErr := httperrors.FromError(err)
				if appErr.HTTPStatus >= 500 {
					logger.From(r.Context()).Error("authorize failed",
						logger.Layer("middleware"),
						logger.Op("RequireAuth"),
						logger.Err(err),
					)
				}
				httperrors.WriteError(w, appErr)
				return
			}

			ctx := WithIdentity(r.Context(), id)
			ctx = logger.With(ctx, logger.UserID(id.UserID), logger.Username(id.Username))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole exige un rol concreto. Debe usarse después de RequireAuth.
func RequireRole(role repository.Role) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := GetIdentity(r.Context())
			if id == nil {
				httperrors.WriteError(w, httperrors.ErrTokenMissing)
				return
			}
			if id.Role != role {
				httperrors.WriteError(w, httperrors.ErrForbidden.WithDetail("role "+string(role)+" required"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
