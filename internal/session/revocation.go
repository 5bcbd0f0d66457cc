package session

import (
	"context"
	"time"

	"github.com/dropDatabas3/imageguard/internal/cache"
	"github.com/dropDatabas3/imageguard/internal/metrics"
	tokens "github.com/dropDatabas3/imageguard/internal/security/token"
)

const revokedPrefix = "revoked:"

// Registry es el conjunto de tokens revocados (logout / reset).
// Las claves son sha256(token); el token en claro nunca se almacena.
// Es seguro para uso concurrente: la sincronización queda en el cache.Client.
type Registry struct {
	store cache.Client
	// lifetime devuelve cuánto le queda al token; nil = sin sweep.
	lifetime func(token string) time.Duration
}

type RegistryOption func(*Registry)

// WithSweep hace que cada entrada expire junto con su token.
func WithSweep(lifetime func(token string) time.Duration) RegistryOption {
	return func(r *Registry) { r.lifetime = lifetime }
}

func NewRegistry(store cache.Client, opts ...RegistryOption) *Registry {
	r := &Registry{store: store}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Revoke es idempotente.
func (r *Registry) Revoke(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	var ttl time.Duration
	if r.lifetime != nil {
		ttl = r.lifetime(token)
		if ttl <= 0 {
			// ya vencido: la verificación de exp lo rechaza igual
			return nil
		}
	}
	if err := r.store.Set(ctx, key(token), "1", ttl); err != nil {
		return err
	}
	metrics.RevocationsTotal.Inc()
	return nil
}

func (r *Registry) IsRevoked(ctx context.Context, token string) (bool, error) {
	if token == "" {
		return false, nil
	}
	return r.store.Exists(ctx, key(token))
}

func key(token string) string { return revokedPrefix + tokens.SHA256Hex(token) }
