package rate

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dropDatabas3/imageguard/internal/cache"
)

type Result struct {
	Allowed     bool
	Remaining   int64
	RetryAfter  time.Duration
	CurrentHits int64
}

type Limiter interface {
	Allow(ctx context.Context, key string) (Result, error)
}

// WindowLimiter: fixed window sencillo (INCR + EXPIRE) sobre cache.Client,
// así funciona igual con memory o redis.
type WindowLimiter struct {
	Store  cache.Client
	Prefix string
	Max    int64
	Window time.Duration
	now    func() time.Time
}

func NewWindowLimiter(store cache.Client, prefix string, max int, window time.Duration) *WindowLimiter {
	if prefix == "" {
		prefix = "rl:"
	}
	return &WindowLimiter{
		Store:  store,
		Prefix: prefix,
		Max:    int64(max),
		Window: window,
		now:    time.Now,
	}
}

func (l *WindowLimiter) Allow(ctx context.Context, key string) (Result, error) {
	now := l.now().UTC()
	winStart := now.Truncate(l.Window)
	k := fmt.Sprintf("%s%s:%d", l.Prefix, strings.ReplaceAll(key, " ", "_"), winStart.Unix())

	hits, err := l.Store.Incr(ctx, k, l.Window)
	if err != nil {
		return Result{}, err
	}

	remaining := l.Max - hits
	if remaining < 0 {
		remaining = 0
	}
	res := Result{
		Allowed:     hits <= l.Max,
		Remaining:   remaining,
		CurrentHits: hits,
	}
	if !res.Allowed {
		// Retry after: resto de la ventana
		res.RetryAfter = winStart.Add(l.Window).Sub(now)
	}
	return res, nil
}
