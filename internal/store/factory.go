// Package store elige el backend de persistencia (memory | postgres) y
// expone los tres repositorios detrás de una sola estructura.
package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/dropDatabas3/imageguard/internal/domain/repository"
	"github.com/dropDatabas3/imageguard/internal/observability/logger"
	"github.com/dropDatabas3/imageguard/internal/store/memory"
	"github.com/dropDatabas3/imageguard/internal/store/pg"
)

type Config struct {
	Driver   string
	DSN      string
	Postgres struct {
		MaxOpenConns, MaxIdleConns int
	}
	// Migrate aplica las migraciones embebidas antes de abrir el pool.
	Migrate bool
}

// Stores agrupa los repositorios del driver elegido.
type Stores struct {
	Driver  string
	Users   repository.UserRepository
	Images  repository.ImageRepository
	History repository.HistoryRepository
	Ping    func(ctx context.Context) error
	Close   func() error
}

// migrate es un seam para tests.
var migrate = pg.Migrate

// Open abre el driver configurado.
func Open(ctx context.Context, cfg Config) (*Stores, error) {
	log := logger.From(ctx).With(logger.Component("store"), logger.Op("Open"))

	switch strings.ToLower(strings.TrimSpace(cfg.Driver)) {
	case "", "memory":
		m := memory.New()
		log.Info("store opened", logger.String("driver", "memory"))
		return &Stores{
			Driver:  "memory",
			Users:   m.Users(),
			Images:  m.Images(),
			History: m.History(),
			Ping:    func(context.Context) error { return nil },
			Close:   func() error { return nil },
		}, nil

	case "postgres", "pg", "postgresql":
		if cfg.Migrate {
			if err := migrate(ctx, cfg.DSN); err != nil {
				return nil, err
			}
			log.Info("migrations applied")
		}
		p, err := pg.Open(ctx, pg.Config{
			DSN:          cfg.DSN,
			MaxOpenConns: cfg.Postgres.MaxOpenConns,
			MaxIdleConns: cfg.Postgres.MaxIdleConns,
		})
		if err != nil {
			return nil, err
		}
		log.Info("store opened", logger.String("driver", "postgres"))
		return &Stores{
			Driver:  "postgres",
			Users:   p.Users(),
			Images:  p.Images(),
			History: p.History(),
			Ping:    p.Ping,
			Close:   func() error { p.Close(); return nil },
		}, nil

	default:
		return nil, fmt.Errorf("store: unsupported driver: %s", cfg.Driver)
	}
}
