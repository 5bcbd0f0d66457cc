// Package app arma el contenedor del servicio a partir de la configuración
// y corre el servidor HTTP con apagado ordenado.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"github.com/dropDatabas3/imageguard/internal/blob"
	"github.com/dropDatabas3/imageguard/internal/cache"
	"github.com/dropDatabas3/imageguard/internal/config"
	adminctrl "github.com/dropDatabas3/imageguard/internal/http/controllers/admin"
	authctrl "github.com/dropDatabas3/imageguard/internal/http/controllers/auth"
	healthctrl "github.com/dropDatabas3/imageguard/internal/http/controllers/health"
	historyctrl "github.com/dropDatabas3/imageguard/internal/http/controllers/history"
	imagesctrl "github.com/dropDatabas3/imageguard/internal/http/controllers/images"
	mw "github.com/dropDatabas3/imageguard/internal/http/middlewares"
	"github.com/dropDatabas3/imageguard/internal/http/router"
	jwtx "github.com/dropDatabas3/imageguard/internal/jwt"
	"github.com/dropDatabas3/imageguard/internal/metrics"
	"github.com/dropDatabas3/imageguard/internal/observability/logger"
	"github.com/dropDatabas3/imageguard/internal/predict"
	"github.com/dropDatabas3/imageguard/internal/rate"
	"github.com/dropDatabas3/imageguard/internal/security/password"
	"github.com/dropDatabas3/imageguard/internal/session"
	"github.com/dropDatabas3/imageguard/internal/sniff"
	"github.com/dropDatabas3/imageguard/internal/store"
	"github.com/dropDatabas3/imageguard/internal/verify"
)

const shutdownTimeout = 15 * time.Second

// Container agrupa las dependencias ya construidas.
type Container struct {
	Config   *config.Config
	Stores   *store.Stores
	Cache    cache.Client
	Blobs    blob.Store
	Codec    *jwtx.Codec
	Sessions *session.Service
	Pipeline *verify.Pipeline
	Handler  http.Handler
}

// New construye el contenedor. Ante error libera lo que ya se abrió.
func New(ctx context.Context, cfg *config.Config) (_ *Container, err error) {
	log := logger.From(ctx).With(logger.Component("app"), logger.Op("New"))
	c := &Container{Config: cfg}
	defer func() {
		if err != nil {
			c.Close()
		}
	}()

	// Paso 1: cache compartido (revocaciones + rate limit)
	c.Cache, err = cache.New(ctx, cache.Config{
		Driver:   cfg.Revocation.Kind,
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		Prefix:   cfg.Redis.Prefix,
	})
	if err != nil {
		return nil, fmt.Errorf("app: cache: %w", err)
	}

	// Paso 2: codec de tokens
	key, err := cfg.SigningKeyBytes()
	if err != nil {
		return nil, err
	}
	c.Codec, err = jwtx.NewCodec(key, jwtx.WithTTL(
		config.Duration(cfg.JWT.AccessTTL),
		config.Duration(cfg.JWT.RememberTTL),
	))
	if err != nil {
		return nil, fmt.Errorf("app: jwt: %w", err)
	}

	var regOpts []session.RegistryOption
	if cfg.Revocation.Sweep {
		regOpts = append(regOpts, session.WithSweep(c.tokenLifetime))
	}
	revocations := session.NewRegistry(c.Cache, regOpts...)

	// Paso 3: persistencia
	storeCfg := store.Config{Driver: cfg.Storage.Driver, DSN: cfg.Storage.DSN, Migrate: cfg.Storage.Migrate}
	storeCfg.Postgres.MaxOpenConns = cfg.Storage.Postgres.MaxOpenConns
	storeCfg.Postgres.MaxIdleConns = cfg.Storage.Postgres.MaxIdleConns
	c.Stores, err = store.Open(ctx, storeCfg)
	if err != nil {
		return nil, fmt.Errorf("app: store: %w", err)
	}

	c.Blobs, err = blob.New(ctx, blob.Config{
		Driver: cfg.Blob.Driver,
		Dir:    cfg.Blob.Dir,
		S3: blob.S3Config{
			Bucket:       cfg.Blob.S3.Bucket,
			Region:       cfg.Blob.S3.Region,
			BaseEndpoint: cfg.Blob.S3.BaseEndpoint,
			AccessKey:    cfg.Blob.S3.AccessKey,
			SecretKey:    cfg.Blob.S3.SecretKey,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("app: blob: %w", err)
	}

	// Paso 4: servicios de dominio
	pp := cfg.Security.PasswordPolicy
	c.Sessions = session.NewService(session.Deps{
		Users:       c.Stores.Users,
		Codec:       c.Codec,
		Revocations: revocations,
		ResetCode:   cfg.Auth.ResetCode,
		Hash:        password.Default,
		Policy: &password.Policy{
			MinLength:     pp.MinLength,
			RequireUpper:  pp.RequireUpper,
			RequireLower:  pp.RequireLower,
			RequireDigit:  pp.RequireDigit,
			RequireSymbol: pp.RequireSymbol,
		},
	})

	c.Pipeline = verify.NewPipeline(verify.PipelineDeps{
		Sniffer: sniff.New(),
		Blobs:   c.Blobs,
		Images:  c.Stores.Images,
		History: c.Stores.History,
		Users:   c.Stores.Users,
		Predictor: predict.NewClient(predict.Config{
			BaseURL: cfg.Predict.BaseURL,
			Timeout: config.Duration(cfg.Predict.Timeout),
			Retries: cfg.Predict.Retries,
		}),
	})

	// Paso 5: HTTP
	reg := prometheus.NewRegistry()
	httpMetrics, metricsHandler, err := mw.RegisterMetrics(reg)
	if err != nil {
		return nil, fmt.Errorf("app: metrics: %w", err)
	}
	if err := reg.Register(metrics.NewCacheCollector(c.Cache)); err != nil {
		return nil, fmt.Errorf("app: cache metrics: %w", err)
	}

	var limiter rate.Limiter
	if cfg.Rate.Enabled {
		limiter = rate.NewWindowLimiter(c.Cache, "rl:auth:", cfg.Rate.MaxRequests, config.Duration(cfg.Rate.Window))
	}

	c.Handler = router.New(router.Deps{
		Auth:    authctrl.NewController(c.Sessions),
		Images:  imagesctrl.NewController(c.Pipeline, verify.NewImageService(c.Stores.Images, c.Blobs), cfg.Server.MaxUploadBytes),
		History: historyctrl.NewController(verify.NewHistoryService(c.Stores.History)),
		Admin:   adminctrl.NewController(),
		Health: healthctrl.NewController(
			healthctrl.Check{Name: "store", Ping: c.Stores.Ping},
			healthctrl.Check{Name: "cache", Ping: c.Cache.Ping},
			healthctrl.Check{Name: "blob", Ping: c.Blobs.Ping},
		),
		Authorizer:     c.Sessions,
		RateLimiter:    limiter,
		Metrics:        httpMetrics,
		MetricsHandler: metricsHandler,
	})

	log.Info("container ready",
		logger.String("storage", c.Stores.Driver),
		logger.String("revocation", cfg.Revocation.Kind),
		logger.String("blob", cfg.Blob.Driver),
		logger.Any("rate_limit", cfg.Rate.Enabled),
	)
	return c, nil
}

// tokenLifetime alimenta el sweep del registro de revocación.
func (c *Container) tokenLifetime(token string) time.Duration {
	claims, err := c.Codec.Verify(token)
	if err != nil {
		return 0
	}
	return c.Codec.Remaining(claims)
}

// Close libera store y cache. Es seguro llamarlo con el contenedor a medio armar.
func (c *Container) Close() {
	if c == nil {
		return
	}
	log := logger.L().With(logger.Component("app"), logger.Op("Close"))
	if c.Stores != nil && c.Stores.Close != nil {
		if err := c.Stores.Close(); err != nil {
			log.Warn("store close failed", logger.Err(err))
		}
	}
	if c.Cache != nil {
		if err := c.Cache.Close(); err != nil {
			log.Warn("cache close failed", logger.Err(err))
		}
	}
}

// Server construye el http.Server con los timeouts configurados.
func (c *Container) Server() *http.Server {
	return &http.Server{
		Addr:              c.Config.Server.Addr,
		Handler:           c.Handler,
		ReadTimeout:       config.Duration(c.Config.Server.ReadTimeout),
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      config.Duration(c.Config.Server.WriteTimeout),
		IdleTimeout:       120 * time.Second,
	}
}

// Run sirve hasta que ctx se cancele y luego apaga ordenadamente.
func (c *Container) Run(ctx context.Context) error {
	srv := c.Server()
	log := logger.From(ctx).With(logger.Component("app"), logger.Op("Run"))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("listening", logger.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("app: listen: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		log.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
