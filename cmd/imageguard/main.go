package main

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/dropDatabas3/imageguard/internal/app"
	"github.com/dropDatabas3/imageguard/internal/config"
	"github.com/dropDatabas3/imageguard/internal/observability/logger"
	"github.com/dropDatabas3/imageguard/internal/store/pg"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var cfgPath string

	root := &cobra.Command{
		Use:           "imageguard",
		Short:         "Servicio de verificación de autenticidad de imágenes",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// .env es opcional
			_ = godotenv.Load()
		},
	}
	root.PersistentFlags().StringVar(&cfgPath, "config", envOr("IMAGEGUARD_CONFIG", ""), "ruta al YAML de configuración")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Levanta la API HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cfgPath)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			ctx = logger.ToContext(ctx, logger.L())

			c, err := app.New(ctx, cfg)
			if err != nil {
				logger.L().Error("startup failed", logger.Err(err))
				return err
			}
			defer c.Close()
			return c.Run(ctx)
		},
	}

	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Aplica las migraciones de PostgreSQL",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cfgPath)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()
			if cfg.Storage.Driver != "postgres" {
				return fmt.Errorf("migrate: storage.driver is %q, expected postgres", cfg.Storage.Driver)
			}
			if err := pg.Migrate(cmd.Context(), cfg.Storage.DSN); err != nil {
				return err
			}
			logger.L().Info("migrations applied")
			return nil
		},
	}

	var keyBytes int
	keygenCmd := &cobra.Command{
		Use:   "keygen",
		Short: "Genera una clave de firma aleatoria (base64)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if keyBytes < 32 {
				return fmt.Errorf("keygen: --bytes must be >= 32")
			}
			b := make([]byte, keyBytes)
			if _, err := rand.Read(b); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), base64.StdEncoding.EncodeToString(b))
			return nil
		},
	}
	keygenCmd.Flags().IntVar(&keyBytes, "bytes", 32, "largo de la clave en bytes")

	root.AddCommand(serveCmd, migrateCmd, keygenCmd)
	return root
}

func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	logger.Init(logger.Config{
		Env:         cfg.App.Env,
		Level:       cfg.Log.Level,
		ServiceName: "imageguard",
	})
	return cfg, nil
}

func envOr(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
