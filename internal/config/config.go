package config

import (
	"encoding/base64"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	App struct {
		// dev | prod
		Env string `yaml:"env"`
	} `yaml:"app"`

	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`

	Server struct {
		Addr           string `yaml:"addr"`
		ReadTimeout    string `yaml:"read_timeout"`
		WriteTimeout   string `yaml:"write_timeout"`
		MaxUploadBytes int64  `yaml:"max_upload_bytes"`
	} `yaml:"server"`

	Storage struct {
		Driver   string `yaml:"driver"` // memory | postgres
		DSN      string `yaml:"dsn"`
		Postgres struct {
			MaxOpenConns int `yaml:"max_open_conns"`
			MaxIdleConns int `yaml:"max_idle_conns"`
		} `yaml:"postgres"`
		Migrate bool `yaml:"migrate"` // aplicar migraciones al arrancar
	} `yaml:"storage"`

	JWT struct {
		// SigningKey en base64; debe decodificar a >= 32 bytes.
		SigningKey  string `yaml:"signing_key"`
		AccessTTL   string `yaml:"access_ttl"`
		RememberTTL string `yaml:"remember_ttl"`
	} `yaml:"jwt"`

	Revocation struct {
		Kind  string `yaml:"kind"`  // memory | redis
		Sweep bool   `yaml:"sweep"` // expirar entradas junto con el token
	} `yaml:"revocation"`

	Redis struct {
		Addr     string `yaml:"addr"`
		DB       int    `yaml:"db"`
		Password string `yaml:"password"`
		Prefix   string `yaml:"prefix"`
	} `yaml:"redis"`

	Blob struct {
		Driver string `yaml:"driver"` // fs | s3
		Dir    string `yaml:"dir"`
		S3     struct {
			Bucket       string `yaml:"bucket"`
			Region       string `yaml:"region"`
			BaseEndpoint string `yaml:"base_endpoint"`
			AccessKey    string `yaml:"access_key"`
			SecretKey    string `yaml:"secret_key"`
		} `yaml:"s3"`
	} `yaml:"blob"`

	Predict struct {
		BaseURL string `yaml:"base_url"`
		Timeout string `yaml:"timeout"`
		Retries int    `yaml:"retries"` // solo errores de red, nunca por status
	} `yaml:"predict"`

	Auth struct {
		// ResetCode es el código de confirmación fijo del reset de password.
		// Placeholder de un mecanismo OTP real: no apto para producción.
		ResetCode string `yaml:"reset_code"`
	} `yaml:"auth"`

	Rate struct {
		Enabled     bool   `yaml:"enabled"`
		Window      string `yaml:"window"`
		MaxRequests int    `yaml:"max_requests"`
	} `yaml:"rate"`

	Security struct {
		PasswordPolicy struct {
			MinLength     int  `yaml:"min_length"`
			RequireUpper  bool `yaml:"require_upper"`
			RequireLower  bool `yaml:"require_lower"`
			RequireDigit  bool `yaml:"require_digit"`
			RequireSymbol bool `yaml:"require_symbol"`
		} `yaml:"password_policy"`
	} `yaml:"security"`
}

// Load lee el YAML en path (si path == "" parte de un Config vacío), aplica
// overrides de entorno IMAGEGUARD_*, completa defaults y valida.
func Load(path string) (*Config, error) {
	var c Config
	if strings.TrimSpace(path) != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(b, &c); err != nil {
			return nil, fmt.Errorf("config: yaml: %w", err)
		}
	}
	c.applyEnv()
	c.applyDefaults()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Config) applyDefaults() {
	if c.App.Env == "" {
		c.App.Env = "dev"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Server.ReadTimeout == "" {
		c.Server.ReadTimeout = "15s"
	}
	if c.Server.WriteTimeout == "" {
		c.Server.WriteTimeout = "60s"
	}
	if c.Server.MaxUploadBytes == 0 {
		c.Server.MaxUploadBytes = 10 << 20
	}
	if c.Storage.Driver == "" {
		c.Storage.Driver = "memory"
	}
	if c.JWT.AccessTTL == "" {
		c.JWT.AccessTTL = "10m"
	}
	if c.JWT.RememberTTL == "" {
		c.JWT.RememberTTL = "720h" // 30d
	}
	if c.Revocation.Kind == "" {
		c.Revocation.Kind = "memory"
	}
	if c.Redis.Addr == "" {
		c.Redis.Addr = "localhost:6379"
	}
	if c.Redis.Prefix == "" {
		c.Redis.Prefix = "imageguard"
	}
	if c.Blob.Driver == "" {
		c.Blob.Driver = "fs"
	}
	if c.Blob.Dir == "" {
		c.Blob.Dir = "/store"
	}
	if c.Blob.S3.Region == "" {
		c.Blob.S3.Region = "us-east-1"
	}
	if c.Predict.BaseURL == "" {
		c.Predict.BaseURL = "http://localhost:8000"
	}
	if c.Predict.Timeout == "" {
		c.Predict.Timeout = "30s"
	}
	if c.Auth.ResetCode == "" {
		c.Auth.ResetCode = "0000"
	}
	if c.Rate.Window == "" {
		c.Rate.Window = "1m"
	}
	if c.Rate.MaxRequests == 0 {
		c.Rate.MaxRequests = 60
	}
	if c.Security.PasswordPolicy.MinLength == 0 {
		c.Security.PasswordPolicy.MinLength = 8
	}
}

// applyEnv pisa los campos operativos desde el entorno.
func (c *Config) applyEnv() {
	str := func(key string, dst *string) {
		if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}
	str("IMAGEGUARD_ENV", &c.App.Env)
	str("IMAGEGUARD_LOG_LEVEL", &c.Log.Level)
	str("IMAGEGUARD_ADDR", &c.Server.Addr)
	str("IMAGEGUARD_STORAGE_DRIVER", &c.Storage.Driver)
	str("IMAGEGUARD_STORAGE_DSN", &c.Storage.DSN)
	str("IMAGEGUARD_SIGNING_KEY", &c.JWT.SigningKey)
	str("IMAGEGUARD_REVOCATION_KIND", &c.Revocation.Kind)
	str("IMAGEGUARD_REDIS_ADDR", &c.Redis.Addr)
	str("IMAGEGUARD_BLOB_DRIVER", &c.Blob.Driver)
	str("IMAGEGUARD_BLOB_DIR", &c.Blob.Dir)
	str("IMAGEGUARD_PREDICT_URL", &c.Predict.BaseURL)
	str("IMAGEGUARD_RESET_CODE", &c.Auth.ResetCode)

	if v := os.Getenv("IMAGEGUARD_STORAGE_MIGRATE"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Storage.Migrate = b
		}
	}
	if v := os.Getenv("IMAGEGUARD_RATE_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Rate.Enabled = b
		}
	}
}

// Validate chequea duraciones, drivers y la fuerza de la clave de firma.
func (c *Config) Validate() error {
	for name, v := range map[string]string{
		"server.read_timeout":  c.Server.ReadTimeout,
		"server.write_timeout": c.Server.WriteTimeout,
		"jwt.access_ttl":       c.JWT.AccessTTL,
		"jwt.remember_ttl":     c.JWT.RememberTTL,
		"predict.timeout":      c.Predict.Timeout,
		"rate.window":          c.Rate.Window,
	} {
		if _, err := time.ParseDuration(v); err != nil {
			return fmt.Errorf("config: %s: %w", name, err)
		}
	}
	switch c.Storage.Driver {
	case "memory":
	case "postgres":
		if c.Storage.DSN == "" {
			return fmt.Errorf("config: storage.dsn is required for postgres")
		}
	default:
		return fmt.Errorf("config: unknown storage.driver %q", c.Storage.Driver)
	}
	switch c.Revocation.Kind {
	case "memory", "redis":
	default:
		return fmt.Errorf("config: unknown revocation.kind %q", c.Revocation.Kind)
	}
	switch c.Blob.Driver {
	case "fs":
	case "s3":
		if c.Blob.S3.Bucket == "" {
			return fmt.Errorf("config: blob.s3.bucket is required for s3")
		}
	default:
		return fmt.Errorf("config: unknown blob.driver %q", c.Blob.Driver)
	}
	if c.Predict.Retries < 0 {
		return fmt.Errorf("config: predict.retries must be >= 0")
	}
	if _, err := c.SigningKeyBytes(); err != nil {
		return err
	}
	return nil
}

// SigningKeyBytes decodifica jwt.signing_key (base64 estándar).
func (c *Config) SigningKeyBytes() ([]byte, error) {
	raw := strings.TrimSpace(c.JWT.SigningKey)
	if raw == "" {
		return nil, fmt.Errorf("config: jwt.signing_key is required")
	}
	b, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		return nil, fmt.Errorf("config: jwt.signing_key: %w", err)
	}
	if len(b) < 32 {
		return nil, fmt.Errorf("config: jwt.signing_key must decode to at least 32 bytes (got %d)", len(b))
	}
	return b, nil
}

// Duration parsea un campo ya validado; devuelve 0 si está vacío.
func Duration(v string) time.Duration {
	d, _ := time.ParseDuration(v)
	return d
}
