package config

import (
	"encoding/base64"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testKey() string {
	return base64.StdEncoding.EncodeToString([]byte(strings.Repeat("k", 32)))
}

func writeYAML(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
	return p
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("IMAGEGUARD_SIGNING_KEY", testKey())

	c, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "dev", c.App.Env)
	assert.Equal(t, ":8080", c.Server.Addr)
	assert.Equal(t, "memory", c.Storage.Driver)
	assert.Equal(t, "memory", c.Revocation.Kind)
	assert.False(t, c.Revocation.Sweep)
	assert.Equal(t, "fs", c.Blob.Driver)
	assert.Equal(t, "/store", c.Blob.Dir)
	assert.Equal(t, "0000", c.Auth.ResetCode)
	assert.Equal(t, 10*time.Minute, Duration(c.JWT.AccessTTL))
	assert.Equal(t, 30*24*time.Hour, Duration(c.JWT.RememberTTL))
	assert.Equal(t, 0, c.Predict.Retries)
}

func TestLoad_YAMLAndEnvOverride(t *testing.T) {
	p := writeYAML(t, `
app:
  env: prod
server:
  addr: ":9000"
jwt:
  signing_key: "`+testKey()+`"
  access_ttl: 5m
predict:
  base_url: http://nn:8000
  retries: 2
`)
	t.Setenv("IMAGEGUARD_PREDICT_URL", "http://other:9999")

	c, err := Load(p)
	require.NoError(t, err)

	assert.Equal(t, "prod", c.App.Env)
	assert.Equal(t, ":9000", c.Server.Addr)
	assert.Equal(t, 5*time.Minute, Duration(c.JWT.AccessTTL))
	assert.Equal(t, "http://other:9999", c.Predict.BaseURL)
	assert.Equal(t, 2, c.Predict.Retries)
}

func TestLoad_RejectsShortSigningKey(t *testing.T) {
	t.Setenv("IMAGEGUARD_SIGNING_KEY", base64.StdEncoding.EncodeToString([]byte("short")))

	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at least 32 bytes")
}

func TestLoad_RejectsMissingSigningKey(t *testing.T) {
	t.Setenv("IMAGEGUARD_SIGNING_KEY", "")

	_, err := Load("")
	require.Error(t, err)
}

func TestValidate_Drivers(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{"postgres sin dsn", "storage:\n  driver: postgres\n", "storage.dsn"},
		{"storage desconocido", "storage:\n  driver: mongo\n", "storage.driver"},
		{"revocation desconocido", "revocation:\n  kind: etcd\n", "revocation.kind"},
		{"s3 sin bucket", "blob:\n  driver: s3\n", "blob.s3.bucket"},
		{"duracion invalida", "predict:\n  timeout: banana\n", "predict.timeout"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("IMAGEGUARD_SIGNING_KEY", testKey())
			_, err := Load(writeYAML(t, tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
