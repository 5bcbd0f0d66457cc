package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		" WARN ":  zapcore.WarnLevel,
		"warning": zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
		"":        zapcore.InfoLevel,
		"nope":    zapcore.InfoLevel,
	}
	for in, want := range cases {
		assert.Equal(t, want, parseLevel(in), "level %q", in)
	}
}

func TestBuild_JSONOutputWithBaseFields(t *testing.T) {
	var buf bytes.Buffer
	l := build(Config{Env: "prod", Level: "debug", ServiceName: "imageguard", Output: &buf})

	l.Debug("hello", ImageID("img-1"), UserID(7))
	require.NoError(t, l.Sync())

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "hello", entry["msg"])
	assert.Equal(t, "imageguard", entry["service"])
	assert.Equal(t, "img-1", entry["image_id"])
	assert.EqualValues(t, 7, entry["user_id"])
}

func TestFrom_FallsBackToSingleton(t *testing.T) {
	var buf bytes.Buffer
	restore := Replace(build(Config{Output: &buf}))
	defer restore()

	From(context.Background()).Info("fallback")
	assert.Contains(t, buf.String(), "fallback")
}

func TestWith_ScopesLoggerInContext(t *testing.T) {
	var buf bytes.Buffer
	restore := Replace(build(Config{Output: &buf}))
	defer restore()

	ctx := With(context.Background(), RequestID("rid-1"))
	From(ctx).Info("scoped")

	assert.Contains(t, buf.String(), `"request_id":"rid-1"`)
}
