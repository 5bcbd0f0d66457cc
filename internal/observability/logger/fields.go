package logger

import (
	"time"

	"go.uber.org/zap"
)

// ─────────────── HTTP ───────────────

func RequestID(v string) zap.Field { return zap.String("request_id", v) }
func Method(v string) zap.Field { return zap.String("method", v) }
func Path(v string) zap.Field { return zap.String("path", v) }
func Status(v int) zap.Field { return zap.Int("status", v) }
func Duration(v time.Duration) zap.Field { return zap.Duration("duration", v) }
func Bytes(v int) zap.Field { return zap.Int("bytes", v) }
func ClientIP(v string) zap.Field { return zap.String("client_ip", v) }

// ─────────────── Negocio ───────────────

// UserID identifica al usuario autenticado.
func UserID(v int64) zap.Field { return zap.Int64("user_id", v) }

// Username identifica al sujeto del token.
func Username(v string) zap.Field { return zap.String("username", v) }

// ImageID identifica una imagen persistida.
func ImageID(v string) zap.Field { return zap.String("image_id", v) }

// HistoryID identifica un registro de verificación.
func HistoryID(v string) zap.Field { return zap.String("history_id", v) }

// Filename es el nombre original del upload (sin sanitizar).
func Filename(v string) zap.Field { return zap.String("filename", v) }

// MIME es el tipo detectado por contenido.
func MIME(v string) zap.Field { return zap.String("mime", v) }

// ─────────────── Sistema ───────────────

func Component(v string) zap.Field { return zap.String("component", v) }
func Op(v string) zap.Field { return zap.String("op", v) }
func Layer(v string) zap.Field { return zap.String("layer", v) }
func Err(err error) zap.Field { return zap.Error(err) }
func Count(v int) zap.Field { return zap.Int("count", v) }
func Any(key string, v any) zap.Field { return zap.Any(key, v) }
func String(key, v string) zap.Field { return zap.String(key, v) }
func Int(key string, v int) zap.Field { return zap.Int(key, v) }
