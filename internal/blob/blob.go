// Package blob persiste los bytes de las imágenes subidas.
//
// Drivers:
//   - fs: directorio local (default "/store"), se crea si falta.
//   - s3: bucket S3/MinIO vía aws-sdk-go-v2.
package blob

import (
	"context"
	"errors"
	"fmt"
)

// ErrForeignLocation: la ubicación no pertenece a este store (otro dir o bucket).
var ErrForeignLocation = errors.New("blob: location outside store")

// Store guarda y recupera objetos por nombre.
type Store interface {
	// Put guarda data bajo name y devuelve la ubicación persistida
	// (path absoluto o URI s3://bucket/key).
	Put(ctx context.Context, name string, data []byte) (string, error)
	// Delete es idempotente y solo acepta ubicaciones devueltas por Put
	// (ErrForeignLocation en otro caso).
	Delete(ctx context.Context, location string) error
	Ping(ctx context.Context) error
}

type Config struct {
	Driver string // fs | s3
	Dir    string
	S3     S3Config
}

// New construye el driver configurado.
func New(ctx context.Context, cfg Config) (Store, error) {
	switch cfg.Driver {
	case "", "fs":
		return NewFS(cfg.Dir), nil
	case "s3":
		return NewS3(ctx, cfg.S3)
	default:
		return nil, fmt.Errorf("blob: unknown driver %q", cfg.Driver)
	}
}
