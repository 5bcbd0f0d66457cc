package repository

import (
	"context"
	"time"
)

// Image es el registro de un archivo subido y persistido en el blob store.
type Image struct {
	ID         string    `json:"id"`
	Filepath   string    `json:"filepath"`
	UploadDate time.Time `json:"uploadDate"`
}

// ImageRepository define operaciones sobre imágenes.
type ImageRepository interface {
	// Save inserta o reemplaza la imagen por ID.
	Save(ctx context.Context, img *Image) error

	// FindByID retorna ErrNotFound si no existe.
	FindByID(ctx context.Context, id string) (*Image, error)

	ExistsByID(ctx context.Context, id string) (bool, error)

	// DeleteByID es idempotente.
	DeleteByID(ctx context.Context, id string) error

	FindAll(ctx context.Context) ([]Image, error)

	// FindByUploadDateBetween incluye ambos extremos.
	FindByUploadDateBetween(ctx context.Context, from, to time.Time) ([]Image, error)

	// FindByFilepath busca por path exacto. Retorna ErrNotFound si no existe.
	FindByFilepath(ctx context.Context, path string) (*Image, error)

	// FindByFilepathContaining busca substrings sin distinguir mayúsculas.
	FindByFilepathContaining(ctx context.Context, partial string) ([]Image, error)

	// UpdateFilepath retorna ErrNotFound si la imagen no existe.
	UpdateFilepath(ctx context.Context, id, path string) (*Image, error)
}
