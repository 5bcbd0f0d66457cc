package verify

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/dropDatabas3/imageguard/internal/blob"
	"github.com/dropDatabas3/imageguard/internal/domain/repository"
	"github.com/dropDatabas3/imageguard/internal/observability/logger"
	"github.com/google/uuid"
)

// ImageService es la administración de registros de imagen.
type ImageService struct {
	repo  repository.ImageRepository
	blobs blob.Store // nil = no se tocan archivos
	now   func() time.Time
}

func NewImageService(repo repository.ImageRepository, blobs blob.Store) *ImageService {
	return &ImageService{repo: repo, blobs: blobs, now: time.Now}
}

// Add completa ID y fecha si vienen vacíos.
func (s *ImageService) Add(ctx context.Context, img repository.Image) (*repository.Image, error) {
	if strings.TrimSpace(img.ID) == "" {
		img.ID = uuid.NewString()
	}
	if img.UploadDate.IsZero() {
		img.UploadDate = s.now().UTC()
	}
	if err := s.repo.Save(ctx, &img); err != nil {
		return nil, err
	}
	logger.From(ctx).Info("image added", logger.Component("images"), logger.ImageID(img.ID))
	return &img, nil
}

func (s *ImageService) UpdateFilepath(ctx context.Context, id, path string) (*repository.Image, error) {
	return s.repo.UpdateFilepath(ctx, id, path)
}

// Delete borra el registro (y su historial en cascada) y después el archivo.
// Un fallo al borrar el archivo se loguea: el registro ya no existe.
func (s *ImageService) Delete(ctx context.Context, id string) error {
	log := logger.From(ctx).With(logger.Component("images"), logger.Op("Delete"), logger.ImageID(id))

	img, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if err := s.repo.DeleteByID(ctx, id); err != nil {
		return err
	}
	if s.blobs == nil {
		return nil
	}

	switch err := s.blobs.Delete(ctx, img.Filepath); {
	case err == nil:
		log.Info("image deleted")
	case errors.Is(err, blob.ErrForeignLocation):
		// rutas cargadas a mano por /images/add no son nuestras
		log.Info("image deleted; file outside blob store left in place", logger.String("filepath", img.Filepath))
	default:
		log.Warn("image deleted; file removal failed", logger.String("filepath", img.Filepath), logger.Err(err))
	}
	return nil
}

func (s *ImageService) Get(ctx context.Context, id string) (*repository.Image, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *ImageService) All(ctx context.Context) ([]repository.Image, error) {
	return s.repo.FindAll(ctx)
}

func (s *ImageService) Exists(ctx context.Context, id string) (bool, error) {
	return s.repo.ExistsByID(ctx, id)
}

// Search: filepath (contiene, sin mayúsculas) tiene prioridad; si no, rango
// [since, ahora]; sin criterios devuelve todo.
func (s *ImageService) Search(ctx context.Context, filepath string, since *time.Time) ([]repository.Image, error) {
	switch {
	case filepath != "":
		return s.repo.FindByFilepathContaining(ctx, filepath)
	case since != nil:
		return s.repo.FindByUploadDateBetween(ctx, *since, s.now().UTC())
	default:
		return s.repo.FindAll(ctx)
	}
}
