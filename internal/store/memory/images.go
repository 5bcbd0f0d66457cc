package memory

import (
	"context"
	"time"

	"github.com/dropDatabas3/imageguard/internal/domain/repository"
)

type imageRepo struct{ s *Store }

func (r *imageRepo) Save(_ context.Context, img *repository.Image) error {
	if img.ID == "" {
		return repository.ErrInvalidInput
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.images[img.ID] = *img
	return nil
}

func (r *imageRepo) FindByID(_ context.Context, id string) (*repository.Image, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	img, ok := r.s.images[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &img, nil
}

func (r *imageRepo) ExistsByID(_ context.Context, id string) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	_, ok := r.s.images[id]
	return ok, nil
}

// DeleteByID borra también el historial de la imagen (como ON DELETE CASCADE).
func (r *imageRepo) DeleteByID(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.images, id)
	for hid, h := range r.s.history {
		if h.ImageID == id {
			delete(r.s.history, hid)
		}
	}
	return nil
}

func (r *imageRepo) filter(match func(repository.Image) bool) []repository.Image {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]repository.Image, 0)
	for _, img := range r.s.images {
		if match(img) {
			out = append(out, img)
		}
	}
	sortImages(out)
	return out
}

func (r *imageRepo) FindAll(context.Context) ([]repository.Image, error) {
	return r.filter(func(repository.Image) bool { return true }), nil
}

func (r *imageRepo) FindByUploadDateBetween(_ context.Context, from, to time.Time) ([]repository.Image, error) {
	return r.filter(func(img repository.Image) bool { return between(img.UploadDate, from, to) }), nil
}

func (r *imageRepo) FindByFilepath(_ context.Context, path string) (*repository.Image, error) {
	out := r.filter(func(img repository.Image) bool { return img.Filepath == path })
	if len(out) == 0 {
		return nil, repository.ErrNotFound
	}
	return &out[0], nil
}

func (r *imageRepo) FindByFilepathContaining(_ context.Context, partial string) ([]repository.Image, error) {
	return r.filter(func(img repository.Image) bool { return containsFold(img.Filepath, partial) }), nil
}

func (r *imageRepo) UpdateFilepath(_ context.Context, id, path string) (*repository.Image, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	img, ok := r.s.images[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	img.Filepath = path
	r.s.images[id] = img
	return &img, nil
}
