package memory

import (
	"context"
	"time"

	"github.com/dropDatabas3/imageguard/internal/domain/repository"
)

type historyRepo struct{ s *Store }

// Save exige que el usuario y la imagen referenciados existan.
func (r *historyRepo) Save(_ context.Context, h *repository.VerificationHistory) error {
	if h.ID == "" {
		return repository.ErrInvalidInput
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[h.UserID]; !ok {
		return repository.ErrInvalidInput
	}
	if _, ok := r.s.images[h.ImageID]; !ok {
		return repository.ErrInvalidInput
	}
	r.s.history[h.ID] = *h
	return nil
}

func (r *historyRepo) FindByID(_ context.Context, id string) (*repository.VerificationHistory, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	h, ok := r.s.history[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &h, nil
}

func (r *historyRepo) DeleteByID(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.history, id)
	return nil
}

func (r *historyRepo) filter(match func(repository.VerificationHistory) bool) []repository.VerificationHistory {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]repository.VerificationHistory, 0)
	for _, h := range r.s.history {
		if match(h) {
			out = append(out, h)
		}
	}
	sortHistory(out)
	return out
}

func (r *historyRepo) FindAll(context.Context) ([]repository.VerificationHistory, error) {
	return r.filter(func(repository.VerificationHistory) bool { return true }), nil
}

func (r *historyRepo) FindByUser(_ context.Context, userID int64) ([]repository.VerificationHistory, error) {
	return r.filter(func(h repository.VerificationHistory) bool { return h.UserID == userID }), nil
}

func (r *historyRepo) FindByImage(_ context.Context, imageID string) ([]repository.VerificationHistory, error) {
	return r.filter(func(h repository.VerificationHistory) bool { return h.ImageID == imageID }), nil
}

func (r *historyRepo) FindByDateBetween(_ context.Context, from, to time.Time) ([]repository.VerificationHistory, error) {
	return r.filter(func(h repository.VerificationHistory) bool { return between(h.VerificationDate, from, to) }), nil
}

func (r *historyRepo) FindByResult(_ context.Context, result string) ([]repository.VerificationHistory, error) {
	return r.filter(func(h repository.VerificationHistory) bool { return h.Result == result }), nil
}

func (r *historyRepo) FindByUserAndDateBetween(_ context.Context, userID int64, from, to time.Time) ([]repository.VerificationHistory, error) {
	return r.filter(func(h repository.VerificationHistory) bool {
		return h.UserID == userID && between(h.VerificationDate, from, to)
	}), nil
}
