package memory

import (
	"context"
	"strings"

	"github.com/dropDatabas3/imageguard/internal/domain/repository"
)

type userRepo struct{ s *Store }

func (r *userRepo) find(match func(repository.User) bool) (*repository.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, u := range r.s.users {
		if match(u) {
			cp := u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *userRepo) FindByUsername(_ context.Context, username string) (*repository.User, error) {
	return r.find(func(u repository.User) bool { return u.Username == username })
}

func (r *userRepo) FindByEmail(_ context.Context, email string) (*repository.User, error) {
	return r.find(func(u repository.User) bool { return strings.EqualFold(u.Email, email) })
}

func (r *userRepo) FindByID(_ context.Context, id int64) (*repository.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

func (r *userRepo) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	_, err := r.FindByUsername(ctx, username)
	return err == nil, nil
}

func (r *userRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	_, err := r.FindByEmail(ctx, email)
	return err == nil, nil
}

func (r *userRepo) Save(_ context.Context, u *repository.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if u.ID != 0 {
		if _, ok := r.s.users[u.ID]; !ok {
			return repository.ErrNotFound
		}
	}
	for id, other := range r.s.users {
		if id == u.ID {
			continue
		}
		if other.Username == u.Username || strings.EqualFold(other.Email, u.Email) {
			return repository.ErrConflict
		}
	}

	if u.ID == 0 {
		r.s.nextID++
		u.ID = r.s.nextID
		if u.CreatedAt.IsZero() {
			u.CreatedAt = r.s.now().UTC()
		}
	}
	r.s.users[u.ID] = *u
	return nil
}
