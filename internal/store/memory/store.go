// Package memory implementa los repositorios en proceso. Es el driver
// por defecto en dev y el fake de los tests de servicio.
package memory

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/dropDatabas3/imageguard/internal/domain/repository"
)

// Store comparte un único lock entre los tres repositorios para poder
// validar referencias (history -> user/image) sin carreras.
type Store struct {
	mu      sync.RWMutex
	nextID  int64
	users   map[int64]repository.User
	images  map[string]repository.Image
	history map[string]repository.VerificationHistory
	now     func() time.Time
}

func New() *Store {
	return &Store{
		users:   map[int64]repository.User{},
		images:  map[string]repository.Image{},
		history: map[string]repository.VerificationHistory{},
		now:     time.Now,
	}
}

func (s *Store) Users() repository.UserRepository      { return &userRepo{s} }
func (s *Store) Images() repository.ImageRepository    { return &imageRepo{s} }
func (s *Store) History() repository.HistoryRepository { return &historyRepo{s} }

func sortImages(out []repository.Image) {
	sort.Slice(out, func(i, j int) bool {
		if out[i].UploadDate.Equal(out[j].UploadDate) {
			return out[i].ID < out[j].ID
		}
		return out[i].UploadDate.Before(out[j].UploadDate)
	})
}

func sortHistory(out []repository.VerificationHistory) {
	sort.Slice(out, func(i, j int) bool {
		if out[i].VerificationDate.Equal(out[j].VerificationDate) {
			return out[i].ID < out[j].ID
		}
		return out[i].VerificationDate.Before(out[j].VerificationDate)
	})
}

func between(t, from, to time.Time) bool {
	return !t.Before(from) && !t.After(to)
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}
