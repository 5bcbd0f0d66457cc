package verify

import (
	"context"
	"strings"
	"time"

	"github.com/dropDatabas3/imageguard/internal/domain/repository"
	"github.com/dropDatabas3/imageguard/internal/observability/logger"
	"github.com/google/uuid"
)

// HistoryFilter combina criterios con AND; los campos vacíos no filtran.
type HistoryFilter struct {
	ImageID string
	UserID  *int64
	Since   *time.Time
	Result  string
}

type HistoryService struct {
	repo repository.HistoryRepository
	now  func() time.Time
}

func NewHistoryService(repo repository.HistoryRepository) *HistoryService {
	return &HistoryService{repo: repo, now: time.Now}
}

// Add exige que imagen y usuario existan (repository.ErrInvalidInput si no).
func (s *HistoryService) Add(ctx context.Context, h repository.VerificationHistory) (*repository.VerificationHistory, error) {
	if strings.TrimSpace(h.ID) == "" {
		h.ID = uuid.NewString()
	}
	if h.VerificationDate.IsZero() {
		h.VerificationDate = s.now().UTC()
	}
	if err := s.repo.Save(ctx, &h); err != nil {
		return nil, err
	}
	logger.From(ctx).Info("history added", logger.Component("history"), logger.HistoryID(h.ID))
	return &h, nil
}

func (s *HistoryService) Delete(ctx context.Context, id string) error {
	return s.repo.DeleteByID(ctx, id)
}

func (s *HistoryService) Get(ctx context.Context, id string) (*repository.VerificationHistory, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *HistoryService) All(ctx context.Context) ([]repository.VerificationHistory, error) {
	return s.repo.FindAll(ctx)
}

// Search usa el criterio más selectivo contra el repositorio y aplica el
// resto en memoria.
func (s *HistoryService) Search(ctx context.Context, f HistoryFilter) ([]repository.VerificationHistory, error) {
	var (
		rows []repository.VerificationHistory
		err  error
	)
	switch {
	case f.ImageID != "":
		rows, err = s.repo.FindByImage(ctx, f.ImageID)
	case f.UserID != nil && f.Since != nil:
		rows, err = s.repo.FindByUserAndDateBetween(ctx, *f.UserID, *f.Since, s.now().UTC())
	case f.UserID != nil:
		rows, err = s.repo.FindByUser(ctx, *f.UserID)
	case f.Result != "":
		rows, err = s.repo.FindByResult(ctx, f.Result)
	case f.Since != nil:
		rows, err = s.repo.FindByDateBetween(ctx, *f.Since, s.now().UTC())
	default:
		rows, err = s.repo.FindAll(ctx)
	}
	if err != nil {
		return nil, err
	}

	out := make([]repository.VerificationHistory, 0, len(rows))
	now := s.now().UTC()
	for _, h := range rows {
		if f.ImageID != "" && h.ImageID != f.ImageID {
			continue
		}
		if f.UserID != nil && h.UserID != *f.UserID {
			continue
		}
		if f.Result != "" && h.Result != f.Result {
			continue
		}
		if f.Since != nil && (h.VerificationDate.Before(*f.Since) || h.VerificationDate.After(now)) {
			continue
		}
		out = append(out, h)
	}
	return out, nil
}
