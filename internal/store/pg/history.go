package pg

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/dropDatabas3/imageguard/internal/domain/repository"
)

type historyRepo struct{ db DB }

const historyColumns = `id, image_id, user_id, verification_date, result`

func scanHistory(row pgx.Row) (*repository.VerificationHistory, error) {
	var h repository.VerificationHistory
	if err := row.Scan(&h.ID, &h.ImageID, &h.UserID, &h.VerificationDate, &h.Result); err != nil {
		return nil, mapErr(err)
	}
	return &h, nil
}

func (r *historyRepo) list(ctx context.Context, where string, args ...any) ([]repository.VerificationHistory, error) {
	q := `SELECT ` + historyColumns + ` FROM verification_history`
	if where != "" {
		q += ` WHERE ` + where
	}
	q += ` ORDER BY verification_date, id`

	rows, err := r.db.Query(ctx, q, args...)
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()

	out := make([]repository.VerificationHistory, 0)
	for rows.Next() {
		h, err := scanHistory(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *h)
	}
	return out, mapErr(rows.Err())
}

// Save: una FK inexistente se reporta como ErrInvalidInput.
func (r *historyRepo) Save(ctx context.Context, h *repository.VerificationHistory) error {
	if h.ID == "" {
		return repository.ErrInvalidInput
	}
	const q = `
		INSERT INTO verification_history (id, image_id, user_id, verification_date, result)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.db.Exec(ctx, q, h.ID, h.ImageID, h.UserID, h.VerificationDate, h.Result)
	return mapErr(err)
}

func (r *historyRepo) FindByID(ctx context.Context, id string) (*repository.VerificationHistory, error) {
	return scanHistory(r.db.QueryRow(ctx, `SELECT `+historyColumns+` FROM verification_history WHERE id = $1`, id))
}

func (r *historyRepo) DeleteByID(ctx context.Context, id string) error {
	_, err := r.db.Exec(ctx, `DELETE FROM verification_history WHERE id = $1`, id)
	return mapErr(err)
}

func (r *historyRepo) FindAll(ctx context.Context) ([]repository.VerificationHistory, error) {
	return r.list(ctx, "")
}

func (r *historyRepo) FindByUser(ctx context.Context, userID int64) ([]repository.VerificationHistory, error) {
	return r.list(ctx, `user_id = $1`, userID)
}

func (r *historyRepo) FindByImage(ctx context.Context, imageID string) ([]repository.VerificationHistory, error) {
	return r.list(ctx, `image_id = $1`, imageID)
}

func (r *historyRepo) FindByDateBetween(ctx context.Context, from, to time.Time) ([]repository.VerificationHistory, error) {
	return r.list(ctx, `verification_date BETWEEN $1 AND $2`, from, to)
}

func (r *historyRepo) FindByResult(ctx context.Context, result string) ([]repository.VerificationHistory, error) {
	return r.list(ctx, `result = $1`, result)
}

func (r *historyRepo) FindByUserAndDateBetween(ctx context.Context, userID int64, from, to time.Time) ([]repository.VerificationHistory, error) {
	return r.list(ctx, `user_id = $1 AND verification_date BETWEEN $2 AND $3`, userID, from, to)
}
