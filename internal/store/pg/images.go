package pg

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/dropDatabas3/imageguard/internal/domain/repository"
)

type imageRepo struct{ db DB }

const imageColumns = `id, filepath, upload_date`

func scanImage(row pgx.Row) (*repository.Image, error) {
	var img repository.Image
	if err := row.Scan(&img.ID, &img.Filepath, &img.UploadDate); err != nil {
		return nil, mapErr(err)
	}
	return &img, nil
}

func (r *imageRepo) list(ctx context.Context, q string, args ...any) ([]repository.Image, error) {
	rows, err := r.db.Query(ctx, q, args...)
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()

	out := make([]repository.Image, 0)
	for rows.Next() {
		img, err := scanImage(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *img)
	}
	return out, mapErr(rows.Err())
}

func (r *imageRepo) Save(ctx context.Context, img *repository.Image) error {
	if img.ID == "" {
		return repository.ErrInvalidInput
	}
	const q = `
		INSERT INTO images (id, filepath, upload_date)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET filepath = EXCLUDED.filepath, upload_date = EXCLUDED.upload_date
	`
	_, err := r.db.Exec(ctx, q, img.ID, img.Filepath, img.UploadDate)
	return mapErr(err)
}

func (r *imageRepo) FindByID(ctx context.Context, id string) (*repository.Image, error) {
	return scanImage(r.db.QueryRow(ctx, `SELECT `+imageColumns+` FROM images WHERE id = $1`, id))
}

func (r *imageRepo) ExistsByID(ctx context.Context, id string) (bool, error) {
	var ok bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM images WHERE id = $1)`, id).Scan(&ok)
	return ok, mapErr(err)
}

func (r *imageRepo) DeleteByID(ctx context.Context, id string) error {
	_, err := r.db.Exec(ctx, `DELETE FROM images WHERE id = $1`, id)
	return mapErr(err)
}

func (r *imageRepo) FindAll(ctx context.Context) ([]repository.Image, error) {
	return r.list(ctx, `SELECT `+imageColumns+` FROM images ORDER BY upload_date, id`)
}

func (r *imageRepo) FindByUploadDateBetween(ctx context.Context, from, to time.Time) ([]repository.Image, error) {
	return r.list(ctx, `SELECT `+imageColumns+` FROM images WHERE upload_date BETWEEN $1 AND $2 ORDER BY upload_date, id`, from, to)
}

func (r *imageRepo) FindByFilepath(ctx context.Context, path string) (*repository.Image, error) {
	return scanImage(r.db.QueryRow(ctx, `SELECT `+imageColumns+` FROM images WHERE filepath = $1 LIMIT 1`, path))
}

func (r *imageRepo) FindByFilepathContaining(ctx context.Context, partial string) ([]repository.Image, error) {
	return r.list(ctx, `SELECT `+imageColumns+` FROM images WHERE filepath ILIKE $1 ORDER BY upload_date, id`, containsPattern(partial))
}

func (r *imageRepo) UpdateFilepath(ctx context.Context, id, path string) (*repository.Image, error) {
	return scanImage(r.db.QueryRow(ctx, `UPDATE images SET filepath = $2 WHERE id = $1 RETURNING `+imageColumns, id, path))
}
