package pg

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/dropDatabas3/imageguard/internal/domain/repository"
)

type userRepo struct{ db DB }

const userColumns = `id, username, email, password_hash, role, created_at`

func scanUser(row pgx.Row) (*repository.User, error) {
	var u repository.User
	var role string
	if err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &role, &u.CreatedAt); err != nil {
		return nil, mapErr(err)
	}
	u.Role = repository.Role(role)
	return &u, nil
}

func (r *userRepo) FindByUsername(ctx context.Context, username string) (*repository.User, error) {
	return scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE username = $1`, username))
}

func (r *userRepo) FindByEmail(ctx context.Context, email string) (*repository.User, error) {
	return scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE lower(email) = lower($1)`, email))
}

func (r *userRepo) FindByID(ctx context.Context, id int64) (*repository.User, error) {
	return scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

func (r *userRepo) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	var ok bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE username = $1)`, username).Scan(&ok)
	return ok, mapErr(err)
}

func (r *userRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var ok bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE lower(email) = lower($1))`, email).Scan(&ok)
	return ok, mapErr(err)
}

// Save inserta si ID == 0 (completa ID y CreatedAt), si no actualiza.
func (r *userRepo) Save(ctx context.Context, u *repository.User) error {
	if u.ID == 0 {
		const q = `
			INSERT INTO users (username, email, password_hash, role, created_at)
			VALUES ($1, $2, $3, $4, NOW())
			RETURNING id, created_at
		`
		err := r.db.QueryRow(ctx, q, u.Username, u.Email, u.PasswordHash, string(u.Role)).Scan(&u.ID, &u.CreatedAt)
		return mapErr(err)
	}

	const q = `UPDATE users SET username = $2, email = $3, password_hash = $4, role = $5 WHERE id = $1`
	tag, err := r.db.Exec(ctx, q, u.ID, u.Username, u.Email, u.PasswordHash, string(u.Role))
	if err != nil {
		return mapErr(err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}
