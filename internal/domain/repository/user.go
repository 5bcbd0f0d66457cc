package repository

import (
	"context"
	"time"
)

// Role es el único eje de autorización del sistema.
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// IsValid retorna true si el rol es conocido.
func (r Role) IsValid() bool {
	return r == RoleUser || r == RoleAdmin
}

// User representa una cuenta local.
// Username y Email son únicos; PasswordHash es un PHC string (argon2id) o un
// hash bcrypt heredado.
type User struct {
	ID           int64
	Username     string
	Email        string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
}

// UserRepository es el CredentialStore: persiste usuarios y garantiza la
// unicidad de username/email.
type UserRepository interface {
	// FindByUsername busca por username exacto.
	// Retorna ErrNotFound si no existe.
	FindByUsername(ctx context.Context, username string) (*User, error)

	// FindByEmail busca por email exacto.
	// Retorna ErrNotFound si no existe.
	FindByEmail(ctx context.Context, email string) (*User, error)

	// FindByID busca por ID.
	// Retorna ErrNotFound si no existe.
	FindByID(ctx context.Context, id int64) (*User, error)

	ExistsByUsername(ctx context.Context, username string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)

	// Save crea el usuario si ID == 0 (asignando ID y CreatedAt) o lo
	// actualiza en caso contrario.
	// Retorna ErrConflict si viola unicidad, ErrNotFound si el ID no existe.
	Save(ctx context.Context, u *User) error
}
