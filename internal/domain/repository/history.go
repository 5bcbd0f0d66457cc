package repository

import (
	"context"
	"time"
)

// VerificationHistory registra el resultado de una predicción.
// Nunca se muta; ImageID y UserID referencian filas existentes.
type VerificationHistory struct {
	ID               string    `json:"id"`
	ImageID          string    `json:"imageId"`
	UserID           int64     `json:"userId"`
	VerificationDate time.Time `json:"verificationDate"`
	Result           string    `json:"result"`
}

// HistoryRepository define operaciones sobre el historial de verificaciones.
type HistoryRepository interface {
	// Save inserta el registro. Retorna ErrInvalidInput si la imagen o el
	// usuario referenciados no existen.
	Save(ctx context.Context, h *VerificationHistory) error

	// FindByID retorna ErrNotFound si no existe.
	FindByID(ctx context.Context, id string) (*VerificationHistory, error)

	// DeleteByID es idempotente (acción administrativa).
	DeleteByID(ctx context.Context, id string) error

	FindAll(ctx context.Context) ([]VerificationHistory, error)
	FindByUser(ctx context.Context, userID int64) ([]VerificationHistory, error)
	FindByImage(ctx context.Context, imageID string) ([]VerificationHistory, error)
	FindByDateBetween(ctx context.Context, from, to time.Time) ([]VerificationHistory, error)
	FindByResult(ctx context.Context, result string) ([]VerificationHistory, error)
	FindByUserAndDateBetween(ctx context.Context, userID int64, from, to time.Time) ([]VerificationHistory, error)
}
