// Package history contiene los DTOs de /verification-history.
package history

import (
	"time"

	"github.com/dropDatabas3/imageguard/internal/domain/repository"
	"github.com/dropDatabas3/imageguard/internal/validation"
)

// HistoryRequest es el body de POST /verification-history/add.
type HistoryRequest struct {
	ID               string    `json:"id"`
	ImageID          string    `json:"imageId"`
	UserID           int64     `json:"userId"`
	VerificationDate time.Time `json:"verificationDate"`
	Result           string    `json:"result"`
}

func (r HistoryRequest) Validate() error {
	return validation.New().
		NotBlank("imageId", r.ImageID, "Image id cannot be blank").
		Check(r.UserID > 0, "userId", "User id must be positive").
		NotBlank("result", r.Result, "Result cannot be blank").
		Err()
}

func (r HistoryRequest) ToHistory() repository.VerificationHistory {
	return repository.VerificationHistory{
		ID:               r.ID,
		ImageID:          r.ImageID,
		UserID:           r.UserID,
		VerificationDate: r.VerificationDate,
		Result:           r.Result,
	}
}
