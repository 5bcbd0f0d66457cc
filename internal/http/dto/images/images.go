// Package images contiene los DTOs de /images.
package images

import (
	"time"

	"github.com/dropDatabas3/imageguard/internal/domain/repository"
	"github.com/dropDatabas3/imageguard/internal/validation"
)

// ImageRequest es el body de POST /images/add. ID y fecha son opcionales.
type ImageRequest struct {
	ID         string    `json:"id"`
	Filepath   string    `json:"filepath"`
	UploadDate time.Time `json:"uploadDate"`
}

func (r ImageRequest) Validate() error {
	return validation.New().
		NotBlank("filepath", r.Filepath, "Filepath cannot be blank").
		Err()
}

func (r ImageRequest) ToImage() repository.Image {
	return repository.Image{ID: r.ID, Filepath: r.Filepath, UploadDate: r.UploadDate}
}

// UpdateImageRequest es el body de PUT /images/update/{id}.
type UpdateImageRequest struct {
	Filepath string `json:"filepath"`
}

func (r UpdateImageRequest) Validate() error {
	return validation.New().
		NotBlank("filepath", r.Filepath, "Filepath cannot be blank").
		Err()
}
