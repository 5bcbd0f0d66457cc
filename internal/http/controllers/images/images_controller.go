// Package images contiene el controller de /images: upload verificado y
// administración de registros de imagen.
package images

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/dropDatabas3/imageguard/internal/domain/repository"
	dto "github.com/dropDatabas3/imageguard/internal/http/dto/images"
	httperrors "github.com/dropDatabas3/imageguard/internal/http/errors"
	"github.com/dropDatabas3/imageguard/internal/http/helpers"
	mw "github.com/dropDatabas3/imageguard/internal/http/middlewares"
	"github.com/dropDatabas3/imageguard/internal/observability/logger"
	"github.com/dropDatabas3/imageguard/internal/session"
	"github.com/dropDatabas3/imageguard/internal/verify"
)

const (
	formField = "file"
	// margen para boundaries y headers del multipart
	multipartOverhead = 1 << 20
)

// Uploader es el pipeline de verificación.
type Uploader interface {
	HandleUpload(ctx context.Context, id session.Identity, data []byte, filename string) (*verify.Outcome, error)
}

// Service es la administración de imágenes (verify.ImageService).
type Service interface {
	Add(ctx context.Context, img repository.Image) (*repository.Image, error)
	UpdateFilepath(ctx context.Context, id, path string) (*repository.Image, error)
	Delete(ctx context.Context, id string) error
	Get(ctx context.Context, id string) (*repository.Image, error)
	All(ctx context.Context) ([]repository.Image, error)
	Exists(ctx context.Context, id string) (bool, error)
	Search(ctx context.Context, filepath string, since *time.Time) ([]repository.Image, error)
}

type Controller struct {
	uploader       Uploader
	service        Service
	maxUploadBytes int64
}

func NewController(uploader Uploader, service Service, maxUploadBytes int64) *Controller {
	return &Controller{uploader: uploader, service: service, maxUploadBytes: maxUploadBytes}
}

// Upload maneja POST /images/upload (multipart, campo "file").
// La respuesta es siempre un Outcome con su propio statusCode.
func (c *Controller) Upload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("ImagesController.Upload"))

	id := mw.GetIdentity(ctx)
	if id == nil {
		httperrors.WriteError(w, httperrors.ErrTokenMissing)
		return
	}

	data, filename, err := c.readFile(w, r)
	if err != nil {
		httperrors.WriteError(w, err)
		return
	}

	out, err := c.uploader.HandleUpload(ctx, *id, data, filename)
	if err != nil {
		if out.StatusCode >= http.StatusInternalServerError {
			log.Error("upload failed", logger.Status(out.StatusCode), logger.Err(err))
		} else {
			log.Info("upload rejected", logger.Status(out.StatusCode), logger.Err(err))
		}
	}
	helpers.WriteJSON(w, out.StatusCode, out)
}

func (c *Controller) readFile(w http.ResponseWriter, r *http.Request) ([]byte, string, error) {
	r.Body = http.MaxBytesReader(w, r.Body, c.maxUploadBytes+multipartOverhead)
	if err := r.ParseMultipartForm(8 << 20); err != nil {
		return nil, "", uploadErr(err)
	}
	f, hdr, err := r.FormFile(formField)
	if err != nil {
		return nil, "", httperrors.ErrMissingFile.WithCause(err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, c.maxUploadBytes+1))
	if err != nil {
		return nil, "", uploadErr(err)
	}
	if int64(len(data)) > c.maxUploadBytes {
		return nil, "", httperrors.ErrPayloadTooLarge
	}
	return data, hdr.Filename, nil
}

func uploadErr(err error) error {
	var tooBig *http.MaxBytesError
	if errors.As(err, &tooBig) {
		return httperrors.ErrPayloadTooLarge.WithCause(err)
	}
	return httperrors.ErrBadRequest.WithDetail("multipart inválido").WithCause(err)
}

// Add maneja POST /images/add
func (c *Controller) Add(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("ImagesController.Add"))

	var req dto.ImageRequest
	if err := helpers.ReadJSON(w, r, &req); err != nil {
		httperrors.WriteError(w, err)
		return
	}
	if err := req.Validate(); err != nil {
		httperrors.WriteError(w, err)
		return
	}
	img, err := c.service.Add(ctx, req.ToImage())
	if err != nil {
		c.handleError(w, err, log)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, img)
}

// Update maneja PUT /images/update/{id}
func (c *Controller) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("ImagesController.Update"))

	var req dto.UpdateImageRequest
	if err := helpers.ReadJSON(w, r, &req); err != nil {
		httperrors.WriteError(w, err)
		return
	}
	if err := req.Validate(); err != nil {
		httperrors.WriteError(w, err)
		return
	}
	img, err := c.service.UpdateFilepath(ctx, chi.URLParam(r, "id"), req.Filepath)
	if err != nil {
		c.handleError(w, err, log)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, img)
}

// Delete maneja DELETE /images/delete/{id}. Idempotente.
func (c *Controller) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("ImagesController.Delete"))

	if err := c.service.Delete(ctx, chi.URLParam(r, "id")); err != nil {
		c.handleError(w, err, log)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// Get maneja GET /images/{id}
func (c *Controller) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("ImagesController.Get"))

	img, err := c.service.Get(ctx, chi.URLParam(r, "id"))
	if err != nil {
		c.handleError(w, err, log)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, img)
}

// All maneja GET /images/all
func (c *Controller) All(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("ImagesController.All"))

	list, err := c.service.All(ctx)
	if err != nil {
		c.handleError(w, err, log)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, list)
}

// Exists maneja GET /images/exists/{id}
func (c *Controller) Exists(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("ImagesController.Exists"))

	ok, err := c.service.Exists(ctx, chi.URLParam(r, "id"))
	if err != nil {
		c.handleError(w, err, log)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, ok)
}

// Search maneja GET /images/search?filepath=&uploadDate=
func (c *Controller) Search(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("ImagesController.Search"))

	q := r.URL.Query()
	since, err := helpers.QueryTime(q, "uploadDate")
	if err != nil {
		httperrors.WriteError(w, err)
		return
	}
	list, err := c.service.Search(ctx, strings.TrimSpace(q.Get("filepath")), since)
	if err != nil {
		c.handleError(w, err, log)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, list)
}

func (c *Controller) handleError(w http.ResponseWriter, err error, log *zap.Logger) {
	appErr := httperrors.FromError(err)
	if appErr.HTTPStatus >= http.StatusInternalServerError {
		log.Error("unexpected images error", logger.Err(err))
	}
	httperrors.WriteError(w, appErr)
}
