// Package verify implementa el flujo de verificación de imágenes y los
// servicios administrativos de imágenes e historial.
//
// Flujo de HandleUpload:
//
//	sniff -> nombre seguro -> blob.Put -> Image -> predict -> user -> History -> Outcome
//
// No hay rollback: si falla la predicción la imagen queda registrada.
package verify

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"time"

	"github.com/dropDatabas3/imageguard/internal/blob"
	"github.com/dropDatabas3/imageguard/internal/domain/repository"
	"github.com/dropDatabas3/imageguard/internal/metrics"
	"github.com/dropDatabas3/imageguard/internal/observability/logger"
	"github.com/dropDatabas3/imageguard/internal/predict"
	"github.com/dropDatabas3/imageguard/internal/session"
	"github.com/dropDatabas3/imageguard/internal/sniff"
	"github.com/google/uuid"
)

const defaultFilename = "image.png"

var (
	ErrInvalidUpload = errors.New("uploaded file is not a valid image")
	ErrStorage       = errors.New("could not store uploaded file")
	ErrInternal      = errors.New("internal error")
)

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9._-]`)

// SafeFilename reemplaza todo lo que no sea [A-Za-z0-9._-] por "_".
func SafeFilename(name string) string {
	if name == "" {
		name = defaultFilename
	}
	return unsafeChars.ReplaceAllString(name, "_")
}

// ResultSummary es el texto persistido en el historial.
func ResultSummary(r *predict.Result) string {
	return fmt.Sprintf("class_description: %s, fake_probability: %.3f", r.ClassDescription, r.FakeProbability)
}

type PipelineDeps struct {
	Sniffer   sniff.Sniffer
	Blobs     blob.Store
	Images    repository.ImageRepository
	History   repository.HistoryRepository
	Users     repository.UserRepository
	Predictor predict.Predictor
	Now       func() time.Time
	NewID     func() string
}

type Pipeline struct {
	deps PipelineDeps
}

func NewPipeline(deps PipelineDeps) *Pipeline {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.NewID == nil {
		deps.NewID = uuid.NewString
	}
	return &Pipeline{deps: deps}
}

// HandleUpload siempre devuelve un Outcome; err describe la causa cuando
// el Outcome no es exitoso.
func (p *Pipeline) HandleUpload(ctx context.Context, id session.Identity, data []byte, filename string) (*Outcome, error) {
	out, err := p.handle(ctx, id, data, filename)
	metrics.VerificationsTotal.WithLabelValues(strconv.Itoa(out.StatusCode)).Inc()
	return out, err
}

func (p *Pipeline) handle(ctx context.Context, id session.Identity, data []byte, filename string) (*Outcome, error) {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("verify"),
		logger.Op("HandleUpload"),
		logger.Username(id.Username),
	)

	// Paso 1: tipo real por contenido
	mime := p.deps.Sniffer.Detect(data)
	if !sniff.IsImage(mime) {
		log.Info("upload rejected", logger.MIME(mime), logger.Filename(filename))
		return Failure(http.StatusBadRequest, "Uploaded file is not a valid image."), ErrInvalidUpload
	}
	log.Info("received file", logger.Filename(filename), logger.Bytes(len(data)), logger.MIME(mime))

	// Paso 2: id + nombre seguro
	fileID := p.deps.NewID()
	storedName := fileID + "_" + SafeFilename(filename)

	// Paso 3: persistir bytes
	location, err := p.deps.Blobs.Put(ctx, storedName, data)
	if err != nil {
		log.Error("store file failed", logger.Err(err))
		return Failure(http.StatusInternalServerError, "Could not store uploaded file."), fmt.Errorf("%w: %v", ErrStorage, err)
	}

	// Paso 4: registro de imagen
	img := &repository.Image{ID: fileID, Filepath: location, UploadDate: p.deps.Now().UTC()}
	if err := p.deps.Images.Save(ctx, img); err != nil {
		log.Error("save image failed", logger.ImageID(fileID), logger.Err(err))
		return Failure(http.StatusInternalServerError, "Could not store uploaded file."), fmt.Errorf("%w: save image: %v", ErrStorage, err)
	}
	log = log.With(logger.ImageID(img.ID))
	log.Info("image saved", logger.String("filepath", img.Filepath))

	// Paso 5: predicción (error tipado se propaga)
	res, err := p.deps.Predictor.Predict(ctx, predict.File{Name: SafeFilename(filename), MIME: mime, Data: data})
	if err != nil {
		if pe, ok := predict.AsError(err); ok {
			return Failure(pe.OutcomeStatus(), pe.Message), err
		}
		log.Error("predict failed", logger.Err(err))
		return Failure(http.StatusInternalServerError, "Prediction failed."), err
	}

	// Paso 6: usuario actuante (debe existir)
	user, err := p.deps.Users.FindByUsername(ctx, id.Username)
	if err != nil {
		log.Error("acting user not found", logger.Err(err))
		return Failure(http.StatusInternalServerError, "Internal server error."), fmt.Errorf("%w: resolve user %q: %v", ErrInternal, id.Username, err)
	}

	// Paso 7: historial
	h := &repository.VerificationHistory{
		ID:               p.deps.NewID(),
		ImageID:          img.ID,
		UserID:           user.ID,
		VerificationDate: p.deps.Now().UTC(),
		Result:           ResultSummary(res),
	}
	if err := p.deps.History.Save(ctx, h); err != nil {
		log.Error("save history failed", logger.Err(err))
		return Failure(http.StatusInternalServerError, "Internal server error."), fmt.Errorf("%w: save history: %v", ErrInternal, err)
	}
	log.Info("verification saved", logger.HistoryID(h.ID), logger.UserID(user.ID), logger.String("result", h.Result))

	// Paso 8
	return Success(res), nil
}
