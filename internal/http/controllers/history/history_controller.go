// Package history contiene el controller de /verification-history.
package history

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/dropDatabas3/imageguard/internal/domain/repository"
	dto "github.com/dropDatabas3/imageguard/internal/http/dto/history"
	httperrors "github.com/dropDatabas3/imageguard/internal/http/errors"
	"github.com/dropDatabas3/imageguard/internal/http/helpers"
	"github.com/dropDatabas3/imageguard/internal/observability/logger"
	"github.com/dropDatabas3/imageguard/internal/verify"
)

// Service es verify.HistoryService visto desde HTTP.
type Service interface {
	Add(ctx context.Context, h repository.VerificationHistory) (*repository.VerificationHistory, error)
	Delete(ctx context.Context, id string) error
	Get(ctx context.Context, id string) (*repository.VerificationHistory, error)
	All(ctx context.Context) ([]repository.VerificationHistory, error)
	Search(ctx context.Context, f verify.HistoryFilter) ([]repository.VerificationHistory, error)
}

type Controller struct {
	service Service
}

func NewController(service Service) *Controller {
	return &Controller{service: service}
}

// Add maneja POST /verification-history/add
func (c *Controller) Add(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("HistoryController.Add"))

	var req dto.HistoryRequest
	if err := helpers.ReadJSON(w, r, &req); err != nil {
		httperrors.WriteError(w, err)
		return
	}
	if err := req.Validate(); err != nil {
		httperrors.WriteError(w, err)
		return
	}
	h, err := c.service.Add(ctx, req.ToHistory())
	if err != nil {
		c.handleError(w, err, log)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, h)
}

// Delete maneja DELETE /verification-history/delete/{id}
func (c *Controller) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("HistoryController.Delete"))

	if err := c.service.Delete(ctx, chi.URLParam(r, "id")); err != nil {
		c.handleError(w, err, log)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// Get maneja GET /verification-history/{id}
func (c *Controller) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("HistoryController.Get"))

	h, err := c.service.Get(ctx, chi.URLParam(r, "id"))
	if err != nil {
		c.handleError(w, err, log)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, h)
}

// All maneja GET /verification-history/all
func (c *Controller) All(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("HistoryController.All"))

	list, err := c.service.All(ctx)
	if err != nil {
		c.handleError(w, err, log)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, list)
}

// Search maneja GET /verification-history/search?imageId=&userId=&verificationDate=&result=
// Los criterios presentes se combinan con AND.
func (c *Controller) Search(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("HistoryController.Search"))

	q := r.URL.Query()
	userID, err := helpers.QueryInt64(q, "userId")
	if err != nil {
		httperrors.WriteError(w, err)
		return
	}
	since, err := helpers.QueryTime(q, "verificationDate")
	if err != nil {
		httperrors.WriteError(w, err)
		return
	}

	list, err := c.service.Search(ctx, verify.HistoryFilter{
		ImageID: strings.TrimSpace(q.Get("imageId")),
		UserID:  userID,
		Since:   since,
		Result:  q.Get("result"),
	})
	if err != nil {
		c.handleError(w, err, log)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, list)
}

func (c *Controller) handleError(w http.ResponseWriter, err error, log *zap.Logger) {
	appErr := httperrors.FromError(err)
	if appErr.HTTPStatus >= http.StatusInternalServerError {
		log.Error("unexpected history error", logger.Err(err))
	}
	httperrors.WriteError(w, appErr)
}
