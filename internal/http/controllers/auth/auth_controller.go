// Package auth contiene el controller de /auth: alta, login, logout y reset
// de password.
package auth

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	dto "github.com/dropDatabas3/imageguard/internal/http/dto/auth"
	httperrors "github.com/dropDatabas3/imageguard/internal/http/errors"
	"github.com/dropDatabas3/imageguard/internal/http/helpers"
	mw "github.com/dropDatabas3/imageguard/internal/http/middlewares"
	"github.com/dropDatabas3/imageguard/internal/observability/logger"
)

const logoutMessage = "You have successfully logged out"

// Service es lo que el controller necesita de session.Service.
type Service interface {
	SignUp(ctx context.Context, username, email, rawPassword string) (string, error)
	SignIn(ctx context.Context, username, rawPassword string, rememberMe bool) (string, error)
	ResetPassword(ctx context.Context, username, newPassword, code, presented string) (string, error)
	Logout(ctx context.Context, token string)
}

type Controller struct {
	service Service
}

func NewController(service Service) *Controller {
	return &Controller{service: service}
}

// SignUp maneja POST /auth/sign-up
func (c *Controller) SignUp(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("AuthController.SignUp"))

	var req dto.SignUpRequest
	if err := helpers.ReadJSON(w, r, &req); err != nil {
		httperrors.WriteError(w, err)
		return
	}
	if err := req.Validate(); err != nil {
		httperrors.WriteError(w, err)
		return
	}

	token, err := c.service.SignUp(ctx, req.Username, req.Email, req.Password)
	if err != nil {
		c.handleError(w, err, log)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, dto.TokenResponse{Token: token})
}

// SignIn maneja POST /auth/sign-in
func (c *Controller) SignIn(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("AuthController.SignIn"))

	var req dto.SignInRequest
	if err := helpers.ReadJSON(w, r, &req); err != nil {
		httperrors.WriteError(w, err)
		return
	}
	if err := req.Validate(); err != nil {
		httperrors.WriteError(w, err)
		return
	}

	token, err := c.service.SignIn(ctx, req.Username, req.Password, req.RememberMe)
	if err != nil {
		c.handleError(w, err, log)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, dto.TokenResponse{Token: token})
}

// Logout maneja POST /auth/logout. El bearer es opcional y la respuesta
// siempre es 200.
func (c *Controller) Logout(w http.ResponseWriter, r *http.Request) {
	c.service.Logout(r.Context(), mw.BearerToken(r))
	helpers.WriteText(w, http.StatusOK, logoutMessage)
}

// ResetPassword maneja POST /auth/reset-password (requiere bearer).
// El token del request se revoca después del reset.
func (c *Controller) ResetPassword(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("AuthController.ResetPassword"))

	id := mw.GetIdentity(ctx)
	if id == nil {
		httperrors.WriteError(w, httperrors.ErrTokenMissing)
		return
	}

	var req dto.ResetPasswordRequest
	if err := helpers.ReadJSON(w, r, &req); err != nil {
		httperrors.WriteError(w, err)
		return
	}
	if err := req.Validate(); err != nil {
		httperrors.WriteError(w, err)
		return
	}

	token, err := c.service.ResetPassword(ctx, req.Username, req.NewPassword, req.ConfirmationCode, id.Token)
	if err != nil {
		c.handleError(w, err, log)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, dto.TokenResponse{Token: token})
}

func (c *Controller) handleError(w http.ResponseWriter, err error, log *zap.Logger) {
	appErr := httperrors.FromError(err)
	if appErr.HTTPStatus >= http.StatusInternalServerError {
		log.Error("unexpected auth error", logger.Err(err))
	}
	httperrors.WriteError(w, appErr)
}
