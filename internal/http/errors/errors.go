// Package errors define el catálogo de errores HTTP y la traducción de los
// errores de dominio (session, repository, validation) a ese catálogo.
package errors

import (
	"encoding/json"
	stderrors "errors"
	"net/http"

	"github.com/dropDatabas3/imageguard/internal/domain/repository"
	"github.com/dropDatabas3/imageguard/internal/session"
	"github.com/dropDatabas3/imageguard/internal/validation"
)

// errorResponse controla exactamente qué campos se envían al cliente.
type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
}

// WriteError escribe la respuesta HTTP para err.
// Los errores de validación se serializan como el mapa campo -> mensaje.
func WriteError(w http.ResponseWriter, err error) {
	appErr := FromError(err)

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	if appErr.HTTPStatus == http.StatusUnauthorized {
		w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token"`)
	}
	w.WriteHeader(appErr.HTTPStatus)

	if appErr.Fields != nil {
		_ = json.NewEncoder(w).Encode(appErr.Fields)
		return
	}
	_ = json.NewEncoder(w).Encode(errorResponse{
		Code:    appErr.Code,
		Message: appErr.Message,
		Detail:  appErr.Detail,
	})
}

// FromError convierte cualquier error en un AppError. Lo desconocido termina
// en un 500 genérico que conserva la causa para los logs.
func FromError(err error) *AppError {
	if err == nil {
		return ErrInternalServerError
	}

	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr
	}

	var verrs validation.Errors
	if stderrors.As(err, &verrs) {
		return ErrValidation.WithFields(verrs).WithCause(err)
	}

	switch {
	case stderrors.Is(err, session.ErrAlreadyExists), stderrors.Is(err, repository.ErrConflict):
		return ErrAlreadyExists.WithCause(err)
	case stderrors.Is(err, session.ErrNotFound), stderrors.Is(err, repository.ErrNotFound):
		return ErrNotFound.WithCause(err)
	case stderrors.Is(err, session.ErrAuthentication):
		return ErrInvalidCredentials.WithCause(err)
	case stderrors.Is(err, session.ErrInvalidToken):
		return ErrTokenInvalid.WithCause(err)
	case stderrors.Is(err, session.ErrTokenExpired):
		return ErrTokenExpired.WithCause(err)
	case stderrors.Is(err, session.ErrTokenRevoked):
		return ErrTokenRevoked.WithCause(err)
	case stderrors.Is(err, session.ErrInvalidCode):
		return ErrValidation.WithFields(map[string]string{"confirmationCode": "Invalid confirmation code"}).WithCause(err)
	case stderrors.Is(err, repository.ErrInvalidInput):
		return ErrBadRequest.WithDetail("referenced resource does not exist").WithCause(err)
	}
	return ErrInternalServerError.WithCause(err)
}
