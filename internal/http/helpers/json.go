// Package helpers reúne utilidades de request/response compartidas por los
// controllers: lectura tolerante de JSON, escritura de JSON y parámetros.
package helpers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	httperrors "github.com/dropDatabas3/imageguard/internal/http/errors"
)

const maxJSONBody = 1 << 20

// ReadJSON decodifica el body (máx. 1MB) en v. No falla por campos
// desconocidos. Los errores ya vienen como *AppError listos para WriteError.
func ReadJSON(w http.ResponseWriter, r *http.Request, v any) error {
	ct := strings.ToLower(r.Header.Get("Content-Type"))
	if !strings.Contains(ct, "application/json") {
		return httperrors.ErrBadRequest.WithDetail("Content-Type debe ser application/json")
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	defer r.Body.Close()

	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return httperrors.ErrInvalidJSON.WithDetail("body vacío")
		}
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			return httperrors.ErrPayloadTooLarge.WithCause(err)
		}
		return httperrors.ErrInvalidJSON.WithCause(err)
	}
	return nil
}

// WriteJSON escribe una respuesta JSON estándar.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteText escribe una respuesta text/plain.
func WriteText(w http.ResponseWriter, status int, s string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, s)
}
