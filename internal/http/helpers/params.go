package helpers

import (
	"net/url"
	"strconv"
	"strings"
	"time"

	httperrors "github.com/dropDatabas3/imageguard/internal/http/errors"
)

// dateLayouts son los formatos aceptados en filtros por fecha.
var dateLayouts = []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02"}

// QueryTime parsea un parámetro de fecha opcional. nil si falta.
func QueryTime(q url.Values, name string) (*time.Time, error) {
	raw := strings.TrimSpace(q.Get(name))
	if raw == "" {
		return nil, nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			t = t.UTC()
			return &t, nil
		}
	}
	return nil, httperrors.ErrValidation.WithFields(map[string]string{name: "Invalid date format"})
}

// QueryInt64 parsea un entero opcional. nil si falta.
func QueryInt64(q url.Values, name string) (*int64, error) {
	raw := strings.TrimSpace(q.Get(name))
	if raw == "" {
		return nil, nil
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, httperrors.ErrValidation.WithFields(map[string]string{name: "Must be an integer"})
	}
	return &n, nil
}
