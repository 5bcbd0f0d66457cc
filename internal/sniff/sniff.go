// Package sniff detecta el tipo real del contenido por firma de bytes,
// ignorando nombre y extensión del archivo.
package sniff

import (
	"mime"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// Sniffer devuelve el MIME detectado (p.ej. "image/png").
type Sniffer interface {
	Detect(data []byte) string
}

// Mimetype usa las firmas de gabriel-vasile/mimetype.
type Mimetype struct{}

func New() Mimetype { return Mimetype{} }

func (Mimetype) Detect(data []byte) string {
	return mimetype.Detect(data).String()
}

// IsImage indica si el MIME (con o sin parámetros) es image/*.
func IsImage(m string) bool {
	base, _, err := mime.ParseMediaType(m)
	if err != nil {
		base = strings.TrimSpace(strings.SplitN(m, ";", 2)[0])
	}
	return strings.HasPrefix(strings.ToLower(base), "image/")
}
