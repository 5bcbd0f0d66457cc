// Package tokens agrupa helpers de digest para tokens opacos o firmados.
package tokens

import (
	"crypto/sha256"
	"encoding/hex"
)

// SHA256Hex devuelve sha256(input) en hexadecimal. Se usa como clave de
// almacenamiento para no persistir tokens en claro.
func SHA256Hex(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

// Fingerprint es un prefijo corto del digest, apto para logs.
func Fingerprint(s string) string {
	return SHA256Hex(s)[:12]
}
