// Package validation acumula errores de campo (campo -> mensaje) para
// devolverlos juntos en un 400.
package validation

import (
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"
)

// Errors mapea nombre de campo a mensaje. Se conserva el primer error por campo.
type Errors map[string]string

func (e Errors) Error() string {
	keys := make([]string, 0, len(e))
	for k := range e {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Add registra msg para field si todavía no tiene error.
func (e Errors) Add(field, msg string) {
	if _, ok := e[field]; !ok {
		e[field] = msg
	}
}

// Err devuelve nil si no hay errores.
func (e Errors) Err() error {
	if len(e) == 0 {
		return nil
	}
	return e
}

// Checker arma un Errors con checks encadenables.
type Checker struct{ errs Errors }

func New() *Checker { return &Checker{errs: Errors{}} }

func (c *Checker) Errors() Errors { return c.errs }

func (c *Checker) Err() error { return c.errs.Err() }

// NotBlank falla con cadena vacía o solo espacios.
func (c *Checker) NotBlank(field, v, msg string) *Checker {
	if strings.TrimSpace(v) == "" {
		c.errs.Add(field, msg)
	}
	return c
}

// Length acota la cantidad de runes (max <= 0 = sin tope).
func (c *Checker) Length(field, v string, min, max int, msg string) *Checker {
	n := utf8.RuneCountInString(v)
	if n < min || (max > 0 && n > max) {
		c.errs.Add(field, msg)
	}
	return c
}

var emailRe = regexp.MustCompile(`^[^@\s]+@[^@\s]+$`)

// Email solo valida forma local@dominio.
func (c *Checker) Email(field, v, msg string) *Checker {
	if !emailRe.MatchString(v) {
		c.errs.Add(field, msg)
	}
	return c
}

// Check agrega msg si ok es false.
func (c *Checker) Check(ok bool, field, msg string) *Checker {
	if !ok {
		c.errs.Add(field, msg)
	}
	return c
}
