// Package admin contiene el índice de administración (solo rol ADMIN).
package admin

import (
	"net/http"

	"github.com/dropDatabas3/imageguard/internal/http/helpers"
)

type Controller struct{}

func NewController() *Controller { return &Controller{} }

// Index maneja GET /admin
func (c *Controller) Index(w http.ResponseWriter, r *http.Request) {
	helpers.WriteText(w, http.StatusOK, "Hello World")
}
