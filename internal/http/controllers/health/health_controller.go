// Package health contiene el controller de /readyz.
package health

import (
	"context"
	"net/http"
	"time"

	"github.com/dropDatabas3/imageguard/internal/http/helpers"
	"github.com/dropDatabas3/imageguard/internal/observability/logger"
)

const checkTimeout = 2 * time.Second

// Check es una dependencia a verificar (store, cache, blob).
type Check struct {
	Name string
	Ping func(ctx context.Context) error
}

// Response es el cuerpo de /readyz.
type Response struct {
	Status     string            `json:"status"` // ready | unavailable
	Components map[string]string `json:"components"`
}

type Controller struct {
	checks []Check
}

func NewController(checks ...Check) *Controller {
	return &Controller{checks: checks}
}

// Readyz maneja GET /readyz. 503 si alguna dependencia falla.
func (c *Controller) Readyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), checkTimeout)
	defer cancel()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("HealthController.Readyz"))

	resp := Response{Status: "ready", Components: make(map[string]string, len(c.checks))}
	for _, chk := range c.checks {
		if err := chk.Ping(ctx); err != nil {
			resp.Status = "unavailable"
			resp.Components[chk.Name] = "error"
			log.Warn("dependency not ready", logger.Component(chk.Name), logger.Err(err))
			continue
		}
		resp.Components[chk.Name] = "ok"
	}

	status := http.StatusOK
	if resp.Status != "ready" {
		status = http.StatusServiceUnavailable
	}
	w.Header().Set("Cache-Control", "no-store")
	helpers.WriteJSON(w, status, resp)
}
