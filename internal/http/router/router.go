// Package router arma el árbol de rutas chi de la API y aplica la cadena de
// middlewares común a todas.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dropDatabas3/imageguard/internal/domain/repository"
	adminctrl "github.com/dropDatabas3/imageguard/internal/http/controllers/admin"
	authctrl "github.com/dropDatabas3/imageguard/internal/http/controllers/auth"
	healthctrl "github.com/dropDatabas3/imageguard/internal/http/controllers/health"
	historyctrl "github.com/dropDatabas3/imageguard/internal/http/controllers/history"
	imagesctrl "github.com/dropDatabas3/imageguard/internal/http/controllers/images"
	httperrors "github.com/dropDatabas3/imageguard/internal/http/errors"
	mw "github.com/dropDatabas3/imageguard/internal/http/middlewares"
	"github.com/dropDatabas3/imageguard/internal/rate"
)

// Deps contiene todo lo que el router necesita.
type Deps struct {
	Auth    *authctrl.Controller
	Images  *imagesctrl.Controller
	History *historyctrl.Controller
	Admin   *adminctrl.Controller
	Health  *healthctrl.Controller

	Authorizer mw.Authorizer
	// RateLimiter opcional para /auth/*
	RateLimiter rate.Limiter

	Metrics        *mw.HTTPMetrics
	MetricsHandler http.Handler
}

// New construye el handler raíz.
func New(deps Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(
		mw.WithRecover(),
		mw.WithRequestID(),
		mw.WithLogging(),
		mw.WithSecurityHeaders(),
		mw.WithMetrics(deps.Metrics),
	)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		httperrors.WriteError(w, httperrors.ErrNotFound.WithDetail("route not found"))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		httperrors.WriteError(w, httperrors.ErrMethodNotAllowed)
	})

	requireAuth := mw.RequireAuth(deps.Authorizer)

	// ===========================================================================
	// Auth
	// ===========================================================================
	r.Route("/auth", func(ar chi.Router) {
		ar.Use(
			mw.WithNoStore(),
			mw.WithRateLimit(mw.RateLimitConfig{Limiter: deps.RateLimiter, KeyFunc: mw.IPPathRateKey}),
		)
		ar.Post("/sign-up", deps.Auth.SignUp)
		ar.Post("/sign-in", deps.Auth.SignIn)
		ar.Post("/logout", deps.Auth.Logout)
		ar.With(requireAuth).Post("/reset-password", deps.Auth.ResetPassword)
	})

	// ===========================================================================
	// Rutas autenticadas
	// ===========================================================================
	r.Group(func(pr chi.Router) {
		pr.Use(requireAuth)

		pr.Route("/images", func(ir chi.Router) {
			ir.Post("/upload", deps.Images.Upload)
			ir.Post("/add", deps.Images.Add)
			ir.Put("/update/{id}", deps.Images.Update)
			ir.Delete("/delete/{id}", deps.Images.Delete)
			ir.Get("/all", deps.Images.All)
			ir.Get("/search", deps.Images.Search)
			ir.Get("/exists/{id}", deps.Images.Exists)
			ir.Get("/{id}", deps.Images.Get)
		})

		pr.Route("/verification-history", func(hr chi.Router) {
			hr.Post("/add", deps.History.Add)
			hr.Delete("/delete/{id}", deps.History.Delete)
			hr.Get("/all", deps.History.All)
			hr.Get("/search", deps.History.Search)
			hr.Get("/{id}", deps.History.Get)
		})

		pr.With(mw.RequireRole(repository.RoleAdmin)).Get("/admin", deps.Admin.Index)
	})

	// ===========================================================================
	// Operación
	// ===========================================================================
	if deps.Health != nil {
		r.Get("/readyz", deps.Health.Readyz)
	}
	if deps.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", deps.MetricsHandler)
	}

	return r
}
