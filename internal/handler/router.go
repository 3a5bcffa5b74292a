package handler

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/BuzzLyutic/activity-dashboard/internal/middleware"
	"github.com/BuzzLyutic/activity-dashboard/internal/session"
)

type RouterConfig struct {
	Guard   *session.Guard
	Limiter *middleware.LoginLimiter
	Metrics http.Handler
	Logger  *zap.Logger
}

// NewRouter wires the two entry points, the dashboard actions and the JSON API.
func NewRouter(h *Handler, cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Logger(cfg.Logger))
	r.Use(chimw.Recoverer)
	r.Use(middleware.SecurityHeaders)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, `{"status":"ok"}`)
	})
	if cfg.Metrics != nil {
		r.Handle("/metrics", cfg.Metrics)
	}

	r.Get(loginPath, h.LoginPage)
	r.With(cfg.Limiter.Limit(http.HandlerFunc(h.LoginThrottled))).Post("/login", h.SubmitLogin)
	r.Post("/recover", h.Recover)
	r.Post("/theme", h.ToggleTheme)
	r.Post("/logout", h.Logout)

	r.Route(dashboardPath, func(r chi.Router) {
		r.Use(cfg.Guard.Redirect(loginPath))
		r.Get("/", h.Dashboard)
		r.Post("/items", h.SubmitItem)
		r.Post("/items/{id}/toggle", h.SubmitToggle)
		r.Post("/items/{id}/delete", h.SubmitDelete)
	})

	r.Route("/api", func(r chi.Router) {
		r.With(cfg.Limiter.Middleware).Post("/login", h.APILogin)
		r.Get("/theme", h.GetTheme)
		r.Post("/theme", h.APIToggleTheme)

		r.Group(func(r chi.Router) {
			r.Use(cfg.Guard.Require)
			r.Get("/session", h.APISession)
			r.Post("/logout", h.APILogout)
			r.Get("/stats", h.Stats)
			r.Route("/items", func(r chi.Router) {
				r.Get("/", h.ListItems)
				r.Post("/", h.CreateItem)
				r.Get("/{id}", h.GetItem)
				r.Post("/{id}/toggle", h.ToggleItem)
				r.Delete("/{id}", h.DeleteItem)
			})
		})
	})

	return r
}
