// Package server is a small REST backend speaking the same envelope as the
// gallery API, backed by the in-memory sample store. It lets the console run
// end to end without the real service.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"atelier/pkg/agenda"
	"atelier/pkg/catalog"
	"atelier/pkg/models"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Backend is everything the routes read and write through
type Backend interface {
	agenda.Source
	catalog.Source
}

type Config struct {
	Addr              string
	AdminName         string
	AdminEmail        string
	AdminPassword     string
	AdminPasswordHash string
	JWTSecret         string
	TokenTTL          time.Duration
	RateLimit         int // requests per minute per client, 0 disables
	RequestTimeout    time.Duration
}

type Server struct {
	cfg     Config
	backend Backend
	auth    *Auth
	log     *zap.Logger
	router  chi.Router
}

func New(cfg Config, backend Backend, log *zap.Logger) (*Server, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.AdminEmail == "" {
		return nil, errors.New("admin email is required")
	}
	admin := models.User{ID: "admin", Name: cfg.AdminName, Email: cfg.AdminEmail, Role: "admin"}
	if admin.Name == "" {
		admin.Name = "Gallery Admin"
	}
	auth, err := NewAuth(admin, cfg.AdminPassword, cfg.AdminPasswordHash, cfg.JWTSecret, cfg.TokenTTL)
	if err != nil {
		return nil, fmt.Errorf("configuring auth: %w", err)
	}

	s := &Server{cfg: cfg, backend: backend, auth: auth, log: log}
	s.router = s.routes()
	return s, nil
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()

	r.Use(RequestID)
	r.Use(Logging(s.log))
	if s.cfg.RequestTimeout > 0 {
		r.Use(timeout(s.cfg.RequestTimeout))
	}
	if s.cfg.RateLimit > 0 {
		r.Use(RateLimit(s.cfg.RateLimit))
	}

	r.Get("/health", s.health)
	r.Post("/auth/login", s.login)
	r.Get("/artworks", s.artworks)

	r.Group(func(r chi.Router) {
		r.Use(Authenticate(s.auth))

		r.Post("/auth/refresh", s.refresh)

		r.Route("/agenda", func(r chi.Router) {
			r.Get("/calendar", s.calendar) // GET /agenda/calendar?year=&month=

			r.Route("/events", func(r chi.Router) {
				r.Post("/", s.createEvent)
				r.Put("/{id}", s.updateEvent)
				r.Delete("/{id}", s.deleteEvent)
				r.Put("/{id}/status", s.eventStatus)
			})

			r.Route("/tasks", func(r chi.Router) {
				r.Get("/", s.tasks) // GET /agenda/tasks?status=
				r.Post("/", s.createTask)
				r.Get("/stats", s.taskStats)
				r.Put("/{id}", s.updateTask)
				r.Delete("/{id}", s.deleteTask)
				r.Put("/{id}/status", s.taskStatus)
				r.Put("/{id}/checklist/{index}", s.toggleChecklist)
			})
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeMessage(w, http.StatusNotFound, "Route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeMessage(w, http.StatusMethodNotAllowed, "Method not allowed")
	})
	return r
}

func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until ctx is cancelled, then drains in-flight requests
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("sample server listening", zap.String("addr", s.cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.log.Info("shutting down sample server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func timeout(d time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), d)
			defer cancel()
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
