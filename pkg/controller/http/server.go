// Package http exposes the task tracking API over REST.
package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/regmon-lab/themis/pkg/domain/interfaces"
	"github.com/regmon-lab/themis/pkg/usecase"
	"github.com/regmon-lab/themis/pkg/utils/logging"
)

type Server struct {
	router *chi.Mux
	uc     *usecase.UseCases
	users  interfaces.UserRepository
}

type Options func(*Server)

// New creates the API server. Every /api route requires a bearer token
// resolved against the user repository.
func New(uc *usecase.UseCases, users interfaces.UserRepository, opts ...Options) *Server {
	r := chi.NewRouter()

	s := &Server{
		router: r,
		uc:     uc,
		users:  users,
	}
	for _, opt := range opts {
		opt(s)
	}

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(accessLogger)
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK")) //nolint:errcheck // header already committed
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(authMiddleware(s.users))

		r.Route("/tasks", func(r chi.Router) {
			r.Get("/", s.listTasks)
			r.Post("/", s.createTask)
			r.Route("/{taskID}", func(r chi.Router) {
				r.Get("/", s.getTask)
				r.Post("/transition", s.transitionTask)
				r.Post("/board-meeting-date", s.setBoardMeetingDate)
				r.Get("/remarks", s.listRemarks)
				r.Post("/remarks", s.addRemark)
				r.Get("/events", s.listEvents)
				r.Put("/documents/{slot}", s.attachDocument)
				r.Get("/documents/{slot}", s.getDocument)
			})
		})

		r.Route("/templates", func(r chi.Router) {
			r.Get("/", s.listTemplates)
			r.Post("/", s.createTemplate)
			r.Route("/{templateID}", func(r chi.Router) {
				r.Get("/", s.getTemplate)
				r.Put("/", s.updateTemplate)
				r.Post("/deactivate", s.deactivateTemplate)
			})
		})

		r.Post("/populate", s.populateTasks)
	})

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// accessLogger is a middleware that logs HTTP requests
func accessLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		defer func() {
			logging.Default().Info("access",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"remote", r.RemoteAddr,
				"user_agent", r.UserAgent(),
			)
		}()

		next.ServeHTTP(ww, r)
	})
}
