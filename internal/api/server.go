// Package api exposes the assessment engine over HTTP.
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/abhisek/adaptiq/internal/itembank"
	"github.com/abhisek/adaptiq/internal/logger"
	"github.com/abhisek/adaptiq/internal/session"
)

// Options configures NewServer.
type Options struct {
	Service     *session.Service
	Banks       *itembank.Registry
	Auth        *Auth
	Logger      *logger.Logger
	CORSOrigins []string
	// RequestTimeout bounds each request; zero means 30s.
	RequestTimeout time.Duration
}

// Server routes HTTP requests to the session service.
type Server struct {
	svc    *session.Service
	banks  *itembank.Registry
	auth   *Auth
	log    *logger.Logger
	router chi.Router
}

func NewServer(opts Options) *Server {
	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}
	timeout := opts.RequestTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	s := &Server{
		svc:   opts.Service,
		banks: opts.Banks,
		auth:  opts.Auth,
		log:   log,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Heartbeat("/health"))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Length", "X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(middleware.Timeout(timeout))

	r.Route("/v1", func(r chi.Router) {
		r.Use(s.auth.Middleware)

		r.Get("/bank", s.handleBank)

		r.Route("/assessments", func(r chi.Router) {
			r.Post("/", s.handleStart)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleProgress)
				r.Get("/next", s.handleNext)
				r.Post("/responses", s.handleSubmit)
				r.Post("/hint", s.handleHint)
				r.Get("/description", s.handleDescription)
				r.Post("/complete", s.handleComplete)
				r.Post("/abandon", s.handleAbandon)
			})
		})
	})

	s.router = r
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.log.Debug("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}
