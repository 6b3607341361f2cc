package httpserver

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"
)

type Server struct{ mux *chi.Mux }

// New builds the router. timeout <= 0 disables the per-request deadline.
func New(timeout time.Duration) *Server {
	m := chi.NewRouter()

	// middlewares go here, before any routes are added
	m.Use(chimw.RealIP)
	m.Use(chimw.RequestID)
	m.Use(chimw.StripSlashes)
	m.Use(Metrics)
	m.Use(Logger(log.Logger))
	// inside Metrics and Logger so recovered panics are counted and logged as 500s
	m.Use(Recover)
	if timeout > 0 {
		m.Use(Timeout(timeout))
	}

	// set before routes so mounted sub-routers inherit them
	m.NotFound(notFound)
	m.MethodNotAllowed(notFound)

	return &Server{mux: m}
}

func (s *Server) Mux() http.Handler { return s.mux }

// Mount attaches any extra handler (e.g., /metrics) to the router.
func (s *Server) Mount(path string, h http.Handler) {
	s.mux.Handle(path, h)
}
