package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/structiou/pkg/corpus"
)

const (
	// DefaultAddr is the listen address when none is configured.
	DefaultAddr = "127.0.0.1:8080"

	// DefaultMaxBodyBytes limits request bodies.
	DefaultMaxBodyBytes = 8 << 20

	// DefaultMaxExamples limits the size of a /v1/corpus request.
	DefaultMaxExamples = 10000

	// DefaultTimeout bounds the handling of a single request.
	DefaultTimeout = 2 * time.Minute

	shutdownTimeout = 10 * time.Second
)

// Config configures the HTTP server.
type Config struct {
	Addr         string
	MaxBodyBytes int64
	MaxExamples  int
	Timeout      time.Duration
}

func (c *Config) setDefaults() {
	if c.Addr == "" {
		c.Addr = DefaultAddr
	}
	if c.MaxBodyBytes <= 0 {
		c.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if c.MaxExamples <= 0 {
		c.MaxExamples = DefaultMaxExamples
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
}

// Server is the HTTP scoring service.
type Server struct {
	router chi.Router
	runner *corpus.Runner
	log    *log.Logger
	cfg    Config
}

// New creates and configures the server. A nil runner scores without a
// cache; a nil logger uses log.Default().
func New(runner *corpus.Runner, logger *log.Logger, cfg Config) *Server {
	if logger == nil {
		logger = log.Default()
	}
	if runner == nil {
		runner = corpus.NewRunner(nil, nil, logger)
	}
	cfg.setDefaults()

	s := &Server{
		runner: runner,
		log:    logger,
		cfg:    cfg,
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(RequestID)
	r.Use(RequestLogger(s.log))

	r.Get("/healthz", s.handleHealth)

	r.Route("/v1", func(r chi.Router) {
		r.Use(middleware.Timeout(s.cfg.Timeout))
		r.Use(limitBody(s.cfg.MaxBodyBytes))

		r.Post("/score", s.handleScore)
		r.Post("/corpus", s.handleCorpus)
		r.Post("/render", s.handleRender)
	})

	s.router = r
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errc := make(chan error, 1)
	go func() {
		s.log.Info("listening", "addr", s.cfg.Addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		s.log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
