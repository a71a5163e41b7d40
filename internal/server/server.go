package server

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/klauspost/compress/gzhttp"
	"github.com/rs/cors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/flowtomic/zoo/internal/registry"
)

// Server serves registry.json and its views over HTTP.
type Server struct {
	cfg     Config
	store   *Store
	hub     *Hub
	metrics *metrics
	logger  *zap.Logger
	handler http.Handler
}

// New creates a Server. The registry file is read lazily on the first request.
func New(cfg Config, logger *zap.Logger, opts ...MetricsOption) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = DefaultConfig().CacheTTL
	}

	s := &Server{
		cfg:     cfg,
		store:   NewStore(cfg.File, cfg.CacheTTL, logger),
		hub:     NewHub(),
		metrics: newMetrics(opts...),
		logger:  logger,
	}
	s.hub.onChange = func(n int) { s.metrics.wsClients.Set(float64(n)) }
	s.handler = s.routes()
	return s
}

// Handler returns the HTTP handler with every route and middleware.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Store returns the registry store.
func (s *Server) Store() *Store {
	return s.store
}

// Hub returns the websocket hub.
func (s *Server) Hub() *Hub {
	return s.hub
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.logger, s.cfg.LogExcludePaths))
	r.Use(middleware.Recoverer)
	r.Use(tracing)
	r.Use(s.metrics.middleware)
	r.Use(cors.New(cors.Options{
		AllowedOrigins: s.cfg.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodHead, http.MethodOptions},
		AllowedHeaders: []string{"*"},
		MaxAge:         86400,
	}).Handler)

	r.Group(func(r chi.Router) {
		r.Use(func(h http.Handler) http.Handler { return gzhttp.GzipHandler(h) })
		r.Get("/all.json", s.serveView(registry.ViewAll))
		r.Get("/registry.json", s.serveView(registry.ViewAll))
		r.Get("/components.json", s.serveView(registry.ViewComponents))
		r.Get("/blocks.json", s.serveView(registry.ViewBlocks))
		r.Get("/r/{name}.json", s.serveItem)
	})

	r.Get("/healthz", s.serveHealth)
	r.Handle("/metrics", s.metrics.handler())
	r.Handle("/ws", s.hub)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, "", map[string]string{"error": "not found"})
	})
	return r
}

func (s *Server) serveView(v registry.View) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, s.cfg.CacheControl(), s.store.Get().View(v))
	}
}

func (s *Server) serveItem(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	item := s.store.Get().Item(name)
	if item == nil {
		writeJSON(w, http.StatusNotFound, "", map[string]string{
			"error": "item not found",
			"name":  name,
		})
		return
	}
	writeJSON(w, http.StatusOK, s.cfg.CacheControl(), item)
}

func (s *Server) serveHealth(w http.ResponseWriter, r *http.Request) {
	reg := s.store.Get()
	writeJSON(w, http.StatusOK, "no-store", map[string]any{
		"status":  "ok",
		"version": reg.Version,
		"items":   len(reg.Items),
	})
}

func writeJSON(w http.ResponseWriter, status int, cacheControl string, v any) {
	w.Header().Set("Content-Type", "application/json")
	if cacheControl != "" {
		w.Header().Set("Cache-Control", cacheControl)
	}
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

// Run listens on cfg.Addr and serves until ctx is cancelled, then shuts
// down gracefully.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("registry server listening",
			zap.String("addr", ln.Addr().String()),
			zap.String("file", s.cfg.File))
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	if s.cfg.Watch {
		g.Go(func() error {
			if err := s.watch(gctx); err != nil {
				s.logger.Error("watch disabled", zap.Error(err))
			}
			return nil
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		s.logger.Info("shutting down")
		s.hub.Close()

		timeout := s.cfg.ShutdownTimeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
