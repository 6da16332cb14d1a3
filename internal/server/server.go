// internal/server/server.go
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/xkilldash9x/guardian/internal/config"
	"github.com/xkilldash9x/guardian/internal/gateway"
)

// Server exposes the gateway over HTTP and websockets.
type Server struct {
	router   *chi.Mux
	gw       *gateway.Gateway
	cfg      config.ServerConfig
	defaults config.AnalysisConfig
	upgrader websocket.Upgrader
	// readWait bounds how long a websocket may stay silent.
	readWait time.Duration
	logger   *zap.Logger
}

// NewServer builds the router. It does not start listening.
func NewServer(gw *gateway.Gateway, cfg config.ServerConfig, defaults config.AnalysisConfig, logger *zap.Logger) *Server {
	s := &Server{
		router:   chi.NewRouter(),
		gw:       gw,
		cfg:      cfg,
		defaults: defaults,
		readWait: pongWait,
		logger:   logger.Named("server"),
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin:     s.checkOrigin,
	}

	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(requestLogger(s.logger))
	s.router.Use(middleware.Recoverer)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handleHealth)

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Get("/schemas/{kind}", s.handleGetSchema)
		r.Post("/analyze/{kind}", s.handleAnalyze)

		r.Route("/ws", func(r chi.Router) {
			r.Get("/analyze", s.handleWSAnalyze)
			r.Get("/chat", s.handleWSChat)
		})
	})
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run listens on the configured address until ctx is cancelled, then shuts
// down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.cfg.Addr,
		Handler:      s.router,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("HTTP server listening.", zap.String("addr", s.cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server failed: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
		defer cancel()
		s.logger.Info("Shutting down HTTP server.")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// checkOrigin applies the CORS origin patterns to websocket upgrades.
// Requests without an Origin header (non-browser clients) are allowed.
func (s *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	for _, pattern := range s.cfg.AllowedOrigins {
		if pattern == "*" || strings.EqualFold(pattern, origin) {
			return true
		}
		if ok, _ := path.Match(pattern, origin); ok {
			return true
		}
	}
	s.logger.Warn("Rejected websocket origin.", zap.String("origin", origin))
	return false
}

// requestLogger logs one line per request with zap.
func requestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			defer func() {
				logger.Info("Request handled.",
					zap.String("request_id", middleware.GetReqID(r.Context())),
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.Int("status", ww.Status()),
					zap.Int("bytes", ww.BytesWritten()),
					zap.Duration("duration", time.Since(start)),
				)
			}()
			next.ServeHTTP(ww, r)
		})
	}
}
