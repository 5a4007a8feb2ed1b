package server

import (
	"context"
	stderrors "errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/IgniteUI/igniteui-angular-sub020/pkg/differ"
	"github.com/IgniteUI/igniteui-angular-sub020/pkg/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server serves diff sessions.
type Server struct {
	config   *Config
	sessions *SessionManager
	router   chi.Router
	upgrader websocket.Upgrader
	logger   *slog.Logger

	activeSessions prometheus.Gauge
	reports        *prometheus.CounterVec
}

// New creates a server. A nil config uses DefaultConfig.
func New(config *Config) *Server {
	if config == nil {
		config = DefaultConfig()
	}
	config = config.withDefaults()
	logger := config.Logger.With("component", "server")

	observers := []differ.Observer{middleware.Logging(config.Logger)}
	s := &Server{
		config: config,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  config.ReadBufferSize,
			WriteBufferSize: config.WriteBufferSize,
			CheckOrigin:     config.CheckOrigin,
		},
		logger: logger,
	}

	if config.Metrics {
		observers = append(observers, middleware.Prometheus(middleware.WithRegistry(config.Registry)))
		factory := promauto.With(config.Registry)
		s.activeSessions = factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "iterdiff",
			Name:      "active_sessions",
			Help:      "Number of live diff sessions",
		})
		s.reports = factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "iterdiff",
			Name:      "reports_sent_total",
			Help:      "Total number of reports sent by transport and encoding",
		}, []string{"transport", "encoding"})
	}

	s.sessions = NewSessionManager(config.SessionTTL, config.CleanupInterval, config.MaxSessions,
		middleware.Multi(observers...), config.Logger)
	s.sessions.OnClose(func(*Session) {
		if s.activeSessions != nil {
			s.activeSessions.Dec()
		}
	})
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(s.recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Write([]byte("ok\n"))
	})
	if s.config.Metrics {
		r.Handle("/metrics", promhttp.HandlerFor(s.config.Registry, promhttp.HandlerOpts{}))
	}

	r.Route("/v1/sessions", func(r chi.Router) {
		r.Post("/", s.handleCreate)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.handleGet)
			r.Delete("/", s.handleDelete)
			r.Post("/check", s.handleCheck)
			r.Get("/ws", s.handleWebSocket)
		})
	})
	return r
}

// recoverer turns handler panics into 500 responses.
func (s *Server) recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if p := recover(); p != nil {
				if p == http.ErrAbortHandler {
					panic(p)
				}
				s.logger.Error("handler panic", "path", r.URL.Path, "panic", p)
				http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Sessions returns the session manager.
func (s *Server) Sessions() *SessionManager {
	return s.sessions
}

// ListenAndServe serves on the configured address until ctx is done, then
// shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.config.Addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", s.config.Addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		s.sessions.Shutdown()
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	err := srv.Shutdown(shutdownCtx)
	s.sessions.Shutdown()
	if err != nil && !stderrors.Is(err, http.ErrServerClosed) {
		return err
	}
	s.logger.Info("server stopped")
	return nil
}

// Close stops session cleanup and closes all sessions.
func (s *Server) Close() {
	s.sessions.Shutdown()
}
