package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/fcoo/permalink/internal/config"
	"github.com/fcoo/permalink/pkg/mapview"
	"github.com/fcoo/permalink/pkg/params"
	"github.com/fcoo/permalink/pkg/permalink"
	"github.com/fcoo/permalink/pkg/storage"
	"github.com/fcoo/permalink/pkg/urlcodec"
)

// View is the map position in a snapshot.
type View struct {
	Lat  float64 `json:"lat"`
	Lng  float64 `json:"lng"`
	Zoom float64 `json:"zoom"`
}

// Snapshot is the state served to clients.
type Snapshot struct {
	Href   string        `json:"href"`
	Hash   string        `json:"hash"`
	Params params.Params `json:"params"`
	View   View          `json:"view"`
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithRegistry sets the Prometheus registry the server registers its metrics
// on and serves at /metrics. The default is a fresh registry.
func WithRegistry(registry *prometheus.Registry) Option {
	return func(s *Server) {
		s.registry = registry
	}
}

// WithStorage uses store instead of the configured backend. The server does
// not close it.
func WithStorage(store storage.Storage) Option {
	return func(s *Server) {
		s.store = store
	}
}

// Server serves one shared permalink control.
type Server struct {
	cfg      *config.Config
	logger   *slog.Logger
	registry *prometheus.Registry

	// mu serializes every use of control, location and view.
	mu         sync.Mutex
	location   *urlcodec.MemoryLocation
	view       *mapview.Map
	control    *permalink.Control
	store      storage.Storage
	closeStore func() error
	lastHash   string
	seq        uint64

	hub     *hub
	metrics *httpMetrics
	router  chi.Router
}

// New builds a server from cfg. The storage backend is opened only when the
// control uses local storage.
func New(cfg *config.Config, opts ...Option) (*Server, error) {
	s := &Server{
		cfg:        cfg,
		logger:     slog.Default().With("component", "server"),
		closeStore: func() error { return nil },
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.registry == nil {
		s.registry = prometheus.NewRegistry()
		s.registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}

	settings := cfg.ControlSettings()
	if settings.UseLocalStorage && s.store == nil {
		store, closeStore, err := cfg.OpenStorage(
			storage.WithDispatcher(s.dispatch),
			storage.WithBroadcastLogger(s.logger),
		)
		if err != nil {
			return nil, err
		}
		s.store = store
		s.closeStore = closeStore
	}

	s.metrics = newHTTPMetrics(s.registry)
	s.hub = newHub(s.logger, s.metrics)

	// Broadcast notifications may already be arriving through dispatch.
	s.mu.Lock()
	defer s.mu.Unlock()

	s.location = urlcodec.NewLocation(cfg.Server.Href)
	s.view = mapview.NewMap(cfg.MapOptions())

	controlOpts := []permalink.Option{
		permalink.WithConfig(settings),
		permalink.WithLogger(s.logger.With("component", "permalink")),
		permalink.WithMetrics(permalink.NewMetrics(s.metricsOptions()...)),
	}
	if s.store != nil {
		controlOpts = append(controlOpts, permalink.WithStorage(s.store))
	}
	s.control = permalink.New(s.location, controlOpts...)
	s.control.OnAdd(s.view)
	s.lastHash = s.location.Hash()

	s.router = s.routes()
	return s, nil
}

func (s *Server) metricsOptions() []permalink.MetricsOption {
	m := s.cfg.Server.Metrics
	opts := []permalink.MetricsOption{permalink.WithRegistry(s.registry)}
	if m.Namespace != "" {
		opts = append(opts, permalink.WithNamespace(m.Namespace))
	}
	if m.Subsystem != "" {
		opts = append(opts, permalink.WithSubsystem(m.Subsystem))
	}
	if len(m.Labels) > 0 {
		opts = append(opts, permalink.WithConstLabels(prometheus.Labels(m.Labels)))
	}
	return opts
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)
	r.Use(tracing)
	r.Use(s.metrics.instrument)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
	r.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))

	r.Route("/v1/permalink", func(r chi.Router) {
		r.Get("/", s.handleGet)
		r.Patch("/params", s.handleMerge)
		r.Put("/hash", s.handleHash)
		r.Put("/view", s.handleView)
		r.Post("/history/back", s.handleHistory(-1))
		r.Post("/history/forward", s.handleHistory(1))
		r.Get("/ws", s.handleStream)
	})
	return r
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Snapshot returns the current state.
func (s *Server) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// do runs fn under the server lock and pushes the new state to websocket
// clients when the fragment changed.
func (s *Server) do(fn func()) Snapshot {
	s.mu.Lock()
	fn()
	snap := s.snapshotLocked()
	changed := snap.Hash != s.lastHash
	if changed {
		s.lastHash = snap.Hash
		s.seq++
	}
	seq := s.seq
	s.mu.Unlock()

	if changed {
		s.hub.broadcast(seq, snap)
	}
	return snap
}

func (s *Server) sequencedSnapshot() (uint64, Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seq, s.snapshotLocked()
}

// dispatch delivers storage broadcast notifications on the server lock.
func (s *Server) dispatch(fn func()) {
	s.do(fn)
}

func (s *Server) snapshotLocked() Snapshot {
	if s.control == nil {
		return Snapshot{}
	}
	center := s.view.Center()
	return Snapshot{
		Href:   s.location.Href(),
		Hash:   s.location.Hash(),
		Params: s.control.Params(),
		View:   View{Lat: center.Lat, Lng: center.Lng, Zoom: s.view.Zoom()},
	}
}

// ListenAndServe serves on the configured address until ctx is cancelled,
// then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Server.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout())
	defer cancel()
	s.hub.close()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}

// Close detaches the control and releases the storage backend.
func (s *Server) Close() error {
	s.hub.close()

	s.mu.Lock()
	s.control.Close()
	s.mu.Unlock()

	return s.closeStore()
}
