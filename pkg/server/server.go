package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/render"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	nexususers "gitlab.com/navyx/nexus/nexus-users"
	"gitlab.com/navyx/nexus/nexus-users/pkg/config"
	"gitlab.com/navyx/nexus/nexus-users/pkg/server/middleware"
	"gitlab.com/navyx/nexus/nexus-users/pkg/users"
)

const (
	APIPrefix   = "/api/v1"
	UsersPrefix = APIPrefix + "/users"
)

// Bootstrap brings the service from a validated configuration to a
// listening HTTP server. Each stage runs only after the previous one
// succeeded: connect database, build handler, listen, serve.
type Bootstrap struct {
	config    *config.Config
	settings  config.Settings
	logger    *slog.Logger
	connector Connector
	listener  Listener
	registry  *prometheus.Registry
	metrics   *middleware.Metrics
	ready     chan net.Addr
}

type BootstrapOption func(*Bootstrap)

func WithLogger(logger *slog.Logger) BootstrapOption {
	return func(b *Bootstrap) {
		b.logger = logger
	}
}

func WithSettings(settings config.Settings) BootstrapOption {
	return func(b *Bootstrap) {
		b.settings = settings
	}
}

func WithConnector(connector Connector) BootstrapOption {
	return func(b *Bootstrap) {
		b.connector = connector
	}
}

func WithListener(listener Listener) BootstrapOption {
	return func(b *Bootstrap) {
		b.listener = listener
	}
}

func WithRegistry(registry *prometheus.Registry) BootstrapOption {
	return func(b *Bootstrap) {
		b.registry = registry
	}
}

// WithReady registers a channel that receives the bound address once the
// server accepts connections. The channel must be buffered or drained.
func WithReady(ready chan net.Addr) BootstrapOption {
	return func(b *Bootstrap) {
		b.ready = ready
	}
}

func New(cfg *config.Config, opts ...BootstrapOption) *Bootstrap {
	b := &Bootstrap{
		config:   cfg,
		settings: config.DefaultSettings(),
		logger:   slog.Default(),
		listener: NetListener,
	}
	for _, opt := range opts {
		opt(b)
	}

	if b.connector == nil {
		b.connector = &PoolConnector{Logger: b.logger}
	}
	if b.registry == nil {
		b.registry = prometheus.NewRegistry()
		b.registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}
	b.metrics = middleware.NewMetrics(b.registry)

	return b
}

// Run executes the startup sequence and serves until ctx is cancelled, then
// shuts the server down gracefully. A failing stage aborts the sequence and
// its error is returned; later stages never run.
func (b *Bootstrap) Run(ctx context.Context) error {
	b.logger.Info("Connecting to database", "database", config.RedactURL(b.config.DBConnectionString))

	db, err := b.connector.Connect(ctx, b.config.DBConnectionString)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()
	b.logger.Info("Connected to database")

	handler := b.Handler(db)

	ln, err := b.listener.Listen("tcp", b.config.ListenAddr())
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", b.config.ListenAddr(), err)
	}

	srv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: b.settings.ReadHeaderTimeout,
		ErrorLog:          slog.NewLogLogger(b.logger.Handler(), slog.LevelError),
	}

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- srv.Serve(ln)
	}()

	b.logger.Info(fmt.Sprintf("api listening on http://localhost:%d%s/ in %s mode", b.config.Port, APIPrefix, b.config.NodeEnv),
		"addr", ln.Addr().String(),
		"version", nexususers.GetVersion(),
	)
	b.logger.Info("allowed origins: " + strings.Join(b.config.AllowedOrigins, ", "))

	if b.ready != nil {
		b.ready <- ln.Addr()
	}

	select {
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server stopped unexpectedly: %w", err)

	case <-ctx.Done():
	}

	b.logger.Info("Shutting down users api server......")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), b.settings.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("error shutting down server: %w", err)
	}
	<-serveErr

	return nil
}

// Handler builds the HTTP handler. The order of the layers after the
// ambient ones (request id, logging, recovery, metrics) is fixed: CORS,
// JSON body parsing, cookie parsing, security headers.
func (b *Bootstrap) Handler(db Database) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(middleware.EchoRequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestLogger(b.logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(b.metrics.Handler)

	r.Use(cors.Handler(corsOptions(b.config.AllowedOrigins)))
	r.Use(middleware.JSONBody(b.settings.BodyLimit))
	r.Use(middleware.Cookies)
	r.Use(middleware.SecurityHeaders)

	r.Get("/healthz", b.healthz(db))
	r.Handle("/metrics", promhttp.HandlerFor(b.registry, promhttp.HandlerOpts{}))

	r.Mount(UsersPrefix, users.NewHandler(users.NewPgStore(db), b.logger).Routes())

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteProblem(w, r, http.StatusNotFound, "no route for "+r.Method+" "+r.URL.Path)
	})

	return r
}

func corsOptions(allowedOrigins []string) cors.Options {
	opts := cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodHead, http.MethodPut, http.MethodPatch, http.MethodPost, http.MethodDelete},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           300,
	}

	// An empty list would make the cors package allow every origin.
	if len(allowedOrigins) == 0 {
		opts.AllowOriginFunc = func(*http.Request, string) bool { return false }
	}

	return opts
}

type healthResponse struct {
	Status   string               `json:"status"`
	Mode     config.Environment   `json:"mode"`
	Database string               `json:"database"`
	Build    nexususers.BuildInfo `json:"build"`
}

func (b *Bootstrap) healthz(db Database) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		res := &healthResponse{Status: "ok", Mode: b.config.NodeEnv, Database: "ok", Build: nexususers.GetBuildInfo()}
		if err := db.Ping(ctx); err != nil {
			b.logger.WarnContext(r.Context(), "Database ping failed", "err", err)
			res.Status = "degraded"
			res.Database = "unreachable"
			render.Status(r, http.StatusServiceUnavailable)
		}

		render.JSON(w, r, res)
	}
}
