package application

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"github.com/eugenenazirov/actuator/internal/api"
	"github.com/eugenenazirov/actuator/internal/config"
	"github.com/eugenenazirov/actuator/internal/plugin"
	"github.com/eugenenazirov/actuator/internal/settings"
)

// App encapsulates the mounted plugins and the HTTP server.
type App struct {
	routes  *plugin.Mux
	router  http.Handler
	metrics *api.Metrics
	logger  *zap.Logger
	server  *http.Server
}

// New registers the actuator plugins described by cfg and builds the server.
// Settings files are read here, once; a registration failure aborts startup.
func New(ctx context.Context, cfg config.Config, logger *zap.Logger) (*App, error) {
	loader := settings.NewLoader(
		settings.WithBaseDir(cfg.BaseDir),
		settings.WithLogger(logger),
	)

	plugins := []plugin.Plugin{
		api.Health(),
		api.Env(loader, logger),
	}
	routerOpts := []api.RouterOption{
		api.WithLogging(cfg.EnableRequestLogging),
		api.WithRateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst),
	}

	var metrics *api.Metrics
	if cfg.EnableMetrics {
		metrics = api.NewMetrics(newRegistry())
		plugins = append(plugins, metrics.Plugin())
		routerOpts = append(routerOpts, api.WithMetrics(metrics))
	}

	routes := plugin.NewMux()
	opts := plugin.Options{
		Prefix:   cfg.Prefix,
		Settings: cfg.SettingsFiles,
	}
	if err := routes.Register(ctx, plugin.Multi(plugins...), opts); err != nil {
		return nil, fmt.Errorf("failed to register plugins: %w", err)
	}
	for _, route := range routes.Routes() {
		logger.Info("route mounted", zap.String("method", route.Method), zap.String("path", route.Path))
	}

	router := api.NewRouter(routes, logger, routerOpts...)

	return &App{
		routes:  routes,
		router:  router,
		metrics: metrics,
		logger:  logger,
		server:  NewServer(cfg, router),
	}, nil
}

func newRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// NewServer creates and configures an HTTP server from the provided configuration.
func NewServer(cfg config.Config, handler http.Handler) *http.Server {
	addr := cfg.Port
	if !strings.Contains(addr, ":") {
		addr = ":" + addr
	}

	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
	}
}

// Start starts the HTTP server in a goroutine and logs the listening address.
func (a *App) Start() error {
	go func() {
		a.logger.Info("server listening", zap.String("addr", a.server.Addr))
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Fatal("server error", zap.Error(err))
		}
	}()
	return nil
}

// Handler returns the root HTTP handler, middleware included.
func (a *App) Handler() http.Handler {
	return a.router
}

// Server returns the HTTP server instance for shutdown handling.
func (a *App) Server() *http.Server {
	return a.server
}
