package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"go.uber.org/zap"

	"github.com/eugenenazirov/actuator/internal/application"
	"github.com/eugenenazirov/actuator/internal/config"
	"github.com/eugenenazirov/actuator/internal/logging"
)

var signalNotify = signal.Notify

func main() {
	overrides, err := parseOverrides(os.Args[1:])
	kingpin.FatalIfError(err, "parse flags")

	cfg, err := config.Load(overrides)
	if err != nil {
		panic(fmt.Sprintf("failed to load configuration: %v", err))
	}

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	defer func() {
		_ = logger.Sync()
	}()

	app, err := application.New(context.Background(), cfg, logger)
	if err != nil {
		logger.Fatal("failed to initialize application", zap.Error(err))
	}

	if err := app.Start(); err != nil {
		logger.Fatal("failed to start server", zap.Error(err))
	}

	shutdown(app.Server(), cfg.ShutdownGracePeriod, logger)
}

// parseOverrides maps command-line flags onto config overrides. Flags left
// unset stay nil so lower-precedence sources apply.
func parseOverrides(args []string) (*config.CLIOverrides, error) {
	kingpinApp := kingpin.New("actuator", "Actuator endpoints - health, environment and metrics for a service")
	configFile := kingpinApp.Flag("config", "Path to YAML configuration file").String()
	port := kingpinApp.Flag("port", "HTTP port exposed by the service").String()
	prefix := kingpinApp.Flag("prefix", "Path prefix for the actuator routes").String()
	settingsFiles := kingpinApp.Flag("settings", "Settings file to read defaults from (repeatable)").Strings()
	baseDir := kingpinApp.Flag("base-dir", "Directory relative settings paths resolve against").String()
	metrics := kingpinApp.Flag("metrics", "Expose Prometheus metrics (true or false)").String()
	rateLimitRPSFlag := kingpinApp.Flag("rate-limit-rps", "Requests per second allowed (set 0 to disable)").Default("-1").Float64()
	rateLimitBurstFlag := kingpinApp.Flag("rate-limit-burst", "Burst capacity for rate limiter (set 0 to disable)").Default("-1").Int()

	if _, err := kingpinApp.Parse(args); err != nil {
		return nil, err
	}

	overrides := &config.CLIOverrides{
		ConfigFile: *configFile,
		Settings:   *settingsFiles,
	}

	if *port != "" {
		overrides.Port = port
	}

	if *prefix != "" {
		overrides.Prefix = prefix
	}

	if *baseDir != "" {
		overrides.BaseDir = baseDir
	}

	if *metrics != "" {
		enabled, err := strconv.ParseBool(*metrics)
		if err != nil {
			return nil, fmt.Errorf("invalid --metrics value %q: %w", *metrics, err)
		}
		overrides.EnableMetrics = &enabled
	}

	if *rateLimitRPSFlag >= 0 {
		overrides.RateLimitRPS = rateLimitRPSFlag
	}

	if *rateLimitBurstFlag >= 0 {
		overrides.RateLimitBurst = rateLimitBurstFlag
	}

	return overrides, nil
}

func shutdown(server *http.Server, timeout time.Duration, logger *zap.Logger) {
	quit := make(chan os.Signal, 1)
	signalNotify(quit, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	sig := <-quit
	logger.Info("shutting down server", zap.String("signal", sig.String()))

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Warn("graceful shutdown failed", zap.Error(err))
		if closeErr := server.Close(); closeErr != nil {
			logger.Error("forced close failed", zap.Error(closeErr))
		}
	}
}
