// Package app provides the shared entry point for the clonehost binary.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/clonehost/clonehost/internal/config"
	"github.com/clonehost/clonehost/internal/gateway"
	"github.com/clonehost/clonehost/internal/joingate"
	"github.com/clonehost/clonehost/internal/metrics"
	"github.com/clonehost/clonehost/internal/registry"
	"github.com/clonehost/clonehost/internal/reporter"
	"github.com/clonehost/clonehost/internal/router"
	"github.com/clonehost/clonehost/internal/store/sqlite"
	"github.com/clonehost/clonehost/internal/telegram"
	"github.com/clonehost/clonehost/internal/telemetry"
)

// RunParams configures the main application loop.
type RunParams struct {
	// ConfigPath is an explicit path to the YAML configuration file.
	// If empty, ResolveConfigPath is called automatically.
	ConfigPath string

	// Version, Commit, and Date are injected at build time via ldflags.
	Version string
	Commit  string
	Date    string
}

// Run loads configuration, wires the host together, installs the master
// webhook, and blocks until a shutdown signal is received.
func Run(params RunParams) error {
	// A .env next to the binary feeds ${VAR} expansion in the config.
	_ = godotenv.Load()

	cfgPath := params.ConfigPath
	if cfgPath == "" {
		resolved, err := ResolveConfigPath()
		if err != nil {
			return err
		}
		cfgPath = resolved
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}
	if err := config.Validate(cfg); err != nil {
		return err
	}

	logger := NewLogger(cfg.LogLevel)
	logger.Info("starting clonehost",
		"version", params.Version,
		"config", cfgPath,
	)

	ctx := context.Background()

	shutdownTracing, err := telemetry.Setup(ctx, cfg.Telemetry.OTLPEndpoint, params.Version, logger)
	if err != nil {
		return err
	}

	db, err := sqlite.Open(cfg.Database.Path, sqlite.Options{
		WAL:         cfg.Database.WAL,
		BusyTimeout: cfg.Database.BusyTimeout,
	})
	if err != nil {
		return err
	}

	newClient := func(token string) *telegram.Client {
		return telegram.NewClient(token, cfg.Telegram.APIURL, cfg.Telegram.Timeout)
	}

	reg := registry.New(db, func(token string) registry.IdentityClient {
		return newClient(token)
	}, logger)

	promReg := prometheus.NewRegistry()
	promReg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	rtr := router.New(
		router.Config{
			MasterToken: cfg.MasterToken,
			BaseURL:     cfg.BaseURL,
			LinkBase:    cfg.LinkBase,
		},
		db,
		reg,
		joingate.New(logger),
		func(token string) router.API { return newClient(token) },
		metrics.New(promReg),
		logger,
	)

	gw := gateway.New(cfg.Bind, cfg.Gateway, rtr, reg, promReg, db.CountTenants, logger)
	rep := reporter.New(cfg.Reporter.Schedule, db, logger)

	// The master webhook is (re)installed on every start so a changed
	// base URL takes effect without manual steps.
	masterClient := newClient(cfg.MasterToken)
	if err := masterClient.SetWebhook(ctx, telegram.SetWebhookRequest{
		URL:            registry.WebhookURL(cfg.BaseURL, "master"),
		AllowedUpdates: []string{"message"},
	}); err != nil {
		_ = db.Close()
		return fmt.Errorf("install master webhook: %w", err)
	}

	if err := gw.Start(); err != nil {
		_ = db.Close()
		return err
	}
	if err := rep.Start(); err != nil {
		stopCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		_ = gw.Stop(stopCtx)
		_ = db.Close()
		return err
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	sig := <-sigCh
	logger.Info("shutdown signal received", "signal", sig.String())

	stopCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := gw.Stop(stopCtx); err != nil {
		logger.Error("gateway shutdown failed", "error", err)
	}
	if err := rep.Stop(stopCtx); err != nil {
		logger.Error("reporter shutdown failed", "error", err)
	}
	if err := shutdownTracing(stopCtx); err != nil {
		logger.Error("tracing shutdown failed", "error", err)
	}
	if err := db.Close(); err != nil {
		logger.Error("database close failed", "error", err)
	}

	logger.Info("shutdown complete")
	return nil
}

// NewLogger builds the process logger writing text lines to stderr.
func NewLogger(level string) *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: ParseLevel(level),
	}))
}

// ParseLevel maps a config log level to slog. Unknown values mean info.
func ParseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// ResolveConfigPath searches for a config file in standard locations.
// Search order: $XDG_CONFIG_HOME/clonehost/clonehost.yaml →
// ~/.config/clonehost/clonehost.yaml → ./clonehost.yaml
func ResolveConfigPath() (string, error) {
	var candidates []string

	if xdg, ok := os.LookupEnv("XDG_CONFIG_HOME"); ok {
		candidates = append(candidates, filepath.Join(xdg, "clonehost", "clonehost.yaml"))
	} else if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, ".config", "clonehost", "clonehost.yaml"))
	}

	candidates = append(candidates, "clonehost.yaml")

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}

	return "", fmt.Errorf("no configuration file found (searched: %v)", candidates)
}
