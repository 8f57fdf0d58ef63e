// Package gateway is the HTTP front of the clone host. It terminates
// the Telegram webhook endpoints and exposes liveness and metrics.
package gateway

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/clonehost/clonehost/internal/config"
	"github.com/clonehost/clonehost/internal/store"
	"github.com/clonehost/clonehost/internal/telegram"
)

// UpdateHandler processes decoded webhook updates. Handling is total;
// the gateway never surfaces handler state to Telegram.
type UpdateHandler interface {
	HandleMaster(ctx context.Context, upd *telegram.Update)
	HandleClone(ctx context.Context, tenant *store.Tenant, upd *telegram.Update)
}

// TenantResolver maps a webhook path secret to a tenant.
type TenantResolver interface {
	ResolveBySecret(ctx context.Context, secret string) (*store.Tenant, error)
}

// Gateway owns the HTTP server and its routes.
type Gateway struct {
	bind     string
	cfg      config.GatewayConfig
	handler  UpdateHandler
	resolver TenantResolver
	gatherer prometheus.Gatherer
	health   func(ctx context.Context) (int64, error)
	logger   *slog.Logger
	server   *http.Server
}

// New creates a Gateway. The health callback reports the tenant count
// shown on /health; a nil callback reports zero.
func New(bind string, cfg config.GatewayConfig, handler UpdateHandler, resolver TenantResolver, gatherer prometheus.Gatherer, health func(ctx context.Context) (int64, error), logger *slog.Logger) *Gateway {
	return &Gateway{
		bind:     bind,
		cfg:      cfg,
		handler:  handler,
		resolver: resolver,
		gatherer: gatherer,
		health:   health,
		logger:   logger,
	}
}

// Start binds the listen address and serves in the background. A bind
// failure is returned synchronously so startup can abort.
func (g *Gateway) Start() error {
	g.server = &http.Server{
		Addr:         g.bind,
		Handler:      g.buildRouter(),
		ReadTimeout:  g.cfg.ReadTimeout,
		WriteTimeout: g.cfg.WriteTimeout,
	}

	var lc net.ListenConfig
	ln, err := lc.Listen(context.Background(), "tcp", g.bind)
	if err != nil {
		return errors.New("gateway: listen failed: " + err.Error())
	}

	go func() {
		g.logger.Info("gateway listening", "addr", g.bind)
		if err := g.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			g.logger.Error("gateway serve error", "error", err)
		}
	}()

	return nil
}

// Stop drains in-flight requests within the configured shutdown timeout.
func (g *Gateway) Stop(ctx context.Context) error {
	if g.server == nil {
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, g.cfg.ShutdownTimeout)
	defer cancel()

	g.logger.Info("gateway shutting down")
	return g.server.Shutdown(shutdownCtx)
}
