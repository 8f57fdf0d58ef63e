// Package registry manages tenant identity: registering clone bots,
// resolving webhook-routing secrets, and maintaining join-gate settings.
package registry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/clonehost/clonehost/internal/store"
	"github.com/clonehost/clonehost/internal/telegram"
)

// Typed registration outcomes.
var (
	// ErrInvalidToken means the Bot API rejected the token.
	ErrInvalidToken = errors.New("registry: invalid bot token")

	// ErrAlreadyRegistered means the token (or, vanishingly unlikely,
	// the generated secret) is already present. State is unchanged.
	ErrAlreadyRegistered = errors.New("registry: bot already registered")
)

// IdentityClient is the slice of the Bot API the registry needs to
// validate a token.
type IdentityClient interface {
	GetMe(ctx context.Context) (*telegram.User, error)
}

// ClientFactory builds a Bot API client for a given token.
type ClientFactory func(token string) IdentityClient

// Registry implements tenant registration and lookup on top of the store.
type Registry struct {
	store   store.TenantStore
	clients ClientFactory
	logger  *slog.Logger
}

// New creates a Registry.
func New(st store.TenantStore, clients ClientFactory, logger *slog.Logger) *Registry {
	return &Registry{store: st, clients: clients, logger: logger}
}

// Register validates the token against the Bot API, derives the bot
// username from the response, generates a fresh webhook-routing secret,
// and persists the tenant. Duplicate tokens yield ErrAlreadyRegistered
// with no state change.
func (r *Registry) Register(ctx context.Context, token string, ownerID int64) (*store.Tenant, error) {
	me, err := r.clients(token).GetMe(ctx)
	if err != nil {
		var apiErr *telegram.APIError
		if errors.As(err, &apiErr) {
			return nil, ErrInvalidToken
		}
		return nil, fmt.Errorf("registry: validate token: %w", err)
	}

	secret, err := newSecret()
	if err != nil {
		return nil, err
	}

	tenant := store.Tenant{
		Token:    token,
		Secret:   secret,
		Username: me.Username,
		OwnerID:  ownerID,
	}

	id, err := r.store.CreateTenant(ctx, tenant)
	if err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, ErrAlreadyRegistered
		}
		return nil, fmt.Errorf("registry: persist tenant: %w", err)
	}
	tenant.ID = id

	r.logger.Info("tenant registered",
		"username", tenant.Username,
		"owner", ownerID,
	)
	return &tenant, nil
}

// Unregister removes a tenant row. Used to roll back a registration
// whose webhook install failed, so the owner can simply retry.
func (r *Registry) Unregister(ctx context.Context, token string) error {
	return r.store.DeleteTenantByToken(ctx, token)
}

// ResolveBySecret maps an inbound webhook path segment to a tenant.
// Returns store.ErrNotFound for unknown secrets.
func (r *Registry) ResolveBySecret(ctx context.Context, secret string) (*store.Tenant, error) {
	return r.store.TenantBySecret(ctx, secret)
}

// SetJoinGate sets the join channel of a tenant. A leading "@" on the
// channel handle is stripped. Idempotent.
func (r *Registry) SetJoinGate(ctx context.Context, username, channel string) error {
	channel = strings.TrimPrefix(strings.TrimSpace(channel), "@")
	return r.store.SetJoinChannel(ctx, username, channel)
}

// ClearJoinGate removes the join requirement of a tenant. Idempotent.
func (r *Registry) ClearJoinGate(ctx context.Context, username string) error {
	return r.store.SetJoinChannel(ctx, username, "")
}

// ListByOwner returns the tenants registered by the given user.
func (r *Registry) ListByOwner(ctx context.Context, ownerID int64) ([]store.Tenant, error) {
	return r.store.TenantsByOwner(ctx, ownerID)
}

// WebhookURL derives the public webhook endpoint for a tenant secret.
func WebhookURL(baseURL, secret string) string {
	return strings.TrimSuffix(baseURL, "/") + "/webhook/" + secret
}
