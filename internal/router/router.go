// Package router dispatches inbound Telegram updates to the master and
// clone command handlers. It is the only layer that interprets message
// text; everything below it works with typed commands and records.
package router

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/clonehost/clonehost/internal/broadcast"
	"github.com/clonehost/clonehost/internal/joingate"
	"github.com/clonehost/clonehost/internal/metrics"
	"github.com/clonehost/clonehost/internal/registry"
	"github.com/clonehost/clonehost/internal/store"
	"github.com/clonehost/clonehost/internal/telegram"
)

// API is the slice of the Bot API the handlers consume.
type API interface {
	GetMe(ctx context.Context) (*telegram.User, error)
	SetWebhook(ctx context.Context, req telegram.SetWebhookRequest) error
	SendMessage(ctx context.Context, req telegram.SendMessageRequest) (*telegram.Message, error)
	SendDocument(ctx context.Context, req telegram.SendDocumentRequest) (*telegram.Message, error)
	SendPhoto(ctx context.Context, req telegram.SendPhotoRequest) (*telegram.Message, error)
	SendVideo(ctx context.Context, req telegram.SendVideoRequest) (*telegram.Message, error)
	GetChatMember(ctx context.Context, chatID string, userID int64) (*telegram.ChatMember, error)
}

// ClientFactory builds an API client for a given bot token.
type ClientFactory func(token string) API

// Config carries the router's static settings.
type Config struct {
	// MasterToken is the credential of the master bot.
	MasterToken string

	// BaseURL is the public origin webhooks are installed under.
	BaseURL string

	// LinkBase is the origin share links are minted under,
	// normally https://t.me.
	LinkBase string
}

// Router routes updates to handlers. Handling is total: every update
// ends in a reply, a logged skip, or a logged internal failure, and
// errors never propagate to the webhook transport.
type Router struct {
	cfg      Config
	store    store.Store
	registry *registry.Registry
	gate     *joingate.Evaluator
	clients  ClientFactory
	metrics  *metrics.Metrics
	logger   *slog.Logger
}

// New creates a Router.
func New(cfg Config, st store.Store, reg *registry.Registry, gate *joingate.Evaluator, clients ClientFactory, m *metrics.Metrics, logger *slog.Logger) *Router {
	return &Router{
		cfg:      cfg,
		store:    st,
		registry: reg,
		gate:     gate,
		clients:  clients,
		metrics:  m,
		logger:   logger,
	}
}

// reply sends a plain text message and swallows send failures, logging
// them. A user who blocked the bot must not fail the webhook.
func (r *Router) reply(ctx context.Context, api API, chatID int64, text string) {
	_, err := api.SendMessage(ctx, telegram.SendMessageRequest{
		ChatID: chatID,
		Text:   text,
	})
	if err != nil {
		r.logger.Warn("reply failed", "chat", chatID, "error", err)
	}
}

// senderFactory adapts the router's client factory to the broadcast
// fan-out contract.
func (r *Router) senderFactory() broadcast.SenderFactory {
	return func(token string) broadcast.Sender {
		return r.clients(token)
	}
}

// shareLink mints the public link for a file payload.
func (r *Router) shareLink(botUsername, payload string) string {
	return fmt.Sprintf("%s/%s?start=%s",
		strings.TrimSuffix(r.cfg.LinkBase, "/"), botUsername, payload)
}

// usable extracts the message from an update, returning false for
// updates the host ignores (edits, channel posts, callback queries).
func (r *Router) usable(upd *telegram.Update) (*telegram.Message, bool) {
	if upd == nil || upd.Message == nil || upd.Message.Chat.ID == 0 {
		r.metrics.IgnoredUpdates.Inc()
		return nil, false
	}
	return upd.Message, true
}

// senderID returns the user id behind a message, falling back to the
// chat id for private chats where From may be absent.
func senderID(msg *telegram.Message) int64 {
	if msg.From != nil {
		return msg.From.ID
	}
	return msg.Chat.ID
}
