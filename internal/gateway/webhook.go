package gateway

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/clonehost/clonehost/internal/store"
	"github.com/clonehost/clonehost/internal/telegram"
)

// maxUpdateBytes bounds the webhook request body. Telegram updates are
// small; anything larger is not one.
const maxUpdateBytes = 1 << 20 // 1 MiB

// ack answers a webhook. Telegram retries anything but 200, and a
// retried update would be double-handled, so every outcome acks.
func ack(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// decodeUpdate reads and parses the webhook body. A nil update with a
// nil error means the body was unusable and the caller should just ack.
func (g *Gateway) decodeUpdate(r *http.Request) *telegram.Update {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxUpdateBytes))
	if err != nil {
		g.logger.Warn("webhook body read failed", "error", err)
		return nil
	}

	var upd telegram.Update
	if err := json.Unmarshal(body, &upd); err != nil {
		g.logger.Warn("webhook body malformed", "error", err)
		return nil
	}
	return &upd
}

// handleMasterWebhook processes updates for the master bot.
func (g *Gateway) handleMasterWebhook() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if upd := g.decodeUpdate(r); upd != nil {
			g.handler.HandleMaster(r.Context(), upd)
		}
		ack(w)
	}
}

// handleCloneWebhook resolves the path secret to a tenant and processes
// the update. Unknown secrets ack silently so the endpoint does not
// confirm which secrets exist.
func (g *Gateway) handleCloneWebhook() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		secret := chi.URLParam(r, "secret")

		tenant, err := g.resolver.ResolveBySecret(r.Context(), secret)
		if err != nil {
			if !errors.Is(err, store.ErrNotFound) {
				g.logger.Error("tenant resolve failed", "error", err)
			}
			ack(w)
			return
		}

		if upd := g.decodeUpdate(r); upd != nil {
			g.handler.HandleClone(r.Context(), tenant, upd)
		}
		ack(w)
	}
}
