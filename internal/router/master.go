package router

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/clonehost/clonehost/internal/broadcast"
	"github.com/clonehost/clonehost/internal/metrics"
	"github.com/clonehost/clonehost/internal/registry"
	"github.com/clonehost/clonehost/internal/store"
	"github.com/clonehost/clonehost/internal/telegram"
)

// HandleMaster processes one update addressed to the master bot.
func (r *Router) HandleMaster(ctx context.Context, upd *telegram.Update) {
	msg, ok := r.usable(upd)
	if !ok {
		return
	}
	r.metrics.Updates.WithLabelValues(metrics.ContextMaster).Inc()

	api := r.clients(r.cfg.MasterToken)

	cmd, isCommand := parseCommand(msg.Text)
	if !isCommand {
		r.reply(ctx, api, msg.Chat.ID, replyMasterUnknown)
		return
	}
	r.metrics.Commands.WithLabelValues(string(cmd.Verb)).Inc()

	switch cmd.Verb {
	case VerbStart:
		r.reply(ctx, api, msg.Chat.ID, replyMasterHelp)
	case VerbNewBot:
		r.masterNewBot(ctx, api, msg, cmd.Arg)
	case VerbMyBots:
		r.masterMyBots(ctx, api, msg)
	case VerbMBroadcast:
		r.masterBroadcast(ctx, api, msg, cmd.Arg)
	case VerbMStats:
		r.masterStats(ctx, api, msg)
	default:
		r.reply(ctx, api, msg.Chat.ID, replyMasterUnknown)
	}
}

// masterNewBot registers a clone bot and installs its webhook. When the
// install fails the tenant row is rolled back so the owner can retry
// with the same token.
func (r *Router) masterNewBot(ctx context.Context, api API, msg *telegram.Message, token string) {
	if token == "" {
		r.reply(ctx, api, msg.Chat.ID, replyNewBotUsage)
		return
	}

	tenant, err := r.registry.Register(ctx, token, senderID(msg))
	if err != nil {
		switch {
		case errors.Is(err, registry.ErrInvalidToken):
			r.reply(ctx, api, msg.Chat.ID, replyNewBotBadToken)
		case errors.Is(err, registry.ErrAlreadyRegistered):
			r.reply(ctx, api, msg.Chat.ID, replyNewBotDuplicate)
		default:
			r.logger.Error("register tenant failed", "error", err)
			r.reply(ctx, api, msg.Chat.ID, replyNewBotFailed)
		}
		return
	}

	cloneAPI := r.clients(token)
	err = cloneAPI.SetWebhook(ctx, telegram.SetWebhookRequest{
		URL:            registry.WebhookURL(r.cfg.BaseURL, tenant.Secret),
		AllowedUpdates: []string{"message"},
	})
	if err != nil {
		r.logger.Error("webhook install failed, rolling back",
			"username", tenant.Username,
			"error", err,
		)
		if rbErr := r.registry.Unregister(ctx, token); rbErr != nil {
			r.logger.Error("rollback failed", "username", tenant.Username, "error", rbErr)
		}
		r.reply(ctx, api, msg.Chat.ID, replyNewBotFailed)
		return
	}

	r.metrics.TenantsRegistered.Inc()
	r.reply(ctx, api, msg.Chat.ID, fmt.Sprintf(
		"Your bot @%s is live.\n\nUsers can now send it files and share the links it mints.",
		tenant.Username,
	))
}

func (r *Router) masterMyBots(ctx context.Context, api API, msg *telegram.Message) {
	tenants, err := r.registry.ListByOwner(ctx, senderID(msg))
	if err != nil {
		r.logger.Error("list tenants failed", "error", err)
		r.reply(ctx, api, msg.Chat.ID, replyNewBotFailed)
		return
	}
	if len(tenants) == 0 {
		r.reply(ctx, api, msg.Chat.ID, replyNoBots)
		return
	}

	var b strings.Builder
	b.WriteString("Your hosted bots:\n")
	for _, t := range tenants {
		fmt.Fprintf(&b, "\n@%s", t.Username)
		if t.JoinChannel != "" {
			fmt.Fprintf(&b, " (join gate: @%s)", t.JoinChannel)
		}
	}
	r.reply(ctx, api, msg.Chat.ID, b.String())
}

// masterBroadcast fans a message out to every user of every hosted bot,
// each contacted through the clone bot they interacted with.
func (r *Router) masterBroadcast(ctx context.Context, api API, msg *telegram.Message, text string) {
	if text == "" {
		r.reply(ctx, api, msg.Chat.ID, replyMBroadcastUsage)
		return
	}

	roster, err := r.store.Roster(ctx)
	if err != nil {
		r.logger.Error("load roster failed", "error", err)
		r.reply(ctx, api, msg.Chat.ID, replyNewBotFailed)
		return
	}

	r.reply(ctx, api, msg.Chat.ID, replyBroadcastStarted)
	report := broadcast.Send(ctx, r.senderFactory(), rosterRecipients(roster), text, r.logger)
	r.countBroadcast(report)
	r.reply(ctx, api, msg.Chat.ID, fmt.Sprintf(
		"Broadcast finished. Sent: %d, failed: %d.", report.Sent, report.Failed,
	))
}

func (r *Router) masterStats(ctx context.Context, api API, msg *telegram.Message) {
	tenants, err1 := r.store.CountTenants(ctx)
	users, err2 := r.store.CountUsers(ctx)
	files, err3 := r.store.CountFiles(ctx)
	if err := errors.Join(err1, err2, err3); err != nil {
		r.logger.Error("load stats failed", "error", err)
		r.reply(ctx, api, msg.Chat.ID, replyNewBotFailed)
		return
	}

	r.reply(ctx, api, msg.Chat.ID, fmt.Sprintf(
		"Hosted bots: %d\nUsers: %d\nFiles: %d", tenants, users, files,
	))
}

// rosterRecipients converts stored roster rows to delivery targets.
func rosterRecipients(roster []store.UserRecord) []broadcast.Recipient {
	out := make([]broadcast.Recipient, 0, len(roster))
	for _, u := range roster {
		out = append(out, broadcast.Recipient{Token: u.BotToken, ChatID: u.UserID})
	}
	return out
}

func (r *Router) countBroadcast(report broadcast.Report) {
	r.metrics.BroadcastSends.WithLabelValues(metrics.DeliverySent).Add(float64(report.Sent))
	r.metrics.BroadcastSends.WithLabelValues(metrics.DeliveryFailed).Add(float64(report.Failed))
}
