package router

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/clonehost/clonehost/internal/broadcast"
	"github.com/clonehost/clonehost/internal/joingate"
	"github.com/clonehost/clonehost/internal/linkcode"
	"github.com/clonehost/clonehost/internal/metrics"
	"github.com/clonehost/clonehost/internal/store"
	"github.com/clonehost/clonehost/internal/telegram"
)

// HandleClone processes one update addressed to a hosted clone bot.
// Order matters: owner commands are checked before the link flow so an
// owner typing /broadcast never triggers the default nudge, and owner
// verbs sent by non-owners fall through to ordinary handling.
func (r *Router) HandleClone(ctx context.Context, tenant *store.Tenant, upd *telegram.Update) {
	msg, ok := r.usable(upd)
	if !ok {
		return
	}
	r.metrics.Updates.WithLabelValues(metrics.ContextClone).Inc()

	api := r.clients(tenant.Token)
	uid := senderID(msg)

	// Every interaction lands the user on the broadcast roster.
	if err := r.store.EnsureUser(ctx, store.UserRecord{
		BotUsername: tenant.Username,
		BotToken:    tenant.Token,
		UserID:      uid,
	}); err != nil {
		r.logger.Error("roster upsert failed", "bot", tenant.Username, "error", err)
	}

	cmd, isCommand := parseCommand(msg.Text)
	if isCommand {
		r.metrics.Commands.WithLabelValues(string(cmd.Verb)).Inc()

		if isOwnerVerb(cmd.Verb) && uid == tenant.OwnerID {
			r.cloneOwnerCommand(ctx, api, tenant, msg, cmd)
			return
		}
		if cmd.Verb == VerbStart {
			if cmd.Arg != "" {
				r.cloneDeliver(ctx, api, tenant, msg, cmd.Arg)
				return
			}
			r.reply(ctx, api, msg.Chat.ID, replyCloneHelp)
			return
		}
		// Unknown verbs and owner verbs from non-owners get the nudge.
		r.reply(ctx, api, msg.Chat.ID, replyCloneDefault)
		return
	}

	if hasMedia(msg) {
		r.cloneUpload(ctx, api, tenant, msg)
		return
	}

	r.reply(ctx, api, msg.Chat.ID, replyCloneDefault)
}

func isOwnerVerb(v Verb) bool {
	switch v {
	case VerbSetChannel, VerbClearChannel, VerbChannel, VerbBroadcast, VerbStats:
		return true
	}
	return false
}

func hasMedia(msg *telegram.Message) bool {
	return msg.Document != nil || len(msg.Photo) > 0 || msg.Video != nil
}

// cloneDeliver resolves a /start payload to a stored file and sends it
// with forwarding and saving disabled. The join gate is evaluated first
// and fails closed.
func (r *Router) cloneDeliver(ctx context.Context, api API, tenant *store.Tenant, msg *telegram.Message, payload string) {
	id, err := linkcode.Decode(payload)
	if err != nil {
		r.metrics.Deliveries.WithLabelValues(metrics.DeliveryMalformed).Inc()
		r.reply(ctx, api, msg.Chat.ID, replyLinkMalformed)
		return
	}

	if r.gate.Check(ctx, api, tenant.JoinChannel, senderID(msg)) == joingate.Denied {
		r.metrics.Deliveries.WithLabelValues(metrics.DeliveryDenied).Inc()
		joinURL := strings.TrimSuffix(r.cfg.LinkBase, "/") + "/" + tenant.JoinChannel
		r.reply(ctx, api, msg.Chat.ID, fmt.Sprintf(
			"You must join %s to use this bot.\n\nJoin the channel, then open the link again.",
			joinURL,
		))
		return
	}

	rec, err := r.store.FileByID(ctx, id, tenant.Username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			r.metrics.Deliveries.WithLabelValues(metrics.DeliveryNotFound).Inc()
			r.reply(ctx, api, msg.Chat.ID, replyFileNotFound)
			return
		}
		r.logger.Error("file lookup failed", "bot", tenant.Username, "id", id, "error", err)
		r.metrics.Deliveries.WithLabelValues(metrics.DeliveryFailed).Inc()
		r.reply(ctx, api, msg.Chat.ID, replyFileNotFound)
		return
	}

	if err := sendProtected(ctx, api, msg.Chat.ID, rec); err != nil {
		r.logger.Error("file delivery failed",
			"bot", tenant.Username,
			"id", rec.ID,
			"type", rec.FileType,
			"error", err,
		)
		r.metrics.Deliveries.WithLabelValues(metrics.DeliveryFailed).Inc()
		return
	}
	r.metrics.Deliveries.WithLabelValues(metrics.DeliverySent).Inc()
}

// sendProtected dispatches on the stored file type. Unrecognized types
// fall back to a document send, matching how they were stored.
func sendProtected(ctx context.Context, api API, chatID int64, rec *store.FileRecord) error {
	switch rec.FileType {
	case store.FileTypePhoto:
		_, err := api.SendPhoto(ctx, telegram.SendPhotoRequest{
			ChatID:         chatID,
			Photo:          rec.FileID,
			Caption:        rec.Caption,
			ProtectContent: true,
		})
		return err
	case store.FileTypeVideo:
		_, err := api.SendVideo(ctx, telegram.SendVideoRequest{
			ChatID:         chatID,
			Video:          rec.FileID,
			Caption:        rec.Caption,
			ProtectContent: true,
		})
		return err
	default:
		_, err := api.SendDocument(ctx, telegram.SendDocumentRequest{
			ChatID:         chatID,
			Document:       rec.FileID,
			Caption:        rec.Caption,
			ProtectContent: true,
		})
		return err
	}
}

// cloneUpload stores the media reference and replies with a share link.
func (r *Router) cloneUpload(ctx context.Context, api API, tenant *store.Tenant, msg *telegram.Message) {
	fileID, fileType := classifyMedia(msg)

	id, err := r.store.CreateFile(ctx, store.FileRecord{
		BotUsername: tenant.Username,
		BotToken:    tenant.Token,
		FileID:      fileID,
		FileType:    fileType,
		Caption:     msg.Caption,
	})
	if err != nil {
		r.logger.Error("store file failed", "bot", tenant.Username, "error", err)
		r.reply(ctx, api, msg.Chat.ID, replyStoreFailed)
		return
	}

	r.metrics.FilesStored.Inc()
	link := r.shareLink(tenant.Username, linkcode.Encode(id))
	r.reply(ctx, api, msg.Chat.ID, "Here is your share link:\n"+link)
}

// classifyMedia picks the stored reference for a media message. Photos
// arrive as a size ladder; the last entry is the largest rendition.
func classifyMedia(msg *telegram.Message) (fileID, fileType string) {
	switch {
	case msg.Document != nil:
		return msg.Document.FileID, store.FileTypeDocument
	case len(msg.Photo) > 0:
		return msg.Photo[len(msg.Photo)-1].FileID, store.FileTypePhoto
	default:
		return msg.Video.FileID, store.FileTypeVideo
	}
}

func (r *Router) cloneOwnerCommand(ctx context.Context, api API, tenant *store.Tenant, msg *telegram.Message, cmd Command) {
	switch cmd.Verb {
	case VerbSetChannel:
		r.cloneSetChannel(ctx, api, tenant, msg, cmd.Arg)
	case VerbClearChannel:
		if err := r.registry.ClearJoinGate(ctx, tenant.Username); err != nil {
			r.logger.Error("clear join gate failed", "bot", tenant.Username, "error", err)
			r.reply(ctx, api, msg.Chat.ID, replyStoreFailed)
			return
		}
		r.reply(ctx, api, msg.Chat.ID, replyChannelCleared)
	case VerbChannel:
		if tenant.JoinChannel == "" {
			r.reply(ctx, api, msg.Chat.ID, replyNoChannelSet)
			return
		}
		r.reply(ctx, api, msg.Chat.ID, "Current join channel: @"+tenant.JoinChannel)
	case VerbBroadcast:
		r.cloneBroadcast(ctx, api, tenant, msg, cmd.Arg)
	case VerbStats:
		r.cloneStats(ctx, api, tenant, msg)
	}
}

func (r *Router) cloneSetChannel(ctx context.Context, api API, tenant *store.Tenant, msg *telegram.Message, channel string) {
	if channel == "" {
		r.reply(ctx, api, msg.Chat.ID, replySetChannelUsage)
		return
	}
	if err := r.registry.SetJoinGate(ctx, tenant.Username, channel); err != nil {
		r.logger.Error("set join gate failed", "bot", tenant.Username, "error", err)
		r.reply(ctx, api, msg.Chat.ID, replyStoreFailed)
		return
	}
	handle := strings.TrimPrefix(strings.TrimSpace(channel), "@")
	r.reply(ctx, api, msg.Chat.ID, fmt.Sprintf(
		"Users must now join @%s before downloading.", handle,
	))
}

// cloneBroadcast fans a message out to this bot's roster only.
func (r *Router) cloneBroadcast(ctx context.Context, api API, tenant *store.Tenant, msg *telegram.Message, text string) {
	if text == "" {
		r.reply(ctx, api, msg.Chat.ID, replyBroadcastUsage)
		return
	}

	roster, err := r.store.RosterByBot(ctx, tenant.Username)
	if err != nil {
		r.logger.Error("load roster failed", "bot", tenant.Username, "error", err)
		r.reply(ctx, api, msg.Chat.ID, replyStoreFailed)
		return
	}

	r.reply(ctx, api, msg.Chat.ID, replyBroadcastStarted)
	report := broadcast.Send(ctx, r.senderFactory(), rosterRecipients(roster), text, r.logger)
	r.countBroadcast(report)
	r.reply(ctx, api, msg.Chat.ID, fmt.Sprintf(
		"Broadcast finished. Sent: %d, failed: %d.", report.Sent, report.Failed,
	))
}

func (r *Router) cloneStats(ctx context.Context, api API, tenant *store.Tenant, msg *telegram.Message) {
	users, err1 := r.store.CountUsersByBot(ctx, tenant.Username)
	files, err2 := r.store.CountFilesByBot(ctx, tenant.Username)
	if err := errors.Join(err1, err2); err != nil {
		r.logger.Error("load stats failed", "bot", tenant.Username, "error", err)
		r.reply(ctx, api, msg.Chat.ID, replyStoreFailed)
		return
	}

	r.reply(ctx, api, msg.Chat.ID, fmt.Sprintf(
		"Users: %d\nFiles: %d", users, files,
	))
}
