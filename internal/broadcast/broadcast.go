// Package broadcast fans a text message out to a roster of recipients
// on a best-effort basis. One bad recipient never aborts the batch.
package broadcast

import (
	"context"
	"log/slog"

	"github.com/clonehost/clonehost/internal/telegram"
)

// Sender is the slice of the Bot API the fan-out needs.
type Sender interface {
	SendMessage(ctx context.Context, req telegram.SendMessageRequest) (*telegram.Message, error)
}

// SenderFactory builds a Sender for a given bot token. Each recipient
// is messaged by the clone bot they interacted with, not the master.
type SenderFactory func(token string) Sender

// Recipient is one delivery target.
type Recipient struct {
	Token  string
	ChatID int64
}

// Report aggregates a fan-out run. Failures are swallowed by policy —
// logged per recipient, counted here, never propagated.
type Report struct {
	Sent   int
	Failed int
}

// Send delivers text to every recipient sequentially, deduplicating by
// (token, chat) in case the roster scope overlaps. No ordering guarantee.
func Send(ctx context.Context, clients SenderFactory, recipients []Recipient, text string, logger *slog.Logger) Report {
	var report Report
	seen := make(map[Recipient]struct{}, len(recipients))

	for _, rcpt := range recipients {
		if _, dup := seen[rcpt]; dup {
			continue
		}
		seen[rcpt] = struct{}{}

		_, err := clients(rcpt.Token).SendMessage(ctx, telegram.SendMessageRequest{
			ChatID: rcpt.ChatID,
			Text:   text,
		})
		if err != nil {
			report.Failed++
			logger.Debug("broadcast send failed",
				"chat", rcpt.ChatID,
				"error", err,
			)
			continue
		}
		report.Sent++
	}

	return report
}
