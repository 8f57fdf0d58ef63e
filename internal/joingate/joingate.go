// Package joingate decides whether a user may receive files from a
// tenant, based on the tenant's join-channel requirement and the user's
// live membership state.
package joingate

import (
	"context"
	"log/slog"

	"github.com/clonehost/clonehost/internal/telegram"
)

// Decision is the outcome of a gate check.
type Decision int

const (
	// Allowed means the file may be delivered.
	Allowed Decision = iota

	// Denied means the user is not a member, or membership could not be
	// verified. A gate that cannot be verified must not leak the file.
	Denied
)

// MembershipAPI is the slice of the Bot API the evaluator needs.
type MembershipAPI interface {
	GetChatMember(ctx context.Context, chatID string, userID int64) (*telegram.ChatMember, error)
}

// Evaluator performs join-gate checks. It is stateless and re-entrant;
// results must never be cached across requests since membership can
// change between them.
type Evaluator struct {
	logger *slog.Logger
}

// New creates an Evaluator.
func New(logger *slog.Logger) *Evaluator {
	return &Evaluator{logger: logger}
}

// Check evaluates the gate for one delivery attempt. An empty channel
// means no gate is configured and the check passes unconditionally.
// Statuses "left" and "kicked" deny; any other successful status allows;
// any remote failure denies (fail closed).
func (e *Evaluator) Check(ctx context.Context, api MembershipAPI, channel string, userID int64) Decision {
	if channel == "" {
		return Allowed
	}

	member, err := api.GetChatMember(ctx, "@"+channel, userID)
	if err != nil {
		e.logger.Warn("join gate check failed, denying",
			"channel", channel,
			"user", userID,
			"error", err,
		)
		return Denied
	}

	switch member.Status {
	case telegram.MemberStatusLeft, telegram.MemberStatusKicked:
		return Denied
	}
	return Allowed
}
