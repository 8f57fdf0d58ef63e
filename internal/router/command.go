package router

import "strings"

// Verb is one of the closed set of commands the router understands.
type Verb string

// Master-context verbs.
const (
	VerbStart      Verb = "start"
	VerbNewBot     Verb = "newbot"
	VerbMyBots     Verb = "mybots"
	VerbMBroadcast Verb = "mbroadcast"
	VerbMStats     Verb = "mstats"
)

// Clone-context verbs (start is shared).
const (
	VerbSetChannel   Verb = "setchannel"
	VerbClearChannel Verb = "clearchannel"
	VerbChannel      Verb = "channel"
	VerbBroadcast    Verb = "broadcast"
	VerbStats        Verb = "stats"
)

// VerbUnknown marks a command-prefixed message with an unrecognized verb.
const VerbUnknown Verb = ""

// knownVerbs is the closed dispatch set.
var knownVerbs = map[Verb]struct{}{
	VerbStart:        {},
	VerbNewBot:       {},
	VerbMyBots:       {},
	VerbMBroadcast:   {},
	VerbMStats:       {},
	VerbSetChannel:   {},
	VerbClearChannel: {},
	VerbChannel:      {},
	VerbBroadcast:    {},
	VerbStats:        {},
}

// Command is a parsed inbound command: the verb and the raw remainder
// of the message text. Handlers never re-parse raw text.
type Command struct {
	Verb Verb
	Arg  string
}

// parseCommand extracts the command from message text. The second return
// is false when the text does not start with the command prefix.
// A "@BotName" mention suffix on the verb is ignored, as Telegram
// appends one in group chats.
func parseCommand(text string) (Command, bool) {
	if !strings.HasPrefix(text, "/") {
		return Command{}, false
	}

	verbToken, arg, _ := strings.Cut(text[1:], " ")
	verbToken, _, _ = strings.Cut(verbToken, "@")

	verb := Verb(strings.ToLower(verbToken))
	if _, ok := knownVerbs[verb]; !ok {
		verb = VerbUnknown
	}

	return Command{Verb: verb, Arg: strings.TrimSpace(arg)}, true
}
