package router

// User-visible reply texts. Kept in one place so handlers stay readable
// and tests can assert on exact wording.
const (
	replyMasterHelp = "Welcome to the clone host.\n\n" +
		"/newbot <token> - host a new bot\n" +
		"/mybots - list your hosted bots\n" +
		"/mbroadcast <text> - message every user of every hosted bot\n" +
		"/mstats - global statistics"

	replyMasterUnknown = "Unknown command. Send /start for the list of commands."

	replyNewBotUsage      = "Usage: /newbot <token>\n\nGet a token from @BotFather first."
	replyNewBotBadToken   = "That token was rejected by Telegram. Check it and try again."
	replyNewBotDuplicate  = "That bot is already hosted here."
	replyNewBotFailed     = "Could not set up the bot right now. Please try again."
	replyNoBots           = "You have no hosted bots yet. Send /newbot <token> to add one."
	replyBroadcastUsage   = "Usage: /broadcast <text>"
	replyMBroadcastUsage  = "Usage: /mbroadcast <text>"
	replyBroadcastStarted = "Starting broadcast..."

	replyCloneHelp = "Send me a file and I will reply with a share link.\n\n" +
		"Owner commands:\n" +
		"/setchannel <channel> - require joining a channel before downloads\n" +
		"/clearchannel - remove the join requirement\n" +
		"/channel - show the current join requirement\n" +
		"/broadcast <text> - message every user of this bot\n" +
		"/stats - statistics for this bot"

	replyCloneDefault = "Send me a file to get a share link."

	replySetChannelUsage = "Usage: /setchannel <channel username>"
	replyChannelCleared  = "Join requirement removed."
	replyNoChannelSet    = "No join channel set."

	replyLinkMalformed = "That link is not valid."
	replyFileNotFound  = "File not found. The link may be wrong."
	replyStoreFailed   = "Could not store the file right now. Please try again."
)
