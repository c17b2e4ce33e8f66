// Package bot turns inbound chat text into game actions and reply texts.
//
// ParseCommand maps the first word of a message to a Command. The
// Dispatcher calls it once per message: start commands open a new game
// (replacing any game in progress), "quit" ends the active game, and any
// other text is forwarded to the active game as a move. Text from a user
// without a session falls through to a greeting.
//
// The dispatcher never delivers messages itself. OnText returns the replies
// and the transport decides how, and whether, to send them.
package bot
