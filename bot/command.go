package bot

import "strings"

// Command is a recognized chat command.
type Command int

const (
	// CommandNone marks text that is not a command.
	CommandNone Command = iota
	CommandTicTacToe
	CommandRPS
	CommandQuit
	CommandHelp
	CommandStart
	CommandMenu
	// CommandUnknown is a slash-prefixed word that matches nothing.
	CommandUnknown
)

var commandNames = map[string]Command{
	"/tictactoe": CommandTicTacToe,
	"/rps":       CommandRPS,
	"quit":       CommandQuit,
	"/quit":      CommandQuit,
	"/help":      CommandHelp,
	"/start":     CommandStart,
	"/menu":      CommandMenu,
}

func (c Command) String() string {
	switch c {
	case CommandNone:
		return "none"
	case CommandTicTacToe:
		return "/tictactoe"
	case CommandRPS:
		return "/rps"
	case CommandQuit:
		return "quit"
	case CommandHelp:
		return "/help"
	case CommandStart:
		return "/start"
	case CommandMenu:
		return "/menu"
	default:
		return "unknown"
	}
}

// ParseCommand matches the first whitespace-delimited token of text,
// case-insensitively.
func ParseCommand(text string) Command {
	token := firstWord(text)
	if token == "" {
		return CommandNone
	}
	if cmd, ok := commandNames[strings.ToLower(token)]; ok {
		return cmd
	}
	if strings.HasPrefix(token, "/") {
		return CommandUnknown
	}
	return CommandNone
}

func firstWord(text string) string {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}
