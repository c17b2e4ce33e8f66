package bot

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"

	"go.uber.org/zap"

	"github.com/wricardo/mcp-training/chatgames/game/service"
	"github.com/wricardo/mcp-training/chatgames/game/session"
	"github.com/wricardo/mcp-training/chatgames/game/tictactoe"
)

// Route is how the dispatcher classified an inbound message.
type Route int

const (
	RouteCommand Route = iota + 1
	RouteGameInput
	RouteNoSession
	RouteUnknownCommand
)

func (r Route) String() string {
	switch r {
	case RouteCommand:
		return "command"
	case RouteGameInput:
		return "game_input"
	case RouteNoSession:
		return "no_session"
	case RouteUnknownCommand:
		return "unknown_command"
	default:
		return "unknown"
	}
}

func (r Route) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

func (r *Route) UnmarshalText(b []byte) error {
	for _, candidate := range []Route{RouteCommand, RouteGameInput, RouteNoSession, RouteUnknownCommand} {
		if candidate.String() == string(b) {
			*r = candidate
			return nil
		}
	}
	return fmt.Errorf("unknown route %q", b)
}

// Reply is one outbound text for one user.
type Reply struct {
	UserID string `json:"user_id"`
	Text   string `json:"text"`
}

// Result is the outcome of processing one inbound message.
type Result struct {
	Route   Route   `json:"route"`
	Replies []Reply `json:"replies"`
}

// Dispatcher routes chat text to commands or the user's active game.
type Dispatcher struct {
	games  service.GameService
	logger *zap.Logger
}

// NewDispatcher creates a dispatcher over games.
func NewDispatcher(games service.GameService, logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{games: games, logger: logger}
}

// OnText processes one inbound message. text is expected to be trimmed and
// decoded. Messages of one user must be delivered sequentially.
func (d *Dispatcher) OnText(ctx context.Context, userID, displayName, text string) Result {
	cmd := ParseCommand(text)
	d.logger.Debug("inbound message",
		zap.String("user_id", userID),
		zap.String("display_name", displayName),
		zap.Stringer("command", cmd))

	switch cmd {
	case CommandTicTacToe:
		return d.startGame(ctx, userID, displayName, session.KindTicTacToe)
	case CommandRPS:
		return d.startGame(ctx, userID, displayName, session.KindRockPaperScissors)
	case CommandHelp:
		return d.reply(RouteCommand, userID, helpText)
	case CommandStart:
		return d.reply(RouteCommand, userID, renderStart(displayName))
	case CommandMenu:
		return d.reply(RouteCommand, userID, menuText)
	case CommandUnknown:
		return d.reply(RouteUnknownCommand, userID, renderUnknownCommand(firstWord(text)))
	case CommandQuit:
		result, err := d.games.Quit(ctx, userID)
		if err == nil {
			return d.reply(RouteCommand, userID, renderQuit(result.Kind))
		}
		if !errors.Is(err, session.ErrNoActiveSession) {
			return d.internalError(RouteCommand, userID, err)
		}
		// Without a game, "quit" is ordinary text.
		return d.noSession(userID, displayName)
	}

	return d.gameInput(ctx, userID, displayName, text)
}

func (d *Dispatcher) startGame(ctx context.Context, userID, displayName string, kind session.Kind) Result {
	result, err := d.games.StartGame(ctx, userID, kind)
	if err != nil {
		return d.internalError(RouteCommand, userID, err)
	}

	switch kind {
	case session.KindTicTacToe:
		var board tictactoe.Board
		if result.Board != nil {
			board = *result.Board
		}
		return d.reply(RouteCommand, userID, renderTicTacToeStart(displayName, board))
	default:
		return d.reply(RouteCommand, userID, renderRPSStart(displayName, result.TargetScore))
	}
}

func (d *Dispatcher) gameInput(ctx context.Context, userID, displayName, text string) Result {
	result, err := d.games.Play(ctx, userID, text)
	switch {
	case err == nil:
	case errors.Is(err, session.ErrNoActiveSession):
		return d.noSession(userID, displayName)
	case errors.Is(err, service.ErrCellOccupied):
		return d.reply(RouteGameInput, userID, occupiedCellText)
	case errors.Is(err, service.ErrInvalidInput):
		if result != nil && result.Kind == session.KindRockPaperScissors {
			return d.reply(RouteGameInput, userID, invalidThrowText)
		}
		return d.reply(RouteGameInput, userID, invalidCellText)
	default:
		return d.internalError(RouteGameInput, userID, err)
	}

	switch {
	case result.TicTacToe != nil:
		return d.reply(RouteGameInput, userID, renderTicTacToeMove(result.TicTacToe))
	case result.RPS != nil:
		return d.reply(RouteGameInput, userID, renderRPSRound(result.RPS))
	}
	return d.internalError(RouteGameInput, userID, errors.New("empty play result"))
}

// noSession greets a user who has no game running.
func (d *Dispatcher) noSession(userID, displayName string) Result {
	greeting := greetings[rand.IntN(len(greetings))]
	return d.reply(RouteNoSession, userID, fmt.Sprintf(greeting, nameOrDefault(displayName)))
}

func (d *Dispatcher) internalError(route Route, userID string, err error) Result {
	d.logger.Error("failed to process message", zap.String("user_id", userID), zap.Error(err))
	return d.reply(route, userID, internalErrorText)
}

func (d *Dispatcher) reply(route Route, userID, text string) Result {
	return Result{
		Route:   route,
		Replies: []Reply{{UserID: userID, Text: text}},
	}
}
