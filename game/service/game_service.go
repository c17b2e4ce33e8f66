package service

import (
	"context"
	"errors"

	"github.com/wricardo/mcp-training/chatgames/game/session"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrCellOccupied = errors.New("cell already occupied")
	ErrWrongGame    = errors.New("active session is a different game")
)

// GameService defines all game-related operations
type GameService interface {
	// Session Management
	StartGame(ctx context.Context, userID string, kind session.Kind) (*StartResult, error)
	Quit(ctx context.Context, userID string) (*QuitResult, error)
	ActiveSession(ctx context.Context, userID string) (*session.Info, error)

	// Game Operations
	Play(ctx context.Context, userID, input string) (*PlayResult, error)
	PlayTicTacToe(ctx context.Context, userID, input string) (*TicTacToeResult, error)
	PlayRPS(ctx context.Context, userID, input string) (*RPSResult, error)

	// Diagnostics
	ListSessions(ctx context.Context) ([]session.Info, error)
	Stats(ctx context.Context) (*StatsResult, error)
}
