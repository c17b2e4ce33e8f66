package service

import (
	"github.com/wricardo/mcp-training/chatgames/game/rps"
	"github.com/wricardo/mcp-training/chatgames/game/session"
	"github.com/wricardo/mcp-training/chatgames/game/tictactoe"
)

// StartResult describes a freshly started game
type StartResult struct {
	Session     session.Info     `json:"session"`
	Board       *tictactoe.Board `json:"board,omitempty"`
	TargetScore int              `json:"target_score,omitempty"`
}

// QuitResult names the game that was ended
type QuitResult struct {
	Kind session.Kind `json:"kind"`
}

// GameOutcome is the state of a tic-tac-toe game after a move
type GameOutcome string

const (
	OutcomeInProgress GameOutcome = "in_progress"
	OutcomePlayerWon  GameOutcome = "player_won"
	OutcomeBotWon     GameOutcome = "bot_won"
	OutcomeDraw       GameOutcome = "draw"
)

// TicTacToeResult contains the result of one player move and the bot reply.
// Cells are 1-based, BotCell is 0 when the bot did not move.
type TicTacToeResult struct {
	Cell     int             `json:"cell"`
	BotCell  int             `json:"bot_cell,omitempty"`
	Board    tictactoe.Board `json:"board"`
	Outcome  GameOutcome     `json:"outcome"`
	GameOver bool            `json:"game_over"`
}

// RPSResult contains one resolved round
type RPSResult struct {
	rps.RoundResult
	TargetScore  int          `json:"target_score"`
	FinalOutcome *rps.Outcome `json:"final_outcome,omitempty"`
	Stats        rps.Stats    `json:"stats"`
}

// PlayResult wraps the result of an in-session move for whichever game is active
type PlayResult struct {
	Kind      session.Kind     `json:"kind"`
	TicTacToe *TicTacToeResult `json:"tictactoe,omitempty"`
	RPS       *RPSResult       `json:"rps,omitempty"`
}

// GameOver reports whether the move ended the session
func (r *PlayResult) GameOver() bool {
	switch {
	case r.TicTacToe != nil:
		return r.TicTacToe.GameOver
	case r.RPS != nil:
		return r.RPS.MatchOver
	}
	return false
}

// StatsResult is the diagnostics snapshot exposed to status reporters
type StatsResult struct {
	ActiveSessions    int            `json:"active_sessions"`
	ByKind            map[string]int `json:"by_kind"`
	AverageAgeSeconds float64        `json:"average_age_seconds"`
}
