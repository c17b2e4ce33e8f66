package tictactoe

import "math/rand/v2"

// DefaultCenterBias is the probability of opening in the center when the
// bot moves on an empty board.
const DefaultCenterBias = 0.7

// Game is one tic-tac-toe match between a player and the bot.
type Game struct {
	Board      Board `json:"board"`
	Moves      int   `json:"moves"`
	rng        *rand.Rand
	centerBias float64
}

// NewGame creates a game with an empty board.
func NewGame(rng *rand.Rand, centerBias float64) *Game {
	return &Game{rng: rng, centerBias: centerBias}
}

// Play applies mark at index. See Board.ApplyMove.
func (g *Game) Play(index int, mark Mark) bool {
	if !g.Board.ApplyMove(index, mark) {
		return false
	}
	g.Moves++
	return true
}

// BestMove computes the bot's reply on the current board.
func (g *Game) BestMove() int {
	return BestMove(g.Board, g.rng, g.centerBias)
}

// Winner returns the winning mark, or Empty.
func (g *Game) Winner() Mark {
	return g.Board.Winner()
}

// IsDraw reports a full board without a winner.
func (g *Game) IsDraw() bool {
	return g.Board.IsDraw()
}

// IsOver reports whether the game reached a terminal state.
func (g *Game) IsOver() bool {
	return g.Board.IsTerminal()
}
