package tictactoe

import (
	"math"
	"math/rand/v2"
)

// corners are the opening alternatives to the center.
var corners = [4]int{0, 2, 6, 8}

// BestMove returns the bot's move for board using exhaustive minimax.
//
// The board must have at least one empty cell and no winner; otherwise -1 is
// returned. On an empty board the search is skipped: rng picks the center
// with probability centerBias and a random corner otherwise. A nil rng always
// takes the center.
func BestMove(board Board, rng *rand.Rand, centerBias float64) int {
	moves := board.AvailableMoves()
	if len(moves) == 0 || board.Winner() != Empty {
		return -1
	}

	if len(moves) == Cells {
		if rng == nil || rng.Float64() < centerBias {
			return 4
		}
		return corners[rng.IntN(len(corners))]
	}

	bestScore := math.MinInt
	bestMove := moves[0]
	for _, move := range moves {
		next := board
		next[move] = BotMark
		score := minimax(next, 0, false)
		if score > bestScore {
			bestScore = score
			bestMove = move
		}
	}
	return bestMove
}

// minimax scores board from the bot's point of view. botToMove selects
// whether this ply maximizes (bot) or minimizes (player).
func minimax(board Board, depth int, botToMove bool) int {
	switch board.Winner() {
	case BotMark:
		return 10 - depth
	case PlayerMark:
		return depth - 10
	}
	if board.IsFull() {
		return 0
	}

	if botToMove {
		best := math.MinInt
		for i, m := range board {
			if m != Empty {
				continue
			}
			next := board
			next[i] = BotMark
			best = max(best, minimax(next, depth+1, false))
		}
		return best
	}

	best := math.MaxInt
	for i, m := range board {
		if m != Empty {
			continue
		}
		next := board
		next[i] = PlayerMark
		best = min(best, minimax(next, depth+1, true))
	}
	return best
}
