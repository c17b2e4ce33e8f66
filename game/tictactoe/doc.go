// Package tictactoe implements the tic-tac-toe board and an unbeatable bot.
//
// The package provides:
//   - A value-type Board of nine cells in row-major order
//   - Move validation and application
//   - Terminal detection (win on any of the eight lines, draw on a full board)
//   - BestMove, an exhaustive minimax search that never loses
//
// Core Types:
//
// Board is a [9]Mark array. Because it is a value, the search recurses over
// copies and never touches the caller's live board. Game wraps a Board
// together with the random source used for opening-move variety.
//
// Usage:
//
//	g := tictactoe.NewGame(rand.New(rand.NewPCG(1, 2)), 0.7)
//	if !g.Play(4, tictactoe.PlayerMark) {
//		// cell occupied or out of range
//	}
//	if w := g.Board.Winner(); w == tictactoe.Empty && !g.Board.IsDraw() {
//		g.Play(g.BestMove(), tictactoe.BotMark)
//	}
//
// Scoring:
//
// A bot win scores 10-depth, a player win depth-10 and a draw 0, where depth
// is the number of plies below the candidate move. The bot therefore prefers
// faster wins and slower losses.
package tictactoe
