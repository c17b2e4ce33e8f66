// Package service provides the game operations layer of the chat bot.
//
// The service package implements:
//   - Starting a game for a user, replacing any game already in progress
//   - Applying tic-tac-toe and rock-paper-scissors moves under the
//     per-user session lock
//   - Ending sessions on quit or when a game reaches a terminal state
//   - Session diagnostics for status reporting
//
// Architecture:
//
// The service sits between the bot dispatcher (and the HTTP/MCP transports)
// and the session store. The store only knows that a session holds some
// state; NewStateFactory teaches it how to build a tictactoe.Game or an
// rps.Match, and the service type-asserts that state inside Store.Do so a
// move is always applied against the board left by the previous move.
//
// Usage:
//
//	store := session.NewStore(session.Config{
//		NewState: service.NewStateFactory(service.GameOptions{}),
//	})
//	svc := service.NewGameService(store, logger)
//
//	if _, err := svc.StartGame(ctx, "alice", session.KindTicTacToe); err != nil {
//		log.Fatal(err)
//	}
//	result, err := svc.Play(ctx, "alice", "5")
//
// Errors:
//
// ErrInvalidInput and ErrCellOccupied leave the session untouched and are
// meant to be shown to the user as corrective prompts. session.ErrNoActiveSession
// means the text is not game input; a session lost to a concurrent expiry is
// reported the same way.
package service
