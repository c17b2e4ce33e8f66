// Package session tracks which user is playing which game.
//
// The session package implements:
//   - At most one active session per user
//   - Idle expiry, applied lazily on every touch and by a periodic sweep
//   - Linearizable per-user access to the game state through Do
//   - Diagnostics (active count, per-kind breakdown, average age)
//
// Core Types:
//
// Store owns the table of sessions keyed by user ID. Session binds a user to
// a game Kind and an opaque State created by the StateFactory given to the
// store; the store never looks inside State.
//
// Concurrency:
//
// The table is guarded by a single mutex held only for map and timestamp
// bookkeeping. Each session additionally carries its own mutex, held by Do
// for the duration of a game mutation, so different users never wait on each
// other's moves. The sweep and lazy expiry only remove a session whose mutex
// they can take without blocking: a session in the middle of Do is by
// definition active, and a Do that loses the race to a removal observes the
// session as closed and reports ErrSessionRaceLost without calling its
// callback.
//
// Usage:
//
//	store := session.NewStore(session.Config{
//		Timeout:  30 * time.Minute,
//		NewState: newGame,
//	})
//
//	if _, err := store.Create(userID, session.KindTicTacToe); err != nil {
//		return err
//	}
//
//	err := store.Do(userID, func(s *session.Session) bool {
//		game := s.State.(*tictactoe.Game)
//		game.Play(4, tictactoe.PlayerMark)
//		return game.IsOver()
//	})
//
// State is process-lifetime only; nothing is persisted.
package session
