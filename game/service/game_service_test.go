package service_test

import (
	"context"
	"errors"
	"math/rand/v2"
	"testing"

	"github.com/wricardo/mcp-training/chatgames/game/rps"
	"github.com/wricardo/mcp-training/chatgames/game/service"
	"github.com/wricardo/mcp-training/chatgames/game/session"
	"github.com/wricardo/mcp-training/chatgames/game/tictactoe"
)

func newTestService(t *testing.T) (service.GameService, *session.Store) {
	t.Helper()
	var seed uint64
	store := session.NewStore(session.Config{
		NewState: service.NewStateFactory(service.GameOptions{
			NewRand: func() *rand.Rand {
				seed++
				return rand.New(rand.NewPCG(seed, seed*31))
			},
		}),
	})
	return service.NewGameService(store, nil), store
}

func TestGameService_StartGame(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	t.Run("tictactoe", func(t *testing.T) {
		result, err := svc.StartGame(ctx, "alice", session.KindTicTacToe)
		if err != nil {
			t.Fatalf("Failed to start game: %v", err)
		}
		if result.Session.Kind != session.KindTicTacToe {
			t.Errorf("Expected tictactoe session, got %v", result.Session.Kind)
		}
		if result.Board == nil || *result.Board != (tictactoe.Board{}) {
			t.Errorf("Expected empty board, got %v", result.Board)
		}
	})

	t.Run("rps replaces tictactoe", func(t *testing.T) {
		result, err := svc.StartGame(ctx, "alice", session.KindRockPaperScissors)
		if err != nil {
			t.Fatalf("Failed to start game: %v", err)
		}
		if result.TargetScore != rps.DefaultTargetScore {
			t.Errorf("Expected target score %d, got %d", rps.DefaultTargetScore, result.TargetScore)
		}
		info, err := svc.ActiveSession(ctx, "alice")
		if err != nil {
			t.Fatalf("ActiveSession failed: %v", err)
		}
		if info.Kind != session.KindRockPaperScissors {
			t.Errorf("Expected rps session after restart, got %v", info.Kind)
		}
		sessions, _ := svc.ListSessions(ctx)
		if len(sessions) != 1 {
			t.Errorf("Expected one session per user, got %d", len(sessions))
		}
	})

	t.Run("empty user", func(t *testing.T) {
		if _, err := svc.StartGame(ctx, "", session.KindTicTacToe); !errors.Is(err, service.ErrInvalidInput) {
			t.Errorf("Expected ErrInvalidInput, got %v", err)
		}
	})

	t.Run("unknown kind", func(t *testing.T) {
		if _, err := svc.StartGame(ctx, "bob", session.Kind(42)); !errors.Is(err, session.ErrUnknownKind) {
			t.Errorf("Expected ErrUnknownKind, got %v", err)
		}
	})
}

func TestGameService_PlayTicTacToe_CenterOpening(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	svc.StartGame(ctx, "alice", session.KindTicTacToe)

	result, err := svc.PlayTicTacToe(ctx, "alice", "5")
	if err != nil {
		t.Fatalf("Move failed: %v", err)
	}
	if result.Board[4] != tictactoe.PlayerMark {
		t.Errorf("Expected player mark at center, got %v", result.Board[4])
	}
	if result.BotCell < 1 || result.BotCell > 9 || result.BotCell == 5 {
		t.Errorf("Expected bot to reply on a corner or edge, got %d", result.BotCell)
	}
	if result.Board[result.BotCell-1] != tictactoe.BotMark {
		t.Error("Bot cell should hold the bot mark")
	}
	if result.Outcome != service.OutcomeInProgress || result.GameOver {
		t.Errorf("Expected game in progress, got %s", result.Outcome)
	}
}

func TestGameService_PlayTicTacToe_InvalidInput(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService(t)
	svc.StartGame(ctx, "alice", session.KindTicTacToe)
	svc.PlayTicTacToe(ctx, "alice", "5")

	snapshot := func() tictactoe.Board {
		var b tictactoe.Board
		store.Do("alice", func(s *session.Session) bool {
			b = s.State.(*tictactoe.Game).Board
			return false
		})
		return b
	}
	before := snapshot()

	tests := []struct {
		input string
		want  error
	}{
		{"0", service.ErrInvalidInput},
		{"10", service.ErrInvalidInput},
		{"abc", service.ErrInvalidInput},
		{"", service.ErrInvalidInput},
		{"5", service.ErrCellOccupied},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			_, err := svc.PlayTicTacToe(ctx, "alice", tt.input)
			if !errors.Is(err, tt.want) {
				t.Errorf("Expected %v, got %v", tt.want, err)
			}
			if snapshot() != before {
				t.Error("Rejected input must not change the board")
			}
		})
	}

	if _, err := svc.ActiveSession(ctx, "alice"); err != nil {
		t.Errorf("Session should survive invalid input: %v", err)
	}
}

func TestGameService_PlayTicTacToe_PlayerWins(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService(t)
	svc.StartGame(ctx, "alice", session.KindTicTacToe)

	store.Do("alice", func(s *session.Session) bool {
		game := s.State.(*tictactoe.Game)
		game.Play(0, tictactoe.PlayerMark)
		game.Play(1, tictactoe.PlayerMark)
		game.Play(3, tictactoe.BotMark)
		game.Play(4, tictactoe.BotMark)
		return false
	})

	result, err := svc.Play(ctx, "alice", "3")
	if err != nil {
		t.Fatalf("Move failed: %v", err)
	}
	if result.Kind != session.KindTicTacToe || result.TicTacToe == nil {
		t.Fatalf("Expected tictactoe result, got %+v", result)
	}
	if result.TicTacToe.Outcome != service.OutcomePlayerWon {
		t.Errorf("Expected player win, got %s", result.TicTacToe.Outcome)
	}
	if result.TicTacToe.Board.Winner() != tictactoe.PlayerMark {
		t.Error("Board winner should be the player mark")
	}
	if result.TicTacToe.BotCell != 0 {
		t.Errorf("Bot must not move after a win, moved to %d", result.TicTacToe.BotCell)
	}

	if _, err := svc.Play(ctx, "alice", "9"); !errors.Is(err, session.ErrNoActiveSession) {
		t.Errorf("Expected session removed after win, got %v", err)
	}
}

func TestGameService_PlayTicTacToe_BotNeverLoses(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	rng := rand.New(rand.NewPCG(7, 11))

	for game := 0; game < 30; game++ {
		svc.StartGame(ctx, "alice", session.KindTicTacToe)
		var board tictactoe.Board
		for {
			moves := board.AvailableMoves()
			cell := moves[rng.IntN(len(moves))] + 1
			result, err := svc.PlayTicTacToe(ctx, "alice", string(rune('0'+cell)))
			if err != nil {
				t.Fatalf("Game %d: move %d failed: %v", game, cell, err)
			}
			board = result.Board
			if result.GameOver {
				if result.Outcome == service.OutcomePlayerWon {
					t.Fatalf("Game %d: bot lost:\n%s", game, board.Render())
				}
				break
			}
		}
	}
}

func TestGameService_PlayTicTacToe_MarksAlternate(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService(t)
	rng := rand.New(rand.NewPCG(3, 5))

	markDiff := func() (int, bool) {
		var diff int
		err := store.Do("alice", func(s *session.Session) bool {
			b := s.State.(*tictactoe.Game).Board
			diff = b.Count(tictactoe.PlayerMark) - b.Count(tictactoe.BotMark)
			return false
		})
		return diff, err == nil
	}

	for game := 0; game < 20; game++ {
		svc.StartGame(ctx, "alice", session.KindTicTacToe)
		for {
			// Any cell, occupied or not, so rejected moves are checked too.
			cell := rng.IntN(tictactoe.Cells) + 1
			result, err := svc.PlayTicTacToe(ctx, "alice", string(rune('0'+cell)))
			if err != nil && !errors.Is(err, service.ErrCellOccupied) {
				t.Fatalf("Game %d: move %d failed: %v", game, cell, err)
			}

			var diff int
			if result != nil && result.GameOver {
				diff = result.Board.Count(tictactoe.PlayerMark) - result.Board.Count(tictactoe.BotMark)
			} else {
				var ok bool
				if diff, ok = markDiff(); !ok {
					t.Fatalf("Game %d: session lost mid-game", game)
				}
			}
			if diff != 0 && diff != 1 {
				t.Fatalf("Game %d: player/bot mark difference %d after move %d", game, diff, cell)
			}
			if result != nil && result.GameOver {
				break
			}
		}
	}
}

func TestGameService_PlayRPS(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	svc.StartGame(ctx, "bob", session.KindRockPaperScissors)

	t.Run("invalid throw", func(t *testing.T) {
		_, err := svc.PlayRPS(ctx, "bob", "lizard")
		if !errors.Is(err, service.ErrInvalidInput) || !errors.Is(err, rps.ErrInvalidChoice) {
			t.Errorf("Expected invalid choice, got %v", err)
		}
	})

	t.Run("plays until match over", func(t *testing.T) {
		var last *service.RPSResult
		for i := 0; i < 100; i++ {
			result, err := svc.PlayRPS(ctx, "bob", "pierre")
			if err != nil {
				t.Fatalf("Round %d failed: %v", i+1, err)
			}
			if result.Player != rps.Rock {
				t.Errorf("Expected rock alias to parse, got %v", result.Player)
			}
			if result.Number != i+1 {
				t.Errorf("Expected round %d, got %d", i+1, result.Number)
			}
			last = result
			if result.MatchOver {
				break
			}
		}
		if last == nil || !last.MatchOver {
			t.Fatal("Expected match to end")
		}
		if last.FinalOutcome == nil {
			t.Fatal("Expected final outcome")
		}
		if last.PlayerScore < 3 && last.BotScore < 3 {
			t.Errorf("Match ended early: %d-%d", last.PlayerScore, last.BotScore)
		}
		total := last.Stats.PlayerWins + last.Stats.BotWins + last.Stats.Ties
		if total != last.Stats.TotalRounds {
			t.Errorf("Stats do not add up: %+v", last.Stats)
		}
		if _, err := svc.ActiveSession(ctx, "bob"); !errors.Is(err, session.ErrNoActiveSession) {
			t.Errorf("Expected session removed after match, got %v", err)
		}
	})
}

func TestGameService_WrongGame(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	svc.StartGame(ctx, "alice", session.KindTicTacToe)
	svc.StartGame(ctx, "bob", session.KindRockPaperScissors)

	if _, err := svc.PlayRPS(ctx, "alice", "rock"); !errors.Is(err, service.ErrWrongGame) {
		t.Errorf("Expected ErrWrongGame, got %v", err)
	}
	if _, err := svc.PlayTicTacToe(ctx, "bob", "1"); !errors.Is(err, service.ErrWrongGame) {
		t.Errorf("Expected ErrWrongGame, got %v", err)
	}
}

func TestGameService_Play_ReportsKindOnInvalidInput(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	svc.StartGame(ctx, "bob", session.KindRockPaperScissors)

	result, err := svc.Play(ctx, "bob", "banana")
	if !errors.Is(err, service.ErrInvalidInput) {
		t.Fatalf("Expected ErrInvalidInput, got %v", err)
	}
	if result == nil || result.Kind != session.KindRockPaperScissors {
		t.Errorf("Expected rps kind on rejected input, got %+v", result)
	}
}

func TestGameService_Quit(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	svc.StartGame(ctx, "alice", session.KindTicTacToe)

	result, err := svc.Quit(ctx, "alice")
	if err != nil {
		t.Fatalf("Quit failed: %v", err)
	}
	if result.Kind != session.KindTicTacToe {
		t.Errorf("Expected tictactoe, got %v", result.Kind)
	}
	if _, err := svc.Play(ctx, "alice", "5"); !errors.Is(err, session.ErrNoActiveSession) {
		t.Errorf("Expected no session after quit, got %v", err)
	}
	if _, err := svc.Quit(ctx, "alice"); !errors.Is(err, session.ErrNoActiveSession) {
		t.Errorf("Expected ErrNoActiveSession on second quit, got %v", err)
	}
}

func TestGameService_Stats(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	svc.StartGame(ctx, "alice", session.KindTicTacToe)
	svc.StartGame(ctx, "bob", session.KindRockPaperScissors)
	svc.StartGame(ctx, "carol", session.KindRockPaperScissors)

	stats, err := svc.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if stats.ActiveSessions != 3 {
		t.Errorf("Expected 3 sessions, got %d", stats.ActiveSessions)
	}
	if stats.ByKind["tictactoe"] != 1 || stats.ByKind["rps"] != 2 {
		t.Errorf("Unexpected breakdown: %v", stats.ByKind)
	}
}
