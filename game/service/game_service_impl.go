package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/wricardo/mcp-training/chatgames/game/rps"
	"github.com/wricardo/mcp-training/chatgames/game/session"
	"github.com/wricardo/mcp-training/chatgames/game/tictactoe"
)

// GameOptions configures the game state built for new sessions.
type GameOptions struct {
	// RPSTargetScore ends a rock-paper-scissors match. Defaults to rps.DefaultTargetScore.
	RPSTargetScore int
	// CenterBias is the tic-tac-toe opening preference for the center cell.
	// Zero uses tictactoe.DefaultCenterBias.
	CenterBias float64
	// NewRand returns the random source for one session. Defaults to a
	// randomly seeded PCG generator.
	NewRand func() *rand.Rand
}

// NewStateFactory returns the session.StateFactory that builds games with opts.
func NewStateFactory(opts GameOptions) session.StateFactory {
	if opts.RPSTargetScore <= 0 {
		opts.RPSTargetScore = rps.DefaultTargetScore
	}
	if opts.CenterBias <= 0 {
		opts.CenterBias = tictactoe.DefaultCenterBias
	}
	if opts.NewRand == nil {
		opts.NewRand = func() *rand.Rand {
			return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
		}
	}

	return func(kind session.Kind) (any, error) {
		switch kind {
		case session.KindTicTacToe:
			return tictactoe.NewGame(opts.NewRand(), opts.CenterBias), nil
		case session.KindRockPaperScissors:
			return rps.NewMatch(opts.RPSTargetScore, opts.NewRand()), nil
		default:
			return nil, fmt.Errorf("%w: %v", session.ErrUnknownKind, kind)
		}
	}
}

// gameServiceImpl implements the GameService interface
type gameServiceImpl struct {
	store  *session.Store
	logger *zap.Logger
}

// NewGameService creates a new game service instance
func NewGameService(store *session.Store, logger *zap.Logger) GameService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &gameServiceImpl{
		store:  store,
		logger: logger,
	}
}

// StartGame creates a new session, ending any game the user already had
func (s *gameServiceImpl) StartGame(ctx context.Context, userID string, kind session.Kind) (*StartResult, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: empty user ID", ErrInvalidInput)
	}

	info, err := s.store.Create(userID, kind)
	if err != nil {
		return nil, fmt.Errorf("failed to start %s: %w", kind, err)
	}

	result := &StartResult{Session: info}
	err = s.store.Do(userID, func(sess *session.Session) bool {
		switch state := sess.State.(type) {
		case *tictactoe.Game:
			board := state.Board
			result.Board = &board
		case *rps.Match:
			result.TargetScore = state.TargetScore
		}
		return false
	})
	if err != nil {
		return nil, normalizeSessionErr(err)
	}

	s.logger.Info("game started",
		zap.String("user_id", userID),
		zap.Stringer("kind", kind),
		zap.String("session_id", info.ID))
	return result, nil
}

// Quit ends the user's session and reports which game it was
func (s *gameServiceImpl) Quit(ctx context.Context, userID string) (*QuitResult, error) {
	var kind session.Kind
	err := s.store.Do(userID, func(sess *session.Session) bool {
		kind = sess.Kind
		return true
	})
	if err != nil {
		return nil, normalizeSessionErr(err)
	}

	s.logger.Info("game quit", zap.String("user_id", userID), zap.Stringer("kind", kind))
	return &QuitResult{Kind: kind}, nil
}

// ActiveSession returns the user's session, refreshing its activity time
func (s *gameServiceImpl) ActiveSession(ctx context.Context, userID string) (*session.Info, error) {
	info, err := s.store.Get(userID)
	if err != nil {
		return nil, err
	}
	return &info, nil
}

// Play applies input to whichever game the user is playing
func (s *gameServiceImpl) Play(ctx context.Context, userID, input string) (*PlayResult, error) {
	var result *PlayResult
	var playErr error
	err := s.store.Do(userID, func(sess *session.Session) bool {
		result = &PlayResult{Kind: sess.Kind}
		switch state := sess.State.(type) {
		case *tictactoe.Game:
			result.TicTacToe, playErr = s.playTicTacToe(userID, state, input)
		case *rps.Match:
			result.RPS, playErr = s.playRPS(userID, state, input)
		default:
			playErr = fmt.Errorf("%w: unexpected state %T", session.ErrUnknownKind, sess.State)
		}
		return playErr == nil && result.GameOver()
	})
	if err != nil {
		return nil, normalizeSessionErr(err)
	}
	// result carries the session kind even when the input was rejected.
	return result, playErr
}

// PlayTicTacToe applies a cell number (1-9) and the bot's reply
func (s *gameServiceImpl) PlayTicTacToe(ctx context.Context, userID, input string) (*TicTacToeResult, error) {
	var result *TicTacToeResult
	var playErr error
	err := s.store.Do(userID, func(sess *session.Session) bool {
		game, ok := sess.State.(*tictactoe.Game)
		if !ok {
			playErr = fmt.Errorf("%w: playing %s", ErrWrongGame, sess.Kind)
			return false
		}
		result, playErr = s.playTicTacToe(userID, game, input)
		return playErr == nil && result.GameOver
	})
	if err != nil {
		return nil, normalizeSessionErr(err)
	}
	return result, playErr
}

// PlayRPS resolves one rock-paper-scissors round
func (s *gameServiceImpl) PlayRPS(ctx context.Context, userID, input string) (*RPSResult, error) {
	var result *RPSResult
	var playErr error
	err := s.store.Do(userID, func(sess *session.Session) bool {
		match, ok := sess.State.(*rps.Match)
		if !ok {
			playErr = fmt.Errorf("%w: playing %s", ErrWrongGame, sess.Kind)
			return false
		}
		result, playErr = s.playRPS(userID, match, input)
		return playErr == nil && result.MatchOver
	})
	if err != nil {
		return nil, normalizeSessionErr(err)
	}
	return result, playErr
}

// ListSessions returns all active sessions
func (s *gameServiceImpl) ListSessions(ctx context.Context) ([]session.Info, error) {
	return s.store.List(), nil
}

// Stats returns the active-session count and per-kind breakdown
func (s *gameServiceImpl) Stats(ctx context.Context) (*StatsResult, error) {
	stats := s.store.Stats()
	result := &StatsResult{
		ActiveSessions:    stats.Total,
		ByKind:            make(map[string]int, len(session.Kinds)),
		AverageAgeSeconds: stats.AverageDuration.Seconds(),
	}
	for _, kind := range session.Kinds {
		result.ByKind[kind.String()] = stats.ByKind[kind]
	}
	return result, nil
}

// playTicTacToe runs while the session lock is held.
func (s *gameServiceImpl) playTicTacToe(userID string, game *tictactoe.Game, input string) (*TicTacToeResult, error) {
	cell, err := parseCell(input)
	if err != nil {
		return nil, err
	}
	if game.IsOver() {
		return nil, fmt.Errorf("%w: game is already over", ErrInvalidInput)
	}
	if !game.Play(cell-1, tictactoe.PlayerMark) {
		return nil, fmt.Errorf("%w: cell %d", ErrCellOccupied, cell)
	}

	result := &TicTacToeResult{Cell: cell}
	if !game.IsOver() {
		move := game.BestMove()
		if move >= 0 && game.Play(move, tictactoe.BotMark) {
			result.BotCell = move + 1
		}
	}

	result.Board = game.Board
	switch {
	case game.Winner() == tictactoe.PlayerMark:
		result.Outcome = OutcomePlayerWon
	case game.Winner() == tictactoe.BotMark:
		result.Outcome = OutcomeBotWon
	case game.IsDraw():
		result.Outcome = OutcomeDraw
	default:
		result.Outcome = OutcomeInProgress
	}
	result.GameOver = result.Outcome != OutcomeInProgress

	s.logger.Debug("tictactoe move",
		zap.String("user_id", userID),
		zap.Int("cell", cell),
		zap.Int("bot_cell", result.BotCell),
		zap.String("outcome", string(result.Outcome)))
	return result, nil
}

// playRPS runs while the session lock is held.
func (s *gameServiceImpl) playRPS(userID string, match *rps.Match, input string) (*RPSResult, error) {
	throw, err := rps.ParseThrow(firstToken(input))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	if match.IsMatchOver() {
		return nil, fmt.Errorf("%w: match is already over", ErrInvalidInput)
	}

	round, err := match.ResolveRound(throw)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	result := &RPSResult{
		RoundResult: *round,
		TargetScore: match.TargetScore,
		Stats:       match.Stats(),
	}
	if round.MatchOver {
		final := match.FinalOutcome()
		result.FinalOutcome = &final
	}

	s.logger.Debug("rps round",
		zap.String("user_id", userID),
		zap.Stringer("player", round.Player),
		zap.Stringer("bot", round.Bot),
		zap.Stringer("outcome", round.Outcome),
		zap.Int("player_score", round.PlayerScore),
		zap.Int("bot_score", round.BotScore))
	return result, nil
}

// parseCell accepts a 1-based cell number as the first token of input.
func parseCell(input string) (int, error) {
	token := firstToken(input)
	cell, err := strconv.Atoi(token)
	if err != nil || cell < 1 || cell > tictactoe.Cells {
		return 0, fmt.Errorf("%w: %q is not a cell from 1 to %d", ErrInvalidInput, token, tictactoe.Cells)
	}
	return cell, nil
}

func firstToken(input string) string {
	fields := strings.Fields(input)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// normalizeSessionErr folds a session lost to a concurrent removal into
// ErrNoActiveSession.
func normalizeSessionErr(err error) error {
	if errors.Is(err, session.ErrSessionRaceLost) {
		return session.ErrNoActiveSession
	}
	return err
}
