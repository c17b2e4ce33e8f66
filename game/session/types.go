package session

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
)

var (
	ErrNoActiveSession = errors.New("no active session")
	ErrSessionRaceLost = errors.New("session ended concurrently")
	ErrUnknownKind     = errors.New("unknown game kind")
)

// Kind identifies the game a session is running.
type Kind int

const (
	KindTicTacToe Kind = iota + 1
	KindRockPaperScissors
)

// Kinds lists every game kind.
var Kinds = []Kind{KindTicTacToe, KindRockPaperScissors}

func (k Kind) String() string {
	switch k {
	case KindTicTacToe:
		return "tictactoe"
	case KindRockPaperScissors:
		return "rps"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// DisplayName is the human-readable game name.
func (k Kind) DisplayName() string {
	switch k {
	case KindTicTacToe:
		return "Tic-Tac-Toe"
	case KindRockPaperScissors:
		return "Rock-Paper-Scissors"
	default:
		return k.String()
	}
}

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	return k == KindTicTacToe || k == KindRockPaperScissors
}

// ParseKind accepts the names produced by String.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "tictactoe", "tic-tac-toe":
		return KindTicTacToe, nil
	case "rps", "rockpaperscissors", "rock-paper-scissors":
		return KindRockPaperScissors, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

func (k Kind) MarshalText() ([]byte, error) {
	if !k.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownKind, int(k))
	}
	return []byte(k.String()), nil
}

func (k *Kind) UnmarshalText(b []byte) error {
	v, err := ParseKind(string(b))
	if err != nil {
		return err
	}
	*k = v
	return nil
}

// StateFactory builds the initial game state for a new session.
type StateFactory func(kind Kind) (any, error)

// Session binds one user to one in-progress game.
//
// State may only be read or written from inside Store.Do.
type Session struct {
	ID        string
	UserID    string
	Kind      Kind
	State     any
	CreatedAt time.Time

	mu sync.Mutex

	// guarded by Store.mu
	lastActivity time.Time
	closed       bool
}

// Info is a copy of a session's metadata, safe to hand to other goroutines.
type Info struct {
	ID             string    `json:"id"`
	UserID         string    `json:"user_id"`
	Kind           Kind      `json:"kind"`
	CreatedAt      time.Time `json:"created_at"`
	LastActivityAt time.Time `json:"last_activity_at"`
}

// Stats is a diagnostic summary of the active sessions.
type Stats struct {
	Total           int           `json:"total"`
	ByKind          map[Kind]int  `json:"by_kind"`
	AverageDuration time.Duration `json:"average_duration"`
}
