// Package rps implements a rock-paper-scissors match against an adaptive bot.
//
// For the first rounds the bot throws uniformly at random. Once enough
// history exists it looks up the player's most frequent throw and counters
// it with a fixed probability, falling back to a random throw otherwise.
package rps

import (
	"errors"
	"fmt"
	"strings"
)

var ErrInvalidChoice = errors.New("invalid choice")

// Throw is one of the three hands. Declaration order is also the tie-break
// order when counting the player's most frequent throw.
type Throw int

const (
	Rock Throw = iota + 1
	Paper
	Scissors
)

// Throws lists the valid throws in declaration order.
var Throws = [3]Throw{Rock, Paper, Scissors}

func (t Throw) String() string {
	switch t {
	case Rock:
		return "rock"
	case Paper:
		return "paper"
	case Scissors:
		return "scissors"
	default:
		return fmt.Sprintf("Throw(%d)", int(t))
	}
}

// Valid reports whether t is one of the three defined throws.
func (t Throw) Valid() bool {
	return t >= Rock && t <= Scissors
}

// Beats reports whether t wins against other.
func (t Throw) Beats(other Throw) bool {
	return t.Valid() && other.Valid() && Counter(other) == t
}

// Counter returns the throw that beats t.
func Counter(t Throw) Throw {
	switch t {
	case Rock:
		return Paper
	case Paper:
		return Scissors
	case Scissors:
		return Rock
	default:
		return 0
	}
}

var aliases = map[string]Throw{
	"rock":     Rock,
	"pierre":   Rock,
	"1":        Rock,
	"paper":    Paper,
	"feuille":  Paper,
	"2":        Paper,
	"scissors": Scissors,
	"ciseaux":  Scissors,
	"3":        Scissors,
}

// ParseThrow maps user text to a throw, case-insensitively.
func ParseThrow(s string) (Throw, error) {
	t, ok := aliases[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrInvalidChoice, s)
	}
	return t, nil
}

// Outcome is the winner of a round or a match.
type Outcome int

const (
	Tie Outcome = iota
	PlayerWins
	BotWins
)

func (o Outcome) String() string {
	switch o {
	case PlayerWins:
		return "player"
	case BotWins:
		return "bot"
	default:
		return "tie"
	}
}

// Decide applies the cyclic beats relation.
func Decide(player, bot Throw) Outcome {
	switch {
	case player == bot:
		return Tie
	case player.Beats(bot):
		return PlayerWins
	default:
		return BotWins
	}
}

// MarshalText encodes the throw by name.
func (t Throw) MarshalText() ([]byte, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidChoice, int(t))
	}
	return []byte(t.String()), nil
}

// UnmarshalText accepts any alias understood by ParseThrow.
func (t *Throw) UnmarshalText(b []byte) error {
	v, err := ParseThrow(string(b))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// MarshalText encodes the outcome by name.
func (o Outcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// UnmarshalText decodes "player", "bot" or "tie".
func (o *Outcome) UnmarshalText(b []byte) error {
	switch string(b) {
	case "player":
		*o = PlayerWins
	case "bot":
		*o = BotWins
	case "tie":
		*o = Tie
	default:
		return fmt.Errorf("unknown outcome %q", b)
	}
	return nil
}
