package rps

import (
	"fmt"
	"math/rand/v2"
)

const (
	// DefaultTargetScore ends the match when either side reaches it.
	DefaultTargetScore = 3
	// WarmupRounds are played at random before the bot starts modelling.
	WarmupRounds = 3
	// CounterProbability is how often the bot counters the most frequent throw.
	CounterProbability = 0.6
)

// Round records one resolved round.
type Round struct {
	Number  int     `json:"number"`
	Player  Throw   `json:"player"`
	Bot     Throw   `json:"bot"`
	Outcome Outcome `json:"outcome"`
}

// RoundResult is returned from ResolveRound.
type RoundResult struct {
	Round
	PlayerScore int  `json:"player_score"`
	BotScore    int  `json:"bot_score"`
	MatchOver   bool `json:"match_over"`
}

// Stats summarizes a match.
type Stats struct {
	TotalRounds   int     `json:"total_rounds"`
	PlayerWins    int     `json:"player_wins"`
	BotWins       int     `json:"bot_wins"`
	Ties          int     `json:"ties"`
	PlayerWinRate float64 `json:"player_win_rate"`
	BotWinRate    float64 `json:"bot_win_rate"`
}

// Match is a first-to-target rock-paper-scissors game.
type Match struct {
	PlayerScore int     `json:"player_score"`
	BotScore    int     `json:"bot_score"`
	History     []Round `json:"history"`
	TargetScore int     `json:"target_score"`
	rng         *rand.Rand
}

// NewMatch creates a match. A non-positive target uses DefaultTargetScore;
// a nil rng is replaced with a randomly seeded one.
func NewMatch(targetScore int, rng *rand.Rand) *Match {
	if targetScore <= 0 {
		targetScore = DefaultTargetScore
	}
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Match{TargetScore: targetScore, rng: rng}
}

// ResolveRound plays one round against the bot.
func (m *Match) ResolveRound(player Throw) (*RoundResult, error) {
	if !player.Valid() {
		return nil, fmt.Errorf("%w: %v", ErrInvalidChoice, player)
	}

	bot := m.ChooseBotThrow()
	outcome := Decide(player, bot)
	switch outcome {
	case PlayerWins:
		m.PlayerScore++
	case BotWins:
		m.BotScore++
	}

	round := Round{
		Number:  len(m.History) + 1,
		Player:  player,
		Bot:     bot,
		Outcome: outcome,
	}
	m.History = append(m.History, round)

	return &RoundResult{
		Round:       round,
		PlayerScore: m.PlayerScore,
		BotScore:    m.BotScore,
		MatchOver:   m.IsMatchOver(),
	}, nil
}

// ChooseBotThrow picks the bot's next throw from the current history.
func (m *Match) ChooseBotThrow() Throw {
	if len(m.History) < WarmupRounds {
		return m.randomThrow()
	}
	if m.rng.Float64() < CounterProbability {
		return Counter(m.MostFrequentPlayerThrow())
	}
	return m.randomThrow()
}

// MostFrequentPlayerThrow returns the player's most used throw. Ties go to
// the throw declared first (rock, then paper, then scissors). An empty
// history yields Rock.
func (m *Match) MostFrequentPlayerThrow() Throw {
	var counts [len(Throws) + 1]int
	for _, r := range m.History {
		counts[r.Player]++
	}
	best := Throws[0]
	for _, t := range Throws[1:] {
		if counts[t] > counts[best] {
			best = t
		}
	}
	return best
}

// IsMatchOver reports whether either side reached the target score.
func (m *Match) IsMatchOver() bool {
	return m.PlayerScore >= m.TargetScore || m.BotScore >= m.TargetScore
}

// FinalOutcome compares the scores. It is meaningful once IsMatchOver.
func (m *Match) FinalOutcome() Outcome {
	switch {
	case m.PlayerScore > m.BotScore:
		return PlayerWins
	case m.BotScore > m.PlayerScore:
		return BotWins
	default:
		return Tie
	}
}

// Stats derives round statistics from the history.
func (m *Match) Stats() Stats {
	s := Stats{TotalRounds: len(m.History)}
	for _, r := range m.History {
		switch r.Outcome {
		case PlayerWins:
			s.PlayerWins++
		case BotWins:
			s.BotWins++
		default:
			s.Ties++
		}
	}
	if s.TotalRounds > 0 {
		s.PlayerWinRate = float64(s.PlayerWins) / float64(s.TotalRounds) * 100
		s.BotWinRate = float64(s.BotWins) / float64(s.TotalRounds) * 100
	}
	return s
}

func (m *Match) randomThrow() Throw {
	return Throws[m.rng.IntN(len(Throws))]
}
