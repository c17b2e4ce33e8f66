package rps

import (
	"errors"
	"math"
	"math/rand/v2"
	"testing"
)

func newTestMatch(seed uint64) *Match {
	return NewMatch(DefaultTargetScore, rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)))
}

func TestNewMatch_Defaults(t *testing.T) {
	m := NewMatch(0, nil)
	if m.TargetScore != DefaultTargetScore {
		t.Errorf("Expected target %d, got %d", DefaultTargetScore, m.TargetScore)
	}
	if m.rng == nil {
		t.Error("Expected a random source to be created")
	}
	if m.IsMatchOver() {
		t.Error("New match must not be over")
	}
}

func TestMatch_ResolveRound_InvalidChoice(t *testing.T) {
	m := newTestMatch(1)
	_, err := m.ResolveRound(Throw(42))
	if !errors.Is(err, ErrInvalidChoice) {
		t.Fatalf("Expected ErrInvalidChoice, got %v", err)
	}
	if len(m.History) != 0 || m.PlayerScore != 0 || m.BotScore != 0 {
		t.Error("Invalid choice must not change the match")
	}
}

func TestMatch_ScoresConsistentWithHistory(t *testing.T) {
	m := NewMatch(1000, rand.New(rand.NewPCG(3, 5)))
	player := rand.New(rand.NewPCG(8, 13))

	prevPlayer, prevBot := 0, 0
	for i := 0; i < 500; i++ {
		res, err := m.ResolveRound(Throws[player.IntN(3)])
		if err != nil {
			t.Fatalf("Round %d: %v", i+1, err)
		}
		if res.Number != i+1 {
			t.Fatalf("Expected round number %d, got %d", i+1, res.Number)
		}
		if res.PlayerScore < prevPlayer || res.BotScore < prevBot {
			t.Fatal("Scores must be monotonically non-decreasing")
		}
		prevPlayer, prevBot = res.PlayerScore, res.BotScore
	}

	stats := m.Stats()
	if stats.PlayerWins != m.PlayerScore {
		t.Errorf("Replayed player wins %d != score %d", stats.PlayerWins, m.PlayerScore)
	}
	if stats.BotWins != m.BotScore {
		t.Errorf("Replayed bot wins %d != score %d", stats.BotWins, m.BotScore)
	}
	if m.PlayerScore+m.BotScore+stats.Ties != len(m.History) {
		t.Errorf("player %d + bot %d + ties %d != rounds %d",
			m.PlayerScore, m.BotScore, stats.Ties, len(m.History))
	}
}

func TestMatch_MatchOver(t *testing.T) {
	m := newTestMatch(21)
	rounds := 0
	for !m.IsMatchOver() {
		res, err := m.ResolveRound(Rock)
		if err != nil {
			t.Fatal(err)
		}
		rounds++
		if res.MatchOver != m.IsMatchOver() {
			t.Fatal("RoundResult.MatchOver disagrees with IsMatchOver")
		}
		if rounds > 1000 {
			t.Fatal("Match never ended")
		}
	}

	if m.PlayerScore != m.TargetScore && m.BotScore != m.TargetScore {
		t.Errorf("Expected one side to reach %d, got %d-%d", m.TargetScore, m.PlayerScore, m.BotScore)
	}
	want := BotWins
	if m.PlayerScore > m.BotScore {
		want = PlayerWins
	}
	if got := m.FinalOutcome(); got != want {
		t.Errorf("FinalOutcome() = %v, want %v", got, want)
	}
}

func TestMatch_FinalOutcomeTie(t *testing.T) {
	m := &Match{PlayerScore: 2, BotScore: 2, TargetScore: 3}
	if got := m.FinalOutcome(); got != Tie {
		t.Errorf("Expected Tie, got %v", got)
	}
}

func TestMatch_MostFrequentPlayerThrow(t *testing.T) {
	tests := []struct {
		name    string
		history []Throw
		want    Throw
	}{
		{"empty", nil, Rock},
		{"single", []Throw{Scissors}, Scissors},
		{"clear majority", []Throw{Paper, Rock, Paper}, Paper},
		{"tie goes to declaration order", []Throw{Scissors, Paper}, Paper},
		{"three way tie", []Throw{Scissors, Paper, Rock}, Rock},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newTestMatch(2)
			for _, th := range tt.history {
				m.History = append(m.History, Round{Player: th})
			}
			if got := m.MostFrequentPlayerThrow(); got != tt.want {
				t.Errorf("MostFrequentPlayerThrow() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMatch_ChooseBotThrow_Warmup(t *testing.T) {
	m := newTestMatch(4)
	m.History = []Round{{Player: Rock}, {Player: Rock}}

	counts := map[Throw]int{}
	const trials = 3000
	for i := 0; i < trials; i++ {
		counts[m.ChooseBotThrow()]++
	}
	for _, th := range Throws {
		share := float64(counts[th]) / trials
		if math.Abs(share-1.0/3) > 0.05 {
			t.Errorf("Warmup share for %v = %.3f, expected about 1/3", th, share)
		}
	}
}

func TestMatch_ChooseBotThrow_CountersFrequentThrow(t *testing.T) {
	m := newTestMatch(9)
	m.History = []Round{{Player: Rock}, {Player: Rock}, {Player: Rock}}

	const trials = 10000
	paper := 0
	for i := 0; i < trials; i++ {
		if m.ChooseBotThrow() == Paper {
			paper++
		}
	}

	// Countered 60% of the time, plus a third of the random remainder.
	want := CounterProbability + (1-CounterProbability)/3
	got := float64(paper) / trials
	if math.Abs(got-want) > 0.03 {
		t.Errorf("Paper share = %.3f, expected about %.3f", got, want)
	}
}
