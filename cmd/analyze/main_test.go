package main

import (
	"bytes"
	"strings"
	"testing"
)

func TestAnalyzeTicTacToe(t *testing.T) {
	report := AnalyzeTicTacToe()

	if report.Games == 0 {
		t.Fatal("Expected at least one game")
	}
	if report.PlayerWins != 0 {
		t.Errorf("Expected the bot never to lose, got %d losing lines: %v", report.PlayerWins, report.LosingLines)
	}
	if report.BotWins+report.Draws != report.Games {
		t.Errorf("Expected outcomes to add up to %d, got %d", report.Games, report.BotWins+report.Draws)
	}
	if report.Draws == 0 {
		t.Error("Expected perfect play to reach some draws")
	}
}

func TestAnalyzeRPS(t *testing.T) {
	reports := AnalyzeRPS(50, 3, 7)

	if len(reports) != len(strategies) {
		t.Fatalf("Expected %d reports, got %d", len(strategies), len(reports))
	}
	for _, r := range reports {
		if r.Matches != 50 {
			t.Errorf("%s: expected 50 matches, got %d", r.Strategy, r.Matches)
		}
		if r.Rounds < 3*r.Matches {
			t.Errorf("%s: expected at least %d rounds, got %d", r.Strategy, 3*r.Matches, r.Rounds)
		}
		if r.BotMatches > r.Matches {
			t.Errorf("%s: bot won %d of %d matches", r.Strategy, r.BotMatches, r.Matches)
		}
	}
}

func TestAnalyzeRPSAlwaysRockLoses(t *testing.T) {
	reports := AnalyzeRPS(200, 3, 42)

	var rock StrategyReport
	for _, r := range reports {
		if r.Strategy == "always rock" {
			rock = r
		}
	}
	if rock.BotMatchRate() < 50 {
		t.Errorf("Expected the bot to beat a constant player most of the time, got %.1f%%", rock.BotMatchRate())
	}
}

func TestAnalyzeRPSDeterministic(t *testing.T) {
	a := AnalyzeRPS(20, 3, 9)
	b := AnalyzeRPS(20, 3, 9)

	for i := range a {
		if a[i] != b[i] {
			t.Errorf("Expected identical reports for the same seed, got %+v and %+v", a[i], b[i])
		}
	}
}

func TestBotMatchRate(t *testing.T) {
	if got := (StrategyReport{}).BotMatchRate(); got != 0 {
		t.Errorf("Expected 0 for no matches, got %f", got)
	}
	if got := (StrategyReport{Matches: 4, BotMatches: 1}).BotMatchRate(); got != 25 {
		t.Errorf("Expected 25, got %f", got)
	}
}

func TestPrintTicTacToe(t *testing.T) {
	var buf bytes.Buffer
	printTicTacToe(&buf, TicTacToeReport{Games: 3, Draws: 3})
	if !strings.Contains(buf.String(), "never loses") {
		t.Errorf("Expected success line, got %q", buf.String())
	}

	buf.Reset()
	printTicTacToe(&buf, TicTacToeReport{Games: 1, PlayerWins: 1, LosingLines: [][]int{{0, 1, 2}}})
	if !strings.Contains(buf.String(), "WARNING") || !strings.Contains(buf.String(), "[0 1 2]") {
		t.Errorf("Expected warning with the losing line, got %q", buf.String())
	}
}
