// Command analyze prints quick, human-readable checks of the game bots. It
// plays the tic-tac-toe bot against every possible sequence of player moves
// and reports any line the player can win, then runs the rock-paper-scissors
// bot against a handful of scripted player strategies and summarizes the
// results.
package main

import (
	"context"
	"fmt"
	"io"
	"math/rand/v2"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/wricardo/mcp-training/chatgames/game/rps"
	"github.com/wricardo/mcp-training/chatgames/game/tictactoe"
)

// TicTacToeReport summarizes an exhaustive tic-tac-toe run.
type TicTacToeReport struct {
	Games      int
	PlayerWins int
	BotWins    int
	Draws      int
	// LosingLines holds the player cell sequences (0-based) that beat the bot.
	LosingLines [][]int
}

// StrategyReport summarizes scripted rock-paper-scissors matches.
type StrategyReport struct {
	Strategy   string
	Matches    int
	BotMatches int
	Rounds     int
	BotRounds  int
}

// BotMatchRate is the share of matches won by the bot, in percent.
func (r StrategyReport) BotMatchRate() float64 {
	if r.Matches == 0 {
		return 0
	}
	return float64(r.BotMatches) / float64(r.Matches) * 100
}

// strategy picks the player's next throw given the rounds played so far.
type strategy func(history []rps.Round, rng *rand.Rand) rps.Throw

var strategies = []struct {
	name string
	next strategy
}{
	{"always rock", func([]rps.Round, *rand.Rand) rps.Throw { return rps.Rock }},
	{"cycle", func(h []rps.Round, _ *rand.Rand) rps.Throw { return rps.Throws[len(h)%len(rps.Throws)] }},
	{"copy bot", func(h []rps.Round, _ *rand.Rand) rps.Throw {
		if len(h) == 0 {
			return rps.Paper
		}
		return h[len(h)-1].Bot
	}},
	{"random", func(_ []rps.Round, rng *rand.Rand) rps.Throw { return rps.Throws[rng.IntN(len(rps.Throws))] }},
}

func main() {
	cmd := &cli.Command{
		Name:  "analyze",
		Usage: "check the tic-tac-toe and rock-paper-scissors bots",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "matches", Value: 1000, Usage: "rock-paper-scissors matches per strategy"},
			&cli.IntFlag{Name: "target", Value: rps.DefaultTargetScore, Usage: "rock-paper-scissors target score"},
			&cli.Uint64Flag{Name: "seed", Value: 1, Usage: "random seed"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			printTicTacToe(os.Stdout, AnalyzeTicTacToe())
			for _, r := range AnalyzeRPS(int(cmd.Int("matches")), int(cmd.Int("target")), cmd.Uint64("seed")) {
				printStrategy(os.Stdout, r)
			}
			return nil
		},
	}
	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// AnalyzeTicTacToe plays the bot against every player move sequence.
func AnalyzeTicTacToe() TicTacToeReport {
	var report TicTacToeReport
	var walk func(board tictactoe.Board, line []int)
	walk = func(board tictactoe.Board, line []int) {
		for _, cell := range board.AvailableMoves() {
			next := board
			next.ApplyMove(cell, tictactoe.PlayerMark)
			played := append(append([]int(nil), line...), cell)

			if !next.IsTerminal() {
				next.ApplyMove(tictactoe.BestMove(next, nil, tictactoe.DefaultCenterBias), tictactoe.BotMark)
			}
			if !next.IsTerminal() {
				walk(next, played)
				continue
			}

			report.Games++
			switch next.Winner() {
			case tictactoe.PlayerMark:
				report.PlayerWins++
				report.LosingLines = append(report.LosingLines, played)
			case tictactoe.BotMark:
				report.BotWins++
			default:
				report.Draws++
			}
		}
	}
	walk(tictactoe.Board{}, nil)
	return report
}

// AnalyzeRPS runs matches of each scripted strategy against the bot.
func AnalyzeRPS(matches, target int, seed uint64) []StrategyReport {
	reports := make([]StrategyReport, 0, len(strategies))
	for i, s := range strategies {
		rng := rand.New(rand.NewPCG(seed, uint64(i)))
		report := StrategyReport{Strategy: s.name, Matches: matches}
		for range matches {
			match := rps.NewMatch(target, rand.New(rand.NewPCG(rng.Uint64(), rng.Uint64())))
			for !match.IsMatchOver() {
				if _, err := match.ResolveRound(s.next(match.History, rng)); err != nil {
					break
				}
			}
			stats := match.Stats()
			report.Rounds += stats.TotalRounds
			report.BotRounds += stats.BotWins
			if match.FinalOutcome() == rps.BotWins {
				report.BotMatches++
			}
		}
		reports = append(reports, report)
	}
	return reports
}

func printTicTacToe(w io.Writer, r TicTacToeReport) {
	fmt.Fprintf(w, "\n=== Tic-Tac-Toe ===\n")
	fmt.Fprintf(w, "Games: %d\n", r.Games)
	fmt.Fprintf(w, "Bot wins: %d, Draws: %d, Player wins: %d\n", r.BotWins, r.Draws, r.PlayerWins)

	if r.PlayerWins == 0 {
		fmt.Fprintf(w, "✅ The bot never loses\n")
		return
	}
	fmt.Fprintf(w, "⚠️  WARNING: %d lines beat the bot!\n", r.PlayerWins)
	for i, line := range r.LosingLines {
		if i >= 5 {
			fmt.Fprintf(w, "   ... and %d more\n", len(r.LosingLines)-5)
			break
		}
		fmt.Fprintf(w, "   Player cells: %v\n", line)
	}
}

func printStrategy(w io.Writer, r StrategyReport) {
	fmt.Fprintf(w, "\n=== Rock-Paper-Scissors: %s ===\n", r.Strategy)
	fmt.Fprintf(w, "Matches: %d, Bot won: %d (%.1f%%)\n", r.Matches, r.BotMatches, r.BotMatchRate())
	fmt.Fprintf(w, "Rounds: %d, Bot won: %d\n", r.Rounds, r.BotRounds)
}
