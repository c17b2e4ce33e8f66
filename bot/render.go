package bot

import (
	"fmt"
	"strings"

	"github.com/wricardo/mcp-training/chatgames/game/rps"
	"github.com/wricardo/mcp-training/chatgames/game/service"
	"github.com/wricardo/mcp-training/chatgames/game/session"
	"github.com/wricardo/mcp-training/chatgames/game/tictactoe"
)

const (
	helpText = `🤖 *Game Bot - Help*

🎮 *Games:*
• /tictactoe - Play Tic-Tac-Toe
• /rps - Play Rock-Paper-Scissors

ℹ️ *General:*
• /help - Show this help
• /menu - Main menu
• /start - Welcome message

While a game is running, type your move or "quit" to stop.`

	menuText = `📋 *Main Menu*

1️⃣ *Games*
   • /tictactoe - Tic-Tac-Toe
   • /rps - Rock-Paper-Scissors

2️⃣ *Help*
   • /help - Full guide

What would you like to do? 😊`

	invalidCellText    = "❌ Please enter a number from 1 to 9."
	occupiedCellText   = "❌ That cell is already taken! Pick another one."
	invalidThrowText   = "❌ Invalid choice! Type: rock, paper, scissors (or 1, 2, 3)"
	internalErrorText  = "❌ Something went wrong in the game. Type \"quit\" to stop."
	rpsChoicesText     = "• rock/1 🗿 • paper/2 📄 • scissors/3 ✂️"
	displayNameDefault = "player"
)

var greetings = []string{
	"Hi %s! 👋 Type /help to see what I can do.",
	"Hello %s! 😊 Use /menu to see the available options.",
	"Hey %s! 🤖 Type /help to discover my games.",
}

func nameOrDefault(name string) string {
	if strings.TrimSpace(name) == "" {
		return displayNameDefault
	}
	return name
}

func renderStart(name string) string {
	return fmt.Sprintf(`🎉 *Welcome %s!*

I'm a game bot 🤖
• 🎮 Tic-Tac-Toe against an unbeatable opponent
• ✂️ Rock-Paper-Scissors against a bot that learns your habits

Type /help for every command or /menu for quick access.`, nameOrDefault(name))
}

func renderUnknownCommand(token string) string {
	return fmt.Sprintf("❌ Unknown command: %s\n\nType /help to see the available commands.", token)
}

func renderTicTacToeStart(name string, board tictactoe.Board) string {
	return fmt.Sprintf(`🎮 *Tic-Tac-Toe with %s*

%s

🎯 You are X, I am O
📝 Type a number from 1 to 9 to play
❌ Type "quit" to stop

Your turn! Pick a cell:`, nameOrDefault(name), board.Render())
}

func renderTicTacToeMove(r *service.TicTacToeResult) string {
	var b strings.Builder
	b.WriteString("🎮 *Tic-Tac-Toe*\n\n")
	b.WriteString(r.Board.Render())
	b.WriteString("\n\n")

	switch r.Outcome {
	case service.OutcomePlayerWon:
		b.WriteString("🎉 *You win!* Congratulations! 🏆")
	case service.OutcomeBotWon:
		b.WriteString("🤖 *I win!* Good game! 🎯")
	case service.OutcomeDraw:
		b.WriteString("🤝 *Draw!* Well played! ⚖️")
	default:
		if r.BotCell > 0 {
			fmt.Fprintf(&b, "🤖 I played %d.\n", r.BotCell)
		}
		b.WriteString("🎯 Your turn! Pick a cell (1-9):")
	}
	if r.GameOver {
		b.WriteString("\n\nType /tictactoe to play again!")
	}
	return b.String()
}

func renderRPSStart(name string, target int) string {
	return fmt.Sprintf(`🎮 *Rock-Paper-Scissors with %s*

🗿 Rock beats Scissors
📄 Paper beats Rock
✂️ Scissors beats Paper

*Make your move:*
• Type *rock* or *1*
• Type *paper* or *2*
• Type *scissors* or *3*
• Type *quit* to stop

First to %d wins. Score: You 0 - 0 Bot

Your move! 🎲`, nameOrDefault(name), target)
}

func throwEmoji(t rps.Throw) string {
	switch t {
	case rps.Rock:
		return "🗿"
	case rps.Paper:
		return "📄"
	case rps.Scissors:
		return "✂️"
	default:
		return "❓"
	}
}

func renderRPSRound(r *service.RPSResult) string {
	var b strings.Builder
	b.WriteString("🎮 *Rock-Paper-Scissors*\n\n")
	fmt.Fprintf(&b, "🧑 You: %s %s\n", throwEmoji(r.Player), r.Player)
	fmt.Fprintf(&b, "🤖 Bot: %s %s\n\n", throwEmoji(r.Bot), r.Bot)

	switch r.Outcome {
	case rps.PlayerWins:
		b.WriteString("🎉 *You win this round!*")
	case rps.BotWins:
		b.WriteString("🤖 *I win this round!*")
	default:
		b.WriteString("🤝 *This round is a tie!*")
	}
	fmt.Fprintf(&b, "\n\n📊 *Score:*\nYou: %d | Bot: %d", r.PlayerScore, r.BotScore)

	if !r.MatchOver {
		b.WriteString("\n\n🎲 Make your next move:\n")
		b.WriteString(rpsChoicesText)
		return b.String()
	}

	if r.FinalOutcome != nil && *r.FinalOutcome == rps.PlayerWins {
		b.WriteString("\n\n🏆 *YOU WIN THE MATCH!* Congratulations! 🎉")
	} else {
		b.WriteString("\n\n🤖 *I WIN THE MATCH!* Nice try! 🎯")
	}
	fmt.Fprintf(&b, "\n📈 %d rounds: %d won, %d lost, %d tied (%.0f%% win rate)",
		r.Stats.TotalRounds, r.Stats.PlayerWins, r.Stats.BotWins, r.Stats.Ties, r.Stats.PlayerWinRate)
	b.WriteString("\n\nType /rps to play again!")
	return b.String()
}

func renderQuit(kind session.Kind) string {
	return fmt.Sprintf("🔚 %s game over!\n\nType /menu to see the other options.", kind.DisplayName())
}
