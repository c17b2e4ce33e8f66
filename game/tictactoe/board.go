package tictactoe

import (
	"fmt"
	"strings"
)

// Mark is the content of a single cell.
type Mark int

const (
	Empty Mark = iota
	PlayerMark
	BotMark
)

// Cells is the number of cells on the board.
const Cells = 9

// String returns the symbol used when rendering the board.
func (m Mark) String() string {
	switch m {
	case PlayerMark:
		return "X"
	case BotMark:
		return "O"
	default:
		return " "
	}
}

// Opponent returns the other player's mark. Empty has no opponent.
func (m Mark) Opponent() Mark {
	switch m {
	case PlayerMark:
		return BotMark
	case BotMark:
		return PlayerMark
	default:
		return Empty
	}
}

// Board holds the nine cells, index 0..8 row-major.
type Board [Cells]Mark

// lines are the three rows, three columns and two diagonals.
var lines = [8][3]int{
	{0, 1, 2}, {3, 4, 5}, {6, 7, 8},
	{0, 3, 6}, {1, 4, 7}, {2, 5, 8},
	{0, 4, 8}, {2, 4, 6},
}

// ApplyMove sets the cell at index to mark. It returns false without mutating
// the board when index is outside 0..8, the cell is not empty or mark is Empty.
func (b *Board) ApplyMove(index int, mark Mark) bool {
	if index < 0 || index >= Cells || mark == Empty {
		return false
	}
	if b[index] != Empty {
		return false
	}
	b[index] = mark
	return true
}

// Winner returns the mark occupying a complete line, or Empty.
func (b Board) Winner() Mark {
	for _, l := range lines {
		if m := b[l[0]]; m != Empty && m == b[l[1]] && m == b[l[2]] {
			return m
		}
	}
	return Empty
}

// IsFull reports whether no empty cell remains.
func (b Board) IsFull() bool {
	for _, m := range b {
		if m == Empty {
			return false
		}
	}
	return true
}

// IsDraw reports a full board with no winner.
func (b Board) IsDraw() bool {
	return b.IsFull() && b.Winner() == Empty
}

// IsTerminal reports whether the game on this board is over.
func (b Board) IsTerminal() bool {
	return b.Winner() != Empty || b.IsFull()
}

// AvailableMoves lists empty cell indices in ascending order.
func (b Board) AvailableMoves() []int {
	moves := make([]int, 0, Cells)
	for i, m := range b {
		if m == Empty {
			moves = append(moves, i)
		}
	}
	return moves
}

// Count returns how many cells hold mark.
func (b Board) Count(mark Mark) int {
	n := 0
	for _, m := range b {
		if m == mark {
			n++
		}
	}
	return n
}

// Swapped returns the board with player and bot marks exchanged.
func (b Board) Swapped() Board {
	var out Board
	for i, m := range b {
		out[i] = m.Opponent()
	}
	return out
}

// Render draws the board as three lines. Empty cells show their 1-based
// number so the player knows what to type.
func (b Board) Render() string {
	var sb strings.Builder
	for row := 0; row < 3; row++ {
		for col := 0; col < 3; col++ {
			i := row*3 + col
			if col > 0 {
				sb.WriteString(" | ")
			}
			if b[i] == Empty {
				sb.WriteByte(byte('1' + i))
			} else {
				sb.WriteString(b[i].String())
			}
		}
		if row < 2 {
			sb.WriteString("\n---------\n")
		}
	}
	return sb.String()
}

// MarshalText encodes the board as nine characters: X, O or '.'.
func (b Board) MarshalText() ([]byte, error) {
	out := make([]byte, Cells)
	for i, m := range b {
		switch m {
		case PlayerMark:
			out[i] = 'X'
		case BotMark:
			out[i] = 'O'
		default:
			out[i] = '.'
		}
	}
	return out, nil
}

// UnmarshalText is the inverse of MarshalText.
func (b *Board) UnmarshalText(text []byte) error {
	if len(text) != Cells {
		return fmt.Errorf("board must have %d cells, got %d", Cells, len(text))
	}
	var out Board
	for i, c := range text {
		switch c {
		case 'X':
			out[i] = PlayerMark
		case 'O':
			out[i] = BotMark
		case '.':
		default:
			return fmt.Errorf("invalid cell %q at %d", c, i)
		}
	}
	*b = out
	return nil
}
