package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"pawnstorm/internal/game"
	"pawnstorm/internal/theme"
)

var glyphs = map[string]string{
	"K": "♔", "Q": "♕", "R": "♖", "B": "♗", "N": "♘", "P": "♙",
	"k": "♚", "q": "♛", "r": "♜", "b": "♝", "n": "♞", "p": "♟",
}

var darkBackgrounds = map[theme.BoardColor]color.Attribute{
	theme.Green:  color.BgGreen,
	theme.Gray:   color.BgHiBlack,
	theme.Blue:   color.BgBlue,
	theme.Purple: color.BgMagenta,
	theme.Sky:    color.BgCyan,
}

// WideBoardWidth is the layout width from which terminal cells double.
const WideBoardWidth = 480

// cellPad is the padding on each side of a terminal cell.
func cellPad(width int) string {
	if width >= WideBoardWidth {
		return "  "
	}
	return " "
}

// Terminal writes v's board, history and status as colored text.
func Terminal(w io.Writer, v game.View) error {
	board, err := pieces(v.FEN)
	if err != nil {
		return fmt.Errorf("render: %w", err)
	}
	pad := cellPad(v.Width)
	darkBg, ok := darkBackgrounds[v.BoardColor]
	if !ok {
		darkBg = color.BgGreen
	}

	var files strings.Builder
	files.WriteString("  ")
	for f := 0; f < 8; f++ {
		files.WriteString(pad + string(rune('a'+f)) + pad)
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, files.String())
	for rank := 7; rank >= 0; rank-- {
		fmt.Fprintf(w, "%d ", rank+1)
		for file := 0; file < 8; file++ {
			sq := square(file, rank)
			bg := color.BgWhite
			if (file+rank)%2 == 0 {
				bg = darkBg
			}
			mark := " "
			switch v.Highlights[sq] {
			case game.NormalMove:
				mark = "·"
			case game.CaptureMove:
				bg = color.BgRed
			}
			if sq == v.Selected {
				bg = color.BgYellow
			}
			if p, ok := board[sq]; ok {
				mark = glyphs[p]
			}
			color.New(bg, color.FgBlack).Fprint(w, pad+mark+pad)
		}
		fmt.Fprintf(w, " %d\n", rank+1)
	}
	fmt.Fprintln(w, files.String())
	fmt.Fprintln(w)

	if v.Selected != "" {
		fmt.Fprintf(w, "Selected: %s -> %s\n", v.Selected, strings.Join(v.HighlightedSquares(), " "))
	}
	fmt.Fprintf(w, "Moves: %s\n", MoveList(v.History))
	fmt.Fprintf(w, "Status: %s\n", Status(v))
	return nil
}

// MoveList numbers a SAN history the way PGN does.
func MoveList(history []string) string {
	var b strings.Builder
	for i, san := range history {
		if i%2 == 0 {
			if i > 0 {
				b.WriteByte(' ')
			}
			fmt.Fprintf(&b, "%d. ", i/2+1)
		} else {
			b.WriteByte(' ')
		}
		b.WriteString(san)
	}
	return b.String()
}

// Status is the one-line summary shown under the board.
func Status(v game.View) string {
	switch {
	case v.Outcome != nil && v.Outcome.Winner != "":
		return v.Outcome.Title + ", " + v.Outcome.Winner
	case v.Outcome != nil:
		return v.Outcome.Title + ", " + v.Outcome.Reason
	case v.Thinking:
		return "computer is thinking"
	case v.Turn == "white":
		return "your move"
	}
	return "computer to move"
}
