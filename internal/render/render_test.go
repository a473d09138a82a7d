package render

import (
	"bytes"
	"image/color"
	"image/png"
	"strings"
	"testing"

	fcolor "github.com/fatih/color"

	"pawnstorm/internal/game"
	"pawnstorm/internal/theme"
)

const startFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

func rgb(c color.Color) [3]uint32 {
	r, g, b, _ := c.RGBA()
	return [3]uint32{r >> 8, g >> 8, b >> 8}
}

func TestPNGUsesPaletteAndWidth(t *testing.T) {
	v := game.View{FEN: startFEN, Width: 500, BoardColor: theme.Blue}
	var buf bytes.Buffer
	if err := PNG(&buf, v); err != nil {
		t.Fatalf("png: %v", err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	size := img.Bounds().Dx()
	if size != 496 || img.Bounds().Dy() != 496 {
		t.Fatalf("unexpected size %v", img.Bounds())
	}
	// a1 is dark, h1 is light.
	if got, want := rgb(img.At(2, size-3)), rgb(theme.Blue.RGBA()); got != want {
		t.Fatalf("a1 corner: got %v want %v", got, want)
	}
	if got, want := rgb(img.At(size-3, size-3)), rgb(theme.LightSquare); got != want {
		t.Fatalf("h1 corner: got %v want %v", got, want)
	}
}

func TestPNGDrawsSelectionAndHighlights(t *testing.T) {
	plain := game.View{FEN: startFEN, Width: 496, BoardColor: theme.Green}
	marked := plain
	marked.Selected = "e2"
	marked.Highlights = map[string]game.Highlight{"e3": game.NormalMove, "e4": game.NormalMove}

	decode := func(v game.View) *bytes.Buffer {
		var buf bytes.Buffer
		if err := PNG(&buf, v); err != nil {
			t.Fatalf("png: %v", err)
		}
		return &buf
	}
	a, err := png.Decode(decode(plain))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	b, err := png.Decode(decode(marked))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	// e4 center: file 4, rank 3, 62px cells.
	if rgb(a.At(248+31, 248+31)) == rgb(b.At(248+31, 248+31)) {
		t.Fatalf("expected a move marker on e4")
	}
	// e2 border.
	if got, want := rgb(b.At(250, 372+31)), rgb(selectedColor); got != want {
		t.Fatalf("expected selection outline on e2, got %v", got)
	}
}

func TestPNGClampsWidth(t *testing.T) {
	for _, tc := range []struct{ in, want int }{{100, game.MinBoardWidth}, {5000, MaxImageWidth}, {500, 496}} {
		if got := imageWidth(tc.in); got != tc.want {
			t.Fatalf("imageWidth(%d) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestPNGRejectsBadFEN(t *testing.T) {
	if err := PNG(&bytes.Buffer{}, game.View{FEN: "not a fen", Width: 500}); err == nil {
		t.Fatalf("expected an error")
	}
}

func TestTerminalBoard(t *testing.T) {
	fcolor.NoColor = true
	v := game.View{
		FEN:        "rnbqkbnr/pppp1ppp/8/4p3/4P3/8/PPPP1PPP/RNBQKBNR w KQkq e6 0 2",
		Turn:       "white",
		Width:      500,
		BoardColor: theme.Purple,
		History:    []string{"e4", "e5"},
		Selected:   "g1",
		Highlights: map[string]game.Highlight{"f3": game.NormalMove, "h3": game.NormalMove},
	}
	var buf bytes.Buffer
	if err := Terminal(&buf, v); err != nil {
		t.Fatalf("terminal: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"♔", "♚", "·", "Selected: g1 -> f3 h3", "Moves: 1. e4 e5", "Status: your move", "a", "h"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
	if strings.Count(out, "♙") != 8 || strings.Count(out, "♟") != 8 {
		t.Fatalf("expected eight pawns each side:\n%s", out)
	}

	v.Selected, v.Highlights = "", nil
	buf.Reset()
	if err := Terminal(&buf, v); err != nil {
		t.Fatalf("terminal: %v", err)
	}
	if strings.Contains(buf.String(), "Selected:") {
		t.Fatalf("no selection line without a selection:\n%s", buf.String())
	}
}

func TestMoveList(t *testing.T) {
	cases := map[string][]string{
		"":                    nil,
		"1. e4":               {"e4"},
		"1. e4 e5 2. Nf3":     {"e4", "e5", "Nf3"},
		"1. f3 e5 2. g4 Qh4#": {"f3", "e5", "g4", "Qh4#"},
	}
	for want, hist := range cases {
		if got := MoveList(hist); got != want {
			t.Fatalf("MoveList(%v) = %q, want %q", hist, got, want)
		}
	}
}

func TestStatus(t *testing.T) {
	cases := []struct {
		v    game.View
		want string
	}{
		{game.View{Turn: "white"}, "your move"},
		{game.View{Turn: "black"}, "computer to move"},
		{game.View{Turn: "black", Thinking: true}, "computer is thinking"},
		{game.View{Outcome: &game.Outcome{Title: "Checkmate", Winner: "Computer Won"}}, "Checkmate, Computer Won"},
		{game.View{Outcome: &game.Outcome{Title: "Draw", Reason: "Draw by stalemate"}}, "Draw, Draw by stalemate"},
	}
	for _, tc := range cases {
		if got := Status(tc.v); got != tc.want {
			t.Fatalf("Status = %q, want %q", got, tc.want)
		}
	}
}
