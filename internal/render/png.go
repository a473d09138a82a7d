// Package render draws a board view as a PNG image or as colored terminal
// text.
package render

import (
	"fmt"
	"image/color"
	"io"
	"strings"

	"github.com/fogleman/gg"
	"golang.org/x/image/font/basicfont"

	"pawnstorm/internal/game"
	"pawnstorm/internal/rules"
	"pawnstorm/internal/theme"
)

// MaxImageWidth caps PNG snapshots.
const MaxImageWidth = 1200

var (
	selectedColor = color.RGBA{R: 250, G: 204, B: 21, A: 255}
	markColor     = color.RGBA{R: 15, G: 23, B: 42, A: 90}
	whitePiece    = color.RGBA{R: 248, G: 250, B: 252, A: 255}
	blackPiece    = color.RGBA{R: 17, G: 24, B: 39, A: 255}
)

// square names a board square from zero-based file and rank.
func square(file, rank int) string {
	return fmt.Sprintf("%c%d", 'a'+file, rank+1)
}

// pieces maps occupied squares to their FEN letters.
func pieces(fen string) (map[string]string, error) {
	g, err := rules.FromFEN(fen)
	if err != nil {
		return nil, err
	}
	out := make(map[string]string, 32)
	for rank := 0; rank < 8; rank++ {
		for file := 0; file < 8; file++ {
			sq := square(file, rank)
			if p := g.PieceAt(sq); p != "" {
				out[sq] = p
			}
		}
	}
	return out, nil
}

func imageWidth(w int) int {
	switch {
	case w < game.MinBoardWidth:
		return game.MinBoardWidth
	case w > MaxImageWidth:
		return MaxImageWidth
	}
	return w - w%8
}

// PNG writes v's board as a PNG: the session palette, the selection and
// move highlights, and pieces drawn as lettered discs.
func PNG(w io.Writer, v game.View) error {
	board, err := pieces(v.FEN)
	if err != nil {
		return fmt.Errorf("render: %w", err)
	}
	size := imageWidth(v.Width)
	cell := float64(size) / 8

	dark := v.BoardColor.RGBA()
	dc := gg.NewContext(size, size)
	dc.SetFontFace(basicfont.Face7x13)

	for rank := 7; rank >= 0; rank-- {
		for file := 0; file < 8; file++ {
			sq := square(file, rank)
			x, y := float64(file)*cell, float64(7-rank)*cell

			if (file+rank)%2 == 0 {
				dc.SetColor(dark)
			} else {
				dc.SetColor(theme.LightSquare)
			}
			dc.DrawRectangle(x, y, cell, cell)
			dc.Fill()

			if sq == v.Selected {
				dc.SetColor(selectedColor)
				dc.SetLineWidth(4)
				dc.DrawRectangle(x+2, y+2, cell-4, cell-4)
				dc.Stroke()
			}

			cx, cy := x+cell/2, y+cell/2
			switch v.Highlights[sq] {
			case game.NormalMove:
				dc.SetColor(markColor)
				dc.DrawCircle(cx, cy, cell*0.13)
				dc.Fill()
			case game.CaptureMove:
				dc.SetColor(markColor)
				dc.SetLineWidth(cell * 0.08)
				dc.DrawCircle(cx, cy, cell*0.44)
				dc.Stroke()
			}

			p, ok := board[sq]
			if !ok {
				continue
			}
			fill, ink := blackPiece, whitePiece
			if p == strings.ToUpper(p) {
				fill, ink = whitePiece, blackPiece
			}
			dc.SetColor(ink)
			dc.DrawCircle(cx, cy, cell*0.32+1)
			dc.Fill()
			dc.SetColor(fill)
			dc.DrawCircle(cx, cy, cell*0.32)
			dc.Fill()
			dc.SetColor(ink)
			dc.DrawStringAnchored(strings.ToUpper(p), cx, cy, 0.5, 0.35)
		}
	}
	return dc.EncodePNG(w)
}
