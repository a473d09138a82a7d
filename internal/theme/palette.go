package theme

import (
	"errors"
	"fmt"
	"image/color"
)

// BoardColor names one of the dark-square palettes.
type BoardColor string

const (
	Green  BoardColor = "green"
	Gray   BoardColor = "gray"
	Blue   BoardColor = "blue"
	Purple BoardColor = "purple"
	Sky    BoardColor = "sky"
)

// DefaultBoardColor is used for new sessions.
const DefaultBoardColor = Green

// ErrUnknownColor is returned for names outside the palette list.
var ErrUnknownColor = errors.New("unknown board color")

// LightSquare is shared by every palette.
var LightSquare = color.RGBA{R: 229, G: 231, B: 235, A: 255}

var palettes = map[BoardColor]color.RGBA{
	Green:  {R: 74, G: 222, B: 128, A: 255},
	Gray:   {R: 156, G: 163, B: 175, A: 255},
	Blue:   {R: 96, G: 165, B: 250, A: 255},
	Purple: {R: 192, G: 132, B: 252, A: 255},
	Sky:    {R: 56, G: 189, B: 248, A: 255},
}

// BoardColors returns the palette names in display order.
func BoardColors() []BoardColor {
	return []BoardColor{Green, Gray, Blue, Purple, Sky}
}

// ParseBoardColor validates a palette name.
func ParseBoardColor(s string) (BoardColor, error) {
	c := BoardColor(s)
	if _, ok := palettes[c]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownColor, s)
	}
	return c, nil
}

// RGBA returns the dark-square color, falling back to the default palette.
func (c BoardColor) RGBA() color.RGBA {
	if v, ok := palettes[c]; ok {
		return v
	}
	return palettes[DefaultBoardColor]
}

// CSS renders the dark-square color for the page.
func (c BoardColor) CSS() string { return CSS(c.RGBA()) }

// Label is the capitalised display name.
func (c BoardColor) Label() string {
	if c == "" {
		return ""
	}
	s := string(c)
	return string(s[0]-'a'+'A') + s[1:]
}

// CSS formats an opaque color the way the page expects it.
func CSS(c color.RGBA) string {
	return fmt.Sprintf("rgba(%d, %d, %d)", c.R, c.G, c.B)
}
