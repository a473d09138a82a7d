package game

import (
	"sync"
	"time"

	"pawnstorm/internal/rules"
	"pawnstorm/internal/theme"
)

// Sides. The human always plays white against the computer.
const (
	Human    = rules.White
	Computer = rules.Black
)

// DefaultReplyDelay lets the human see their move before the reply lands.
const DefaultReplyDelay = 450 * time.Millisecond

// Board width limits, in layout units.
const (
	DefaultBoardWidth = 500
	MinBoardWidth     = 220
)

// State is the controller state.
type State string

const (
	Idle          State = "idle"
	PieceSelected State = "piece-selected"
	GameOver      State = "game-over"
	Resigned      State = "resigned"
)

// Highlight is the style tag applied to a destination square.
type Highlight string

const (
	NormalMove  Highlight = "normal-move"
	CaptureMove Highlight = "capture-move"
)

// Dialogs tracks which modal is open.
type Dialogs struct {
	Settings bool `json:"settings"`
	Resign   bool `json:"resign"`
	GameOver bool `json:"gameOver"`
}

// Outcome is what the end-of-game dialog shows.
type Outcome struct {
	Title  string `json:"title"`
	Winner string `json:"winner,omitempty"`
	Reason string `json:"reason,omitempty"`
	Result string `json:"result"`
}

// View is a snapshot of everything the board page renders.
type View struct {
	FEN          string               `json:"fen"`
	Turn         string               `json:"turn"`
	State        State                `json:"state"`
	Selected     string               `json:"selected,omitempty"`
	Highlights   map[string]Highlight `json:"highlights"`
	History      []string             `json:"history"`
	Resigned     bool                 `json:"resigned"`
	Thinking     bool                 `json:"thinking"`
	Width        int                  `json:"width"`
	BoardColor   theme.BoardColor     `json:"boardColor"`
	PendingColor theme.BoardColor     `json:"pendingColor"`
	DarkSquare   string               `json:"darkSquare"`
	LightSquare  string               `json:"lightSquare"`
	Dialogs      Dialogs              `json:"dialogs"`
	Outcome      *Outcome             `json:"outcome,omitempty"`
	PGN          string               `json:"pgn"`
}

// EventKind classifies controller events.
type EventKind int

const (
	EventMove EventKind = iota
	EventEnd
	EventReset
	EventReply
)

// Event is delivered to the Observer after the controller releases its lock.
type Event struct {
	Kind     EventKind
	Ply      int
	SAN      string
	Side     string
	Computer bool
	FEN      string
	PGN      string
	Outcome  *Outcome
}

// Observer receives controller events.
type Observer interface {
	Observe(ev Event)
}

// Hub manages all active sessions
type Hub struct {
	Mu       sync.Mutex
	Sessions map[string]*Session
	opts     HubOptions
}

// Session is one browser game against the computer plus its watchers
type Session struct {
	Mu       sync.Mutex
	ID       string
	Name     string
	ctrl     *Controller
	Theme    *theme.Provider
	Watchers map[chan []byte]struct{}
	LastSeen time.Time
	recorder Recorder
}

// ClickRequest is a square click or drag-over.
type ClickRequest struct {
	Square string `json:"square"`
}

// DropRequest is a drag-and-drop.
type DropRequest struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// StepRequest drives the resign and settings dialogs.
type StepRequest struct {
	Step  string `json:"step"`
	Color string `json:"color"`
}

// ResizeRequest reports the board container width.
type ResizeRequest struct {
	Width int `json:"width"`
}

// SessionState is the state broadcast to watchers.
type SessionState struct {
	View
	Kind     string          `json:"kind"`
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Theme    theme.Mode      `json:"theme"`
	Palettes []PaletteOption `json:"palettes"`
	LastSeen int64           `json:"lastSeen"`
	Watchers int             `json:"watchers"`
}

// PaletteOption is one entry of the settings color picker.
type PaletteOption struct {
	Name  theme.BoardColor `json:"name"`
	Label string           `json:"label"`
	CSS   string           `json:"css"`
}
