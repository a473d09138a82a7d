package game

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"pawnstorm/internal/logging"
	"pawnstorm/internal/rules"
	"pawnstorm/internal/strategy"
	"pawnstorm/internal/theme"
)

// Options configures a Controller. Zero values pick the defaults.
type Options struct {
	Strategy   strategy.Strategy
	Scheduler  Scheduler
	ReplyDelay time.Duration
	// GuardStaleReply cancels a pending computer reply on reset. When false
	// a reply scheduled before a reset still lands once its delay expires.
	GuardStaleReply bool
	BoardWidth      int
	BoardColor      theme.BoardColor
	StartFEN        string
}

// Controller turns square clicks and drops into rule engine calls, keeps
// the selection and history, and sequences the human move / computer
// reply cycle. All methods are safe for concurrent use; events are
// serialized by one mutex.
type Controller struct {
	mu sync.Mutex

	engine   *rules.Game
	strategy strategy.Strategy
	sched    Scheduler
	delay    time.Duration
	guard    bool
	startFEN string

	selected   string
	highlights map[string]Highlight
	history    []string
	resigned   bool

	width        int
	color        theme.BoardColor
	pendingColor theme.BoardColor
	dialogs      Dialogs

	pending    Timer
	generation uint64

	observer Observer
	events   []Event
}

// NewController starts a game. An invalid StartFEN is an error.
func NewController(opts Options) (*Controller, error) {
	if opts.Strategy == nil {
		opts.Strategy = strategy.NewRandom(nil)
	}
	if opts.Scheduler == nil {
		opts.Scheduler = WallClock
	}
	if opts.ReplyDelay <= 0 {
		opts.ReplyDelay = DefaultReplyDelay
	}
	if opts.BoardWidth < MinBoardWidth {
		opts.BoardWidth = DefaultBoardWidth
	}
	if opts.BoardColor == "" {
		opts.BoardColor = theme.DefaultBoardColor
	}
	c := &Controller{
		strategy:     opts.Strategy,
		sched:        opts.Scheduler,
		delay:        opts.ReplyDelay,
		guard:        opts.GuardStaleReply,
		startFEN:     opts.StartFEN,
		highlights:   map[string]Highlight{},
		width:        opts.BoardWidth,
		color:        opts.BoardColor,
		pendingColor: opts.BoardColor,
	}
	eng, err := c.newEngine()
	if err != nil {
		return nil, err
	}
	c.engine = eng
	c.history = eng.History()
	c.mu.Lock()
	c.maybeComputerFirst()
	c.mu.Unlock()
	return c, nil
}

func (c *Controller) newEngine() (*rules.Game, error) {
	if c.startFEN == "" {
		return rules.NewGame(), nil
	}
	eng, err := rules.FromFEN(c.startFEN)
	if err != nil {
		return nil, fmt.Errorf("start position: %w", err)
	}
	return eng, nil
}

// SetObserver registers the event sink.
func (c *Controller) SetObserver(o Observer) {
	c.mu.Lock()
	c.observer = o
	c.mu.Unlock()
}

func (c *Controller) unlockAndFlush() {
	evs := c.events
	c.events = nil
	obs := c.observer
	c.mu.Unlock()
	if obs == nil {
		return
	}
	for _, ev := range evs {
		obs.Observe(ev)
	}
}

// Click resolves a square click.
func (c *Controller) Click(square string) {
	c.mu.Lock()
	defer c.unlockAndFlush()
	if !c.acceptsInput() {
		return
	}

	dests := c.destinations(square)
	if c.selected == "" {
		if len(dests) == 0 {
			c.clearSelection()
			return
		}
		c.selectSquare(square, dests)
		return
	}

	if square == c.selected {
		c.clearSelection()
		return
	}
	if _, ok := c.engine.Apply(c.selected, square, rules.PromoteQueen); !ok {
		if len(dests) > 0 {
			c.selectSquare(square, dests)
		} else {
			c.clearSelection()
		}
		return
	}
	c.afterHumanMove()
}

// DragOver clears the selection; dragging replaces click selection.
func (c *Controller) DragOver(string) {
	c.mu.Lock()
	defer c.unlockAndFlush()
	c.clearSelection()
}

// Drop applies a drag-and-drop move. An illegal drop changes nothing.
func (c *Controller) Drop(from, to string) bool {
	c.mu.Lock()
	defer c.unlockAndFlush()
	if !c.acceptsInput() {
		return false
	}
	if _, ok := c.engine.Apply(from, to, rules.PromoteQueen); !ok {
		return false
	}
	c.afterHumanMove()
	return true
}

// acceptsInput reports whether human moves are allowed right now: the game
// is running and the computer is not about to reply.
func (c *Controller) acceptsInput() bool {
	if c.resigned || c.engine.IsGameOver() {
		return false
	}
	return c.pending == nil && c.engine.SideToMove() == Human
}

func (c *Controller) destinations(square string) map[string]Highlight {
	moves := c.engine.LegalMoves(square)
	if len(moves) == 0 {
		return nil
	}
	out := make(map[string]Highlight, len(moves))
	for _, m := range moves {
		if m.Capture {
			out[m.To] = CaptureMove
		} else if _, seen := out[m.To]; !seen {
			out[m.To] = NormalMove
		}
	}
	return out
}

func (c *Controller) selectSquare(square string, dests map[string]Highlight) {
	c.selected = square
	c.highlights = dests
}

func (c *Controller) clearSelection() {
	c.selected = ""
	c.highlights = map[string]Highlight{}
}

func (c *Controller) afterHumanMove() {
	c.syncHistory()
	c.clearSelection()
	if c.engine.IsGameOver() {
		c.finish()
		return
	}
	c.scheduleReply()
}

// syncHistory copies the engine's move list and emits an event per new
// entry. Black's moves are the computer's.
func (c *Controller) syncHistory() {
	prev := len(c.history)
	c.history = c.engine.History()
	last := c.engine.SideToMove().Other()
	for i := prev; i < len(c.history); i++ {
		side := last
		if (len(c.history)-1-i)%2 == 1 {
			side = last.Other()
		}
		c.events = append(c.events, Event{
			Kind:     EventMove,
			Ply:      i + 1,
			SAN:      c.history[i],
			Side:     colorName(side),
			Computer: side == Computer,
			FEN:      c.engine.FEN(),
		})
	}
}

func (c *Controller) maybeComputerFirst() {
	if !c.engine.IsGameOver() && c.engine.SideToMove() == Computer {
		c.scheduleReply()
	}
}

func (c *Controller) scheduleReply() {
	gen := c.generation
	eng := c.engine
	c.pending = c.sched.AfterFunc(c.delay, func() { c.computerReply(gen, eng) })
}

func (c *Controller) computerReply(gen uint64, eng *rules.Game) {
	c.mu.Lock()
	defer c.unlockAndFlush()

	stale := gen != c.generation
	if !stale {
		c.pending = nil
	}
	if c.resigned {
		return
	}
	if stale && c.guard {
		return
	}
	defer func() { c.events = append(c.events, Event{Kind: EventReply}) }()

	target := c.engine
	if stale {
		target = eng
	}
	if _, ok := c.strategy.SelectMove(target); !ok {
		return
	}
	if stale {
		logging.Named("game").Warnw("stale computer reply landed after reset", "fen", target.FEN())
		c.engine = target
		// The reset emptied the log; replay the restored game from its first ply.
		c.history = nil
	}
	c.syncHistory()
	c.clearSelection()
	if c.engine.IsGameOver() {
		c.finish()
	}
}

func (c *Controller) finish() {
	c.dialogs.GameOver = true
	out := c.outcome()
	c.events = append(c.events, Event{
		Kind:    EventEnd,
		FEN:     c.engine.FEN(),
		PGN:     c.engine.PGN(),
		Outcome: out,
	})
}

func (c *Controller) stopReply() {
	if c.pending != nil {
		c.pending.Stop()
		c.pending = nil
	}
}

// RequestResign opens the confirmation dialog.
func (c *Controller) RequestResign() {
	c.mu.Lock()
	defer c.unlockAndFlush()
	if c.resigned || c.engine.IsGameOver() {
		return
	}
	c.dialogs.Resign = true
}

// CancelResign closes the confirmation dialog.
func (c *Controller) CancelResign() {
	c.mu.Lock()
	defer c.unlockAndFlush()
	c.dialogs.Resign = false
}

// Resign ends the game in the computer's favour. Any pending computer
// reply is dropped and no further moves are accepted.
func (c *Controller) Resign() {
	c.mu.Lock()
	defer c.unlockAndFlush()
	if c.resigned || c.engine.IsGameOver() {
		c.dialogs.Resign = false
		return
	}
	c.dialogs.Resign = false
	c.stopReply()
	c.resigned = true
	c.engine.Resign(Human)
	c.clearSelection()
	c.finish()
}

// OpenSettings shows the board color picker.
func (c *Controller) OpenSettings() {
	c.mu.Lock()
	defer c.unlockAndFlush()
	c.pendingColor = c.color
	c.dialogs.Settings = true
}

// PickColor stages a palette; SubmitSettings applies it.
func (c *Controller) PickColor(name string) error {
	bc, err := theme.ParseBoardColor(name)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.unlockAndFlush()
	c.pendingColor = bc
	return nil
}

// SubmitSettings applies the staged palette and closes the dialog.
func (c *Controller) SubmitSettings() {
	c.mu.Lock()
	defer c.unlockAndFlush()
	c.color = c.pendingColor
	c.dialogs.Settings = false
}

// CloseSettings dismisses the dialog without applying.
func (c *Controller) CloseSettings() {
	c.mu.Lock()
	defer c.unlockAndFlush()
	c.dialogs.Settings = false
}

// Resize sets the board width from its container. Widths below
// MinBoardWidth are ignored and the previous width is kept.
func (c *Controller) Resize(containerWidth int) bool {
	c.mu.Lock()
	defer c.unlockAndFlush()
	if containerWidth < MinBoardWidth {
		return false
	}
	c.width = containerWidth
	return true
}

// Reset starts a fresh game.
func (c *Controller) Reset() error {
	eng, err := c.newEngine()
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.unlockAndFlush()
	if c.guard {
		c.stopReply()
	}
	c.pending = nil
	c.generation++
	c.engine = eng
	c.history = eng.History()
	c.resigned = false
	c.dialogs = Dialogs{}
	c.clearSelection()
	c.events = append(c.events, Event{Kind: EventReset, FEN: eng.FEN()})
	c.maybeComputerFirst()
	return nil
}

// Close cancels any pending reply.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopReply()
	c.generation++
}

// State reports the controller state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stateLocked()
}

func (c *Controller) stateLocked() State {
	switch {
	case c.resigned:
		return Resigned
	case c.engine.IsGameOver():
		return GameOver
	case c.selected != "":
		return PieceSelected
	}
	return Idle
}

// Outcome returns the end-of-game summary, nil while the game runs.
func (c *Controller) Outcome() *Outcome {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.outcome()
}

func (c *Controller) outcome() *Outcome {
	if c.resigned {
		return &Outcome{Title: "Resigned", Winner: winnerText(Computer), Result: c.engine.Outcome()}
	}
	if !c.engine.IsGameOver() {
		return nil
	}
	if c.engine.IsCheckmate() {
		return &Outcome{
			Title:  "Checkmate",
			Winner: winnerText(c.engine.SideToMove().Other()),
			Result: c.engine.Outcome(),
		}
	}
	return &Outcome{Title: "Draw", Reason: "Draw by " + drawReason(c.engine), Result: c.engine.Outcome()}
}

func winnerText(side rules.Color) string {
	if side == Human {
		return "You Won"
	}
	return "Computer Won"
}

func drawReason(e rules.Engine) string {
	switch {
	case e.IsInsufficientMaterial():
		return "insufficient material"
	case e.IsStalemate():
		return "stalemate"
	case e.IsRepetition():
		return "repetition"
	case e.IsFiftyMoveRule():
		return "fifty-move rule"
	}
	return "agreement"
}

// History returns the SAN move list.
func (c *Controller) History() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.history))
	copy(out, c.history)
	return out
}

// FEN returns the current position.
func (c *Controller) FEN() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.engine.FEN()
}

// PieceAt returns the FEN letter on square, "" when empty.
func (c *Controller) PieceAt(square string) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.engine.PieceAt(square)
}

// View snapshots the controller for rendering.
func (c *Controller) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	hl := make(map[string]Highlight, len(c.highlights))
	for sq, h := range c.highlights {
		hl[sq] = h
	}
	hist := make([]string, len(c.history))
	copy(hist, c.history)
	return View{
		FEN:          c.engine.FEN(),
		Turn:         colorName(c.engine.SideToMove()),
		State:        c.stateLocked(),
		Selected:     c.selected,
		Highlights:   hl,
		History:      hist,
		Resigned:     c.resigned,
		Thinking:     c.pending != nil,
		Width:        c.width,
		BoardColor:   c.color,
		PendingColor: c.pendingColor,
		DarkSquare:   c.color.CSS(),
		LightSquare:  theme.CSS(theme.LightSquare),
		Dialogs:      c.dialogs,
		Outcome:      c.outcome(),
		PGN:          c.engine.PGN(),
	}
}

// HighlightedSquares lists the highlighted squares sorted by name.
func (v View) HighlightedSquares() []string {
	out := make([]string, 0, len(v.Highlights))
	for sq := range v.Highlights {
		out = append(out, sq)
	}
	sort.Strings(out)
	return out
}

func colorName(c rules.Color) string {
	if c == rules.White {
		return "white"
	}
	return "black"
}
