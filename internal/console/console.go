// Package console plays a game against the computer from a terminal.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"pawnstorm/internal/game"
	"pawnstorm/internal/logging"
	"pawnstorm/internal/render"
	"pawnstorm/internal/theme"
)

// ColumnUnits converts terminal columns to board layout units.
const ColumnUnits = 6

const help = `Commands:
  e2          click a square (select, move, deselect)
  drop e2 e4  move a piece directly
  resign      resign the game (asks for confirmation)
  reset       start a new game
  color NAME  board color: green, gray, blue, purple, sky
  theme       toggle light/dark
  pgn         print the game so far
  help        show this help
  quit        leave`

// Console reads commands line by line and redraws the board after every
// command and every computer reply.
type Console struct {
	ctrl    *game.Controller
	theme   *theme.Provider
	in      io.Reader
	out     io.Writer
	replies chan struct{}
}

// TerminalColumns reports the width of f, 0 when f is not a terminal.
func TerminalColumns(f *os.File) int {
	fd := int(f.Fd())
	if !term.IsTerminal(fd) {
		return 0
	}
	w, _, err := term.GetSize(fd)
	if err != nil {
		return 0
	}
	return w
}

// New wires a console to ctrl. columns is the terminal width; 0 keeps the
// controller's board width.
func New(ctrl *game.Controller, mode theme.Mode, in io.Reader, out io.Writer, columns int) *Console {
	c := &Console{
		ctrl:    ctrl,
		theme:   theme.NewProvider(mode),
		in:      in,
		out:     out,
		replies: make(chan struct{}, 1),
	}
	if columns > 0 && !ctrl.Resize(columns*ColumnUnits) {
		logging.Debugf("terminal too narrow (%d columns), keeping board width", columns)
	}
	ctrl.SetObserver(c)
	return c
}

// Observe wakes the command loop when the computer has answered.
func (c *Console) Observe(ev game.Event) {
	switch ev.Kind {
	case game.EventReply, game.EventEnd:
		select {
		case c.replies <- struct{}{}:
		default:
		}
	case game.EventMove:
		logging.Named("console").Debugw("move", "ply", ev.Ply, "san", ev.SAN, "side", ev.Side)
	}
}

// Run processes commands until quit, end of input or ctx is done.
func (c *Console) Run(ctx context.Context) error {
	lines := make(chan string)
	errc := make(chan error, 1)
	go func() {
		scanner := bufio.NewScanner(c.in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		errc <- scanner.Err()
		close(lines)
	}()

	c.waitReply(ctx)
	c.draw()
	fmt.Fprintln(c.out, "Type 'help' for commands.")

	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				return <-errc
			}
			quit, err := c.handle(ctx, line, lines)
			if err != nil {
				fmt.Fprintf(c.out, "error: %v\n", err)
			}
			if quit {
				return nil
			}
		}
	}
}

var errUnknownCommand = errors.New("unknown command")

// handle runs one command. The resign confirmation reads its answer from
// lines.
func (c *Console) handle(ctx context.Context, line string, lines <-chan string) (bool, error) {
	fields := strings.Fields(strings.ToLower(line))
	if len(fields) == 0 {
		return false, nil
	}
	switch cmd := fields[0]; {
	case cmd == "quit" || cmd == "q" || cmd == "exit":
		return true, nil
	case cmd == "help":
		fmt.Fprintln(c.out, help)
		return false, nil
	case cmd == "pgn":
		fmt.Fprintln(c.out, c.ctrl.View().PGN)
		return false, nil
	case cmd == "theme":
		fmt.Fprintf(c.out, "Theme: %s\n", c.theme.Toggle())
		return false, nil
	case cmd == "reset":
		if err := c.ctrl.Reset(); err != nil {
			return false, err
		}
	case cmd == "resign":
		c.ctrl.RequestResign()
		if !c.ctrl.View().Dialogs.Resign {
			return false, nil
		}
		fmt.Fprint(c.out, "Resign? [y/N] ")
		select {
		case answer, ok := <-lines:
			if !ok {
				c.ctrl.CancelResign()
				return true, nil
			}
			if a := strings.ToLower(strings.TrimSpace(answer)); a == "y" || a == "yes" {
				c.ctrl.Resign()
			} else {
				c.ctrl.CancelResign()
			}
		case <-ctx.Done():
			c.ctrl.CancelResign()
			return true, nil
		}
	case cmd == "color" && len(fields) == 2:
		c.ctrl.OpenSettings()
		if err := c.ctrl.PickColor(fields[1]); err != nil {
			c.ctrl.CloseSettings()
			return false, err
		}
		c.ctrl.SubmitSettings()
	case cmd == "drop" && len(fields) == 3:
		if !c.ctrl.Drop(fields[1], fields[2]) {
			fmt.Fprintf(c.out, "Illegal move: %s %s\n", fields[1], fields[2])
			return false, nil
		}
	case isSquare(cmd) && len(fields) == 1:
		c.ctrl.Click(cmd)
	default:
		return false, fmt.Errorf("%w: %q", errUnknownCommand, line)
	}
	c.draw()
	if c.waitReply(ctx) {
		c.draw()
	}
	return false, nil
}

// waitReply blocks while the computer is thinking and reports whether it
// waited.
func (c *Console) waitReply(ctx context.Context) bool {
	waited := false
	for c.ctrl.View().Thinking {
		waited = true
		select {
		case <-c.replies:
		case <-ctx.Done():
			return waited
		}
	}
	return waited
}

func (c *Console) draw() {
	v := c.ctrl.View()
	if err := render.Terminal(c.out, v); err != nil {
		fmt.Fprintf(c.out, "error: %v\n", err)
	}
	if v.Dialogs.GameOver && v.Outcome != nil {
		fmt.Fprintf(c.out, "Game over (%s). Type 'reset' to play again.\n", v.Outcome.Result)
	}
}

func isSquare(s string) bool {
	return len(s) == 2 && s[0] >= 'a' && s[0] <= 'h' && s[1] >= '1' && s[1] <= '8'
}
