// Package config maps command-line flags and PAWNSTORM_* environment
// variables onto the server and game settings.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/urfave/cli/v3"

	"pawnstorm/internal/game"
	"pawnstorm/internal/rules"
	"pawnstorm/internal/strategy"
	"pawnstorm/internal/theme"
)

// ThemeAuto follows the browser's color scheme hint.
const ThemeAuto = "auto"

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("invalid configuration")

// Config is the resolved configuration.
type Config struct {
	Addr            string
	Debug           bool
	LogLevel        string
	DSN             string
	ReplyDelay      time.Duration
	Strategy        string
	Theme           string
	BoardWidth      int
	GuardStaleReply bool
	IdleTTL         time.Duration
	FEN             string
}

func env(name string) cli.ValueSourceChain {
	return cli.EnvVars("PAWNSTORM_" + name)
}

// Flags returns a fresh flag set for one command.
func Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "addr",
			Value:   ":8080",
			Usage:   "HTTP listen address",
			Sources: env("ADDR"),
		},
		&cli.BoolFlag{
			Name:    "debug",
			Aliases: []string{"d"},
			Usage:   "enable debug logging with the console encoder",
			Sources: env("DEBUG"),
		},
		&cli.StringFlag{
			Name:    "log-level",
			Value:   "info",
			Usage:   "debug, info, warn or error",
			Sources: env("LOG_LEVEL"),
		},
		&cli.StringFlag{
			Name:    "dsn",
			Usage:   "PostgreSQL DSN; empty disables persistence",
			Sources: env("DSN"),
		},
		&cli.DurationFlag{
			Name:    "reply-delay",
			Value:   game.DefaultReplyDelay,
			Usage:   "pause before the computer answers",
			Sources: env("REPLY_DELAY"),
		},
		&cli.StringFlag{
			Name:    "strategy",
			Value:   "random",
			Usage:   "computer strategy: " + strings.Join(strategy.Names(), ", "),
			Sources: env("STRATEGY"),
		},
		&cli.StringFlag{
			Name:    "theme",
			Value:   ThemeAuto,
			Usage:   "light, dark or auto (browser preference)",
			Sources: env("THEME"),
		},
		&cli.IntFlag{
			Name:    "board-width",
			Value:   game.DefaultBoardWidth,
			Usage:   "initial board width",
			Sources: env("BOARD_WIDTH"),
		},
		&cli.BoolFlag{
			Name:    "guard-stale-reply",
			Value:   true,
			Usage:   "drop a pending computer reply when the game is reset",
			Sources: env("GUARD_STALE_REPLY"),
		},
		&cli.DurationFlag{
			Name:    "idle-ttl",
			Value:   game.DefaultIdleTTL,
			Usage:   "drop sessions idle for longer than this",
			Sources: env("IDLE_TTL"),
		},
		&cli.StringFlag{
			Name:    "fen",
			Usage:   "start position in FEN",
			Sources: env("FEN"),
		},
	}
}

// FromCommand reads the flags registered by Flags.
func FromCommand(cmd *cli.Command) Config {
	c := Config{
		Addr:            cmd.String("addr"),
		Debug:           cmd.Bool("debug"),
		LogLevel:        cmd.String("log-level"),
		DSN:             cmd.String("dsn"),
		ReplyDelay:      cmd.Duration("reply-delay"),
		Strategy:        cmd.String("strategy"),
		Theme:           strings.ToLower(cmd.String("theme")),
		BoardWidth:      cmd.Int("board-width"),
		GuardStaleReply: cmd.Bool("guard-stale-reply"),
		IdleTTL:         cmd.Duration("idle-ttl"),
		FEN:             strings.TrimSpace(cmd.String("fen")),
	}
	if c.Debug {
		c.LogLevel = "debug"
	}
	return c
}

// Validate rejects settings the game cannot run with.
func (c Config) Validate() error {
	if _, err := strategy.ByName(c.Strategy); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if c.Theme != ThemeAuto {
		if _, err := theme.ParseMode(c.Theme); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalid, err)
		}
	}
	if c.ReplyDelay <= 0 {
		return fmt.Errorf("%w: reply delay must be positive, got %s", ErrInvalid, c.ReplyDelay)
	}
	if c.BoardWidth < game.MinBoardWidth {
		return fmt.Errorf("%w: board width %d is below %d", ErrInvalid, c.BoardWidth, game.MinBoardWidth)
	}
	if c.IdleTTL <= 0 {
		return fmt.Errorf("%w: idle ttl must be positive, got %s", ErrInvalid, c.IdleTTL)
	}
	if c.FEN != "" {
		if _, err := rules.FromFEN(c.FEN); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalid, err)
		}
	}
	return nil
}

// ThemeMode returns the initial mode and whether the browser hint may
// override it.
func (c Config) ThemeMode() (theme.Mode, bool) {
	if m, err := theme.ParseMode(c.Theme); err == nil {
		return m, true
	}
	return theme.Light, false
}

// ControllerOptions builds the per-game options.
func (c Config) ControllerOptions() (game.Options, error) {
	s, err := strategy.ByName(c.Strategy)
	if err != nil {
		return game.Options{}, err
	}
	return game.Options{
		Strategy:        s,
		ReplyDelay:      c.ReplyDelay,
		GuardStaleReply: c.GuardStaleReply,
		BoardWidth:      c.BoardWidth,
		StartFEN:        c.FEN,
	}, nil
}

// HubOptions builds the session hub options.
func (c Config) HubOptions(rec game.Recorder) (game.HubOptions, error) {
	opts, err := c.ControllerOptions()
	if err != nil {
		return game.HubOptions{}, err
	}
	mode, fixed := c.ThemeMode()
	return game.HubOptions{
		Controller: opts,
		Theme:      mode,
		FixedTheme: fixed,
		IdleTTL:    c.IdleTTL,
		Recorder:   rec,
	}, nil
}
