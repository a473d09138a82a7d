package config

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/urfave/cli/v3"

	"pawnstorm/internal/game"
	"pawnstorm/internal/theme"
)

func parse(t *testing.T, args ...string) Config {
	t.Helper()
	var cfg Config
	cmd := &cli.Command{
		Name:  "test",
		Flags: Flags(),
		Action: func(_ context.Context, c *cli.Command) error {
			cfg = FromCommand(c)
			return nil
		},
	}
	if err := cmd.Run(context.Background(), append([]string{"test"}, args...)); err != nil {
		t.Fatalf("run: %v", err)
	}
	return cfg
}

func TestDefaults(t *testing.T) {
	cfg := parse(t)
	if cfg.Addr != ":8080" || cfg.ReplyDelay != game.DefaultReplyDelay || cfg.BoardWidth != game.DefaultBoardWidth {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
	if !cfg.GuardStaleReply || cfg.Theme != ThemeAuto || cfg.LogLevel != "info" || cfg.DSN != "" {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults must validate: %v", err)
	}
}

func TestFlagsAndEnv(t *testing.T) {
	t.Setenv("PAWNSTORM_ADDR", ":9000")
	t.Setenv("PAWNSTORM_GUARD_STALE_REPLY", "false")
	cfg := parse(t, "--reply-delay", "1s", "--theme", "Dark", "--board-width", "640", "--debug")
	if cfg.Addr != ":9000" || cfg.GuardStaleReply {
		t.Fatalf("env not applied: %+v", cfg)
	}
	if cfg.ReplyDelay != time.Second || cfg.Theme != "dark" || cfg.BoardWidth != 640 {
		t.Fatalf("flags not applied: %+v", cfg)
	}
	if cfg.LogLevel != "debug" {
		t.Fatalf("debug should force the debug level, got %q", cfg.LogLevel)
	}
}

func TestValidate(t *testing.T) {
	good := Config{Strategy: "random", Theme: ThemeAuto, ReplyDelay: time.Millisecond, BoardWidth: 220, IdleTTL: time.Hour}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected valid: %v", err)
	}
	bad := map[string]func(*Config){
		"strategy": func(c *Config) { c.Strategy = "minimax" },
		"theme":    func(c *Config) { c.Theme = "sepia" },
		"delay":    func(c *Config) { c.ReplyDelay = 0 },
		"width":    func(c *Config) { c.BoardWidth = 150 },
		"ttl":      func(c *Config) { c.IdleTTL = -time.Second },
		"fen":      func(c *Config) { c.FEN = "not a position" },
	}
	for name, mutate := range bad {
		c := good
		mutate(&c)
		if err := c.Validate(); !errors.Is(err, ErrInvalid) {
			t.Fatalf("%s: expected ErrInvalid, got %v", name, err)
		}
	}
}

func TestHubOptions(t *testing.T) {
	cfg := Config{Strategy: "random", Theme: "dark", ReplyDelay: time.Second, BoardWidth: 300, IdleTTL: time.Hour, GuardStaleReply: true}
	opts, err := cfg.HubOptions(nil)
	if err != nil {
		t.Fatalf("hub options: %v", err)
	}
	if opts.Theme != theme.Dark || !opts.FixedTheme || opts.IdleTTL != time.Hour {
		t.Fatalf("unexpected hub options %+v", opts)
	}
	if opts.Controller.Strategy == nil || opts.Controller.ReplyDelay != time.Second || opts.Controller.BoardWidth != 300 || !opts.Controller.GuardStaleReply {
		t.Fatalf("unexpected controller options %+v", opts.Controller)
	}

	cfg.Theme = ThemeAuto
	if mode, fixed := cfg.ThemeMode(); mode != theme.Light || fixed {
		t.Fatalf("auto should follow the browser with a light fallback")
	}
}
