// Package theme holds the page theme and the board palettes.
package theme

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
)

// Mode is the page theme.
type Mode string

const (
	Light Mode = "light"
	Dark  Mode = "dark"
)

// ErrUnknownMode is returned by ParseMode.
var ErrUnknownMode = errors.New("unknown theme mode")

// ParseMode accepts "light" or "dark".
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case Light:
		return Light, nil
	case Dark:
		return Dark, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownMode, s)
}

// FromPreference maps a prefers-color-scheme value to a mode, falling back
// to def when the value is missing or unrecognised.
func FromPreference(pref string, def Mode) Mode {
	if m, err := ParseMode(strings.Trim(pref, `"`)); err == nil {
		return m
	}
	return def
}

// Provider holds the current mode. It is created once with an initial
// mode and only changes through Toggle. Nothing is persisted.
type Provider struct {
	mu   sync.Mutex
	mode Mode
}

func NewProvider(initial Mode) *Provider {
	if initial != Dark {
		initial = Light
	}
	return &Provider{mode: initial}
}

func (p *Provider) Mode() Mode {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.mode
}

// Toggle flips between light and dark and returns the new mode.
func (p *Provider) Toggle() Mode {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.mode == Dark {
		p.mode = Light
	} else {
		p.mode = Dark
	}
	return p.mode
}

type ctxKey struct{}

// WithProvider attaches p to ctx.
func WithProvider(ctx context.Context, p *Provider) context.Context {
	return context.WithValue(ctx, ctxKey{}, p)
}

// FromContext returns the provider attached to ctx. It panics when there is
// none: reading the theme outside a themed scope is a programming error.
func FromContext(ctx context.Context) *Provider {
	p, ok := ctx.Value(ctxKey{}).(*Provider)
	if !ok || p == nil {
		panic("theme: FromContext called outside a themed scope")
	}
	return p
}
