package game

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"pawnstorm/internal/logging"
	"pawnstorm/internal/theme"
	"pawnstorm/pkg/utils"
)

// ErrSessionNotFound is returned by Lookup for unknown ids.
var ErrSessionNotFound = errors.New("session not found")

// Sweep cadence and default idle lifetime.
const (
	SweepInterval  = 5 * time.Minute
	DefaultIdleTTL = 24 * time.Hour
)

// HubOptions configures every session the hub creates.
type HubOptions struct {
	Controller Options
	Theme      theme.Mode
	// FixedTheme ignores the browser's color scheme hint.
	FixedTheme bool
	IdleTTL    time.Duration
	Recorder   Recorder
}

// NewHub creates a session hub. Run sweeps idle sessions.
func NewHub(opts HubOptions) *Hub {
	if opts.IdleTTL <= 0 {
		opts.IdleTTL = DefaultIdleTTL
	}
	if opts.Theme == "" {
		opts.Theme = theme.Light
	}
	return &Hub{Sessions: make(map[string]*Session), opts: opts}
}

// Get retrieves an existing session or creates a new one. pref is the
// browser's prefers-color-scheme hint, used only when the session is new.
func (h *Hub) Get(id, pref string) (*Session, error) {
	h.Mu.Lock()
	if s, ok := h.Sessions[id]; ok {
		h.Mu.Unlock()
		return s, nil
	}
	mode := h.opts.Theme
	if !h.opts.FixedTheme {
		mode = theme.FromPreference(pref, mode)
	}
	ctrl, err := NewController(h.opts.Controller)
	if err != nil {
		h.Mu.Unlock()
		return nil, err
	}
	s := &Session{
		ID:       id,
		Name:     utils.Nickname(),
		ctrl:     ctrl,
		Theme:    theme.NewProvider(mode),
		Watchers: make(map[chan []byte]struct{}),
		LastSeen: time.Now(),
		recorder: h.opts.Recorder,
	}
	ctrl.SetObserver(s)
	h.Sessions[id] = s
	h.Mu.Unlock()

	logging.Infof("session %s (%s) created", id, s.Name)
	s.record(func(ctx context.Context, uid uuid.UUID) error {
		return s.recorder.CreateGame(ctx, uid, s.Name, ctrl.FEN(), s.LastSeen)
	})
	return s, nil
}

// Lookup returns an existing session.
func (h *Hub) Lookup(id string) (*Session, error) {
	h.Mu.Lock()
	defer h.Mu.Unlock()
	s, ok := h.Sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

// Len reports the number of live sessions.
func (h *Hub) Len() int {
	h.Mu.Lock()
	defer h.Mu.Unlock()
	return len(h.Sessions)
}

// Sweep drops sessions idle for longer than the TTL and returns how many
// were removed.
func (h *Hub) Sweep(now time.Time) int {
	h.Mu.Lock()
	defer h.Mu.Unlock()
	n := 0
	for id, s := range h.Sessions {
		s.Mu.Lock()
		idle := now.Sub(s.LastSeen) > h.opts.IdleTTL
		s.Mu.Unlock()
		if idle {
			s.ctrl.Close()
			delete(h.Sessions, id)
			n++
		}
	}
	return n
}

// Run sweeps idle sessions until ctx is done.
func (h *Hub) Run(ctx context.Context) error {
	ticker := time.NewTicker(SweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			if n := h.Sweep(now); n > 0 {
				logging.Debugf("swept %d idle sessions", n)
			}
		}
	}
}
