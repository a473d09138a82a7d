package game

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"pawnstorm/internal/logging"
	"pawnstorm/internal/theme"
)

// Recorder persists sessions. A nil *storage.Store satisfies it as a no-op.
type Recorder interface {
	CreateGame(ctx context.Context, id uuid.UUID, name, fen string, at time.Time) error
	RecordMove(ctx context.Context, gameID uuid.UUID, ply int, san, side string, computer bool, fen string) error
	CompleteGame(ctx context.Context, id uuid.UUID, status, result, pgn string, at time.Time) error
	ResetGame(ctx context.Context, id uuid.UUID, fen string, at time.Time) error
	UpdateLastSeen(ctx context.Context, id uuid.UUID, at time.Time) error
}

const recordTimeout = 5 * time.Second

// Controller exposes the session's game controller.
func (s *Session) Controller() *Controller { return s.ctrl }

// Touch updates the last seen timestamp for a session
func (s *Session) Touch() {
	now := time.Now()
	s.Mu.Lock()
	s.LastSeen = now
	s.Mu.Unlock()
	s.record(func(ctx context.Context, id uuid.UUID) error {
		return s.recorder.UpdateLastSeen(ctx, id, now)
	})
}

// StateLocked returns the current session state (must be called with lock held)
func (s *Session) StateLocked() SessionState {
	palettes := make([]PaletteOption, 0, len(theme.BoardColors()))
	for _, c := range theme.BoardColors() {
		palettes = append(palettes, PaletteOption{Name: c, Label: c.Label(), CSS: c.CSS()})
	}
	return SessionState{
		View:     s.ctrl.View(),
		Kind:     "state",
		ID:       s.ID,
		Name:     s.Name,
		Theme:    s.Theme.Mode(),
		Palettes: palettes,
		LastSeen: s.LastSeen.UnixMilli(),
		Watchers: len(s.Watchers),
	}
}

// State locks the session and returns its state.
func (s *Session) State() SessionState {
	s.Mu.Lock()
	defer s.Mu.Unlock()
	return s.StateLocked()
}

// Broadcast sends the current state to all watchers
func (s *Session) Broadcast() {
	s.Mu.Lock()
	state := s.StateLocked()
	data, _ := json.Marshal(state)
	for ch := range s.Watchers {
		select {
		case ch <- data:
		default:
		}
	}
	s.Mu.Unlock()
}

// AddWatcher adds a new watcher channel
func (s *Session) AddWatcher(ch chan []byte) {
	s.Mu.Lock()
	s.Watchers[ch] = struct{}{}
	s.Mu.Unlock()
}

// RemoveWatcher removes a watcher channel
func (s *Session) RemoveWatcher(ch chan []byte) {
	s.Mu.Lock()
	delete(s.Watchers, ch)
	s.Mu.Unlock()
}

// Observe persists controller events and pushes asynchronous changes to
// watchers.
func (s *Session) Observe(ev Event) {
	log := logging.Named("session").With("session", s.ID)
	now := time.Now()
	switch ev.Kind {
	case EventMove:
		log.Debugw("move", "ply", ev.Ply, "san", ev.SAN, "side", ev.Side, "computer", ev.Computer)
		s.record(func(ctx context.Context, id uuid.UUID) error {
			return s.recorder.RecordMove(ctx, id, ev.Ply, ev.SAN, ev.Side, ev.Computer, ev.FEN)
		})
	case EventEnd:
		status, result := "", ""
		if ev.Outcome != nil {
			status = ev.Outcome.Title
			result = ev.Outcome.Result
		}
		log.Infow("game over", "status", status, "result", result)
		s.record(func(ctx context.Context, id uuid.UUID) error {
			return s.recorder.CompleteGame(ctx, id, status, result, ev.PGN, now)
		})
		s.Broadcast()
	case EventReset:
		log.Debugw("reset", "fen", ev.FEN)
		s.record(func(ctx context.Context, id uuid.UUID) error {
			return s.recorder.ResetGame(ctx, id, ev.FEN, now)
		})
	case EventReply:
		s.Broadcast()
	}
}

func (s *Session) record(fn func(ctx context.Context, id uuid.UUID) error) {
	if s.recorder == nil {
		return
	}
	id, err := uuid.Parse(s.ID)
	if err != nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
	defer cancel()
	if err := fn(ctx, id); err != nil {
		logging.Warnf("session %s: persist: %v", s.ID, err)
	}
}
