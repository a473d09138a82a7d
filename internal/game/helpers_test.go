package game

import (
	"sync"
	"testing"
	"time"

	"pawnstorm/internal/rules"
)

// manualScheduler holds scheduled tasks until the test fires them.
type manualScheduler struct {
	mu     sync.Mutex
	timers []*manualTimer
}

type manualTimer struct {
	d       time.Duration
	f       func()
	stopped bool
	fired   bool
}

func (t *manualTimer) Stop() bool {
	if t.fired || t.stopped {
		return false
	}
	t.stopped = true
	return true
}

func (s *manualScheduler) AfterFunc(d time.Duration, f func()) Timer {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := &manualTimer{d: d, f: f}
	s.timers = append(s.timers, t)
	return t
}

// pending counts tasks that are neither stopped nor fired.
func (s *manualScheduler) pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, t := range s.timers {
		if !t.stopped && !t.fired {
			n++
		}
	}
	return n
}

// fireAll runs every task that has not fired yet. With ignoreStop, stopped
// tasks run too, like a timer whose callback was already in flight.
func (s *manualScheduler) fireAll(ignoreStop bool) int {
	s.mu.Lock()
	var run []*manualTimer
	for _, t := range s.timers {
		if t.fired || (t.stopped && !ignoreStop) {
			continue
		}
		t.fired = true
		run = append(run, t)
	}
	s.mu.Unlock()
	for _, t := range run {
		t.f()
	}
	return len(run)
}

func (s *manualScheduler) fire() int { return s.fireAll(false) }

// scripted plays a fixed list of moves, then nothing.
type scripted struct {
	moves [][2]string
}

func (s *scripted) SelectMove(g rules.Engine) (string, bool) {
	if g.IsGameOver() || len(s.moves) == 0 {
		return "", false
	}
	mv := s.moves[0]
	s.moves = s.moves[1:]
	return g.Apply(mv[0], mv[1], rules.PromoteQueen)
}

type eventLog struct {
	mu     sync.Mutex
	events []Event
}

func (l *eventLog) Observe(ev Event) {
	l.mu.Lock()
	l.events = append(l.events, ev)
	l.mu.Unlock()
}

func (l *eventLog) count(kind EventKind) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for _, ev := range l.events {
		if ev.Kind == kind {
			n++
		}
	}
	return n
}

func (l *eventLog) moves() []Event {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []Event
	for _, ev := range l.events {
		if ev.Kind == EventMove {
			out = append(out, ev)
		}
	}
	return out
}

func newTestController(t *testing.T, opts Options) (*Controller, *manualScheduler) {
	t.Helper()
	sched := &manualScheduler{}
	opts.Scheduler = sched
	c, err := NewController(opts)
	if err != nil {
		t.Fatalf("new controller: %v", err)
	}
	return c, sched
}
