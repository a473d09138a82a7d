// Package strategy holds the computer opponent policies.
package strategy

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"

	"pawnstorm/internal/rules"
)

// Strategy picks and plays the computer's move. SelectMove mutates the
// engine it is given and returns the resulting FEN; ok is false when the
// game is already decided and nothing was played.
type Strategy interface {
	SelectMove(g rules.Engine) (fen string, ok bool)
}

// ErrUnknownStrategy is returned by ByName.
var ErrUnknownStrategy = errors.New("unknown strategy")

// Names lists the registered strategies.
func Names() []string { return []string{"random"} }

// ByName builds a registered strategy.
func ByName(name string) (Strategy, error) {
	switch name {
	case "", "random":
		return NewRandom(nil), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownStrategy, name)
}

// Random plays a uniformly chosen legal move. No evaluation, no search.
type Random struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewRandom returns a Random strategy. A nil source uses the global
// generator.
func NewRandom(src rand.Source) *Random {
	r := &Random{}
	if src != nil {
		r.rng = rand.New(src)
	}
	return r
}

func (r *Random) SelectMove(g rules.Engine) (string, bool) {
	moves := g.LegalMoves("")
	if g.IsGameOver() || g.IsDraw() || len(moves) == 0 {
		return "", false
	}
	m := moves[r.intN(len(moves))]
	return g.Apply(m.From, m.To, m.Promo)
}

func (r *Random) intN(n int) int {
	if r.rng == nil {
		return rand.IntN(n)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rng.IntN(n)
}
