package game

import (
	"math/rand/v2"
	"testing"

	"pawnstorm/internal/strategy"
)

const startFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

func randomOpts() Options {
	return Options{Strategy: strategy.NewRandom(rand.NewPCG(42, 7)), GuardStaleReply: true}
}

func TestClickSquaresWithoutMovesNeverSelect(t *testing.T) {
	c, _ := newTestController(t, randomOpts())
	movable := map[string]bool{"b1": true, "g1": true}
	for f := 'a'; f <= 'h'; f++ {
		movable[string(f)+"2"] = true
	}
	for f := 'a'; f <= 'h'; f++ {
		for r := '1'; r <= '8'; r++ {
			sq := string(f) + string(r)
			if movable[sq] {
				continue
			}
			c.Click(sq)
			v := c.View()
			if v.State != Idle || v.Selected != "" || len(v.Highlights) != 0 {
				t.Fatalf("click on %s changed selection: %+v", sq, v)
			}
		}
	}
}

func TestClickSelectsExactDestinations(t *testing.T) {
	c, _ := newTestController(t, randomOpts())
	c.Click("e2")
	v := c.View()
	if v.State != PieceSelected || v.Selected != "e2" {
		t.Fatalf("expected e2 selected, got %+v", v)
	}
	want := map[string]Highlight{"e3": NormalMove, "e4": NormalMove}
	if len(v.Highlights) != len(want) {
		t.Fatalf("expected %v, got %v", want, v.Highlights)
	}
	for sq, h := range want {
		if v.Highlights[sq] != h {
			t.Fatalf("square %s: expected %s, got %s", sq, h, v.Highlights[sq])
		}
	}
}

func TestCaptureDestinationsGetCaptureHighlight(t *testing.T) {
	opts := randomOpts()
	opts.StartFEN = "k7/8/8/8/8/8/1r6/K7 w - - 0 1"
	c, _ := newTestController(t, opts)
	c.Click("a1")
	v := c.View()
	if len(v.Highlights) != 1 || v.Highlights["b2"] != CaptureMove {
		t.Fatalf("expected b2 capture highlight, got %v", v.Highlights)
	}
}

func TestMixedCaptureAndQuietDestinations(t *testing.T) {
	opts := randomOpts()
	opts.StartFEN = "rnbqkbnr/ppp1pppp/8/3p4/4P3/8/PPPP1PPP/RNBQKBNR w KQkq - 0 2"
	c, _ := newTestController(t, opts)
	c.Click("e4")
	v := c.View()
	if v.Highlights["d5"] != CaptureMove || v.Highlights["e5"] != NormalMove || len(v.Highlights) != 2 {
		t.Fatalf("unexpected highlights %v", v.Highlights)
	}
}

func TestClickSameSquareDeselects(t *testing.T) {
	c, _ := newTestController(t, randomOpts())
	c.Click("e2")
	c.Click("e2")
	if v := c.View(); v.State != Idle || len(v.Highlights) != 0 {
		t.Fatalf("expected deselect, got %+v", v)
	}
}

func TestClickOtherPieceReselects(t *testing.T) {
	c, _ := newTestController(t, randomOpts())
	c.Click("e2")
	c.Click("g1")
	v := c.View()
	if v.Selected != "g1" {
		t.Fatalf("expected g1 selected, got %q", v.Selected)
	}
	if len(v.Highlights) != 2 || v.Highlights["f3"] != NormalMove || v.Highlights["h3"] != NormalMove {
		t.Fatalf("unexpected highlights %v", v.Highlights)
	}
	if len(c.History()) != 0 {
		t.Fatalf("reselect must not move")
	}
}

func TestClickUnreachableSquareDeselects(t *testing.T) {
	c, _ := newTestController(t, randomOpts())
	c.Click("e2")
	c.Click("e6")
	if v := c.View(); v.State != Idle || v.Selected != "" || len(v.Highlights) != 0 {
		t.Fatalf("expected deselect, got %+v", v)
	}
}

func TestClickMoveAdvancesHistoryByOne(t *testing.T) {
	c, _ := newTestController(t, randomOpts())
	c.Click("e2")
	c.Click("e4")
	v := c.View()
	if len(v.History) != 1 || v.History[0] != "e4" {
		t.Fatalf("expected history [e4], got %v", v.History)
	}
	if v.State != Idle || v.Selected != "" || len(v.Highlights) != 0 {
		t.Fatalf("selection must clear after a move, got %+v", v)
	}
	if !v.Thinking {
		t.Fatalf("expected the computer reply to be pending")
	}
}

func TestDragOverClearsSelection(t *testing.T) {
	c, _ := newTestController(t, randomOpts())
	c.Click("e2")
	c.DragOver("e3")
	if v := c.View(); v.State != Idle || len(v.Highlights) != 0 {
		t.Fatalf("expected drag to clear selection, got %+v", v)
	}
}

func TestDropLegal(t *testing.T) {
	c, _ := newTestController(t, randomOpts())
	c.Click("e2")
	if !c.Drop("g1", "f3") {
		t.Fatalf("expected Nf3 drop to succeed")
	}
	v := c.View()
	if len(v.History) != 1 || v.History[0] != "Nf3" {
		t.Fatalf("expected [Nf3], got %v", v.History)
	}
	if v.Selected != "" || len(v.Highlights) != 0 {
		t.Fatalf("drop must clear selection")
	}
}

func TestDropIllegalChangesNothing(t *testing.T) {
	c, sched := newTestController(t, randomOpts())
	c.Click("e2")
	before := c.View()
	if c.Drop("e2", "e5") {
		t.Fatalf("expected illegal drop to be rejected")
	}
	after := c.View()
	if after.FEN != before.FEN || after.Selected != "e2" || len(after.Highlights) != 2 || len(after.History) != 0 {
		t.Fatalf("illegal drop changed state: %+v", after)
	}
	if sched.pending() != 0 {
		t.Fatalf("illegal drop must not schedule a reply")
	}
}

func TestPromotionByClickQueens(t *testing.T) {
	opts := randomOpts()
	opts.StartFEN = "8/P6k/8/8/8/8/8/K7 w - - 0 1"
	c, _ := newTestController(t, opts)
	c.Click("a7")
	if v := c.View(); len(v.Highlights) != 1 || v.Highlights["a8"] != NormalMove {
		t.Fatalf("expected single a8 destination, got %v", v.Highlights)
	}
	c.Click("a8")
	if p := c.PieceAt("a8"); p != "Q" {
		t.Fatalf("expected queen on a8, got %q", p)
	}
}

func TestResizeFloor(t *testing.T) {
	c, _ := newTestController(t, randomOpts())
	if c.Resize(150) {
		t.Fatalf("expected 150 to be rejected")
	}
	if w := c.View().Width; w != DefaultBoardWidth {
		t.Fatalf("expected width to stay %d, got %d", DefaultBoardWidth, w)
	}
	if !c.Resize(320) || c.View().Width != 320 {
		t.Fatalf("expected width 320")
	}
	if c.Resize(219) || c.View().Width != 320 {
		t.Fatalf("expected 219 to be rejected and 320 kept")
	}
	if !c.Resize(MinBoardWidth) || c.View().Width != MinBoardWidth {
		t.Fatalf("expected the floor itself to be accepted")
	}
}

func TestInvalidStartFEN(t *testing.T) {
	if _, err := NewController(Options{StartFEN: "not a fen"}); err == nil {
		t.Fatalf("expected an error for a bad start position")
	}
}
