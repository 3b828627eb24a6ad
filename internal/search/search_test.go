package search

import (
	"sync/atomic"
	"testing"

	"github.com/hailam/chessengine/internal/board"
)

func newTestEngine() *Engine {
	return NewEngine(4)
}

// Back-rank mate in one: Qd8 is mate.
func TestGetMoveFindsMateInOne(t *testing.T) {
	pos := mustFEN(t, "6k1/5ppp/8/8/8/8/5PPP/3Q2K1 w - - 0 1")
	e := newTestEngine()
	e.SetPosition(pos, []uint64{pos.Hash})

	var halt atomic.Bool
	res := e.GetMove(Limits{Depth: 6}, &halt)

	want := mustMove(t, pos, "d1d8")
	if res.Move != want {
		t.Fatalf("expected mating move %s, got %s", want, res.Move)
	}
	if !res.IsMate {
		t.Fatalf("expected IsMate true for a forced mate score")
	}
}

func TestGetMoveIsDeterministicAcrossRuns(t *testing.T) {
	pos := board.NewPosition()

	run := func() board.Move {
		e := newTestEngine()
		e.SetPosition(pos, []uint64{pos.Hash})
		var halt atomic.Bool
		return e.GetMove(Limits{Depth: 4}, &halt).Move
	}

	first := run()
	for i := 0; i < 3; i++ {
		if got := run(); got != first {
			t.Fatalf("expected deterministic best move, got %s then %s", first, got)
		}
	}
}

func TestGetMoveRespectsExternalHalt(t *testing.T) {
	pos := board.NewPosition()
	e := newTestEngine()
	e.SetPosition(pos, []uint64{pos.Hash})

	var halt atomic.Bool
	halt.Store(true)
	res := e.GetMove(Limits{Depth: 50}, &halt)

	if res.Move == board.NoMove {
		t.Fatalf("expected a legal fallback move even when halted immediately")
	}
}

func TestGetMoveReturnsLegalMoveFromStartPosition(t *testing.T) {
	pos := board.NewPosition()
	e := newTestEngine()
	e.SetPosition(pos, []uint64{pos.Hash})

	var halt atomic.Bool
	res := e.GetMove(Limits{Depth: 3}, &halt)

	if !pos.IsLegal(res.Move) {
		t.Fatalf("expected a legal move, got %s", res.Move)
	}
}

// Reti's study: White draws against a passed pawn it cannot otherwise catch
// by simultaneously shepherding its own c-pawn. Regression fixture for
// search/quiescence robustness beyond simple mating nets.
func TestGetMoveFindsRetiStudyDraw(t *testing.T) {
	pos := mustFEN(t, "7K/8/k1P5/7p/8/8/8/8 w - - 0 1")
	e := newTestEngine()
	e.SetPosition(pos, []uint64{pos.Hash})

	var halt atomic.Bool
	res := e.GetMove(Limits{Depth: 9}, &halt)

	if res.Score < -20 || res.Score > 20 {
		t.Fatalf("expected a drawing evaluation within [-20, 20], got %d", res.Score)
	}
}

// At halfmove_clock=99 the quiescence stand-pat must be damped to 1/100 of
// its value at halfmove_clock=0, since the position is one quiet ply from a
// forced draw.
func TestQuiescenceStandPatDampedNearFiftyMoveRule(t *testing.T) {
	fen := "4k3/8/8/8/8/8/8/3QK3 w - - 0 1"

	fresh := mustFEN(t, fen)
	eFresh := newTestEngine()
	eFresh.SetPosition(fresh, []uint64{fresh.Hash})
	eFresh.tm = NewTimeManager(Limits{Infinite: true}, true)
	var haltFresh atomic.Bool
	eFresh.halt = &haltFresh
	freshScore := eFresh.quiescence(0, -MateScore, MateScore)

	stale := mustFEN(t, fen)
	stale.HalfMoveClock = 99
	eStale := newTestEngine()
	eStale.SetPosition(stale, []uint64{stale.Hash})
	eStale.tm = NewTimeManager(Limits{Infinite: true}, true)
	var haltStale atomic.Bool
	eStale.halt = &haltStale
	staleScore := eStale.quiescence(0, -MateScore, MateScore)

	if freshScore <= 0 {
		t.Fatalf("expected white's extra queen to stand-pat positively, got %d", freshScore)
	}
	if want := freshScore / 100; staleScore != want {
		t.Fatalf("expected stand-pat at halfmove_clock=99 to be 1/100 of halfmove_clock=0 (%d), got %d", want, staleScore)
	}
}

// Simulates an aspiration-window fail-high: a root score that beats the
// previous iteration's window must trigger a re-search with a widened
// window rather than being clamped to the window's edge.
func TestGetMoveAspirationReSearchEscapesNarrowWindow(t *testing.T) {
	pos := mustFEN(t, "4k3/8/8/8/8/8/8/3QK3 w - - 0 1")
	e := newTestEngine()
	e.SetPosition(pos, []uint64{pos.Hash})

	var halt atomic.Bool
	res := e.GetMove(Limits{Depth: 4}, &halt)

	if res.Score < AspirationWindow {
		t.Fatalf("expected the true score (white up a queen) to clear the initial aspiration window, got %d", res.Score)
	}
}

func TestEvaluateFallsBackToMaterialWithoutNNUE(t *testing.T) {
	pos := mustFEN(t, "4k3/8/8/8/8/8/8/3QK3 w - - 0 1")
	e := newTestEngine()
	e.SetPosition(pos, []uint64{pos.Hash})

	if score := e.evaluate(); score <= 0 {
		t.Fatalf("expected white's extra queen to score positively from white's perspective, got %d", score)
	}
}
