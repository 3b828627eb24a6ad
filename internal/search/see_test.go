package search

import (
	"testing"

	"github.com/hailam/chessengine/internal/board"
)

func mustFEN(t *testing.T, fen string) *board.Position {
	t.Helper()
	pos, err := board.ParseFEN(fen)
	if err != nil {
		t.Fatalf("ParseFEN(%q): %v", fen, err)
	}
	return pos
}

func mustMove(t *testing.T, pos *board.Position, s string) board.Move {
	t.Helper()
	m, err := board.ParseMove(s, pos)
	if err != nil {
		t.Fatalf("ParseMove(%q): %v", s, err)
	}
	return m
}

// A pawn takes a hanging rook with nothing defending it: a clean material win.
func TestSeeWinningCapture(t *testing.T) {
	pos := mustFEN(t, "4k3/8/8/3r4/4P3/8/8/4K3 w - - 0 1")
	m := mustMove(t, pos, "e4d5")
	if !See(pos, m, 0) {
		t.Fatalf("expected pawn takes rook to be SEE >= 0")
	}
	if !See(pos, m, 300) {
		t.Fatalf("expected pawn takes rook to clear a 300cp threshold")
	}
}

// A pawn takes a pawn defended by another pawn: losing the exchange.
func TestSeeLosingCapture(t *testing.T) {
	pos := mustFEN(t, "4k3/8/3p4/4p3/3P4/8/8/4K3 w - - 0 1")
	m := mustMove(t, pos, "d4e5")
	if !See(pos, m, 0) {
		t.Fatalf("expected even pawn trade to be SEE >= 0")
	}
	if See(pos, m, 1) {
		t.Fatalf("expected even pawn trade to fail a threshold above 0")
	}
}

// Queen takes a pawn defended by another pawn, with a rook able to recapture
// behind it: the queen is still lost for only a pawn in return.
func TestSeeQueenSacrificeIsLosing(t *testing.T) {
	pos := mustFEN(t, "4k3/8/2p5/3p4/8/8/3Q4/3R3K w - - 0 1")
	m := mustMove(t, pos, "d2d5")
	if See(pos, m, 0) {
		t.Fatalf("expected queen takes defended pawn to lose material overall")
	}
}

// Regression fixture: Nd3xe5 on 1k1r4/1ppn3p/p4b2/4n3/8/P2N2P1/1PP1R1BP/2K1Q3
// w - - 0 1. The full exchange on e5 (Nxe5, Nd7xe5, Rxe5, Bxe5, Qxe5) nets
// exactly N-N+B-R+N = 150cp for White, so the threshold must be satisfied at
// 150 and one below it, and fail one above it.
func TestSeeExchangeOnE5MatchesExactThreshold(t *testing.T) {
	pos := mustFEN(t, "1k1r4/1ppn3p/p4b2/4n3/8/P2N2P1/1PP1R1BP/2K1Q3 w - - 0 1")
	m := mustMove(t, pos, "d3e5")
	want := board.PieceValue[board.Knight] - board.PieceValue[board.Knight] +
		board.PieceValue[board.Bishop] - board.PieceValue[board.Rook] + board.PieceValue[board.Knight]
	if !See(pos, m, want-1) {
		t.Fatalf("expected SEE to clear threshold %d", want-1)
	}
	if !See(pos, m, want) {
		t.Fatalf("expected SEE to clear threshold %d exactly", want)
	}
	if See(pos, m, want+1) {
		t.Fatalf("expected SEE to fail threshold %d", want+1)
	}
}

func TestSeeNonCaptureAlwaysMeetsZeroThreshold(t *testing.T) {
	pos := board.NewPosition()
	m := mustMove(t, pos, "e2e4")
	if !See(pos, m, 0) {
		t.Fatalf("expected quiet move to satisfy a 0 threshold")
	}
	if See(pos, m, 1) {
		t.Fatalf("expected quiet move to fail a positive threshold")
	}
}
