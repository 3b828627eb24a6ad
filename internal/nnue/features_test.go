package nnue

import (
	"testing"

	"github.com/hailam/chessengine/internal/board"
)

func TestFeatureIndexInRange(t *testing.T) {
	pos := board.NewPosition()
	for _, perspective := range []board.Color{board.White, board.Black} {
		for _, idx := range ActiveFeatures(pos, perspective) {
			if idx < 0 || idx >= FeatureCount {
				t.Fatalf("feature index %d out of range [0, %d)", idx, FeatureCount)
			}
		}
	}
}

func TestActiveFeaturesExcludesKings(t *testing.T) {
	pos := board.NewPosition()
	kingSq := pos.KingSquare[board.White]
	whiteKing := board.NewPiece(board.King, board.White)
	for _, idx := range ActiveFeatures(pos, board.White) {
		if idx == FeatureIndex(board.White, whiteKing, kingSq, kingSq) {
			t.Fatalf("expected kings to never appear as a feature")
		}
	}
}

func TestActiveFeaturesCountMatchesNonKingPieceCount(t *testing.T) {
	pos := board.NewPosition()
	feats := ActiveFeatures(pos, board.White)
	// 32 pieces total on the starting position, minus the two kings.
	if len(feats) != 30 {
		t.Fatalf("expected 30 non-king features on the starting position, got %d", len(feats))
	}
}

func TestPerspectiveSquareIsIdentityForWhite(t *testing.T) {
	sq := board.E4
	if got := perspectiveSquare(sq, board.White); got != sq {
		t.Fatalf("expected white perspective to be identity, got %s", got)
	}
}

func TestPerspectiveSquareMirrorsForBlack(t *testing.T) {
	sq := board.E2
	mirrored := perspectiveSquare(sq, board.Black)
	if mirrored == sq {
		t.Fatalf("expected black perspective to mirror the square")
	}
	if perspectiveSquare(mirrored, board.White) != sq.Mirror() {
		t.Fatalf("expected black perspective to equal sq.Mirror()")
	}
}

func TestFeatureIndexDistinguishesFriendAndEnemy(t *testing.T) {
	kingSq := board.E1
	whitePawn := board.NewPiece(board.Pawn, board.White)
	blackPawn := board.NewPiece(board.Pawn, board.Black)

	friendly := FeatureIndex(board.White, whitePawn, board.D4, kingSq)
	enemy := FeatureIndex(board.White, blackPawn, board.D4, kingSq)

	if friendly == enemy {
		t.Fatalf("expected friendly and enemy pieces on the same square to map to different features")
	}
}
