package nnue

import "github.com/hailam/chessengine/internal/board"

// KingBucket maps a king's square, as seen from its own perspective, to a
// bucket index in [0, NumKingBuckets). This network uses a single bucket;
// the function exists so a future bucketed network only needs a new body.
func KingBucket(kingSq board.Square) int {
	return 0
}

// perspectiveSquare mirrors sq vertically when the perspective side is
// Black, so that both perspectives share one symmetric feature space.
func perspectiveSquare(sq board.Square, perspective board.Color) board.Square {
	if perspective == board.White {
		return sq
	}
	return sq.Mirror()
}

// pieceIndex maps a (perspective, piece) pair to one of the NumPieceTypes
// planes: the five non-king piece types, doubled for "friendly" vs "enemy"
// relative to perspective.
func pieceIndex(perspective board.Color, piece board.Piece) int {
	pt := piece.Type()
	var relation int // 0 = friendly, 1 = enemy
	if piece.Color() != perspective {
		relation = 1
	}
	return relation*5 + int(pt)
}

// FeatureIndex computes the feature-transformer column for piece at sq, as
// seen from perspective with the perspective's own king on kingSq. Kings
// never appear as a feature themselves (they select the king bucket).
func FeatureIndex(perspective board.Color, piece board.Piece, sq board.Square, kingSq board.Square) int {
	bucket := KingBucket(perspectiveSquare(kingSq, perspective))
	pIdx := pieceIndex(perspective, piece)
	psq := int(perspectiveSquare(sq, perspective))
	return bucket*NumPieceTypes*NumSquares + pIdx*NumSquares + psq
}

// ActiveFeatures returns, for perspective, the feature indices of every
// non-king piece currently on the board.
func ActiveFeatures(pos *board.Position, perspective board.Color) []int {
	kingSq := pos.KingSquare[perspective]
	feats := make([]int, 0, 32)
	for c := board.White; c <= board.Black; c++ {
		for pt := board.Pawn; pt < board.King; pt++ {
			bb := pos.Pieces[c][pt]
			for bb != 0 {
				sq := bb.PopLSB()
				piece := board.NewPiece(pt, c)
				feats = append(feats, FeatureIndex(perspective, piece, sq, kingSq))
			}
		}
	}
	return feats
}
