package nnue

import "github.com/hailam/chessengine/internal/board"

// Accumulator holds the feature-transformer output for both perspectives at
// one ply: White's view and Black's view, each NHidden0 wide. Evaluate
// concatenates side-to-move first, then the opponent.
type Accumulator struct {
	White    [NHidden0]int16
	Black    [NHidden0]int16
	Computed bool
}

// AccumulatorStack is a per-ply stack of accumulators, indexed the same way
// the search stack is: Push at the start of a ply, Pop on unmake.
type AccumulatorStack struct {
	stack [256]Accumulator
	top   int
}

// NewAccumulatorStack returns an empty stack positioned at ply 0.
func NewAccumulatorStack() *AccumulatorStack {
	return &AccumulatorStack{}
}

// Reset returns the stack to ply 0 without clearing the bottom entry's
// contents (the caller is expected to ComputeFull immediately after).
func (s *AccumulatorStack) Reset() {
	s.top = 0
}

// Current returns the accumulator for the current ply.
func (s *AccumulatorStack) Current() *Accumulator {
	return &s.stack[s.top]
}

// Push copies the current accumulator to the next ply and returns it,
// ready to be updated in place by the move about to be made.
func (s *AccumulatorStack) Push() *Accumulator {
	s.stack[s.top+1] = s.stack[s.top]
	s.top++
	return &s.stack[s.top]
}

// Pop discards the current ply's accumulator and returns to the previous
// one.
func (s *AccumulatorStack) Pop() {
	s.top--
}

// ComputeFull recomputes acc from scratch for both perspectives by summing
// the bias plus every active feature's column.
func (n *Network) ComputeFull(pos *board.Position, acc *Accumulator) {
	copy(acc.White[:], n.B0[:])
	copy(acc.Black[:], n.B0[:])
	for _, f := range ActiveFeatures(pos, board.White) {
		addColumn(&acc.White, n.W0[f])
	}
	for _, f := range ActiveFeatures(pos, board.Black) {
		addColumn(&acc.Black, n.W0[f])
	}
	acc.Computed = true
}

func addColumn(acc *[NHidden0]int16, col [NHidden0]int16) {
	for i := range acc {
		acc[i] += col[i]
	}
}

func subColumn(acc *[NHidden0]int16, col [NHidden0]int16) {
	for i := range acc {
		acc[i] -= col[i]
	}
}

// DirtyPiece describes one piece appearing or disappearing on a square as
// the result of a move, for incremental accumulator maintenance.
type DirtyPiece struct {
	Piece board.Piece
	Sq    board.Square
	Added bool // true = piece now present, false = piece removed
}

// ApplyDirty updates acc in place for perspective given the set of dirty
// pieces and the perspective's own (post-move) king square. If the
// perspective's own king moved to a different bucket, the caller must use
// ComputeFull instead; ApplyDirty does not detect that itself.
func (n *Network) ApplyDirty(perspective board.Color, acc *[NHidden0]int16, kingSq board.Square, dirty []DirtyPiece) {
	for _, d := range dirty {
		if d.Piece.Type() == board.King {
			continue // kings are not features
		}
		idx := FeatureIndex(perspective, d.Piece, d.Sq, kingSq)
		if d.Added {
			addColumn(acc, n.W0[idx])
		} else {
			subColumn(acc, n.W0[idx])
		}
	}
}

// UpdateIncremental produces the accumulator at the new top of the stack
// from the previous one, applying dirtyWhite/dirtyBlack to each
// perspective's half. kingSqWhite/kingSqBlack are the post-move king
// squares. This function never falls back to a full refresh: the caller
// decides beforehand (by comparing KingBucket of the old and new king
// squares) whether ComputeFull is required instead for a given side.
func (s *AccumulatorStack) UpdateIncremental(n *Network, kingSqWhite, kingSqBlack board.Square, dirtyWhite, dirtyBlack []DirtyPiece) {
	next := s.Push()
	n.ApplyDirty(board.White, &next.White, kingSqWhite, dirtyWhite)
	n.ApplyDirty(board.Black, &next.Black, kingSqBlack, dirtyBlack)
	next.Computed = true
}
