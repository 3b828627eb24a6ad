// Package nnue implements a quantized, incrementally-updated neural network
// position evaluator (NNUE) in the HalfKP style: each side's perspective
// feeds a feature transformer keyed on (friendly king bucket, piece,
// square), and three further integer affine layers produce a single
// centipawn score.
package nnue

const (
	// NumSquares is the board size.
	NumSquares = 64
	// NumPieceTypes excludes kings: a king's own square is encoded via the
	// perspective's king bucket, not as a feature plane.
	NumPieceTypes = 10
	// NumKingBuckets partitions king squares into perspective buckets. This
	// network uses a single bucket (no king-bucketing), matching the
	// reference network it was distilled from; KingBucket is still a named
	// function so a bucketed network only requires changing its body.
	NumKingBuckets = 1

	// FeatureCount is the input dimension of the feature transformer.
	FeatureCount = NumKingBuckets * NumPieceTypes * NumSquares

	// NHidden0 is the feature-transformer width per perspective. The
	// concatenated input to layer 1 is 2*NHidden0 wide (side-to-move first).
	NHidden0 = 256
	NHidden1 = 32
	NHidden2 = 32

	// Quantization shifts applied after each integer affine transform.
	L0QuantShift = 0 // feature transformer output is already at native scale
	L1QuantShift = 6
	L2QuantShift = 6
	L3QuantShift = 6

	// ClippedReLU bounds for the feature-transformer output and hidden
	// layers.
	ReLUMax0 = 127
	ReLUMax1 = 127
	ReLUMax2 = 127

	// OutputScale converts the final quantized scalar to centipawns.
	OutputScale = 600
)

// ClippedReLU clamps x to [0, max].
func ClippedReLU(x, max int32) int32 {
	if x < 0 {
		return 0
	}
	if x > max {
		return max
	}
	return x
}

// Evaluator bundles a loaded Network with the per-ply accumulator stack
// needed to evaluate positions incrementally during search.
type Evaluator struct {
	Net   *Network
	Stack *AccumulatorStack
}

// NewEvaluator wraps net with a fresh, empty accumulator stack.
func NewEvaluator(net *Network) *Evaluator {
	return &Evaluator{Net: net, Stack: NewAccumulatorStack()}
}

// Reset drops all pushed accumulators, returning to ply 0.
func (e *Evaluator) Reset() {
	e.Stack.Reset()
}
