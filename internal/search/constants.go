package search

// MaxPly bounds every per-ply array (search stack, killers, PV, accumulators).
// No legal chess game can reach this depth within the node budgets this
// engine is built for; it exists purely as a fixed-size array bound.
const MaxPly = 128

// MateScore is the score assigned to a position where the side to move is
// checkmated at ply 0. Scores within MateScore-MaxPly of this value encode
// "mate in N" and are adjusted on transposition-table read/write (see tt.go).
const MateScore = 32000

// MaxExtensions bounds the total number of search extensions (check,
// one-reply, passed-pawn-push) granted within one iterative-deepening
// iteration: the counter is shared by the whole tree and reset per depth.
// Without a cap, chained extensions can blow up the effective depth and
// starve the time budget.
const MaxExtensions = 16

// AspirationWindow is the initial half-width (centipawns) of the window
// placed around the previous iteration's score at depth >= 2.
const AspirationWindow = 50

// PVStableCount is how many consecutive iterations must agree on the root
// move, once the score clears MinSkipEval, before GetMove may return early.
const PVStableCount = 8

// MinSkipEval is the minimum |score| (centipawns) required before PV
// stability is allowed to end the search early. Below this the position is
// assumed close enough that an extra iteration is worth the time.
const MinSkipEval = 40

// ReductionFrom is the minimum move index (0-based, counting every move
// searched at the node, the TT move included) at which late-move reduction
// may apply.
const ReductionFrom = 3

// MinLMRDepth is the minimum remaining depth for LMR to apply at all.
const MinLMRDepth = 3

// QuiesceSeeMargin is the SEE threshold (centipawns) below which a
// quiescence capture is pruned when the side to move is not in check.
const QuiesceSeeMargin = -12

// HistMax bounds every history/capture-history entry; see the gravity
// update in history.go.
const HistMax = 16384

// History bonus/penalty coefficients, shared shape for quiet and noisy moves.
const (
	HistBonusDepthScale   = 300
	HistBonusOffset       = -300
	HistBonusMax          = 2500

	HistPenaltyDepthScale = 300
	HistPenaltyOffset     = -300
	HistPenaltyMax        = 2500

	CaptHistBonusDepthScale   = 300
	CaptHistBonusOffset       = -300
	CaptHistBonusMax          = 2500

	CaptHistPenaltyDepthScale = 300
	CaptHistPenaltyOffset     = -300
	CaptHistPenaltyMax        = 2500
)

// Move-picker SEE-threshold shaping: goodNoisySeeBase - score*goodNoisySeeScale/64.
const (
	GoodNoisySeeBase  = -20
	GoodNoisySeeScale = 1
)

// Time-manager tunables (percent of clock unless noted).
const (
	HardTimeFactor = 52
	SoftTimeFactor = 22
	IncFactor      = 75
	DefaultMoveOverhead = 30
)
