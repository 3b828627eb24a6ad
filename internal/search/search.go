// Package search implements the engine's core: a single-threaded
// iterative-deepening alpha-beta search over a board.Position, backed by a
// transposition table, staged move ordering, and an NNUE evaluator.
package search

import (
	"fmt"
	"sync/atomic"

	"github.com/hailam/chessengine/internal/board"
	"github.com/hailam/chessengine/internal/nnue"
)

// Result is what a single GetMove (or Ponder) call produces.
type Result struct {
	Move   board.Move
	Score  int
	IsMate bool
	Nodes  int64
	Depth  int
	PV     []board.Move
}

// InfoFunc receives one progress report per completed iteration, formatted
// for the UCI "info" line.
type InfoFunc func(depth int, score int, isMate bool, nodes int64, elapsedMS int64, pv []board.Move, hashFull int)

type pvTable struct {
	length [MaxPly]int
	moves  [MaxPly][MaxPly]board.Move
}

func (pv *pvTable) update(ply int, m board.Move) {
	pv.moves[ply][ply] = m
	for j := ply + 1; j < pv.length[ply+1]; j++ {
		pv.moves[ply][j] = pv.moves[ply+1][j]
	}
	pv.length[ply] = pv.length[ply+1]
}

func (pv *pvTable) line() []board.Move {
	out := make([]board.Move, pv.length[0])
	copy(out, pv.moves[0][:pv.length[0]])
	return out
}

// Engine owns one search's worth of mutable state: the transposition table
// (which outlives individual searches), history/killers, the NNUE
// evaluator, and the current root position. Only one GetMove or Ponder call
// may be in flight at a time; see the concurrency contract in the package
// doc.
type Engine struct {
	TT   *TT
	Hist *History
	Eval *nnue.Evaluator

	pos *board.Position

	// repetition history of Zobrist hashes for every position reached in
	// the actual game so far, oldest first. Used to detect repetitions
	// that span outside the current search tree.
	gameHistory []uint64

	undoStack [MaxPly]board.UndoInfo
	pv        pvTable

	tm    *TimeManager
	halt  *atomic.Bool
	nodes int64

	extensionsUsed int

	onInfo InfoFunc
}

// NewEngine creates an engine with a TT of the given size (megabytes).
func NewEngine(ttSizeMB int) *Engine {
	return &Engine{
		TT:   NewTT(ttSizeMB),
		Hist: NewHistory(),
	}
}

// SetEvaluator installs the NNUE evaluator used for leaf scoring.
func (e *Engine) SetEvaluator(ev *nnue.Evaluator) {
	e.Eval = ev
}

// SetOnInfo installs the callback invoked after every completed iteration.
func (e *Engine) SetOnInfo(f InfoFunc) {
	e.onInfo = f
}

// SetPosition sets the root position for the next GetMove/Ponder call and
// refreshes the NNUE accumulator for it.
func (e *Engine) SetPosition(pos *board.Position, history []uint64) {
	e.pos = pos
	e.gameHistory = append([]uint64(nil), history...)
	if e.Eval != nil {
		e.Eval.Reset()
		e.Eval.Net.ComputeFull(e.pos, e.Eval.Stack.Current())
	}
}

// Reset clears the TT, history, and killer tables.
func (e *Engine) Reset() {
	e.TT.Clear()
	e.Hist.Clear()
}

// GetMove performs iterative-deepening search from the root position and
// returns the best move found, honoring limits and halt.
func (e *Engine) GetMove(limits Limits, halt *atomic.Bool) Result {
	e.Hist.Clear()
	e.tm = NewTimeManager(limits, e.pos.SideToMove == board.White)
	e.halt = halt
	e.nodes = 0
	e.extensionsUsed = 0

	var best Result
	bestMove := board.NoMove
	score := 0
	stableCount := 0

	maxDepth := e.tm.MaxDepth()
	if maxDepth >= MaxPly {
		maxDepth = MaxPly - 1
	}

	for depth := 1; depth <= maxDepth; depth++ {
		e.extensionsUsed = 0
		alpha, beta := -MateScore, MateScore
		if depth >= 2 {
			alpha = score - AspirationWindow
			beta = score + AspirationWindow
		}

		var s int
		for {
			s = e.negamax(depth, 0, alpha, beta, false)
			if e.halt.Load() {
				break
			}
			if s <= alpha {
				alpha = -MateScore
				continue
			}
			if s >= beta {
				beta = MateScore
				continue
			}
			break
		}

		if e.halt.Load() && depth > 1 {
			break
		}

		score = s
		if e.pv.length[0] > 0 {
			newBest := e.pv.moves[0][0]
			if newBest == bestMove {
				stableCount++
			} else {
				stableCount = 0
			}
			bestMove = newBest
		}

		isMate := isMateScore(score)
		best = Result{
			Move:   bestMove,
			Score:  score,
			IsMate: isMate,
			Nodes:  e.nodes,
			Depth:  depth,
			PV:     e.pv.line(),
		}

		if e.onInfo != nil {
			e.onInfo(depth, score, isMate, e.nodes, e.tm.Elapsed(), best.PV, e.TT.HashFull())
		}

		if isMate {
			break
		}
		if e.tm.IsSoftLimitReached(depth, score, stableCount) {
			break
		}
	}

	if best.Move == board.NoMove {
		ml := e.pos.GenerateLegalMoves()
		if ml.Len() > 0 {
			best.Move = ml.Get(0)
		}
	}
	return best
}

// Ponder searches from the position the engine predicts the opponent will
// reach, following the current TT's stored best move at the root. Results
// are written into the TT so a subsequent GetMove can reuse them.
func (e *Engine) Ponder(halt *atomic.Bool) Result {
	entry, ok := e.TT.Probe(e.pos.Hash, 0)
	if !ok || entry.Move == 0 {
		return Result{}
	}
	predicted := board.Move(entry.Move)
	if !e.pos.IsLegal(predicted) {
		return Result{}
	}
	undo := e.pos.MakeMove(predicted)
	if e.Eval != nil {
		e.Eval.Stack.Push()
	}
	defer func() {
		e.pos.UnmakeMove(predicted, undo)
		if e.Eval != nil {
			e.Eval.Stack.Pop()
		}
	}()

	limits := Limits{Infinite: true}
	return e.GetMove(limits, halt)
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// isRepetition reports whether the current position's hash has occurred
// earlier in either the in-search move stack or the inherited game history.
func (e *Engine) isRepetition(ply int) bool {
	h := e.pos.Hash
	count := 0
	for _, past := range e.gameHistory {
		if past == h {
			count++
		}
	}
	// Search-tree history is implicit via the position's own Hash field at
	// each ply; since we mutate pos in place we recover it by replaying the
	// undo stack's stored hashes.
	for p := 0; p < ply; p++ {
		if e.undoStack[p].Hash == h {
			count++
		}
	}
	return count > 0
}

func (e *Engine) checkHalt() bool {
	if e.nodes&2047 == 0 {
		return e.tm.IsHardLimitReached(e.halt)
	}
	return e.halt.Load()
}

// negamax implements alpha-beta search with fail-soft bounds. See
// SPEC_FULL.md §4.3.3 for the exact order of operations this follows.
func (e *Engine) negamax(depth, ply int, alpha, beta int, cutNode bool) int {
	e.pv.length[ply] = ply

	if e.checkHalt() {
		return 0
	}
	e.nodes++
	e.tm.AddNode()

	if ply > 0 {
		if e.isRepetition(ply) || e.pos.HalfMoveClock >= 100 {
			return 0
		}
		alpha = max(alpha, -MateScore+ply)
		beta = min(beta, MateScore-ply)
		if alpha >= beta {
			return alpha
		}
	}

	var ttMove board.Move
	ttHit, found := e.TT.Probe(e.pos.Hash, ply)
	if found {
		ttMove = board.Move(ttHit.Move)
		if ttHit.Depth >= depth {
			switch ttHit.Flag {
			case TTExact:
				return ttHit.Score
			case TTLower:
				if ttHit.Score > alpha {
					alpha = ttHit.Score
				}
			case TTUpper:
				if ttHit.Score < beta {
					beta = ttHit.Score
				}
			}
			if alpha >= beta {
				return ttHit.Score
			}
		}
	}

	if e.pos.IsInsufficientMaterial() {
		return 0
	}

	inCheck := e.pos.InCheck()

	moves := e.pos.GenerateLegalMoves()
	if moves.Len() == 0 {
		if inCheck {
			return -MateScore + ply
		}
		return 0
	}

	if depth <= 0 || ply >= MaxPly-1 {
		return e.quiescence(ply, alpha, beta)
	}

	oneReply := moves.Len() == 1

	mp := NewMovePicker(e.pos, e.Hist, ply, ttMove)

	bestScore := -MateScore
	bestMove := board.NoMove
	flag := TTUpper
	moveIndex := 0

	var triedQuiet []board.Move
	var triedNoisy []board.Move
	var triedNoisyVictims []board.PieceType

	for {
		m, ok := mp.Next()
		if !ok {
			break
		}

		isCapture := m.IsCapture(e.pos)
		isPromo := m.IsPromotion()
		isQuiet := !isCapture && !isPromo

		var victim board.PieceType
		if isCapture {
			if m.IsEnPassant() {
				victim = board.Pawn
			} else {
				victim = e.pos.PieceAt(m.To()).Type()
			}
		}

		ext := 0
		if oneReply && e.extensionsUsed < MaxExtensions {
			ext = 1
			e.extensionsUsed++
		}

		e.undoStack[ply] = e.pos.MakeMove(m)
		if e.Eval != nil {
			e.Eval.Stack.Push()
			e.Eval.Net.ComputeFull(e.pos, e.Eval.Stack.Current())
		}

		if !e.undoStack[ply].Valid {
			e.pos.UnmakeMove(m, e.undoStack[ply])
			if e.Eval != nil {
				e.Eval.Stack.Pop()
			}
			continue
		}

		if ext == 0 && e.extensionsUsed < MaxExtensions {
			if e.pos.InCheck() {
				ext = 1
				e.extensionsUsed++
			} else if isPawnPushTo7th(m, e.pos) {
				ext = 1
				e.extensionsUsed++
			}
		}

		var score int
		childDepth := depth - 1 + ext
		if ext == 0 && depth >= MinLMRDepth && moveIndex >= ReductionFrom && isQuiet {
			reduction := lmrReduction(depth, moveIndex)
			reducedDepth := childDepth - reduction
			if reducedDepth < 1 {
				reducedDepth = 1
			}
			score = -e.negamax(reducedDepth, ply+1, -alpha-1, -alpha, true)
			if score > alpha {
				score = -e.negamax(childDepth, ply+1, -beta, -alpha, false)
			}
		} else {
			score = -e.negamax(childDepth, ply+1, -beta, -alpha, false)
		}

		e.pos.UnmakeMove(m, e.undoStack[ply])
		if e.Eval != nil {
			e.Eval.Stack.Pop()
		}

		if e.halt.Load() {
			return 0
		}

		if score >= beta {
			if isQuiet {
				e.Hist.UpdateKiller(ply, m)
				e.Hist.UpdateQuiet(e.pos.SideToMove, m, triedQuiet, depth)
			} else {
				e.Hist.UpdateCapture(m, victim, triedNoisy, triedNoisyVictims, depth)
			}
			e.TT.Store(e.pos.Hash, beta, uint16(m), depth, TTLower, ply)
			return beta
		}

		if score > bestScore {
			bestScore = score
			bestMove = m
			if score > alpha {
				alpha = score
				flag = TTExact
				e.pv.update(ply, m)
			}
		}

		if isQuiet {
			triedQuiet = append(triedQuiet, m)
		} else {
			triedNoisy = append(triedNoisy, m)
			triedNoisyVictims = append(triedNoisyVictims, victim)
		}
		moveIndex++
	}

	e.TT.Store(e.pos.Hash, bestScore, uint16(bestMove), depth, flag, ply)
	return bestScore
}

// isPawnPushTo7th reports whether m pushes a pawn to its relative 7th rank
// (one step from promotion), used as a search-extension trigger.
func isPawnPushTo7th(m board.Move, pos *board.Position) bool {
	moved := pos.PieceAt(m.To())
	if moved.Type() != board.Pawn {
		return false
	}
	return m.To().RelativeRank(moved.Color()) == 6
}

var lmrTable [MaxPly][64]int

func init() {
	for d := 1; d < MaxPly; d++ {
		for mi := 1; mi < 64; mi++ {
			lmrTable[d][mi] = int(0.77 + logf(float64(d))*logf(float64(mi))*0.5)
		}
	}
}

// logf is a tiny natural-log helper so the LMR table's init doesn't need to
// import math solely for this; it keeps the reduction formula's shape
// (Stockfish's classic log(d)*log(n) curve) without extra precision.
func logf(x float64) float64 {
	if x <= 1 {
		return 0
	}
	// Fast, adequate-precision natural log via repeated halving; the LMR
	// table only needs a smooth monotone curve, not exact values.
	n := 0.0
	for x > 2 {
		x /= 2
		n++
	}
	return n*0.6931471805599453 + (x - 1)
}

func lmrReduction(depth, moveIndex int) int {
	d := depth
	mi := moveIndex
	if d >= MaxPly {
		d = MaxPly - 1
	}
	if mi >= 64 {
		mi = 63
	}
	r := lmrTable[d][mi]
	if r < 1 {
		r = 1
	}
	return r
}

// quiescence searches captures and promotions only, from ply, to avoid the
// horizon effect at the end of the main search.
func (e *Engine) quiescence(ply, alpha, beta int) int {
	if e.checkHalt() {
		return 0
	}
	e.nodes++
	e.tm.AddNode()

	standPat := e.evaluate()
	damp := 100 - e.pos.HalfMoveClock
	if damp < 0 {
		damp = 0
	}
	standPat = standPat * damp / 100

	if standPat >= beta {
		return beta
	}
	if standPat > alpha {
		alpha = standPat
	}
	if ply >= MaxPly-1 {
		return alpha
	}

	inCheck := e.pos.InCheck()
	mp := NewQuiescencePicker(e.pos, e.Hist)

	for {
		m, ok := mp.Next()
		if !ok {
			break
		}

		if !inCheck && !See(e.pos, m, QuiesceSeeMargin) {
			continue
		}

		undo := e.pos.MakeMove(m)
		if e.Eval != nil {
			e.Eval.Stack.Push()
			e.Eval.Net.ComputeFull(e.pos, e.Eval.Stack.Current())
		}
		if !undo.Valid {
			e.pos.UnmakeMove(m, undo)
			if e.Eval != nil {
				e.Eval.Stack.Pop()
			}
			continue
		}

		score := -e.quiescence(ply+1, -beta, -alpha)

		e.pos.UnmakeMove(m, undo)
		if e.Eval != nil {
			e.Eval.Stack.Pop()
		}

		if e.halt.Load() {
			return 0
		}

		if score >= beta {
			return beta
		}
		if score > alpha {
			alpha = score
		}
	}

	return alpha
}

// evaluate returns the NNUE score for the current position from the side
// to move's perspective. Falls back to material count if no evaluator was
// installed (useful for tests that exercise search logic in isolation).
func (e *Engine) evaluate() int {
	if e.Eval == nil {
		m := e.pos.Material()
		if e.pos.SideToMove == board.Black {
			m = -m
		}
		return m
	}
	stm := 0
	if e.pos.SideToMove == board.Black {
		stm = 1
	}
	return int(e.Eval.Net.Forward(e.Eval.Stack.Current(), stm))
}

// String renders a Result for debug logging.
func (r Result) String() string {
	return fmt.Sprintf("move=%s score=%d depth=%d nodes=%d", r.Move, r.Score, r.Depth, r.Nodes)
}
