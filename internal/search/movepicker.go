package search

import "github.com/hailam/chessengine/internal/board"

type pickStage int

const (
	stageTTMove pickStage = iota
	stageGenNoisy
	stageGoodNoisy
	stageKiller
	stageGenQuiet
	stageQuiet
	stageBadNoisy
	stageDone
)

type scoredMove struct {
	m     board.Move
	score int
}

// MovePicker yields legal moves for one search node in stages: the TT move
// first, then winning captures (by SEE), then killers, then quiets ordered
// by history, then losing captures last.
type MovePicker struct {
	pos     *board.Position
	hist    *History
	ply     int
	ttMove  board.Move
	killers [2]board.Move

	stage pickStage

	noisy    []scoredMove
	goodIdx  int
	bad      []scoredMove
	badIdx   int
	quiet    []scoredMove
	quietIdx int
	killerIdx int

	skipQuiets bool
	inQuiescence bool

	seenTT bool
}

// NewMovePicker creates a picker for a normal search node.
func NewMovePicker(pos *board.Position, hist *History, ply int, ttMove board.Move) *MovePicker {
	return &MovePicker{
		pos:     pos,
		hist:    hist,
		ply:     ply,
		ttMove:  ttMove,
		killers: hist.killerMoves(ply),
		stage:   stageTTMove,
	}
}

// NewQuiescencePicker creates a picker restricted to noisy moves only, used
// by quiescence search.
func NewQuiescencePicker(pos *board.Position, hist *History) *MovePicker {
	return &MovePicker{
		pos:          pos,
		hist:         hist,
		ply:          -1,
		stage:        stageGenNoisy,
		inQuiescence: true,
	}
}

// SkipQuiets disables the killer/quiet stages, used when the caller already
// knows quiet moves cannot help (e.g. a late-move-count prune point).
func (mp *MovePicker) SkipQuiets() {
	mp.skipQuiets = true
}

func (mp *MovePicker) legalTT() bool {
	if mp.ttMove == board.NoMove {
		return false
	}
	return mp.isGeneratedLegal(mp.ttMove)
}

// isGeneratedLegal reports whether m is one of the position's legal moves.
// Position.IsLegal alone only checks king safety, so a stored move from
// another position (a TT key collision or a sibling's killer) could pass it.
func (mp *MovePicker) isGeneratedLegal(m board.Move) bool {
	legal := mp.pos.GenerateLegalMoves()
	for i := 0; i < legal.Len(); i++ {
		if legal.Get(i) == m {
			return true
		}
	}
	return false
}

// Next returns the next move to try, or (NoMove, false) when exhausted.
func (mp *MovePicker) Next() (board.Move, bool) {
	for {
		switch mp.stage {
		case stageTTMove:
			mp.stage = stageGenNoisy
			if mp.legalTT() {
				mp.seenTT = true
				return mp.ttMove, true
			}

		case stageGenNoisy:
			mp.genNoisy()
			if mp.inQuiescence {
				mp.stage = stageBadNoisy // reuse bad-noisy stage as the single noisy drain
				mp.bad = mp.noisy
				mp.noisy = nil
			} else {
				mp.stage = stageGoodNoisy
			}

		case stageGoodNoisy:
			if mv, ok := mp.nextGoodNoisy(); ok {
				return mv, true
			}
			if mp.skipQuiets {
				mp.stage = stageBadNoisy
			} else {
				mp.stage = stageKiller
			}

		case stageKiller:
			if mv, ok := mp.nextKiller(); ok {
				return mv, true
			}
			if mp.skipQuiets {
				mp.stage = stageBadNoisy
			} else {
				mp.stage = stageGenQuiet
			}

		case stageGenQuiet:
			mp.genQuiet()
			mp.stage = stageQuiet

		case stageQuiet:
			if mv, ok := mp.nextQuiet(); ok {
				return mv, true
			}
			mp.stage = stageBadNoisy

		case stageBadNoisy:
			if mv, ok := mp.nextBadNoisy(); ok {
				return mv, true
			}
			mp.stage = stageDone

		case stageDone:
			return board.NoMove, false
		}
	}
}

func (mp *MovePicker) isDup(m board.Move) bool {
	if mp.seenTT && m == mp.ttMove {
		return true
	}
	return false
}

func (mp *MovePicker) genNoisy() {
	ml := mp.pos.GenerateCaptures()
	mp.noisy = make([]scoredMove, 0, ml.Len())
	for i := 0; i < ml.Len(); i++ {
		m := ml.Get(i)
		if mp.isDup(m) {
			continue
		}
		mp.noisy = append(mp.noisy, scoredMove{m, mp.scoreNoisy(m)})
	}
}

func (mp *MovePicker) scoreNoisy(m board.Move) int {
	var victim board.PieceType
	if m.IsEnPassant() {
		victim = board.Pawn
	} else {
		victim = mp.pos.PieceAt(m.To()).Type()
		if victim == board.NoPieceType {
			victim = board.Pawn // shouldn't happen for a generated capture
		}
	}
	score := board.PieceValue[victim]*16 + mp.hist.captureScore(m, victim)
	if m.IsPromotion() {
		score += board.PieceValue[m.Promotion()] - board.PieceValue[board.Pawn]
	}
	return score
}

// nextGoodNoisy selection-sorts the remaining noisy moves and, for each,
// tests a dynamic SEE threshold; passers are yielded, failers are stashed
// for the bad-noisy drain at the end.
func (mp *MovePicker) nextGoodNoisy() (board.Move, bool) {
	for mp.goodIdx < len(mp.noisy) {
		best := mp.goodIdx
		for j := mp.goodIdx + 1; j < len(mp.noisy); j++ {
			if mp.noisy[j].score > mp.noisy[best].score {
				best = j
			}
		}
		mp.noisy[mp.goodIdx], mp.noisy[best] = mp.noisy[best], mp.noisy[mp.goodIdx]
		cand := mp.noisy[mp.goodIdx]
		mp.goodIdx++

		threshold := GoodNoisySeeBase - cand.score*GoodNoisySeeScale/64
		if See(mp.pos, cand.m, threshold) {
			return cand.m, true
		}
		mp.bad = append(mp.bad, cand)
	}
	return board.NoMove, false
}

func (mp *MovePicker) nextKiller() (board.Move, bool) {
	for mp.killerIdx < 2 {
		k := mp.killers[mp.killerIdx]
		mp.killerIdx++
		if k == board.NoMove || k == mp.ttMove {
			continue
		}
		if !mp.isGeneratedLegal(k) {
			continue
		}
		if k.IsCapture(mp.pos) || k.IsPromotion() {
			continue // killers are quiet by construction
		}
		return k, true
	}
	return board.NoMove, false
}

func (mp *MovePicker) genQuiet() {
	ml := mp.pos.GenerateLegalMoves()
	mp.quiet = make([]scoredMove, 0, ml.Len())
	us := mp.pos.SideToMove
	for i := 0; i < ml.Len(); i++ {
		m := ml.Get(i)
		if m.IsCapture(mp.pos) || m.IsPromotion() {
			continue
		}
		if mp.isDup(m) || m == mp.killers[0] || m == mp.killers[1] {
			continue
		}
		mp.quiet = append(mp.quiet, scoredMove{m, mp.hist.quietScore(us, m)})
	}
}

func (mp *MovePicker) nextQuiet() (board.Move, bool) {
	if mp.quietIdx >= len(mp.quiet) {
		return board.NoMove, false
	}
	best := mp.quietIdx
	for j := mp.quietIdx + 1; j < len(mp.quiet); j++ {
		if mp.quiet[j].score > mp.quiet[best].score {
			best = j
		}
	}
	mp.quiet[mp.quietIdx], mp.quiet[best] = mp.quiet[best], mp.quiet[mp.quietIdx]
	m := mp.quiet[mp.quietIdx].m
	mp.quietIdx++
	return m, true
}

func (mp *MovePicker) nextBadNoisy() (board.Move, bool) {
	for mp.badIdx < len(mp.bad) {
		m := mp.bad[mp.badIdx].m
		mp.badIdx++
		if mp.isDup(m) {
			continue
		}
		return m, true
	}
	return board.NoMove, false
}
