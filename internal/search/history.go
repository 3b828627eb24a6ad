package search

import "github.com/hailam/chessengine/internal/board"

// gravity applies the saturating history update v <- v + b - v*|b|/HistMax,
// which pulls v toward +-HistMax asymptotically rather than clamping hard.
func gravity(v int16, bonus int) int16 {
	b := bonus
	if b > HistMax {
		b = HistMax
	}
	if b < -HistMax {
		b = -HistMax
	}
	delta := b - int(v)*abs(b)/HistMax
	nv := int(v) + delta
	if nv > HistMax {
		nv = HistMax
	}
	if nv < -HistMax {
		nv = -HistMax
	}
	return int16(nv)
}

func clampBonus(depth, scale, offset, max int) int {
	b := depth*scale + offset
	if b > max {
		b = max
	}
	if b < -max {
		b = -max
	}
	return b
}

func quietBonus(depth int) int {
	return clampBonus(depth, HistBonusDepthScale, HistBonusOffset, HistBonusMax)
}

func quietPenalty(depth int) int {
	return -clampBonus(depth, HistPenaltyDepthScale, HistPenaltyOffset, HistPenaltyMax)
}

func noisyBonus(depth int) int {
	return clampBonus(depth, CaptHistBonusDepthScale, CaptHistBonusOffset, CaptHistBonusMax)
}

func noisyPenalty(depth int) int {
	return -clampBonus(depth, CaptHistPenaltyDepthScale, CaptHistPenaltyOffset, CaptHistPenaltyMax)
}

// History holds the butterfly and capture-history tables plus killer-move
// slots for one search. It is owned exclusively by the Engine that created
// it and is reset at the start of every top-level GetMove call.
type History struct {
	butterfly [2][64][64]int16
	capture   [64][64][7]int16
	killers   [MaxPly][2]board.Move
}

// NewHistory allocates a zeroed History.
func NewHistory() *History {
	return &History{}
}

// Clear zeros every table and killer slot.
func (h *History) Clear() {
	*h = History{}
}

func (h *History) quietScore(us board.Color, m board.Move) int {
	return int(h.butterfly[us][m.From()][m.To()])
}

func (h *History) captureScore(m board.Move, captured board.PieceType) int {
	return int(h.capture[m.From()][m.To()][captured])
}

// UpdateQuiet applies a gravity bonus to the cutoff move and an equal-shaped
// penalty to every quiet move tried earlier at this node.
func (h *History) UpdateQuiet(us board.Color, cutoff board.Move, tried []board.Move, depth int) {
	bonus := quietBonus(depth)
	penalty := quietPenalty(depth)
	t := &h.butterfly[us]
	for _, m := range tried {
		if m == cutoff {
			continue
		}
		t[m.From()][m.To()] = gravity(t[m.From()][m.To()], penalty)
	}
	t[cutoff.From()][cutoff.To()] = gravity(t[cutoff.From()][cutoff.To()], bonus)
}

// UpdateCapture mirrors UpdateQuiet for noisy (capture/promotion) moves,
// keyed additionally by the captured piece type.
func (h *History) UpdateCapture(cutoff board.Move, cutoffVictim board.PieceType, tried []board.Move, victims []board.PieceType, depth int) {
	bonus := noisyBonus(depth)
	penalty := noisyPenalty(depth)
	for i, m := range tried {
		if m == cutoff {
			continue
		}
		v := victims[i]
		h.capture[m.From()][m.To()][v] = gravity(h.capture[m.From()][m.To()][v], penalty)
	}
	h.capture[cutoff.From()][cutoff.To()][cutoffVictim] = gravity(h.capture[cutoff.From()][cutoff.To()][cutoffVictim], bonus)
}

// UpdateKiller records m as the most recent killer at ply, preserving the
// previous killer in the second slot unless m is already there.
func (h *History) UpdateKiller(ply int, m board.Move) {
	if ply >= MaxPly {
		return
	}
	if h.killers[ply][0] == m {
		return
	}
	h.killers[ply][1] = h.killers[ply][0]
	h.killers[ply][0] = m
}

func (h *History) killerMoves(ply int) [2]board.Move {
	if ply >= MaxPly {
		return [2]board.Move{}
	}
	return h.killers[ply]
}
