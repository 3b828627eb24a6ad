package search

import "github.com/hailam/chessengine/internal/board"

// seeValue gives SEE its own fixed material scale, independent of the NNUE
// evaluator's learned weights: exchange evaluation needs stable, hand-tuned
// values so that a king is always "infinitely" valuable relative to a queen.
var seeValue = [7]int{100, 320, 330, 500, 900, 20000, 0}

// See reports whether the side making move m on pos gains at least
// threshold centipawns of material from the resulting exchange sequence on
// m's destination square, using the standard swap algorithm with a
// least-valuable-attacker rule.
func See(pos *board.Position, m board.Move, threshold int) bool {
	from, to := m.From(), m.To()

	if m.IsCastling() {
		return 0 >= threshold
	}

	attacker := pos.PieceAt(from)
	if attacker == board.NoPiece {
		return false
	}

	var nextVictim board.PieceType
	var gain int
	if m.IsEnPassant() {
		nextVictim = board.Pawn
		gain = seeValue[board.Pawn]
	} else {
		victim := pos.PieceAt(to)
		if victim == board.NoPiece {
			// Non-capturing move: the only material change is nothing.
			return 0 >= threshold
		}
		nextVictim = victim.Type()
		gain = seeValue[nextVictim]
	}
	if m.IsPromotion() {
		gain += seeValue[m.Promotion()] - seeValue[board.Pawn]
		nextVictim = m.Promotion()
	}

	// Step 1: if even keeping the first capture for free doesn't reach the
	// threshold, no exchange on top can help.
	gain -= threshold
	if gain < 0 {
		return false
	}

	// Step 2: if giving up the initial attacker still leaves us ahead, we
	// don't need to simulate recaptures at all.
	attackerValue := seeValue[attacker.Type()]
	if m.IsPromotion() {
		attackerValue = seeValue[m.Promotion()]
	}
	gain -= attackerValue
	if gain >= 0 {
		return true
	}

	occupied := pos.AllOccupied &^ board.SquareBB(from)
	if m.IsEnPassant() {
		var capSq board.Square
		if pos.SideToMove == board.White {
			capSq = to - 8
		} else {
			capSq = to + 8
		}
		occupied &^= board.SquareBB(capSq)
	}

	side := pos.SideToMove.Other()
	occupied |= board.SquareBB(to)

	for {
		sq, piece := leastValuableAttacker(pos, to, side, occupied)
		if sq == board.NoSquare {
			break
		}
		occupied &^= board.SquareBB(sq)
		side = side.Other()

		gain = -gain - 1 - seeValue[piece.Type()]
		if gain >= 0 {
			// If the piece that just captured is a king and the opponent
			// still has an attacker on the square, the king can't have made
			// this capture (it would be recaptured into check by rule
			// elsewhere in the engine, but here it simply can't be the side
			// that "wins" the exchange), so the side flips back.
			if piece.Type() == board.King {
				opp, _ := leastValuableAttacker(pos, to, side, occupied)
				if opp != board.NoSquare {
					side = side.Other()
				}
			}
			break
		}
	}

	return side != pos.SideToMove
}

// leastValuableAttacker finds the cheapest piece of side attacking target,
// given occupied as the working occupancy (which may differ from pos's
// actual occupancy mid-exchange). Sliding attacker sets are recomputed
// against occupied on every call so that x-ray attacks revealed by removing
// a blocker are picked up on the next iteration.
func leastValuableAttacker(pos *board.Position, target board.Square, side board.Color, occupied board.Bitboard) (board.Square, board.Piece) {
	if a := pos.Pieces[side][board.Pawn] & board.PawnAttacks(target, side.Other()) & occupied; a != 0 {
		return a.LSB(), board.NewPiece(board.Pawn, side)
	}
	if a := pos.Pieces[side][board.Knight] & board.KnightAttacks(target) & occupied; a != 0 {
		return a.LSB(), board.NewPiece(board.Knight, side)
	}
	bishopAtk := board.BishopAttacks(target, occupied)
	if a := pos.Pieces[side][board.Bishop] & bishopAtk & occupied; a != 0 {
		return a.LSB(), board.NewPiece(board.Bishop, side)
	}
	rookAtk := board.RookAttacks(target, occupied)
	if a := pos.Pieces[side][board.Rook] & rookAtk & occupied; a != 0 {
		return a.LSB(), board.NewPiece(board.Rook, side)
	}
	if a := pos.Pieces[side][board.Queen] & (bishopAtk | rookAtk) & occupied; a != 0 {
		return a.LSB(), board.NewPiece(board.Queen, side)
	}
	if a := pos.Pieces[side][board.King] & board.KingAttacks(target) & occupied; a != 0 {
		return a.LSB(), board.NewPiece(board.King, side)
	}
	return board.NoSquare, board.NoPiece
}
