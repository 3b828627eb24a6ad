package search

import (
	"sync/atomic"
	"time"
)

// Limits describes a single GetMove call's time/node/depth budget, mirroring
// the fields a UCI "go" command can supply.
type Limits struct {
	WTime, BTime     int // milliseconds remaining, 0 if not supplied
	WInc, BInc       int
	MovesToGo        int
	MoveTime         int // explicit per-move time override, ms; 0 = not set
	Depth            int // 0 = unset
	Nodes            int64 // 0 = unset
	Infinite         bool
	MoveOverhead     int
	SoftNodes        bool
	SoftHardMult     int
}

// TimeManager governs when a single GetMove call must return, distinguishing
// a soft limit (checked only between iterations) from a hard limit (checked
// at every node).
type TimeManager struct {
	start time.Time

	hardTimeMS int64
	softTimeMS int64
	hardNodes  int64
	softNodes  int64
	maxDepth   int
	infinite   bool

	nodes atomic.Int64
}

// NewTimeManager derives hard/soft budgets from limits for the side to move.
func NewTimeManager(limits Limits, us0 bool) *TimeManager {
	tm := &TimeManager{start: time.Now()}

	overhead := int64(limits.MoveOverhead)
	if overhead == 0 {
		overhead = DefaultMoveOverhead
	}

	myTime, myInc := limits.WTime, limits.WInc
	if !us0 {
		myTime, myInc = limits.BTime, limits.BInc
	}

	switch {
	case limits.Infinite:
		tm.infinite = true
		tm.hardTimeMS = 1 << 62
		tm.softTimeMS = 1 << 62

	case limits.MoveTime > 0:
		tm.hardTimeMS = int64(limits.MoveTime)
		tm.softTimeMS = 1 << 62 // soft disabled, per spec movetime override

	case myTime > 0:
		t := int64(myTime)
		inc := int64(myInc)
		hard := t*HardTimeFactor/100 + inc*IncFactor/100 - overhead
		soft := t*SoftTimeFactor/100 + inc*IncFactor/100
		if hard < 1 {
			hard = 1
		}
		if hard > t {
			hard = t
		}
		if soft < 1 {
			soft = 1
		}
		tm.hardTimeMS = hard
		tm.softTimeMS = soft

	default:
		tm.hardTimeMS = 1 << 62
		tm.softTimeMS = 1 << 62
	}

	if limits.Nodes > 0 {
		mult := int64(limits.SoftHardMult)
		if mult < 1 {
			mult = 1
		}
		if limits.SoftNodes {
			tm.softNodes = limits.Nodes
			tm.hardNodes = limits.Nodes * mult
		} else {
			tm.hardNodes = limits.Nodes
			tm.softNodes = 1 << 62
		}
	} else {
		tm.hardNodes = 1 << 62
		tm.softNodes = 1 << 62
	}

	tm.maxDepth = limits.Depth
	if tm.maxDepth == 0 {
		tm.maxDepth = MaxPly - 1
	}

	return tm
}

// Elapsed returns milliseconds since the search started.
func (tm *TimeManager) Elapsed() int64 {
	return time.Since(tm.start).Milliseconds()
}

// AddNode increments the node counter; call once per visited node.
func (tm *TimeManager) AddNode() int64 {
	return tm.nodes.Add(1)
}

// Nodes returns the current node count.
func (tm *TimeManager) Nodes() int64 {
	return tm.nodes.Load()
}

// IsHardLimitReached checks the hard time/node bound. It is cheap enough to
// call at every search node but is only evaluated every 2048 nodes by the
// caller to avoid excessive time.Since calls.
func (tm *TimeManager) IsHardLimitReached(halt *atomic.Bool) bool {
	if halt.Load() {
		return true
	}
	if tm.nodes.Load() >= tm.hardNodes {
		halt.Store(true)
		return true
	}
	if tm.infinite {
		return false
	}
	if tm.Elapsed() >= tm.hardTimeMS {
		halt.Store(true)
		return true
	}
	return false
}

// IsSoftLimitReached is checked only between completed iterations.
// stableCount is how many consecutive iterations agreed on the best move;
// once the score clears MinSkipEval and stableCount reaches PVStableCount,
// the search may stop even though time/nodes remain.
func (tm *TimeManager) IsSoftLimitReached(depth int, score int, stableCount int) bool {
	if tm.infinite {
		return false
	}
	if depth >= tm.maxDepth {
		return true
	}
	if tm.nodes.Load() >= tm.softNodes {
		return true
	}
	if tm.Elapsed() >= tm.softTimeMS {
		return true
	}
	if abs(score) >= MinSkipEval && stableCount >= PVStableCount {
		return true
	}
	return false
}

// MaxDepth returns the configured depth ceiling.
func (tm *TimeManager) MaxDepth() int {
	return tm.maxDepth
}
