package search

import (
	"sync/atomic"
	"testing"
)

func TestTimeManagerDepthLimit(t *testing.T) {
	tm := NewTimeManager(Limits{Depth: 5}, true)
	if tm.MaxDepth() != 5 {
		t.Fatalf("expected max depth 5, got %d", tm.MaxDepth())
	}
}

func TestTimeManagerInfiniteNeverSoftStops(t *testing.T) {
	tm := NewTimeManager(Limits{Infinite: true, Depth: 1}, true)
	if tm.IsSoftLimitReached(0, 0, 1000) {
		t.Fatalf("infinite search must not soft-stop before a stop command")
	}
}

func TestTimeManagerMoveTimeOverrideIgnoresRemainingClock(t *testing.T) {
	tm := NewTimeManager(Limits{MoveTime: 100, WTime: 1, BTime: 1}, true)
	var halt atomic.Bool
	if tm.IsHardLimitReached(&halt) {
		t.Fatalf("expected hard limit not yet reached immediately after start")
	}
}

func TestTimeManagerHardLimitRespectsNodeCap(t *testing.T) {
	tm := NewTimeManager(Limits{Infinite: false, Nodes: 100, SoftNodes: false}, true)
	var halt atomic.Bool
	for i := 0; i < 100; i++ {
		tm.AddNode()
	}
	if !tm.IsHardLimitReached(&halt) {
		t.Fatalf("expected hard node limit to trip at 100 nodes")
	}
	if !halt.Load() {
		t.Fatalf("expected halt flag to be set once the hard limit trips")
	}
}

func TestTimeManagerSoftNodesUsesMultiplierForHard(t *testing.T) {
	tm := NewTimeManager(Limits{Nodes: 100, SoftNodes: true, SoftHardMult: 4}, true)
	var halt atomic.Bool
	for i := 0; i < 100; i++ {
		tm.AddNode()
	}
	if tm.IsHardLimitReached(&halt) {
		t.Fatalf("soft-node cap alone should not trip the hard limit")
	}
	for i := 0; i < 300; i++ {
		tm.AddNode()
	}
	if !tm.IsHardLimitReached(&halt) {
		t.Fatalf("expected hard limit to trip at nodes*SoftHardMult")
	}
}

func TestTimeManagerSoftLimitPVStability(t *testing.T) {
	tm := NewTimeManager(Limits{WTime: 1_000_000, Depth: 50}, true)
	if tm.IsSoftLimitReached(5, MinSkipEval, PVStableCount-1) {
		t.Fatalf("expected no soft stop before stability count reached")
	}
	if !tm.IsSoftLimitReached(5, MinSkipEval, PVStableCount) {
		t.Fatalf("expected soft stop once score and stability thresholds are met")
	}
}
