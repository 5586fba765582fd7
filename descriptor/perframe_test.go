package descriptor

import (
	"testing"

	"github.com/brawler/framegraph/hal"
)

func TestTable_ReserveWithinHalf(t *testing.T) {
	tbl := NewTable(fakeHeap{}, 0, 16)
	tbl.ResetFrame(0)

	b, err := tbl.Reserve(0, 4)
	if err != nil {
		t.Fatalf("Reserve: %v", err)
	}
	if b.Count() != 4 {
		t.Errorf("Count() = %d, want 4", b.Count())
	}
	_ = b.CPUHandle(0)
	_ = b.GPUHandle(3)
}

func TestTable_ExceedingHalfFails(t *testing.T) {
	tbl := NewTable(fakeHeap{}, 0, 16) // half = 8
	tbl.ResetFrame(0)

	if _, err := tbl.Reserve(0, 9); err != ErrRegionExhausted && err == nil {
		t.Fatalf("expected an error reserving more than half the region")
	}
}

func TestTable_FramesDisjointUnlessTwoApart(t *testing.T) {
	tbl := NewTable(fakeHeap{}, 0, 16) // half = 8

	tbl.ResetFrame(0)
	a, err := tbl.Reserve(0, 4)
	if err != nil {
		t.Fatalf("Reserve frame 0: %v", err)
	}

	tbl.ResetFrame(1)
	b, err := tbl.Reserve(1, 4)
	if err != nil {
		t.Fatalf("Reserve frame 1: %v", err)
	}

	// Frame 0 used indices [0,4), frame 1 (odd half, base+8) used [8,12) -
	// disjoint, as required for adjacent frames.
	if a.start == b.start {
		t.Errorf("frame 0 and frame 1 reservations must not overlap: both start at %d", a.start)
	}

	// Frame 2 reuses frame 0's half; without a ResetFrame(2) the cursor
	// still holds frame 0's allocations, so a collision is expected unless
	// the caller resets first - exercising exactly the "N and N+2 collide"
	// case property 7 describes.
	tbl.ResetFrame(2)
	c, err := tbl.Reserve(2, 4)
	if err != nil {
		t.Fatalf("Reserve frame 2: %v", err)
	}
	if c.start != a.start {
		t.Errorf("frame 2 should reuse frame 0's half starting at %d, got %d", a.start, c.start)
	}
}

func TestTable_DebugAssertionsRejectStaleFrame(t *testing.T) {
	hal.SetDebugAssertions(true)
	defer hal.SetDebugAssertions(true)

	tbl := NewTable(fakeHeap{}, 0, 16)
	tbl.ResetFrame(0)
	b, err := tbl.Reserve(0, 2)
	if err != nil {
		t.Fatalf("Reserve: %v", err)
	}

	tbl.ResetFrame(2) // same half, next use of it

	defer func() {
		if recover() == nil {
			t.Errorf("expected a panic accessing a stale-frame reservation")
		}
	}()
	_ = b.CPUHandle(0)
}
