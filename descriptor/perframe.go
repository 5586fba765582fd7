package descriptor

import (
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/brawler/framegraph/hal"
)

// DefaultPerFrameRegionSize is the number of descriptor slots the per-frame
// region reserves out of the shader-visible heap, split into two equal
// halves so frame N+1 may allocate from its half while frame N is still
// executing.
const DefaultPerFrameRegionSize = 1 << 16

// ErrRegionExhausted is returned when a frame's half of the per-frame region
// cannot satisfy a reservation: allocating more than
// half the region in one frame must fail, not silently wrap into the other
// half.
var ErrRegionExhausted = errors.New("descriptor: per-frame region exhausted for this frame's half")

// Table is the rolling per-frame region of the shader-visible CBV/SRV/UAV
// heap. Even and odd frame numbers address alternate halves; ResetFrame
// zeroes a half's allocation cursor once the frame that most recently owned
// it has retired (two frames prior, since the region is 2-buffered).
type Table struct {
	heap       hal.DescriptorHeap
	baseIndex  uint32
	regionSize uint32

	halves       [2]atomic.Uint32
	currentFrame atomic.Uint64
}

// NewTable creates a per-frame descriptor table reserving regionSize
// contiguous slots starting at baseIndex within heap. regionSize must be
// even; DefaultPerFrameRegionSize is a reasonable default.
func NewTable(heap hal.DescriptorHeap, baseIndex, regionSize uint32) *Table {
	return &Table{heap: heap, baseIndex: baseIndex, regionSize: regionSize}
}

func (t *Table) halfSize() uint32 { return t.regionSize / 2 }

// ResetFrame zeroes the allocation cursor for frameNumber's half and
// records it as the table's current frame - called once at the start of
// each frame, before any Reserve call for that frame.
func (t *Table) ResetFrame(frameNumber uint64) {
	half := frameNumber % 2
	t.halves[half].Store(0)
	t.currentFrame.Store(frameNumber)
}

// Reserve atomically claims count contiguous slots in frameNumber's half,
// returning a Builder over them. Concurrent Reserve calls for the same
// frame (e.g. from parallel recording jobs writing different passes'
// descriptor tables) are safe - the cursor is a single CAS loop per half, a
// dedicated atomic counter per frame slot.
func (t *Table) Reserve(frameNumber uint64, count uint32) (Builder, error) {
	half := frameNumber % 2
	cursor := &t.halves[half]
	limit := t.halfSize()

	for {
		cur := cursor.Load()
		next := cur + count
		if next > limit {
			return Builder{}, fmt.Errorf("%w: requested %d, %d already used of %d", ErrRegionExhausted, count, cur, limit)
		}
		if cursor.CompareAndSwap(cur, next) {
			start := t.baseIndex + uint32(half)*limit + cur
			return Builder{table: t, start: start, count: count, frame: frameNumber}, nil
		}
	}
}

// Builder addresses one frame's reservation within a Table: count
// contiguous descriptor slots starting at a fixed index, valid only for the
// frame that created it.
type Builder struct {
	table *Table
	start uint32
	count uint32
	frame uint64
}

// Count returns the number of slots this reservation covers.
func (b Builder) Count() uint32 { return b.count }

// checkFrame is the frame-identity assertion performed before handing out a
// handle: accessing a per-frame table from a later frame is a debug-build
// assert and undefined behaviour in release.
func (b Builder) checkFrame() {
	if !hal.DebugAssertionsEnabled() {
		return
	}
	if b.table.currentFrame.Load() != b.frame {
		panic("descriptor: per-frame table accessed outside its creation frame")
	}
}

// CPUHandle returns the CPU-visible descriptor handle for slot within this
// reservation (0 <= slot < Count()).
func (b Builder) CPUHandle(slot uint32) hal.DescriptorHandle {
	b.checkFrame()
	return b.table.heap.CPUHandle(b.start + slot)
}

// GPUHandle returns the GPU-visible descriptor handle for slot within this
// reservation, for binding into a root signature's descriptor table slot.
func (b Builder) GPUHandle(slot uint32) hal.DescriptorHandle {
	b.checkFrame()
	return b.table.heap.GPUHandle(b.start + slot)
}
