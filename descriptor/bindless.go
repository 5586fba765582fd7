// Package descriptor implements the two consumer-facing descriptor
// surfaces the FrameGraph core exposes: a process-wide bindless SRV index
// pool and the per-frame descriptor table carved out of the GPU-visible
// heap each frame.
package descriptor

import (
	"fmt"
	"sync"

	"github.com/brawler/framegraph/hal"
)

// BindlessRangeSize is the size of the process-wide bindless descriptor
// range: 500,000 slots, shared by every shader-visible SRV in the process.
const BindlessRangeSize = 500_000

// shardCount partitions the bindless index space into independently locked
// free-lists, so per-draw-call descriptor churn never contends on a single
// global mutex.
// Must divide BindlessRangeSize evenly and be a power of two for the fast
// shard-select the sharded cache in the retrieval pack uses.
const shardCount = 16

// Index identifies one slot in the bindless descriptor range.
type Index uint32

// shard is one independently-locked segment of the free-index pool.
type shard struct {
	mu   sync.Mutex
	free []Index
}

// Pool is the process-wide bindless SRV index allocator: BindlessRangeSize
// slots, partitioned into shardCount independently-locked free-lists.
// Construct exactly one per device and keep it for the device's full
// lifetime - it is created at device init and torn down with it, never
// lazily on first use.
type Pool struct {
	shards  [shardCount]*shard
	nextNew atomic32
}

// atomic32 is a tiny uint32 counter guarded by its own mutex - used only for
// the one-time initial handout of never-before-freed indices, so new slots
// are handed out round-robin across shards before any Release populates a
// shard's free-list.
type atomic32 struct {
	mu  sync.Mutex
	val uint32
}

func (a *atomic32) next() (uint32, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.val >= BindlessRangeSize {
		return 0, false
	}
	v := a.val
	a.val++
	return v, true
}

// NewPool creates an empty bindless index pool.
func NewPool() *Pool {
	p := &Pool{}
	for i := range p.shards {
		p.shards[i] = &shard{}
	}
	return p
}

func (p *Pool) shardFor(idx Index) *shard {
	return p.shards[uint32(idx)%shardCount]
}

// acquire returns a free index, preferring a recycled one (cheaper - no
// contention on the monotonic counter) before handing out a never-used
// slot. Returns false if the range is exhausted.
func (p *Pool) acquire() (Index, bool) {
	// Scan shards for a recycled index first; this is a bounded scan over
	// shardCount mutexes, not the full 500,000-slot range.
	for _, s := range p.shards {
		s.mu.Lock()
		if n := len(s.free); n > 0 {
			idx := s.free[n-1]
			s.free = s.free[:n-1]
			s.mu.Unlock()
			return idx, true
		}
		s.mu.Unlock()
	}

	v, ok := p.nextNew.next()
	if !ok {
		return 0, false
	}
	return Index(v), true
}

// release returns idx to its shard's free-list for reuse.
func (p *Pool) release(idx Index) {
	s := p.shardFor(idx)
	s.mu.Lock()
	s.free = append(s.free, idx)
	s.mu.Unlock()
}

// ErrRangeExhausted is returned when every slot in the bindless range is
// currently allocated.
var ErrRangeExhausted = fmt.Errorf("descriptor: bindless range exhausted (%d slots)", BindlessRangeSize)

// SRVWriter creates the actual SRV descriptor at a stable GPU-visible
// heap index - the resource's D3D12 backend implements this so the
// descriptor package stays free of any hal.Device dependency beyond the
// narrow DescriptorHeap/Resource slice it already has.
type SRVWriter interface {
	WriteSRV(heap hal.DescriptorHeap, index Index)
}

// Allocation is the handle a resource hands back from CreateBindlessSRV. It
// owns exactly one sentinel index for its lifetime; Release returns the
// index to the pool. The zero value is not valid - always construct via
// Pool.Allocate.
type Allocation struct {
	pool  *Pool
	index Index
	heap  hal.DescriptorHeap
}

// Index returns the stable shader-visible index this allocation owns. The
// value never changes for the allocation's lifetime, even if the
// underlying D3D resource is later recreated (placed-resource reallocation,
// eviction+remake) - the resource re-creates the descriptor at this same
// index so shader-side indices remain stable.
func (a *Allocation) Index() Index { return a.index }

// Rewrite re-creates the descriptor at this allocation's fixed index via
// writer, used after the underlying resource changes identity.
func (a *Allocation) Rewrite(writer SRVWriter) {
	writer.WriteSRV(a.heap, a.index)
}

// Release returns this allocation's index to the process-wide pool. The
// first call clears the allocation's pool reference, so any later call is
// a no-op and the index is never returned twice.
func (a *Allocation) Release() {
	if a.pool == nil {
		return
	}
	a.pool.release(a.index)
	a.pool = nil
}

// Allocate reserves a free index in heap's bindless range and writes the
// descriptor described by writer at it, returning the owning Allocation.
func (p *Pool) Allocate(heap hal.DescriptorHeap, writer SRVWriter) (*Allocation, error) {
	idx, ok := p.acquire()
	if !ok {
		return nil, ErrRangeExhausted
	}
	writer.WriteSRV(heap, idx)
	return &Allocation{pool: p, index: idx, heap: heap}, nil
}
