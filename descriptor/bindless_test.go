package descriptor

import (
	"testing"

	"github.com/brawler/framegraph/hal"
)

type fakeHeap struct{}

func (fakeHeap) CPUHandle(index uint32) hal.DescriptorHandle { return hal.DescriptorHandle(index) }
func (fakeHeap) GPUHandle(index uint32) hal.DescriptorHandle { return hal.DescriptorHandle(index) }
func (fakeHeap) Release()                                    {}

type recordingWriter struct {
	written []Index
}

func (w *recordingWriter) WriteSRV(heap hal.DescriptorHeap, index Index) {
	w.written = append(w.written, index)
}

func TestPool_AllocateReleaseReuse(t *testing.T) {
	p := NewPool()
	w := &recordingWriter{}

	a, err := p.Allocate(fakeHeap{}, w)
	if err != nil {
		t.Fatalf("Allocate: %v", err)
	}
	idx := a.Index()
	a.Release()

	b, err := p.Allocate(fakeHeap{}, w)
	if err != nil {
		t.Fatalf("Allocate: %v", err)
	}
	if b.Index() != idx {
		t.Errorf("expected released index %d to be recycled, got %d", idx, b.Index())
	}
}

func TestPool_DistinctIndicesWithoutRelease(t *testing.T) {
	p := NewPool()
	w := &recordingWriter{}
	seen := make(map[Index]bool)
	for i := 0; i < 1000; i++ {
		a, err := p.Allocate(fakeHeap{}, w)
		if err != nil {
			t.Fatalf("Allocate #%d: %v", i, err)
		}
		if seen[a.Index()] {
			t.Fatalf("index %d allocated twice without release", a.Index())
		}
		seen[a.Index()] = true
	}
}

func TestPool_RangeExhausted(t *testing.T) {
	p := NewPool()
	w := &recordingWriter{}
	for i := 0; i < BindlessRangeSize; i++ {
		if _, err := p.Allocate(fakeHeap{}, w); err != nil {
			t.Fatalf("Allocate #%d: %v", i, err)
		}
	}
	if _, err := p.Allocate(fakeHeap{}, w); err != ErrRangeExhausted {
		t.Fatalf("err = %v, want ErrRangeExhausted", err)
	}
}

func TestPool_RewriteAtStableIndex(t *testing.T) {
	p := NewPool()
	w := &recordingWriter{}
	a, _ := p.Allocate(fakeHeap{}, w)
	original := a.Index()

	a.Rewrite(w)
	if len(w.written) != 2 || w.written[1] != original {
		t.Errorf("Rewrite should re-create the descriptor at the same index %d, got %v", original, w.written)
	}
}
