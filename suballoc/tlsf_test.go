package suballoc

import "testing"

func TestManager_AllocRespectsAlignment(t *testing.T) {
	m := NewManager(1 << 20)

	// Force an odd offset first so the next CB allocation must pad up to
	// 256-byte alignment.
	if _, err := m.Alloc(KindUAVCounter, 10, 0); err != nil {
		t.Fatalf("Alloc: %v", err)
	}
	r, err := m.Alloc(KindConstantBuffer, 64, 0)
	if err != nil {
		t.Fatalf("Alloc: %v", err)
	}
	if r.Offset%ConstantBufferAlignment != 0 {
		t.Errorf("CB offset %d not aligned to %d", r.Offset, ConstantBufferAlignment)
	}
}

func TestManager_StructuredBufferElementAlignment(t *testing.T) {
	m := NewManager(1 << 16)
	if _, err := m.Alloc(KindConstantBuffer, 1, 0); err != nil {
		t.Fatalf("Alloc: %v", err)
	}
	r, err := m.Alloc(KindStructuredBuffer, 320, 64)
	if err != nil {
		t.Fatalf("Alloc: %v", err)
	}
	if r.Offset%64 != 0 {
		t.Errorf("SB offset %d not aligned to element size 64", r.Offset)
	}
}

func TestManager_StructuredBufferNonPowerOfTwoStride(t *testing.T) {
	// Vertex-style strides are frequently not powers of two (e.g. a 12-byte
	// float3). alignUp must round up correctly for these too, not just the
	// fixed power-of-two D3D12 alignments.
	m := NewManager(1 << 16)
	if _, err := m.Alloc(KindConstantBuffer, 5, 0); err != nil {
		t.Fatalf("Alloc: %v", err)
	}
	r, err := m.Alloc(KindStructuredBuffer, 120, 12)
	if err != nil {
		t.Fatalf("Alloc: %v", err)
	}
	if r.Offset%12 != 0 {
		t.Errorf("SB offset %d not aligned to non-power-of-two stride 12", r.Offset)
	}
}

func TestManager_FreeCoalescesAdjacentBlocks(t *testing.T) {
	m := NewManager(3 * UAVCounterAlignment)

	a, err := m.Alloc(KindUAVCounter, 100, 0)
	if err != nil {
		t.Fatalf("Alloc a: %v", err)
	}
	b, err := m.Alloc(KindUAVCounter, 100, 0)
	if err != nil {
		t.Fatalf("Alloc b: %v", err)
	}

	if err := m.Free(a); err != nil {
		t.Fatalf("Free a: %v", err)
	}
	if err := m.Free(b); err != nil {
		t.Fatalf("Free b: %v", err)
	}

	// After freeing both neighbors (and the remainder from the 4096-UAV
	// alignment rounding), the manager should have one contiguous free
	// range spanning nearly the whole buffer again - verified indirectly
	// by successfully allocating a large block that wouldn't fit in any
	// single one of the three original pieces.
	if _, err := m.Alloc(KindUAVCounter, 3*UAVCounterAlignment-UAVCounterAlignment, 0); err != nil {
		t.Errorf("expected coalesced free space to satisfy a large allocation, got: %v", err)
	}
}

func TestManager_OutOfSpace(t *testing.T) {
	m := NewManager(256)
	if _, err := m.Alloc(KindConstantBuffer, 512, 0); err != ErrOutOfSpace {
		t.Fatalf("err = %v, want ErrOutOfSpace", err)
	}
}

func TestManager_DoubleFreeRejected(t *testing.T) {
	m := NewManager(4096)
	r, err := m.Alloc(KindUAVCounter, 64, 0)
	if err != nil {
		t.Fatalf("Alloc: %v", err)
	}
	if err := m.Free(r); err != nil {
		t.Fatalf("Free: %v", err)
	}
	if err := m.Free(r); err != ErrInvalidReservation {
		t.Fatalf("second Free err = %v, want ErrInvalidReservation", err)
	}
}

func TestManager_BufferedWritesFlushOnCreate(t *testing.T) {
	m := NewManager(4096)
	r, err := m.Alloc(KindConstantBuffer, 256, 0)
	if err != nil {
		t.Fatalf("Alloc: %v", err)
	}

	var immediateWrites int
	m.Write(r, []byte{1, 2, 3}, func(offset uint64, data []byte) { immediateWrites++ })
	if immediateWrites != 0 {
		t.Fatalf("expected the write to buffer before the resource exists")
	}

	var flushed []uint64
	m.SetCreated(func(offset uint64, data []byte) { flushed = append(flushed, offset) })
	if len(flushed) != 1 || flushed[0] != r.Offset {
		t.Fatalf("flushed = %v, want [%d]", flushed, r.Offset)
	}

	m.Write(r, []byte{4}, func(offset uint64, data []byte) { immediateWrites++ })
	if immediateWrites != 1 {
		t.Fatalf("expected a write after SetCreated to go through immediately")
	}
}
