// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package hal

import "context"

// Pageable is anything the residency manager can make resident or evict:
// buffers, textures, heaps, and descriptor heaps all implement it on the
// D3D12 backend by wrapping ID3D12Pageable.
type Pageable interface {
	// IsResident reports the last residency state the manager observed.
	// It is advisory only - the authoritative state lives in the manager.
	IsResident() bool
	// ApproximateSize is used by the residency manager's eviction
	// priority heuristic; it need not be exact.
	ApproximateSize() uint64
}

// Device is the narrow slice of ID3D12Device the core depends on. It
// deliberately excludes pipeline/root-signature creation and shader
// reflection: those live in a PSO/root-signature database that is a
// collaborator of this module, not a part of it.
type Device interface {
	// CreateHeap allocates a heap of the given size and properties,
	// used as the backing store for placed (potentially aliased)
	// resources.
	CreateHeap(desc HeapDescriptor) (Heap, error)

	// CreateCommittedResource allocates a resource with its own
	// dedicated, non-aliasable heap.
	CreateCommittedResource(desc ResourceDescriptor, initialState ResourceState) (Resource, error)

	// CreatePlacedResource creates a resource backed by an existing heap
	// at the given byte offset, enabling the transient alias tracker to
	// overlap resources whose lifetimes never intersect.
	CreatePlacedResource(heap Heap, offsetBytes uint64, desc ResourceDescriptor, initialState ResourceState) (Resource, error)

	// GetResourceAllocationInfo reports the size and alignment the
	// device requires for desc, used by the alias tracker to size heaps
	// before any resource is actually created.
	GetResourceAllocationInfo(desc ResourceDescriptor) AllocationInfo

	// CreateDescriptorHeap allocates a CPU- or GPU-visible descriptor
	// heap (CBV/SRV/UAV, sampler, RTV, or DSV).
	CreateDescriptorHeap(desc DescriptorHeapDescriptor) (DescriptorHeap, error)

	// DescriptorHandleIncrement returns the device- and heap-type-
	// specific stride between consecutive descriptor handles.
	DescriptorHandleIncrement(heapType DescriptorHeapType) uint32

	// CreateQueue creates one of the three command queue kinds.
	CreateQueue(kind QueueKind) (CommandQueue, error)

	// CreateCommandAllocator creates an allocator backing command lists
	// of the given kind.
	CreateCommandAllocator(kind QueueKind) (CommandAllocator, error)

	// CreateCommandList creates a command list recording against
	// allocator, initially open for recording.
	CreateCommandList(allocator CommandAllocator, kind QueueKind) (CommandList, error)

	// CreateFence creates a fence used for CPU/GPU and cross-queue GPU
	// synchronization, starting at initialValue.
	CreateFence(initialValue uint64) (Fence, error)

	// MakeResident pages objects back into GPU-accessible memory,
	// blocking until the driver completes the operation. The residency
	// manager calls this from a worker job and signals its own fence,
	// simulating the asynchronous EnqueueMakeResident this module does
	// not depend on.
	MakeResident(ctx context.Context, objects []Pageable) error

	// Evict pages objects out of GPU-accessible memory.
	Evict(objects []Pageable) error

	// HeapTier reports the device's resource heap tier, which gates
	// whether the alias tracker may place buffers and textures in the
	// same heap (Tier 2) or must segregate them (Tier 1).
	HeapTier() HeapTier
}

// HeapTier mirrors D3D12_RESOURCE_HEAP_TIER.
type HeapTier uint8

const (
	HeapTier1 HeapTier = 1
	HeapTier2 HeapTier = 2
)

// CommandQueue is the narrow slice of ID3D12CommandQueue the submission
// layer needs: batched execution plus fence signal/wait for ordering
// within and across queues.
type CommandQueue interface {
	ExecuteCommandLists(lists []CommandList)
	Signal(fence Fence, value uint64) error
	Wait(fence Fence, value uint64) error
	Kind() QueueKind
}

// CommandAllocator backs the memory for recorded commands. One allocator
// per in-flight frame per queue is the standard pattern; Reset must only be
// called once the GPU has finished executing every list it backed.
type CommandAllocator interface {
	Reset() error
}

// CommandList is the narrow slice of ID3D12GraphicsCommandList the core
// records work into. It excludes PSO/root-signature binding and input
// assembly - pass callbacks reach the underlying native list via Native for
// those - but carries the draw/dispatch/clear/copy/indirect entry points
// the RecordContext wraps with dependency validation.
type CommandList interface {
	Reset(allocator CommandAllocator) error
	Close() error
	ResourceBarrier(barriers []Barrier)
	DiscardResource(resource Resource)
	CopyBufferRegion(dst Resource, dstOffset uint64, src Resource, srcOffset, numBytes uint64)
	CopyTextureRegion(dst Resource, dstSub uint32, src Resource, srcSub uint32)
	CopyResource(dst, src Resource)
	Draw(vertexCountPerInstance, instanceCount, startVertex, startInstance uint32)
	DrawIndexed(indexCountPerInstance, instanceCount, startIndex uint32, baseVertex int32, startInstance uint32)
	Dispatch(groupsX, groupsY, groupsZ uint32)
	ClearRTV(rtv DescriptorHandle, rgba [4]float32)
	ClearDSV(dsv DescriptorHandle, depth float32, stencil uint8)
	// ExecuteIndirect records GPU-generated work described by a command
	// signature. The signature is opaque to the core (command signatures
	// belong to the PSO/root-signature database collaborator); the backend
	// asserts its concrete type.
	ExecuteIndirect(signature any, maxCommands uint32, args Resource, argsOffset uint64, count Resource, countOffset uint64)
	Kind() QueueKind
	// Native exposes the concrete backend command list (e.g.
	// *d3d12.ID3D12GraphicsCommandList) for pass callbacks that bind
	// pipeline state, root signatures, and issue draws/dispatches -
	// concerns this module's PSO/root-signature database collaborator
	// owns, not the FrameGraph core.
	Native() any
}

// Fence is the narrow slice of ID3D12Fence used for CPU waits and
// cross-queue GPU waits.
type Fence interface {
	CompletedValue() uint64
	SignalCPU(value uint64) error
	WaitCPU(ctx context.Context, value uint64) error
}

// Resource is an opaque handle to a GPU resource (buffer or texture)
// created through a Device. It carries a stable ResourceHandle the core's
// tracking and alias packages key on, plus accessors the submission layer
// needs to actually issue copies and bind views.
type Resource interface {
	Pageable
	Handle() ResourceHandle
	GPUVirtualAddress() uint64
	SubresourceCount() uint32
	Release()
}

// Heap is an opaque handle to a committed block of GPU memory used as the
// backing store for one or more placed (and potentially aliased)
// resources.
type Heap interface {
	Pageable
	SizeBytes() uint64
	Release()
}

// AllocationInfo reports the size and alignment the device requires to
// place a resource, independent of whether it ends up committed or placed.
type AllocationInfo struct {
	SizeBytes      uint64
	AlignmentBytes uint64
}

// HeapDescriptor configures Device.CreateHeap.
type HeapDescriptor struct {
	SizeBytes uint64
	Alignment uint64
	// Category selects the
	// D3D12_HEAP_FLAGS that constrain which resource categories may be
	// placed in the heap - required on HeapTier1 devices, irrelevant on
	// HeapTier2.
	Category      HeapCategory
	CPUAccessible bool
}

// HeapCategory mirrors the D3D12_HEAP_FLAG_ALLOW_ONLY_* family.
type HeapCategory uint8

const (
	HeapCategoryMixed HeapCategory = iota
	HeapCategoryBuffersOnly
	HeapCategoryNonRTDSTexturesOnly
	HeapCategoryRTDSTexturesOnly
)

// ResourceKind distinguishes buffers from textures for allocation-info and
// alias-compatibility purposes.
type ResourceKind uint8

const (
	ResourceKindBuffer ResourceKind = iota
	ResourceKindTexture
)

// HeapType mirrors D3D12_HEAP_TYPE for the three heap kinds resources live
// in. Only buffers may live in upload or readback heaps; an upload-heap
// resource is permanently in GENERIC_READ and a readback-heap resource
// permanently in COPY_DEST, so neither ever appears in the state tracker's
// zone sequences.
type HeapType uint8

const (
	HeapTypeDefault HeapType = iota
	HeapTypeUpload
	HeapTypeReadback
)

// ResourceDescriptor configures resource creation. It mirrors the fields of
// D3D12_RESOURCE_DESC the core actually consults, plus the heap type the
// resource will be committed to or placed in.
type ResourceDescriptor struct {
	Kind                 ResourceKind
	HeapType             HeapType
	Width                uint64
	Height               uint32
	DepthOrArraySize     uint16
	MipLevels            uint16
	Format               uint32 // DXGI_FORMAT
	SampleCount          uint32
	AllowRenderTarget    bool
	AllowDepthStencil    bool
	AllowUnorderedAccess bool
	DenyShaderResource   bool
	// SimultaneousAccess maps to D3D12_RESOURCE_FLAG_ALLOW_SIMULTANEOUS_ACCESS:
	// the texture always decays to COMMON at ExecuteCommandLists boundaries
	// and never needs a cross-queue sync-point entry.
	SimultaneousAccess bool
}

// DescriptorHeapType mirrors D3D12_DESCRIPTOR_HEAP_TYPE.
type DescriptorHeapType uint8

const (
	DescriptorHeapCBVSRVUAV DescriptorHeapType = iota
	DescriptorHeapSampler
	DescriptorHeapRTV
	DescriptorHeapDSV
)

// DescriptorHeapDescriptor configures Device.CreateDescriptorHeap.
type DescriptorHeapDescriptor struct {
	Type           DescriptorHeapType
	NumDescriptors uint32
	ShaderVisible  bool
}

// DescriptorHandle is a CPU or GPU descriptor handle (an opaque offset into
// a descriptor heap).
type DescriptorHandle uint64

// DescriptorHeap is the narrow slice of ID3D12DescriptorHeap the bindless
// registry and per-frame descriptor table need.
type DescriptorHeap interface {
	CPUHandle(index uint32) DescriptorHandle
	GPUHandle(index uint32) DescriptorHandle
	Release()
}
