// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

//go:build windows

package dx12

import (
	"sync"
	"sync/atomic"
	"unsafe"

	"github.com/brawler/framegraph/hal"
	"github.com/brawler/framegraph/hal/dx12/d3d12"
)

// resourceRegistry resolves the opaque hal.ResourceHandle carried by
// hal.Barrier back to the concrete resource a command list records against.
// The state tracker and alias packages only ever see ResourceHandle values,
// by design (see hal.Barrier); this backend is the one place that needs the
// real pointer back, at recording time.
var resourceRegistry sync.Map // hal.ResourceHandle -> *dxResource

func lookupResource(h hal.ResourceHandle) *dxResource {
	v, ok := resourceRegistry.Load(h)
	if !ok {
		return nil
	}
	return v.(*dxResource)
}

// dxResource wraps a committed or placed *d3d12.ID3D12Resource.
//
// handle is a process-local identifier, not a GPU address: the tracking and
// alias packages key their per-resource state off it so they never need to
// dereference the underlying COM pointer.
type dxResource struct {
	raw      *d3d12.ID3D12Resource
	desc     hal.ResourceDescriptor
	handle   hal.ResourceHandle
	resident atomic.Bool
}

var nextResourceHandle atomic.Uint64

func newDXResource(raw *d3d12.ID3D12Resource, desc hal.ResourceDescriptor) *dxResource {
	r := &dxResource{
		raw:    raw,
		desc:   desc,
		handle: hal.ResourceHandle(nextResourceHandle.Add(1)),
	}
	r.resident.Store(true)
	resourceRegistry.Store(r.handle, r)
	return r
}

func (r *dxResource) Handle() hal.ResourceHandle { return r.handle }

func (r *dxResource) GPUVirtualAddress() uint64 { return r.raw.GetGPUVirtualAddress() }

func (r *dxResource) SubresourceCount() uint32 {
	if r.desc.Kind == hal.ResourceKindBuffer {
		return 1
	}
	mips := uint32(r.desc.MipLevels)
	if mips == 0 {
		mips = 1
	}
	arraySize := uint32(r.desc.DepthOrArraySize)
	if arraySize == 0 {
		arraySize = 1
	}
	return mips * arraySize
}

func (r *dxResource) Release() {
	resourceRegistry.Delete(r.handle)
	r.raw.Release()
}

func (r *dxResource) IsResident() bool { return r.resident.Load() }

func (r *dxResource) ApproximateSize() uint64 { return r.desc.Width * uint64(maxU32(r.desc.Height, 1)) }

func (r *dxResource) setResident(v bool) { r.resident.Store(v) }

func (r *dxResource) rawPageable() *d3d12.ID3D12Pageable {
	return (*d3d12.ID3D12Pageable)(unsafe.Pointer(r.raw))
}

func (r *dxResource) Native() any { return r.raw }

// dxHeap wraps a *d3d12.ID3D12Heap used as the backing store for placed,
// potentially aliased resources.
type dxHeap struct {
	raw      *d3d12.ID3D12Heap
	size     uint64
	resident atomic.Bool
}

func (h *dxHeap) SizeBytes() uint64 { return h.size }

func (h *dxHeap) Release() { h.raw.Release() }

func (h *dxHeap) IsResident() bool { return h.resident.Load() }

func (h *dxHeap) ApproximateSize() uint64 { return h.size }

func (h *dxHeap) setResident(v bool) { h.resident.Store(v) }

func (h *dxHeap) rawPageable() *d3d12.ID3D12Pageable {
	return (*d3d12.ID3D12Pageable)(unsafe.Pointer(h.raw))
}

// dxDescriptorHeap wraps a *d3d12.ID3D12DescriptorHeap, precomputing the CPU
// and (if shader-visible) GPU start handles so CPUHandle/GPUHandle are pure
// arithmetic with no syscall per call.
type dxDescriptorHeap struct {
	raw           *d3d12.ID3D12DescriptorHeap
	cpuStart      d3d12.D3D12_CPU_DESCRIPTOR_HANDLE
	gpuStart      d3d12.D3D12_GPU_DESCRIPTOR_HANDLE
	incrementSize uint32
	shaderVisible bool
}

func (h *dxDescriptorHeap) CPUHandle(index uint32) hal.DescriptorHandle {
	return hal.DescriptorHandle(h.cpuStart.Offset(int(index), h.incrementSize).Ptr)
}

func (h *dxDescriptorHeap) GPUHandle(index uint32) hal.DescriptorHandle {
	if !h.shaderVisible {
		return 0
	}
	return hal.DescriptorHandle(h.gpuStart.Offset(int(index), h.incrementSize).Ptr)
}

func (h *dxDescriptorHeap) Release() { h.raw.Release() }
