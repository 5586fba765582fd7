// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

//go:build windows

package dx12

import (
	"context"
	"fmt"
	"sync"
	"unsafe"

	"github.com/brawler/framegraph/hal"
	"github.com/brawler/framegraph/hal/dx12/d3d12"
)

// Device implements hal.Device on top of a raw *d3d12.ID3D12Device.
type Device struct {
	raw          *d3d12.ID3D12Device
	featureLevel d3d12.D3D_FEATURE_LEVEL
	heapTier     hal.HeapTier

	incrementSizes [4]uint32
}

// NewDevice creates a D3D12 device against adapter (nil selects the
// default adapter) at the given minimum feature level, and queries the
// device-wide information this module needs up front: descriptor handle
// increment sizes and the resource heap tier, which gates whether the
// alias tracker may mix buffers and textures in one heap.
func NewDevice(adapter unsafe.Pointer, minFeatureLevel d3d12.D3D_FEATURE_LEVEL) (*Device, error) {
	lib, err := d3d12.LoadD3D12()
	if err != nil {
		return nil, fmt.Errorf("dx12: %w", err)
	}
	raw, err := lib.CreateDevice(adapter, minFeatureLevel)
	if err != nil {
		return nil, fmt.Errorf("dx12: create device: %w: %w", hal.ErrAdapterNotFound, err)
	}

	dev := &Device{raw: raw, featureLevel: minFeatureLevel}
	for i, ht := range []d3d12.D3D12_DESCRIPTOR_HEAP_TYPE{
		d3d12.D3D12_DESCRIPTOR_HEAP_TYPE_CBV_SRV_UAV,
		d3d12.D3D12_DESCRIPTOR_HEAP_TYPE_SAMPLER,
		d3d12.D3D12_DESCRIPTOR_HEAP_TYPE_RTV,
		d3d12.D3D12_DESCRIPTOR_HEAP_TYPE_DSV,
	} {
		dev.incrementSizes[i] = raw.GetDescriptorHandleIncrementSize(ht)
	}

	var options d3d12.D3D12_FEATURE_DATA_D3D12_OPTIONS
	if err := raw.CheckFeatureSupport(d3d12.D3D12_FEATURE_D3D12_OPTIONS, unsafe.Pointer(&options), uint32(unsafe.Sizeof(options))); err != nil {
		dev.heapTier = hal.HeapTier1
	} else if options.ResourceHeapTier >= 2 {
		dev.heapTier = hal.HeapTier2
	} else {
		dev.heapTier = hal.HeapTier1
	}
	return dev, nil
}

func (d *Device) HeapTier() hal.HeapTier { return d.heapTier }

func (d *Device) DescriptorHandleIncrement(t hal.DescriptorHeapType) uint32 {
	return d.incrementSizes[t]
}

func toResourceDesc(desc hal.ResourceDescriptor) d3d12.D3D12_RESOURCE_DESC {
	rd := d3d12.D3D12_RESOURCE_DESC{
		Width:            desc.Width,
		Height:           desc.Height,
		DepthOrArraySize: desc.DepthOrArraySize,
		MipLevels:        desc.MipLevels,
		Format:           d3d12.DXGI_FORMAT(desc.Format),
		SampleDesc:       d3d12.DXGI_SAMPLE_DESC{Count: maxU32(desc.SampleCount, 1), Quality: 0},
		Layout:           d3d12.D3D12_TEXTURE_LAYOUT_UNKNOWN,
	}
	if desc.Kind == hal.ResourceKindBuffer {
		rd.Dimension = d3d12.D3D12_RESOURCE_DIMENSION_BUFFER
		rd.Layout = d3d12.D3D12_TEXTURE_LAYOUT_ROW_MAJOR
		rd.Height = 1
		rd.DepthOrArraySize = 1
		rd.MipLevels = 1
	} else {
		rd.Dimension = d3d12.D3D12_RESOURCE_DIMENSION_TEXTURE2D
	}
	var flags d3d12.D3D12_RESOURCE_FLAGS
	if desc.AllowRenderTarget {
		flags |= d3d12.D3D12_RESOURCE_FLAG_ALLOW_RENDER_TARGET
	}
	if desc.AllowDepthStencil {
		flags |= d3d12.D3D12_RESOURCE_FLAG_ALLOW_DEPTH_STENCIL
	}
	if desc.AllowUnorderedAccess {
		flags |= d3d12.D3D12_RESOURCE_FLAG_ALLOW_UNORDERED_ACCESS
	}
	if desc.DenyShaderResource {
		flags |= d3d12.D3D12_RESOURCE_FLAG_DENY_SHADER_RESOURCE
	}
	if desc.SimultaneousAccess {
		flags |= d3d12.D3D12_RESOURCE_FLAG_ALLOW_SIMULTANEOUS_ACCESS
	}
	rd.Flags = flags
	return rd
}

func rawHeapType(t hal.HeapType) d3d12.D3D12_HEAP_TYPE {
	switch t {
	case hal.HeapTypeUpload:
		return d3d12.D3D12_HEAP_TYPE_UPLOAD
	case hal.HeapTypeReadback:
		return d3d12.D3D12_HEAP_TYPE_READBACK
	default:
		return d3d12.D3D12_HEAP_TYPE_DEFAULT
	}
}

func maxU32(a, b uint32) uint32 {
	if a > b {
		return a
	}
	return b
}

func (d *Device) GetResourceAllocationInfo(desc hal.ResourceDescriptor) hal.AllocationInfo {
	rd := toResourceDesc(desc)
	info := d.raw.GetResourceAllocationInfo(0, 1, &rd)
	return hal.AllocationInfo{SizeBytes: info.SizeInBytes, AlignmentBytes: info.Alignment}
}

func heapFlagsFor(cat hal.HeapCategory) d3d12.D3D12_HEAP_FLAGS {
	switch cat {
	case hal.HeapCategoryBuffersOnly:
		return d3d12.D3D12_HEAP_FLAG_ALLOW_ONLY_BUFFERS
	case hal.HeapCategoryNonRTDSTexturesOnly:
		return d3d12.D3D12_HEAP_FLAG_ALLOW_ONLY_NON_RT_DS_TEXTURES
	case hal.HeapCategoryRTDSTexturesOnly:
		return d3d12.D3D12_HEAP_FLAG_ALLOW_ONLY_RT_DS_TEXTURES
	default:
		return d3d12.D3D12_HEAP_FLAG_NONE
	}
}

func (d *Device) CreateHeap(desc hal.HeapDescriptor) (hal.Heap, error) {
	heapType := d3d12.D3D12_HEAP_TYPE_DEFAULT
	if desc.CPUAccessible {
		heapType = d3d12.D3D12_HEAP_TYPE_UPLOAD
	}
	raw, err := d.raw.CreateHeap(&d3d12.D3D12_HEAP_DESC{
		SizeInBytes: desc.SizeBytes,
		Alignment:   desc.Alignment,
		Properties:  d3d12.D3D12_HEAP_PROPERTIES{Type: heapType},
		Flags:       heapFlagsFor(desc.Category),
	})
	if err != nil {
		return nil, fmt.Errorf("dx12: create heap: %w", err)
	}
	return &dxHeap{raw: raw, size: desc.SizeBytes}, nil
}

func (d *Device) CreateCommittedResource(desc hal.ResourceDescriptor, initialState hal.ResourceState) (hal.Resource, error) {
	rd := toResourceDesc(desc)
	raw, err := d.raw.CreateCommittedResource(
		&d3d12.D3D12_HEAP_PROPERTIES{Type: rawHeapType(desc.HeapType)},
		d3d12.D3D12_HEAP_FLAG_NONE,
		&rd,
		d3d12.D3D12_RESOURCE_STATES(initialState),
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("dx12: create committed resource: %w", err)
	}
	return newDXResource(raw, desc), nil
}

func (d *Device) CreatePlacedResource(heap hal.Heap, offsetBytes uint64, desc hal.ResourceDescriptor, initialState hal.ResourceState) (hal.Resource, error) {
	h, ok := heap.(*dxHeap)
	if !ok {
		return nil, fmt.Errorf("dx12: CreatePlacedResource: heap was not created by this backend")
	}
	rd := toResourceDesc(desc)
	raw, err := d.raw.CreatePlacedResource(h.raw, offsetBytes, &rd, d3d12.D3D12_RESOURCE_STATES(initialState), nil)
	if err != nil {
		return nil, fmt.Errorf("dx12: create placed resource: %w", err)
	}
	return newDXResource(raw, desc), nil
}

func (d *Device) CreateDescriptorHeap(desc hal.DescriptorHeapDescriptor) (hal.DescriptorHeap, error) {
	var ht d3d12.D3D12_DESCRIPTOR_HEAP_TYPE
	switch desc.Type {
	case hal.DescriptorHeapCBVSRVUAV:
		ht = d3d12.D3D12_DESCRIPTOR_HEAP_TYPE_CBV_SRV_UAV
	case hal.DescriptorHeapSampler:
		ht = d3d12.D3D12_DESCRIPTOR_HEAP_TYPE_SAMPLER
	case hal.DescriptorHeapRTV:
		ht = d3d12.D3D12_DESCRIPTOR_HEAP_TYPE_RTV
	case hal.DescriptorHeapDSV:
		ht = d3d12.D3D12_DESCRIPTOR_HEAP_TYPE_DSV
	}
	flags := d3d12.D3D12_DESCRIPTOR_HEAP_FLAG_NONE
	if desc.ShaderVisible {
		flags = d3d12.D3D12_DESCRIPTOR_HEAP_FLAG_SHADER_VISIBLE
	}
	raw, err := d.raw.CreateDescriptorHeap(&d3d12.D3D12_DESCRIPTOR_HEAP_DESC{
		Type:           ht,
		NumDescriptors: desc.NumDescriptors,
		Flags:          flags,
	})
	if err != nil {
		return nil, fmt.Errorf("dx12: create descriptor heap: %w", err)
	}
	return &dxDescriptorHeap{
		raw:           raw,
		cpuStart:      raw.GetCPUDescriptorHandleForHeapStart(),
		gpuStart:      raw.GetGPUDescriptorHandleForHeapStart(),
		incrementSize: d.DescriptorHandleIncrement(desc.Type),
		shaderVisible: desc.ShaderVisible,
	}, nil
}

func (d *Device) CreateQueue(kind hal.QueueKind) (hal.CommandQueue, error) {
	raw, err := d.raw.CreateCommandQueue(&d3d12.D3D12_COMMAND_QUEUE_DESC{Type: listTypeFor(kind)})
	if err != nil {
		return nil, fmt.Errorf("dx12: create command queue: %w", err)
	}
	return &dxQueue{raw: raw, kind: kind}, nil
}

func (d *Device) CreateCommandAllocator(kind hal.QueueKind) (hal.CommandAllocator, error) {
	raw, err := d.raw.CreateCommandAllocator(listTypeFor(kind))
	if err != nil {
		return nil, fmt.Errorf("dx12: create command allocator: %w", err)
	}
	return &dxCommandAllocator{raw: raw}, nil
}

func (d *Device) CreateCommandList(allocator hal.CommandAllocator, kind hal.QueueKind) (hal.CommandList, error) {
	a, ok := allocator.(*dxCommandAllocator)
	if !ok {
		return nil, fmt.Errorf("dx12: CreateCommandList: allocator was not created by this backend")
	}
	raw, err := d.raw.CreateCommandList(0, listTypeFor(kind), a.raw, nil)
	if err != nil {
		return nil, fmt.Errorf("dx12: create command list: %w", err)
	}
	return &dxCommandList{raw: raw, kind: kind}, nil
}

func (d *Device) CreateFence(initialValue uint64) (hal.Fence, error) {
	raw, err := d.raw.CreateFence(initialValue, d3d12.D3D12_FENCE_FLAG_NONE)
	if err != nil {
		return nil, fmt.Errorf("dx12: create fence: %w", err)
	}
	return newDXFence(raw)
}

func listTypeFor(kind hal.QueueKind) d3d12.D3D12_COMMAND_LIST_TYPE {
	switch kind {
	case hal.QueueCompute:
		return d3d12.D3D12_COMMAND_LIST_TYPE_COMPUTE
	case hal.QueueCopy:
		return d3d12.D3D12_COMMAND_LIST_TYPE_COPY
	default:
		return d3d12.D3D12_COMMAND_LIST_TYPE_DIRECT
	}
}

// makeResidentMu serializes MakeResident/Evict calls against the same
// device: ID3D12Device::MakeResident is not documented as safe to call
// concurrently with itself.
var makeResidentMu sync.Mutex

// MakeResident blocks the calling goroutine until the driver completes the
// operation. This package exposes only the synchronous
// ID3D12Device::MakeResident, not the async ID3D12Device3::EnqueueMakeResident
// - the residency manager simulates the asynchronous contract the core
// expects by running this call on a worker job and signaling its own fence
// once it returns (see residency.RunPass).
func (d *Device) MakeResident(ctx context.Context, objects []hal.Pageable) error {
	if len(objects) == 0 {
		return nil
	}
	raw := make([]*d3d12.ID3D12Pageable, 0, len(objects))
	for _, o := range objects {
		if p, ok := o.(pageableRaw); ok {
			raw = append(raw, p.rawPageable())
		}
	}
	makeResidentMu.Lock()
	defer makeResidentMu.Unlock()
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}
	if err := d.raw.MakeResident(raw); err != nil {
		return fmt.Errorf("dx12: make resident: %w", err)
	}
	return nil
}

func (d *Device) Evict(objects []hal.Pageable) error {
	if len(objects) == 0 {
		return nil
	}
	raw := make([]*d3d12.ID3D12Pageable, 0, len(objects))
	for _, o := range objects {
		if p, ok := o.(pageableRaw); ok {
			raw = append(raw, p.rawPageable())
		}
	}
	if err := d.raw.Evict(raw); err != nil {
		return fmt.Errorf("dx12: evict: %w", err)
	}
	return nil
}

// pageableRaw is implemented by every concrete resource/heap wrapper in this
// package so Device.MakeResident/Evict can recover the underlying
// ID3D12Pageable pointer without a type switch per resource kind.
type pageableRaw interface {
	rawPageable() *d3d12.ID3D12Pageable
}
