// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

//go:build windows

package dx12

import (
	"fmt"

	"github.com/brawler/framegraph/hal"
	"github.com/brawler/framegraph/hal/dx12/d3d12"
)

// dxCommandAllocator wraps a *d3d12.ID3D12CommandAllocator.
type dxCommandAllocator struct {
	raw *d3d12.ID3D12CommandAllocator
}

func (a *dxCommandAllocator) Reset() error {
	if err := a.raw.Reset(); err != nil {
		return fmt.Errorf("dx12: command allocator reset: %w", err)
	}
	return nil
}

// dxCommandList wraps a *d3d12.ID3D12GraphicsCommandList for one queue kind.
// It records barriers, discards, copies, draws, dispatches, clears and
// ExecuteIndirect; any other command a pass callback needs goes through
// Native.
type dxCommandList struct {
	raw  *d3d12.ID3D12GraphicsCommandList
	kind hal.QueueKind
}

func (c *dxCommandList) Kind() hal.QueueKind { return c.kind }

func (c *dxCommandList) Native() any { return c.raw }

func (c *dxCommandList) Reset(allocator hal.CommandAllocator) error {
	a, ok := allocator.(*dxCommandAllocator)
	if !ok {
		return fmt.Errorf("dx12: CommandList.Reset: allocator was not created by this backend")
	}
	if err := c.raw.Reset(a.raw, nil); err != nil {
		return fmt.Errorf("dx12: command list reset: %w", err)
	}
	return nil
}

func (c *dxCommandList) Close() error {
	if err := c.raw.Close(); err != nil {
		return fmt.Errorf("dx12: command list close: %w", err)
	}
	return nil
}

func (c *dxCommandList) ResourceBarrier(barriers []hal.Barrier) {
	if len(barriers) == 0 {
		return
	}
	raw := make([]d3d12.D3D12_RESOURCE_BARRIER, len(barriers))
	for i, b := range barriers {
		raw[i] = toRawBarrier(b)
	}
	c.raw.ResourceBarrier(uint32(len(raw)), &raw[0])
}

func (c *dxCommandList) DiscardResource(resource hal.Resource) {
	r, ok := resource.(*dxResource)
	if !ok {
		return
	}
	c.raw.DiscardResource(r.raw, nil)
}

func (c *dxCommandList) CopyBufferRegion(dst hal.Resource, dstOffset uint64, src hal.Resource, srcOffset, numBytes uint64) {
	d, ok1 := dst.(*dxResource)
	s, ok2 := src.(*dxResource)
	if !ok1 || !ok2 {
		return
	}
	c.raw.CopyBufferRegion(d.raw, dstOffset, s.raw, srcOffset, numBytes)
}

func (c *dxCommandList) CopyTextureRegion(dst hal.Resource, dstSub uint32, src hal.Resource, srcSub uint32) {
	d, ok1 := dst.(*dxResource)
	s, ok2 := src.(*dxResource)
	if !ok1 || !ok2 {
		return
	}
	dstLoc := d3d12.NewSubresourceCopyLocation(d.raw, dstSub)
	srcLoc := d3d12.NewSubresourceCopyLocation(s.raw, srcSub)
	c.raw.CopyTextureRegion(&dstLoc, 0, 0, 0, &srcLoc, nil)
}

func (c *dxCommandList) CopyResource(dst, src hal.Resource) {
	d, ok1 := dst.(*dxResource)
	s, ok2 := src.(*dxResource)
	if !ok1 || !ok2 {
		return
	}
	c.raw.CopyResource(d.raw, s.raw)
}

func (c *dxCommandList) Draw(vertexCountPerInstance, instanceCount, startVertex, startInstance uint32) {
	c.raw.DrawInstanced(vertexCountPerInstance, instanceCount, startVertex, startInstance)
}

func (c *dxCommandList) DrawIndexed(indexCountPerInstance, instanceCount, startIndex uint32, baseVertex int32, startInstance uint32) {
	c.raw.DrawIndexedInstanced(indexCountPerInstance, instanceCount, startIndex, baseVertex, startInstance)
}

func (c *dxCommandList) Dispatch(groupsX, groupsY, groupsZ uint32) {
	c.raw.Dispatch(groupsX, groupsY, groupsZ)
}

func (c *dxCommandList) ClearRTV(rtv hal.DescriptorHandle, rgba [4]float32) {
	c.raw.ClearRenderTargetView(d3d12.D3D12_CPU_DESCRIPTOR_HANDLE{Ptr: uintptr(rtv)}, &rgba, 0, nil)
}

func (c *dxCommandList) ClearDSV(dsv hal.DescriptorHandle, depth float32, stencil uint8) {
	c.raw.ClearDepthStencilView(
		d3d12.D3D12_CPU_DESCRIPTOR_HANDLE{Ptr: uintptr(dsv)},
		d3d12.D3D12_CLEAR_FLAG_DEPTH|d3d12.D3D12_CLEAR_FLAG_STENCIL,
		depth, stencil, 0, nil,
	)
}

func (c *dxCommandList) ExecuteIndirect(signature any, maxCommands uint32, args hal.Resource, argsOffset uint64, count hal.Resource, countOffset uint64) {
	sig, ok := signature.(*d3d12.ID3D12CommandSignature)
	if !ok {
		return
	}
	a, ok := args.(*dxResource)
	if !ok {
		return
	}
	var countRaw *d3d12.ID3D12Resource
	if cr, ok := count.(*dxResource); ok {
		countRaw = cr.raw
	}
	c.raw.ExecuteIndirect(sig, maxCommands, a.raw, argsOffset, countRaw, countOffset)
}

func toRawBarrier(b hal.Barrier) d3d12.D3D12_RESOURCE_BARRIER {
	var raw d3d12.D3D12_RESOURCE_BARRIER
	switch b.Kind {
	case hal.BarrierAliasing:
		var beforeRaw, afterRaw *d3d12.ID3D12Resource
		if before := lookupResource(b.AliasedBefore); before != nil {
			beforeRaw = before.raw
		}
		if after := lookupResource(b.Resource); after != nil {
			afterRaw = after.raw
		}
		raw = d3d12.NewAliasingBarrier(beforeRaw, afterRaw)
	case hal.BarrierUAV:
		var rawResource *d3d12.ID3D12Resource
		if res := lookupResource(b.Resource); res != nil {
			rawResource = res.raw
		}
		raw = d3d12.NewUAVBarrier(rawResource)
	default:
		var rawResource *d3d12.ID3D12Resource
		if res := lookupResource(b.Resource); res != nil {
			rawResource = res.raw
		}
		raw = d3d12.NewTransitionBarrier(rawResource, d3d12.D3D12_RESOURCE_STATES(b.Before), d3d12.D3D12_RESOURCE_STATES(b.After), b.Subresource)
	}
	switch b.Flag {
	case hal.SplitBeginOnly:
		raw.Flags = d3d12.D3D12_RESOURCE_BARRIER_FLAG_BEGIN_ONLY
	case hal.SplitEndOnly:
		raw.Flags = d3d12.D3D12_RESOURCE_BARRIER_FLAG_END_ONLY
	default:
		raw.Flags = d3d12.D3D12_RESOURCE_BARRIER_FLAG_NONE
	}
	return raw
}
