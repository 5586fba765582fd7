// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

//go:build windows

package dx12

import (
	"fmt"

	"github.com/brawler/framegraph/hal"
	"github.com/brawler/framegraph/hal/dx12/d3d12"
)

// dxQueue wraps a *d3d12.ID3D12CommandQueue of a fixed hal.QueueKind. The
// submission thread owns exactly one of these per queue kind for the
// lifetime of the device.
type dxQueue struct {
	raw  *d3d12.ID3D12CommandQueue
	kind hal.QueueKind
}

func (q *dxQueue) Kind() hal.QueueKind { return q.kind }

func (q *dxQueue) ExecuteCommandLists(lists []hal.CommandList) {
	if len(lists) == 0 {
		return
	}
	raw := make([]*d3d12.ID3D12GraphicsCommandList, 0, len(lists))
	for _, l := range lists {
		if cl, ok := l.(*dxCommandList); ok {
			raw = append(raw, cl.raw)
		}
	}
	if len(raw) == 0 {
		return
	}
	q.raw.ExecuteCommandLists(uint32(len(raw)), &raw[0])
}

func (q *dxQueue) Signal(fence hal.Fence, value uint64) error {
	f, ok := fence.(*dxFence)
	if !ok {
		return fmt.Errorf("dx12: Signal: fence was not created by this backend")
	}
	if err := q.raw.Signal(f.raw, value); err != nil {
		return fmt.Errorf("dx12: queue signal: %w", err)
	}
	return nil
}

func (q *dxQueue) Wait(fence hal.Fence, value uint64) error {
	f, ok := fence.(*dxFence)
	if !ok {
		return fmt.Errorf("dx12: Wait: fence was not created by this backend")
	}
	if err := q.raw.Wait(f.raw, value); err != nil {
		return fmt.Errorf("dx12: queue wait: %w", err)
	}
	return nil
}
