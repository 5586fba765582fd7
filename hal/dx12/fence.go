// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

//go:build windows

package dx12

import (
	"context"
	"fmt"

	"golang.org/x/sys/windows"

	"github.com/brawler/framegraph/hal/dx12/d3d12"
)

// dxFence wraps a *d3d12.ID3D12Fence together with the manual-reset Win32
// event ID3D12Fence::SetEventOnCompletion signals, so WaitCPU can block a
// goroutine without spinning on GetCompletedValue.
type dxFence struct {
	raw   *d3d12.ID3D12Fence
	event windows.Handle
}

func newDXFence(raw *d3d12.ID3D12Fence) (*dxFence, error) {
	event, err := windows.CreateEvent(nil, 1, 0, nil)
	if err != nil {
		return nil, fmt.Errorf("dx12: create fence event: %w", err)
	}
	return &dxFence{raw: raw, event: event}, nil
}

func (f *dxFence) CompletedValue() uint64 { return f.raw.GetCompletedValue() }

func (f *dxFence) SignalCPU(value uint64) error {
	if err := f.raw.Signal(value); err != nil {
		return fmt.Errorf("dx12: fence signal: %w", err)
	}
	return nil
}

// waitPollIntervalMillis bounds how long a single WaitForSingleObject call blocks
// before WaitCPU rechecks ctx, since Win32 has no way to wait on a context's
// cancellation channel directly.
const waitPollIntervalMillis = 50

func (f *dxFence) WaitCPU(ctx context.Context, value uint64) error {
	if f.CompletedValue() >= value {
		return nil
	}
	if err := windows.ResetEvent(f.event); err != nil {
		return fmt.Errorf("dx12: reset fence event: %w", err)
	}
	if err := f.raw.SetEventOnCompletion(value, uintptr(f.event)); err != nil {
		return fmt.Errorf("dx12: set fence event on completion: %w", err)
	}
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		result, err := windows.WaitForSingleObject(f.event, waitPollIntervalMillis)
		if err != nil {
			return fmt.Errorf("dx12: wait for fence event: %w", err)
		}
		if result == windows.WAIT_OBJECT_0 {
			return nil
		}
	}
}
