// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

//go:build windows

package dx12

import (
	"github.com/brawler/framegraph/hal"
	"github.com/brawler/framegraph/hal/dx12/d3d12"
)

// EnableDebugLayer turns on the D3D12 debug layer before device creation.
// It must be called before NewDevice; enabling it afterward has no effect
// on an already-created device. Off by default and never required by the
// core - callers opt in for development builds.
func EnableDebugLayer() error {
	lib, err := d3d12.LoadD3D12()
	if err != nil {
		return err
	}
	debug, err := lib.GetDebugInterface()
	if err != nil {
		return err
	}
	defer debug.Release()
	debug.EnableDebugLayer()
	hal.Logger().Info("d3d12 debug layer enabled")
	return nil
}

// PumpDebugMessages drains every message currently stored in the device's
// ID3D12InfoQueue and forwards each to the shared hal logger, at a slog
// level derived from the message's D3D12_MESSAGE_SEVERITY. It is a no-op
// (not an error) if the debug layer was never enabled, since the device
// then has no ID3D12InfoQueue to query.
//
// The underlying API has no push-style callback usable from this package's
// raw syscall bindings, so this is a poll: a host application calls it once
// per frame (or on whatever cadence it likes) to forward messages the debug
// layer accumulated since the last call.
func (d *Device) PumpDebugMessages() {
	queue, err := d.raw.GetInfoQueue()
	if err != nil {
		return
	}
	defer queue.Release()

	count := queue.GetNumStoredMessages()
	for i := uint64(0); i < count; i++ {
		msg, err := queue.GetMessage(i)
		if err != nil {
			continue
		}
		logDebugMessage(msg)
	}
	queue.ClearStoredMessages()
}

func logDebugMessage(msg d3d12.InfoQueueMessage) {
	logger := hal.Logger()
	attrs := []any{"category", msg.Category, "id", msg.ID}
	switch msg.Severity {
	case d3d12.D3D12_MESSAGE_SEVERITY_CORRUPTION, d3d12.D3D12_MESSAGE_SEVERITY_ERROR:
		logger.Error(msg.Description, attrs...)
	case d3d12.D3D12_MESSAGE_SEVERITY_WARNING:
		logger.Warn(msg.Description, attrs...)
	default:
		logger.Debug(msg.Description, attrs...)
	}
}
