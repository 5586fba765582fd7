// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

//go:build windows

package dx12

import (
	"testing"
	"unsafe"

	"github.com/brawler/framegraph/hal/dx12/d3d12"
)

func TestCStringToGo(t *testing.T) {
	tests := []struct {
		name string
		in   []byte
		want string
	}{
		{"empty", nil, ""},
		{"no trailing nul", []byte("hello"), "hello"},
		{"trailing nul trimmed", []byte("hello\x00"), "hello"},
		{"embedded nul kept", []byte("a\x00b"), "a\x00b"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if len(tt.in) == 0 {
				if got := cStringToGo(nil, 0); got != tt.want {
					t.Fatalf("cStringToGo(nil, 0) = %q, want %q", got, tt.want)
				}
				return
			}
			got := cStringToGo(unsafe.Pointer(&tt.in[0]), len(tt.in))
			if got != tt.want {
				t.Fatalf("cStringToGo(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestLogDebugMessageSeverityRouting(t *testing.T) {
	// logDebugMessage must not panic for every known severity, and should
	// route corruption/error through the Error level - exercised indirectly
	// since hal.Logger() has no test hook for captured records here.
	for _, sev := range []d3d12.D3D12_MESSAGE_SEVERITY{
		d3d12.D3D12_MESSAGE_SEVERITY_CORRUPTION,
		d3d12.D3D12_MESSAGE_SEVERITY_ERROR,
		d3d12.D3D12_MESSAGE_SEVERITY_WARNING,
		d3d12.D3D12_MESSAGE_SEVERITY_INFO,
		d3d12.D3D12_MESSAGE_SEVERITY_MESSAGE,
	} {
		logDebugMessage(d3d12.InfoQueueMessage{Severity: sev, Description: "test"})
	}
}
