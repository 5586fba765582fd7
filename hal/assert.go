// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package hal

import "sync/atomic"

// debugAssertionsEnabled gates every programmer-misuse assertion in the
// packages built on this one: undeclared-dependency checks in pass
// recording, stale-frame checks on per-frame descriptor tables, heap-type
// checks at resource creation, and the cross-queue read-only check during
// sync-point injection. Misuse panics while enabled and is undefined
// behaviour once disabled.
var debugAssertionsEnabled atomic.Bool

func init() {
	debugAssertionsEnabled.Store(true)
}

// SetDebugAssertions toggles the shared misuse-assertion flag. Enabled by
// default; release builds call SetDebugAssertions(false) to skip the
// per-call validation cost.
//
// Safe for concurrent use, like SetLogger.
func SetDebugAssertions(enabled bool) {
	debugAssertionsEnabled.Store(enabled)
}

// DebugAssertionsEnabled reports whether misuse assertions are active.
func DebugAssertionsEnabled() bool {
	return debugAssertionsEnabled.Load()
}
