package hal

import "errors"

// Sentinel errors returned by the HAL layer. Each maps to one of the four
// error categories the core distinguishes: fatal OOM, device loss, a
// recoverable API error, or a device/adapter initialization failure.
var (
	// ErrDeviceOutOfMemory indicates the GPU has exhausted its memory.
	// This is unrecoverable for the allocation that triggered it - the
	// caller should fall back to evicting residents or fail the frame.
	ErrDeviceOutOfMemory = errors.New("hal: device out of memory")

	// ErrDeviceLost indicates the GPU device has been lost (driver crash,
	// GPU hardware disconnection, or TDR timeout). The device cannot be
	// recovered and must be recreated from scratch, along with every
	// resource and the FrameGraph built on top of it.
	ErrDeviceLost = errors.New("hal: device lost")

	// ErrTimeout indicates a CPU-side wait (fence, residency operation)
	// exceeded its deadline. Recoverable: the caller may retry or widen
	// the timeout.
	ErrTimeout = errors.New("hal: timeout")

	// ErrAdapterNotFound indicates no suitable D3D12 adapter was found
	// at device-creation time. This is an initialization failure, not a
	// runtime condition: the caller should report it and exit.
	ErrAdapterNotFound = errors.New("hal: no suitable D3D12 adapter found")

	// ErrFeatureLevelUnsupported indicates the adapter does not support
	// the minimum D3D12 feature level this module requires.
	ErrFeatureLevelUnsupported = errors.New("hal: adapter does not meet minimum feature level")
)
