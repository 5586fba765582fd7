// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

//go:build windows

package d3d12

import "unsafe"

// NewSubresourceCopyLocation builds a D3D12_TEXTURE_COPY_LOCATION addressing
// a whole subresource of resource by index, the form CopyTextureRegion needs
// when copying between two non-buffer resources rather than to or from a
// placed footprint in an upload/readback buffer.
func NewSubresourceCopyLocation(resource *ID3D12Resource, subresource uint32) D3D12_TEXTURE_COPY_LOCATION {
	loc := D3D12_TEXTURE_COPY_LOCATION{
		Resource: resource,
		Type:     D3D12_TEXTURE_COPY_TYPE_SUBRESOURCE_INDEX,
	}
	*(*uint32)(unsafe.Pointer(&loc.Union[0])) = subresource
	return loc
}
