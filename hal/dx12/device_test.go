// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

//go:build windows

package dx12

import (
	"testing"

	"github.com/brawler/framegraph/hal"
	"github.com/brawler/framegraph/hal/dx12/d3d12"
)

func TestToResourceDesc_Buffer(t *testing.T) {
	rd := toResourceDesc(hal.ResourceDescriptor{
		Kind:  hal.ResourceKindBuffer,
		Width: 4096,
	})
	if rd.Dimension != d3d12.D3D12_RESOURCE_DIMENSION_BUFFER {
		t.Errorf("Dimension = %v, want BUFFER", rd.Dimension)
	}
	if rd.Height != 1 || rd.DepthOrArraySize != 1 || rd.MipLevels != 1 {
		t.Errorf("buffer dims not normalized to 1: %+v", rd)
	}
	if rd.Layout != d3d12.D3D12_TEXTURE_LAYOUT_ROW_MAJOR {
		t.Errorf("buffer layout = %v, want ROW_MAJOR", rd.Layout)
	}
}

func TestToResourceDesc_Texture(t *testing.T) {
	rd := toResourceDesc(hal.ResourceDescriptor{
		Kind:              hal.ResourceKindTexture,
		Width:             1920,
		Height:            1080,
		MipLevels:         1,
		AllowRenderTarget: true,
	})
	if rd.Dimension != d3d12.D3D12_RESOURCE_DIMENSION_TEXTURE2D {
		t.Errorf("Dimension = %v, want TEXTURE2D", rd.Dimension)
	}
	if rd.Flags&d3d12.D3D12_RESOURCE_FLAG_ALLOW_RENDER_TARGET == 0 {
		t.Error("AllowRenderTarget did not set the render-target resource flag")
	}
	if rd.SampleDesc.Count != 1 {
		t.Errorf("SampleDesc.Count = %d, want 1 when SampleCount is unset", rd.SampleDesc.Count)
	}
}

func TestToResourceDesc_DenyShaderResource(t *testing.T) {
	rd := toResourceDesc(hal.ResourceDescriptor{
		Kind:                 hal.ResourceKindTexture,
		Width:                256,
		Height:               256,
		AllowDepthStencil:    true,
		AllowUnorderedAccess: true,
		DenyShaderResource:   true,
	})
	want := d3d12.D3D12_RESOURCE_FLAG_ALLOW_DEPTH_STENCIL |
		d3d12.D3D12_RESOURCE_FLAG_ALLOW_UNORDERED_ACCESS |
		d3d12.D3D12_RESOURCE_FLAG_DENY_SHADER_RESOURCE
	if rd.Flags != want {
		t.Errorf("Flags = %v, want %v", rd.Flags, want)
	}
}

func TestHeapFlagsFor(t *testing.T) {
	cases := []struct {
		cat  hal.HeapCategory
		want d3d12.D3D12_HEAP_FLAGS
	}{
		{hal.HeapCategoryMixed, d3d12.D3D12_HEAP_FLAG_NONE},
		{hal.HeapCategoryBuffersOnly, d3d12.D3D12_HEAP_FLAG_ALLOW_ONLY_BUFFERS},
		{hal.HeapCategoryNonRTDSTexturesOnly, d3d12.D3D12_HEAP_FLAG_ALLOW_ONLY_NON_RT_DS_TEXTURES},
		{hal.HeapCategoryRTDSTexturesOnly, d3d12.D3D12_HEAP_FLAG_ALLOW_ONLY_RT_DS_TEXTURES},
	}
	for _, c := range cases {
		if got := heapFlagsFor(c.cat); got != c.want {
			t.Errorf("heapFlagsFor(%v) = %v, want %v", c.cat, got, c.want)
		}
	}
}

func TestListTypeFor(t *testing.T) {
	cases := []struct {
		kind hal.QueueKind
		want d3d12.D3D12_COMMAND_LIST_TYPE
	}{
		{hal.QueueGraphics, d3d12.D3D12_COMMAND_LIST_TYPE_DIRECT},
		{hal.QueueCompute, d3d12.D3D12_COMMAND_LIST_TYPE_COMPUTE},
		{hal.QueueCopy, d3d12.D3D12_COMMAND_LIST_TYPE_COPY},
	}
	for _, c := range cases {
		if got := listTypeFor(c.kind); got != c.want {
			t.Errorf("listTypeFor(%v) = %v, want %v", c.kind, got, c.want)
		}
	}
}

func TestMaxU32(t *testing.T) {
	if maxU32(3, 5) != 5 {
		t.Error("maxU32(3, 5) != 5")
	}
	if maxU32(5, 3) != 5 {
		t.Error("maxU32(5, 3) != 5")
	}
}
