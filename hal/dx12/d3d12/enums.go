// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

//go:build windows

package d3d12

// Scalar enum types referenced by the struct definitions in types.go and the
// vtable call wrappers in device.go, with the constant values the D3D12
// headers define. These were split out into their own file because the
// const blocks are long and touch nearly every struct in the package.

type D3D12_HEAP_TYPE uint32

const (
	D3D12_HEAP_TYPE_DEFAULT  D3D12_HEAP_TYPE = 1
	D3D12_HEAP_TYPE_UPLOAD   D3D12_HEAP_TYPE = 2
	D3D12_HEAP_TYPE_READBACK D3D12_HEAP_TYPE = 3
	D3D12_HEAP_TYPE_CUSTOM   D3D12_HEAP_TYPE = 4
)

type D3D12_CPU_PAGE_PROPERTY uint32

const (
	D3D12_CPU_PAGE_PROPERTY_UNKNOWN       D3D12_CPU_PAGE_PROPERTY = 0
	D3D12_CPU_PAGE_PROPERTY_NOT_AVAILABLE D3D12_CPU_PAGE_PROPERTY = 1
	D3D12_CPU_PAGE_PROPERTY_WRITE_COMBINE D3D12_CPU_PAGE_PROPERTY = 2
	D3D12_CPU_PAGE_PROPERTY_WRITE_BACK    D3D12_CPU_PAGE_PROPERTY = 3
)

type D3D12_MEMORY_POOL uint32

const (
	D3D12_MEMORY_POOL_UNKNOWN D3D12_MEMORY_POOL = 0
	D3D12_MEMORY_POOL_L0      D3D12_MEMORY_POOL = 1
	D3D12_MEMORY_POOL_L1      D3D12_MEMORY_POOL = 2
)

type D3D12_HEAP_FLAGS uint32

const (
	D3D12_HEAP_FLAG_NONE                           D3D12_HEAP_FLAGS = 0
	D3D12_HEAP_FLAG_SHARED                         D3D12_HEAP_FLAGS = 0x1
	D3D12_HEAP_FLAG_DENY_BUFFERS                   D3D12_HEAP_FLAGS = 0x4
	D3D12_HEAP_FLAG_ALLOW_DISPLAY                  D3D12_HEAP_FLAGS = 0x8
	D3D12_HEAP_FLAG_SHARED_CROSS_ADAPTER           D3D12_HEAP_FLAGS = 0x20
	D3D12_HEAP_FLAG_DENY_RT_DS_TEXTURES            D3D12_HEAP_FLAGS = 0x40
	D3D12_HEAP_FLAG_DENY_NON_RT_DS_TEXTURES        D3D12_HEAP_FLAGS = 0x80
	D3D12_HEAP_FLAG_ALLOW_ALL_BUFFERS_AND_TEXTURES D3D12_HEAP_FLAGS = 0
	D3D12_HEAP_FLAG_ALLOW_ONLY_BUFFERS             D3D12_HEAP_FLAGS = D3D12_HEAP_FLAG_DENY_RT_DS_TEXTURES | D3D12_HEAP_FLAG_DENY_NON_RT_DS_TEXTURES
	D3D12_HEAP_FLAG_ALLOW_ONLY_NON_RT_DS_TEXTURES  D3D12_HEAP_FLAGS = D3D12_HEAP_FLAG_DENY_BUFFERS | D3D12_HEAP_FLAG_DENY_RT_DS_TEXTURES
	D3D12_HEAP_FLAG_ALLOW_ONLY_RT_DS_TEXTURES      D3D12_HEAP_FLAGS = D3D12_HEAP_FLAG_DENY_BUFFERS | D3D12_HEAP_FLAG_DENY_NON_RT_DS_TEXTURES
)

type D3D12_RESOURCE_DIMENSION uint32

const (
	D3D12_RESOURCE_DIMENSION_UNKNOWN   D3D12_RESOURCE_DIMENSION = 0
	D3D12_RESOURCE_DIMENSION_BUFFER    D3D12_RESOURCE_DIMENSION = 1
	D3D12_RESOURCE_DIMENSION_TEXTURE1D D3D12_RESOURCE_DIMENSION = 2
	D3D12_RESOURCE_DIMENSION_TEXTURE2D D3D12_RESOURCE_DIMENSION = 3
	D3D12_RESOURCE_DIMENSION_TEXTURE3D D3D12_RESOURCE_DIMENSION = 4
)

type D3D12_TEXTURE_LAYOUT uint32

const (
	D3D12_TEXTURE_LAYOUT_UNKNOWN                D3D12_TEXTURE_LAYOUT = 0
	D3D12_TEXTURE_LAYOUT_ROW_MAJOR              D3D12_TEXTURE_LAYOUT = 1
	D3D12_TEXTURE_LAYOUT_64KB_UNDEFINED_SWIZZLE D3D12_TEXTURE_LAYOUT = 2
	D3D12_TEXTURE_LAYOUT_64KB_STANDARD_SWIZZLE  D3D12_TEXTURE_LAYOUT = 3
)

type D3D12_RESOURCE_FLAGS uint32

const (
	D3D12_RESOURCE_FLAG_NONE                      D3D12_RESOURCE_FLAGS = 0
	D3D12_RESOURCE_FLAG_ALLOW_RENDER_TARGET       D3D12_RESOURCE_FLAGS = 0x1
	D3D12_RESOURCE_FLAG_ALLOW_DEPTH_STENCIL       D3D12_RESOURCE_FLAGS = 0x2
	D3D12_RESOURCE_FLAG_ALLOW_UNORDERED_ACCESS    D3D12_RESOURCE_FLAGS = 0x4
	D3D12_RESOURCE_FLAG_DENY_SHADER_RESOURCE      D3D12_RESOURCE_FLAGS = 0x8
	D3D12_RESOURCE_FLAG_ALLOW_CROSS_ADAPTER       D3D12_RESOURCE_FLAGS = 0x10
	D3D12_RESOURCE_FLAG_ALLOW_SIMULTANEOUS_ACCESS D3D12_RESOURCE_FLAGS = 0x20
)

// D3D12_RESOURCE_STATES mirrors the bitmask of hal.ResourceState; the two
// types carry identical values so the submission layer can convert between
// them with a plain cast instead of a lookup table.
type D3D12_RESOURCE_STATES uint32

const (
	D3D12_RESOURCE_STATE_COMMON                     D3D12_RESOURCE_STATES = 0
	D3D12_RESOURCE_STATE_VERTEX_AND_CONSTANT_BUFFER D3D12_RESOURCE_STATES = 0x1
	D3D12_RESOURCE_STATE_INDEX_BUFFER               D3D12_RESOURCE_STATES = 0x2
	D3D12_RESOURCE_STATE_RENDER_TARGET              D3D12_RESOURCE_STATES = 0x4
	D3D12_RESOURCE_STATE_UNORDERED_ACCESS           D3D12_RESOURCE_STATES = 0x8
	D3D12_RESOURCE_STATE_DEPTH_WRITE                D3D12_RESOURCE_STATES = 0x10
	D3D12_RESOURCE_STATE_DEPTH_READ                 D3D12_RESOURCE_STATES = 0x20
	D3D12_RESOURCE_STATE_NON_PIXEL_SHADER_RESOURCE  D3D12_RESOURCE_STATES = 0x40
	D3D12_RESOURCE_STATE_PIXEL_SHADER_RESOURCE      D3D12_RESOURCE_STATES = 0x80
	D3D12_RESOURCE_STATE_STREAM_OUT                 D3D12_RESOURCE_STATES = 0x100
	D3D12_RESOURCE_STATE_INDIRECT_ARGUMENT          D3D12_RESOURCE_STATES = 0x200
	D3D12_RESOURCE_STATE_COPY_DEST                  D3D12_RESOURCE_STATES = 0x400
	D3D12_RESOURCE_STATE_COPY_SOURCE                D3D12_RESOURCE_STATES = 0x800
	D3D12_RESOURCE_STATE_RESOLVE_DEST               D3D12_RESOURCE_STATES = 0x1000
	D3D12_RESOURCE_STATE_RESOLVE_SOURCE             D3D12_RESOURCE_STATES = 0x2000
	D3D12_RESOURCE_STATE_GENERIC_READ               D3D12_RESOURCE_STATES = 0x1 | 0x2 | 0x40 | 0x80 | 0x200 | 0x800
	D3D12_RESOURCE_STATE_PRESENT                    D3D12_RESOURCE_STATES = 0
	D3D12_RESOURCE_BARRIER_ALL_SUBRESOURCES         uint32                = 0xffffffff
)

type D3D12_RESOURCE_BARRIER_TYPE uint32

const (
	D3D12_RESOURCE_BARRIER_TYPE_TRANSITION D3D12_RESOURCE_BARRIER_TYPE = 0
	D3D12_RESOURCE_BARRIER_TYPE_ALIASING   D3D12_RESOURCE_BARRIER_TYPE = 1
	D3D12_RESOURCE_BARRIER_TYPE_UAV        D3D12_RESOURCE_BARRIER_TYPE = 2
)

type D3D12_RESOURCE_BARRIER_FLAGS uint32

const (
	D3D12_RESOURCE_BARRIER_FLAG_NONE       D3D12_RESOURCE_BARRIER_FLAGS = 0
	D3D12_RESOURCE_BARRIER_FLAG_BEGIN_ONLY D3D12_RESOURCE_BARRIER_FLAGS = 0x1
	D3D12_RESOURCE_BARRIER_FLAG_END_ONLY   D3D12_RESOURCE_BARRIER_FLAGS = 0x2
)

type D3D12_COMMAND_LIST_TYPE uint32

const (
	D3D12_COMMAND_LIST_TYPE_DIRECT  D3D12_COMMAND_LIST_TYPE = 0
	D3D12_COMMAND_LIST_TYPE_BUNDLE  D3D12_COMMAND_LIST_TYPE = 1
	D3D12_COMMAND_LIST_TYPE_COMPUTE D3D12_COMMAND_LIST_TYPE = 2
	D3D12_COMMAND_LIST_TYPE_COPY    D3D12_COMMAND_LIST_TYPE = 3
)

type D3D12_COMMAND_QUEUE_FLAGS uint32

const (
	D3D12_COMMAND_QUEUE_FLAG_NONE                D3D12_COMMAND_QUEUE_FLAGS = 0
	D3D12_COMMAND_QUEUE_FLAG_DISABLE_GPU_TIMEOUT D3D12_COMMAND_QUEUE_FLAGS = 0x1
)

type D3D12_FENCE_FLAGS uint32

const (
	D3D12_FENCE_FLAG_NONE                 D3D12_FENCE_FLAGS = 0
	D3D12_FENCE_FLAG_SHARED               D3D12_FENCE_FLAGS = 0x1
	D3D12_FENCE_FLAG_SHARED_CROSS_ADAPTER D3D12_FENCE_FLAGS = 0x2
)

type D3D12_DESCRIPTOR_HEAP_TYPE uint32

const (
	D3D12_DESCRIPTOR_HEAP_TYPE_CBV_SRV_UAV D3D12_DESCRIPTOR_HEAP_TYPE = 0
	D3D12_DESCRIPTOR_HEAP_TYPE_SAMPLER     D3D12_DESCRIPTOR_HEAP_TYPE = 1
	D3D12_DESCRIPTOR_HEAP_TYPE_RTV         D3D12_DESCRIPTOR_HEAP_TYPE = 2
	D3D12_DESCRIPTOR_HEAP_TYPE_DSV         D3D12_DESCRIPTOR_HEAP_TYPE = 3
)

type D3D12_DESCRIPTOR_HEAP_FLAGS uint32

const (
	D3D12_DESCRIPTOR_HEAP_FLAG_NONE           D3D12_DESCRIPTOR_HEAP_FLAGS = 0
	D3D12_DESCRIPTOR_HEAP_FLAG_SHADER_VISIBLE D3D12_DESCRIPTOR_HEAP_FLAGS = 0x1
)

type D3D12_CLEAR_FLAGS uint32

const (
	D3D12_CLEAR_FLAG_DEPTH   D3D12_CLEAR_FLAGS = 0x1
	D3D12_CLEAR_FLAG_STENCIL D3D12_CLEAR_FLAGS = 0x2
)

// D3D12_FEATURE selects which D3D12_FEATURE_DATA_* struct
// CheckFeatureSupport populates.
type D3D12_FEATURE uint32

const (
	D3D12_FEATURE_D3D12_OPTIONS  D3D12_FEATURE = 0
	D3D12_FEATURE_FEATURE_LEVELS D3D12_FEATURE = 7
	D3D12_FEATURE_SHADER_MODEL   D3D12_FEATURE = 23
)

type D3D_FEATURE_LEVEL uint32

const (
	D3D_FEATURE_LEVEL_11_0 D3D_FEATURE_LEVEL = 0xb000
	D3D_FEATURE_LEVEL_11_1 D3D_FEATURE_LEVEL = 0xb100
	D3D_FEATURE_LEVEL_12_0 D3D_FEATURE_LEVEL = 0xc000
	D3D_FEATURE_LEVEL_12_1 D3D_FEATURE_LEVEL = 0xc100
	D3D_FEATURE_LEVEL_12_2 D3D_FEATURE_LEVEL = 0xc200
)

type D3D_SHADER_MODEL uint32

type D3D_PRIMITIVE_TOPOLOGY uint32

const (
	D3D_PRIMITIVE_TOPOLOGY_UNDEFINED     D3D_PRIMITIVE_TOPOLOGY = 0
	D3D_PRIMITIVE_TOPOLOGY_POINTLIST     D3D_PRIMITIVE_TOPOLOGY = 1
	D3D_PRIMITIVE_TOPOLOGY_LINELIST      D3D_PRIMITIVE_TOPOLOGY = 2
	D3D_PRIMITIVE_TOPOLOGY_TRIANGLELIST  D3D_PRIMITIVE_TOPOLOGY = 4
	D3D_PRIMITIVE_TOPOLOGY_TRIANGLESTRIP D3D_PRIMITIVE_TOPOLOGY = 5
)

// DXGI_FORMAT carries the standard DXGI format values d3d12 resource
// descriptors reference. Declared here so the package stands alone; hosts
// with their own DXGI bindings cast at the boundary.
type DXGI_FORMAT uint32

const (
	DXGI_FORMAT_UNKNOWN             DXGI_FORMAT = 0
	DXGI_FORMAT_R8G8B8A8_UNORM      DXGI_FORMAT = 28
	DXGI_FORMAT_R8G8B8A8_UNORM_SRGB DXGI_FORMAT = 29
	DXGI_FORMAT_B8G8R8A8_UNORM      DXGI_FORMAT = 87
	DXGI_FORMAT_D32_FLOAT           DXGI_FORMAT = 40
	DXGI_FORMAT_D24_UNORM_S8_UINT   DXGI_FORMAT = 45
	DXGI_FORMAT_R32G32B32A32_FLOAT  DXGI_FORMAT = 2
	DXGI_FORMAT_R16G16B16A16_FLOAT  DXGI_FORMAT = 10
	DXGI_FORMAT_R32_UINT            DXGI_FORMAT = 42
	DXGI_FORMAT_R32_FLOAT           DXGI_FORMAT = 41
)

type D3D12_FILL_MODE uint32

const (
	D3D12_FILL_MODE_WIREFRAME D3D12_FILL_MODE = 2
	D3D12_FILL_MODE_SOLID     D3D12_FILL_MODE = 3
)

type D3D12_CULL_MODE uint32

const (
	D3D12_CULL_MODE_NONE  D3D12_CULL_MODE = 1
	D3D12_CULL_MODE_FRONT D3D12_CULL_MODE = 2
	D3D12_CULL_MODE_BACK  D3D12_CULL_MODE = 3
)

type D3D12_CONSERVATIVE_RASTERIZATION_MODE uint32

type D3D12_INPUT_CLASSIFICATION uint32

const (
	D3D12_INPUT_CLASSIFICATION_PER_VERTEX_DATA   D3D12_INPUT_CLASSIFICATION = 0
	D3D12_INPUT_CLASSIFICATION_PER_INSTANCE_DATA D3D12_INPUT_CLASSIFICATION = 1
)

type D3D12_QUERY_HEAP_TYPE uint32

const (
	D3D12_QUERY_HEAP_TYPE_OCCLUSION           D3D12_QUERY_HEAP_TYPE = 0
	D3D12_QUERY_HEAP_TYPE_TIMESTAMP           D3D12_QUERY_HEAP_TYPE = 1
	D3D12_QUERY_HEAP_TYPE_PIPELINE_STATISTICS D3D12_QUERY_HEAP_TYPE = 2
)

type D3D12_RENDER_PASS_BEGINNING_ACCESS_TYPE uint32

const (
	D3D12_RENDER_PASS_BEGINNING_ACCESS_TYPE_DISCARD  D3D12_RENDER_PASS_BEGINNING_ACCESS_TYPE = 0
	D3D12_RENDER_PASS_BEGINNING_ACCESS_TYPE_PRESERVE D3D12_RENDER_PASS_BEGINNING_ACCESS_TYPE = 1
	D3D12_RENDER_PASS_BEGINNING_ACCESS_TYPE_CLEAR    D3D12_RENDER_PASS_BEGINNING_ACCESS_TYPE = 2
)

type D3D12_RENDER_PASS_ENDING_ACCESS_TYPE uint32

const (
	D3D12_RENDER_PASS_ENDING_ACCESS_TYPE_DISCARD  D3D12_RENDER_PASS_ENDING_ACCESS_TYPE = 0
	D3D12_RENDER_PASS_ENDING_ACCESS_TYPE_PRESERVE D3D12_RENDER_PASS_ENDING_ACCESS_TYPE = 1
	D3D12_RENDER_PASS_ENDING_ACCESS_TYPE_RESOLVE  D3D12_RENDER_PASS_ENDING_ACCESS_TYPE = 2
)

// D3D12_MESSAGE_CATEGORY classifies an ID3D12InfoQueue debug-layer message.
type D3D12_MESSAGE_CATEGORY uint32

const (
	D3D12_MESSAGE_CATEGORY_APPLICATION_DEFINED   D3D12_MESSAGE_CATEGORY = 0
	D3D12_MESSAGE_CATEGORY_MISCELLANEOUS         D3D12_MESSAGE_CATEGORY = 1
	D3D12_MESSAGE_CATEGORY_INITIALIZATION        D3D12_MESSAGE_CATEGORY = 2
	D3D12_MESSAGE_CATEGORY_CLEANUP               D3D12_MESSAGE_CATEGORY = 3
	D3D12_MESSAGE_CATEGORY_COMPILATION           D3D12_MESSAGE_CATEGORY = 4
	D3D12_MESSAGE_CATEGORY_STATE_CREATION        D3D12_MESSAGE_CATEGORY = 5
	D3D12_MESSAGE_CATEGORY_STATE_SETTING         D3D12_MESSAGE_CATEGORY = 6
	D3D12_MESSAGE_CATEGORY_STATE_GETTING         D3D12_MESSAGE_CATEGORY = 7
	D3D12_MESSAGE_CATEGORY_RESOURCE_MANIPULATION D3D12_MESSAGE_CATEGORY = 8
	D3D12_MESSAGE_CATEGORY_EXECUTION             D3D12_MESSAGE_CATEGORY = 9
	D3D12_MESSAGE_CATEGORY_SHADER                D3D12_MESSAGE_CATEGORY = 10
)

// D3D12_MESSAGE_SEVERITY ranks an ID3D12InfoQueue debug-layer message.
type D3D12_MESSAGE_SEVERITY uint32

const (
	D3D12_MESSAGE_SEVERITY_CORRUPTION D3D12_MESSAGE_SEVERITY = 0
	D3D12_MESSAGE_SEVERITY_ERROR      D3D12_MESSAGE_SEVERITY = 1
	D3D12_MESSAGE_SEVERITY_WARNING    D3D12_MESSAGE_SEVERITY = 2
	D3D12_MESSAGE_SEVERITY_INFO       D3D12_MESSAGE_SEVERITY = 3
	D3D12_MESSAGE_SEVERITY_MESSAGE    D3D12_MESSAGE_SEVERITY = 4
)

// D3D12_MESSAGE_ID identifies the specific debug-layer message; the full
// enumeration runs into the thousands and this package only names the ones
// the loader itself ever inspects.
type D3D12_MESSAGE_ID uint32
