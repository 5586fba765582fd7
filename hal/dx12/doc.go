// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package dx12 implements hal.Device and its collaborator interfaces on top
// of the raw Direct3D 12 bindings in hal/dx12/d3d12.
//
// This package is deliberately narrow: it does not create pipeline states,
// root signatures, or compile shaders. Those are a PSO/root-signature
// database's job, a collaborator this module consumes by interface, not a
// part of it. What lives here is exactly the surface the FrameGraph core
// needs to create resources and heaps, record barriers and copies, and
// submit and synchronize work across the three command queues.
package dx12
