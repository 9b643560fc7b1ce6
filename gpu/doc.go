// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package gpu materializes resource types on a wgpu HAL device.
//
// Each resource kind has a mapper implementing cache.Mapper: BufferMapper,
// TextureMapper, ShaderMapper, PipelineMapper and BindGroupMapper. The
// ResourceCache ties one cache per kind together and dispatches by
// resource.Kind, so callers can synchronize any resource through a single
// entry point.
//
// GPU objects returned by the mappers are stable handles. When a mapper has
// to recreate the underlying HAL object (a buffer that grew, a texture whose
// size changed) it swaps the HAL object inside the same handle and bumps the
// handle's generation. Holders of a handle therefore always see the current
// HAL object, and dependents such as bind groups compare generations to
// decide whether they must be rebuilt.
//
// Nothing in this package is thread-safe.
package gpu
