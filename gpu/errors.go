// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package gpu

import "errors"

// Sentinel errors returned by the mappers and ResourceCache.
var (
	// ErrNilResource is returned when a nil resource is synchronized.
	ErrNilResource = errors.New("gpu: nil resource")

	// ErrUnknownKind is returned for a resource whose Kind has no mapper.
	ErrUnknownKind = errors.New("gpu: unknown resource kind")

	// ErrEmptyTexture is returned for a texture with zero width or height.
	ErrEmptyTexture = errors.New("gpu: texture has zero size")

	// ErrPixelSize is returned when pixel data does not match the texture size.
	ErrPixelSize = errors.New("gpu: pixel data does not match texture size")

	// ErrShaderSource is returned for a shader without WGSL or SPIR-V code.
	ErrShaderSource = errors.New("gpu: shader has no source")

	// ErrBindingMismatch is returned when a bind group entry is incompatible
	// with its binding type.
	ErrBindingMismatch = errors.New("gpu: bind group entry mismatch")

	// ErrGroupIndex is returned when a bind group names a group the pipeline
	// does not declare.
	ErrGroupIndex = errors.New("gpu: bind group index out of range")
)
