// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package gpu

import (
	"fmt"

	"github.com/cespare/xxhash/v2"
	"github.com/gogpu/naga"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/rgraph/internal/lru"
	"github.com/gogpu/rgraph/resource"
)

// compiled memoizes WGSL compilations by source hash, so hot-reloading a
// shader back to an earlier source or building the same source under two
// labels compiles once.
var compiled = lru.New[uint64, []uint32](64)

// ShaderModule is the GPU materialization of a resource.Shader.
type ShaderModule struct {
	Raw   hal.ShaderModule
	SPIRV []uint32

	gen uint64
}

// Generation counts how many HAL modules have backed this handle.
func (s *ShaderModule) Generation() uint64 { return s.gen }

// ShaderMapper compiles shaders to SPIR-V with naga and creates HAL shader
// modules. An update recompiles and replaces the module inside the same
// handle.
type ShaderMapper struct {
	device hal.Device
	retire *retirement
}

// NewShaderMapper creates a shader mapper.
func NewShaderMapper(device hal.Device) *ShaderMapper {
	return &ShaderMapper{device: device}
}

// Create compiles r and creates its shader module.
func (m *ShaderMapper) Create(r *resource.Shader) (*ShaderModule, error) {
	s := &ShaderModule{}
	if err := m.build(r, s); err != nil {
		return nil, err
	}
	return s, nil
}

// Update recompiles r. On failure s keeps its previous module.
func (m *ShaderMapper) Update(r *resource.Shader, s *ShaderModule) (*ShaderModule, error) {
	old := s.Raw
	if err := m.build(r, s); err != nil {
		return s, err
	}
	if old != nil {
		m.retire.retire(func() { m.device.DestroyShaderModule(old) })
	}
	return s, nil
}

// Dispose destroys the shader module.
func (m *ShaderMapper) Dispose(s *ShaderModule) {
	if s == nil || s.Raw == nil {
		return
	}
	raw := s.Raw
	s.Raw = nil
	m.retire.retire(func() { m.device.DestroyShaderModule(raw) })
}

func (m *ShaderMapper) build(r *resource.Shader, s *ShaderModule) error {
	code := r.SPIRV()
	if code == nil {
		if r.WGSL() == "" {
			return fmt.Errorf("shader %q: %w", r.Label(), ErrShaderSource)
		}
		var err error
		code, err = CompileWGSL(r.WGSL())
		if err != nil {
			return fmt.Errorf("shader %q: %w", r.Label(), err)
		}
	}

	raw, err := m.device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  r.Label(),
		Source: hal.ShaderSource{SPIRV: code},
	})
	if err != nil {
		return fmt.Errorf("create shader module: %w", err)
	}
	s.Raw, s.SPIRV = raw, code
	s.gen++
	return nil
}

// CompileWGSL compiles WGSL source to SPIR-V words. Results are memoized
// process-wide; the returned slice is shared and must not be modified.
func CompileWGSL(source string) ([]uint32, error) {
	return compiled.GetOrCreate(xxhash.Sum64String(source), func() ([]uint32, error) {
		return compileWGSL(source)
	})
}

func compileWGSL(source string) ([]uint32, error) {
	spirvBytes, err := naga.Compile(source)
	if err != nil {
		return nil, fmt.Errorf("compile shader: %w", err)
	}

	// SPIR-V is little-endian 32-bit words
	code := make([]uint32, len(spirvBytes)/4)
	for i := range code {
		code[i] = uint32(spirvBytes[i*4]) |
			uint32(spirvBytes[i*4+1])<<8 |
			uint32(spirvBytes[i*4+2])<<16 |
			uint32(spirvBytes[i*4+3])<<24
	}
	return code, nil
}
