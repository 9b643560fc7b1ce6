// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package gpu

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/rgraph"
	"github.com/gogpu/rgraph/cache"
	"github.com/gogpu/rgraph/resource"
)

// Pipeline is the GPU materialization of a resource.Pipeline.
//
// Pipelines with identical descriptions built from the same shader module
// share one set of HAL objects.
type Pipeline struct {
	obj *pipelineObject
	key uint64
	gen uint64
}

// Render returns the render pipeline, or nil for a compute pipeline.
func (p *Pipeline) Render() hal.RenderPipeline { return p.obj.render }

// Compute returns the compute pipeline, or nil for a render pipeline.
func (p *Pipeline) Compute() hal.ComputePipeline { return p.obj.compute }

// Layout returns the pipeline layout.
func (p *Pipeline) Layout() hal.PipelineLayout { return p.obj.layout }

// BindGroupLayout returns the layout of the given group.
func (p *Pipeline) BindGroupLayout(group uint32) (hal.BindGroupLayout, bool) {
	if int(group) >= len(p.obj.groups) {
		return nil, false
	}
	return p.obj.groups[group], true
}

// Key returns the descriptor hash the pipeline is shared under.
func (p *Pipeline) Key() uint64 { return p.key }

// Generation counts how many distinct HAL pipelines have backed this handle.
func (p *Pipeline) Generation() uint64 { return p.gen }

type pipelineObject struct {
	render  hal.RenderPipeline
	compute hal.ComputePipeline
	layout  hal.PipelineLayout
	groups  []hal.BindGroupLayout
	refs    int
}

// PipelineMapper builds render and compute pipelines.
//
// The pipeline's shader is synchronized through the shader cache first, so a
// shader edit is picked up before the pipeline is rebuilt. Descriptions are
// hashed; identical ones share HAL objects with reference counting.
type PipelineMapper struct {
	device  hal.Device
	shaders *cache.Cache[*resource.Shader, *ShaderModule]
	shared  map[uint64]*pipelineObject
	retire  *retirement
}

// NewPipelineMapper creates a pipeline mapper that resolves shaders through
// shaders.
func NewPipelineMapper(device hal.Device, shaders *cache.Cache[*resource.Shader, *ShaderModule]) *PipelineMapper {
	return &PipelineMapper{
		device:  device,
		shaders: shaders,
		shared:  make(map[uint64]*pipelineObject),
	}
}

// Create builds or shares the pipeline for r.
func (m *PipelineMapper) Create(r *resource.Pipeline) (*Pipeline, error) {
	key, sm, err := m.resolve(r)
	if err != nil {
		return nil, err
	}
	obj, err := m.acquire(key, r, sm)
	if err != nil {
		return nil, err
	}
	return &Pipeline{obj: obj, key: key, gen: 1}, nil
}

// Update rebuilds p only if the description or shader module changed.
func (m *PipelineMapper) Update(r *resource.Pipeline, p *Pipeline) (*Pipeline, error) {
	key, sm, err := m.resolve(r)
	if err != nil {
		return p, err
	}
	if key == p.key {
		return p, nil
	}
	obj, err := m.acquire(key, r, sm)
	if err != nil {
		return p, err
	}
	m.release(p.key, p.obj)
	p.obj, p.key = obj, key
	p.gen++
	return p, nil
}

// Dispose drops p's reference to the shared HAL objects.
func (m *PipelineMapper) Dispose(p *Pipeline) {
	if p == nil || p.obj == nil {
		return
	}
	m.release(p.key, p.obj)
	p.obj = nil
}

// Shared returns the number of distinct HAL pipelines alive.
func (m *PipelineMapper) Shared() int {
	return len(m.shared)
}

func (m *PipelineMapper) resolve(r *resource.Pipeline) (uint64, *ShaderModule, error) {
	if r.Shader() == nil {
		return 0, nil, fmt.Errorf("pipeline %q: shader: %w", r.Label(), ErrNilResource)
	}
	sm, err := m.shaders.Sync(r.Shader())
	if err != nil {
		return 0, nil, fmt.Errorf("pipeline %q: %w", r.Label(), err)
	}
	return pipelineKey(r.Desc(), r.Shader().ID(), sm.Generation()), sm, nil
}

func (m *PipelineMapper) acquire(key uint64, r *resource.Pipeline, sm *ShaderModule) (*pipelineObject, error) {
	if obj, ok := m.shared[key]; ok {
		obj.refs++
		return obj, nil
	}
	obj, err := m.build(r, sm)
	if err != nil {
		return nil, err
	}
	obj.refs = 1
	m.shared[key] = obj
	rgraph.Logger().Debug("gpu: pipeline built", "label", r.Label(), "key", key, "compute", r.Desc().Compute)
	return obj, nil
}

func (m *PipelineMapper) release(key uint64, obj *pipelineObject) {
	obj.refs--
	if obj.refs > 0 {
		return
	}
	delete(m.shared, key)
	dead := *obj
	*obj = pipelineObject{}
	m.retire.retire(func() { m.destroy(&dead) })
}

func (m *PipelineMapper) build(r *resource.Pipeline, sm *ShaderModule) (*pipelineObject, error) {
	d := r.Desc()
	obj := &pipelineObject{}

	for i, entries := range d.Groups {
		bgl, err := m.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
			Label:   fmt.Sprintf("%s_group%d", r.Label(), i),
			Entries: entries,
		})
		if err != nil {
			m.destroy(obj)
			return nil, fmt.Errorf("create bind group layout %d: %w", i, err)
		}
		obj.groups = append(obj.groups, bgl)
	}

	layout, err := m.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            r.Label() + "_layout",
		BindGroupLayouts: obj.groups,
	})
	if err != nil {
		m.destroy(obj)
		return nil, fmt.Errorf("create pipeline layout: %w", err)
	}
	obj.layout = layout

	if d.Compute {
		obj.compute, err = m.device.CreateComputePipeline(&hal.ComputePipelineDescriptor{
			Label:   r.Label(),
			Layout:  layout,
			Compute: hal.ComputeState{Module: sm.Raw, EntryPoint: entryOr(d.ComputeEntry, "cs_main")},
		})
		if err != nil {
			m.destroy(obj)
			return nil, fmt.Errorf("create compute pipeline: %w", err)
		}
		return obj, nil
	}

	targets := make([]gputypes.ColorTargetState, len(d.ColorFormats))
	for i, f := range d.ColorFormats {
		targets[i] = gputypes.ColorTargetState{Format: f, Blend: d.Blend, WriteMask: gputypes.ColorWriteMaskAll}
	}
	desc := &hal.RenderPipelineDescriptor{
		Label:  r.Label(),
		Layout: layout,
		Vertex: hal.VertexState{
			Module:     sm.Raw,
			EntryPoint: entryOr(d.VertexEntry, "vs_main"),
			Buffers:    d.VertexBuffers,
		},
		Primitive: gputypes.PrimitiveState{
			Topology: d.Topology,
			CullMode: d.CullMode,
		},
		Multisample: gputypes.DefaultMultisampleState(),
	}
	if d.SampleCount > 1 {
		desc.Multisample.Count = d.SampleCount
	}
	if d.DepthFormat != gputypes.TextureFormatUndefined {
		compare := d.DepthCompare
		if compare == gputypes.CompareFunctionUndefined {
			compare = gputypes.CompareFunctionLess
		}
		desc.DepthStencil = &hal.DepthStencilState{
			Format:            d.DepthFormat,
			DepthWriteEnabled: d.DepthWrite,
			DepthCompare:      compare,
			StencilReadMask:   0xFFFFFFFF,
			StencilWriteMask:  0xFFFFFFFF,
		}
	}
	if len(targets) > 0 {
		desc.Fragment = &hal.FragmentState{
			Module:     sm.Raw,
			EntryPoint: entryOr(d.FragmentEntry, "fs_main"),
			Targets:    targets,
		}
	}

	obj.render, err = m.device.CreateRenderPipeline(desc)
	if err != nil {
		m.destroy(obj)
		return nil, fmt.Errorf("create render pipeline: %w", err)
	}
	return obj, nil
}

func (m *PipelineMapper) destroy(obj *pipelineObject) {
	if obj.render != nil {
		m.device.DestroyRenderPipeline(obj.render)
	}
	if obj.compute != nil {
		m.device.DestroyComputePipeline(obj.compute)
	}
	if obj.layout != nil {
		m.device.DestroyPipelineLayout(obj.layout)
	}
	for _, g := range obj.groups {
		m.device.DestroyBindGroupLayout(g)
	}
	*obj = pipelineObject{}
}

func entryOr(entry, fallback string) string {
	if entry == "" {
		return fallback
	}
	return entry
}
