// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package gpu

import (
	"fmt"
	"slices"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/rgraph/cache"
	"github.com/gogpu/rgraph/resource"
)

// BindGroup is the GPU materialization of a resource.BindGroup.
type BindGroup struct {
	Raw hal.BindGroup

	members []member
	gen     uint64
}

// Generation counts how many HAL bind groups have backed this handle.
func (g *BindGroup) Generation() uint64 { return g.gen }

// member records which GPU object, at which generation, a bind group entry
// was built against.
type member struct {
	slot         uint32
	typ          resource.BindingType
	obj          any
	gen          uint64
	offset, size uint64
}

// BindGroupMapper builds bind groups. Every member and the pipeline are
// synchronized first; the HAL bind group is rebuilt only when a member's HAL
// object was replaced, not when its contents were merely rewritten.
type BindGroupMapper struct {
	device    hal.Device
	retire    *retirement
	buffers   *cache.Cache[*resource.Buffer, *Buffer]
	textures  *cache.Cache[*resource.Texture, *Texture]
	pipelines *cache.Cache[*resource.Pipeline, *Pipeline]
}

// NewBindGroupMapper creates a bind group mapper resolving members through
// the given caches.
func NewBindGroupMapper(
	device hal.Device,
	buffers *cache.Cache[*resource.Buffer, *Buffer],
	textures *cache.Cache[*resource.Texture, *Texture],
	pipelines *cache.Cache[*resource.Pipeline, *Pipeline],
) *BindGroupMapper {
	return &BindGroupMapper{device: device, buffers: buffers, textures: textures, pipelines: pipelines}
}

// Create synchronizes r's members and builds the bind group.
func (m *BindGroupMapper) Create(r *resource.BindGroup) (*BindGroup, error) {
	layout, entries, members, err := m.resolve(r)
	if err != nil {
		return nil, err
	}
	g := &BindGroup{}
	if err := m.build(r, g, layout, entries, members); err != nil {
		return nil, err
	}
	return g, nil
}

// Update synchronizes r's members and rebuilds g if any of them changed
// identity.
func (m *BindGroupMapper) Update(r *resource.BindGroup, g *BindGroup) (*BindGroup, error) {
	layout, entries, members, err := m.resolve(r)
	if err != nil {
		return g, err
	}
	if slices.Equal(members, g.members) {
		return g, nil
	}
	old := g.Raw
	if err := m.build(r, g, layout, entries, members); err != nil {
		return g, err
	}
	if old != nil {
		m.retire.retire(func() { m.device.DestroyBindGroup(old) })
	}
	return g, nil
}

// Dispose destroys the HAL bind group. Members are owned by their own caches.
func (m *BindGroupMapper) Dispose(g *BindGroup) {
	if g == nil || g.Raw == nil {
		return
	}
	raw := g.Raw
	g.Raw = nil
	m.retire.retire(func() { m.device.DestroyBindGroup(raw) })
}

func (m *BindGroupMapper) build(r *resource.BindGroup, g *BindGroup, layout hal.BindGroupLayout, entries []gputypes.BindGroupEntry, members []member) error {
	raw, err := m.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:   r.Label(),
		Layout:  layout,
		Entries: entries,
	})
	if err != nil {
		return fmt.Errorf("create bind group: %w", err)
	}
	g.Raw, g.members = raw, members
	g.gen++
	return nil
}

func (m *BindGroupMapper) resolve(r *resource.BindGroup) (hal.BindGroupLayout, []gputypes.BindGroupEntry, []member, error) {
	if r.Pipeline() == nil {
		return nil, nil, nil, fmt.Errorf("bind group %q: pipeline: %w", r.Label(), ErrNilResource)
	}
	p, err := m.pipelines.Sync(r.Pipeline())
	if err != nil {
		return nil, nil, nil, fmt.Errorf("bind group %q: %w", r.Label(), err)
	}
	layout, ok := p.BindGroupLayout(r.Group())
	if !ok {
		return nil, nil, nil, fmt.Errorf("bind group %q: group %d: %w", r.Label(), r.Group(), ErrGroupIndex)
	}

	entries := make([]gputypes.BindGroupEntry, 0, len(r.Entries()))
	members := make([]member, 0, len(r.Entries())+1)
	members = append(members, member{obj: p, gen: p.Generation()})

	for _, e := range r.Entries() {
		switch e.Type {
		case resource.BindingBuffer:
			if e.Buffer == nil {
				return nil, nil, nil, fmt.Errorf("bind group %q: slot %d: %w", r.Label(), e.Slot, ErrBindingMismatch)
			}
			b, err := m.buffers.Sync(e.Buffer)
			if err != nil {
				return nil, nil, nil, fmt.Errorf("bind group %q: %w", r.Label(), err)
			}
			size := e.Size
			if size == 0 {
				size = b.Size - min(e.Offset, b.Size)
			}
			entries = append(entries, gputypes.BindGroupEntry{
				Binding:  e.Slot,
				Resource: gputypes.BufferBinding{Buffer: b.Raw.NativeHandle(), Offset: e.Offset, Size: size},
			})
			members = append(members, member{slot: e.Slot, typ: e.Type, obj: b, gen: b.gen, offset: e.Offset, size: size})

		case resource.BindingTexture, resource.BindingSampler:
			if e.Texture == nil {
				return nil, nil, nil, fmt.Errorf("bind group %q: slot %d: %w", r.Label(), e.Slot, ErrBindingMismatch)
			}
			t, err := m.textures.Sync(e.Texture)
			if err != nil {
				return nil, nil, nil, fmt.Errorf("bind group %q: %w", r.Label(), err)
			}
			if e.Type == resource.BindingTexture {
				entries = append(entries, gputypes.BindGroupEntry{
					Binding:  e.Slot,
					Resource: gputypes.TextureViewBinding{TextureView: t.View.NativeHandle()},
				})
				members = append(members, member{slot: e.Slot, typ: e.Type, obj: t, gen: t.gen})
			} else {
				entries = append(entries, gputypes.BindGroupEntry{
					Binding:  e.Slot,
					Resource: gputypes.SamplerBinding{Sampler: t.Sampler.NativeHandle()},
				})
				members = append(members, member{slot: e.Slot, typ: e.Type, obj: t, gen: t.samplerGen})
			}

		default:
			return nil, nil, nil, fmt.Errorf("bind group %q: slot %d: binding type %d: %w", r.Label(), e.Slot, e.Type, ErrBindingMismatch)
		}
	}
	return layout, entries, members, nil
}
