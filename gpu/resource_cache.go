// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package gpu

import (
	"fmt"

	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/rgraph"
	"github.com/gogpu/rgraph/cache"
	"github.com/gogpu/rgraph/resource"
)

// ResourceCache owns one versioned cache per resource kind on a device.
//
// ResourceCache is NOT thread-safe.
type ResourceCache struct {
	device hal.Device
	queue  hal.Queue

	buffers    *cache.Cache[*resource.Buffer, *Buffer]
	textures   *cache.Cache[*resource.Texture, *Texture]
	shaders    *cache.Cache[*resource.Shader, *ShaderModule]
	pipelines  *cache.Cache[*resource.Pipeline, *Pipeline]
	bindGroups *cache.Cache[*resource.BindGroup, *BindGroup]

	pipelineMapper *PipelineMapper
	retirement     retirement
}

// NewResourceCache creates an empty resource cache for device and queue.
func NewResourceCache(device hal.Device, queue hal.Queue) *ResourceCache {
	c := &ResourceCache{device: device, queue: queue}

	buffers := NewBufferMapper(device, queue)
	textures := NewTextureMapper(device, queue)
	shaders := NewShaderMapper(device)
	buffers.retire, textures.retire, shaders.retire = &c.retirement, &c.retirement, &c.retirement
	c.buffers = cache.New[*resource.Buffer, *Buffer]("buffers", buffers)
	c.textures = cache.New[*resource.Texture, *Texture]("textures", textures)
	c.shaders = cache.New[*resource.Shader, *ShaderModule]("shaders", shaders)

	c.pipelineMapper = NewPipelineMapper(device, c.shaders)
	c.pipelineMapper.retire = &c.retirement
	c.pipelines = cache.New[*resource.Pipeline, *Pipeline]("pipelines", c.pipelineMapper)

	bindGroups := NewBindGroupMapper(device, c.buffers, c.textures, c.pipelines)
	bindGroups.retire = &c.retirement
	c.bindGroups = cache.New[*resource.BindGroup, *BindGroup]("bindgroups", bindGroups)
	return c
}

// SetRetirer routes the destruction of replaced and released HAL objects
// through r. With no retirer they are destroyed at once.
func (c *ResourceCache) SetRetirer(r Retirer) {
	c.retirement.r = r
}

// Device returns the HAL device the cache creates objects on.
func (c *ResourceCache) Device() hal.Device { return c.device }

// Queue returns the HAL queue used for uploads.
func (c *ResourceCache) Queue() hal.Queue { return c.queue }

// SyncBuffer returns the GPU buffer for r.
func (c *ResourceCache) SyncBuffer(r *resource.Buffer) (*Buffer, error) {
	if r == nil {
		return nil, ErrNilResource
	}
	return c.buffers.Sync(r)
}

// SyncTexture returns the GPU texture for r.
func (c *ResourceCache) SyncTexture(r *resource.Texture) (*Texture, error) {
	if r == nil {
		return nil, ErrNilResource
	}
	return c.textures.Sync(r)
}

// SyncShader returns the shader module for r.
func (c *ResourceCache) SyncShader(r *resource.Shader) (*ShaderModule, error) {
	if r == nil {
		return nil, ErrNilResource
	}
	return c.shaders.Sync(r)
}

// SyncPipeline returns the GPU pipeline for r, synchronizing its shader.
func (c *ResourceCache) SyncPipeline(r *resource.Pipeline) (*Pipeline, error) {
	if r == nil {
		return nil, ErrNilResource
	}
	return c.pipelines.Sync(r)
}

// SyncBindGroup returns the GPU bind group for r, synchronizing its members.
func (c *ResourceCache) SyncBindGroup(r *resource.BindGroup) (*BindGroup, error) {
	if r == nil {
		return nil, ErrNilResource
	}
	return c.bindGroups.Sync(r)
}

// Sync synchronizes any resource, dispatching on its Kind. The returned value
// is the kind's GPU type: *Buffer, *Texture, *ShaderModule, *Pipeline or
// *BindGroup.
func (c *ResourceCache) Sync(r resource.Versioned) (any, error) {
	if r == nil {
		return nil, ErrNilResource
	}
	switch k := r.Kind(); k {
	case resource.KindBuffer:
		if v, ok := r.(*resource.Buffer); ok {
			return c.SyncBuffer(v)
		}
	case resource.KindTexture:
		if v, ok := r.(*resource.Texture); ok {
			return c.SyncTexture(v)
		}
	case resource.KindShader:
		if v, ok := r.(*resource.Shader); ok {
			return c.SyncShader(v)
		}
	case resource.KindPipeline:
		if v, ok := r.(*resource.Pipeline); ok {
			return c.SyncPipeline(v)
		}
	case resource.KindBindGroup:
		if v, ok := r.(*resource.BindGroup); ok {
			return c.SyncBindGroup(v)
		}
	}
	return nil, fmt.Errorf("%s %T: %w", r.Kind(), r, ErrUnknownKind)
}

// Release disposes the GPU object for r. The owner calls it when r is
// retired; the cache never evicts on its own. It reports whether r was
// cached.
func (c *ResourceCache) Release(r resource.Versioned) bool {
	if r == nil {
		return false
	}
	var released bool
	switch r.Kind() {
	case resource.KindBuffer:
		released = c.buffers.Release(r.ID())
	case resource.KindTexture:
		released = c.textures.Release(r.ID())
	case resource.KindShader:
		released = c.shaders.Release(r.ID())
	case resource.KindPipeline:
		released = c.pipelines.Release(r.ID())
	case resource.KindBindGroup:
		released = c.bindGroups.Release(r.ID())
	}
	if !released {
		rgraph.Logger().Warn("gpu: release of uncached resource", "kind", r.Kind().String(), "label", r.Label())
	}
	return released
}

// Cached reports whether r currently has a GPU object in the cache.
func (c *ResourceCache) Cached(r resource.Versioned) bool {
	if r == nil {
		return false
	}
	var ok bool
	switch r.Kind() {
	case resource.KindBuffer:
		_, ok = c.buffers.Get(r.ID())
	case resource.KindTexture:
		_, ok = c.textures.Get(r.ID())
	case resource.KindShader:
		_, ok = c.shaders.Get(r.ID())
	case resource.KindPipeline:
		_, ok = c.pipelines.Get(r.ID())
	case resource.KindBindGroup:
		_, ok = c.bindGroups.Get(r.ID())
	}
	return ok
}

// Stats returns per-kind cache statistics.
func (c *ResourceCache) Stats() map[resource.Kind]cache.Stats {
	return map[resource.Kind]cache.Stats{
		resource.KindBuffer:    c.buffers.Stats(),
		resource.KindTexture:   c.textures.Stats(),
		resource.KindShader:    c.shaders.Stats(),
		resource.KindPipeline:  c.pipelines.Stats(),
		resource.KindBindGroup: c.bindGroups.Stats(),
	}
}

// Total returns the statistics of all kinds combined.
func (c *ResourceCache) Total() cache.Stats {
	var total cache.Stats
	for _, s := range c.Stats() {
		total = total.Add(s)
	}
	return total
}

// SharedPipelines returns the number of distinct HAL pipelines alive.
func (c *ResourceCache) SharedPipelines() int {
	return c.pipelineMapper.Shared()
}

// Dispose releases every cached GPU object, dependents first.
func (c *ResourceCache) Dispose() {
	c.bindGroups.DisposeAll()
	c.pipelines.DisposeAll()
	c.shaders.DisposeAll()
	c.textures.DisposeAll()
	c.buffers.DisposeAll()
}
