// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

func (c *Context) passActive() bool {
	return c.renderPass != nil || c.computePass != nil
}

func (c *Context) canBegin() error {
	if c.disposed {
		return ErrContextDisposed
	}
	if c.passActive() {
		return ErrPassActive
	}
	if c.encoder == nil {
		// A failed submit can leave the session closed.
		return c.open()
	}
	return nil
}

// BeginRenderPass opens a render pass scope. A nil descriptor renders to the
// frame target, clearing it to Config.ClearColor.
func (c *Context) BeginRenderPass(desc *hal.RenderPassDescriptor) (hal.RenderPassEncoder, error) {
	if err := c.canBegin(); err != nil {
		return nil, err
	}
	if desc == nil {
		if !c.setup {
			return nil, ErrNotInitialized
		}
		desc = &hal.RenderPassDescriptor{
			Label: c.cfg.Label + "_target_pass",
			ColorAttachments: []hal.RenderPassColorAttachment{{
				View:       c.target.View,
				LoadOp:     gputypes.LoadOpClear,
				StoreOp:    gputypes.StoreOpStore,
				ClearValue: c.cfg.ClearColor,
			}},
		}
	}
	c.renderPass = c.encoder.BeginRenderPass(desc)
	c.recorded = true
	return c.renderPass, nil
}

// RenderPassEncoder returns the encoder of the active render pass.
func (c *Context) RenderPassEncoder() (hal.RenderPassEncoder, error) {
	if c.renderPass == nil {
		return nil, ErrNoActivePass
	}
	return c.renderPass, nil
}

// EndRenderPass closes the active render pass.
func (c *Context) EndRenderPass() error {
	if c.renderPass == nil {
		return ErrNoActivePass
	}
	c.renderPass.End()
	c.renderPass = nil
	return nil
}

// BeginComputePass opens a compute pass scope.
func (c *Context) BeginComputePass(desc *hal.ComputePassDescriptor) (hal.ComputePassEncoder, error) {
	if err := c.canBegin(); err != nil {
		return nil, err
	}
	if desc == nil {
		desc = &hal.ComputePassDescriptor{Label: c.cfg.Label + "_compute_pass"}
	}
	c.computePass = c.encoder.BeginComputePass(desc)
	c.recorded = true
	return c.computePass, nil
}

// ComputePassEncoder returns the encoder of the active compute pass.
func (c *Context) ComputePassEncoder() (hal.ComputePassEncoder, error) {
	if c.computePass == nil {
		return nil, ErrNoActivePass
	}
	return c.computePass, nil
}

// EndComputePass closes the active compute pass.
func (c *Context) EndComputePass() error {
	if c.computePass == nil {
		return ErrNoActivePass
	}
	c.computePass.End()
	c.computePass = nil
	return nil
}
