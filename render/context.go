// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"fmt"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/rgraph"
	"github.com/gogpu/rgraph/gpu"
	"github.com/gogpu/rgraph/graph"
)

// DefaultMaxPendingSubmissions bounds in-flight submissions when
// Config.MaxPendingSubmissions is zero.
const DefaultMaxPendingSubmissions = 3

// Config configures a Context.
type Config struct {
	// Label names the command encoders and default passes. Default "rgraph".
	Label string

	// ClearColor is used by BeginRenderPass(nil) for the target attachment.
	ClearColor gputypes.Color

	// MaxPendingSubmissions is the number of submissions allowed in flight
	// before Submit waits for the device to go idle.
	MaxPendingSubmissions int
}

func (c Config) withDefaults() Config {
	if c.Label == "" {
		c.Label = "rgraph"
	}
	if c.MaxPendingSubmissions <= 0 {
		c.MaxPendingSubmissions = DefaultMaxPendingSubmissions
	}
	return c
}

// Target is the frame's render target, normally the acquired swapchain view.
type Target struct {
	Texture       hal.Texture
	View          hal.TextureView
	Format        gputypes.TextureFormat
	Width, Height uint32
}

type pending struct {
	index uint64
	cmd   hal.CommandBuffer
}

// deferred is a destruction waiting for submission after to complete.
type deferred struct {
	after   uint64
	release func()
}

// Context is the per-frame orchestration object. It owns one command
// recording session at a time, the active pass scope and the resource cache.
type Context struct {
	cfg    Config
	device hal.Device
	queue  hal.Queue
	cache  *gpu.ResourceCache

	encoder     hal.CommandEncoder
	renderPass  hal.RenderPassEncoder
	computePass hal.ComputePassEncoder

	pending     []pending
	retired     []deferred
	submissions uint64
	lastIndex   uint64

	// recorded is set once the open session records a command.
	recorded bool

	target Target
	scene  Scene
	setup  bool

	disposed bool
}

var _ graph.Env = (*Context)(nil)

// NewContext creates a context on a HAL device and queue and opens the first
// recording session.
func NewContext(device hal.Device, queue hal.Queue, cfg Config) (*Context, error) {
	if device == nil || queue == nil {
		return nil, ErrNilDevice
	}
	c := &Context{
		cfg:    cfg.withDefaults(),
		device: device,
		queue:  queue,
		cache:  gpu.NewResourceCache(device, queue),
	}
	c.cache.SetRetirer(c)
	if err := c.open(); err != nil {
		return nil, err
	}
	return c, nil
}

// NewContextFromProvider creates a context on the device shared by a host
// application. The provider's Device and Queue must be HAL objects.
func NewContextFromProvider(p gpucontext.DeviceProvider, cfg Config) (*Context, error) {
	if p == nil {
		return nil, ErrNilDevice
	}
	device, ok := p.Device().(hal.Device)
	if !ok {
		return nil, fmt.Errorf("device %T: %w", p.Device(), ErrUnsupportedProvider)
	}
	queue, ok := p.Queue().(hal.Queue)
	if !ok {
		return nil, fmt.Errorf("queue %T: %w", p.Queue(), ErrUnsupportedProvider)
	}
	info := p.AdapterInfo()
	rgraph.Logger().Info("render: context on provider device",
		"adapter", info.Name, "surface_format", p.SurfaceFormat().String())
	return NewContext(device, queue, cfg)
}

// Device returns the HAL device.
func (c *Context) Device() hal.Device { return c.device }

// Queue returns the HAL queue.
func (c *Context) Queue() hal.Queue { return c.queue }

// Resources returns the versioned resource cache owned by the context.
func (c *Context) Resources() *gpu.ResourceCache { return c.cache }

// Label returns the configured label.
func (c *Context) Label() string { return c.cfg.Label }

// Setup binds the frame's render target and scene snapshot. It must be called
// once per frame before any pass runs; EndFrame clears it.
func (c *Context) Setup(target Target, scene Scene) error {
	if c.disposed {
		return ErrContextDisposed
	}
	if c.setup {
		return ErrAlreadySetup
	}
	c.target, c.scene, c.setup = target, scene, true
	return nil
}

// EndFrame clears the frame state set by Setup.
func (c *Context) EndFrame() error {
	if c.disposed {
		return ErrContextDisposed
	}
	if !c.setup {
		return ErrNotInitialized
	}
	if c.passActive() {
		return ErrPassActive
	}
	c.target, c.scene, c.setup = Target{}, nil, false
	c.reclaim()
	return nil
}

// IsSetup reports whether the current frame has been set up.
func (c *Context) IsSetup() bool { return c.setup }

// Target returns the frame's render target.
func (c *Context) Target() (Target, error) {
	if !c.setup {
		return Target{}, ErrNotInitialized
	}
	return c.target, nil
}

// TargetFormat returns the format of the frame's render target.
func (c *Context) TargetFormat() (gputypes.TextureFormat, error) {
	if !c.setup {
		return gputypes.TextureFormatUndefined, ErrNotInitialized
	}
	return c.target.Format, nil
}

// TargetSize returns the size of the frame's render target.
func (c *Context) TargetSize() (width, height uint32, err error) {
	if !c.setup {
		return 0, 0, ErrNotInitialized
	}
	return c.target.Width, c.target.Height, nil
}

// Scene returns the frame's scene snapshot.
func (c *Context) Scene() (Scene, error) {
	if !c.setup {
		return nil, ErrNotInitialized
	}
	return c.scene, nil
}

// CommandEncoder returns the open recording session for commands issued
// outside a pass, such as copies.
func (c *Context) CommandEncoder() (hal.CommandEncoder, error) {
	if c.disposed {
		return nil, ErrContextDisposed
	}
	if c.passActive() {
		return nil, ErrPassActive
	}
	if c.encoder == nil {
		if err := c.open(); err != nil {
			return nil, err
		}
	}
	c.recorded = true
	return c.encoder, nil
}

// Submissions returns the number of successful submits.
func (c *Context) Submissions() uint64 { return c.submissions }

// Pending returns the number of submitted command buffers not yet known to
// be complete.
func (c *Context) Pending() int { return len(c.pending) }

// Submit ends the current recording session, submits it to the queue and
// opens a fresh session so recording can continue within the same frame.
func (c *Context) Submit() error {
	if c.disposed {
		return ErrContextDisposed
	}
	if c.passActive() {
		return ErrPassActive
	}
	if c.encoder == nil {
		if err := c.open(); err != nil {
			return err
		}
	}
	cmd, err := c.encoder.EndEncoding()
	c.encoder = nil
	if err != nil {
		if openErr := c.open(); openErr != nil {
			rgraph.Logger().Warn("render: reopen encoder failed", "err", openErr)
		}
		return fmt.Errorf("end encoding: %w", err)
	}
	index, err := c.queue.Submit([]hal.CommandBuffer{cmd})
	if err != nil {
		c.device.FreeCommandBuffer(cmd)
		if openErr := c.open(); openErr != nil {
			rgraph.Logger().Warn("render: reopen encoder failed", "err", openErr)
		}
		return fmt.Errorf("submit: %w", err)
	}
	c.submissions++
	c.lastIndex = index
	c.pending = append(c.pending, pending{index: index, cmd: cmd})
	rgraph.Logger().Debug("render: submitted", "label", c.cfg.Label, "index", index, "pending", len(c.pending))

	c.reclaim()
	if len(c.pending) >= c.cfg.MaxPendingSubmissions {
		if err := c.device.WaitIdle(); err != nil {
			return fmt.Errorf("wait idle: %w", err)
		}
		c.freePending(^uint64(0))
	}
	return c.open()
}

// Abort ends any open pass and discards the commands recorded since the last
// Submit, then opens a fresh session. The frame stays set up.
func (c *Context) Abort() {
	if c.disposed {
		return
	}
	c.discard()
	if err := c.open(); err != nil {
		rgraph.Logger().Warn("render: reopen encoder failed", "err", err)
	}
	rgraph.Logger().Debug("render: recording aborted", "label", c.cfg.Label)
}

// Retire runs release once the GPU has finished every submission that may
// still use the objects it destroys. Those are the submissions made so far,
// plus the next one if the open session has recorded commands.
func (c *Context) Retire(release func()) {
	after := c.lastIndex
	if c.recorded {
		after++
	}
	if c.disposed || after <= c.queue.PollCompleted() {
		release()
		return
	}
	c.retired = append(c.retired, deferred{after: after, release: release})
}

// Retiring returns the number of destructions waiting for the GPU.
func (c *Context) Retiring() int { return len(c.retired) }

// Dispose ends any open pass, waits for the device, frees pending command
// buffers and releases every cached GPU object. Dispose is idempotent.
func (c *Context) Dispose() {
	if c.disposed {
		return
	}
	c.discard()
	if err := c.device.WaitIdle(); err != nil {
		rgraph.Logger().Warn("render: wait idle on dispose", "err", err)
	}
	c.freePending(^uint64(0))
	c.cache.Dispose()
	c.freePending(^uint64(0))
	c.target, c.scene, c.setup = Target{}, nil, false
	c.disposed = true
	rgraph.Logger().Info("render: context disposed", "label", c.cfg.Label, "submissions", c.submissions)
}

func (c *Context) open() error {
	enc, err := c.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: c.cfg.Label + "_encoder"})
	if err != nil {
		return fmt.Errorf("create command encoder: %w", err)
	}
	if err := enc.BeginEncoding(c.cfg.Label); err != nil {
		return fmt.Errorf("begin encoding: %w", err)
	}
	c.encoder, c.recorded = enc, false
	return nil
}

// discard ends any open pass and drops the open session without submitting.
func (c *Context) discard() {
	if c.renderPass != nil {
		c.renderPass.End()
		c.renderPass = nil
	}
	if c.computePass != nil {
		c.computePass.End()
		c.computePass = nil
	}
	if c.encoder != nil {
		c.encoder.DiscardEncoding()
		c.encoder = nil
	}
	c.recorded = false
}

// reclaim frees command buffers, and runs retirements, that the queue
// reports complete.
func (c *Context) reclaim() {
	if len(c.pending) == 0 && len(c.retired) == 0 {
		return
	}
	c.freePending(c.queue.PollCompleted())
}

func (c *Context) freePending(done uint64) {
	keptRetired := c.retired[:0]
	for _, r := range c.retired {
		if r.after <= done {
			r.release()
			continue
		}
		keptRetired = append(keptRetired, r)
	}
	clear(c.retired[len(keptRetired):])
	c.retired = keptRetired

	kept := c.pending[:0]
	for _, p := range c.pending {
		if p.index <= done {
			c.device.FreeCommandBuffer(p.cmd)
			continue
		}
		kept = append(kept, p)
	}
	clear(c.pending[len(kept):])
	c.pending = kept
}
