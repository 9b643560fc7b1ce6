// Package haltest provides call-counting HAL devices for tests.
//
// Device and Queue decorate a real hal.Device and hal.Queue (normally from
// the noop backend) and record how often each resource method is invoked, so
// tests can assert that a code path issued zero, one or N GPU calls. A
// method can also be armed to fail once.
package haltest

import (
	"sync"
	"testing"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	"github.com/gogpu/wgpu/hal/noop"
)

// Method names recorded by Device and Queue.
const (
	CreateBuffer          = "CreateBuffer"
	DestroyBuffer         = "DestroyBuffer"
	CreateTexture         = "CreateTexture"
	DestroyTexture        = "DestroyTexture"
	CreateTextureView     = "CreateTextureView"
	DestroyTextureView    = "DestroyTextureView"
	CreateSampler         = "CreateSampler"
	DestroySampler        = "DestroySampler"
	CreateShaderModule    = "CreateShaderModule"
	DestroyShaderModule   = "DestroyShaderModule"
	CreateBindGroupLayout = "CreateBindGroupLayout"
	CreateBindGroup       = "CreateBindGroup"
	DestroyBindGroup      = "DestroyBindGroup"
	CreatePipelineLayout  = "CreatePipelineLayout"
	CreateRenderPipeline  = "CreateRenderPipeline"
	DestroyRenderPipeline = "DestroyRenderPipeline"
	CreateComputePipeline = "CreateComputePipeline"
	CreateCommandEncoder  = "CreateCommandEncoder"
	DiscardEncoding       = "DiscardEncoding"
	FreeCommandBuffer     = "FreeCommandBuffer"
	Submit                = "Submit"
	WriteBuffer           = "WriteBuffer"
	WriteTexture          = "WriteTexture"
)

// Counter records method calls and pending failures.
type Counter struct {
	mu    sync.Mutex
	calls map[string]int
	fail  map[string]error
}

func (c *Counter) hit(method string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.calls == nil {
		c.calls = make(map[string]int)
	}
	c.calls[method]++
	if err, ok := c.fail[method]; ok {
		delete(c.fail, method)
		return err
	}
	return nil
}

// Count returns how many times method was called.
func (c *Counter) Count(method string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls[method]
}

// Total returns the number of recorded calls across all methods.
func (c *Counter) Total() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, v := range c.calls {
		n += v
	}
	return n
}

// Reset clears all counts.
func (c *Counter) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = nil
}

// FailNext makes the next call to method return err.
func (c *Counter) FailNext(method string, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fail == nil {
		c.fail = make(map[string]error)
	}
	c.fail[method] = err
}

// Device counts resource calls on an underlying hal.Device.
type Device struct {
	hal.Device
	*Counter
}

func (d *Device) CreateBuffer(desc *hal.BufferDescriptor) (hal.Buffer, error) {
	if err := d.hit(CreateBuffer); err != nil {
		return nil, err
	}
	return d.Device.CreateBuffer(desc)
}

func (d *Device) DestroyBuffer(b hal.Buffer) {
	_ = d.hit(DestroyBuffer)
	d.Device.DestroyBuffer(b)
}

func (d *Device) CreateTexture(desc *hal.TextureDescriptor) (hal.Texture, error) {
	if err := d.hit(CreateTexture); err != nil {
		return nil, err
	}
	return d.Device.CreateTexture(desc)
}

func (d *Device) DestroyTexture(t hal.Texture) {
	_ = d.hit(DestroyTexture)
	d.Device.DestroyTexture(t)
}

func (d *Device) CreateTextureView(t hal.Texture, desc *hal.TextureViewDescriptor) (hal.TextureView, error) {
	if err := d.hit(CreateTextureView); err != nil {
		return nil, err
	}
	return d.Device.CreateTextureView(t, desc)
}

func (d *Device) DestroyTextureView(v hal.TextureView) {
	_ = d.hit(DestroyTextureView)
	d.Device.DestroyTextureView(v)
}

func (d *Device) CreateSampler(desc *hal.SamplerDescriptor) (hal.Sampler, error) {
	if err := d.hit(CreateSampler); err != nil {
		return nil, err
	}
	return d.Device.CreateSampler(desc)
}

func (d *Device) DestroySampler(s hal.Sampler) {
	_ = d.hit(DestroySampler)
	d.Device.DestroySampler(s)
}

func (d *Device) CreateShaderModule(desc *hal.ShaderModuleDescriptor) (hal.ShaderModule, error) {
	if err := d.hit(CreateShaderModule); err != nil {
		return nil, err
	}
	return d.Device.CreateShaderModule(desc)
}

func (d *Device) DestroyShaderModule(m hal.ShaderModule) {
	_ = d.hit(DestroyShaderModule)
	d.Device.DestroyShaderModule(m)
}

func (d *Device) CreateBindGroupLayout(desc *hal.BindGroupLayoutDescriptor) (hal.BindGroupLayout, error) {
	if err := d.hit(CreateBindGroupLayout); err != nil {
		return nil, err
	}
	return d.Device.CreateBindGroupLayout(desc)
}

func (d *Device) CreateBindGroup(desc *hal.BindGroupDescriptor) (hal.BindGroup, error) {
	if err := d.hit(CreateBindGroup); err != nil {
		return nil, err
	}
	return d.Device.CreateBindGroup(desc)
}

func (d *Device) DestroyBindGroup(g hal.BindGroup) {
	_ = d.hit(DestroyBindGroup)
	d.Device.DestroyBindGroup(g)
}

func (d *Device) CreatePipelineLayout(desc *hal.PipelineLayoutDescriptor) (hal.PipelineLayout, error) {
	if err := d.hit(CreatePipelineLayout); err != nil {
		return nil, err
	}
	return d.Device.CreatePipelineLayout(desc)
}

func (d *Device) CreateRenderPipeline(desc *hal.RenderPipelineDescriptor) (hal.RenderPipeline, error) {
	if err := d.hit(CreateRenderPipeline); err != nil {
		return nil, err
	}
	return d.Device.CreateRenderPipeline(desc)
}

func (d *Device) DestroyRenderPipeline(p hal.RenderPipeline) {
	_ = d.hit(DestroyRenderPipeline)
	d.Device.DestroyRenderPipeline(p)
}

func (d *Device) CreateComputePipeline(desc *hal.ComputePipelineDescriptor) (hal.ComputePipeline, error) {
	if err := d.hit(CreateComputePipeline); err != nil {
		return nil, err
	}
	return d.Device.CreateComputePipeline(desc)
}

func (d *Device) CreateCommandEncoder(desc *hal.CommandEncoderDescriptor) (hal.CommandEncoder, error) {
	if err := d.hit(CreateCommandEncoder); err != nil {
		return nil, err
	}
	enc, err := d.Device.CreateCommandEncoder(desc)
	if err != nil {
		return nil, err
	}
	return &encoder{CommandEncoder: enc, Counter: d.Counter}, nil
}

// encoder counts discarded recording sessions.
type encoder struct {
	hal.CommandEncoder
	*Counter
}

func (e *encoder) DiscardEncoding() {
	_ = e.hit(DiscardEncoding)
	e.CommandEncoder.DiscardEncoding()
}

func (d *Device) FreeCommandBuffer(cb hal.CommandBuffer) {
	_ = d.hit(FreeCommandBuffer)
	d.Device.FreeCommandBuffer(cb)
}

// Queue counts submissions and writes on an underlying hal.Queue.
//
// The noop queue completes every submission at once. Stall freezes the
// completed index so tests can keep submissions in flight.
type Queue struct {
	hal.Queue
	*Counter

	stalled   bool
	completed uint64
}

// Stall freezes PollCompleted at its current value.
func (q *Queue) Stall() {
	q.completed = q.Queue.PollCompleted()
	q.stalled = true
}

// Resume lets PollCompleted report real completion again.
func (q *Queue) Resume() { q.stalled = false }

func (q *Queue) PollCompleted() uint64 {
	if q.stalled {
		return q.completed
	}
	return q.Queue.PollCompleted()
}

func (q *Queue) Submit(cbs []hal.CommandBuffer) (uint64, error) {
	if err := q.hit(Submit); err != nil {
		return 0, err
	}
	return q.Queue.Submit(cbs)
}

func (q *Queue) WriteBuffer(b hal.Buffer, offset uint64, data []byte) error {
	if err := q.hit(WriteBuffer); err != nil {
		return err
	}
	return q.Queue.WriteBuffer(b, offset, data)
}

func (q *Queue) WriteTexture(dst *hal.ImageCopyTexture, data []byte, layout *hal.ImageDataLayout, size *hal.Extent3D) error {
	if err := q.hit(WriteTexture); err != nil {
		return err
	}
	return q.Queue.WriteTexture(dst, data, layout, size)
}

// Open opens a device on the noop backend and wraps it in counting
// decorators that share one Counter.
func Open() (*Device, *Queue, func(), error) {
	instance, err := noop.API{}.CreateInstance(nil)
	if err != nil {
		return nil, nil, nil, err
	}
	adapters := instance.EnumerateAdapters(nil)
	openDev, err := adapters[0].Adapter.Open(0, gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		return nil, nil, nil, err
	}
	c := &Counter{}
	cleanup := func() {
		openDev.Device.Destroy()
		instance.Destroy()
	}
	return &Device{Device: openDev.Device, Counter: c}, &Queue{Queue: openDev.Queue, Counter: c}, cleanup, nil
}

// NewDevice is Open for tests. Cleanup is registered with t.
func NewDevice(t testing.TB) (*Device, *Queue) {
	t.Helper()
	d, q, cleanup, err := Open()
	if err != nil {
		t.Fatalf("open noop device: %v", err)
	}
	t.Cleanup(cleanup)
	return d, q
}
