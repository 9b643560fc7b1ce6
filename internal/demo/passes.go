package demo

import (
	"encoding/binary"
	"math"
	"slices"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	"go.trai.ch/zerr"

	"github.com/gogpu/rgraph/graph"
	"github.com/gogpu/rgraph/internal/framefile"
	"github.com/gogpu/rgraph/render"
	"github.com/gogpu/rgraph/resource"
)

const drawWGSL = `
struct Frame {
    time: f32,
    aspect: f32,
    pad0: f32,
    pad1: f32,
}

@group(0) @binding(0) var<uniform> frame: Frame;

@vertex
fn vs_main(@builtin(vertex_index) idx: u32) -> @builtin(position) vec4<f32> {
    let x = f32(i32(idx) - 1);
    let y = f32(i32(idx & 1u) * 2 - 1);
    let c = cos(frame.time);
    let s = sin(frame.time);
    return vec4<f32>(x * c - y * s, (x * s + y * c) * frame.aspect, 0.0, 1.0);
}

@fragment
fn fs_main() -> @location(0) vec4<f32> {
    return vec4<f32>(0.5 + 0.5 * sin(frame.time), 0.3, 0.8, 1.0);
}
`

const computeWGSL = `
@group(0) @binding(0) var<storage, read_write> data: array<u32>;

@compute @workgroup_size(64)
fn cs_main(@builtin(global_invocation_id) id: vec3<u32>) {
    data[id.x] = data[id.x] + 1u;
}
`

// counterWords is the element count of each compute pass's storage buffer.
const counterWords = 64

// Pass types of a frame file.
const (
	passRender  = "render"
	passCompute = "compute"
)

// frameUniforms is the per-frame uniform block shared by every draw. It is
// a scene component, so the pipeline's update step advances it.
type frameUniforms struct {
	time   float64
	aspect float32
	buf    *resource.Buffer
}

func newFrameUniforms(width, height uint32) *frameUniforms {
	u := &frameUniforms{
		aspect: float32(width) / float32(max(height, 1)),
		buf: resource.NewBuffer("frame_uniforms",
			gputypes.BufferUsageUniform|gputypes.BufferUsageCopyDst, make([]byte, 16)),
	}
	u.write()
	return u
}

// Update advances the clock and rewrites the uniform block.
func (u *frameUniforms) Update(dt float64) {
	u.time += dt
	u.write()
}

func (u *frameUniforms) write() {
	var b [16]byte
	binary.LittleEndian.PutUint32(b[0:], math.Float32bits(float32(u.time)))
	binary.LittleEndian.PutUint32(b[4:], math.Float32bits(u.aspect))
	u.buf.Write(0, b[:])
}

// kit holds the CPU-side resources the demo passes draw with. GPU objects
// are materialized through the context's resource cache on every use.
type kit struct {
	ctx      *render.Context
	own      func(...resource.Versioned)
	g        *graph.Graph
	uniforms *frameUniforms
	draw     *resource.Shader
	compute  *resource.Shader
	passes   map[string]*passKit
	draws    int
	dispatch int
}

type passKit struct {
	pipeline *resource.Pipeline
	group    *resource.BindGroup
	counters *resource.Buffer
}

// newKit creates the pass kit. own registers resources with the pipeline
// whose Dispose releases them.
func newKit(ctx *render.Context, g *graph.Graph, uniforms *frameUniforms, own func(...resource.Versioned)) *kit {
	k := &kit{
		ctx:      ctx,
		own:      own,
		g:        g,
		uniforms: uniforms,
		draw:     resource.NewWGSLShader("demo_draw", drawWGSL),
		compute:  resource.NewWGSLShader("demo_compute", computeWGSL),
		passes:   make(map[string]*passKit),
	}
	own(uniforms.buf, k.draw, k.compute)
	return k
}

// build returns the execute callback for a frame file pass. Passes without
// a type only take part in ordering.
func (k *kit) build(p framefile.PassDTO) graph.ExecuteFunc {
	switch p.Type {
	case passRender:
		return func(env graph.Env, res graph.Resolved) error {
			return k.renderPass(env, res, p)
		}
	case passCompute:
		return func(env graph.Env, _ graph.Resolved) error {
			return k.computePass(env, p)
		}
	}
	return nil
}

// attachments builds the render pass descriptor from the textures a pass
// writes. Depth formats become the depth attachment.
func (k *kit) attachments(res graph.Resolved, p framefile.PassDTO) (*hal.RenderPassDescriptor, resource.PipelineDesc, error) {
	desc := &hal.RenderPassDescriptor{Label: p.Name}
	var pd resource.PipelineDesc
	for _, name := range p.Writes {
		h, err := k.g.Lookup(name)
		if err != nil {
			return nil, pd, err
		}
		phys := res[h]
		if phys == nil || phys.Type != graph.TypeTexture {
			continue
		}
		if phys.Format.IsDepthStencil() {
			desc.DepthStencilAttachment = &hal.RenderPassDepthStencilAttachment{
				View:            phys.View,
				DepthLoadOp:     gputypes.LoadOpClear,
				DepthStoreOp:    gputypes.StoreOpStore,
				DepthClearValue: 1,
			}
			pd.DepthFormat, pd.DepthWrite = phys.Format, true
			continue
		}
		desc.ColorAttachments = append(desc.ColorAttachments, hal.RenderPassColorAttachment{
			View:       phys.View,
			LoadOp:     gputypes.LoadOpClear,
			StoreOp:    gputypes.StoreOpStore,
			ClearValue: gputypes.Color{A: 1},
		})
		pd.ColorFormats = append(pd.ColorFormats, phys.Format)
	}
	return desc, pd, nil
}

func (k *kit) renderPass(env graph.Env, res graph.Resolved, p framefile.PassDTO) error {
	desc, pd, err := k.attachments(res, p)
	if err != nil {
		return err
	}
	if len(desc.ColorAttachments) == 0 && desc.DepthStencilAttachment == nil {
		// No texture written: draw straight to the frame target.
		format, err := k.ctx.TargetFormat()
		if err != nil {
			return err
		}
		desc = nil
		pd.ColorFormats = []gputypes.TextureFormat{format}
	}
	pd.Groups = [][]gputypes.BindGroupLayoutEntry{{{
		Binding:    0,
		Visibility: gputypes.ShaderStageVertex | gputypes.ShaderStageFragment,
		Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform},
	}}}

	pk := k.passes[p.Name]
	if pk == nil {
		pipeline := resource.NewPipeline(p.Name, k.draw, pd)
		pk = &passKit{
			pipeline: pipeline,
			group:    resource.NewBindGroup(p.Name+"_frame", pipeline, 0, resource.BufferBinding(0, k.uniforms.buf)),
		}
		k.passes[p.Name] = pk
		k.own(pk.pipeline, pk.group)
	} else if !samePipelineDesc(pk.pipeline.Desc(), pd) {
		pk.pipeline.SetDesc(pd)
	}

	rc := k.ctx.Resources()
	pipeline, err := rc.SyncPipeline(pk.pipeline)
	if err != nil {
		return zerr.With(zerr.Wrap(err, "sync pipeline"), "pass", p.Name)
	}
	group, err := rc.SyncBindGroup(pk.group)
	if err != nil {
		return zerr.With(zerr.Wrap(err, "sync bind group"), "pass", p.Name)
	}

	enc, err := env.BeginRenderPass(desc)
	if err != nil {
		return err
	}
	enc.SetPipeline(pipeline.Render())
	enc.SetBindGroup(0, group.Raw, nil)
	enc.Draw(3, 1, 0, 0)
	k.draws++
	return env.EndRenderPass()
}

func (k *kit) computePass(env graph.Env, p framefile.PassDTO) error {
	pk := k.passes[p.Name]
	if pk == nil {
		pipeline := resource.NewPipeline(p.Name, k.compute, resource.PipelineDesc{
			Compute: true,
			Groups: [][]gputypes.BindGroupLayoutEntry{{{
				Binding:    0,
				Visibility: gputypes.ShaderStageCompute,
				Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeStorage},
			}}},
		})
		counters := resource.NewBuffer(p.Name+"_counters",
			gputypes.BufferUsageStorage|gputypes.BufferUsageCopyDst, make([]byte, 4*counterWords))
		pk = &passKit{
			pipeline: pipeline,
			counters: counters,
			group:    resource.NewBindGroup(p.Name+"_data", pipeline, 0, resource.BufferBinding(0, counters)),
		}
		k.passes[p.Name] = pk
		k.own(pk.counters, pk.pipeline, pk.group)
	}

	rc := k.ctx.Resources()
	pipeline, err := rc.SyncPipeline(pk.pipeline)
	if err != nil {
		return zerr.With(zerr.Wrap(err, "sync pipeline"), "pass", p.Name)
	}
	group, err := rc.SyncBindGroup(pk.group)
	if err != nil {
		return zerr.With(zerr.Wrap(err, "sync bind group"), "pass", p.Name)
	}

	enc, err := env.BeginComputePass(&hal.ComputePassDescriptor{Label: p.Name})
	if err != nil {
		return err
	}
	enc.SetPipeline(pipeline.Compute())
	enc.SetBindGroup(0, group.Raw, nil)
	enc.Dispatch(1, 1, 1)
	k.dispatch++
	return env.EndComputePass()
}

func samePipelineDesc(a, b resource.PipelineDesc) bool {
	return slices.Equal(a.ColorFormats, b.ColorFormats) &&
		a.DepthFormat == b.DepthFormat && a.DepthWrite == b.DepthWrite
}
