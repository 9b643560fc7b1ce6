package resource

import "github.com/gogpu/gputypes"

// PipelineDesc describes a render or compute pipeline.
type PipelineDesc struct {
	// Compute selects a compute pipeline. Render-only fields are ignored.
	Compute bool

	VertexEntry   string
	FragmentEntry string
	ComputeEntry  string

	VertexBuffers []gputypes.VertexBufferLayout
	ColorFormats  []gputypes.TextureFormat
	Blend         *gputypes.BlendState

	// DepthFormat enables depth testing when not Undefined.
	DepthFormat  gputypes.TextureFormat
	DepthCompare gputypes.CompareFunction
	DepthWrite   bool

	Topology    gputypes.PrimitiveTopology
	CullMode    gputypes.CullMode
	SampleCount uint32

	// Groups lists the bind group layouts, indexed by group number.
	Groups [][]gputypes.BindGroupLayoutEntry
}

// Pipeline is a pipeline built from a Shader and a PipelineDesc.
//
// Its version follows the shader: editing the shader source, or swapping in
// another shader, bumps the version of every pipeline that uses it.
type Pipeline struct {
	Base
	shader *Shader
	desc   PipelineDesc

	seen, scratch []ref
}

// NewPipeline creates a pipeline resource.
func NewPipeline(label string, shader *Shader, desc PipelineDesc) *Pipeline {
	p := &Pipeline{Base: newBase(label), shader: shader, desc: desc}
	p.seen = p.refs(nil)
	return p
}

func (p *Pipeline) refs(dst []ref) []ref {
	if p.shader == nil {
		return append(dst, ref{})
	}
	return append(dst, refOf(p.shader.ID(), p.shader.Version()))
}

// Kind returns KindPipeline.
func (p *Pipeline) Kind() Kind { return KindPipeline }

// Version returns the pipeline version, bumped first if the shader changed
// since it was last observed.
func (p *Pipeline) Version() uint64 {
	p.scratch = p.refs(p.scratch[:0])
	p.observe(&p.seen, p.scratch)
	return p.Base.Version()
}

// Shader returns the shader the pipeline is built from.
func (p *Pipeline) Shader() *Shader { return p.shader }

// Desc returns the pipeline description.
func (p *Pipeline) Desc() PipelineDesc { return p.desc }

// SetDesc replaces the description and bumps the version.
func (p *Pipeline) SetDesc(desc PipelineDesc) {
	p.desc = desc
	p.MarkDirty()
}

// SetShader replaces the shader and bumps the version.
func (p *Pipeline) SetShader(s *Shader) {
	p.shader = s
	p.seen = p.refs(p.seen[:0])
	p.MarkDirty()
}
