package resource

// BindingType selects which GPU object a Binding refers to.
type BindingType uint8

// Binding types.
const (
	BindingBuffer BindingType = iota + 1
	BindingTexture
	BindingSampler
)

// Binding is one entry of a bind group.
type Binding struct {
	Slot    uint32
	Type    BindingType
	Buffer  *Buffer
	Texture *Texture
	// Offset and Size select a buffer range. Size 0 binds the whole buffer.
	Offset, Size uint64
}

// BufferBinding binds buf at slot.
func BufferBinding(slot uint32, buf *Buffer) Binding {
	return Binding{Slot: slot, Type: BindingBuffer, Buffer: buf}
}

// TextureBinding binds a view of tex at slot.
func TextureBinding(slot uint32, tex *Texture) Binding {
	return Binding{Slot: slot, Type: BindingTexture, Texture: tex}
}

// SamplerBinding binds the sampler of tex at slot.
func SamplerBinding(slot uint32, tex *Texture) Binding {
	return Binding{Slot: slot, Type: BindingSampler, Texture: tex}
}

// BindGroup binds buffers, textures and samplers to one group of a pipeline.
//
// Its version follows the pipeline and every member, so any member change
// makes the group stale. The mapper then decides whether the GPU bind group
// actually has to be rebuilt.
type BindGroup struct {
	Base
	pipeline *Pipeline
	group    uint32
	entries  []Binding

	seen, scratch []ref
}

// NewBindGroup creates a bind group for the given pipeline group index.
func NewBindGroup(label string, pipeline *Pipeline, group uint32, entries ...Binding) *BindGroup {
	g := &BindGroup{Base: newBase(label), pipeline: pipeline, group: group, entries: entries}
	g.seen = g.refs(nil)
	return g
}

// refs lists the pipeline followed by one ref per entry. Texture and sampler
// entries both follow the texture version, which covers both dirty axes.
func (g *BindGroup) refs(dst []ref) []ref {
	if g.pipeline != nil {
		dst = append(dst, refOf(g.pipeline.ID(), g.pipeline.Version()))
	} else {
		dst = append(dst, ref{})
	}
	for _, e := range g.entries {
		switch {
		case e.Buffer != nil:
			dst = append(dst, refOf(e.Buffer.ID(), e.Buffer.Version()))
		case e.Texture != nil:
			dst = append(dst, refOf(e.Texture.ID(), e.Texture.Version()))
		default:
			dst = append(dst, ref{})
		}
	}
	return dst
}

// Kind returns KindBindGroup.
func (g *BindGroup) Kind() Kind { return KindBindGroup }

// Version returns the group version, bumped first if the pipeline or any
// member changed since it was last observed.
func (g *BindGroup) Version() uint64 {
	g.scratch = g.refs(g.scratch[:0])
	g.observe(&g.seen, g.scratch)
	return g.Base.Version()
}

// Pipeline returns the pipeline whose layout the group follows.
func (g *BindGroup) Pipeline() *Pipeline { return g.pipeline }

// Group returns the group index within the pipeline layout.
func (g *BindGroup) Group() uint32 { return g.group }

// Entries returns the bindings.
func (g *BindGroup) Entries() []Binding { return g.entries }

// SetEntries replaces the bindings and bumps the version.
func (g *BindGroup) SetEntries(entries ...Binding) {
	g.entries = entries
	g.seen = g.refs(g.seen[:0])
	g.MarkDirty()
}
