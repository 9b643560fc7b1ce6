package graph

import (
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/rgraph"
)

// State is the lifecycle state of a Graph.
type State uint8

const (
	// StateBuilding accepts declarations and passes.
	StateBuilding State = iota
	// StateCompiled holds a validated pass order ready for Execute.
	StateCompiled
	// StateExecuting is set while passes run.
	StateExecuting
)

func (s State) String() string {
	switch s {
	case StateBuilding:
		return "building"
	case StateCompiled:
		return "compiled"
	case StateExecuting:
		return "executing"
	}
	return "unknown"
}

// Env is the execution environment a graph runs in. It is implemented by
// render.Context; passes record their commands through it.
type Env interface {
	Device() hal.Device
	Queue() hal.Queue

	// TargetSize returns the current render target size, which relative
	// texture dimensions resolve against.
	TargetSize() (width, height uint32, err error)

	BeginRenderPass(desc *hal.RenderPassDescriptor) (hal.RenderPassEncoder, error)
	EndRenderPass() error
	BeginComputePass(desc *hal.ComputePassDescriptor) (hal.ComputePassEncoder, error)
	EndComputePass() error

	// Submit flushes recorded commands to the queue.
	Submit() error

	// Abort ends any open pass and discards the commands recorded since the
	// last Submit. Execute calls it when a pass fails.
	Abort()

	// Retire runs release once the GPU no longer uses the objects it
	// destroys.
	Retire(release func())
}

// ExecuteFunc records a pass's commands. res holds exactly the resources
// the pass declared as reads or writes.
type ExecuteFunc func(env Env, res Resolved) error

// Pass is a unit of GPU work with declared resource dependencies.
type Pass struct {
	Name    string
	Reads   []Handle
	Writes  []Handle
	Execute ExecuteFunc
}

// Options configures a Graph.
type Options struct {
	// Label prefixes log records and GPU object labels.
	Label string
}

// Stats counts physical resource operations over a graph's lifetime.
type Stats struct {
	Created   int
	Reused    int
	Destroyed int
	Frames    int
}

type decl struct {
	name string
	typ  ResourceType
	tex  TextureDesc
	buf  BufferDesc
	imp  *Imported
	phys *Physical
}

func (d *decl) transient() bool {
	switch d.typ {
	case TypeTexture:
		return d.tex.Transient
	case TypeBuffer:
		return d.buf.Transient
	}
	return false
}

// Graph is a render graph. See the package documentation for its lifecycle.
type Graph struct {
	opts   Options
	decls  []decl
	names  map[string]Handle
	passes []Pass
	order  []int
	state  State
	stats  Stats

	// device that created the live persistent resources, and the
	// environment that retires them.
	device hal.Device
	env    Env
}

// New creates an empty graph in the Building state.
func New(opts Options) *Graph {
	return &Graph{opts: opts, names: make(map[string]Handle)}
}

// Label returns the graph label.
func (g *Graph) Label() string { return g.opts.Label }

// State returns the lifecycle state.
func (g *Graph) State() State { return g.state }

// Stats returns the physical resource counters.
func (g *Graph) Stats() Stats { return g.stats }

// CreateTexture declares a graph-owned texture and returns its handle.
func (g *Graph) CreateTexture(name string, desc TextureDesc) (Handle, error) {
	if !desc.Width.valid() || !desc.Height.valid() {
		return InvalidHandle, withMeta(ErrInvalidSize, "create texture", "name", name,
			"width", desc.Width.String(), "height", desc.Height.String())
	}
	return g.declare(decl{name: name, typ: TypeTexture, tex: desc})
}

// CreateBuffer declares a graph-owned buffer and returns its handle.
func (g *Graph) CreateBuffer(name string, desc BufferDesc) (Handle, error) {
	if desc.Size == 0 {
		return InvalidHandle, withMeta(ErrInvalidSize, "create buffer", "name", name)
	}
	return g.declare(decl{name: name, typ: TypeBuffer, buf: desc})
}

// ImportTexture registers an externally owned texture under name. The graph
// reads and writes it like any other texture but never creates or destroys
// it. Use UpdateImport when the external object changes between frames.
func (g *Graph) ImportTexture(name string, imp Imported) (Handle, error) {
	return g.declare(decl{name: name, typ: TypeTexture, imp: &imp})
}

// UpdateImport replaces the external texture behind an imported handle.
func (g *Graph) UpdateImport(h Handle, imp Imported) error {
	d := g.lookup(h)
	if d == nil {
		return withMeta(ErrUnknownResource, "update import", "handle", uint32(h))
	}
	if d.imp == nil {
		return withMeta(ErrNotImported, "update import", "name", d.name)
	}
	*d.imp = imp
	return nil
}

func (g *Graph) declare(d decl) (Handle, error) {
	if d.name == "" {
		return InvalidHandle, withMeta(ErrEmptyName, "declare "+d.typ.String())
	}
	if _, ok := g.names[d.name]; ok {
		return InvalidHandle, withMeta(ErrDuplicateName, "declare "+d.typ.String(), "name", d.name)
	}
	g.decls = append(g.decls, d)
	h := Handle(len(g.decls))
	g.names[d.name] = h
	return h, nil
}

// Lookup returns the handle registered under name.
func (g *Graph) Lookup(name string) (Handle, error) {
	h, ok := g.names[name]
	if !ok {
		return InvalidHandle, withMeta(ErrResourceNotFound, "lookup", "name", name)
	}
	return h, nil
}

// Name returns the name of h, or "" if h is unknown.
func (g *Graph) Name(h Handle) string {
	if d := g.lookup(h); d != nil {
		return d.name
	}
	return ""
}

// Len returns the number of declared resources.
func (g *Graph) Len() int { return len(g.decls) }

// Physical returns the materialized resource behind h. Transient resources
// are only available while Execute runs.
func (g *Graph) Physical(h Handle) (*Physical, bool) {
	d := g.lookup(h)
	if d == nil || d.phys == nil {
		return nil, false
	}
	return d.phys, true
}

func (g *Graph) lookup(h Handle) *decl {
	if h == InvalidHandle || int(h) > len(g.decls) {
		return nil
	}
	return &g.decls[h-1]
}

// AddPass appends a pass. Adding a pass to a compiled graph returns it to
// Building. AddPass must not be called from a running pass.
func (g *Graph) AddPass(p Pass) {
	g.passes = append(g.passes, p)
	if g.state == StateCompiled {
		g.state = StateBuilding
		g.order = nil
	}
}

// Passes returns the number of pending passes.
func (g *Graph) Passes() int { return len(g.passes) }

// ClearPasses drops all pending passes and any compiled order.
func (g *Graph) ClearPasses() {
	clear(g.passes)
	g.passes = g.passes[:0]
	g.order = nil
	g.state = StateBuilding
}

// Order returns the compiled pass names in execution order, or nil if the
// graph is not compiled.
func (g *Graph) Order() []string {
	if g.state != StateCompiled {
		return nil
	}
	names := make([]string, len(g.order))
	for i, pi := range g.order {
		names[i] = g.passes[pi].Name
	}
	return names
}

// Reset destroys every physical resource the graph owns, drops all passes
// and declarations, and returns the graph to Building.
func (g *Graph) Reset() {
	g.releaseAll()
	g.ClearPasses()
	g.decls = nil
	clear(g.names)
}

// Release destroys every physical resource the graph owns but keeps the
// declarations; the next Execute recreates them.
func (g *Graph) Release() {
	g.releaseAll()
}

func (g *Graph) releaseAll() {
	for i := range g.decls {
		g.destroy(&g.decls[i])
	}
	g.device, g.env = nil, nil
}

func (g *Graph) logAttrs() []any {
	if g.opts.Label == "" {
		return nil
	}
	return []any{"graph", g.opts.Label}
}

func (g *Graph) debug(msg string, args ...any) {
	rgraph.Logger().Debug(msg, append(g.logAttrs(), args...)...)
}
