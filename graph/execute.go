package graph

import (
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	"go.trai.ch/zerr"
)

// Execute materializes every declared resource, runs the compiled passes in
// order, submits through env and destroys transient resources.
//
// On success the pass list is cleared and the graph returns to Building for
// the next frame. On error env is aborted, transient resources are still
// destroyed and the graph returns to Building with its passes kept, so the
// caller can retry with Compile or drop them with ClearPasses.
func (g *Graph) Execute(env Env) (err error) {
	if g.state != StateCompiled {
		return withMeta(ErrNotCompiled, "execute", "state", g.state.String())
	}
	dev := env.Device()
	if dev == nil {
		return withMeta(ErrNoDevice, "execute")
	}
	if g.device != nil && g.device != dev {
		g.releaseAll()
	}
	g.device, g.env = dev, env

	g.state = StateExecuting
	defer func() {
		if err != nil {
			env.Abort()
		}
		g.destroyTransients()
		if err != nil {
			g.state = StateBuilding
			g.order = nil
			return
		}
		g.ClearPasses()
		g.stats.Frames++
	}()

	if err := g.materialize(env); err != nil {
		return err
	}
	for _, pi := range g.order {
		p := &g.passes[pi]
		if p.Execute == nil {
			continue
		}
		if err := p.Execute(env, g.resolve(p)); err != nil {
			return zerr.With(zerr.Wrap(err, "execute pass"), "pass", p.Name)
		}
	}
	if err := env.Submit(); err != nil {
		return zerr.Wrap(err, "submit")
	}
	return nil
}

func (g *Graph) resolve(p *Pass) Resolved {
	res := make(Resolved, len(p.Reads)+len(p.Writes))
	for _, h := range p.Reads {
		res[h] = g.decls[h-1].phys
	}
	for _, h := range p.Writes {
		res[h] = g.decls[h-1].phys
	}
	return res
}

// materialize creates or reuses the physical resource behind every
// declaration, in declaration order.
func (g *Graph) materialize(env Env) error {
	var (
		tw, th uint32
		sized  bool
	)
	target := func() (uint32, uint32, error) {
		if !sized {
			w, h, err := env.TargetSize()
			if err != nil {
				return 0, 0, zerr.Wrap(err, "resolve relative size")
			}
			tw, th, sized = w, h, true
		}
		return tw, th, nil
	}

	for i := range g.decls {
		d := &g.decls[i]
		switch {
		case d.imp != nil:
			d.phys = &Physical{
				Type:     TypeTexture,
				Texture:  d.imp.Texture,
				View:     d.imp.View,
				Width:    d.imp.Width,
				Height:   d.imp.Height,
				Format:   d.imp.Format,
				Imported: true,
			}
		case d.typ == TypeTexture:
			w, h := d.tex.Width.Resolve(0), d.tex.Height.Resolve(0)
			if d.tex.Width.Relative() || d.tex.Height.Relative() {
				rw, rh, err := target()
				if err != nil {
					return zerr.With(err, "name", d.name)
				}
				w, h = d.tex.Width.Resolve(rw), d.tex.Height.Resolve(rh)
			}
			if d.phys != nil {
				if d.phys.Width == w && d.phys.Height == h {
					g.stats.Reused++
					continue
				}
				g.debug("graph: resize", "name", d.name, "width", w, "height", h)
				g.destroy(d)
			}
			if err := g.createTexture(d, w, h); err != nil {
				return err
			}
		case d.typ == TypeBuffer:
			if d.phys != nil {
				g.stats.Reused++
				continue
			}
			if err := g.createBuffer(d); err != nil {
				return err
			}
		}
	}
	return nil
}

func (g *Graph) createTexture(d *decl, w, h uint32) error {
	desc := d.tex
	format := desc.Format
	if format == gputypes.TextureFormatUndefined {
		format = gputypes.TextureFormatRGBA8Unorm
	}
	usage := desc.Usage
	if usage == 0 {
		usage = gputypes.TextureUsageRenderAttachment | gputypes.TextureUsageTextureBinding
	}
	label := g.label(d.name, desc.Label)
	levels := max(desc.MipLevelCount, 1)

	tex, err := g.device.CreateTexture(&hal.TextureDescriptor{
		Label:         label,
		Size:          hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: max(desc.DepthOrArrayLayers, 1)},
		MipLevelCount: levels,
		SampleCount:   max(desc.SampleCount, 1),
		Dimension:     gputypes.TextureDimension2D,
		Format:        format,
		Usage:         usage,
	})
	if err != nil {
		return zerr.With(zerr.Wrap(err, "create texture"), "name", d.name)
	}
	view, err := g.device.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label:         label + "_view",
		Format:        format,
		Dimension:     gputypes.TextureViewDimension2D,
		Aspect:        gputypes.TextureAspectAll,
		MipLevelCount: levels,
	})
	if err != nil {
		g.device.DestroyTexture(tex)
		return zerr.With(zerr.Wrap(err, "create texture view"), "name", d.name)
	}
	d.phys = &Physical{Type: TypeTexture, Texture: tex, View: view, Width: w, Height: h, Format: format}
	g.stats.Created++
	return nil
}

func (g *Graph) createBuffer(d *decl) error {
	desc := d.buf
	usage := desc.Usage
	if usage == 0 {
		usage = gputypes.BufferUsageStorage | gputypes.BufferUsageCopyDst
	}
	size := (desc.Size + 3) &^ 3
	buf, err := g.device.CreateBuffer(&hal.BufferDescriptor{
		Label: g.label(d.name, desc.Label),
		Size:  size,
		Usage: usage,
	})
	if err != nil {
		return zerr.With(zerr.Wrap(err, "create buffer"), "name", d.name)
	}
	d.phys = &Physical{Type: TypeBuffer, Buffer: buf, Size: size}
	g.stats.Created++
	return nil
}

func (g *Graph) label(name, override string) string {
	if override != "" {
		name = override
	}
	if g.opts.Label == "" {
		return name
	}
	return g.opts.Label + "/" + name
}

func (g *Graph) destroyTransients() {
	for i := range g.decls {
		d := &g.decls[i]
		if d.imp != nil {
			d.phys = nil
			continue
		}
		if d.transient() {
			g.destroy(d)
		}
	}
}

// destroy unbinds the physical resource of d at once and hands the HAL
// objects to the environment for retirement. Imported objects are only
// forgotten.
func (g *Graph) destroy(d *decl) {
	p := d.phys
	if p == nil {
		return
	}
	d.phys = nil
	if p.Imported || g.device == nil {
		return
	}
	device := g.device
	release := func() {
		switch p.Type {
		case TypeTexture:
			if p.View != nil {
				device.DestroyTextureView(p.View)
			}
			if p.Texture != nil {
				device.DestroyTexture(p.Texture)
			}
		case TypeBuffer:
			if p.Buffer != nil {
				device.DestroyBuffer(p.Buffer)
			}
		}
	}
	if g.env != nil {
		g.env.Retire(release)
	} else {
		release()
	}
	g.stats.Destroyed++
}
