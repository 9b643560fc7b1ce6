// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"fmt"
	"time"

	"github.com/gogpu/rgraph"
	"github.com/gogpu/rgraph/graph"
	"github.com/gogpu/rgraph/resource"
)

// TargetName is the graph resource name under which a Pipeline imports the
// frame's render target.
const TargetName = "target"

// PipelineConfig configures a Pipeline.
type PipelineConfig struct {
	// Label names the pipeline's graph.
	Label string

	// Setup runs once, on the first Render, to declare graph resources. The
	// target is already imported under TargetName.
	Setup func(ctx *Context, g *graph.Graph) error

	// Frame adds the passes for one camera. It runs once per camera per
	// Render; the graph is compiled and executed after each call.
	Frame func(ctx *Context, g *graph.Graph, cam Camera) error

	// Clock supplies the time used for update deltas. Default time.Now.
	Clock func() time.Time
}

// Pipeline renders camera viewpoints through a render graph.
//
// Render lets scene state settle by calling every Updater component once,
// then builds, compiles and executes the graph for each camera. Each camera
// ends in its own queue submission.
type Pipeline struct {
	cfg    PipelineConfig
	graph  *graph.Graph
	target graph.Handle
	ready  bool
	last   time.Time
	frames uint64

	// ctx is the context of the last Render; owned resources are cached
	// there.
	ctx   *Context
	owned []resource.Versioned
}

// NewPipeline creates a pipeline with an empty graph.
func NewPipeline(cfg PipelineConfig) *Pipeline {
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	return &Pipeline{cfg: cfg, graph: graph.New(graph.Options{Label: cfg.Label})}
}

// Graph returns the pipeline's render graph.
func (p *Pipeline) Graph() *graph.Graph { return p.graph }

// Frames returns the number of completed Render calls.
func (p *Pipeline) Frames() uint64 { return p.frames }

// Render renders every camera against the context's current scene. The
// context must be set up for the frame.
func (p *Pipeline) Render(ctx *Context, cameras []Camera) error {
	target, err := ctx.Target()
	if err != nil {
		return err
	}
	scene, err := ctx.Scene()
	if err != nil {
		return err
	}
	p.ctx = ctx
	if err := p.importTarget(target); err != nil {
		return err
	}
	if !p.ready {
		if p.cfg.Setup != nil {
			if err := p.cfg.Setup(ctx, p.graph); err != nil {
				// Drop partial declarations so the next Render starts clean.
				p.graph.Reset()
				p.target = graph.InvalidHandle
				return fmt.Errorf("pipeline setup: %w", err)
			}
		}
		p.ready = true
	}

	now := p.cfg.Clock()
	var dt float64
	if !p.last.IsZero() {
		dt = now.Sub(p.last).Seconds()
	}
	p.last = now
	updated := updateScene(scene, dt)

	for _, cam := range cameras {
		if err := p.renderCamera(ctx, cam); err != nil {
			p.graph.ClearPasses()
			return fmt.Errorf("camera %q: %w", cam.Label(), err)
		}
	}
	p.frames++
	rgraph.Logger().Debug("render: frame", "pipeline", p.cfg.Label, "cameras", len(cameras), "updated", updated, "dt", dt)
	return nil
}

func (p *Pipeline) renderCamera(ctx *Context, cam Camera) error {
	if p.cfg.Frame != nil {
		if err := p.cfg.Frame(ctx, p.graph, cam); err != nil {
			return err
		}
	}
	if err := p.graph.Compile(); err != nil {
		return err
	}
	return p.graph.Execute(ctx)
}

func (p *Pipeline) importTarget(t Target) error {
	imp := graph.Imported{Texture: t.Texture, View: t.View, Width: t.Width, Height: t.Height, Format: t.Format}
	if p.target != graph.InvalidHandle {
		return p.graph.UpdateImport(p.target, imp)
	}
	h, err := p.graph.ImportTexture(TargetName, imp)
	if err != nil {
		return err
	}
	p.target = h
	return nil
}

// Target returns the handle of the imported frame target, or
// graph.InvalidHandle before the first Render.
func (p *Pipeline) Target() graph.Handle { return p.target }

// Own records resources whose cached GPU objects belong to the pipeline.
// Dispose releases them from the context's resource cache, newest first, so
// bind groups go before the pipelines and buffers they reference.
func (p *Pipeline) Own(rs ...resource.Versioned) {
	p.owned = append(p.owned, rs...)
}

// Dispose releases every GPU object owned by the pipeline: the graph's
// physical resources and the cached objects of resources passed to Own.
// The pipeline can be rendered again afterwards; Setup runs again.
func (p *Pipeline) Dispose() {
	if p.ctx != nil {
		rc := p.ctx.Resources()
		for i := len(p.owned) - 1; i >= 0; i-- {
			if r := p.owned[i]; rc.Cached(r) {
				rc.Release(r)
			}
		}
	}
	p.owned = nil
	p.graph.Reset()
	p.target = graph.InvalidHandle
	p.ready = false
	p.last = time.Time{}
	rgraph.Logger().Info("render: pipeline disposed", "pipeline", p.cfg.Label, "frames", p.frames)
}
