// Package demo drives a frame file through a render pipeline. It backs the
// rgdemo command: Plan compiles a frame file without a device, Run renders
// it for a number of frames on a HAL backend.
package demo

import (
	"context"
	"time"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	"go.trai.ch/zerr"

	"github.com/gogpu/rgraph"
	"github.com/gogpu/rgraph/cache"
	"github.com/gogpu/rgraph/graph"
	"github.com/gogpu/rgraph/internal/framefile"
	"github.com/gogpu/rgraph/render"
	"github.com/gogpu/rgraph/resource"
)

// Step is one pass of a compiled plan.
type Step struct {
	Name   string
	Type   string
	Reads  []string
	Writes []string
}

// Plan is the compiled pass order of a frame file.
type Plan struct {
	Label     string
	Resources int
	Steps     []Step
}

// PlanFile loads the frame file at path and compiles its passes.
func PlanFile(path string) (*Plan, error) {
	f, err := framefile.Load(path)
	if err != nil {
		return nil, err
	}
	format, err := f.TargetFormat()
	if err != nil {
		return nil, err
	}

	g := graph.New(graph.Options{Label: f.Label})
	if _, err := g.ImportTexture(framefile.TargetName, graph.Imported{
		Width: f.Target.Width, Height: f.Target.Height, Format: format,
	}); err != nil {
		return nil, err
	}
	if err := f.Declare(g); err != nil {
		return nil, err
	}
	if err := f.AddPasses(g, nil); err != nil {
		return nil, err
	}
	if err := g.Compile(); err != nil {
		return nil, zerr.With(err, "file", path)
	}

	byName := make(map[string]framefile.PassDTO, len(f.Passes))
	for _, p := range f.Passes {
		byName[p.Name] = p
	}
	plan := &Plan{Label: f.Label, Resources: g.Len()}
	for _, name := range g.Order() {
		p := byName[name]
		plan.Steps = append(plan.Steps, Step{Name: p.Name, Type: p.Type, Reads: p.Reads, Writes: p.Writes})
	}
	return plan, nil
}

// Options configures Run.
type Options struct {
	// Frames overrides the frame file's frame count when positive.
	Frames int

	// Backend names the HAL backend. Default DefaultBackend.
	Backend string

	// Clock supplies frame times. Default time.Now.
	Clock func() time.Time
}

// Report summarizes a run.
type Report struct {
	Label       string
	Backend     string
	Adapter     string
	Cameras     int
	Frames      uint64
	Submissions uint64
	Draws       int
	Dispatches  int

	Graph           graph.Stats
	Cache           map[resource.Kind]cache.Stats
	SharedPipelines int
}

// scene is a single-object scene whose only component is the frame
// uniform block.
type scene struct{ objects []render.Object }

func (s *scene) Traverse(visit func(render.Object)) {
	for _, o := range s.objects {
		visit(o)
	}
}

type object []any

func (o object) Components() []any { return o }

type camera string

func (c camera) Label() string { return string(c) }

// Run loads the frame file at path and renders it on a HAL backend. Every
// camera is rendered through the full graph once per frame.
func Run(ctx context.Context, path string, opts Options) (*Report, error) {
	if opts.Frames < 0 {
		return nil, zerr.With(zerr.Wrap(ErrInvalidFrames, "run"), "frames", opts.Frames)
	}
	f, err := framefile.Load(path)
	if err != nil {
		return nil, err
	}
	format, err := f.TargetFormat()
	if err != nil {
		return nil, err
	}
	frames := f.Frames
	if opts.Frames > 0 {
		frames = opts.Frames
	}

	dev, err := OpenDevice(opts.Backend)
	if err != nil {
		return nil, err
	}
	defer dev.Close()

	rctx, err := render.NewContext(dev.Device, dev.Queue, render.Config{Label: f.Label})
	if err != nil {
		return nil, err
	}
	defer rctx.Dispose()

	target, release, err := createTarget(dev.Device, f.Label, f.Target.Width, f.Target.Height, format)
	if err != nil {
		return nil, err
	}
	defer release()

	uniforms := newFrameUniforms(f.Target.Width, f.Target.Height)
	sc := &scene{objects: []render.Object{object{uniforms}}}
	cameras := make([]render.Camera, len(f.Cameras))
	for i, c := range f.Cameras {
		cameras[i] = camera(c)
	}

	var (
		k *kit
		p *render.Pipeline
	)
	p = render.NewPipeline(render.PipelineConfig{
		Label: f.Label,
		Clock: opts.Clock,
		Setup: func(rc *render.Context, g *graph.Graph) error {
			k = newKit(rc, g, uniforms, p.Own)
			return f.Declare(g)
		},
		Frame: func(_ *render.Context, g *graph.Graph, _ render.Camera) error {
			return f.AddPasses(g, k.build)
		},
	})
	defer p.Dispose()

	for i := range frames {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := rctx.Setup(target, sc); err != nil {
			return nil, err
		}
		if err := p.Render(rctx, cameras); err != nil {
			return nil, zerr.With(zerr.Wrap(err, "render frame"), "frame", i)
		}
		if err := rctx.EndFrame(); err != nil {
			return nil, err
		}
	}

	rc := rctx.Resources()
	report := &Report{
		Label:           f.Label,
		Backend:         dev.Backend,
		Adapter:         dev.Adapter,
		Cameras:         len(cameras),
		Frames:          p.Frames(),
		Submissions:     rctx.Submissions(),
		Graph:           p.Graph().Stats(),
		Cache:           rc.Stats(),
		SharedPipelines: rc.SharedPipelines(),
	}
	if k != nil {
		report.Draws, report.Dispatches = k.draws, k.dispatch
	}
	rgraph.Logger().Info("demo: run complete", "label", f.Label, "frames", report.Frames, "submissions", report.Submissions)
	return report, nil
}

// createTarget allocates the texture that stands in for a swapchain image.
func createTarget(device hal.Device, label string, width, height uint32, format gputypes.TextureFormat) (render.Target, func(), error) {
	tex, err := device.CreateTexture(&hal.TextureDescriptor{
		Label:         label + "_target",
		Size:          hal.Extent3D{Width: width, Height: height, DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        format,
		Usage:         gputypes.TextureUsageRenderAttachment | gputypes.TextureUsageCopySrc,
	})
	if err != nil {
		return render.Target{}, nil, zerr.Wrap(err, "create target")
	}
	view, err := device.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label:         label + "_target_view",
		Format:        format,
		Dimension:     gputypes.TextureViewDimension2D,
		Aspect:        gputypes.TextureAspectAll,
		MipLevelCount: 1,
	})
	if err != nil {
		device.DestroyTexture(tex)
		return render.Target{}, nil, zerr.Wrap(err, "create target view")
	}
	release := func() {
		device.DestroyTextureView(view)
		device.DestroyTexture(tex)
	}
	t := render.Target{Texture: tex, View: view, Format: format, Width: width, Height: height}
	return t, release, nil
}

// App exposes PlanFile and Run as methods, for callers that take an
// interface.
type App struct{}

// Plan calls PlanFile.
func (App) Plan(path string) (*Plan, error) { return PlanFile(path) }

// Run calls Run.
func (App) Run(ctx context.Context, path string, opts Options) (*Report, error) {
	return Run(ctx, path, opts)
}
