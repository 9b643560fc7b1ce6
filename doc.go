// Package rgraph is the resource-synchronization and pass-scheduling core of
// a real-time GPU renderer built on gogpu/wgpu.
//
// # Overview
//
// rgraph decides which GPU objects exist, when they are created or updated
// from CPU-side data, and in what order rendering work executes. It is
// organized into:
//   - resource: CPU-owned versioned data (buffers, textures, shaders, pipelines, bind groups)
//   - cache: the generic versioned cache that drives per-kind mappers
//   - gpu: HAL mappers and the ResourceCache that dispatches by resource kind
//   - graph: the render graph (declarations, compile, execute, transients)
//   - render: the per-frame RenderContext and the camera Pipeline
//
// The rgdemo command (cmd/rgdemo) loads YAML frame files, prints their
// compiled pass order and renders them on any registered HAL backend.
//
// # Quick Start
//
//	rc, _ := render.NewContext(device, queue, render.Config{})
//	defer rc.Dispose()
//
//	g := graph.New(graph.Options{Label: "frame"})
//	depth, _ := g.CreateTexture("depth", graph.TextureDesc{
//	    Width: graph.Full(), Height: graph.Full(),
//	    Format: gputypes.TextureFormatDepth32Float,
//	    Usage:  gputypes.TextureUsageRenderAttachment,
//	    Transient: true,
//	})
//	g.AddPass(graph.Pass{Name: "shadow", Writes: []graph.Handle{depth}, Execute: drawShadow})
//	g.AddPass(graph.Pass{Name: "lighting", Reads: []graph.Handle{depth}, Execute: drawLit})
//
//	_ = rc.Setup(render.Target{View: view, Format: format, Width: 800, Height: 600}, scene)
//	if err := g.Compile(); err != nil { ... }
//	if err := g.Execute(rc); err != nil { ... }
//	_ = rc.EndFrame()
//
// # Threading
//
// Execution is single-threaded per frame. A RenderContext, its cache and any
// graph executed through it must be used from one goroutine. Only SetLogger
// and Logger are safe for concurrent use.
package rgraph

// Version information
const (
	// Version is the current version of the library
	Version = "0.3.0"

	// VersionMajor is the major version
	VersionMajor = 0

	// VersionMinor is the minor version
	VersionMinor = 3

	// VersionPatch is the patch version
	VersionPatch = 0
)
