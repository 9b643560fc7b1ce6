package graph_test

import (
	"errors"
	"testing"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/zerr"

	"github.com/gogpu/rgraph/graph"
	"github.com/gogpu/rgraph/internal/haltest"
)

type fakeEnv struct {
	dev *haltest.Device
	q   *haltest.Queue

	width, height uint32
	sizeErr       error
	submitErr     error
	submits       int
	aborts        int

	// hold queues retired releases instead of running them.
	hold    bool
	retired []func()
}

func newEnv(t *testing.T, w, h uint32) *fakeEnv {
	t.Helper()
	dev, q := haltest.NewDevice(t)
	return &fakeEnv{dev: dev, q: q, width: w, height: h}
}

func (e *fakeEnv) Device() hal.Device { return e.dev }
func (e *fakeEnv) Queue() hal.Queue   { return e.q }

func (e *fakeEnv) TargetSize() (uint32, uint32, error) {
	return e.width, e.height, e.sizeErr
}

func (e *fakeEnv) BeginRenderPass(*hal.RenderPassDescriptor) (hal.RenderPassEncoder, error) {
	return nil, nil
}

func (e *fakeEnv) EndRenderPass() error { return nil }

func (e *fakeEnv) BeginComputePass(*hal.ComputePassDescriptor) (hal.ComputePassEncoder, error) {
	return nil, nil
}

func (e *fakeEnv) EndComputePass() error { return nil }

func (e *fakeEnv) Submit() error {
	e.submits++
	return e.submitErr
}

func (e *fakeEnv) Abort() { e.aborts++ }

func (e *fakeEnv) Retire(release func()) {
	if e.hold {
		e.retired = append(e.retired, release)
		return
	}
	release()
}

func (e *fakeEnv) drain() {
	for _, release := range e.retired {
		release()
	}
	e.retired = nil
}

func metadata(t *testing.T, err error) map[string]any {
	t.Helper()
	zErr, ok := err.(*zerr.Error)
	require.True(t, ok, "expected *zerr.Error, got %T", err)
	return zErr.Metadata()
}

func recorder(log *[]string, name string) graph.ExecuteFunc {
	return func(graph.Env, graph.Resolved) error {
		*log = append(*log, name)
		return nil
	}
}

func TestCompile_WriterRunsBeforeReader(t *testing.T) {
	g := graph.New(graph.Options{})
	shadow, err := g.CreateTexture("shadowMap", graph.TextureDesc{
		Width: graph.Abs(1024), Height: graph.Abs(1024), Format: gputypes.TextureFormatDepth32Float,
	})
	require.NoError(t, err)
	color, err := g.CreateTexture("color", graph.TextureDesc{Width: graph.Full(), Height: graph.Full()})
	require.NoError(t, err)

	// Inserted in the wrong order on purpose.
	g.AddPass(graph.Pass{Name: "lighting", Reads: []graph.Handle{shadow}, Writes: []graph.Handle{color}})
	g.AddPass(graph.Pass{Name: "shadow", Writes: []graph.Handle{shadow}})

	require.NoError(t, g.Compile())
	assert.Equal(t, graph.StateCompiled, g.State())
	assert.Equal(t, []string{"shadow", "lighting"}, g.Order())
}

func TestCompile_InsertionOrderBreaksTies(t *testing.T) {
	g := graph.New(graph.Options{})
	x, err := g.CreateBuffer("x", graph.BufferDesc{Size: 64})
	require.NoError(t, err)

	g.AddPass(graph.Pass{Name: "post", Reads: []graph.Handle{x}})
	g.AddPass(graph.Pass{Name: "ui"})
	g.AddPass(graph.Pass{Name: "late", Writes: []graph.Handle{x}})
	g.AddPass(graph.Pass{Name: "overlay"})

	require.NoError(t, g.Compile())
	assert.Equal(t, []string{"ui", "late", "post", "overlay"}, g.Order())
}

func TestCompile_IndependentPassesKeepInsertionOrder(t *testing.T) {
	g := graph.New(graph.Options{})
	for _, name := range []string{"c", "a", "b"} {
		g.AddPass(graph.Pass{Name: name})
	}
	require.NoError(t, g.Compile())
	assert.Equal(t, []string{"c", "a", "b"}, g.Order())
}

func TestCompile_ReadWriteSameResource(t *testing.T) {
	g := graph.New(graph.Options{})
	accum, err := g.CreateTexture("accum", graph.TextureDesc{Width: graph.Abs(8), Height: graph.Abs(8)})
	require.NoError(t, err)

	g.AddPass(graph.Pass{Name: "blend", Reads: []graph.Handle{accum}, Writes: []graph.Handle{accum}})
	require.NoError(t, g.Compile())
	assert.Equal(t, []string{"blend"}, g.Order())
}

func TestCompile_Cycle(t *testing.T) {
	g := graph.New(graph.Options{})
	x, err := g.CreateBuffer("x", graph.BufferDesc{Size: 4})
	require.NoError(t, err)
	y, err := g.CreateBuffer("y", graph.BufferDesc{Size: 4})
	require.NoError(t, err)

	g.AddPass(graph.Pass{Name: "a", Reads: []graph.Handle{y}, Writes: []graph.Handle{x}})
	g.AddPass(graph.Pass{Name: "b", Reads: []graph.Handle{x}, Writes: []graph.Handle{y}})

	err = g.Compile()
	require.Error(t, err)
	assert.True(t, errors.Is(err, graph.ErrCycleDetected))

	meta := metadata(t, err)
	assert.Equal(t, "a -> b -> a", meta["cycle"])
	assert.Equal(t, []string{"a", "b"}, meta["passes"])

	assert.Equal(t, graph.StateBuilding, g.State())
	assert.Nil(t, g.Order())
	assert.Equal(t, 2, g.Passes())
}

func TestCompile_CycleThroughThreePasses(t *testing.T) {
	g := graph.New(graph.Options{})
	var hs [3]graph.Handle
	for i, name := range []string{"p", "q", "r"} {
		h, err := g.CreateBuffer(name, graph.BufferDesc{Size: 4})
		require.NoError(t, err)
		hs[i] = h
	}
	g.AddPass(graph.Pass{Name: "first", Writes: []graph.Handle{hs[0]}, Reads: []graph.Handle{hs[2]}})
	g.AddPass(graph.Pass{Name: "second", Writes: []graph.Handle{hs[1]}, Reads: []graph.Handle{hs[0]}})
	g.AddPass(graph.Pass{Name: "third", Writes: []graph.Handle{hs[2]}, Reads: []graph.Handle{hs[1]}})

	err := g.Compile()
	require.ErrorIs(t, err, graph.ErrCycleDetected)
	assert.Equal(t, "first -> second -> third -> first", metadata(t, err)["cycle"])
}

func TestCompile_Validation(t *testing.T) {
	tests := []struct {
		name   string
		passes []graph.Pass
		want   error
		meta   map[string]any
	}{
		{
			name:   "duplicate pass",
			passes: []graph.Pass{{Name: "blur"}, {Name: "blur"}},
			want:   graph.ErrDuplicatePass,
			meta:   map[string]any{"pass": "blur"},
		},
		{
			name:   "unknown read",
			passes: []graph.Pass{{Name: "sample", Reads: []graph.Handle{99}}},
			want:   graph.ErrUnknownResource,
			meta:   map[string]any{"pass": "sample", "handle": uint32(99), "access": "read"},
		},
		{
			name:   "invalid write",
			passes: []graph.Pass{{Name: "draw", Writes: []graph.Handle{graph.InvalidHandle}}},
			want:   graph.ErrUnknownResource,
			meta:   map[string]any{"pass": "draw", "handle": uint32(0), "access": "write"},
		},
		{
			name:   "unnamed pass",
			passes: []graph.Pass{{}},
			want:   graph.ErrEmptyName,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := graph.New(graph.Options{})
			for _, p := range tt.passes {
				g.AddPass(p)
			}
			err := g.Compile()
			require.ErrorIs(t, err, tt.want)
			meta := metadata(t, err)
			for k, v := range tt.meta {
				assert.Equal(t, v, meta[k], "metadata %q", k)
			}
			assert.Equal(t, graph.StateBuilding, g.State())
		})
	}
}

func TestDeclare_DuplicateName(t *testing.T) {
	g := graph.New(graph.Options{})
	_, err := g.CreateTexture("gbuffer", graph.TextureDesc{Width: graph.Full(), Height: graph.Full()})
	require.NoError(t, err)

	_, err = g.CreateTexture("gbuffer", graph.TextureDesc{Width: graph.Full(), Height: graph.Full()})
	require.ErrorIs(t, err, graph.ErrDuplicateName)
	assert.Equal(t, "gbuffer", metadata(t, err)["name"])

	_, err = g.CreateBuffer("gbuffer", graph.BufferDesc{Size: 16})
	require.ErrorIs(t, err, graph.ErrDuplicateName)

	_, err = g.ImportTexture("gbuffer", graph.Imported{})
	require.ErrorIs(t, err, graph.ErrDuplicateName)

	assert.Equal(t, 1, g.Len())
}

func TestDeclare_InvalidSize(t *testing.T) {
	g := graph.New(graph.Options{})
	_, err := g.CreateTexture("empty", graph.TextureDesc{Width: graph.Abs(0), Height: graph.Abs(4)})
	require.ErrorIs(t, err, graph.ErrInvalidSize)

	_, err = g.CreateTexture("zero", graph.TextureDesc{})
	require.ErrorIs(t, err, graph.ErrInvalidSize)

	_, err = g.CreateTexture("huge", graph.TextureDesc{Width: graph.Percent(5000), Height: graph.Full()})
	require.ErrorIs(t, err, graph.ErrInvalidSize)

	_, err = g.CreateBuffer("nothing", graph.BufferDesc{})
	require.ErrorIs(t, err, graph.ErrInvalidSize)

	_, err = g.CreateBuffer("", graph.BufferDesc{Size: 4})
	require.ErrorIs(t, err, graph.ErrEmptyName)

	assert.Equal(t, 0, g.Len())
}

func TestLookup(t *testing.T) {
	g := graph.New(graph.Options{})
	h, err := g.CreateBuffer("lights", graph.BufferDesc{Size: 256})
	require.NoError(t, err)

	got, err := g.Lookup("lights")
	require.NoError(t, err)
	assert.Equal(t, h, got)
	assert.Equal(t, "lights", g.Name(h))

	_, err = g.Lookup("missing")
	require.ErrorIs(t, err, graph.ErrResourceNotFound)
	assert.Equal(t, "missing", metadata(t, err)["name"])
	assert.Empty(t, g.Name(42))
}

func TestExecute_RequiresCompile(t *testing.T) {
	env := newEnv(t, 64, 64)
	g := graph.New(graph.Options{})
	g.AddPass(graph.Pass{Name: "a"})

	err := g.Execute(env)
	require.ErrorIs(t, err, graph.ErrNotCompiled)
	assert.Equal(t, "building", metadata(t, err)["state"])
	assert.Zero(t, env.submits)

	require.NoError(t, g.Compile())
	g.AddPass(graph.Pass{Name: "b"})
	assert.Equal(t, graph.StateBuilding, g.State(), "adding a pass invalidates the compiled order")
	require.ErrorIs(t, g.Execute(env), graph.ErrNotCompiled)
}

func TestExecute_RunsInOrderAndResets(t *testing.T) {
	env := newEnv(t, 800, 600)
	g := graph.New(graph.Options{Label: "frame"})
	shadow, err := g.CreateTexture("shadowMap", graph.TextureDesc{Width: graph.Abs(512), Height: graph.Abs(512), Transient: true})
	require.NoError(t, err)

	var log []string
	g.AddPass(graph.Pass{Name: "lighting", Reads: []graph.Handle{shadow}, Execute: recorder(&log, "lighting")})
	g.AddPass(graph.Pass{Name: "shadow", Writes: []graph.Handle{shadow}, Execute: recorder(&log, "shadow")})
	g.AddPass(graph.Pass{Name: "marker"})

	require.NoError(t, g.Compile())
	require.NoError(t, g.Execute(env))

	assert.Equal(t, []string{"shadow", "lighting"}, log)
	assert.Equal(t, 1, env.submits)
	assert.Equal(t, graph.StateBuilding, g.State())
	assert.Zero(t, g.Passes())
	assert.Equal(t, 1, g.Stats().Frames)

	// Declarations survive; an empty frame still submits.
	require.NoError(t, g.Compile())
	require.NoError(t, g.Execute(env))
	assert.Equal(t, 2, env.submits)
	assert.Equal(t, 1, g.Len())
}

func TestExecute_RelativeSize(t *testing.T) {
	env := newEnv(t, 800, 600)
	g := graph.New(graph.Options{})
	half, err := g.CreateTexture("half", graph.TextureDesc{Width: graph.Percent(50), Height: graph.Percent(50)})
	require.NoError(t, err)
	tiny, err := g.CreateTexture("tiny", graph.TextureDesc{Width: graph.Percent(1), Height: graph.Abs(3)})
	require.NoError(t, err)

	env.width, env.height = 50, 600
	require.NoError(t, g.Compile())
	require.NoError(t, g.Execute(env))

	p, ok := g.Physical(tiny)
	require.True(t, ok)
	assert.Equal(t, uint32(1), p.Width, "relative sizes never resolve below 1")
	assert.Equal(t, uint32(3), p.Height)

	env.width = 800
	require.NoError(t, g.Compile())
	require.NoError(t, g.Execute(env))

	p, ok = g.Physical(half)
	require.True(t, ok)
	assert.Equal(t, uint32(400), p.Width)
	assert.Equal(t, uint32(300), p.Height)
	assert.Equal(t, gputypes.TextureFormatRGBA8Unorm, p.Format)
}

func TestExecute_TargetSizeError(t *testing.T) {
	env := newEnv(t, 0, 0)
	env.sizeErr = errors.New("no target")
	g := graph.New(graph.Options{})
	_, err := g.CreateTexture("abs", graph.TextureDesc{Width: graph.Abs(4), Height: graph.Abs(4)})
	require.NoError(t, err)

	// Absolute sizes never ask for the target.
	require.NoError(t, g.Compile())
	require.NoError(t, g.Execute(env))

	_, err = g.CreateTexture("rel", graph.TextureDesc{Width: graph.Full(), Height: graph.Full()})
	require.NoError(t, err)
	require.NoError(t, g.Compile())
	err = g.Execute(env)
	require.ErrorContains(t, err, "no target")
	assert.Equal(t, "rel", metadata(t, err)["name"])
	assert.Equal(t, 1, env.submits)
}

func TestExecute_TransientLifecycle(t *testing.T) {
	env := newEnv(t, 320, 240)
	g := graph.New(graph.Options{})
	scratch, err := g.CreateTexture("scratch", graph.TextureDesc{Width: graph.Full(), Height: graph.Full(), Transient: true})
	require.NoError(t, err)

	var seen *graph.Physical
	g.AddPass(graph.Pass{
		Name:   "blur",
		Writes: []graph.Handle{scratch},
		Execute: func(_ graph.Env, res graph.Resolved) error {
			seen = res[scratch]
			require.NotNil(t, res.View(scratch))
			return nil
		},
	})
	require.NoError(t, g.Compile())
	require.NoError(t, g.Execute(env))

	require.NotNil(t, seen)
	assert.Equal(t, uint32(320), seen.Width)
	_, ok := g.Physical(scratch)
	assert.False(t, ok, "transient resources do not outlive execute")
	assert.Equal(t, 1, env.dev.Count(haltest.CreateTexture))
	assert.Equal(t, 1, env.dev.Count(haltest.DestroyTexture))
	assert.Equal(t, 1, env.dev.Count(haltest.DestroyTextureView))

	require.NoError(t, g.Compile())
	require.NoError(t, g.Execute(env))
	assert.Equal(t, 2, env.dev.Count(haltest.CreateTexture), "a new frame recreates transients")
	assert.Equal(t, 2, env.dev.Count(haltest.DestroyTexture))
}

func TestExecute_PersistentReuse(t *testing.T) {
	env := newEnv(t, 640, 480)
	g := graph.New(graph.Options{})
	history, err := g.CreateTexture("history", graph.TextureDesc{Width: graph.Full(), Height: graph.Full()})
	require.NoError(t, err)
	lights, err := g.CreateBuffer("lights", graph.BufferDesc{Size: 10})
	require.NoError(t, err)

	require.NoError(t, g.Compile())
	require.NoError(t, g.Execute(env))
	first, ok := g.Physical(history)
	require.True(t, ok)
	buf, ok := g.Physical(lights)
	require.True(t, ok)
	assert.Equal(t, uint64(12), buf.Size)

	require.NoError(t, g.Compile())
	require.NoError(t, g.Execute(env))
	second, ok := g.Physical(history)
	require.True(t, ok)
	assert.Same(t, first, second)
	assert.Equal(t, 1, env.dev.Count(haltest.CreateTexture))
	assert.Equal(t, 1, env.dev.Count(haltest.CreateBuffer))
	assert.Zero(t, env.dev.Count(haltest.DestroyTexture))
	assert.Equal(t, 2, g.Stats().Reused)

	// A target resize recreates relative persistent textures only.
	env.width, env.height = 1280, 720
	require.NoError(t, g.Compile())
	require.NoError(t, g.Execute(env))
	third, ok := g.Physical(history)
	require.True(t, ok)
	assert.NotSame(t, first, third)
	assert.Equal(t, uint32(1280), third.Width)
	assert.Equal(t, 2, env.dev.Count(haltest.CreateTexture))
	assert.Equal(t, 1, env.dev.Count(haltest.DestroyTexture))
	assert.Equal(t, 1, env.dev.Count(haltest.CreateBuffer))

	g.Release()
	_, ok = g.Physical(history)
	assert.False(t, ok)
	assert.Equal(t, 2, env.dev.Count(haltest.DestroyTexture))
	assert.Equal(t, 1, env.dev.Count(haltest.DestroyBuffer))
}

func TestExecute_UnusedResourceIsMaterialized(t *testing.T) {
	env := newEnv(t, 16, 16)
	g := graph.New(graph.Options{})
	h, err := g.CreateBuffer("unused", graph.BufferDesc{Size: 32})
	require.NoError(t, err)

	require.NoError(t, g.Compile())
	require.NoError(t, g.Execute(env))
	_, ok := g.Physical(h)
	assert.True(t, ok)
	assert.Equal(t, 1, env.dev.Count(haltest.CreateBuffer))
}

func TestExecute_ResolvedHoldsDeclaredOnly(t *testing.T) {
	env := newEnv(t, 16, 16)
	g := graph.New(graph.Options{})
	a, err := g.CreateBuffer("a", graph.BufferDesc{Size: 4})
	require.NoError(t, err)
	b, err := g.CreateBuffer("b", graph.BufferDesc{Size: 4})
	require.NoError(t, err)

	var got graph.Resolved
	g.AddPass(graph.Pass{
		Name:  "copy",
		Reads: []graph.Handle{a},
		Execute: func(_ graph.Env, res graph.Resolved) error {
			got = res
			return nil
		},
	})
	var empty graph.Resolved
	g.AddPass(graph.Pass{
		Name: "none",
		Execute: func(_ graph.Env, res graph.Resolved) error {
			empty = res
			return nil
		},
	})
	require.NoError(t, g.Compile())
	require.NoError(t, g.Execute(env))

	assert.Len(t, got, 1)
	assert.NotNil(t, got.Buffer(a))
	assert.Nil(t, got.Buffer(b))
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

func TestExecute_PassError(t *testing.T) {
	env := newEnv(t, 16, 16)
	g := graph.New(graph.Options{})
	tmp, err := g.CreateTexture("tmp", graph.TextureDesc{Width: graph.Abs(4), Height: graph.Abs(4), Transient: true})
	require.NoError(t, err)

	boom := errors.New("boom")
	var ran bool
	g.AddPass(graph.Pass{
		Name:    "fail",
		Writes:  []graph.Handle{tmp},
		Execute: func(graph.Env, graph.Resolved) error { return boom },
	})
	g.AddPass(graph.Pass{
		Name:  "after",
		Reads: []graph.Handle{tmp},
		Execute: func(graph.Env, graph.Resolved) error {
			ran = true
			return nil
		},
	})
	require.NoError(t, g.Compile())

	err = g.Execute(env)
	require.ErrorIs(t, err, boom)
	assert.Equal(t, "fail", metadata(t, err)["pass"])
	assert.False(t, ran)
	assert.Zero(t, env.submits)
	assert.Equal(t, 1, env.aborts, "a failed pass aborts the recording")
	assert.Equal(t, graph.StateBuilding, g.State())
	assert.Equal(t, 2, g.Passes(), "passes are kept for a retry")
	assert.Equal(t, 1, env.dev.Count(haltest.DestroyTexture), "transients are destroyed on failure")

	g.ClearPasses()
	assert.Zero(t, g.Passes())
}

func TestExecute_SubmitError(t *testing.T) {
	env := newEnv(t, 16, 16)
	env.submitErr = errors.New("queue lost")
	g := graph.New(graph.Options{})
	require.NoError(t, g.Compile())

	err := g.Execute(env)
	require.ErrorContains(t, err, "queue lost")
	assert.Equal(t, graph.StateBuilding, g.State())
}

func TestExecute_TransientsRetired(t *testing.T) {
	env := newEnv(t, 16, 16)
	env.hold = true
	g := graph.New(graph.Options{})
	tmp, err := g.CreateTexture("tmp", graph.TextureDesc{Width: graph.Abs(4), Height: graph.Abs(4), Transient: true})
	require.NoError(t, err)

	require.NoError(t, g.Compile())
	require.NoError(t, g.Execute(env))

	_, ok := g.Physical(tmp)
	assert.False(t, ok, "transients are unbound at once")
	assert.Equal(t, 1, g.Stats().Destroyed)
	assert.Zero(t, env.dev.Count(haltest.DestroyTexture), "destruction waits for the environment")
	require.Len(t, env.retired, 1)

	env.drain()
	assert.Equal(t, 1, env.dev.Count(haltest.DestroyTexture))
	assert.Equal(t, 1, env.dev.Count(haltest.DestroyTextureView))
}

func TestExecute_CreateFailure(t *testing.T) {
	env := newEnv(t, 16, 16)
	g := graph.New(graph.Options{})
	_, err := g.CreateBuffer("big", graph.BufferDesc{Size: 1 << 20})
	require.NoError(t, err)

	oom := errors.New("out of memory")
	env.dev.FailNext(haltest.CreateBuffer, oom)
	require.NoError(t, g.Compile())
	err = g.Execute(env)
	require.ErrorIs(t, err, oom)
	assert.Equal(t, "big", metadata(t, err)["name"])

	require.NoError(t, g.Compile())
	require.NoError(t, g.Execute(env))
}

func TestImportTexture(t *testing.T) {
	env := newEnv(t, 800, 600)
	g := graph.New(graph.Options{})
	tex, err := env.dev.CreateTexture(&hal.TextureDescriptor{Label: "swapchain"})
	require.NoError(t, err)
	view, err := env.dev.CreateTextureView(tex, nil)
	require.NoError(t, err)
	env.dev.Reset()

	target, err := g.ImportTexture("target", graph.Imported{
		Texture: tex, View: view, Width: 800, Height: 600, Format: gputypes.TextureFormatBGRA8Unorm,
	})
	require.NoError(t, err)

	var got *graph.Physical
	g.AddPass(graph.Pass{
		Name:   "present",
		Writes: []graph.Handle{target},
		Execute: func(_ graph.Env, res graph.Resolved) error {
			got = res[target]
			return nil
		},
	})
	require.NoError(t, g.Compile())
	require.NoError(t, g.Execute(env))

	require.NotNil(t, got)
	assert.True(t, got.Imported)
	assert.Equal(t, uint32(800), got.Width)
	assert.Equal(t, gputypes.TextureFormatBGRA8Unorm, got.Format)
	assert.Zero(t, env.dev.Total(), "imported textures are never created or destroyed")

	require.NoError(t, g.UpdateImport(target, graph.Imported{Texture: tex, View: view, Width: 1024, Height: 768}))
	g.AddPass(graph.Pass{
		Name:   "present",
		Writes: []graph.Handle{target},
		Execute: func(_ graph.Env, res graph.Resolved) error {
			got = res[target]
			return nil
		},
	})
	require.NoError(t, g.Compile())
	require.NoError(t, g.Execute(env))
	assert.Equal(t, uint32(1024), got.Width)

	g.Reset()
	assert.Zero(t, env.dev.Total())
	assert.Zero(t, g.Len())
}

func TestUpdateImport_Errors(t *testing.T) {
	g := graph.New(graph.Options{})
	owned, err := g.CreateBuffer("owned", graph.BufferDesc{Size: 4})
	require.NoError(t, err)

	require.ErrorIs(t, g.UpdateImport(owned, graph.Imported{}), graph.ErrNotImported)
	require.ErrorIs(t, g.UpdateImport(7, graph.Imported{}), graph.ErrUnknownResource)
}
