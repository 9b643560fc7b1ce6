package render

import (
	"errors"
	"testing"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/rgraph/internal/haltest"
	"github.com/gogpu/rgraph/resource"
)

func newTestContext(t *testing.T) (*Context, *haltest.Device, *haltest.Queue) {
	t.Helper()
	device, queue := haltest.NewDevice(t)
	ctx, err := NewContext(device, queue, Config{Label: "test"})
	if err != nil {
		t.Fatalf("NewContext: %v", err)
	}
	t.Cleanup(ctx.Dispose)
	return ctx, device, queue
}

var testTarget = Target{Format: gputypes.TextureFormatBGRA8Unorm, Width: 800, Height: 600}

func TestNewContextNilDevice(t *testing.T) {
	device, queue := haltest.NewDevice(t)
	if _, err := NewContext(nil, queue, Config{}); !errors.Is(err, ErrNilDevice) {
		t.Errorf("nil device: err = %v, want ErrNilDevice", err)
	}
	if _, err := NewContext(device, nil, Config{}); !errors.Is(err, ErrNilDevice) {
		t.Errorf("nil queue: err = %v, want ErrNilDevice", err)
	}
}

func TestAccessorsBeforeSetup(t *testing.T) {
	ctx, _, _ := newTestContext(t)

	tests := []struct {
		name string
		call func() error
	}{
		{"Target", func() error { _, err := ctx.Target(); return err }},
		{"TargetFormat", func() error { _, err := ctx.TargetFormat(); return err }},
		{"TargetSize", func() error { _, _, err := ctx.TargetSize(); return err }},
		{"Scene", func() error { _, err := ctx.Scene(); return err }},
		{"EndFrame", ctx.EndFrame},
		{"BeginRenderPass(nil)", func() error { _, err := ctx.BeginRenderPass(nil); return err }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.call(); !errors.Is(err, ErrNotInitialized) {
				t.Errorf("err = %v, want ErrNotInitialized", err)
			}
		})
	}
}

func TestSetupFrameCycle(t *testing.T) {
	ctx, _, _ := newTestContext(t)
	scene := &testScene{}

	if err := ctx.Setup(testTarget, scene); err != nil {
		t.Fatalf("Setup: %v", err)
	}
	if err := ctx.Setup(testTarget, scene); !errors.Is(err, ErrAlreadySetup) {
		t.Errorf("second Setup: err = %v, want ErrAlreadySetup", err)
	}

	w, h, err := ctx.TargetSize()
	if err != nil || w != 800 || h != 600 {
		t.Errorf("TargetSize = %dx%d, %v; want 800x600", w, h, err)
	}
	if f, _ := ctx.TargetFormat(); f != gputypes.TextureFormatBGRA8Unorm {
		t.Errorf("TargetFormat = %v", f)
	}
	if s, _ := ctx.Scene(); s != scene {
		t.Error("Scene returned a different snapshot")
	}

	if err := ctx.EndFrame(); err != nil {
		t.Fatalf("EndFrame: %v", err)
	}
	if ctx.IsSetup() {
		t.Error("IsSetup after EndFrame")
	}
	if err := ctx.Setup(Target{Width: 1, Height: 1}, nil); err != nil {
		t.Errorf("Setup after EndFrame: %v", err)
	}
}

func TestPassScopes(t *testing.T) {
	ctx, _, _ := newTestContext(t)

	if _, err := ctx.RenderPassEncoder(); !errors.Is(err, ErrNoActivePass) {
		t.Errorf("RenderPassEncoder outside pass: err = %v", err)
	}
	if _, err := ctx.ComputePassEncoder(); !errors.Is(err, ErrNoActivePass) {
		t.Errorf("ComputePassEncoder outside pass: err = %v", err)
	}
	if err := ctx.EndRenderPass(); !errors.Is(err, ErrNoActivePass) {
		t.Errorf("EndRenderPass outside pass: err = %v", err)
	}

	rp, err := ctx.BeginRenderPass(&hal.RenderPassDescriptor{Label: "offscreen"})
	if err != nil {
		t.Fatalf("BeginRenderPass: %v", err)
	}
	if got, err := ctx.RenderPassEncoder(); err != nil || got != rp {
		t.Errorf("RenderPassEncoder = %v, %v", got, err)
	}
	if _, err := ctx.BeginRenderPass(&hal.RenderPassDescriptor{}); !errors.Is(err, ErrPassActive) {
		t.Errorf("nested render pass: err = %v, want ErrPassActive", err)
	}
	if _, err := ctx.BeginComputePass(nil); !errors.Is(err, ErrPassActive) {
		t.Errorf("compute inside render pass: err = %v, want ErrPassActive", err)
	}
	if err := ctx.Submit(); !errors.Is(err, ErrPassActive) {
		t.Errorf("Submit inside pass: err = %v, want ErrPassActive", err)
	}
	if _, err := ctx.CommandEncoder(); !errors.Is(err, ErrPassActive) {
		t.Errorf("CommandEncoder inside pass: err = %v, want ErrPassActive", err)
	}
	if err := ctx.EndRenderPass(); err != nil {
		t.Fatalf("EndRenderPass: %v", err)
	}

	if _, err := ctx.BeginComputePass(nil); err != nil {
		t.Fatalf("BeginComputePass: %v", err)
	}
	if _, err := ctx.ComputePassEncoder(); err != nil {
		t.Errorf("ComputePassEncoder: %v", err)
	}
	if err := ctx.EndComputePass(); err != nil {
		t.Errorf("EndComputePass: %v", err)
	}
	if err := ctx.EndComputePass(); !errors.Is(err, ErrNoActivePass) {
		t.Errorf("second EndComputePass: err = %v", err)
	}
}

func TestTargetPass(t *testing.T) {
	ctx, _, _ := newTestContext(t)
	if err := ctx.Setup(testTarget, nil); err != nil {
		t.Fatal(err)
	}
	if _, err := ctx.BeginRenderPass(nil); err != nil {
		t.Fatalf("BeginRenderPass(nil): %v", err)
	}
	if err := ctx.EndFrame(); !errors.Is(err, ErrPassActive) {
		t.Errorf("EndFrame with open pass: err = %v, want ErrPassActive", err)
	}
	if err := ctx.EndRenderPass(); err != nil {
		t.Fatal(err)
	}
	if err := ctx.EndFrame(); err != nil {
		t.Errorf("EndFrame: %v", err)
	}
}

func TestSubmitReopensSession(t *testing.T) {
	ctx, device, queue := newTestContext(t)
	if got := device.Count(haltest.CreateCommandEncoder); got != 1 {
		t.Fatalf("CreateCommandEncoder after NewContext = %d, want 1", got)
	}

	for i := range 3 {
		if err := ctx.Submit(); err != nil {
			t.Fatalf("Submit %d: %v", i, err)
		}
		// Recording continues in the same frame.
		if _, err := ctx.BeginComputePass(nil); err != nil {
			t.Fatalf("BeginComputePass after Submit %d: %v", i, err)
		}
		if err := ctx.EndComputePass(); err != nil {
			t.Fatal(err)
		}
	}

	if got := queue.Count(haltest.Submit); got != 3 {
		t.Errorf("Submit calls = %d, want 3", got)
	}
	if got := device.Count(haltest.CreateCommandEncoder); got != 4 {
		t.Errorf("CreateCommandEncoder calls = %d, want 4", got)
	}
	// The noop queue completes every submission immediately.
	if got := device.Count(haltest.FreeCommandBuffer); got != 3 {
		t.Errorf("FreeCommandBuffer calls = %d, want 3", got)
	}
	if ctx.Pending() != 0 {
		t.Errorf("Pending = %d, want 0", ctx.Pending())
	}
	if ctx.Submissions() != 3 {
		t.Errorf("Submissions = %d, want 3", ctx.Submissions())
	}
}

func TestSubmitError(t *testing.T) {
	ctx, device, queue := newTestContext(t)
	lost := errors.New("device lost")
	queue.FailNext(haltest.Submit, lost)

	if err := ctx.Submit(); !errors.Is(err, lost) {
		t.Fatalf("Submit: err = %v, want %v", err, lost)
	}
	if got := device.Count(haltest.FreeCommandBuffer); got != 1 {
		t.Errorf("rejected command buffer freed %d times, want 1", got)
	}
	if err := ctx.Submit(); err != nil {
		t.Errorf("Submit after failure: %v", err)
	}
	if ctx.Submissions() != 1 {
		t.Errorf("Submissions = %d, want 1", ctx.Submissions())
	}
}

func TestDispose(t *testing.T) {
	ctx, device, _ := newTestContext(t)

	buf := resource.NewBuffer("uniforms", gputypes.BufferUsageUniform, make([]byte, 16))
	if _, err := ctx.Resources().SyncBuffer(buf); err != nil {
		t.Fatal(err)
	}
	if _, err := ctx.BeginRenderPass(&hal.RenderPassDescriptor{}); err != nil {
		t.Fatal(err)
	}

	ctx.Dispose()
	ctx.Dispose()

	if got := device.Count(haltest.DestroyBuffer); got != 1 {
		t.Errorf("DestroyBuffer calls = %d, want 1", got)
	}
	if ctx.Resources().Total().Len != 0 {
		t.Error("cache not empty after Dispose")
	}

	checks := map[string]error{
		"Setup":  ctx.Setup(testTarget, nil),
		"Submit": ctx.Submit(),
	}
	_, checks["BeginRenderPass"] = ctx.BeginRenderPass(nil)
	_, checks["BeginComputePass"] = ctx.BeginComputePass(nil)
	_, checks["CommandEncoder"] = ctx.CommandEncoder()
	for name, err := range checks {
		if !errors.Is(err, ErrContextDisposed) {
			t.Errorf("%s after Dispose: err = %v, want ErrContextDisposed", name, err)
		}
	}
}

type fakeProvider struct {
	device gpucontext.Device
	queue  gpucontext.Queue
}

func (p fakeProvider) Device() gpucontext.Device { return p.device }
func (p fakeProvider) Queue() gpucontext.Queue   { return p.queue }
func (p fakeProvider) Adapter() gpucontext.Adapter {
	return nil
}

func (p fakeProvider) SurfaceFormat() gputypes.TextureFormat {
	return gputypes.TextureFormatBGRA8Unorm
}

func (p fakeProvider) AdapterInfo() gpucontext.AdapterInfo {
	return gpucontext.AdapterInfo{Name: "noop"}
}

func TestNewContextFromProvider(t *testing.T) {
	device, queue := haltest.NewDevice(t)

	ctx, err := NewContextFromProvider(fakeProvider{device: device, queue: queue}, Config{})
	if err != nil {
		t.Fatalf("NewContextFromProvider: %v", err)
	}
	defer ctx.Dispose()
	if ctx.Device() != hal.Device(device) {
		t.Error("context does not use the provider's device")
	}
	if ctx.Label() != "rgraph" {
		t.Errorf("default label = %q", ctx.Label())
	}

	if _, err := NewContextFromProvider(fakeProvider{device: "not a device", queue: queue}, Config{}); !errors.Is(err, ErrUnsupportedProvider) {
		t.Errorf("foreign device: err = %v, want ErrUnsupportedProvider", err)
	}
	if _, err := NewContextFromProvider(fakeProvider{device: device}, Config{}); !errors.Is(err, ErrUnsupportedProvider) {
		t.Errorf("missing queue: err = %v, want ErrUnsupportedProvider", err)
	}
	if _, err := NewContextFromProvider(nil, Config{}); !errors.Is(err, ErrNilDevice) {
		t.Errorf("nil provider: err = %v, want ErrNilDevice", err)
	}
}

func TestAbortDiscardsRecording(t *testing.T) {
	ctx, device, queue := newTestContext(t)
	if err := ctx.Setup(testTarget, nil); err != nil {
		t.Fatal(err)
	}
	if _, err := ctx.BeginRenderPass(nil); err != nil {
		t.Fatal(err)
	}

	ctx.Abort()
	if got := device.Count(haltest.DiscardEncoding); got != 1 {
		t.Errorf("DiscardEncoding calls = %d, want 1", got)
	}
	if _, err := ctx.RenderPassEncoder(); !errors.Is(err, ErrNoActivePass) {
		t.Errorf("RenderPassEncoder after Abort: err = %v, want ErrNoActivePass", err)
	}
	if _, err := ctx.BeginComputePass(nil); err != nil {
		t.Fatalf("BeginComputePass after Abort: %v", err)
	}
	if err := ctx.EndComputePass(); err != nil {
		t.Fatal(err)
	}
	if err := ctx.Submit(); err != nil {
		t.Fatalf("Submit after Abort: %v", err)
	}
	if got := queue.Count(haltest.Submit); got != 1 {
		t.Errorf("Submit calls = %d, want 1", got)
	}
	if err := ctx.EndFrame(); err != nil {
		t.Errorf("EndFrame after Abort: %v", err)
	}
}

func TestRetireWaitsForSubmission(t *testing.T) {
	ctx, device, queue := newTestContext(t)
	if err := ctx.Setup(testTarget, nil); err != nil {
		t.Fatal(err)
	}

	buf := resource.NewBuffer("instances", gputypes.BufferUsageStorage, make([]byte, 16))
	if _, err := ctx.Resources().SyncBuffer(buf); err != nil {
		t.Fatal(err)
	}
	queue.Stall()
	if err := ctx.Submit(); err != nil {
		t.Fatal(err)
	}

	// Growing the buffer replaces the HAL buffer the submission may still read.
	buf.SetData(make([]byte, 256))
	if _, err := ctx.Resources().SyncBuffer(buf); err != nil {
		t.Fatal(err)
	}
	if got := device.Count(haltest.DestroyBuffer); got != 0 {
		t.Fatalf("DestroyBuffer calls = %d while in flight, want 0", got)
	}
	if ctx.Retiring() != 1 {
		t.Fatalf("Retiring = %d, want 1", ctx.Retiring())
	}

	// An object released while the open session has recorded commands also
	// waits for the next submission.
	if _, err := ctx.BeginComputePass(nil); err != nil {
		t.Fatal(err)
	}
	if err := ctx.EndComputePass(); err != nil {
		t.Fatal(err)
	}
	queue.Resume()
	ctx.Resources().Release(buf)
	if got := device.Count(haltest.DestroyBuffer); got != 0 {
		t.Errorf("DestroyBuffer calls = %d before the recording is submitted, want 0", got)
	}
	if err := ctx.EndFrame(); err != nil {
		t.Fatal(err)
	}
	if got := device.Count(haltest.DestroyBuffer); got != 1 {
		t.Errorf("DestroyBuffer calls = %d after completion, want 1", got)
	}

	if err := ctx.Submit(); err != nil {
		t.Fatal(err)
	}
	if got := device.Count(haltest.DestroyBuffer); got != 2 {
		t.Errorf("DestroyBuffer calls = %d after the next submission, want 2", got)
	}
	if ctx.Retiring() != 0 {
		t.Errorf("Retiring = %d, want 0", ctx.Retiring())
	}
}
