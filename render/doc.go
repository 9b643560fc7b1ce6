// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package render provides per-frame orchestration on top of the render graph
// and the GPU resource cache.
//
// # Key Principle
//
// render RECEIVES a GPU device from the host application, it does NOT create
// its own. A Context is built either from a hal.Device and hal.Queue or from a
// gpucontext.DeviceProvider.
//
// # Core Types
//
//   - Context: owns the command-recording session, the active render or
//     compute pass scope, and the gpu.ResourceCache. It implements graph.Env.
//   - Pipeline: runs scene update hooks and one graph execution per camera.
//   - Scene, Object, Camera: collaborator interfaces supplied by the host.
//
// # Frame Cycle
//
//	ctx.Setup(render.Target{View: view, Format: format, Width: w, Height: h}, scene)
//	err := pipeline.Render(ctx, cameras)
//	ctx.EndFrame()
//
// Submit flushes the recorded commands and opens a fresh session at once, so
// one logical frame may be split into several submissions (one per camera in
// Pipeline.Render).
//
// Replaced or released GPU objects are not destroyed while a submission may
// still use them. Context.Retire holds them until the queue reports the
// relevant submission complete.
//
// # Thread Safety
//
// Context and Pipeline are NOT thread-safe. Use one of each per rendering
// goroutine.
package render
