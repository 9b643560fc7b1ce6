// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import "errors"

var (
	// ErrNotInitialized is returned by frame accessors before Setup.
	ErrNotInitialized = errors.New("render: context not set up for this frame")

	// ErrAlreadySetup is returned by Setup when the frame is already set up.
	ErrAlreadySetup = errors.New("render: frame already set up")

	// ErrNoActivePass is returned when a pass encoder is requested or ended
	// outside its Begin/End bracket.
	ErrNoActivePass = errors.New("render: no active pass")

	// ErrPassActive is returned when starting a pass, submitting or ending the
	// frame while a pass is still open.
	ErrPassActive = errors.New("render: a pass is already active")

	// ErrContextDisposed is returned by any operation after Dispose.
	ErrContextDisposed = errors.New("render: context disposed")

	// ErrNilDevice is returned when a context is created without a device or queue.
	ErrNilDevice = errors.New("render: nil device or queue")

	// ErrUnsupportedProvider is returned when a gpucontext.DeviceProvider does
	// not hand out HAL objects.
	ErrUnsupportedProvider = errors.New("render: provider does not expose a hal device")
)
