// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package gpu

// Retirer defers the destruction of HAL objects until the GPU has finished
// the submissions that may still use them. render.Context implements it.
type Retirer interface {
	Retire(release func())
}

// retirement forwards destructions to a Retirer, or runs them at once when
// none is set.
type retirement struct {
	r Retirer
}

func (d *retirement) retire(release func()) {
	if d == nil || d.r == nil {
		release()
		return
	}
	d.r.Retire(release)
}
