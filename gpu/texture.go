// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package gpu

import (
	"fmt"
	"image"
	"math/bits"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	"golang.org/x/image/draw"

	"github.com/gogpu/rgraph"
	"github.com/gogpu/rgraph/resource"
)

// Texture is the GPU materialization of a resource.Texture: the texture, a
// view over all its mip levels, and the sampler.
type Texture struct {
	Raw     hal.Texture
	View    hal.TextureView
	Sampler hal.Sampler

	Width, Height uint32
	Format        gputypes.TextureFormat
	MipLevels     uint32

	dataVersion    uint64
	samplerVersion uint64
	gen            uint64
	samplerGen     uint64
}

// Generation counts how many HAL textures have backed this handle.
func (t *Texture) Generation() uint64 { return t.gen }

// SamplerGeneration counts how many HAL samplers have backed this handle.
func (t *Texture) SamplerGeneration() uint64 { return t.samplerGen }

// TextureMapper creates GPU textures and samplers and keeps them in sync
// with their resource.Texture.
//
// The two dirty axes of a texture are handled separately. A data change
// re-uploads pixels and regenerates mips; a sampler change only rebuilds the
// sampler. A size, format or mip-count change recreates the texture.
type TextureMapper struct {
	device hal.Device
	queue  hal.Queue
	retire *retirement
}

// NewTextureMapper creates a texture mapper.
func NewTextureMapper(device hal.Device, queue hal.Queue) *TextureMapper {
	return &TextureMapper{device: device, queue: queue}
}

// Create allocates the texture, view and sampler for r and uploads its pixels.
func (m *TextureMapper) Create(r *resource.Texture) (*Texture, error) {
	t := &Texture{}
	if err := m.allocate(r, t); err != nil {
		return nil, err
	}
	if err := m.rebuildSampler(r, t); err != nil {
		m.destroyTexture(t)
		return nil, err
	}
	return t, nil
}

// Update brings t in line with r, touching only the axes that changed.
func (m *TextureMapper) Update(r *resource.Texture, t *Texture) (*Texture, error) {
	if r.DataVersion() != t.dataVersion {
		w, h := r.Size()
		if w != t.Width || h != t.Height || r.Format() != t.Format || mipLevelsFor(r) != t.MipLevels {
			old := *t
			if err := m.allocate(r, t); err != nil {
				return t, err
			}
			m.retire.retire(func() {
				m.device.DestroyTextureView(old.View)
				m.device.DestroyTexture(old.Raw)
			})
			if old.MipLevels != t.MipLevels {
				// LodMaxClamp follows the level count.
				if err := m.rebuildSampler(r, t); err != nil {
					return t, err
				}
			}
		} else {
			if err := m.upload(r, t); err != nil {
				return t, err
			}
			t.dataVersion = r.DataVersion()
		}
	}
	if r.SamplerVersion() != t.samplerVersion {
		if err := m.rebuildSampler(r, t); err != nil {
			return t, err
		}
	}
	return t, nil
}

// Dispose destroys the sampler, view and texture.
func (m *TextureMapper) Dispose(t *Texture) {
	if t == nil {
		return
	}
	dead := *t
	t.Sampler, t.View, t.Raw = nil, nil, nil
	m.retire.retire(func() {
		if dead.Sampler != nil {
			m.device.DestroySampler(dead.Sampler)
		}
		m.destroyTexture(&dead)
	})
}

func (m *TextureMapper) destroyTexture(t *Texture) {
	if t.View != nil {
		m.device.DestroyTextureView(t.View)
		t.View = nil
	}
	if t.Raw != nil {
		m.device.DestroyTexture(t.Raw)
		t.Raw = nil
	}
}

// allocate creates the texture and view for r, uploads pixels, and stores
// the result in t only on success.
func (m *TextureMapper) allocate(r *resource.Texture, t *Texture) error {
	w, h := r.Size()
	if w == 0 || h == 0 {
		return fmt.Errorf("texture %q: %w", r.Label(), ErrEmptyTexture)
	}
	levels := mipLevelsFor(r)

	raw, err := m.device.CreateTexture(&hal.TextureDescriptor{
		Label:         r.Label(),
		Size:          hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
		MipLevelCount: levels,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        r.Format(),
		Usage:         r.Usage() | gputypes.TextureUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("create texture: %w", err)
	}
	view, err := m.device.CreateTextureView(raw, &hal.TextureViewDescriptor{
		Label:         r.Label() + "_view",
		Format:        r.Format(),
		Dimension:     gputypes.TextureViewDimension2D,
		Aspect:        gputypes.TextureAspectAll,
		MipLevelCount: levels,
	})
	if err != nil {
		m.device.DestroyTexture(raw)
		return fmt.Errorf("create texture view: %w", err)
	}

	next := Texture{Raw: raw, View: view, Width: w, Height: h, Format: r.Format(), MipLevels: levels}
	if err := m.upload(r, &next); err != nil {
		m.device.DestroyTextureView(view)
		m.device.DestroyTexture(raw)
		return err
	}

	t.Raw, t.View = raw, view
	t.Width, t.Height, t.Format, t.MipLevels = w, h, r.Format(), levels
	t.dataVersion = r.DataVersion()
	t.gen++
	return nil
}

// upload writes level 0 and, if requested, the generated mip chain.
func (m *TextureMapper) upload(r *resource.Texture, t *Texture) error {
	pix := r.Pixels()
	if len(pix) == 0 {
		return nil
	}
	w, h := r.Size()
	texels := int(w) * int(h)
	if len(pix)%texels != 0 {
		return fmt.Errorf("texture %q: %d bytes for %dx%d: %w", r.Label(), len(pix), w, h, ErrPixelSize)
	}
	bpp := uint32(len(pix) / texels)

	levels := [][]byte{pix}
	if t.MipLevels > 1 {
		levels = mipChain(pix, int(w), int(h), int(t.MipLevels))
	}
	for level, data := range levels {
		lw, lh := mipExtent(w, level), mipExtent(h, level)
		err := m.queue.WriteTexture(
			&hal.ImageCopyTexture{Texture: t.Raw, MipLevel: uint32(level), Aspect: gputypes.TextureAspectAll},
			data,
			&hal.ImageDataLayout{BytesPerRow: lw * bpp, RowsPerImage: lh},
			&hal.Extent3D{Width: lw, Height: lh, DepthOrArrayLayers: 1},
		)
		if err != nil {
			return fmt.Errorf("write texture level %d: %w", level, err)
		}
	}
	return nil
}

func (m *TextureMapper) rebuildSampler(r *resource.Texture, t *Texture) error {
	s := r.Sampler()
	sampler, err := m.device.CreateSampler(&hal.SamplerDescriptor{
		Label:        r.Label() + "_sampler",
		AddressModeU: s.AddressU,
		AddressModeV: s.AddressV,
		AddressModeW: s.AddressW,
		MagFilter:    s.MagFilter,
		MinFilter:    s.MinFilter,
		MipmapFilter: s.MipmapFilter,
		LodMaxClamp:  float32(t.MipLevels),
		Compare:      s.Compare,
		Anisotropy:   max(s.Anisotropy, 1),
	})
	if err != nil {
		return fmt.Errorf("create sampler: %w", err)
	}
	if old := t.Sampler; old != nil {
		m.retire.retire(func() { m.device.DestroySampler(old) })
	}
	t.Sampler = sampler
	t.samplerVersion = r.SamplerVersion()
	t.samplerGen++
	return nil
}

// mipLevelsFor returns the mip level count for r. CPU mip generation only
// supports 8-bit four-channel formats; other formats get a single level.
func mipLevelsFor(r *resource.Texture) uint32 {
	if !r.GenerateMips() {
		return 1
	}
	if !mipCapable(r.Format()) {
		rgraph.Logger().Warn("gpu: mip generation skipped", "texture", r.Label(), "format", r.Format().String())
		return 1
	}
	w, h := r.Size()
	return uint32(bits.Len32(max(w, h, 1)))
}

func mipCapable(f gputypes.TextureFormat) bool {
	switch f {
	case gputypes.TextureFormatRGBA8Unorm, gputypes.TextureFormatRGBA8UnormSrgb,
		gputypes.TextureFormatBGRA8Unorm, gputypes.TextureFormatBGRA8UnormSrgb:
		return true
	}
	return false
}

func mipExtent(size uint32, level int) uint32 {
	return max(size>>level, 1)
}

// mipChain builds levels successive half-size images from an 8-bit
// four-channel level 0, using bilinear filtering. Channel order does not
// matter for the filter, so BGRA data is handled like RGBA.
func mipChain(pix []byte, w, h, levels int) [][]byte {
	out := make([][]byte, 0, levels)
	out = append(out, pix)
	src := &image.RGBA{Pix: pix, Stride: 4 * w, Rect: image.Rect(0, 0, w, h)}
	for l := 1; l < levels; l++ {
		lw, lh := max(w>>l, 1), max(h>>l, 1)
		dst := image.NewRGBA(image.Rect(0, 0, lw, lh))
		draw.BiLinear.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
		out = append(out, dst.Pix)
		src = dst
	}
	return out
}
