package resource

import (
	"image"

	"github.com/gogpu/gputypes"
	"golang.org/x/image/draw"
)

// Texture is a CPU-side 2D image mirrored into a GPU texture and sampler.
//
// A texture has two independent dirty axes. Pixel data, size and format
// changes bump the data version. Sampler changes bump the sampler version.
// Version returns their sum, so it still increases whenever either axis
// does, while a cache can tell which axis moved.
type Texture struct {
	Base
	samplerVersion uint64

	width, height uint32
	format        gputypes.TextureFormat
	usage         gputypes.TextureUsage
	pixels        []byte
	mips          bool
	sampler       Sampler
}

// TextureOptions configures a new texture.
type TextureOptions struct {
	// Format defaults to RGBA8Unorm.
	Format gputypes.TextureFormat
	// Usage defaults to TextureBinding. CopyDst is always added by the mapper.
	Usage gputypes.TextureUsage
	// GenerateMips requests a full mip chain built from level 0.
	// Only RGBA8 formats support CPU mip generation.
	GenerateMips bool
	// Sampler defaults to DefaultSampler.
	Sampler *Sampler
}

// NewTexture creates a texture of width x height with the given pixel data.
// pixels may be nil for a texture that is only rendered to.
func NewTexture(label string, width, height uint32, pixels []byte, opts TextureOptions) *Texture {
	if opts.Format == gputypes.TextureFormatUndefined {
		opts.Format = gputypes.TextureFormatRGBA8Unorm
	}
	if opts.Usage == 0 {
		opts.Usage = gputypes.TextureUsageTextureBinding
	}
	s := DefaultSampler()
	if opts.Sampler != nil {
		s = *opts.Sampler
	}
	return &Texture{
		Base:    newBase(label),
		width:   width,
		height:  height,
		format:  opts.Format,
		usage:   opts.Usage,
		pixels:  pixels,
		mips:    opts.GenerateMips,
		sampler: s,
	}
}

// NewTextureFromImage creates an RGBA8 texture from img.
func NewTextureFromImage(label string, img image.Image, opts TextureOptions) *Texture {
	rgba := toRGBA(img)
	b := rgba.Bounds()
	opts.Format = gputypes.TextureFormatRGBA8Unorm
	return NewTexture(label, uint32(b.Dx()), uint32(b.Dy()), rgba.Pix, opts)
}

// Kind returns KindTexture.
func (t *Texture) Kind() Kind { return KindTexture }

// Version returns the combined version of both dirty axes.
func (t *Texture) Version() uint64 { return t.Base.Version() + t.samplerVersion }

// DataVersion returns the version of the pixel data, size and format.
func (t *Texture) DataVersion() uint64 { return t.Base.Version() }

// SamplerVersion returns the version of the sampler description.
func (t *Texture) SamplerVersion() uint64 { return t.samplerVersion }

// Size returns the texture dimensions.
func (t *Texture) Size() (width, height uint32) { return t.width, t.height }

// Format returns the texel format.
func (t *Texture) Format() gputypes.TextureFormat { return t.format }

// Usage returns the GPU usage flags.
func (t *Texture) Usage() gputypes.TextureUsage { return t.usage }

// Pixels returns the level 0 pixel data.
func (t *Texture) Pixels() []byte { return t.pixels }

// GenerateMips reports whether a mip chain is requested.
func (t *Texture) GenerateMips() bool { return t.mips }

// Sampler returns the sampler description.
func (t *Texture) Sampler() Sampler { return t.sampler }

// SetPixels replaces the pixel data and size. It bumps the data version.
func (t *Texture) SetPixels(width, height uint32, pixels []byte) {
	t.width, t.height = width, height
	t.pixels = pixels
	t.MarkDirty()
}

// SetImage replaces the pixel data from img, converting it to RGBA8.
func (t *Texture) SetImage(img image.Image) {
	rgba := toRGBA(img)
	b := rgba.Bounds()
	t.format = gputypes.TextureFormatRGBA8Unorm
	t.SetPixels(uint32(b.Dx()), uint32(b.Dy()), rgba.Pix)
}

// SetSampler replaces the sampler description. It bumps only the sampler
// version, and only if s differs from the current sampler.
func (t *Texture) SetSampler(s Sampler) {
	if s == t.sampler {
		return
	}
	t.sampler = s
	t.samplerVersion++
}

// MarkSamplerDirty bumps the sampler version without changing the sampler.
func (t *Texture) MarkSamplerDirty() { t.samplerVersion++ }

func toRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok && rgba.Rect.Min == (image.Point{}) && rgba.Stride == 4*rgba.Rect.Dx() {
		return rgba
	}
	b := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return dst
}
