package graph

import (
	"math"
	"strconv"
	"strings"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// Handle identifies a resource declared in a Graph. Handles are assigned
// sequentially starting at 1 and stay valid for the graph's lifetime.
type Handle uint32

// InvalidHandle is the zero handle; it never names a resource.
const InvalidHandle Handle = 0

// ResourceType distinguishes texture and buffer resources.
type ResourceType uint8

const (
	TypeTexture ResourceType = iota + 1
	TypeBuffer
)

func (t ResourceType) String() string {
	switch t {
	case TypeTexture:
		return "texture"
	case TypeBuffer:
		return "buffer"
	}
	return "ResourceType(" + strconv.Itoa(int(t)) + ")"
}

type dimMode uint8

const (
	dimAbs dimMode = iota
	dimPercent
)

// Dim is one texture dimension: an absolute size in texels, or a percentage
// of the render target resolved at Execute time.
type Dim struct {
	mode  dimMode
	value uint32
}

// Abs returns an absolute dimension of n texels.
func Abs(n uint32) Dim { return Dim{mode: dimAbs, value: n} }

// MaxPercent is the largest relative size a Dim accepts.
const MaxPercent = 1000

// Percent returns a dimension of p percent of the render target. Values
// above MaxPercent fail validation.
func Percent(p uint32) Dim { return Dim{mode: dimPercent, value: p} }

// Full returns a dimension equal to the render target.
func Full() Dim { return Percent(100) }

// Relative reports whether d depends on the render target size.
func (d Dim) Relative() bool { return d.mode == dimPercent }

// Resolve returns the size of d against a target dimension. Relative sizes
// round down and never resolve below 1.
func (d Dim) Resolve(target uint32) uint32 {
	if d.mode == dimAbs {
		return d.value
	}
	v := min(uint64(target)*uint64(d.value)/100, math.MaxUint32)
	return max(uint32(v), 1)
}

func (d Dim) valid() bool {
	return d.value > 0 && (d.mode != dimPercent || d.value <= MaxPercent)
}

func (d Dim) String() string {
	switch {
	case d.mode == dimPercent && d.value == 100:
		return "full"
	case d.mode == dimPercent:
		return strconv.FormatUint(uint64(d.value), 10) + "%"
	}
	return strconv.FormatUint(uint64(d.value), 10)
}

// ParseDim parses "full", a percentage such as "50%", or an absolute texel
// count such as "512".
func ParseDim(s string) (Dim, error) {
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, "full") {
		return Full(), nil
	}
	mk := Abs
	if rest, ok := strings.CutSuffix(s, "%"); ok {
		mk, s = Percent, strings.TrimSpace(rest)
	}
	n, err := strconv.ParseUint(s, 10, 32)
	if err != nil || n == 0 {
		return Dim{}, withMeta(ErrInvalidSize, "parse dimension", "value", s)
	}
	d := mk(uint32(n))
	if !d.valid() {
		return Dim{}, withMeta(ErrInvalidSize, "parse dimension", "value", s, "max_percent", MaxPercent)
	}
	return d, nil
}

// TextureDesc describes a graph-owned texture.
type TextureDesc struct {
	Width, Height Dim

	// DepthOrArrayLayers defaults to 1.
	DepthOrArrayLayers uint32
	Format             gputypes.TextureFormat
	Usage              gputypes.TextureUsage

	// MipLevelCount and SampleCount default to 1.
	MipLevelCount uint32
	SampleCount   uint32

	Label string

	// Transient textures exist only for the duration of one Execute.
	Transient bool
}

// BufferDesc describes a graph-owned buffer.
type BufferDesc struct {
	Size      uint64
	Usage     gputypes.BufferUsage
	Label     string
	Transient bool
}

// Imported describes an externally owned texture, typically the frame's
// render target. The graph never creates or destroys imported objects.
type Imported struct {
	Texture       hal.Texture
	View          hal.TextureView
	Width, Height uint32
	Format        gputypes.TextureFormat
}

// Physical is the materialized GPU object behind a Handle.
type Physical struct {
	Type ResourceType

	Texture hal.Texture
	View    hal.TextureView
	Width   uint32
	Height  uint32
	Format  gputypes.TextureFormat

	Buffer hal.Buffer
	Size   uint64

	Imported bool
}

// Resolved maps the handles a pass declared to their physical resources.
type Resolved map[Handle]*Physical

// View returns the texture view for h, or nil if h is not a resolved texture.
func (r Resolved) View(h Handle) hal.TextureView {
	if p := r[h]; p != nil {
		return p.View
	}
	return nil
}

// Texture returns the texture for h, or nil if h is not a resolved texture.
func (r Resolved) Texture(h Handle) hal.Texture {
	if p := r[h]; p != nil {
		return p.Texture
	}
	return nil
}

// Buffer returns the buffer for h, or nil if h is not a resolved buffer.
func (r Resolved) Buffer(h Handle) hal.Buffer {
	if p := r[h]; p != nil {
		return p.Buffer
	}
	return nil
}
