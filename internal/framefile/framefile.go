// Package framefile loads YAML frame descriptions: a render target, graph
// resources and passes. The rgdemo command uses it to drive a render graph
// without writing Go.
package framefile

import (
	"bytes"
	"errors"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/gogpu/gputypes"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"

	"github.com/gogpu/rgraph/graph"
)

var (
	// ErrReadFailed is returned when the frame file cannot be read.
	ErrReadFailed = zerr.New("failed to read frame file")

	// ErrParseFailed is returned when the frame file is not valid YAML.
	ErrParseFailed = zerr.New("failed to parse frame file")

	// ErrUnsupportedVersion is returned for an unknown schema version.
	ErrUnsupportedVersion = zerr.New("unsupported frame file version")

	// ErrInvalidTarget is returned when the target has a zero dimension.
	ErrInvalidTarget = zerr.New("invalid target")

	// ErrUnknownKind is returned for a resource kind other than texture or buffer.
	ErrUnknownKind = zerr.New("unknown resource kind")

	// ErrUnknownFormat is returned for an unrecognized texture format name.
	ErrUnknownFormat = zerr.New("unknown texture format")

	// ErrUnknownUsage is returned for an unrecognized usage flag.
	ErrUnknownUsage = zerr.New("unknown usage flag")

	// ErrUnknownPassType is returned for a pass type other than render or compute.
	ErrUnknownPassType = zerr.New("unknown pass type")

	// ErrReservedName is returned when a resource uses the target's name.
	ErrReservedName = zerr.New("reserved resource name")
)

// Version is the frame file schema version written by this package.
const Version = "1"

// TargetName is the name passes use to refer to the frame's render target.
const TargetName = "target"

// Dim is a graph.Dim that decodes from YAML.
type Dim struct {
	graph.Dim
	set bool
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Dim) UnmarshalYAML(n *yaml.Node) error {
	dim, err := graph.ParseDim(n.Value)
	if err != nil {
		return zerr.With(err, "line", n.Line)
	}
	d.Dim, d.set = dim, true
	return nil
}

// Load reads and validates the frame file at path.
func Load(path string) (*Framefile, error) {
	// #nosec G304 -- path comes from the command line
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, ErrReadFailed.Error()), "path", path)
	}
	f, err := Parse(data)
	if err != nil {
		return nil, zerr.With(err, "path", path)
	}
	return f, nil
}

// Parse decodes and validates a frame file. Unknown fields are rejected.
func Parse(data []byte) (*Framefile, error) {
	var f Framefile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, zerr.Wrap(err, ErrParseFailed.Error())
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

// Validate checks the file and fills defaults: one camera named "main" and
// one frame.
func (f *Framefile) Validate() error {
	if f.Version != "" && f.Version != Version {
		return fail(ErrUnsupportedVersion, "version", f.Version)
	}
	if f.Target.Width == 0 || f.Target.Height == 0 {
		return fail(ErrInvalidTarget, "width", f.Target.Width, "height", f.Target.Height)
	}
	if _, err := f.TargetFormat(); err != nil {
		return err
	}
	for i := range f.Resources {
		if err := validateResource(&f.Resources[i]); err != nil {
			return zerr.With(err, "resource", f.Resources[i].Name)
		}
	}
	for _, p := range f.Passes {
		switch p.Type {
		case "", "render", "compute":
		default:
			return fail(ErrUnknownPassType, "pass", p.Name, "type", p.Type)
		}
	}
	if len(f.Cameras) == 0 {
		f.Cameras = []string{"main"}
	}
	if f.Frames <= 0 {
		f.Frames = 1
	}
	return nil
}

func validateResource(r *ResourceDTO) error {
	if r.Name == TargetName {
		return fail(ErrReservedName, "name", r.Name)
	}
	switch r.Kind {
	case "texture":
		if !r.Width.set {
			r.Width = Dim{Dim: graph.Full(), set: true}
		}
		if !r.Height.set {
			r.Height = Dim{Dim: graph.Full(), set: true}
		}
		if r.Format != "" {
			if _, err := ParseFormat(r.Format); err != nil {
				return err
			}
		}
		_, err := ParseTextureUsage(r.Usage)
		return err
	case "buffer":
		_, err := ParseBufferUsage(r.Usage)
		return err
	}
	return fail(ErrUnknownKind, "kind", r.Kind)
}

// TargetFormat returns the target's texture format. Default BGRA8Unorm.
func (f *Framefile) TargetFormat() (gputypes.TextureFormat, error) {
	if f.Target.Format == "" {
		return gputypes.TextureFormatBGRA8Unorm, nil
	}
	return ParseFormat(f.Target.Format)
}

// Declare registers every resource of f in g. The target is not declared;
// the caller imports it under TargetName.
func (f *Framefile) Declare(g *graph.Graph) error {
	for _, r := range f.Resources {
		var err error
		switch r.Kind {
		case "texture":
			var format gputypes.TextureFormat
			if r.Format != "" {
				format, _ = ParseFormat(r.Format)
			}
			usage, _ := ParseTextureUsage(r.Usage)
			_, err = g.CreateTexture(r.Name, graph.TextureDesc{
				Width:         r.Width.Dim,
				Height:        r.Height.Dim,
				Format:        format,
				Usage:         usage,
				MipLevelCount: r.MipLevels,
				SampleCount:   r.Samples,
				Label:         r.Label,
				Transient:     r.Transient,
			})
		case "buffer":
			usage, _ := ParseBufferUsage(r.Usage)
			_, err = g.CreateBuffer(r.Name, graph.BufferDesc{
				Size:      r.Size,
				Usage:     usage,
				Label:     r.Label,
				Transient: r.Transient,
			})
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// AddPasses appends every pass of f to g, resolving resource names with
// g.Lookup. build supplies the execute callback for each pass and may
// return nil.
func (f *Framefile) AddPasses(g *graph.Graph, build func(PassDTO) graph.ExecuteFunc) error {
	for _, p := range f.Passes {
		reads, err := lookupAll(g, p.Reads)
		if err != nil {
			return zerr.With(err, "pass", p.Name)
		}
		writes, err := lookupAll(g, p.Writes)
		if err != nil {
			return zerr.With(err, "pass", p.Name)
		}
		var exec graph.ExecuteFunc
		if build != nil {
			exec = build(p)
		}
		g.AddPass(graph.Pass{Name: p.Name, Reads: reads, Writes: writes, Execute: exec})
	}
	return nil
}

func lookupAll(g *graph.Graph, names []string) ([]graph.Handle, error) {
	hs := make([]graph.Handle, 0, len(names))
	for _, n := range names {
		h, err := g.Lookup(n)
		if err != nil {
			return nil, err
		}
		hs = append(hs, h)
	}
	return hs, nil
}

var formatsByName = sync.OnceValue(func() map[string]gputypes.TextureFormat {
	m := make(map[string]gputypes.TextureFormat)
	for f := gputypes.TextureFormat(1); f < 0x100; f++ {
		if name := f.String(); name != "Unknown" {
			m[strings.ToLower(name)] = f
		}
	}
	return m
})

// ParseFormat maps a format name such as "RGBA8Unorm" to its value. Names
// are case-insensitive.
func ParseFormat(name string) (gputypes.TextureFormat, error) {
	f, ok := formatsByName()[strings.ToLower(name)]
	if !ok {
		return gputypes.TextureFormatUndefined, fail(ErrUnknownFormat, "format", name)
	}
	return f, nil
}

var textureUsages = map[string]gputypes.TextureUsage{
	"copy_src":          gputypes.TextureUsageCopySrc,
	"copy_dst":          gputypes.TextureUsageCopyDst,
	"texture_binding":   gputypes.TextureUsageTextureBinding,
	"storage_binding":   gputypes.TextureUsageStorageBinding,
	"render_attachment": gputypes.TextureUsageRenderAttachment,
}

var bufferUsages = map[string]gputypes.BufferUsage{
	"map_read":  gputypes.BufferUsageMapRead,
	"map_write": gputypes.BufferUsageMapWrite,
	"copy_src":  gputypes.BufferUsageCopySrc,
	"copy_dst":  gputypes.BufferUsageCopyDst,
	"index":     gputypes.BufferUsageIndex,
	"vertex":    gputypes.BufferUsageVertex,
	"uniform":   gputypes.BufferUsageUniform,
	"storage":   gputypes.BufferUsageStorage,
	"indirect":  gputypes.BufferUsageIndirect,
}

// ParseTextureUsage ORs the named texture usage flags.
func ParseTextureUsage(names []string) (gputypes.TextureUsage, error) {
	return parseFlags(textureUsages, names)
}

// ParseBufferUsage ORs the named buffer usage flags.
func ParseBufferUsage(names []string) (gputypes.BufferUsage, error) {
	return parseFlags(bufferUsages, names)
}

func parseFlags[F ~uint32 | ~uint64](table map[string]F, names []string) (F, error) {
	var out F
	for _, n := range names {
		f, ok := table[strings.ToLower(n)]
		if !ok {
			return 0, fail(ErrUnknownUsage, "usage", n)
		}
		out |= f
	}
	return out, nil
}

// fail wraps sentinel so errors.Is still matches it, then attaches the
// key/value pairs as metadata.
func fail(sentinel error, kv ...any) error {
	err := zerr.Wrap(sentinel, "")
	for i := 0; i+1 < len(kv); i += 2 {
		err = zerr.With(err, kv[i].(string), kv[i+1])
	}
	return err
}
