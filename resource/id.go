package resource

import (
	"fmt"
	"slices"
	"sync/atomic"
)

// ID identifies a logical resource for its whole lifetime.
// IDs are process-unique and never reused, so a released ID can never alias
// a newer resource in a cache.
type ID uint64

// InvalidID is the zero ID. No resource is ever assigned it.
const InvalidID ID = 0

var lastID atomic.Uint64

// NewID returns a fresh resource ID.
func NewID() ID {
	return ID(lastID.Add(1))
}

// Kind tags the variant of a resource. Caches dispatch to a mapper by Kind.
type Kind uint8

// Resource kinds.
const (
	KindInvalid Kind = iota
	KindBuffer
	KindTexture
	KindShader
	KindPipeline
	KindBindGroup
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindBuffer:
		return "buffer"
	case KindTexture:
		return "texture"
	case KindShader:
		return "shader"
	case KindPipeline:
		return "pipeline"
	case KindBindGroup:
		return "bindgroup"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// Versioned is a CPU-owned resource whose content changes are observable
// through a monotonically non-decreasing version.
//
// Version increases if and only if content observable by the GPU changed.
type Versioned interface {
	ID() ID
	Kind() Kind
	Version() uint64
	Label() string
}

// Base carries the identity, label and version shared by all resources.
// It is embedded by the concrete resource types.
type Base struct {
	id      ID
	label   string
	version uint64
}

func newBase(label string) Base {
	return Base{id: NewID(), label: label, version: 1}
}

// ID returns the stable resource ID.
func (b *Base) ID() ID { return b.id }

// Label returns the debug label.
func (b *Base) Label() string { return b.label }

// Version returns the current content version.
func (b *Base) Version() uint64 { return b.version }

// MarkDirty bumps the version. Call it after mutating resource data in place.
func (b *Base) MarkDirty() { b.version++ }

// ref is the identity and version of a referenced resource as last observed
// by a composite resource.
type ref struct {
	id      ID
	version uint64
}

func refOf(id ID, version uint64) ref { return ref{id: id, version: version} }

// observe bumps the version when refs differ from the last observation and
// records refs as the new one. Composite versions stay monotonic no matter
// which resources they reference.
func (b *Base) observe(seen *[]ref, refs []ref) {
	if slices.Equal(*seen, refs) {
		return
	}
	*seen = append((*seen)[:0], refs...)
	b.version++
}
