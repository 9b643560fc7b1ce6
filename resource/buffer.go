package resource

import "github.com/gogpu/gputypes"

// Buffer is a CPU-side byte buffer mirrored into a GPU buffer.
type Buffer struct {
	Base
	data  []byte
	usage gputypes.BufferUsage
}

// NewBuffer creates a buffer resource holding data.
// The buffer keeps a reference to data; callers that mutate it afterwards
// must call MarkDirty.
func NewBuffer(label string, usage gputypes.BufferUsage, data []byte) *Buffer {
	return &Buffer{Base: newBase(label), data: data, usage: usage}
}

// Kind returns KindBuffer.
func (b *Buffer) Kind() Kind { return KindBuffer }

// Data returns the buffer contents.
func (b *Buffer) Data() []byte { return b.data }

// Size returns the content size in bytes.
func (b *Buffer) Size() uint64 { return uint64(len(b.data)) }

// Usage returns the GPU usage flags.
func (b *Buffer) Usage() gputypes.BufferUsage { return b.usage }

// SetData replaces the buffer contents and bumps the version.
func (b *Buffer) SetData(data []byte) {
	b.data = data
	b.MarkDirty()
}

// Write copies p into the buffer at offset, growing it if needed,
// and bumps the version.
func (b *Buffer) Write(offset int, p []byte) {
	if end := offset + len(p); end > len(b.data) {
		grown := make([]byte, end)
		copy(grown, b.data)
		b.data = grown
	}
	copy(b.data[offset:], p)
	b.MarkDirty()
}

// SetUsage changes the usage flags. The version is bumped only if the flags
// differ.
func (b *Buffer) SetUsage(usage gputypes.BufferUsage) {
	if usage == b.usage {
		return
	}
	b.usage = usage
	b.MarkDirty()
}
