// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package gpu

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/rgraph/resource"
)

// copyAlignment is the required alignment of buffer sizes and write lengths.
const copyAlignment = 4

// Buffer is the GPU materialization of a resource.Buffer.
type Buffer struct {
	Raw   hal.Buffer
	Size  uint64
	Usage gputypes.BufferUsage

	gen uint64
}

// Generation counts how many HAL buffers have backed this handle.
func (b *Buffer) Generation() uint64 { return b.gen }

// BufferMapper creates GPU buffers and keeps them in sync with their
// resource.Buffer.
//
// Update writes in place when the new data fits the allocation and the usage
// is unchanged. Otherwise it allocates a new HAL buffer and destroys the old
// one; the *Buffer handle stays the same.
type BufferMapper struct {
	device hal.Device
	queue  hal.Queue
	retire *retirement
}

// NewBufferMapper creates a buffer mapper.
func NewBufferMapper(device hal.Device, queue hal.Queue) *BufferMapper {
	return &BufferMapper{device: device, queue: queue}
}

// Create allocates a GPU buffer for r and uploads its data.
func (m *BufferMapper) Create(r *resource.Buffer) (*Buffer, error) {
	b := &Buffer{}
	if err := m.allocate(r, b); err != nil {
		return nil, err
	}
	return b, nil
}

// Update brings b in line with r.
func (m *BufferMapper) Update(r *resource.Buffer, b *Buffer) (*Buffer, error) {
	usage := r.Usage() | gputypes.BufferUsageCopyDst
	if r.Size() <= b.Size && usage == b.Usage {
		if err := m.write(b.Raw, r.Data()); err != nil {
			return b, err
		}
		return b, nil
	}

	old := b.Raw
	if err := m.allocate(r, b); err != nil {
		return b, err
	}
	m.retire.retire(func() { m.device.DestroyBuffer(old) })
	return b, nil
}

// Dispose destroys the HAL buffer.
func (m *BufferMapper) Dispose(b *Buffer) {
	if b == nil || b.Raw == nil {
		return
	}
	raw := b.Raw
	b.Raw = nil
	m.retire.retire(func() { m.device.DestroyBuffer(raw) })
}

// allocate creates a new HAL buffer for r and stores it in b only on success.
func (m *BufferMapper) allocate(r *resource.Buffer, b *Buffer) error {
	size := alignUp(r.Size(), copyAlignment)
	if size == 0 {
		size = copyAlignment
	}
	usage := r.Usage() | gputypes.BufferUsageCopyDst

	raw, err := m.device.CreateBuffer(&hal.BufferDescriptor{
		Label: r.Label(),
		Size:  size,
		Usage: usage,
	})
	if err != nil {
		return fmt.Errorf("create buffer: %w", err)
	}
	if err := m.write(raw, r.Data()); err != nil {
		m.device.DestroyBuffer(raw)
		return err
	}

	b.Raw, b.Size, b.Usage = raw, size, usage
	b.gen++
	return nil
}

func (m *BufferMapper) write(raw hal.Buffer, data []byte) error {
	if len(data) == 0 {
		return nil
	}
	if rem := len(data) % copyAlignment; rem != 0 {
		padded := make([]byte, len(data)+copyAlignment-rem)
		copy(padded, data)
		data = padded
	}
	if err := m.queue.WriteBuffer(raw, 0, data); err != nil {
		return fmt.Errorf("write buffer: %w", err)
	}
	return nil
}

func alignUp(n, align uint64) uint64 {
	return (n + align - 1) &^ (align - 1)
}
