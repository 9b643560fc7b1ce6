package gpu

import (
	"encoding/binary"

	"github.com/cespare/xxhash/v2"

	"github.com/gogpu/rgraph/resource"
)

// keyHasher feeds fixed-width values into an xxhash digest.
type keyHasher struct {
	d   *xxhash.Digest
	buf [8]byte
}

func (h *keyHasher) u64(v uint64) {
	binary.LittleEndian.PutUint64(h.buf[:], v)
	_, _ = h.d.Write(h.buf[:])
}

func (h *keyHasher) bool(v bool) {
	if v {
		h.u64(1)
	} else {
		h.u64(0)
	}
}

func (h *keyHasher) str(s string) {
	h.u64(uint64(len(s)))
	_, _ = h.d.WriteString(s)
}

// pipelineKey hashes everything that affects the HAL objects of a pipeline.
// Labels are not part of the key.
func pipelineKey(d resource.PipelineDesc, shader resource.ID, shaderGen uint64) uint64 {
	h := &keyHasher{d: xxhash.New()}
	h.u64(uint64(shader))
	h.u64(shaderGen)

	h.bool(d.Compute)
	h.str(d.VertexEntry)
	h.str(d.FragmentEntry)
	h.str(d.ComputeEntry)

	h.u64(uint64(len(d.VertexBuffers)))
	for _, vb := range d.VertexBuffers {
		h.u64(vb.ArrayStride)
		h.u64(uint64(vb.StepMode))
		h.u64(uint64(len(vb.Attributes)))
		for _, a := range vb.Attributes {
			h.u64(uint64(a.Format))
			h.u64(a.Offset)
			h.u64(uint64(a.ShaderLocation))
		}
	}

	h.u64(uint64(len(d.ColorFormats)))
	for _, f := range d.ColorFormats {
		h.u64(uint64(f))
	}
	h.bool(d.Blend != nil)
	if b := d.Blend; b != nil {
		for _, c := range [2]struct{ src, dst, op uint64 }{
			{uint64(b.Color.SrcFactor), uint64(b.Color.DstFactor), uint64(b.Color.Operation)},
			{uint64(b.Alpha.SrcFactor), uint64(b.Alpha.DstFactor), uint64(b.Alpha.Operation)},
		} {
			h.u64(c.src)
			h.u64(c.dst)
			h.u64(c.op)
		}
	}

	h.u64(uint64(d.DepthFormat))
	h.u64(uint64(d.DepthCompare))
	h.bool(d.DepthWrite)
	h.u64(uint64(d.Topology))
	h.u64(uint64(d.CullMode))
	h.u64(uint64(d.SampleCount))

	h.u64(uint64(len(d.Groups)))
	for _, group := range d.Groups {
		h.u64(uint64(len(group)))
		for _, e := range group {
			h.u64(uint64(e.Binding))
			h.u64(uint64(e.Visibility))
			switch {
			case e.Buffer != nil:
				h.u64(1)
				h.u64(uint64(e.Buffer.Type))
				h.bool(e.Buffer.HasDynamicOffset)
				h.u64(e.Buffer.MinBindingSize)
			case e.Sampler != nil:
				h.u64(2)
				h.u64(uint64(e.Sampler.Type))
			case e.Texture != nil:
				h.u64(3)
				h.u64(uint64(e.Texture.SampleType))
				h.u64(uint64(e.Texture.ViewDimension))
				h.bool(e.Texture.Multisampled)
			case e.StorageTexture != nil:
				h.u64(4)
				h.u64(uint64(e.StorageTexture.Access))
				h.u64(uint64(e.StorageTexture.Format))
				h.u64(uint64(e.StorageTexture.ViewDimension))
			default:
				h.u64(0)
			}
		}
	}
	return h.d.Sum64()
}
