package resource

import "github.com/gogpu/gputypes"

// Sampler describes how a texture is filtered and addressed.
// It is a value type; two equal Samplers produce equivalent GPU samplers.
type Sampler struct {
	AddressU, AddressV, AddressW gputypes.AddressMode
	MagFilter, MinFilter         gputypes.FilterMode
	MipmapFilter                 gputypes.FilterMode
	Compare                      gputypes.CompareFunction
	Anisotropy                   uint16
}

// DefaultSampler returns a linear, clamp-to-edge sampler.
func DefaultSampler() Sampler {
	return Sampler{
		AddressU:     gputypes.AddressModeClampToEdge,
		AddressV:     gputypes.AddressModeClampToEdge,
		AddressW:     gputypes.AddressModeClampToEdge,
		MagFilter:    gputypes.FilterModeLinear,
		MinFilter:    gputypes.FilterModeLinear,
		MipmapFilter: gputypes.FilterModeLinear,
		Compare:      gputypes.CompareFunctionUndefined,
		Anisotropy:   1,
	}
}
