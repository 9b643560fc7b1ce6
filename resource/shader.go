package resource

// Shader is a shader module source: WGSL text or precompiled SPIR-V words.
// Exactly one of the two is set.
type Shader struct {
	Base
	wgsl  string
	spirv []uint32
}

// NewWGSLShader creates a shader from WGSL source.
func NewWGSLShader(label, source string) *Shader {
	return &Shader{Base: newBase(label), wgsl: source}
}

// NewSPIRVShader creates a shader from SPIR-V words.
func NewSPIRVShader(label string, code []uint32) *Shader {
	return &Shader{Base: newBase(label), spirv: code}
}

// Kind returns KindShader.
func (s *Shader) Kind() Kind { return KindShader }

// WGSL returns the WGSL source, or "" for a SPIR-V shader.
func (s *Shader) WGSL() string { return s.wgsl }

// SPIRV returns the SPIR-V words, or nil for a WGSL shader.
func (s *Shader) SPIRV() []uint32 { return s.spirv }

// SetWGSL replaces the source with WGSL text and bumps the version.
func (s *Shader) SetWGSL(source string) {
	s.wgsl, s.spirv = source, nil
	s.MarkDirty()
}

// SetSPIRV replaces the source with SPIR-V words and bumps the version.
func (s *Shader) SetSPIRV(code []uint32) {
	s.wgsl, s.spirv = "", code
	s.MarkDirty()
}
