package framefile

// Framefile is the structure of a frame description file.
type Framefile struct {
	Version   string         `yaml:"version"`
	Label     string         `yaml:"label"`
	Target    TargetDTO      `yaml:"target"`
	Frames    int            `yaml:"frames"`
	Resources []ResourceDTO  `yaml:"resources"`
	Passes    []PassDTO      `yaml:"passes"`
	Cameras   []string       `yaml:"cameras"`
}

// TargetDTO describes the render target the frame is sized against.
type TargetDTO struct {
	Width  uint32 `yaml:"width"`
	Height uint32 `yaml:"height"`
	Format string `yaml:"format"`
}

// ResourceDTO declares one graph resource. Width and height accept "full",
// "<N>%" or an absolute texel count.
type ResourceDTO struct {
	Name      string   `yaml:"name"`
	Kind      string   `yaml:"kind"`
	Width     Dim      `yaml:"width"`
	Height    Dim      `yaml:"height"`
	Format    string   `yaml:"format"`
	Size      uint64   `yaml:"size"`
	Usage     []string `yaml:"usage"`
	Label     string   `yaml:"label"`
	Transient bool     `yaml:"transient"`
	MipLevels uint32   `yaml:"mipLevels"`
	Samples   uint32   `yaml:"samples"`
}

// PassDTO declares one pass. Type is "render", "compute" or empty for a
// pass that records nothing.
type PassDTO struct {
	Name   string   `yaml:"name"`
	Type   string   `yaml:"type"`
	Reads  []string `yaml:"reads"`
	Writes []string `yaml:"writes"`
}
