package camera

import "sort"

// Preset names for common configurations
const (
	PresetDefault = "default"
	PresetVGA     = "vga"
	Preset720p    = "720p"
	Preset1080p   = "1080p"
)

// Presets returns all available preset configurations.
func Presets() map[string]Config {
	return map[string]Config{
		PresetDefault: DefaultConfig(),
		PresetVGA:     VGAConfig(),
		Preset720p:    HD720Config(),
		Preset1080p:   HD1080Config(),
	}
}

// PresetNames returns the sorted list of available preset names.
func PresetNames() []string {
	names := make([]string, 0, 4)
	for name := range Presets() {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// GetPreset returns a preset config by name, or nil if not found.
func GetPreset(name string) *Config {
	presets := Presets()
	if cfg, ok := presets[name]; ok {
		return &cfg
	}
	return nil
}

// ApplyPreset copies the resolution and framerate of a preset onto c,
// keeping the device selection. Returns false for unknown presets.
func (c *Config) ApplyPreset(name string) bool {
	p := GetPreset(name)
	if p == nil {
		return false
	}
	c.Width = p.Width
	c.Height = p.Height
	c.Framerate = p.Framerate
	return true
}

// VGAConfig returns 640x480, the safe mode every webcam supports.
func VGAConfig() Config {
	return DefaultConfig()
}

// HD720Config returns 720p HD configuration.
// Good balance of quality and inference speed.
func HD720Config() Config {
	cfg := DefaultConfig()
	cfg.Width = 1280
	cfg.Height = 720
	return cfg
}

// HD1080Config returns 1080p Full HD configuration.
// Slower inference; most webcams drop to 15-30 FPS here.
func HD1080Config() Config {
	cfg := DefaultConfig()
	cfg.Width = 1920
	cfg.Height = 1080
	cfg.Framerate = 15
	return cfg
}
