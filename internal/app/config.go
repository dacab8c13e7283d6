// Package app hosts the interactive viewer.
package app

// Config controls the viewer window.
type Config struct {
	Scale    int   `yaml:"scale"`
	TPS      int   `yaml:"tps"`
	HUDWidth int   `yaml:"hud_width"`
	Seed     int64 `yaml:"-"`
}

// DefaultConfig returns the viewer defaults.
func DefaultConfig() Config {
	return Config{Scale: 6, TPS: 10, HUDWidth: 260}
}

// Normalize replaces non-positive values with defaults.
func (c *Config) Normalize() {
	d := DefaultConfig()
	if c.Scale <= 0 {
		c.Scale = d.Scale
	}
	if c.TPS <= 0 {
		c.TPS = d.TPS
	}
	if c.HUDWidth < 0 {
		c.HUDWidth = 0
	}
}
