package canopy

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds stage and texture settings loaded from YAML.
type Config struct {
	Width      int    `yaml:"width"`
	Height     int    `yaml:"height"`
	Background string `yaml:"background"` // "#rrggbb[aa]" or a color name
	PixelAlign bool   `yaml:"pixel_align"`
	Filter     string `yaml:"filter"` // "nearest" or "linear"
	Mipmaps    bool   `yaml:"mipmaps"`
	Debug      bool   `yaml:"debug"`

	Assets AssetsConfig `yaml:"assets"`
}

// AssetsConfig locates atlas images on disk.
type AssetsConfig struct {
	Dir   string `yaml:"dir"`
	Watch bool   `yaml:"watch"` // reload atlases when files change
}

// DefaultConfig returns the settings used when no file is given.
func DefaultConfig() Config {
	return Config{
		Width:      640,
		Height:     480,
		Background: "#000000",
		PixelAlign: true,
		Filter:     "nearest",
		Mipmaps:    true,
		Assets:     AssetsConfig{Dir: "assets"},
	}
}

// ParseConfig decodes YAML over DefaultConfig. Unknown keys are rejected.
func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("canopy: parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadConfig reads and parses the YAML file at path.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("canopy: load config %s: %w", path, err)
	}
	cfg, err := ParseConfig(data)
	if err != nil {
		return Config{}, fmt.Errorf("%w (%s)", err, path)
	}
	Logger().Info("canopy: config loaded", "path", path, "width", cfg.Width, "height", cfg.Height)
	return cfg, nil
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("canopy: invalid viewport %dx%d", c.Width, c.Height)
	}
	if _, err := c.BackgroundColor(); err != nil {
		return err
	}
	if _, err := c.TextureFilter(); err != nil {
		return err
	}
	return nil
}

// BackgroundColor parses Background. An empty value is opaque black.
func (c Config) BackgroundColor() (Color, error) {
	if c.Background == "" {
		return ColorBlack, nil
	}
	return ParseColor(c.Background)
}

// TextureFilter parses Filter. An empty value is FilterNearest.
func (c Config) TextureFilter() (Filter, error) {
	switch c.Filter {
	case "", "nearest":
		return FilterNearest, nil
	case "linear":
		return FilterLinear, nil
	}
	return 0, fmt.Errorf("canopy: unknown texture filter %q", c.Filter)
}

// TextureOptions returns the upload options described by c.
func (c Config) TextureOptions() TextureOptions {
	f, _ := c.TextureFilter()
	return TextureOptions{Filter: f, Mipmaps: c.Mipmaps}
}
