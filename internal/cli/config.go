package cli

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/boxlens/pkg/pipeline"
	"github.com/matzehuels/boxlens/pkg/render/overlay"
	"github.com/matzehuels/boxlens/pkg/session"
)

// Config mirrors config.toml. Flags override it; it overrides built-in
// defaults.
type Config struct {
	Render RenderConfig `toml:"render"`
	Cache  CacheConfig  `toml:"cache"`
	Server ServerConfig `toml:"server"`
}

// RenderConfig holds the default overlay options.
type RenderConfig struct {
	ShowLabels    bool    `toml:"show_labels"`
	ShowSections  bool    `toml:"show_sections"`
	ColorByType   bool    `toml:"color_by_type"`
	LegendOnImage bool    `toml:"legend_on_image"`
	FontSize      float64 `toml:"font_size"`
}

// CacheConfig selects and tunes the render cache.
type CacheConfig struct {
	Disabled      bool     `toml:"disabled"`
	RedisAddr     string   `toml:"redis_addr"`
	RedisPassword string   `toml:"redis_password"`
	RedisDB       int      `toml:"redis_db"`
	TTL           Duration `toml:"ttl"`
	// Namespace separates render keys of deployments sharing one cache.
	Namespace string `toml:"namespace"`
}

// ServerConfig configures "boxlens serve".
type ServerConfig struct {
	Addr       string   `toml:"addr"`
	SessionTTL Duration `toml:"session_ttl"`
	MaxUpload  int64    `toml:"max_upload"`
}

// Duration is a time.Duration written as a string ("24h", "90m").
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(strings.TrimSpace(string(text)))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Defaults for "boxlens serve".
const (
	defaultAddr      = ":8080"
	defaultMaxUpload = 32 << 20
)

// DefaultConfig returns the built-in configuration.
func DefaultConfig() Config {
	return Config{
		Render: RenderConfig{
			ShowLabels:   true,
			ShowSections: true,
			ColorByType:  true,
			FontSize:     overlay.DefaultFontSize,
		},
		Server: ServerConfig{
			Addr:       defaultAddr,
			SessionTTL: Duration{session.DefaultTTL},
			MaxUpload:  defaultMaxUpload,
		},
	}
}

// LoadConfig decodes the TOML file at path over the defaults. found reports
// whether the file existed; a missing file is only an error when required.
func LoadConfig(path string, required bool) (cfg Config, found bool, err error) {
	cfg = DefaultConfig()
	if _, statErr := os.Stat(path); statErr != nil {
		if os.IsNotExist(statErr) && !required {
			return cfg, false, nil
		}
		return cfg, false, fmt.Errorf("config %s: %w", path, statErr)
	}

	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return DefaultConfig(), true, fmt.Errorf("config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return DefaultConfig(), true, fmt.Errorf("config %s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	if cfg.Render.FontSize < 0 {
		return DefaultConfig(), true, fmt.Errorf("config %s: render.font_size must not be negative", path)
	}
	return cfg, true, nil
}

// RenderOptions converts the render section into pipeline options.
func (c Config) RenderOptions() pipeline.Options {
	return pipeline.Options{
		ShowLabels:    c.Render.ShowLabels,
		ShowSections:  c.Render.ShowSections,
		ColorByType:   c.Render.ColorByType,
		LegendOnImage: c.Render.LegendOnImage,
		FontSize:      c.Render.FontSize,
	}
}
