package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config holds all configuration options for epubfix.
type Config struct {
	// Fixer selection and per-strategy tuning
	Fixers FixersConfig `koanf:"fixers"`

	// Language defaults for documents with no declaration
	Language LanguageConfig `koanf:"language"`

	// Contrast repair target
	Contrast ContrastConfig `koanf:"contrast"`

	// Image description inference service
	Describe DescribeConfig `koanf:"describe"`

	// Description cache settings
	Cache CacheConfig `koanf:"cache"`

	// Output settings
	Output OutputConfig `koanf:"output"`
}

// FixersConfig controls which repair strategies run.
type FixersConfig struct {
	Disabled []string `koanf:"disabled"`
}

// LanguageConfig supplies the fallback language code.
type LanguageConfig struct {
	Default string `koanf:"default"`
}

// ContrastConfig tunes the color contrast repair.
type ContrastConfig struct {
	MinRatio float64 `koanf:"min_ratio"`
}

// DescribeConfig points at the image description inference service.
type DescribeConfig struct {
	Enabled        bool   `koanf:"enabled"`
	Endpoint       string `koanf:"endpoint"`
	TimeoutSeconds int    `koanf:"timeout_seconds"`
}

// CacheConfig controls description caching behavior.
type CacheConfig struct {
	Enabled bool   `koanf:"enabled"`
	Dir     string `koanf:"dir"`
	TTL     int    `koanf:"ttl"` // TTL in hours
}

// OutputConfig controls output formatting.
type OutputConfig struct {
	Format  string `koanf:"format"` // text, json, markdown, yaml
	Color   bool   `koanf:"color"`
	Verbose bool   `koanf:"verbose"`
}

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Fixers: FixersConfig{
			Disabled: nil,
		},
		Language: LanguageConfig{
			Default: "en",
		},
		Contrast: ContrastConfig{
			MinRatio: 4.5,
		},
		Describe: DescribeConfig{
			Enabled:        false,
			Endpoint:       "http://localhost:8100/describe",
			TimeoutSeconds: 60,
		},
		Cache: CacheConfig{
			Enabled: true,
			Dir:     ".epubfix/cache",
			TTL:     24 * 30,
		},
		Output: OutputConfig{
			Format:  "text",
			Color:   true,
			Verbose: false,
		},
	}
}

// Load loads configuration from a file.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	cfg := DefaultConfig()

	// Determine parser based on extension
	var parser koanf.Parser
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".toml":
		parser = toml.Parser()
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		parser = toml.Parser()
	}

	// Load the config file
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}

	// Unmarshal into config struct
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadOrDefault tries to load config from standard locations or returns defaults.
func LoadOrDefault() *Config {
	configNames := []string{
		"epubfix.toml",
		"epubfix.yaml",
		"epubfix.yml",
		"epubfix.json",
		".epubfix.toml",
		".epubfix.yaml",
		".epubfix.yml",
		".epubfix.json",
	}

	searchDirs := []string{".", ".epubfix"}

	for _, dir := range searchDirs {
		for _, name := range configNames {
			path := filepath.Join(dir, name)
			if _, err := os.Stat(path); err == nil {
				cfg, err := Load(path)
				if err == nil {
					return cfg
				}
			}
		}
	}

	return DefaultConfig()
}

// FixerDisabled reports whether a strategy name is switched off.
func (c *Config) FixerDisabled(name string) bool {
	for _, d := range c.Fixers.Disabled {
		if strings.EqualFold(d, name) {
			return true
		}
	}
	return false
}
