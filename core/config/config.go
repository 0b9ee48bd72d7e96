package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/tristendillon/barrel/core/logger"
	"gopkg.in/yaml.v3"
)

const FileName = "barrel.yaml"

type ParsePolicy string

const (
	// ParseAbort fails the whole pass on the first unparseable module.
	ParseAbort ParsePolicy = "abort"
	// ParseSkip leaves the module out of the barrel and logs a warning.
	ParseSkip ParsePolicy = "skip"
)

type Ordering string

const (
	// OrderNative keeps the order the operating system lists directory entries in.
	OrderNative Ordering = "native"
	// OrderLexical sorts directory entries by name.
	OrderLexical Ordering = "lexical"
)

type Config struct {
	Root           string            `yaml:"root"`
	Extension      string            `yaml:"extension"`
	OnParseError   ParsePolicy       `yaml:"on_parse_error"`
	Ordering       Ordering          `yaml:"ordering"`
	Exclude        []string          `yaml:"exclude,omitempty"`
	DefaultAliases map[string]string `yaml:"default_aliases,omitempty"`
	Watch          Watch             `yaml:"watch"`
	Cache          Cache             `yaml:"cache"`
}

type Watch struct {
	Debounce Duration `yaml:"debounce"`
	Patterns []string `yaml:"patterns"`
	Ignore   []string `yaml:"ignore,omitempty"`
}

type Cache struct {
	MaxEntries int `yaml:"max_entries"`
}

// Duration reads and writes time.Duration as "500ms" style strings.
type Duration time.Duration

func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := time.ParseDuration(value.Value)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", value.Value, err)
	}
	*d = Duration(parsed)
	return nil
}

func Default() *Config {
	return &Config{
		Root:         "src",
		Extension:    "ts",
		OnParseError: ParseAbort,
		Ordering:     OrderNative,
		Watch: Watch{
			Debounce: Duration(500 * time.Millisecond),
			Patterns: []string{"**/*.ts", "**/*.tsx"},
		},
		Cache: Cache{
			MaxEntries: 1000,
		},
	}
}

// OutputName is the reserved barrel file name, index.<ext>.
func (c *Config) OutputName() string {
	return "index." + strings.TrimPrefix(c.Extension, ".")
}

// OutputPath is the barrel file location under Root.
func (c *Config) OutputPath() string {
	return filepath.Join(c.Root, c.OutputName())
}

func (c *Config) Validate() error {
	if c.Root == "" {
		return fmt.Errorf("root must not be empty")
	}
	ext := strings.TrimPrefix(c.Extension, ".")
	if ext == "" || strings.ContainsAny(ext, `/\`) {
		return fmt.Errorf("invalid extension %q", c.Extension)
	}
	switch c.OnParseError {
	case ParseAbort, ParseSkip:
	default:
		return fmt.Errorf("on_parse_error must be %q or %q, got %q", ParseAbort, ParseSkip, c.OnParseError)
	}
	switch c.Ordering {
	case OrderNative, OrderLexical:
	default:
		return fmt.Errorf("ordering must be %q or %q, got %q", OrderNative, OrderLexical, c.Ordering)
	}
	for _, group := range [][]string{c.Exclude, c.Watch.Patterns, c.Watch.Ignore} {
		for _, pattern := range group {
			if !doublestar.ValidatePattern(pattern) {
				return fmt.Errorf("invalid glob pattern %q", pattern)
			}
		}
	}
	for rel, alias := range c.DefaultAliases {
		if !strings.HasPrefix(rel, "./") {
			return fmt.Errorf("default_aliases key %q must be a module path starting with ./", rel)
		}
		if alias == "" {
			return fmt.Errorf("default_aliases entry for %q has an empty name", rel)
		}
	}
	if c.Watch.Debounce < 0 {
		return fmt.Errorf("watch.debounce must not be negative")
	}
	if c.Cache.MaxEntries < 0 {
		return fmt.Errorf("cache.max_entries must not be negative")
	}
	return nil
}

// Load reads path, or barrel.yaml in the working directory when path is
// empty. A missing default file yields Default(). Root is resolved against
// the directory holding the config file.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("cannot determine working dir: %w", err)
		}
		path = filepath.Join(wd, FileName)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			logger.Debug("No config file found, using default config")
			return Default(), nil
		}
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse yaml: %w", err)
	}
	if !filepath.IsAbs(cfg.Root) {
		cfg.Root = filepath.Join(filepath.Dir(path), cfg.Root)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	logger.Debug("Config file found: %s", path)
	logger.Debug("Config: %+v", *cfg)

	return cfg, nil
}

// Write stores cfg as yaml at path, refusing to replace an existing file
// unless force is set.
func Write(path string, cfg *Config, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("%s already exists", path)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file %s: %w", path, err)
	}
	return nil
}
