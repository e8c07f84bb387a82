// Package config loads and validates the apigen configuration file.
package config

import (
	"os"
	"regexp"
	"runtime"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	apierrors "git.home.luguber.info/inful/apigen/internal/errors"
)

// Config represents the application configuration
type Config struct {
	Modules []ModuleConfig `yaml:"modules"`
	Options []OptionRule   `yaml:"options,omitempty"`
	Output  OutputConfig   `yaml:"output"`
	Daemon  DaemonConfig   `yaml:"daemon,omitempty"`
	Logging LoggingConfig  `yaml:"logging,omitempty"`
}

// ModuleConfig maps one stub inventory to an output path.
type ModuleConfig struct {
	// Name is the extension module name, e.g. "tensorstore".
	Name string `yaml:"name"`

	// Inventory is the path to the JSON stub dump for this module.
	Inventory string `yaml:"inventory"`

	// OutputPath is the directory (relative to output.directory) receiving
	// the generated pages.
	OutputPath string `yaml:"output_path"`

	// SubscriptMethodTypes matches property return annotations that denote
	// subscript methods.
	SubscriptMethodTypes string `yaml:"subscript_method_types,omitempty"`
}

// OptionRule overlays object description options onto domain:objtype keys
// matching the pattern.
type OptionRule struct {
	Pattern string         `yaml:"pattern"`
	Options map[string]any `yaml:"options"`
}

// OutputConfig represents output configuration
type OutputConfig struct {
	Directory string `yaml:"directory"`
	Clean     bool   `yaml:"clean"` // Clean output directory before generation

	// CaseInsensitiveFS forces the page naming policy for case-insensitive
	// filesystems. When unset, it defaults by platform.
	CaseInsensitiveFS *bool `yaml:"case_insensitive_fs,omitempty"`

	// StateDB is the path of the cross-reference database used for
	// incremental generation. Empty disables persistence.
	StateDB string `yaml:"state_db,omitempty"`
}

// DaemonConfig represents watch mode configuration
type DaemonConfig struct {
	Listen          string        `yaml:"listen,omitempty"`
	QuietWindow     time.Duration `yaml:"quiet_window,omitempty"`
	MaxDelay        time.Duration `yaml:"max_delay,omitempty"`
	RebuildInterval time.Duration `yaml:"rebuild_interval,omitempty"`
}

// LoggingConfig represents logging configuration
type LoggingConfig struct {
	Level string `yaml:"level,omitempty"` // debug, info, warn, error
}

const (
	defaultSubscriptMethodTypes = `.*\._[^.]*`
	defaultListen               = ":8750"
	defaultQuietWindow          = 500 * time.Millisecond
	defaultMaxDelay             = 5 * time.Second
)

// Load reads the configuration file, applying .env files, defaults, and
// validation.
func Load(path string) (*Config, error) {
	// Best effort; process environment always wins.
	_ = godotenv.Load(".env", ".env.local")

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, apierrors.ConfigNotFound(path)
		}
		return nil, apierrors.Wrap(err, apierrors.CategoryConfig, apierrors.SeverityFatal, "failed to read configuration")
	}

	var cfg Config
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), &cfg); err != nil {
		return nil, apierrors.Wrap(err, apierrors.CategoryConfig, apierrors.SeverityFatal, "failed to parse configuration").
			WithContext("path", path)
	}

	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ApplyDefaults fills unset fields with their defaults.
func (c *Config) ApplyDefaults() {
	if c.Output.Directory == "" {
		c.Output.Directory = "./site/api"
	}
	for i := range c.Modules {
		if c.Modules[i].SubscriptMethodTypes == "" {
			c.Modules[i].SubscriptMethodTypes = defaultSubscriptMethodTypes
		}
		if c.Modules[i].OutputPath == "" {
			c.Modules[i].OutputPath = c.Modules[i].Name
		}
	}
	if c.Daemon.Listen == "" {
		c.Daemon.Listen = defaultListen
	}
	if c.Daemon.QuietWindow <= 0 {
		c.Daemon.QuietWindow = defaultQuietWindow
	}
	if c.Daemon.MaxDelay <= 0 {
		c.Daemon.MaxDelay = defaultMaxDelay
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
}

// Validate checks the configuration before generation starts.
func (c *Config) Validate() error {
	if len(c.Modules) == 0 {
		return apierrors.ConfigRequired("modules")
	}
	seen := make(map[string]struct{}, len(c.Modules))
	for _, m := range c.Modules {
		if m.Name == "" {
			return apierrors.ValidationFailed("modules.name", "module name is required")
		}
		if m.Inventory == "" {
			return apierrors.ValidationFailed("modules.inventory", "inventory path is required").
				WithContext("module", m.Name)
		}
		if _, dup := seen[m.Name]; dup {
			return apierrors.ValidationFailed("modules.name", "duplicate module name").
				WithContext("module", m.Name)
		}
		seen[m.Name] = struct{}{}
		if _, err := regexp.Compile(m.SubscriptMethodTypes); err != nil {
			return apierrors.ValidationFailed("modules.subscript_method_types", "invalid pattern").
				WithContext("module", m.Name).
				WithContext("pattern", m.SubscriptMethodTypes)
		}
	}
	for _, rule := range c.Options {
		if rule.Pattern == "" {
			return apierrors.ValidationFailed("options.pattern", "pattern is required")
		}
		if _, err := regexp.Compile(rule.Pattern); err != nil {
			return apierrors.ValidationFailed("options.pattern", "invalid pattern").
				WithContext("pattern", rule.Pattern)
		}
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return apierrors.ValidationFailed("logging.level", "unknown log level").
			WithContext("level", c.Logging.Level)
	}
	return nil
}

// CaseInsensitivePages resolves the page naming policy: explicit setting
// first, otherwise true on platforms whose filesystems are typically
// case-insensitive.
func (c *Config) CaseInsensitivePages() bool {
	if c.Output.CaseInsensitiveFS != nil {
		return *c.Output.CaseInsensitiveFS
	}
	return runtime.GOOS != "linux"
}

// SubscriptPattern compiles the module's subscript-method pattern, anchored
// so that it must match the entire return annotation.
func (m *ModuleConfig) SubscriptPattern() *regexp.Regexp {
	return regexp.MustCompile(`^(?:` + m.SubscriptMethodTypes + `)$`)
}
