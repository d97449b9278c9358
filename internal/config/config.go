// Package config provides configuration types, defaults, and persistence
// for roster.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"roster/internal/catalog"
	"roster/internal/log"
)

// Config holds all configuration options for roster.
type Config struct {
	// BasePath is the project directory: file references resolve against
	// it and agent runs execute in it unless host.work_dir overrides.
	BasePath string `mapstructure:"base_path"`
	// RosterFile is the team member YAML file.
	RosterFile string         `mapstructure:"roster_file"`
	Host       HostConfig     `mapstructure:"host"`
	Composer   ComposerConfig `mapstructure:"composer"`
	UI         UIConfig       `mapstructure:"ui"`
	Store      StoreConfig    `mapstructure:"store"`
	Index      IndexConfig    `mapstructure:"index"`
	Tracing    TracingConfig  `mapstructure:"tracing"`
}

// HostConfig holds agent process host settings.
type HostConfig struct {
	// Binary is the agent executable. Default: "claude".
	Binary string `mapstructure:"binary"`
	// WorkDir overrides BasePath as the run directory.
	WorkDir string `mapstructure:"work_dir"`
	// SkipPermissions launches agents without permission prompts.
	SkipPermissions bool `mapstructure:"skip_permissions"`
}

// ComposerConfig holds composition defaults, persisted when the user
// changes selection.
type ComposerConfig struct {
	// Depth is the default reasoning depth (catalog id).
	Depth string `mapstructure:"depth"`
	// Model is the default model (catalog id); empty uses each member's.
	Model string `mapstructure:"model"`
}

// UIConfig holds user interface options.
type UIConfig struct {
	// MarkdownStyle selects transcript rendering: "dark" or "light".
	MarkdownStyle string `mapstructure:"markdown_style"`
	// ShowTimestamps prefixes transcript entries with times.
	ShowTimestamps bool `mapstructure:"show_timestamps"`
	// ExpandedLines is the composer height in the expanded view.
	ExpandedLines int `mapstructure:"expanded_lines"`
}

// StoreConfig holds message history settings.
type StoreConfig struct {
	// Path is the sqlite file. Empty derives .roster/messages.db under
	// the base path.
	Path string `mapstructure:"path"`
}

// IndexConfig holds file index settings for the file-reference picker.
type IndexConfig struct {
	// TTLSeconds caps how long a cached file listing is served before
	// a rescan, independent of change notifications.
	TTLSeconds int `mapstructure:"ttl_seconds"`
	// MaxFiles bounds the listing size.
	MaxFiles int `mapstructure:"max_files"`
}

// TracingConfig holds OpenTelemetry settings.
type TracingConfig struct {
	Enabled bool `mapstructure:"enabled"`
	// Exporter: "none", "stdout", or "otlp".
	Exporter     string  `mapstructure:"exporter"`
	OTLPEndpoint string  `mapstructure:"otlp_endpoint"`
	SampleRate   float64 `mapstructure:"sample_rate"`
	ServiceName  string  `mapstructure:"service_name"`
}

// Defaults returns the baseline configuration.
func Defaults() Config {
	return Config{
		BasePath:   "",
		RosterFile: "",
		Host: HostConfig{
			Binary: "claude",
		},
		Composer: ComposerConfig{
			Depth: catalog.DefaultDepthMode,
			Model: "",
		},
		UI: UIConfig{
			MarkdownStyle:  "dark",
			ShowTimestamps: false,
			ExpandedLines:  10,
		},
		Index: IndexConfig{
			TTLSeconds: 30,
			MaxFiles:   5000,
		},
		Tracing: TracingConfig{
			Enabled:      false,
			Exporter:     "stdout",
			OTLPEndpoint: "localhost:4317",
			SampleRate:   1.0,
			ServiceName:  "roster",
		},
	}
}

// ConfigLookupPaths returns the config file candidates in priority order:
// project-local first, then the user config directory.
func ConfigLookupPaths() []string {
	paths := []string{filepath.Join(".roster", "config.yaml")}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "roster", "config.yaml"))
	}
	return paths
}

// DefaultRosterFile returns the team file path under the base path.
func DefaultRosterFile(basePath string) string {
	return filepath.Join(basePath, ".roster", "team.yaml")
}

// DefaultStorePath returns the message database path under the base path.
func DefaultStorePath(basePath string) string {
	return filepath.Join(basePath, ".roster", "messages.db")
}

// Validate checks the configuration for errors. Empty values that have
// defaults are valid.
func Validate(cfg Config) error {
	if cfg.BasePath != "" && !filepath.IsAbs(cfg.BasePath) {
		return fmt.Errorf("base_path must be an absolute path, got %q", cfg.BasePath)
	}
	if cfg.Host.WorkDir != "" && !filepath.IsAbs(cfg.Host.WorkDir) {
		return fmt.Errorf("host.work_dir must be an absolute path, got %q", cfg.Host.WorkDir)
	}
	if err := ValidateComposer(cfg.Composer); err != nil {
		return err
	}
	if err := ValidateUI(cfg.UI); err != nil {
		return err
	}
	if err := ValidateIndex(cfg.Index); err != nil {
		return err
	}
	return ValidateTracing(cfg.Tracing)
}

// ValidateComposer checks composer defaults against the catalogs.
func ValidateComposer(c ComposerConfig) error {
	if c.Depth != "" {
		if _, ok := catalog.DepthModeByID(c.Depth); !ok {
			return fmt.Errorf("composer.depth must be a known depth mode, got %q", c.Depth)
		}
	}
	if c.Model != "" {
		if _, ok := catalog.ModelByID(c.Model); !ok {
			return fmt.Errorf("composer.model must be a known model, got %q", c.Model)
		}
	}
	return nil
}

// ValidateUI checks UI options.
func ValidateUI(ui UIConfig) error {
	switch ui.MarkdownStyle {
	case "", "dark", "light":
	default:
		return fmt.Errorf("ui.markdown_style must be \"dark\" or \"light\", got %q", ui.MarkdownStyle)
	}
	if ui.ExpandedLines < 0 {
		return fmt.Errorf("ui.expanded_lines must be non-negative, got %d", ui.ExpandedLines)
	}
	return nil
}

// ValidateIndex checks file index options.
func ValidateIndex(idx IndexConfig) error {
	if idx.TTLSeconds < 0 {
		return fmt.Errorf("index.ttl_seconds must be non-negative, got %d", idx.TTLSeconds)
	}
	if idx.MaxFiles < 0 {
		return fmt.Errorf("index.max_files must be non-negative, got %d", idx.MaxFiles)
	}
	return nil
}

// ValidateTracing checks tracing options.
func ValidateTracing(t TracingConfig) error {
	if t.SampleRate < 0.0 || t.SampleRate > 1.0 {
		return fmt.Errorf("tracing.sample_rate must be between 0.0 and 1.0, got %v", t.SampleRate)
	}
	switch t.Exporter {
	case "", "none", "stdout", "otlp":
	default:
		return fmt.Errorf("tracing.exporter must be \"none\", \"stdout\", or \"otlp\", got %q", t.Exporter)
	}
	if t.Enabled && t.Exporter == "otlp" && t.OTLPEndpoint == "" {
		return fmt.Errorf("tracing.otlp_endpoint is required when exporter is \"otlp\"")
	}
	return nil
}

// DefaultConfigTemplate returns the default config as a YAML string with
// comments.
func DefaultConfigTemplate() string {
	return `# Roster Configuration

# Project directory: file references resolve against it and agent runs
# execute in it (default: current directory)
# base_path: /path/to/project

# Team member registry (default: <base_path>/.roster/team.yaml)
# roster_file: /path/to/team.yaml

# Agent process host
host:
  binary: claude           # Agent executable on PATH
  # work_dir: /path/to/dir # Override run directory (default: base_path)
  skip_permissions: false  # Launch agents without permission prompts

# Composition defaults (persisted when changed in the UI)
composer:
  depth: auto              # auto, think, think_hard, think_harder, ultrathink
  # model: sonnet          # sonnet, opus, haiku; empty uses each member's model

# UI settings
ui:
  markdown_style: dark     # Transcript rendering: "dark" or "light"
  show_timestamps: false   # Prefix transcript entries with times
  expanded_lines: 10       # Composer height in the expanded view

# Message history
# store:
#   path: /path/to/messages.db  # default: <base_path>/.roster/messages.db

# File index for the @ file-reference picker
index:
  ttl_seconds: 30          # Rescan interval for the cached file listing
  max_files: 5000          # Listing size bound

# OpenTelemetry tracing around session operations
# tracing:
#   enabled: false
#   exporter: stdout       # none, stdout, or otlp
#   otlp_endpoint: localhost:4317
#   sample_rate: 1.0
`
}

// WriteDefaultConfig creates a commented config file at the given path,
// creating the parent directory if needed.
func WriteDefaultConfig(configPath string) error {
	log.Debug(log.CatConfig, "writing default config", "path", configPath)

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(configPath, []byte(DefaultConfigTemplate()), 0o600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	log.Info(log.CatConfig, "created default config", "path", configPath)
	return nil
}
