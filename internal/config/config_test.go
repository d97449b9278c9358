package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestDefaults_AreValid(t *testing.T) {
	assert.NoError(t, Validate(Defaults()))
}

func TestValidate_Rejections(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{
			name:   "relative base path",
			mutate: func(c *Config) { c.BasePath = "relative/path" },
			want:   "base_path",
		},
		{
			name:   "relative work dir",
			mutate: func(c *Config) { c.Host.WorkDir = "work" },
			want:   "work_dir",
		},
		{
			name:   "unknown depth",
			mutate: func(c *Config) { c.Composer.Depth = "ponder" },
			want:   "composer.depth",
		},
		{
			name:   "unknown model",
			mutate: func(c *Config) { c.Composer.Model = "gpt-9" },
			want:   "composer.model",
		},
		{
			name:   "bad markdown style",
			mutate: func(c *Config) { c.UI.MarkdownStyle = "sepia" },
			want:   "markdown_style",
		},
		{
			name:   "negative ttl",
			mutate: func(c *Config) { c.Index.TTLSeconds = -1 },
			want:   "ttl_seconds",
		},
		{
			name:   "sample rate out of range",
			mutate: func(c *Config) { c.Tracing.SampleRate = 1.5 },
			want:   "sample_rate",
		},
		{
			name:   "unknown exporter",
			mutate: func(c *Config) { c.Tracing.Exporter = "jaeger" },
			want:   "exporter",
		},
		{
			name: "otlp without endpoint",
			mutate: func(c *Config) {
				c.Tracing.Enabled = true
				c.Tracing.Exporter = "otlp"
				c.Tracing.OTLPEndpoint = ""
			},
			want: "otlp_endpoint",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.mutate(&cfg)

			err := Validate(cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestDefaultConfigTemplate_ParsesAsYAML(t *testing.T) {
	var out map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(DefaultConfigTemplate()), &out))
	assert.Contains(t, out, "host")
	assert.Contains(t, out, "composer")
}

func TestWriteDefaultConfig_CreatesFileAndParents(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	require.NoError(t, WriteDefaultConfig(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Roster Configuration")
}

func TestDerivedPaths(t *testing.T) {
	assert.Equal(t, "/p/.roster/team.yaml", DefaultRosterFile("/p"))
	assert.Equal(t, "/p/.roster/messages.db", DefaultStorePath("/p"))

	paths := ConfigLookupPaths()
	require.NotEmpty(t, paths)
	assert.Equal(t, filepath.Join(".roster", "config.yaml"), paths[0],
		"project-local config wins")
}

func TestSaveComposerDefaults_PreservesOtherSections(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	seed := "# my config\nhost:\n  binary: claude # custom comment\ncomposer:\n  depth: auto\n"
	require.NoError(t, os.WriteFile(path, []byte(seed), 0o600))

	err := SaveComposerDefaults(path, ComposerConfig{Depth: "think_hard", Model: "opus"})
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)

	assert.Contains(t, text, "think_hard")
	assert.Contains(t, text, "model: opus")
	assert.Contains(t, text, "custom comment", "comments in other sections survive")

	var cfg struct {
		Composer ComposerConfig `yaml:"composer"`
	}
	require.NoError(t, yaml.Unmarshal(data, &cfg))
	assert.Equal(t, "think_hard", cfg.Composer.Depth)
}

func TestSaveComposerDefaults_CreatesMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	require.NoError(t, SaveComposerDefaults(path, ComposerConfig{Depth: "think"}))

	var cfg struct {
		Composer ComposerConfig `yaml:"composer"`
	}
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NoError(t, yaml.Unmarshal(data, &cfg))
	assert.Equal(t, "think", cfg.Composer.Depth)
}
