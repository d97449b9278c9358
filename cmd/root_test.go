package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"roster/internal/config"
	"roster/internal/roster"
)

func TestInitScaffoldsConfigAndRoster(t *testing.T) {
	t.Chdir(t.TempDir())
	var out bytes.Buffer
	initCmd.SetOut(&out)

	require.NoError(t, runInit(initCmd, nil))

	wd, _ := os.Getwd()
	configPath := filepath.Join(wd, ".roster", "config.yaml")
	assert.FileExists(t, configPath)
	assert.Contains(t, out.String(), "wrote")

	team, err := roster.Load(config.DefaultRosterFile(wd))
	require.NoError(t, err)
	assert.Equal(t, 2, team.Len())
}

func TestInitIsIdempotent(t *testing.T) {
	t.Chdir(t.TempDir())
	var out bytes.Buffer
	initCmd.SetOut(&out)

	require.NoError(t, runInit(initCmd, nil))
	out.Reset()
	require.NoError(t, runInit(initCmd, nil))
	assert.Contains(t, out.String(), "already exists")
}

func TestAgentsListsMembers(t *testing.T) {
	dir := t.TempDir()
	rosterPath := filepath.Join(dir, "team.yaml")
	require.NoError(t, os.WriteFile(rosterPath, []byte(`
members:
  - id: james
    name: James
    nickname: jim
    model: opus
  - id: ana
    name: Ana Lima
`), 0o644))

	orig := cfg
	t.Cleanup(func() { cfg = orig })
	cfg = config.Defaults()
	cfg.BasePath = dir
	cfg.RosterFile = rosterPath

	var out bytes.Buffer
	agentsCmd.SetOut(&out)
	require.NoError(t, runAgents(agentsCmd, nil))

	assert.Contains(t, out.String(), "James")
	assert.Contains(t, out.String(), "(@jim)")
	assert.Contains(t, out.String(), "[opus]")
	assert.Contains(t, out.String(), "Ana Lima")
}

func TestAgentsFailsWithoutRoster(t *testing.T) {
	orig := cfg
	t.Cleanup(func() { cfg = orig })
	cfg = config.Defaults()
	cfg.BasePath = t.TempDir()

	err := runAgents(agentsCmd, nil)
	assert.Error(t, err)
}
