package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	cfg, err := Load(NewFlagSet("test"), nil)
	require.NoError(t, err)

	assert.Equal(t, "", cfg.User)
	assert.Equal(t, filepath.Join(home, ".academia"), cfg.DataDir)
	assert.Equal(t, filepath.Join(home, ".academia", "academia.log"), cfg.LogFile)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 60, cfg.FPS)
	assert.False(t, cfg.Muted)
	assert.Empty(t, cfg.ConfigFile)
	assert.Equal(t, time.Second/60, cfg.FrameInterval())
}

func TestLoad_Flags(t *testing.T) {
	dir := t.TempDir()
	cfg, err := Load(NewFlagSet("test"), []string{
		"--user", "Julyana",
		"--data-dir", dir,
		"--log-level", "debug",
		"--fps", "30",
		"--mute",
	})
	require.NoError(t, err)

	assert.Equal(t, "julyana", cfg.User)
	assert.Equal(t, dir, cfg.DataDir)
	assert.Equal(t, filepath.Join(dir, "academia.log"), cfg.LogFile)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 30, cfg.FPS)
	assert.True(t, cfg.Muted)
}

func TestLoad_EnvOverridesFileAndFlagsOverrideEnv(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("user: rafael\nfps: 50\nlog-level: warn\n"), 0o644))

	t.Setenv("ACADEMIA_DATA_DIR", dir)
	t.Setenv("ACADEMIA_FPS", "40")

	cfg, err := Load(NewFlagSet("test"), []string{"--log-level", "error"})
	require.NoError(t, err)

	assert.Equal(t, dir, cfg.DataDir)
	assert.Equal(t, filepath.Join(dir, "config.yaml"), cfg.ConfigFile)
	assert.Equal(t, "rafael", cfg.User)
	assert.Equal(t, 40, cfg.FPS)
	assert.Equal(t, "error", cfg.LogLevel)
}

func TestLoad_ExplicitConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("plans: /tmp/extra.yaml\nmute: true\n"), 0o644))

	cfg, err := Load(NewFlagSet("test"), []string{"--data-dir", dir, "--config", path})
	require.NoError(t, err)
	assert.Equal(t, "/tmp/extra.yaml", cfg.PlansFile)
	assert.True(t, cfg.Muted)
	assert.Equal(t, path, cfg.ConfigFile)
}

func TestLoad_MissingExplicitConfigFails(t *testing.T) {
	dir := t.TempDir()
	_, err := Load(NewFlagSet("test"), []string{"--data-dir", dir, "--config", filepath.Join(dir, "nope.yaml")})
	assert.Error(t, err)
}

func TestLoad_InvalidFPS(t *testing.T) {
	dir := t.TempDir()
	_, err := Load(NewFlagSet("test"), []string{"--data-dir", dir, "--fps", "0"})
	assert.ErrorIs(t, err, ErrInvalidFPS)

	_, err = Load(NewFlagSet("test"), []string{"--data-dir", dir, "--fps", "1000"})
	assert.ErrorIs(t, err, ErrInvalidFPS)
}

func TestLoad_UnknownFlag(t *testing.T) {
	_, err := Load(NewFlagSet("test"), []string{"--bogus"})
	assert.Error(t, err)
}

func TestExpandHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	assert.Equal(t, filepath.Join(home, "plans.yaml"), expandHome("~/plans.yaml"))
	assert.Equal(t, "/abs/plans.yaml", expandHome("/abs/plans.yaml"))
	assert.Equal(t, "", expandHome(""))
}
