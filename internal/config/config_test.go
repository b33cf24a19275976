package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultValues(t *testing.T) {
	t.Cleanup(viper.Reset)

	cfg, err := Load(t.TempDir(), nil)
	require.NoError(t, err)

	assert.Equal(t, ModeLocal, cfg.Mode)
	assert.Equal(t, "Player 1", cfg.Name)
	assert.Equal(t, "Player 2", cfg.GuestName)
	assert.Equal(t, 800.0, cfg.Canvas.Width)
	assert.Equal(t, 600.0, cfg.Canvas.Height)
	assert.Equal(t, 50.0, cfg.TankSize)
	assert.Equal(t, 50.0, cfg.SpawnBuffer)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, int64(0), cfg.Seed)
	assert.True(t, cfg.CopyAddress)
}

func TestLoad_WithConfigFile(t *testing.T) {
	t.Cleanup(viper.Reset)

	dir := t.TempDir()
	yml := "mode: host\nname: alice\ncanvas:\n  width: 1024\ntankSize: 40\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tankarena.yaml"), []byte(yml), 0o644))

	cfg, err := Load(dir, nil)
	require.NoError(t, err)
	assert.Equal(t, ModeHost, cfg.Mode)
	assert.Equal(t, "alice", cfg.Name)
	assert.Equal(t, 1024.0, cfg.Canvas.Width)
	assert.Equal(t, 600.0, cfg.Canvas.Height)
	assert.Equal(t, 40.0, cfg.TankSize)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	t.Cleanup(viper.Reset)
	t.Setenv("TANKARENA_NAME", "envname")
	t.Setenv("TANKARENA_CANVAS_HEIGHT", "480")

	cfg, err := Load(t.TempDir(), nil)
	require.NoError(t, err)
	assert.Equal(t, "envname", cfg.Name)
	assert.Equal(t, 480.0, cfg.Canvas.Height)
}

func TestLoad_FlagsWin(t *testing.T) {
	t.Cleanup(viper.Reset)
	t.Setenv("TANKARENA_MODE", "host")

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	RegisterFlags(fs)
	require.NoError(t, fs.Parse([]string{"--mode=join", "--peer=ws://10.0.0.5:7777/peer", "--seed=42"}))

	cfg, err := Load(t.TempDir(), fs)
	require.NoError(t, err)
	assert.Equal(t, ModeJoin, cfg.Mode)
	assert.Equal(t, "ws://10.0.0.5:7777/peer", cfg.Peer)
	assert.Equal(t, int64(42), cfg.Seed)
}

func TestLoad_InvalidMode(t *testing.T) {
	t.Cleanup(viper.Reset)
	t.Setenv("TANKARENA_MODE", "spectate")

	_, err := Load(t.TempDir(), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown mode")
}

func TestValidate_JoinNeedsPeer(t *testing.T) {
	cfg := Config{Mode: ModeJoin, Name: "bob", Canvas: CanvasConfig{Width: 800, Height: 600}, TankSize: 50}
	assert.Error(t, cfg.Validate())
	cfg.Peer = "ws://x/peer"
	assert.NoError(t, cfg.Validate())
}
