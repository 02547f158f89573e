package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg := Defaults()
	assert.Equal(t, "0.0.0.0:5000", cfg.Addr())
	assert.Equal(t, 30, cfg.LivenessWindowSeconds)
}

func TestLoadFileMissingIsNotError(t *testing.T) {
	cfg, err := LoadFile(Defaults(), filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Defaults(), cfg)
}

func TestLoadFileOverridesFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broker.yaml")
	require.NoError(t, os.WriteFile(path, []byte("port: 6000\nliveness_window_s: 45\n"), 0o644))

	cfg, err := LoadFile(Defaults(), path)
	require.NoError(t, err)
	assert.Equal(t, 6000, cfg.Port)
	assert.Equal(t, 45, cfg.LivenessWindowSeconds)
	assert.Equal(t, "0.0.0.0", cfg.Host) // untouched field keeps its default
}

func TestLoadFileEmptyPathReturnsBase(t *testing.T) {
	cfg, err := LoadFile(Defaults(), "")
	require.NoError(t, err)
	assert.Equal(t, Defaults(), cfg)
}
