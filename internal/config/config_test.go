package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"looplog/internal/storage"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, storage.KindYAML, cfg.Store)
	assert.Equal(t, filepath.Join(home, ".local", "share", "looplog"), cfg.DataDir)
	assert.Equal(t, 10*time.Millisecond, cfg.TickInterval)
	assert.True(t, cfg.Sound)
	assert.Equal(t, 4*time.Second, cfg.ToastFor)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoad_ReadsDefaultLocation(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	dir := filepath.Join(home, ".config", "looplog")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte("store = \"SQLite\"\n"), 0o644))

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, storage.KindSQLite, cfg.Store)
}

func TestLoad_ExplicitPathOverrides(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	path := filepath.Join(t.TempDir(), "custom.toml")
	content := `
store = "memory"
data_dir = "~/crafts"
tick_interval_ms = 25
sound = false
volume = -1.5
toast_seconds = 9
log_level = "DEBUG"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, Config{
		Store:        storage.KindMemory,
		DataDir:      filepath.Join(home, "crafts"),
		TickInterval: 25 * time.Millisecond,
		Sound:        false,
		Volume:       -1.5,
		ToastFor:     9 * time.Second,
		LogLevel:     "debug",
	}, cfg)
}

func TestLoad_InvalidTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.toml")
	require.NoError(t, os.WriteFile(path, []byte("store = [unterminated"), 0o644))

	cfg, err := Load(path)
	require.Error(t, err)
	assert.Equal(t, storage.KindYAML, cfg.Store, "defaults survive a parse error")
}

func TestLoad_NonPositiveValuesKeepDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "zero.toml")
	require.NoError(t, os.WriteFile(path, []byte("tick_interval_ms = 0\ntoast_seconds = -2\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 10*time.Millisecond, cfg.TickInterval)
	assert.Equal(t, 4*time.Second, cfg.ToastFor)
}
