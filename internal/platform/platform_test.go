package platform

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSingleInstance(t *testing.T) {
	dataDir := t.TempDir()

	first, err := AcquireSingleInstance("LoopLogTest", dataDir)
	require.NoError(t, err)
	assert.NotEmpty(t, first.Address())

	_, err = AcquireSingleInstance("LoopLogTest", dataDir)
	assert.True(t, errors.Is(err, ErrAlreadyRunning))

	require.NoError(t, first.Release())
	again, err := AcquireSingleInstance("LoopLogTest", dataDir)
	require.NoError(t, err)
	require.NoError(t, again.Release())
}

func TestNilGuard(t *testing.T) {
	var guard *InstanceGuard
	assert.NoError(t, guard.Release())
	assert.Empty(t, guard.Address())
}

func TestPortFromKeyInRange(t *testing.T) {
	for _, key := range []string{"", "a", instanceKey("LoopLog", "/tmp/x")} {
		port := portFromKey(key)
		assert.GreaterOrEqual(t, port, 20000)
		assert.LessOrEqual(t, port, 39999)
	}
	assert.NotEqual(t, instanceKey("LoopLog", "/a"), instanceKey("LoopLog", "/b"))
}

func TestConfigFile(t *testing.T) {
	path, err := ConfigFile("LoopLog")
	require.NoError(t, err)
	assert.Equal(t, "config.toml", filepath.Base(path))
	assert.Equal(t, "looplog", filepath.Base(filepath.Dir(path)))
}

func TestEnsureDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "data")
	require.NoError(t, EnsureDir(dir))
	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
	assert.Error(t, EnsureDir(" "))
}
