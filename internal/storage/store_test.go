package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"fyne.io/fyne/v2/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func backends(t *testing.T) map[string]Store {
	t.Helper()
	dir := t.TempDir()

	sqliteStore, err := OpenSQLite(filepath.Join(dir, "kv.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqliteStore.Close() })

	return map[string]Store{
		"yaml":        NewFileStore(filepath.Join(dir, "nested", "state.yaml")),
		"sqlite":      sqliteStore,
		"memory":      NewMemoryStore(),
		"preferences": NewPreferencesStore(test.NewApp().Preferences()),
	}
}

func TestBackendsRoundTrip(t *testing.T) {
	for name, store := range backends(t) {
		t.Run(name, func(t *testing.T) {
			_, ok, err := store.Get("missing")
			require.NoError(t, err)
			assert.False(t, ok)

			require.NoError(t, store.Set("projects", `{"a":{"id":"a"}}`))
			require.NoError(t, store.Set("showRow", "true"))
			require.NoError(t, store.Set("showRow", "false"))

			value, ok, err := store.Get("projects")
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, `{"a":{"id":"a"}}`, value)

			value, _, err = store.Get("showRow")
			require.NoError(t, err)
			assert.Equal(t, "false", value)
		})
	}
}

func TestFileStoreSeesOtherWriters(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.yaml")
	first := NewFileStore(path)
	second := NewFileStore(path)

	require.NoError(t, first.Set("selectedProject", "one"))
	require.NoError(t, second.Set("selectedProject", "two"))

	value, _, err := first.Get("selectedProject")
	require.NoError(t, err)
	assert.Equal(t, "two", value)
}

func TestFileStoreMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.yaml")
	malformed := []byte("- not\n- a map\n")
	require.NoError(t, os.WriteFile(path, malformed, 0o644))
	store := NewFileStore(path)

	_, _, err := store.Get("projects")
	require.Error(t, err)

	// Writes refuse to replace a file they cannot read.
	require.Error(t, store.Set("selectedProject", "p1"))
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, malformed, raw)
}

func TestFileStoreConcurrentWritersKeepEveryKey(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "state.yaml")
	first := NewFileStore(path)
	second := NewFileStore(path)
	require.NoError(t, first.Set("projects", "{}"))

	const rounds = 200
	var wg sync.WaitGroup
	errs := make(chan error, 4*rounds)
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < rounds; i++ {
			if err := first.Set("projects", fmt.Sprintf(`{"round":%d}`, i)); err != nil {
				errs <- err
			}
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < rounds; i++ {
			if err := second.Set("selectedProject", fmt.Sprintf("p%d", i)); err != nil {
				errs <- err
			}
			_, ok, err := second.Get("projects")
			if err != nil {
				errs <- err
			} else if !ok {
				errs <- fmt.Errorf("projects missing after round %d", i)
			}
		}
	}()
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}
	_, ok, err := first.Get("projects")
	require.NoError(t, err)
	assert.True(t, ok)

	leftovers, err := filepath.Glob(filepath.Join(dir, "*.tmp"))
	require.NoError(t, err)
	assert.Empty(t, leftovers)
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()

	store, err := Open(KindYAML, dir, nil)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "state.yaml"), store.(*FileStore).Path())

	store, err = Open(KindSQLite, dir, nil)
	require.NoError(t, err)
	require.NoError(t, Close(store))

	_, err = Open(KindPreferences, dir, nil)
	require.Error(t, err)

	store, err = Open(KindPreferences, dir, test.NewApp())
	require.NoError(t, err)
	assert.IsType(t, &PreferencesStore{}, store)

	_, err = Open("etcd", dir, nil)
	require.ErrorIs(t, err, ErrUnknownKind)

	require.NoError(t, Close(NewMemoryStore()))
}
