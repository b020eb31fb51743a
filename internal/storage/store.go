// Package storage provides the string key/value port the application persists
// through, and its backends.
package storage

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"fyne.io/fyne/v2"
)

// Store is a synchronous string key/value store. A missing key is reported
// with ok == false, not an error.
//
//go:generate mockgen -source=store.go -destination=storagemock/store.go -package=storagemock
type Store interface {
	Get(key string) (value string, ok bool, err error)
	Set(key, value string) error
}

// Kind names a Store backend.
type Kind string

const (
	KindYAML        Kind = "yaml"
	KindSQLite      Kind = "sqlite"
	KindPreferences Kind = "preferences"
	KindMemory      Kind = "memory"
)

// ErrUnknownKind indicates an unsupported backend name.
var ErrUnknownKind = errors.New("unknown store kind")

const (
	yamlFileName   = "state.yaml"
	sqliteFileName = "state.db"
)

// Open creates the backend named by kind. Files live in dataDir; the
// preferences backend uses the fyne app's preference store.
func Open(kind Kind, dataDir string, app fyne.App) (Store, error) {
	switch Kind(strings.ToLower(string(kind))) {
	case KindYAML, "":
		return NewFileStore(filepath.Join(dataDir, yamlFileName)), nil
	case KindSQLite:
		return OpenSQLite(filepath.Join(dataDir, sqliteFileName))
	case KindPreferences:
		if app == nil {
			return nil, fmt.Errorf("open preferences store: no app")
		}
		return NewPreferencesStore(app.Preferences()), nil
	case KindMemory:
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("open store %q: %w", kind, ErrUnknownKind)
	}
}

// Close releases the store if it holds resources.
func Close(store Store) error {
	if closer, ok := store.(interface{ Close() error }); ok {
		return closer.Close()
	}
	return nil
}
